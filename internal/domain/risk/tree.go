package risk

import (
	"math/rand"
	"sort"
)

// treeNode is one node of a flattened regression tree. Leaves have feature -1.
type treeNode struct {
	feature   int
	threshold float64
	left      int
	right     int
	value     float64
}

type regressionTree struct {
	nodes []treeNode
}

func (t *regressionTree) predict(x []float64) float64 {
	i := 0
	for {
		n := t.nodes[i]
		if n.feature < 0 {
			return n.value
		}
		if x[n.feature] <= n.threshold {
			i = n.left
		} else {
			i = n.right
		}
	}
}

// treeBuilder grows a single CART regression tree on a bootstrap sample and
// accumulates the squared-error reduction credited to each feature.
type treeBuilder struct {
	x           [][]float64
	y           []float64
	maxDepth    int
	minLeaf     int
	maxFeatures int
	rng         *rand.Rand

	nodes      []treeNode
	importance []float64
}

func newTreeBuilder(x [][]float64, y []float64, cfg ForestConfig, rng *rand.Rand) *treeBuilder {
	p := len(x[0])
	maxFeatures := cfg.MaxFeatures
	if maxFeatures <= 0 || maxFeatures > p {
		maxFeatures = p
	}
	minLeaf := cfg.MinSamplesLeaf
	if minLeaf < 1 {
		minLeaf = 1
	}
	return &treeBuilder{
		x:           x,
		y:           y,
		maxDepth:    cfg.MaxDepth,
		minLeaf:     minLeaf,
		maxFeatures: maxFeatures,
		rng:         rng,
		importance:  make([]float64, p),
	}
}

func (b *treeBuilder) build(sample []int) *regressionTree {
	b.grow(sample, 0)
	return &regressionTree{nodes: b.nodes}
}

type split struct {
	feature   int
	threshold float64
	sse       float64
	pos       int
}

// grow appends the subtree for idx and returns its node index.
func (b *treeBuilder) grow(idx []int, depth int) int {
	sum, sumSq := 0.0, 0.0
	for _, i := range idx {
		sum += b.y[i]
		sumSq += b.y[i] * b.y[i]
	}
	n := float64(len(idx))
	parentSSE := sumSq - sum*sum/n

	self := len(b.nodes)
	b.nodes = append(b.nodes, treeNode{feature: -1, value: sum / n})

	if len(idx) < 2*b.minLeaf || parentSSE <= 1e-12 || (b.maxDepth > 0 && depth >= b.maxDepth) {
		return self
	}

	best, ok := b.bestSplit(idx, parentSSE)
	if !ok {
		return self
	}
	b.importance[best.feature] += parentSSE - best.sse

	sorted := append([]int(nil), idx...)
	f := best.feature
	sort.SliceStable(sorted, func(a, c int) bool { return b.x[sorted[a]][f] < b.x[sorted[c]][f] })

	left := b.grow(sorted[:best.pos], depth+1)
	right := b.grow(sorted[best.pos:], depth+1)
	b.nodes[self] = treeNode{feature: f, threshold: best.threshold, left: left, right: right, value: sum / n}
	return self
}

// bestSplit scans a random subset of features for the threshold with the
// lowest combined child SSE.
func (b *treeBuilder) bestSplit(idx []int, parentSSE float64) (split, bool) {
	p := len(b.importance)
	features := b.rng.Perm(p)[:b.maxFeatures]
	sort.Ints(features)

	best := split{sse: parentSSE}
	found := false
	sorted := make([]int, len(idx))

	for _, f := range features {
		copy(sorted, idx)
		sort.SliceStable(sorted, func(a, c int) bool { return b.x[sorted[a]][f] < b.x[sorted[c]][f] })

		totalSum, totalSq := 0.0, 0.0
		for _, i := range sorted {
			totalSum += b.y[i]
			totalSq += b.y[i] * b.y[i]
		}

		leftSum, leftSq := 0.0, 0.0
		for pos := 1; pos < len(sorted); pos++ {
			yi := b.y[sorted[pos-1]]
			leftSum += yi
			leftSq += yi * yi

			lo, hi := b.x[sorted[pos-1]][f], b.x[sorted[pos]][f]
			if lo == hi || pos < b.minLeaf || len(sorted)-pos < b.minLeaf {
				continue
			}

			nl, nr := float64(pos), float64(len(sorted)-pos)
			rightSum, rightSq := totalSum-leftSum, totalSq-leftSq
			sse := (leftSq - leftSum*leftSum/nl) + (rightSq - rightSum*rightSum/nr)
			if sse < best.sse-1e-12 {
				best = split{feature: f, threshold: (lo + hi) / 2, sse: sse, pos: pos}
				found = true
			}
		}
	}
	return best, found
}
