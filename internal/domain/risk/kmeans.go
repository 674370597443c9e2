package risk

import (
	"math"
	"math/rand"
	"sort"

	apperrors "github.com/turtacn/EcoExpand-AI/pkg/errors"
)

// DefaultMaxIterations bounds Lloyd's loop when ClusterConfig leaves it unset.
const DefaultMaxIterations = 300

// ClusterConfig parameterises FitClusters.
type ClusterConfig struct {
	K             int
	Seed          int64
	MaxIterations int
}

// Clustering is the result of a 1-D k-means fit. Tier ids are ranks:
// Centroids is ascending and Assignments[i] indexes into it, so tier 0 always
// holds the lowest scores.
type Clustering struct {
	Centroids   []float64
	Assignments []int
	Iterations  int
	Converged   bool
}

// K returns the number of tiers actually fitted.
func (c *Clustering) K() int { return len(c.Centroids) }

// Tier returns the tier of the centroid nearest to score.
func (c *Clustering) Tier(score float64) int {
	return nearest(c.Centroids, score)
}

// Sizes returns the number of points assigned to each tier.
func (c *Clustering) Sizes() []int {
	sizes := make([]int, len(c.Centroids))
	for _, t := range c.Assignments {
		sizes[t]++
	}
	return sizes
}

// FitClusters partitions points into cfg.K groups with Lloyd's algorithm.
// Centroids are seeded k-means++ style from cfg.Seed, so equal inputs and
// seeds always produce the same tiers. K is clamped to the number of distinct
// values.
func FitClusters(points []float64, cfg ClusterConfig) (*Clustering, error) {
	if len(points) == 0 {
		return nil, apperrors.New(apperrors.ErrCodeClusteringFailed, "no points to cluster")
	}
	if cfg.K < 1 {
		return nil, apperrors.InvalidParam("cluster count must be at least 1")
	}
	maxIter := cfg.MaxIterations
	if maxIter <= 0 {
		maxIter = DefaultMaxIterations
	}

	k := cfg.K
	if d := distinctCount(points); d < k {
		k = d
	}

	rng := rand.New(rand.NewSource(cfg.Seed))
	centroids := seedCentroids(points, k, rng)

	assign := make([]int, len(points))
	for i := range assign {
		assign[i] = -1
	}

	res := &Clustering{}
	for res.Iterations < maxIter {
		res.Iterations++

		changed := false
		for i, x := range points {
			if c := nearest(centroids, x); c != assign[i] {
				assign[i] = c
				changed = true
			}
		}
		if !changed {
			res.Converged = true
			break
		}
		updateCentroids(points, assign, centroids)
	}
	if !res.Converged {
		// Align the final labels with the final centroids.
		for i, x := range points {
			assign[i] = nearest(centroids, x)
		}
	}

	res.Centroids, res.Assignments = rankByCentroid(centroids, assign)
	return res, nil
}

// nearest returns the index of the closest centroid. Ties go to the lower
// index because only a strictly smaller distance replaces the current best.
func nearest(centroids []float64, x float64) int {
	best, bestDist := 0, math.Inf(1)
	for j, c := range centroids {
		if d := math.Abs(x - c); d < bestDist {
			best, bestDist = j, d
		}
	}
	return best
}

// seedCentroids picks k distinct initial centroids: the first uniformly, the
// rest with probability proportional to squared distance from the chosen set.
func seedCentroids(points []float64, k int, rng *rand.Rand) []float64 {
	centroids := make([]float64, 0, k)
	centroids = append(centroids, points[rng.Intn(len(points))])

	dist := make([]float64, len(points))
	for len(centroids) < k {
		total := 0.0
		for i, x := range points {
			d := math.Abs(x - centroids[nearest(centroids, x)])
			dist[i] = d * d
			total += dist[i]
		}

		target := rng.Float64() * total
		pick := -1
		for i, w := range dist {
			if w == 0 {
				continue
			}
			pick = i
			target -= w
			if target <= 0 {
				break
			}
		}
		centroids = append(centroids, points[pick])
	}
	return centroids
}

// updateCentroids moves each centroid to the mean of its points. A centroid
// with no points keeps its position.
func updateCentroids(points []float64, assign []int, centroids []float64) {
	sums := make([]float64, len(centroids))
	counts := make([]int, len(centroids))
	for i, x := range points {
		sums[assign[i]] += x
		counts[assign[i]]++
	}
	for j := range centroids {
		if counts[j] > 0 {
			centroids[j] = sums[j] / float64(counts[j])
		}
	}
}

// rankByCentroid relabels clusters so id 0 is the lowest centroid.
func rankByCentroid(centroids []float64, assign []int) ([]float64, []int) {
	order := make([]int, len(centroids))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool { return centroids[order[a]] < centroids[order[b]] })

	rank := make([]int, len(centroids))
	sorted := make([]float64, len(centroids))
	for r, old := range order {
		rank[old] = r
		sorted[r] = centroids[old]
	}

	relabelled := make([]int, len(assign))
	for i, a := range assign {
		relabelled[i] = rank[a]
	}
	return sorted, relabelled
}

func distinctCount(points []float64) int {
	seen := make(map[float64]struct{}, len(points))
	for _, p := range points {
		seen[p] = struct{}{}
	}
	return len(seen)
}
