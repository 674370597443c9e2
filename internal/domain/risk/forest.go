package risk

import (
	"math"
	"math/rand"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	apperrors "github.com/turtacn/EcoExpand-AI/pkg/errors"
)

// Forest defaults.
const (
	DefaultNumTrees  = 100
	DefaultTestRatio = 0.2
)

// ForestConfig parameterises FitForest. Zero values select defaults:
// 100 trees, unlimited depth, one sample per leaf and every feature considered
// at each split.
type ForestConfig struct {
	NumTrees       int
	MaxDepth       int
	MinSamplesLeaf int
	MaxFeatures    int
	TestRatio      float64
	Seed           int64
}

// FeatureWeight is one entry of the normalized feature importance.
type FeatureWeight struct {
	Feature    string
	Importance float64
}

// Evaluation holds metrics on the held-out split.
type Evaluation struct {
	TrainSize int
	TestSize  int
	RMSE      float64
	R2        float64
}

// Forest is a bagged ensemble of regression trees. It is immutable after
// FitForest and safe for concurrent Predict calls.
type Forest struct {
	features   []string
	trees      []*regressionTree
	importance []FeatureWeight
	eval       Evaluation
}

// FitForest trains a forest on x/y after holding out cfg.TestRatio of the rows
// with a seeded shuffle. features names the columns of x.
func FitForest(x [][]float64, y []float64, features []string, cfg ForestConfig) (*Forest, error) {
	if len(x) == 0 || len(x) != len(y) {
		return nil, apperrors.New(apperrors.ErrCodeForestFitFailed, "training data is empty or misaligned")
	}
	for _, row := range x {
		if len(row) != len(features) {
			return nil, apperrors.New(apperrors.ErrCodeFeatureMismatch, "feature vector width does not match feature names")
		}
	}
	if cfg.NumTrees <= 0 {
		cfg.NumTrees = DefaultNumTrees
	}
	if cfg.TestRatio < 0 || cfg.TestRatio >= 1 {
		return nil, apperrors.InvalidParam("test ratio must be in [0, 1)")
	}

	rng := rand.New(rand.NewSource(cfg.Seed))
	train, test := splitIndices(len(x), cfg.TestRatio, rng)

	f := &Forest{features: append([]string(nil), features...)}
	perTree := make([]float64, len(features))
	for t := 0; t < cfg.NumTrees; t++ {
		treeRng := rand.New(rand.NewSource(rng.Int63()))
		sample := make([]int, len(train))
		for i := range sample {
			sample[i] = train[treeRng.Intn(len(train))]
		}

		b := newTreeBuilder(x, y, cfg, treeRng)
		f.trees = append(f.trees, b.build(sample))

		if total := floats.Sum(b.importance); total > 0 {
			floats.AddScaled(perTree, 1/total, b.importance)
		}
	}

	f.importance = normalizeImportance(features, perTree)
	f.eval = f.evaluate(x, y, train, test)
	return f, nil
}

// splitIndices shuffles 0..n-1 and holds out ceil(ratio*n) rows, always
// keeping at least one row for training.
func splitIndices(n int, ratio float64, rng *rand.Rand) (train, test []int) {
	perm := rng.Perm(n)
	nTest := int(math.Ceil(ratio * float64(n)))
	if nTest >= n {
		nTest = n - 1
	}
	return perm[nTest:], perm[:nTest]
}

func normalizeImportance(features []string, raw []float64) []FeatureWeight {
	out := make([]FeatureWeight, len(features))
	total := floats.Sum(raw)
	for i, name := range features {
		w := 1 / float64(len(features))
		if total > 0 {
			w = raw[i] / total
		}
		out[i] = FeatureWeight{Feature: name, Importance: w}
	}
	sort.SliceStable(out, func(a, b int) bool {
		if out[a].Importance != out[b].Importance {
			return out[a].Importance > out[b].Importance
		}
		return out[a].Feature < out[b].Feature
	})
	return out
}

func (f *Forest) evaluate(x [][]float64, y []float64, train, test []int) Evaluation {
	ev := Evaluation{TrainSize: len(train), TestSize: len(test)}
	if len(test) == 0 {
		return ev
	}

	actual := make([]float64, len(test))
	resid := make([]float64, len(test))
	for i, idx := range test {
		actual[i] = y[idx]
		resid[i] = y[idx] - f.Predict(x[idx])
	}

	ssRes := floats.Dot(resid, resid)
	ev.RMSE = math.Sqrt(ssRes / float64(len(test)))

	mean := stat.Mean(actual, nil)
	ssTot := 0.0
	for _, a := range actual {
		ssTot += (a - mean) * (a - mean)
	}
	if ssTot > 0 {
		ev.R2 = 1 - ssRes/ssTot
	}
	return ev
}

// Predict averages the tree predictions for x. x must be ordered like the
// feature names passed to FitForest.
func (f *Forest) Predict(x []float64) float64 {
	sum := 0.0
	for _, t := range f.trees {
		sum += t.predict(x)
	}
	return sum / float64(len(f.trees))
}

// FeatureImportance returns a copy of the normalized importance, highest first.
func (f *Forest) FeatureImportance() []FeatureWeight {
	return append([]FeatureWeight(nil), f.importance...)
}

// Evaluation returns the held-out metrics computed at fit time.
func (f *Forest) Evaluation() Evaluation { return f.eval }

// Features returns the feature names the forest was trained on.
func (f *Forest) Features() []string { return append([]string(nil), f.features...) }

// NumTrees returns the ensemble size.
func (f *Forest) NumTrees() int { return len(f.trees) }
