// Package ensemble implements the bagged decision-tree classifier used as the
// pipeline's first model family.
package ensemble

import (
	"math"
	"math/rand/v2"

	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/diapredict/core/model"
	"github.com/YuminosukeSato/diapredict/core/parallel"
	"github.com/YuminosukeSato/diapredict/pkg/errors"
)

// DefaultNumTrees is the forest size of the baseline configuration. Tuning
// runs use a smaller forest (see modelselection) to keep the grid search fast.
const DefaultNumTrees = 500

// RandomForestClassifier is a bagging ensemble of Gini decision trees for
// binary classification. Each tree is grown on a bootstrap resample of the
// training rows, considering MaxFeatures random candidate features per split.
//
// Fitting is deterministic for a fixed Seed: every tree derives its own
// generator from (Seed, tree index), so the parallel build order cannot change
// the result.
type RandomForestClassifier struct {
	model.BaseEstimator

	// NumTrees is the number of trees in the forest.
	NumTrees int
	// MaxFeatures is the number of candidate features per split;
	// 0 means floor(sqrt(n_features)).
	MaxFeatures int
	// MaxDepth limits tree depth; 0 means unlimited.
	MaxDepth int
	// MinLeaf is the minimum number of samples in a leaf.
	MinLeaf int
	// Seed fixes all randomness of the fit.
	Seed uint64

	trees      []decisionTree
	nFeatures  int
	importance []float64
}

// RandomForestOption is a functional option for RandomForestClassifier.
type RandomForestOption func(*RandomForestClassifier)

// WithNumTrees sets the forest size.
func WithNumTrees(n int) RandomForestOption {
	return func(rf *RandomForestClassifier) {
		rf.NumTrees = n
	}
}

// WithMaxFeatures sets the number of candidate features per split.
func WithMaxFeatures(m int) RandomForestOption {
	return func(rf *RandomForestClassifier) {
		rf.MaxFeatures = m
	}
}

// WithMaxDepth limits the depth of every tree.
func WithMaxDepth(d int) RandomForestOption {
	return func(rf *RandomForestClassifier) {
		rf.MaxDepth = d
	}
}

// WithMinLeaf sets the minimum samples per leaf.
func WithMinLeaf(m int) RandomForestOption {
	return func(rf *RandomForestClassifier) {
		rf.MinLeaf = m
	}
}

// WithSeed fixes the random seed.
func WithSeed(seed uint64) RandomForestOption {
	return func(rf *RandomForestClassifier) {
		rf.Seed = seed
	}
}

// NewRandomForestClassifier creates a forest with baseline defaults.
func NewRandomForestClassifier(opts ...RandomForestOption) *RandomForestClassifier {
	rf := &RandomForestClassifier{
		NumTrees: DefaultNumTrees,
		MinLeaf:  1,
	}
	for _, opt := range opts {
		opt(rf)
	}
	return rf
}

// Fit grows the forest on X (n_samples x n_features) and y (n_samples x 1).
// The input matrices are only read, never modified.
func (rf *RandomForestClassifier) Fit(X, y mat.Matrix) error {
	nSamples, nFeatures := X.Dims()
	yRows, yCols := y.Dims()
	if nSamples == 0 {
		return errors.Wrap(errors.ErrEmptyData, "RandomForestClassifier.Fit")
	}
	if yRows != nSamples {
		return errors.NewDimensionError("RandomForestClassifier.Fit", nSamples, yRows, 0)
	}
	if yCols != 1 {
		return errors.NewValueError("RandomForestClassifier.Fit", "y must be a column vector")
	}
	if rf.NumTrees <= 0 {
		return errors.NewValueError("RandomForestClassifier.Fit", "NumTrees must be > 0")
	}

	rows := make([][]float64, nSamples)
	labels := make([]float64, nSamples)
	for i := 0; i < nSamples; i++ {
		rows[i] = make([]float64, nFeatures)
		for j := 0; j < nFeatures; j++ {
			rows[i][j] = X.At(i, j)
		}
		label := y.At(i, 0)
		if label != 0 && label != 1 {
			return errors.NewValueError("RandomForestClassifier.Fit", "labels must be binary (0 or 1)")
		}
		labels[i] = label
	}

	maxFeatures := rf.MaxFeatures
	if maxFeatures <= 0 {
		maxFeatures = int(math.Floor(math.Sqrt(float64(nFeatures))))
		if maxFeatures < 1 {
			maxFeatures = 1
		}
	}
	params := treeParams{
		maxDepth:    rf.MaxDepth,
		minLeaf:     rf.MinLeaf,
		maxFeatures: maxFeatures,
	}

	trees := make([]decisionTree, rf.NumTrees)
	importances := make([][]float64, rf.NumTrees)

	parallel.Parallelize(rf.NumTrees, func(start, end int) {
		for t := start; t < end; t++ {
			// Per-tree generator: deterministic regardless of scheduling.
			rng := rand.New(rand.NewPCG(rf.Seed, uint64(t)))

			indices := make([]int, nSamples)
			for i := range indices {
				indices[i] = rng.IntN(nSamples)
			}

			imp := make([]float64, nFeatures)
			trees[t] = growTree(rows, labels, indices, params, rng, imp)
			importances[t] = imp
		}
	})

	total := make([]float64, nFeatures)
	var sum float64
	for _, imp := range importances {
		for j, v := range imp {
			total[j] += v
			sum += v
		}
	}
	if sum > 0 {
		for j := range total {
			total[j] /= sum
		}
	}

	rf.trees = trees
	rf.nFeatures = nFeatures
	rf.importance = total
	rf.SetFitted()
	return nil
}

// PredictProba returns the mean positive-leaf fraction across trees for each
// row of X, as an n_samples x 1 matrix.
func (rf *RandomForestClassifier) PredictProba(X mat.Matrix) (mat.Matrix, error) {
	if !rf.IsFitted() {
		return nil, errors.NewNotFittedError("RandomForestClassifier", "PredictProba")
	}
	nSamples, nFeatures := X.Dims()
	if nFeatures != rf.nFeatures {
		return nil, errors.NewDimensionError("RandomForestClassifier.PredictProba", rf.nFeatures, nFeatures, 1)
	}

	out := mat.NewDense(nSamples, 1, nil)
	parallel.ParallelizeWithThreshold(nSamples, 256, func(start, end int) {
		x := make([]float64, nFeatures)
		for i := start; i < end; i++ {
			for j := 0; j < nFeatures; j++ {
				x[j] = X.At(i, j)
			}
			var sum float64
			for t := range rf.trees {
				sum += rf.trees[t].predictProba(x)
			}
			out.Set(i, 0, sum/float64(len(rf.trees)))
		}
	})
	return out, nil
}

// Predict returns hard labels at the 0.5 probability threshold.
func (rf *RandomForestClassifier) Predict(X mat.Matrix) (mat.Matrix, error) {
	proba, err := rf.PredictProba(X)
	if err != nil {
		return nil, err
	}
	nSamples, _ := proba.Dims()
	out := mat.NewDense(nSamples, 1, nil)
	for i := 0; i < nSamples; i++ {
		if proba.At(i, 0) >= 0.5 {
			out.Set(i, 0, 1)
		}
	}
	return out, nil
}

// FeatureImportances returns the normalized mean impurity decrease per
// feature, in column order of the training matrix.
func (rf *RandomForestClassifier) FeatureImportances() ([]float64, error) {
	if !rf.IsFitted() {
		return nil, errors.NewNotFittedError("RandomForestClassifier", "FeatureImportances")
	}
	out := make([]float64, len(rf.importance))
	copy(out, rf.importance)
	return out, nil
}
