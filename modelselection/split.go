// Package modelselection provides the dataset partitioning and hyperparameter
// search machinery: the stratified train/validation/test split, k-fold
// cross-validation splitters, the cross-validated grid search for the forest
// and the univariate sweeps for the kernel classifier.
package modelselection

import (
	"fmt"
	"math"
	"math/rand/v2"
	"sort"

	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/diapredict/pkg/errors"
	"github.com/YuminosukeSato/diapredict/preprocessing"
)

// Ratios are the train/validation/test fractions. They must be positive and
// sum to 1 within floating tolerance.
type Ratios [3]float64

// DefaultRatios is the 80/10/10 split used by the reference pipeline.
var DefaultRatios = Ratios{0.8, 0.1, 0.1}

const ratioTolerance = 1e-9

func (r Ratios) validate() error {
	for _, v := range r {
		if v <= 0 {
			return errors.NewInvalidRatioError(r, "every ratio must be > 0")
		}
	}
	if math.Abs(r[0]+r[1]+r[2]-1) > ratioTolerance {
		return errors.NewInvalidRatioError(r, "ratios must sum to 1")
	}
	return nil
}

// SplitIndices partitions row indices into train/validation/test subsets,
// stratified by label: indices are grouped per label, shuffled with the seeded
// generator, and allocated per stratum by largest-remainder rounding so that
// the three subsets are disjoint, exhaustive, and preserve the global
// positive/negative proportion as closely as integer rounding allows.
//
// Deterministic for a fixed seed: two calls with the same inputs produce
// identical partitions.
func SplitIndices(y []float64, ratios Ratios, seed uint64) ([3][]int, error) {
	var parts [3][]int
	if err := ratios.validate(); err != nil {
		return parts, err
	}
	if len(y) == 0 {
		return parts, errors.Wrap(errors.ErrEmptyData, "modelselection.SplitIndices")
	}

	// Group indices by label, preserving label order across runs.
	strata := map[float64][]int{}
	var labels []float64
	for i, label := range y {
		if _, ok := strata[label]; !ok {
			labels = append(labels, label)
		}
		strata[label] = append(strata[label], i)
	}
	sort.Float64s(labels)

	rng := rand.New(rand.NewPCG(seed, seed))
	for _, label := range labels {
		indices := strata[label]
		rng.Shuffle(len(indices), func(i, j int) {
			indices[i], indices[j] = indices[j], indices[i]
		})

		counts := apportion(len(indices), ratios)
		offset := 0
		for k := 0; k < 3; k++ {
			parts[k] = append(parts[k], indices[offset:offset+counts[k]]...)
			offset += counts[k]
		}
	}

	for k := range parts {
		sort.Ints(parts[k])
	}
	return parts, nil
}

// apportion distributes n rows over the three splits by largest-remainder
// rounding. Ties favor earlier splits (train before validation before test).
func apportion(n int, ratios Ratios) [3]int {
	var counts [3]int
	var remainders [3]float64
	total := 0
	for k, r := range ratios {
		exact := float64(n) * r
		counts[k] = int(math.Floor(exact))
		remainders[k] = exact - float64(counts[k])
		total += counts[k]
	}

	order := []int{0, 1, 2}
	sort.SliceStable(order, func(a, b int) bool {
		return remainders[order[a]] > remainders[order[b]]
	})
	for i := 0; total < n; i++ {
		counts[order[i%3]]++
		total++
	}
	return counts
}

// TrainValTestSplit materializes the stratified partition of a design matrix
// into three new matrices. The input is not modified.
func TrainValTestSplit(dm *preprocessing.DesignMatrix, ratios Ratios, seed uint64) (train, val, test *preprocessing.DesignMatrix, err error) {
	y := make([]float64, dm.NumRows())
	for i := range y {
		y[i] = dm.Y.AtVec(i)
	}
	parts, err := SplitIndices(y, ratios, seed)
	if err != nil {
		return nil, nil, nil, err
	}
	names := [3]string{"train", "validation", "test"}
	for k := range parts {
		if len(parts[k]) == 0 {
			return nil, nil, nil, errors.NewValueError("modelselection.TrainValTestSplit",
				fmt.Sprintf("%s subset is empty: %d rows are too few for ratios %v", names[k], len(y), ratios))
		}
	}
	return takeRows(dm, parts[0]), takeRows(dm, parts[1]), takeRows(dm, parts[2]), nil
}

func takeRows(dm *preprocessing.DesignMatrix, indices []int) *preprocessing.DesignMatrix {
	_, cols := dm.X.Dims()
	X := mat.NewDense(len(indices), cols, nil)
	Y := mat.NewVecDense(len(indices), nil)
	for i, idx := range indices {
		for j := 0; j < cols; j++ {
			X.Set(i, j, dm.X.At(idx, j))
		}
		Y.SetVec(i, dm.Y.AtVec(idx))
	}
	names := make([]string, len(dm.FeatureNames))
	copy(names, dm.FeatureNames)
	return &preprocessing.DesignMatrix{X: X, Y: Y, FeatureNames: names}
}
