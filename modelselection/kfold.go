package modelselection

import (
	"math/rand/v2"
	"sort"
)

// Fold is one train/test index pair of a cross-validation split.
type Fold struct {
	TrainIndices []int
	TestIndices  []int
}

// KFoldSplitter generates cross-validation folds over n labeled rows.
type KFoldSplitter interface {
	Split(y []float64) []Fold
	NumSplits() int
}

// KFold is a plain k-fold splitter.
type KFold struct {
	NSplits int
	Shuffle bool
	Seed    uint64
}

// NewKFold creates a k-fold splitter. Fewer than two splits falls back to the
// default of five.
func NewKFold(nSplits int, shuffle bool, seed uint64) *KFold {
	if nSplits < 2 {
		nSplits = 5
	}
	return &KFold{NSplits: nSplits, Shuffle: shuffle, Seed: seed}
}

// NumSplits returns the number of folds.
func (kf *KFold) NumSplits() int {
	return kf.NSplits
}

// Split generates train/test indices for each fold.
func (kf *KFold) Split(y []float64) []Fold {
	n := len(y)
	indices := make([]int, n)
	for i := range indices {
		indices[i] = i
	}
	if kf.Shuffle {
		rng := rand.New(rand.NewPCG(kf.Seed, kf.Seed))
		rng.Shuffle(n, func(i, j int) {
			indices[i], indices[j] = indices[j], indices[i]
		})
	}

	folds := make([]Fold, kf.NSplits)
	foldSize := n / kf.NSplits
	remainder := n % kf.NSplits

	offset := 0
	for i := range folds {
		testSize := foldSize
		if i < remainder {
			testSize++
		}
		folds[i].TestIndices = append([]int{}, indices[offset:offset+testSize]...)
		offset += testSize
	}
	completeTrainSets(folds, n)
	return folds
}

// StratifiedKFold distributes each label class evenly across folds so every
// fold preserves the global class proportions.
type StratifiedKFold struct {
	NSplits int
	Shuffle bool
	Seed    uint64
}

// NewStratifiedKFold creates a stratified k-fold splitter.
func NewStratifiedKFold(nSplits int, shuffle bool, seed uint64) *StratifiedKFold {
	if nSplits < 2 {
		nSplits = 5
	}
	return &StratifiedKFold{NSplits: nSplits, Shuffle: shuffle, Seed: seed}
}

// NumSplits returns the number of folds.
func (skf *StratifiedKFold) NumSplits() int {
	return skf.NSplits
}

// Split generates stratified train/test indices for each fold.
func (skf *StratifiedKFold) Split(y []float64) []Fold {
	strata := map[float64][]int{}
	var labels []float64
	for i, label := range y {
		if _, ok := strata[label]; !ok {
			labels = append(labels, label)
		}
		strata[label] = append(strata[label], i)
	}
	sort.Float64s(labels)

	if skf.Shuffle {
		rng := rand.New(rand.NewPCG(skf.Seed, skf.Seed))
		for _, label := range labels {
			indices := strata[label]
			rng.Shuffle(len(indices), func(i, j int) {
				indices[i], indices[j] = indices[j], indices[i]
			})
		}
	}

	folds := make([]Fold, skf.NSplits)
	for _, label := range labels {
		indices := strata[label]
		foldSize := len(indices) / skf.NSplits
		remainder := len(indices) % skf.NSplits

		offset := 0
		for i := range folds {
			testSize := foldSize
			if i < remainder {
				testSize++
			}
			folds[i].TestIndices = append(folds[i].TestIndices, indices[offset:offset+testSize]...)
			offset += testSize
		}
	}
	completeTrainSets(folds, len(y))
	return folds
}

// completeTrainSets fills each fold's train set with every index not in its
// test set.
func completeTrainSets(folds []Fold, n int) {
	for i := range folds {
		inTest := make([]bool, n)
		for _, idx := range folds[i].TestIndices {
			inTest[idx] = true
		}
		folds[i].TrainIndices = make([]int, 0, n-len(folds[i].TestIndices))
		for j := 0; j < n; j++ {
			if !inTest[j] {
				folds[i].TrainIndices = append(folds[i].TrainIndices, j)
			}
		}
		sort.Ints(folds[i].TestIndices)
	}
}
