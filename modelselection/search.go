package modelselection

import (
	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/diapredict/core/parallel"
	"github.com/YuminosukeSato/diapredict/ensemble"
	"github.com/YuminosukeSato/diapredict/metrics"
	"github.com/YuminosukeSato/diapredict/pkg/errors"
	"github.com/YuminosukeSato/diapredict/preprocessing"
	"github.com/YuminosukeSato/diapredict/svm"
)

// TuningNumTrees is the forest size used during the cross-validated grid
// search. The final refit uses the larger baseline size.
const TuningNumTrees = 100

// DefaultSearchWorkers bounds the fork-join pool of the grid search.
const DefaultSearchWorkers = 4

// GridSearchConfig controls the forest grid search.
type GridSearchConfig struct {
	// Candidates are the per-split feature counts to try.
	Candidates []int
	// NumFolds is the number of stratified CV folds (default 5).
	NumFolds int
	// NumTrees is the forest size during tuning (default TuningNumTrees).
	NumTrees int
	// Workers bounds the task pool (default DefaultSearchWorkers).
	Workers int
	// Seed fixes fold assignment and tree growth.
	Seed uint64
}

// CandidateScore is the cross-validated score of one grid candidate.
type CandidateScore struct {
	MaxFeatures int
	MeanAUC     float64
	FoldAUCs    []float64
}

// GridSearchResult is the outcome of GridSearchMaxFeatures.
type GridSearchResult struct {
	Best   CandidateScore
	Scores []CandidateScore
}

// GridSearchMaxFeatures selects the forest's per-split feature count by
// stratified k-fold cross-validation on the training matrix, maximizing mean
// AUC. All candidate/fold fits run on a bounded task pool; the first failing
// fit aborts the search and its error is returned.
//
// Ties on mean AUC resolve to the smallest candidate.
func GridSearchMaxFeatures(train *preprocessing.DesignMatrix, cfg GridSearchConfig) (*GridSearchResult, error) {
	if len(cfg.Candidates) == 0 {
		return nil, errors.NewValueError("GridSearchMaxFeatures", "no candidates")
	}
	numFolds := cfg.NumFolds
	if numFolds < 2 {
		numFolds = 5
	}
	numTrees := cfg.NumTrees
	if numTrees <= 0 {
		numTrees = TuningNumTrees
	}
	workers := cfg.Workers
	if workers <= 0 {
		workers = DefaultSearchWorkers
	}

	y := make([]float64, train.NumRows())
	for i := range y {
		y[i] = train.Y.AtVec(i)
	}
	folds := NewStratifiedKFold(numFolds, true, cfg.Seed).Split(y)

	aucs := make([][]float64, len(cfg.Candidates))
	for i := range aucs {
		aucs[i] = make([]float64, len(folds))
	}

	var tasks []func() error
	for ci, maxFeatures := range cfg.Candidates {
		for fi := range folds {
			ci, fi, maxFeatures := ci, fi, maxFeatures
			tasks = append(tasks, func() error {
				fitDM := takeRows(train, folds[fi].TrainIndices)
				evalDM := takeRows(train, folds[fi].TestIndices)

				rf := ensemble.NewRandomForestClassifier(
					ensemble.WithNumTrees(numTrees),
					ensemble.WithMaxFeatures(maxFeatures),
					ensemble.WithSeed(cfg.Seed),
				)
				if err := rf.Fit(fitDM.X, yColumn(fitDM)); err != nil {
					return errors.Wrapf(err, "grid search: max_features=%d fold=%d", maxFeatures, fi)
				}
				proba, err := rf.PredictProba(evalDM.X)
				if err != nil {
					return errors.Wrapf(err, "grid search: max_features=%d fold=%d", maxFeatures, fi)
				}
				auc, err := metrics.AUC(evalDM.Y, probaColumn(proba))
				if err != nil {
					return errors.Wrapf(err, "grid search: max_features=%d fold=%d", maxFeatures, fi)
				}
				aucs[ci][fi] = auc
				return nil
			})
		}
	}

	if err := parallel.Run(workers, tasks); err != nil {
		return nil, err
	}

	result := &GridSearchResult{}
	for ci, maxFeatures := range cfg.Candidates {
		var sum float64
		for _, v := range aucs[ci] {
			sum += v
		}
		score := CandidateScore{
			MaxFeatures: maxFeatures,
			MeanAUC:     sum / float64(len(folds)),
			FoldAUCs:    aucs[ci],
		}
		result.Scores = append(result.Scores, score)
		if ci == 0 || score.MeanAUC > result.Best.MeanAUC {
			result.Best = score
		}
	}
	return result, nil
}

// SweepDimension names the hyperparameter varied by one univariate sweep.
type SweepDimension string

const (
	SweepC     SweepDimension = "C"
	SweepTol   SweepDimension = "tol"
	SweepGamma SweepDimension = "gamma"
)

// SweepConfig controls the univariate kernel-classifier sweeps. Each sweep
// varies one hyperparameter over its candidate list while holding the others
// at the baseline values.
type SweepConfig struct {
	BaseC     float64
	BaseTol   float64
	BaseGamma float64
	MaxIter   int
	Seed      uint64

	CValues     []float64
	TolValues   []float64
	GammaValues []float64
}

// DefaultSweepConfig mirrors the reference study: cost and bandwidth sweeps
// around the C=1, gamma=1 baseline.
func DefaultSweepConfig(seed uint64) SweepConfig {
	return SweepConfig{
		BaseC:       1,
		BaseTol:     1e-3,
		BaseGamma:   1,
		Seed:        seed,
		CValues:     []float64{0.1, 1, 10, 100},
		TolValues:   []float64{1e-4, 1e-3, 1e-2},
		GammaValues: []float64{0.01, 0.1, 1, 10},
	}
}

// SweepPoint is the validation result of one sweep candidate.
type SweepPoint struct {
	Dimension SweepDimension
	Value     float64
	Confusion *metrics.ConfusionMatrix
	Accuracy  float64
}

// SweepSVC runs the three univariate sweeps and scores every trained candidate
// on the validation matrix with a confusion matrix. A candidate whose fit
// fails to converge is excluded from the results: the failure is raised as a
// ConvergenceWarning, never as an error, so the remaining sweep continues.
func SweepSVC(train, val *preprocessing.DesignMatrix, cfg SweepConfig) ([]SweepPoint, error) {
	type candidate struct {
		dim           SweepDimension
		value         float64
		c, tol, gamma float64
	}
	var candidates []candidate
	for _, v := range cfg.CValues {
		candidates = append(candidates, candidate{SweepC, v, v, cfg.BaseTol, cfg.BaseGamma})
	}
	for _, v := range cfg.TolValues {
		candidates = append(candidates, candidate{SweepTol, v, cfg.BaseC, v, cfg.BaseGamma})
	}
	for _, v := range cfg.GammaValues {
		candidates = append(candidates, candidate{SweepGamma, v, cfg.BaseC, cfg.BaseTol, v})
	}

	var points []SweepPoint
	for _, cand := range candidates {
		opts := []svm.SVCOption{
			svm.WithC(cand.c),
			svm.WithTol(cand.tol),
			svm.WithGamma(cand.gamma),
			svm.WithSVCSeed(cfg.Seed),
		}
		if cfg.MaxIter > 0 {
			opts = append(opts, svm.WithMaxIter(cfg.MaxIter))
		}
		clf := svm.NewSVC(opts...)

		err := clf.Fit(train.X, yColumn(train))
		var convErr *errors.ConvergenceError
		if errors.As(err, &convErr) {
			errors.Warn(errors.NewConvergenceWarning("SVC", convErr.Iterations, convErr.Config))
			continue
		}
		if err != nil {
			return nil, err
		}

		pred, err := clf.Predict(val.X)
		if err != nil {
			return nil, err
		}
		cm, err := metrics.NewConfusionMatrix(val.Y, probaColumn(pred))
		if err != nil {
			return nil, err
		}
		points = append(points, SweepPoint{
			Dimension: cand.dim,
			Value:     cand.value,
			Confusion: cm,
			Accuracy:  cm.Accuracy(),
		})
	}
	return points, nil
}

// yColumn views the label vector as an n x 1 matrix for estimator Fit calls.
func yColumn(dm *preprocessing.DesignMatrix) mat.Matrix {
	n := dm.Y.Len()
	out := mat.NewDense(n, 1, nil)
	for i := 0; i < n; i++ {
		out.Set(i, 0, dm.Y.AtVec(i))
	}
	return out
}

// probaColumn flattens an n x 1 prediction matrix to a vector.
func probaColumn(m mat.Matrix) *mat.VecDense {
	n, _ := m.Dims()
	out := mat.NewVecDense(n, nil)
	for i := 0; i < n; i++ {
		out.SetVec(i, m.At(i, 0))
	}
	return out
}
