// Package svm implements the kernel margin classifier used as the pipeline's
// second model family: a support-vector classifier with a radial basis
// kernel, trained by a simplified sequential minimal optimization.
package svm

import (
	"fmt"
	"math"
	"math/rand/v2"

	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/diapredict/core/model"
	"github.com/YuminosukeSato/diapredict/pkg/errors"
)

// SVC is a binary support-vector classifier with an RBF kernel
// K(a, b) = exp(-gamma * |a-b|^2).
//
// Training uses the simplified SMO scheme: pairs of Lagrange multipliers are
// optimized analytically until a full sweep over the training set makes no
// further progress for MaxPasses consecutive sweeps. Exhausting MaxIter
// sweeps before that is surfaced as a ConvergenceError, never swallowed.
type SVC struct {
	model.BaseEstimator

	// C is the regularization cost.
	C float64
	// Tol is the KKT violation tolerance.
	Tol float64
	// Gamma is the kernel bandwidth.
	Gamma float64
	// MaxPasses is the number of consecutive no-progress sweeps required to
	// declare convergence.
	MaxPasses int
	// MaxIter caps the total number of sweeps.
	MaxIter int
	// Seed fixes the multiplier-pair selection.
	Seed uint64

	// Fitted state: support vectors and their multipliers.
	supportX  [][]float64
	supportY  []float64 // -1 or +1
	alphas    []float64
	b         float64
	nFeatures int
}

// SVCOption is a functional option for SVC.
type SVCOption func(*SVC)

// WithC sets the regularization cost.
func WithC(c float64) SVCOption {
	return func(s *SVC) { s.C = c }
}

// WithTol sets the KKT tolerance.
func WithTol(tol float64) SVCOption {
	return func(s *SVC) { s.Tol = tol }
}

// WithGamma sets the kernel bandwidth.
func WithGamma(gamma float64) SVCOption {
	return func(s *SVC) { s.Gamma = gamma }
}

// WithMaxIter caps the total number of optimization sweeps.
func WithMaxIter(n int) SVCOption {
	return func(s *SVC) { s.MaxIter = n }
}

// WithSVCSeed fixes the random pair selection.
func WithSVCSeed(seed uint64) SVCOption {
	return func(s *SVC) { s.Seed = seed }
}

// NewSVC creates a classifier with the baseline configuration (C=1, gamma=1).
func NewSVC(opts ...SVCOption) *SVC {
	s := &SVC{
		C:         1.0,
		Tol:       1e-3,
		Gamma:     1.0,
		MaxPasses: 5,
		MaxIter:   1000,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ConfigString describes the hyperparameters, used in error and log context.
func (s *SVC) ConfigString() string {
	return fmt.Sprintf("C=%g gamma=%g tol=%g", s.C, s.Gamma, s.Tol)
}

func (s *SVC) kernel(a, b []float64) float64 {
	var sq float64
	for i := range a {
		d := a[i] - b[i]
		sq += d * d
	}
	return math.Exp(-s.Gamma * sq)
}

// Fit trains the classifier on X (n_samples x n_features) and y
// (n_samples x 1, labels 0 or 1). Deterministic for a fixed Seed.
func (s *SVC) Fit(X, y mat.Matrix) error {
	nSamples, nFeatures := X.Dims()
	yRows, yCols := y.Dims()
	if nSamples == 0 {
		return errors.Wrap(errors.ErrEmptyData, "SVC.Fit")
	}
	if nSamples < 2 {
		return errors.NewValueError("SVC.Fit", "need at least 2 samples")
	}
	if yRows != nSamples {
		return errors.NewDimensionError("SVC.Fit", nSamples, yRows, 0)
	}
	if yCols != 1 {
		return errors.NewValueError("SVC.Fit", "y must be a column vector")
	}
	if s.C <= 0 {
		return errors.NewValueError("SVC.Fit", "C must be > 0")
	}
	if s.Gamma <= 0 {
		return errors.NewValueError("SVC.Fit", "gamma must be > 0")
	}

	rows := make([][]float64, nSamples)
	labels := make([]float64, nSamples) // -1 or +1
	for i := 0; i < nSamples; i++ {
		rows[i] = make([]float64, nFeatures)
		for j := 0; j < nFeatures; j++ {
			rows[i][j] = X.At(i, j)
		}
		switch y.At(i, 0) {
		case 0:
			labels[i] = -1
		case 1:
			labels[i] = 1
		default:
			return errors.NewValueError("SVC.Fit", "labels must be binary (0 or 1)")
		}
	}

	alphas := make([]float64, nSamples)
	b := 0.0
	rng := rand.New(rand.NewPCG(s.Seed, s.Seed))

	// f(x_i) with the current multipliers.
	decide := func(i int) float64 {
		sum := b
		for k := 0; k < nSamples; k++ {
			if alphas[k] > 0 {
				sum += alphas[k] * labels[k] * s.kernel(rows[k], rows[i])
			}
		}
		return sum
	}

	quietPasses := 0
	iter := 0
	for quietPasses < s.MaxPasses {
		if iter >= s.MaxIter {
			return errors.NewConvergenceError("SVC", s.ConfigString(), s.MaxIter)
		}
		iter++

		changed := 0
		for i := 0; i < nSamples; i++ {
			ei := decide(i) - labels[i]
			if !((labels[i]*ei < -s.Tol && alphas[i] < s.C) || (labels[i]*ei > s.Tol && alphas[i] > 0)) {
				continue
			}

			j := rng.IntN(nSamples - 1)
			if j >= i {
				j++
			}
			ej := decide(j) - labels[j]

			var lo, hi float64
			if labels[i] != labels[j] {
				lo = math.Max(0, alphas[j]-alphas[i])
				hi = math.Min(s.C, s.C+alphas[j]-alphas[i])
			} else {
				lo = math.Max(0, alphas[i]+alphas[j]-s.C)
				hi = math.Min(s.C, alphas[i]+alphas[j])
			}
			if lo == hi {
				continue
			}

			kii := s.kernel(rows[i], rows[i])
			kjj := s.kernel(rows[j], rows[j])
			kij := s.kernel(rows[i], rows[j])
			eta := 2*kij - kii - kjj
			if eta >= 0 {
				continue
			}

			oldAi, oldAj := alphas[i], alphas[j]
			aj := oldAj - labels[j]*(ei-ej)/eta
			if aj > hi {
				aj = hi
			} else if aj < lo {
				aj = lo
			}
			if math.Abs(aj-oldAj) < 1e-5 {
				continue
			}
			ai := oldAi + labels[i]*labels[j]*(oldAj-aj)

			alphas[i], alphas[j] = ai, aj

			b1 := b - ei - labels[i]*(ai-oldAi)*kii - labels[j]*(aj-oldAj)*kij
			b2 := b - ej - labels[i]*(ai-oldAi)*kij - labels[j]*(aj-oldAj)*kjj
			switch {
			case ai > 0 && ai < s.C:
				b = b1
			case aj > 0 && aj < s.C:
				b = b2
			default:
				b = (b1 + b2) / 2
			}
			changed++
		}

		if changed == 0 {
			quietPasses++
		} else {
			quietPasses = 0
		}
	}

	// Keep only the support vectors.
	var supportX [][]float64
	var supportY, supportA []float64
	for i := 0; i < nSamples; i++ {
		if alphas[i] > 0 {
			supportX = append(supportX, rows[i])
			supportY = append(supportY, labels[i])
			supportA = append(supportA, alphas[i])
		}
	}

	s.supportX = supportX
	s.supportY = supportY
	s.alphas = supportA
	s.b = b
	s.nFeatures = nFeatures
	s.SetFitted()
	return nil
}

// DecisionFunction returns the signed margin for each row of X.
func (s *SVC) DecisionFunction(X mat.Matrix) (*mat.VecDense, error) {
	if !s.IsFitted() {
		return nil, errors.NewNotFittedError("SVC", "DecisionFunction")
	}
	nSamples, nFeatures := X.Dims()
	if nFeatures != s.nFeatures {
		return nil, errors.NewDimensionError("SVC.DecisionFunction", s.nFeatures, nFeatures, 1)
	}

	out := mat.NewVecDense(nSamples, nil)
	x := make([]float64, nFeatures)
	for i := 0; i < nSamples; i++ {
		for j := 0; j < nFeatures; j++ {
			x[j] = X.At(i, j)
		}
		sum := s.b
		for k := range s.alphas {
			sum += s.alphas[k] * s.supportY[k] * s.kernel(s.supportX[k], x)
		}
		out.SetVec(i, sum)
	}
	return out, nil
}

// Predict returns hard labels (0 or 1) from the sign of the margin.
func (s *SVC) Predict(X mat.Matrix) (mat.Matrix, error) {
	dec, err := s.DecisionFunction(X)
	if err != nil {
		return nil, err
	}
	out := mat.NewDense(dec.Len(), 1, nil)
	for i := 0; i < dec.Len(); i++ {
		if dec.AtVec(i) >= 0 {
			out.Set(i, 0, 1)
		}
	}
	return out, nil
}

// PredictProba maps the margin through a logistic squash to a positive-class
// probability. The slope is fixed rather than Platt-calibrated; ranking (and
// therefore ROC/AUC) is unaffected.
func (s *SVC) PredictProba(X mat.Matrix) (mat.Matrix, error) {
	dec, err := s.DecisionFunction(X)
	if err != nil {
		return nil, err
	}
	out := mat.NewDense(dec.Len(), 1, nil)
	for i := 0; i < dec.Len(); i++ {
		out.Set(i, 0, 1/(1+math.Exp(-dec.AtVec(i))))
	}
	return out, nil
}

// NumSupportVectors returns the number of retained support vectors.
func (s *SVC) NumSupportVectors() int {
	return len(s.alphas)
}
