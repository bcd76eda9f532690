package svm

import (
	"math/rand/v2"
	"testing"

	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/diapredict/pkg/errors"
)

// twoClusters builds a well-separated two-cluster dataset.
func twoClusters(n int, seed uint64) (*mat.Dense, *mat.Dense) {
	rng := rand.New(rand.NewPCG(seed, seed))
	X := mat.NewDense(n, 2, nil)
	y := mat.NewDense(n, 1, nil)
	for i := 0; i < n; i++ {
		label := float64(i % 2)
		y.Set(i, 0, label)
		X.Set(i, 0, 3*label+rng.Float64())
		X.Set(i, 1, 3*label+rng.Float64())
	}
	return X, y
}

func TestSVCFitPredict(t *testing.T) {
	X, y := twoClusters(80, 1)

	clf := NewSVC(WithSVCSeed(7))
	if err := clf.Fit(X, y); err != nil {
		t.Fatalf("Fit() error = %v", err)
	}
	if !clf.IsFitted() {
		t.Error("classifier not marked fitted")
	}
	if clf.NumSupportVectors() == 0 {
		t.Error("no support vectors retained")
	}

	pred, err := clf.Predict(X)
	if err != nil {
		t.Fatalf("Predict() error = %v", err)
	}
	correct := 0
	for i := 0; i < 80; i++ {
		if pred.At(i, 0) == y.At(i, 0) {
			correct++
		}
	}
	if acc := float64(correct) / 80; acc < 0.95 {
		t.Errorf("training accuracy = %v on separable data, want >= 0.95", acc)
	}
}

func TestSVCPredictProba(t *testing.T) {
	X, y := twoClusters(60, 2)

	clf := NewSVC(WithC(10), WithGamma(0.5), WithSVCSeed(3))
	if err := clf.Fit(X, y); err != nil {
		t.Fatalf("Fit() error = %v", err)
	}

	proba, err := clf.PredictProba(X)
	if err != nil {
		t.Fatalf("PredictProba() error = %v", err)
	}
	dec, err := clf.DecisionFunction(X)
	if err != nil {
		t.Fatalf("DecisionFunction() error = %v", err)
	}
	for i := 0; i < 60; i++ {
		p := proba.At(i, 0)
		if p < 0 || p > 1 {
			t.Fatalf("probability %v outside [0,1] at row %d", p, i)
		}
		// The squash must preserve the decision sign.
		if (dec.AtVec(i) >= 0) != (p >= 0.5) {
			t.Fatalf("probability %v disagrees with margin %v at row %d", p, dec.AtVec(i), i)
		}
	}
}

func TestSVCDeterministic(t *testing.T) {
	X, y := twoClusters(50, 4)

	fit := func() []float64 {
		clf := NewSVC(WithSVCSeed(42))
		if err := clf.Fit(X, y); err != nil {
			t.Fatalf("Fit() error = %v", err)
		}
		dec, err := clf.DecisionFunction(X)
		if err != nil {
			t.Fatalf("DecisionFunction() error = %v", err)
		}
		out := make([]float64, 50)
		for i := range out {
			out[i] = dec.AtVec(i)
		}
		return out
	}

	a, b := fit(), fit()
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("same seed produced different margins at row %d: %v vs %v", i, a[i], b[i])
		}
	}
}

func TestSVCConvergenceError(t *testing.T) {
	// A single optimization sweep cannot satisfy the stopping criterion on
	// overlapping classes, so the iteration cap must surface as
	// ConvergenceError.
	rng := rand.New(rand.NewPCG(9, 9))
	X := mat.NewDense(40, 2, nil)
	y := mat.NewDense(40, 1, nil)
	for i := 0; i < 40; i++ {
		y.Set(i, 0, float64(i%2))
		X.Set(i, 0, rng.Float64())
		X.Set(i, 1, rng.Float64())
	}

	clf := NewSVC(WithMaxIter(1), WithSVCSeed(1))
	err := clf.Fit(X, y)
	var target *errors.ConvergenceError
	if !errors.As(err, &target) {
		t.Fatalf("error = %v, want ConvergenceError", err)
	}
	if target.Algorithm != "SVC" {
		t.Errorf("algorithm = %q, want SVC", target.Algorithm)
	}
	if clf.IsFitted() {
		t.Error("failed fit must not mark the classifier fitted")
	}
}

func TestSVCValidation(t *testing.T) {
	clf := NewSVC()

	if _, err := clf.Predict(mat.NewDense(1, 2, nil)); err == nil {
		t.Error("Predict before Fit should fail")
	}

	X := mat.NewDense(4, 2, []float64{0, 0, 0, 1, 1, 0, 1, 1})
	badY := mat.NewDense(3, 1, nil)
	if err := clf.Fit(X, badY); err == nil {
		t.Error("Fit with mismatched rows should fail")
	}

	nonBinary := mat.NewDense(4, 1, []float64{0, 1, 2, 1})
	if err := clf.Fit(X, nonBinary); err == nil {
		t.Error("Fit with non-binary labels should fail")
	}

	bad := NewSVC(WithC(-1))
	goodY := mat.NewDense(4, 1, []float64{0, 1, 0, 1})
	if err := bad.Fit(X, goodY); err == nil {
		t.Error("Fit with non-positive C should fail")
	}
}

func TestSVCConfigString(t *testing.T) {
	clf := NewSVC(WithC(10), WithGamma(0.1))
	got := clf.ConfigString()
	want := "C=10 gamma=0.1 tol=0.001"
	if got != want {
		t.Errorf("ConfigString() = %q, want %q", got, want)
	}
}
