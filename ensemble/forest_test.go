package ensemble

import (
	"math/rand/v2"
	"testing"

	"gonum.org/v1/gonum/mat"
)

// separableData builds a two-cluster dataset the forest should classify
// almost perfectly.
func separableData(n int, seed uint64) (*mat.Dense, *mat.Dense) {
	rng := rand.New(rand.NewPCG(seed, seed))
	X := mat.NewDense(n, 3, nil)
	y := mat.NewDense(n, 1, nil)
	for i := 0; i < n; i++ {
		label := float64(i % 2)
		y.Set(i, 0, label)
		for j := 0; j < 3; j++ {
			X.Set(i, j, 4*label+rng.Float64())
		}
	}
	return X, y
}

func TestRandomForestFitPredict(t *testing.T) {
	X, y := separableData(200, 1)

	rf := NewRandomForestClassifier(WithNumTrees(50), WithSeed(7))
	if err := rf.Fit(X, y); err != nil {
		t.Fatalf("Fit() error = %v", err)
	}
	if !rf.IsFitted() {
		t.Error("forest not marked fitted")
	}

	pred, err := rf.Predict(X)
	if err != nil {
		t.Fatalf("Predict() error = %v", err)
	}
	correct := 0
	for i := 0; i < 200; i++ {
		if pred.At(i, 0) == y.At(i, 0) {
			correct++
		}
	}
	if acc := float64(correct) / 200; acc < 0.95 {
		t.Errorf("training accuracy = %v on separable data, want >= 0.95", acc)
	}
}

func TestRandomForestPredictProbaRange(t *testing.T) {
	X, y := separableData(100, 2)

	rf := NewRandomForestClassifier(WithNumTrees(20), WithSeed(3))
	if err := rf.Fit(X, y); err != nil {
		t.Fatalf("Fit() error = %v", err)
	}

	proba, err := rf.PredictProba(X)
	if err != nil {
		t.Fatalf("PredictProba() error = %v", err)
	}
	for i := 0; i < 100; i++ {
		p := proba.At(i, 0)
		if p < 0 || p > 1 {
			t.Fatalf("probability %v outside [0,1] at row %d", p, i)
		}
	}
}

func TestRandomForestDeterministic(t *testing.T) {
	X, y := separableData(120, 4)

	fit := func() []float64 {
		rf := NewRandomForestClassifier(WithNumTrees(30), WithSeed(42), WithMaxFeatures(2))
		if err := rf.Fit(X, y); err != nil {
			t.Fatalf("Fit() error = %v", err)
		}
		proba, err := rf.PredictProba(X)
		if err != nil {
			t.Fatalf("PredictProba() error = %v", err)
		}
		out := make([]float64, 120)
		for i := range out {
			out[i] = proba.At(i, 0)
		}
		return out
	}

	a, b := fit(), fit()
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("same seed produced different probabilities at row %d: %v vs %v", i, a[i], b[i])
		}
	}
}

func TestRandomForestFeatureImportances(t *testing.T) {
	// Only feature 0 carries signal; it should dominate the importances.
	rng := rand.New(rand.NewPCG(5, 5))
	X := mat.NewDense(200, 3, nil)
	y := mat.NewDense(200, 1, nil)
	for i := 0; i < 200; i++ {
		label := float64(i % 2)
		y.Set(i, 0, label)
		X.Set(i, 0, 3*label+rng.Float64())
		X.Set(i, 1, rng.Float64())
		X.Set(i, 2, rng.Float64())
	}

	rf := NewRandomForestClassifier(WithNumTrees(40), WithSeed(9))
	if err := rf.Fit(X, y); err != nil {
		t.Fatalf("Fit() error = %v", err)
	}
	imp, err := rf.FeatureImportances()
	if err != nil {
		t.Fatalf("FeatureImportances() error = %v", err)
	}
	if len(imp) != 3 {
		t.Fatalf("got %d importances, want 3", len(imp))
	}
	if imp[0] < imp[1] || imp[0] < imp[2] {
		t.Errorf("informative feature not dominant: %v", imp)
	}
}

func TestRandomForestValidation(t *testing.T) {
	rf := NewRandomForestClassifier()

	if _, err := rf.Predict(mat.NewDense(1, 3, nil)); err == nil {
		t.Error("Predict before Fit should fail")
	}

	X := mat.NewDense(4, 2, []float64{1, 2, 3, 4, 5, 6, 7, 8})
	badY := mat.NewDense(3, 1, nil)
	if err := rf.Fit(X, badY); err == nil {
		t.Error("Fit with mismatched rows should fail")
	}

	nonBinary := mat.NewDense(4, 1, []float64{0, 1, 2, 1})
	if err := rf.Fit(X, nonBinary); err == nil {
		t.Error("Fit with non-binary labels should fail")
	}
}
