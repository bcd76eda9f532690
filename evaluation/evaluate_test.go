package evaluation

import (
	"math/rand/v2"
	"strings"
	"testing"

	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/diapredict/ensemble"
	"github.com/YuminosukeSato/diapredict/preprocessing"
)

func fittedForest(t *testing.T, seed uint64) (*ensemble.RandomForestClassifier, *preprocessing.DesignMatrix) {
	t.Helper()
	rng := rand.New(rand.NewPCG(seed, seed))
	X := mat.NewDense(100, 3, nil)
	Y := mat.NewVecDense(100, nil)
	for i := 0; i < 100; i++ {
		label := float64(i % 2)
		Y.SetVec(i, label)
		for j := 0; j < 3; j++ {
			X.Set(i, j, 3*label+rng.Float64())
		}
	}
	dm := &preprocessing.DesignMatrix{X: X, Y: Y, FeatureNames: []string{"f0", "f1", "f2"}}

	rf := ensemble.NewRandomForestClassifier(ensemble.WithNumTrees(20), ensemble.WithSeed(seed))
	yCol := mat.NewDense(100, 1, nil)
	for i := 0; i < 100; i++ {
		yCol.Set(i, 0, Y.AtVec(i))
	}
	if err := rf.Fit(X, yCol); err != nil {
		t.Fatalf("Fit() error = %v", err)
	}
	return rf, dm
}

func TestEvaluateReport(t *testing.T) {
	rf, dm := fittedForest(t, 1)

	report, err := Evaluate("random_forest", rf, dm, Options{Resamples: 200, Seed: 42})
	if err != nil {
		t.Fatalf("Evaluate() error = %v", err)
	}

	if report.NumSamples != 100 {
		t.Errorf("NumSamples = %d, want 100", report.NumSamples)
	}
	if report.Confusion.Total() != 100 {
		t.Errorf("confusion total = %d, want 100", report.Confusion.Total())
	}
	// Training data is separable, so every point metric should be high.
	for _, iv := range []struct {
		name  string
		point float64
	}{
		{"accuracy", report.Accuracy.Point},
		{"sensitivity", report.Sensitivity.Point},
		{"specificity", report.Specificity.Point},
		{"auc", report.AUC.Point},
	} {
		if iv.point < 0.9 {
			t.Errorf("%s = %v, want >= 0.9", iv.name, iv.point)
		}
	}
	if report.Accuracy.Lower > report.Accuracy.Point || report.Accuracy.Point > report.Accuracy.Upper {
		t.Errorf("accuracy interval out of order: %+v", report.Accuracy)
	}
	if len(report.ROC) == 0 {
		t.Error("empty ROC curve")
	}
	first, last := report.ROC[0], report.ROC[len(report.ROC)-1]
	if first.FPR != 0 || first.TPR != 0 || last.FPR != 1 || last.TPR != 1 {
		t.Errorf("ROC endpoints (%v,%v)..(%v,%v), want (0,0)..(1,1)",
			first.FPR, first.TPR, last.FPR, last.TPR)
	}
}

func TestEvaluateDeterministic(t *testing.T) {
	rf, dm := fittedForest(t, 2)

	a, err := Evaluate("rf", rf, dm, Options{Resamples: 150, Seed: 9})
	if err != nil {
		t.Fatalf("Evaluate() error = %v", err)
	}
	b, err := Evaluate("rf", rf, dm, Options{Resamples: 150, Seed: 9})
	if err != nil {
		t.Fatalf("Evaluate() error = %v", err)
	}
	if a.Accuracy != b.Accuracy || a.AUC != b.AUC {
		t.Errorf("same seed produced different intervals:\n%+v\n%+v", a, b)
	}
}

func TestEvaluateEmptyData(t *testing.T) {
	rf, _ := fittedForest(t, 3)
	empty := &preprocessing.DesignMatrix{
		X:            &mat.Dense{},
		Y:            &mat.VecDense{},
		FeatureNames: nil,
	}
	if _, err := Evaluate("rf", rf, empty, Options{}); err == nil {
		t.Error("expected error for empty evaluation set")
	}
}

func TestReportString(t *testing.T) {
	rf, dm := fittedForest(t, 4)

	report, err := Evaluate("random_forest", rf, dm, Options{Resamples: 100, Seed: 1})
	if err != nil {
		t.Fatalf("Evaluate() error = %v", err)
	}
	text := report.String()
	for _, want := range []string{"random_forest", "predicted+", "accuracy", "sensitivity", "specificity", "auc", "95% CI"} {
		if !strings.Contains(text, want) {
			t.Errorf("report text missing %q:\n%s", want, text)
		}
	}
}
