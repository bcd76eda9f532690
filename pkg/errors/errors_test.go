package errors

import (
	"strings"
	"sync"
	"testing"
)

func TestWarningHandler(t *testing.T) {
	var mu sync.Mutex
	var captured []error

	SetWarningHandler(func(w error) {
		mu.Lock()
		defer mu.Unlock()
		captured = append(captured, w)
	})
	defer SetWarningHandler(nil)

	w := NewConvergenceWarning("SVC", 1000, "kkt tolerance not reached")
	Warn(w)

	mu.Lock()
	defer mu.Unlock()
	if len(captured) != 1 {
		t.Fatalf("expected 1 captured warning, got %d", len(captured))
	}
	if !strings.Contains(captured[0].Error(), "SVC") {
		t.Errorf("warning message missing algorithm name: %v", captured[0])
	}
}

func TestMalformedInputError(t *testing.T) {
	err := NewMalformedInputError("data.csv", []string{"bmi", "gender"}, "")

	var target *MalformedInputError
	if !As(err, &target) {
		t.Fatalf("error does not unwrap to *MalformedInputError: %v", err)
	}
	if len(target.Missing) != 2 {
		t.Errorf("expected 2 missing columns, got %d", len(target.Missing))
	}
	for _, col := range []string{"data.csv", "bmi", "gender"} {
		if !strings.Contains(err.Error(), col) {
			t.Errorf("error message missing %q: %v", col, err)
		}
	}
}

func TestEncodingError(t *testing.T) {
	err := NewEncodingError("smoking_history", "only one observed level")

	var target *EncodingError
	if !As(err, &target) {
		t.Fatalf("error does not unwrap to *EncodingError: %v", err)
	}
	if target.Column != "smoking_history" {
		t.Errorf("column = %q, want smoking_history", target.Column)
	}
}

func TestInvalidRatioError(t *testing.T) {
	err := NewInvalidRatioError([3]float64{0.5, 0.2, 0.2}, "ratios must sum to 1")

	var target *InvalidRatioError
	if !As(err, &target) {
		t.Fatalf("error does not unwrap to *InvalidRatioError: %v", err)
	}
	if !strings.Contains(err.Error(), "sum to 1") {
		t.Errorf("error message missing reason: %v", err)
	}
}

func TestInvalidMetricError(t *testing.T) {
	err := NewInvalidMetricError("f2_score", []string{"accuracy", "sensitivity", "specificity"})

	var target *InvalidMetricError
	if !As(err, &target) {
		t.Fatalf("error does not unwrap to *InvalidMetricError: %v", err)
	}
	if !strings.Contains(err.Error(), "f2_score") {
		t.Errorf("error message missing metric name: %v", err)
	}
	if !strings.Contains(err.Error(), "accuracy") {
		t.Errorf("error message missing known metrics: %v", err)
	}
}

func TestConvergenceError(t *testing.T) {
	err := NewConvergenceError("SVC", "C=10.0 gamma=0.1", 10000)

	var target *ConvergenceError
	if !As(err, &target) {
		t.Fatalf("error does not unwrap to *ConvergenceError: %v", err)
	}
	if target.Iterations != 10000 {
		t.Errorf("iterations = %d, want 10000", target.Iterations)
	}
	if !strings.Contains(err.Error(), "C=10.0 gamma=0.1") {
		t.Errorf("error message missing configuration context: %v", err)
	}
}

func TestNotFittedError(t *testing.T) {
	err := NewNotFittedError("RandomForestClassifier", "Predict")
	if !strings.Contains(err.Error(), "not fitted") {
		t.Errorf("unexpected message: %v", err)
	}
}

func TestErrorWrapping(t *testing.T) {
	base := NewEncodingError("gender", "zero variance")
	wrapped := Wrap(base, "transform stage")

	var target *EncodingError
	if !As(wrapped, &target) {
		t.Fatalf("wrapped error lost the EncodingError: %v", wrapped)
	}
	if !strings.Contains(wrapped.Error(), "transform stage") {
		t.Errorf("wrapped error missing context: %v", wrapped)
	}
}
