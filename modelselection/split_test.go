package modelselection

import (
	"math"
	"strings"
	"testing"

	"github.com/YuminosukeSato/diapredict/pkg/errors"
)

func imbalancedLabels(n int, positiveRate float64) []float64 {
	y := make([]float64, n)
	positives := int(math.Round(float64(n) * positiveRate))
	for i := 0; i < positives; i++ {
		y[i] = 1
	}
	return y
}

func TestSplitIndicesSmallStratified(t *testing.T) {
	// 10 records, 8 positive and 2 negative, split 80/10/10: the positives
	// spread 6/1/1 and both negatives land in train, giving 8/1/1 overall.
	y := imbalancedLabels(10, 0.8)

	parts, err := SplitIndices(y, DefaultRatios, 1)
	if err != nil {
		t.Fatalf("SplitIndices() error = %v", err)
	}
	if len(parts[0]) != 8 || len(parts[1]) != 1 || len(parts[2]) != 1 {
		t.Fatalf("sizes = %d/%d/%d, want 8/1/1", len(parts[0]), len(parts[1]), len(parts[2]))
	}

	countPos := func(indices []int) int {
		pos := 0
		for _, i := range indices {
			if y[i] == 1 {
				pos++
			}
		}
		return pos
	}
	if got := countPos(parts[0]); got != 6 {
		t.Errorf("train positives = %d, want 6", got)
	}
	if got := countPos(parts[1]); got != 1 {
		t.Errorf("validation positives = %d, want 1", got)
	}
	if got := countPos(parts[2]); got != 1 {
		t.Errorf("test positives = %d, want 1", got)
	}
}

func TestSplitIndicesDisjointExhaustive(t *testing.T) {
	y := imbalancedLabels(537, 0.13)

	parts, err := SplitIndices(y, DefaultRatios, 9)
	if err != nil {
		t.Fatalf("SplitIndices() error = %v", err)
	}

	seen := make([]int, len(y))
	total := 0
	for _, part := range parts {
		for _, i := range part {
			seen[i]++
			total++
		}
	}
	if total != len(y) {
		t.Fatalf("parts cover %d indices, want %d", total, len(y))
	}
	for i, c := range seen {
		if c != 1 {
			t.Fatalf("index %d appears %d times", i, c)
		}
	}
}

func TestSplitIndicesPreservesProportions(t *testing.T) {
	y := imbalancedLabels(2000, 0.085)
	globalRate := 0.085

	parts, err := SplitIndices(y, DefaultRatios, 3)
	if err != nil {
		t.Fatalf("SplitIndices() error = %v", err)
	}

	for k, part := range parts {
		pos := 0
		for _, i := range part {
			if y[i] == 1 {
				pos++
			}
		}
		rate := float64(pos) / float64(len(part))
		if math.Abs(rate-globalRate) > 0.01 {
			t.Errorf("part %d positive rate = %v, want within 0.01 of %v", k, rate, globalRate)
		}
	}
}

func TestSplitIndicesDeterministic(t *testing.T) {
	y := imbalancedLabels(400, 0.3)

	a, err := SplitIndices(y, DefaultRatios, 77)
	if err != nil {
		t.Fatalf("SplitIndices() error = %v", err)
	}
	b, err := SplitIndices(y, DefaultRatios, 77)
	if err != nil {
		t.Fatalf("SplitIndices() error = %v", err)
	}
	for k := range a {
		if len(a[k]) != len(b[k]) {
			t.Fatalf("part %d sizes differ: %d vs %d", k, len(a[k]), len(b[k]))
		}
		for i := range a[k] {
			if a[k][i] != b[k][i] {
				t.Fatalf("part %d differs at position %d: %d vs %d", k, i, a[k][i], b[k][i])
			}
		}
	}
}

func TestSplitIndicesInvalidRatios(t *testing.T) {
	y := imbalancedLabels(100, 0.5)

	tests := []struct {
		name   string
		ratios Ratios
	}{
		{"sum above one", Ratios{0.8, 0.2, 0.2}},
		{"sum below one", Ratios{0.5, 0.2, 0.2}},
		{"zero ratio", Ratios{0.9, 0.1, 0}},
		{"negative ratio", Ratios{1.1, -0.05, -0.05}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := SplitIndices(y, tt.ratios, 1)
			var target *errors.InvalidRatioError
			if !errors.As(err, &target) {
				t.Fatalf("error = %v, want InvalidRatioError", err)
			}
		})
	}
}

func TestSplitIndicesEmptyInput(t *testing.T) {
	if _, err := SplitIndices(nil, DefaultRatios, 1); err == nil {
		t.Error("expected error for empty labels")
	}
}

func TestTrainValTestSplitTooFewRows(t *testing.T) {
	// Two rows apportion 2/0/0 under the default ratios; materializing an
	// empty subset must fail with a structured error, not panic.
	dm := separableMatrix(2, 1)

	_, _, _, err := TrainValTestSplit(dm, DefaultRatios, 1)
	var target *errors.ValueError
	if !errors.As(err, &target) {
		t.Fatalf("error = %v, want ValueError", err)
	}
	if !strings.Contains(target.Message, "validation") {
		t.Errorf("message %q does not name the empty subset", target.Message)
	}
}

func TestTrainValTestSplitSizes(t *testing.T) {
	dm := separableMatrix(100, 2)

	train, val, test, err := TrainValTestSplit(dm, DefaultRatios, 3)
	if err != nil {
		t.Fatalf("TrainValTestSplit() error = %v", err)
	}
	if train.NumRows() != 80 || val.NumRows() != 10 || test.NumRows() != 10 {
		t.Errorf("sizes = %d/%d/%d, want 80/10/10",
			train.NumRows(), val.NumRows(), test.NumRows())
	}
}

func TestApportionExactRatios(t *testing.T) {
	tests := []struct {
		n      int
		ratios Ratios
		want   [3]int
	}{
		{10, Ratios{0.8, 0.1, 0.1}, [3]int{8, 1, 1}},
		{8, Ratios{0.8, 0.1, 0.1}, [3]int{6, 1, 1}},
		{2, Ratios{0.8, 0.1, 0.1}, [3]int{2, 0, 0}},
		{100, Ratios{0.8, 0.1, 0.1}, [3]int{80, 10, 10}},
		{7, Ratios{0.5, 0.25, 0.25}, [3]int{3, 2, 2}},
	}
	for _, tt := range tests {
		got := apportion(tt.n, tt.ratios)
		if got != tt.want {
			t.Errorf("apportion(%d, %v) = %v, want %v", tt.n, tt.ratios, got, tt.want)
		}
	}
}
