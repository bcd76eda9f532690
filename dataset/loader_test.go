package dataset

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/YuminosukeSato/diapredict/pkg/errors"
)

const header = "age,gender,hypertension,heart_disease,smoking_history,bmi,HbA1c_level,blood_glucose_level,diabetes\n"

func writeCSV(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "data.csv")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadAndClean(t *testing.T) {
	path := writeCSV(t, header+
		"44.0,Female,0,0,never,27.3,6.5,100,0\n"+
		"61.0,Male,1,0,former,32.1,7.1,210,1\n"+
		"38.0,Other,0,0,current,24.0,5.0,90,0\n"+ // dropped: gender outside {Male, Female}
		"50.0,Male,0,1,ever,29.9,6.0,155,0\n"+
		"29.0,Female,0,0,not current,22.5,5.5,110,0\n"+
		"71.0,Female,1,1,No Info,31.0,8.8,260,1\n")

	ds, report, err := LoadAndClean(path)
	if err != nil {
		t.Fatalf("LoadAndClean() error = %v", err)
	}

	if report.RowsRead != 6 {
		t.Errorf("RowsRead = %d, want 6", report.RowsRead)
	}
	if report.DroppedGender != 1 {
		t.Errorf("DroppedGender = %d, want 1", report.DroppedGender)
	}
	if report.RowsKept != 5 || ds.Len() != 5 {
		t.Errorf("RowsKept = %d, Len = %d, want 5", report.RowsKept, ds.Len())
	}

	// Cleaned invariants: gender and smoking restricted to their level sets.
	for i := 0; i < ds.Len(); i++ {
		r := ds.Record(i)
		if r.Gender != GenderMale && r.Gender != GenderFemale {
			t.Errorf("record %d: gender %v outside level set", i, r.Gender)
		}
		switch r.Smoking {
		case SmokingNever, SmokingFormer, SmokingCurrent, SmokingUnknown:
		default:
			t.Errorf("record %d: smoking %v outside level set", i, r.Smoking)
		}
	}

	// Consolidation: ever and "not current" both collapse to Former.
	if got := ds.Record(2).Smoking; got != SmokingFormer {
		t.Errorf("ever -> %v, want Former", got)
	}
	if got := ds.Record(3).Smoking; got != SmokingFormer {
		t.Errorf("not current -> %v, want Former", got)
	}
	if got := ds.Record(4).Smoking; got != SmokingUnknown {
		t.Errorf("No Info -> %v, want Unknown", got)
	}

	// Binary columns become typed booleans.
	if r := ds.Record(1); !r.Hypertension || r.HeartDisease || !r.Diabetes {
		t.Errorf("row 2 binary columns misparsed: %+v", r)
	}

	if got := ds.PositiveRate(); got != 0.4 {
		t.Errorf("PositiveRate = %v, want 0.4", got)
	}
}

func TestLoadAndCleanMissingColumns(t *testing.T) {
	path := writeCSV(t, "age,gender,hypertension\n44.0,Female,0\n")

	_, _, err := LoadAndClean(path)
	var target *errors.MalformedInputError
	if !errors.As(err, &target) {
		t.Fatalf("error = %v, want MalformedInputError", err)
	}
	if len(target.Missing) != 6 {
		t.Errorf("missing = %v, want 6 columns", target.Missing)
	}
}

func TestLoadAndCleanBadCells(t *testing.T) {
	tests := []struct {
		name string
		row  string
	}{
		{"unparsable bmi", "44.0,Female,0,0,never,heavy,6.5,100,0"},
		{"non-binary hypertension", "44.0,Female,2,0,never,27.3,6.5,100,0"},
		{"unknown smoking level", "44.0,Female,0,0,sometimes,27.3,6.5,100,0"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeCSV(t, header+tt.row+"\n")
			_, _, err := LoadAndClean(path)
			var target *errors.MalformedInputError
			if !errors.As(err, &target) {
				t.Fatalf("error = %v, want MalformedInputError", err)
			}
		})
	}
}

func TestLoadAndCleanEmptyFile(t *testing.T) {
	path := writeCSV(t, "")
	_, _, err := LoadAndClean(path)
	var target *errors.MalformedInputError
	if !errors.As(err, &target) {
		t.Fatalf("error = %v, want MalformedInputError", err)
	}
}

func TestLabelRendering(t *testing.T) {
	if BoolLabel(true) != "Yes" || BoolLabel(false) != "No" {
		t.Error("BoolLabel mapping broken")
	}
	if DiabetesLabel(true) != "Positive" || DiabetesLabel(false) != "Negative" {
		t.Error("DiabetesLabel mapping broken")
	}
}
