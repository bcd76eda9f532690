// Package dataset implements loading and cleaning of the diabetes prediction
// table. Raw CSV rows are validated and repaired into typed records with
// fixed, versioned categorical level sets; every later pipeline stage consumes
// the cleaned Dataset and never re-infers levels from raw strings.
package dataset

import (
	"fmt"
)

// Gender is the cleaned gender category. Rows outside {Male, Female} are
// dropped during cleaning (negligible cardinality in the source data) and the
// drop is counted in the CleanReport.
type Gender int8

const (
	GenderFemale Gender = iota
	GenderMale
)

// GenderLevels is the fixed level set, reference level first.
var GenderLevels = []Gender{GenderFemale, GenderMale}

func (g Gender) String() string {
	switch g {
	case GenderFemale:
		return "Female"
	case GenderMale:
		return "Male"
	}
	return fmt.Sprintf("Gender(%d)", int8(g))
}

// Smoking is the consolidated smoking-history category. The raw data carries
// six levels; `ever`, `former` and `not current` collapse to Former.
type Smoking int8

const (
	SmokingNever Smoking = iota
	SmokingFormer
	SmokingCurrent
	SmokingUnknown
)

// SmokingLevels is the fixed level set, reference level first.
var SmokingLevels = []Smoking{SmokingNever, SmokingFormer, SmokingCurrent, SmokingUnknown}

func (s Smoking) String() string {
	switch s {
	case SmokingNever:
		return "Never"
	case SmokingFormer:
		return "Former"
	case SmokingCurrent:
		return "Current"
	case SmokingUnknown:
		return "Unknown"
	}
	return fmt.Sprintf("Smoking(%d)", int8(s))
}

// BoolLabel renders a cleaned binary column the way the report surface prints
// it: the raw 0/1 integers become named categories.
func BoolLabel(b bool) string {
	if b {
		return "Yes"
	}
	return "No"
}

// DiabetesLabel renders the label column.
func DiabetesLabel(b bool) string {
	if b {
		return "Positive"
	}
	return "Negative"
}

// Record is one cleaned patient observation.
type Record struct {
	Age          float64
	Gender       Gender
	Hypertension bool
	HeartDisease bool
	Smoking      Smoking
	BMI          float64
	HbA1c        float64
	BloodGlucose float64
	Diabetes     bool
}

// Dataset is an immutable ordered sequence of cleaned records. Stages that
// derive new data return new values; nothing mutates a Dataset in place.
type Dataset struct {
	records []Record
}

// New wraps the given records in a Dataset. The slice is copied so later
// mutation of the argument cannot reach the Dataset.
func New(records []Record) *Dataset {
	rs := make([]Record, len(records))
	copy(rs, records)
	return &Dataset{records: rs}
}

// Len returns the number of records.
func (d *Dataset) Len() int {
	return len(d.records)
}

// Record returns the i-th record by value.
func (d *Dataset) Record(i int) Record {
	return d.records[i]
}

// Labels returns the diabetes labels as a float slice (1 = Positive).
func (d *Dataset) Labels() []float64 {
	ys := make([]float64, len(d.records))
	for i, r := range d.records {
		if r.Diabetes {
			ys[i] = 1
		}
	}
	return ys
}

// PositiveRate returns the fraction of Positive labels.
func (d *Dataset) PositiveRate() float64 {
	if len(d.records) == 0 {
		return 0
	}
	pos := 0
	for _, r := range d.records {
		if r.Diabetes {
			pos++
		}
	}
	return float64(pos) / float64(len(d.records))
}
