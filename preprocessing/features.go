package preprocessing

import (
	"fmt"

	"github.com/YuminosukeSato/diapredict/dataset"
)

// Clinical thresholds for the derived exploration flags.
const (
	// HbA1cThreshold is the diagnostic cut for elevated HbA1c (percent).
	HbA1cThreshold = 6.5
	// GlucoseThreshold is the diagnostic cut for elevated blood glucose (mg/dL).
	GlucoseThreshold = 200
)

// AgeGroup is an ordinal age bin.
type AgeGroup int8

const (
	AgeUnder30 AgeGroup = iota
	Age30to44
	Age45to59
	Age60Plus
)

func (a AgeGroup) String() string {
	switch a {
	case AgeUnder30:
		return "<30"
	case Age30to44:
		return "30-44"
	case Age45to59:
		return "45-59"
	case Age60Plus:
		return "60+"
	}
	return fmt.Sprintf("AgeGroup(%d)", int8(a))
}

// BMICategory is the standard ordinal BMI bin.
type BMICategory int8

const (
	BMIUnderweight BMICategory = iota
	BMINormal
	BMIOverweight
	BMIObese
)

func (b BMICategory) String() string {
	switch b {
	case BMIUnderweight:
		return "Underweight"
	case BMINormal:
		return "Normal"
	case BMIOverweight:
		return "Overweight"
	case BMIObese:
		return "Obese"
	}
	return fmt.Sprintf("BMICategory(%d)", int8(b))
}

// DerivedFeatures are the per-record exploration flags and bins. They feed the
// EDA summaries only and are deliberately excluded from the modeling matrix:
// HighHbA1c and HighGlucose are deterministic functions of columns the models
// already see.
type DerivedFeatures struct {
	HighHbA1c   bool
	HighGlucose bool
	AgeGroup    AgeGroup
	BMICategory BMICategory
}

// Derive computes the derived feature set for every record in order.
func Derive(ds *dataset.Dataset) []DerivedFeatures {
	out := make([]DerivedFeatures, ds.Len())
	for i := range out {
		r := ds.Record(i)
		out[i] = DerivedFeatures{
			HighHbA1c:   r.HbA1c >= HbA1cThreshold,
			HighGlucose: r.BloodGlucose >= GlucoseThreshold,
			AgeGroup:    binAge(r.Age),
			BMICategory: binBMI(r.BMI),
		}
	}
	return out
}

func binAge(age float64) AgeGroup {
	switch {
	case age < 30:
		return AgeUnder30
	case age < 45:
		return Age30to44
	case age < 60:
		return Age45to59
	}
	return Age60Plus
}

func binBMI(bmi float64) BMICategory {
	switch {
	case bmi < 18.5:
		return BMIUnderweight
	case bmi < 25:
		return BMINormal
	case bmi < 30:
		return BMIOverweight
	}
	return BMIObese
}
