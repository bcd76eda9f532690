// Package preprocessing turns a cleaned Dataset into a fully numeric design
// matrix and derives the clinical threshold features used for exploration.
package preprocessing

import (
	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/diapredict/core/model"
	"github.com/YuminosukeSato/diapredict/dataset"
	"github.com/YuminosukeSato/diapredict/pkg/errors"
)

// Feature column names of the encoded design matrix, in column order.
// Categorical variables are expanded drop-first: one reference level per
// variable is omitted so no indicator column is a linear combination of the
// others (the margin classifier needs the matrix at full rank).
var featureNames = []string{
	"age",
	"bmi",
	"HbA1c_level",
	"blood_glucose_level",
	"gender_Male",
	"hypertension_Yes",
	"heart_disease_Yes",
	"smoking_history_Former",
	"smoking_history_Current",
	"smoking_history_Unknown",
}

// DesignMatrix is the encoded modeling input: one row per record, one column
// per numeric or indicator predictor, plus the label vector kept separately so
// it never leaks into the predictor expansion.
type DesignMatrix struct {
	X            *mat.Dense
	Y            *mat.VecDense
	FeatureNames []string
}

// NumRows returns the number of samples.
func (dm *DesignMatrix) NumRows() int {
	r, _ := dm.X.Dims()
	return r
}

// NumFeatures returns the number of predictor columns.
func (dm *DesignMatrix) NumFeatures() int {
	_, c := dm.X.Dims()
	return c
}

// Encoder produces the one-hot expanded design matrix from a cleaned Dataset.
// Numeric predictors pass through unchanged: no scaling is applied, since the
// downstream tree ensemble is scale-invariant and the kernel classifier is
// tuned through its bandwidth instead.
type Encoder struct {
	model.BaseEstimator
}

// NewEncoder creates a new Encoder.
func NewEncoder() *Encoder {
	return &Encoder{}
}

// FitTransform validates the categorical columns and encodes the dataset.
// A categorical column with a single observed level cannot produce a usable
// dummy set, so it fails with EncodingError before any encoding happens.
func (e *Encoder) FitTransform(ds *dataset.Dataset) (*DesignMatrix, error) {
	n := ds.Len()
	if n == 0 {
		return nil, errors.Wrap(errors.ErrEmptyData, "Encoder.FitTransform")
	}

	if err := checkVariance(ds); err != nil {
		return nil, err
	}

	X := mat.NewDense(n, len(featureNames), nil)
	Y := mat.NewVecDense(n, nil)

	for i := 0; i < n; i++ {
		r := ds.Record(i)
		X.Set(i, 0, r.Age)
		X.Set(i, 1, r.BMI)
		X.Set(i, 2, r.HbA1c)
		X.Set(i, 3, r.BloodGlucose)
		X.Set(i, 4, indicator(r.Gender == dataset.GenderMale))
		X.Set(i, 5, indicator(r.Hypertension))
		X.Set(i, 6, indicator(r.HeartDisease))
		X.Set(i, 7, indicator(r.Smoking == dataset.SmokingFormer))
		X.Set(i, 8, indicator(r.Smoking == dataset.SmokingCurrent))
		X.Set(i, 9, indicator(r.Smoking == dataset.SmokingUnknown))
		Y.SetVec(i, indicator(r.Diabetes))
	}

	e.SetFitted()
	names := make([]string, len(featureNames))
	copy(names, featureNames)
	return &DesignMatrix{X: X, Y: Y, FeatureNames: names}, nil
}

// checkVariance fails with EncodingError when a categorical column is
// degenerate (a single observed level across all rows).
func checkVariance(ds *dataset.Dataset) error {
	genders := map[dataset.Gender]bool{}
	smoking := map[dataset.Smoking]bool{}
	hypertension := map[bool]bool{}
	heartDisease := map[bool]bool{}

	for i := 0; i < ds.Len(); i++ {
		r := ds.Record(i)
		genders[r.Gender] = true
		smoking[r.Smoking] = true
		hypertension[r.Hypertension] = true
		heartDisease[r.HeartDisease] = true
	}

	switch {
	case len(genders) < 2:
		return errors.NewEncodingError(dataset.ColGender, "only one observed level")
	case len(hypertension) < 2:
		return errors.NewEncodingError(dataset.ColHypertension, "only one observed level")
	case len(heartDisease) < 2:
		return errors.NewEncodingError(dataset.ColHeartDisease, "only one observed level")
	case len(smoking) < 2:
		return errors.NewEncodingError(dataset.ColSmoking, "only one observed level")
	}
	return nil
}

func indicator(b bool) float64 {
	if b {
		return 1
	}
	return 0
}

// Decode recovers the original cleaned record from row i of the design
// matrix. The dropped reference level of each categorical is inferred when
// every indicator of the variable is zero, so encoding round-trips exactly.
func (dm *DesignMatrix) Decode(i int) dataset.Record {
	r := dataset.Record{
		Age:          dm.X.At(i, 0),
		BMI:          dm.X.At(i, 1),
		HbA1c:        dm.X.At(i, 2),
		BloodGlucose: dm.X.At(i, 3),
		Gender:       dataset.GenderFemale,
		Smoking:      dataset.SmokingNever,
	}
	if dm.X.At(i, 4) == 1 {
		r.Gender = dataset.GenderMale
	}
	r.Hypertension = dm.X.At(i, 5) == 1
	r.HeartDisease = dm.X.At(i, 6) == 1
	switch {
	case dm.X.At(i, 7) == 1:
		r.Smoking = dataset.SmokingFormer
	case dm.X.At(i, 8) == 1:
		r.Smoking = dataset.SmokingCurrent
	case dm.X.At(i, 9) == 1:
		r.Smoking = dataset.SmokingUnknown
	}
	r.Diabetes = dm.Y.AtVec(i) == 1
	return r
}
