package dataset

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/YuminosukeSato/diapredict/pkg/errors"
)

// Column names expected in the input file. Order is irrelevant; names are fixed.
const (
	ColAge          = "age"
	ColGender       = "gender"
	ColHypertension = "hypertension"
	ColHeartDisease = "heart_disease"
	ColSmoking      = "smoking_history"
	ColBMI          = "bmi"
	ColHbA1c        = "HbA1c_level"
	ColBloodGlucose = "blood_glucose_level"
	ColDiabetes     = "diabetes"
)

var requiredColumns = []string{
	ColAge, ColGender, ColHypertension, ColHeartDisease, ColSmoking,
	ColBMI, ColHbA1c, ColBloodGlucose, ColDiabetes,
}

// CleanReport summarizes what cleaning did to the raw table. Drops are part of
// the loader's contract: callers must report them, not absorb them silently.
type CleanReport struct {
	// RowsRead is the number of data rows in the file (header excluded).
	RowsRead int
	// RowsKept is the number of rows surviving cleaning.
	RowsKept int
	// DroppedGender counts rows removed because the gender value was outside
	// {Male, Female}.
	DroppedGender int
}

// LoadAndClean reads the delimited input file at path, validates its header,
// and cleans every row into a typed Record.
//
// Policy, in cleaning order:
//   - a missing required column is a MalformedInputError (fatal);
//   - rows with a gender outside {Male, Female} are dropped and counted;
//   - smoking history raw levels {ever, former, not current} collapse to
//     Former, never->Never, current->Current, "No Info"->Unknown;
//   - binary integer columns (hypertension, heart_disease, diabetes) accept
//     exactly "0" or "1";
//   - any other unparsable cell is a MalformedInputError naming the row and
//     column, since the cleaned dataset must contain no missing values.
func LoadAndClean(path string) (*Dataset, *CleanReport, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, errors.Wrapf(err, "opening dataset %s", path)
	}
	defer f.Close()

	return loadAndClean(f, path)
}

func loadAndClean(r io.Reader, path string) (*Dataset, *CleanReport, error) {
	cr := csv.NewReader(r)
	cr.ReuseRecord = true

	header, err := cr.Read()
	if err == io.EOF {
		return nil, nil, errors.NewMalformedInputError(path, nil, "empty file")
	}
	if err != nil {
		return nil, nil, errors.Wrapf(err, "reading header of %s", path)
	}

	colIdx := make(map[string]int, len(header))
	for i, name := range header {
		colIdx[name] = i
	}
	var missing []string
	for _, name := range requiredColumns {
		if _, ok := colIdx[name]; !ok {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return nil, nil, errors.NewMalformedInputError(path, missing, "")
	}

	report := &CleanReport{}
	var records []Record

	for line := 2; ; line++ {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, nil, errors.Wrapf(err, "reading row %d of %s", line, path)
		}
		report.RowsRead++

		gender, ok := parseGender(row[colIdx[ColGender]])
		if !ok {
			report.DroppedGender++
			continue
		}

		rec := Record{Gender: gender}
		if rec.Age, err = parseFloat(path, line, ColAge, row[colIdx[ColAge]]); err != nil {
			return nil, nil, err
		}
		if rec.BMI, err = parseFloat(path, line, ColBMI, row[colIdx[ColBMI]]); err != nil {
			return nil, nil, err
		}
		if rec.HbA1c, err = parseFloat(path, line, ColHbA1c, row[colIdx[ColHbA1c]]); err != nil {
			return nil, nil, err
		}
		if rec.BloodGlucose, err = parseFloat(path, line, ColBloodGlucose, row[colIdx[ColBloodGlucose]]); err != nil {
			return nil, nil, err
		}
		if rec.Hypertension, err = parseBinary(path, line, ColHypertension, row[colIdx[ColHypertension]]); err != nil {
			return nil, nil, err
		}
		if rec.HeartDisease, err = parseBinary(path, line, ColHeartDisease, row[colIdx[ColHeartDisease]]); err != nil {
			return nil, nil, err
		}
		if rec.Diabetes, err = parseBinary(path, line, ColDiabetes, row[colIdx[ColDiabetes]]); err != nil {
			return nil, nil, err
		}
		if rec.Smoking, err = parseSmoking(path, line, row[colIdx[ColSmoking]]); err != nil {
			return nil, nil, err
		}

		records = append(records, rec)
	}

	report.RowsKept = len(records)
	return New(records), report, nil
}

func parseGender(raw string) (Gender, bool) {
	switch raw {
	case "Male":
		return GenderMale, true
	case "Female":
		return GenderFemale, true
	}
	return 0, false
}

func parseSmoking(path string, line int, raw string) (Smoking, error) {
	switch raw {
	case "never":
		return SmokingNever, nil
	case "ever", "former", "not current":
		return SmokingFormer, nil
	case "current":
		return SmokingCurrent, nil
	case "No Info":
		return SmokingUnknown, nil
	}
	return 0, errors.NewMalformedInputError(path, nil,
		fmt.Sprintf("row %d: unrecognized %s value %q", line, ColSmoking, raw))
}

func parseFloat(path string, line int, col, raw string) (float64, error) {
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, errors.NewMalformedInputError(path, nil,
			fmt.Sprintf("row %d: column %s: cannot parse %q as float", line, col, raw))
	}
	return v, nil
}

func parseBinary(path string, line int, col, raw string) (bool, error) {
	switch raw {
	case "0":
		return false, nil
	case "1":
		return true, nil
	}
	return false, errors.NewMalformedInputError(path, nil,
		fmt.Sprintf("row %d: column %s: expected 0 or 1, got %q", line, col, raw))
}
