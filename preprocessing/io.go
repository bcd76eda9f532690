package preprocessing

import (
	"encoding/csv"
	"io"
	"os"
	"strconv"

	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/diapredict/dataset"
	"github.com/YuminosukeSato/diapredict/pkg/errors"
)

// WriteCSV serializes the design matrix plus label column so downstream
// training can reuse it without repeating the loader and transformer stages.
func (dm *DesignMatrix) WriteCSV(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrapf(err, "creating %s", path)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	header := append(append([]string{}, dm.FeatureNames...), dataset.ColDiabetes)
	if err := w.Write(header); err != nil {
		return errors.Wrapf(err, "writing header of %s", path)
	}

	rows, cols := dm.X.Dims()
	record := make([]string, cols+1)
	for i := 0; i < rows; i++ {
		for j := 0; j < cols; j++ {
			record[j] = strconv.FormatFloat(dm.X.At(i, j), 'g', -1, 64)
		}
		record[cols] = strconv.FormatFloat(dm.Y.AtVec(i), 'g', -1, 64)
		if err := w.Write(record); err != nil {
			return errors.Wrapf(err, "writing row %d of %s", i, path)
		}
	}
	w.Flush()
	return errors.Wrapf(w.Error(), "flushing %s", path)
}

// ReadCSV loads a design matrix previously written by WriteCSV. The last
// column is the label; everything before it is a predictor.
func ReadCSV(path string) (*DesignMatrix, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "opening %s", path)
	}
	defer f.Close()

	r := csv.NewReader(f)
	header, err := r.Read()
	if err == io.EOF {
		return nil, errors.NewMalformedInputError(path, nil, "empty file")
	}
	if err != nil {
		return nil, errors.Wrapf(err, "reading header of %s", path)
	}
	if len(header) < 2 || header[len(header)-1] != dataset.ColDiabetes {
		return nil, errors.NewMalformedInputError(path, []string{dataset.ColDiabetes}, "")
	}
	nFeatures := len(header) - 1

	var data []float64
	var labels []float64
	for line := 2; ; line++ {
		row, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, errors.Wrapf(err, "reading row %d of %s", line, path)
		}
		for j := 0; j < nFeatures; j++ {
			v, err := strconv.ParseFloat(row[j], 64)
			if err != nil {
				return nil, errors.NewMalformedInputError(path, nil,
					"row "+strconv.Itoa(line)+": cannot parse "+row[j])
			}
			data = append(data, v)
		}
		v, err := strconv.ParseFloat(row[nFeatures], 64)
		if err != nil {
			return nil, errors.NewMalformedInputError(path, nil,
				"row "+strconv.Itoa(line)+": cannot parse label "+row[nFeatures])
		}
		labels = append(labels, v)
	}
	if len(labels) == 0 {
		return nil, errors.Wrap(errors.ErrEmptyData, "preprocessing.ReadCSV")
	}

	names := make([]string, nFeatures)
	copy(names, header[:nFeatures])
	return &DesignMatrix{
		X:            mat.NewDense(len(labels), nFeatures, data),
		Y:            mat.NewVecDense(len(labels), labels),
		FeatureNames: names,
	}, nil
}
