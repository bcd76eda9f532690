// Package evaluation scores a fitted classifier on a held-out design matrix:
// confusion matrix, ROC curve, and bootstrap confidence intervals for
// accuracy, sensitivity, specificity and AUC.
package evaluation

import (
	"fmt"
	"strings"

	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/diapredict/core/model"
	"github.com/YuminosukeSato/diapredict/metrics"
	"github.com/YuminosukeSato/diapredict/pkg/errors"
	"github.com/YuminosukeSato/diapredict/preprocessing"
)

// Options configure the bootstrap intervals of a Report.
type Options struct {
	// Resamples is the bootstrap resample count; 0 means
	// metrics.DefaultResamples.
	Resamples int
	// Seed fixes the bootstrap resampling.
	Seed uint64
}

// Report is the evaluation of one fitted model on one dataset. The threshold
// metrics are computed from hard labels at 0.5; AUC from the raw probability
// scores. Every interval is a 95% bootstrap CI around the point estimate.
type Report struct {
	ModelName  string
	NumSamples int

	Confusion   *metrics.ConfusionMatrix
	Accuracy    metrics.Interval
	Sensitivity metrics.Interval
	Specificity metrics.Interval
	AUC         metrics.Interval

	ROC []metrics.ROCPoint
}

// Evaluate scores a fitted classifier on the given matrix. The classifier is
// only read; evaluating the same model on the same data with the same options
// always produces the same report.
func Evaluate(name string, clf model.Classifier, dm *preprocessing.DesignMatrix, opts Options) (*Report, error) {
	if dm.NumRows() == 0 {
		return nil, errors.Wrap(errors.ErrEmptyData, "evaluation.Evaluate")
	}

	pred, err := clf.Predict(dm.X)
	if err != nil {
		return nil, errors.Wrapf(err, "evaluation: %s", name)
	}
	proba, err := clf.PredictProba(dm.X)
	if err != nil {
		return nil, errors.Wrapf(err, "evaluation: %s", name)
	}
	labels := column(pred)
	scores := column(proba)

	cm, err := metrics.NewConfusionMatrix(dm.Y, labels)
	if err != nil {
		return nil, errors.Wrapf(err, "evaluation: %s", name)
	}
	roc, err := metrics.ROCCurve(dm.Y, scores)
	if err != nil {
		return nil, errors.Wrapf(err, "evaluation: %s", name)
	}

	report := &Report{
		ModelName:  name,
		NumSamples: dm.NumRows(),
		Confusion:  cm,
		ROC:        roc,
	}

	intervals := []struct {
		metric string
		pred   *mat.VecDense
		dst    *metrics.Interval
	}{
		{metrics.MetricAccuracy, labels, &report.Accuracy},
		{metrics.MetricSensitivity, labels, &report.Sensitivity},
		{metrics.MetricSpecificity, labels, &report.Specificity},
		{metrics.MetricAUC, scores, &report.AUC},
	}
	for _, iv := range intervals {
		ci, err := metrics.BootstrapCI(iv.metric, dm.Y, iv.pred, opts.Resamples, opts.Seed)
		if err != nil {
			return nil, errors.Wrapf(err, "evaluation: %s: %s", name, iv.metric)
		}
		*iv.dst = *ci
	}
	return report, nil
}

// String renders the report as the text block printed by the pipeline.
func (r *Report) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "=== %s (n=%d) ===\n", r.ModelName, r.NumSamples)
	sb.WriteString(r.Confusion.String())
	writeInterval(&sb, "accuracy", r.Accuracy)
	writeInterval(&sb, "sensitivity", r.Sensitivity)
	writeInterval(&sb, "specificity", r.Specificity)
	writeInterval(&sb, "auc", r.AUC)
	return sb.String()
}

func writeInterval(sb *strings.Builder, name string, iv metrics.Interval) {
	fmt.Fprintf(sb, "%-12s %.4f (95%% CI %.4f-%.4f)\n", name, iv.Point, iv.Lower, iv.Upper)
}

func column(m mat.Matrix) *mat.VecDense {
	n, _ := m.Dims()
	out := mat.NewVecDense(n, nil)
	for i := 0; i < n; i++ {
		out.SetVec(i, m.At(i, 0))
	}
	return out
}
