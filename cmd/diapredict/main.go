// Command diapredict runs the diabetes-onset prediction pipeline end to end:
// load and clean the raw table, encode the design matrix, split it, tune and
// train the two model families, and print evaluation reports for the held-out
// test set.
package main

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/diapredict/core/model"
	"github.com/YuminosukeSato/diapredict/dataset"
	"github.com/YuminosukeSato/diapredict/ensemble"
	"github.com/YuminosukeSato/diapredict/evaluation"
	"github.com/YuminosukeSato/diapredict/modelselection"
	"github.com/YuminosukeSato/diapredict/pkg/config"
	"github.com/YuminosukeSato/diapredict/pkg/log"
	"github.com/YuminosukeSato/diapredict/preprocessing"
	"github.com/YuminosukeSato/diapredict/svm"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}
	log.SetupLogger(cfg.Logging.Level)

	if err := run(cfg); err != nil {
		slog.Error("pipeline failed", log.ErrAttr(err))
		os.Exit(1)
	}
}

func run(cfg *config.Config) error {
	reports, err := runPipeline(cfg)
	if err != nil {
		return err
	}
	for _, rep := range reports {
		fmt.Println(rep)
	}
	return nil
}

// runPipeline executes every stage and returns the evaluation reports for the
// four models: baseline and tuned variants of both families.
func runPipeline(cfg *config.Config) ([]*evaluation.Report, error) {
	start := time.Now()

	// Load and clean.
	ds, report, err := dataset.LoadAndClean(cfg.Data.Path)
	if err != nil {
		return nil, err
	}
	slog.Info("dataset loaded",
		slog.String(log.StageKey, "load"),
		slog.Int(log.SamplesKey, report.RowsKept),
		slog.Int(log.DroppedRowsKey, report.RowsRead-report.RowsKept),
		slog.Float64(log.PositiveRateKey, ds.PositiveRate()))

	// Encode.
	dm, err := preprocessing.NewEncoder().FitTransform(ds)
	if err != nil {
		return nil, err
	}
	slog.Info("design matrix encoded",
		slog.String(log.StageKey, "transform"),
		slog.Int(log.SamplesKey, dm.NumRows()),
		slog.Int(log.FeaturesKey, dm.NumFeatures()))
	if cfg.Data.EncodedPath != "" {
		if err := dm.WriteCSV(cfg.Data.EncodedPath); err != nil {
			return nil, err
		}
		slog.Info("encoded matrix written",
			slog.String(log.StageKey, "transform"),
			slog.String("path", cfg.Data.EncodedPath))
	}

	// Split.
	ratios := modelselection.Ratios{cfg.Split.Train, cfg.Split.Validation, cfg.Split.Test}
	train, val, test, err := modelselection.TrainValTestSplit(dm, ratios, cfg.Split.Seed)
	if err != nil {
		return nil, err
	}
	slog.Info("dataset split",
		slog.String(log.StageKey, "split"),
		slog.Int("train", train.NumRows()),
		slog.Int("validation", val.NumRows()),
		slog.Int("test", test.NumRows()))

	// Forest baseline: default bagging with every predictor available per
	// split, at the full tree count.
	forestBase := ensemble.NewRandomForestClassifier(
		ensemble.WithNumTrees(cfg.Forest.NumTrees),
		ensemble.WithMaxFeatures(dm.NumFeatures()),
		ensemble.WithSeed(cfg.Forest.Seed),
	)
	if err := fitAndLog(forestBase, train, "RandomForestClassifier",
		fmt.Sprintf("trees=%d max_features=%d", cfg.Forest.NumTrees, dm.NumFeatures())); err != nil {
		return nil, err
	}

	// Forest tuned: cross-validated grid search over the per-split feature
	// count, then a refit at the full tree count.
	candidates := make([]int, dm.NumFeatures())
	for i := range candidates {
		candidates[i] = i + 1
	}
	search, err := modelselection.GridSearchMaxFeatures(train, modelselection.GridSearchConfig{
		Candidates: candidates,
		NumFolds:   cfg.Search.NumFolds,
		NumTrees:   cfg.Search.NumTrees,
		Workers:    cfg.Search.Workers,
		Seed:       cfg.Forest.Seed,
	})
	if err != nil {
		return nil, err
	}
	slog.Info("grid search finished",
		slog.String(log.StageKey, "tune"),
		slog.String(log.ModelNameKey, "RandomForestClassifier"),
		slog.String(log.ConfigKey, fmt.Sprintf("max_features=%d", search.Best.MaxFeatures)),
		slog.Float64(log.AUCKey, search.Best.MeanAUC))

	forestTuned := ensemble.NewRandomForestClassifier(
		ensemble.WithNumTrees(cfg.Forest.NumTrees),
		ensemble.WithMaxFeatures(search.Best.MaxFeatures),
		ensemble.WithSeed(cfg.Forest.Seed),
	)
	if err := fitAndLog(forestTuned, train, "RandomForestClassifier",
		fmt.Sprintf("trees=%d max_features=%d", cfg.Forest.NumTrees, search.Best.MaxFeatures)); err != nil {
		return nil, err
	}
	if imp, err := forestTuned.FeatureImportances(); err == nil {
		for i, name := range train.FeatureNames {
			slog.Debug("feature importance",
				slog.String(log.StageKey, "train"),
				slog.String("feature", name),
				slog.Float64("importance", imp[i]))
		}
	}

	// Kernel classifier: univariate sweeps against the validation set, then
	// the baseline and tuned fits.
	sweepCfg := modelselection.DefaultSweepConfig(cfg.SVM.Seed)
	sweepCfg.BaseC = cfg.SVM.BaseC
	sweepCfg.BaseGamma = cfg.SVM.BaseGamma
	sweepCfg.MaxIter = cfg.SVM.MaxIter
	points, err := modelselection.SweepSVC(train, val, sweepCfg)
	if err != nil {
		return nil, err
	}
	for _, p := range points {
		slog.Info("sweep candidate",
			slog.String(log.StageKey, "tune"),
			slog.String(log.ModelNameKey, "SVC"),
			slog.String(log.ConfigKey, fmt.Sprintf("%s=%g", p.Dimension, p.Value)),
			slog.Float64(log.AccuracyKey, p.Accuracy))
	}

	baseline := svm.NewSVC(
		svm.WithC(cfg.SVM.BaseC),
		svm.WithGamma(cfg.SVM.BaseGamma),
		svm.WithMaxIter(cfg.SVM.MaxIter),
		svm.WithSVCSeed(cfg.SVM.Seed),
	)
	if err := fitAndLog(baseline, train, "SVC", baseline.ConfigString()); err != nil {
		return nil, err
	}
	tuned := svm.NewSVC(
		svm.WithC(cfg.SVM.TunedC),
		svm.WithGamma(cfg.SVM.TunedGamma),
		svm.WithMaxIter(cfg.SVM.MaxIter),
		svm.WithSVCSeed(cfg.SVM.Seed),
	)
	if err := fitAndLog(tuned, train, "SVC", tuned.ConfigString()); err != nil {
		return nil, err
	}

	// Evaluate everything on the held-out test set: baseline and tuned
	// variants of both families, head to head.
	models := []struct {
		name string
		clf  model.Classifier
	}{
		{"random_forest_baseline", forestBase},
		{"random_forest_tuned", forestTuned},
		{"svc_baseline", baseline},
		{"svc_tuned", tuned},
	}
	opts := evaluation.Options{Resamples: cfg.Bootstrap.Resamples, Seed: cfg.Bootstrap.Seed}
	reports := make([]*evaluation.Report, 0, len(models))
	for _, m := range models {
		rep, err := evaluation.Evaluate(m.name, m.clf, test, opts)
		if err != nil {
			return nil, err
		}
		slog.Info("model evaluated",
			slog.String(log.StageKey, "evaluate"),
			slog.String(log.ModelNameKey, m.name),
			slog.Float64(log.AccuracyKey, rep.Accuracy.Point),
			slog.Float64(log.AUCKey, rep.AUC.Point))
		reports = append(reports, rep)
	}

	slog.Info("pipeline finished",
		slog.Int64(log.DurationMsKey, time.Since(start).Milliseconds()))
	return reports, nil
}

func fitAndLog(clf model.Classifier, train *preprocessing.DesignMatrix, name, desc string) error {
	start := time.Now()
	y := train.Y
	yCol := make([]float64, y.Len())
	for i := range yCol {
		yCol[i] = y.AtVec(i)
	}
	if err := clf.Fit(train.X, columnMatrix(yCol)); err != nil {
		return err
	}
	slog.Info("model trained",
		slog.String(log.StageKey, "train"),
		slog.String(log.ModelNameKey, name),
		slog.String(log.ConfigKey, desc),
		slog.Int(log.SamplesKey, train.NumRows()),
		slog.Int64(log.DurationMsKey, time.Since(start).Milliseconds()))
	return nil
}

func columnMatrix(v []float64) mat.Matrix {
	return mat.NewDense(len(v), 1, v)
}
