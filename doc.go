// Package diapredict implements a diabetes-onset prediction pipeline in Go,
// from raw clinical records to evaluated classifiers.
//
// The pipeline mirrors a classical tabular study: the input table is cleaned
// and one-hot encoded, split into stratified train/validation/test subsets,
// and used to train two model families, a random forest and an RBF-kernel
// support-vector classifier. Every model is scored on the held-out test set
// with confusion matrices, ROC curves and bootstrap confidence intervals.
//
// # Packages
//
// - dataset: loading, validation and cleaning of the raw table
// - preprocessing: one-hot encoding into a gonum design matrix
// - modelselection: stratified splitting, cross-validation and tuning
// - ensemble: the random forest classifier
// - svm: the kernel support-vector classifier
// - metrics: confusion matrices, ROC/AUC and bootstrap intervals
// - evaluation: report generation for fitted models
//
// Every stage is deterministic for a fixed seed: rerunning the pipeline on
// the same input produces byte-identical splits, models and reports.
//
// # Quick Start
//
//	ds, report, err := dataset.LoadAndClean("diabetes.csv")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	dm, err := preprocessing.NewEncoder().FitTransform(ds)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	train, val, test, err := modelselection.TrainValTestSplit(dm, modelselection.DefaultRatios, 1)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	rf := ensemble.NewRandomForestClassifier(ensemble.WithSeed(1))
//	// fit on train, sweep hyperparameters against val, evaluate on test
//
// The cmd/diapredict command runs the full pipeline with configuration from
// config.yaml and DIAPREDICT_* environment variables.
package diapredict
