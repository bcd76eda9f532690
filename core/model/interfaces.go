// Package model provides the shared interfaces and base types for estimators.
package model

import (
	"gonum.org/v1/gonum/mat"
)

// Fitter is the interface for models that can be trained.
type Fitter interface {
	// Fit trains the model on X (n_samples x n_features) and y (n_samples x 1).
	Fit(X, y mat.Matrix) error
}

// Predictor is the interface for models that can predict hard labels.
type Predictor interface {
	// Predict returns an n_samples x 1 matrix of predicted labels (0 or 1).
	Predict(X mat.Matrix) (mat.Matrix, error)
}

// Classifier is the interface consumed by the evaluator: a fitted model that
// produces both hard labels and class-membership probabilities.
type Classifier interface {
	Fitter
	Predictor

	// PredictProba returns an n_samples x 1 matrix with the probability of the
	// positive class for each row.
	PredictProba(X mat.Matrix) (mat.Matrix, error)
}
