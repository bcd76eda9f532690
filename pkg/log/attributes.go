// Package log defines standard attribute keys for pipeline operations.
//
// Using these keys consistently across stages makes the JSON logs filterable:
// every record produced by the loader, transformer, splitter, trainers and
// evaluator carries the same shape of context.
package log

// Pipeline stage context.
const (
	// StageKey identifies the pipeline stage emitting the record.
	// Standard values: "load", "transform", "split", "train", "tune", "evaluate"
	StageKey = "pipeline.stage"

	// ModelNameKey identifies the type of model being trained or evaluated.
	// Examples: "RandomForestClassifier", "SVC"
	ModelNameKey = "model.name"

	// ConfigKey describes the hyperparameter configuration in play.
	// Examples: "C=10.0 gamma=0.1", "max_features=4"
	ConfigKey = "model.config"
)

// Data shape and characteristics.
const (
	// SamplesKey indicates the number of samples (rows) being processed.
	SamplesKey = "data.samples"

	// FeaturesKey indicates the number of feature columns.
	FeaturesKey = "data.features"

	// DroppedRowsKey counts rows removed during cleaning. Drops are reported,
	// never silently absorbed.
	DroppedRowsKey = "data.dropped_rows"

	// PositiveRateKey is the fraction of positive labels in a subset.
	PositiveRateKey = "data.positive_rate"
)

// Metric context.
const (
	// MetricKey names the metric being computed or optimized.
	MetricKey = "metric.name"

	// AUCKey carries an area-under-ROC value.
	AUCKey = "metric.auc"

	// AccuracyKey carries an accuracy value.
	AccuracyKey = "metric.accuracy"

	// DurationMsKey carries elapsed wall time in milliseconds.
	DurationMsKey = "duration_ms"
)
