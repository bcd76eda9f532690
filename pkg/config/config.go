// Package config loads the pipeline configuration from a YAML file and
// environment variables.
package config

import (
	"strings"

	"github.com/spf13/viper"

	"github.com/YuminosukeSato/diapredict/pkg/errors"
)

// Config is the full pipeline configuration.
type Config struct {
	Data      DataConfig
	Split     SplitConfig
	Forest    ForestConfig
	SVM       SVMConfig
	Bootstrap BootstrapConfig
	Search    SearchConfig
	Logging   LoggingConfig
}

// DataConfig locates the input dataset and the optional encoded-matrix dump.
type DataConfig struct {
	Path        string
	EncodedPath string
}

// SplitConfig holds the train/validation/test fractions and the split seed.
type SplitConfig struct {
	Train      float64
	Validation float64
	Test       float64
	Seed       uint64
}

// ForestConfig holds the forest baseline hyperparameters.
type ForestConfig struct {
	NumTrees int
	Seed     uint64
}

// SVMConfig holds the kernel-classifier baseline and tuned hyperparameters.
type SVMConfig struct {
	BaseC      float64
	BaseGamma  float64
	TunedC     float64
	TunedGamma float64
	MaxIter    int
	Seed       uint64
}

// BootstrapConfig controls the evaluation confidence intervals.
type BootstrapConfig struct {
	Resamples int
	Seed      uint64
}

// SearchConfig bounds the hyperparameter search.
type SearchConfig struct {
	Workers  int
	NumFolds int
	NumTrees int
}

// LoggingConfig controls the structured logger.
type LoggingConfig struct {
	Level string
}

// Load reads config.yaml from the working directory or ./config, overlaid by
// DIAPREDICT_* environment variables. A missing file is not an error; the
// defaults describe the reference pipeline.
func Load() (*Config, error) {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")

	viper.SetEnvPrefix("DIAPREDICT")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	setDefaults()

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, errors.Wrap(err, "failed to read config file")
		}
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, errors.Wrap(err, "failed to unmarshal config")
	}

	return &config, nil
}

func setDefaults() {
	viper.SetDefault("data.path", "./data/diabetes.csv")
	viper.SetDefault("data.encodedPath", "")

	viper.SetDefault("split.train", 0.8)
	viper.SetDefault("split.validation", 0.1)
	viper.SetDefault("split.test", 0.1)
	viper.SetDefault("split.seed", 1)

	viper.SetDefault("forest.numTrees", 500)
	viper.SetDefault("forest.seed", 1)

	viper.SetDefault("svm.baseC", 1.0)
	viper.SetDefault("svm.baseGamma", 1.0)
	viper.SetDefault("svm.tunedC", 10.0)
	viper.SetDefault("svm.tunedGamma", 0.1)
	viper.SetDefault("svm.maxIter", 1000)
	viper.SetDefault("svm.seed", 1)

	viper.SetDefault("bootstrap.resamples", 1000)
	viper.SetDefault("bootstrap.seed", 1)

	viper.SetDefault("search.workers", 4)
	viper.SetDefault("search.numFolds", 5)
	viper.SetDefault("search.numTrees", 100)

	viper.SetDefault("logging.level", "info")
}
