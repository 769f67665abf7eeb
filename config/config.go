// Package config loads scisvm run configuration from YAML.
package config

import (
	"bytes"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/YuminosukeSato/scisvm/core/model"
	"github.com/YuminosukeSato/scisvm/pkg/errors"
	"github.com/YuminosukeSato/scisvm/preprocessing"
	"github.com/YuminosukeSato/scisvm/training"
)

// Config is a full run configuration.
type Config struct {
	Logging       LoggingConfig
	Preprocessing preprocessing.Options
	// Seed makes the train/test split reproducible. Nil draws fresh randomness.
	Seed       *uint64
	SVM        training.Config
	Evaluation EvaluationConfig
}

// LoggingConfig selects the log level and output format.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// EvaluationConfig controls optional cross-validation.
type EvaluationConfig struct {
	CVFolds int    `yaml:"cv_folds"`
	CVSeed  uint64 `yaml:"cv_seed"`
}

type svmSection struct {
	Kernel        string  `yaml:"kernel"`
	C             float64 `yaml:"c"`
	Gamma         string  `yaml:"gamma"`
	Degree        int     `yaml:"degree"`
	Coef0         float64 `yaml:"coef0"`
	Probabilistic bool    `yaml:"probabilistic"`
}

type preprocessingSection struct {
	preprocessing.Options `yaml:",inline"`
	Seed                  *uint64 `yaml:"seed,omitempty"`
}

type file struct {
	Logging       LoggingConfig        `yaml:"logging"`
	Preprocessing preprocessingSection `yaml:"preprocessing"`
	SVM           svmSection           `yaml:"svm"`
	Evaluation    EvaluationConfig     `yaml:"evaluation"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Logging:       LoggingConfig{Level: "info", Format: "pretty"},
		Preprocessing: preprocessing.DefaultOptions(),
		SVM:           training.DefaultConfig(),
	}
}

func defaultFile() file {
	d := Default()
	return file{
		Logging:       d.Logging,
		Preprocessing: preprocessingSection{Options: d.Preprocessing},
		SVM: svmSection{
			Kernel:        string(d.SVM.Kernel),
			C:             d.SVM.C,
			Gamma:         d.SVM.Gamma.String(),
			Degree:        d.SVM.Degree,
			Coef0:         d.SVM.Coef0,
			Probabilistic: d.SVM.Probabilistic,
		},
	}
}

// Load reads path. Keys missing from the file keep their defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read config %s", path)
	}
	cfg, err := Parse(data)
	if err != nil {
		return nil, errors.Wrapf(err, "config %s", path)
	}
	return cfg, nil
}

// Parse decodes YAML. Unknown keys are rejected.
func Parse(data []byte) (*Config, error) {
	f := defaultFile()
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil && !errors.Is(err, io.EOF) {
		return nil, errors.Wrap(err, "failed to decode YAML")
	}

	kernel, err := model.ParseKernel(f.SVM.Kernel)
	if err != nil {
		return nil, errors.NewValidationError("svm.kernel", "must be linear, rbf, polynomial or sigmoid", f.SVM.Kernel)
	}
	gamma, err := training.ParseGamma(f.SVM.Gamma)
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		Logging:       f.Logging,
		Preprocessing: f.Preprocessing.Options,
		Seed:          f.Preprocessing.Seed,
		SVM: training.Config{
			Kernel:        kernel,
			C:             f.SVM.C,
			Gamma:         gamma,
			Degree:        f.SVM.Degree,
			Coef0:         f.SVM.Coef0,
			Probabilistic: f.SVM.Probabilistic,
		},
		Evaluation: f.Evaluation,
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks what can be checked without a dataset. Target and feature
// columns are validated when preprocessing runs.
func (c *Config) Validate() error {
	if err := c.SVM.Validate(); err != nil {
		return err
	}
	o := c.Preprocessing
	if !o.MissingValueStrategy.Valid() {
		return errors.NewValidationError("missing_value_strategy", "must be one of mean, median, mode, remove, constant", o.MissingValueStrategy)
	}
	if !o.Scaling.Valid() {
		return errors.NewValidationError("scaling", "must be one of none, minmax, standard, robust", o.Scaling)
	}
	if !(o.TestRatio > 0 && o.TestRatio < 1) {
		return errors.NewValidationError("test_ratio", "must be in (0, 1)", o.TestRatio)
	}
	if c.Evaluation.CVFolds == 1 || c.Evaluation.CVFolds < 0 {
		return errors.NewValidationError("cv_folds", "must be 0 (disabled) or at least 2", c.Evaluation.CVFolds)
	}
	return nil
}

// SplitOptions returns the split options implied by Seed.
func (c *Config) SplitOptions() []preprocessing.SplitOption {
	if c.Seed == nil {
		return nil
	}
	return []preprocessing.SplitOption{preprocessing.WithSeed(*c.Seed)}
}
