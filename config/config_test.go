package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/YuminosukeSato/scisvm/core/model"
	"github.com/YuminosukeSato/scisvm/pkg/errors"
	"github.com/YuminosukeSato/scisvm/preprocessing"
	"github.com/YuminosukeSato/scisvm/training"
)

const full = `
logging:
  level: debug
  format: json
preprocessing:
  target: species
  features: [petal_length, petal_width]
  missing_value_strategy: constant
  constant_value: -1
  scaling: robust
  test_ratio: 0.3
  seed: 42
svm:
  kernel: poly
  c: 2.5
  gamma: 0.1
  degree: 2
  coef0: 1
  probabilistic: false
evaluation:
  cv_folds: 5
  cv_seed: 9
`

func TestParseFull(t *testing.T) {
	cfg, err := Parse([]byte(full))
	require.NoError(t, err)

	assert.Equal(t, LoggingConfig{Level: "debug", Format: "json"}, cfg.Logging)

	o := cfg.Preprocessing
	assert.Equal(t, "species", o.TargetVariable)
	assert.Equal(t, []string{"petal_length", "petal_width"}, o.Features)
	assert.Equal(t, preprocessing.StrategyConstant, o.MissingValueStrategy)
	require.NotNil(t, o.ConstantValue)
	assert.Equal(t, -1.0, *o.ConstantValue)
	assert.Equal(t, preprocessing.ScalingRobust, o.Scaling)
	assert.Equal(t, 0.3, o.TestRatio)
	require.NotNil(t, cfg.Seed)
	assert.Equal(t, uint64(42), *cfg.Seed)
	assert.Len(t, cfg.SplitOptions(), 1)

	assert.Equal(t, training.Config{
		Kernel:        model.KernelPolynomial,
		C:             2.5,
		Gamma:         training.GammaValue(0.1),
		Degree:        2,
		Coef0:         1,
		Probabilistic: false,
	}, cfg.SVM)
	assert.Equal(t, EvaluationConfig{CVFolds: 5, CVSeed: 9}, cfg.Evaluation)
}

func TestParseKeepsDefaults(t *testing.T) {
	cfg, err := Parse([]byte("svm:\n  kernel: linear\n"))
	require.NoError(t, err)

	want := Default()
	want.SVM.Kernel = model.KernelLinear
	assert.Equal(t, want, cfg)
	assert.Nil(t, cfg.SplitOptions())

	empty, err := Parse(nil)
	require.NoError(t, err)
	assert.Equal(t, Default(), empty)
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{"unknown key", "svm:\n  kernal: rbf\n"},
		{"unknown kernel", "svm:\n  kernel: laplace\n"},
		{"bad gamma", "svm:\n  gamma: quick\n"},
		{"negative C", "svm:\n  c: -1\n"},
		{"bad strategy", "preprocessing:\n  missing_value_strategy: guess\n"},
		{"ratio out of range", "preprocessing:\n  test_ratio: 1\n"},
		{"one fold", "evaluation:\n  cv_folds: 1\n"},
		{"not yaml", "svm: [unterminated"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.yaml))
			assert.Error(t, err)
		})
	}

	_, err := Parse([]byte("svm:\n  c: 0\n"))
	var ve *errors.ValidationError
	assert.True(t, errors.As(err, &ve))
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "scisvm.yaml")
	require.NoError(t, os.WriteFile(path, []byte(full), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, model.KernelPolynomial, cfg.SVM.Kernel)

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
