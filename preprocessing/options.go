// Package preprocessing turns a raw dataset into training-ready splits:
// missing-value imputation, feature scaling and a randomized train/test split,
// composed by Pipeline in that fixed order.
package preprocessing

import (
	"fmt"
	"math"

	"github.com/YuminosukeSato/scisvm/pkg/errors"
)

// Strategy selects how missing values are resolved.
type Strategy string

const (
	StrategyMean     Strategy = "mean"
	StrategyMedian   Strategy = "median"
	StrategyMode     Strategy = "mode"
	StrategyRemove   Strategy = "remove"
	StrategyConstant Strategy = "constant"
)

// Valid reports whether s is a known strategy.
func (s Strategy) Valid() bool {
	switch s {
	case StrategyMean, StrategyMedian, StrategyMode, StrategyRemove, StrategyConstant:
		return true
	}
	return false
}

// ScalingMethod selects the feature normalisation.
type ScalingMethod string

const (
	ScalingNone     ScalingMethod = "none"
	ScalingMinMax   ScalingMethod = "minmax"
	ScalingStandard ScalingMethod = "standard"
	ScalingRobust   ScalingMethod = "robust"
)

// Valid reports whether m is a known scaling method.
func (m ScalingMethod) Valid() bool {
	switch m {
	case ScalingNone, ScalingMinMax, ScalingStandard, ScalingRobust:
		return true
	}
	return false
}

// Options configures one preprocessing run. Treat it as a value: the
// pipeline never mutates it.
type Options struct {
	TargetVariable       string        `json:"target_variable" yaml:"target"`
	Features             []string      `json:"features" yaml:"features"`
	MissingValueStrategy Strategy      `json:"missing_value_strategy" yaml:"missing_value_strategy"`
	ConstantValue        *float64      `json:"constant_value,omitempty" yaml:"constant_value,omitempty"`
	Scaling              ScalingMethod `json:"scaling" yaml:"scaling"`
	TestRatio            float64       `json:"test_ratio" yaml:"test_ratio"`
}

// DefaultOptions returns mean imputation, standard scaling and a 0.2 test ratio.
// Target and features are left empty.
func DefaultOptions() Options {
	return Options{
		MissingValueStrategy: StrategyMean,
		Scaling:              ScalingStandard,
		TestRatio:            0.2,
	}
}

// Validate checks the options against the dataset's columns. It runs before
// any transformation and reports the first problem as a ValidationError.
func (o Options) Validate(columns []string) error {
	known := make(map[string]bool, len(columns))
	for _, c := range columns {
		known[c] = true
	}

	if o.TargetVariable == "" {
		return errors.NewValidationError("target_variable", "a target variable must be selected", o.TargetVariable)
	}
	if !known[o.TargetVariable] {
		return errors.NewValidationError("target_variable", "not a dataset column", o.TargetVariable)
	}
	if len(o.Features) == 0 {
		return errors.NewValidationError("features", "at least one feature must be selected", o.Features)
	}
	seen := make(map[string]bool, len(o.Features))
	for _, f := range o.Features {
		switch {
		case f == o.TargetVariable:
			return errors.NewValidationError("features", "must not include the target variable", f)
		case !known[f]:
			return errors.NewValidationError("features", "not a dataset column", f)
		case seen[f]:
			return errors.NewValidationError("features", "listed more than once", f)
		}
		seen[f] = true
	}
	if !o.MissingValueStrategy.Valid() {
		return errors.NewValidationError("missing_value_strategy", "must be one of mean, median, mode, remove, constant", o.MissingValueStrategy)
	}
	if o.MissingValueStrategy == StrategyConstant {
		if o.ConstantValue == nil || math.IsNaN(*o.ConstantValue) {
			return errors.NewValidationError("constant_value", "required by the constant strategy", o.ConstantValue)
		}
	}
	if !o.Scaling.Valid() {
		return errors.NewValidationError("scaling", "must be one of none, minmax, standard, robust", o.Scaling)
	}
	return validateRatio(o.TestRatio)
}

func validateRatio(r float64) error {
	if !(r > 0 && r < 1) {
		return errors.NewValidationError("test_ratio", "must be in (0, 1)", r)
	}
	return nil
}

// ImputeColumns is the column set imputation runs over: features then target.
func (o Options) ImputeColumns() []string {
	cols := make([]string, 0, len(o.Features)+1)
	cols = append(cols, o.Features...)
	return append(cols, o.TargetVariable)
}

func (o Options) String() string {
	return fmt.Sprintf("target=%s features=%v strategy=%s scaling=%s test_ratio=%g",
		o.TargetVariable, o.Features, o.MissingValueStrategy, o.Scaling, o.TestRatio)
}
