// Package training wraps a solver backend: it turns tabular rows into a
// feature matrix, encodes labels, maps the SVM configuration to the kernel
// parameters the chosen kernel actually uses, and returns a TrainedModel.
package training

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"

	"github.com/YuminosukeSato/scisvm/core/model"
	"github.com/YuminosukeSato/scisvm/pkg/errors"
)

// Gamma is "auto", "scale" or an explicit positive number.
type Gamma struct {
	Mode  model.GammaMode
	Value float64
}

var (
	GammaAuto  = Gamma{Mode: model.GammaAuto}
	GammaScale = Gamma{Mode: model.GammaScale}
)

// GammaValue returns an explicit gamma.
func GammaValue(v float64) Gamma {
	return Gamma{Mode: model.GammaValue, Value: v}
}

// ParseGamma accepts "auto", "scale" or a number.
func ParseGamma(s string) (Gamma, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "auto":
		return GammaAuto, nil
	case "scale", "":
		return GammaScale, nil
	}
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || !(v > 0) || math.IsInf(v, 0) {
		return Gamma{}, errors.NewValidationError("gamma", "must be auto, scale or a positive number", s)
	}
	return GammaValue(v), nil
}

func (g Gamma) String() string {
	if g.Mode == model.GammaValue {
		return strconv.FormatFloat(g.Value, 'g', -1, 64)
	}
	return string(g.Mode)
}

// MarshalJSON writes "auto", "scale" or a number.
func (g Gamma) MarshalJSON() ([]byte, error) {
	if g.Mode == model.GammaValue {
		return json.Marshal(g.Value)
	}
	return json.Marshal(string(g.Mode))
}

// UnmarshalJSON reads "auto", "scale" or a number.
func (g *Gamma) UnmarshalJSON(data []byte) error {
	var v float64
	if err := json.Unmarshal(data, &v); err == nil {
		parsed, err := ParseGamma(strconv.FormatFloat(v, 'g', -1, 64))
		if err != nil {
			return err
		}
		*g = parsed
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return errors.Wrap(err, "gamma must be a string or number")
	}
	parsed, err := ParseGamma(s)
	if err != nil {
		return err
	}
	*g = parsed
	return nil
}

// Config is the SVM configuration.
type Config struct {
	Kernel        model.Kernel `json:"kernel"`
	C             float64      `json:"c"`
	Gamma         Gamma        `json:"gamma"`
	Degree        int          `json:"degree"`
	Coef0         float64      `json:"coef0"`
	Probabilistic bool         `json:"probabilistic"`
}

// DefaultConfig returns rbf, C=1, gamma=scale, degree 3, coef0 0 with probabilities.
func DefaultConfig() Config {
	return Config{
		Kernel:        model.KernelRBF,
		C:             1,
		Gamma:         GammaScale,
		Degree:        3,
		Coef0:         0,
		Probabilistic: true,
	}
}

// Validate checks every field regardless of kernel.
func (c Config) Validate() error {
	if _, err := model.ParseKernel(string(c.Kernel)); err != nil {
		return errors.NewValidationError("kernel", "must be linear, rbf, polynomial or sigmoid", c.Kernel)
	}
	if !(c.C > 0) || math.IsInf(c.C, 0) {
		return errors.NewValidationError("C", "must be a positive finite number", c.C)
	}
	switch c.Gamma.Mode {
	case model.GammaAuto, model.GammaScale:
	case model.GammaValue:
		if !(c.Gamma.Value > 0) || math.IsInf(c.Gamma.Value, 0) {
			return errors.NewValidationError("gamma", "must be a positive number", c.Gamma.Value)
		}
	default:
		return errors.NewValidationError("gamma", "must be auto, scale or a positive number", c.Gamma.Mode)
	}
	if c.Degree < 1 {
		return errors.NewValidationError("degree", "must be a positive integer", c.Degree)
	}
	return nil
}

// KernelParams maps the config to backend parameters. Gamma is passed only
// for rbf, degree and coef0 only for polynomial; everything else stays at
// the zero value so the backend falls back to its defaults.
func (c Config) KernelParams() model.KernelParams {
	kernel, _ := model.ParseKernel(string(c.Kernel))
	p := model.KernelParams{
		Kernel:      kernel,
		C:           c.C,
		Probability: c.Probabilistic,
	}
	switch kernel {
	case model.KernelRBF:
		p.GammaMode = c.Gamma.Mode
		p.Gamma = c.Gamma.Value
	case model.KernelPolynomial:
		p.Degree = c.Degree
		p.Coef0 = c.Coef0
	}
	return p
}
