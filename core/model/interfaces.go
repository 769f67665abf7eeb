package model

import (
	"strings"

	"github.com/YuminosukeSato/scisvm/pkg/errors"
)

// Kernel names a kernel function.
type Kernel string

const (
	KernelLinear     Kernel = "linear"
	KernelRBF        Kernel = "rbf"
	KernelPolynomial Kernel = "polynomial"
	KernelSigmoid    Kernel = "sigmoid"
)

// ParseKernel accepts the kernel names used in configuration files.
func ParseKernel(name string) (Kernel, error) {
	switch Kernel(strings.ToLower(strings.TrimSpace(name))) {
	case KernelLinear:
		return KernelLinear, nil
	case KernelRBF:
		return KernelRBF, nil
	case KernelPolynomial, "poly":
		return KernelPolynomial, nil
	case KernelSigmoid:
		return KernelSigmoid, nil
	}
	return "", errors.NewValidationError("kernel", "must be linear, rbf, polynomial or sigmoid", name)
}

// GammaMode selects how the kernel coefficient is resolved at fit time.
type GammaMode string

const (
	// GammaAuto uses 1 / n_features. It is also the backend default.
	GammaAuto GammaMode = "auto"
	// GammaScale uses 1 / (n_features * Var(X)).
	GammaScale GammaMode = "scale"
	// GammaValue uses KernelParams.Gamma as given.
	GammaValue GammaMode = "value"
)

// KernelParams is what a Factory receives. Fields that do not apply to the
// chosen kernel are left at their zero value by the trainer.
type KernelParams struct {
	Kernel      Kernel    `json:"kernel"`
	C           float64   `json:"c"`
	GammaMode   GammaMode `json:"gamma_mode,omitempty"`
	Gamma       float64   `json:"gamma,omitempty"`
	Degree      int       `json:"degree,omitempty"`
	Coef0       float64   `json:"coef0,omitempty"`
	Probability bool      `json:"probability"`
}
