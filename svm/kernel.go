package svm

import (
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"

	"github.com/YuminosukeSato/scisvm/core/model"
	"github.com/YuminosukeSato/scisvm/core/parallel"
)

// kernelFunc evaluates K(a, b) with resolved hyperparameters.
type kernelFunc struct {
	kind   model.Kernel
	gamma  float64
	degree int
	coef0  float64
}

func (k kernelFunc) eval(a, b []float64) float64 {
	switch k.kind {
	case model.KernelLinear:
		return floats.Dot(a, b)
	case model.KernelRBF:
		var d2 float64
		for i := range a {
			d := a[i] - b[i]
			d2 += d * d
		}
		return math.Exp(-k.gamma * d2)
	case model.KernelPolynomial:
		return math.Pow(k.gamma*floats.Dot(a, b)+k.coef0, float64(k.degree))
	case model.KernelSigmoid:
		return math.Tanh(k.gamma*floats.Dot(a, b) + k.coef0)
	}
	return 0
}

// resolveGamma turns the configured mode into a number.
func resolveGamma(p model.KernelParams, rows [][]float64, nFeatures int) float64 {
	switch p.GammaMode {
	case model.GammaValue:
		return p.Gamma
	case model.GammaScale:
		flat := make([]float64, 0, len(rows)*nFeatures)
		for _, r := range rows {
			flat = append(flat, r...)
		}
		v := stat.PopVariance(flat, nil)
		if v == 0 {
			return 1
		}
		return 1 / (float64(nFeatures) * v)
	default:
		return 1 / float64(nFeatures)
	}
}

// gram builds the full kernel matrix; rows are filled in parallel.
func gram(k kernelFunc, rows [][]float64) *mat.SymDense {
	n := len(rows)
	g := mat.NewSymDense(n, nil)
	parallel.ParallelizeWithThreshold(n, parallel.DefaultThreshold, func(start, end int) {
		for i := start; i < end; i++ {
			for j := i; j < n; j++ {
				g.SetSym(i, j, k.eval(rows[i], rows[j]))
			}
		}
	})
	return g
}

func denseRows(X mat.Matrix) [][]float64 {
	r, c := X.Dims()
	rows := make([][]float64, r)
	for i := range rows {
		rows[i] = mat.Row(make([]float64, c), i, X)
	}
	return rows
}
