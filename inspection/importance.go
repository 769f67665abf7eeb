// Package inspection explains trained models.
package inspection

import (
	"math"
	"sort"

	"github.com/YuminosukeSato/scisvm/core/model"
	"github.com/YuminosukeSato/scisvm/pkg/errors"
)

// FeatureImportance is one feature's share of the largest absolute weight.
type FeatureImportance struct {
	Feature    string  `json:"feature"`
	Importance float64 `json:"importance"`
}

// FeatureImportances ranks features by the magnitude of a linear model's
// weights, normalized so the strongest feature scores 1, sorted descending
// with ties kept in feature order.
//
// Kernels other than linear have no weight vector in input space; they get
// zero importance for every feature, in feature order, and no error. With
// more than two classes the absolute weights of the one-vs-one machines are
// averaged.
func FeatureImportances(clf model.Classifier, kernel model.Kernel, features []string) ([]FeatureImportance, error) {
	out := make([]FeatureImportance, len(features))
	for i, f := range features {
		out[i] = FeatureImportance{Feature: f}
	}
	if kernel != model.KernelLinear {
		return out, nil
	}
	if clf == nil || !clf.IsFitted() {
		return nil, errors.NewNotFittedError("Classifier", "FeatureImportances")
	}
	lw, ok := clf.(model.LinearWeighter)
	if !ok {
		return nil, errors.NewValueError("FeatureImportances", "classifier does not expose linear weights")
	}
	coefs, err := lw.Coef()
	if err != nil {
		return nil, err
	}

	weights := make([]float64, len(features))
	for _, w := range coefs {
		if len(w) != len(features) {
			return nil, errors.NewDimensionError("FeatureImportances", len(features), len(w), 1)
		}
		for j, v := range w {
			weights[j] += math.Abs(v) / float64(len(coefs))
		}
	}

	maxW := 0.0
	for _, w := range weights {
		maxW = math.Max(maxW, w)
	}
	if maxW > 0 {
		for i := range out {
			out[i].Importance = weights[i] / maxW
		}
	}
	sort.SliceStable(out, func(a, b int) bool {
		return out[a].Importance > out[b].Importance
	})
	return out, nil
}
