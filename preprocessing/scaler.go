package preprocessing

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/YuminosukeSato/scisvm/dataset"
	"github.com/YuminosukeSato/scisvm/pkg/errors"
)

// FeatureScale は1つの特徴量について学習した統計量
type FeatureScale struct {
	Min    float64 `json:"min,omitempty"`
	Max    float64 `json:"max,omitempty"`
	Mean   float64 `json:"mean,omitempty"`
	Std    float64 `json:"std,omitempty"`
	Median float64 `json:"median,omitempty"`
	Q1     float64 `json:"q1,omitempty"`
	Q3     float64 `json:"q3,omitempty"`
	IQR    float64 `json:"iqr,omitempty"`
}

// ScaleParameters はスケーリング時に学習したパラメータ
//
// 一度作られたら変更しない。予測時の入力に同じ変換を再適用するために使う。
type ScaleParameters struct {
	Method   ScalingMethod           `json:"method"`
	Features []string                `json:"features"`
	Params   map[string]FeatureScale `json:"params"`
}

// Scale は指定された特徴量を正規化し、使ったパラメータと共に返す
//
// 1行目の値が数値である列だけが対象になる。統計量はその列の数値セル
// （NaN を除く）から計算し、数値でないセルはそのまま残す。
// 範囲・標準偏差・IQR が0の列は変換しない。
//
// パラメータ:
//   - rows: 入力行（変更されない）
//   - features: 対象の特徴量名
//   - method: none / minmax / standard / robust
//
// 戻り値:
//   - []dataset.Row: 変換後の行
//   - *ScaleParameters: 学習したパラメータ
//   - error: 未知のメソッドの場合
//
// 使用例:
//
//	scaled, params, err := preprocessing.Scale(rows, []string{"age", "income"}, preprocessing.ScalingStandard)
//	unseen := params.Apply(newRows)
func Scale(rows []dataset.Row, features []string, method ScalingMethod) ([]dataset.Row, *ScaleParameters, error) {
	if !method.Valid() {
		return nil, nil, errors.NewValidationError("scaling", "unknown scaling method", method)
	}

	params := &ScaleParameters{Method: method, Params: map[string]FeatureScale{}}
	if method == ScalingNone || len(rows) == 0 {
		return dataset.CloneRows(rows), params, nil
	}

	for _, feature := range features {
		// eligibility follows the first row's type
		if !rows[0][feature].IsNumber() {
			continue
		}
		vals := validValues(rows, feature)
		if len(vals) == 0 {
			continue
		}
		params.Features = append(params.Features, feature)
		params.Params[feature] = fitFeature(vals, method)
	}

	return params.Apply(rows), params, nil
}

func fitFeature(vals []float64, method ScalingMethod) FeatureScale {
	var fs FeatureScale
	switch method {
	case ScalingMinMax:
		fs.Min, fs.Max = floats.Min(vals), floats.Max(vals)
	case ScalingStandard:
		fs.Mean, fs.Std = stat.PopMeanStdDev(vals, nil)
		// a constant column can still produce a rounding-noise std
		if floats.Max(vals) == floats.Min(vals) {
			fs.Std = 0
		}
	case ScalingRobust:
		sorted := append([]float64(nil), vals...)
		sort.Float64s(sorted)
		n := float64(len(sorted))
		fs.Median = sorted[int(math.Floor(n*0.5))]
		fs.Q1 = sorted[int(math.Floor(n*0.25))]
		fs.Q3 = sorted[int(math.Floor(n*0.75))]
		fs.IQR = fs.Q3 - fs.Q1
	}
	return fs
}

// Apply は学習済みパラメータを新しい行に適用する（入力は変更しない）
func (p *ScaleParameters) Apply(rows []dataset.Row) []dataset.Row {
	out := dataset.CloneRows(rows)
	if p == nil {
		return out
	}
	for _, row := range out {
		for _, feature := range p.Features {
			if x, ok := row[feature].Float(); ok {
				row[feature] = dataset.Number(p.Transform(feature, x))
			}
		}
	}
	return out
}

// Transform scales one value of feature. Unknown features and degenerate
// spreads pass through unchanged.
func (p *ScaleParameters) Transform(feature string, x float64) float64 {
	if p == nil {
		return x
	}
	fs, ok := p.Params[feature]
	if !ok {
		return x
	}
	switch p.Method {
	case ScalingMinMax:
		if fs.Max != fs.Min {
			return (x - fs.Min) / (fs.Max - fs.Min)
		}
	case ScalingStandard:
		if fs.Std != 0 {
			return (x - fs.Mean) / fs.Std
		}
	case ScalingRobust:
		if fs.IQR != 0 {
			return (x - fs.Median) / fs.IQR
		}
	}
	return x
}

// TransformVector scales x in place, where x[i] belongs to features[i].
func (p *ScaleParameters) TransformVector(features []string, x []float64) {
	for i, f := range features {
		x[i] = p.Transform(f, x[i])
	}
}
