package metrics

import (
	"slices"

	"github.com/YuminosukeSato/scisvm/core/model"
	"github.com/YuminosukeSato/scisvm/dataset"
	"github.com/YuminosukeSato/scisvm/pkg/errors"
	"github.com/rs/zerolog"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

// ModelMetrics は分類モデルの評価結果
//
// Precision / Recall / F1Score / Support は Classes と同じ順序で並ぶ。
// ConfusionMatrix の行は正解クラス、列は予測クラスのインデックス。
type ModelMetrics struct {
	Accuracy        float64         `json:"accuracy"`
	Precision       []float64       `json:"precision"`
	Recall          []float64       `json:"recall"`
	F1Score         []float64       `json:"f1Score"`
	Support         []int           `json:"support"`
	ConfusionMatrix [][]int         `json:"confusionMatrix"`
	Classes         []int           `json:"classes"`
	ClassLabels     []dataset.Value `json:"classLabels"`
	MacroPrecision  float64         `json:"macroPrecision"`
	MacroRecall     float64         `json:"macroRecall"`
	MacroF1         float64         `json:"macroF1"`
	CrossValidation []float64       `json:"crossValidation,omitempty"`
}

// MarshalZerologObject implements zerolog.LogObjectMarshaler.
func (m *ModelMetrics) MarshalZerologObject(e *zerolog.Event) {
	e.Float64("accuracy", m.Accuracy).
		Float64("macro_precision", m.MacroPrecision).
		Float64("macro_recall", m.MacroRecall).
		Float64("macro_f1", m.MacroF1).
		Ints("classes", m.Classes)
	if len(m.CrossValidation) > 0 {
		e.Floats64("cross_validation", m.CrossValidation)
	}
}

// CrossValidationMean は交差検証スコアの平均を返す（スコアが無ければ 0）
func (m *ModelMetrics) CrossValidationMean() float64 {
	if len(m.CrossValidation) == 0 {
		return 0
	}
	return stat.Mean(m.CrossValidation, nil)
}

// Option は評価のオプション
type Option func(*options)

type options struct {
	decode func(int) dataset.Value
}

// WithLabelDecoder は整数クラスを表示用ラベルへ戻す関数を設定する
func WithLabelDecoder(decode func(int) dataset.Value) Option {
	return func(o *options) {
		o.decode = decode
	}
}

func defaultDecode(code int) dataset.Value {
	return dataset.Number(float64(code))
}

// Accuracy は正解率を計算する
func Accuracy(yTrue, yPred []int) (float64, error) {
	if len(yTrue) == 0 {
		return 0, errors.NewValueError("Accuracy", "empty labels")
	}
	if len(yPred) != len(yTrue) {
		return 0, errors.NewDimensionError("Accuracy", len(yTrue), len(yPred), 0)
	}
	correct := 0
	for i := range yTrue {
		if yTrue[i] == yPred[i] {
			correct++
		}
	}
	return float64(correct) / float64(len(yTrue)), nil
}

// ConfusionMatrix は混同行列とクラス一覧を返す
//
// クラス一覧は正解ラベルと予測ラベルの和集合を昇順に並べたもの。
// テストデータに無いクラスを予測した場合もその行・列が含まれる。
func ConfusionMatrix(yTrue, yPred []int) ([][]int, []int, error) {
	if len(yTrue) == 0 {
		return nil, nil, errors.NewValueError("ConfusionMatrix", "empty labels")
	}
	if len(yPred) != len(yTrue) {
		return nil, nil, errors.NewDimensionError("ConfusionMatrix", len(yTrue), len(yPred), 0)
	}

	classes := slices.Concat(yTrue, yPred)
	slices.Sort(classes)
	classes = slices.Compact(classes)

	index := make(map[int]int, len(classes))
	for i, c := range classes {
		index[c] = i
	}

	cm := make([][]int, len(classes))
	for i := range cm {
		cm[i] = make([]int, len(classes))
	}
	for i := range yTrue {
		cm[index[yTrue[i]]][index[yPred[i]]]++
	}
	return cm, classes, nil
}

// FromLabels は正解と予測の整数ラベルから評価指標を計算する
//
// パラメータ:
//   - yTrue: 正解ラベル
//   - yPred: 予測ラベル（yTrue と同じ長さ）
//
// 戻り値:
//   - *ModelMetrics: 正解率、クラスごとの適合率・再現率・F1、混同行列
//   - error: 空入力または長さ不一致の場合
func FromLabels(yTrue, yPred []int, opts ...Option) (*ModelMetrics, error) {
	o := options{decode: defaultDecode}
	for _, opt := range opts {
		opt(&o)
	}

	cm, classes, err := ConfusionMatrix(yTrue, yPred)
	if err != nil {
		return nil, err
	}
	acc, err := Accuracy(yTrue, yPred)
	if err != nil {
		return nil, err
	}

	k := len(classes)
	m := &ModelMetrics{
		Accuracy:        acc,
		Precision:       make([]float64, k),
		Recall:          make([]float64, k),
		F1Score:         make([]float64, k),
		Support:         make([]int, k),
		ConfusionMatrix: cm,
		Classes:         classes,
		ClassLabels:     make([]dataset.Value, k),
	}

	for j := 0; j < k; j++ {
		var colSum, rowSum int
		for i := 0; i < k; i++ {
			colSum += cm[i][j]
			rowSum += cm[j][i]
		}
		tp := float64(cm[j][j])
		m.Precision[j] = errors.SafeDivide(tp, float64(colSum))
		m.Recall[j] = errors.SafeDivide(tp, float64(rowSum))
		p, r := m.Precision[j], m.Recall[j]
		m.F1Score[j] = errors.SafeDivide(2*p*r, p+r)
		m.Support[j] = rowSum
		m.ClassLabels[j] = o.decode(classes[j])
	}

	m.MacroPrecision = stat.Mean(m.Precision, nil)
	m.MacroRecall = stat.Mean(m.Recall, nil)
	m.MacroF1 = stat.Mean(m.F1Score, nil)
	return m, nil
}

// Evaluate は学習済み分類器でテスト行列を予測し、評価指標を計算する
//
// 使用例:
//
//	m, err := metrics.Evaluate(clf, XTest, yTest, metrics.WithLabelDecoder(codec.Decode))
func Evaluate(clf model.Classifier, X mat.Matrix, yTrue []int, opts ...Option) (*ModelMetrics, error) {
	if clf == nil || !clf.IsFitted() {
		return nil, errors.NewNotFittedError("Classifier", "Evaluate")
	}
	rows, _ := X.Dims()
	if rows == 0 {
		return nil, errors.NewValueError("Evaluate", "empty test matrix")
	}
	if rows != len(yTrue) {
		return nil, errors.NewDimensionError("Evaluate", rows, len(yTrue), 0)
	}
	yPred, err := clf.Predict(X)
	if err != nil {
		return nil, errors.NewModelError("Evaluate", "prediction failed", err)
	}
	return FromLabels(yTrue, yPred, opts...)
}
