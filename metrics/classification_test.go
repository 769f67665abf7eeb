package metrics

import (
	"math"
	"testing"

	"github.com/YuminosukeSato/scisvm/dataset"
	"github.com/YuminosukeSato/scisvm/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

func TestAccuracy(t *testing.T) {
	tests := []struct {
		name    string
		yTrue   []int
		yPred   []int
		want    float64
		wantErr bool
	}{
		{name: "Perfect accuracy", yTrue: []int{0, 1, 2, 1, 0}, yPred: []int{0, 1, 2, 1, 0}, want: 1.0},
		{name: "80% accuracy", yTrue: []int{0, 1, 2, 1, 0}, yPred: []int{0, 1, 1, 1, 0}, want: 0.8},
		{name: "Zero accuracy", yTrue: []int{0, 0, 0}, yPred: []int{1, 1, 1}, want: 0.0},
		{name: "Empty labels", yTrue: []int{}, yPred: []int{}, wantErr: true},
		{name: "Length mismatch", yTrue: []int{1, 2}, yPred: []int{1}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Accuracy(tt.yTrue, tt.yPred)
			if (err != nil) != tt.wantErr {
				t.Errorf("Accuracy() error = %v, wantErr %v", err, tt.wantErr)
				return
			}
			if !tt.wantErr && math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("Accuracy() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestConfusionMatrixCoversPredictedOnlyClasses(t *testing.T) {
	// class 9 never appears in the truth, class 3 is never predicted
	yTrue := []int{1, 1, 2, 3}
	yPred := []int{1, 9, 2, 2}

	cm, classes, err := ConfusionMatrix(yTrue, yPred)
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2, 3, 9}, classes)
	assert.Equal(t, [][]int{
		{1, 0, 0, 1},
		{0, 1, 0, 0},
		{0, 1, 0, 0},
		{0, 0, 0, 0},
	}, cm)

	total := 0
	for _, row := range cm {
		for _, v := range row {
			total += v
		}
	}
	assert.Equal(t, len(yTrue), total)
}

func TestFromLabels(t *testing.T) {
	yTrue := []int{0, 0, 0, 1, 1, 2}
	yPred := []int{0, 0, 1, 1, 2, 2}

	m, err := FromLabels(yTrue, yPred)
	require.NoError(t, err)

	tests := []struct {
		class                 int
		precision, recall, f1 float64
		support               int
	}{
		{class: 0, precision: 1, recall: 2.0 / 3, f1: 0.8, support: 3},
		{class: 1, precision: 0.5, recall: 0.5, f1: 0.5, support: 2},
		{class: 2, precision: 0.5, recall: 1, f1: 2.0 / 3, support: 1},
	}
	for j, tt := range tests {
		if m.Classes[j] != tt.class {
			t.Fatalf("Classes[%d] = %d, want %d", j, m.Classes[j], tt.class)
		}
		if math.Abs(m.Precision[j]-tt.precision) > 1e-9 {
			t.Errorf("Precision[%d] = %v, want %v", j, m.Precision[j], tt.precision)
		}
		if math.Abs(m.Recall[j]-tt.recall) > 1e-9 {
			t.Errorf("Recall[%d] = %v, want %v", j, m.Recall[j], tt.recall)
		}
		if math.Abs(m.F1Score[j]-tt.f1) > 1e-9 {
			t.Errorf("F1Score[%d] = %v, want %v", j, m.F1Score[j], tt.f1)
		}
		if m.Support[j] != tt.support {
			t.Errorf("Support[%d] = %d, want %d", j, m.Support[j], tt.support)
		}
	}
	assert.InDelta(t, 4.0/6, m.Accuracy, 1e-9)
	assert.InDelta(t, (1+0.5+0.5)/3, m.MacroPrecision, 1e-9)
	assert.Equal(t, dataset.Number(2), m.ClassLabels[2])
}

func TestFromLabelsZeroDenominators(t *testing.T) {
	// class 5 is only ever a true label and never predicted correctly
	m, err := FromLabels([]int{5, 7}, []int{7, 7})
	require.NoError(t, err)

	assert.Equal(t, []int{5, 7}, m.Classes)
	assert.Equal(t, 0.0, m.Precision[0])
	assert.Equal(t, 0.0, m.Recall[0])
	assert.Equal(t, 0.0, m.F1Score[0])
	assert.InDelta(t, 0.5, m.Precision[1], 1e-12)
	assert.InDelta(t, 1.0, m.Recall[1], 1e-12)
	for _, v := range append(append(m.Precision, m.Recall...), m.F1Score...) {
		assert.False(t, math.IsNaN(v))
	}
}

func TestFromLabelsDecoder(t *testing.T) {
	decode := func(code int) dataset.Value { return dataset.Text(string(rune(code))) }

	m, err := FromLabels([]int{'a', 'b'}, []int{'a', 'b'}, WithLabelDecoder(decode))
	require.NoError(t, err)
	assert.Equal(t, []dataset.Value{dataset.Text("a"), dataset.Text("b")}, m.ClassLabels)
}

type fixedClassifier struct {
	out    []int
	fitted bool
}

func (f *fixedClassifier) Fit(mat.Matrix, []int) error { return nil }
func (f *fixedClassifier) Predict(X mat.Matrix) ([]int, error) {
	r, _ := X.Dims()
	return f.out[:r], nil
}
func (f *fixedClassifier) Classes() []int { return []int{0, 1} }
func (f *fixedClassifier) IsFitted() bool { return f.fitted }

func TestEvaluate(t *testing.T) {
	X := mat.NewDense(4, 1, []float64{0, 1, 2, 3})

	t.Run("predicts and scores", func(t *testing.T) {
		clf := &fixedClassifier{out: []int{0, 0, 1, 1}, fitted: true}
		m, err := Evaluate(clf, X, []int{0, 1, 1, 1})
		require.NoError(t, err)
		assert.InDelta(t, 0.75, m.Accuracy, 1e-12)
		assert.Equal(t, [][]int{{1, 0}, {1, 2}}, m.ConfusionMatrix)
	})

	t.Run("unfitted model", func(t *testing.T) {
		_, err := Evaluate(&fixedClassifier{}, X, []int{0, 1, 1, 1})
		var nf *errors.NotFittedError
		assert.True(t, errors.As(err, &nf))
	})

	t.Run("label count mismatch", func(t *testing.T) {
		clf := &fixedClassifier{out: []int{0, 0, 1, 1}, fitted: true}
		_, err := Evaluate(clf, X, []int{0, 1})
		var de *errors.DimensionError
		assert.True(t, errors.As(err, &de))
	})
}

func TestCrossValidationMean(t *testing.T) {
	m := &ModelMetrics{}
	assert.Equal(t, 0.0, m.CrossValidationMean())
	m.CrossValidation = []float64{0.5, 1}
	assert.InDelta(t, 0.75, m.CrossValidationMean(), 1e-12)
}

func TestPerfectClassifier(t *testing.T) {
	y := []int{3, 1, 2, 2, 1, 3, 3}
	m, err := FromLabels(y, y)
	require.NoError(t, err)

	assert.Equal(t, 1.0, m.Accuracy)
	for j := range m.Classes {
		assert.Equal(t, 1.0, m.Precision[j])
		assert.Equal(t, 1.0, m.Recall[j])
		assert.Equal(t, 1.0, m.F1Score[j])
		for i := range m.Classes {
			if i != j {
				assert.Zero(t, m.ConfusionMatrix[i][j])
			}
		}
	}
}

func TestConfusionMatrixMarginals(t *testing.T) {
	yTrue := []int{0, 1, 2, 2, 1, 0, 0, 2, 1, 1}
	yPred := []int{0, 2, 2, 1, 1, 0, 1, 2, 0, 1}

	m, err := FromLabels(yTrue, yPred)
	require.NoError(t, err)

	count := func(ys []int, c int) int {
		n := 0
		for _, y := range ys {
			if y == c {
				n++
			}
		}
		return n
	}
	for i, c := range m.Classes {
		rowSum, colSum := 0, 0
		for j := range m.Classes {
			rowSum += m.ConfusionMatrix[i][j]
			colSum += m.ConfusionMatrix[j][i]
		}
		assert.Equal(t, count(yTrue, c), rowSum, "row %d", c)
		assert.Equal(t, count(yPred, c), colSum, "column %d", c)
		assert.Equal(t, rowSum, m.Support[i])
	}
}
