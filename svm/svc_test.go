package svm

import (
	"math"
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/scisvm/core/model"
	"github.com/YuminosukeSato/scisvm/pkg/errors"
	"github.com/YuminosukeSato/scisvm/pkg/log"
)

// blobs draws perClass points around each center with the given spread.
func blobs(centers [][]float64, perClass int, spread float64, seed uint64) (*mat.Dense, []int) {
	r := rand.New(rand.NewPCG(seed, seed))
	d := len(centers[0])
	X := mat.NewDense(len(centers)*perClass, d, nil)
	y := make([]int, 0, len(centers)*perClass)
	row := 0
	for c, center := range centers {
		for i := 0; i < perClass; i++ {
			for j := 0; j < d; j++ {
				X.Set(row, j, center[j]+(r.Float64()*2-1)*spread)
			}
			y = append(y, c)
			row++
		}
	}
	return X, y
}

func quiet() Option {
	l, _ := log.NewTestLogger(log.LevelError)
	return WithLogger(l)
}

func accuracy(pred, truth []int) float64 {
	hit := 0
	for i := range pred {
		if pred[i] == truth[i] {
			hit++
		}
	}
	return float64(hit) / float64(len(pred))
}

func TestLinearSeparable(t *testing.T) {
	X, y := blobs([][]float64{{-2, -2}, {2, 2}}, 30, 0.8, 1)
	clf, err := New(model.KernelParams{Kernel: model.KernelLinear, C: 1}, quiet())
	require.NoError(t, err)
	require.NoError(t, clf.Fit(X, y))

	pred, err := clf.Predict(X)
	require.NoError(t, err)
	assert.Equal(t, 1.0, accuracy(pred, y))
	assert.Equal(t, []int{0, 1}, clf.Classes())
	assert.Greater(t, clf.NSupport(), 0)

	Xt, yt := blobs([][]float64{{-2, -2}, {2, 2}}, 10, 0.8, 99)
	pred, err = clf.Predict(Xt)
	require.NoError(t, err)
	assert.Equal(t, 1.0, accuracy(pred, yt))
}

func TestCoefMatchesDecisionFunction(t *testing.T) {
	X, y := blobs([][]float64{{-2, 0, 1}, {2, 0, 1}}, 25, 0.8, 2)
	clf, err := New(model.KernelParams{Kernel: model.KernelLinear, C: 10}, quiet())
	require.NoError(t, err)
	require.NoError(t, clf.Fit(X, y))

	w, err := clf.Coef()
	require.NoError(t, err)
	require.Len(t, w, 1)
	require.Len(t, w[0], 3)
	// class 0 sits on the negative side of the first axis and is the positive class
	assert.Less(t, w[0][0], 0.0)
	assert.Greater(t, math.Abs(w[0][0]), math.Abs(w[0][1]))

	a := []float64{1, 2, 3}
	b := []float64{-1, 0.5, 2}
	dec, err := clf.DecisionFunction(mat.NewDense(2, 3, append(append([]float64{}, a...), b...)))
	require.NoError(t, err)

	diff := make([]float64, 3)
	floats.SubTo(diff, a, b)
	assert.InDelta(t, floats.Dot(w[0], diff), dec.At(0, 0)-dec.At(1, 0), 1e-9)
}

func TestCoefRequiresLinearKernel(t *testing.T) {
	X, y := blobs([][]float64{{0, 0}, {3, 3}}, 10, 1, 3)
	clf, err := New(model.KernelParams{Kernel: model.KernelRBF, C: 1, GammaMode: model.GammaScale}, quiet())
	require.NoError(t, err)
	require.NoError(t, clf.Fit(X, y))

	_, err = clf.Coef()
	var ve *errors.ValueError
	assert.True(t, errors.As(err, &ve))
}

func TestRBFSolvesXOR(t *testing.T) {
	X, y := blobs([][]float64{{1, 1}, {-1, 1}, {-1, -1}, {1, -1}}, 10, 0.2, 4)
	for i := range y {
		y[i] %= 2
	}
	clf, err := New(model.KernelParams{Kernel: model.KernelRBF, C: 10, GammaMode: model.GammaValue, Gamma: 1}, quiet())
	require.NoError(t, err)
	require.NoError(t, clf.Fit(X, y))

	pred, err := clf.Predict(X)
	require.NoError(t, err)
	assert.Equal(t, 1.0, accuracy(pred, y))
	assert.Equal(t, 1.0, clf.Gamma())
}

func TestMulticlassProbabilities(t *testing.T) {
	X, y := blobs([][]float64{{0, 5}, {5, 0}, {-5, -5}}, 20, 1, 5)
	for i := range y {
		y[i] = []int{10, 20, 30}[y[i]]
	}
	clf, err := New(model.KernelParams{Kernel: model.KernelRBF, C: 1, Probability: true}, quiet())
	require.NoError(t, err)
	require.NoError(t, clf.Fit(X, y))
	assert.Equal(t, []int{10, 20, 30}, clf.Classes())
	assert.True(t, clf.HasProbability())

	pred, err := clf.Predict(X)
	require.NoError(t, err)
	assert.Equal(t, 1.0, accuracy(pred, y))

	proba, err := clf.PredictProba(X)
	require.NoError(t, err)
	r, c := proba.Dims()
	require.Equal(t, len(y), r)
	require.Equal(t, 3, c)
	for i := 0; i < r; i++ {
		row := mat.Row(nil, i, proba)
		assert.InDelta(t, 1, floats.Sum(row), 1e-6)
		for _, p := range row {
			assert.GreaterOrEqual(t, p, 0.0)
			assert.LessOrEqual(t, p, 1.0)
		}
		assert.Equal(t, y[i], clf.Classes()[floats.MaxIdx(row)], "row %d", i)
	}

	dec, err := clf.DecisionFunction(X)
	require.NoError(t, err)
	_, nPairs := dec.Dims()
	assert.Equal(t, 3, nPairs)
}

func TestProbabilityDisabled(t *testing.T) {
	X, y := blobs([][]float64{{0, 0}, {4, 4}}, 5, 1, 6)
	clf, err := New(model.KernelParams{Kernel: model.KernelLinear, C: 1}, quiet())
	require.NoError(t, err)
	require.NoError(t, clf.Fit(X, y))

	assert.False(t, clf.HasProbability())
	_, err = clf.PredictProba(X)
	assert.True(t, errors.Is(err, errors.ErrNoProbability))
}

func TestFitErrors(t *testing.T) {
	clf, err := New(model.KernelParams{Kernel: model.KernelLinear, C: 1}, quiet())
	require.NoError(t, err)

	X := mat.NewDense(3, 2, []float64{1, 2, 3, 4, 5, 6})
	assert.True(t, errors.Is(clf.Fit(X, []int{1, 1, 1}), errors.ErrSingleClass))

	var dim *errors.DimensionError
	assert.True(t, errors.As(clf.Fit(X, []int{0, 1}), &dim))

	bad := mat.NewDense(2, 1, []float64{1, math.NaN()})
	var me *errors.ModelError
	assert.True(t, errors.As(clf.Fit(bad, []int{0, 1}), &me))

	_, err = clf.Predict(X)
	var nf *errors.NotFittedError
	assert.True(t, errors.As(err, &nf))
}

func TestPredictDimensionMismatch(t *testing.T) {
	X, y := blobs([][]float64{{0, 0}, {4, 4}}, 5, 1, 7)
	clf, err := New(model.KernelParams{Kernel: model.KernelLinear, C: 1}, quiet())
	require.NoError(t, err)
	require.NoError(t, clf.Fit(X, y))

	_, err = clf.Predict(mat.NewDense(1, 3, nil))
	var dim *errors.DimensionError
	require.True(t, errors.As(err, &dim))
	assert.Equal(t, 2, dim.Expected)
}

func TestNonConvergenceFails(t *testing.T) {
	X, y := blobs([][]float64{{0, 0}, {1, 1}}, 30, 1.5, 8)
	clf, err := New(model.KernelParams{Kernel: model.KernelLinear, C: 100}, quiet(), WithMaxIter(1))
	require.NoError(t, err)

	err = clf.Fit(X, y)
	var cw *errors.ConvergenceWarning
	require.True(t, errors.As(err, &cw), "got %v", err)
	assert.Equal(t, 1, cw.Iterations)
	assert.False(t, clf.IsFitted())
}

func TestUnscaledOverlappingLinearConverges(t *testing.T) {
	X, y := blobs([][]float64{{0, 0}, {30, 30}}, 100, 50, 11)
	clf, err := New(model.KernelParams{Kernel: model.KernelLinear, C: 10}, quiet())
	require.NoError(t, err)

	require.NoError(t, clf.Fit(X, y))
	assert.True(t, clf.IsFitted())

	pred, err := clf.Predict(X)
	require.NoError(t, err)
	assert.Greater(t, accuracy(pred, y), 0.5)
}

func TestSelectPairUsesCurvature(t *testing.T) {
	// samples 1 and 2 violate equally; 2 is closer to 0 in feature space,
	// so the pair (0, 2) decreases the objective more.
	p := &problem{
		gram: mat.NewSymDense(3, []float64{
			1, 0, 0.9,
			0, 1, 0,
			0.9, 0, 1,
		}),
		idx: []int{0, 1, 2},
		y:   []float64{1, -1, -1},
		c:   1,
	}
	i, j, gap := p.selectPair([]float64{0, 0, 0}, []float64{-1, -1, -1})
	assert.Equal(t, 0, i)
	assert.Equal(t, 2, j)
	assert.Equal(t, 2.0, gap)
}

func TestIterationCap(t *testing.T) {
	clf, err := New(model.KernelParams{Kernel: model.KernelLinear, C: 1})
	require.NoError(t, err)
	assert.Equal(t, 10_000_000, clf.iterationCap(500))
	assert.Equal(t, 20_000_000, clf.iterationCap(200_000))

	capped, err := New(model.KernelParams{Kernel: model.KernelLinear, C: 1}, WithMaxIter(50))
	require.NoError(t, err)
	assert.Equal(t, 50, capped.iterationCap(200_000))
}

func TestFitRejectsOversizedTrainingSet(t *testing.T) {
	X, y := blobs([][]float64{{0, 0}, {4, 4}}, 10, 1, 12)
	clf, err := New(model.KernelParams{Kernel: model.KernelLinear, C: 1}, quiet(), WithMaxSamples(15))
	require.NoError(t, err)

	err = clf.Fit(X, y)
	var ve *errors.ValidationError
	require.True(t, errors.As(err, &ve), "got %v", err)
	assert.Equal(t, "samples", ve.ParamName)
	assert.False(t, clf.IsFitted())

	unlimited, err := New(model.KernelParams{Kernel: model.KernelLinear, C: 1}, quiet(), WithMaxSamples(0))
	require.NoError(t, err)
	require.NoError(t, unlimited.Fit(X, y))
}

func TestNewValidation(t *testing.T) {
	tests := []struct {
		name   string
		params model.KernelParams
		param  string
	}{
		{"unknown kernel", model.KernelParams{Kernel: "cosine", C: 1}, "kernel"},
		{"zero C", model.KernelParams{Kernel: model.KernelLinear, C: 0}, "C"},
		{"negative gamma", model.KernelParams{Kernel: model.KernelRBF, C: 1, GammaMode: model.GammaValue, Gamma: -1}, "gamma"},
		{"bad gamma mode", model.KernelParams{Kernel: model.KernelRBF, C: 1, GammaMode: "huge"}, "gamma"},
		{"zero degree", model.KernelParams{Kernel: model.KernelPolynomial, C: 1}, "degree"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.params)
			var ve *errors.ValidationError
			require.True(t, errors.As(err, &ve))
			assert.Equal(t, tt.param, ve.ParamName)
		})
	}
}

func TestGammaResolution(t *testing.T) {
	X, y := blobs([][]float64{{0, 0}, {4, 4}}, 10, 1, 9)

	auto, err := New(model.KernelParams{Kernel: model.KernelRBF, C: 1, GammaMode: model.GammaAuto}, quiet())
	require.NoError(t, err)
	require.NoError(t, auto.Fit(X, y))
	assert.Equal(t, 0.5, auto.Gamma())

	scale, err := New(model.KernelParams{Kernel: model.KernelRBF, C: 1, GammaMode: model.GammaScale}, quiet())
	require.NoError(t, err)
	require.NoError(t, scale.Fit(X, y))

	var flat []float64
	r, c := X.Dims()
	for i := 0; i < r; i++ {
		flat = append(flat, mat.Row(nil, i, X)...)
	}
	mean := floats.Sum(flat) / float64(len(flat))
	var v float64
	for _, x := range flat {
		v += (x - mean) * (x - mean)
	}
	v /= float64(len(flat))
	assert.InDelta(t, 1/(float64(c)*v), scale.Gamma(), 1e-12)
}

func TestPolynomialAndSigmoidKernels(t *testing.T) {
	X, y := blobs([][]float64{{-2, -2}, {2, 2}}, 15, 0.5, 10)
	for _, p := range []model.KernelParams{
		{Kernel: model.KernelPolynomial, C: 1, Degree: 3, Coef0: 1},
		{Kernel: model.KernelSigmoid, C: 10, GammaMode: model.GammaValue, Gamma: 0.05},
	} {
		clf, err := New(p, quiet())
		require.NoError(t, err)
		require.NoError(t, clf.Fit(X, y), string(p.Kernel))
		pred, err := clf.Predict(X)
		require.NoError(t, err)
		assert.GreaterOrEqual(t, accuracy(pred, y), 0.9, string(p.Kernel))
	}
}
