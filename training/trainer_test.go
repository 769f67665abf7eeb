package training

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/scisvm/core/model"
	"github.com/YuminosukeSato/scisvm/dataset"
	"github.com/YuminosukeSato/scisvm/pkg/errors"
	"github.com/YuminosukeSato/scisvm/pkg/log"
)

func TestTrainLinearSeparable(t *testing.T) {
	rows, labels := separable(20, 1)
	features := []string{"x", "y"}

	m, err := quietTrainer().Train(rows, labels, features, linearConfig())
	require.NoError(t, err)

	assert.NotEmpty(t, m.ID)
	assert.Equal(t, model.KernelLinear, m.Kernel())
	assert.Equal(t, features, m.Features)
	assert.Equal(t, 40, m.NSamples)
	assert.True(t, m.Codec.Categorical)
	assert.GreaterOrEqual(t, m.Duration.Nanoseconds(), int64(0))

	testRows, testLabels := separable(10, 2)
	metrics, err := m.Evaluate(testRows, testLabels)
	require.NoError(t, err)
	assert.Equal(t, 1.0, metrics.Accuracy)
	assert.Equal(t, []dataset.Value{dataset.Text("n"), dataset.Text("y")}, metrics.ClassLabels)
}

func TestTrainLogsCompletion(t *testing.T) {
	logger, _ := log.NewTestLogger(log.LevelInfo)
	rows, labels := separable(10, 3)

	m, err := NewTrainer(WithLogger(logger)).Train(rows, labels, []string{"x", "y"}, linearConfig())
	require.NoError(t, err)

	assert.True(t, logger.ContainsMessage("Training completed"))
	assert.True(t, logger.ContainsField(log.EstimatorIDKey, m.ID))
	assert.True(t, logger.ContainsField(log.KernelKey, "linear"))
}

func TestFeatureMatrixNonNumericBecomesZero(t *testing.T) {
	rows := []dataset.Row{
		{"a": dataset.Number(1), "b": dataset.Text("red")},
		{"a": dataset.Null(), "b": dataset.Number(2)},
	}
	X := FeatureMatrix(rows, []string{"a", "b", "missing"})
	assert.Equal(t, []float64{1, 0, 0}, mat.Row(nil, 0, X))
	assert.Equal(t, []float64{0, 2, 0}, mat.Row(nil, 1, X))
}

func TestTrainErrors(t *testing.T) {
	rows, labels := separable(5, 4)
	trainer := quietTrainer()

	t.Run("empty data", func(t *testing.T) {
		_, err := trainer.Train(nil, nil, []string{"x"}, linearConfig())
		var me *errors.ModelError
		require.True(t, errors.As(err, &me))
		assert.True(t, errors.Is(err, errors.ErrEmptyData))
	})

	t.Run("single class", func(t *testing.T) {
		_, err := trainer.Train(rows[:5], labels[:5], []string{"x", "y"}, linearConfig())
		var me *errors.ModelError
		assert.True(t, errors.As(err, &me))
	})

	t.Run("label count mismatch", func(t *testing.T) {
		_, err := trainer.Train(rows, labels[:3], []string{"x", "y"}, linearConfig())
		var de *errors.DimensionError
		assert.True(t, errors.As(err, &de))
	})

	t.Run("invalid config", func(t *testing.T) {
		cfg := linearConfig()
		cfg.C = 0
		_, err := trainer.Train(rows, labels, []string{"x", "y"}, cfg)
		var ve *errors.ValidationError
		assert.True(t, errors.As(err, &ve))
	})

	t.Run("no features", func(t *testing.T) {
		_, err := trainer.Train(rows, labels, nil, linearConfig())
		var ve *errors.ValidationError
		assert.True(t, errors.As(err, &ve))
	})
}

type brokenClassifier struct {
	panics bool
}

func (b *brokenClassifier) Fit(mat.Matrix, []int) error {
	if b.panics {
		panic("index out of range")
	}
	return errors.New("solver exploded")
}
func (b *brokenClassifier) Predict(mat.Matrix) ([]int, error) { return nil, nil }
func (b *brokenClassifier) Classes() []int                    { return nil }
func (b *brokenClassifier) IsFitted() bool                    { return false }

func brokenBackend(panics bool) model.Backend {
	return model.Backend{
		Name: "broken",
		New: func(model.KernelParams) (model.Classifier, error) {
			return &brokenClassifier{panics: panics}, nil
		},
	}
}

func TestTrainBackendFailuresBecomeModelErrors(t *testing.T) {
	rows, labels := separable(5, 5)

	for _, panics := range []bool{false, true} {
		m, err := quietTrainer(WithBackend(brokenBackend(panics))).Train(rows, labels, []string{"x", "y"}, linearConfig())
		assert.Nil(t, m)
		var me *errors.ModelError
		require.True(t, errors.As(err, &me), "panics=%v: %v", panics, err)
		assert.Equal(t, "training failed", me.Kind)
		if panics {
			var pe *errors.PanicError
			assert.True(t, errors.As(err, &pe))
		}
	}
}

func TestCrossValidate(t *testing.T) {
	rows, labels := separable(15, 6)

	res, err := quietTrainer().CrossValidate(rows, labels, []string{"x", "y"}, linearConfig(), 5, 42)
	require.NoError(t, err)
	require.Len(t, res.Scores, 5)
	for _, s := range res.Scores {
		assert.GreaterOrEqual(t, s, 0.0)
		assert.LessOrEqual(t, s, 1.0)
	}
	assert.InDelta(t, 1.0, res.Mean, 1e-9)
	assert.InDelta(t, 0.0, res.Std, 1e-9)

	_, err = quietTrainer().CrossValidate(rows, labels, []string{"x", "y"}, linearConfig(), 1, 42)
	assert.Error(t, err)
	_, err = quietTrainer().CrossValidate(rows[:3], labels[:3], []string{"x", "y"}, linearConfig(), 5, 42)
	assert.Error(t, err)
}
