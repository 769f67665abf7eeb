package training

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/YuminosukeSato/scisvm/pkg/errors"
	"github.com/YuminosukeSato/scisvm/preprocessing"
	"github.com/YuminosukeSato/scisvm/svm"
)

func TestBundleRoundTrip(t *testing.T) {
	rows, labels := separable(12, 7)
	trainer := quietTrainer()
	m, err := trainer.Train(rows, labels, []string{"x", "y"}, DefaultConfig())
	require.NoError(t, err)

	scale := &preprocessing.ScaleParameters{
		Method:   preprocessing.ScalingMinMax,
		Features: []string{"x", "y"},
		Params: map[string]preprocessing.FeatureScale{
			"x": {Min: 0, Max: 7},
			"y": {Min: 0, Max: 7},
		},
	}
	b, err := NewBundle(m, scale)
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "model.bundle")
	require.NoError(t, b.Save(path))

	loaded, err := LoadBundle(path)
	require.NoError(t, err)
	assert.Equal(t, m.ID, loaded.ID)
	assert.Equal(t, m.Config, loaded.Config)
	assert.Equal(t, scale, loaded.ScaleParams)

	restored, err := loaded.Model(trainer.Backend())
	require.NoError(t, err)
	assert.True(t, restored.Codec.Categorical)

	X := m.Matrix(rows)
	want, err := m.Classifier.Predict(X)
	require.NoError(t, err)
	got, err := restored.Classifier.Predict(X)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestBundleStream(t *testing.T) {
	rows, labels := separable(8, 8)
	m, err := quietTrainer().Train(rows, labels, []string{"x", "y"}, linearConfig())
	require.NoError(t, err)

	b, err := NewBundle(m, nil)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, b.Write(&buf))
	loaded, err := ReadBundle(&buf)
	require.NoError(t, err)
	assert.Nil(t, loaded.ScaleParams)
	assert.Equal(t, m.Features, loaded.Features)
}

func TestBundleRejects(t *testing.T) {
	_, err := NewBundle(nil, nil)
	assert.Error(t, err)

	_, err = ReadBundle(bytes.NewReader([]byte("not gob")))
	assert.Error(t, err)

	var buf bytes.Buffer
	future := &Bundle{Version: 99, Snapshot: []byte("{}"), Features: []string{"x"}}
	require.NoError(t, future.Write(&buf))
	got, err := ReadBundle(&buf)
	var ve *errors.ValidationError
	require.True(t, errors.As(err, &ve))
	assert.Equal(t, "version", ve.ParamName)
	assert.Nil(t, got)

	path := filepath.Join(t.TempDir(), "future.bundle")
	require.NoError(t, future.Save(path))
	got, err = LoadBundle(path)
	assert.Error(t, err)
	assert.Nil(t, got)

	b := &Bundle{Version: BundleVersion, Backend: "other", Snapshot: []byte("{}"), Features: []string{"x"}}
	_, err = b.Model(svm.Backend())
	assert.Error(t, err)
}
