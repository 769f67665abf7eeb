package training

import (
	"encoding/json"
	"io"
	"time"

	"github.com/YuminosukeSato/scisvm/core/model"
	"github.com/YuminosukeSato/scisvm/pkg/errors"
	"github.com/YuminosukeSato/scisvm/preprocessing"
)

// BundleVersion is bumped when the Bundle layout changes.
const BundleVersion = 1

// Bundle is everything needed to predict with a trained model outside the
// process that trained it. It is stored with gob; the classifier itself is
// kept as the backend's JSON snapshot.
type Bundle struct {
	Version     int
	ID          string
	Backend     string
	Snapshot    []byte
	Config      Config
	Features    []string
	Codec       LabelCodec
	ScaleParams *preprocessing.ScaleParameters
	NSamples    int
	TrainedAt   time.Time
	Duration    time.Duration
}

// NewBundle packages m. scale may be nil when no scaling was applied.
func NewBundle(m *TrainedModel, scale *preprocessing.ScaleParameters) (*Bundle, error) {
	if m == nil || m.Classifier == nil || !m.Classifier.IsFitted() {
		return nil, errors.NewNotFittedError("TrainedModel", "NewBundle")
	}
	marshaler, ok := m.Classifier.(json.Marshaler)
	if !ok {
		return nil, errors.NewValueError("NewBundle", "backend classifier cannot be serialized")
	}
	snapshot, err := marshaler.MarshalJSON()
	if err != nil {
		return nil, err
	}
	b := &Bundle{
		Version:     BundleVersion,
		ID:          m.ID,
		Backend:     m.Backend,
		Snapshot:    snapshot,
		Config:      m.Config,
		Features:    append([]string(nil), m.Features...),
		ScaleParams: scale,
		NSamples:    m.NSamples,
		TrainedAt:   m.TrainedAt,
		Duration:    m.Duration,
	}
	if m.Codec != nil {
		b.Codec = *m.Codec
	}
	return b, nil
}

// Save writes the bundle to path.
func (b *Bundle) Save(path string) error {
	return model.SaveModel(b, path)
}

// Write writes the bundle to w.
func (b *Bundle) Write(w io.Writer) error {
	return model.SaveModelToWriter(b, w)
}

// LoadBundle reads a bundle written by Save.
func LoadBundle(path string) (*Bundle, error) {
	var b Bundle
	if err := model.LoadModel(&b, path); err != nil {
		return nil, err
	}
	if err := b.validate(); err != nil {
		return nil, err
	}
	return &b, nil
}

// ReadBundle reads a bundle written by Write.
func ReadBundle(r io.Reader) (*Bundle, error) {
	var b Bundle
	if err := model.LoadModelFromReader(&b, r); err != nil {
		return nil, err
	}
	if err := b.validate(); err != nil {
		return nil, err
	}
	return &b, nil
}

func (b *Bundle) validate() error {
	if b.Version != BundleVersion {
		return errors.NewValidationError("version", "unsupported bundle version", b.Version)
	}
	if len(b.Snapshot) == 0 {
		return errors.NewValidationError("snapshot", "bundle holds no model", nil)
	}
	if len(b.Features) == 0 {
		return errors.NewValidationError("features", "bundle lists no features", nil)
	}
	return nil
}

// Model restores the trained model through backend, which must be the
// backend the bundle was written with.
func (b *Bundle) Model(backend model.Backend) (*TrainedModel, error) {
	if backend.Restore == nil {
		return nil, errors.NewValueError("Bundle.Model", "backend cannot restore models")
	}
	if b.Backend != "" && backend.Name != b.Backend {
		return nil, errors.NewValidationError("backend", "bundle was written by "+b.Backend, backend.Name)
	}
	clf, err := backend.Restore(b.Snapshot)
	if err != nil {
		return nil, err
	}
	codec := b.Codec
	if codec.Seen == nil {
		codec.Seen = map[int][]string{}
	}
	return &TrainedModel{
		ID:         b.ID,
		Backend:    backend.Name,
		Classifier: clf,
		Config:     b.Config,
		Features:   append([]string(nil), b.Features...),
		Codec:      &codec,
		NSamples:   b.NSamples,
		TrainedAt:  b.TrainedAt,
		Duration:   b.Duration,
	}, nil
}
