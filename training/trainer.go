package training

import (
	"time"

	"github.com/google/uuid"
	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/scisvm/core/model"
	"github.com/YuminosukeSato/scisvm/dataset"
	"github.com/YuminosukeSato/scisvm/metrics"
	"github.com/YuminosukeSato/scisvm/pkg/errors"
	"github.com/YuminosukeSato/scisvm/pkg/log"
	"github.com/YuminosukeSato/scisvm/svm"
)

// TrainedModel is the handle returned by Train. It is shared by pointer
// and never copied by the packages that consume it.
type TrainedModel struct {
	ID         string
	Backend    string
	Classifier model.Classifier
	Config     Config
	Features   []string
	Codec      *LabelCodec
	NSamples   int
	TrainedAt  time.Time
	Duration   time.Duration
}

// Kernel returns the kernel the model was trained with.
func (m *TrainedModel) Kernel() model.Kernel {
	if r, ok := m.Classifier.(model.KernelReporter); ok {
		return r.Params().Kernel
	}
	k, _ := model.ParseKernel(string(m.Config.Kernel))
	return k
}

// Matrix converts rows to a feature matrix in the model's feature order.
func (m *TrainedModel) Matrix(rows []dataset.Row) *mat.Dense {
	return FeatureMatrix(rows, m.Features)
}

// Decode maps a class code to its display label.
func (m *TrainedModel) Decode(code int) dataset.Value {
	return m.Codec.Decode(code)
}

// Evaluate predicts rows and scores them against labels.
func (m *TrainedModel) Evaluate(rows []dataset.Row, labels []dataset.Value) (*metrics.ModelMetrics, error) {
	if len(rows) != len(labels) {
		return nil, errors.NewDimensionError("TrainedModel.Evaluate", len(rows), len(labels), 0)
	}
	if len(rows) == 0 {
		return nil, errors.NewValueError("TrainedModel.Evaluate", "no testing rows")
	}
	y, err := m.Codec.EncodeAll(labels)
	if err != nil {
		return nil, err
	}
	return metrics.Evaluate(m.Classifier, m.Matrix(rows), y, metrics.WithLabelDecoder(m.Codec.Decode))
}

// FeatureMatrix builds a rows×features matrix. Cells that are not usable
// numbers (null, text, NaN) become 0.
func FeatureMatrix(rows []dataset.Row, features []string) *mat.Dense {
	if len(rows) == 0 || len(features) == 0 {
		return &mat.Dense{}
	}
	X := mat.NewDense(len(rows), len(features), nil)
	for i, row := range rows {
		X.SetRow(i, row.Vector(features, 0))
	}
	return X
}

// Trainer fits classifiers through a backend.
type Trainer struct {
	backend model.Backend
	logger  log.Logger
}

// TrainerOption configures a Trainer.
type TrainerOption func(*Trainer)

// WithBackend replaces the bundled SMO backend.
func WithBackend(b model.Backend) TrainerOption {
	return func(t *Trainer) {
		t.backend = b
	}
}

// WithLogger sets the logger.
func WithLogger(l log.Logger) TrainerOption {
	return func(t *Trainer) {
		t.logger = l
	}
}

// NewTrainer creates a Trainer.
func NewTrainer(opts ...TrainerOption) *Trainer {
	t := &Trainer{}
	for _, opt := range opts {
		opt(t)
	}
	if t.logger == nil {
		t.logger = log.GetLogger()
	}
	if t.backend.New == nil {
		t.backend = svm.Backend(svm.WithLogger(t.logger))
	}
	return t
}

// Backend returns the backend in use.
func (t *Trainer) Backend() model.Backend {
	return t.backend
}

// Train fits a classifier on rows and labels.
//
// Failures from the backend, including panics, are returned as a
// *errors.ModelError; no partial model is returned alongside an error.
func (t *Trainer) Train(rows []dataset.Row, labels []dataset.Value, features []string, cfg Config) (m *TrainedModel, err error) {
	defer errors.Recover(&err, "Trainer.Train")

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if len(features) == 0 {
		return nil, errors.NewValidationError("features", "at least one feature is required", features)
	}
	if len(rows) != len(labels) {
		return nil, errors.NewDimensionError("Trainer.Train", len(rows), len(labels), 0)
	}
	if len(rows) == 0 {
		return nil, errors.NewModelError("Trainer.Train", "training failed", errors.ErrEmptyData)
	}

	codec, y, err := FitLabelCodec(labels)
	if err != nil {
		return nil, errors.NewModelError("Trainer.Train", "training failed", err)
	}
	X := FeatureMatrix(rows, features)
	return t.fit(X, y, features, codec, cfg)
}

func (t *Trainer) fit(X mat.Matrix, y []int, features []string, codec *LabelCodec, cfg Config) (*TrainedModel, error) {
	id := uuid.NewString()
	logger := t.logger.With(
		log.ComponentKey, "training",
		log.EstimatorIDKey, id,
		log.OperationKey, log.OperationFit,
	)
	params := cfg.KernelParams()

	start := time.Now()
	clf, err := t.backend.New(params)
	if err != nil {
		return nil, errors.NewModelError("Trainer.Train", "training failed", err)
	}
	err = errors.SafeExecute("Trainer.Train", func() error {
		return clf.Fit(X, y)
	})
	if err != nil {
		logger.Error("Training failed", err, log.KernelKey, string(params.Kernel))
		var me *errors.ModelError
		if errors.As(err, &me) {
			return nil, err
		}
		return nil, errors.NewModelError("Trainer.Train", "training failed", err)
	}
	duration := time.Since(start)

	n, _ := X.Dims()
	logger.Info("Training completed",
		log.KernelKey, string(params.Kernel),
		log.CKey, params.C,
		log.SamplesKey, n,
		log.FeaturesKey, len(features),
		log.ClassesKey, len(clf.Classes()),
		log.DurationMsKey, duration.Milliseconds(),
	)

	return &TrainedModel{
		ID:         id,
		Backend:    t.backend.Name,
		Classifier: clf,
		Config:     cfg,
		Features:   append([]string(nil), features...),
		Codec:      codec,
		NSamples:   n,
		TrainedAt:  start,
		Duration:   duration,
	}, nil
}
