// Package session holds the state of one preprocessing, training and
// prediction workflow as an explicit value.
//
// Stages run in order: LoadDataset, Preprocess, Train, then Predict. A stage
// called before its inputs exist fails with ErrNotReady. Changing an input
// (dataset, options or SVM config) discards everything computed from it; no
// stage is recomputed incrementally.
//
// A Session is not safe for concurrent use.
package session

import (
	"github.com/google/uuid"

	"github.com/YuminosukeSato/scisvm/dataset"
	"github.com/YuminosukeSato/scisvm/inference"
	"github.com/YuminosukeSato/scisvm/inspection"
	"github.com/YuminosukeSato/scisvm/metrics"
	"github.com/YuminosukeSato/scisvm/pkg/errors"
	"github.com/YuminosukeSato/scisvm/pkg/log"
	"github.com/YuminosukeSato/scisvm/preprocessing"
	"github.com/YuminosukeSato/scisvm/training"
)

// ErrNotReady is returned when a stage's inputs have not been produced yet.
var ErrNotReady = errors.New("session: stage not ready")

// DataStatus tracks the dataset side of the session.
type DataStatus string

const (
	DataEmpty     DataStatus = "empty"
	DataLoaded    DataStatus = "loaded"
	DataProcessed DataStatus = "processed"
	DataError     DataStatus = "error"
)

// ModelStatus tracks the model side of the session.
type ModelStatus string

const (
	ModelUntrained ModelStatus = "untrained"
	ModelTrained   ModelStatus = "trained"
	ModelError     ModelStatus = "error"
)

// Session is one workflow's state.
type Session struct {
	id       string
	logger   log.Logger
	pipeline *preprocessing.Pipeline
	trainer  *training.Trainer
	cvFolds  int
	cvSeed   uint64
	rawInput bool

	data      *dataset.Dataset
	options   preprocessing.Options
	processed *preprocessing.Result
	config    training.Config

	model       *training.TrainedModel
	metrics     *metrics.ModelMetrics
	importance  []inspection.FeatureImportance
	predictor   *inference.Predictor
	predictions []inference.PredictionResult

	dataStatus  DataStatus
	modelStatus ModelStatus
}

// Option configures a Session.
type Option func(*Session)

// WithLogger sets the logger.
func WithLogger(l log.Logger) Option {
	return func(s *Session) { s.logger = l }
}

// WithPipeline replaces the default preprocessing pipeline.
func WithPipeline(p *preprocessing.Pipeline) Option {
	return func(s *Session) { s.pipeline = p }
}

// WithTrainer replaces the default trainer.
func WithTrainer(t *training.Trainer) Option {
	return func(s *Session) { s.trainer = t }
}

// WithCrossValidation adds k-fold accuracy on the training split to the
// metrics produced by Train.
func WithCrossValidation(k int, seed uint64) Option {
	return func(s *Session) {
		s.cvFolds = k
		s.cvSeed = seed
	}
}

// WithRawPredictionInput feeds prediction inputs to the model without
// replaying the training-time scaling.
func WithRawPredictionInput() Option {
	return func(s *Session) { s.rawInput = true }
}

// New creates an empty session with default options and SVM config.
func New(opts ...Option) *Session {
	s := &Session{
		id:          uuid.NewString(),
		options:     preprocessing.DefaultOptions(),
		config:      training.DefaultConfig(),
		dataStatus:  DataEmpty,
		modelStatus: ModelUntrained,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = log.GetLogger()
	}
	s.logger = s.logger.With(log.ComponentKey, "session", log.SessionIDKey, s.id)
	if s.pipeline == nil {
		s.pipeline = preprocessing.NewPipeline(preprocessing.WithLogger(s.logger))
	}
	if s.trainer == nil {
		s.trainer = training.NewTrainer(training.WithLogger(s.logger))
	}
	return s
}

// ID identifies the session in logs.
func (s *Session) ID() string { return s.id }

// DataStatus reports the dataset stage.
func (s *Session) DataStatus() DataStatus { return s.dataStatus }

// ModelStatus reports the model stage.
func (s *Session) ModelStatus() ModelStatus { return s.modelStatus }

// LoadDataset replaces the dataset and discards everything derived from it.
func (s *Session) LoadDataset(ds *dataset.Dataset) error {
	if ds == nil || len(ds.Rows) == 0 {
		return errors.NewValidationError("dataset", "contains no rows", nil)
	}
	s.data = ds
	s.dropProcessed()
	s.dataStatus = DataLoaded
	s.logger.Info("Dataset loaded", log.SamplesKey, len(ds.Rows), log.FeaturesKey, len(ds.Columns))
	return nil
}

// Dataset returns the loaded dataset, or nil.
func (s *Session) Dataset() *dataset.Dataset { return s.data }

// SetOptions replaces the preprocessing options and discards the
// preprocessing result and everything after it.
func (s *Session) SetOptions(o preprocessing.Options) {
	s.options = o
	s.dropProcessed()
	if s.data != nil {
		s.dataStatus = DataLoaded
	}
}

// Options returns the current preprocessing options.
func (s *Session) Options() preprocessing.Options { return s.options }

// Preprocess runs the pipeline on the loaded dataset.
func (s *Session) Preprocess() (*preprocessing.Result, error) {
	if s.data == nil {
		return nil, errors.Wrap(ErrNotReady, "no dataset loaded")
	}
	s.dropProcessed()
	res, err := s.pipeline.Run(s.data, s.options)
	if err != nil {
		s.dataStatus = DataError
		return nil, err
	}
	s.processed = res
	s.dataStatus = DataProcessed
	return res, nil
}

// Processed returns the preprocessing result, or nil.
func (s *Session) Processed() *preprocessing.Result { return s.processed }

// SetConfig replaces the SVM configuration and discards the trained model
// and its results.
func (s *Session) SetConfig(cfg training.Config) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	s.config = cfg
	s.dropModel()
	return nil
}

// Config returns the current SVM configuration.
func (s *Session) Config() training.Config { return s.config }

// Train fits a model on the training split, then evaluates it on the
// testing split and extracts feature importance.
func (s *Session) Train() (*training.TrainedModel, error) {
	if s.processed == nil {
		return nil, errors.Wrap(ErrNotReady, "dataset not preprocessed")
	}
	s.dropModel()

	split := s.processed.Split
	features := s.options.Features
	m, err := s.trainer.Train(split.TrainingData, split.TrainingLabels, features, s.config)
	if err != nil {
		s.modelStatus = ModelError
		return nil, err
	}

	var mm *metrics.ModelMetrics
	if len(split.TestingData) > 0 {
		if mm, err = m.Evaluate(split.TestingData, split.TestingLabels); err != nil {
			s.modelStatus = ModelError
			return nil, err
		}
	}
	if s.cvFolds >= 2 {
		cv, err := s.trainer.CrossValidate(split.TrainingData, split.TrainingLabels, features, s.config, s.cvFolds, s.cvSeed)
		if err != nil {
			s.modelStatus = ModelError
			return nil, err
		}
		if mm != nil {
			mm.CrossValidation = cv.Scores
		}
	}

	importance, err := inspection.FeatureImportances(m.Classifier, m.Kernel(), features)
	if err != nil {
		s.modelStatus = ModelError
		return nil, err
	}

	var popts []inference.Option
	popts = append(popts, inference.WithLogger(s.logger))
	if !s.rawInput {
		popts = append(popts, inference.WithScaleParameters(s.processed.ScaleParams))
	}
	predictor, err := inference.NewPredictor(m, popts...)
	if err != nil {
		s.modelStatus = ModelError
		return nil, err
	}

	s.model = m
	s.metrics = mm
	s.importance = importance
	s.predictor = predictor
	s.modelStatus = ModelTrained
	if mm != nil {
		s.logger.Info("Model evaluated", log.AccuracyKey, mm.Accuracy, log.TestSamplesKey, len(split.TestingData))
	}
	return m, nil
}

// Model returns the trained model, or nil.
func (s *Session) Model() *training.TrainedModel { return s.model }

// Metrics returns the testing-split metrics, or nil when untrained or the
// testing split was empty.
func (s *Session) Metrics() *metrics.ModelMetrics { return s.metrics }

// Importance returns the feature importances, or nil when untrained.
func (s *Session) Importance() []inspection.FeatureImportance { return s.importance }

// Predict predicts one input with the trained model.
func (s *Session) Predict(input dataset.Row) (*inference.PredictionResult, error) {
	if s.predictor == nil {
		return nil, errors.Wrap(ErrNotReady, "no trained model")
	}
	res, err := s.predictor.Predict(input)
	if err != nil {
		return nil, err
	}
	s.predictions = []inference.PredictionResult{*res}
	return res, nil
}

// PredictBatch predicts every input with the trained model.
func (s *Session) PredictBatch(inputs []dataset.Row) ([]inference.PredictionResult, error) {
	if s.predictor == nil {
		return nil, errors.Wrap(ErrNotReady, "no trained model")
	}
	res, err := s.predictor.PredictBatch(inputs)
	if err != nil {
		return nil, err
	}
	s.predictions = res
	return res, nil
}

// Predictions returns the results of the last Predict or PredictBatch call.
func (s *Session) Predictions() []inference.PredictionResult { return s.predictions }

// Bundle packages the trained model with the scaling it was trained on.
func (s *Session) Bundle() (*training.Bundle, error) {
	if s.model == nil {
		return nil, errors.Wrap(ErrNotReady, "no trained model")
	}
	return training.NewBundle(s.model, s.processed.ScaleParams)
}

// Reset returns the session to its initial state. Options passed to New
// are kept.
func (s *Session) Reset() {
	s.data = nil
	s.dropProcessed()
	s.options = preprocessing.DefaultOptions()
	s.config = training.DefaultConfig()
	s.dataStatus = DataEmpty
}

func (s *Session) dropProcessed() {
	s.processed = nil
	s.dropModel()
}

func (s *Session) dropModel() {
	s.model = nil
	s.metrics = nil
	s.importance = nil
	s.predictor = nil
	s.predictions = nil
	s.modelStatus = ModelUntrained
}
