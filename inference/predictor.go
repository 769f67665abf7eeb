// Package inference runs a trained model on new inputs, one at a time or in
// batches.
package inference

import (
	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/scisvm/core/model"
	"github.com/YuminosukeSato/scisvm/core/parallel"
	"github.com/YuminosukeSato/scisvm/dataset"
	"github.com/YuminosukeSato/scisvm/pkg/errors"
	"github.com/YuminosukeSato/scisvm/pkg/log"
	"github.com/YuminosukeSato/scisvm/preprocessing"
	"github.com/YuminosukeSato/scisvm/training"
)

// PredictionResult is the outcome for one input.
type PredictionResult struct {
	// PredictedClass is the class in its display form (see training.LabelCodec).
	PredictedClass dataset.Value `json:"predictedClass"`
	Code           int           `json:"code"`
	// Probability of PredictedClass. Nil without probability support.
	Probability *float64 `json:"probability,omitempty"`
	// ConfidenceScores maps every class label to its probability.
	ConfidenceScores map[string]float64 `json:"confidenceScores,omitempty"`
}

// Predictor wraps a trained model for prediction.
type Predictor struct {
	model  *training.TrainedModel
	scale  *preprocessing.ScaleParameters
	logger log.Logger
}

// Option configures a Predictor.
type Option func(*Predictor)

// WithScaleParameters replays training-time scaling on every input. Without
// it inputs are passed to the model as given.
func WithScaleParameters(p *preprocessing.ScaleParameters) Option {
	return func(pr *Predictor) {
		pr.scale = p
	}
}

// WithLogger sets the logger.
func WithLogger(l log.Logger) Option {
	return func(pr *Predictor) {
		pr.logger = l
	}
}

// NewPredictor returns a Predictor for m.
func NewPredictor(m *training.TrainedModel, opts ...Option) (*Predictor, error) {
	if m == nil || m.Classifier == nil || !m.Classifier.IsFitted() {
		return nil, errors.NewNotFittedError("TrainedModel", "NewPredictor")
	}
	p := &Predictor{model: m}
	for _, opt := range opts {
		opt(p)
	}
	if p.logger == nil {
		p.logger = log.GetLogger()
	}
	p.logger = p.logger.With(log.ComponentKey, "inference", log.EstimatorIDKey, m.ID)
	return p, nil
}

// Features returns the feature order inputs are read in.
func (p *Predictor) Features() []string {
	return append([]string(nil), p.model.Features...)
}

// vector reads values in feature order. Missing and non-numeric entries are
// 0 and are not scaled.
func (p *Predictor) vector(values []dataset.Value) []float64 {
	x := make([]float64, len(values))
	for i, v := range values {
		f, ok := v.Float()
		if !ok {
			continue
		}
		x[i] = p.scale.Transform(p.model.Features[i], f)
	}
	return x
}

// PredictValues predicts one input given as values in feature order.
func (p *Predictor) PredictValues(values []dataset.Value) (*PredictionResult, error) {
	if len(values) != len(p.model.Features) {
		return nil, errors.NewDimensionError("Predictor.PredictValues", len(p.model.Features), len(values), 1)
	}
	return p.predict(p.vector(values))
}

// Predict predicts one input row. Columns outside the feature list are ignored.
func (p *Predictor) Predict(input dataset.Row) (*PredictionResult, error) {
	values := make([]dataset.Value, len(p.model.Features))
	for i, f := range p.model.Features {
		values[i] = input.Get(f)
	}
	return p.predict(p.vector(values))
}

func (p *Predictor) predict(x []float64) (res *PredictionResult, err error) {
	defer errors.Recover(&err, "Predictor.Predict")

	X := mat.NewDense(1, len(x), x)
	clf := p.model.Classifier
	codes, err := clf.Predict(X)
	if err != nil {
		return nil, err
	}
	res = &PredictionResult{
		PredictedClass: p.model.Decode(codes[0]),
		Code:           codes[0],
	}

	pc, ok := clf.(model.ProbabilisticClassifier)
	if !ok || !pc.HasProbability() {
		return res, nil
	}
	proba, err := pc.PredictProba(X)
	if err != nil {
		return nil, err
	}
	res.ConfidenceScores = make(map[string]float64, len(clf.Classes()))
	for j, class := range clf.Classes() {
		pr := proba.At(0, j)
		res.ConfidenceScores[p.model.Decode(class).String()] = pr
		if class == codes[0] {
			res.Probability = &pr
		}
	}
	return res, nil
}

// PredictBatch predicts every input independently. Results keep input order.
// The first failing input (by position) fails the whole batch.
func (p *Predictor) PredictBatch(inputs []dataset.Row) ([]PredictionResult, error) {
	out := make([]PredictionResult, len(inputs))
	err := parallel.ForEach(len(inputs), parallel.DefaultThreshold, func(i int) error {
		res, err := p.Predict(inputs[i])
		if err != nil {
			return errors.Wrapf(err, "input %d", i)
		}
		out[i] = *res
		return nil
	})
	if err != nil {
		return nil, err
	}
	p.logger.Debug("Batch prediction completed", log.OperationKey, log.OperationPredict, log.PredsKey, len(out))
	return out, nil
}
