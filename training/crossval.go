package training

import (
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"

	"github.com/YuminosukeSato/scisvm/dataset"
	"github.com/YuminosukeSato/scisvm/metrics"
	"github.com/YuminosukeSato/scisvm/pkg/errors"
	"github.com/YuminosukeSato/scisvm/pkg/log"
	"github.com/YuminosukeSato/scisvm/preprocessing"
)

// CVResult holds per-fold accuracy.
type CVResult struct {
	Scores []float64 `json:"scores"`
	Mean   float64   `json:"mean"`
	Std    float64   `json:"std"`
}

// CrossValidate trains one model per fold of a shuffled k-fold split and
// reports each fold's accuracy on its held-out rows. Folds run one after
// another.
func (t *Trainer) CrossValidate(rows []dataset.Row, labels []dataset.Value, features []string, cfg Config, k int, seed uint64) (*CVResult, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if len(features) == 0 {
		return nil, errors.NewValidationError("features", "at least one feature is required", features)
	}
	if len(rows) != len(labels) {
		return nil, errors.NewDimensionError("Trainer.CrossValidate", len(rows), len(labels), 0)
	}
	if k < 2 {
		return nil, errors.NewValidationError("folds", "must be at least 2", k)
	}

	folds, err := preprocessing.NewKFold(k, true, seed).Split(len(rows))
	if err != nil {
		return nil, err
	}
	codec, y, err := FitLabelCodec(labels)
	if err != nil {
		return nil, err
	}
	X := FeatureMatrix(rows, features)

	scores := make([]float64, len(folds))
	for i, fold := range folds {
		XTrain, yTrain := subset(X, y, fold.TrainIndices)
		XTest, yTest := subset(X, y, fold.TestIndices)

		m, err := t.fit(XTrain, yTrain, features, codec, cfg)
		if err != nil {
			return nil, errors.Wrapf(err, "fold %d", i)
		}
		pred, err := m.Classifier.Predict(XTest)
		if err != nil {
			return nil, errors.NewModelError("Trainer.CrossValidate", "prediction failed", err)
		}
		if scores[i], err = metrics.Accuracy(yTest, pred); err != nil {
			return nil, err
		}
		t.logger.Debug("Fold evaluated", log.FoldKey, i, log.AccuracyKey, scores[i])
	}

	mean, std := stat.PopMeanStdDev(scores, nil)
	return &CVResult{Scores: scores, Mean: mean, Std: std}, nil
}

func subset(X *mat.Dense, y []int, idx []int) (*mat.Dense, []int) {
	_, c := X.Dims()
	Xs := mat.NewDense(len(idx), c, nil)
	ys := make([]int, len(idx))
	for i, j := range idx {
		Xs.SetRow(i, X.RawRowView(j))
		ys[i] = y[j]
	}
	return Xs, ys
}
