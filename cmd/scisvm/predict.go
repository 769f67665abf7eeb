package main

import (
	"encoding/json"
	"io"
	"os"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/YuminosukeSato/scisvm/dataset"
	"github.com/YuminosukeSato/scisvm/inference"
	"github.com/YuminosukeSato/scisvm/pkg/errors"
	"github.com/YuminosukeSato/scisvm/pkg/log"
	"github.com/YuminosukeSato/scisvm/svm"
	"github.com/YuminosukeSato/scisvm/training"
)

type predictionRecord struct {
	Row              int                        `json:"row"`
	PredictedClass   dataset.Value              `json:"predictedClass"`
	Probability      *decimal.Decimal           `json:"probability,omitempty"`
	ConfidenceScores map[string]decimal.Decimal `json:"confidenceScores,omitempty"`
}

func predictCommand() *cobra.Command {
	var modelFile string
	var inputFile string
	var outputFile string
	var raw bool

	var cmd = &cobra.Command{
		Use:   "predict -m model.bundle -d inputs.csv [-o predictions.json]",
		Short: "Predicts every row of a CSV file with a saved model bundle",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			write := func(w io.Writer) error {
				return runPredict(modelFile, inputFile, raw, w)
			}
			if outputFile == "" {
				return write(cmd.OutOrStdout())
			}
			file, err := os.Create(outputFile)
			if err != nil {
				return errors.Wrapf(err, "failed to create %s", outputFile)
			}
			return writeAndClose(file, outputFile, write)
		},
	}

	cmd.Flags().StringVarP(&modelFile, "model", "m", "", "model bundle written by train")
	cmd.Flags().StringVarP(&inputFile, "data", "d", "", "CSV file with the feature columns")
	cmd.Flags().StringVarP(&outputFile, "output", "o", "", "file to write predictions to (optional, uses stdout if not present)")
	cmd.Flags().BoolVarP(&raw, "raw", "", false, "pass inputs to the model without the training-time scaling")

	_ = cmd.MarkFlagRequired("model")
	_ = cmd.MarkFlagRequired("data")

	return cmd
}

// writeAndClose runs write against w and closes it; a failed close is
// reported since buffered output may be lost.
func writeAndClose(w io.WriteCloser, name string, write func(io.Writer) error) error {
	if err := write(w); err != nil {
		_ = w.Close()
		return err
	}
	if err := w.Close(); err != nil {
		return errors.Wrapf(err, "failed to close %s", name)
	}
	return nil
}

func runPredict(modelFile, inputFile string, raw bool, out io.Writer) error {
	logger := log.GetLogger()

	bundle, err := training.LoadBundle(modelFile)
	if err != nil {
		return err
	}
	m, err := bundle.Model(svm.Backend(svm.WithLogger(logger)))
	if err != nil {
		return err
	}

	opts := []inference.Option{inference.WithLogger(logger)}
	if !raw {
		opts = append(opts, inference.WithScaleParameters(bundle.ScaleParams))
	}
	predictor, err := inference.NewPredictor(m, opts...)
	if err != nil {
		return err
	}

	ds, err := dataset.ReadCSVFile(inputFile)
	if err != nil {
		return err
	}
	for _, f := range predictor.Features() {
		if !ds.HasColumn(f) {
			logger.Warn("Feature column missing from input, using 0", "feature", f)
		}
	}

	results, err := predictor.PredictBatch(ds.Rows)
	if err != nil {
		logger.Error("Prediction failed", err)
		return err
	}

	records := make([]predictionRecord, len(results))
	for i, res := range results {
		records[i] = predictionRecord{Row: i, PredictedClass: res.PredictedClass}
		if res.Probability != nil {
			p := round(*res.Probability)
			records[i].Probability = &p
		}
		if res.ConfidenceScores != nil {
			records[i].ConfidenceScores = make(map[string]decimal.Decimal, len(res.ConfidenceScores))
			for label, v := range res.ConfidenceScores {
				records[i].ConfidenceScores[label] = round(v)
			}
		}
	}
	logger.Info("Predictions completed", log.EstimatorIDKey, m.ID, log.PredsKey, len(records))

	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(records)
}
