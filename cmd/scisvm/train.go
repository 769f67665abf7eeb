package main

import (
	"encoding/json"
	"os"
	"slices"

	"github.com/spf13/cobra"

	"github.com/YuminosukeSato/scisvm/config"
	"github.com/YuminosukeSato/scisvm/core/model"
	"github.com/YuminosukeSato/scisvm/dataset"
	"github.com/YuminosukeSato/scisvm/pkg/errors"
	"github.com/YuminosukeSato/scisvm/pkg/log"
	"github.com/YuminosukeSato/scisvm/preprocessing"
	"github.com/YuminosukeSato/scisvm/session"
	"github.com/YuminosukeSato/scisvm/training"
)

type trainFlags struct {
	dataFile   string
	configFile string
	outputFile string
	reportFile string

	target      string
	features    []string
	strategy    string
	constant    float64
	scaling     string
	testRatio   float64
	seed        uint64
	kernel      string
	c           float64
	gamma       string
	degree      int
	coef0       float64
	probability bool
	cvFolds     int
}

func trainCommand() *cobra.Command {
	var f trainFlags

	var cmd = &cobra.Command{
		Use:   "train -d data.csv -t target -o model.bundle",
		Short: "Preprocesses a CSV dataset, trains an SVM and saves the model bundle",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTrain(cmd, f)
		},
	}

	cmd.Flags().StringVarP(&f.dataFile, "data", "d", "", "CSV file with a header row")
	cmd.Flags().StringVarP(&f.configFile, "config", "c", "", "YAML configuration file (optional)")
	cmd.Flags().StringVarP(&f.outputFile, "output", "o", "", "file to save the model bundle to")
	cmd.Flags().StringVarP(&f.reportFile, "report", "r", "", "file to write the JSON evaluation report to (optional)")

	cmd.Flags().StringVarP(&f.target, "target", "t", "", "target column")
	cmd.Flags().StringSliceVarP(&f.features, "features", "f", nil, "feature columns (default: every column except the target)")
	cmd.Flags().StringVarP(&f.strategy, "missing", "", "mean", "missing value strategy: mean, median, mode, remove or constant")
	cmd.Flags().Float64VarP(&f.constant, "constant", "", 0, "fill value for the constant strategy")
	cmd.Flags().StringVarP(&f.scaling, "scaling", "", "standard", "scaling: none, minmax, standard or robust")
	cmd.Flags().Float64VarP(&f.testRatio, "test-ratio", "", 0.2, "share of rows held out for testing")
	cmd.Flags().Uint64VarP(&f.seed, "seed", "", 0, "random seed for the train/test split (default: fresh randomness)")
	cmd.Flags().StringVarP(&f.kernel, "kernel", "k", "rbf", "kernel: linear, rbf, polynomial or sigmoid")
	cmd.Flags().Float64VarP(&f.c, "C", "C", 1, "regularization parameter")
	cmd.Flags().StringVarP(&f.gamma, "gamma", "g", "scale", "kernel coefficient: auto, scale or a positive number")
	cmd.Flags().IntVarP(&f.degree, "degree", "", 3, "polynomial degree")
	cmd.Flags().Float64VarP(&f.coef0, "coef0", "", 0, "independent term for polynomial kernels")
	cmd.Flags().BoolVarP(&f.probability, "probability", "p", true, "fit probability estimates")
	cmd.Flags().IntVarP(&f.cvFolds, "cv", "", 0, "cross-validation folds on the training split (0 disables)")

	_ = cmd.MarkFlagRequired("data")
	_ = cmd.MarkFlagRequired("output")

	return cmd
}

// loadTrainConfig merges the config file with the flags set on the command line.
func loadTrainConfig(cmd *cobra.Command, f trainFlags) (*config.Config, error) {
	cfg := config.Default()
	if f.configFile != "" {
		loaded, err := config.Load(f.configFile)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	changed := cmd.Flags().Changed
	if changed("target") {
		cfg.Preprocessing.TargetVariable = f.target
	}
	if changed("features") {
		cfg.Preprocessing.Features = f.features
	}
	if changed("missing") {
		cfg.Preprocessing.MissingValueStrategy = preprocessing.Strategy(f.strategy)
	}
	if changed("constant") {
		cfg.Preprocessing.ConstantValue = &f.constant
	}
	if changed("scaling") {
		cfg.Preprocessing.Scaling = preprocessing.ScalingMethod(f.scaling)
	}
	if changed("test-ratio") {
		cfg.Preprocessing.TestRatio = f.testRatio
	}
	if changed("seed") {
		cfg.Seed = &f.seed
	}
	if changed("kernel") {
		k, err := model.ParseKernel(f.kernel)
		if err != nil {
			return nil, err
		}
		cfg.SVM.Kernel = k
	}
	if changed("C") {
		cfg.SVM.C = f.c
	}
	if changed("gamma") {
		g, err := training.ParseGamma(f.gamma)
		if err != nil {
			return nil, err
		}
		cfg.SVM.Gamma = g
	}
	if changed("degree") {
		cfg.SVM.Degree = f.degree
	}
	if changed("coef0") {
		cfg.SVM.Coef0 = f.coef0
	}
	if changed("probability") {
		cfg.SVM.Probabilistic = f.probability
	}
	if changed("cv") {
		cfg.Evaluation.CVFolds = f.cvFolds
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	// the file's logging section applies unless overridden on the command line
	if f.configFile != "" && (!changed("log-level") || !changed("log-format")) {
		level, format := cfg.Logging.Level, cfg.Logging.Format
		if changed("log-level") {
			level = logLevel
		}
		if changed("log-format") {
			format = logFormat
		}
		if err := log.Setup(level, format, os.Stderr); err != nil {
			return nil, err
		}
	}
	return cfg, nil
}

func runTrain(cmd *cobra.Command, f trainFlags) error {
	cfg, err := loadTrainConfig(cmd, f)
	if err != nil {
		return err
	}
	logger := log.GetLogger()

	ds, err := dataset.ReadCSVFile(f.dataFile)
	if err != nil {
		logger.Error("Failed to read dataset", err)
		return err
	}

	opts := cfg.Preprocessing
	if len(opts.Features) == 0 && opts.TargetVariable != "" {
		opts.Features = slices.DeleteFunc(slices.Clone(ds.Columns), func(c string) bool {
			return c == opts.TargetVariable
		})
	}

	s := session.New(
		session.WithLogger(logger),
		session.WithPipeline(preprocessing.NewPipeline(
			preprocessing.WithLogger(logger),
			preprocessing.WithSplitOptions(cfg.SplitOptions()...),
		)),
		session.WithCrossValidation(cfg.Evaluation.CVFolds, cfg.Evaluation.CVSeed),
	)
	if err := s.LoadDataset(ds); err != nil {
		return err
	}
	s.SetOptions(opts)
	if err := s.SetConfig(cfg.SVM); err != nil {
		return err
	}
	if _, err := s.Preprocess(); err != nil {
		logger.Error("Preprocessing failed", err)
		return err
	}
	m, err := s.Train()
	if err != nil {
		logger.Error("Training failed", err)
		return err
	}

	bundle, err := s.Bundle()
	if err != nil {
		return err
	}
	if err := bundle.Save(f.outputFile); err != nil {
		logger.Error("Failed to save model", err)
		return err
	}
	logger.Info("Model saved", log.EstimatorIDKey, m.ID, "output", f.outputFile)

	report := newReport(ds.Name, s)
	printReport(cmd.OutOrStdout(), report)

	if f.reportFile != "" {
		data, err := json.MarshalIndent(report, "", "  ")
		if err != nil {
			return err
		}
		if err := os.WriteFile(f.reportFile, data, 0o644); err != nil {
			return errors.Wrap(err, "failed to write report")
		}
	}
	return nil
}
