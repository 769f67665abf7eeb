package preprocessing

import (
	"time"

	"github.com/YuminosukeSato/scisvm/dataset"
	"github.com/YuminosukeSato/scisvm/pkg/errors"
	"github.com/YuminosukeSato/scisvm/pkg/log"
)

// Result is the output of one preprocessing run.
type Result struct {
	Options     Options
	Split       *SplitResult
	ScaleParams *ScaleParameters
	Imputation  []ImputeStat
	// Removed counts rows dropped by the remove strategy.
	Removed int
}

// Pipeline runs impute, scale and split in that order. Scaling statistics
// are computed on the imputed full dataset before the split.
type Pipeline struct {
	logger    log.Logger
	splitOpts []SplitOption
}

// PipelineOption configures a Pipeline.
type PipelineOption func(*Pipeline)

// WithLogger sets the logger. The default is log.GetLogger().
func WithLogger(l log.Logger) PipelineOption {
	return func(p *Pipeline) {
		p.logger = l
	}
}

// WithSplitOptions forwards options (e.g. WithSeed) to Split.
func WithSplitOptions(opts ...SplitOption) PipelineOption {
	return func(p *Pipeline) {
		p.splitOpts = append(p.splitOpts, opts...)
	}
}

// NewPipeline creates a Pipeline.
func NewPipeline(opts ...PipelineOption) *Pipeline {
	p := &Pipeline{}
	for _, opt := range opts {
		opt(p)
	}
	if p.logger == nil {
		p.logger = log.GetLogger()
	}
	return p
}

// Run validates opts against ds and transforms it. ds is not modified.
func (p *Pipeline) Run(ds *dataset.Dataset, opts Options) (*Result, error) {
	if ds == nil || len(ds.Rows) == 0 {
		return nil, errors.NewValidationError("dataset", "contains no rows", nil)
	}
	if err := opts.Validate(ds.Columns); err != nil {
		return nil, err
	}

	start := time.Now()
	logger := p.logger.With(log.ComponentKey, "preprocessing", log.PhaseKey, log.PhasePreprocessing)

	imputed, err := Impute(ds.Rows, opts.ImputeColumns(), opts.MissingValueStrategy, opts.ConstantValue)
	if err != nil {
		return nil, err
	}
	for _, s := range imputed.Stats {
		if !s.Applied {
			logger.Debug("No valid values to impute from", "feature", s.Feature)
		}
	}

	scaled, params, err := Scale(imputed.Rows, opts.Features, opts.Scaling)
	if err != nil {
		return nil, err
	}

	columns := opts.ImputeColumns()
	projected := make([]dataset.Row, len(scaled))
	for i, row := range scaled {
		projected[i] = row.Project(columns)
	}

	split, err := Split(projected, opts.TargetVariable, opts.TestRatio, p.splitOpts...)
	if err != nil {
		return nil, err
	}

	logger.Info("Preprocessing completed",
		log.SamplesKey, len(ds.Rows),
		log.FeaturesKey, len(opts.Features),
		log.StrategyKey, string(opts.MissingValueStrategy),
		log.ScalingKey, string(opts.Scaling),
		log.RemovedKey, imputed.Removed,
		log.TrainSamplesKey, len(split.TrainingData),
		log.TestSamplesKey, len(split.TestingData),
		log.DurationMsKey, time.Since(start).Milliseconds(),
	)

	return &Result{
		Options:     opts,
		Split:       split,
		ScaleParams: params,
		Imputation:  imputed.Stats,
		Removed:     imputed.Removed,
	}, nil
}
