package log

// Model and operation context.
const (
	// ModelNameKey identifies the estimator type, e.g. "SVC", "Trainer".
	ModelNameKey = "model.name"

	// EstimatorIDKey identifies one trained model instance (a UUID).
	EstimatorIDKey = "estimator.id"

	// OperationKey is the operation being performed, see the Operation* values.
	OperationKey = "ml.operation"

	// ComponentKey names the package doing the work.
	ComponentKey = "ml.component"

	// PhaseKey is the lifecycle phase, see the Phase* values.
	PhaseKey = "ml.phase"

	// SessionIDKey identifies one workflow session.
	SessionIDKey = "session.id"
)

// Data shape.
const (
	SamplesKey  = "data.samples"
	FeaturesKey = "data.features"
	ClassesKey  = "data.classes"
	RemovedKey  = "data.removed_rows"

	// TrainSamplesKey and TestSamplesKey report split sizes.
	TrainSamplesKey = "data.train_samples"
	TestSamplesKey  = "data.test_samples"
)

// Preprocessing configuration.
const (
	StrategyKey  = "preprocess.strategy"
	ScalingKey   = "preprocess.scaling"
	TestRatioKey = "preprocess.test_ratio"
)

// SVM hyperparameters and solver state.
const (
	KernelKey         = "svm.kernel"
	CKey              = "svm.c"
	GammaKey          = "svm.gamma"
	DegreeKey         = "svm.degree"
	Coef0Key          = "svm.coef0"
	ProbabilityKey    = "svm.probability"
	SupportVectorsKey = "svm.support_vectors"
	IterationKey      = "training.iteration"
	RandomSeedKey     = "config.random_seed"
	FoldKey           = "cv.fold"
)

// Performance and results.
const (
	DurationMsKey = "perf.duration_ms"
	AccuracyKey   = "metrics.accuracy"
	PredsKey      = "preds.count"
	ConfidenceKey = "preds.confidence"
)

// Error context.
const (
	ErrorCodeKey  = "error.code"
	ErrorTypeKey  = "error.type"
	StacktraceKey = "error.stacktrace"
)

const (
	OperationFit        = "fit"
	OperationPredict    = "predict"
	OperationTransform  = "transform"
	OperationEvaluate   = "evaluate"
	OperationImportance = "importance"
	OperationSplit      = "split"

	PhaseTraining      = "training"
	PhaseValidation    = "validation"
	PhaseTesting       = "testing"
	PhaseInference     = "inference"
	PhasePreprocessing = "preprocessing"

	ErrorNotFitted         = "NOT_FITTED"
	ErrorDimensionMismatch = "DIMENSION_MISMATCH"
	ErrorEmptyData         = "EMPTY_DATA"
	ErrorInvalidInput      = "INVALID_INPUT"
	ErrorConvergence       = "CONVERGENCE_FAILURE"
)
