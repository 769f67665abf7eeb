// Package svm is the bundled solver backend: a C-support vector classifier
// trained with SMO over a precomputed Gram matrix, one-vs-one for more than
// two classes, with optional Platt-scaled probability estimates.
//
// The rest of the module only sees it through the core/model interfaces;
// Backend() returns the factory and restorer the trainer uses.
package svm

import (
	"fmt"
	"math"
	"slices"
	"time"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/scisvm/core/model"
	"github.com/YuminosukeSato/scisvm/core/parallel"
	"github.com/YuminosukeSato/scisvm/pkg/errors"
	"github.com/YuminosukeSato/scisvm/pkg/log"
)

const (
	// ModelType names this backend in snapshots.
	ModelType = "svc"

	defaultTol     = 1e-3
	defaultMaxIter = 10_000_000

	// DefaultMaxSamples bounds the training set size. The Gram matrix is held
	// in memory as n×n float64 values, so 10000 samples take 800 MB.
	DefaultMaxSamples = 10000
)

// machine is one binary classifier of the one-vs-one ensemble. Pos is the
// class index voted for when the decision value is positive.
type machine struct {
	Pos   int       `json:"pos"`
	Neg   int       `json:"neg"`
	SV    []int     `json:"sv"`
	Coef  []float64 `json:"coef"`
	Rho   float64   `json:"rho"`
	ProbA float64   `json:"prob_a,omitempty"`
	ProbB float64   `json:"prob_b,omitempty"`
}

// SVC is a C-support vector classifier.
type SVC struct {
	params     model.KernelParams
	tol        float64
	maxIter    int
	maxSamples int
	logger     log.Logger

	state          *model.StateManager
	classes        []int
	kernel         kernelFunc
	supportVectors [][]float64
	machines       []machine
}

// Option configures an SVC.
type Option func(*SVC)

// WithTolerance sets the KKT gap at which SMO stops. Default 1e-3.
func WithTolerance(tol float64) Option {
	return func(s *SVC) {
		s.tol = tol
	}
}

// WithMaxIter caps SMO iterations per binary problem. By default the cap is
// max(10000000, 100·n) for a problem of n samples. Hitting the cap fails the fit.
func WithMaxIter(n int) Option {
	return func(s *SVC) {
		s.maxIter = n
	}
}

// WithMaxSamples sets the largest training set Fit accepts. Default
// DefaultMaxSamples; n <= 0 removes the limit.
func WithMaxSamples(n int) Option {
	return func(s *SVC) {
		s.maxSamples = n
	}
}

// WithLogger sets the logger. Default log.GetLogger().
func WithLogger(l log.Logger) Option {
	return func(s *SVC) {
		s.logger = l
	}
}

// New validates params and returns an unfitted SVC.
func New(params model.KernelParams, opts ...Option) (*SVC, error) {
	kernel, err := model.ParseKernel(string(params.Kernel))
	if err != nil {
		return nil, err
	}
	params.Kernel = kernel

	if !(params.C > 0) || math.IsInf(params.C, 0) {
		return nil, errors.NewValidationError("C", "must be a positive finite number", params.C)
	}
	switch params.GammaMode {
	case "", model.GammaAuto, model.GammaScale:
	case model.GammaValue:
		if !(params.Gamma > 0) || math.IsInf(params.Gamma, 0) {
			return nil, errors.NewValidationError("gamma", "must be a positive number", params.Gamma)
		}
	default:
		return nil, errors.NewValidationError("gamma", "must be auto, scale or a positive number", params.GammaMode)
	}
	if kernel == model.KernelPolynomial && params.Degree < 1 {
		return nil, errors.NewValidationError("degree", "must be a positive integer", params.Degree)
	}

	s := &SVC{
		params:     params,
		tol:        defaultTol,
		maxSamples: DefaultMaxSamples,
		state:      model.NewStateManager(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = log.GetLogger()
	}
	return s, nil
}

// Backend exposes this package as a solver backend.
func Backend(opts ...Option) model.Backend {
	return model.Backend{
		Name: ModelType,
		New: func(p model.KernelParams) (model.Classifier, error) {
			s, err := New(p, opts...)
			if err != nil {
				return nil, err
			}
			return s, nil
		},
		Restore: func(snapshot []byte) (model.Classifier, error) {
			s, err := Restore(snapshot, opts...)
			if err != nil {
				return nil, err
			}
			return s, nil
		},
	}
}

// Fit trains one binary machine per class pair. Labels may be any integers.
func (s *SVC) Fit(X mat.Matrix, y []int) (err error) {
	defer errors.Recover(&err, "SVC.Fit")

	nSamples, nFeatures := X.Dims()
	if nSamples == 0 || nFeatures == 0 {
		return errors.NewModelError("SVC.Fit", "empty data", errors.ErrEmptyData)
	}
	if len(y) != nSamples {
		return errors.NewDimensionError("SVC.Fit", nSamples, len(y), 0)
	}
	if s.maxSamples > 0 && nSamples > s.maxSamples {
		return errors.NewValidationError("samples",
			fmt.Sprintf("kernel matrix needs %d MB; at most %d samples are accepted", nSamples*nSamples*8>>20, s.maxSamples),
			nSamples)
	}

	rows := denseRows(X)
	for _, r := range rows {
		if err := errors.CheckFinite("SVC.Fit", r); err != nil {
			return err
		}
	}

	classes := slices.Clone(y)
	slices.Sort(classes)
	classes = slices.Compact(classes)
	if len(classes) < 2 {
		return errors.NewModelError("SVC.Fit", "invalid labels", errors.ErrSingleClass)
	}

	start := time.Now()
	s.state.Reset()
	s.kernel = kernelFunc{
		kind:   s.params.Kernel,
		gamma:  resolveGamma(s.params, rows, nFeatures),
		degree: s.params.Degree,
		coef0:  s.params.Coef0,
	}
	g := gram(s.kernel, rows)

	byClass := make([][]int, len(classes))
	for i, label := range y {
		c, _ := slices.BinarySearch(classes, label)
		byClass[c] = append(byClass[c], i)
	}

	svPos := make(map[int]int)
	var svs [][]float64
	var machines []machine

	for a := 0; a < len(classes); a++ {
		for b := a + 1; b < len(classes); b++ {
			idx := make([]int, 0, len(byClass[a])+len(byClass[b]))
			idx = append(idx, byClass[a]...)
			idx = append(idx, byClass[b]...)
			yy := make([]float64, len(idx))
			for t := range idx {
				if t < len(byClass[a]) {
					yy[t] = 1
				} else {
					yy[t] = -1
				}
			}

			prob := &problem{gram: g, idx: idx, y: yy, c: s.params.C}
			sol := prob.solve(s.tol, s.iterationCap(len(idx)))
			if !sol.converged {
				return errors.NewModelError("SVC.Fit", "solver did not converge",
					errors.NewConvergenceWarning("smo", sol.iterations,
						fmt.Sprintf("classes %d vs %d", classes[a], classes[b])))
			}

			m := machine{Pos: a, Neg: b, Rho: sol.rho}
			for t, al := range sol.alpha {
				if al <= 0 {
					continue
				}
				pos, ok := svPos[idx[t]]
				if !ok {
					pos = len(svs)
					svPos[idx[t]] = pos
					svs = append(svs, rows[idx[t]])
				}
				m.SV = append(m.SV, pos)
				m.Coef = append(m.Coef, al*yy[t])
			}

			if s.params.Probability {
				dec := make([]float64, len(idx))
				positive := make([]bool, len(idx))
				for t := range idx {
					var f float64
					for u, al := range sol.alpha {
						if al > 0 {
							f += al * yy[u] * g.At(idx[u], idx[t])
						}
					}
					dec[t] = f - sol.rho
					positive[t] = yy[t] > 0
				}
				m.ProbA, m.ProbB = sigmoidTrain(dec, positive)
			}

			s.logger.Debug("Binary machine trained",
				"positive", classes[a], "negative", classes[b],
				log.IterationKey, sol.iterations,
				log.SupportVectorsKey, len(m.SV),
			)
			machines = append(machines, m)
		}
	}

	s.classes = classes
	s.supportVectors = svs
	s.machines = machines
	s.state.SetFitted(nFeatures, nSamples)

	s.logger.Info("SVC fitted",
		log.ModelNameKey, "SVC",
		log.KernelKey, string(s.params.Kernel),
		log.GammaKey, s.kernel.gamma,
		log.SamplesKey, nSamples,
		log.FeaturesKey, nFeatures,
		log.ClassesKey, len(classes),
		log.SupportVectorsKey, len(svs),
		log.DurationMsKey, time.Since(start).Milliseconds(),
	)
	return nil
}

func (s *SVC) iterationCap(n int) int {
	if s.maxIter > 0 {
		return s.maxIter
	}
	return max(defaultMaxIter, 100*n)
}

func (s *SVC) checkInput(X mat.Matrix, method string) ([][]float64, error) {
	if err := s.state.RequireFitted("SVC", method); err != nil {
		return nil, err
	}
	_, c := X.Dims()
	if err := s.state.RequireFeatures("SVC."+method, c); err != nil {
		return nil, err
	}
	return denseRows(X), nil
}

// decisionRow returns one decision value per machine for x.
func (s *SVC) decisionRow(x []float64) []float64 {
	kv := make([]float64, len(s.supportVectors))
	for i, sv := range s.supportVectors {
		kv[i] = s.kernel.eval(x, sv)
	}
	dec := make([]float64, len(s.machines))
	for m, mc := range s.machines {
		var f float64
		for t, sv := range mc.SV {
			f += mc.Coef[t] * kv[sv]
		}
		dec[m] = f - mc.Rho
	}
	return dec
}

func (s *SVC) vote(dec []float64) int {
	votes := make([]int, len(s.classes))
	for m, mc := range s.machines {
		if dec[m] > 0 {
			votes[mc.Pos]++
		} else {
			votes[mc.Neg]++
		}
	}
	best := 0
	for c := 1; c < len(votes); c++ {
		if votes[c] > votes[best] {
			best = c
		}
	}
	return s.classes[best]
}

// Predict returns the one-vs-one majority vote per row; ties go to the smaller class.
func (s *SVC) Predict(X mat.Matrix) ([]int, error) {
	rows, err := s.checkInput(X, "Predict")
	if err != nil {
		return nil, err
	}
	out := make([]int, len(rows))
	parallel.ParallelizeWithThreshold(len(rows), parallel.DefaultThreshold, func(start, end int) {
		for i := start; i < end; i++ {
			out[i] = s.vote(s.decisionRow(rows[i]))
		}
	})
	return out, nil
}

// DecisionFunction returns an n x n_pairs matrix of raw decision values.
// Column order follows the class pairs (0,1), (0,2), ..., (1,2), ...
func (s *SVC) DecisionFunction(X mat.Matrix) (*mat.Dense, error) {
	rows, err := s.checkInput(X, "DecisionFunction")
	if err != nil {
		return nil, err
	}
	out := mat.NewDense(len(rows), len(s.machines), nil)
	parallel.ParallelizeWithThreshold(len(rows), parallel.DefaultThreshold, func(start, end int) {
		for i := start; i < end; i++ {
			out.SetRow(i, s.decisionRow(rows[i]))
		}
	})
	return out, nil
}

// PredictProba returns class probabilities; columns follow Classes().
func (s *SVC) PredictProba(X mat.Matrix) (*mat.Dense, error) {
	if s.state.IsFitted() && !s.params.Probability {
		return nil, errors.NewModelError("SVC.PredictProba", "probability disabled", errors.ErrNoProbability)
	}
	rows, err := s.checkInput(X, "PredictProba")
	if err != nil {
		return nil, err
	}
	k := len(s.classes)
	out := mat.NewDense(len(rows), k, nil)
	parallel.ParallelizeWithThreshold(len(rows), parallel.DefaultThreshold, func(start, end int) {
		r := make([][]float64, k)
		for i := range r {
			r[i] = make([]float64, k)
		}
		for i := start; i < end; i++ {
			dec := s.decisionRow(rows[i])
			for m, mc := range s.machines {
				p := sigmoidPredict(dec[m], mc.ProbA, mc.ProbB)
				p = math.Min(math.Max(p, minProb), 1-minProb)
				r[mc.Pos][mc.Neg] = p
				r[mc.Neg][mc.Pos] = 1 - p
			}
			out.SetRow(i, coupleProbabilities(r))
		}
	})
	return out, nil
}

// Coef returns w = Σ αᵢyᵢxᵢ for each machine. Only defined for the linear kernel.
func (s *SVC) Coef() ([][]float64, error) {
	if err := s.state.RequireFitted("SVC", "Coef"); err != nil {
		return nil, err
	}
	if s.params.Kernel != model.KernelLinear {
		return nil, errors.NewValueError("SVC.Coef", "weights are only available for the linear kernel")
	}
	nFeatures, _ := s.state.GetDimensions()
	out := make([][]float64, len(s.machines))
	for m, mc := range s.machines {
		w := make([]float64, nFeatures)
		for t, sv := range mc.SV {
			floats.AddScaled(w, mc.Coef[t], s.supportVectors[sv])
		}
		out[m] = w
	}
	return out, nil
}

// Classes returns the sorted training labels.
func (s *SVC) Classes() []int { return slices.Clone(s.classes) }

// IsFitted reports whether Fit has succeeded.
func (s *SVC) IsFitted() bool { return s.state.IsFitted() }

// HasProbability reports whether probability estimates were trained.
func (s *SVC) HasProbability() bool { return s.state.IsFitted() && s.params.Probability }

// Params returns the configured kernel parameters.
func (s *SVC) Params() model.KernelParams { return s.params }

// Gamma returns the kernel coefficient resolved at fit time.
func (s *SVC) Gamma() float64 { return s.kernel.gamma }

// NSupport returns the number of distinct support vectors.
func (s *SVC) NSupport() int { return len(s.supportVectors) }

var (
	_ model.ProbabilisticClassifier = (*SVC)(nil)
	_ model.LinearWeighter          = (*SVC)(nil)
	_ model.KernelReporter          = (*SVC)(nil)
)
