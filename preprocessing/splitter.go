package preprocessing

import (
	"math"
	"math/rand/v2"

	"github.com/YuminosukeSato/scisvm/dataset"
)

// SplitResult holds disjoint training and testing rows with their labels.
// Feature rows do not contain the target column.
type SplitResult struct {
	TrainingData   []dataset.Row   `json:"training_data"`
	TestingData    []dataset.Row   `json:"testing_data"`
	TrainingLabels []dataset.Value `json:"training_labels"`
	TestingLabels  []dataset.Value `json:"testing_labels"`
}

// SplitOption configures Split.
type SplitOption func(*splitConfig)

type splitConfig struct {
	rng *rand.Rand
}

// WithRandSource makes the shuffle reproducible.
func WithRandSource(r *rand.Rand) SplitOption {
	return func(c *splitConfig) {
		c.rng = r
	}
}

// WithSeed is shorthand for WithRandSource over a PCG source seeded with seed.
func WithSeed(seed uint64) SplitOption {
	return WithRandSource(rand.New(rand.NewPCG(seed, seed)))
}

// freshSource draws new randomness for every call; nothing is shared.
func freshSource() *rand.Rand {
	return rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
}

// Split shuffles rows with Fisher–Yates and puts floor(n*ratio) of them in
// the testing set. Every input row lands in exactly one side.
func Split(rows []dataset.Row, target string, ratio float64, opts ...SplitOption) (*SplitResult, error) {
	if err := validateRatio(ratio); err != nil {
		return nil, err
	}
	cfg := splitConfig{}
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.rng == nil {
		cfg.rng = freshSource()
	}

	n := len(rows)
	perm := make([]int, n)
	for i := range perm {
		perm[i] = i
	}
	cfg.rng.Shuffle(n, func(i, j int) {
		perm[i], perm[j] = perm[j], perm[i]
	})

	nTest := int(math.Floor(float64(n) * ratio))
	nTrain := n - nTest

	res := &SplitResult{
		TrainingData:   make([]dataset.Row, 0, nTrain),
		TestingData:    make([]dataset.Row, 0, nTest),
		TrainingLabels: make([]dataset.Value, 0, nTrain),
		TestingLabels:  make([]dataset.Value, 0, nTest),
	}
	for k, idx := range perm {
		features, label := detach(rows[idx], target)
		if k < nTrain {
			res.TrainingData = append(res.TrainingData, features)
			res.TrainingLabels = append(res.TrainingLabels, label)
		} else {
			res.TestingData = append(res.TestingData, features)
			res.TestingLabels = append(res.TestingLabels, label)
		}
	}
	return res, nil
}

func detach(row dataset.Row, target string) (dataset.Row, dataset.Value) {
	out := make(dataset.Row, len(row))
	for k, v := range row {
		if k != target {
			out[k] = v
		}
	}
	return out, row[target]
}
