package training

import (
	"math/rand/v2"

	"github.com/YuminosukeSato/scisvm/dataset"
	"github.com/YuminosukeSato/scisvm/pkg/log"
)

func quietTrainer(opts ...TrainerOption) *Trainer {
	l, _ := log.NewTestLogger(log.LevelError)
	return NewTrainer(append([]TrainerOption{WithLogger(l)}, opts...)...)
}

// separable returns perClass rows labelled "yes" around (0,0) and perClass
// rows labelled "no" around (6,6).
func separable(perClass int, seed uint64) ([]dataset.Row, []dataset.Value) {
	r := rand.New(rand.NewPCG(seed, seed))
	var rows []dataset.Row
	var labels []dataset.Value
	for i := 0; i < perClass; i++ {
		rows = append(rows, dataset.Row{
			"x": dataset.Number(r.Float64()),
			"y": dataset.Number(r.Float64()),
		})
		labels = append(labels, dataset.Text("yes"))
	}
	for i := 0; i < perClass; i++ {
		rows = append(rows, dataset.Row{
			"x": dataset.Number(6 + r.Float64()),
			"y": dataset.Number(6 + r.Float64()),
		})
		labels = append(labels, dataset.Text("no"))
	}
	return rows, labels
}

func linearConfig() Config {
	cfg := DefaultConfig()
	cfg.Kernel = "linear"
	return cfg
}
