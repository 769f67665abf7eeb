package preprocessing

import (
	"math"
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/YuminosukeSato/scisvm/dataset"
)

func column(rows []dataset.Row, name string) []dataset.Value {
	out := make([]dataset.Value, len(rows))
	for i, r := range rows {
		out[i] = r[name]
	}
	return out
}

func numbers(vals ...float64) []dataset.Row {
	rows := make([]dataset.Row, len(vals))
	for i, v := range vals {
		if math.IsNaN(v) {
			rows[i] = dataset.Row{"x": dataset.Null()}
			continue
		}
		rows[i] = dataset.Row{"x": dataset.Number(v)}
	}
	return rows
}

func TestImputeStatistics(t *testing.T) {
	nan := math.NaN()
	tests := []struct {
		name     string
		vals     []float64
		strategy Strategy
		want     float64
	}{
		{"mean", []float64{1, nan, 3}, StrategyMean, 2},
		{"median odd", []float64{5, 1, nan, 3}, StrategyMedian, 3},
		{"median even averages the middle pair", []float64{4, 1, 3, 2, nan}, StrategyMedian, 2.5},
		{"mode", []float64{7, 3, 3, nan}, StrategyMode, 3},
		{"mode tie keeps first reaching the max", []float64{2, 1, 1, 2, nan}, StrategyMode, 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := Impute(numbers(tt.vals...), []string{"x"}, tt.strategy, nil)
			require.NoError(t, err)
			require.Len(t, res.Stats, 1)
			assert.True(t, res.Stats[0].Applied)
			assert.InDelta(t, tt.want, res.Stats[0].Replacement, 1e-12)
			assert.Equal(t, 1, res.Stats[0].Filled)

			last := res.Rows[len(res.Rows)-1]["x"]
			got, ok := last.Float()
			require.True(t, ok)
			assert.InDelta(t, tt.want, got, 1e-12)
		})
	}
}

func TestImputeAllMissingIsNoop(t *testing.T) {
	rows := []dataset.Row{
		{"x": dataset.Null(), "y": dataset.Number(1)},
		{"x": dataset.Text(""), "y": dataset.Null()},
		{"x": dataset.Number(math.NaN()), "y": dataset.Number(3)},
	}
	for _, s := range []Strategy{StrategyMean, StrategyMedian, StrategyMode} {
		res, err := Impute(rows, []string{"x", "y"}, s, nil)
		require.NoError(t, err)

		for i, v := range column(res.Rows, "x") {
			assert.True(t, rows[i]["x"].Equal(v), "strategy %s row %d", s, i)
		}
		assert.False(t, res.Stats[0].Applied)
		assert.True(t, res.Stats[1].Applied, "y is imputed independently of x")
	}
}

func TestImputeLeavesStringsAndInputAlone(t *testing.T) {
	rows := []dataset.Row{
		{"x": dataset.Text("high")},
		{"x": dataset.Number(2)},
		{"x": dataset.Null()},
	}
	res, err := Impute(rows, []string{"x"}, StrategyMean, nil)
	require.NoError(t, err)

	assert.True(t, dataset.Text("high").Equal(res.Rows[0]["x"]))
	assert.True(t, dataset.Number(2).Equal(res.Rows[2]["x"]))
	assert.True(t, rows[2]["x"].IsNull(), "input rows must not change")
}

func TestImputeConstant(t *testing.T) {
	c := -1.0
	res, err := Impute(numbers(1, math.NaN(), math.NaN()), []string{"x"}, StrategyConstant, &c)
	require.NoError(t, err)
	assert.Equal(t, 2, res.Stats[0].Filled)
	for _, v := range column(res.Rows[1:], "x") {
		assert.True(t, dataset.Number(-1).Equal(v))
	}

	_, err = Impute(numbers(1), []string{"x"}, StrategyConstant, nil)
	assert.Error(t, err)
}

func TestImputeRemoveProperty(t *testing.T) {
	r := rand.New(rand.NewPCG(7, 7))
	features := []string{"a", "b"}

	for trial := 0; trial < 50; trial++ {
		n := r.IntN(40)
		rows := make([]dataset.Row, n)
		for i := range rows {
			row := dataset.Row{"other": dataset.Null()}
			for _, f := range features {
				switch r.IntN(4) {
				case 0:
					row[f] = dataset.Null()
				case 1:
					row[f] = dataset.Text("")
				default:
					row[f] = dataset.Number(r.Float64())
				}
			}
			rows[i] = row
		}

		res, err := Impute(rows, features, StrategyRemove, nil)
		require.NoError(t, err)
		assert.LessOrEqual(t, len(res.Rows), n)
		assert.Equal(t, n-len(res.Rows), res.Removed)
		for _, row := range res.Rows {
			for _, f := range features {
				assert.False(t, row[f].IsMissing())
			}
		}
	}
}

func TestImputeUnknownStrategy(t *testing.T) {
	_, err := Impute(numbers(1), []string{"x"}, Strategy("knn"), nil)
	assert.Error(t, err)
}
