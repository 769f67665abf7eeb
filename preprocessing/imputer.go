package preprocessing

import (
	"sort"

	"gonum.org/v1/gonum/stat"

	"github.com/YuminosukeSato/scisvm/dataset"
	"github.com/YuminosukeSato/scisvm/pkg/errors"
)

// ImputeStat records what imputation did to one column.
type ImputeStat struct {
	Feature     string  `json:"feature"`
	Replacement float64 `json:"replacement"`
	// Applied is false when the column had no valid values to learn from.
	Applied bool `json:"applied"`
	Filled  int  `json:"filled"`
}

// ImputeResult is the output of Impute.
type ImputeResult struct {
	Rows    []dataset.Row
	Stats   []ImputeStat
	Removed int
}

// Impute resolves missing values in the named columns and returns new rows;
// the input rows are not modified. Cells that are non-empty strings are
// neither valid nor missing and are left alone.
//
// A column with no valid numeric values is left unchanged under mean, median
// and mode. Under remove, any row missing a named column is dropped.
func Impute(rows []dataset.Row, features []string, strategy Strategy, constant *float64) (*ImputeResult, error) {
	if !strategy.Valid() {
		return nil, errors.NewValidationError("missing_value_strategy", "unknown strategy", strategy)
	}
	if strategy == StrategyConstant && constant == nil {
		return nil, errors.NewValidationError("constant_value", "required by the constant strategy", nil)
	}

	if strategy == StrategyRemove {
		kept := make([]dataset.Row, 0, len(rows))
		for _, row := range rows {
			if !anyMissing(row, features) {
				kept = append(kept, row.Clone())
			}
		}
		return &ImputeResult{Rows: kept, Removed: len(rows) - len(kept)}, nil
	}

	out := dataset.CloneRows(rows)
	stats := make([]ImputeStat, 0, len(features))
	for _, feature := range features {
		stat := ImputeStat{Feature: feature}
		if strategy == StrategyConstant {
			stat.Replacement, stat.Applied = *constant, true
		} else {
			stat.Replacement, stat.Applied = replacement(validValues(rows, feature), strategy)
		}
		if stat.Applied {
			for _, row := range out {
				if row[feature].IsMissing() {
					row[feature] = dataset.Number(stat.Replacement)
					stat.Filled++
				}
			}
		}
		stats = append(stats, stat)
	}
	return &ImputeResult{Rows: out, Stats: stats}, nil
}

func anyMissing(row dataset.Row, features []string) bool {
	for _, f := range features {
		if row[f].IsMissing() {
			return true
		}
	}
	return false
}

// validValues collects the non-NaN numbers of one column in row order.
func validValues(rows []dataset.Row, feature string) []float64 {
	vals := make([]float64, 0, len(rows))
	for _, row := range rows {
		if f, ok := row[feature].Float(); ok {
			vals = append(vals, f)
		}
	}
	return vals
}

func replacement(vals []float64, strategy Strategy) (float64, bool) {
	if len(vals) == 0 {
		return 0, false
	}
	switch strategy {
	case StrategyMean:
		return stat.Mean(vals, nil), true
	case StrategyMedian:
		return median(vals), true
	case StrategyMode:
		return mode(vals), true
	}
	return 0, false
}

// median averages the two central order statistics for even counts.
func median(vals []float64) float64 {
	sorted := append([]float64(nil), vals...)
	sort.Float64s(sorted)
	n := len(sorted)
	if n%2 == 0 {
		return (sorted[n/2-1] + sorted[n/2]) / 2
	}
	return sorted[n/2]
}

// mode returns the first value, in input order, that reaches the highest count.
func mode(vals []float64) float64 {
	counts := make(map[float64]int, len(vals))
	order := make([]float64, 0, len(vals))
	for _, v := range vals {
		if counts[v] == 0 {
			order = append(order, v)
		}
		counts[v]++
	}
	best, bestCount := order[0], 0
	for _, v := range order {
		if counts[v] > bestCount {
			best, bestCount = v, counts[v]
		}
	}
	return best
}
