package dataset

import (
	"math"
)

// ColumnType is the inferred type shown in a dataset summary.
type ColumnType string

const (
	TypeUnknown     ColumnType = "unknown"
	TypeInteger     ColumnType = "integer"
	TypeFloat       ColumnType = "float"
	TypeString      ColumnType = "string"
	TypeCategorical ColumnType = "categorical"
)

// categoricalMaxUnique caps the distinct count for a column to be called categorical.
const categoricalMaxUnique = 20

// ColumnSummary describes one column.
type ColumnSummary struct {
	Name    string     `json:"name"`
	Type    ColumnType `json:"type"`
	Missing int        `json:"missing"`
	Unique  int        `json:"unique"`
}

// Summary describes a dataset.
type Summary struct {
	Name    string          `json:"name"`
	Rows    int             `json:"rows"`
	Columns []ColumnSummary `json:"columns"`
}

// Summarize infers a type per column from its first present value:
// numbers are integer when every present value is integral, float otherwise;
// strings are string. Integer and string columns with at most 20 distinct
// values, and fewer distinct values than half the present count, are
// categorical. Missing counts nulls and empty strings.
func Summarize(d *Dataset) Summary {
	s := Summary{Name: d.Name, Rows: len(d.Rows), Columns: make([]ColumnSummary, 0, len(d.Columns))}

	for _, col := range d.Columns {
		cs := ColumnSummary{Name: col, Type: TypeUnknown}

		var present []Value
		for _, row := range d.Rows {
			v := row[col]
			if v.IsNull() || (v.IsText() && v.str == "") {
				cs.Missing++
				continue
			}
			present = append(present, v)
		}

		unique := make(map[Value]struct{}, len(present))
		for _, v := range present {
			unique[v] = struct{}{}
		}
		cs.Unique = len(unique)

		if len(present) > 0 {
			switch present[0].Kind() {
			case KindNumber:
				cs.Type = TypeInteger
				for _, v := range present {
					if !v.IsNumber() || v.num != math.Trunc(v.num) || math.IsNaN(v.num) {
						cs.Type = TypeFloat
						break
					}
				}
			case KindText:
				cs.Type = TypeString
			}
		}

		if cs.Type == TypeString || cs.Type == TypeInteger {
			if cs.Unique <= categoricalMaxUnique && float64(cs.Unique) < float64(len(present))/2 {
				cs.Type = TypeCategorical
			}
		}

		s.Columns = append(s.Columns, cs)
	}
	return s
}
