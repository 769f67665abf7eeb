package dataset

import (
	"slices"
)

// Row maps column name to cell. Absent keys read as null.
type Row map[string]Value

// Get returns the cell for column, or null.
func (r Row) Get(column string) Value {
	return r[column]
}

// Clone returns a shallow copy; Values are immutable so this is a deep copy in effect.
func (r Row) Clone() Row {
	out := make(Row, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}

// Project returns a new row restricted to columns, in any order.
// Columns absent from r are set to null explicitly.
func (r Row) Project(columns []string) Row {
	out := make(Row, len(columns))
	for _, c := range columns {
		out[c] = r[c]
	}
	return out
}

// Vector reads columns in order as floats. Non-numeric and missing cells become fallback.
func (r Row) Vector(columns []string, fallback float64) []float64 {
	out := make([]float64, len(columns))
	for i, c := range columns {
		out[i] = r[c].FloatOr(fallback)
	}
	return out
}

// Dataset is an ordered row sequence with an ordered column list.
type Dataset struct {
	Name    string
	Columns []string
	Rows    []Row
}

// New builds a dataset and fills absent cells with explicit nulls so that all
// rows share the column set.
func New(name string, columns []string, rows []Row) *Dataset {
	for _, row := range rows {
		for _, c := range columns {
			if _, ok := row[c]; !ok {
				row[c] = Null()
			}
		}
	}
	return &Dataset{Name: name, Columns: columns, Rows: rows}
}

// Len returns the row count.
func (d *Dataset) Len() int { return len(d.Rows) }

// HasColumn reports whether column is part of the column list.
func (d *Dataset) HasColumn(column string) bool {
	return slices.Contains(d.Columns, column)
}

// Column returns all cells of one column in row order.
func (d *Dataset) Column(column string) []Value {
	out := make([]Value, len(d.Rows))
	for i, row := range d.Rows {
		out[i] = row[column]
	}
	return out
}

// CloneRows copies every row.
func CloneRows(rows []Row) []Row {
	out := make([]Row, len(rows))
	for i, r := range rows {
		out[i] = r.Clone()
	}
	return out
}
