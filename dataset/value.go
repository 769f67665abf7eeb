// Package dataset holds the tabular value model shared by every stage:
// dynamically typed cells, rows keyed by column name, and datasets with an
// ordered column list. It also provides CSV ingestion and a column summary.
package dataset

import (
	"encoding/json"
	"math"
	"strconv"

	"github.com/YuminosukeSato/scisvm/pkg/errors"
)

// Kind is the dynamic type of a Value.
type Kind uint8

const (
	KindNull Kind = iota
	KindNumber
	KindText
)

func (k Kind) String() string {
	switch k {
	case KindNumber:
		return "number"
	case KindText:
		return "text"
	default:
		return "null"
	}
}

// Value is one cell: null, a number, or a string. The zero Value is null.
type Value struct {
	kind Kind
	num  float64
	str  string
}

// Null returns the null value.
func Null() Value { return Value{} }

// Number wraps f. NaN is allowed and counts as missing.
func Number(f float64) Value { return Value{kind: KindNumber, num: f} }

// Text wraps s.
func Text(s string) Value { return Value{kind: KindText, str: s} }

// Kind returns the dynamic type.
func (v Value) Kind() Kind { return v.kind }

// IsNull reports whether v is null.
func (v Value) IsNull() bool { return v.kind == KindNull }

// IsNumber reports whether v holds a number, NaN included.
func (v Value) IsNumber() bool { return v.kind == KindNumber }

// IsText reports whether v holds a string.
func (v Value) IsText() bool { return v.kind == KindText }

// IsMissing is true for null, the empty string and NaN.
func (v Value) IsMissing() bool {
	switch v.kind {
	case KindNull:
		return true
	case KindNumber:
		return math.IsNaN(v.num)
	default:
		return v.str == ""
	}
}

// Float returns the number and whether v is a usable (non-NaN) number.
func (v Value) Float() (float64, bool) {
	if v.kind != KindNumber || math.IsNaN(v.num) {
		return 0, false
	}
	return v.num, true
}

// FloatOr returns the number, or fallback when v is not a usable number.
func (v Value) FloatOr(fallback float64) float64 {
	if f, ok := v.Float(); ok {
		return f
	}
	return fallback
}

// Str returns the string and whether v holds one.
func (v Value) Str() (string, bool) {
	return v.str, v.kind == KindText
}

// String renders v for display. Null renders as "".
func (v Value) String() string {
	switch v.kind {
	case KindNumber:
		return strconv.FormatFloat(v.num, 'f', -1, 64)
	case KindText:
		return v.str
	default:
		return ""
	}
}

// Equal compares kind and payload. NaN equals NaN here so that rows
// compare structurally in tests.
func (v Value) Equal(o Value) bool {
	if v.kind != o.kind {
		return false
	}
	switch v.kind {
	case KindNumber:
		return v.num == o.num || (math.IsNaN(v.num) && math.IsNaN(o.num))
	case KindText:
		return v.str == o.str
	default:
		return true
	}
}

// MarshalJSON writes null, a JSON number or a JSON string. NaN is written as null.
func (v Value) MarshalJSON() ([]byte, error) {
	switch v.kind {
	case KindNumber:
		if math.IsNaN(v.num) || math.IsInf(v.num, 0) {
			return []byte("null"), nil
		}
		return json.Marshal(v.num)
	case KindText:
		return json.Marshal(v.str)
	default:
		return []byte("null"), nil
	}
}

// UnmarshalJSON accepts null, numbers, strings and booleans (as 0/1).
func (v *Value) UnmarshalJSON(data []byte) error {
	var raw interface{}
	if err := json.Unmarshal(data, &raw); err != nil {
		return errors.Wrap(err, "invalid cell value")
	}
	parsed, err := FromInterface(raw)
	if err != nil {
		return err
	}
	*v = parsed
	return nil
}

// FromInterface converts a decoded JSON or YAML scalar into a Value.
func FromInterface(raw interface{}) (Value, error) {
	switch x := raw.(type) {
	case nil:
		return Null(), nil
	case float64:
		return Number(x), nil
	case float32:
		return Number(float64(x)), nil
	case int:
		return Number(float64(x)), nil
	case int64:
		return Number(float64(x)), nil
	case string:
		return Text(x), nil
	case bool:
		if x {
			return Number(1), nil
		}
		return Number(0), nil
	case Value:
		return x, nil
	default:
		return Null(), errors.NewValueError("dataset.FromInterface", "unsupported cell type")
	}
}

// ParseCell applies dynamic typing to a raw text cell: blank is null,
// anything strconv can read as a finite number (or NaN) is a number, and
// everything else stays text.
func ParseCell(raw string) Value {
	if raw == "" {
		return Null()
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsInf(f, 0) {
		return Text(raw)
	}
	return Number(f)
}
