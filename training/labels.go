package training

import (
	"math"
	"sort"
	"unicode/utf8"

	"github.com/YuminosukeSato/scisvm/dataset"
	"github.com/YuminosukeSato/scisvm/pkg/errors"
)

// LabelCodec maps labels to the integer space the solver works in.
//
// Numeric labels are truncated to integers. String labels become the code
// point of their first character, so "apple" and "avocado" collide; the
// collision is kept and reported as a warning rather than fixed.
type LabelCodec struct {
	// Categorical is true when every training label was a string.
	Categorical bool
	// Seen lists the distinct strings observed per code.
	Seen map[int][]string
}

// FitLabelCodec builds a codec from training labels and encodes them.
func FitLabelCodec(labels []dataset.Value) (*LabelCodec, []int, error) {
	c := &LabelCodec{Categorical: len(labels) > 0, Seen: map[int][]string{}}
	codes := make([]int, len(labels))
	for i, v := range labels {
		code, err := c.Encode(v)
		if err != nil {
			return nil, nil, errors.Wrapf(err, "label %d", i)
		}
		codes[i] = code
		if s, ok := v.Str(); ok {
			c.remember(code, s)
		} else {
			c.Categorical = false
		}
	}

	for _, code := range c.collisions() {
		errors.Warn(errors.NewLabelCollisionWarning(code, c.Seen[code]))
	}
	return c, codes, nil
}

func (c *LabelCodec) remember(code int, s string) {
	for _, known := range c.Seen[code] {
		if known == s {
			return
		}
	}
	c.Seen[code] = append(c.Seen[code], s)
}

func (c *LabelCodec) collisions() []int {
	var out []int
	for code, names := range c.Seen {
		if len(names) > 1 {
			out = append(out, code)
		}
	}
	sort.Ints(out)
	return out
}

// Collisions returns the codes shared by more than one distinct string label.
func (c *LabelCodec) Collisions() []int {
	return c.collisions()
}

// Encode maps one label. Missing labels are an error.
func (c *LabelCodec) Encode(v dataset.Value) (int, error) {
	if v.IsMissing() {
		return 0, errors.NewValueError("LabelCodec.Encode", "label is missing")
	}
	if f, ok := v.Float(); ok {
		if math.IsInf(f, 0) || math.Abs(f) > math.MaxInt32 {
			return 0, errors.NewValueError("LabelCodec.Encode", "numeric label out of range")
		}
		return int(math.Trunc(f)), nil
	}
	s, _ := v.Str()
	r, _ := utf8.DecodeRuneInString(s)
	return int(r), nil
}

// EncodeAll maps every label.
func (c *LabelCodec) EncodeAll(vs []dataset.Value) ([]int, error) {
	out := make([]int, len(vs))
	for i, v := range vs {
		code, err := c.Encode(v)
		if err != nil {
			return nil, errors.Wrapf(err, "label %d", i)
		}
		out[i] = code
	}
	return out, nil
}

// Decode maps a code back for display. Categorical codes decode to their
// single character, which loses the rest of a multi-character label.
func (c *LabelCodec) Decode(code int) dataset.Value {
	if c != nil && c.Categorical {
		return dataset.Text(string(rune(code)))
	}
	return dataset.Number(float64(code))
}

// DecodeAll maps every code.
func (c *LabelCodec) DecodeAll(codes []int) []dataset.Value {
	out := make([]dataset.Value, len(codes))
	for i, code := range codes {
		out[i] = c.Decode(code)
	}
	return out
}
