// Package models defines data structures for the pokedex scraper.
package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
)

// Kind tags the scalar type held by a Value.
type Kind int

const (
	KindString Kind = iota
	KindInt
	KindFloat
)

// Value is a normalized scalar: exactly one of string, integer, or
// float, depending on Kind. The zero Value is the empty string.
type Value struct {
	Kind  Kind
	Str   string
	Int   int64
	Float float64
}

// String builds a string-kinded Value.
func String(s string) Value {
	return Value{Kind: KindString, Str: s}
}

// Int builds an integer-kinded Value.
func Int(i int64) Value {
	return Value{Kind: KindInt, Int: i}
}

// Float builds a float-kinded Value.
func Float(f float64) Value {
	return Value{Kind: KindFloat, Float: f}
}

// AsInt returns the value truncated to an integer. String values yield 0.
func (v Value) AsInt() int64 {
	switch v.Kind {
	case KindInt:
		return v.Int
	case KindFloat:
		return int64(v.Float)
	default:
		return 0
	}
}

// Text renders the value for display and CSV export.
func (v Value) Text() string {
	switch v.Kind {
	case KindInt:
		return strconv.FormatInt(v.Int, 10)
	case KindFloat:
		return strconv.FormatFloat(v.Float, 'f', -1, 64)
	default:
		return v.Str
	}
}

// MarshalJSON encodes the value as a bare JSON scalar. Whole-valued
// floats keep an explicit fractional part so the kind survives a
// round trip.
func (v Value) MarshalJSON() ([]byte, error) {
	switch v.Kind {
	case KindInt:
		return strconv.AppendInt(nil, v.Int, 10), nil
	case KindFloat:
		out := strconv.AppendFloat(nil, v.Float, 'f', -1, 64)
		if bytes.IndexByte(out, '.') < 0 {
			out = append(out, '.', '0')
		}
		return out, nil
	default:
		return json.Marshal(v.Str)
	}
}

// UnmarshalJSON restores the tagged scalar from a bare JSON scalar.
// Numbers without a fractional part come back integer-kinded.
func (v *Value) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var raw interface{}
	if err := dec.Decode(&raw); err != nil {
		return err
	}

	switch t := raw.(type) {
	case nil:
		*v = String("")
	case string:
		*v = String(t)
	case bool:
		*v = String(strconv.FormatBool(t))
	case json.Number:
		if i, err := strconv.ParseInt(string(t), 10, 64); err == nil {
			*v = Int(i)
			return nil
		}
		f, err := t.Float64()
		if err != nil {
			return fmt.Errorf("value: parse number %q: %w", t, err)
		}
		*v = Float(f)
	default:
		return fmt.Errorf("value: unsupported JSON shape %T", raw)
	}
	return nil
}

// FieldValue is the ordered sequence of normalized cell values for one
// table row. Rows with a single data cell marshal as a bare scalar,
// rows with several marshal as an array; consumers handle both shapes.
type FieldValue []Value

// Scalar reports the single value when the row had exactly one cell.
func (fv FieldValue) Scalar() (Value, bool) {
	if len(fv) == 1 {
		return fv[0], true
	}
	return Value{}, false
}

// MarshalJSON collapses single-cell rows to a scalar.
func (fv FieldValue) MarshalJSON() ([]byte, error) {
	if len(fv) == 1 {
		return json.Marshal(fv[0])
	}
	return json.Marshal([]Value(fv))
}

// UnmarshalJSON accepts either the scalar or the array shape.
func (fv *FieldValue) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) > 0 && trimmed[0] == '[' {
		var values []Value
		if err := json.Unmarshal(trimmed, &values); err != nil {
			return err
		}
		*fv = values
		return nil
	}

	var single Value
	if err := json.Unmarshal(trimmed, &single); err != nil {
		return err
	}
	*fv = FieldValue{single}
	return nil
}
