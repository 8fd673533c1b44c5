package ir

import (
	"strconv"
	"strings"
)

// Value is a sealed interface representing runtime values of expanded code.
// Only Unit, Int, Bool, Str, Tuple and Variant implement this.
// NO float type - numbers are always int64.
type Value interface {
	value() // Sealed - only these types implement it
	String() string
}

// Unit is the empty value "()".
type Unit struct{}

func (Unit) value() {}

func (Unit) String() string { return "()" }

// Int is a signed 64-bit integer.
type Int int64

func (Int) value() {}

func (i Int) String() string { return strconv.FormatInt(int64(i), 10) }

// Bool is a boolean.
type Bool bool

func (Bool) value() {}

func (b Bool) String() string { return strconv.FormatBool(bool(b)) }

// Str is a string.
type Str string

func (Str) value() {}

func (s Str) String() string { return strconv.Quote(string(s)) }

// Tuple is an ordered, fixed-length list of values. A tuple always has at
// least one element; use Unit for the empty tuple.
type Tuple []Value

func (Tuple) value() {}

func (t Tuple) String() string {
	var sb strings.Builder
	sb.WriteByte('(')
	for i, v := range t {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(v.String())
	}
	if len(t) == 1 {
		sb.WriteByte(',')
	}
	sb.WriteByte(')')
	return sb.String()
}

// Variant is a tagged-union value: a variant name plus positional fields.
type Variant struct {
	Name   string
	Fields []Value
}

func (*Variant) value() {}

func (v *Variant) String() string {
	if len(v.Fields) == 0 {
		return v.Name
	}
	var sb strings.Builder
	sb.WriteString(v.Name)
	sb.WriteByte('(')
	for i, f := range v.Fields {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(f.String())
	}
	sb.WriteByte(')')
	return sb.String()
}

// NewTuple returns Unit for no values, the value itself for one, and a Tuple
// otherwise. This mirrors how the expander packs capture lists.
func NewTuple(vals ...Value) Value {
	switch len(vals) {
	case 0:
		return Unit{}
	case 1:
		return vals[0]
	}
	return Tuple(vals)
}

// Some, None, Ok and Err build values of the builtin unions.
func Some(v Value) *Variant { return &Variant{Name: "Some", Fields: []Value{v}} }

// None returns the empty Option variant.
func None() *Variant { return &Variant{Name: "None"} }

// Ok wraps a success value.
func Ok(v Value) *Variant { return &Variant{Name: "Ok", Fields: []Value{v}} }

// Err wraps an error value.
func Err(v Value) *Variant { return &Variant{Name: "Err", Fields: []Value{v}} }

// TypeName names the dynamic type of v for diagnostics.
func TypeName(v Value) string {
	switch v.(type) {
	case Unit:
		return "unit"
	case Int:
		return "int"
	case Bool:
		return "bool"
	case Str:
		return "string"
	case Tuple:
		return "tuple"
	case *Variant:
		return "variant"
	case nil:
		return "nil"
	}
	return "unknown"
}

// Equal reports structural equality.
func Equal(a, b Value) bool {
	switch a := a.(type) {
	case Unit:
		_, ok := b.(Unit)
		return ok
	case Int:
		bv, ok := b.(Int)
		return ok && a == bv
	case Bool:
		bv, ok := b.(Bool)
		return ok && a == bv
	case Str:
		bv, ok := b.(Str)
		return ok && a == bv
	case Tuple:
		bv, ok := b.(Tuple)
		if !ok || len(a) != len(bv) {
			return false
		}
		for i := range a {
			if !Equal(a[i], bv[i]) {
				return false
			}
		}
		return true
	case *Variant:
		bv, ok := b.(*Variant)
		if !ok || a.Name != bv.Name || len(a.Fields) != len(bv.Fields) {
			return false
		}
		for i := range a.Fields {
			if !Equal(a.Fields[i], bv.Fields[i]) {
				return false
			}
		}
		return true
	}
	return false
}

// Compare orders two values of the same ordered type (int or string).
// The second result is false when the values are not comparable.
func Compare(a, b Value) (int, bool) {
	switch a := a.(type) {
	case Int:
		bv, ok := b.(Int)
		if !ok {
			return 0, false
		}
		switch {
		case a < bv:
			return -1, true
		case a > bv:
			return 1, true
		}
		return 0, true
	case Str:
		bv, ok := b.(Str)
		if !ok {
			return 0, false
		}
		return strings.Compare(string(a), string(bv)), true
	}
	return 0, false
}
