// File: value.go
// Title: Runtime Values
// Description: The closed set of values an expression can evaluate to:
//              undef, numbers, strings, booleans, vectors and ranges. Also
//              provides truthiness, structural equality and the textual
//              rendering used by str() and echo().
// Author: frikeldon
// Version: v0.1.0
// Created: 2026-10-19
// Modified: 2026-10-19
//
// Change History:
// - 2026-10-19 v0.1.0: Initial implementation

package value

import (
	"strconv"
	"strings"
)

// Kind identifies the runtime type of a Value
type Kind int

const (
	KindUndef Kind = iota
	KindNumber
	KindString
	KindBool
	KindVector
	KindRange
)

// String returns the kind name
func (k Kind) String() string {
	switch k {
	case KindUndef:
		return "undef"
	case KindNumber:
		return "number"
	case KindString:
		return "string"
	case KindBool:
		return "bool"
	case KindVector:
		return "vector"
	case KindRange:
		return "range"
	default:
		return "unknown"
	}
}

// Value is a runtime value. A nil Value is treated as undef everywhere.
type Value interface {
	Kind() Kind
	String() string
}

// Undef is the undefined value
type Undef struct{}

// Number is a double precision number
type Number float64

// String is a text value
type String string

// Bool is a boolean value
type Bool bool

// Vector is an ordered heterogeneous sequence
type Vector []Value

// Range is an arithmetic progression expanded on demand by Values
type Range struct {
	Start     float64
	Increment float64
	End       float64
}

// Undefined is the shared undef value
var Undefined Value = Undef{}

func (Undef) Kind() Kind  { return KindUndef }
func (Number) Kind() Kind { return KindNumber }
func (String) Kind() Kind { return KindString }
func (Bool) Kind() Kind   { return KindBool }
func (Vector) Kind() Kind { return KindVector }
func (Range) Kind() Kind  { return KindRange }

func (Undef) String() string    { return "undef" }
func (n Number) String() string { return FormatNumber(float64(n)) }
func (s String) String() string { return string(s) }
func (b Bool) String() string   { return strconv.FormatBool(bool(b)) }

func (v Vector) String() string {
	parts := make([]string, len(v))
	for i, e := range v {
		parts[i] = ToString(e)
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

func (r Range) String() string {
	return "[" + FormatNumber(r.Start) + ":" + FormatNumber(r.Increment) + ":" + FormatNumber(r.End) + "]"
}

// FormatNumber renders a number in its shortest round-tripping form
func FormatNumber(n float64) string {
	return strconv.FormatFloat(n, 'g', -1, 64)
}

// KindOf returns the kind of v, treating nil as undef
func KindOf(v Value) Kind {
	if v == nil {
		return KindUndef
	}
	return v.Kind()
}

// IsUndef reports whether v is undef
func IsUndef(v Value) bool {
	return KindOf(v) == KindUndef
}

// AsNumber returns the number held by v
func AsNumber(v Value) (float64, bool) {
	n, ok := v.(Number)
	return float64(n), ok
}

// AsVector returns the elements held by v
func AsVector(v Value) (Vector, bool) {
	vec, ok := v.(Vector)
	return vec, ok
}

// Truthy converts v to a boolean: false, 0, "", [] and undef are falsy,
// everything else is truthy.
func Truthy(v Value) bool {
	switch t := v.(type) {
	case nil, Undef:
		return false
	case Bool:
		return bool(t)
	case Number:
		return t != 0
	case String:
		return t != ""
	case Vector:
		return len(t) > 0
	default:
		return true
	}
}

// Equal reports structural equality. Operands of different kinds are never
// equal; vectors compare element-wise and require equal length. Ranges are
// never equal to anything.
func Equal(a, b Value) bool {
	if KindOf(a) != KindOf(b) {
		return false
	}
	switch x := a.(type) {
	case nil, Undef:
		return true
	case Number:
		return x == b.(Number)
	case String:
		return x == b.(String)
	case Bool:
		return x == b.(Bool)
	case Vector:
		y := b.(Vector)
		if len(x) != len(y) {
			return false
		}
		for i := range x {
			if !Equal(x[i], y[i]) {
				return false
			}
		}
		return true
	default:
		return false
	}
}

// ToString concatenates the textual form of values: undef prints as
// "undef", strings print without quotes, vectors as "[a, b]" and ranges as
// "[start:increment:end]".
func ToString(values ...Value) string {
	var b strings.Builder
	for _, v := range values {
		if v == nil {
			b.WriteString("undef")
			continue
		}
		b.WriteString(v.String())
	}
	return b.String()
}

// Repr renders v the way echo shows it: like ToString, but strings are
// quoted at every nesting level.
func Repr(v Value) string {
	switch t := v.(type) {
	case String:
		return strconv.Quote(string(t))
	case Vector:
		parts := make([]string, len(t))
		for i, e := range t {
			parts[i] = Repr(e)
		}
		return "[" + strings.Join(parts, ", ") + "]"
	default:
		return ToString(v)
	}
}

// MaxRangeValues caps range expansion
const MaxRangeValues = 1000000

// Values expands the range. A zero increment yields no values; otherwise
// values are produced while they have not passed End in the direction of
// the increment, up to MaxRangeValues.
func (r Range) Values() []float64 {
	if r.Increment == 0 {
		return nil
	}
	var values []float64
	for v := r.Start; (r.Increment > 0 && v <= r.End) || (r.Increment < 0 && v >= r.End); v += r.Increment {
		if len(values) == MaxRangeValues {
			break
		}
		values = append(values, v)
	}
	return values
}

// CalcRange expands r into a vector of numbers
func CalcRange(r Range) Vector {
	values := r.Values()
	out := make(Vector, len(values))
	for i, v := range values {
		out[i] = Number(v)
	}
	return out
}

// FromFloats builds a numeric vector
func FromFloats(values ...float64) Vector {
	out := make(Vector, len(values))
	for i, v := range values {
		out[i] = Number(v)
	}
	return out
}

// Floats returns the elements of v as numbers, failing if any element is
// not a number.
func Floats(v Vector) ([]float64, bool) {
	out := make([]float64, len(v))
	for i, e := range v {
		n, ok := e.(Number)
		if !ok {
			return nil, false
		}
		out[i] = float64(n)
	}
	return out, true
}
