// File: functions.go
// Title: Builtin Functions
// Description: Type tests, list and string helpers and the mathematical
//              functions. Arguments of the wrong type produce undef.
//              Trigonometry works in degrees.
// Author: frikeldon
// Version: v0.1.0
// Created: 2026-10-19
// Modified: 2026-10-19
//
// Change History:
// - 2026-10-19 v0.1.0: Initial implementation

package builtin

import (
	"math"
	"strings"
	"unicode/utf8"

	"github.com/frikeldon/openscad/foundation/scad/value"
)

func standardFunctions() []*Function {
	fns := []*Function{
		typeTest("is_undef", value.KindUndef),
		typeTest("is_bool", value.KindBool),
		typeTest("is_num", value.KindNumber),
		typeTest("is_string", value.KindString),
		typeTest("is_list", value.KindVector),

		{Name: "concat", Arity: Variadic, Call: concat},
		{Name: "lookup", Arity: 2, Call: lookup},
		{Name: "str", Arity: Variadic, Call: str},
		{Name: "chr", Arity: Variadic, Call: chr},
		{Name: "ord", Arity: 1, Call: ord},
		{Name: "len", Arity: 1, Call: length},

		{Name: "abs", Arity: 1, Call: unary(math.Abs)},
		{Name: "sign", Arity: 1, Call: unary(sign)},
		{Name: "sin", Arity: 1, Call: unary(func(x float64) float64 { return math.Sin(toRadians(x)) })},
		{Name: "cos", Arity: 1, Call: unary(func(x float64) float64 { return math.Cos(toRadians(x)) })},
		{Name: "tan", Arity: 1, Call: unary(func(x float64) float64 { return math.Tan(toRadians(x)) })},
		{Name: "asin", Arity: 1, Call: unary(func(x float64) float64 { return toDegrees(math.Asin(x)) })},
		{Name: "acos", Arity: 1, Call: unary(func(x float64) float64 { return toDegrees(math.Acos(x)) })},
		{Name: "atan", Arity: 1, Call: unary(func(x float64) float64 { return toDegrees(math.Atan(x)) })},
		{Name: "atan2", Arity: 2, Call: binary(func(y, x float64) float64 { return toDegrees(math.Atan2(y, x)) })},
		{Name: "floor", Arity: 1, Call: unary(math.Floor)},
		{Name: "round", Arity: 1, Call: unary(math.Round)},
		{Name: "ceil", Arity: 1, Call: unary(math.Ceil)},
		{Name: "ln", Arity: 1, Call: unary(math.Log)},
		{Name: "log", Arity: 1, Call: unary(math.Log10)},
		{Name: "pow", Arity: 2, Call: binary(math.Pow)},
		{Name: "sqrt", Arity: 1, Call: unary(math.Sqrt)},
		{Name: "exp", Arity: 1, Call: unary(math.Exp)},
		{Name: "min", Arity: Variadic, Call: extremum(math.Min)},
		{Name: "max", Arity: Variadic, Call: extremum(math.Max)},
	}
	return fns
}

func typeTest(name string, kind value.Kind) *Function {
	return &Function{
		Name:  name,
		Arity: 1,
		Call: func(args []Argument) value.Value {
			return value.Bool(value.KindOf(args[0].Value) == kind)
		},
	}
}

func unary(fn func(float64) float64) func([]Argument) value.Value {
	return func(args []Argument) value.Value {
		x, ok := value.AsNumber(args[0].Value)
		if !ok {
			return value.Undefined
		}
		return value.Number(fn(x))
	}
}

func binary(fn func(float64, float64) float64) func([]Argument) value.Value {
	return func(args []Argument) value.Value {
		a, okA := value.AsNumber(args[0].Value)
		b, okB := value.AsNumber(args[1].Value)
		if !okA || !okB {
			return value.Undefined
		}
		return value.Number(fn(a, b))
	}
}

func toRadians(deg float64) float64 { return deg * math.Pi / 180 }
func toDegrees(rad float64) float64 { return rad * 180 / math.Pi }

func sign(x float64) float64 {
	switch {
	case x > 0:
		return 1
	case x < 0:
		return -1
	}
	return 0
}

// concat flattens vector arguments one level and appends anything else
// as is.
func concat(args []Argument) value.Value {
	out := value.Vector{}
	for _, arg := range args {
		if vec, ok := value.AsVector(arg.Value); ok {
			out = append(out, vec...)
			continue
		}
		out = append(out, orUndef(arg.Value))
	}
	return out
}

// lookup interpolates linearly between the [key, value] pairs closest to
// the key on each side. Non-numeric pairs are skipped.
func lookup(args []Argument) value.Value {
	key, ok := value.AsNumber(args[0].Value)
	table, isVec := value.AsVector(args[1].Value)
	if !ok || !isVec {
		return value.Undefined
	}

	type pair struct{ key, value float64 }
	var prev, next *pair
	for _, entry := range table {
		kv, ok := value.AsVector(entry)
		if !ok || len(kv) < 2 {
			continue
		}
		k, okK := value.AsNumber(kv[0])
		v, okV := value.AsNumber(kv[1])
		if !okK || !okV {
			continue
		}
		switch {
		case k == key:
			return value.Number(v)
		case k < key && (prev == nil || prev.key < k):
			prev = &pair{k, v}
		case k > key && (next == nil || next.key > k):
			next = &pair{k, v}
		}
	}

	switch {
	case prev != nil && next != nil:
		ratio := (key - prev.key) / (next.key - prev.key)
		return value.Number(ratio*(next.value-prev.value) + prev.value)
	case prev != nil:
		return value.Number(prev.value)
	case next != nil:
		return value.Number(next.value)
	}
	return value.Undefined
}

func str(args []Argument) value.Value {
	values := make([]value.Value, len(args))
	for i, arg := range args {
		values[i] = arg.Value
	}
	return value.String(value.ToString(values...))
}

// chr converts numbers to characters, recursing into vectors and ranges
func chr(args []Argument) value.Value {
	var b strings.Builder
	for _, arg := range args {
		writeChars(&b, arg.Value)
	}
	return value.String(b.String())
}

func writeChars(b *strings.Builder, v value.Value) {
	switch t := v.(type) {
	case value.Number:
		b.WriteRune(rune(int32(t)))
	case value.Vector:
		for _, e := range t {
			writeChars(b, e)
		}
	case value.Range:
		for _, n := range t.Values() {
			b.WriteRune(rune(int32(n)))
		}
	}
}

func ord(args []Argument) value.Value {
	s, ok := args[0].Value.(value.String)
	if !ok || s == "" {
		return value.Undefined
	}
	r, _ := utf8.DecodeRuneInString(string(s))
	return value.Number(r)
}

func length(args []Argument) value.Value {
	switch t := args[0].Value.(type) {
	case value.String:
		return value.Number(utf8.RuneCountInString(string(t)))
	case value.Vector:
		return value.Number(len(t))
	}
	return value.Undefined
}

// extremum accepts either numeric arguments or a single numeric vector
func extremum(pick func(float64, float64) float64) func([]Argument) value.Value {
	return func(args []Argument) value.Value {
		candidates := make(value.Vector, 0, len(args))
		if len(args) == 1 {
			if vec, ok := value.AsVector(args[0].Value); ok {
				candidates = vec
			}
		}
		if len(candidates) == 0 {
			for _, arg := range args {
				candidates = append(candidates, arg.Value)
			}
		}

		numbers, ok := value.Floats(candidates)
		if !ok || len(numbers) == 0 {
			return value.Undefined
		}
		result := numbers[0]
		for _, n := range numbers[1:] {
			result = pick(result, n)
		}
		return value.Number(result)
	}
}

func orUndef(v value.Value) value.Value {
	if v == nil {
		return value.Undefined
	}
	return v
}
