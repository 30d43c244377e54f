// File: operators.go
// Title: Operator Semantics
// Description: Unary and binary operators over runtime values. Arithmetic
//              broadcasts over vectors and supports matrix products;
//              unsupported operand combinations yield undef.
// Author: frikeldon
// Version: v0.1.0
// Created: 2026-10-19
// Modified: 2026-10-19
//
// Change History:
// - 2026-10-19 v0.1.0: Initial implementation

package interpreter

import (
	"math"

	"github.com/frikeldon/openscad/foundation/scad/value"
)

type binaryFunc func(left, right value.Value) value.Value

var binaryOperators map[string]binaryFunc

func init() {
	binaryOperators = map[string]binaryFunc{
		"+":  add,
		"-":  subtract,
		"*":  multiply,
		"/":  divide,
		"%":  modulo,
		"<":  compare(func(c int) bool { return c < 0 }),
		"<=": compare(func(c int) bool { return c <= 0 }),
		">":  compare(func(c int) bool { return c > 0 }),
		">=": compare(func(c int) bool { return c >= 0 }),
		"==": func(l, r value.Value) value.Value { return value.Bool(value.Equal(l, r)) },
		"!=": func(l, r value.Value) value.Value { return value.Bool(!value.Equal(l, r)) },
		"||": func(l, r value.Value) value.Value { return value.Bool(value.Truthy(l) || value.Truthy(r)) },
		"&&": func(l, r value.Value) value.Value { return value.Bool(value.Truthy(l) && value.Truthy(r)) },
	}
}

// binaryOperation applies op. ok is false for an unknown operator.
func binaryOperation(op string, left, right value.Value) (result value.Value, ok bool) {
	fn, ok := binaryOperators[op]
	if !ok {
		return nil, false
	}
	return fn(left, right), true
}

// unaryOperation applies op. ok is false for an unknown operator.
func unaryOperation(op string, v value.Value) (result value.Value, ok bool) {
	switch op {
	case "+":
		if n, isNum := value.AsNumber(v); isNum {
			return value.Number(n), true
		}
		return value.Undefined, true
	case "-":
		return negate(v), true
	case "!":
		return value.Bool(!value.Truthy(v)), true
	}
	return nil, false
}

func negate(v value.Value) value.Value {
	switch t := v.(type) {
	case value.Number:
		return -t
	case value.Vector:
		out := make(value.Vector, len(t))
		for i, e := range t {
			out[i] = negate(e)
		}
		return out
	}
	return value.Undefined
}

func arithmetic(op func(a, b float64) float64) binaryFunc {
	return func(l, r value.Value) value.Value {
		a, okA := value.AsNumber(l)
		b, okB := value.AsNumber(r)
		if okA && okB {
			return value.Number(op(a, b))
		}
		return value.Undefined
	}
}

// pairwise applies fn to matching elements up to the shorter length
func pairwise(left, right value.Vector, fn binaryFunc) value.Vector {
	n := len(left)
	if len(right) < n {
		n = len(right)
	}
	out := make(value.Vector, n)
	for i := 0; i < n; i++ {
		out[i] = fn(left[i], right[i])
	}
	return out
}

func manyToOne(vec value.Vector, scalar value.Value, fn binaryFunc) value.Vector {
	out := make(value.Vector, len(vec))
	for i, e := range vec {
		out[i] = fn(e, scalar)
	}
	return out
}

func oneToMany(scalar value.Value, vec value.Vector, fn binaryFunc) value.Vector {
	out := make(value.Vector, len(vec))
	for i, e := range vec {
		out[i] = fn(scalar, e)
	}
	return out
}

func add(l, r value.Value) value.Value {
	if lv, ok := value.AsVector(l); ok {
		if rv, ok := value.AsVector(r); ok {
			return pairwise(lv, rv, add)
		}
		return value.Undefined
	}
	return arithmetic(func(a, b float64) float64 { return a + b })(l, r)
}

func subtract(l, r value.Value) value.Value {
	if lv, ok := value.AsVector(l); ok {
		if rv, ok := value.AsVector(r); ok {
			return pairwise(lv, rv, subtract)
		}
		return value.Undefined
	}
	return arithmetic(func(a, b float64) float64 { return a - b })(l, r)
}

func divide(l, r value.Value) value.Value {
	_, lNum := value.AsNumber(l)
	_, rNum := value.AsNumber(r)
	lv, lVec := value.AsVector(l)
	rv, rVec := value.AsVector(r)

	switch {
	case lNum && rNum:
		return arithmetic(func(a, b float64) float64 { return a / b })(l, r)
	case lVec && rNum:
		return manyToOne(lv, r, divide)
	case lNum && rVec:
		return oneToMany(l, rv, divide)
	}
	return value.Undefined
}

var modulo = arithmetic(math.Mod)

// shape classifies a value for multiplication. A matrix is a non-empty
// vector of equal-length numeric vectors; a vector is a flat numeric
// vector.
type shape struct {
	kind       int
	rows, cols int
}

const (
	shapeNone = iota
	shapeVector
	shapeMatrix
)

func classify(v value.Value) shape {
	vec, ok := value.AsVector(v)
	if !ok {
		return shape{kind: shapeNone}
	}

	if len(vec) > 0 {
		if first, ok := value.AsVector(vec[0]); ok {
			cols := len(first)
			isMatrix := true
			for _, row := range vec {
				r, ok := value.AsVector(row)
				if !ok || len(r) != cols {
					isMatrix = false
					break
				}
				if _, numeric := value.Floats(r); !numeric {
					isMatrix = false
					break
				}
			}
			if isMatrix {
				return shape{kind: shapeMatrix, rows: len(vec), cols: cols}
			}
		}
	}

	if _, numeric := value.Floats(vec); numeric {
		return shape{kind: shapeVector, rows: 1, cols: len(vec)}
	}
	return shape{kind: shapeNone}
}

func multiply(l, r value.Value) value.Value {
	_, lNum := value.AsNumber(l)
	_, rNum := value.AsNumber(r)
	lv, lVec := value.AsVector(l)
	rv, rVec := value.AsVector(r)

	switch {
	case lNum && rNum:
		return arithmetic(func(a, b float64) float64 { return a * b })(l, r)
	case lVec && rNum:
		return manyToOne(lv, r, multiply)
	case lNum && rVec:
		return oneToMany(l, rv, multiply)
	}

	ls, rs := classify(l), classify(r)
	switch {
	case ls.kind == shapeMatrix && rs.kind == shapeMatrix && ls.cols == rs.rows:
		return matrixProduct(toMatrix(lv), toMatrix(rv))
	case ls.kind == shapeMatrix && rs.kind == shapeVector && ls.cols == rs.cols:
		return matrixVector(toMatrix(lv), toFloats(rv))
	case ls.kind == shapeVector && rs.kind == shapeMatrix && ls.cols == rs.rows:
		return vectorMatrix(toFloats(lv), toMatrix(rv))
	case lVec && rVec && len(lv) == len(rv):
		return dotProduct(lv, rv)
	}
	return value.Undefined
}

func toFloats(v value.Vector) []float64 {
	f, _ := value.Floats(v)
	return f
}

func toMatrix(v value.Vector) [][]float64 {
	m := make([][]float64, len(v))
	for i, row := range v {
		m[i] = toFloats(row.(value.Vector))
	}
	return m
}

func dotProduct(l, r value.Vector) value.Value {
	sum := 0.0
	for i := range l {
		a, okA := value.AsNumber(l[i])
		b, okB := value.AsNumber(r[i])
		if !okA || !okB {
			return value.Undefined
		}
		sum += a * b
	}
	return value.Number(sum)
}

func matrixProduct(l, r [][]float64) value.Value {
	cols := len(r[0])
	out := make(value.Vector, len(l))
	for i := range l {
		row := make([]float64, cols)
		for j := 0; j < cols; j++ {
			for k := range r {
				row[j] += l[i][k] * r[k][j]
			}
		}
		out[i] = value.FromFloats(row...)
	}
	return out
}

func matrixVector(m [][]float64, v []float64) value.Value {
	out := make([]float64, len(m))
	for i := range m {
		for k := range v {
			out[i] += m[i][k] * v[k]
		}
	}
	return value.FromFloats(out...)
}

func vectorMatrix(v []float64, m [][]float64) value.Value {
	out := make([]float64, len(m[0]))
	for j := range out {
		for k := range v {
			out[j] += v[k] * m[k][j]
		}
	}
	return value.FromFloats(out...)
}

// compare orders two numbers or two strings; any other pairing is false
func compare(accept func(c int) bool) binaryFunc {
	return func(l, r value.Value) value.Value {
		switch a := l.(type) {
		case value.Number:
			if b, ok := r.(value.Number); ok {
				if math.IsNaN(float64(a)) || math.IsNaN(float64(b)) {
					return value.Bool(false)
				}
				return value.Bool(accept(cmp(float64(a), float64(b))))
			}
		case value.String:
			if b, ok := r.(value.String); ok {
				return value.Bool(accept(cmp(string(a), string(b))))
			}
		}
		return value.Bool(false)
	}
}

func cmp[T float64 | string](a, b T) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}
