// File: modules.go
// Title: Builtin Modules
// Description: cube, translate, echo and children
// Author: frikeldon
// Version: v0.1.0
// Created: 2026-10-19
// Modified: 2026-10-19
//
// Change History:
// - 2026-10-19 v0.1.0: Initial implementation

package builtin

import (
	"fmt"
	"math"
	"strings"

	"github.com/frikeldon/openscad/foundation/scad/csg"
	"github.com/frikeldon/openscad/foundation/scad/value"
)

func standardModules() []*Module {
	return []*Module{
		{
			Name: "cube",
			Parameters: []Param{
				{Name: "size", Default: value.FromFloats(1, 1, 1)},
				{Name: "center", Default: value.Bool(false)},
			},
			Build: cube,
		},
		{
			Name:       "translate",
			Parameters: []Param{{Name: "v"}},
			Build:      translate,
		},
		{Name: "echo", Build: echo},
		{Name: "children", Build: children},
	}
}

// cube(size = [1, 1, 1], center = false). A scalar size is used on all
// three axes.
func cube(call *Call) csg.Node {
	size, center := call.Values[0], call.Values[1]

	var dims [3]float64
	switch t := size.(type) {
	case value.Number:
		dims = [3]float64{float64(t), float64(t), float64(t)}
	case value.Vector:
		numbers, ok := value.Floats(t)
		if !ok || len(numbers) != 3 {
			return nil
		}
		copy(dims[:], numbers)
	default:
		return nil
	}
	if !finite(dims[:]) {
		return nil
	}

	return &csg.Cube{Size: dims, Center: center == value.Bool(true)}
}

// translate(v) accepts a 2 or 3 element vector; a missing z is zero
func translate(call *Call) csg.Node {
	vec, ok := value.AsVector(call.Values[0])
	if !ok {
		return nil
	}
	numbers, ok := value.Floats(vec)
	if !ok || (len(numbers) != 2 && len(numbers) != 3) || !finite(numbers) {
		return nil
	}

	var translation [3]float64
	copy(translation[:], numbers)
	return &csg.Translate{Translation: translation, Children: call.Children}
}

// finite rejects NaN and infinities, which have no geometric meaning
func finite(numbers []float64) bool {
	for _, n := range numbers {
		if math.IsNaN(n) || math.IsInf(n, 0) {
			return false
		}
	}
	return true
}

// echo writes one line with every argument; named arguments render as
// "name = value".
func echo(call *Call) csg.Node {
	parts := make([]string, len(call.Args))
	for i, arg := range call.Args {
		if arg.Name != "" {
			parts[i] = arg.Name + " = " + value.Repr(arg.Value)
		} else {
			parts[i] = value.Repr(arg.Value)
		}
	}
	if w := call.Env.Echo(); w != nil {
		fmt.Fprintf(w, "ECHO: %s\n", strings.Join(parts, ", "))
	}
	return nil
}

// children() returns every inherited child as a group, children(i) the
// single child i, and children(v) or children([a:b]) a group of the
// selected children. Indexes out of bounds are skipped.
func children(call *Call) csg.Node {
	inherited := call.Env.Children()
	if inherited == nil {
		return nil
	}

	if len(call.Args) == 0 || value.IsUndef(call.Args[0].Value) {
		return csg.NewGroup(inherited)
	}

	pick := func(n float64) csg.Node {
		if n != math.Trunc(n) || n < 0 || n >= float64(len(inherited)) {
			return nil
		}
		return inherited[int(n)]
	}

	var indexes []float64
	switch idx := call.Args[0].Value.(type) {
	case value.Number:
		return pick(float64(idx))
	case value.Vector:
		for _, e := range idx {
			if n, ok := value.AsNumber(e); ok {
				indexes = append(indexes, n)
			}
		}
	case value.Range:
		indexes = idx.Values()
	default:
		return nil
	}

	objects := make([]csg.Node, 0, len(indexes))
	for _, n := range indexes {
		if child := pick(n); child != nil {
			objects = append(objects, child)
		}
	}
	return &csg.Group{Objects: objects}
}
