// File: environment.go
// Title: Interpreter Environment
// Description: The three stacks of a run: process records, evaluated
//              values and scope frames. Name lookup walks frames from the
//              innermost outwards at call time, then falls back to the
//              builtin registry.
// Author: frikeldon
// Version: v0.1.0
// Created: 2026-10-19
// Modified: 2026-10-19
//
// Change History:
// - 2026-10-19 v0.1.0: Initial implementation

package interpreter

import (
	"io"

	"github.com/frikeldon/openscad/foundation/scad/ast"
	"github.com/frikeldon/openscad/foundation/scad/builtin"
	"github.com/frikeldon/openscad/foundation/scad/csg"
	"github.com/frikeldon/openscad/foundation/scad/value"
)

// frame is one scope: bindings plus the objects produced inside it
type frame struct {
	variables map[string]value.Value
	functions map[string]*ast.FunctionDefinition
	modules   map[string]*ast.ModuleDefinition
	objects   []csg.Node
	children  []csg.Node
}

func newFrame() *frame {
	return &frame{
		variables: make(map[string]value.Value),
		functions: make(map[string]*ast.FunctionDefinition),
		modules:   make(map[string]*ast.ModuleDefinition),
	}
}

// process is an in-progress evaluation of one node. step starts at -1 and
// is incremented before every dispatch.
type process struct {
	node ast.Node
	step int

	// call state for function and module calls
	mark          int
	args          []builtin.Argument
	userFunction  *ast.FunctionDefinition
	nativeFunc    *builtin.Function
	userModule    *ast.ModuleDefinition
	nativeModule  *builtin.Module
	childrenNodes []csg.Node
}

type environment struct {
	registry  *builtin.Registry
	echo      io.Writer
	processes []*process
	values    []value.Value
	frames    []*frame
	result    []csg.Node
}

func newEnvironment(registry *builtin.Registry, echo io.Writer) *environment {
	base := newFrame()
	for name, v := range registry.Variables() {
		base.variables[name] = v
	}
	return &environment{
		registry: registry,
		echo:     echo,
		frames:   []*frame{base},
	}
}

// Process stack

// pushProcess schedules nodes so that the first one listed is evaluated
// first. Nil nodes are skipped.
func (e *environment) pushProcess(nodes ...ast.Node) {
	for i := len(nodes) - 1; i >= 0; i-- {
		if nodes[i] != nil {
			e.processes = append(e.processes, &process{node: nodes[i], step: -1})
		}
	}
}

func (e *environment) popProcess() {
	e.processes = e.processes[:len(e.processes)-1]
}

// replaceProcess pops the current record and schedules node in its place
func (e *environment) replaceProcess(node ast.Node) {
	e.popProcess()
	e.pushProcess(node)
}

func (e *environment) topProcess() *process {
	return e.processes[len(e.processes)-1]
}

// Value stack

func (e *environment) pushValue(v value.Value) {
	if v == nil {
		v = value.Undefined
	}
	e.values = append(e.values, v)
}

func (e *environment) popValue() value.Value {
	v := e.values[len(e.values)-1]
	e.values = e.values[:len(e.values)-1]
	return v
}

// popValues removes the last n values, preserving their order
func (e *environment) popValues(n int) []value.Value {
	start := len(e.values) - n
	out := make([]value.Value, n)
	copy(out, e.values[start:])
	e.values = e.values[:start]
	return out
}

// Frames

func (e *environment) pushFrame() *frame {
	f := newFrame()
	e.frames = append(e.frames, f)
	return f
}

func (e *environment) popFrame() *frame {
	f := e.frames[len(e.frames)-1]
	e.frames = e.frames[:len(e.frames)-1]
	return f
}

func (e *environment) topFrame() *frame {
	return e.frames[len(e.frames)-1]
}

func (e *environment) pushObject(n csg.Node) {
	if n == nil {
		return
	}
	f := e.topFrame()
	f.objects = append(f.objects, n)
}

// takeObjects removes and returns the objects of the current frame added
// after mark
func (e *environment) takeObjects(mark int) []csg.Node {
	f := e.topFrame()
	if mark >= len(f.objects) {
		return nil
	}
	out := append([]csg.Node(nil), f.objects[mark:]...)
	f.objects = f.objects[:mark]
	return out
}

func (e *environment) variable(name string) value.Value {
	for i := len(e.frames) - 1; i >= 0; i-- {
		if v, ok := e.frames[i].variables[name]; ok {
			return v
		}
	}
	return value.Undefined
}

func (e *environment) function(name string) (*ast.FunctionDefinition, *builtin.Function) {
	for i := len(e.frames) - 1; i >= 0; i-- {
		if def, ok := e.frames[i].functions[name]; ok {
			return def, nil
		}
	}
	if f, ok := e.registry.Function(name); ok {
		return nil, f
	}
	return nil, nil
}

func (e *environment) module(name string) (*ast.ModuleDefinition, *builtin.Module) {
	for i := len(e.frames) - 1; i >= 0; i-- {
		if def, ok := e.frames[i].modules[name]; ok {
			return def, nil
		}
	}
	if m, ok := e.registry.Module(name); ok {
		return nil, m
	}
	return nil, nil
}

// Children implements builtin.Environment
func (e *environment) Children() []csg.Node {
	for i := len(e.frames) - 1; i >= 0; i-- {
		if e.frames[i].children != nil {
			return e.frames[i].children
		}
	}
	return nil
}

// Echo implements builtin.Environment
func (e *environment) Echo() io.Writer {
	return e.echo
}

// bindParameters binds the evaluated defaults, then the call arguments: a
// named argument rebinds its name, a positional one takes the next
// declared slot. Surplus positional arguments are dropped.
func bindParameters(f *frame, defs []*ast.ParameterDefinition, defaults []value.Value, args []builtin.Argument) {
	for i, def := range defs {
		f.variables[def.Name] = defaults[i]
	}

	anonymous := 0
	for _, arg := range args {
		switch {
		case arg.Name != "":
			f.variables[arg.Name] = arg.Value
		case anonymous < len(defs):
			f.variables[defs[anonymous].Name] = arg.Value
			anonymous++
		}
	}
}

func nodesOf[T ast.Node](items []T) []ast.Node {
	out := make([]ast.Node, len(items))
	for i, item := range items {
		out[i] = item
	}
	return out
}
