// File: registry.go
// Title: Builtin Registry
// Description: Descriptor structs for native functions and modules and the
//              registry that holds them. The default registry is built once
//              and shared read-only by every interpreter.
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
	"io"
	"math"
	"sort"
	"sync"

	mdwerror "github.com/frikeldon/openscad/foundation/core/error"
	"github.com/frikeldon/openscad/foundation/scad/csg"
	"github.com/frikeldon/openscad/foundation/scad/value"
)

// Variadic marks a function that accepts any number of arguments
const Variadic = -1

// Argument is an evaluated call-site argument. Name is empty for
// positional arguments.
type Argument struct {
	Name  string
	Value value.Value
}

// Environment is what native modules may see of the running interpreter
type Environment interface {
	// Children returns the children inherited by the innermost module
	// frame that has any, or nil.
	Children() []csg.Node
	// Echo returns the diagnostic sink
	Echo() io.Writer
}

// Function describes a native function
type Function struct {
	Name  string
	Arity int // Variadic or the exact argument count
	Call  func(args []Argument) value.Value
}

// Accepts reports whether the function can be called with n arguments
func (f *Function) Accepts(n int) bool {
	return f.Arity == Variadic || f.Arity == n
}

// Param is a declared module parameter
type Param struct {
	Name    string
	Default value.Value
}

// Call carries everything a native module receives
type Call struct {
	Env      Environment
	Children []csg.Node
	// Args holds the arguments in call-site order
	Args []Argument
	// Values holds Args aligned to the module's declared parameters
	Values []value.Value
}

// Module describes a native module. Build returns nil when the module
// produces no object.
type Module struct {
	Name       string
	Parameters []Param
	Build      func(call *Call) csg.Node
}

// Bind aligns args to the declared parameters. Named arguments locate their
// slot by name; positional arguments fill slots in declaration order with
// their own cursor. Unknown names and surplus positional arguments are
// ignored, and unfilled slots keep their defaults.
func (m *Module) Bind(args []Argument) []value.Value {
	values := make([]value.Value, len(m.Parameters))
	for i, p := range m.Parameters {
		values[i] = p.Default
		if values[i] == nil {
			values[i] = value.Undefined
		}
	}

	anonymous := 0
	for _, arg := range args {
		name := arg.Name
		if name == "" {
			if anonymous >= len(m.Parameters) {
				continue
			}
			name = m.Parameters[anonymous].Name
			anonymous++
		}
		for i, p := range m.Parameters {
			if p.Name == name {
				values[i] = arg.Value
				break
			}
		}
	}
	return values
}

// NewCall prepares the call record for m
func (m *Module) NewCall(env Environment, children []csg.Node, args []Argument) *Call {
	call := &Call{Env: env, Children: children, Args: args}
	if len(m.Parameters) > 0 {
		call.Values = m.Bind(args)
	}
	return call
}

// Registry holds native functions, modules and variables
type Registry struct {
	functions map[string]*Function
	modules   map[string]*Module
	variables map[string]value.Value
}

// NewRegistry creates an empty registry
func NewRegistry() *Registry {
	return &Registry{
		functions: make(map[string]*Function),
		modules:   make(map[string]*Module),
		variables: make(map[string]value.Value),
	}
}

// RegisterFunction adds a function; names must be unique
func (r *Registry) RegisterFunction(f *Function) error {
	if f == nil || f.Name == "" || f.Call == nil {
		return mdwerror.New("function descriptor requires a name and an implementation").
			WithCode(mdwerror.CodeInvalidInput).
			WithOperation("builtin.RegisterFunction")
	}
	if _, exists := r.functions[f.Name]; exists {
		return mdwerror.New(fmt.Sprintf("function '%s' is already registered", f.Name)).
			WithCode(mdwerror.CodeInvalidInput).
			WithOperation("builtin.RegisterFunction")
	}
	r.functions[f.Name] = f
	return nil
}

// RegisterModule adds a module; names must be unique
func (r *Registry) RegisterModule(m *Module) error {
	if m == nil || m.Name == "" || m.Build == nil {
		return mdwerror.New("module descriptor requires a name and an implementation").
			WithCode(mdwerror.CodeInvalidInput).
			WithOperation("builtin.RegisterModule")
	}
	if _, exists := r.modules[m.Name]; exists {
		return mdwerror.New(fmt.Sprintf("module '%s' is already registered", m.Name)).
			WithCode(mdwerror.CodeInvalidInput).
			WithOperation("builtin.RegisterModule")
	}
	r.modules[m.Name] = m
	return nil
}

// SetVariable defines a builtin variable
func (r *Registry) SetVariable(name string, v value.Value) {
	r.variables[name] = v
}

// Function returns the named function
func (r *Registry) Function(name string) (*Function, bool) {
	f, ok := r.functions[name]
	return f, ok
}

// Module returns the named module
func (r *Registry) Module(name string) (*Module, bool) {
	m, ok := r.modules[name]
	return m, ok
}

// Variables returns a copy of the builtin variables
func (r *Registry) Variables() map[string]value.Value {
	out := make(map[string]value.Value, len(r.variables))
	for k, v := range r.variables {
		out[k] = v
	}
	return out
}

// FunctionNames returns the registered function names, sorted
func (r *Registry) FunctionNames() []string {
	return sortedKeys(r.functions)
}

// ModuleNames returns the registered module names, sorted
func (r *Registry) ModuleNames() []string {
	return sortedKeys(r.modules)
}

func sortedKeys[T any](m map[string]T) []string {
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

var (
	defaultOnce     sync.Once
	defaultRegistry *Registry
)

// Default returns the standard library registry
func Default() *Registry {
	defaultOnce.Do(func() {
		r := NewRegistry()
		for _, f := range standardFunctions() {
			mustRegister(r.RegisterFunction(f))
		}
		for _, m := range standardModules() {
			mustRegister(r.RegisterModule(m))
		}
		r.SetVariable("PI", value.Number(math.Pi))
		defaultRegistry = r
	})
	return defaultRegistry
}

func mustRegister(err error) {
	if err != nil {
		panic(err)
	}
}
