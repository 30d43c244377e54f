package builtin

import (
	"bytes"
	"io"
	"math"
	"reflect"
	"testing"

	"github.com/frikeldon/openscad/foundation/scad/csg"
	"github.com/frikeldon/openscad/foundation/scad/value"
)

type fakeEnv struct {
	children []csg.Node
	echo     bytes.Buffer
}

func (e *fakeEnv) Children() []csg.Node { return e.children }
func (e *fakeEnv) Echo() io.Writer      { return &e.echo }

func pos(values ...value.Value) []Argument {
	args := make([]Argument, len(values))
	for i, v := range values {
		args[i] = Argument{Value: v}
	}
	return args
}

func callFunction(t *testing.T, name string, args []Argument) value.Value {
	t.Helper()
	f, ok := Default().Function(name)
	if !ok {
		t.Fatalf("function %s not registered", name)
	}
	if !f.Accepts(len(args)) {
		t.Fatalf("function %s does not accept %d arguments", name, len(args))
	}
	return f.Call(args)
}

func callModule(t *testing.T, name string, env Environment, children []csg.Node, args []Argument) csg.Node {
	t.Helper()
	m, ok := Default().Module(name)
	if !ok {
		t.Fatalf("module %s not registered", name)
	}
	return m.Build(m.NewCall(env, children, args))
}

func TestFunctions(t *testing.T) {
	n := func(f float64) value.Value { return value.Number(f) }
	vec := value.FromFloats

	tests := []struct {
		name string
		fn   string
		args []Argument
		want value.Value
	}{
		{"is_undef", "is_undef", pos(value.Undefined), value.Bool(true)},
		{"is_num on string", "is_num", pos(value.String("1")), value.Bool(false)},
		{"is_list", "is_list", pos(vec(1)), value.Bool(true)},
		{"is_bool", "is_bool", pos(value.Bool(false)), value.Bool(true)},
		{"is_string", "is_string", pos(value.String("")), value.Bool(true)},
		{"concat", "concat", pos(vec(1, 2), n(3), value.Vector{vec(4)}), value.Vector{n(1), n(2), n(3), vec(4)}},
		{"lookup exact", "lookup", pos(n(2), value.Vector{vec(1, 10), vec(2, 20)}), n(20)},
		{"lookup interpolated", "lookup", pos(n(1.5), value.Vector{vec(1, 10), vec(2, 20)}), n(15)},
		{"lookup closest pair", "lookup", pos(n(2.5), value.Vector{vec(0, 0), vec(2, 20), vec(3, 30), vec(10, 100)}), n(25)},
		{"lookup below", "lookup", pos(n(0), value.Vector{vec(1, 10), vec(2, 20)}), n(10)},
		{"lookup above", "lookup", pos(n(5), value.Vector{vec(1, 10), vec(2, 20)}), n(20)},
		{"lookup empty", "lookup", pos(n(5), value.Vector{}), value.Undefined},
		{"str", "str", pos(value.String("a"), n(1), vec(1, 2), value.Undefined), value.String("a1[1, 2]undef")},
		{"chr", "chr", pos(n(72), vec(105, 33)), value.String("Hi!")},
		{"chr range", "chr", pos(value.Range{Start: 97, Increment: 1, End: 99}), value.String("abc")},
		{"ord", "ord", pos(value.String("A")), n(65)},
		{"ord empty", "ord", pos(value.String("")), value.Undefined},
		{"len string", "len", pos(value.String("héllo")), n(5)},
		{"len vector", "len", pos(vec(1, 2, 3)), n(3)},
		{"len number", "len", pos(n(3)), value.Undefined},
		{"abs", "abs", pos(n(-2)), n(2)},
		{"sign", "sign", pos(n(-7)), n(-1)},
		{"floor", "floor", pos(n(1.7)), n(1)},
		{"ceil", "ceil", pos(n(1.2)), n(2)},
		{"round", "round", pos(n(2.5)), n(3)},
		{"pow", "pow", pos(n(2), n(10)), n(1024)},
		{"sqrt", "sqrt", pos(n(16)), n(4)},
		{"exp", "exp", pos(n(0)), n(1)},
		{"ln", "ln", pos(n(1)), n(0)},
		{"min variadic", "min", pos(n(3), n(1), n(2)), n(1)},
		{"max vector", "max", pos(vec(3, 9, 2)), n(9)},
		{"min with string", "min", pos(n(1), value.String("a")), value.Undefined},
		{"sin of string", "sin", pos(value.String("x")), value.Undefined},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := callFunction(t, tt.fn, tt.args)
			if !value.Equal(got, tt.want) {
				t.Errorf("%s(%v) = %v, want %v", tt.fn, tt.args, got, tt.want)
			}
		})
	}
}

func TestApproximateFunctions(t *testing.T) {
	tests := []struct {
		fn   string
		args []Argument
		want float64
	}{
		{"sin", pos(value.Number(90)), 1},
		{"cos", pos(value.Number(180)), -1},
		{"tan", pos(value.Number(45)), 1},
		{"asin", pos(value.Number(1)), 90},
		{"acos", pos(value.Number(0)), 90},
		{"atan", pos(value.Number(1)), 45},
		{"atan2", pos(value.Number(1), value.Number(1)), 45},
		{"log", pos(value.Number(1000)), 3},
	}

	for _, tt := range tests {
		t.Run(tt.fn, func(t *testing.T) {
			got, ok := value.AsNumber(callFunction(t, tt.fn, tt.args))
			if !ok || math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("%s = %v, want %v", tt.fn, got, tt.want)
			}
		})
	}
}

func TestModule_Bind(t *testing.T) {
	m, _ := Default().Module("cube")

	tests := []struct {
		name string
		args []Argument
		want []value.Value
	}{
		{"defaults", nil, []value.Value{value.FromFloats(1, 1, 1), value.Bool(false)}},
		{"positional", pos(value.Number(2), value.Bool(true)), []value.Value{value.Number(2), value.Bool(true)}},
		{"named out of order", []Argument{{Name: "center", Value: value.Bool(true)}, {Value: value.Number(3)}}, []value.Value{value.Number(3), value.Bool(true)}},
		{"surplus dropped", pos(value.Number(1), value.Bool(false), value.Number(9)), []value.Value{value.Number(1), value.Bool(false)}},
		{"unknown name ignored", []Argument{{Name: "radius", Value: value.Number(5)}}, []value.Value{value.FromFloats(1, 1, 1), value.Bool(false)}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := m.Bind(tt.args)
			if len(got) != len(tt.want) {
				t.Fatalf("Bind() = %v, want %v", got, tt.want)
			}
			for i := range got {
				if !value.Equal(got[i], tt.want[i]) {
					t.Errorf("Bind()[%d] = %v, want %v", i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestCube(t *testing.T) {
	tests := []struct {
		name string
		args []Argument
		want csg.Node
	}{
		{"vector", pos(value.FromFloats(2, 3, 4)), &csg.Cube{Size: [3]float64{2, 3, 4}}},
		{"scalar", pos(value.Number(5)), &csg.Cube{Size: [3]float64{5, 5, 5}}},
		{"default", nil, &csg.Cube{Size: [3]float64{1, 1, 1}}},
		{"centered", []Argument{{Name: "center", Value: value.Bool(true)}}, &csg.Cube{Size: [3]float64{1, 1, 1}, Center: true}},
		{"truthy center is not true", pos(value.Number(1), value.Number(1)), &csg.Cube{Size: [3]float64{1, 1, 1}}},
		{"two elements", pos(value.FromFloats(1, 2)), nil},
		{"string", pos(value.String("big")), nil},
		{"infinite scalar", pos(value.Number(math.Inf(1))), nil},
		{"NaN in vector", pos(value.FromFloats(1, math.NaN(), 1)), nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := callModule(t, "cube", &fakeEnv{}, nil, tt.args)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("cube() = %#v, want %#v", got, tt.want)
			}
		})
	}
}

func TestTranslate(t *testing.T) {
	child := &csg.Cube{Size: [3]float64{1, 1, 1}}

	got := callModule(t, "translate", &fakeEnv{}, []csg.Node{child}, pos(value.FromFloats(1, 2)))
	want := &csg.Translate{Translation: [3]float64{1, 2, 0}, Children: []csg.Node{child}}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("translate([1,2]) = %#v, want %#v", got, want)
	}

	if got := callModule(t, "translate", &fakeEnv{}, nil, pos(value.Number(1))); got != nil {
		t.Errorf("translate(1) = %#v, want nil", got)
	}

	for _, v := range []value.Vector{
		value.FromFloats(math.NaN(), 0, 0),
		value.FromFloats(0, math.Inf(-1)),
	} {
		if got := callModule(t, "translate", &fakeEnv{}, []csg.Node{child}, pos(v)); got != nil {
			t.Errorf("translate(%s) = %#v, want nil", v, got)
		}
	}
}

func TestEcho(t *testing.T) {
	env := &fakeEnv{}
	args := []Argument{
		{Value: value.String("size")},
		{Name: "x", Value: value.Number(3)},
		{Value: value.Vector{value.String("a"), value.Undefined}},
	}
	if got := callModule(t, "echo", env, nil, args); got != nil {
		t.Errorf("echo() produced %#v", got)
	}
	if want := "ECHO: \"size\", x = 3, [\"a\", undef]\n"; env.echo.String() != want {
		t.Errorf("echo output = %q, want %q", env.echo.String(), want)
	}
}

func TestChildren(t *testing.T) {
	a := &csg.Cube{Size: [3]float64{1, 1, 1}}
	b := &csg.Cube{Size: [3]float64{2, 2, 2}}
	c := &csg.Cube{Size: [3]float64{3, 3, 3}}
	env := &fakeEnv{children: []csg.Node{a, b, c}}

	tests := []struct {
		name string
		args []Argument
		want csg.Node
	}{
		{"all", nil, &csg.Group{Objects: []csg.Node{a, b, c}}},
		{"index", pos(value.Number(1)), b},
		{"out of range", pos(value.Number(5)), nil},
		{"huge index", pos(value.Number(1e300)), nil},
		{"infinite index", pos(value.Number(math.Inf(1))), nil},
		{"huge index in vector", pos(value.FromFloats(1e300, 0)), &csg.Group{Objects: []csg.Node{a}}},
		{"vector", pos(value.FromFloats(2, 0)), &csg.Group{Objects: []csg.Node{c, a}}},
		{"range", pos(value.Range{Start: 1, Increment: 1, End: 2}), &csg.Group{Objects: []csg.Node{b, c}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := callModule(t, "children", env, nil, tt.args)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("children() = %#v, want %#v", got, tt.want)
			}
		})
	}

	if got := callModule(t, "children", &fakeEnv{}, nil, nil); got != nil {
		t.Errorf("children() without inherited children = %#v, want nil", got)
	}
}

func TestRegistry(t *testing.T) {
	r := Default()
	if pi, ok := value.AsNumber(r.Variables()["PI"]); !ok || pi != math.Pi {
		t.Errorf("PI = %v", r.Variables()["PI"])
	}
	if len(r.FunctionNames()) != 30 {
		t.Errorf("got %d functions: %v", len(r.FunctionNames()), r.FunctionNames())
	}
	if got := r.ModuleNames(); !reflect.DeepEqual(got, []string{"children", "cube", "echo", "translate"}) {
		t.Errorf("ModuleNames() = %v", got)
	}
	if err := r.RegisterModule(&Module{Name: "cube", Build: cube}); err == nil {
		t.Errorf("duplicate registration should fail")
	}
	if err := NewRegistry().RegisterFunction(&Function{Name: "f"}); err == nil {
		t.Errorf("function without implementation should be rejected")
	}
}
