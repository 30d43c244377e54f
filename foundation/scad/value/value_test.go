package value

import "testing"

func TestTruthy(t *testing.T) {
	tests := []struct {
		name string
		v    Value
		want bool
	}{
		{"nil", nil, false},
		{"undef", Undefined, false},
		{"false", Bool(false), false},
		{"true", Bool(true), true},
		{"zero", Number(0), false},
		{"negative", Number(-1), true},
		{"empty string", String(""), false},
		{"string", String("0"), true},
		{"empty vector", Vector{}, false},
		{"vector of falsy", Vector{Number(0)}, true},
		{"range", Range{Start: 0, Increment: 1, End: 0}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Truthy(tt.v); got != tt.want {
				t.Errorf("Truthy(%v) = %v, want %v", tt.v, got, tt.want)
			}
		})
	}
}

func TestEqual(t *testing.T) {
	matrix := func(rows ...[]float64) Vector {
		out := Vector{}
		for _, r := range rows {
			out = append(out, FromFloats(r...))
		}
		return out
	}

	tests := []struct {
		name string
		a, b Value
		want bool
	}{
		{"numbers", Number(1), Number(1), true},
		{"different numbers", Number(1), Number(2), false},
		{"number and string", Number(1), String("1"), false},
		{"number and bool", Number(1), Bool(true), false},
		{"undef", Undefined, nil, true},
		{"strings", String("a"), String("a"), true},
		{"matrices", matrix([]float64{1, 2}, []float64{3, 4}), matrix([]float64{1, 2}, []float64{3, 4}), true},
		{"different matrices", matrix([]float64{1, 2}, []float64{3, 4}), matrix([]float64{1, 2}, []float64{3, 5}), false},
		{"different lengths", FromFloats(1, 2), FromFloats(1, 2, 3), false},
		{"ranges", Range{0, 1, 2}, Range{0, 1, 2}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Equal(tt.a, tt.b); got != tt.want {
				t.Errorf("Equal(%v, %v) = %v, want %v", tt.a, tt.b, got, tt.want)
			}
		})
	}
}

func TestToString(t *testing.T) {
	tests := []struct {
		name   string
		values []Value
		want   string
	}{
		{"undef", []Value{nil}, "undef"},
		{"number", []Value{Number(1.5)}, "1.5"},
		{"integer", []Value{Number(10)}, "10"},
		{"string", []Value{String("abc")}, "abc"},
		{"bool", []Value{Bool(true)}, "true"},
		{"vector", []Value{Vector{Number(1), String("a"), Undefined}}, "[1, a, undef]"},
		{"range", []Value{Range{0, 2, 6}}, "[0:2:6]"},
		{"concatenation", []Value{String("x="), Number(3)}, "x=3"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ToString(tt.values...); got != tt.want {
				t.Errorf("ToString() = %q, want %q", got, tt.want)
			}
		})
	}

	if got := Repr(Vector{String("a"), Number(1)}); got != `["a", 1]` {
		t.Errorf("Repr() = %q", got)
	}
}

func TestCalcRange(t *testing.T) {
	tests := []struct {
		name string
		r    Range
		want Vector
	}{
		{"stepped", Range{0, 2, 6}, FromFloats(0, 2, 4, 6)},
		{"end not reached exactly", Range{0, 2, 5}, FromFloats(0, 2, 4)},
		{"descending", Range{3, -1, 1}, FromFloats(3, 2, 1)},
		{"zero increment", Range{0, 0, 5}, Vector{}},
		{"wrong direction", Range{5, 1, 0}, Vector{}},
		{"single", Range{1, 1, 1}, FromFloats(1)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CalcRange(tt.r); !Equal(got, tt.want) {
				t.Errorf("CalcRange(%v) = %v, want %v", tt.r, got, tt.want)
			}
		})
	}
}

func TestFloats(t *testing.T) {
	if got, ok := Floats(FromFloats(1, 2)); !ok || len(got) != 2 || got[1] != 2 {
		t.Errorf("Floats() = %v, %v", got, ok)
	}
	if _, ok := Floats(Vector{Number(1), String("x")}); ok {
		t.Errorf("Floats() accepted a string element")
	}
}
