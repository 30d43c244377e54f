package csg

import (
	"bytes"
	"encoding/json"
	"reflect"
	"strings"
	"testing"

	mdwerror "github.com/frikeldon/openscad/foundation/core/error"
)

func cube(x, y, z float64) *Cube {
	return &Cube{Size: [3]float64{x, y, z}}
}

func TestMarshalJSON(t *testing.T) {
	tests := []struct {
		name string
		node Node
		want string
	}{
		{
			name: "cube",
			node: cube(2, 3, 4),
			want: `{"type":"primitive","object":"cube","size":[2,3,4],"center":false}`,
		},
		{
			name: "translate",
			node: &Translate{Translation: [3]float64{1, 0, 0}, Children: []Node{cube(1, 1, 1)}},
			want: `{"type":"operation","object":"translate","translation":[1,0,0],"children":[{"type":"primitive","object":"cube","size":[1,1,1],"center":false}]}`,
		},
		{
			name: "empty group",
			node: &Group{},
			want: `{"type":"operation","object":"group","objects":[]}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := json.Marshal(tt.node)
			if err != nil {
				t.Fatalf("Marshal() error = %v", err)
			}
			if string(got) != tt.want {
				t.Errorf("Marshal() = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestDecode(t *testing.T) {
	nodes := []Node{
		&Translate{Translation: [3]float64{1, 2, 3}, Children: []Node{
			&Cube{Size: [3]float64{1, 1, 1}, Center: true},
			&Group{Objects: []Node{cube(2, 2, 2)}},
		}},
	}
	data, err := json.Marshal(nodes)
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}
	got, err := Decode(data)
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	if !reflect.DeepEqual(got, nodes) {
		t.Errorf("Decode() = %#v, want %#v", got, nodes)
	}

	if _, err := Decode([]byte(`[{"type":"primitive","object":"sphere"}]`)); !mdwerror.HasCode(err, mdwerror.CodeInvalidInput) {
		t.Errorf("Decode(sphere) error = %v, want %s", err, mdwerror.CodeInvalidInput)
	}
}

func TestClean(t *testing.T) {
	tests := []struct {
		name string
		in   []Node
		want []Node
	}{
		{
			name: "cube passes through",
			in:   []Node{cube(1, 2, 3)},
			want: []Node{cube(1, 2, 3)},
		},
		{
			name: "translate survives",
			in:   []Node{&Translate{Translation: [3]float64{1, 0, 0}, Children: []Node{cube(1, 1, 1)}}},
			want: []Node{&Translate{Translation: [3]float64{1, 0, 0}, Children: []Node{cube(1, 1, 1)}}},
		},
		{
			name: "zero translate collapses to group",
			in:   []Node{&Translate{Children: []Node{cube(1, 1, 1)}}},
			want: []Node{&Group{Objects: []Node{cube(1, 1, 1)}}},
		},
		{
			name: "childless translate vanishes",
			in:   []Node{&Translate{Translation: [3]float64{1, 1, 1}}},
			want: []Node{},
		},
		{
			name: "empty groups vanish",
			in:   []Node{&Group{Objects: []Node{&Group{}, &Group{Objects: []Node{&Group{}}}}}},
			want: []Node{},
		},
		{
			name: "empty members are dropped",
			in:   []Node{&Group{Objects: []Node{&Group{}, cube(1, 1, 1), &Translate{Translation: [3]float64{0, 0, 1}}}}},
			want: []Node{&Group{Objects: []Node{cube(1, 1, 1)}}},
		},
		{
			name: "nil members are dropped",
			in:   []Node{nil, cube(1, 1, 1)},
			want: []Node{cube(1, 1, 1)},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Clean(tt.in)
			if err != nil {
				t.Fatalf("Clean() error = %v", err)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Clean() = %s, want %s", dump(got), dump(tt.want))
			}

			again, err := Clean(got)
			if err != nil {
				t.Fatalf("second Clean() error = %v", err)
			}
			if !reflect.DeepEqual(again, got) {
				t.Errorf("Clean() is not idempotent: %s then %s", dump(got), dump(again))
			}
		})
	}
}

func TestClean_DoesNotMutate(t *testing.T) {
	in := []Node{&Group{Objects: []Node{&Group{}, cube(1, 1, 1)}}}
	if _, err := Clean(in); err != nil {
		t.Fatalf("Clean() error = %v", err)
	}
	if len(in[0].(*Group).Objects) != 2 {
		t.Errorf("Clean() modified its input")
	}
}

func TestCubeOffset(t *testing.T) {
	if got := cube(2, 4, 6).Offset(); got != [3]float64{1, 2, 3} {
		t.Errorf("Offset() = %v, want [1 2 3]", got)
	}
	centered := &Cube{Size: [3]float64{2, 4, 6}, Center: true}
	if got := centered.Offset(); got != [3]float64{} {
		t.Errorf("centered Offset() = %v, want zero", got)
	}
}

func TestEncode(t *testing.T) {
	nodes := []Node{&Translate{Translation: [3]float64{1, 0, 0}, Children: []Node{cube(1, 1, 1)}}}

	var tree bytes.Buffer
	if err := Encode(&tree, nodes, FormatTree); err != nil {
		t.Fatalf("Encode(tree) error = %v", err)
	}
	if want := "translate [1, 0, 0]\n  cube [1, 1, 1]\n"; tree.String() != want {
		t.Errorf("tree = %q, want %q", tree.String(), want)
	}

	var y bytes.Buffer
	if err := Encode(&y, nodes, FormatYAML); err != nil {
		t.Fatalf("Encode(yaml) error = %v", err)
	}
	for _, want := range []string{"object: translate", "translation: [1, 0, 0]", "object: cube"} {
		if !strings.Contains(y.String(), want) {
			t.Errorf("yaml output missing %q:\n%s", want, y.String())
		}
	}

	var j bytes.Buffer
	if err := Encode(&j, nil, FormatJSON); err != nil {
		t.Fatalf("Encode(json) error = %v", err)
	}
	if strings.TrimSpace(j.String()) != "[]" {
		t.Errorf("empty json = %q, want []", j.String())
	}

	if _, err := ParseFormat("xml"); err == nil {
		t.Errorf("ParseFormat(xml) should fail")
	}
}

func dump(nodes []Node) string {
	data, _ := json.Marshal(nodes)
	return string(data)
}
