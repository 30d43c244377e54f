// File: csg.go
// Title: CSG Tree
// Description: The constructive solid geometry output of an interpretation:
//              cube primitives plus translate and group operations. Nodes
//              encode to the {type, object} tagged JSON shape consumed by
//              renderers and editors, and to the equivalent YAML mapping.
// Author: frikeldon
// Version: v0.1.0
// Created: 2026-10-19
// Modified: 2026-10-19
//
// Change History:
// - 2026-10-19 v0.1.0: Initial implementation

package csg

import (
	"encoding/json"
	"fmt"

	mdwerror "github.com/frikeldon/openscad/foundation/core/error"
)

// Node types
const (
	TypePrimitive = "primitive"
	TypeOperation = "operation"
)

// Node objects
const (
	ObjectCube      = "cube"
	ObjectTranslate = "translate"
	ObjectGroup     = "group"
)

// Node is a node of the CSG tree
type Node interface {
	// Type returns "primitive" or "operation"
	Type() string
	// Object returns the concrete shape or operation name
	Object() string

	csgNode()
}

// Cube is an axis aligned box
type Cube struct {
	Size   [3]float64
	Center bool
}

// Translate moves its children by Translation
type Translate struct {
	Translation [3]float64
	Children    []Node
}

// Group collects objects without transforming them
type Group struct {
	Objects []Node
}

func (*Cube) csgNode()      {}
func (*Translate) csgNode() {}
func (*Group) csgNode()     {}

func (*Cube) Type() string      { return TypePrimitive }
func (*Translate) Type() string { return TypeOperation }
func (*Group) Type() string     { return TypeOperation }

func (*Cube) Object() string      { return ObjectCube }
func (*Translate) Object() string { return ObjectTranslate }
func (*Group) Object() string     { return ObjectGroup }

// Offset returns the translation a renderer applies to a cube built around
// the origin: half the size on each axis unless the cube is centered.
func (c *Cube) Offset() [3]float64 {
	if c.Center {
		return [3]float64{}
	}
	return [3]float64{c.Size[0] / 2, c.Size[1] / 2, c.Size[2] / 2}
}

// NewGroup copies objects into a new group
func NewGroup(objects []Node) *Group {
	return &Group{Objects: append([]Node(nil), objects...)}
}

type cubeJSON struct {
	Type   string     `json:"type" yaml:"type"`
	Object string     `json:"object" yaml:"object"`
	Size   [3]float64 `json:"size" yaml:"size,flow"`
	Center bool       `json:"center" yaml:"center"`
}

type translateJSON struct {
	Type        string     `json:"type" yaml:"type"`
	Object      string     `json:"object" yaml:"object"`
	Translation [3]float64 `json:"translation" yaml:"translation,flow"`
	Children    []Node     `json:"children" yaml:"children"`
}

type groupJSON struct {
	Type    string `json:"type" yaml:"type"`
	Object  string `json:"object" yaml:"object"`
	Objects []Node `json:"objects" yaml:"objects"`
}

func nonNil(nodes []Node) []Node {
	if nodes == nil {
		return []Node{}
	}
	return nodes
}

func (c *Cube) shape() cubeJSON {
	return cubeJSON{TypePrimitive, ObjectCube, c.Size, c.Center}
}

func (t *Translate) shape() translateJSON {
	return translateJSON{TypeOperation, ObjectTranslate, t.Translation, nonNil(t.Children)}
}

func (g *Group) shape() groupJSON {
	return groupJSON{TypeOperation, ObjectGroup, nonNil(g.Objects)}
}

// MarshalJSON encodes {"type":"primitive","object":"cube","size":[x,y,z],"center":bool}
func (c *Cube) MarshalJSON() ([]byte, error) { return json.Marshal(c.shape()) }

// MarshalJSON encodes {"type":"operation","object":"translate","translation":[x,y,z],"children":[...]}
func (t *Translate) MarshalJSON() ([]byte, error) { return json.Marshal(t.shape()) }

// MarshalJSON encodes {"type":"operation","object":"group","objects":[...]}
func (g *Group) MarshalJSON() ([]byte, error) { return json.Marshal(g.shape()) }

// MarshalYAML implements yaml.Marshaler
func (c *Cube) MarshalYAML() (interface{}, error) { return c.shape(), nil }

// MarshalYAML implements yaml.Marshaler
func (t *Translate) MarshalYAML() (interface{}, error) { return t.shape(), nil }

// MarshalYAML implements yaml.Marshaler
func (g *Group) MarshalYAML() (interface{}, error) { return g.shape(), nil }

// rawNode is the union of every node shape, used for decoding
type rawNode struct {
	Type        string            `json:"type"`
	Object      string            `json:"object"`
	Size        *[3]float64       `json:"size"`
	Center      bool              `json:"center"`
	Translation *[3]float64       `json:"translation"`
	Children    []json.RawMessage `json:"children"`
	Objects     []json.RawMessage `json:"objects"`
}

// Decode parses a JSON array of nodes as produced by encoding a []Node
func Decode(data []byte) ([]Node, error) {
	var raws []json.RawMessage
	if err := json.Unmarshal(data, &raws); err != nil {
		return nil, mdwerror.Wrap(err, "invalid CSG document").
			WithCode(mdwerror.CodeInvalidInput).
			WithOperation("csg.Decode")
	}
	return decodeList(raws)
}

func decodeList(raws []json.RawMessage) ([]Node, error) {
	nodes := make([]Node, 0, len(raws))
	for _, raw := range raws {
		n, err := decodeNode(raw)
		if err != nil {
			return nil, err
		}
		nodes = append(nodes, n)
	}
	return nodes, nil
}

func decodeNode(data json.RawMessage) (Node, error) {
	var raw rawNode
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, mdwerror.Wrap(err, "invalid CSG node").
			WithCode(mdwerror.CodeInvalidInput).
			WithOperation("csg.Decode")
	}

	switch {
	case raw.Type == TypePrimitive && raw.Object == ObjectCube:
		if raw.Size == nil {
			return nil, invalidNode(raw, "missing size")
		}
		return &Cube{Size: *raw.Size, Center: raw.Center}, nil

	case raw.Type == TypeOperation && raw.Object == ObjectTranslate:
		if raw.Translation == nil {
			return nil, invalidNode(raw, "missing translation")
		}
		children, err := decodeList(raw.Children)
		if err != nil {
			return nil, err
		}
		return &Translate{Translation: *raw.Translation, Children: children}, nil

	case raw.Type == TypeOperation && raw.Object == ObjectGroup:
		objects, err := decodeList(raw.Objects)
		if err != nil {
			return nil, err
		}
		return &Group{Objects: objects}, nil
	}

	return nil, invalidNode(raw, "unknown node")
}

func invalidNode(raw rawNode, reason string) error {
	return mdwerror.New(fmt.Sprintf("%s: type '%s' object '%s'", reason, raw.Type, raw.Object)).
		WithCode(mdwerror.CodeInvalidInput).
		WithOperation("csg.Decode")
}
