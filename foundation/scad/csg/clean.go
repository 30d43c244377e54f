// File: clean.go
// Title: CSG Cleanup Pass
// Description: Post-order simplification of a raw CSG tree. Empty groups and
//              childless translations disappear and zero translations become
//              groups. The pass is pure and idempotent.
// Author: frikeldon
// Version: v0.1.0
// Created: 2026-10-19
// Modified: 2026-10-19
//
// Change History:
// - 2026-10-19 v0.1.0: Initial implementation

package csg

import (
	"fmt"

	mdwerror "github.com/frikeldon/openscad/foundation/core/error"
)

// Clean simplifies every top level node, dropping those that clean to
// nothing. The input is not modified.
func Clean(nodes []Node) ([]Node, error) {
	out := make([]Node, 0, len(nodes))
	for _, n := range nodes {
		cleaned, err := CleanNode(n)
		if err != nil {
			return nil, err
		}
		if cleaned != nil {
			out = append(out, cleaned)
		}
	}
	return out, nil
}

// CleanNode simplifies a single node. A nil result means the node vanished.
func CleanNode(n Node) (Node, error) {
	switch node := n.(type) {
	case nil:
		return nil, nil

	case *Cube:
		return node, nil

	case *Translate:
		children, err := Clean(node.Children)
		if err != nil {
			return nil, err
		}
		if len(children) == 0 {
			return nil, nil
		}
		if node.Translation == [3]float64{} {
			return &Group{Objects: children}, nil
		}
		return &Translate{Translation: node.Translation, Children: children}, nil

	case *Group:
		objects, err := Clean(node.Objects)
		if err != nil {
			return nil, err
		}
		if len(objects) == 0 {
			return nil, nil
		}
		return &Group{Objects: objects}, nil
	}

	return nil, mdwerror.New(fmt.Sprintf("no cleanup visitor for CSG node type '%s' object '%s'", n.Type(), n.Object())).
		WithCode(mdwerror.CodeDefect).
		WithOperation("csg.Clean")
}
