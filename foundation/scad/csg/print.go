// File: print.go
// Title: CSG Encoders
// Description: Text tree, JSON and YAML renderings of a CSG node list.
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
	"io"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	mdwerror "github.com/frikeldon/openscad/foundation/core/error"
)

// Format selects an output encoding
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
	FormatTree Format = "tree"
)

// ParseFormat parses a format name
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case FormatJSON, FormatYAML, FormatTree:
		return f, nil
	}
	return "", mdwerror.New(fmt.Sprintf("unknown output format '%s'", s)).
		WithCode(mdwerror.CodeInvalidInput).
		WithDetail("supported", []string{string(FormatJSON), string(FormatYAML), string(FormatTree)})
}

// Encode writes nodes to w in the given format
func Encode(w io.Writer, nodes []Node, format Format) error {
	nodes = nonNil(nodes)
	switch format {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(nodes)
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(nodes); err != nil {
			return err
		}
		return enc.Close()
	case FormatTree:
		return Print(w, nodes)
	}
	return mdwerror.New(fmt.Sprintf("unknown output format '%s'", format)).WithCode(mdwerror.CodeInvalidInput)
}

// Print writes an indented, human readable tree, one node per line:
//
//	translate [1, 0, 0]
//	  cube [1, 1, 1]
func Print(w io.Writer, nodes []Node) error {
	p := &printer{w: w}
	for _, n := range nodes {
		if err := p.node(n, 0); err != nil {
			return err
		}
	}
	return p.err
}

// Sprint returns the Print rendering as a string
func Sprint(nodes []Node) (string, error) {
	var b strings.Builder
	if err := Print(&b, nodes); err != nil {
		return "", err
	}
	return b.String(), nil
}

type printer struct {
	w   io.Writer
	err error
}

func (p *printer) line(depth int, format string, args ...interface{}) {
	if p.err != nil {
		return
	}
	_, p.err = fmt.Fprintf(p.w, strings.Repeat("  ", depth)+format+"\n", args...)
}

func (p *printer) node(n Node, depth int) error {
	switch node := n.(type) {
	case *Cube:
		if node.Center {
			p.line(depth, "cube %s center", vec3(node.Size))
		} else {
			p.line(depth, "cube %s", vec3(node.Size))
		}
	case *Translate:
		p.line(depth, "translate %s", vec3(node.Translation))
		for _, c := range node.Children {
			if err := p.node(c, depth+1); err != nil {
				return err
			}
		}
	case *Group:
		p.line(depth, "group")
		for _, c := range node.Objects {
			if err := p.node(c, depth+1); err != nil {
				return err
			}
		}
	default:
		return mdwerror.New(fmt.Sprintf("no printer for CSG node %T", n)).
			WithCode(mdwerror.CodeDefect).
			WithOperation("csg.Print")
	}
	return p.err
}

func vec3(v [3]float64) string {
	return "[" + strconv.FormatFloat(v[0], 'g', -1, 64) + ", " +
		strconv.FormatFloat(v[1], 'g', -1, 64) + ", " +
		strconv.FormatFloat(v[2], 'g', -1, 64) + "]"
}
