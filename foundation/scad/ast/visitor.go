// File: visitor.go
// Title: AST Visitor Pattern
// Description: Visitor interface over every AST node, an Inspect helper
//              that walks a tree depth first, and the indented tree dump
//              printed by the `ast` command.
// Author: frikeldon
// Version: v0.1.0
// Created: 2026-10-19
// Modified: 2026-10-19
//
// Change History:
// - 2026-10-19 v0.1.0: Initial visitor implementation

package ast

import (
	"fmt"
	"strings"
)

// Visitor interface for traversing AST nodes using the visitor pattern
type Visitor interface {
	VisitNumber(n *NumberLiteral) interface{}
	VisitString(n *StringLiteral) interface{}
	VisitBoolean(n *BooleanLiteral) interface{}
	VisitUndef(n *UndefLiteral) interface{}
	VisitVariable(n *Variable) interface{}
	VisitVector(n *Vector) interface{}
	VisitRange(n *Range) interface{}
	VisitFunctionCall(n *FunctionCall) interface{}
	VisitIndexAccessor(n *IndexAccessor) interface{}
	VisitPropertyAccessor(n *PropertyAccessor) interface{}
	VisitUnaryOp(n *UnaryOp) interface{}
	VisitBinaryOp(n *BinaryOp) interface{}
	VisitTernaryOp(n *TernaryOp) interface{}
	VisitParameter(n *Parameter) interface{}
	VisitParameterDefinition(n *ParameterDefinition) interface{}
	VisitAssignation(n *Assignation) interface{}
	VisitBlock(n *Block) interface{}
	VisitConditional(n *Conditional) interface{}
	VisitFunctionDefinition(n *FunctionDefinition) interface{}
	VisitModuleDefinition(n *ModuleDefinition) interface{}
	VisitModuleCall(n *ModuleCall) interface{}
	VisitEmpty(n *Empty) interface{}
	VisitProgram(n *Program) interface{}
}

func (n *NumberLiteral) Accept(v Visitor) interface{}       { return v.VisitNumber(n) }
func (n *StringLiteral) Accept(v Visitor) interface{}       { return v.VisitString(n) }
func (n *BooleanLiteral) Accept(v Visitor) interface{}      { return v.VisitBoolean(n) }
func (n *UndefLiteral) Accept(v Visitor) interface{}        { return v.VisitUndef(n) }
func (n *Variable) Accept(v Visitor) interface{}            { return v.VisitVariable(n) }
func (n *Vector) Accept(v Visitor) interface{}              { return v.VisitVector(n) }
func (n *Range) Accept(v Visitor) interface{}               { return v.VisitRange(n) }
func (n *FunctionCall) Accept(v Visitor) interface{}        { return v.VisitFunctionCall(n) }
func (n *IndexAccessor) Accept(v Visitor) interface{}       { return v.VisitIndexAccessor(n) }
func (n *PropertyAccessor) Accept(v Visitor) interface{}    { return v.VisitPropertyAccessor(n) }
func (n *UnaryOp) Accept(v Visitor) interface{}             { return v.VisitUnaryOp(n) }
func (n *BinaryOp) Accept(v Visitor) interface{}            { return v.VisitBinaryOp(n) }
func (n *TernaryOp) Accept(v Visitor) interface{}           { return v.VisitTernaryOp(n) }
func (n *Parameter) Accept(v Visitor) interface{}           { return v.VisitParameter(n) }
func (n *ParameterDefinition) Accept(v Visitor) interface{} { return v.VisitParameterDefinition(n) }
func (n *Assignation) Accept(v Visitor) interface{}         { return v.VisitAssignation(n) }
func (n *Block) Accept(v Visitor) interface{}               { return v.VisitBlock(n) }
func (n *Conditional) Accept(v Visitor) interface{}         { return v.VisitConditional(n) }
func (n *FunctionDefinition) Accept(v Visitor) interface{}  { return v.VisitFunctionDefinition(n) }
func (n *ModuleDefinition) Accept(v Visitor) interface{}    { return v.VisitModuleDefinition(n) }
func (n *ModuleCall) Accept(v Visitor) interface{}          { return v.VisitModuleCall(n) }
func (n *Empty) Accept(v Visitor) interface{}               { return v.VisitEmpty(n) }
func (n *Program) Accept(v Visitor) interface{}             { return v.VisitProgram(n) }

// Children returns the direct child nodes of n in source order
func Children(n Node) []Node {
	var out []Node
	add := func(nodes ...Node) {
		for _, c := range nodes {
			if c != nil {
				out = append(out, c)
			}
		}
	}

	switch n := n.(type) {
	case *Vector:
		for _, v := range n.Values {
			add(v)
		}
	case *Range:
		add(n.Start, n.Increment, n.End)
	case *FunctionCall:
		for _, p := range n.Parameters {
			add(p)
		}
	case *IndexAccessor:
		add(n.Target, n.Index)
	case *PropertyAccessor:
		add(n.Target)
	case *UnaryOp:
		add(n.Value)
	case *BinaryOp:
		add(n.Left, n.Right)
	case *TernaryOp:
		add(n.Condition, n.Right, n.Wrong)
	case *Parameter:
		add(n.Value)
	case *ParameterDefinition:
		add(n.Value)
	case *Assignation:
		add(n.Value)
	case *Block:
		for _, s := range n.Sentences {
			add(s)
		}
	case *Conditional:
		add(n.Condition, n.Pass, n.Fail)
	case *FunctionDefinition:
		for _, p := range n.Parameters {
			add(p)
		}
		add(n.Expression)
	case *ModuleDefinition:
		for _, p := range n.Parameters {
			add(p)
		}
		add(n.Body)
	case *ModuleCall:
		for _, p := range n.Parameters {
			add(p)
		}
		add(n.Children)
	case *Program:
		for _, s := range n.Sentences {
			add(s)
		}
	}
	return out
}

// Inspect walks the tree depth first calling fn for every node. Children
// of a node are skipped when fn returns false.
func Inspect(root Node, fn func(Node) bool) {
	if root == nil || !fn(root) {
		return
	}
	for _, c := range Children(root) {
		Inspect(c, fn)
	}
}

// Count returns the number of nodes in the tree
func Count(root Node) int {
	n := 0
	Inspect(root, func(Node) bool {
		n++
		return true
	})
	return n
}

// dumpVisitor renders one line per node; the caller handles indentation
type dumpVisitor struct{}

func (dumpVisitor) VisitNumber(n *NumberLiteral) interface{}   { return "number " + FormatNumber(n.Value) }
func (dumpVisitor) VisitString(n *StringLiteral) interface{}   { return fmt.Sprintf("string %q", n.Value) }
func (dumpVisitor) VisitBoolean(n *BooleanLiteral) interface{} { return fmt.Sprintf("boolean %t", n.Value) }
func (dumpVisitor) VisitUndef(*UndefLiteral) interface{}       { return "undef" }
func (dumpVisitor) VisitVariable(n *Variable) interface{}      { return "variable " + n.Name }
func (dumpVisitor) VisitVector(n *Vector) interface{}          { return fmt.Sprintf("vector (%d)", len(n.Values)) }
func (dumpVisitor) VisitRange(n *Range) interface{} {
	if n.Increment == nil {
		return "range start:end"
	}
	return "range start:increment:end"
}
func (dumpVisitor) VisitFunctionCall(n *FunctionCall) interface{}         { return "functionCall " + n.Name }
func (dumpVisitor) VisitIndexAccessor(*IndexAccessor) interface{}         { return "indexAccessor" }
func (dumpVisitor) VisitPropertyAccessor(n *PropertyAccessor) interface{} { return "propertyAccessor ." + n.Property }
func (dumpVisitor) VisitUnaryOp(n *UnaryOp) interface{}                   { return "unaryOp " + n.Operator }
func (dumpVisitor) VisitBinaryOp(n *BinaryOp) interface{}                 { return "binaryOp " + n.Operator }
func (dumpVisitor) VisitTernaryOp(*TernaryOp) interface{}                 { return "ternaryOp" }
func (dumpVisitor) VisitParameter(n *Parameter) interface{} {
	if n.Name == "" {
		return "parameter"
	}
	return "parameter " + n.Name
}
func (dumpVisitor) VisitParameterDefinition(n *ParameterDefinition) interface{} {
	return "parameterDefinition " + n.Name
}
func (dumpVisitor) VisitAssignation(n *Assignation) interface{} { return "assignation " + n.Variable }
func (dumpVisitor) VisitBlock(n *Block) interface{}             { return "block" }
func (dumpVisitor) VisitConditional(*Conditional) interface{}   { return "conditional" }
func (dumpVisitor) VisitFunctionDefinition(n *FunctionDefinition) interface{} {
	return "functionDefinition " + n.Name
}
func (dumpVisitor) VisitModuleDefinition(n *ModuleDefinition) interface{} {
	return "moduleDefinition " + n.Name
}
func (dumpVisitor) VisitModuleCall(n *ModuleCall) interface{} { return "moduleCall " + n.Name }
func (dumpVisitor) VisitEmpty(*Empty) interface{}             { return "empty" }
func (dumpVisitor) VisitProgram(*Program) interface{}         { return "program" }

// Dump renders the tree one node per line, indented by depth, with the
// source position of every node.
func Dump(root Node) string {
	var b strings.Builder
	var walk func(n Node, depth int)
	walk = func(n Node, depth int) {
		fmt.Fprintf(&b, "%s%s @%s\n", strings.Repeat("  ", depth), n.Accept(dumpVisitor{}), n.Position())
		for _, c := range Children(n) {
			walk(c, depth+1)
		}
	}
	walk(root, 0)
	return b.String()
}
