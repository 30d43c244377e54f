// File: nodes.go
// Title: Abstract Syntax Tree Node Definitions
// Description: Defines the closed set of AST nodes produced by the parser.
//              Expressions and statements are separated by marker methods,
//              every node records the position of its first token, and
//              String renders a node back to compact source text.
// Author: frikeldon
// Version: v0.1.0
// Created: 2026-10-19
// Modified: 2026-10-19
//
// Change History:
// - 2026-10-19 v0.1.0: Initial AST definitions

package ast

import (
	"fmt"
	"strconv"
	"strings"
)

// Node represents the base interface for all AST nodes
type Node interface {
	// String returns the node as source text
	String() string

	// Accept implements the visitor pattern
	Accept(visitor Visitor) interface{}

	// Position returns the source position of the node
	Position() Position
}

// Position represents a position in the source code
type Position struct {
	Line   int // 1-based
	Column int // 1-based
}

// String returns "line:column"
func (p Position) String() string {
	return fmt.Sprintf("%d:%d", p.Line, p.Column)
}

// Expr is a node that evaluates to a value
type Expr interface {
	Node
	exprNode()
}

// Statement is a node that appears in a sentence list
type Statement interface {
	Node
	stmtNode()
}

// NumberLiteral is a numeric literal
type NumberLiteral struct {
	Value float64
	Pos   Position
}

// StringLiteral is a string literal with escapes already resolved
type StringLiteral struct {
	Value string
	Pos   Position
}

// BooleanLiteral is true or false
type BooleanLiteral struct {
	Value bool
	Pos   Position
}

// UndefLiteral is the undef keyword
type UndefLiteral struct {
	Pos Position
}

// Variable is a reference to a bound name
type Variable struct {
	Name string
	Pos  Position
}

// Vector is a list literal [a, b, c]
type Vector struct {
	Values []Expr
	Pos    Position
}

// Range is [start:end] or [start:increment:end]; Increment is nil when omitted
type Range struct {
	Start     Expr
	Increment Expr
	End       Expr
	Pos       Position
}

// FunctionCall is name(parameters) in expression position
type FunctionCall struct {
	Name       string
	Parameters []*Parameter
	Pos        Position
}

// IndexAccessor is target[index]
type IndexAccessor struct {
	Index  Expr
	Target Expr
	Pos    Position
}

// PropertyAccessor is target.property
type PropertyAccessor struct {
	Property string
	Target   Expr
	Pos      Position
}

// UnaryOp is a prefix + - or !
type UnaryOp struct {
	Operator string
	Value    Expr
	Pos      Position
}

// BinaryOp is left operator right
type BinaryOp struct {
	Operator string
	Left     Expr
	Right    Expr
	Pos      Position
}

// TernaryOp is condition ? right : wrong
type TernaryOp struct {
	Condition Expr
	Right     Expr
	Wrong     Expr
	Pos       Position
}

// Parameter is an actual argument; Name is empty for positional arguments
type Parameter struct {
	Name  string
	Value Expr
	Pos   Position
}

// ParameterDefinition is a declared parameter; Value is the default
// expression or nil
type ParameterDefinition struct {
	Name  string
	Value Expr
	Pos   Position
}

// Assignation is variable = value;
type Assignation struct {
	Variable string
	Value    Expr
	Pos      Position
}

// Block is { sentences }
type Block struct {
	Sentences []Statement
	Pos       Position
}

// Conditional is if (condition) pass else fail; Fail may be nil
type Conditional struct {
	Condition Expr
	Pass      Statement
	Fail      Statement
	Pos       Position
}

// FunctionDefinition is function name(parameters) = expression;
type FunctionDefinition struct {
	Name       string
	Parameters []*ParameterDefinition
	Expression Expr
	Pos        Position
}

// ModuleDefinition is module name(parameters) body
type ModuleDefinition struct {
	Name       string
	Parameters []*ParameterDefinition
	Body       Statement
	Pos        Position
}

// ModuleCall is name(parameters) followed by a child call, a block or ';'.
// Children is nil, a *ModuleCall or a *Block.
type ModuleCall struct {
	Name       string
	Parameters []*Parameter
	Children   Statement
	Pos        Position
}

// Empty is a lone ';'
type Empty struct {
	Pos Position
}

// Program is the root of a parsed source
type Program struct {
	Sentences []Statement
	Pos       Position
}

func (*NumberLiteral) exprNode()    {}
func (*StringLiteral) exprNode()    {}
func (*BooleanLiteral) exprNode()   {}
func (*UndefLiteral) exprNode()     {}
func (*Variable) exprNode()         {}
func (*Vector) exprNode()           {}
func (*Range) exprNode()            {}
func (*FunctionCall) exprNode()     {}
func (*IndexAccessor) exprNode()    {}
func (*PropertyAccessor) exprNode() {}
func (*UnaryOp) exprNode()          {}
func (*BinaryOp) exprNode()         {}
func (*TernaryOp) exprNode()        {}

func (*Assignation) stmtNode()        {}
func (*Block) stmtNode()              {}
func (*Conditional) stmtNode()        {}
func (*FunctionDefinition) stmtNode() {}
func (*ModuleDefinition) stmtNode()   {}
func (*ModuleCall) stmtNode()         {}
func (*Empty) stmtNode()              {}

func (n *NumberLiteral) Position() Position       { return n.Pos }
func (n *StringLiteral) Position() Position       { return n.Pos }
func (n *BooleanLiteral) Position() Position      { return n.Pos }
func (n *UndefLiteral) Position() Position        { return n.Pos }
func (n *Variable) Position() Position            { return n.Pos }
func (n *Vector) Position() Position              { return n.Pos }
func (n *Range) Position() Position               { return n.Pos }
func (n *FunctionCall) Position() Position        { return n.Pos }
func (n *IndexAccessor) Position() Position       { return n.Pos }
func (n *PropertyAccessor) Position() Position    { return n.Pos }
func (n *UnaryOp) Position() Position             { return n.Pos }
func (n *BinaryOp) Position() Position            { return n.Pos }
func (n *TernaryOp) Position() Position           { return n.Pos }
func (n *Parameter) Position() Position           { return n.Pos }
func (n *ParameterDefinition) Position() Position { return n.Pos }
func (n *Assignation) Position() Position         { return n.Pos }
func (n *Block) Position() Position               { return n.Pos }
func (n *Conditional) Position() Position         { return n.Pos }
func (n *FunctionDefinition) Position() Position  { return n.Pos }
func (n *ModuleDefinition) Position() Position    { return n.Pos }
func (n *ModuleCall) Position() Position          { return n.Pos }
func (n *Empty) Position() Position               { return n.Pos }
func (n *Program) Position() Position             { return n.Pos }

// FormatNumber renders a number the way literals and echo output show it
func FormatNumber(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

func (n *NumberLiteral) String() string  { return FormatNumber(n.Value) }
func (n *StringLiteral) String() string  { return strconv.Quote(n.Value) }
func (n *BooleanLiteral) String() string { return strconv.FormatBool(n.Value) }
func (n *UndefLiteral) String() string   { return "undef" }
func (n *Variable) String() string       { return n.Name }

func (n *Vector) String() string {
	parts := make([]string, len(n.Values))
	for i, v := range n.Values {
		parts[i] = v.String()
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

func (n *Range) String() string {
	if n.Increment == nil {
		return fmt.Sprintf("[%s : %s]", n.Start, n.End)
	}
	return fmt.Sprintf("[%s : %s : %s]", n.Start, n.Increment, n.End)
}

func (n *FunctionCall) String() string {
	return n.Name + parameterList(n.Parameters)
}

func (n *IndexAccessor) String() string {
	return fmt.Sprintf("%s[%s]", n.Target, n.Index)
}

func (n *PropertyAccessor) String() string {
	return fmt.Sprintf("%s.%s", n.Target, n.Property)
}

func (n *UnaryOp) String() string {
	return n.Operator + n.Value.String()
}

func (n *BinaryOp) String() string {
	return fmt.Sprintf("(%s %s %s)", n.Left, n.Operator, n.Right)
}

func (n *TernaryOp) String() string {
	return fmt.Sprintf("(%s ? %s : %s)", n.Condition, n.Right, n.Wrong)
}

func (n *Parameter) String() string {
	if n.Name == "" {
		return n.Value.String()
	}
	return n.Name + " = " + n.Value.String()
}

func (n *ParameterDefinition) String() string {
	if n.Value == nil {
		return n.Name
	}
	return n.Name + " = " + n.Value.String()
}

func (n *Assignation) String() string {
	return fmt.Sprintf("%s = %s;", n.Variable, n.Value)
}

func (n *Block) String() string {
	return "{ " + sentenceList(n.Sentences) + "}"
}

func (n *Conditional) String() string {
	s := fmt.Sprintf("if (%s) %s", n.Condition, n.Pass)
	if n.Fail != nil {
		s += " else " + n.Fail.String()
	}
	return s
}

func (n *FunctionDefinition) String() string {
	return fmt.Sprintf("function %s%s = %s;", n.Name, definitionList(n.Parameters), n.Expression)
}

func (n *ModuleDefinition) String() string {
	return fmt.Sprintf("module %s%s %s", n.Name, definitionList(n.Parameters), n.Body)
}

func (n *ModuleCall) String() string {
	s := n.Name + parameterList(n.Parameters)
	if n.Children == nil {
		return s + ";"
	}
	return s + " " + n.Children.String()
}

func (n *Empty) String() string { return ";" }

func (n *Program) String() string {
	parts := make([]string, len(n.Sentences))
	for i, s := range n.Sentences {
		parts[i] = s.String()
	}
	return strings.Join(parts, "\n")
}

func parameterList(params []*Parameter) string {
	parts := make([]string, len(params))
	for i, p := range params {
		parts[i] = p.String()
	}
	return "(" + strings.Join(parts, ", ") + ")"
}

func definitionList(params []*ParameterDefinition) string {
	parts := make([]string, len(params))
	for i, p := range params {
		parts[i] = p.String()
	}
	return "(" + strings.Join(parts, ", ") + ")"
}

func sentenceList(sentences []Statement) string {
	var b strings.Builder
	for _, s := range sentences {
		b.WriteString(s.String())
		b.WriteByte(' ')
	}
	return b.String()
}
