// File: parser.go
// Title: Recursive Descent Parser
// Description: Builds the AST from the token stream. Binary operators are
//              parsed by precedence climbing over a fixed table; the ternary
//              operator is only considered once binary parsing is done.
// Author: frikeldon
// Version: v0.1.0
// Created: 2026-10-19
// Modified: 2026-10-19
//
// Change History:
// - 2026-10-19 v0.1.0: Initial parser implementation

package parser

import (
	"fmt"
	"time"

	mdwerror "github.com/frikeldon/openscad/foundation/core/error"
	mdwlog "github.com/frikeldon/openscad/foundation/core/log"
	"github.com/frikeldon/openscad/foundation/scad/ast"
)

// DefaultMaxInputLength is used when Options.MaxInputLength is zero
const DefaultMaxInputLength = 1 << 20

var operatorPrecedence = map[string]int{
	"||": 2,
	"&&": 3,
	"<":  7, ">": 7, "<=": 7, ">=": 7, "==": 7, "!=": 7,
	"+": 10, "-": 10,
	"*": 20, "/": 20, "%": 20,
}

var binaryOperators = []string{"||", "&&", "<", ">", "<=", ">=", "==", "!=", "+", "-", "*", "/", "%"}

// Parser turns source text into a Program. A Parser holds no per-parse
// state and may be shared between goroutines.
type Parser struct {
	logger  *mdwlog.Logger
	options Options
}

// Options configures parser behavior
type Options struct {
	Logger         *mdwlog.Logger
	MaxInputLength int
}

// New creates a new parser with the given options
func New(opts Options) (*Parser, error) {
	if opts.Logger == nil {
		opts.Logger = mdwlog.GetDefault()
	}
	if opts.MaxInputLength < 0 {
		return nil, mdwerror.New("max input length cannot be negative").
			WithCode(mdwerror.CodeInvalidConfig).
			WithOperation("parser.New").
			WithDetail("maxInputLength", opts.MaxInputLength)
	}
	if opts.MaxInputLength == 0 {
		opts.MaxInputLength = DefaultMaxInputLength
	}

	return &Parser{
		logger:  opts.Logger.WithField("component", "scad-parser"),
		options: opts,
	}, nil
}

// Parse parses source into a Program. Structural problems are returned as
// *ParseError.
func (p *Parser) Parse(source string) (*ast.Program, error) {
	if len(source) > p.options.MaxInputLength {
		return nil, mdwerror.New(fmt.Sprintf("input exceeds maximum length: %d > %d", len(source), p.options.MaxInputLength)).
			WithCode(mdwerror.CodeInputTooLarge).
			WithOperation("parser.Parse")
	}

	start := time.Now()
	ts, err := NewTokenStream(source)
	if err == nil {
		ps := &parseState{tokens: ts}
		var program *ast.Program
		program, err = ps.parseProgram()
		if err == nil {
			p.logger.Debug("Parsing completed", mdwlog.Fields{
				"bytes":      len(source),
				"tokens":     ts.Consumed(),
				"sentences":  len(program.Sentences),
				"elapsed_us": time.Since(start).Microseconds(),
			})
			return program, nil
		}
	}

	fields := mdwlog.Fields{"bytes": len(source), "error": err.Error()}
	if pe, ok := err.(*ParseError); ok {
		for k, v := range pe.Span() {
			fields[k] = v
		}
	}
	p.logger.Warn("Parsing failed", fields)
	return nil, err
}

// Parse parses source with default options
func Parse(source string) (*ast.Program, error) {
	p, err := New(Options{Logger: mdwlog.NewDiscard()})
	if err != nil {
		return nil, err
	}
	return p.Parse(source)
}

type parseState struct {
	tokens *TokenStream
}

func pos(t Token) ast.Position {
	return ast.Position{Line: t.StartLine, Column: t.StartColumn}
}

func (ps *parseState) check(kind TokenKind, values ...string) bool {
	return ps.tokens.Check(kind, values...)
}

func (ps *parseState) advance(kind TokenKind, values ...string) (Token, error) {
	return ps.tokens.Advance(kind, values...)
}

// program: sentence*
func (ps *parseState) parseProgram() (*ast.Program, error) {
	program := &ast.Program{Pos: pos(ps.tokens.Current())}
	for !ps.check(TokenEOF) {
		s, err := ps.parseSentence()
		if err != nil {
			return nil, err
		}
		program.Sentences = append(program.Sentences, s)
	}
	return program, nil
}

// sentence: functionDefinition | moduleDefinition | conditional
//         | IDENTIFIER '=' ... | IDENTIFIER '(' ... | block | ';'
func (ps *parseState) parseSentence() (ast.Statement, error) {
	switch {
	case ps.check(TokenKeyword, "function"):
		return ps.parseFunctionDefinition()
	case ps.check(TokenKeyword, "module"):
		return ps.parseModuleDefinition()
	case ps.check(TokenKeyword, "if"):
		return ps.parseConditional()
	}

	if ps.check(TokenIdentifier) {
		ident, err := ps.advance(TokenIdentifier)
		if err != nil {
			return nil, err
		}
		if ps.check(TokenAssignment, "=") {
			return ps.parseAssignationSentence(ident)
		}
		if ps.check(TokenPunctuation, "(") {
			return ps.parseModuleCall(ident)
		}
	}

	if ps.check(TokenPunctuation, "{") {
		return ps.parseBlock()
	}

	tok, err := ps.advance(TokenPunctuation, ";")
	if err != nil {
		return nil, err
	}
	return &ast.Empty{Pos: pos(tok)}, nil
}

func (ps *parseState) parseAssignationSentence(ident Token) (ast.Statement, error) {
	if _, err := ps.advance(TokenAssignment, "="); err != nil {
		return nil, err
	}
	value, err := ps.parseExpression()
	if err != nil {
		return nil, err
	}
	if _, err := ps.advance(TokenPunctuation, ";"); err != nil {
		return nil, err
	}
	return &ast.Assignation{Variable: ident.Value, Value: value, Pos: pos(ident)}, nil
}

// block: '{' sentence* '}'
func (ps *parseState) parseBlock() (*ast.Block, error) {
	open, err := ps.advance(TokenPunctuation, "{")
	if err != nil {
		return nil, err
	}
	block := &ast.Block{Pos: pos(open)}
	for !ps.check(TokenPunctuation, "}") {
		s, err := ps.parseSentence()
		if err != nil {
			return nil, err
		}
		block.Sentences = append(block.Sentences, s)
	}
	if _, err := ps.advance(TokenPunctuation, "}"); err != nil {
		return nil, err
	}
	return block, nil
}

// conditionalBody: block | IDENTIFIER moduleCall
func (ps *parseState) parseConditionalBody() (ast.Statement, error) {
	if ps.check(TokenPunctuation, "{") {
		return ps.parseBlock()
	}
	ident, err := ps.advance(TokenIdentifier)
	if err != nil {
		return nil, err
	}
	return ps.parseModuleCall(ident)
}

// conditional: 'if' '(' expression ')' conditionalBody ('else' conditionalBody)?
func (ps *parseState) parseConditional() (ast.Statement, error) {
	kw, err := ps.advance(TokenKeyword, "if")
	if err != nil {
		return nil, err
	}
	if _, err := ps.advance(TokenPunctuation, "("); err != nil {
		return nil, err
	}
	condition, err := ps.parseExpression()
	if err != nil {
		return nil, err
	}
	if _, err := ps.advance(TokenPunctuation, ")"); err != nil {
		return nil, err
	}
	pass, err := ps.parseConditionalBody()
	if err != nil {
		return nil, err
	}

	node := &ast.Conditional{Condition: condition, Pass: pass, Pos: pos(kw)}
	if ps.check(TokenKeyword, "else") {
		if _, err := ps.advance(TokenKeyword, "else"); err != nil {
			return nil, err
		}
		if node.Fail, err = ps.parseConditionalBody(); err != nil {
			return nil, err
		}
	}
	return node, nil
}

// functionDefinition: 'function' IDENTIFIER parameterDefinitionList '=' expression ';'
func (ps *parseState) parseFunctionDefinition() (ast.Statement, error) {
	kw, err := ps.advance(TokenKeyword, "function")
	if err != nil {
		return nil, err
	}
	name, err := ps.advance(TokenIdentifier)
	if err != nil {
		return nil, err
	}
	params, err := ps.parseParameterDefinitionList()
	if err != nil {
		return nil, err
	}
	if _, err := ps.advance(TokenAssignment, "="); err != nil {
		return nil, err
	}
	expr, err := ps.parseExpression()
	if err != nil {
		return nil, err
	}
	if _, err := ps.advance(TokenPunctuation, ";"); err != nil {
		return nil, err
	}
	return &ast.FunctionDefinition{Name: name.Value, Parameters: params, Expression: expr, Pos: pos(kw)}, nil
}

// moduleDefinition: 'module' IDENTIFIER parameterDefinitionList sentence
func (ps *parseState) parseModuleDefinition() (ast.Statement, error) {
	kw, err := ps.advance(TokenKeyword, "module")
	if err != nil {
		return nil, err
	}
	name, err := ps.advance(TokenIdentifier)
	if err != nil {
		return nil, err
	}
	params, err := ps.parseParameterDefinitionList()
	if err != nil {
		return nil, err
	}
	body, err := ps.parseSentence()
	if err != nil {
		return nil, err
	}
	return &ast.ModuleDefinition{Name: name.Value, Parameters: params, Body: body, Pos: pos(kw)}, nil
}

// moduleCall: parameterList (IDENTIFIER moduleCall | block | ';')
func (ps *parseState) parseModuleCall(ident Token) (*ast.ModuleCall, error) {
	params, err := ps.parseParameterList()
	if err != nil {
		return nil, err
	}
	node := &ast.ModuleCall{Name: ident.Value, Parameters: params, Pos: pos(ident)}

	switch {
	case ps.check(TokenIdentifier):
		child, err := ps.advance(TokenIdentifier)
		if err != nil {
			return nil, err
		}
		childCall, err := ps.parseModuleCall(child)
		if err != nil {
			return nil, err
		}
		node.Children = childCall
	case ps.check(TokenPunctuation, "{"):
		block, err := ps.parseBlock()
		if err != nil {
			return nil, err
		}
		node.Children = block
	default:
		if _, err := ps.advance(TokenPunctuation, ";"); err != nil {
			return nil, err
		}
	}
	return node, nil
}

// parameterList: '(' (parameter (',' parameter)*)? ')'
func (ps *parseState) parseParameterList() ([]*ast.Parameter, error) {
	if _, err := ps.advance(TokenPunctuation, "("); err != nil {
		return nil, err
	}
	var params []*ast.Parameter
	for first := true; !ps.check(TokenEOF) && !ps.check(TokenPunctuation, ")"); first = false {
		if !first {
			if _, err := ps.advance(TokenPunctuation, ","); err != nil {
				return nil, err
			}
		}
		p, err := ps.parseParameter()
		if err != nil {
			return nil, err
		}
		params = append(params, p)
	}
	if _, err := ps.advance(TokenPunctuation, ")"); err != nil {
		return nil, err
	}
	return params, nil
}

// parameter: IDENTIFIER '=' expression | expression
// A parameter is named only when the parsed expression is a bare variable
// followed by '='.
func (ps *parseState) parseParameter() (*ast.Parameter, error) {
	start := ps.tokens.Current()
	node, err := ps.parseExpression()
	if err != nil {
		return nil, err
	}

	if v, ok := node.(*ast.Variable); ok && ps.check(TokenAssignment, "=") {
		if _, err := ps.advance(TokenAssignment, "="); err != nil {
			return nil, err
		}
		value, err := ps.parseExpression()
		if err != nil {
			return nil, err
		}
		return &ast.Parameter{Name: v.Name, Value: value, Pos: pos(start)}, nil
	}
	return &ast.Parameter{Value: node, Pos: pos(start)}, nil
}

// parameterDefinitionList: '(' (parameterDefinition (',' parameterDefinition)*)? ')'
func (ps *parseState) parseParameterDefinitionList() ([]*ast.ParameterDefinition, error) {
	if _, err := ps.advance(TokenPunctuation, "("); err != nil {
		return nil, err
	}
	var params []*ast.ParameterDefinition
	for first := true; !ps.check(TokenEOF) && !ps.check(TokenPunctuation, ")"); first = false {
		if !first {
			if _, err := ps.advance(TokenPunctuation, ","); err != nil {
				return nil, err
			}
		}
		name, err := ps.advance(TokenIdentifier)
		if err != nil {
			return nil, err
		}
		def := &ast.ParameterDefinition{Name: name.Value, Pos: pos(name)}
		if ps.check(TokenAssignment, "=") {
			if _, err := ps.advance(TokenAssignment, "="); err != nil {
				return nil, err
			}
			if def.Value, err = ps.parseExpression(); err != nil {
				return nil, err
			}
		}
		params = append(params, def)
	}
	if _, err := ps.advance(TokenPunctuation, ")"); err != nil {
		return nil, err
	}
	return params, nil
}

// expression: ternary(binary(factor))
func (ps *parseState) parseExpression() (ast.Expr, error) {
	left, err := ps.parseFactor()
	if err != nil {
		return nil, err
	}
	expr, err := ps.maybeBinaryOp(left, 0)
	if err != nil {
		return nil, err
	}
	return ps.maybeTernaryOp(expr)
}

// maybeBinaryOp consumes an operator only if it binds tighter than the
// current floor; its right side is climbed with the operator's own
// precedence, which makes operators of equal precedence left-associative.
func (ps *parseState) maybeBinaryOp(left ast.Expr, floor int) (ast.Expr, error) {
	for ps.check(TokenOperator, binaryOperators...) {
		prec := operatorPrecedence[ps.tokens.Current().Value]
		if prec <= floor {
			break
		}
		op, err := ps.advance(TokenOperator)
		if err != nil {
			return nil, err
		}
		factor, err := ps.parseFactor()
		if err != nil {
			return nil, err
		}
		right, err := ps.maybeBinaryOp(factor, prec)
		if err != nil {
			return nil, err
		}
		left = &ast.BinaryOp{Operator: op.Value, Left: left, Right: right, Pos: pos(op)}
	}
	return left, nil
}

// maybeTernaryOp: condition ('?' expression ':' expression)?
func (ps *parseState) maybeTernaryOp(condition ast.Expr) (ast.Expr, error) {
	if !ps.check(TokenOperator, "?") {
		return condition, nil
	}
	q, err := ps.advance(TokenOperator, "?")
	if err != nil {
		return nil, err
	}
	right, err := ps.parseExpression()
	if err != nil {
		return nil, err
	}
	if _, err := ps.advance(TokenPunctuation, ":"); err != nil {
		return nil, err
	}
	wrong, err := ps.parseExpression()
	if err != nil {
		return nil, err
	}
	return &ast.TernaryOp{Condition: condition, Right: right, Wrong: wrong, Pos: pos(q)}, nil
}

// factor: atom ('[' expression ']')? ('.' IDENTIFIER)?
func (ps *parseState) parseFactor() (ast.Expr, error) {
	expr, err := ps.parseAtom()
	if err != nil {
		return nil, err
	}

	if ps.check(TokenPunctuation, "[") {
		open, err := ps.advance(TokenPunctuation, "[")
		if err != nil {
			return nil, err
		}
		index, err := ps.parseExpression()
		if err != nil {
			return nil, err
		}
		if _, err := ps.advance(TokenPunctuation, "]"); err != nil {
			return nil, err
		}
		expr = &ast.IndexAccessor{Index: index, Target: expr, Pos: pos(open)}
	}

	if ps.check(TokenPunctuation, ".") {
		dot, err := ps.advance(TokenPunctuation, ".")
		if err != nil {
			return nil, err
		}
		prop, err := ps.advance(TokenIdentifier)
		if err != nil {
			return nil, err
		}
		expr = &ast.PropertyAccessor{Property: prop.Value, Target: expr, Pos: pos(dot)}
	}
	return expr, nil
}

// atom: '(' expression ')' | unaryOp | vector | range | NUMBER | STRING
//     | true | false | IDENTIFIER '(' ... | IDENTIFIER | undef
func (ps *parseState) parseAtom() (ast.Expr, error) {
	cur := ps.tokens.Current()

	switch {
	case ps.check(TokenPunctuation, "("):
		if _, err := ps.advance(TokenPunctuation, "("); err != nil {
			return nil, err
		}
		expr, err := ps.parseExpression()
		if err != nil {
			return nil, err
		}
		if _, err := ps.advance(TokenPunctuation, ")"); err != nil {
			return nil, err
		}
		return expr, nil

	case ps.check(TokenOperator, "+", "-", "!"):
		op, err := ps.advance(TokenOperator, "+", "-", "!")
		if err != nil {
			return nil, err
		}
		value, err := ps.parseFactor()
		if err != nil {
			return nil, err
		}
		return &ast.UnaryOp{Operator: op.Value, Value: value, Pos: pos(op)}, nil

	case ps.check(TokenPunctuation, "["):
		return ps.parseVectorOrRange()

	case ps.check(TokenNumber):
		tok, err := ps.advance(TokenNumber)
		if err != nil {
			return nil, err
		}
		return &ast.NumberLiteral{Value: tok.Number, Pos: pos(tok)}, nil

	case ps.check(TokenString):
		tok, err := ps.advance(TokenString)
		if err != nil {
			return nil, err
		}
		return &ast.StringLiteral{Value: tok.Value, Pos: pos(tok)}, nil

	case ps.check(TokenKeyword, "true", "false"):
		tok, err := ps.advance(TokenKeyword, "true", "false")
		if err != nil {
			return nil, err
		}
		return &ast.BooleanLiteral{Value: tok.Value == "true", Pos: pos(tok)}, nil

	case ps.check(TokenIdentifier):
		tok, err := ps.advance(TokenIdentifier)
		if err != nil {
			return nil, err
		}
		if ps.check(TokenPunctuation, "(") {
			params, err := ps.parseParameterList()
			if err != nil {
				return nil, err
			}
			return &ast.FunctionCall{Name: tok.Value, Parameters: params, Pos: pos(tok)}, nil
		}
		return &ast.Variable{Name: tok.Value, Pos: pos(tok)}, nil

	case ps.check(TokenKeyword, "undef"):
		tok, err := ps.advance(TokenKeyword, "undef")
		if err != nil {
			return nil, err
		}
		return &ast.UndefLiteral{Pos: pos(tok)}, nil
	}

	return nil, newError(ErrUnexpectedToken, fmt.Sprintf("Unexpected token %s", cur.Kind),
		cur.StartLine, cur.StartColumn, cur.EndLine, cur.EndColumn)
}

// vector: '[' (expression (',' expression)*)? ']'
// range:  '[' expression (':' expression){1,2} ']'
// The separator after the first element decides which one is parsed.
func (ps *parseState) parseVectorOrRange() (ast.Expr, error) {
	open, err := ps.advance(TokenPunctuation, "[")
	if err != nil {
		return nil, err
	}

	var values []ast.Expr
	separator := ""
	for first := true; !ps.check(TokenEOF) && !ps.check(TokenPunctuation, "]"); first = false {
		if !first {
			if separator != "" {
				if _, err := ps.advance(TokenPunctuation, separator); err != nil {
					return nil, err
				}
			} else {
				sep, err := ps.advance(TokenPunctuation, ",", ":")
				if err != nil {
					return nil, err
				}
				separator = sep.Value
			}
		}
		expr, err := ps.parseExpression()
		if err != nil {
			return nil, err
		}
		values = append(values, expr)
	}

	closing, err := ps.advance(TokenPunctuation, "]")
	if err != nil {
		return nil, err
	}

	if separator != ":" {
		return &ast.Vector{Values: values, Pos: pos(open)}, nil
	}

	switch len(values) {
	case 2:
		return &ast.Range{Start: values[0], End: values[1], Pos: pos(open)}, nil
	case 3:
		return &ast.Range{Start: values[0], Increment: values[1], End: values[2], Pos: pos(open)}, nil
	}
	return nil, newError(ErrMalformedRange, "Range not well formatted",
		open.StartLine, open.StartColumn, closing.EndLine, closing.EndColumn)
}
