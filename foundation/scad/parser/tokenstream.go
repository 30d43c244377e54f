// File: tokenstream.go
// Title: Token Stream
// Description: Wraps the lexer with one token of lookahead. Check is a
//              non-consuming predicate, Advance consumes while asserting
//              kind and value. Comments never reach the parser.
// Author: frikeldon
// Version: v0.1.0
// Created: 2026-10-19
// Modified: 2026-10-19
//
// Change History:
// - 2026-10-19 v0.1.0: Initial implementation

package parser

import (
	"fmt"
	"strings"
)

// TokenStream provides lookahead over lexer output
type TokenStream struct {
	lexer    *Lexer
	previous Token
	current  Token
	count    int
}

// NewTokenStream creates a stream positioned on the first non-comment token
func NewTokenStream(source string) (*TokenStream, error) {
	ts := &TokenStream{lexer: NewLexer(source)}
	if err := ts.fill(); err != nil {
		return nil, err
	}
	return ts, nil
}

func (ts *TokenStream) fill() error {
	for {
		tok, err := ts.lexer.Next(ts.previous)
		if err != nil {
			return err
		}
		if tok.Kind != TokenComment {
			ts.current = tok
			return nil
		}
	}
}

// Current returns the lookahead token
func (ts *TokenStream) Current() Token {
	return ts.current
}

// Consumed returns the number of tokens advanced over
func (ts *TokenStream) Consumed() int {
	return ts.count
}

// Check reports whether the current token has the given kind and, when
// values are given, one of those values.
func (ts *TokenStream) Check(kind TokenKind, values ...string) bool {
	if ts.current.Kind != kind {
		return false
	}
	if len(values) == 0 {
		return true
	}
	for _, v := range values {
		if ts.current.Value == v {
			return true
		}
	}
	return false
}

// Advance consumes the current token after asserting its kind and value
// and returns it.
func (ts *TokenStream) Advance(kind TokenKind, values ...string) (Token, error) {
	cur := ts.current

	if cur.Kind != kind {
		return cur, ts.unexpected(fmt.Sprintf("Expected a token with type '%s', but found '%s'", kind, cur.Kind))
	}
	if len(values) == 1 && cur.Value != values[0] {
		return cur, ts.unexpected(fmt.Sprintf("Expected a token with value '%s', but found '%s'", values[0], cur.Value))
	}
	if len(values) > 1 && !ts.Check(kind, values...) {
		return cur, ts.unexpected(fmt.Sprintf("Expected one of '%s', but found '%s'", strings.Join(values, "', '"), cur.Value))
	}

	ts.previous = cur
	ts.count++
	if err := ts.fill(); err != nil {
		return cur, err
	}
	return cur, nil
}

func (ts *TokenStream) unexpected(message string) *ParseError {
	c := ts.current
	return newError(ErrUnexpectedToken, message, c.StartLine, c.StartColumn, c.EndLine, c.EndColumn)
}
