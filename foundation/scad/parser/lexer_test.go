// File: lexer_test.go
// Title: Lexer and Cursor Unit Tests
// Description: Tests for tokenization, escapes, number formats, comments,
//              path tokens and cursor line bookkeeping.
// Author: frikeldon
// Version: v0.1.0
// Created: 2026-10-19
// Modified: 2026-10-19
//
// Change History:
// - 2026-10-19 v0.1.0: Initial lexer test suite

package parser

import (
	"errors"
	"testing"
)

func TestTokenize_Kinds(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		kinds  []TokenKind
		values []string
	}{
		{
			name:   "module call",
			input:  "cube(1);",
			kinds:  []TokenKind{TokenIdentifier, TokenPunctuation, TokenNumber, TokenPunctuation, TokenPunctuation, TokenEOF},
			values: []string{"cube", "(", "1", ")", ";", "EOF"},
		},
		{
			name:   "two character operators",
			input:  "a<=b==c!=d",
			kinds:  []TokenKind{TokenIdentifier, TokenOperator, TokenIdentifier, TokenOperator, TokenIdentifier, TokenOperator, TokenIdentifier, TokenEOF},
			values: []string{"a", "<=", "b", "==", "c", "!=", "d", "EOF"},
		},
		{
			name:   "assignment is not an operator",
			input:  "x = y",
			kinds:  []TokenKind{TokenIdentifier, TokenAssignment, TokenIdentifier, TokenEOF},
			values: []string{"x", "=", "y", "EOF"},
		},
		{
			name:   "keywords",
			input:  "module function if else true undef for",
			kinds:  []TokenKind{TokenKeyword, TokenKeyword, TokenKeyword, TokenKeyword, TokenKeyword, TokenKeyword, TokenKeyword, TokenEOF},
			values: []string{"module", "function", "if", "else", "true", "undef", "for", "EOF"},
		},
		{
			name:   "path after include",
			input:  "include <lib/shapes.scad>",
			kinds:  []TokenKind{TokenKeyword, TokenPath, TokenEOF},
			values: []string{"include", "lib/shapes.scad", "EOF"},
		},
		{
			name:   "less than without include",
			input:  "a <b",
			kinds:  []TokenKind{TokenIdentifier, TokenOperator, TokenIdentifier, TokenEOF},
			values: []string{"a", "<", "b", "EOF"},
		},
		{
			name:   "comments are kept",
			input:  "// hi\ncube /* box */",
			kinds:  []TokenKind{TokenComment, TokenIdentifier, TokenComment, TokenEOF},
			values: []string{" hi", "cube", " box ", "EOF"},
		},
		{
			name:   "identifiers",
			input:  "$fn _x a1",
			kinds:  []TokenKind{TokenIdentifier, TokenIdentifier, TokenIdentifier, TokenEOF},
			values: []string{"$fn", "_x", "a1", "EOF"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tokens, err := Tokenize(tt.input)
			if err != nil {
				t.Fatalf("Tokenize(%q) error = %v", tt.input, err)
			}
			if len(tokens) != len(tt.kinds) {
				t.Fatalf("Tokenize(%q) returned %d tokens, want %d: %v", tt.input, len(tokens), len(tt.kinds), tokens)
			}
			for i, tok := range tokens {
				if tok.Kind != tt.kinds[i] || tok.Value != tt.values[i] {
					t.Errorf("token %d = %s, want %s(%q)", i, tok, tt.kinds[i], tt.values[i])
				}
			}
		})
	}
}

func TestTokenize_Numbers(t *testing.T) {
	tests := []struct {
		input   string
		want    float64
		wantErr bool
	}{
		{"42", 42, false},
		{"3.25", 3.25, false},
		{"2.", 2, false},
		{"1.5e3", 1500, false},
		{"1E-2", 0.01, false},
		{"4e+1", 40, false},
		{"1e", 0, true},
		{"1e+", 0, true},
		{"7E-", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			tokens, err := Tokenize(tt.input)
			if tt.wantErr {
				var pe *ParseError
				if !errors.As(err, &pe) || pe.Kind != ErrMalformedNumber {
					t.Fatalf("Tokenize(%q) error = %v, want MalformedNumber", tt.input, err)
				}
				if pe.StartColumn != 1 {
					t.Errorf("StartColumn = %d, want 1", pe.StartColumn)
				}
				return
			}
			if err != nil {
				t.Fatalf("Tokenize(%q) error = %v", tt.input, err)
			}
			if tokens[0].Kind != TokenNumber || tokens[0].Number != tt.want {
				t.Errorf("Tokenize(%q) = %s (%v), want %v", tt.input, tokens[0], tokens[0].Number, tt.want)
			}
		})
	}
}

func TestTokenize_Strings(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		want   string
		kind   ErrorKind
		column int
		fails  bool
	}{
		{name: "plain", input: `"abc"`, want: "abc"},
		{name: "simple escapes", input: `"a\tb\n\"q\"\\"`, want: "a\tb\n\"q\"\\"},
		{name: "hex escape", input: `"\x41"`, want: "A"},
		{name: "unicode escape", input: `"\u00e9"`, want: "é"},
		{name: "long unicode escape", input: `"\U01F600"`, want: "\U0001F600"},
		{name: "invalid escape", input: `"ab\q"`, fails: true, kind: ErrInvalidEscape, column: 4},
		{name: "invalid hex digit", input: `"\xZ1"`, fails: true, kind: ErrInvalidHexDigit, column: 2},
		{name: "unclosed", input: `"abc`, fails: true, kind: ErrUnclosedString, column: 1},
		{name: "raw newline", input: "\"ab\ncd\"", fails: true, kind: ErrUnclosedString, column: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tokens, err := Tokenize(tt.input)
			if tt.fails {
				var pe *ParseError
				if !errors.As(err, &pe) {
					t.Fatalf("Tokenize(%q) error = %v, want *ParseError", tt.input, err)
				}
				if pe.Kind != tt.kind {
					t.Errorf("Kind = %s, want %s", pe.Kind, tt.kind)
				}
				if pe.StartLine != 1 || pe.StartColumn != tt.column {
					t.Errorf("start = %d:%d, want 1:%d", pe.StartLine, pe.StartColumn, tt.column)
				}
				return
			}
			if err != nil {
				t.Fatalf("Tokenize(%q) error = %v", tt.input, err)
			}
			if tokens[0].Kind != TokenString || tokens[0].Value != tt.want {
				t.Errorf("Tokenize(%q) = %s, want STRING(%q)", tt.input, tokens[0], tt.want)
			}
		})
	}
}

func TestTokenize_Errors(t *testing.T) {
	tests := []struct {
		name  string
		input string
		kind  ErrorKind
	}{
		{"unexpected character", "a @ b", ErrUnexpectedCharacter},
		{"unclosed comment", "/* never ends", ErrUnclosedComment},
		{"unclosed path", "use <lib.scad", ErrUnclosedPath},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Tokenize(tt.input)
			var pe *ParseError
			if !errors.As(err, &pe) || pe.Kind != tt.kind {
				t.Errorf("Tokenize(%q) error = %v, want %s", tt.input, err, tt.kind)
			}
		})
	}
}

func TestTokenize_Spans(t *testing.T) {
	tokens, err := Tokenize("cube(10);\r\n  x")
	if err != nil {
		t.Fatalf("Tokenize() error = %v", err)
	}

	want := []struct{ sl, sc, el, ec int }{
		{1, 1, 1, 5},  // cube
		{1, 5, 1, 6},  // (
		{1, 6, 1, 8},  // 10
		{1, 8, 1, 9},  // )
		{1, 9, 1, 10}, // ;
		{2, 3, 2, 4},  // x
		{2, 4, 2, 4},  // EOF
	}
	if len(tokens) != len(want) {
		t.Fatalf("got %d tokens, want %d", len(tokens), len(want))
	}
	for i, w := range want {
		tok := tokens[i]
		if tok.StartLine != w.sl || tok.StartColumn != w.sc || tok.EndLine != w.el || tok.EndColumn != w.ec {
			t.Errorf("token %d %s span = %d:%d-%d:%d, want %d:%d-%d:%d", i, tok,
				tok.StartLine, tok.StartColumn, tok.EndLine, tok.EndColumn, w.sl, w.sc, w.el, w.ec)
		}
	}
}

func TestTokenStream_SkipsComments(t *testing.T) {
	ts, err := NewTokenStream("/* a */ cube // b\n;")
	if err != nil {
		t.Fatalf("NewTokenStream() error = %v", err)
	}
	if !ts.Check(TokenIdentifier, "cube") {
		t.Fatalf("Current() = %s, want IDENTIFIER(cube)", ts.Current())
	}
	if _, err := ts.Advance(TokenIdentifier); err != nil {
		t.Fatalf("Advance() error = %v", err)
	}
	if !ts.Check(TokenPunctuation, ";") {
		t.Errorf("Current() = %s, want PUNCTUATION(;)", ts.Current())
	}
	if _, err := ts.Advance(TokenPunctuation, "(", "{"); err == nil {
		t.Errorf("Advance() with wrong values should fail")
	}
	if ts.Consumed() != 1 {
		t.Errorf("Consumed() = %d, want 1", ts.Consumed())
	}
}

func TestCursor(t *testing.T) {
	t.Run("line endings", func(t *testing.T) {
		for _, input := range []string{"a\r\nb", "a\rb", "a\nb"} {
			c := NewCursor(input)
			c.mustAdvance()
			if c.Current() != '\n' {
				t.Errorf("%q: Current() = %q, want newline", input, c.Current())
			}
			if r := c.mustAdvance(); r != '\n' {
				t.Errorf("%q: Advance() = %q, want newline", input, r)
			}
			if c.Line() != 2 || c.Column() != 1 {
				t.Errorf("%q: position = %d:%d, want 2:1", input, c.Line(), c.Column())
			}
			if c.Current() != 'b' {
				t.Errorf("%q: Current() = %q, want 'b'", input, c.Current())
			}
		}
	})

	t.Run("lookahead folds line endings", func(t *testing.T) {
		tests := []struct {
			input string
			want  rune
		}{
			{"a\r\nb", '\n'},
			{"a\rb", '\n'},
			{"\r\nb", 'b'},
			{"\r\n\r\nb", '\n'},
			{"\r\n", EOF},
		}
		for _, tt := range tests {
			if got := NewCursor(tt.input).Next(); got != tt.want {
				t.Errorf("%q: Next() = %q, want %q", tt.input, got, tt.want)
			}
		}
	})

	t.Run("mismatch", func(t *testing.T) {
		c := NewCursor("ab")
		if _, err := c.Advance('a'); err != nil {
			t.Fatalf("Advance('a') error = %v", err)
		}
		_, err := c.Advance('x')
		var pe *ParseError
		if !errors.As(err, &pe) || pe.Kind != ErrCharacterMismatch {
			t.Fatalf("Advance('x') error = %v, want CharacterMismatch", err)
		}
		if pe.StartColumn != 2 {
			t.Errorf("StartColumn = %d, want 2", pe.StartColumn)
		}
		if c.Column() != 2 {
			t.Errorf("failed Advance moved the cursor to column %d", c.Column())
		}
	})

	t.Run("end of input", func(t *testing.T) {
		c := NewCursor("a")
		if c.Next() != EOF {
			t.Errorf("Next() = %q, want EOF", c.Next())
		}
		c.mustAdvance()
		if !c.EOF() || c.Current() != EOF {
			t.Errorf("cursor should be at EOF")
		}
		if r, err := c.Advance(); r != EOF || err != nil {
			t.Errorf("Advance() at EOF = %q, %v", r, err)
		}
	})
}
