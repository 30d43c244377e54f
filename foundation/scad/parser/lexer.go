// File: lexer.go
// Title: Lexical Analyzer
// Description: Converts source text into positioned tokens, one token per
//              call. The previous token is passed in so that <path> tokens
//              are only recognized right after include/use.
// Author: frikeldon
// Version: v0.1.0
// Created: 2026-10-19
// Modified: 2026-10-19
//
// Change History:
// - 2026-10-19 v0.1.0: Initial lexer implementation

package parser

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"
)

var (
	twoCharOperators = map[string]bool{"||": true, "&&": true, "<=": true, ">=": true, "==": true, "!=": true}
	operatorChars    = "<>+-*/%!?#"
	punctuationChars = "()[]{};:,."

	simpleEscapes = map[rune]rune{'"': '"', '\\': '\\', 't': '\t', 'n': '\n', 'r': '\r'}
	hexEscapes    = map[rune]int{'x': 2, 'u': 4, 'U': 6}
)

// Lexer produces tokens from a character cursor
type Lexer struct {
	chars *Cursor
}

// NewLexer creates a lexer over source
func NewLexer(source string) *Lexer {
	return &Lexer{chars: NewCursor(source)}
}

// Next reads the next token. previous is the last token returned (the zero
// Token at the start of input).
func (l *Lexer) Next(previous Token) (Token, error) {
	c := l.chars
	for unicode.IsSpace(c.Current()) {
		c.mustAdvance()
	}

	line, column := c.Line(), c.Column()
	if c.EOF() {
		return Token{Kind: TokenEOF, Value: "EOF", StartLine: line, StartColumn: column, EndLine: line, EndColumn: column}, nil
	}

	current, next := c.Current(), c.Next()

	if previous.Kind == TokenKeyword && (previous.Value == "include" || previous.Value == "use") && current == '<' {
		return l.readPath()
	}

	if current == '/' {
		switch next {
		case '/':
			return l.readInlineComment()
		case '*':
			return l.readBlockComment()
		}
	}

	if next != EOF && twoCharOperators[string([]rune{current, next})] {
		value := string([]rune{c.mustAdvance(), c.mustAdvance()})
		return l.token(TokenOperator, value, line, column), nil
	}

	if strings.ContainsRune(operatorChars, current) {
		return l.token(TokenOperator, string(c.mustAdvance()), line, column), nil
	}

	if strings.ContainsRune(punctuationChars, current) {
		return l.token(TokenPunctuation, string(c.mustAdvance()), line, column), nil
	}

	if current == '=' {
		return l.token(TokenAssignment, string(c.mustAdvance()), line, column), nil
	}

	if isDigit(current) {
		return l.readNumber()
	}

	if isIdentifierStart(current) {
		return l.readIdentifier(), nil
	}

	if current == '"' {
		return l.readString()
	}

	return Token{}, newError(ErrUnexpectedCharacter, fmt.Sprintf("Unexpected character '%c'", current), line, column)
}

// token closes a token that started at line/column and ends at the cursor
func (l *Lexer) token(kind TokenKind, value string, line, column int) Token {
	return Token{
		Kind:        kind,
		Value:       value,
		StartLine:   line,
		StartColumn: column,
		EndLine:     l.chars.Line(),
		EndColumn:   l.chars.Column(),
	}
}

func (l *Lexer) readInlineComment() (Token, error) {
	c := l.chars
	line, column := c.Line(), c.Column()
	c.mustAdvance()
	c.mustAdvance()

	var b strings.Builder
	for !c.EOF() {
		if c.Current() == '\n' {
			c.mustAdvance()
			break
		}
		b.WriteRune(c.mustAdvance())
	}
	return l.token(TokenComment, b.String(), line, column), nil
}

func (l *Lexer) readBlockComment() (Token, error) {
	c := l.chars
	line, column := c.Line(), c.Column()
	c.mustAdvance()
	c.mustAdvance()

	var b strings.Builder
	for c.Current() != '*' || c.Next() != '/' {
		if c.EOF() {
			return Token{}, newError(ErrUnclosedComment, "Unclosed comment", line, column, c.Line(), c.Column())
		}
		b.WriteRune(c.mustAdvance())
	}
	c.mustAdvance()
	c.mustAdvance()
	return l.token(TokenComment, b.String(), line, column), nil
}

// readNumber accepts digits with at most one '.' and one exponent, the
// exponent optionally signed. A literal ending in e, E, + or - is rejected.
func (l *Lexer) readNumber() (Token, error) {
	c := l.chars
	line, column := c.Line(), c.Column()

	var b strings.Builder
	hasDot, hasExp, expectSign := false, false, false

	for !c.EOF() {
		r := c.Current()

		if r == '.' {
			if hasDot {
				break
			}
			hasDot = true
			b.WriteRune(c.mustAdvance())
			continue
		}

		if r == 'e' || r == 'E' {
			if hasExp {
				break
			}
			hasExp, expectSign = true, true
			b.WriteRune(c.mustAdvance())
			continue
		}

		if expectSign {
			expectSign = false
			if r == '+' || r == '-' {
				b.WriteRune(c.mustAdvance())
				continue
			}
		}

		if isDigit(r) {
			b.WriteRune(c.mustAdvance())
			continue
		}
		break
	}

	text := b.String()
	if strings.ContainsAny(text[len(text)-1:], "eE+-") {
		return Token{}, newError(ErrMalformedNumber, "Wrong number format", line, column, c.Line(), c.Column())
	}

	value, err := strconv.ParseFloat(strings.TrimSuffix(text, "."), 64)
	if err != nil {
		return Token{}, newError(ErrMalformedNumber, "Wrong number format", line, column, c.Line(), c.Column())
	}

	tok := l.token(TokenNumber, text, line, column)
	tok.Number = value
	return tok, nil
}

func (l *Lexer) readIdentifier() Token {
	c := l.chars
	line, column := c.Line(), c.Column()

	var b strings.Builder
	b.WriteRune(c.mustAdvance())
	for isWordChar(c.Current()) {
		b.WriteRune(c.mustAdvance())
	}

	value := b.String()
	kind := TokenIdentifier
	if IsReserved(value) {
		kind = TokenKeyword
	}
	return l.token(kind, value, line, column)
}

func (l *Lexer) readString() (Token, error) {
	c := l.chars
	line, column := c.Line(), c.Column()
	c.mustAdvance()

	var b strings.Builder
	for c.Current() != '"' {
		if c.EOF() {
			return Token{}, newError(ErrUnclosedString, "Unclosed string", line, column, c.Line(), c.Column())
		}

		current := c.Current()
		if current == '\n' {
			return Token{}, newError(ErrUnclosedString, "Invalid end of string", line, column, c.Line(), c.Column())
		}

		if current != '\\' {
			b.WriteRune(c.mustAdvance())
			continue
		}

		escLine, escColumn := c.Line(), c.Column()
		c.mustAdvance()
		if c.EOF() {
			return Token{}, newError(ErrUnclosedString, "Unclosed string", line, column, c.Line(), c.Column())
		}
		escape := c.mustAdvance()

		if r, ok := simpleEscapes[escape]; ok {
			b.WriteRune(r)
			continue
		}

		if digits, ok := hexEscapes[escape]; ok {
			code := 0
			for i := 0; i < digits; i++ {
				d, ok := hexValue(c.Current())
				if !ok {
					return Token{}, newError(ErrInvalidHexDigit, "Invalid hexadecimal digit", escLine, escColumn, c.Line(), c.Column())
				}
				c.mustAdvance()
				code = code*16 + d
			}
			b.WriteRune(rune(code))
			continue
		}

		return Token{}, newError(ErrInvalidEscape, "Invalid string escape", escLine, escColumn, c.Line(), c.Column())
	}
	c.mustAdvance()

	return l.token(TokenString, b.String(), line, column), nil
}

func (l *Lexer) readPath() (Token, error) {
	c := l.chars
	line, column := c.Line(), c.Column()
	c.mustAdvance()

	var b strings.Builder
	for c.Current() != '>' {
		if c.EOF() {
			return Token{}, newError(ErrUnclosedPath, "Unclosed path", line, column, c.Line(), c.Column())
		}
		b.WriteRune(c.mustAdvance())
	}
	c.mustAdvance()

	return l.token(TokenPath, b.String(), line, column), nil
}

func isDigit(r rune) bool {
	return r >= '0' && r <= '9'
}

func isIdentifierStart(r rune) bool {
	return r == '$' || r == '_' || (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z')
}

func isWordChar(r rune) bool {
	return r == '_' || isDigit(r) || (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z')
}

func hexValue(r rune) (int, bool) {
	switch {
	case r >= '0' && r <= '9':
		return int(r - '0'), true
	case r >= 'a' && r <= 'f':
		return int(r-'a') + 10, true
	case r >= 'A' && r <= 'F':
		return int(r-'A') + 10, true
	default:
		return 0, false
	}
}

// Tokenize returns every token of source, comments included, ending with EOF
func Tokenize(source string) ([]Token, error) {
	lexer := NewLexer(source)
	var tokens []Token
	var previous Token
	for {
		tok, err := lexer.Next(previous)
		if err != nil {
			return tokens, err
		}
		tokens = append(tokens, tok)
		if tok.Kind == TokenEOF {
			return tokens, nil
		}
		if tok.Kind != TokenComment {
			previous = tok
		}
	}
}
