// File: token.go
// Title: Token Definitions
// Description: Token kinds and the positioned token record emitted by the
//              lexer.
// Author: frikeldon
// Version: v0.1.0
// Created: 2026-10-19
// Modified: 2026-10-19
//
// Change History:
// - 2026-10-19 v0.1.0: Initial implementation

package parser

import "fmt"

// TokenKind represents the kind of a lexical token
type TokenKind int

const (
	TokenEOF TokenKind = iota
	TokenNumber
	TokenString
	TokenIdentifier
	TokenKeyword
	TokenOperator
	TokenPunctuation
	TokenAssignment
	TokenPath
	TokenComment
)

// String returns the kind name used in error messages
func (k TokenKind) String() string {
	switch k {
	case TokenEOF:
		return "EOF"
	case TokenNumber:
		return "NUMBER"
	case TokenString:
		return "STRING"
	case TokenIdentifier:
		return "IDENTIFIER"
	case TokenKeyword:
		return "KEYWORD"
	case TokenOperator:
		return "OPERATOR"
	case TokenPunctuation:
		return "PUNCTUATION"
	case TokenAssignment:
		return "ASSIGNMENT"
	case TokenPath:
		return "PATH"
	case TokenComment:
		return "COMMENT"
	default:
		return "UNKNOWN"
	}
}

// Token is a lexical token with its source span. Value holds the token text
// (for strings the unescaped content); Number holds the parsed value of
// NUMBER tokens.
type Token struct {
	Kind        TokenKind
	Value       string
	Number      float64
	StartLine   int
	StartColumn int
	EndLine     int
	EndColumn   int
}

// String returns KIND(value) @line:column
func (t Token) String() string {
	return fmt.Sprintf("%s(%q) @%d:%d", t.Kind, t.Value, t.StartLine, t.StartColumn)
}

var reservedWords = map[string]bool{
	"true": true, "false": true, "undef": true,
	"module": true, "function": true,
	"include": true, "use": true,
	"if": true, "else": true, "for": true,
}

// IsReserved reports whether word is a keyword
func IsReserved(word string) bool {
	return reservedWords[word]
}
