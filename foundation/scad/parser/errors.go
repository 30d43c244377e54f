// File: errors.go
// Title: Positioned Parse Errors
// Description: ParseError carries a display message and the start/end span
//              of the offending source text, which is what editors need to
//              underline it. Every lexer and parser failure is a ParseError.
// Author: frikeldon
// Version: v0.1.0
// Created: 2026-10-19
// Modified: 2026-10-19
//
// Change History:
// - 2026-10-19 v0.1.0: Initial implementation

package parser

import (
	"encoding/json"
	"fmt"

	mdwerror "github.com/frikeldon/openscad/foundation/core/error"
)

// ErrorKind classifies structural errors
type ErrorKind int

const (
	ErrUnexpectedCharacter ErrorKind = iota
	ErrCharacterMismatch
	ErrUnclosedString
	ErrUnclosedComment
	ErrUnclosedPath
	ErrInvalidEscape
	ErrInvalidHexDigit
	ErrMalformedNumber
	ErrUnexpectedToken
	ErrMalformedRange
)

// String returns the kind name used in logs
func (k ErrorKind) String() string {
	switch k {
	case ErrUnexpectedCharacter:
		return "UnexpectedCharacter"
	case ErrCharacterMismatch:
		return "CharacterMismatch"
	case ErrUnclosedString:
		return "UnclosedString"
	case ErrUnclosedComment:
		return "UnclosedComment"
	case ErrUnclosedPath:
		return "UnclosedPath"
	case ErrInvalidEscape:
		return "InvalidEscape"
	case ErrInvalidHexDigit:
		return "InvalidHexDigit"
	case ErrMalformedNumber:
		return "MalformedNumber"
	case ErrUnexpectedToken:
		return "UnexpectedToken"
	case ErrMalformedRange:
		return "MalformedRange"
	default:
		return "Unknown"
	}
}

// ParseError represents a parsing error with a source span
type ParseError struct {
	Kind           ErrorKind
	DisplayMessage string
	StartLine      int
	StartColumn    int
	EndLine        int
	EndColumn      int
}

// newError builds a ParseError. Without an explicit end the span covers the
// single character at the start position.
func newError(kind ErrorKind, message string, startLine, startColumn int, end ...int) *ParseError {
	e := &ParseError{
		Kind:           kind,
		DisplayMessage: message,
		StartLine:      startLine,
		StartColumn:    startColumn,
		EndLine:        startLine,
		EndColumn:      startColumn + 1,
	}
	if len(end) == 2 {
		e.EndLine, e.EndColumn = end[0], end[1]
	}
	return e
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%s. At line %d column %d.", e.DisplayMessage, e.StartLine, e.StartColumn)
}

// Code returns the error code shared by all structural errors
func (e *ParseError) Code() mdwerror.Code {
	return mdwerror.CodeSyntax
}

// Span returns the span as detail fields for structured errors and logs
func (e *ParseError) Span() map[string]interface{} {
	return map[string]interface{}{
		"kind":        e.Kind.String(),
		"startLine":   e.StartLine,
		"startColumn": e.StartColumn,
		"endLine":     e.EndLine,
		"endColumn":   e.EndColumn,
	}
}

// MarshalJSON renders the error in the shape editor collaborators consume
func (e *ParseError) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		DisplayMessage string `json:"displayMessage"`
		StartLine      int    `json:"startLine"`
		StartColumn    int    `json:"startColumn"`
		EndLine        int    `json:"endLine"`
		EndColumn      int    `json:"endColumn"`
	}{e.DisplayMessage, e.StartLine, e.StartColumn, e.EndLine, e.EndColumn})
}
