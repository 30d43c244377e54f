// File: cursor.go
// Title: Character Cursor
// Description: Walks source text one logical character at a time. CRLF and
//              bare CR are presented and consumed as a single '\n' and the
//              cursor keeps 1-based line/column bookkeeping for tokens.
// Author: frikeldon
// Version: v0.1.0
// Created: 2026-10-19
// Modified: 2026-10-19
//
// Change History:
// - 2026-10-19 v0.1.0: Initial implementation

package parser

import "fmt"

// EOF is returned by Current and Next past the end of input
const EOF rune = -1

// Cursor is a character cursor over source text
type Cursor struct {
	text   []rune
	pos    int
	line   int
	column int
}

// NewCursor creates a cursor positioned at line 1, column 1
func NewCursor(text string) *Cursor {
	return &Cursor{text: []rune(text), line: 1, column: 1}
}

// Current returns the character under the cursor without consuming it
func (c *Cursor) Current() rune {
	if c.pos >= len(c.text) {
		return EOF
	}
	if c.text[c.pos] == '\r' {
		return '\n'
	}
	return c.text[c.pos]
}

// Next returns the logical character after the current one, with the same
// line ending folding as Current
func (c *Cursor) Next() rune {
	next := c.pos + 1
	if c.pos < len(c.text) && c.text[c.pos] == '\r' && next < len(c.text) && c.text[next] == '\n' {
		next++
	}
	if next >= len(c.text) {
		return EOF
	}
	if c.text[next] == '\r' {
		return '\n'
	}
	return c.text[next]
}

// EOF reports whether the input is exhausted
func (c *Cursor) EOF() bool {
	return c.pos >= len(c.text)
}

// Line returns the current 1-based line
func (c *Cursor) Line() int { return c.line }

// Column returns the current 1-based column
func (c *Cursor) Column() int { return c.column }

// Advance consumes one logical character and returns it. When expected is
// given the consumed character must match it.
func (c *Cursor) Advance(expected ...rune) (rune, error) {
	line, column := c.line, c.column
	current := c.Current()

	if len(expected) > 0 && expected[0] != current {
		found := "EOF"
		if current != EOF {
			found = string(current)
		}
		return current, newError(ErrCharacterMismatch,
			fmt.Sprintf("Expected character '%c' and found '%s'", expected[0], found), line, column)
	}

	if current == EOF {
		return EOF, nil
	}

	if c.text[c.pos] == '\r' && c.pos+1 < len(c.text) && c.text[c.pos+1] == '\n' {
		c.pos++
	}
	c.pos++

	if current == '\n' {
		c.line++
		c.column = 1
	} else {
		c.column++
	}
	return current, nil
}

// mustAdvance consumes a character the caller has already checked
func (c *Cursor) mustAdvance() rune {
	r, _ := c.Advance()
	return r
}
