// File: stringx_test.go
// Title: String Utilities Tests
// Description: Table-driven tests for the string helpers.
// Author: frikeldon
// Version: v0.1.0
// Created: 2026-10-19
// Modified: 2026-10-19
//
// Change History:
// - 2026-10-19 v0.1.0: Initial tests

package stringx

import "testing"

func TestIsBlank(t *testing.T) {
	tests := []struct {
		input    string
		expected bool
	}{
		{"", true},
		{"   ", true},
		{"\t\n", true},
		{" a ", false},
	}
	for _, tt := range tests {
		if got := IsBlank(tt.input); got != tt.expected {
			t.Errorf("IsBlank(%q) = %v, want %v", tt.input, got, tt.expected)
		}
	}
}

func TestTruncate(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		max      int
		expected string
	}{
		{"fits", "cube", 10, "cube"},
		{"cut", "translate", 6, "tra..."},
		{"ellipsis too long", "translate", 2, "tr"},
		{"zero", "cube", 0, ""},
		{"unicode", "ñandú-ñandú", 5, "ña..."},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Truncate(tt.input, tt.max, "..."); got != tt.expected {
				t.Errorf("Truncate() = %q, want %q", got, tt.expected)
			}
		})
	}
}

func TestLine(t *testing.T) {
	src := "a = 1;\r\nb = 2;\rcube(b);"
	tests := []struct {
		n        int
		expected string
	}{
		{1, "a = 1;"},
		{2, "b = 2;"},
		{3, "cube(b);"},
		{4, ""},
		{0, ""},
	}
	for _, tt := range tests {
		if got := Line(src, tt.n); got != tt.expected {
			t.Errorf("Line(%d) = %q, want %q", tt.n, got, tt.expected)
		}
	}
}

func TestPadRightAndFirstNonBlank(t *testing.T) {
	if got := PadRight("ab", 4, '.'); got != "ab.." {
		t.Errorf("PadRight = %q", got)
	}
	if got := PadRight("abcdef", 4, '.'); got != "abcdef" {
		t.Errorf("PadRight long = %q", got)
	}
	if got := FirstNonBlank("", "  ", "json"); got != "json" {
		t.Errorf("FirstNonBlank = %q", got)
	}
}
