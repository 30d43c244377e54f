// File: codes.go
// Title: Error Codes
// Description: Defines the error codes used by the language core, the
//              configuration layer and the tools built around them.
// Author: frikeldon
// Version: v0.1.0
// Created: 2026-10-19
// Modified: 2026-10-19
//
// Change History:
// - 2026-10-19 v0.1.0: Initial implementation

package error

// Code represents a structured error code for categorizing errors
type Code string

const (
	// Generic codes
	CodeUnknown      Code = "UNKNOWN"
	CodeInternal     Code = "INTERNAL"
	CodeNotFound     Code = "NOT_FOUND"
	CodeInvalidInput Code = "INVALID_INPUT"
	CodeCancelled    Code = "CANCELLED"

	// Language
	CodeSyntax        Code = "SCAD_SYNTAX"
	CodeInputTooLarge Code = "SCAD_INPUT_TOO_LARGE"
	CodeStepBudget    Code = "SCAD_STEP_BUDGET"
	CodeDefect        Code = "SCAD_DEFECT"

	// Storage
	CodeDatabaseError Code = "DATABASE_ERROR"

	// Configuration
	CodeConfigError   Code = "CONFIG_ERROR"
	CodeInvalidConfig Code = "INVALID_CONFIG"
	CodeMissingConfig Code = "MISSING_CONFIG"
)

// String returns the string representation of the error code
func (c Code) String() string {
	return string(c)
}

// IsValid checks if the code is one of the known codes
func (c Code) IsValid() bool {
	switch c {
	case CodeUnknown, CodeInternal, CodeNotFound, CodeInvalidInput, CodeCancelled,
		CodeSyntax, CodeInputTooLarge, CodeStepBudget, CodeDefect,
		CodeDatabaseError,
		CodeConfigError, CodeInvalidConfig, CodeMissingConfig:
		return true
	default:
		return false
	}
}

// Category groups codes for reporting
func (c Code) Category() string {
	switch c {
	case CodeSyntax, CodeInputTooLarge, CodeStepBudget, CodeDefect:
		return "language"
	case CodeDatabaseError:
		return "storage"
	case CodeConfigError, CodeInvalidConfig, CodeMissingConfig:
		return "configuration"
	default:
		return "general"
	}
}

// IsUserFacing reports whether the code describes a problem in the user's
// source rather than in the toolchain itself.
func (c Code) IsUserFacing() bool {
	switch c {
	case CodeSyntax, CodeInputTooLarge, CodeStepBudget, CodeInvalidInput:
		return true
	default:
		return false
	}
}
