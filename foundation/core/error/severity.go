// File: severity.go
// Title: Error Severity Levels
// Description: Severity levels attached to errors and the default severity
//              derived from each error code.
// Author: frikeldon
// Version: v0.1.0
// Created: 2026-10-19
// Modified: 2026-10-19
//
// Change History:
// - 2026-10-19 v0.1.0: Initial implementation

package error

// Severity represents the severity level of an error
type Severity int

const (
	// SeverityLow is a problem in user input, reported and then ignored
	SeverityLow Severity = iota

	// SeverityMedium affects a single operation
	SeverityMedium

	// SeverityHigh affects a component such as the history store
	SeverityHigh

	// SeverityCritical is an implementation defect
	SeverityCritical
)

// String returns the string representation of the severity level
func (s Severity) String() string {
	switch s {
	case SeverityLow:
		return "low"
	case SeverityMedium:
		return "medium"
	case SeverityHigh:
		return "high"
	case SeverityCritical:
		return "critical"
	default:
		return "unknown"
	}
}

// ShouldAlert returns true for severities that must never be swallowed
func (s Severity) ShouldAlert() bool {
	return s >= SeverityHigh
}

// GetSeverityFromCode returns the default severity for a code
func GetSeverityFromCode(code Code) Severity {
	switch code {
	case CodeSyntax, CodeInvalidInput, CodeInputTooLarge, CodeStepBudget, CodeCancelled, CodeNotFound:
		return SeverityLow
	case CodeDatabaseError, CodeConfigError, CodeInvalidConfig, CodeMissingConfig:
		return SeverityHigh
	case CodeDefect, CodeInternal:
		return SeverityCritical
	default:
		return SeverityMedium
	}
}
