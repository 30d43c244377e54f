// ============================================================================
// openscad - OpenSCAD language toolkit
// ============================================================================
//
// Package:     version
// Description: Central version management for the toolkit components
// Author:      frikeldon
// Created:     2026-10-19
// License:     MIT
// ============================================================================

package version

// Version constants for the toolkit components
const (
	// Toolkit version
	Toolkit = "0.1.0"

	// Component versions
	Language = "0.1.0"
	Preview  = "0.1.0"
	Store    = "0.1.0"
)

// Set by the linker: -ldflags "-X .../version.Commit=abc123"
var (
	Commit    = "dev"
	BuildDate = "unknown"
)

// ComponentVersion returns the version for a given component name
func ComponentVersion(name string) string {
	switch name {
	case "language":
		return Language
	case "preview":
		return Preview
	case "store":
		return Store
	default:
		return Toolkit
	}
}
