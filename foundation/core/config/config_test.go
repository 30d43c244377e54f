// File: config_test.go
// Title: Configuration Loading Tests
// Description: Tests for TOML/YAML detection, dotted keys, defaults and
//              environment overrides.
// Author: frikeldon
// Version: v0.1.0
// Created: 2026-10-19
// Modified: 2026-10-19
//
// Change History:
// - 2026-10-19 v0.1.0: Initial tests

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	mdwerror "github.com/frikeldon/openscad/foundation/core/error"
)

const tomlDoc = `
[engine]
max_steps = 5000
trace = true

[watch]
debounce = "250ms"
`

const yamlDoc = `
engine:
  max_steps: 7000
logging:
  level: debug
`

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadDetectsFormat(t *testing.T) {
	tests := []struct {
		name     string
		file     string
		content  string
		format   Format
		maxSteps int
	}{
		{"toml", "openscad.toml", tomlDoc, FormatTOML, 5000},
		{"yaml", "openscad.yaml", yamlDoc, FormatYAML, 7000},
		{"yml", "openscad.yml", yamlDoc, FormatYAML, 7000},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := Load(writeFile(t, tt.file, tt.content))
			if err != nil {
				t.Fatalf("Load: %v", err)
			}
			if cfg.Format() != tt.format {
				t.Errorf("Format() = %v, want %v", cfg.Format(), tt.format)
			}
			if got := cfg.GetInt("engine.max_steps"); got != tt.maxSteps {
				t.Errorf("engine.max_steps = %d, want %d", got, tt.maxSteps)
			}
		})
	}
}

func TestGettersAndDefaults(t *testing.T) {
	cfg, err := LoadFromString(tomlDoc, FormatTOML)
	if err != nil {
		t.Fatal(err)
	}

	if !cfg.GetBool("engine.trace") {
		t.Error("engine.trace should be true")
	}
	if d := cfg.GetDuration("watch.debounce"); d != 250*time.Millisecond {
		t.Errorf("watch.debounce = %v", d)
	}
	if got := cfg.GetString("logging.level", "info"); got != "info" {
		t.Errorf("default not applied: %q", got)
	}
	if cfg.Has("missing.key") {
		t.Error("Has(missing.key) should be false")
	}

	cfg.Set("preview.addr", ":9000")
	if got := cfg.GetString("preview.addr"); got != ":9000" {
		t.Errorf("Set/GetString = %q", got)
	}
}

func TestEnvOverride(t *testing.T) {
	t.Setenv("OPENSCAD_ENGINE_MAX_STEPS", "42")

	cfg, err := LoadFromString(tomlDoc, FormatTOML)
	if err != nil {
		t.Fatal(err)
	}
	if got := cfg.WithEnvPrefix("openscad").GetInt("engine.max_steps"); got != 42 {
		t.Errorf("env override = %d, want 42", got)
	}
}

func TestLoadErrors(t *testing.T) {
	if _, err := Load(""); !mdwerror.HasCode(err, mdwerror.CodeMissingConfig) {
		t.Errorf("empty path: %v", err)
	}
	if _, err := Load(filepath.Join(t.TempDir(), "nope.toml")); !mdwerror.HasCode(err, mdwerror.CodeNotFound) {
		t.Errorf("missing file: %v", err)
	}
	bad := writeFile(t, "bad.toml", "[engine\nmax_steps = ")
	if _, err := Load(bad); !mdwerror.HasCode(err, mdwerror.CodeInvalidConfig) {
		t.Errorf("bad toml: %v", err)
	}
}
