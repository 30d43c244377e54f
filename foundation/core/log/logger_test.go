// File: logger_test.go
// Title: Logger Tests
// Description: Tests for level filtering, field inheritance, formatters and
//              severity based error logging.
// Author: frikeldon
// Version: v0.1.0
// Created: 2026-10-19
// Modified: 2026-10-19
//
// Change History:
// - 2026-10-19 v0.1.0: Initial tests

package log

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	mdwerror "github.com/frikeldon/openscad/foundation/core/error"
)

func newBufferLogger(level Level, format Format) (*Logger, *bytes.Buffer) {
	buf := &bytes.Buffer{}
	return NewWithConfig(Config{Level: level, Format: format, Output: buf}), buf
}

func TestLevelFiltering(t *testing.T) {
	tests := []struct {
		name    string
		min     Level
		log     func(l *Logger)
		written bool
	}{
		{"debug below info", LevelInfo, func(l *Logger) { l.Debug("x") }, false},
		{"info at info", LevelInfo, func(l *Logger) { l.Info("x") }, true},
		{"warn above info", LevelInfo, func(l *Logger) { l.Warn("x") }, true},
		{"audit always", LevelFatal, func(l *Logger) { l.Audit("x") }, true},
		{"trace at trace", LevelTrace, func(l *Logger) { l.Trace("x") }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger, buf := newBufferLogger(tt.min, FormatJSON)
			tt.log(logger)
			if got := buf.Len() > 0; got != tt.written {
				t.Errorf("written = %v, want %v", got, tt.written)
			}
		})
	}
}

func TestWithFieldDoesNotLeakIntoParent(t *testing.T) {
	parent, buf := newBufferLogger(LevelInfo, FormatJSON)
	child := parent.WithField("component", "scad-parser")

	child.Info("child")
	parent.Info("parent")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected 2 lines, got %d", len(lines))
	}

	var first, second map[string]interface{}
	if err := json.Unmarshal([]byte(lines[0]), &first); err != nil {
		t.Fatal(err)
	}
	if err := json.Unmarshal([]byte(lines[1]), &second); err != nil {
		t.Fatal(err)
	}
	if first["component"] != "scad-parser" {
		t.Errorf("child entry missing component: %v", first)
	}
	if _, ok := second["component"]; ok {
		t.Errorf("parent entry should not carry component: %v", second)
	}
}

func TestTextFormatterSortsFields(t *testing.T) {
	logger, buf := newBufferLogger(LevelInfo, FormatText)
	logger = logger.WithRunID("r1")
	logger.Info("parsed", Fields{"tokens": 4, "bytes": 12})

	out := buf.String()
	if !strings.Contains(out, "[INF]") {
		t.Errorf("missing level: %s", out)
	}
	if !strings.Contains(out, "(run=r1)") {
		t.Errorf("missing run id: %s", out)
	}
	if !strings.Contains(out, "[bytes=12 tokens=4]") {
		t.Errorf("fields not sorted: %s", out)
	}
}

func TestLogErrorUsesSeverity(t *testing.T) {
	tests := []struct {
		name  string
		err   error
		level string
	}{
		{"syntax is info", mdwerror.New("bad").WithCode(mdwerror.CodeSyntax), "info"},
		{"defect is error", mdwerror.New("bad").WithCode(mdwerror.CodeDefect), "error"},
		{"plain is warn", errors.New("plain"), "warn"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger, buf := newBufferLogger(LevelTrace, FormatJSON)
			logger.LogError(tt.err)

			var entry map[string]interface{}
			if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
				t.Fatal(err)
			}
			if entry["level"] != tt.level {
				t.Errorf("level = %v, want %v", entry["level"], tt.level)
			}
		})
	}
}

func TestParseLevelAndFormat(t *testing.T) {
	if l, err := ParseLevel("WRN"); err != nil || l != LevelWarn {
		t.Errorf("ParseLevel(WRN) = %v, %v", l, err)
	}
	if _, err := ParseLevel("loud"); err == nil {
		t.Error("expected error for unknown level")
	}
	if f, err := ParseFormat("text"); err != nil || f != FormatText {
		t.Errorf("ParseFormat(text) = %v, %v", f, err)
	}
}
