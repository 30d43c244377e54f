// File: scad.go
// Title: Language Engine
// Description: Entry point for embedding the language: parse, interpret and
//              clean a source text in one call. Also converts failures into
//              the positioned diagnostics editors and terminals display.
// Author: frikeldon
// Version: v0.1.0
// Created: 2026-10-19
// Modified: 2026-10-19
//
// Change History:
// - 2026-10-19 v0.1.0: Initial implementation

package scad

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"
	"unicode/utf8"

	mdwerror "github.com/frikeldon/openscad/foundation/core/error"
	mdwlog "github.com/frikeldon/openscad/foundation/core/log"
	"github.com/frikeldon/openscad/foundation/scad/ast"
	"github.com/frikeldon/openscad/foundation/scad/builtin"
	"github.com/frikeldon/openscad/foundation/scad/csg"
	"github.com/frikeldon/openscad/foundation/scad/interpreter"
	"github.com/frikeldon/openscad/foundation/scad/parser"
	"github.com/frikeldon/openscad/foundation/utils/stringx"
)

// Engine runs the whole pipeline: text, tokens, AST, raw CSG, cleaned CSG
type Engine struct {
	logger      *mdwlog.Logger
	parser      *parser.Parser
	interpreter *interpreter.Interpreter
	skipClean   bool
}

// Options configures an Engine
type Options struct {
	Logger *mdwlog.Logger
	// Echo receives echo() output; nil discards it
	Echo           io.Writer
	MaxSteps       int
	MaxInputLength int
	Registry       *builtin.Registry
	// SkipClean returns the raw CSG tree as Objects
	SkipClean bool
}

// Result of interpreting a source
type Result struct {
	RunID    string
	Raw      []csg.Node
	Objects  []csg.Node
	Steps    int
	Duration time.Duration
}

// New creates a new engine
func New(opts Options) (*Engine, error) {
	if opts.Logger == nil {
		opts.Logger = mdwlog.GetDefault()
	}

	p, err := parser.New(parser.Options{
		Logger:         opts.Logger,
		MaxInputLength: opts.MaxInputLength,
	})
	if err != nil {
		return nil, mdwerror.Wrap(err, "failed to create parser").WithOperation("scad.New")
	}

	in, err := interpreter.New(interpreter.Options{
		Logger:   opts.Logger,
		Echo:     opts.Echo,
		MaxSteps: opts.MaxSteps,
		Registry: opts.Registry,
	})
	if err != nil {
		return nil, mdwerror.Wrap(err, "failed to create interpreter").WithOperation("scad.New")
	}

	return &Engine{
		logger:      opts.Logger.WithField("component", "scad-engine"),
		parser:      p,
		interpreter: in,
		skipClean:   opts.SkipClean,
	}, nil
}

// Parse parses source without running it
func (e *Engine) Parse(source string) (*ast.Program, error) {
	return e.parser.Parse(source)
}

// Interpret parses, runs and cleans source
func (e *Engine) Interpret(ctx context.Context, source string) (*Result, error) {
	program, err := e.parser.Parse(source)
	if err != nil {
		return nil, err
	}
	return e.Execute(ctx, program)
}

// Execute runs an already parsed program and cleans its output
func (e *Engine) Execute(ctx context.Context, program *ast.Program) (*Result, error) {
	start := time.Now()
	run, err := e.interpreter.Run(ctx, program)
	if err != nil {
		return nil, err
	}

	result := &Result{
		RunID: run.RunID,
		Raw:   run.Objects,
		Steps: run.Steps,
	}
	if e.skipClean {
		result.Objects = run.Objects
	} else {
		result.Objects, err = csg.Clean(run.Objects)
		if err != nil {
			return nil, mdwerror.Wrap(err, "cleanup failed").
				WithOperation("scad.Execute").
				WithDetail("run_id", run.RunID)
		}
	}
	result.Duration = time.Since(start)

	e.logger.WithRunID(run.RunID).Debug("Interpretation completed", mdwlog.Fields{
		"raw_objects": len(result.Raw),
		"objects":     len(result.Objects),
		"steps":       result.Steps,
		"elapsed_us":  result.Duration.Microseconds(),
	})
	return result, nil
}

// Diagnostic describes a failure for display. Parse errors carry their
// span; other failures have a zero span and only a message and code.
type Diagnostic struct {
	DisplayMessage string        `json:"displayMessage"`
	StartLine      int           `json:"startLine"`
	StartColumn    int           `json:"startColumn"`
	EndLine        int           `json:"endLine"`
	EndColumn      int           `json:"endColumn"`
	Code           mdwerror.Code `json:"code"`
}

// HasSpan reports whether the diagnostic points into the source
func (d Diagnostic) HasSpan() bool {
	return d.StartLine > 0
}

// Diagnose converts err into a Diagnostic
func Diagnose(err error) Diagnostic {
	var pe *parser.ParseError
	if errors.As(err, &pe) {
		return Diagnostic{
			DisplayMessage: pe.DisplayMessage,
			StartLine:      pe.StartLine,
			StartColumn:    pe.StartColumn,
			EndLine:        pe.EndLine,
			EndColumn:      pe.EndColumn,
			Code:           pe.Code(),
		}
	}

	d := Diagnostic{DisplayMessage: err.Error(), Code: mdwerror.GetCode(err)}
	var me *mdwerror.Error
	if errors.As(err, &me) {
		d.DisplayMessage = me.Message()
	}
	return d
}

// RenderError formats err for a terminal. Errors with a span show the
// offending source line with the span underlined by carets; a span that
// continues on later lines is underlined to the end of its first line.
func RenderError(source string, err error) string {
	d := Diagnose(err)
	var b strings.Builder
	fmt.Fprintf(&b, "error[%s]: %s\n", d.Code, d.DisplayMessage)
	if !d.HasSpan() {
		return b.String()
	}

	line := strings.ReplaceAll(stringx.Line(source, d.StartLine), "\t", " ")
	gutter := fmt.Sprintf("%d", d.StartLine)
	pad := strings.Repeat(" ", len(gutter))

	width := d.EndColumn - d.StartColumn
	if d.EndLine != d.StartLine {
		width = utf8.RuneCountInString(line) - d.StartColumn + 1
	}
	if width < 1 {
		width = 1
	}

	fmt.Fprintf(&b, "%s--> line %d, column %d\n", pad, d.StartLine, d.StartColumn)
	fmt.Fprintf(&b, "%s |\n", pad)
	fmt.Fprintf(&b, "%s | %s\n", gutter, line)
	fmt.Fprintf(&b, "%s | %s%s\n", pad, strings.Repeat(" ", d.StartColumn-1), strings.Repeat("^", width))
	return b.String()
}
