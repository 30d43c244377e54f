// File: interpreter.go
// Title: Stack Machine Interpreter
// Description: Executes a Program with an explicit process stack instead of
//              host recursion, so deeply nested sources cannot exhaust the
//              goroutine stack. A run produces the raw CSG objects of the
//              top level.
// Author: frikeldon
// Version: v0.1.0
// Created: 2026-10-19
// Modified: 2026-10-19
//
// Change History:
// - 2026-10-19 v0.1.0: Initial implementation

package interpreter

import (
	"context"
	"io"
	"time"

	"github.com/google/uuid"

	mdwerror "github.com/frikeldon/openscad/foundation/core/error"
	mdwlog "github.com/frikeldon/openscad/foundation/core/log"
	"github.com/frikeldon/openscad/foundation/scad/ast"
	"github.com/frikeldon/openscad/foundation/scad/builtin"
	"github.com/frikeldon/openscad/foundation/scad/csg"
)

// cancelCheckInterval is how many steps run between context checks
const cancelCheckInterval = 1024

// Interpreter runs parsed programs. It holds no per-run state and may be
// shared between goroutines.
type Interpreter struct {
	logger   *mdwlog.Logger
	registry *builtin.Registry
	echo     io.Writer
	maxSteps int
}

// Options configures an Interpreter
type Options struct {
	Logger *mdwlog.Logger
	// Echo receives echo() output. Nil discards it.
	Echo io.Writer
	// MaxSteps bounds the number of processor steps of one run. Zero means
	// unbounded.
	MaxSteps int
	// Registry provides the builtin library; nil uses builtin.Default()
	Registry *builtin.Registry
}

// Result of a successful run
type Result struct {
	RunID    string
	Objects  []csg.Node
	Steps    int
	Duration time.Duration
}

// New creates a new interpreter with the given options
func New(opts Options) (*Interpreter, error) {
	if opts.Logger == nil {
		opts.Logger = mdwlog.GetDefault()
	}
	if opts.MaxSteps < 0 {
		return nil, mdwerror.New("max steps cannot be negative").
			WithCode(mdwerror.CodeInvalidConfig).
			WithOperation("interpreter.New").
			WithDetail("maxSteps", opts.MaxSteps)
	}
	if opts.Registry == nil {
		opts.Registry = builtin.Default()
	}
	if opts.Echo == nil {
		opts.Echo = io.Discard
	}

	return &Interpreter{
		logger:   opts.Logger.WithField("component", "scad-interpreter"),
		registry: opts.Registry,
		echo:     opts.Echo,
		maxSteps: opts.MaxSteps,
	}, nil
}

// Run executes program and returns the objects it produced. Semantic
// problems never fail a run; they evaluate to undef or produce no object.
// Errors are reserved for cancellation, an exhausted step budget and
// implementation defects.
func (in *Interpreter) Run(ctx context.Context, program *ast.Program) (*Result, error) {
	if program == nil {
		return nil, mdwerror.New("program cannot be nil").
			WithCode(mdwerror.CodeInvalidInput).
			WithOperation("interpreter.Run")
	}

	runID := uuid.New().String()
	logger := in.logger.WithRunID(runID)
	start := time.Now()

	env := newEnvironment(in.registry, in.echo)
	env.pushProcess(program)

	steps := 0
	for len(env.processes) > 0 {
		steps++
		if in.maxSteps > 0 && steps > in.maxSteps {
			err := mdwerror.Newf("step budget of %d exhausted", in.maxSteps).
				WithCode(mdwerror.CodeStepBudget).
				WithOperation("interpreter.Run").
				WithDetail("run_id", runID)
			logger.LogError(err)
			return nil, err
		}
		if steps%cancelCheckInterval == 0 {
			if err := ctx.Err(); err != nil {
				wrapped := mdwerror.Wrap(err, "run cancelled").
					WithCode(mdwerror.CodeCancelled).
					WithOperation("interpreter.Run").
					WithDetail("steps", steps)
				logger.LogError(wrapped)
				return nil, wrapped
			}
		}

		p := env.topProcess()
		p.step++
		if err := env.dispatch(p); err != nil {
			logger.LogError(err)
			return nil, err
		}
	}

	if len(env.values) != 0 {
		err := defect("value stack not empty after run: %d values left", len(env.values))
		logger.LogError(err)
		return nil, err
	}

	result := &Result{
		RunID:    runID,
		Objects:  env.result,
		Steps:    steps,
		Duration: time.Since(start),
	}
	logger.Debug("Run completed", mdwlog.Fields{
		"steps":      steps,
		"objects":    len(result.Objects),
		"elapsed_us": result.Duration.Microseconds(),
	})
	return result, nil
}
