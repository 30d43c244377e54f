package watch

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	mdwlog "github.com/frikeldon/openscad/foundation/core/log"
	"github.com/frikeldon/openscad/internal/service"
)

// Interpreter runs a named source
type Interpreter interface {
	Interpret(ctx context.Context, name, source string) *service.Outcome
}

// InterpreterFunc adapts a function to Interpreter
type InterpreterFunc func(ctx context.Context, name, source string) *service.Outcome

// Interpret calls f
func (f InterpreterFunc) Interpret(ctx context.Context, name, source string) *service.Outcome {
	return f(ctx, name, source)
}

// Config holds watcher configuration
type Config struct {
	Path     string
	Debounce time.Duration
	Logger   *mdwlog.Logger
}

// Watcher re-interprets a source file whenever it changes on disk
type Watcher struct {
	path        string
	debounce    time.Duration
	interpreter Interpreter
	onOutcome   func(*service.Outcome)
	logger      *mdwlog.Logger
}

// New creates a watcher. onOutcome is called from the watcher goroutine
// after every run.
func New(cfg Config, interpreter Interpreter, onOutcome func(*service.Outcome)) (*Watcher, error) {
	if cfg.Path == "" {
		return nil, fmt.Errorf("watch path is required")
	}
	path, err := filepath.Abs(cfg.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve path: %w", err)
	}
	if cfg.Debounce <= 0 {
		cfg.Debounce = 150 * time.Millisecond
	}
	if cfg.Logger == nil {
		cfg.Logger = mdwlog.GetDefault()
	}
	if onOutcome == nil {
		onOutcome = func(*service.Outcome) {}
	}

	return &Watcher{
		path:        path,
		debounce:    cfg.Debounce,
		interpreter: interpreter,
		onOutcome:   onOutcome,
		logger:      cfg.Logger.WithField("component", "watch").WithField("file", filepath.Base(path)),
	}, nil
}

// Path returns the absolute path being watched
func (w *Watcher) Path() string {
	return w.path
}

// Run interprets the file once and then again after every change until ctx
// is cancelled. The parent directory is watched so editors that save by
// renaming a temporary file are followed. A burst of events within the
// debounce window triggers a single run.
func (w *Watcher) Run(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer watcher.Close()

	if err := watcher.Add(filepath.Dir(w.path)); err != nil {
		return fmt.Errorf("failed to watch directory: %w", err)
	}

	w.logger.Info("Started watching for changes")
	w.reload(ctx)

	timer := time.NewTimer(time.Hour)
	timer.Stop()
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			w.logger.Info("Stopping file watcher (context cancelled)")
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != w.path {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
				continue
			}
			w.logger.Debug("File event", mdwlog.Fields{"op": event.Op.String()})
			timer.Reset(w.debounce)

		case <-timer.C:
			w.reload(ctx)

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			w.logger.WarnWithErr("Watcher error", err)
		}
	}
}

// reload reads and interprets the file. A file that vanished during a
// rename-save is skipped; the following create event reloads it.
func (w *Watcher) reload(ctx context.Context) {
	data, err := os.ReadFile(w.path)
	if err != nil {
		if os.IsNotExist(err) {
			w.logger.Debug("File not present, waiting for it")
			return
		}
		w.logger.WarnWithErr("Failed to read file", err)
		return
	}

	out := w.interpreter.Interpret(ctx, w.path, string(data))
	if out.Failed() {
		w.logger.Info("Source changed, interpretation failed", mdwlog.Fields{"code": string(out.Diagnostic.Code)})
	} else if out.Result != nil {
		w.logger.Info("Source changed, reinterpreted", mdwlog.Fields{
			"objects": len(out.Result.Objects),
			"cached":  out.Cached,
		})
	}
	w.onOutcome(out)
}
