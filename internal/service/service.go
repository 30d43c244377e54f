package service

import (
	"context"
	"fmt"
	"io"
	"time"

	mdwlog "github.com/frikeldon/openscad/foundation/core/log"
	"github.com/frikeldon/openscad/foundation/scad"
	"github.com/frikeldon/openscad/foundation/scad/ast"
	"github.com/frikeldon/openscad/foundation/scad/parser"
	"github.com/frikeldon/openscad/internal/store"
	"github.com/frikeldon/openscad/pkg/core/cache"
	"github.com/frikeldon/openscad/pkg/core/config"
)

// Outcome is the result of interpreting one source. Exactly one of Result
// and Err is set.
type Outcome struct {
	Name       string
	Source     string
	Result     *scad.Result
	Cached     bool
	Err        error
	Diagnostic *scad.Diagnostic
	// HistoryID is the history row written for this outcome, if any
	HistoryID string
}

// Failed reports whether interpretation failed
func (o *Outcome) Failed() bool {
	return o.Err != nil
}

// Service ties the engine to the result cache and the run history. Every
// front end (CLI, preview server, watcher, TUI) goes through it.
type Service struct {
	engine  *scad.Engine
	cache   *cache.ResultCache
	history store.HistoryStore
	logger  *mdwlog.Logger
}

// Config holds service configuration
type Config struct {
	MaxSteps       int
	MaxInputLength int
	// Echo receives echo() output; nil discards it
	Echo io.Writer
	// SkipClean returns raw CSG trees
	SkipClean bool

	// Cache configuration
	EnableCache bool
	CacheTTL    time.Duration
	MaxEntries  int

	// Run history
	EnableHistory bool
	HistoryPath   string
}

// DefaultConfig returns default configuration
func DefaultConfig() Config {
	return FromAppConfig(config.Default())
}

// FromAppConfig derives a service configuration from the application config.
// History stays disabled unless the caller enables it.
func FromAppConfig(cfg *config.Config) Config {
	return Config{
		MaxSteps:       cfg.Engine.MaxSteps,
		MaxInputLength: cfg.Engine.MaxInputLength,
		EnableCache:    cfg.Cache.Enabled,
		CacheTTL:       cfg.Cache.TTL.Duration,
		MaxEntries:     cfg.Cache.MaxEntries,
		HistoryPath:    cfg.Store.Path,
	}
}

// New creates a new service
func New(cfg Config, logger *mdwlog.Logger) (*Service, error) {
	if logger == nil {
		logger = mdwlog.GetDefault()
	}

	engine, err := scad.New(scad.Options{
		Logger:         logger,
		Echo:           cfg.Echo,
		MaxSteps:       cfg.MaxSteps,
		MaxInputLength: cfg.MaxInputLength,
		SkipClean:      cfg.SkipClean,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create engine: %w", err)
	}

	s := &Service{
		engine: engine,
		logger: logger.WithField("component", "service"),
	}

	// Cached results never replay echo output, so echo runs bypass the cache
	if cfg.EnableCache && cfg.Echo == nil {
		s.cache = cache.NewResultCache(engine, cache.Config{
			MaxItems: cfg.MaxEntries,
			TTL:      cfg.CacheTTL,
		})
		s.logger.Debug("Result cache enabled", mdwlog.Fields{"ttl": cfg.CacheTTL.String(), "max_entries": cfg.MaxEntries})
	}

	if cfg.EnableHistory {
		history, err := store.NewSQLiteHistoryStore(store.SQLiteConfig{
			Path:   cfg.HistoryPath,
			Logger: logger,
		})
		if err != nil {
			s.Close()
			return nil, fmt.Errorf("failed to open run history: %w", err)
		}
		s.history = history
	}

	return s, nil
}

// WithHistory replaces the history store, mainly for tests
func (s *Service) WithHistory(history store.HistoryStore) *Service {
	s.history = history
	return s
}

// History returns the run history, nil when disabled
func (s *Service) History() store.HistoryStore {
	return s.history
}

// Engine returns the underlying engine
func (s *Service) Engine() *scad.Engine {
	return s.engine
}

// Interpret runs source and records the outcome in the history when it is
// enabled. Language errors are reported through the outcome; a failing
// history write is logged and does not fail the run.
func (s *Service) Interpret(ctx context.Context, name, source string) *Outcome {
	out := &Outcome{Name: name, Source: source}

	if s.cache != nil {
		out.Result, out.Cached, out.Err = s.cache.Interpret(ctx, source)
	} else {
		out.Result, out.Err = s.engine.Interpret(ctx, source)
	}
	if out.Err != nil {
		d := scad.Diagnose(out.Err)
		out.Diagnostic = &d
		s.logger.Debug("Interpretation failed", mdwlog.Fields{"name": name, "code": string(d.Code)})
	}

	if s.history != nil {
		s.record(ctx, out)
	}
	return out
}

func (s *Service) record(ctx context.Context, out *Outcome) {
	run, err := store.NewRun(out.Name, out.Source, out.Result, out.Err)
	if err != nil {
		s.logger.WarnWithErr("Failed to build history record", err)
		return
	}
	if err := s.history.Record(ctx, run); err != nil {
		s.logger.WarnWithErr("Failed to record run", err, mdwlog.Fields{"name": out.Name})
		return
	}
	out.HistoryID = run.ID
}

// Parse parses source without running it
func (s *Service) Parse(source string) (*ast.Program, error) {
	return s.engine.Parse(source)
}

// Tokens returns the token stream of source, comments included
func (s *Service) Tokens(source string) ([]parser.Token, error) {
	return parser.Tokenize(source)
}

// Stats returns cache and history statistics
func (s *Service) Stats(ctx context.Context) map[string]interface{} {
	stats := map[string]interface{}{
		"cache_enabled":   s.cache != nil,
		"history_enabled": s.history != nil,
	}
	if s.cache != nil {
		stats["cache"] = s.cache.Stats()
	}
	if s.history != nil {
		if hs, err := s.history.Statistics(ctx); err == nil {
			stats["history"] = hs
		}
	}
	return stats
}

// Close releases the cache and the history store
func (s *Service) Close() error {
	if s.cache != nil {
		s.cache.Close()
	}
	if s.history != nil {
		return s.history.Close()
	}
	return nil
}
