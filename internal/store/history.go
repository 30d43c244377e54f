package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	mdwlog "github.com/frikeldon/openscad/foundation/core/log"
	"github.com/frikeldon/openscad/foundation/scad"
	"github.com/frikeldon/openscad/foundation/scad/csg"
	"github.com/frikeldon/openscad/pkg/core/cache"
)

// Run status values
const (
	StatusOK    = "ok"
	StatusError = "error"
)

// Run represents one recorded interpretation
type Run struct {
	ID         string           `json:"id"`
	RunID      string           `json:"run_id,omitempty"`
	Name       string           `json:"name"`
	SourceHash string           `json:"source_hash"`
	Source     string           `json:"source"`
	Status     string           `json:"status"`
	Diagnostic *scad.Diagnostic `json:"diagnostic,omitempty"`
	CSG        json.RawMessage  `json:"csg,omitempty"`
	Objects    int              `json:"objects"`
	Steps      int              `json:"steps"`
	Duration   time.Duration    `json:"duration"`
	CreatedAt  time.Time        `json:"created_at"`
}

// NewRun builds a record from the outcome of interpreting source. Exactly
// one of result and runErr is expected to be non-nil.
func NewRun(name, source string, result *scad.Result, runErr error) (*Run, error) {
	run := &Run{
		ID:         uuid.New().String(),
		Name:       name,
		SourceHash: cache.SourceKey(source),
		Source:     source,
		CreatedAt:  time.Now(),
	}

	if runErr != nil {
		d := scad.Diagnose(runErr)
		run.Status = StatusError
		run.Diagnostic = &d
		return run, nil
	}

	objects := result.Objects
	if objects == nil {
		objects = []csg.Node{}
	}
	data, err := json.Marshal(objects)
	if err != nil {
		return nil, fmt.Errorf("failed to encode CSG: %w", err)
	}
	run.Status = StatusOK
	run.RunID = result.RunID
	run.CSG = data
	run.Objects = len(result.Objects)
	run.Steps = result.Steps
	run.Duration = result.Duration
	return run, nil
}

// HistoryStore defines the interface for run history persistence
type HistoryStore interface {
	Record(ctx context.Context, run *Run) error
	Get(ctx context.Context, id string) (*Run, error)
	List(ctx context.Context, limit, offset int) ([]*Run, error)
	Delete(ctx context.Context, id string) error

	// Utility
	Close() error
	Statistics(ctx context.Context) (map[string]interface{}, error)
}

// SQLiteHistoryStore implements HistoryStore using SQLite
type SQLiteHistoryStore struct {
	db     *sql.DB
	mu     sync.RWMutex
	logger *mdwlog.Logger
}

// SQLiteConfig holds configuration for the SQLite store
type SQLiteConfig struct {
	Path   string
	Logger *mdwlog.Logger
}

// DefaultSQLiteConfig returns default configuration
func DefaultSQLiteConfig() SQLiteConfig {
	return SQLiteConfig{
		Path: "./data/history.db",
	}
}

// NewSQLiteHistoryStore creates a new SQLite-based history store
func NewSQLiteHistoryStore(cfg SQLiteConfig) (*SQLiteHistoryStore, error) {
	if cfg.Logger == nil {
		cfg.Logger = mdwlog.GetDefault()
	}

	dir := filepath.Dir(cfg.Path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create directory: %w", err)
	}

	// Open database with WAL mode
	db, err := sql.Open("sqlite3", cfg.Path+"?_journal_mode=WAL&_synchronous=NORMAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	store := &SQLiteHistoryStore{
		db:     db,
		logger: cfg.Logger.WithField("component", "store"),
	}

	if err := store.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	store.logger.Debug("History store opened", mdwlog.Fields{"path": cfg.Path})
	return store, nil
}

// initSchema creates the necessary tables
func (s *SQLiteHistoryStore) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS runs (
		id TEXT PRIMARY KEY,
		run_id TEXT NOT NULL DEFAULT '',
		name TEXT NOT NULL DEFAULT '',
		source_hash TEXT NOT NULL,
		source TEXT NOT NULL,
		status TEXT NOT NULL,
		diagnostic TEXT,
		csg TEXT,
		objects INTEGER DEFAULT 0,
		steps INTEGER DEFAULT 0,
		duration_ns INTEGER DEFAULT 0,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_runs_created ON runs(created_at DESC);
	CREATE INDEX IF NOT EXISTS idx_runs_hash ON runs(source_hash);
	`

	_, err := s.db.Exec(schema)
	return err
}

// Record stores a run
func (s *SQLiteHistoryStore) Record(ctx context.Context, run *Run) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if run.ID == "" {
		return fmt.Errorf("run ID is required")
	}
	if run.CreatedAt.IsZero() {
		run.CreatedAt = time.Now()
	}

	var diagnosticJSON []byte
	if run.Diagnostic != nil {
		diagnosticJSON, _ = json.Marshal(run.Diagnostic)
	}
	var csgJSON sql.NullString
	if len(run.CSG) > 0 {
		csgJSON = sql.NullString{String: string(run.CSG), Valid: true}
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO runs (id, run_id, name, source_hash, source, status, diagnostic, csg, objects, steps, duration_ns, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, run.ID, run.RunID, run.Name, run.SourceHash, run.Source, run.Status, diagnosticJSON, csgJSON,
		run.Objects, run.Steps, int64(run.Duration), run.CreatedAt)

	if err != nil {
		return fmt.Errorf("failed to record run: %w", err)
	}

	s.logger.Debug("Run recorded", mdwlog.Fields{"id": run.ID, "status": run.Status})
	return nil
}

const selectRun = `
	SELECT id, run_id, name, source_hash, source, status, diagnostic, csg, objects, steps, duration_ns, created_at
	FROM runs`

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanRun(row rowScanner) (*Run, error) {
	var run Run
	var diagnosticJSON, csgJSON sql.NullString
	var durationNs int64

	err := row.Scan(&run.ID, &run.RunID, &run.Name, &run.SourceHash, &run.Source, &run.Status,
		&diagnosticJSON, &csgJSON, &run.Objects, &run.Steps, &durationNs, &run.CreatedAt)
	if err != nil {
		return nil, err
	}

	run.Duration = time.Duration(durationNs)
	if diagnosticJSON.Valid && diagnosticJSON.String != "" {
		var d scad.Diagnostic
		if err := json.Unmarshal([]byte(diagnosticJSON.String), &d); err == nil {
			run.Diagnostic = &d
		}
	}
	if csgJSON.Valid {
		run.CSG = json.RawMessage(csgJSON.String)
	}
	return &run, nil
}

// Get retrieves a run by ID; nil when it does not exist
func (s *SQLiteHistoryStore) Get(ctx context.Context, id string) (*Run, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	run, err := scanRun(s.db.QueryRowContext(ctx, selectRun+` WHERE id = ?`, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get run: %w", err)
	}
	return run, nil
}

// List returns runs, newest first
func (s *SQLiteHistoryStore) List(ctx context.Context, limit, offset int) ([]*Run, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if limit <= 0 {
		limit = 20
	}

	rows, err := s.db.QueryContext(ctx, selectRun+`
		ORDER BY created_at DESC
		LIMIT ? OFFSET ?
	`, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	defer rows.Close()

	var runs []*Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		runs = append(runs, run)
	}

	return runs, rows.Err()
}

// Delete removes a run
func (s *SQLiteHistoryStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.db.ExecContext(ctx, `DELETE FROM runs WHERE id = ?`, id); err != nil {
		return fmt.Errorf("failed to delete run: %w", err)
	}
	return nil
}

// Close closes the database connection
func (s *SQLiteHistoryStore) Close() error {
	return s.db.Close()
}

// Statistics returns store statistics
func (s *SQLiteHistoryStore) Statistics(ctx context.Context) (map[string]interface{}, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := make(map[string]interface{})

	var total, failed, distinct int64
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM runs`).Scan(&total); err != nil {
		return nil, fmt.Errorf("failed to count runs: %w", err)
	}
	s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM runs WHERE status = ?`, StatusError).Scan(&failed)
	s.db.QueryRowContext(ctx, `SELECT COUNT(DISTINCT source_hash) FROM runs`).Scan(&distinct)

	stats["total_runs"] = total
	stats["failed_runs"] = failed
	stats["distinct_sources"] = distinct

	var avgSteps sql.NullFloat64
	s.db.QueryRowContext(ctx, `SELECT AVG(steps) FROM runs WHERE status = ?`, StatusOK).Scan(&avgSteps)
	if avgSteps.Valid {
		stats["avg_steps"] = avgSteps.Float64
	}

	return stats, nil
}

// MemoryHistoryStore is an in-memory implementation for testing
type MemoryHistoryStore struct {
	mu   sync.RWMutex
	runs map[string]*Run
}

// NewMemoryHistoryStore creates a new in-memory history store
func NewMemoryHistoryStore() *MemoryHistoryStore {
	return &MemoryHistoryStore{runs: make(map[string]*Run)}
}

// Record stores a run
func (s *MemoryHistoryStore) Record(ctx context.Context, run *Run) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if run.ID == "" {
		return fmt.Errorf("run ID is required")
	}
	if run.CreatedAt.IsZero() {
		run.CreatedAt = time.Now()
	}
	s.runs[run.ID] = run
	return nil
}

// Get retrieves a run by ID; nil when it does not exist
func (s *MemoryHistoryStore) Get(ctx context.Context, id string) (*Run, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.runs[id], nil
}

// List returns runs, newest first
func (s *MemoryHistoryStore) List(ctx context.Context, limit, offset int) ([]*Run, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if limit <= 0 {
		limit = 20
	}

	all := make([]*Run, 0, len(s.runs))
	for _, run := range s.runs {
		all = append(all, run)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].CreatedAt.After(all[j].CreatedAt) })

	if offset >= len(all) {
		return []*Run{}, nil
	}
	end := offset + limit
	if end > len(all) {
		end = len(all)
	}
	return all[offset:end], nil
}

// Delete removes a run
func (s *MemoryHistoryStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.runs, id)
	return nil
}

// Close is a no-op for memory store
func (s *MemoryHistoryStore) Close() error {
	return nil
}

// Statistics returns store statistics
func (s *MemoryHistoryStore) Statistics(ctx context.Context) (map[string]interface{}, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var failed int64
	hashes := make(map[string]struct{})
	for _, run := range s.runs {
		if run.Status == StatusError {
			failed++
		}
		hashes[run.SourceHash] = struct{}{}
	}

	return map[string]interface{}{
		"total_runs":       int64(len(s.runs)),
		"failed_runs":      failed,
		"distinct_sources": int64(len(hashes)),
	}, nil
}
