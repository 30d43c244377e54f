package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"

	"github.com/frikeldon/openscad/foundation/scad"
)

// Interpreter is the part of the engine the result cache wraps
type Interpreter interface {
	Interpret(ctx context.Context, source string) (*scad.Result, error)
}

// ResultCache serves repeated identical sources without re-running them.
// Only successful results are kept; echo output is not replayed on a hit.
type ResultCache struct {
	cache  *Cache[*scad.Result]
	engine Interpreter
}

// NewResultCache wraps engine with a cache
func NewResultCache(engine Interpreter, cfg Config) *ResultCache {
	return &ResultCache{
		cache:  New[*scad.Result](cfg),
		engine: engine,
	}
}

// SourceKey generates a cache key for a source text
func SourceKey(source string) string {
	hash := sha256.Sum256([]byte(source))
	return "scad:" + hex.EncodeToString(hash[:])
}

// Interpret returns the cached result for source or runs the engine.
// cached reports whether the result came from the cache.
func (rc *ResultCache) Interpret(ctx context.Context, source string) (result *scad.Result, cached bool, err error) {
	return rc.cache.GetOrSet(SourceKey(source), func() (*scad.Result, error) {
		return rc.engine.Interpret(ctx, source)
	})
}

// Stats returns cache statistics
func (rc *ResultCache) Stats() map[string]interface{} {
	hits, misses, rate := rc.cache.Stats()
	return map[string]interface{}{
		"size":     rc.cache.Size(),
		"hits":     hits,
		"misses":   misses,
		"hit_rate": rate,
	}
}

// Clear drops every cached result
func (rc *ResultCache) Clear() {
	rc.cache.Clear()
}

// Close releases the cache
func (rc *ResultCache) Close() {
	rc.cache.Close()
}
