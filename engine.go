package confgate

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
)

// Engine owns the resolution pipeline: it runs passes over the registered
// schema and sources, derives the public view, and publishes the result as an
// immutable snapshot behind an atomically swapped pointer.
//
// There is no ambient global configuration: consumers receive the Engine (or
// a Snapshot taken from it) explicitly.
type Engine struct {
	schema  *Schema
	sources []Source
	logger  zerolog.Logger

	reloadMu sync.Mutex // serializes passes; a reload queues behind an in-flight one
	version  atomic.Uint64
	current  atomic.Pointer[Snapshot]
}

// Current returns the latest published snapshot. Readers never observe a
// partially built snapshot: publication is a single pointer swap.
func (e *Engine) Current() *Snapshot {
	return e.current.Load()
}

// Schema returns the engine's (frozen) schema registry.
func (e *Engine) Schema() *Schema {
	return e.schema
}

// Reload runs a fresh resolution pass over the registered sources and
// publishes the result, returning the new version number.
//
// A failed pass publishes nothing: the previous snapshot stays current, the
// failure is logged at warn level, and the error is returned to the caller.
// A running server never crashes on a bad reload. Passes cannot overlap; a
// concurrent Reload blocks until the in-flight pass completes.
func (e *Engine) Reload() (uint64, error) {
	e.reloadMu.Lock()
	defer e.reloadMu.Unlock()

	started := time.Now()

	resolved, err := Resolve(e.schema, e.sources, e.logger)
	if err != nil {
		e.logger.Warn().Err(err).Msg("resolution pass failed, keeping previous snapshot")
		return 0, err
	}

	public, publicFlat, err := derivePublicView(e.schema, resolved)
	if err != nil {
		e.logger.Warn().Err(err).Msg("public view derivation failed, keeping previous snapshot")
		return 0, err
	}

	resolved.version = e.version.Add(1)
	e.current.Store(newSnapshot(resolved, public, publicFlat))

	e.logger.Debug().
		Uint64("version", resolved.version).
		Dur("elapsed", time.Since(started)).
		Msg("published configuration snapshot")

	return resolved.version, nil
}

// ReplaceSources swaps the engine's source set for subsequent passes, for
// callers that rebuild pre-loaded sources (e.g. re-reading files) before
// signalling a reload. It does not trigger a pass by itself.
func (e *Engine) ReplaceSources(sources ...Source) {
	e.reloadMu.Lock()
	defer e.reloadMu.Unlock()

	e.sources = make([]Source, len(sources))
	copy(e.sources, sources)
}
