package confgate

import (
	"errors"
	"fmt"

	"github.com/rs/zerolog"
)

// Builder provides a fluent interface for assembling an engine: schema
// entries, value sources, the environment namespace, and logging. Build runs
// the first resolution pass, so a returned *Engine always holds a valid
// snapshot.
type Builder struct {
	schema     *Schema
	sources    []Source
	envNS      string
	envOpts    []EnvOption
	logger     zerolog.Logger
	validators []ValidatorFunc
	err        error
}

// ValidatorFunc validates the first snapshot after a successful initial pass.
// It runs server-side and receives the full snapshot.
type ValidatorFunc func(s *Snapshot) error

// NewBuilder creates an engine builder with a no-op logger.
func NewBuilder() *Builder {
	return &Builder{
		schema: NewSchema(),
		logger: zerolog.Nop(),
	}
}

// WithSchema registers schema entries. Registration errors (duplicate keys,
// visibility conflicts, unmappable paths) are fatal and surface from Build.
func (b *Builder) WithSchema(entries ...SchemaEntry) *Builder {
	if b.err != nil {
		return b
	}
	if err := b.schema.Register(entries...); err != nil {
		b.err = err
	}
	return b
}

// WithSchemaStruct registers entries derived from a tagged struct.
func (b *Builder) WithSchemaStruct(prefix string, v any) *Builder {
	if b.err != nil {
		return b
	}
	entries, err := EntriesFromStruct(prefix, v)
	if err != nil {
		b.err = err
		return b
	}
	return b.WithSchema(entries...)
}

// WithSource adds a value source for resolution.
func (b *Builder) WithSource(src Source) *Builder {
	if b.err != nil {
		return b
	}
	b.sources = append(b.sources, src)
	return b
}

// WithFile adds a pre-loaded file source at RankFile. A missing file is a
// build error; callers that tolerate absent files should construct the
// FileSource themselves.
func (b *Builder) WithFile(paths ...string) *Builder {
	if b.err != nil {
		return b
	}
	src, err := NewFileSource(RankFile, paths...)
	if err != nil {
		b.err = err
		return b
	}
	b.sources = append(b.sources, src)
	return b
}

// WithEnvNamespace enables the environment source under the given namespace
// token (path "a.b" with namespace "APP" reads APP_A_B).
func (b *Builder) WithEnvNamespace(namespace string, opts ...EnvOption) *Builder {
	b.envNS = namespace
	b.envOpts = opts
	return b
}

// WithOverrides adds an in-memory source at RankOverride, outranking files
// and environment.
func (b *Builder) WithOverrides(values map[string]any) *Builder {
	if b.err != nil {
		return b
	}
	b.sources = append(b.sources, NewMapSource("override", RankOverride, values))
	return b
}

// WithLogger sets the engine logger. The default is zerolog.Nop().
func (b *Builder) WithLogger(logger zerolog.Logger) *Builder {
	b.logger = logger
	return b
}

// WithValidator appends a validation function run against the first snapshot.
func (b *Builder) WithValidator(fn ValidatorFunc) *Builder {
	b.validators = append(b.validators, fn)
	return b
}

// Build assembles the engine and runs the initial resolution pass.
// Registration and resolution errors are startup-fatal and returned here,
// never swallowed.
func (b *Builder) Build() (*Engine, error) {
	if b.err != nil {
		return nil, fmt.Errorf("engine build failed: %w", b.err)
	}

	sources := make([]Source, len(b.sources))
	copy(sources, b.sources)
	if b.envNS != "" {
		sources = append(sources, NewEnvSource(b.envNS, b.envOpts...))
	}

	eng := &Engine{
		schema:  b.schema,
		sources: sources,
		logger:  b.logger,
	}

	if _, err := eng.Reload(); err != nil {
		return nil, fmt.Errorf("initial resolution pass failed: %w", err)
	}

	var verr error
	for _, validate := range b.validators {
		if err := validate(eng.Current()); err != nil {
			verr = errors.Join(verr, err)
		}
	}
	if verr != nil {
		return nil, fmt.Errorf("snapshot validation failed: %w", verr)
	}

	return eng, nil
}

// MustBuild is Build for program initialization paths where a configuration
// error should halt startup.
func (b *Builder) MustBuild() *Engine {
	eng, err := b.Build()
	if err != nil {
		panic(err)
	}
	return eng
}
