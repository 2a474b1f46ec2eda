package confgate

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"dario.cat/mergo"
	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

// Conventional precedence ranks. Callers may use any integers; higher wins.
const (
	RankFile     = 10
	RankEnv      = 20
	RankOverride = 30
)

// Source supplies raw values for resolution. Implementations are immutable
// snapshots: Read performs no I/O and always answers from state captured at
// construction. Absent keys return (nil, false), never an error.
type Source interface {
	// Origin identifies the source in warnings and provenance.
	Origin() string

	// Rank is the precedence rank; among sources holding the same path the
	// highest rank wins.
	Rank() int

	// Read returns the raw value for a full dot path, or false if absent.
	Read(path string) (any, bool)
}

// enumerable is implemented by sources whose full key set is known, letting
// the resolver sweep them for unknown keys. The environment source does not
// implement it: the process environment is full of unrelated variables.
type enumerable interface {
	Paths() []string
}

// MapSource is an in-memory source backed by a flat path->value map. The map
// is copied at construction.
type MapSource struct {
	origin string
	rank   int
	values map[string]any
}

// NewMapSource builds a source from a flat dot-path map.
func NewMapSource(origin string, rank int, values map[string]any) *MapSource {
	copied := make(map[string]any, len(values))
	for k, v := range values {
		copied[k] = v
	}
	return &MapSource{origin: origin, rank: rank, values: copied}
}

func (s *MapSource) Origin() string { return s.origin }
func (s *MapSource) Rank() int      { return s.rank }

func (s *MapSource) Read(path string) (any, bool) {
	v, ok := s.values[path]
	return v, ok
}

// Paths returns every path the source holds.
func (s *MapSource) Paths() []string {
	paths := make([]string, 0, len(s.values))
	for p := range s.values {
		paths = append(paths, p)
	}
	return paths
}

// EnvSource answers reads from a snapshot of the process environment taken
// at construction, translated through the naming convention. Lookups go
// path -> external name -> snapshot, so only names derivable from registered
// paths are ever consulted.
type EnvSource struct {
	namespace string
	rank      int
	env       map[string]string
}

// EnvOption adjusts environment source construction.
type EnvOption func(*EnvSource)

// WithEnviron replaces the os.Environ() snapshot, for tests.
func WithEnviron(environ []string) EnvOption {
	return func(s *EnvSource) {
		s.env = parseEnviron(environ)
	}
}

// WithEnvRank overrides the default RankEnv.
func WithEnvRank(rank int) EnvOption {
	return func(s *EnvSource) {
		s.rank = rank
	}
}

// NewEnvSource snapshots the environment under the given namespace token.
func NewEnvSource(namespace string, opts ...EnvOption) *EnvSource {
	s := &EnvSource{
		namespace: namespace,
		rank:      RankEnv,
		env:       parseEnviron(os.Environ()),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *EnvSource) Origin() string { return "env:" + s.namespace }
func (s *EnvSource) Rank() int      { return s.rank }

func (s *EnvSource) Read(path string) (any, bool) {
	value, ok := s.env[EnvName(s.namespace, path)]
	if !ok {
		return nil, false
	}
	return value, true
}

func parseEnviron(environ []string) map[string]string {
	env := make(map[string]string, len(environ))
	for _, kv := range environ {
		if idx := strings.IndexByte(kv, '='); idx > 0 {
			env[kv[:idx]] = kv[idx+1:]
		}
	}
	return env
}

// FileSource holds values pre-loaded from one or more configuration files.
// All I/O happens in the constructor; later files override earlier ones via
// a deep merge. Formats: TOML, YAML, JSON, detected by extension with a
// content-sniffing fallback.
type FileSource struct {
	origin string
	rank   int
	values map[string]any
}

// NewFileSource reads and merges the given files. A missing file is an
// error; use an empty path list for a no-op source.
func NewFileSource(rank int, paths ...string) (*FileSource, error) {
	merged := make(map[string]any)

	for _, path := range paths {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file %q: %w", path, err)
		}

		parsed, err := parseFileData(path, data)
		if err != nil {
			return nil, err
		}

		if err := mergo.Merge(&merged, parsed, mergo.WithOverride); err != nil {
			return nil, fmt.Errorf("failed to merge config file %q: %w", path, err)
		}
	}

	return &FileSource{
		origin: "file:" + strings.Join(paths, ","),
		rank:   rank,
		values: flattenMap(merged, ""),
	}, nil
}

func (s *FileSource) Origin() string { return s.origin }
func (s *FileSource) Rank() int      { return s.rank }

func (s *FileSource) Read(path string) (any, bool) {
	v, ok := s.values[path]
	return v, ok
}

// Paths returns every flattened path found in the files.
func (s *FileSource) Paths() []string {
	paths := make([]string, 0, len(s.values))
	for p := range s.values {
		paths = append(paths, p)
	}
	return paths
}

// parseFileData decodes file contents by detected format.
func parseFileData(path string, data []byte) (map[string]any, error) {
	format := detectFileFormat(path)
	if format == "" {
		format = detectFormatFromContent(data)
		if format == "" {
			return nil, fmt.Errorf("unable to determine config format for file %q", path)
		}
	}

	parsed := make(map[string]any)
	switch format {
	case "toml":
		if err := toml.Unmarshal(data, &parsed); err != nil {
			return nil, fmt.Errorf("failed to parse TOML config file %q: %w", path, err)
		}
	case "json":
		decoder := json.NewDecoder(bytes.NewReader(data))
		decoder.UseNumber() // Preserve number precision
		if err := decoder.Decode(&parsed); err != nil {
			return nil, fmt.Errorf("failed to parse JSON config file %q: %w", path, err)
		}
	case "yaml":
		if err := yaml.Unmarshal(data, &parsed); err != nil {
			return nil, fmt.Errorf("failed to parse YAML config file %q: %w", path, err)
		}
	}

	return parsed, nil
}

// detectFileFormat determines format from file extension.
func detectFileFormat(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml", ".tml":
		return "toml"
	case ".json":
		return "json"
	case ".yaml", ".yml":
		return "yaml"
	default:
		return ""
	}
}

// detectFormatFromContent attempts detection by parsing. JSON first (strict),
// then YAML (a JSON superset), then TOML.
func detectFormatFromContent(data []byte) string {
	var jsonTest any
	if err := json.Unmarshal(data, &jsonTest); err == nil {
		return "json"
	}

	var yamlTest any
	if err := yaml.Unmarshal(data, &yamlTest); err == nil {
		return "yaml"
	}

	var tomlTest any
	if err := toml.Unmarshal(data, &tomlTest); err == nil {
		return "toml"
	}

	return ""
}
