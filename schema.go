package confgate

import (
	"fmt"
	"reflect"
	"sort"
	"strings"
	"sync"
)

// Type declares the wire type a schema entry resolves to.
type Type int

const (
	// TypeString resolves to a Go string.
	TypeString Type = iota
	// TypeNumber resolves to a float64, parsed with standard lexical rules.
	TypeNumber
	// TypeBool resolves to a bool.
	TypeBool
	// TypeNested declares a container path that holds no value of its own;
	// it exists to carry visibility for the entries registered beneath it.
	TypeNested
)

func (t Type) String() string {
	switch t {
	case TypeString:
		return "string"
	case TypeNumber:
		return "number"
	case TypeBool:
		return "boolean"
	case TypeNested:
		return "nested"
	default:
		return fmt.Sprintf("Type(%d)", int(t))
	}
}

// Visibility classifies an entry as server-only or boundary-safe.
// The zero value is Private so an omitted visibility never leaks.
type Visibility int

const (
	// Private values stay on the server side of the boundary.
	Private Visibility = iota
	// Public values are included in the partitioned public view.
	Public
)

func (v Visibility) String() string {
	if v == Public {
		return "public"
	}
	return "private"
}

// SchemaEntry declares one recognized configuration key.
type SchemaEntry struct {
	// Path is the dot-separated key, e.g. "server.port". Segments are
	// restricted to [A-Za-z0-9_] so the environment naming convention stays
	// invertible.
	Path string

	// Type the resolved value must coerce to.
	Type Type

	// Default is used when no source provides a value. A nil Default on a
	// non-nested entry makes the key required.
	Default any

	// Visibility controls whether the resolved value may cross the boundary.
	Visibility Visibility
}

// Schema is the read-only registry of recognized keys. It is populated at
// process start and frozen by the first resolution pass; there is no runtime
// mutation interface.
type Schema struct {
	mu      sync.RWMutex
	entries map[string]SchemaEntry
	envIdx  map[string]string // canonical external name -> path
	frozen  bool
}

// NewSchema returns an empty registry.
func NewSchema() *Schema {
	return &Schema{
		entries: make(map[string]SchemaEntry),
		envIdx:  make(map[string]string),
	}
}

// Register adds entries to the registry. It fails with DuplicateKeyError on a
// repeated path, VisibilityConflictError when a public entry sits under a
// private parent, and UnmappablePathError when a path cannot participate in
// the environment naming convention. Registration after the schema has been
// frozen returns ErrSchemaFrozen.
func (s *Schema) Register(entries ...SchemaEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.frozen {
		return ErrSchemaFrozen
	}

	for _, entry := range entries {
		if err := validatePath(entry.Path); err != nil {
			return err
		}
		if _, exists := s.entries[entry.Path]; exists {
			return &DuplicateKeyError{Path: entry.Path}
		}
		if entry.Type == TypeNested && entry.Default != nil {
			return fmt.Errorf("nested key %q cannot declare a default", entry.Path)
		}

		if entry.Visibility == Public {
			if parent := s.nearestPrivateAncestor(entry.Path); parent != "" {
				return &VisibilityConflictError{Path: entry.Path, Parent: parent}
			}
		} else {
			if child := s.publicDescendant(entry.Path); child != "" {
				return &VisibilityConflictError{Path: child, Parent: entry.Path}
			}
		}

		ext := canonicalEnvName(entry.Path)
		if other, taken := s.envIdx[ext]; taken {
			return &UnmappablePathError{Path: entry.Path, Conflict: other}
		}

		s.envIdx[ext] = entry.Path
		s.entries[entry.Path] = entry
	}

	return nil
}

// Lookup returns the entry for a full path.
func (s *Schema) Lookup(path string) (SchemaEntry, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entry, ok := s.entries[path]
	return entry, ok
}

// Entries returns all registered entries in deterministic path order.
func (s *Schema) Entries() []SchemaEntry {
	s.mu.RLock()
	defer s.mu.RUnlock()

	paths := make([]string, 0, len(s.entries))
	for p := range s.entries {
		paths = append(paths, p)
	}
	sort.Strings(paths)

	out := make([]SchemaEntry, 0, len(paths))
	for _, p := range paths {
		out = append(out, s.entries[p])
	}
	return out
}

// Freeze marks the registry read-only. Called by the engine before its first
// resolution pass; safe to call more than once.
func (s *Schema) Freeze() {
	s.mu.Lock()
	s.frozen = true
	s.mu.Unlock()
}

// pathFromEnv inverts the naming convention for a registered path.
func (s *Schema) pathFromEnv(canonical string) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	path, ok := s.envIdx[canonical]
	return path, ok
}

// nearestPrivateAncestor walks up the path and returns the closest registered
// private ancestor, or "".
func (s *Schema) nearestPrivateAncestor(path string) string {
	for {
		idx := strings.LastIndexByte(path, '.')
		if idx < 0 {
			return ""
		}
		path = path[:idx]
		if entry, ok := s.entries[path]; ok && entry.Visibility == Private {
			return path
		}
	}
}

// publicDescendant returns a registered public entry under path, or "".
func (s *Schema) publicDescendant(path string) string {
	prefix := path + "."
	for p, entry := range s.entries {
		if strings.HasPrefix(p, prefix) && entry.Visibility == Public {
			return p
		}
	}
	return ""
}

// EntriesFromStruct derives schema entries from a tagged struct, mirroring
// struct-based registration: the `conf` tag names the segment (field name
// lower-cased otherwise), the `visibility` tag marks a field or subtree
// "public" or "private", and non-zero field values become defaults. Nested
// structs produce a TypeNested entry plus entries for their fields, which
// inherit the parent's visibility unless tagged themselves.
func EntriesFromStruct(prefix string, v any) ([]SchemaEntry, error) {
	rv := reflect.ValueOf(v)
	if rv.Kind() == reflect.Pointer {
		rv = rv.Elem()
	}
	if rv.Kind() != reflect.Struct {
		return nil, fmt.Errorf("EntriesFromStruct requires a struct, got %T", v)
	}
	return entriesFromStruct(prefix, rv, Private)
}

func entriesFromStruct(prefix string, rv reflect.Value, inherited Visibility) ([]SchemaEntry, error) {
	var entries []SchemaEntry
	rt := rv.Type()

	for i := 0; i < rv.NumField(); i++ {
		field := rt.Field(i)
		if !field.IsExported() {
			continue
		}

		segment := strings.ToLower(field.Name)
		if tag := field.Tag.Get("conf"); tag != "" {
			if tag == "-" {
				continue
			}
			segment = tag
		}

		path := segment
		if prefix != "" {
			path = prefix + "." + segment
		}

		vis := inherited
		switch field.Tag.Get("visibility") {
		case "public":
			vis = Public
		case "private":
			vis = Private
		}

		fv := rv.Field(i)
		switch fv.Kind() {
		case reflect.Struct:
			entries = append(entries, SchemaEntry{Path: path, Type: TypeNested, Visibility: vis})
			sub, err := entriesFromStruct(path, fv, vis)
			if err != nil {
				return nil, err
			}
			entries = append(entries, sub...)
		case reflect.String:
			entries = append(entries, SchemaEntry{Path: path, Type: TypeString, Default: defaultFor(fv), Visibility: vis})
		case reflect.Bool:
			entries = append(entries, SchemaEntry{Path: path, Type: TypeBool, Default: defaultFor(fv), Visibility: vis})
		case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
			reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
			reflect.Float32, reflect.Float64:
			entries = append(entries, SchemaEntry{Path: path, Type: TypeNumber, Default: defaultFor(fv), Visibility: vis})
		default:
			return nil, fmt.Errorf("field %s: unsupported schema field kind %s", field.Name, fv.Kind())
		}
	}

	return entries, nil
}

func defaultFor(fv reflect.Value) any {
	if fv.IsZero() {
		return nil
	}
	return fv.Interface()
}

// validatePath checks the dot-separated path against the identifier rules
// required by the naming convention.
func validatePath(path string) error {
	if path == "" {
		return &UnmappablePathError{Path: path}
	}
	for _, segment := range strings.Split(path, ".") {
		if !isValidKeySegment(segment) {
			return &UnmappablePathError{Path: path}
		}
	}
	return nil
}
