package confgate

import (
	"encoding/json"
	"reflect"
	"sort"
	"strconv"

	"github.com/rs/zerolog"
)

// ResolvedConfig is the immutable product of one resolution pass: every
// declared value key mapped to its coerced value. The version is stamped by
// the engine when the pass is published.
type ResolvedConfig struct {
	version uint64
	values  map[string]any
}

// Version returns the monotonic pass number.
func (rc *ResolvedConfig) Version() uint64 {
	return rc.version
}

// Value returns the resolved value for a full path.
func (rc *ResolvedConfig) Value(path string) (any, bool) {
	v, ok := rc.values[path]
	return v, ok
}

// Values returns a copy of the full resolved map.
func (rc *ResolvedConfig) Values() map[string]any {
	out := make(map[string]any, len(rc.values))
	for k, v := range rc.values {
		out[k] = v
	}
	return out
}

// Resolve runs one resolution pass: for every declared value key the highest
// ranked source holding it wins, falling back to the schema default, and the
// winning raw value is coerced to the declared type. The pass is total — the
// first MissingRequiredKeyError or TypeMismatchError aborts it and nothing is
// published. Resolution is deterministic: identical schema and source
// contents yield an identical value map.
//
// Keys present in an enumerable source but absent from the schema are never
// surfaced; they are dropped with a warning so arbitrary source data cannot
// leak into config values. Freezes the schema on first use.
func Resolve(schema *Schema, sources []Source, logger zerolog.Logger) (*ResolvedConfig, error) {
	schema.Freeze()

	ordered := make([]Source, len(sources))
	copy(ordered, sources)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].Rank() > ordered[j].Rank()
	})

	values := make(map[string]any)

	for _, entry := range schema.Entries() {
		if entry.Type == TypeNested {
			continue
		}

		raw, found := readFirst(ordered, entry.Path)
		if !found {
			if entry.Default == nil {
				return nil, &MissingRequiredKeyError{Path: entry.Path}
			}
			raw = entry.Default
		}

		coerced, err := coerceValue(entry.Path, entry.Type, raw)
		if err != nil {
			return nil, err
		}
		values[entry.Path] = coerced
	}

	sweepUnknownKeys(schema, ordered, logger)

	return &ResolvedConfig{values: values}, nil
}

// readFirst returns the first non-absent value in descending rank order.
func readFirst(ordered []Source, path string) (any, bool) {
	for _, src := range ordered {
		if raw, ok := src.Read(path); ok {
			return raw, true
		}
	}
	return nil, false
}

// sweepUnknownKeys warns about source keys the schema does not declare.
func sweepUnknownKeys(schema *Schema, sources []Source, logger zerolog.Logger) {
	for _, src := range sources {
		enum, ok := src.(enumerable)
		if !ok {
			continue
		}
		for _, path := range enum.Paths() {
			if _, declared := schema.Lookup(path); !declared {
				logger.Warn().
					Str("origin", src.Origin()).
					Str("path", path).
					Msg("dropping unknown configuration key")
			}
		}
	}
}

// coerceValue converts a raw source value to the declared type using standard
// lexical rules. Error messages carry the raw value's type, not its content.
func coerceValue(path string, t Type, raw any) (any, error) {
	mismatch := func() error {
		return &TypeMismatchError{Path: path, Expected: t, Got: reflect.TypeOf(raw).String()}
	}
	if raw == nil {
		return nil, &TypeMismatchError{Path: path, Expected: t, Got: "nil"}
	}

	switch t {
	case TypeString:
		switch v := raw.(type) {
		case string:
			return v, nil
		case []byte:
			return string(v), nil
		default:
			return nil, mismatch()
		}

	case TypeNumber:
		switch v := raw.(type) {
		case string:
			f, err := strconv.ParseFloat(v, 64)
			if err != nil {
				return nil, mismatch()
			}
			return f, nil
		case json.Number:
			f, err := v.Float64()
			if err != nil {
				return nil, mismatch()
			}
			return f, nil
		case float64:
			return v, nil
		}
		rv := reflect.ValueOf(raw)
		switch rv.Kind() {
		case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
			return float64(rv.Int()), nil
		case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
			return float64(rv.Uint()), nil
		case reflect.Float32:
			return rv.Float(), nil
		default:
			return nil, mismatch()
		}

	case TypeBool:
		switch v := raw.(type) {
		case bool:
			return v, nil
		case string:
			b, err := strconv.ParseBool(v)
			if err != nil {
				return nil, mismatch()
			}
			return b, nil
		default:
			return nil, mismatch()
		}

	default:
		return nil, mismatch()
	}
}
