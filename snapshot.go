package confgate

import (
	"fmt"
	"io"
	"sort"
	"sync"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
)

// Snapshot is one immutable, versioned resolution result together with its
// derived public view. Snapshots are owned by the engine; consumers receive
// read-only references and may keep using an old snapshot after a reload has
// published a newer one.
type Snapshot struct {
	resolved   *ResolvedConfig
	public     map[string]any // nested public view
	publicFlat map[string]any
	createdAt  time.Time

	jsonOnce sync.Once
	jsonDoc  []byte
	jsonErr  error
}

func newSnapshot(resolved *ResolvedConfig, public, publicFlat map[string]any) *Snapshot {
	return &Snapshot{
		resolved:   resolved,
		public:     public,
		publicFlat: publicFlat,
		createdAt:  time.Now(),
	}
}

// Version returns the monotonic pass number of this snapshot.
func (s *Snapshot) Version() uint64 {
	return s.resolved.Version()
}

// CreatedAt returns when the snapshot was published.
func (s *Snapshot) CreatedAt() time.Time {
	return s.createdAt
}

// Get is the full accessor: it returns the resolved value for any declared
// path, public or private. It is meant for server-side callers only; code
// that forwards values across the trust boundary must use the Public
// accessors instead.
func (s *Snapshot) Get(path string) (any, bool) {
	return s.resolved.Value(path)
}

// Values returns a copy of the full resolved map. Server-side only, like Get.
func (s *Snapshot) Values() map[string]any {
	return s.resolved.Values()
}

// Public returns a deep copy of the nested public view. The copy is safe to
// hand to any downstream consumer, including one that forwards it across the
// trust boundary.
func (s *Snapshot) Public() map[string]any {
	return copyNested(s.public)
}

// PublicFlat returns a copy of the public view keyed by full dot paths.
func (s *Snapshot) PublicFlat() map[string]any {
	out := make(map[string]any, len(s.publicFlat))
	for k, v := range s.publicFlat {
		out[k] = v
	}
	return out
}

// PublicJSON renders the public view as a JSON document. The document is
// built once per snapshot, in deterministic path order.
func (s *Snapshot) PublicJSON() ([]byte, error) {
	s.jsonOnce.Do(func() {
		paths := make([]string, 0, len(s.publicFlat))
		for p := range s.publicFlat {
			paths = append(paths, p)
		}
		sort.Strings(paths)

		doc := []byte("{}")
		for _, path := range paths {
			var err error
			doc, err = sjson.SetBytes(doc, path, s.publicFlat[path])
			if err != nil {
				s.jsonErr = fmt.Errorf("failed to encode public value at %q: %w", path, err)
				return
			}
		}
		s.jsonDoc = doc
	})
	return s.jsonDoc, s.jsonErr
}

// PublicLookup queries the public JSON document by dot path. It returns false
// for private paths and undeclared paths alike.
func (s *Snapshot) PublicLookup(path string) (any, bool) {
	doc, err := s.PublicJSON()
	if err != nil {
		return nil, false
	}
	result := gjson.GetBytes(doc, path)
	if !result.Exists() {
		return nil, false
	}
	return result.Value(), true
}

// ExportTOML writes the public view as TOML, for debug dumps and scaffolding
// config files. Only the public view is exported, so private values cannot
// end up in a dump.
func (s *Snapshot) ExportTOML(w io.Writer) error {
	if err := toml.NewEncoder(w).Encode(s.public); err != nil {
		return fmt.Errorf("failed to encode public view as TOML: %w", err)
	}
	return nil
}
