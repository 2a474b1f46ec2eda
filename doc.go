// Package confgate resolves layered application configuration and partitions
// the result across the server-to-client trust boundary.
//
// A Schema declares every recognized key with its type, optional default, and
// visibility (public or private). Sources supply raw values with an integer
// precedence rank; the resolver merges them into an immutable, versioned
// snapshot. The partitioner derives a public-only view from the snapshot and
// runs every exposed value through a serialization guard, so nothing that is
// private, callable, cyclic, or otherwise non-portable can ever cross the
// boundary.
//
// Features:
//   - Multiple value sources with explicit precedence ranks
//   - Environment variable mapping with a bijective naming convention
//   - TOML, YAML, and JSON file sources, pre-loaded at construction
//   - Lexical type coercion against the declared schema
//   - Strict public/private partition verified against the schema
//   - Recursive wire-safety checking with cycle detection
//   - Immutable versioned snapshots with atomic replace-on-reload
//   - A small reactive layer (bindings, guarded store, derived accessors)
//
// Quick start:
//
//	eng, err := confgate.NewBuilder().
//	    WithSchema(
//	        confgate.SchemaEntry{Path: "service.baseurl", Type: confgate.TypeString, Default: "http://localhost", Visibility: confgate.Public},
//	        confgate.SchemaEntry{Path: "apikey", Type: confgate.TypeString, Visibility: confgate.Private},
//	    ).
//	    WithEnvNamespace("APP").
//	    Build()
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	snap := eng.Current()
//	url, _ := snap.Get("service.baseurl")
//	public := snap.Public() // never contains "apikey"
//
// Precedence is rank-based: for each key the highest-ranked source holding a
// value wins, falling back to the schema default. A key with no value and no
// default fails the whole pass; a failed reload leaves the previous snapshot
// in place.
package confgate
