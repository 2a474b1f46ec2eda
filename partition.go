package confgate

// derivePublicView computes the boundary-safe projection of a resolved pass.
// Inclusion is decided by iterating the visibility-annotated schema, never by
// inspecting values: a private value identical to a public one is still
// excluded, and a private leaf under a public parent is simply omitted from
// the nested structure.
//
// Every included value is checked by the serialization guard. The first
// violation aborts the whole view with a BoundaryViolationError so a broken
// snapshot is never partially exposed; the caller keeps its previous snapshot
// current (fail-closed).
//
// Returns the nested public view and its flat path-keyed form.
func derivePublicView(schema *Schema, rc *ResolvedConfig) (map[string]any, map[string]any, error) {
	nested := make(map[string]any)
	flat := make(map[string]any)

	for _, entry := range schema.Entries() {
		if entry.Type == TypeNested || entry.Visibility != Public {
			continue
		}

		value, ok := rc.Value(entry.Path)
		if !ok {
			continue
		}

		if viol := CheckWire(value); viol != nil {
			return nil, nil, &BoundaryViolationError{
				Path:   joinPath(entry.Path, viol.Path),
				Reason: viol.Reason,
			}
		}

		flat[entry.Path] = value
		setNestedValue(nested, entry.Path, value)
	}

	return nested, flat, nil
}
