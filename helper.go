package confgate

import "strings"

// flattenMap converts a nested map[string]any to a flat map keyed by
// dot-notation paths.
func flattenMap(nested map[string]any, prefix string) map[string]any {
	flat := make(map[string]any)

	for key, value := range nested {
		path := key
		if prefix != "" {
			path = prefix + "." + key
		}

		if sub, isMap := value.(map[string]any); isMap {
			for subPath, subValue := range flattenMap(sub, path) {
				flat[subPath] = subValue
			}
		} else {
			flat[path] = value
		}
	}

	return flat
}

// setNestedValue sets a value in a nested map using a dot-notation path,
// creating intermediate maps as needed. A non-map intermediate is replaced.
func setNestedValue(nested map[string]any, path string, value any) {
	segments := strings.Split(path, ".")
	current := nested

	for i := 0; i < len(segments)-1; i++ {
		segment := segments[i]
		next, exists := current[segment]
		if !exists {
			child := make(map[string]any)
			current[segment] = child
			current = child
			continue
		}
		if nextMap, isMap := next.(map[string]any); isMap {
			current = nextMap
		} else {
			child := make(map[string]any)
			current[segment] = child
			current = child
		}
	}

	current[segments[len(segments)-1]] = value
}

// copyNested deep-copies a nested map so callers can hand out views without
// exposing shared mutable state. Only maps are copied structurally; resolved
// leaf values are already immutable primitives.
func copyNested(nested map[string]any) map[string]any {
	out := make(map[string]any, len(nested))
	for key, value := range nested {
		if sub, isMap := value.(map[string]any); isMap {
			out[key] = copyNested(sub)
		} else {
			out[key] = value
		}
	}
	return out
}

// isValidKeySegment checks a single path segment against the characters the
// environment naming convention can represent losslessly: [A-Za-z0-9_],
// starting with a letter or underscore.
func isValidKeySegment(s string) bool {
	if len(s) == 0 {
		return false
	}

	for i, r := range s {
		isLetter := (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z')
		isDigit := r >= '0' && r <= '9'
		if i == 0 && !isLetter && r != '_' {
			return false
		}
		if !isLetter && !isDigit && r != '_' {
			return false
		}
	}
	return true
}
