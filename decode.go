package confgate

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/mitchellh/mapstructure"
)

// Scan decodes a subtree of the full resolved view into target, which must
// be a non-nil pointer. basePath "" decodes the whole view. Field names map
// through the `conf` tag. Server-side only, like Get.
func (s *Snapshot) Scan(basePath string, target any) error {
	nested := make(map[string]any)
	for path, value := range s.resolved.values {
		setNestedValue(nested, path, value)
	}
	return decodeSubtree(nested, basePath, target)
}

// ScanPublic decodes a subtree of the public view into target. Values absent
// from the public view simply leave target fields at their zero values, so a
// struct populated this way can be forwarded across the boundary.
func (s *Snapshot) ScanPublic(basePath string, target any) error {
	return decodeSubtree(s.public, basePath, target)
}

// decodeSubtree is the single authoritative decode path; both Scan variants
// delegate here.
func decodeSubtree(nested map[string]any, basePath string, target any) error {
	rv := reflect.ValueOf(target)
	if rv.Kind() != reflect.Pointer || rv.IsNil() {
		return fmt.Errorf("scan target must be a non-nil pointer, got %T", target)
	}

	section := navigateToPath(nested, basePath)
	sectionMap, ok := section.(map[string]any)
	if !ok {
		if section == nil {
			sectionMap = map[string]any{}
		} else {
			return fmt.Errorf("path %q does not refer to a nested table", basePath)
		}
	}

	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           target,
		TagName:          "conf",
		WeaklyTypedInput: true,
		DecodeHook: mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.StringToSliceHookFunc(","),
		),
	})
	if err != nil {
		return fmt.Errorf("failed to create decoder: %w", err)
	}

	if err := decoder.Decode(sectionMap); err != nil {
		return fmt.Errorf("failed to decode subtree %q: %w", basePath, err)
	}
	return nil
}

// navigateToPath walks a nested map by dot path, returning nil when the path
// does not exist.
func navigateToPath(nested map[string]any, basePath string) any {
	if basePath == "" {
		return nested
	}

	current := any(nested)
	for _, segment := range strings.Split(basePath, ".") {
		currentMap, ok := current.(map[string]any)
		if !ok {
			return nil
		}
		value, exists := currentMap[segment]
		if !exists {
			return nil
		}
		current = value
	}
	return current
}
