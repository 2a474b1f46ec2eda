package confgate

import (
	"reflect"
	"strconv"
)

// ViolationReason classifies why a value failed the serialization guard.
type ViolationReason string

const (
	// ReasonCallable marks function values.
	ReasonCallable ViolationReason = "callable"
	// ReasonUnsupportedType marks values outside the wire-safe shapes:
	// anything not reducible to primitives, sequences, and string-keyed
	// mappings (structs, channels, complex numbers, unsafe pointers).
	ReasonUnsupportedType ViolationReason = "unsupported-type"
	// ReasonCyclic marks values reachable from themselves.
	ReasonCyclic ViolationReason = "cyclic"
)

// Violation describes the first wire-safety failure found in a value. Path is
// the location inside the checked value ("" for the root, "items.3" for an
// element), not a schema path.
type Violation struct {
	Path   string
	Reason ViolationReason
}

// maxWalkDepth bounds the recursive walk as a fallback for cycles the
// identity check cannot see.
const maxWalkDepth = 1000

// CheckWire recursively validates that a value is representable in a portable
// primitive/sequence/mapping wire form. Primitives (strings, numbers, bools,
// nil) pass; slices and arrays pass if every element passes; string-keyed
// maps pass if every value passes; everything else fails. Cycles are detected
// with an identity set over the current walk stack, so acyclic sharing of the
// same map or slice does not trip the check.
//
// A nil return means the value is wire-safe.
func CheckWire(value any) *Violation {
	w := &wireWalker{stack: make(map[walkRef]struct{})}
	return w.walk(reflect.ValueOf(value), "", 0)
}

// walkRef identifies a container by data pointer for cycle detection.
type walkRef struct {
	ptr  uintptr
	kind reflect.Kind
}

type wireWalker struct {
	stack map[walkRef]struct{}
}

func (w *wireWalker) walk(v reflect.Value, path string, depth int) *Violation {
	if depth > maxWalkDepth {
		return &Violation{Path: path, Reason: ReasonCyclic}
	}
	if !v.IsValid() {
		return nil // untyped nil
	}

	switch v.Kind() {
	case reflect.String, reflect.Bool,
		reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return nil

	case reflect.Interface:
		if v.IsNil() {
			return nil
		}
		return w.walk(v.Elem(), path, depth+1)

	case reflect.Pointer:
		if v.IsNil() {
			return nil
		}
		ref := walkRef{ptr: v.Pointer(), kind: reflect.Pointer}
		if _, seen := w.stack[ref]; seen {
			return &Violation{Path: path, Reason: ReasonCyclic}
		}
		w.stack[ref] = struct{}{}
		defer delete(w.stack, ref)
		return w.walk(v.Elem(), path, depth+1)

	case reflect.Slice:
		if v.IsNil() {
			return nil
		}
		ref := walkRef{ptr: v.Pointer(), kind: reflect.Slice}
		if _, seen := w.stack[ref]; seen {
			return &Violation{Path: path, Reason: ReasonCyclic}
		}
		w.stack[ref] = struct{}{}
		defer delete(w.stack, ref)
		for i := 0; i < v.Len(); i++ {
			if viol := w.walk(v.Index(i), joinPath(path, strconv.Itoa(i)), depth+1); viol != nil {
				return viol
			}
		}
		return nil

	case reflect.Array:
		for i := 0; i < v.Len(); i++ {
			if viol := w.walk(v.Index(i), joinPath(path, strconv.Itoa(i)), depth+1); viol != nil {
				return viol
			}
		}
		return nil

	case reflect.Map:
		if v.IsNil() {
			return nil
		}
		if v.Type().Key().Kind() != reflect.String {
			return &Violation{Path: path, Reason: ReasonUnsupportedType}
		}
		ref := walkRef{ptr: v.Pointer(), kind: reflect.Map}
		if _, seen := w.stack[ref]; seen {
			return &Violation{Path: path, Reason: ReasonCyclic}
		}
		w.stack[ref] = struct{}{}
		defer delete(w.stack, ref)
		iter := v.MapRange()
		for iter.Next() {
			if viol := w.walk(iter.Value(), joinPath(path, iter.Key().String()), depth+1); viol != nil {
				return viol
			}
		}
		return nil

	case reflect.Func:
		return &Violation{Path: path, Reason: ReasonCallable}

	default:
		// Chan, Struct, Complex64/128, UnsafePointer, Uintptr: opaque,
		// not reducible to the wire shapes.
		return &Violation{Path: path, Reason: ReasonUnsupportedType}
	}
}

func joinPath(prefix, segment string) string {
	if prefix == "" {
		return segment
	}
	if segment == "" {
		return prefix
	}
	return prefix + "." + segment
}
