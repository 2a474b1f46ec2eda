package confgate

import (
	"errors"
	"fmt"
)

// Sentinel errors for accessor and lifecycle misuse.
var (
	// ErrSchemaFrozen is returned when registration is attempted after the
	// schema has been used for a resolution pass.
	ErrSchemaFrozen = errors.New("schema is frozen")

	// ErrUnknownPath is returned by typed accessors for paths the schema does
	// not declare.
	ErrUnknownPath = errors.New("path not declared in schema")
)

// DuplicateKeyError reports a path registered twice. Registration-time and
// fatal: startup must abort.
type DuplicateKeyError struct {
	Path string
}

func (e *DuplicateKeyError) Error() string {
	return fmt.Sprintf("duplicate schema key %q", e.Path)
}

// VisibilityConflictError reports a public entry declared under a private
// parent. Registration-time and fatal.
type VisibilityConflictError struct {
	Path   string
	Parent string
}

func (e *VisibilityConflictError) Error() string {
	return fmt.Sprintf("public key %q declared under private parent %q", e.Path, e.Parent)
}

// UnmappablePathError reports a path that cannot participate in the
// environment naming convention, either because it contains characters
// outside [A-Za-z0-9_.] or because its derived name collides with another
// registered path. Registration-time and fatal.
type UnmappablePathError struct {
	Path     string
	Conflict string // other path producing the same external name, if any
}

func (e *UnmappablePathError) Error() string {
	if e.Conflict != "" {
		return fmt.Sprintf("path %q maps to the same external name as %q", e.Path, e.Conflict)
	}
	return fmt.Sprintf("path %q contains characters outside the naming convention", e.Path)
}

// MissingRequiredKeyError reports a declared key with no default that no
// source provided. Resolution-time: the pass fails and publishes nothing.
type MissingRequiredKeyError struct {
	Path string
}

func (e *MissingRequiredKeyError) Error() string {
	return fmt.Sprintf("no source provides required key %q and no default is declared", e.Path)
}

// TypeMismatchError reports a raw value that could not be coerced to the
// declared type. Resolution-time: the pass fails and publishes nothing.
// Got carries the Go type name of the raw value, never its content.
type TypeMismatchError struct {
	Path     string
	Expected Type
	Got      string
}

func (e *TypeMismatchError) Error() string {
	return fmt.Sprintf("key %q: cannot coerce %s to %s", e.Path, e.Got, e.Expected)
}

// BoundaryViolationError reports a value that failed the serialization guard
// on its way across the trust boundary, either during public view derivation
// or on a store publish. Recoverable: the previous snapshot or store value
// stays in place. The message deliberately names the path and reason only;
// the offending value may have come from a private source.
type BoundaryViolationError struct {
	Path   string
	Reason ViolationReason
}

func (e *BoundaryViolationError) Error() string {
	return fmt.Sprintf("value at %q is not wire-safe: %s", e.Path, e.Reason)
}
