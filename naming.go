package confgate

import "strings"

// The environment naming convention: each path segment is upper-cased, the
// segments are joined with underscores, and the result is prefixed with a
// fixed namespace token. Path "service.baseurl" under namespace "APP" becomes
// "APP_SERVICE_BASEURL".
//
// The convention is deterministic but not injective over arbitrary strings
// (underscores inside segments are indistinguishable from segment joins), so
// the schema enforces injectivity at registration: two paths deriving the
// same external name fail with UnmappablePathError. Inversion goes through
// the schema's name index, which makes the round trip exact for every
// registered path.

// EnvName derives the external environment variable name for a path.
func EnvName(namespace, path string) string {
	name := canonicalEnvName(path)
	if namespace == "" {
		return name
	}
	return strings.ToUpper(namespace) + "_" + name
}

// canonicalEnvName is the namespace-free part of the external name.
func canonicalEnvName(path string) string {
	return strings.ToUpper(strings.ReplaceAll(path, ".", "_"))
}

// PathFromEnv inverts EnvName for paths registered in the schema. It returns
// false when the name does not carry the namespace prefix or no registered
// path derives it.
func (s *Schema) PathFromEnv(namespace, name string) (string, bool) {
	if namespace != "" {
		prefix := strings.ToUpper(namespace) + "_"
		if !strings.HasPrefix(name, prefix) {
			return "", false
		}
		name = strings.TrimPrefix(name, prefix)
	}
	return s.pathFromEnv(name)
}
