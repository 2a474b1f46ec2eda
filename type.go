package confgate

import "fmt"

// Typed accessors over the full resolved view. Resolution already coerced
// every value to its declared type, so these are cheap assertions with
// uniform errors rather than conversion layers.

// String retrieves a string value by path.
func (s *Snapshot) String(path string) (string, error) {
	val, ok := s.Get(path)
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrUnknownPath, path)
	}
	str, ok := val.(string)
	if !ok {
		return "", fmt.Errorf("path %s holds %T, not a string", path, val)
	}
	return str, nil
}

// Number retrieves a numeric value by path.
func (s *Snapshot) Number(path string) (float64, error) {
	val, ok := s.Get(path)
	if !ok {
		return 0, fmt.Errorf("%w: %s", ErrUnknownPath, path)
	}
	f, ok := val.(float64)
	if !ok {
		return 0, fmt.Errorf("path %s holds %T, not a number", path, val)
	}
	return f, nil
}

// Int retrieves a numeric value by path, truncated to int64.
func (s *Snapshot) Int(path string) (int64, error) {
	f, err := s.Number(path)
	if err != nil {
		return 0, err
	}
	return int64(f), nil
}

// Bool retrieves a boolean value by path.
func (s *Snapshot) Bool(path string) (bool, error) {
	val, ok := s.Get(path)
	if !ok {
		return false, fmt.Errorf("%w: %s", ErrUnknownPath, path)
	}
	b, ok := val.(bool)
	if !ok {
		return false, fmt.Errorf("path %s holds %T, not a boolean", path, val)
	}
	return b, nil
}
