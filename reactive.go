package confgate

import "sync"

// This file implements the two state categories the boundary rules
// distinguish: transient bindings, which live on the server and may hold
// anything, and store values, which are shared application state and must be
// wire-safe at the moment they are published.

// Binding is a transient cell for reusable logic-local state. It may hold any
// value, including callables and non-serializable handles; it is never passed
// through the serialization guard and is invisible to snapshots.
type Binding[T any] struct {
	mu    sync.RWMutex
	value T
}

// NewBinding creates a transient cell holding initial.
func NewBinding[T any](initial T) *Binding[T] {
	return &Binding[T]{value: initial}
}

// Get returns the current value.
func (b *Binding[T]) Get() T {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.value
}

// Set replaces the current value.
func (b *Binding[T]) Set(value T) {
	b.mu.Lock()
	b.value = value
	b.mu.Unlock()
}

// Store is a keyed container for persisted, shared application state. Every
// published value must pass the serialization guard; a rejected publish
// leaves the previous value untouched.
type Store struct {
	mu      sync.RWMutex
	values  map[string]any
	derived []*Derived
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{values: make(map[string]any)}
}

// Publish sets the value for a key after checking wire-safety. On violation
// it returns a BoundaryViolationError and the store keeps its prior value
// (fail-closed). A successful publish invalidates derived accessors that
// depend on the key.
func (s *Store) Publish(key string, value any) error {
	if viol := CheckWire(value); viol != nil {
		return &BoundaryViolationError{
			Path:   joinPath(key, viol.Path),
			Reason: viol.Reason,
		}
	}

	s.mu.Lock()
	s.values[key] = value
	subscribers := make([]*Derived, len(s.derived))
	copy(subscribers, s.derived)
	s.mu.Unlock()

	for _, d := range subscribers {
		d.sourceChanged(key)
	}
	return nil
}

// Get returns the current value for a key.
func (s *Store) Get(key string) (any, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.values[key]
	return v, ok
}

// View is the read surface handed to derived compute functions. In implicit
// mode it records every key actually read, forming the dependency log for
// invalidation.
type View struct {
	store *Store
	log   map[string]struct{}
}

// Get reads a store key through the view.
func (v View) Get(key string) (any, bool) {
	if v.log != nil {
		v.log[key] = struct{}{}
	}
	return v.store.Get(key)
}

// DerivedOption configures a derived accessor.
type DerivedOption func(*Derived)

// DependsOn declares the explicit dependency set: the accessor re-evaluates
// only when one of the named keys changes.
func DependsOn(keys ...string) DerivedOption {
	return func(d *Derived) {
		for _, key := range keys {
			d.deps[key] = struct{}{}
		}
	}
}

// Implicit switches the accessor to implicit tracking: it re-evaluates when
// any key it read during its last evaluation changes. Explicit is the
// default, since implicit tracking can over-invalidate in surprising ways.
func Implicit() DerivedOption {
	return func(d *Derived) {
		d.implicit = true
	}
}

// Derived is a computed accessor over the store. It stays live: consumers
// read through Value instead of copying a store value into a cell of their
// own, so values that must track their source are never frozen at a point in
// time.
type Derived struct {
	store    *Store
	compute  func(View) any
	implicit bool

	mu     sync.Mutex
	deps   map[string]struct{} // declared keys, or the last read log
	cached any
	valid  bool
}

// Derive registers a computed accessor on the store. Without options the
// accessor is explicit with an empty dependency set and evaluates once.
func (s *Store) Derive(compute func(View) any, opts ...DerivedOption) *Derived {
	d := &Derived{
		store:   s,
		compute: compute,
		deps:    make(map[string]struct{}),
	}
	for _, opt := range opts {
		opt(d)
	}

	s.mu.Lock()
	s.derived = append(s.derived, d)
	s.mu.Unlock()
	return d
}

// Value returns the accessor's current value, re-evaluating if a tracked
// dependency changed since the last evaluation.
func (d *Derived) Value() any {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.valid {
		return d.cached
	}

	view := View{store: d.store}
	if d.implicit {
		view.log = make(map[string]struct{})
	}

	d.cached = d.compute(view)
	d.valid = true
	if d.implicit {
		d.deps = view.log
	}
	return d.cached
}

// sourceChanged invalidates the cache when a tracked key changes.
func (d *Derived) sourceChanged(key string) {
	d.mu.Lock()
	if _, tracked := d.deps[key]; tracked {
		d.valid = false
	}
	d.mu.Unlock()
}
