package lazy

import (
	"fmt"
	"maps"
	"slices"
)

// Property holds an explicit value and a convention. The explicit value wins
// when set; the convention is the default. Both are providers and are only
// read on Get.
//
// Properties are not safe for concurrent use. They are configured first and
// read afterwards.
type Property[T any] struct {
	name           string
	explicit       Provider[T]
	convention     Provider[T]
	finalizeOnRead bool
	final          bool
	value          T
}

// NewProperty creates an empty property. name is used in error messages.
func NewProperty[T any](name string) *Property[T] {
	return &Property[T]{name: name}
}

func (p *Property[T]) Name() string { return p.name }

// Convention sets the default used when no explicit value is present. It has
// no effect once the property is final.
func (p *Property[T]) Convention(c Provider[T]) *Property[T] {
	if !p.final {
		p.convention = c
	}
	return p
}

// FinalizeValueOnRead makes the first successful Get freeze the property.
func (p *Property[T]) FinalizeValueOnRead() *Property[T] {
	p.finalizeOnRead = true
	return p
}

// Set stores an explicit value.
func (p *Property[T]) Set(v T) error {
	return p.SetProvider(Of(v))
}

// SetProvider stores an explicit deferred value.
func (p *Property[T]) SetProvider(v Provider[T]) error {
	if p.final {
		return fmt.Errorf("setting %s: %w", p.name, ErrFinalized)
	}
	p.explicit = v
	return nil
}

// Get resolves the property. A final property returns its frozen value.
func (p *Property[T]) Get() (T, error) {
	if p.final {
		return p.value, nil
	}

	var (
		v   T
		err error
	)
	switch {
	case p.explicit != nil:
		v, err = p.explicit.Get()
	case p.convention != nil:
		v, err = p.convention.Get()
	default:
		err = &MissingValueError{Name: p.name}
	}
	if err != nil {
		var zero T
		return zero, fmt.Errorf("resolving %s: %w", p.name, err)
	}

	if p.finalizeOnRead {
		p.final = true
		p.value = v
		p.explicit, p.convention = nil, nil
	}
	return v, nil
}

// MapProperty is a string-keyed collection of providers that can be frozen.
type MapProperty[V any] struct {
	name    string
	entries map[string]Provider[V]
	final   bool
}

// NewMapProperty creates an empty map property.
func NewMapProperty[V any](name string) *MapProperty[V] {
	return &MapProperty[V]{name: name, entries: make(map[string]Provider[V])}
}

// Put stores p under key, replacing any previous entry.
func (m *MapProperty[V]) Put(key string, p Provider[V]) error {
	if m.final {
		return fmt.Errorf("putting %s[%q]: %w", m.name, key, ErrFinalized)
	}
	m.entries[key] = p
	return nil
}

// Lookup returns the provider stored under key.
func (m *MapProperty[V]) Lookup(key string) (Provider[V], bool) {
	p, ok := m.entries[key]
	return p, ok
}

// Entries returns a copy of the stored providers.
func (m *MapProperty[V]) Entries() map[string]Provider[V] {
	return maps.Clone(m.entries)
}

// Keys returns the stored keys in sorted order.
func (m *MapProperty[V]) Keys() []string {
	return slices.Sorted(maps.Keys(m.entries))
}

// Len returns the number of entries.
func (m *MapProperty[V]) Len() int { return len(m.entries) }

// Finalize rejects further puts.
func (m *MapProperty[V]) Finalize() { m.final = true }
