package core

import (
	"context"
	"sort"
)

// Storage is the persisted key-value backend. Keys are entity names; values are
// JSON-encoded record arrays. Adhering to this interface keeps the store independent
// of the underlying mechanism (memory, files, SQLite).
//
// Implementations must be safe for concurrent use: Seed and background fetches call
// them from several goroutines.
type Storage interface {
	// Get returns the stored value and whether the key exists.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set replaces the value stored under key.
	Set(ctx context.Context, key string, value []byte) error

	// Remove deletes key. Removing a missing key is not an error.
	Remove(ctx context.Context, key string) error
}

// Enumerable is implemented by backends that can list their keys.
type Enumerable interface {
	Keys(ctx context.Context) ([]string, error)
}

// Clearable is implemented by backends that can drop every key at once.
type Clearable interface {
	Clear(ctx context.Context) error
}

// FixtureProvider supplies the read-only baseline dataset of an entity.
type FixtureProvider interface {
	// Load returns fresh copies of the fixture records and whether the entity has a fixture.
	Load(ctx context.Context, entity string) ([]Record, bool, error)
}

// Fetcher loads an entity dataset from a slower source (files, HTTP) and backs the
// asynchronous fallback of the read path.
type Fetcher interface {
	Fetch(ctx context.Context, entity string) ([]Record, error)
}

const probeKey = "__backoffice_probe__"

// Available reports whether the backend accepts a write and a removal.
func Available(ctx context.Context, s Storage) bool {
	if s == nil {
		return false
	}
	if err := s.Set(ctx, probeKey, []byte(probeKey)); err != nil {
		return false
	}
	return s.Remove(ctx, probeKey) == nil
}

// UsedSpace approximates the bytes held by the backend as the sum of key and value
// lengths. Backends that cannot enumerate keys report zero.
func UsedSpace(ctx context.Context, s Storage) (int, error) {
	keys, err := Keys(ctx, s)
	if err != nil {
		return 0, err
	}
	total := 0
	for _, key := range keys {
		value, ok, err := s.Get(ctx, key)
		if err != nil {
			return 0, err
		}
		if ok {
			total += len(key) + len(value)
		}
	}
	return total, nil
}

// Keys lists the backend keys in sorted order, or nothing for backends that are not
// Enumerable.
func Keys(ctx context.Context, s Storage) ([]string, error) {
	e, ok := s.(Enumerable)
	if !ok {
		return nil, nil
	}
	keys, err := e.Keys(ctx)
	if err != nil {
		return nil, err
	}
	sort.Strings(keys)
	return keys, nil
}
