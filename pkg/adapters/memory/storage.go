// Package memory provides a process-local storage backend, the analogue of browser
// local storage. It is the default for tests and ephemeral CLI sessions.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/aretw0/introspection"

	"github.com/axsol/backoffice/pkg/core"
)

// Storage keeps entity collections in a map guarded by a RWMutex.
type Storage struct {
	mu    sync.RWMutex
	data  map[string][]byte
	quota int
	used  int
}

// Option configures a Storage.
type Option func(*Storage)

// WithQuota caps the total size (key plus value bytes) the storage accepts. Writes
// that would exceed it fail with core.ErrQuotaExceeded. Zero means unlimited.
func WithQuota(bytes int) Option {
	return func(s *Storage) { s.quota = bytes }
}

// New creates an empty in-memory storage.
func New(opts ...Option) *Storage {
	s := &Storage{data: make(map[string][]byte)}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Get implements core.Storage.
func (s *Storage) Get(_ context.Context, key string) ([]byte, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.data[key]
	if !ok {
		return nil, false, nil
	}
	return append([]byte(nil), v...), true, nil
}

// Set implements core.Storage.
func (s *Storage) Set(_ context.Context, key string, value []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	used := s.used + len(key) + len(value)
	if old, ok := s.data[key]; ok {
		used -= len(key) + len(old)
	}
	if s.quota > 0 && used > s.quota {
		return fmt.Errorf("set %q (%d bytes, quota %d): %w", key, len(value), s.quota, core.ErrQuotaExceeded)
	}
	s.data[key] = append([]byte(nil), value...)
	s.used = used
	return nil
}

// Remove implements core.Storage.
func (s *Storage) Remove(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if old, ok := s.data[key]; ok {
		s.used -= len(key) + len(old)
		delete(s.data, key)
	}
	return nil
}

// Keys implements core.Enumerable.
func (s *Storage) Keys(_ context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	keys := make([]string, 0, len(s.data))
	for k := range s.data {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys, nil
}

// Clear implements core.Clearable.
func (s *Storage) Clear(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data = make(map[string][]byte)
	s.used = 0
	return nil
}

// State is the introspection snapshot of a Storage.
type State struct {
	Keys  int `json:"keys"`
	Used  int `json:"used_bytes"`
	Quota int `json:"quota_bytes,omitempty"`
}

// State implements introspection.Introspectable.
func (s *Storage) State() any {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return State{Keys: len(s.data), Used: s.used, Quota: s.quota}
}

// ComponentType implements introspection.Component.
func (s *Storage) ComponentType() string {
	return "memory"
}

var (
	_ core.Storage                 = (*Storage)(nil)
	_ core.Enumerable              = (*Storage)(nil)
	_ core.Clearable               = (*Storage)(nil)
	_ introspection.Introspectable = (*Storage)(nil)
	_ introspection.Component      = (*Storage)(nil)
)
