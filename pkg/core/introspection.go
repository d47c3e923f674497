package core

import (
	"github.com/aretw0/introspection"
)

// StoreState exposes internal state for observability.
type StoreState struct {
	StorageType    string `json:"storage_type"`
	Fixtures       bool   `json:"fixtures"`
	Fetcher        bool   `json:"fetcher"`
	WriteThrough   bool   `json:"write_through"`
	PendingFetches int    `json:"pending_fetches"`
}

// State implements introspection.Introspectable.
func (s *Store) State() any {
	s.mu.Lock()
	pending := len(s.inflight)
	s.mu.Unlock()

	storageType := "unknown"
	if s.storage != nil {
		storageType = "storage"
		if comp, ok := s.storage.(introspection.Component); ok {
			storageType = comp.ComponentType()
		}
	}

	return StoreState{
		StorageType:    storageType,
		Fixtures:       s.fixtures != nil,
		Fetcher:        s.fetcher != nil,
		WriteThrough:   s.writeThrough,
		PendingFetches: pending,
	}
}

// ComponentType implements introspection.Component.
func (s *Store) ComponentType() string {
	return "store"
}

var _ introspection.Introspectable = (*Store)(nil)
var _ introspection.Component = (*Store)(nil)
