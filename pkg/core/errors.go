package core

import (
	"errors"
	"fmt"
)

// Failure kinds reported by the strict Store API. Match them with errors.Is.
var (
	// ErrCorrupt marks persisted data that could not be (de)serialized.
	ErrCorrupt = errors.New("corrupt entity data")
	// ErrUnavailable marks a storage backend that could not be read or written.
	ErrUnavailable = errors.New("storage unavailable")
	// ErrFetch marks a fixture resource that could not be loaded.
	ErrFetch = errors.New("fixture fetch failed")
	// ErrNotFound is returned by Find when no record carries the requested id.
	ErrNotFound = errors.New("record not found")
	// ErrInvalidEntity is returned for an empty entity name.
	ErrInvalidEntity = errors.New("invalid entity name")
)

// Backend conditions. Both count as ErrUnavailable.
var (
	ErrReadOnly      = fmt.Errorf("storage is in read-only mode: %w", ErrUnavailable)
	ErrQuotaExceeded = fmt.Errorf("storage quota exceeded: %w", ErrUnavailable)
)
