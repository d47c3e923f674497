// Package fs stores entity collections as one JSON file per entity under a directory,
// written atomically. The directory can be watched for external changes.
package fs

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/axsol/backoffice/pkg/core"
)

// ErrInvalidKey is returned for keys that would escape the storage directory.
var ErrInvalidKey = errors.New("invalid storage key")

// Config holds the configuration of the filesystem storage.
type Config struct {
	Path      string
	ReadOnly  bool // Reject writes with core.ErrReadOnly.
	MustExist bool // Fail Initialize instead of creating Path.
	Logger    *slog.Logger
}

// Storage implements core.Storage on top of a directory.
type Storage struct {
	Path   string
	config Config

	mu            sync.RWMutex
	watcherActive bool
	writes        int
}

// NewStorage creates a filesystem storage. Call Initialize before use.
func NewStorage(config Config) *Storage {
	if config.Logger == nil {
		config.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Storage{Path: config.Path, config: config}
}

// Initialize ensures the storage directory exists.
func (s *Storage) Initialize(ctx context.Context) error {
	if s.config.MustExist || s.config.ReadOnly {
		info, err := os.Stat(s.Path)
		if os.IsNotExist(err) {
			return fmt.Errorf("storage path does not exist: %s", s.Path)
		}
		if err != nil {
			return fmt.Errorf("stat storage path: %w", err)
		}
		if !info.IsDir() {
			return fmt.Errorf("storage path is not a directory: %s", s.Path)
		}
		return nil
	}
	if err := os.MkdirAll(s.Path, 0o755); err != nil {
		return fmt.Errorf("failed to create storage directory: %w", err)
	}
	return nil
}

func (s *Storage) filename(key string) (string, error) {
	if key == "" || strings.ContainsAny(key, `/\`) || strings.Contains(key, "..") {
		return "", fmt.Errorf("%w: %q", ErrInvalidKey, key)
	}
	return filepath.Join(s.Path, key+fileExt), nil
}

// Get implements core.Storage.
func (s *Storage) Get(ctx context.Context, key string) ([]byte, bool, error) {
	name, err := s.filename(key)
	if err != nil {
		return nil, false, err
	}
	data, err := os.ReadFile(name)
	if errors.Is(err, os.ErrNotExist) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("read %s: %w", name, err)
	}
	return data, true, nil
}

// Set implements core.Storage.
func (s *Storage) Set(ctx context.Context, key string, value []byte) error {
	if s.config.ReadOnly {
		return fmt.Errorf("set %q: %w", key, core.ErrReadOnly)
	}
	name, err := s.filename(key)
	if err != nil {
		return err
	}
	if err := writeFileAtomic(name, value, filePerm); err != nil {
		return err
	}
	s.mu.Lock()
	s.writes++
	s.mu.Unlock()
	s.config.Logger.Debug("collection written", "key", key, "bytes", len(value))
	return nil
}

// Remove implements core.Storage.
func (s *Storage) Remove(ctx context.Context, key string) error {
	if s.config.ReadOnly {
		return fmt.Errorf("remove %q: %w", key, core.ErrReadOnly)
	}
	name, err := s.filename(key)
	if err != nil {
		return err
	}
	if err := os.Remove(name); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove %s: %w", name, err)
	}
	return nil
}

// Keys implements core.Enumerable.
func (s *Storage) Keys(ctx context.Context) ([]string, error) {
	entries, err := os.ReadDir(s.Path)
	if errors.Is(err, os.ErrNotExist) {
		return []string{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", s.Path, err)
	}
	keys := make([]string, 0, len(entries))
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || isTempFile(name) || filepath.Ext(name) != fileExt {
			continue
		}
		keys = append(keys, strings.TrimSuffix(name, fileExt))
	}
	sort.Strings(keys)
	return keys, nil
}

// Clear implements core.Clearable by removing every collection file.
func (s *Storage) Clear(ctx context.Context) error {
	keys, err := s.Keys(ctx)
	if err != nil {
		return err
	}
	for _, key := range keys {
		if err := s.Remove(ctx, key); err != nil {
			return err
		}
	}
	return nil
}

// keyOf maps a path inside the storage directory back to its key.
func (s *Storage) keyOf(path string) (string, bool) {
	if filepath.Dir(path) != filepath.Clean(s.Path) {
		return "", false
	}
	base := filepath.Base(path)
	if isTempFile(base) || filepath.Ext(base) != fileExt {
		return "", false
	}
	return strings.TrimSuffix(base, fileExt), true
}

var (
	_ core.Storage    = (*Storage)(nil)
	_ core.Enumerable = (*Storage)(nil)
	_ core.Clearable  = (*Storage)(nil)
)
