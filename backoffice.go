package backoffice

import (
	"context"
	"log/slog"
	"time"

	"github.com/axsol/backoffice/internal/config"
	"github.com/axsol/backoffice/internal/platform"
	"github.com/axsol/backoffice/pkg/core"
	"github.com/axsol/backoffice/pkg/fixtures"
	"github.com/axsol/backoffice/pkg/typed"
)

// --- Types ---

// Store is the entity store.
type Store = core.Store

// Record is a single untyped entity record.
type Record = core.Record

// Collection is a typed view over one entity collection.
type Collection[T any] = typed.Collection[T]

// Model is a decoded record of a Collection.
type Model[T any] = typed.Model[T]

// --- Errors ---

var (
	ErrCorrupt       = core.ErrCorrupt
	ErrUnavailable   = core.ErrUnavailable
	ErrFetch         = core.ErrFetch
	ErrNotFound      = core.ErrNotFound
	ErrInvalidEntity = core.ErrInvalidEntity
	ErrReadOnly      = core.ErrReadOnly
	ErrQuotaExceeded = core.ErrQuotaExceeded
)

// --- Configuration ---

// Option defines a functional option for configuring the store.
type Option = platform.Option

// WithAdapter selects the storage adapter by name ("memory", "fs", "sqlite").
func WithAdapter(name string) Option {
	return platform.WithAdapter(name)
}

// WithStorage injects a custom storage backend.
func WithStorage(s core.Storage) Option {
	return platform.WithStorage(s)
}

// WithLogger sets the logger for the store.
func WithLogger(logger *slog.Logger) Option {
	return platform.WithLogger(logger)
}

// WithReadOnly rejects writes on the fs adapter.
func WithReadOnly(enabled bool) Option {
	return platform.WithReadOnly(enabled)
}

// WithMustExist requires the fs directory to exist already.
func WithMustExist(must bool) Option {
	return platform.WithMustExist(must)
}

// WithQuota caps the memory adapter, in bytes.
func WithQuota(bytes int) Option {
	return platform.WithQuota(bytes)
}

// WithFixtures sets the fallback dataset provider.
func WithFixtures(p core.FixtureProvider) Option {
	return platform.WithFixtures(p)
}

// WithBuiltinFixtures falls back to the bundled clients, projects and contracts.
func WithBuiltinFixtures() Option {
	return platform.WithFixtures(fixtures.Builtin())
}

// WithFetcher enables the asynchronous fetch fallback.
func WithFetcher(f core.Fetcher) Option {
	return platform.WithFetcher(f)
}

// WithWriteThrough controls caching of fixture reads into storage.
func WithWriteThrough(enabled bool) Option {
	return platform.WithWriteThrough(enabled)
}

// WithFetchTimeout bounds background fetches.
func WithFetchTimeout(d time.Duration) Option {
	return platform.WithFetchTimeout(d)
}

// --- Factory ---

// New opens the storage at uri and returns a store over it.
func New(ctx context.Context, uri string, opts ...Option) (*Store, error) {
	return platform.New(ctx, uri, opts...)
}

// Open loads the configuration (the YAML file at configPath when non-empty, then
// BACKOFFICE_* variables) and returns the store it describes.
func Open(ctx context.Context, configPath string, logger *slog.Logger) (*Store, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	return platform.FromConfig(ctx, cfg, logger)
}

// NewCollection returns a typed view of entity in store.
func NewCollection[T any](store *Store, entity string) *Collection[T] {
	return typed.NewCollection[T](store, entity)
}

// FindRoot looks upwards from startDir for a directory holding backoffice.yaml or a
// .backoffice storage directory.
func FindRoot(startDir string) (string, error) {
	return platform.FindRoot(startDir)
}
