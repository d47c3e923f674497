package platform

import (
	"log/slog"
	"time"

	"github.com/axsol/backoffice/pkg/core"
)

// options holds the internal configuration of the store.
type options struct {
	storage      core.Storage
	logger       *slog.Logger
	adapter      string
	readOnly     bool
	mustExist    bool
	quota        int
	fixtures     core.FixtureProvider
	fetcher      core.Fetcher
	writeThrough bool
	fetchTimeout time.Duration
	seedLimit    int
}

// Option defines a functional option for configuring the store.
type Option func(*options)

func defaultOptions() *options {
	return &options{
		adapter:      AdapterFS,
		writeThrough: true,
	}
}

// WithStorage injects a storage backend (e.g. a mock). The adapter is then skipped.
func WithStorage(s core.Storage) Option {
	return func(o *options) {
		o.storage = s
	}
}

// WithAdapter selects the storage adapter by name: "memory", "fs" or "sqlite".
// Defaults to "fs".
func WithAdapter(name string) Option {
	return func(o *options) {
		o.adapter = name
	}
}

// WithLogger sets the logger for the store and its adapters.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithReadOnly makes the fs and sqlite adapters reject writes with core.ErrReadOnly.
// Reads, including fixture fallbacks, keep working. The memory adapter refuses it.
func WithReadOnly(enabled bool) Option {
	return func(o *options) {
		o.readOnly = enabled
	}
}

// WithMustExist fails initialization when the fs directory is missing.
func WithMustExist(must bool) Option {
	return func(o *options) {
		o.mustExist = must
	}
}

// WithQuota caps the memory adapter, in bytes.
func WithQuota(bytes int) Option {
	return func(o *options) {
		o.quota = bytes
	}
}

// WithFixtures sets the fallback dataset provider.
func WithFixtures(p core.FixtureProvider) Option {
	return func(o *options) {
		o.fixtures = p
	}
}

// WithFetcher enables the asynchronous fetch fallback.
func WithFetcher(f core.Fetcher) Option {
	return func(o *options) {
		o.fetcher = f
	}
}

// WithWriteThrough controls caching of fixture reads into storage.
func WithWriteThrough(enabled bool) Option {
	return func(o *options) {
		o.writeThrough = enabled
	}
}

// WithFetchTimeout bounds background fetches.
func WithFetchTimeout(d time.Duration) Option {
	return func(o *options) {
		o.fetchTimeout = d
	}
}

// WithSeedConcurrency limits the entities seeded at once.
func WithSeedConcurrency(n int) Option {
	return func(o *options) {
		o.seedLimit = n
	}
}
