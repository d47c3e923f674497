package platform

import (
	"context"
	"log/slog"
	"net/http"
	"os"

	"github.com/axsol/backoffice/internal/config"
	"github.com/axsol/backoffice/pkg/core"
	"github.com/axsol/backoffice/pkg/fixtures"
)

// New opens the storage and builds the store over it.
//
//	store, err := platform.New(ctx, ".backoffice", platform.WithFixtures(fixtures.Builtin()))
func New(ctx context.Context, uri string, opts ...Option) (*core.Store, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(o)
	}
	storage, err := initStorage(ctx, uri, o)
	if err != nil {
		return nil, err
	}

	storeOpts := []core.StoreOption{
		core.WithLogger(o.logger),
		core.WithWriteThrough(o.writeThrough),
		core.WithFetchTimeout(o.fetchTimeout),
	}
	if o.fixtures != nil {
		storeOpts = append(storeOpts, core.WithFixtures(o.fixtures))
	}
	if o.fetcher != nil {
		storeOpts = append(storeOpts, core.WithFetcher(o.fetcher))
	}
	if o.seedLimit > 0 {
		storeOpts = append(storeOpts, core.WithSeedConcurrency(o.seedLimit))
	}
	return core.NewStore(storage, storeOpts...), nil
}

// Options translates a loaded configuration into store options. Fixture
// precedence: the fixtures directory, then the builtin dataset. The fetcher is the
// HTTP origin when configured, else the fixtures directory.
func Options(cfg config.Config, logger *slog.Logger) []Option {
	opts := []Option{
		WithAdapter(cfg.Storage.Backend),
		WithReadOnly(cfg.Storage.ReadOnly),
		WithQuota(cfg.Storage.Quota),
		WithWriteThrough(cfg.Fixtures.WriteThrough),
		WithFetchTimeout(cfg.Fixtures.Timeout),
		WithLogger(logger),
	}

	var chain fixtures.Chain
	var dir *fixtures.Dir
	if cfg.Fixtures.Dir != "" {
		dir = fixtures.NewDir(os.DirFS(cfg.Fixtures.Dir))
		chain = append(chain, dir)
	}
	if cfg.Fixtures.Builtin {
		chain = append(chain, fixtures.Builtin())
	}
	if len(chain) > 0 {
		opts = append(opts, WithFixtures(chain))
	}

	switch {
	case cfg.Fixtures.BaseURL != "":
		client := &http.Client{Timeout: cfg.Fixtures.Timeout}
		opts = append(opts, WithFetcher(fixtures.NewHTTP(cfg.Fixtures.BaseURL,
			fixtures.WithClient(client),
			fixtures.WithDataPath(cfg.Fixtures.DataPath),
		)))
	case dir != nil:
		opts = append(opts, WithFetcher(dir))
	}
	return opts
}

// FromConfig builds the store described by cfg.
func FromConfig(ctx context.Context, cfg config.Config, logger *slog.Logger) (*core.Store, error) {
	return New(ctx, cfg.Storage.Path, Options(cfg, logger)...)
}
