package platform

import (
	"context"
	"fmt"

	"github.com/axsol/backoffice/pkg/adapters/fs"
	"github.com/axsol/backoffice/pkg/adapters/memory"
	"github.com/axsol/backoffice/pkg/adapters/sqlite"
	"github.com/axsol/backoffice/pkg/core"
)

// Adapter names accepted by WithAdapter.
const (
	AdapterMemory = "memory"
	AdapterFS     = "fs"
	AdapterSQLite = "sqlite"
)

// Init opens the storage backend selected by the options. The uri is adapter-specific:
// a directory for "fs", a database file for "sqlite", ignored for "memory".
func Init(ctx context.Context, uri string, opts ...Option) (core.Storage, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(o)
	}
	return initStorage(ctx, uri, o)
}

func initStorage(ctx context.Context, uri string, o *options) (core.Storage, error) {
	if o.storage != nil {
		return o.storage, nil
	}

	switch o.adapter {
	case AdapterMemory:
		if o.readOnly {
			return nil, fmt.Errorf("memory adapter: read-only mode is not supported")
		}
		return memory.New(memory.WithQuota(o.quota)), nil
	case AdapterFS:
		return initFS(ctx, uri, o)
	case AdapterSQLite:
		s, err := sqlite.Open(ctx, uri, sqlite.WithReadOnly(o.readOnly))
		if err != nil {
			return nil, err
		}
		return s, nil
	default:
		return nil, fmt.Errorf("unknown adapter: %s", o.adapter)
	}
}

// initFS handles the initialization logic for the filesystem adapter.
func initFS(ctx context.Context, path string, o *options) (core.Storage, error) {
	if path == "" {
		return nil, fmt.Errorf("fs adapter: path is required")
	}
	if o.readOnly && o.logger != nil {
		o.logger.Debug("running in READ-ONLY mode", "path", path)
	}
	s := fs.NewStorage(fs.Config{
		Path:      path,
		ReadOnly:  o.readOnly,
		MustExist: o.mustExist,
		Logger:    o.logger,
	})
	if err := s.Initialize(ctx); err != nil {
		return nil, err
	}
	return s, nil
}
