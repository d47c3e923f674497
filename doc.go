// Package backoffice is the composition root of the back-office data layer.
//
// It connects the entity store (pkg/core) with the storage adapters (memory, a
// directory of JSON files, SQLite) and the fixture providers using functional options.
//
// Reads resolve from persisted storage first, then from fixture data, which is
// written through to storage on first use. Writes replace the whole collection.
//
// Usage:
//
//	store, err := backoffice.New(ctx, ".backoffice",
//		backoffice.WithBuiltinFixtures(),
//		backoffice.WithLogger(logger),
//	)
//
//	clients := store.GetAll(ctx, "clients")
//	saved := store.Save(ctx, "clients", backoffice.Record{"nombre": "Nuevo"})
package backoffice
