package migrations

import "embed"

// FS contains the embedded SQLite migrations of the entity storage.
//
//go:embed *.sql
var FS embed.FS
