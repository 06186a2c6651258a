package migrations

import "embed"

// FS contains embedded SQLite migrations for stat storage.
//
//go:embed *.sql
var FS embed.FS
