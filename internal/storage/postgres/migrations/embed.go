package migrations

import "embed"

// FS contains embedded goose migrations for PostgreSQL snapshot storage.
//
//go:embed *.sql
var FS embed.FS
