package migrations

import "embed"

// FS contiene las migraciones SQL de PostgreSQL.
//
//go:embed *.sql
var FS embed.FS
