package migrations

import "embed"

// FS contiene las migraciones SQLite del árbol de categorías.
//
//go:embed *.sql
var FS embed.FS
