package sqlite

import "embed"

// Migrations are applied with sqlite.MigrateUp at startup. The wrapper reads
// the embedded FS at its root, so the .sql files live next to this package.
//
//go:embed *.sql
var Migrations embed.FS
