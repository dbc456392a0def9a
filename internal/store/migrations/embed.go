package migrations

import "embed"

// FS contains the embedded SQLite migrations of the game journal.
//
//go:embed *.sql
var FS embed.FS
