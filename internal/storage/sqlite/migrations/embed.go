// Package migrations embeds SQLite schema migrations for the LifeLines store.
package migrations

import "embed"

// FS contains embedded SQLite migrations.
//
//go:embed *.sql
var FS embed.FS
