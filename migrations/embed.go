// Package migrations embeds the per-driver schema migrations.
package migrations

import "embed"

// FS holds sqlite/NNN_name.sql and postgres/NNN_name.sql.
//
//go:embed sqlite/*.sql postgres/*.sql
var FS embed.FS
