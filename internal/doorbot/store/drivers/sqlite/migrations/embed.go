// Package migrations embeds the SQL migration files so the binary can
// migrate its own database without the files present on disk.
package migrations

import "embed"

//go:embed *.sql
var Migrations embed.FS
