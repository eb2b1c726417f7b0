// Package migrations embeds the postgres schema migrations applied by
// golang-migrate.
package migrations

import "embed"

// FS holds every *.sql migration, named NNNNNN_title.{up,down}.sql.
//
//go:embed *.sql
var FS embed.FS
