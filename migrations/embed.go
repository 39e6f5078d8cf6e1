// Package migrations embeds the SQL schema of the recommendation history.
package migrations

import "embed"

// FS holds the embedded SQL migration files.
//
//go:embed *.sql
var FS embed.FS
