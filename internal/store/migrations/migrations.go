// Package migrations embeds the SQL schema migrations applied via goose.
//
// The forward order is significant: base tables first, then row-level
// security, then timestamp tracking. Down migrations reverse each step.
package migrations

import "embed"

//go:embed *.sql
var Migrations embed.FS
