// Package migrations embeds the SQL schema and applies it at API start.
package migrations

import "embed"

// Files holds every .sql file of this directory; they are applied in name order (001, 002, ...).
//
//go:embed *.sql
var Files embed.FS
