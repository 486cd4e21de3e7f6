// Package migrations embeds the goose migrations for the local sqlite
// database that backs durable client storage.
package migrations

import "embed"

//go:embed *.sql
var Migrations embed.FS
