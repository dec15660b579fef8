// Package migrations embeds the goose migrations for the client keystore.
package migrations

import "embed"

//go:embed *.sql
var Files embed.FS
