// Package migrations embeds the schema the data backend must expose.
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS
