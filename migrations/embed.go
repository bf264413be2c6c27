// Package migrations содержит SQL-миграции схемы panel-хранилища
package migrations

import "embed"

//go:embed postgres/*.sql
var PostgresMigrations embed.FS
