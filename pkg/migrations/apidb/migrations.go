// Package apidb holds the bun migrations for the API database.
package apidb

import "github.com/uptrace/bun/migrate"

// Migrations is the ordered migration set, registered by the numbered files.
var Migrations = migrate.NewMigrations()
