package sketchbot

import "embed"

// MigrationsFS holds the PostgreSQL schema for the key-value store.
//
//go:embed migrations/*.sql
var MigrationsFS embed.FS
