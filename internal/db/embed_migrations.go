package db

import "embed"

// MigrationFS holds the SQL migrations applied at startup.
//
//go:embed migrations/*.sql
var MigrationFS embed.FS
