package migrations

import "embed"

// MigrationFiles holds one goose directory per database driver.
//
//go:embed postgres/*.sql sqlite/*.sql mysql/*.sql
var MigrationFiles embed.FS
