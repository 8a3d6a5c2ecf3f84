package postgres

import (
	"embed"

	pgpkg "github.com/PremHer/kasvarealty-sub001/pkg/postgres"
)

//go:embed migrations/*.sql
var migrationFS embed.FS

// Migrate applies the embedded schema migrations.
func Migrate(dsn string) error {
	return pgpkg.RunMigrations(dsn, migrationFS, "migrations")
}

// MigrateDown rolls the schema back. Tests only.
func MigrateDown(dsn string) error {
	return pgpkg.RunMigrationsDown(dsn, migrationFS, "migrations")
}
