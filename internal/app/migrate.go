package app

import (
	"context"
	"fmt"

	"jobmatch/internal/config"
	"jobmatch/internal/database"
	"jobmatch/internal/database/migration"
	"jobmatch/internal/database/seeder"
	"jobmatch/migrations"
)

// Migrate applies pending schema migrations. DB_MIGRATIONS_DIR overrides the
// embedded set.
func Migrate(ctx context.Context, db database.DB, cfg config.DatabaseConfig) error {
	r := migration.Runner{Dir: cfg.MigrationsDir}
	if r.Dir == "" {
		r.FS = migrations.FS
	}
	if err := r.Run(ctx, db.SQLDB()); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	return nil
}

// Seed loads the default reference data.
func Seed(ctx context.Context, db database.DB) error {
	return seeder.Runner{Seeders: seeder.Defaults()}.Run(ctx, db)
}
