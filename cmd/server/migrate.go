package main

import (
	"context"
	"fmt"
	"time"

	"jobmatch/internal/app"
	dbpostgres "jobmatch/internal/database/postgres"

	"github.com/spf13/cobra"
)

var (
	migrateCmd = &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending database migrations",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withDatabase(cmd.Context(), false)
		},
	}

	seedCmd = &cobra.Command{
		Use:   "seed",
		Short: "Apply migrations and load the default skill vocabulary",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withDatabase(cmd.Context(), true)
		},
	}
)

func init() {
	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(seedCmd)
}

func withDatabase(ctx context.Context, seed bool) error {
	cfg, log, err := setup()
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	if ctx == nil {
		ctx = context.Background()
	}
	ctx, cancel := context.WithTimeout(ctx, 5*time.Minute)
	defer cancel()

	db, err := dbpostgres.Connect(ctx, cfg.Database)
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}
	defer db.Close()

	if err := app.Migrate(ctx, db, cfg.Database); err != nil {
		return err
	}
	log.Info("migrations applied")

	if !seed {
		return nil
	}
	if err := app.Seed(ctx, db); err != nil {
		return err
	}
	log.Info("seed data loaded")
	return nil
}
