package main

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"landingCms/internal/modules/homepage/infrastructure"
	"landingCms/internal/modules/homepage/infrastructure/migrations"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply the homepage database migrations",
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, closer, err := bootstrap()
		if err != nil {
			return err
		}
		defer closer.Close()
		if cfg.Database.URL == "" {
			return errors.New("DATABASE_URL is not set")
		}

		ctx := cmd.Context()
		pool, err := infrastructure.NewConnectionPool(ctx, cfg.Database.URL, cfg.Database.Timeout)
		if err != nil {
			return err
		}
		defer pool.Close()

		if err := migrations.RunMigrationsUp(ctx, pool); err != nil {
			return err
		}
		version, dirty, err := migrations.CurrentVersion(pool)
		if err != nil {
			return fmt.Errorf("read migration version: %w", err)
		}
		slog.Info("homepage schema ready", slog.Uint64("version", uint64(version)), slog.Bool("dirty", dirty))
		return nil
	},
}
