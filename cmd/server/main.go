package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"landingCms/internal/config"
	"landingCms/internal/shared/logging"
)

var rootCmd = &cobra.Command{
	Use:           "homepage",
	Short:         "Homepage configuration store",
	Long:          `Serves the homepage configuration, replicates edits to every backend and keeps live views in sync.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.AddCommand(serveCmd, migrateCmd, resolveCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

// bootstrap loads .env and the configuration, then installs the default logger.
func bootstrap() (*config.Config, io.Closer, error) {
	if err := godotenv.Overload(); err != nil && !errors.Is(err, os.ErrNotExist) {
		fmt.Fprintf(os.Stderr, ".env load warning: %v\n", err)
	}
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("config load: %w", err)
	}

	closer, logger, err := logging.Setup(logging.Config{
		Level:     cfg.Logging.Level,
		Format:    cfg.Logging.Format,
		Directory: cfg.Logging.Directory,
		AddSource: true,
	}, time.Now())
	if err != nil {
		return nil, nil, fmt.Errorf("logging setup: %w", err)
	}
	slog.SetDefault(logger)
	slog.Info("logging initialized",
		slog.String("directory", cfg.Logging.Directory),
		slog.String("level", cfg.Logging.Level),
		slog.String("format", cfg.Logging.Format),
	)
	return cfg, closer, nil
}
