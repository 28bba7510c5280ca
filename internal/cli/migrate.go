package cli

import (
	"context"
	"errors"

	"github.com/spf13/cobra"

	"github.com/user/listing-ingestor/internal/adapter/postgres"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply the ingestion log database migrations",
	Args:  cobra.NoArgs,
	RunE:  runMigrate,
}

func init() {
	rootCmd.AddCommand(migrateCmd)
}

func runMigrate(cmd *cobra.Command, _ []string) error {
	cfg, logger, err := loadRuntime()
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	if cfg.PostgresURL == "" {
		return errors.New("POSTGRES_URL is required")
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), connectTimeout)
	defer cancel()
	pool, err := postgres.NewPool(ctx, cfg.PostgresURL)
	if err != nil {
		return err
	}
	defer pool.Close()

	return postgres.RunMigrations(pool, logger)
}
