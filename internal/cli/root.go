// Package cli implements the ingestor commands using Cobra.
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/user/listing-ingestor/pkg/config"
	"github.com/user/listing-ingestor/pkg/logger"
)

var envFile string

var rootCmd = &cobra.Command{
	Use:   "ingestor",
	Short: "Turn third-party listing pages into structured, image-complete records",
	Long: `ingestor fetches a real-estate listing page, extracts structured fields with a
language model, copies the selected photos into object storage and returns the
assembled record.

Usage:
  ingestor serve
  ingestor extract <url>
  ingestor migrate`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "Optional .env file; environment variables take precedence")
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// loadRuntime reads configuration and builds the logger every command shares.
func loadRuntime() (*config.Config, *zap.Logger, error) {
	cfg, err := config.Load(envFile)
	if err != nil {
		return nil, nil, fmt.Errorf("could not load config: %w", err)
	}
	log, err := logger.New(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		return nil, nil, fmt.Errorf("could not build logger: %w", err)
	}
	return cfg, log, nil
}
