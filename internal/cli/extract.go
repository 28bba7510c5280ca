package cli

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/user/listing-ingestor/internal/entity"
	"github.com/user/listing-ingestor/pkg/metrics"
	"github.com/user/listing-ingestor/pkg/utils"
)

var (
	flagForce  bool
	flagPretty bool
)

var extractCmd = &cobra.Command{
	Use:   "extract <url>",
	Short: "Ingest one listing URL and print the result as JSON",
	Long: `Extract runs the full ingestion pipeline once for the given listing URL:
fetch, sanitize, model extraction, validation, image persistence and assembly.

Examples:
  ingestor extract https://example.com/listing/1
  ingestor extract https://example.com/listing/1 --force --pretty`,
	Args: cobra.ExactArgs(1),
	RunE: runExtract,
}

func init() {
	rootCmd.AddCommand(extractCmd)

	extractCmd.Flags().BoolVar(&flagForce, "force", false, "Ignore and refresh any cached result")
	extractCmd.Flags().BoolVar(&flagPretty, "pretty", false, "Indent the JSON output")
}

func runExtract(cmd *cobra.Command, args []string) error {
	sourceURL := args[0]
	if !utils.IsHTTPURL(sourceURL) {
		return fmt.Errorf("invalid URL %q: must be an absolute http or https URL", sourceURL)
	}

	cfg, logger, err := loadRuntime()
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	metrics.Init()

	ctx, cancel := context.WithTimeout(cmd.Context(), cfg.RequestTimeout())
	defer cancel()

	svc, err := buildServices(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer svc.Close()

	result, err := svc.ingestor.Ingest(ctx, entity.ExtractionRequest{SourceURL: sourceURL, Force: flagForce})
	if err != nil {
		return err
	}

	enc := json.NewEncoder(cmd.OutOrStdout())
	if flagPretty {
		enc.SetIndent("", "  ")
	}
	return enc.Encode(result)
}
