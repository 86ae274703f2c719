package main

import (
	"context"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/marketlens/insight-engine/internal/config"
	"github.com/marketlens/insight-engine/internal/logging"
	"github.com/marketlens/insight-engine/internal/services"
	"github.com/marketlens/insight-engine/internal/storage"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "analyzer",
		Short: "Generate a metric forecast insight from a report corpus",
		Long: `analyzer runs one pipeline pass over a directory of dated report
documents: extracts the configured metrics, forecasts each series, computes
trend projections and the cross-metric correlation matrix, and persists the
resulting insight record under the data directory.`,
		RunE: run,
	}

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(cmd *cobra.Command, args []string) error {
	// Optional .env for local development; absence is fine.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	logger := logging.New(cfg.LogLevel, cfg.Environment)

	store, err := storage.NewArtifactStore(cfg.Storage.DataDir, logger)
	if err != nil {
		return err
	}

	svc := services.NewInsightService(cfg, store, logger)
	insight, err := svc.GenerateInsight(context.Background())
	if err != nil {
		return fmt.Errorf("insight generation failed: %w", err)
	}

	fmt.Printf("insight %s: %d documents, %d forecasts, %d trends, %d correlated metrics\n",
		insight.ID, insight.Documents, len(insight.Forecasts), len(insight.Trends),
		len(insight.Correlations.Metrics))
	return nil
}
