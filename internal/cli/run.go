package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/salesinsight/dwhetl/internal/db"
	"github.com/salesinsight/dwhetl/internal/logging"
	"github.com/salesinsight/dwhetl/internal/worker"
)

var (
	runInterval    int
	runCSVPath     string
	runSources     []string
	runFullRefresh bool
	runBatchSize   int
	runAPIBaseURL  string
	runAPIKey      string
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the ETL loop against an initialized warehouse",
	Long: `Run the perpetual ETL loop against a warehouse that was previously
initialized with the 'init' command. Each cycle extracts from the enabled
sources, validates into staging, versions the dimensions and appends sales
facts. The loop continues until interrupted with Ctrl+C.

Example:
  dwhetl run --csv-path ./data --interval 60 --connection "postgres://..."
  dwhetl run --sources csv,api --api-base-url http://source.example/api`,
	RunE: runRun,
}

func init() {
	runCmd.Flags().IntVar(&runInterval, "interval", 0,
		"minutes between ETL cycles")
	runCmd.Flags().StringVar(&runCSVPath, "csv-path", "",
		"directory containing the source CSV files")
	runCmd.Flags().StringSliceVar(&runSources, "sources", nil,
		"enabled source kinds (csv, api)")
	runCmd.Flags().BoolVar(&runFullRefresh, "full-refresh", false,
		"wipe warehouse and staging data at the start of every cycle")
	runCmd.Flags().IntVar(&runBatchSize, "batch-size", 0,
		"fact rows per bulk append")
	runCmd.Flags().StringVar(&runAPIBaseURL, "api-base-url", "",
		"base URL of the REST source")
	runCmd.Flags().StringVar(&runAPIKey, "api-key", "",
		"API key sent to the REST source")

	onceCmd.Flags().AddFlagSet(runCmd.Flags())
}

func runRun(cmd *cobra.Command, args []string) error {
	applyRunFlags()

	if err := cfg.ValidateRun(); err != nil {
		return err
	}

	ctx := context.Background()
	orch, closePools, err := buildOrchestrator(ctx)
	if err != nil {
		return err
	}
	defer closePools()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	// Handle shutdown signals
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigChan
		logging.Info().
			Str("signal", sig.String()).
			Msg("Received shutdown signal")
		cancel()
	}()

	if err := orch.Run(ctx); err != nil {
		if ctx.Err() != nil {
			logging.Info().Msg("ETL worker stopped")
			return nil
		}
		return fmt.Errorf("worker error: %w", err)
	}

	return nil
}

func applyRunFlags() {
	if runInterval > 0 {
		cfg.ETL.IntervalMinutes = runInterval
	}
	if runCSVPath != "" {
		cfg.ETL.CSVPath = runCSVPath
	}
	if len(runSources) > 0 {
		cfg.ETL.Sources = runSources
	}
	if runFullRefresh {
		cfg.ETL.FullRefresh = true
	}
	if runBatchSize > 0 {
		cfg.ETL.BatchSize = runBatchSize
	}
	if runAPIBaseURL != "" {
		cfg.API.BaseURL = runAPIBaseURL
	}
	if runAPIKey != "" {
		cfg.API.Key = runAPIKey
	}
}

// buildOrchestrator connects the staging and warehouse pools and wires
// them into a worker. The returned func closes whatever pools were
// opened; when staging and warehouse share a connection string a single
// pool serves both.
func buildOrchestrator(ctx context.Context) (*worker.Orchestrator, func(), error) {
	warehousePool, err := db.Connect(ctx, cfg.Connection)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to connect to warehouse: %w", err)
	}

	stagingPool := warehousePool
	if cfg.StagingConnection != "" && cfg.StagingConnection != cfg.Connection {
		stagingPool, err = db.Connect(ctx, cfg.StagingConnection)
		if err != nil {
			warehousePool.Close()
			return nil, nil, fmt.Errorf("failed to connect to staging: %w", err)
		}
	}

	closePools := func() {
		if stagingPool != warehousePool {
			stagingPool.Close()
		}
		warehousePool.Close()
	}

	orch := worker.New(workerConfig(), stagingPool, warehousePool)
	return orch, closePools, nil
}

func workerConfig() worker.Config {
	return worker.Config{
		Interval:    time.Duration(cfg.ETL.IntervalMinutes) * time.Minute,
		FullRefresh: cfg.ETL.FullRefresh,
		BatchSize:   cfg.ETL.BatchSize,
		BulkTimeout: time.Duration(cfg.ETL.BulkTimeoutSeconds) * time.Second,
		Sources:     cfg.ETL.Sources,
		CSVPath:     cfg.ETL.CSVPath,
		APIBaseURL:  cfg.API.BaseURL,
		APIKey:      cfg.API.Key,
	}
}
