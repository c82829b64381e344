package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/salesinsight/dwhetl/internal/logging"
)

var onceCmd = &cobra.Command{
	Use:   "once",
	Short: "Run a single ETL cycle and exit",
	Long: `Run exactly one ETL cycle (cleanup when --full-refresh is set,
then extract, transform and load) against an initialized warehouse, then
exit. Useful for cron-driven schedules and for verifying a configuration.

Example:
  dwhetl once --csv-path ./data --connection "postgres://..."`,
	RunE: runOnce,
}

func runOnce(cmd *cobra.Command, args []string) error {
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

	if err := orch.RunCycle(ctx); err != nil {
		return fmt.Errorf("cycle failed: %w", err)
	}

	logging.Info().Msg("ETL cycle complete")
	return nil
}
