package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/salesinsight/dwhetl/internal/db"
	"github.com/salesinsight/dwhetl/internal/logging"
	"github.com/salesinsight/dwhetl/internal/store"
)

var (
	initCalendarFrom string
	initCalendarTo   string
	initDropExisting bool
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize the staging and warehouse schemas",
	Long: `Initialize the staging tables, the warehouse star schema and the
calendar dimension. The calendar is populated with one row per day over
the given range; the load phase only accepts order dates that fall inside
it.

Example:
  dwhetl init --connection "postgres://..."
  dwhetl init --calendar-from 2015-01-01 --calendar-to 2035-12-31`,
	RunE: runInit,
}

func init() {
	initCmd.Flags().StringVar(&initCalendarFrom, "calendar-from", "2015-01-01",
		"first day of the calendar dimension (YYYY-MM-DD)")
	initCmd.Flags().StringVar(&initCalendarTo, "calendar-to", "2035-12-31",
		"last day of the calendar dimension (YYYY-MM-DD)")
	initCmd.Flags().BoolVar(&initDropExisting, "drop-existing", false,
		"drop existing staging and warehouse schemas first")
}

func runInit(cmd *cobra.Command, args []string) error {
	if err := cfg.Validate(); err != nil {
		return err
	}

	from, err := time.Parse("2006-01-02", initCalendarFrom)
	if err != nil {
		return fmt.Errorf("invalid --calendar-from: %w", err)
	}
	to, err := time.Parse("2006-01-02", initCalendarTo)
	if err != nil {
		return fmt.Errorf("invalid --calendar-to: %w", err)
	}
	if to.Before(from) {
		return fmt.Errorf("--calendar-to is before --calendar-from")
	}

	ctx := context.Background()

	warehousePool, err := db.Connect(ctx, cfg.Connection)
	if err != nil {
		return fmt.Errorf("failed to connect to warehouse: %w", err)
	}
	defer warehousePool.Close()

	stagingPool := warehousePool
	if cfg.StagingConnection != "" && cfg.StagingConnection != cfg.Connection {
		stagingPool, err = db.Connect(ctx, cfg.StagingConnection)
		if err != nil {
			return fmt.Errorf("failed to connect to staging: %w", err)
		}
		defer stagingPool.Close()
	}

	if initDropExisting {
		logging.Info().Msg("Dropping existing schemas")
		if err := store.DropWarehouseSchema(ctx, warehousePool); err != nil {
			return fmt.Errorf("failed to drop warehouse schema: %w", err)
		}
		if err := store.DropStagingSchema(ctx, stagingPool); err != nil {
			return fmt.Errorf("failed to drop staging schema: %w", err)
		}
	}

	logging.Info().Msg("Creating staging schema")
	if err := store.CreateStagingSchema(ctx, stagingPool); err != nil {
		return fmt.Errorf("failed to create staging schema: %w", err)
	}

	logging.Info().Msg("Creating warehouse schema")
	if err := store.CreateWarehouseSchema(ctx, warehousePool); err != nil {
		return fmt.Errorf("failed to create warehouse schema: %w", err)
	}

	logging.Info().
		Str("from", initCalendarFrom).
		Str("to", initCalendarTo).
		Msg("Populating calendar dimension")
	if err := store.PopulateCalendar(ctx, warehousePool, from, to); err != nil {
		return fmt.Errorf("failed to populate calendar: %w", err)
	}

	logging.Info().Msg("Warehouse initialization complete")
	return nil
}
