//-------------------------------------------------------------------------
//
// dwhetl - Sales & Inventory Warehouse ETL
//
//-------------------------------------------------------------------------

// Package worker drives the ETL cycle: cleanup, extract, transform and
// load, repeated on a fixed interval. One cycle runs at a time; a failed
// phase aborts the cycle and the loop re-arms for the next tick.
package worker

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/salesinsight/dwhetl/internal/logging"
	"github.com/salesinsight/dwhetl/internal/store"
)

// Config holds the orchestrator settings.
type Config struct {
	// Interval is the wait between the end of one cycle and the start
	// of the next.
	Interval time.Duration

	// FullRefresh runs the cleanup phase at the start of every cycle,
	// rebuilding the warehouse from scratch.
	FullRefresh bool

	// BatchSize caps fact rows per bulk append.
	BatchSize int

	// BulkTimeout bounds each bulk operation.
	BulkTimeout time.Duration

	// Sources lists the enabled raw source kinds (csv, api).
	Sources []string

	// CSVPath is the directory holding the source CSV files.
	CSVPath string

	// APIBaseURL and APIKey configure the REST source.
	APIBaseURL string
	APIKey     string
}

// Orchestrator owns the perpetual ETL loop. Store handles, extractors and
// the loader are constructed fresh for every cycle; only the database
// pools live across cycles.
type Orchestrator struct {
	cfg          Config
	newStaging   func() store.Staging
	newWarehouse func() store.Warehouse
}

// New creates an Orchestrator over the given database handles.
func New(cfg Config, stagingDB, warehouseDB store.DB) *Orchestrator {
	return &Orchestrator{
		cfg: cfg,
		newStaging: func() store.Staging {
			return store.NewPgStaging(stagingDB)
		},
		newWarehouse: func() store.Warehouse {
			w := store.NewPgWarehouse(warehouseDB)
			w.SetBulkTimeout(cfg.BulkTimeout)
			return w
		},
	}
}

// Run blocks, executing one ETL cycle per interval until ctx is cancelled.
// Every cycle starts with an interruptible wait, including the first. A
// cycle failure is logged and the loop re-arms; only cancellation stops
// the worker.
func (o *Orchestrator) Run(ctx context.Context) error {
	logging.Info().
		Dur("interval", o.cfg.Interval).
		Bool("full_refresh", o.cfg.FullRefresh).
		Msg("ETL worker started")

	timer := time.NewTimer(o.cfg.Interval)
	defer timer.Stop()

	for {
		logging.Info().Dur("interval", o.cfg.Interval).Msg("Waiting for next cycle")

		select {
		case <-ctx.Done():
			logging.Info().Msg("ETL worker stopped")
			return ctx.Err()
		case <-timer.C:
		}

		if err := o.RunCycle(ctx); err != nil {
			logging.Error().Err(err).Msg("ETL cycle failed")
		}

		timer.Reset(o.cfg.Interval)
	}
}

// RunCycle executes one full ETL cycle: cleanup (when configured),
// extract, transform, load. The first phase error aborts the cycle.
func (o *Orchestrator) RunCycle(ctx context.Context) error {
	cycleID := uuid.New().String()
	log := logging.Logger.With().Str("cycle_id", cycleID).Logger()
	start := time.Now()

	log.Info().Msg("Starting ETL cycle")

	scope := o.newScope()

	if o.cfg.FullRefresh {
		if err := o.cleanupPhase(ctx, &log, scope); err != nil {
			return err
		}
	}
	if err := o.extractPhase(ctx, &log, scope); err != nil {
		return err
	}
	if err := o.transformPhase(ctx, &log, scope); err != nil {
		return err
	}
	if err := o.loadPhase(ctx, &log, scope); err != nil {
		return err
	}

	log.Info().
		Dur("elapsed", time.Since(start)).
		Msg("ETL cycle complete")

	return nil
}

// cleanupPhase deletes all fact rows, active dimension versions and
// staging rows, for a fully-rebuilding ETL.
func (o *Orchestrator) cleanupPhase(ctx context.Context, log *zerolog.Logger, s *cycleScope) error {
	log.Info().Msg("Phase 0: cleanup")

	warehouseDeleted, err := s.warehouse.Cleanup(ctx)
	if err != nil {
		return err
	}
	stagingDeleted, err := s.staging.DeleteAll(ctx)
	if err != nil {
		return err
	}

	log.Info().
		Int64("warehouse_deleted", warehouseDeleted).
		Int64("staging_deleted", stagingDeleted).
		Msg("Cleanup complete")

	return nil
}

// transformPhase is a named boundary only: transformation already ran
// inside extraction. Kept for phase observability and future use.
func (o *Orchestrator) transformPhase(_ context.Context, log *zerolog.Logger, _ *cycleScope) error {
	log.Info().Msg("Phase 2: transform (no-op)")
	return nil
}

// loadPhase merges staging into the warehouse: both dimensions first,
// facts last, so every fact resolves against this cycle's dimensions.
func (o *Orchestrator) loadPhase(ctx context.Context, log *zerolog.Logger, s *cycleScope) error {
	log.Info().Msg("Phase 3: load")

	customers, err := s.loader.LoadCustomerDim(ctx)
	if err != nil {
		return err
	}
	products, err := s.loader.LoadProductDim(ctx)
	if err != nil {
		return err
	}
	facts, err := s.loader.LoadSalesFacts(ctx)
	if err != nil {
		return err
	}

	log.Info().
		Int("dim_changes", customers.Total()+products.Total()).
		Int("facts_loaded", facts.Loaded).
		Int("facts_rejected", facts.Rejected).
		Msg("Load complete")

	return nil
}
