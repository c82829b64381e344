package worker

import (
	"github.com/salesinsight/dwhetl/internal/etl/load"
	"github.com/salesinsight/dwhetl/internal/store"
)

// cycleScope bundles the per-cycle collaborators. A fresh scope is built
// at the start of every cycle and discarded at its end, so no cached maps
// or handles leak between cycles.
type cycleScope struct {
	staging   store.Staging
	warehouse store.Warehouse
	loader    *load.Loader
}

func (o *Orchestrator) newScope() *cycleScope {
	staging := o.newStaging()
	warehouse := o.newWarehouse()
	return &cycleScope{
		staging:   staging,
		warehouse: warehouse,
		loader:    load.New(staging, warehouse, o.cfg.BatchSize),
	}
}
