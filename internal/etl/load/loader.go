// Package load merges unprocessed staging records into the warehouse:
// SCD Type 2 versioning for the customer and product dimensions, and
// batched bulk appends for the sales fact table.
package load

import (
	"time"

	"github.com/salesinsight/dwhetl/internal/store"
)

// DefaultBatchSize caps fact rows per bulk append when none is configured.
const DefaultBatchSize = 10000

// Loader moves staging records into the warehouse. Each Load method is
// independently callable and idempotent with respect to already-processed
// staging rows.
type Loader struct {
	staging   store.Staging
	warehouse store.Warehouse
	batchSize int
	now       func() time.Time
}

// New creates a Loader. batchSize bounds the rows per fact bulk append;
// values below 1 fall back to DefaultBatchSize.
func New(staging store.Staging, warehouse store.Warehouse, batchSize int) *Loader {
	if batchSize < 1 {
		batchSize = DefaultBatchSize
	}
	return &Loader{
		staging:   staging,
		warehouse: warehouse,
		batchSize: batchSize,
		now:       time.Now,
	}
}

// DimResult reports the outcome of a dimension load.
type DimResult struct {
	// Inserted counts brand-new business codes (version 1 rows).
	Inserted int
	// Updated counts version bumps of existing codes.
	Updated int
}

// Total returns the number of dimension changes applied.
func (r DimResult) Total() int {
	return r.Inserted + r.Updated
}

// FactResult reports the outcome of a fact load.
type FactResult struct {
	// Loaded counts fact rows appended to the warehouse.
	Loaded int
	// Rejected counts staging rows that failed dimension resolution.
	Rejected int
}
