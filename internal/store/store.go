// Package store defines the staging and warehouse persistence contracts
// consumed by the loader and orchestrator, plus their PostgreSQL
// implementations.
package store

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/salesinsight/dwhetl/internal/etl"
)

// DB is the subset of pgx operations the stores need. Both *pgxpool.Pool
// and *pgx.Conn satisfy it.
type DB interface {
	Begin(ctx context.Context) (pgx.Tx, error)
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	SendBatch(ctx context.Context, b *pgx.Batch) pgx.BatchResults
	CopyFrom(ctx context.Context, tableName pgx.Identifier, columnNames []string, rowSrc pgx.CopyFromSource) (int64, error)
}

// Staging holds validated-but-not-yet-merged records with their lifecycle
// flags. The loader owns the processed/validation transitions; the
// orchestrator's extract phase owns inserts and its cleanup phase owns
// deletes.
type Staging interface {
	InsertCustomers(ctx context.Context, records []etl.StagingCustomer) error
	InsertProducts(ctx context.Context, records []etl.StagingProduct) error
	InsertSales(ctx context.Context, records []etl.StagingSale) error

	// Unprocessed* return the valid, not-yet-processed rows of a kind.
	UnprocessedCustomers(ctx context.Context) ([]etl.StagingCustomer, error)
	UnprocessedProducts(ctx context.Context) ([]etl.StagingProduct, error)
	UnprocessedSales(ctx context.Context) ([]etl.StagingSale, error)

	MarkCustomersProcessed(ctx context.Context, records []etl.StagingCustomer) error
	MarkProductsProcessed(ctx context.Context, records []etl.StagingProduct) error
	MarkSalesProcessed(ctx context.Context, records []etl.StagingSale) error

	// UpdateSalesValidation persists the validation outcome (valid flag
	// and reason) of rejected sale rows without advancing processed.
	UpdateSalesValidation(ctx context.Context, records []etl.StagingSale) error

	// DeleteAll removes every staging row and returns the count removed.
	DeleteAll(ctx context.Context) (int64, error)
}

// Warehouse holds the versioned dimensions, the immutable calendar
// dimension and the fact table.
type Warehouse interface {
	// ActiveCustomersByCode returns every active customer version keyed
	// by business code, in one bulk read.
	ActiveCustomersByCode(ctx context.Context) (map[string]etl.CustomerDim, error)
	ActiveProductsByCode(ctx context.Context) (map[string]etl.ProductDim, error)

	// DatesByKey returns the full calendar keyed by YYYYMMDD.
	DatesByKey(ctx context.Context) (map[int]etl.DateDim, error)

	// ApplyCustomerChanges deactivates the given versions (setting
	// valid_to) and inserts the new ones in a single transaction.
	ApplyCustomerChanges(ctx context.Context, deactivate, insert []etl.CustomerDim) error
	ApplyProductChanges(ctx context.Context, deactivate, insert []etl.ProductDim) error

	// BulkInsertFacts appends one batch of fact rows through the bulk
	// copy path.
	BulkInsertFacts(ctx context.Context, facts []etl.FactSale) error

	// Cleanup deletes, in order, all fact rows, all active product
	// versions and all active customer versions. Returns the total rows
	// removed.
	Cleanup(ctx context.Context) (int64, error)
}
