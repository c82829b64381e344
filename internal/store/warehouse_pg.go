package store

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/salesinsight/dwhetl/internal/etl"
	"github.com/salesinsight/dwhetl/internal/logging"
)

// PgWarehouse is the PostgreSQL warehouse store.
type PgWarehouse struct {
	db          DB
	bulkTimeout time.Duration
}

// NewPgWarehouse creates a warehouse store backed by db.
func NewPgWarehouse(db DB) *PgWarehouse {
	return &PgWarehouse{db: db}
}

// SetBulkTimeout bounds each bulk append and cleanup operation. Zero
// disables the bound.
func (w *PgWarehouse) SetBulkTimeout(d time.Duration) {
	w.bulkTimeout = d
}

func (w *PgWarehouse) bulkContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if w.bulkTimeout > 0 {
		return context.WithTimeout(ctx, w.bulkTimeout)
	}
	return context.WithCancel(ctx)
}

// ActiveCustomersByCode returns every active customer version keyed by
// business code.
func (w *PgWarehouse) ActiveCustomersByCode(ctx context.Context) (map[string]etl.CustomerDim, error) {
	rows, err := w.db.Query(ctx, `
		SELECT id, code, first_name, last_name, email, phone, city, country,
		       version, active, valid_from, valid_to
		FROM dim_customer
		WHERE active
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query active customers: %w", err)
	}
	defer rows.Close()

	out := make(map[string]etl.CustomerDim)
	for rows.Next() {
		var d etl.CustomerDim
		if err := rows.Scan(&d.ID, &d.Code, &d.FirstName, &d.LastName, &d.Email,
			&d.Phone, &d.City, &d.Country, &d.Version, &d.Active,
			&d.ValidFrom, &d.ValidTo); err != nil {
			return nil, fmt.Errorf("failed to scan customer dimension: %w", err)
		}
		out[d.Code] = d
	}
	return out, rows.Err()
}

// ActiveProductsByCode returns every active product version keyed by
// business code.
func (w *PgWarehouse) ActiveProductsByCode(ctx context.Context) (map[string]etl.ProductDim, error) {
	rows, err := w.db.Query(ctx, `
		SELECT id, code, name, category, price::text, stock,
		       version, active, valid_from, valid_to
		FROM dim_product
		WHERE active
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query active products: %w", err)
	}
	defer rows.Close()

	out := make(map[string]etl.ProductDim)
	for rows.Next() {
		var d etl.ProductDim
		var price string
		if err := rows.Scan(&d.ID, &d.Code, &d.Name, &d.Category, &price, &d.Stock,
			&d.Version, &d.Active, &d.ValidFrom, &d.ValidTo); err != nil {
			return nil, fmt.Errorf("failed to scan product dimension: %w", err)
		}
		if d.Price, err = decimal.NewFromString(price); err != nil {
			return nil, fmt.Errorf("failed to parse product price: %w", err)
		}
		out[d.Code] = d
	}
	return out, rows.Err()
}

// DatesByKey returns the full calendar dimension keyed by YYYYMMDD.
func (w *PgWarehouse) DatesByKey(ctx context.Context) (map[int]etl.DateDim, error) {
	rows, err := w.db.Query(ctx, `
		SELECT key, date, year, quarter, month, month_name,
		       day, weekday, weekday_name, week_of_year, weekend
		FROM dim_date
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query calendar: %w", err)
	}
	defer rows.Close()

	out := make(map[int]etl.DateDim)
	for rows.Next() {
		var d etl.DateDim
		if err := rows.Scan(&d.Key, &d.Date, &d.Year, &d.Quarter, &d.Month,
			&d.MonthName, &d.Day, &d.Weekday, &d.WeekdayName,
			&d.WeekOfYear, &d.Weekend); err != nil {
			return nil, fmt.Errorf("failed to scan calendar row: %w", err)
		}
		out[d.Key] = d
	}
	return out, rows.Err()
}

// ApplyCustomerChanges closes out the given versions and inserts the new
// ones in a single transaction, preserving the one-active-row invariant.
func (w *PgWarehouse) ApplyCustomerChanges(ctx context.Context, deactivate, insert []etl.CustomerDim) error {
	if len(deactivate) == 0 && len(insert) == 0 {
		return nil
	}

	tx, err := w.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin customer dimension tx: %w", err)
	}
	defer tx.Rollback(ctx)

	for _, d := range deactivate {
		if _, err := tx.Exec(ctx, `
			UPDATE dim_customer
			SET active = FALSE, valid_to = $2, updated_at = now()
			WHERE id = $1
		`, d.ID, d.ValidTo); err != nil {
			return fmt.Errorf("failed to deactivate customer %s: %w", d.Code, err)
		}
	}

	for _, d := range insert {
		if _, err := tx.Exec(ctx, `
			INSERT INTO dim_customer
				(code, first_name, last_name, email, phone, city, country,
				 version, active, valid_from)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, TRUE, $9)
		`, d.Code, d.FirstName, d.LastName, d.Email, d.Phone, d.City, d.Country,
			d.Version, d.ValidFrom); err != nil {
			return fmt.Errorf("failed to insert customer %s version %d: %w", d.Code, d.Version, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit customer dimension changes: %w", err)
	}
	return nil
}

// ApplyProductChanges closes out the given versions and inserts the new
// ones in a single transaction.
func (w *PgWarehouse) ApplyProductChanges(ctx context.Context, deactivate, insert []etl.ProductDim) error {
	if len(deactivate) == 0 && len(insert) == 0 {
		return nil
	}

	tx, err := w.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin product dimension tx: %w", err)
	}
	defer tx.Rollback(ctx)

	for _, d := range deactivate {
		if _, err := tx.Exec(ctx, `
			UPDATE dim_product
			SET active = FALSE, valid_to = $2, updated_at = now()
			WHERE id = $1
		`, d.ID, d.ValidTo); err != nil {
			return fmt.Errorf("failed to deactivate product %s: %w", d.Code, err)
		}
	}

	for _, d := range insert {
		if _, err := tx.Exec(ctx, `
			INSERT INTO dim_product
				(code, name, category, price, stock, version, active, valid_from)
			VALUES ($1, $2, $3, $4, $5, $6, TRUE, $7)
		`, d.Code, d.Name, d.Category, d.Price.String(), d.Stock,
			d.Version, d.ValidFrom); err != nil {
			return fmt.Errorf("failed to insert product %s version %d: %w", d.Code, d.Version, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit product dimension changes: %w", err)
	}
	return nil
}

// BulkInsertFacts appends one batch of fact rows through the COPY
// protocol.
func (w *PgWarehouse) BulkInsertFacts(ctx context.Context, facts []etl.FactSale) error {
	if len(facts) == 0 {
		return nil
	}

	ctx, cancel := w.bulkContext(ctx)
	defer cancel()

	rows := make([][]any, 0, len(facts))
	for _, f := range facts {
		rows = append(rows, []any{
			f.CustomerID, f.ProductID, f.DateKey,
			f.Quantity, f.UnitPrice.String(), f.Total.String(),
			f.OrderNumber, f.Status, f.Origin, f.CreatedAt,
		})
	}

	copied, err := w.db.CopyFrom(ctx,
		pgx.Identifier{"fact_sales"},
		[]string{"customer_id", "product_id", "date_key",
			"quantity", "unit_price", "total",
			"order_number", "status", "origin", "created_at"},
		pgx.CopyFromRows(rows))
	if err != nil {
		return fmt.Errorf("failed to bulk insert facts: %w", err)
	}

	logging.Debug().Int64("rows", copied).Msg("Fact batch copied")
	return nil
}

// Cleanup removes all fact rows and all active dimension versions.
func (w *PgWarehouse) Cleanup(ctx context.Context) (int64, error) {
	ctx, cancel := w.bulkContext(ctx)
	defer cancel()

	var total int64

	tag, err := w.db.Exec(ctx, `DELETE FROM fact_sales`)
	if err != nil {
		return total, fmt.Errorf("failed to clean fact_sales: %w", err)
	}
	total += tag.RowsAffected()

	tag, err = w.db.Exec(ctx, `DELETE FROM dim_product WHERE active`)
	if err != nil {
		return total, fmt.Errorf("failed to clean dim_product: %w", err)
	}
	total += tag.RowsAffected()

	tag, err = w.db.Exec(ctx, `DELETE FROM dim_customer WHERE active`)
	if err != nil {
		return total, fmt.Errorf("failed to clean dim_customer: %w", err)
	}
	total += tag.RowsAffected()

	return total, nil
}
