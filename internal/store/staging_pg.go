package store

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/salesinsight/dwhetl/internal/etl"
)

// PgStaging is the PostgreSQL staging store.
type PgStaging struct {
	db DB
}

// NewPgStaging creates a staging store backed by db.
func NewPgStaging(db DB) *PgStaging {
	return &PgStaging{db: db}
}

// InsertCustomers inserts staging customer rows, valid and invalid alike.
func (s *PgStaging) InsertCustomers(ctx context.Context, records []etl.StagingCustomer) error {
	batch := &pgx.Batch{}
	for _, r := range records {
		batch.Queue(`
			INSERT INTO staging_customer
				(code, first_name, last_name, email, phone, city, country,
				 origin, valid, validation_error, created_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		`, r.Code, r.FirstName, r.LastName, r.Email, r.Phone, r.City, r.Country,
			r.Origin, r.Valid, r.ValidationError, r.CreatedAt)
	}
	if err := s.db.SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("failed to insert staging customers: %w", err)
	}
	return nil
}

// InsertProducts inserts staging product rows, valid and invalid alike.
func (s *PgStaging) InsertProducts(ctx context.Context, records []etl.StagingProduct) error {
	batch := &pgx.Batch{}
	for _, r := range records {
		batch.Queue(`
			INSERT INTO staging_product
				(code, name, category, price, stock,
				 origin, valid, validation_error, created_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		`, r.Code, r.Name, r.Category, decimalArg(r.Price), r.Stock,
			r.Origin, r.Valid, r.ValidationError, r.CreatedAt)
	}
	if err := s.db.SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("failed to insert staging products: %w", err)
	}
	return nil
}

// InsertSales inserts staging sale rows, valid and invalid alike.
func (s *PgStaging) InsertSales(ctx context.Context, records []etl.StagingSale) error {
	batch := &pgx.Batch{}
	for _, r := range records {
		batch.Queue(`
			INSERT INTO staging_sale
				(order_number, customer_code, product_code, order_date,
				 quantity, unit_price, total, status,
				 origin, valid, validation_error, created_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		`, r.OrderNumber, r.CustomerCode, r.ProductCode, r.OrderDate,
			r.Quantity, decimalArg(r.UnitPrice), decimalArg(r.Total), r.Status,
			r.Origin, r.Valid, r.ValidationError, r.CreatedAt)
	}
	if err := s.db.SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("failed to insert staging sales: %w", err)
	}
	return nil
}

// UnprocessedCustomers returns valid, unprocessed customers in id order.
func (s *PgStaging) UnprocessedCustomers(ctx context.Context) ([]etl.StagingCustomer, error) {
	rows, err := s.db.Query(ctx, `
		SELECT id, code, first_name, last_name, email, phone, city, country,
		       origin, valid, validation_error, processed, created_at
		FROM staging_customer
		WHERE valid AND NOT processed
		ORDER BY id
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query unprocessed customers: %w", err)
	}
	defer rows.Close()

	var out []etl.StagingCustomer
	for rows.Next() {
		var r etl.StagingCustomer
		if err := rows.Scan(&r.ID, &r.Code, &r.FirstName, &r.LastName, &r.Email,
			&r.Phone, &r.City, &r.Country, &r.Origin, &r.Valid,
			&r.ValidationError, &r.Processed, &r.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan staging customer: %w", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// UnprocessedProducts returns valid, unprocessed products in id order.
func (s *PgStaging) UnprocessedProducts(ctx context.Context) ([]etl.StagingProduct, error) {
	rows, err := s.db.Query(ctx, `
		SELECT id, code, name, category, price::text, stock,
		       origin, valid, validation_error, processed, created_at
		FROM staging_product
		WHERE valid AND NOT processed
		ORDER BY id
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query unprocessed products: %w", err)
	}
	defer rows.Close()

	var out []etl.StagingProduct
	for rows.Next() {
		var r etl.StagingProduct
		var price *string
		if err := rows.Scan(&r.ID, &r.Code, &r.Name, &r.Category, &price, &r.Stock,
			&r.Origin, &r.Valid, &r.ValidationError, &r.Processed, &r.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan staging product: %w", err)
		}
		if r.Price, err = decimalPtr(price); err != nil {
			return nil, fmt.Errorf("failed to parse staging product price: %w", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// UnprocessedSales returns valid, unprocessed sales in id order.
func (s *PgStaging) UnprocessedSales(ctx context.Context) ([]etl.StagingSale, error) {
	rows, err := s.db.Query(ctx, `
		SELECT id, order_number, customer_code, product_code, order_date,
		       quantity, unit_price::text, total::text, status,
		       origin, valid, validation_error, processed, created_at
		FROM staging_sale
		WHERE valid AND NOT processed
		ORDER BY id
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query unprocessed sales: %w", err)
	}
	defer rows.Close()

	var out []etl.StagingSale
	for rows.Next() {
		var r etl.StagingSale
		var unitPrice, total *string
		if err := rows.Scan(&r.ID, &r.OrderNumber, &r.CustomerCode, &r.ProductCode,
			&r.OrderDate, &r.Quantity, &unitPrice, &total, &r.Status,
			&r.Origin, &r.Valid, &r.ValidationError, &r.Processed, &r.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan staging sale: %w", err)
		}
		if r.UnitPrice, err = decimalPtr(unitPrice); err != nil {
			return nil, fmt.Errorf("failed to parse staging sale unit price: %w", err)
		}
		if r.Total, err = decimalPtr(total); err != nil {
			return nil, fmt.Errorf("failed to parse staging sale total: %w", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// MarkCustomersProcessed flags the given customer rows processed.
func (s *PgStaging) MarkCustomersProcessed(ctx context.Context, records []etl.StagingCustomer) error {
	ids := make([]int64, 0, len(records))
	for _, r := range records {
		ids = append(ids, r.ID)
	}
	return s.markProcessed(ctx, "staging_customer", ids)
}

// MarkProductsProcessed flags the given product rows processed.
func (s *PgStaging) MarkProductsProcessed(ctx context.Context, records []etl.StagingProduct) error {
	ids := make([]int64, 0, len(records))
	for _, r := range records {
		ids = append(ids, r.ID)
	}
	return s.markProcessed(ctx, "staging_product", ids)
}

// MarkSalesProcessed flags the given sale rows processed.
func (s *PgStaging) MarkSalesProcessed(ctx context.Context, records []etl.StagingSale) error {
	ids := make([]int64, 0, len(records))
	for _, r := range records {
		ids = append(ids, r.ID)
	}
	return s.markProcessed(ctx, "staging_sale", ids)
}

func (s *PgStaging) markProcessed(ctx context.Context, table string, ids []int64) error {
	if len(ids) == 0 {
		return nil
	}
	_, err := s.db.Exec(ctx,
		fmt.Sprintf(`UPDATE %s SET processed = TRUE, updated_at = now() WHERE id = ANY($1)`, table),
		ids)
	if err != nil {
		return fmt.Errorf("failed to mark %s processed: %w", table, err)
	}
	return nil
}

// UpdateSalesValidation persists the validation outcome of rejected sale
// rows. Processed is left untouched; clearing valid is what removes them
// from the unprocessed set.
func (s *PgStaging) UpdateSalesValidation(ctx context.Context, records []etl.StagingSale) error {
	batch := &pgx.Batch{}
	for _, r := range records {
		batch.Queue(`
			UPDATE staging_sale
			SET valid = $2, validation_error = $3, updated_at = now()
			WHERE id = $1
		`, r.ID, r.Valid, r.ValidationError)
	}
	if err := s.db.SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("failed to update sales validation: %w", err)
	}
	return nil
}

// DeleteAll removes every staging row.
func (s *PgStaging) DeleteAll(ctx context.Context) (int64, error) {
	var total int64
	for _, table := range []string{"staging_sale", "staging_product", "staging_customer"} {
		tag, err := s.db.Exec(ctx, fmt.Sprintf(`DELETE FROM %s`, table))
		if err != nil {
			return total, fmt.Errorf("failed to clean %s: %w", table, err)
		}
		total += tag.RowsAffected()
	}
	return total, nil
}

// decimalArg converts an optional decimal to a query argument.
func decimalArg(d *decimal.Decimal) any {
	if d == nil {
		return nil
	}
	return d.String()
}

// decimalPtr parses an optional numeric read back as text.
func decimalPtr(s *string) (*decimal.Decimal, error) {
	if s == nil {
		return nil, nil
	}
	d, err := decimal.NewFromString(*s)
	if err != nil {
		return nil, err
	}
	return &d, nil
}
