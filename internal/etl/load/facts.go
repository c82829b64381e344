package load

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/salesinsight/dwhetl/internal/etl"
	"github.com/salesinsight/dwhetl/internal/logging"
)

// LoadSalesFacts resolves unprocessed staging sales against the dimension
// lookup maps and bulk-appends the resulting fact rows in batches. A row
// whose customer, product or date cannot be resolved is marked invalid
// with the offending code in the reason; it never aborts the batch. Only
// store failures do. Rejected rows stay parked with their reason until
// the next extraction stages the sale again, by then with the missing
// dimension hopefully present.
func (l *Loader) LoadSalesFacts(ctx context.Context) (FactResult, error) {
	var result FactResult

	rows, err := l.staging.UnprocessedSales(ctx)
	if err != nil {
		return result, fmt.Errorf("failed to fetch staging sales: %w", err)
	}
	if len(rows) == 0 {
		logging.Info().Msg("No new sales to process")
		return result, nil
	}

	customers, err := l.warehouse.ActiveCustomersByCode(ctx)
	if err != nil {
		return result, fmt.Errorf("failed to fetch active customers: %w", err)
	}
	products, err := l.warehouse.ActiveProductsByCode(ctx)
	if err != nil {
		return result, fmt.Errorf("failed to fetch active products: %w", err)
	}
	dates, err := l.warehouse.DatesByKey(ctx)
	if err != nil {
		return result, fmt.Errorf("failed to fetch calendar: %w", err)
	}

	logging.Info().
		Int("customers", len(customers)).
		Int("products", len(products)).
		Int("dates", len(dates)).
		Msg("Dimension lookup maps loaded")

	now := l.now()
	facts := make([]etl.FactSale, 0, len(rows))
	processed := make([]etl.StagingSale, 0, len(rows))
	var rejected []etl.StagingSale

	reject := func(s etl.StagingSale, reason string) {
		s.Valid = false
		s.ValidationError = reason
		rejected = append(rejected, s)
		result.Rejected++
	}

	for _, staging := range rows {
		customer, ok := customers[staging.CustomerCode]
		if !ok {
			logging.Warn().Str("code", staging.CustomerCode).Msg("Customer not found")
			reject(staging, fmt.Sprintf("cliente %s no existe", staging.CustomerCode))
			continue
		}

		product, ok := products[staging.ProductCode]
		if !ok {
			logging.Warn().Str("code", staging.ProductCode).Msg("Product not found")
			reject(staging, fmt.Sprintf("producto %s no existe", staging.ProductCode))
			continue
		}

		if staging.OrderDate == nil {
			reject(staging, "fecha de orden es nula")
			continue
		}

		dateKey := etl.DateKey(*staging.OrderDate)
		if _, ok := dates[dateKey]; !ok {
			logging.Warn().Int("date_key", dateKey).Msg("Date not found")
			reject(staging, fmt.Sprintf("fecha %d no existe", dateKey))
			continue
		}

		quantity := 0
		if staging.Quantity != nil {
			quantity = *staging.Quantity
		}
		unitPrice := decimal.Zero
		if staging.UnitPrice != nil {
			unitPrice = *staging.UnitPrice
		}
		total := decimal.Zero
		if staging.Total != nil {
			total = *staging.Total
		}

		facts = append(facts, etl.FactSale{
			CustomerID:  customer.ID,
			ProductID:   product.ID,
			DateKey:     dateKey,
			Quantity:    quantity,
			UnitPrice:   unitPrice,
			Total:       total,
			OrderNumber: staging.OrderNumber,
			Status:      staging.Status,
			Origin:      staging.Origin,
			CreatedAt:   now,
		})
		processed = append(processed, staging)
	}

	// Batches already appended stay committed if a later batch fails;
	// the staging rows are only marked processed after all batches land,
	// so a retry re-runs the whole set (at-least-once).
	for start := 0; start < len(facts); start += l.batchSize {
		end := min(start+l.batchSize, len(facts))
		if err := l.warehouse.BulkInsertFacts(ctx, facts[start:end]); err != nil {
			return result, fmt.Errorf("failed to bulk insert facts: %w", err)
		}
		result.Loaded = end
	}

	if err := l.staging.MarkSalesProcessed(ctx, processed); err != nil {
		return result, fmt.Errorf("failed to mark staging sales processed: %w", err)
	}

	// Rejected rows are flagged invalid with their reason; flipping
	// valid off takes them out of the next fetch without losing them.
	if len(rejected) > 0 {
		if err := l.staging.UpdateSalesValidation(ctx, rejected); err != nil {
			return result, fmt.Errorf("failed to update sales validation: %w", err)
		}
		logging.Warn().Int("rejected", len(rejected)).Msg("Sales rejected during fact load")
	}

	logging.Info().
		Int("loaded", result.Loaded).
		Int("rejected", result.Rejected).
		Msg("Sales facts loaded")

	return result, nil
}
