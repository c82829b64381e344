package worker

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/rs/zerolog"

	"github.com/salesinsight/dwhetl/internal/config"
	"github.com/salesinsight/dwhetl/internal/etl"
	"github.com/salesinsight/dwhetl/internal/etl/transform"
	"github.com/salesinsight/dwhetl/internal/extract"
)

// Source file names expected under the CSV path.
const (
	csvCustomers  = "customers.csv"
	csvProducts   = "products.csv"
	csvOrders     = "orders.csv"
	csvOrderItems = "order_details.csv"
)

// REST endpoints queried, relative to the configured base URL.
const (
	apiCustomers  = "customers"
	apiProducts   = "products"
	apiOrders     = "orders"
	apiOrderItems = "order-items"
)

// extractPhase pulls raw records from every configured source, transforms
// them and writes the staging rows. Invalid rows are persisted too, with
// their validation reason, so operators can inspect them; the load phase
// only selects valid rows.
func (o *Orchestrator) extractPhase(ctx context.Context, log *zerolog.Logger, s *cycleScope) error {
	log.Info().Msg("Phase 1: extract")

	for _, source := range o.cfg.Sources {
		switch source {
		case config.SourceCSV:
			if err := o.extractCSV(ctx, log, s); err != nil {
				return err
			}
		case config.SourceAPI:
			if err := o.extractAPI(ctx, log, s); err != nil {
				return err
			}
		default:
			return fmt.Errorf("unknown source kind: %s", source)
		}
	}

	return nil
}

func (o *Orchestrator) extractCSV(ctx context.Context, log *zerolog.Logger, s *cycleScope) error {
	base := o.cfg.CSVPath

	rawCustomers, err := extract.NewCSVCustomers().Extract(ctx, filepath.Join(base, csvCustomers))
	if err != nil {
		return err
	}
	customers := transform.Customers(rawCustomers, etl.OriginCSV)
	if err := s.staging.InsertCustomers(ctx, customers); err != nil {
		return err
	}

	rawProducts, err := extract.NewCSVProducts().Extract(ctx, filepath.Join(base, csvProducts))
	if err != nil {
		return err
	}
	products := transform.Products(rawProducts, etl.OriginCSV)
	if err := s.staging.InsertProducts(ctx, products); err != nil {
		return err
	}

	rawOrders, err := extract.NewCSVOrders().Extract(ctx, filepath.Join(base, csvOrders))
	if err != nil {
		return err
	}
	rawItems, err := extract.NewCSVOrderItems().Extract(ctx, filepath.Join(base, csvOrderItems))
	if err != nil {
		return err
	}
	sales := transform.Sales(rawOrders, rawItems, etl.OriginCSV)
	if err := s.staging.InsertSales(ctx, sales); err != nil {
		return err
	}

	log.Info().
		Int("customers", len(customers)).
		Int("products", len(products)).
		Int("sales", len(sales)).
		Msg("CSV source staged")

	return nil
}

func (o *Orchestrator) extractAPI(ctx context.Context, log *zerolog.Logger, s *cycleScope) error {
	client := extract.NewAPIClient(o.cfg.APIBaseURL, o.cfg.APIKey)

	rawCustomers, err := extract.NewAPIExtractor[extract.RawCustomer](client).Extract(ctx, apiCustomers)
	if err != nil {
		return err
	}
	customers := transform.Customers(rawCustomers, etl.OriginAPI)
	if err := s.staging.InsertCustomers(ctx, customers); err != nil {
		return err
	}

	rawProducts, err := extract.NewAPIExtractor[extract.RawProduct](client).Extract(ctx, apiProducts)
	if err != nil {
		return err
	}
	products := transform.Products(rawProducts, etl.OriginAPI)
	if err := s.staging.InsertProducts(ctx, products); err != nil {
		return err
	}

	rawOrders, err := extract.NewAPIExtractor[extract.RawOrder](client).Extract(ctx, apiOrders)
	if err != nil {
		return err
	}
	rawItems, err := extract.NewAPIExtractor[extract.RawOrderItem](client).Extract(ctx, apiOrderItems)
	if err != nil {
		return err
	}
	sales := transform.Sales(rawOrders, rawItems, etl.OriginAPI)
	if err := s.staging.InsertSales(ctx, sales); err != nil {
		return err
	}

	log.Info().
		Int("customers", len(customers)).
		Int("products", len(products)).
		Int("sales", len(sales)).
		Msg("API source staged")

	return nil
}
