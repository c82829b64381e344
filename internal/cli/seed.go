package cli

import (
	"github.com/spf13/cobra"

	"github.com/salesinsight/dwhetl/internal/seed"
)

var (
	seedCustomers   int
	seedProducts    int
	seedOrders      int
	seedInvalidRate float64
	seedRandomSeed  uint64
	seedOutDir      string
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Generate sample source CSV files",
	Long: `Generate customers.csv, products.csv, orders.csv and
order_details.csv so the pipeline can be exercised without a real source
system. A fraction of rows is deliberately invalid to exercise the
validation and rejection paths.

Example:
  dwhetl seed --out ./data --customers 1000 --orders 5000
  dwhetl seed --out ./data --invalid-rate 0.05 --random-seed 42`,
	RunE: runSeed,
}

func init() {
	seedCmd.Flags().StringVar(&seedOutDir, "out", "",
		"output directory (default: csv_path from config)")
	seedCmd.Flags().IntVar(&seedCustomers, "customers", 0,
		"number of customers to generate")
	seedCmd.Flags().IntVar(&seedProducts, "products", 0,
		"number of products to generate")
	seedCmd.Flags().IntVar(&seedOrders, "orders", 0,
		"number of orders to generate")
	seedCmd.Flags().Float64Var(&seedInvalidRate, "invalid-rate", 0,
		"fraction of rows made deliberately invalid (0.0 - 1.0)")
	seedCmd.Flags().Uint64Var(&seedRandomSeed, "random-seed", 0,
		"seed for reproducible generation (0 = random)")
}

func runSeed(cmd *cobra.Command, args []string) error {
	if seedOutDir != "" {
		cfg.ETL.CSVPath = seedOutDir
	}
	if seedCustomers > 0 {
		cfg.Seed.Customers = seedCustomers
	}
	if seedProducts > 0 {
		cfg.Seed.Products = seedProducts
	}
	if seedOrders > 0 {
		cfg.Seed.Orders = seedOrders
	}
	if seedInvalidRate > 0 {
		cfg.Seed.InvalidRate = seedInvalidRate
	}
	if seedRandomSeed > 0 {
		cfg.Seed.RandomSeed = seedRandomSeed
	}

	if err := cfg.ValidateSeed(); err != nil {
		return err
	}

	return seed.Generate(cfg.ETL.CSVPath, seed.Config{
		Customers:   cfg.Seed.Customers,
		Products:    cfg.Seed.Products,
		Orders:      cfg.Seed.Orders,
		InvalidRate: cfg.Seed.InvalidRate,
		RandomSeed:  cfg.Seed.RandomSeed,
	})
}
