// Package seed generates sample source CSV files so the pipeline can be
// exercised end to end without a real source system. A configurable
// fraction of rows is deliberately malformed to exercise the validation
// and rejection paths.
package seed

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/brianvoe/gofakeit/v7"

	"github.com/salesinsight/dwhetl/internal/logging"
)

// Config controls sample data generation.
type Config struct {
	Customers   int
	Products    int
	Orders      int
	InvalidRate float64
	RandomSeed  uint64
}

// Generate writes customers.csv, products.csv, orders.csv and
// order_details.csv into dir.
func Generate(dir string, cfg Config) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create seed directory: %w", err)
	}

	faker := gofakeit.New(cfg.RandomSeed)

	customerCodes, err := writeCustomers(dir, faker, cfg)
	if err != nil {
		return err
	}
	productCodes, err := writeProducts(dir, faker, cfg)
	if err != nil {
		return err
	}
	if err := writeOrders(dir, faker, cfg, customerCodes, productCodes); err != nil {
		return err
	}

	logging.Info().
		Str("dir", dir).
		Int("customers", cfg.Customers).
		Int("products", cfg.Products).
		Int("orders", cfg.Orders).
		Float64("invalid_rate", cfg.InvalidRate).
		Msg("Sample source files generated")

	return nil
}

func writeCSV(dir, name string, header []string, rows [][]string) error {
	f, err := os.Create(filepath.Join(dir, name))
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", name, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(header); err != nil {
		return fmt.Errorf("failed to write %s header: %w", name, err)
	}
	if err := w.WriteAll(rows); err != nil {
		return fmt.Errorf("failed to write %s rows: %w", name, err)
	}
	w.Flush()
	return w.Error()
}

func writeCustomers(dir string, faker *gofakeit.Faker, cfg Config) ([]string, error) {
	codes := make([]string, 0, cfg.Customers)
	rows := make([][]string, 0, cfg.Customers)

	for i := 1; i <= cfg.Customers; i++ {
		code := fmt.Sprintf("C%05d", i)
		codes = append(codes, code)

		firstName := faker.FirstName()
		email := faker.Email()
		if faker.Float64Range(0, 1) < cfg.InvalidRate {
			// Half the invalid customers miss a required name, the rest
			// carry a broken email.
			if faker.Bool() {
				firstName = ""
			} else {
				email = "not-an-email"
			}
		}

		rows = append(rows, []string{
			code, firstName, faker.LastName(), email,
			faker.Phone(), faker.City(), faker.Country(),
		})
	}

	header := []string{"CustomerID", "FirstName", "LastName", "Email", "Phone", "City", "Country"}
	return codes, writeCSV(dir, "customers.csv", header, rows)
}

func writeProducts(dir string, faker *gofakeit.Faker, cfg Config) ([]string, error) {
	codes := make([]string, 0, cfg.Products)
	rows := make([][]string, 0, cfg.Products)

	for i := 1; i <= cfg.Products; i++ {
		code := fmt.Sprintf("P%05d", i)
		codes = append(codes, code)

		price := strconv.FormatFloat(faker.Price(1, 500), 'f', 2, 64)
		stock := strconv.Itoa(faker.Number(0, 1000))
		if faker.Float64Range(0, 1) < cfg.InvalidRate {
			if faker.Bool() {
				price = "n/a"
			} else {
				stock = "-1"
			}
		}

		rows = append(rows, []string{
			code, faker.ProductName(), faker.ProductCategory(), price, stock,
		})
	}

	header := []string{"ProductID", "ProductName", "Category", "Price", "Stock"}
	return codes, writeCSV(dir, "products.csv", header, rows)
}

func writeOrders(dir string, faker *gofakeit.Faker, cfg Config, customers, products []string) error {
	statuses := []string{"COMPLETED", "SHIPPED", "PENDING", "CANCELLED"}
	end := time.Now()
	start := end.AddDate(-1, 0, 0)

	orderRows := make([][]string, 0, cfg.Orders)
	var itemRows [][]string

	for i := 1; i <= cfg.Orders; i++ {
		orderID := fmt.Sprintf("O%06d", i)

		customer := customers[faker.Number(0, len(customers)-1)]
		if faker.Float64Range(0, 1) < cfg.InvalidRate {
			// References a customer no dimension will ever contain, so
			// the fact load's rejection path gets data too.
			customer = fmt.Sprintf("CX%05d", i)
		}

		orderRows = append(orderRows, []string{
			orderID, customer,
			faker.DateRange(start, end).Format("2006-01-02"),
			statuses[faker.Number(0, len(statuses)-1)],
		})

		for n := faker.Number(1, 3); n > 0; n-- {
			quantity := faker.Number(1, 10)
			total := strconv.FormatFloat(faker.Price(1, 500)*float64(quantity), 'f', 2, 64)
			itemRows = append(itemRows, []string{
				orderID,
				products[faker.Number(0, len(products)-1)],
				strconv.Itoa(quantity),
				total,
			})
		}
	}

	orderHeader := []string{"OrderID", "CustomerID", "OrderDate", "Status"}
	if err := writeCSV(dir, "orders.csv", orderHeader, orderRows); err != nil {
		return err
	}

	itemHeader := []string{"OrderID", "ProductID", "Quantity", "TotalPrice"}
	return writeCSV(dir, "order_details.csv", itemHeader, itemRows)
}
