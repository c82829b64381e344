package seed

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"
)

func readCSV(t *testing.T, path string) [][]string {
	t.Helper()
	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("Failed to open %s: %v", path, err)
	}
	defer f.Close()

	records, err := csv.NewReader(f).ReadAll()
	if err != nil {
		t.Fatalf("Failed to read %s: %v", path, err)
	}
	return records
}

func TestGenerate(t *testing.T) {
	dir := t.TempDir()
	cfg := Config{
		Customers:  20,
		Products:   10,
		Orders:     30,
		RandomSeed: 42,
	}

	if err := Generate(dir, cfg); err != nil {
		t.Fatalf("Generate failed: %v", err)
	}

	customers := readCSV(t, filepath.Join(dir, "customers.csv"))
	if len(customers) != cfg.Customers+1 {
		t.Errorf("Expected %d customer rows plus header, got %d", cfg.Customers, len(customers)-1)
	}
	if customers[0][0] != "CustomerID" {
		t.Errorf("Unexpected customer header: %v", customers[0])
	}
	if customers[1][0] != "C00001" {
		t.Errorf("Expected first customer code C00001, got '%s'", customers[1][0])
	}

	products := readCSV(t, filepath.Join(dir, "products.csv"))
	if len(products) != cfg.Products+1 {
		t.Errorf("Expected %d product rows plus header, got %d", cfg.Products, len(products)-1)
	}

	orders := readCSV(t, filepath.Join(dir, "orders.csv"))
	if len(orders) != cfg.Orders+1 {
		t.Errorf("Expected %d order rows plus header, got %d", cfg.Orders, len(orders)-1)
	}

	items := readCSV(t, filepath.Join(dir, "order_details.csv"))
	// Every order carries between one and three line items
	lineItems := len(items) - 1
	if lineItems < cfg.Orders || lineItems > cfg.Orders*3 {
		t.Errorf("Expected between %d and %d line items, got %d", cfg.Orders, cfg.Orders*3, lineItems)
	}

	// Every line item references a generated order
	orderIDs := make(map[string]bool, cfg.Orders)
	for _, row := range orders[1:] {
		orderIDs[row[0]] = true
	}
	for _, row := range items[1:] {
		if !orderIDs[row[0]] {
			t.Errorf("Line item references unknown order '%s'", row[0])
		}
	}
}

func TestGenerateReproducible(t *testing.T) {
	cfg := Config{Customers: 10, Products: 5, Orders: 10, RandomSeed: 7}

	dirA, dirB := t.TempDir(), t.TempDir()
	if err := Generate(dirA, cfg); err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	if err := Generate(dirB, cfg); err != nil {
		t.Fatalf("Generate failed: %v", err)
	}

	for _, name := range []string{"customers.csv", "products.csv", "orders.csv", "order_details.csv"} {
		a, err := os.ReadFile(filepath.Join(dirA, name))
		if err != nil {
			t.Fatalf("Failed to read %s: %v", name, err)
		}
		b, err := os.ReadFile(filepath.Join(dirB, name))
		if err != nil {
			t.Fatalf("Failed to read %s: %v", name, err)
		}
		if string(a) != string(b) {
			t.Errorf("Expected identical %s for the same seed", name)
		}
	}
}

func TestGenerateInvalidRate(t *testing.T) {
	dir := t.TempDir()
	cfg := Config{
		Customers:   50,
		Products:    50,
		Orders:      50,
		InvalidRate: 1.0,
		RandomSeed:  3,
	}

	if err := Generate(dir, cfg); err != nil {
		t.Fatalf("Generate failed: %v", err)
	}

	// With invalid-rate 1 every customer row is broken one way or the other
	customers := readCSV(t, filepath.Join(dir, "customers.csv"))
	for i, row := range customers[1:] {
		firstName, email := row[1], row[3]
		if firstName != "" && email != "not-an-email" {
			t.Errorf("Row %d: expected an invalid field, got name '%s' email '%s'", i, firstName, email)
		}
	}
}
