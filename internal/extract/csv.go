package extract

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"strings"

	"github.com/salesinsight/dwhetl/internal/logging"
)

// row is one CSV record with access to fields by header name. Missing
// columns read as empty strings rather than failing the file.
type row struct {
	header map[string]int
	fields []string
}

func (r row) get(name string) string {
	i, ok := r.header[name]
	if !ok || i >= len(r.fields) {
		return ""
	}
	return strings.TrimSpace(r.fields[i])
}

// CSVExtractor reads one entity kind from a header-mapped CSV file.
type CSVExtractor[T any] struct {
	decode func(row) T
}

// Extract reads all records from the CSV file at source.
func (e CSVExtractor[T]) Extract(ctx context.Context, source string) ([]T, error) {
	if source == "" {
		return nil, fmt.Errorf("csv file path is empty")
	}

	f, err := os.Open(source)
	if err != nil {
		return nil, fmt.Errorf("failed to open csv file %s: %w", source, err)
	}
	defer f.Close()

	logging.Debug().Str("file", source).Msg("Extracting CSV file")

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1 // tolerate ragged rows; validation happens later

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read csv file %s: %w", source, err)
	}
	if len(records) == 0 {
		return nil, nil
	}

	header := make(map[string]int, len(records[0]))
	for i, name := range records[0] {
		header[strings.TrimSpace(name)] = i
	}

	out := make([]T, 0, len(records)-1)
	for _, fields := range records[1:] {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		out = append(out, e.decode(row{header: header, fields: fields}))
	}

	logging.Info().
		Str("file", source).
		Int("records", len(out)).
		Msg("CSV extraction complete")

	return out, nil
}

// NewCSVCustomers returns the customer CSV extractor.
func NewCSVCustomers() CSVExtractor[RawCustomer] {
	return CSVExtractor[RawCustomer]{decode: func(r row) RawCustomer {
		return RawCustomer{
			CustomerID: r.get("CustomerID"),
			FirstName:  r.get("FirstName"),
			LastName:   r.get("LastName"),
			Email:      r.get("Email"),
			Phone:      r.get("Phone"),
			City:       r.get("City"),
			Country:    r.get("Country"),
		}
	}}
}

// NewCSVProducts returns the product CSV extractor.
func NewCSVProducts() CSVExtractor[RawProduct] {
	return CSVExtractor[RawProduct]{decode: func(r row) RawProduct {
		return RawProduct{
			ProductID:   r.get("ProductID"),
			ProductName: r.get("ProductName"),
			Category:    r.get("Category"),
			Price:       r.get("Price"),
			Stock:       r.get("Stock"),
		}
	}}
}

// NewCSVOrders returns the order header CSV extractor.
func NewCSVOrders() CSVExtractor[RawOrder] {
	return CSVExtractor[RawOrder]{decode: func(r row) RawOrder {
		return RawOrder{
			OrderID:    r.get("OrderID"),
			CustomerID: r.get("CustomerID"),
			OrderDate:  r.get("OrderDate"),
			Status:     r.get("Status"),
		}
	}}
}

// NewCSVOrderItems returns the order line item CSV extractor.
func NewCSVOrderItems() CSVExtractor[RawOrderItem] {
	return CSVExtractor[RawOrderItem]{decode: func(r row) RawOrderItem {
		return RawOrderItem{
			OrderID:    r.get("OrderID"),
			ProductID:  r.get("ProductID"),
			Quantity:   r.get("Quantity"),
			TotalPrice: r.get("TotalPrice"),
		}
	}}
}
