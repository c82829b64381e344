package transform

import (
	"testing"
	"time"

	"github.com/salesinsight/dwhetl/internal/etl"
	"github.com/salesinsight/dwhetl/internal/extract"
)

func TestSalesJoinsOrdersToItems(t *testing.T) {
	orders := []extract.RawOrder{
		{OrderID: "O001", CustomerID: "C001", OrderDate: "2024-03-15", Status: "COMPLETED"},
		{OrderID: "O002", CustomerID: "C002", OrderDate: "2024-03-16", Status: "SHIPPED"},
	}
	items := []extract.RawOrderItem{
		{OrderID: "O001", ProductID: "P001", Quantity: "2", TotalPrice: "39.98"},
		{OrderID: "O001", ProductID: "P002", Quantity: "1", TotalPrice: "5.00"},
		{OrderID: "O002", ProductID: "P001", Quantity: "3", TotalPrice: "59.97"},
	}

	result := Sales(orders, items, etl.OriginCSV)

	if len(result) != 3 {
		t.Fatalf("Expected 3 sales (one per line item), got %d", len(result))
	}

	first := result[0]
	if first.OrderNumber != "O001" || first.CustomerCode != "C001" || first.ProductCode != "P001" {
		t.Errorf("Unexpected join result: %+v", first)
	}
	if first.OrderDate == nil || !first.OrderDate.Equal(time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("Expected order date 2024-03-15, got %v", first.OrderDate)
	}
	if !first.Valid {
		t.Errorf("Expected valid sale, got error '%s'", first.ValidationError)
	}

	// Header fields fan out to every line item of the order
	if result[1].CustomerCode != "C001" || result[1].Status != "COMPLETED" {
		t.Errorf("Expected header fields on second item, got %+v", result[1])
	}
}

func TestSalesDerivesUnitPrice(t *testing.T) {
	orders := []extract.RawOrder{
		{OrderID: "O001", CustomerID: "C001", OrderDate: "2024-03-15"},
	}
	items := []extract.RawOrderItem{
		{OrderID: "O001", ProductID: "P001", Quantity: "4", TotalPrice: "10.00"},
	}

	result := Sales(orders, items, etl.OriginCSV)

	if len(result) != 1 {
		t.Fatalf("Expected 1 sale, got %d", len(result))
	}
	if result[0].UnitPrice == nil {
		t.Fatal("Expected derived unit price")
	}
	if result[0].UnitPrice.String() != "2.5" {
		t.Errorf("Expected unit price 2.5, got %s", result[0].UnitPrice)
	}
}

func TestSalesNoUnitPriceWithoutQuantity(t *testing.T) {
	orders := []extract.RawOrder{
		{OrderID: "O001", CustomerID: "C001", OrderDate: "2024-03-15"},
	}
	items := []extract.RawOrderItem{
		{OrderID: "O001", ProductID: "P001", Quantity: "", TotalPrice: "10.00"},
		{OrderID: "O001", ProductID: "P002", Quantity: "0", TotalPrice: "10.00"},
	}

	result := Sales(orders, items, etl.OriginCSV)

	for i, r := range result {
		if r.UnitPrice != nil {
			t.Errorf("Item %d: expected nil unit price, got %s", i, r.UnitPrice)
		}
		if r.Valid {
			t.Errorf("Item %d: expected invalid quantity to fail validation", i)
		}
	}
}

func TestSalesOrdersWithoutItemsProduceNothing(t *testing.T) {
	orders := []extract.RawOrder{
		{OrderID: "O001", CustomerID: "C001", OrderDate: "2024-03-15"},
	}

	result := Sales(orders, nil, etl.OriginCSV)

	if len(result) != 0 {
		t.Errorf("Expected no sales for an order without items, got %d", len(result))
	}
}

func TestSalesOrphanItemsAreDropped(t *testing.T) {
	items := []extract.RawOrderItem{
		{OrderID: "O999", ProductID: "P001", Quantity: "1", TotalPrice: "5.00"},
	}

	result := Sales(nil, items, etl.OriginCSV)

	if len(result) != 0 {
		t.Errorf("Expected orphan items to be dropped, got %d sales", len(result))
	}
}

func TestSalesValidation(t *testing.T) {
	tests := []struct {
		name      string
		order     extract.RawOrder
		item      extract.RawOrderItem
		wantValid bool
		wantError string
	}{
		{
			name:      "valid",
			order:     extract.RawOrder{OrderID: "O001", CustomerID: "C001", OrderDate: "2024-03-15"},
			item:      extract.RawOrderItem{OrderID: "O001", ProductID: "P001", Quantity: "1", TotalPrice: "5.00"},
			wantValid: true,
		},
		{
			name:      "missing customer code",
			order:     extract.RawOrder{OrderID: "O001", OrderDate: "2024-03-15"},
			item:      extract.RawOrderItem{OrderID: "O001", ProductID: "P001", Quantity: "1", TotalPrice: "5.00"},
			wantError: "codigo de cliente es requerido",
		},
		{
			name:      "missing product code",
			order:     extract.RawOrder{OrderID: "O001", CustomerID: "C001", OrderDate: "2024-03-15"},
			item:      extract.RawOrderItem{OrderID: "O001", Quantity: "1", TotalPrice: "5.00"},
			wantError: "codigo de producto es requerido",
		},
		{
			name:      "unparsable order date",
			order:     extract.RawOrder{OrderID: "O001", CustomerID: "C001", OrderDate: "not-a-date"},
			item:      extract.RawOrderItem{OrderID: "O001", ProductID: "P001", Quantity: "1", TotalPrice: "5.00"},
			wantError: "fecha de orden es requerida",
		},
		{
			name:      "zero quantity",
			order:     extract.RawOrder{OrderID: "O001", CustomerID: "C001", OrderDate: "2024-03-15"},
			item:      extract.RawOrderItem{OrderID: "O001", ProductID: "P001", Quantity: "0", TotalPrice: "5.00"},
			wantError: "cantidad debe ser mayor a 0",
		},
		{
			name:      "zero total",
			order:     extract.RawOrder{OrderID: "O001", CustomerID: "C001", OrderDate: "2024-03-15"},
			item:      extract.RawOrderItem{OrderID: "O001", ProductID: "P001", Quantity: "1", TotalPrice: "0"},
			wantError: "total de venta debe ser mayor a 0",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := Sales([]extract.RawOrder{tt.order}, []extract.RawOrderItem{tt.item}, etl.OriginCSV)
			if len(result) != 1 {
				t.Fatalf("Expected 1 sale, got %d", len(result))
			}

			r := result[0]
			if r.Valid != tt.wantValid {
				t.Errorf("Expected valid=%v, got %v (error '%s')", tt.wantValid, r.Valid, r.ValidationError)
			}
			if !tt.wantValid && r.ValidationError != tt.wantError {
				t.Errorf("Expected error '%s', got '%s'", tt.wantError, r.ValidationError)
			}
		})
	}
}

func TestParseDateLayouts(t *testing.T) {
	tests := []struct {
		value string
		want  time.Time
	}{
		{"2024-03-15", time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC)},
		{"2024-03-15 10:30:00", time.Date(2024, 3, 15, 10, 30, 0, 0, time.UTC)},
		{"2024-03-15T10:30:00Z", time.Date(2024, 3, 15, 10, 30, 0, 0, time.UTC)},
		{"15/03/2024", time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC)},
	}

	for _, tt := range tests {
		got := parseDate(tt.value)
		if got == nil {
			t.Errorf("parseDate(%q) = nil, want %v", tt.value, tt.want)
			continue
		}
		if !got.Equal(tt.want) {
			t.Errorf("parseDate(%q) = %v, want %v", tt.value, got, tt.want)
		}
	}

	if parseDate("") != nil {
		t.Error("Expected nil for empty string")
	}
	if parseDate("garbage") != nil {
		t.Error("Expected nil for unparsable value")
	}
}
