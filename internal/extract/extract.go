// Package extract reads raw business records from external sources.
// Extractors only parse; validation happens later in the transformers, so
// every field stays a string here no matter how mangled the source data is.
// An extractor returns an error only when the source itself is unreachable
// or unreadable, which is fatal to the extract phase.
package extract

import "context"

// RawCustomer is a customer row as it appears in the source.
type RawCustomer struct {
	CustomerID string `json:"customerId"`
	FirstName  string `json:"firstName"`
	LastName   string `json:"lastName"`
	Email      string `json:"email"`
	Phone      string `json:"phone"`
	City       string `json:"city"`
	Country    string `json:"country"`
}

// RawProduct is a product row as it appears in the source.
type RawProduct struct {
	ProductID   string `json:"productId"`
	ProductName string `json:"productName"`
	Category    string `json:"category"`
	Price       string `json:"price"`
	Stock       string `json:"stock"`
}

// RawOrder is an order header row as it appears in the source.
type RawOrder struct {
	OrderID    string `json:"orderId"`
	CustomerID string `json:"customerId"`
	OrderDate  string `json:"orderDate"`
	Status     string `json:"status"`
}

// RawOrderItem is an order line item row as it appears in the source.
type RawOrderItem struct {
	OrderID    string `json:"orderId"`
	ProductID  string `json:"productId"`
	Quantity   string `json:"quantity"`
	TotalPrice string `json:"totalPrice"`
}

// Extractor reads all records of one entity kind from a source location.
// For the CSV extractor the source is a file path; for the API extractor
// it is an endpoint path relative to the configured base URL.
type Extractor[T any] interface {
	Extract(ctx context.Context, source string) ([]T, error)
}
