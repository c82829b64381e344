package extract

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestAPIExtractorDecodesArray(t *testing.T) {
	var gotKey string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotKey = r.Header.Get("X-API-Key")
		if r.URL.Path != "/customers" {
			t.Errorf("Unexpected path: %s", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`[
			{"customerId":"C001","firstName":"Ana","lastName":"Torres","email":"ana@example.com"},
			{"customerId":"C002","firstName":"Luis","lastName":"Gomez"}
		]`))
	}))
	defer server.Close()

	client := NewAPIClient(server.URL, "secret")
	records, err := NewAPIExtractor[RawCustomer](client).Extract(context.Background(), "customers")
	if err != nil {
		t.Fatalf("Extract failed: %v", err)
	}

	if gotKey != "secret" {
		t.Errorf("Expected X-API-Key 'secret', got '%s'", gotKey)
	}
	if len(records) != 2 {
		t.Fatalf("Expected 2 records, got %d", len(records))
	}
	if records[0].CustomerID != "C001" || records[0].Email != "ana@example.com" {
		t.Errorf("Unexpected first record: %+v", records[0])
	}
	if records[1].Email != "" {
		t.Errorf("Expected absent field to decode empty, got '%s'", records[1].Email)
	}
}

func TestAPIExtractorNoKeyHeader(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, present := r.Header["X-Api-Key"]; present {
			t.Error("Expected no X-API-Key header when key is empty")
		}
		w.Write([]byte(`[]`))
	}))
	defer server.Close()

	client := NewAPIClient(server.URL, "")
	if _, err := NewAPIExtractor[RawProduct](client).Extract(context.Background(), "products"); err != nil {
		t.Fatalf("Extract failed: %v", err)
	}
}

func TestAPIExtractorNonOKStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer server.Close()

	client := NewAPIClient(server.URL, "")
	_, err := NewAPIExtractor[RawOrder](client).Extract(context.Background(), "orders")
	if err == nil {
		t.Fatal("Expected error for 500 response")
	}
}

func TestAPIExtractorMalformedBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"not":"an array"}`))
	}))
	defer server.Close()

	client := NewAPIClient(server.URL, "")
	_, err := NewAPIExtractor[RawOrderItem](client).Extract(context.Background(), "order-items")
	if err == nil {
		t.Fatal("Expected error for non-array body")
	}
}

func TestAPIClientTrimsSlashes(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/customers" {
			t.Errorf("Unexpected path: %s", r.URL.Path)
		}
		w.Write([]byte(`[]`))
	}))
	defer server.Close()

	client := NewAPIClient(server.URL+"/api/", "")
	if _, err := NewAPIExtractor[RawCustomer](client).Extract(context.Background(), "/customers"); err != nil {
		t.Fatalf("Extract failed: %v", err)
	}
}
