package load

import (
	"context"
	"errors"

	"github.com/salesinsight/dwhetl/internal/etl"
)

var errStore = errors.New("store failure")

// fakeStaging is an in-memory store.Staging for loader tests.
type fakeStaging struct {
	customers []etl.StagingCustomer
	products  []etl.StagingProduct
	sales     []etl.StagingSale

	markedCustomers  []etl.StagingCustomer
	markedProducts   []etl.StagingProduct
	markedSales      []etl.StagingSale
	salesValidations []etl.StagingSale

	failFetch bool
	failMark  bool
}

func (f *fakeStaging) InsertCustomers(ctx context.Context, records []etl.StagingCustomer) error {
	f.customers = append(f.customers, records...)
	return nil
}

func (f *fakeStaging) InsertProducts(ctx context.Context, records []etl.StagingProduct) error {
	f.products = append(f.products, records...)
	return nil
}

func (f *fakeStaging) InsertSales(ctx context.Context, records []etl.StagingSale) error {
	f.sales = append(f.sales, records...)
	return nil
}

func (f *fakeStaging) UnprocessedCustomers(ctx context.Context) ([]etl.StagingCustomer, error) {
	if f.failFetch {
		return nil, errStore
	}
	var out []etl.StagingCustomer
	for _, r := range f.customers {
		if r.Valid && !r.Processed {
			out = append(out, r)
		}
	}
	return out, nil
}

func (f *fakeStaging) UnprocessedProducts(ctx context.Context) ([]etl.StagingProduct, error) {
	if f.failFetch {
		return nil, errStore
	}
	var out []etl.StagingProduct
	for _, r := range f.products {
		if r.Valid && !r.Processed {
			out = append(out, r)
		}
	}
	return out, nil
}

func (f *fakeStaging) UnprocessedSales(ctx context.Context) ([]etl.StagingSale, error) {
	if f.failFetch {
		return nil, errStore
	}
	var out []etl.StagingSale
	for _, r := range f.sales {
		if r.Valid && !r.Processed {
			out = append(out, r)
		}
	}
	return out, nil
}

func (f *fakeStaging) MarkCustomersProcessed(ctx context.Context, records []etl.StagingCustomer) error {
	if f.failMark {
		return errStore
	}
	f.markedCustomers = append(f.markedCustomers, records...)
	for i := range f.customers {
		f.customers[i].Processed = true
	}
	return nil
}

func (f *fakeStaging) MarkProductsProcessed(ctx context.Context, records []etl.StagingProduct) error {
	if f.failMark {
		return errStore
	}
	f.markedProducts = append(f.markedProducts, records...)
	for i := range f.products {
		f.products[i].Processed = true
	}
	return nil
}

func (f *fakeStaging) MarkSalesProcessed(ctx context.Context, records []etl.StagingSale) error {
	if f.failMark {
		return errStore
	}
	f.markedSales = append(f.markedSales, records...)
	for _, m := range records {
		for i := range f.sales {
			if f.sales[i].OrderNumber == m.OrderNumber && f.sales[i].ProductCode == m.ProductCode {
				f.sales[i].Processed = true
			}
		}
	}
	return nil
}

func (f *fakeStaging) UpdateSalesValidation(ctx context.Context, records []etl.StagingSale) error {
	f.salesValidations = append(f.salesValidations, records...)
	return nil
}

func (f *fakeStaging) DeleteAll(ctx context.Context) (int64, error) {
	n := int64(len(f.customers) + len(f.products) + len(f.sales))
	f.customers, f.products, f.sales = nil, nil, nil
	return n, nil
}

// fakeWarehouse is an in-memory store.Warehouse for loader tests.
type fakeWarehouse struct {
	customers map[string]etl.CustomerDim
	products  map[string]etl.ProductDim
	dates     map[int]etl.DateDim
	nextID    int64

	deactivatedCustomers []etl.CustomerDim
	insertedCustomers    []etl.CustomerDim
	deactivatedProducts  []etl.ProductDim
	insertedProducts     []etl.ProductDim
	factBatches          [][]etl.FactSale

	failApply bool
	failBulk  bool
}

func newFakeWarehouse() *fakeWarehouse {
	return &fakeWarehouse{
		customers: make(map[string]etl.CustomerDim),
		products:  make(map[string]etl.ProductDim),
		dates:     make(map[int]etl.DateDim),
	}
}

func (f *fakeWarehouse) addCustomer(dim etl.CustomerDim) etl.CustomerDim {
	f.nextID++
	dim.ID = f.nextID
	dim.Active = true
	f.customers[dim.Code] = dim
	return dim
}

func (f *fakeWarehouse) addProduct(dim etl.ProductDim) etl.ProductDim {
	f.nextID++
	dim.ID = f.nextID
	dim.Active = true
	f.products[dim.Code] = dim
	return dim
}

func (f *fakeWarehouse) addDate(dim etl.DateDim) {
	f.dates[dim.Key] = dim
}

func (f *fakeWarehouse) ActiveCustomersByCode(ctx context.Context) (map[string]etl.CustomerDim, error) {
	out := make(map[string]etl.CustomerDim, len(f.customers))
	for k, v := range f.customers {
		out[k] = v
	}
	return out, nil
}

func (f *fakeWarehouse) ActiveProductsByCode(ctx context.Context) (map[string]etl.ProductDim, error) {
	out := make(map[string]etl.ProductDim, len(f.products))
	for k, v := range f.products {
		out[k] = v
	}
	return out, nil
}

func (f *fakeWarehouse) DatesByKey(ctx context.Context) (map[int]etl.DateDim, error) {
	out := make(map[int]etl.DateDim, len(f.dates))
	for k, v := range f.dates {
		out[k] = v
	}
	return out, nil
}

func (f *fakeWarehouse) ApplyCustomerChanges(ctx context.Context, deactivate, insert []etl.CustomerDim) error {
	if f.failApply {
		return errStore
	}
	f.deactivatedCustomers = append(f.deactivatedCustomers, deactivate...)
	for _, dim := range insert {
		f.nextID++
		dim.ID = f.nextID
		f.customers[dim.Code] = dim
		f.insertedCustomers = append(f.insertedCustomers, dim)
	}
	return nil
}

func (f *fakeWarehouse) ApplyProductChanges(ctx context.Context, deactivate, insert []etl.ProductDim) error {
	if f.failApply {
		return errStore
	}
	f.deactivatedProducts = append(f.deactivatedProducts, deactivate...)
	for _, dim := range insert {
		f.nextID++
		dim.ID = f.nextID
		f.products[dim.Code] = dim
		f.insertedProducts = append(f.insertedProducts, dim)
	}
	return nil
}

func (f *fakeWarehouse) BulkInsertFacts(ctx context.Context, facts []etl.FactSale) error {
	if f.failBulk {
		return errStore
	}
	batch := make([]etl.FactSale, len(facts))
	copy(batch, facts)
	f.factBatches = append(f.factBatches, batch)
	return nil
}

func (f *fakeWarehouse) Cleanup(ctx context.Context) (int64, error) {
	n := int64(len(f.customers) + len(f.products))
	for _, batch := range f.factBatches {
		n += int64(len(batch))
	}
	f.customers = make(map[string]etl.CustomerDim)
	f.products = make(map[string]etl.ProductDim)
	f.factBatches = nil
	return n, nil
}

func (f *fakeWarehouse) factCount() int {
	n := 0
	for _, batch := range f.factBatches {
		n += len(batch)
	}
	return n
}
