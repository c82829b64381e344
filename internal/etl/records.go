// Package etl defines the staging and warehouse record types moved through
// the ETL pipeline: staging rows with their validation lifecycle, versioned
// dimension rows (SCD Type 2), the immutable calendar dimension, and sale
// fact rows.
package etl

import (
	"time"

	"github.com/shopspring/decimal"
)

// Origin tags carried on staging records to identify the source system.
const (
	OriginCSV = "CSV"
	OriginAPI = "API"
)

// StagingCustomer is a validated-but-not-yet-merged customer record.
type StagingCustomer struct {
	ID        int64
	Code      string
	FirstName string
	LastName  string
	Email     string
	Phone     string
	City      string
	Country   string

	// ETL control fields
	Origin          string
	Valid           bool
	ValidationError string
	Processed       bool
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// StagingProduct is a validated-but-not-yet-merged product record.
// Price and Stock are nil when the source value was absent or unparsable.
type StagingProduct struct {
	ID       int64
	Code     string
	Name     string
	Category string
	Price    *decimal.Decimal
	Stock    *int

	// ETL control fields
	Origin          string
	Valid           bool
	ValidationError string
	Processed       bool
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// StagingSale is one order line item joined to its order header. Optional
// fields are nil when the source value was absent or unparsable.
type StagingSale struct {
	ID           int64
	OrderNumber  string
	CustomerCode string
	ProductCode  string
	OrderDate    *time.Time
	Quantity     *int
	UnitPrice    *decimal.Decimal
	Total        *decimal.Decimal
	Status       string

	// ETL control fields
	Origin          string
	Valid           bool
	ValidationError string
	Processed       bool
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// CustomerDim is a customer dimension version. For a given Code at most one
// row is Active; Version increases with each change.
type CustomerDim struct {
	ID        int64
	Code      string
	FirstName string
	LastName  string
	Email     string
	Phone     string
	City      string
	Country   string

	Version   int
	Active    bool
	ValidFrom time.Time
	ValidTo   *time.Time
	CreatedAt time.Time
	UpdatedAt time.Time
}

// SameAttributes reports whether the SCD-tracked attributes of c match s.
func (c CustomerDim) SameAttributes(s StagingCustomer) bool {
	return c.FirstName == s.FirstName &&
		c.LastName == s.LastName &&
		c.Email == s.Email &&
		c.Phone == s.Phone &&
		c.City == s.City &&
		c.Country == s.Country
}

// ProductDim is a product dimension version.
type ProductDim struct {
	ID       int64
	Code     string
	Name     string
	Category string
	Price    decimal.Decimal
	Stock    int

	Version   int
	Active    bool
	ValidFrom time.Time
	ValidTo   *time.Time
	CreatedAt time.Time
	UpdatedAt time.Time
}

// SameAttributes reports whether the SCD-tracked attributes of p match s.
// A nil staging price or stock compares as the zero value, mirroring the
// defaulting applied when the dimension row is built.
func (p ProductDim) SameAttributes(s StagingProduct) bool {
	price := decimal.Zero
	if s.Price != nil {
		price = *s.Price
	}
	stock := 0
	if s.Stock != nil {
		stock = *s.Stock
	}
	return p.Name == s.Name &&
		p.Category == s.Category &&
		p.Price.Equal(price) &&
		p.Stock == stock
}

// DateDim is one precomputed calendar date. Key is the YYYYMMDD encoding
// of Date. Rows are populated by `dwhetl init` and never written by the
// loader.
type DateDim struct {
	Key         int
	Date        time.Time
	Year        int
	Quarter     int
	Month       int
	MonthName   string
	Day         int
	Weekday     int // 1 = Monday .. 7 = Sunday
	WeekdayName string
	WeekOfYear  int
	Weekend     bool
}

// FactSale is one loaded sale, referencing dimension surrogate keys.
// Fact rows are append-only; corrections arrive as new staging records.
type FactSale struct {
	ID         int64
	CustomerID int64
	ProductID  int64
	DateKey    int

	Quantity  int
	UnitPrice decimal.Decimal
	Total     decimal.Decimal

	OrderNumber string
	Status      string
	Origin      string
	CreatedAt   time.Time
}

// DateKey returns the YYYYMMDD integer encoding of t.
func DateKey(t time.Time) int {
	y, m, d := t.Date()
	return y*10000 + int(m)*100 + d
}

// NewDateDim builds the calendar row for t.
func NewDateDim(t time.Time) DateDim {
	y, m, d := t.Date()
	day := time.Date(y, m, d, 0, 0, 0, 0, t.Location())

	// time.Weekday counts Sunday as 0; the calendar dimension counts
	// Monday as 1 through Sunday as 7.
	weekday := int(t.Weekday())
	if weekday == 0 {
		weekday = 7
	}

	_, week := t.ISOWeek()

	return DateDim{
		Key:         DateKey(t),
		Date:        day,
		Year:        y,
		Quarter:     (int(m)-1)/3 + 1,
		Month:       int(m),
		MonthName:   m.String(),
		Day:         d,
		Weekday:     weekday,
		WeekdayName: t.Weekday().String(),
		WeekOfYear:  week,
		Weekend:     weekday >= 6,
	}
}
