package store

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/salesinsight/dwhetl/internal/etl"
	"github.com/salesinsight/dwhetl/internal/logging"
)

// Staging schema. Every row keeps its validation outcome so the reasons
// stay visible to operators; the load queries filter on valid.
const createStagingSQL = `
CREATE TABLE IF NOT EXISTS staging_customer (
    id               BIGSERIAL PRIMARY KEY,
    code             VARCHAR(50) NOT NULL DEFAULT '',
    first_name       VARCHAR(100) NOT NULL DEFAULT '',
    last_name        VARCHAR(100) NOT NULL DEFAULT '',
    email            VARCHAR(200) NOT NULL DEFAULT '',
    phone            VARCHAR(50) NOT NULL DEFAULT '',
    city             VARCHAR(100) NOT NULL DEFAULT '',
    country          VARCHAR(100) NOT NULL DEFAULT '',
    origin           VARCHAR(20) NOT NULL DEFAULT '',
    valid            BOOLEAN NOT NULL DEFAULT FALSE,
    validation_error TEXT NOT NULL DEFAULT '',
    processed        BOOLEAN NOT NULL DEFAULT FALSE,
    created_at       TIMESTAMPTZ NOT NULL DEFAULT now(),
    updated_at       TIMESTAMPTZ
);

CREATE TABLE IF NOT EXISTS staging_product (
    id               BIGSERIAL PRIMARY KEY,
    code             VARCHAR(50) NOT NULL DEFAULT '',
    name             VARCHAR(200) NOT NULL DEFAULT '',
    category         VARCHAR(100) NOT NULL DEFAULT '',
    price            NUMERIC(12,2),
    stock            INTEGER,
    origin           VARCHAR(20) NOT NULL DEFAULT '',
    valid            BOOLEAN NOT NULL DEFAULT FALSE,
    validation_error TEXT NOT NULL DEFAULT '',
    processed        BOOLEAN NOT NULL DEFAULT FALSE,
    created_at       TIMESTAMPTZ NOT NULL DEFAULT now(),
    updated_at       TIMESTAMPTZ
);

CREATE TABLE IF NOT EXISTS staging_sale (
    id               BIGSERIAL PRIMARY KEY,
    order_number     VARCHAR(50) NOT NULL DEFAULT '',
    customer_code    VARCHAR(50) NOT NULL DEFAULT '',
    product_code     VARCHAR(50) NOT NULL DEFAULT '',
    order_date       DATE,
    quantity         INTEGER,
    unit_price       NUMERIC(12,2),
    total            NUMERIC(12,2),
    status           VARCHAR(50) NOT NULL DEFAULT '',
    origin           VARCHAR(20) NOT NULL DEFAULT '',
    valid            BOOLEAN NOT NULL DEFAULT FALSE,
    validation_error TEXT NOT NULL DEFAULT '',
    processed        BOOLEAN NOT NULL DEFAULT FALSE,
    created_at       TIMESTAMPTZ NOT NULL DEFAULT now(),
    updated_at       TIMESTAMPTZ
);

CREATE INDEX IF NOT EXISTS idx_staging_customer_pending
    ON staging_customer (id) WHERE valid AND NOT processed;
CREATE INDEX IF NOT EXISTS idx_staging_product_pending
    ON staging_product (id) WHERE valid AND NOT processed;
CREATE INDEX IF NOT EXISTS idx_staging_sale_pending
    ON staging_sale (id) WHERE valid AND NOT processed;
`

// Warehouse schema: SCD Type 2 dimensions, the calendar dimension and the
// sales fact table. The partial unique indexes enforce the single-active-
// version invariant at the store level.
const createWarehouseSQL = `
CREATE TABLE IF NOT EXISTS dim_customer (
    id         BIGSERIAL PRIMARY KEY,
    code       VARCHAR(50) NOT NULL,
    first_name VARCHAR(100) NOT NULL DEFAULT '',
    last_name  VARCHAR(100) NOT NULL DEFAULT '',
    email      VARCHAR(200) NOT NULL DEFAULT '',
    phone      VARCHAR(50) NOT NULL DEFAULT '',
    city       VARCHAR(100) NOT NULL DEFAULT '',
    country    VARCHAR(100) NOT NULL DEFAULT '',
    version    INTEGER NOT NULL DEFAULT 1,
    active     BOOLEAN NOT NULL DEFAULT TRUE,
    valid_from TIMESTAMPTZ NOT NULL DEFAULT now(),
    valid_to   TIMESTAMPTZ,
    created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
    updated_at TIMESTAMPTZ
);

CREATE UNIQUE INDEX IF NOT EXISTS uq_dim_customer_active
    ON dim_customer (code) WHERE active;
CREATE INDEX IF NOT EXISTS idx_dim_customer_code ON dim_customer (code);

CREATE TABLE IF NOT EXISTS dim_product (
    id         BIGSERIAL PRIMARY KEY,
    code       VARCHAR(50) NOT NULL,
    name       VARCHAR(200) NOT NULL DEFAULT '',
    category   VARCHAR(100) NOT NULL DEFAULT '',
    price      NUMERIC(12,2) NOT NULL DEFAULT 0,
    stock      INTEGER NOT NULL DEFAULT 0,
    version    INTEGER NOT NULL DEFAULT 1,
    active     BOOLEAN NOT NULL DEFAULT TRUE,
    valid_from TIMESTAMPTZ NOT NULL DEFAULT now(),
    valid_to   TIMESTAMPTZ,
    created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
    updated_at TIMESTAMPTZ
);

CREATE UNIQUE INDEX IF NOT EXISTS uq_dim_product_active
    ON dim_product (code) WHERE active;
CREATE INDEX IF NOT EXISTS idx_dim_product_code ON dim_product (code);

CREATE TABLE IF NOT EXISTS dim_date (
    key          INTEGER PRIMARY KEY,
    date         DATE NOT NULL,
    year         INTEGER NOT NULL,
    quarter      INTEGER NOT NULL,
    month        INTEGER NOT NULL,
    month_name   VARCHAR(20) NOT NULL,
    day          INTEGER NOT NULL,
    weekday      INTEGER NOT NULL,
    weekday_name VARCHAR(20) NOT NULL,
    week_of_year INTEGER NOT NULL,
    weekend      BOOLEAN NOT NULL
);

CREATE TABLE IF NOT EXISTS fact_sales (
    id           BIGSERIAL PRIMARY KEY,
    customer_id  BIGINT NOT NULL REFERENCES dim_customer(id),
    product_id   BIGINT NOT NULL REFERENCES dim_product(id),
    date_key     INTEGER NOT NULL REFERENCES dim_date(key),
    quantity     INTEGER NOT NULL,
    unit_price   NUMERIC(12,2) NOT NULL,
    total        NUMERIC(12,2) NOT NULL,
    order_number VARCHAR(50) NOT NULL DEFAULT '',
    status       VARCHAR(50) NOT NULL DEFAULT '',
    origin       VARCHAR(20) NOT NULL DEFAULT '',
    created_at   TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS idx_fact_sales_customer ON fact_sales (customer_id);
CREATE INDEX IF NOT EXISTS idx_fact_sales_product ON fact_sales (product_id);
CREATE INDEX IF NOT EXISTS idx_fact_sales_date ON fact_sales (date_key);
`

const dropStagingSQL = `
DROP TABLE IF EXISTS staging_sale;
DROP TABLE IF EXISTS staging_product;
DROP TABLE IF EXISTS staging_customer;
`

const dropWarehouseSQL = `
DROP TABLE IF EXISTS fact_sales;
DROP TABLE IF EXISTS dim_date;
DROP TABLE IF EXISTS dim_product;
DROP TABLE IF EXISTS dim_customer;
`

// CreateStagingSchema creates the staging tables.
func CreateStagingSchema(ctx context.Context, db DB) error {
	if _, err := db.Exec(ctx, createStagingSQL); err != nil {
		return fmt.Errorf("failed to create staging schema: %w", err)
	}
	logging.Info().Msg("Staging schema created")
	return nil
}

// CreateWarehouseSchema creates the warehouse tables.
func CreateWarehouseSchema(ctx context.Context, db DB) error {
	if _, err := db.Exec(ctx, createWarehouseSQL); err != nil {
		return fmt.Errorf("failed to create warehouse schema: %w", err)
	}
	logging.Info().Msg("Warehouse schema created")
	return nil
}

// DropStagingSchema drops the staging tables.
func DropStagingSchema(ctx context.Context, db DB) error {
	if _, err := db.Exec(ctx, dropStagingSQL); err != nil {
		return fmt.Errorf("failed to drop staging schema: %w", err)
	}
	return nil
}

// DropWarehouseSchema drops the warehouse tables.
func DropWarehouseSchema(ctx context.Context, db DB) error {
	if _, err := db.Exec(ctx, dropWarehouseSQL); err != nil {
		return fmt.Errorf("failed to drop warehouse schema: %w", err)
	}
	return nil
}

// PopulateCalendar fills dim_date for every day in [from, to], skipping
// when the range is already present. Dates are bulk-copied.
func PopulateCalendar(ctx context.Context, db DB, from, to time.Time) error {
	if to.Before(from) {
		return fmt.Errorf("calendar range end %s before start %s", to.Format("2006-01-02"), from.Format("2006-01-02"))
	}

	var existing int
	err := db.QueryRow(ctx,
		`SELECT count(*) FROM dim_date WHERE key >= $1 AND key <= $2`,
		etl.DateKey(from), etl.DateKey(to)).Scan(&existing)
	if err != nil {
		return fmt.Errorf("failed to check calendar range: %w", err)
	}

	var rows [][]any
	for d := from; !d.After(to); d = d.AddDate(0, 0, 1) {
		dim := etl.NewDateDim(d)
		rows = append(rows, []any{
			dim.Key, dim.Date, dim.Year, dim.Quarter, dim.Month, dim.MonthName,
			dim.Day, dim.Weekday, dim.WeekdayName, dim.WeekOfYear, dim.Weekend,
		})
	}

	if existing == len(rows) {
		logging.Debug().Int("days", existing).Msg("Calendar already populated")
		return nil
	}
	if existing > 0 {
		return fmt.Errorf("calendar range partially populated: %d of %d days present", existing, len(rows))
	}

	copied, err := db.CopyFrom(ctx,
		pgx.Identifier{"dim_date"},
		[]string{"key", "date", "year", "quarter", "month", "month_name",
			"day", "weekday", "weekday_name", "week_of_year", "weekend"},
		pgx.CopyFromRows(rows))
	if err != nil {
		return fmt.Errorf("failed to populate calendar: %w", err)
	}

	logging.Info().
		Int64("days", copied).
		Str("from", from.Format("2006-01-02")).
		Str("to", to.Format("2006-01-02")).
		Msg("Calendar dimension populated")

	return nil
}
