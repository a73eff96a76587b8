// Package warehouse persists the star schema into the target database and
// verifies its integrity after each load.
package warehouse

import (
	"context"
	"fmt"
)

// Target table names, fixed by the star schema contract.
const (
	TableCustomers = "dim_customers"
	TableProducts  = "dim_products"
	TableSellers   = "dim_sellers"
	TableDate      = "dim_date"
	TableFacts     = "fct_orders"
	TableRuns      = "dwforge_runs"
)

// DimensionLoadOrder is the fixed order dimensions are appended in.
// The fact table always loads after all dimensions.
var DimensionLoadOrder = []string{TableCustomers, TableProducts, TableSellers, TableDate}

// TruncateOrder clears tables in reverse dependency order so foreign keys
// never transiently dangle.
var TruncateOrder = []string{TableFacts, TableCustomers, TableProducts, TableSellers, TableDate}

const createSchemaSQL = `
CREATE TABLE IF NOT EXISTS dim_customers (
    customer_key             BIGINT PRIMARY KEY,
    customer_id              VARCHAR(50) NOT NULL UNIQUE,
    customer_unique_id       VARCHAR(50),
    customer_zip_code_prefix VARCHAR(10),
    customer_city            VARCHAR(100),
    customer_state           VARCHAR(2),
    customer_region          VARCHAR(20),
    is_current               BOOLEAN NOT NULL DEFAULT TRUE,
    valid_from               TIMESTAMP NOT NULL,
    valid_to                 TIMESTAMP NOT NULL
);

CREATE TABLE IF NOT EXISTS dim_products (
    product_key                   BIGINT PRIMARY KEY,
    product_id                    VARCHAR(50) NOT NULL UNIQUE,
    product_category_name         VARCHAR(100),
    product_category_name_english VARCHAR(100),
    product_name_length           INTEGER,
    product_description_length    INTEGER,
    product_photos_qty            INTEGER,
    product_weight_g              NUMERIC(10,2),
    product_length_cm             NUMERIC(10,2),
    product_height_cm             NUMERIC(10,2),
    product_width_cm              NUMERIC(10,2),
    product_volume_cm3            NUMERIC(14,2),
    product_size_class            VARCHAR(10),
    is_current                    BOOLEAN NOT NULL DEFAULT TRUE,
    valid_from                    TIMESTAMP NOT NULL,
    valid_to                      TIMESTAMP NOT NULL
);

CREATE TABLE IF NOT EXISTS dim_sellers (
    seller_key             BIGINT PRIMARY KEY,
    seller_id              VARCHAR(50) NOT NULL UNIQUE,
    seller_zip_code_prefix VARCHAR(10),
    seller_city            VARCHAR(100),
    seller_state           VARCHAR(2),
    seller_region          VARCHAR(20),
    is_current             BOOLEAN NOT NULL DEFAULT TRUE,
    valid_from             TIMESTAMP NOT NULL,
    valid_to               TIMESTAMP NOT NULL
);

CREATE TABLE IF NOT EXISTS dim_date (
    date_key     INTEGER PRIMARY KEY,
    full_date    DATE NOT NULL UNIQUE,
    year         INTEGER NOT NULL,
    quarter      INTEGER NOT NULL,
    quarter_name VARCHAR(2) NOT NULL,
    month        INTEGER NOT NULL,
    month_name   VARCHAR(10) NOT NULL,
    day          INTEGER NOT NULL,
    day_of_week  INTEGER NOT NULL,
    day_name     VARCHAR(10) NOT NULL,
    week_of_year INTEGER NOT NULL,
    day_of_year  INTEGER NOT NULL,
    is_weekend   BOOLEAN NOT NULL,
    season       VARCHAR(10) NOT NULL
);

CREATE TABLE IF NOT EXISTS fct_orders (
    customer_key                 BIGINT NOT NULL,
    product_key                  BIGINT NOT NULL,
    seller_key                   BIGINT NOT NULL,
    purchase_date_key            INTEGER NOT NULL,
    approval_date_key            INTEGER,
    carrier_date_key             INTEGER,
    delivery_date_key            INTEGER,
    order_id                     VARCHAR(50) NOT NULL,
    order_item_id                INTEGER NOT NULL,
    price                        NUMERIC(10,2) NOT NULL,
    freight_value                NUMERIC(10,2) NOT NULL,
    payment_value                NUMERIC(10,2) NOT NULL,
    total_order_value            NUMERIC(10,2) NOT NULL,
    review_score                 NUMERIC(3,2),
    delivery_time_days           NUMERIC(8,2),
    estimated_delivery_time_days NUMERIC(8,2),
    delivery_delay_days          NUMERIC(8,2),
    is_delayed                   BOOLEAN NOT NULL,
    is_cancelled                 BOOLEAN NOT NULL,
    created_at                   TIMESTAMP NOT NULL,
    updated_at                   TIMESTAMP NOT NULL,
    PRIMARY KEY (order_id, order_item_id)
);

CREATE INDEX IF NOT EXISTS idx_fct_orders_customer ON fct_orders (customer_key);
CREATE INDEX IF NOT EXISTS idx_fct_orders_product ON fct_orders (product_key);
CREATE INDEX IF NOT EXISTS idx_fct_orders_seller ON fct_orders (seller_key);
CREATE INDEX IF NOT EXISTS idx_fct_orders_purchase_date ON fct_orders (purchase_date_key);

CREATE TABLE IF NOT EXISTS dwforge_runs (
    run_id       VARCHAR(40) PRIMARY KEY,
    started_at   TIMESTAMP NOT NULL,
    finished_at  TIMESTAMP NOT NULL,
    state        VARCHAR(20) NOT NULL,
    fact_rows    BIGINT NOT NULL,
    dropped_rows BIGINT NOT NULL
)`

const dropSchemaSQL = `
DROP TABLE IF EXISTS fct_orders;
DROP TABLE IF EXISTS dim_customers;
DROP TABLE IF EXISTS dim_products;
DROP TABLE IF EXISTS dim_sellers;
DROP TABLE IF EXISTS dim_date;
DROP TABLE IF EXISTS dwforge_runs`

// CreateSchema creates the star schema tables if they do not exist.
func CreateSchema(ctx context.Context, db Execer) error {
	if _, err := db.Exec(ctx, createSchemaSQL); err != nil {
		return fmt.Errorf("failed to create warehouse schema: %w", err)
	}
	return nil
}

// DropSchema drops the star schema tables.
func DropSchema(ctx context.Context, db Execer) error {
	if _, err := db.Exec(ctx, dropSchemaSQL); err != nil {
		return fmt.Errorf("failed to drop warehouse schema: %w", err)
	}
	return nil
}
