package infra

import (
	"fmt"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// NewCloudDatabase opens the PostgreSQL cloud mirror through GORM (pgx driver)
// and applies the idempotent schema patches below.
func NewCloudDatabase(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(5)
	sqlDB.SetMaxIdleConns(2)

	if err := ApplyCloudSchema(db); err != nil {
		return nil, fmt.Errorf("cloud schema: %w", err)
	}
	return db, nil
}

// ApplyCloudSchema creates the mirror tables. The schema is kept as plain SQL
// rather than AutoMigrate so decimal precision and indexes stay explicit.
// Every statement is safe to re-run.
func ApplyCloudSchema(db *gorm.DB) error {
	patches := []struct{ descr, sql string }{
		{"sales_history", `
CREATE TABLE IF NOT EXISTS sales_history (
    id          TEXT PRIMARY KEY,
    invoice_no  TEXT NOT NULL,
    total       DECIMAL(14,2) NOT NULL,
    tax_total   DECIMAL(14,2) NOT NULL DEFAULT 0,
    profit      DECIMAL(14,2) NOT NULL DEFAULT 0,
    method      TEXT NOT NULL,
    customer_id TEXT,
    table_id    INT,
    hash        TEXT NOT NULL,
    timestamp   TIMESTAMPTZ NOT NULL,
    synced_at   TIMESTAMPTZ NOT NULL
)`},
		{"sales_history invoice index", `
CREATE UNIQUE INDEX IF NOT EXISTS idx_sales_history_invoice_no ON sales_history (invoice_no)`},
		{"sales_history timestamp index", `
CREATE INDEX IF NOT EXISTS idx_sales_history_timestamp ON sales_history (timestamp)`},
		{"menu", `
CREATE TABLE IF NOT EXISTS menu (
    id                 TEXT PRIMARY KEY,
    name               TEXT NOT NULL,
    price              DECIMAL(14,2) NOT NULL,
    cost_price         DECIMAL(14,2) NOT NULL DEFAULT 0,
    category_id        TEXT,
    is_visible_digital BOOLEAN NOT NULL DEFAULT TRUE,
    is_featured        BOOLEAN NOT NULL DEFAULT FALSE,
    synced_at          TIMESTAMPTZ NOT NULL
)`},
		{"categories", `
CREATE TABLE IF NOT EXISTS categories (
    id                 TEXT PRIMARY KEY,
    name               TEXT NOT NULL,
    is_visible_digital BOOLEAN NOT NULL DEFAULT TRUE,
    synced_at          TIMESTAMPTZ NOT NULL
)`},
		{"customers_cloud", `
CREATE TABLE IF NOT EXISTS customers_cloud (
    id        TEXT PRIMARY KEY,
    name      TEXT NOT NULL,
    nif       TEXT,
    balance   DECIMAL(14,2) NOT NULL DEFAULT 0,
    synced_at TIMESTAMPTZ NOT NULL
)`},
		{"sync_logs", `
CREATE TABLE IF NOT EXISTS sync_logs (
    id         SERIAL PRIMARY KEY,
    kind       TEXT NOT NULL,
    rows       INT NOT NULL,
    created_at TIMESTAMPTZ NOT NULL
)`},
	}
	for _, p := range patches {
		if err := db.Exec(p.sql).Error; err != nil {
			return fmt.Errorf("patch %q: %w", p.descr, err)
		}
	}
	return nil
}
