package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Rows of the cloud mirror. The local snapshot stays authoritative; these
// tables are a one-way copy for the owner's remote dashboard.

type CloudSale struct {
	ID            string          `gorm:"primaryKey;type:text"`
	InvoiceNumber string          `gorm:"column:invoice_no;type:text;uniqueIndex"`
	Total         decimal.Decimal `gorm:"type:decimal(14,2);not null"`
	TaxTotal      decimal.Decimal `gorm:"type:decimal(14,2);not null"`
	Profit        decimal.Decimal `gorm:"type:decimal(14,2);not null"`
	Method        string          `gorm:"type:text;not null"`
	CustomerID    *string         `gorm:"type:text"`
	TableID       *int
	Hash          string    `gorm:"type:text;not null"`
	Timestamp     time.Time `gorm:"not null"`
	SyncedAt      time.Time `gorm:"not null"`
}

func (CloudSale) TableName() string { return "sales_history" }

type CloudDish struct {
	ID               string          `gorm:"primaryKey;type:text"`
	Name             string          `gorm:"type:text;not null"`
	Price            decimal.Decimal `gorm:"type:decimal(14,2);not null"`
	CostPrice        decimal.Decimal `gorm:"type:decimal(14,2);not null"`
	CategoryID       string          `gorm:"type:text"`
	IsVisibleDigital bool
	IsFeatured       bool
	SyncedAt         time.Time `gorm:"not null"`
}

func (CloudDish) TableName() string { return "menu" }

type CloudCategory struct {
	ID               string `gorm:"primaryKey;type:text"`
	Name             string `gorm:"type:text;not null"`
	IsVisibleDigital bool
	SyncedAt         time.Time `gorm:"not null"`
}

func (CloudCategory) TableName() string { return "categories" }

type CloudCustomer struct {
	ID       string          `gorm:"primaryKey;type:text"`
	Name     string          `gorm:"type:text;not null"`
	NIF      string          `gorm:"type:text"`
	Balance  decimal.Decimal `gorm:"type:decimal(14,2);not null"`
	SyncedAt time.Time       `gorm:"not null"`
}

func (CloudCustomer) TableName() string { return "customers_cloud" }

// SyncLog records each push for the remote dashboard's health panel.
type SyncLog struct {
	ID        uint      `gorm:"primaryKey"`
	Kind      string    `gorm:"type:text;not null"`
	Rows      int       `gorm:"not null"`
	CreatedAt time.Time `gorm:"not null"`
}

func (SyncLog) TableName() string { return "sync_logs" }

// CloudSaleFromOrder maps a closed order to its mirror row.
func CloudSaleFromOrder(o *Order, at time.Time) CloudSale {
	row := CloudSale{
		ID:         o.ID,
		Total:      o.Total,
		TaxTotal:   o.TaxTotal,
		Profit:     o.Profit,
		CustomerID: cloneString(o.CustomerID),
		TableID:    cloneInt(o.TableID),
		Timestamp:  o.Timestamp,
		SyncedAt:   at,
	}
	if o.InvoiceNumber != nil {
		row.InvoiceNumber = *o.InvoiceNumber
	}
	if o.Hash != nil {
		row.Hash = *o.Hash
	}
	if o.PaymentMethod != nil {
		row.Method = string(*o.PaymentMethod)
	}
	if o.ClosedAt != nil {
		row.Timestamp = *o.ClosedAt
	}
	return row
}
