package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// ShiftSummary is the end-of-day closing of the till: closed orders of one
// day grouped by payment method.
type ShiftSummary struct {
	Day         time.Time                         `json:"day"`
	Operator    string                            `json:"operator"`
	GeneratedAt time.Time                         `json:"generatedAt"`
	Orders      []Order                           `json:"orders"`
	Count       int                               `json:"count"`
	ByMethod    map[PaymentMethod]decimal.Decimal `json:"byMethod"`
	Gross       decimal.Decimal                   `json:"gross"`
	Tax         decimal.Decimal                   `json:"tax"`
	Net         decimal.Decimal                   `json:"net"`
	Profit      decimal.Decimal                   `json:"profit"`
}

// FinanceMetrics backs the finance dashboard. Today* figures cover the
// current calendar day; the rest cover every closed order.
type FinanceMetrics struct {
	GrossRevenue     decimal.Decimal                   `json:"grossRevenue"`
	TaxTotal         decimal.Decimal                   `json:"taxTotal"`
	NetRevenue       decimal.Decimal                   `json:"netRevenue"`
	Profit           decimal.Decimal                   `json:"profit"`
	ClosedCount      int                               `json:"closedCount"`
	OverallMarginPct decimal.Decimal                   `json:"overallMarginPct"`
	TodayGross       decimal.Decimal                   `json:"todayGross"`
	TodayProfit      decimal.Decimal                   `json:"todayProfit"`
	TodayCount       int                               `json:"todayCount"`
	TodayMarginPct   decimal.Decimal                   `json:"todayMarginPct"`
	ByMethod         map[PaymentMethod]decimal.Decimal `json:"byMethod"`
	OpenOrders       int                               `json:"openOrders"`
	OpenValue        decimal.Decimal                   `json:"openValue"`
	Outstanding      decimal.Decimal                   `json:"outstandingDebt"`
}
