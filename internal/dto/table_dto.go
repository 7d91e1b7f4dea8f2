package dto

import (
	"veredapos/internal/model"

	"github.com/shopspring/decimal"
)

// ── Request DTOs ──────────────────────────────────────────────────────────────

// CreateTableRequest with ID 0 takes the next free number.
type CreateTableRequest struct {
	ID    int        `json:"id"    validate:"omitempty,min=1"`
	Name  string     `json:"name"  validate:"required,min=1,max=40"`
	Zone  model.Zone `json:"zone"  validate:"omitempty,oneof=INTERIOR EXTERIOR BALCAO"`
	Seats int        `json:"seats" validate:"omitempty,min=1,max=50"`
	X     float64    `json:"x"`
	Y     float64    `json:"y"`
}

// UpdateTableRequest has no status field: occupancy is derived.
type UpdateTableRequest struct {
	Name  *string     `json:"name"  validate:"omitempty,min=1,max=40"`
	Zone  *model.Zone `json:"zone"  validate:"omitempty,oneof=INTERIOR EXTERIOR BALCAO"`
	Seats *int        `json:"seats" validate:"omitempty,min=1,max=50"`
}

type MoveTableRequest struct {
	X float64 `json:"x" validate:"min=0"`
	Y float64 `json:"y" validate:"min=0"`
}

// ── Response DTOs ─────────────────────────────────────────────────────────────

// TableDisplayResponse feeds the customer-facing display of a table.
type TableDisplayResponse struct {
	Table          model.Table     `json:"table"`
	RestaurantName string          `json:"restaurantName"`
	Currency       string          `json:"currency"`
	Orders         []model.Order   `json:"orders"`
	Total          decimal.Decimal `json:"total"`
	Featured       []model.Dish    `json:"featured"`
}
