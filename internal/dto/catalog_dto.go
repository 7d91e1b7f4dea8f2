package dto

import "github.com/shopspring/decimal"

// ── Request DTOs ──────────────────────────────────────────────────────────────

type CreateDishRequest struct {
	ID               string          `json:"id"          validate:"omitempty,max=64"`
	Name             string          `json:"name"        validate:"required,min=2,max=120"`
	Description      string          `json:"description" validate:"max=500"`
	Price            decimal.Decimal `json:"price"`
	CostPrice        decimal.Decimal `json:"costPrice"`
	CategoryID       string          `json:"categoryId"  validate:"required"`
	ImageURL         string          `json:"image"       validate:"omitempty,url"`
	IsVisibleDigital *bool           `json:"isVisibleDigital"`
	IsFeatured       bool            `json:"isFeatured"`
}

type UpdateDishRequest struct {
	Name        *string          `json:"name"        validate:"omitempty,min=2,max=120"`
	Description *string          `json:"description" validate:"omitempty,max=500"`
	Price       *decimal.Decimal `json:"price"`
	CostPrice   *decimal.Decimal `json:"costPrice"`
	CategoryID  *string          `json:"categoryId"  validate:"omitempty,min=1"`
	ImageURL    *string          `json:"image"       validate:"omitempty,url"`
}

type CreateCategoryRequest struct {
	ID               string `json:"id"   validate:"omitempty,max=64"`
	Name             string `json:"name" validate:"required,min=2,max=60"`
	Icon             string `json:"icon" validate:"max=40"`
	IsVisibleDigital *bool  `json:"isVisibleDigital"`
}

type UpdateCategoryRequest struct {
	Name *string `json:"name" validate:"omitempty,min=2,max=60"`
	Icon *string `json:"icon" validate:"omitempty,max=40"`
}
