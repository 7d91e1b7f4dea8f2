package dto

import "github.com/shopspring/decimal"

// ── Request DTOs ──────────────────────────────────────────────────────────────

type CreateCustomerRequest struct {
	Name  string  `json:"name"  validate:"required,min=2,max=120"`
	NIF   string  `json:"nif"   validate:"omitempty,alphanum,min=9,max=14"`
	Email *string `json:"email" validate:"omitempty,email"`
	Phone *string `json:"phone" validate:"omitempty,max=20"`
}

// UpdateCustomerRequest cannot touch the balance.
type UpdateCustomerRequest struct {
	Name  *string `json:"name"  validate:"omitempty,min=2,max=120"`
	NIF   *string `json:"nif"   validate:"omitempty,alphanum,min=9,max=14"`
	Email *string `json:"email" validate:"omitempty,email"`
	Phone *string `json:"phone" validate:"omitempty,max=20"`
}

type SettleDebtRequest struct {
	Amount decimal.Decimal `json:"amount"`
}
