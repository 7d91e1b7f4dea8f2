package dto

import "veredapos/internal/model"

// ─── Request DTOs ────────────────────────────────────────────────────────────

type LoginRequest struct {
	PIN string `json:"pin" validate:"required,numeric,min=4,max=8"`
}

type CreateUserRequest struct {
	Name        string             `json:"name"        validate:"required,min=2,max=100"`
	Role        string             `json:"role"        validate:"required,oneof=OWNER GERENTE CAIXA GARCOM"`
	PIN         string             `json:"pin"         validate:"required,numeric,min=4,max=8"`
	Permissions []model.Permission `json:"permissions" validate:"omitempty,dive,oneof=POS_SALES POS_VOID POS_DISCOUNT FINANCE_VIEW STOCK_MANAGE STAFF_MANAGE SYSTEM_CONFIG OWNER_ACCESS AGT_CONFIG"`
}

type UpdateUserRequest struct {
	Name        *string            `json:"name"        validate:"omitempty,min=2,max=100"`
	Role        *string            `json:"role"        validate:"omitempty,oneof=OWNER GERENTE CAIXA GARCOM"`
	PIN         *string            `json:"pin"         validate:"omitempty,numeric,min=4,max=8"`
	Permissions []model.Permission `json:"permissions" validate:"omitempty,dive,oneof=POS_SALES POS_VOID POS_DISCOUNT FINANCE_VIEW STOCK_MANAGE STAFF_MANAGE SYSTEM_CONFIG OWNER_ACCESS AGT_CONFIG"`
	Active      *bool              `json:"active"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

// UserResponse never carries the PIN hash.
type UserResponse struct {
	ID          string             `json:"id"`
	Name        string             `json:"name"`
	Role        string             `json:"role"`
	Permissions []model.Permission `json:"permissions"`
	Active      bool               `json:"active"`
}

type LoginResponse struct {
	AccessToken string       `json:"access_token"`
	TokenType   string       `json:"token_type"`
	ExpiresIn   int          `json:"expires_in"` // seconds
	User        UserResponse `json:"user"`
}
