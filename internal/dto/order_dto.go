package dto

import "veredapos/internal/model"

// ── Request DTOs ──────────────────────────────────────────────────────────────

type CreateOrderRequest struct {
	TableID        *int            `json:"tableId"        validate:"omitempty,min=1"`
	SubAccountName string          `json:"subAccountName" validate:"max=60"`
	Type           model.OrderType `json:"type"           validate:"omitempty,oneof=LOCAL TAKEAWAY DELIVERY"`
}

// AddItemRequest targets an order directly or through a table. Quantity
// defaults to 1; negative values are correction lines.
type AddItemRequest struct {
	OrderID  string `json:"orderId"`
	TableID  *int   `json:"tableId"  validate:"omitempty,min=1"`
	DishID   string `json:"dishId"   validate:"required"`
	Quantity *int   `json:"quantity" validate:"omitempty,ne=0,min=-99,max=99"`
	Notes    string `json:"notes"    validate:"max=200"`
}

type TransferOrderRequest struct {
	TableID int `json:"tableId" validate:"required,min=1"`
}

type CheckoutRequest struct {
	PaymentMethod model.PaymentMethod `json:"paymentMethod" validate:"required,oneof=NUMERARIO TPA QR_CODE TRANSFERENCIA PAGAR_DEPOIS"`
	CustomerID    *string             `json:"customerId"`
}

type AmendPaymentRequest struct {
	PaymentMethod model.PaymentMethod `json:"paymentMethod" validate:"required,oneof=NUMERARIO TPA QR_CODE TRANSFERENCIA PAGAR_DEPOIS"`
}

// AmendCustomerRequest with a null customerId detaches the customer.
type AmendCustomerRequest struct {
	CustomerID *string `json:"customerId"`
}

type ItemStatusRequest struct {
	Status model.ItemStatus `json:"status" validate:"required,oneof=PENDENTE ENTREGUE"`
}

type SelectionRequest struct {
	TableID *int    `json:"activeTableId" validate:"omitempty,min=1"`
	OrderID *string `json:"activeOrderId"`
}

// OrderListQuery is bound from the query string. Day is YYYY-MM-DD.
type OrderListQuery struct {
	Status  string `form:"status"   validate:"omitempty,oneof=ABERTO FECHADO"`
	TableID *int   `form:"table_id" validate:"omitempty,min=1"`
	Day     string `form:"day"      validate:"omitempty,datetime=2006-01-02"`
}
