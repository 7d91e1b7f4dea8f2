package dto

// SelfOrderRequest is what a guest sends from the table QR page.
type SelfOrderRequest struct {
	DishID   string `json:"dishId"   validate:"required"`
	Quantity int    `json:"quantity" validate:"omitempty,min=1,max=20"`
	Notes    string `json:"notes"    validate:"max=200"`
}
