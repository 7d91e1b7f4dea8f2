package model

import "github.com/shopspring/decimal"

// Dish is a sellable menu entry.
type Dish struct {
	ID               string          `json:"id"`
	Name             string          `json:"name"`
	Description      string          `json:"description,omitempty"`
	Price            decimal.Decimal `json:"price"`
	CostPrice        decimal.Decimal `json:"costPrice"`
	CategoryID       string          `json:"categoryId"`
	ImageURL         string          `json:"image,omitempty"`
	IsVisibleDigital bool            `json:"isVisibleDigital"`
	IsFeatured       bool            `json:"isFeatured"`
}

type Category struct {
	ID               string `json:"id"`
	Name             string `json:"name"`
	Icon             string `json:"icon,omitempty"`
	IsVisibleDigital bool   `json:"isVisibleDigital"`
}

// PublicMenu is what the digital menu page renders: visible categories and
// their visible dishes.
type PublicMenu struct {
	RestaurantName string     `json:"restaurantName"`
	Currency       string     `json:"currency"`
	LogoURL        string     `json:"logoUrl,omitempty"`
	Categories     []Category `json:"categories"`
	Dishes         []Dish     `json:"dishes"`
}
