package model

import "github.com/shopspring/decimal"

// Customer holds contact data and the running debt accumulated through
// deferred-payment checkouts. Balance never goes below zero.
type Customer struct {
	ID      string          `json:"id"`
	Name    string          `json:"name"`
	NIF     string          `json:"nif"`
	Email   *string         `json:"email,omitempty"`
	Phone   *string         `json:"phone,omitempty"`
	Balance decimal.Decimal `json:"balance"`
}

// Debit subtracts amount from the balance, floored at zero.
func (c *Customer) Debit(amount decimal.Decimal) {
	c.Balance = decimal.Max(decimal.Zero, c.Balance.Sub(amount))
}

func (c *Customer) Charge(amount decimal.Decimal) {
	c.Balance = c.Balance.Add(amount)
}

func (c Customer) Clone() Customer {
	c.Email = cloneString(c.Email)
	c.Phone = cloneString(c.Phone)
	return c
}
