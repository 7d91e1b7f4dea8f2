package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// OrderStatus is the lifecycle state of an order. An order is OPEN until it
// is checked out; CLOSED is terminal.
type OrderStatus string

const (
	OrderOpen   OrderStatus = "ABERTO"
	OrderClosed OrderStatus = "FECHADO"
)

type OrderType string

const (
	OrderLocal    OrderType = "LOCAL"
	OrderTakeaway OrderType = "TAKEAWAY"
	OrderDelivery OrderType = "DELIVERY"
)

// Valid reports whether t is one of the known order types.
func (t OrderType) Valid() bool {
	switch t {
	case OrderLocal, OrderTakeaway, OrderDelivery:
		return true
	}
	return false
}

type ItemStatus string

const (
	ItemPending   ItemStatus = "PENDENTE"
	ItemDelivered ItemStatus = "ENTREGUE"
)

func (s ItemStatus) Valid() bool {
	return s == ItemPending || s == ItemDelivered
}

type PaymentMethod string

const (
	PayCash     PaymentMethod = "NUMERARIO"
	PayCard     PaymentMethod = "TPA"
	PayQRCode   PaymentMethod = "QR_CODE"
	PayTransfer PaymentMethod = "TRANSFERENCIA"
	// PayDeferred charges the order to the customer's running balance.
	PayDeferred PaymentMethod = "PAGAR_DEPOIS"
)

// PaymentMethods lists every accepted method in display order.
var PaymentMethods = []PaymentMethod{PayCash, PayCard, PayQRCode, PayTransfer, PayDeferred}

func (m PaymentMethod) Valid() bool {
	for _, pm := range PaymentMethods {
		if m == pm {
			return true
		}
	}
	return false
}

const DefaultSubAccount = "Principal"

// OrderItem is one line of an order. Prices are snapshotted from the catalog
// when the line is added and never refreshed afterwards.
type OrderItem struct {
	DishID    string          `json:"dishId"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unitPrice"`
	UnitCost  decimal.Decimal `json:"unitCost"`
	TaxAmount decimal.Decimal `json:"taxAmount"` // per unit
	Notes     string          `json:"notes,omitempty"`
	Status    ItemStatus      `json:"status"`
}

// LineTotal is UnitPrice × Quantity.
func (i OrderItem) LineTotal() decimal.Decimal {
	return i.UnitPrice.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

type Order struct {
	ID             string          `json:"id"`
	TableID        *int            `json:"tableId"`
	Type           OrderType       `json:"type"`
	Items          []OrderItem     `json:"items"`
	Status         OrderStatus     `json:"status"`
	Timestamp      time.Time       `json:"timestamp"`
	Total          decimal.Decimal `json:"total"`
	TaxTotal       decimal.Decimal `json:"taxTotal"`
	Profit         decimal.Decimal `json:"profit"`
	SubAccountName string          `json:"subAccountName"`
	PaymentMethod  *PaymentMethod  `json:"paymentMethod,omitempty"`
	CustomerID     *string         `json:"customerId,omitempty"`
	InvoiceNumber  *string         `json:"invoiceNumber,omitempty"`
	Hash           *string         `json:"hash,omitempty"`
	ClosedAt       *time.Time      `json:"closedAt,omitempty"`
}

func (o *Order) IsOpen() bool { return o.Status == OrderOpen }

// OnTable reports whether the order is attached to table id.
func (o *Order) OnTable(id int) bool {
	return o.TableID != nil && *o.TableID == id
}

// IsDeferred reports whether the order was settled on the customer's account.
func (o *Order) IsDeferred() bool {
	return o.PaymentMethod != nil && *o.PaymentMethod == PayDeferred
}

// Recompute rebuilds Total, TaxTotal and Profit from the item lines.
// Aggregates are never patched incrementally.
func (o *Order) Recompute() {
	total, tax, profit := decimal.Zero, decimal.Zero, decimal.Zero
	for _, it := range o.Items {
		q := decimal.NewFromInt(int64(it.Quantity))
		total = total.Add(it.UnitPrice.Mul(q))
		tax = tax.Add(it.TaxAmount.Mul(q))
		profit = profit.Add(it.UnitPrice.Sub(it.UnitCost).Mul(q))
	}
	o.Total, o.TaxTotal, o.Profit = total, tax, profit
}

// NetQuantity sums the quantities of every line for dishID, correction lines
// included.
func (o *Order) NetQuantity(dishID string) int {
	n := 0
	for _, it := range o.Items {
		if it.DishID == dishID {
			n += it.Quantity
		}
	}
	return n
}

// Clone returns a deep copy of the order.
func (o Order) Clone() Order {
	c := o
	c.Items = append([]OrderItem(nil), o.Items...)
	c.TableID = cloneInt(o.TableID)
	c.CustomerID = cloneString(o.CustomerID)
	c.InvoiceNumber = cloneString(o.InvoiceNumber)
	c.Hash = cloneString(o.Hash)
	if o.PaymentMethod != nil {
		pm := *o.PaymentMethod
		c.PaymentMethod = &pm
	}
	if o.ClosedAt != nil {
		t := *o.ClosedAt
		c.ClosedAt = &t
	}
	return c
}

func cloneInt(p *int) *int {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

func cloneString(p *string) *string {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}
