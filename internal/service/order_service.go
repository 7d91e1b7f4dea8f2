package service

import (
	"context"
	"fmt"
	"sort"
	"time"

	"veredapos/internal/ledger"
	"veredapos/internal/model"
	"veredapos/internal/notify"
	"veredapos/internal/state"
	"veredapos/internal/worker"

	"github.com/google/uuid"
)

type OrderService interface {
	CreateOrder(ctx context.Context, tableID *int, name string, orderType model.OrderType) (*model.Order, error)
	AddItem(ctx context.Context, in AddItemInput) (*model.Order, error)
	TransferOrder(ctx context.Context, orderID string, targetTableID int) (*model.Order, error)
	Checkout(ctx context.Context, orderID string, method model.PaymentMethod, customerID *string) (*model.Order, error)
	AmendPaymentMethod(ctx context.Context, orderID string, method model.PaymentMethod) (*model.Order, error)
	AmendCustomer(ctx context.Context, orderID string, customerID *string) (*model.Order, error)
	MarkItemStatus(ctx context.Context, orderID string, index int, status model.ItemStatus) (*model.Order, error)
	MarkOrderServed(ctx context.Context, orderID string) (*model.Order, error)
	SetActiveTable(ctx context.Context, tableID *int) error
	SetActiveOrder(ctx context.Context, orderID *string) error
	Selection(ctx context.Context) Selection
	GetOrder(ctx context.Context, id string) (*model.Order, error)
	ListOrders(ctx context.Context, filter OrderFilter) []model.Order
}

// AddItemInput targets an order explicitly (OrderID) or through a table.
type AddItemInput struct {
	OrderID       string
	TableID       *int
	DishID        string
	Quantity      int
	Notes         string
	// KeepSelection leaves the terminal's active order untouched when a new
	// order has to be opened (guest self-ordering).
	KeepSelection bool
}

// Selection is the table/order currently focused on the terminals.
type Selection struct {
	TableID *int    `json:"activeTableId"`
	OrderID *string `json:"activeOrderId"`
}

type OrderFilter struct {
	Status  model.OrderStatus
	TableID *int
	Day     *time.Time // matches Timestamp for open orders, ClosedAt for closed ones
}

type orderService struct {
	store    *state.Store
	notifier notify.Notifier
	jobs     JobDispatcher
	opts     options
}

func NewOrderService(store *state.Store, n notify.Notifier, jobs JobDispatcher, opts ...Option) OrderService {
	return &orderService{store: store, notifier: n, jobs: jobs, opts: buildOptions(opts)}
}

func newOrderID() string {
	return "ord-" + uuid.Must(uuid.NewV7()).String()
}

// ── CreateOrder ──────────────────────────────────────────────────────────────

func (s *orderService) CreateOrder(_ context.Context, tableID *int, name string, orderType model.OrderType) (*model.Order, error) {
	if orderType == "" {
		orderType = model.OrderLocal
	}
	if !orderType.Valid() {
		return nil, ErrInvalidOrderType
	}

	var created model.Order
	err := s.store.Mutate(func(st *model.State) error {
		o := s.openOrder(st, tableID, name, orderType)
		created = o.Clone()
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &created, nil
}

// openOrder appends a new empty order and focuses it. Table existence is not
// checked; occupancy is derived for whatever id was given.
func (s *orderService) openOrder(st *model.State, tableID *int, name string, orderType model.OrderType) *model.Order {
	if name == "" {
		name = model.DefaultSubAccount
	}
	o := model.Order{
		ID:             newOrderID(),
		TableID:        copyInt(tableID),
		Type:           orderType,
		Items:          []model.OrderItem{},
		Status:         model.OrderOpen,
		Timestamp:      s.opts.now(),
		SubAccountName: name,
	}
	o.Recompute()
	st.Orders = append(st.Orders, o)
	st.ActiveOrderID = &o.ID
	if tableID != nil {
		st.RefreshTableStatus(*tableID)
	}
	return &st.Orders[len(st.Orders)-1]
}

// ── AddItem ──────────────────────────────────────────────────────────────────
// Target resolution, first match wins:
//   1. the explicit order id
//   2. the active order, if it is OPEN and on the requested table (or no table was given)
//   3. the oldest OPEN order on the requested table
// With no target but a table id, a new order is opened on that table first.

func (s *orderService) AddItem(_ context.Context, in AddItemInput) (*model.Order, error) {
	if in.Quantity == 0 {
		return nil, ErrInvalidQuantity
	}

	var result model.Order
	err := s.store.Mutate(func(st *model.State) error {
		dish := st.Dish(in.DishID)
		if dish == nil {
			return ErrDishNotFound
		}

		o := resolveTarget(st, in.OrderID, in.TableID)
		if o != nil && !o.IsOpen() {
			return ErrOrderClosed
		}
		if o == nil {
			if in.TableID == nil {
				return ErrOrderNotFound
			}
			if in.Quantity < 0 {
				return ErrInvalidQuantity
			}
			prev := st.ActiveOrderID
			o = s.openOrder(st, in.TableID, "", model.OrderLocal)
			if in.KeepSelection {
				st.ActiveOrderID = prev
			}
		}

		// correction lines may cancel earlier lines but never go below zero
		if in.Quantity < 0 && o.NetQuantity(dish.ID)+in.Quantity < 0 {
			return ErrInvalidQuantity
		}

		o.Items = append(o.Items, model.OrderItem{
			DishID:    dish.ID,
			Quantity:  in.Quantity,
			UnitPrice: dish.Price,
			UnitCost:  dish.CostPrice,
			TaxAmount: st.Settings.UnitTax(dish.Price),
			Notes:     in.Notes,
			Status:    model.ItemPending,
		})
		o.Recompute()
		if o.TableID != nil {
			st.RefreshTableStatus(*o.TableID)
		}
		result = o.Clone()
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &result, nil
}

func resolveTarget(st *model.State, orderID string, tableID *int) *model.Order {
	if orderID != "" {
		return st.Order(orderID)
	}
	if st.ActiveOrderID != nil {
		if o := st.Order(*st.ActiveOrderID); o != nil && o.IsOpen() && (tableID == nil || o.OnTable(*tableID)) {
			return o
		}
	}
	if tableID != nil {
		for i := range st.Orders {
			if st.Orders[i].IsOpen() && st.Orders[i].OnTable(*tableID) {
				return &st.Orders[i]
			}
		}
	}
	return nil
}

// ── TransferOrder ────────────────────────────────────────────────────────────

func (s *orderService) TransferOrder(_ context.Context, orderID string, targetTableID int) (*model.Order, error) {
	var result model.Order
	err := s.store.Mutate(func(st *model.State) error {
		o := st.Order(orderID)
		if o == nil {
			return ErrOrderNotFound
		}
		if !o.IsOpen() {
			return ErrOrderClosed
		}
		if st.Table(targetTableID) == nil {
			return ErrTableNotFound
		}

		affected := []int{targetTableID}
		if o.TableID != nil {
			affected = append(affected, *o.TableID)
		}
		o.TableID = &targetTableID
		st.RefreshTableStatus(affected...)
		st.ActiveTableID = &targetTableID
		result = o.Clone()
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &result, nil
}

// ── Checkout ─────────────────────────────────────────────────────────────────
// Terminal transition, applied as one mutation:
//   1. assign the next invoice number of the current series
//   2. chain the closure hash to the previous invoice of the series
//   3. charge the customer when the payment is deferred
//   4. advance the series counter
//   5. re-derive the table's occupancy and clear the terminal selection
// Rendering and cloud sync are queued only after the commit.

func (s *orderService) Checkout(ctx context.Context, orderID string, method model.PaymentMethod, customerID *string) (*model.Order, error) {
	if !method.Valid() {
		return nil, ErrInvalidPaymentMethod
	}

	var closed model.Order
	err := s.store.Mutate(func(st *model.State) error {
		o := st.Order(orderID)
		if o == nil {
			return ErrOrderNotFound
		}
		if !o.IsOpen() {
			return ErrOrderClosed
		}
		if len(o.Items) == 0 {
			return ErrOrderEmpty
		}
		var customer *model.Customer
		if customerID != nil {
			if customer = st.Customer(*customerID); customer == nil {
				return ErrCustomerNotFound
			}
		}

		series := st.Settings.InvoiceSeries
		n := ledger.Next(st.Ledger, series)
		number := ledger.FormatNumber(s.opts.invoicePrefix, series, n)
		closedAt := s.opts.now()

		o.Status = model.OrderClosed
		o.PaymentMethod = &method
		o.CustomerID = copyString(customerID)
		o.InvoiceNumber = &number
		o.ClosedAt = &closedAt
		hash := ledger.ClosureHash(ledger.InputFor(o, ledger.Head(st.Ledger, series)))
		o.Hash = &hash

		if method == model.PayDeferred && customer != nil {
			customer.Charge(o.Total)
		}
		if err := ledger.Commit(st.Ledger, series, n, hash); err != nil {
			return err
		}
		if o.TableID != nil {
			st.RefreshTableStatus(*o.TableID)
		}
		st.ActiveTableID = nil
		st.ActiveOrderID = nil

		closed = o.Clone()
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.notifier.Notify(notify.Success, fmt.Sprintf("Conta fechada: %s", *closed.InvoiceNumber))
	if s.jobs != nil {
		dispatch(s.notifier, "a fatura", func() error {
			return s.jobs.EnqueueInvoice(ctx, worker.InvoiceJobPayload{OrderID: closed.ID})
		})
		dispatch(s.notifier, "a sincronizacao", func() error {
			return s.jobs.EnqueueSync(ctx, worker.SyncJobPayload{Kind: worker.SyncSale, OrderID: closed.ID})
		})
	}
	return &closed, nil
}

// ── Post-close amendments ────────────────────────────────────────────────────
// Only the payment method and the customer of a CLOSED order may change.
// Invoice number, hash, items and totals stay as issued.

func (s *orderService) AmendPaymentMethod(ctx context.Context, orderID string, method model.PaymentMethod) (*model.Order, error) {
	if !method.Valid() {
		return nil, ErrInvalidPaymentMethod
	}

	var result model.Order
	changed := false
	err := s.store.Mutate(func(st *model.State) error {
		o := st.Order(orderID)
		if o == nil {
			return ErrOrderNotFound
		}
		if o.IsOpen() {
			return ErrOrderNotClosed
		}
		wasDeferred := o.IsDeferred()
		if o.PaymentMethod != nil && *o.PaymentMethod == method {
			result = o.Clone()
			return nil
		}

		if o.CustomerID != nil {
			if c := st.Customer(*o.CustomerID); c != nil {
				switch {
				case wasDeferred && method != model.PayDeferred:
					c.Debit(o.Total)
				case !wasDeferred && method == model.PayDeferred:
					c.Charge(o.Total)
				}
			}
		}
		o.PaymentMethod = &method
		changed = true
		result = o.Clone()
		return nil
	})
	if err != nil {
		return nil, err
	}
	if changed {
		s.syncSale(ctx, result.ID)
	}
	return &result, nil
}

func (s *orderService) AmendCustomer(ctx context.Context, orderID string, customerID *string) (*model.Order, error) {
	var result model.Order
	err := s.store.Mutate(func(st *model.State) error {
		o := st.Order(orderID)
		if o == nil {
			return ErrOrderNotFound
		}
		if o.IsOpen() {
			return ErrOrderNotClosed
		}
		var next *model.Customer
		if customerID != nil {
			if next = st.Customer(*customerID); next == nil {
				return ErrCustomerNotFound
			}
		}
		if sameString(o.CustomerID, customerID) {
			result = o.Clone()
			return nil
		}

		if o.IsDeferred() {
			if o.CustomerID != nil {
				if prev := st.Customer(*o.CustomerID); prev != nil {
					prev.Debit(o.Total)
				}
			}
			if next != nil {
				next.Charge(o.Total)
			}
		}
		o.CustomerID = copyString(customerID)
		result = o.Clone()
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.syncSale(ctx, result.ID)
	return &result, nil
}

func (s *orderService) syncSale(ctx context.Context, orderID string) {
	if s.jobs == nil {
		return
	}
	dispatch(s.notifier, "a sincronizacao", func() error {
		return s.jobs.EnqueueSync(ctx, worker.SyncJobPayload{Kind: worker.SyncSale, OrderID: orderID})
	})
}

// ── Kitchen status ───────────────────────────────────────────────────────────

func (s *orderService) MarkItemStatus(_ context.Context, orderID string, index int, status model.ItemStatus) (*model.Order, error) {
	if !status.Valid() {
		return nil, ErrInvalidItemStatus
	}
	return s.updateOpen(orderID, func(o *model.Order) error {
		if index < 0 || index >= len(o.Items) {
			return ErrItemNotFound
		}
		o.Items[index].Status = status
		return nil
	})
}

func (s *orderService) MarkOrderServed(_ context.Context, orderID string) (*model.Order, error) {
	return s.updateOpen(orderID, func(o *model.Order) error {
		for i := range o.Items {
			o.Items[i].Status = model.ItemDelivered
		}
		return nil
	})
}

func (s *orderService) updateOpen(orderID string, fn func(o *model.Order) error) (*model.Order, error) {
	var result model.Order
	err := s.store.Mutate(func(st *model.State) error {
		o := st.Order(orderID)
		if o == nil {
			return ErrOrderNotFound
		}
		if !o.IsOpen() {
			return ErrOrderClosed
		}
		if err := fn(o); err != nil {
			return err
		}
		result = o.Clone()
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &result, nil
}

// ── Selection ────────────────────────────────────────────────────────────────

func (s *orderService) SetActiveTable(_ context.Context, tableID *int) error {
	return s.store.Mutate(func(st *model.State) error {
		if tableID != nil && st.Table(*tableID) == nil {
			return ErrTableNotFound
		}
		st.ActiveTableID = copyInt(tableID)
		return nil
	})
}

func (s *orderService) SetActiveOrder(_ context.Context, orderID *string) error {
	return s.store.Mutate(func(st *model.State) error {
		if orderID != nil && st.Order(*orderID) == nil {
			return ErrOrderNotFound
		}
		st.ActiveOrderID = copyString(orderID)
		return nil
	})
}

func (s *orderService) Selection(_ context.Context) Selection {
	st := s.store.Current()
	return Selection{TableID: copyInt(st.ActiveTableID), OrderID: copyString(st.ActiveOrderID)}
}

// ── Reads ────────────────────────────────────────────────────────────────────

func (s *orderService) GetOrder(_ context.Context, id string) (*model.Order, error) {
	o := s.store.Current().Order(id)
	if o == nil {
		return nil, ErrOrderNotFound
	}
	c := o.Clone()
	return &c, nil
}

func (s *orderService) ListOrders(_ context.Context, f OrderFilter) []model.Order {
	st := s.store.Current()
	out := make([]model.Order, 0, len(st.Orders))
	for _, o := range st.Orders {
		if f.Status != "" && o.Status != f.Status {
			continue
		}
		if f.TableID != nil && !o.OnTable(*f.TableID) {
			continue
		}
		if f.Day != nil {
			at := o.Timestamp
			if o.ClosedAt != nil {
				at = *o.ClosedAt
			}
			if !sameDay(at, *f.Day, s.opts.loc) {
				continue
			}
		}
		out = append(out, o.Clone())
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Timestamp.Before(out[j].Timestamp) })
	return out
}

// ── helpers ──────────────────────────────────────────────────────────────────

// sameDay reports whether instant at falls on the calendar date of day, as
// seen from loc. Only the date of day counts, not its location.
func sameDay(at, day time.Time, loc *time.Location) bool {
	ay, am, ad := at.In(loc).Date()
	by, bm, bd := day.Date()
	return ay == by && am == bm && ad == bd
}

func startOfDay(t time.Time, loc *time.Location) time.Time {
	y, m, d := t.In(loc).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, loc)
}

func copyInt(p *int) *int {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

func copyString(p *string) *string {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

func sameString(a, b *string) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}
