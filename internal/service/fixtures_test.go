package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"veredapos/internal/ledger"
	"veredapos/internal/model"
	"veredapos/internal/notify"
	"veredapos/internal/state"
	"veredapos/internal/worker"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

// ── Stubs ─────────────────────────────────────────────────────────────────────

type stubJobs struct {
	mu       sync.Mutex
	invoices []worker.InvoiceJobPayload
	syncs    []worker.SyncJobPayload
	err      error
}

func (j *stubJobs) EnqueueInvoice(_ context.Context, p worker.InvoiceJobPayload) error {
	j.mu.Lock()
	defer j.mu.Unlock()
	if j.err != nil {
		return j.err
	}
	j.invoices = append(j.invoices, p)
	return nil
}

func (j *stubJobs) EnqueueSync(_ context.Context, p worker.SyncJobPayload) error {
	j.mu.Lock()
	defer j.mu.Unlock()
	if j.err != nil {
		return j.err
	}
	j.syncs = append(j.syncs, p)
	return nil
}

type stubNotifier struct {
	mu   sync.Mutex
	msgs map[notify.Kind][]string
}

func newStubNotifier() *stubNotifier { return &stubNotifier{msgs: map[notify.Kind][]string{}} }

func (n *stubNotifier) Notify(kind notify.Kind, msg string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.msgs[kind] = append(n.msgs[kind], msg)
}

func (n *stubNotifier) count(kind notify.Kind) int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.msgs[kind])
}

type stubCache struct {
	menu        *model.PublicMenu
	gets        int
	invalidated int
}

func (c *stubCache) Get(context.Context) (*model.PublicMenu, error) {
	c.gets++
	return c.menu, nil
}

func (c *stubCache) Set(_ context.Context, m *model.PublicMenu) error {
	c.menu = m
	return nil
}

func (c *stubCache) Invalidate(context.Context) error {
	c.invalidated++
	c.menu = nil
	return nil
}

// ── Fixture ───────────────────────────────────────────────────────────────────

var fixedNow = time.Date(2025, 6, 14, 20, 30, 0, 0, time.UTC)

type fixture struct {
	store    *state.Store
	jobs     *stubJobs
	notifier *stubNotifier
	orders   OrderService
}

// newFixture seeds five tables, two categories, three dishes and two
// customers. Dish "d-1000" matches the worked example: price 1000, cost 400.
func newFixture(t *testing.T) *fixture {
	t.Helper()
	st := model.NewState(model.DefaultSettings())
	for i := 1; i <= 5; i++ {
		st.Tables = append(st.Tables, model.Table{ID: i, Name: "Mesa", Zone: model.ZoneInterior, Seats: 4, Status: model.TableFree})
	}
	st.Categories = []model.Category{
		{ID: "pratos", Name: "Pratos", IsVisibleDigital: true},
		{ID: "bebidas", Name: "Bebidas", IsVisibleDigital: true},
	}
	st.Menu = []model.Dish{
		{ID: "d-1000", Name: "Mufete", Price: decimal.NewFromInt(1000), CostPrice: decimal.NewFromInt(400), CategoryID: "pratos", IsVisibleDigital: true},
		{ID: "d-moamba", Name: "Moamba de Galinha", Price: decimal.NewFromInt(4500), CostPrice: decimal.NewFromInt(1800), CategoryID: "pratos", IsVisibleDigital: true, IsFeatured: true},
		{ID: "d-cuca", Name: "Cuca", Price: decimal.NewFromInt(600), CostPrice: decimal.NewFromInt(250), CategoryID: "bebidas", IsVisibleDigital: true},
	}
	st.Customers = []model.Customer{
		{ID: "C1", Name: "Carlos Neto", NIF: "004512369LA041", Balance: decimal.Zero},
		{ID: "C2", Name: "Joana Lemos", NIF: "005123987LA022", Balance: decimal.Zero},
	}

	f := &fixture{store: state.New(st), jobs: &stubJobs{}, notifier: newStubNotifier()}
	f.orders = NewOrderService(f.store, f.notifier, f.jobs, WithClock(func() time.Time { return fixedNow }))
	return f
}

func intPtr(v int) *int { return &v }

func strPtr(v string) *string { return &v }

func dec(v int64) decimal.Decimal { return decimal.NewFromInt(v) }

// assertOccupancy checks that every table is OCCUPIED exactly when an OPEN
// order references it.
func assertOccupancy(t *testing.T, st *model.State) {
	t.Helper()
	for _, tb := range st.Tables {
		open := len(st.OpenOrdersOn(tb.ID)) > 0
		want := model.TableFree
		if open {
			want = model.TableOccupied
		}
		assert.Equal(t, want, tb.Status, "table %d", tb.ID)
	}
}

func assertAggregates(t *testing.T, o model.Order) {
	t.Helper()
	total, tax, profit := decimal.Zero, decimal.Zero, decimal.Zero
	for _, it := range o.Items {
		q := decimal.NewFromInt(int64(it.Quantity))
		total = total.Add(it.UnitPrice.Mul(q))
		tax = tax.Add(it.TaxAmount.Mul(q))
		profit = profit.Add(it.UnitPrice.Sub(it.UnitCost).Mul(q))
	}
	assert.True(t, total.Equal(o.Total), "total %s != %s", o.Total, total)
	assert.True(t, tax.Equal(o.TaxTotal), "tax %s != %s", o.TaxTotal, tax)
	assert.True(t, profit.Equal(o.Profit), "profit %s != %s", o.Profit, profit)
}

func (f *fixture) customer(id string) model.Customer {
	return *f.store.Current().Customer(id)
}

func (f *fixture) table(id int) model.Table {
	return *f.store.Current().Table(id)
}

func (f *fixture) counter() int64 {
	st := f.store.Current()
	return ledger.Next(st.Ledger, st.Settings.InvoiceSeries)
}

// openWith opens an order on table and adds qty of dish.
func (f *fixture) openWith(t *testing.T, table int, dish string, qty int) model.Order {
	t.Helper()
	o, err := f.orders.AddItem(context.Background(), AddItemInput{TableID: intPtr(table), DishID: dish, Quantity: qty})
	if err != nil {
		t.Fatalf("add item: %v", err)
	}
	return *o
}
