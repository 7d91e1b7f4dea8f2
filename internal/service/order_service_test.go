package service

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"veredapos/internal/dto"
	"veredapos/internal/ledger"
	"veredapos/internal/model"
	"veredapos/internal/notify"
	"veredapos/internal/worker"

	"github.com/jaswdr/faker"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ── CreateOrder ───────────────────────────────────────────────────────────────

func TestCreateOrder_Defaults(t *testing.T) {
	f := newFixture(t)
	o, err := f.orders.CreateOrder(context.Background(), intPtr(3), "", "")
	require.NoError(t, err)

	assert.Regexp(t, `^ord-`, o.ID)
	assert.Equal(t, model.OrderOpen, o.Status)
	assert.Equal(t, model.OrderLocal, o.Type)
	assert.Equal(t, model.DefaultSubAccount, o.SubAccountName)
	assert.Empty(t, o.Items)
	assert.True(t, o.Total.IsZero())
	assert.Equal(t, fixedNow, o.Timestamp)

	assert.Equal(t, model.TableOccupied, f.table(3).Status)
	assert.Equal(t, o.ID, *f.orders.Selection(context.Background()).OrderID)
	assertOccupancy(t, f.store.Current())
}

func TestCreateOrder_IDsAreUnique(t *testing.T) {
	f := newFixture(t)
	a, _ := f.orders.CreateOrder(context.Background(), nil, "", model.OrderTakeaway)
	b, _ := f.orders.CreateOrder(context.Background(), nil, "", model.OrderTakeaway)
	assert.NotEqual(t, a.ID, b.ID)
	assert.Nil(t, a.TableID)
	assert.Equal(t, model.OrderTakeaway, b.Type)
}

func TestCreateOrder_RejectsUnknownType(t *testing.T) {
	f := newFixture(t)
	_, err := f.orders.CreateOrder(context.Background(), nil, "", "DRIVE_IN")
	assert.ErrorIs(t, err, ErrInvalidOrderType)
}

// ── AddItem ───────────────────────────────────────────────────────────────────

func TestAddItem_ImplicitlyOpensOrderOnTable(t *testing.T) {
	f := newFixture(t)
	o := f.openWith(t, 4, "d-moamba", 1)

	require.NotNil(t, o.TableID)
	assert.Equal(t, 4, *o.TableID)
	require.Len(t, o.Items, 1)
	assert.Equal(t, model.ItemPending, o.Items[0].Status)
	assert.True(t, o.Items[0].TaxAmount.Equal(dec(630)))
	assert.True(t, o.Total.Equal(dec(4500)))
	assert.Equal(t, model.TableOccupied, f.table(4).Status)
}

func TestAddItem_AppendsWithoutMerging(t *testing.T) {
	f := newFixture(t)
	o := f.openWith(t, 1, "d-cuca", 1)
	got, err := f.orders.AddItem(context.Background(), AddItemInput{OrderID: o.ID, DishID: "d-cuca", Quantity: 2, Notes: "bem gelada"})
	require.NoError(t, err)

	require.Len(t, got.Items, 2)
	assert.Equal(t, 1, got.Items[0].Quantity)
	assert.Equal(t, 2, got.Items[1].Quantity)
	assert.Equal(t, "bem gelada", got.Items[1].Notes)
	assertAggregates(t, *got)
}

func TestAddItem_TargetResolution(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	first, err := f.orders.CreateOrder(ctx, intPtr(1), "", "")
	require.NoError(t, err)

	// active order belongs to table 1, so table 2 gets its own order
	onTwo, err := f.orders.AddItem(ctx, AddItemInput{TableID: intPtr(2), DishID: "d-cuca", Quantity: 1})
	require.NoError(t, err)
	assert.NotEqual(t, first.ID, onTwo.ID)
	assert.Equal(t, 2, *onTwo.TableID)

	// no table given: the active order (now the one on table 2) receives it
	again, err := f.orders.AddItem(ctx, AddItemInput{DishID: "d-cuca", Quantity: 1})
	require.NoError(t, err)
	assert.Equal(t, onTwo.ID, again.ID)

	// table 1 has an open order, so it is reused rather than duplicated
	require.NoError(t, f.orders.SetActiveOrder(ctx, nil))
	reused, err := f.orders.AddItem(ctx, AddItemInput{TableID: intPtr(1), DishID: "d-1000", Quantity: 1})
	require.NoError(t, err)
	assert.Equal(t, first.ID, reused.ID)

	assert.Len(t, f.store.Current().Orders, 2)
	assertOccupancy(t, f.store.Current())
}

func TestAddItem_WithoutTargetIsNotFound(t *testing.T) {
	f := newFixture(t)
	before := f.store.Current()
	_, err := f.orders.AddItem(context.Background(), AddItemInput{DishID: "d-cuca", Quantity: 1})
	assert.ErrorIs(t, err, ErrOrderNotFound)
	assert.True(t, IsNotFound(err))
	assert.Same(t, before, f.store.Current())

	_, err = f.orders.AddItem(context.Background(), AddItemInput{OrderID: "ord-missing", DishID: "d-cuca", Quantity: 1})
	assert.ErrorIs(t, err, ErrOrderNotFound)
}

func TestAddItem_UnknownDishLeavesStateUntouched(t *testing.T) {
	f := newFixture(t)
	o := f.openWith(t, 1, "d-cuca", 1)
	before := f.store.Current()

	_, err := f.orders.AddItem(context.Background(), AddItemInput{OrderID: o.ID, DishID: "nope", Quantity: 1})
	assert.ErrorIs(t, err, ErrDishNotFound)
	assert.Same(t, before, f.store.Current())

	// the implicit order must not be created either
	_, err = f.orders.AddItem(context.Background(), AddItemInput{TableID: intPtr(5), DishID: "nope", Quantity: 1})
	assert.ErrorIs(t, err, ErrDishNotFound)
	assert.Equal(t, model.TableFree, f.table(5).Status)
}

func TestAddItem_QuantityPolicy(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	o := f.openWith(t, 1, "d-cuca", 3)

	_, err := f.orders.AddItem(ctx, AddItemInput{OrderID: o.ID, DishID: "d-cuca", Quantity: 0})
	assert.ErrorIs(t, err, ErrInvalidQuantity)

	corrected, err := f.orders.AddItem(ctx, AddItemInput{OrderID: o.ID, DishID: "d-cuca", Quantity: -2})
	require.NoError(t, err)
	assert.Equal(t, 1, corrected.NetQuantity("d-cuca"))
	assert.True(t, corrected.Total.Equal(dec(600)))
	assertAggregates(t, *corrected)

	_, err = f.orders.AddItem(ctx, AddItemInput{OrderID: o.ID, DishID: "d-cuca", Quantity: -2})
	assert.ErrorIs(t, err, ErrInvalidQuantity)

	// nothing to correct on a dish that was never ordered
	_, err = f.orders.AddItem(ctx, AddItemInput{OrderID: o.ID, DishID: "d-moamba", Quantity: -1})
	assert.ErrorIs(t, err, ErrInvalidQuantity)

	_, err = f.orders.AddItem(ctx, AddItemInput{TableID: intPtr(3), DishID: "d-cuca", Quantity: -1})
	assert.ErrorIs(t, err, ErrInvalidQuantity)
	assert.Equal(t, model.TableFree, f.table(3).Status)
}

func TestAddItem_SnapshotsCatalogPrice(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	catalog := NewCatalogService(f.store, f.notifier, nil, nil)
	o := f.openWith(t, 1, "d-1000", 1)

	newPrice := dec(1500)
	_, err := catalog.UpdateDish(ctx, "d-1000", dto.UpdateDishRequest{Price: &newPrice})
	require.NoError(t, err)

	got, err := f.orders.GetOrder(ctx, o.ID)
	require.NoError(t, err)
	assert.True(t, got.Items[0].UnitPrice.Equal(dec(1000)))
	assert.True(t, got.Total.Equal(dec(1000)))

	got, err = f.orders.AddItem(ctx, AddItemInput{OrderID: o.ID, DishID: "d-1000", Quantity: 1})
	require.NoError(t, err)
	assert.True(t, got.Items[1].UnitPrice.Equal(dec(1500)))
	assert.True(t, got.Total.Equal(dec(2500)))
}

func TestAddItem_UsesCurrentTaxRate(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	settings := NewSettingsService(f.store, f.notifier, nil)
	_, err := settings.Update(ctx, map[string]any{"taxRate": "7"})
	require.NoError(t, err)

	o := f.openWith(t, 1, "d-1000", 2)
	assert.True(t, o.Items[0].TaxAmount.Equal(dec(70)))
	assert.True(t, o.TaxTotal.Equal(dec(140)))
}

// ── TransferOrder ─────────────────────────────────────────────────────────────

func TestTransferOrder_ReleasesSourceOnlyWhenEmpty(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	a, _ := f.orders.CreateOrder(ctx, intPtr(1), "Joao", "")
	b, _ := f.orders.CreateOrder(ctx, intPtr(1), "Maria", "")

	moved, err := f.orders.TransferOrder(ctx, a.ID, 2)
	require.NoError(t, err)
	assert.Equal(t, 2, *moved.TableID)
	assert.Equal(t, model.TableOccupied, f.table(1).Status)
	assert.Equal(t, model.TableOccupied, f.table(2).Status)
	assert.Equal(t, 2, *f.orders.Selection(ctx).TableID)

	_, err = f.orders.TransferOrder(ctx, b.ID, 2)
	require.NoError(t, err)
	assert.Equal(t, model.TableFree, f.table(1).Status)
	assertOccupancy(t, f.store.Current())
}

func TestTransferOrder_Rejections(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	o := f.openWith(t, 1, "d-cuca", 1)
	before := f.store.Current()

	_, err := f.orders.TransferOrder(ctx, "ord-missing", 2)
	assert.ErrorIs(t, err, ErrOrderNotFound)
	_, err = f.orders.TransferOrder(ctx, o.ID, 99)
	assert.ErrorIs(t, err, ErrTableNotFound)
	assert.Same(t, before, f.store.Current())

	_, err = f.orders.Checkout(ctx, o.ID, model.PayCash, nil)
	require.NoError(t, err)
	_, err = f.orders.TransferOrder(ctx, o.ID, 2)
	assert.ErrorIs(t, err, ErrOrderClosed)
}

// ── Checkout ──────────────────────────────────────────────────────────────────

func TestCheckout_DeferredWorkedExample(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	o, err := f.orders.CreateOrder(ctx, intPtr(5), "", "")
	require.NoError(t, err)
	o, err = f.orders.AddItem(ctx, AddItemInput{OrderID: o.ID, DishID: "d-1000", Quantity: 2})
	require.NoError(t, err)
	assert.True(t, o.Total.Equal(dec(2000)))
	assert.True(t, o.Profit.Equal(dec(1200)))

	counter := f.counter()
	closed, err := f.orders.Checkout(ctx, o.ID, model.PayDeferred, strPtr("C1"))
	require.NoError(t, err)

	assert.Equal(t, model.OrderClosed, closed.Status)
	assert.True(t, f.customer("C1").Balance.Equal(dec(2000)))
	assert.Equal(t, model.TableFree, f.table(5).Status)
	assert.Equal(t, counter+1, f.counter())
	assert.Equal(t, "FR VER2025/1", *closed.InvoiceNumber)
	assert.Len(t, *closed.Hash, 64)
	assert.Equal(t, fixedNow, *closed.ClosedAt)

	sel := f.orders.Selection(ctx)
	assert.Nil(t, sel.TableID)
	assert.Nil(t, sel.OrderID)
}

func TestCheckout_SubAccountsShareTable(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	a, _ := f.orders.CreateOrder(ctx, intPtr(5), "Conta 1", "")
	b, _ := f.orders.CreateOrder(ctx, intPtr(5), "Conta 2", "")
	for _, id := range []string{a.ID, b.ID} {
		_, err := f.orders.AddItem(ctx, AddItemInput{OrderID: id, DishID: "d-cuca", Quantity: 1})
		require.NoError(t, err)
	}

	_, err := f.orders.Checkout(ctx, a.ID, model.PayCash, nil)
	require.NoError(t, err)
	assert.Equal(t, model.TableOccupied, f.table(5).Status)

	_, err = f.orders.Checkout(ctx, b.ID, model.PayCard, nil)
	require.NoError(t, err)
	assert.Equal(t, model.TableFree, f.table(5).Status)
}

func TestCheckout_QueuesSideEffectsAfterCommit(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	o := f.openWith(t, 1, "d-moamba", 1)

	_, err := f.orders.Checkout(ctx, o.ID, model.PayQRCode, nil)
	require.NoError(t, err)
	require.Len(t, f.jobs.invoices, 1)
	assert.Equal(t, o.ID, f.jobs.invoices[0].OrderID)
	require.Len(t, f.jobs.syncs, 1)
	assert.Equal(t, worker.SyncSale, f.jobs.syncs[0].Kind)
	assert.Equal(t, 1, f.notifier.count(notify.Success))
}

func TestCheckout_QueueFailureDoesNotUndoClose(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.jobs.err = errors.New("redis: connection refused")
	o := f.openWith(t, 1, "d-cuca", 1)

	closed, err := f.orders.Checkout(ctx, o.ID, model.PayCash, nil)
	require.NoError(t, err)
	assert.Equal(t, model.OrderClosed, closed.Status)
	assert.Equal(t, 2, f.notifier.count(notify.Warning))
}

func TestCheckout_Rejections(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	o := f.openWith(t, 1, "d-cuca", 1)
	empty, _ := f.orders.CreateOrder(ctx, intPtr(2), "", "")
	before := f.store.Current()

	_, err := f.orders.Checkout(ctx, o.ID, "CHEQUE", nil)
	assert.ErrorIs(t, err, ErrInvalidPaymentMethod)
	_, err = f.orders.Checkout(ctx, "ord-missing", model.PayCash, nil)
	assert.ErrorIs(t, err, ErrOrderNotFound)
	_, err = f.orders.Checkout(ctx, o.ID, model.PayDeferred, strPtr("C9"))
	assert.ErrorIs(t, err, ErrCustomerNotFound)
	_, err = f.orders.Checkout(ctx, empty.ID, model.PayCash, nil)
	assert.ErrorIs(t, err, ErrOrderEmpty)

	assert.Same(t, before, f.store.Current())
	assert.Empty(t, f.jobs.invoices)
}

func TestCheckout_IsTerminal(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	o := f.openWith(t, 1, "d-moamba", 2)
	closed, err := f.orders.Checkout(ctx, o.ID, model.PayCash, nil)
	require.NoError(t, err)
	counter := f.counter()

	_, err = f.orders.AddItem(ctx, AddItemInput{OrderID: o.ID, DishID: "d-cuca", Quantity: 1})
	assert.ErrorIs(t, err, ErrOrderClosed)
	_, err = f.orders.MarkItemStatus(ctx, o.ID, 0, model.ItemDelivered)
	assert.ErrorIs(t, err, ErrOrderClosed)
	_, err = f.orders.MarkOrderServed(ctx, o.ID)
	assert.ErrorIs(t, err, ErrOrderClosed)
	_, err = f.orders.Checkout(ctx, o.ID, model.PayCash, nil)
	assert.ErrorIs(t, err, ErrOrderClosed)

	after, err := f.orders.GetOrder(ctx, o.ID)
	require.NoError(t, err)
	assert.Equal(t, closed.Items, after.Items)
	assert.True(t, closed.Total.Equal(after.Total))
	assert.True(t, closed.TaxTotal.Equal(after.TaxTotal))
	assert.True(t, closed.Profit.Equal(after.Profit))
	assert.Equal(t, counter, f.counter())
}

func TestCheckout_SeriesChangeRestartsCounter(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	settings := NewSettingsService(f.store, f.notifier, nil)

	a := f.openWith(t, 1, "d-cuca", 1)
	first, err := f.orders.Checkout(ctx, a.ID, model.PayCash, nil)
	require.NoError(t, err)

	_, err = settings.Update(ctx, map[string]any{"invoiceSeries": "2026"})
	require.NoError(t, err)

	b := f.openWith(t, 1, "d-cuca", 1)
	second, err := f.orders.Checkout(ctx, b.ID, model.PayCash, nil)
	require.NoError(t, err)

	assert.Equal(t, "FR VER2025/1", *first.InvoiceNumber)
	assert.Equal(t, "FR VER2026/1", *second.InvoiceNumber)
	assert.Nil(t, ledger.Verify(f.store.Current().Orders, ledger.DefaultPrefix))
}

func TestCheckout_CustomPrefix(t *testing.T) {
	f := newFixture(t)
	orders := NewOrderService(f.store, notify.Discard{}, nil, WithInvoicePrefix("FT TST"), WithClock(func() time.Time { return fixedNow }))
	o := f.openWith(t, 1, "d-cuca", 1)

	closed, err := orders.Checkout(context.Background(), o.ID, model.PayTransfer, nil)
	require.NoError(t, err)
	assert.Equal(t, "FT TST2025/1", *closed.InvoiceNumber)
}

func TestCheckout_NumberingSurvivesImportWithoutLedger(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	a := f.openWith(t, 1, "d-cuca", 1)
	first, err := f.orders.Checkout(ctx, a.ID, model.PayCash, nil)
	require.NoError(t, err)

	raw, err := json.Marshal(f.store.Current())
	require.NoError(t, err)
	var imported model.State
	require.NoError(t, json.Unmarshal(raw, &imported))
	imported.Ledger = nil
	f.store.Replace(&imported)

	b := f.openWith(t, 2, "d-cuca", 1)
	second, err := f.orders.Checkout(ctx, b.ID, model.PayCash, nil)
	require.NoError(t, err)

	assert.Equal(t, "FR VER2025/1", *first.InvoiceNumber)
	assert.Equal(t, "FR VER2025/2", *second.InvoiceNumber)
	assert.Nil(t, ledger.Verify(f.store.Current().Orders, ledger.DefaultPrefix))
}

// ── Amendments ────────────────────────────────────────────────────────────────

func closeDeferred(t *testing.T, f *fixture, customer string) model.Order {
	t.Helper()
	o := f.openWith(t, 5, "d-1000", 2)
	closed, err := f.orders.Checkout(context.Background(), o.ID, model.PayDeferred, strPtr(customer))
	require.NoError(t, err)
	return *closed
}

func TestAmendPaymentMethod_IsIdempotent(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	o := closeDeferred(t, f, "C1")
	require.True(t, f.customer("C1").Balance.Equal(dec(2000)))

	_, err := f.orders.AmendPaymentMethod(ctx, o.ID, model.PayCard)
	require.NoError(t, err)
	assert.True(t, f.customer("C1").Balance.IsZero())

	_, err = f.orders.AmendPaymentMethod(ctx, o.ID, model.PayCard)
	require.NoError(t, err)
	assert.True(t, f.customer("C1").Balance.IsZero())
}

func TestAmendPaymentMethod_DebtRoundTrip(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	o := closeDeferred(t, f, "C1")
	before := f.customer("C1").Balance

	_, err := f.orders.AmendPaymentMethod(ctx, o.ID, model.PayCard)
	require.NoError(t, err)
	got, err := f.orders.AmendPaymentMethod(ctx, o.ID, model.PayDeferred)
	require.NoError(t, err)

	assert.True(t, before.Equal(f.customer("C1").Balance))
	assert.Equal(t, o.InvoiceNumber, got.InvoiceNumber)
	assert.Equal(t, o.Hash, got.Hash)
	assert.True(t, o.Total.Equal(got.Total))
}

func TestAmendPaymentMethod_DebitFloorsAtZero(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	o := closeDeferred(t, f, "C1")
	customers := NewCustomerService(f.store, f.notifier, nil)
	_, err := customers.SettleDebt(ctx, "C1", dec(1500))
	require.NoError(t, err)

	_, err = f.orders.AmendPaymentMethod(ctx, o.ID, model.PayCash)
	require.NoError(t, err)
	assert.True(t, f.customer("C1").Balance.IsZero())
}

func TestAmendPaymentMethod_Rejections(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	open := f.openWith(t, 1, "d-cuca", 1)

	_, err := f.orders.AmendPaymentMethod(ctx, open.ID, model.PayCard)
	assert.ErrorIs(t, err, ErrOrderNotClosed)
	_, err = f.orders.AmendPaymentMethod(ctx, "ord-missing", model.PayCard)
	assert.ErrorIs(t, err, ErrOrderNotFound)
	_, err = f.orders.AmendPaymentMethod(ctx, open.ID, "")
	assert.ErrorIs(t, err, ErrInvalidPaymentMethod)
}

func TestAmendCustomer_MovesDebt(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	o := closeDeferred(t, f, "C1")

	_, err := f.orders.AmendCustomer(ctx, o.ID, strPtr("C2"))
	require.NoError(t, err)
	assert.True(t, f.customer("C1").Balance.IsZero())
	assert.True(t, f.customer("C2").Balance.Equal(dec(2000)))

	_, err = f.orders.AmendCustomer(ctx, o.ID, strPtr("C9"))
	assert.ErrorIs(t, err, ErrCustomerNotFound)

	got, err := f.orders.AmendCustomer(ctx, o.ID, nil)
	require.NoError(t, err)
	assert.Nil(t, got.CustomerID)
	assert.True(t, f.customer("C2").Balance.IsZero())
}

func TestAmendCustomer_NonDeferredMovesNoDebt(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	o := f.openWith(t, 1, "d-1000", 1)
	_, err := f.orders.Checkout(ctx, o.ID, model.PayCash, strPtr("C1"))
	require.NoError(t, err)

	_, err = f.orders.AmendCustomer(ctx, o.ID, strPtr("C2"))
	require.NoError(t, err)
	assert.True(t, f.customer("C1").Balance.IsZero())
	assert.True(t, f.customer("C2").Balance.IsZero())
}

// ── Kitchen status ────────────────────────────────────────────────────────────

func TestMarkItemStatus(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	o := f.openWith(t, 1, "d-cuca", 1)
	o2, err := f.orders.AddItem(ctx, AddItemInput{OrderID: o.ID, DishID: "d-moamba", Quantity: 1})
	require.NoError(t, err)

	got, err := f.orders.MarkItemStatus(ctx, o.ID, 1, model.ItemDelivered)
	require.NoError(t, err)
	assert.Equal(t, model.ItemPending, got.Items[0].Status)
	assert.Equal(t, model.ItemDelivered, got.Items[1].Status)
	assert.True(t, o2.Total.Equal(got.Total))

	_, err = f.orders.MarkItemStatus(ctx, o.ID, 5, model.ItemDelivered)
	assert.ErrorIs(t, err, ErrItemNotFound)
	_, err = f.orders.MarkItemStatus(ctx, o.ID, 0, "COZINHA")
	assert.ErrorIs(t, err, ErrInvalidItemStatus)

	served, err := f.orders.MarkOrderServed(ctx, o.ID)
	require.NoError(t, err)
	for _, it := range served.Items {
		assert.Equal(t, model.ItemDelivered, it.Status)
	}
}

// ── Selection & reads ─────────────────────────────────────────────────────────

func TestSelection(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	require.NoError(t, f.orders.SetActiveTable(ctx, intPtr(3)))
	assert.Equal(t, 3, *f.orders.Selection(ctx).TableID)
	assert.ErrorIs(t, f.orders.SetActiveTable(ctx, intPtr(42)), ErrTableNotFound)
	assert.ErrorIs(t, f.orders.SetActiveOrder(ctx, strPtr("ord-missing")), ErrOrderNotFound)

	require.NoError(t, f.orders.SetActiveTable(ctx, nil))
	assert.Nil(t, f.orders.Selection(ctx).TableID)
}

func TestListOrders_Filters(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	a := f.openWith(t, 1, "d-cuca", 1)
	f.openWith(t, 2, "d-cuca", 1)
	_, err := f.orders.Checkout(ctx, a.ID, model.PayCash, nil)
	require.NoError(t, err)

	assert.Len(t, f.orders.ListOrders(ctx, OrderFilter{}), 2)
	assert.Len(t, f.orders.ListOrders(ctx, OrderFilter{Status: model.OrderOpen}), 1)
	assert.Len(t, f.orders.ListOrders(ctx, OrderFilter{TableID: intPtr(1)}), 1)

	today := fixedNow
	tomorrow := fixedNow.AddDate(0, 0, 1)
	assert.Len(t, f.orders.ListOrders(ctx, OrderFilter{Day: &today}), 2)
	assert.Empty(t, f.orders.ListOrders(ctx, OrderFilter{Day: &tomorrow}))

	_, err = f.orders.GetOrder(ctx, "ord-missing")
	assert.ErrorIs(t, err, ErrOrderNotFound)
}

func TestListOrders_DayFollowsLocation(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	lateNight := time.Date(2025, 6, 14, 23, 30, 0, 0, time.UTC)
	orders := NewOrderService(f.store, notify.Discard{}, nil,
		WithClock(func() time.Time { return lateNight }),
		WithLocation(time.FixedZone("WAT", 3600)))
	o, err := orders.AddItem(ctx, AddItemInput{TableID: intPtr(1), DishID: "d-cuca", Quantity: 1})
	require.NoError(t, err)
	_, err = orders.Checkout(ctx, o.ID, model.PayCash, nil)
	require.NoError(t, err)

	the14th := time.Date(2025, 6, 14, 0, 0, 0, 0, time.UTC)
	the15th := time.Date(2025, 6, 15, 0, 0, 0, 0, time.UTC)
	assert.Empty(t, orders.ListOrders(ctx, OrderFilter{Day: &the14th}))
	assert.Len(t, orders.ListOrders(ctx, OrderFilter{Day: &the15th}), 1)
}

// ── Randomized properties ─────────────────────────────────────────────────────

// TestRandomOperationSequences drives the engine with random operations and
// checks after every step that aggregates reconcile, occupancy matches the
// open orders and invoice counters advance by exactly one per checkout.
func TestRandomOperationSequences(t *testing.T) {
	ctx := context.Background()
	fake := faker.New()
	dishes := []string{"d-1000", "d-moamba", "d-cuca"}
	methods := model.PaymentMethods

	for run := 0; run < 20; run++ {
		f := newFixture(t)
		var issued []int64

		for step := 0; step < 60; step++ {
			st := f.store.Current()
			var open []model.Order
			for _, o := range st.Orders {
				if o.IsOpen() {
					open = append(open, o)
				}
			}

			switch op := fake.IntBetween(0, 5); {
			case op <= 1 || len(open) == 0:
				_, _ = f.orders.AddItem(ctx, AddItemInput{
					TableID:  intPtr(fake.IntBetween(1, 5)),
					DishID:   dishes[fake.IntBetween(0, len(dishes)-1)],
					Quantity: fake.IntBetween(1, 4),
				})
			case op == 2:
				o := open[fake.IntBetween(0, len(open)-1)]
				_, _ = f.orders.AddItem(ctx, AddItemInput{OrderID: o.ID, DishID: dishes[fake.IntBetween(0, len(dishes)-1)], Quantity: fake.IntBetween(-2, 3)})
			case op == 3:
				o := open[fake.IntBetween(0, len(open)-1)]
				_, _ = f.orders.TransferOrder(ctx, o.ID, fake.IntBetween(1, 5))
			case op == 4:
				o := open[fake.IntBetween(0, len(open)-1)]
				method := methods[fake.IntBetween(0, len(methods)-1)]
				var customer *string
				if fake.Bool() {
					customer = strPtr("C1")
				}
				if closed, err := f.orders.Checkout(ctx, o.ID, method, customer); err == nil {
					n, err := ledger.ParseCounter(*closed.InvoiceNumber)
					require.NoError(t, err)
					issued = append(issued, n)
				}
			default:
				o := open[fake.IntBetween(0, len(open)-1)]
				if len(o.Items) > 0 {
					_, _ = f.orders.MarkItemStatus(ctx, o.ID, fake.IntBetween(0, len(o.Items)-1), model.ItemDelivered)
				}
			}

			after := f.store.Current()
			assertOccupancy(t, after)
			for _, o := range after.Orders {
				assertAggregates(t, o)
				for _, it := range o.Items {
					require.NotZero(t, it.Quantity)
				}
			}
		}

		for i, n := range issued {
			require.Equal(t, int64(i+1), n, "run %d: invoice counters must advance by one", run)
		}
		require.Nil(t, ledger.Verify(f.store.Current().Orders, ledger.DefaultPrefix))
		deferred := decimal.Zero
		for _, o := range f.store.Current().Orders {
			if o.IsDeferred() && o.CustomerID != nil {
				deferred = deferred.Add(o.Total)
			}
		}
		require.True(t, deferred.Equal(f.customer("C1").Balance), "run %d: debt must equal deferred totals", run)
	}
}
