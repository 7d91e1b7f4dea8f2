package ledger

import (
	"testing"
	"time"

	"veredapos/internal/model"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatAndParseNumber(t *testing.T) {
	num := FormatNumber(DefaultPrefix, "2025", 17)
	assert.Equal(t, "FR VER2025/17", num)

	n, err := ParseCounter(num)
	require.NoError(t, err)
	assert.Equal(t, int64(17), n)

	_, err = ParseCounter("garbage")
	assert.Error(t, err)
}

func TestNextAndCommit(t *testing.T) {
	l := map[string]model.SeriesLedger{}
	assert.Equal(t, int64(1), Next(l, "2025"))

	require.NoError(t, Commit(l, "2025", 1, "AAA"))
	assert.Equal(t, int64(2), Next(l, "2025"))
	assert.Equal(t, "AAA", Head(l, "2025"))

	// other series are independent
	assert.Equal(t, int64(1), Next(l, "2026"))
	assert.Equal(t, "", Head(l, "2026"))

	assert.Error(t, Commit(l, "2025", 1, "BBB"), "a consumed counter cannot be reused")
	assert.Equal(t, int64(2), Next(l, "2025"))
}

func TestClosureHash_DeterministicAndChained(t *testing.T) {
	at := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	in := HashInput{
		InvoiceNumber: "FR VER2025/1",
		ClosedAt:      at,
		Total:         decimal.NewFromInt(2000),
		TaxTotal:      decimal.NewFromInt(280),
		Items:         []model.OrderItem{{DishID: "d1", Quantity: 2, UnitPrice: decimal.NewFromInt(1000)}},
	}
	h1 := ClosureHash(in)
	assert.Len(t, h1, 64)
	assert.Equal(t, h1, ClosureHash(in))

	in.PreviousHash = "X"
	assert.NotEqual(t, h1, ClosureHash(in), "previous hash is part of the digest")

	in.PreviousHash = ""
	in.Total = decimal.NewFromInt(2001)
	assert.NotEqual(t, h1, ClosureHash(in))
}

func TestShort(t *testing.T) {
	assert.Equal(t, "ABCD-WXYZ", Short("ABCD1234567890WXYZ"))
	assert.Equal(t, "ABC", Short("ABC"))
}

func closedOrder(series string, n int64, prev string, total int64) model.Order {
	num := FormatNumber(DefaultPrefix, series, n)
	at := time.Date(2025, 3, 1, 12, int(n), 0, 0, time.UTC)
	o := model.Order{
		ID:            num,
		Status:        model.OrderClosed,
		Total:         decimal.NewFromInt(total),
		InvoiceNumber: &num,
		ClosedAt:      &at,
	}
	h := ClosureHash(InputFor(&o, prev))
	o.Hash = &h
	return o
}

func TestVerify(t *testing.T) {
	a := closedOrder("2025", 1, "", 100)
	b := closedOrder("2025", 2, *a.Hash, 200)
	c := closedOrder("2026", 1, "", 50)
	open := model.Order{ID: "open", Status: model.OrderOpen}

	assert.Nil(t, Verify([]model.Order{b, open, c, a}, DefaultPrefix))

	tampered := b
	tampered.Total = decimal.NewFromInt(1)
	brk := Verify([]model.Order{a, tampered}, DefaultPrefix)
	require.NotNil(t, brk)
	assert.Equal(t, "2025", brk.Series)
	assert.Equal(t, *b.InvoiceNumber, brk.InvoiceNumber)

	brk = Verify([]model.Order{b}, DefaultPrefix)
	require.NotNil(t, brk, "missing first invoice breaks the sequence")
	assert.Equal(t, "sequencia interrompida", brk.Reason)
}

func TestSplitNumber(t *testing.T) {
	series, n, err := SplitNumber("FR VER2025/17", DefaultPrefix)
	require.NoError(t, err)
	assert.Equal(t, "2025", series)
	assert.Equal(t, int64(17), n)

	_, _, err = SplitNumber("FR VER2025-17", DefaultPrefix)
	assert.Error(t, err)
	_, _, err = SplitNumber("FR VER2025/x", DefaultPrefix)
	assert.Error(t, err)
}

func TestReconcile_RebuildsMissingLedger(t *testing.T) {
	a := closedOrder("2025", 1, "", 100)
	b := closedOrder("2025", 2, *a.Hash, 200)
	c := closedOrder("2026", 1, "", 50)
	st := &model.State{Orders: []model.Order{b, c, a, {ID: "open", Status: model.OrderOpen}}}

	Reconcile(st, DefaultPrefix)

	require.NotNil(t, st.Ledger)
	assert.Equal(t, model.SeriesLedger{Next: 3, LastHash: *b.Hash}, st.Ledger["2025"])
	assert.Equal(t, model.SeriesLedger{Next: 2, LastHash: *c.Hash}, st.Ledger["2026"])
}

func TestReconcile_RaisesLedgerBehindItsInvoices(t *testing.T) {
	a := closedOrder("2025", 1, "", 100)
	b := closedOrder("2025", 2, *a.Hash, 200)
	st := &model.State{
		Orders: []model.Order{a, b},
		Ledger: map[string]model.SeriesLedger{"2025": {Next: 2, LastHash: *a.Hash}},
	}

	Reconcile(st, DefaultPrefix)
	assert.Equal(t, int64(3), Next(st.Ledger, "2025"))
	assert.Equal(t, *b.Hash, Head(st.Ledger, "2025"))
}

func TestReconcile_KeepsLedgerAhead(t *testing.T) {
	a := closedOrder("2025", 1, "", 100)
	ahead := model.SeriesLedger{Next: 9, LastHash: "ABC"}
	st := &model.State{
		Orders: []model.Order{a},
		Ledger: map[string]model.SeriesLedger{"2025": ahead},
	}

	Reconcile(st, DefaultPrefix)
	assert.Equal(t, ahead, st.Ledger["2025"])
}

func TestReconcile_FoldsLegacyCounter(t *testing.T) {
	st := &model.State{
		Settings:             model.Settings{InvoiceSeries: "2025"},
		LegacyInvoiceCounter: 42,
	}

	Reconcile(st, DefaultPrefix)
	assert.Equal(t, int64(42), Next(st.Ledger, "2025"))
	assert.Zero(t, st.LegacyInvoiceCounter)

	// A legacy counter behind the issued invoices never rolls numbering back.
	a := closedOrder("2025", 1, "", 100)
	b := closedOrder("2025", 2, *a.Hash, 200)
	st = &model.State{
		Settings:             model.Settings{InvoiceSeries: "2025"},
		Orders:               []model.Order{a, b},
		LegacyInvoiceCounter: 2,
	}
	Reconcile(st, DefaultPrefix)
	assert.Equal(t, int64(3), Next(st.Ledger, "2025"))
}
