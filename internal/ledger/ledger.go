// Package ledger assigns sequential invoice numbers per series and chains
// every closed invoice to its predecessor with a SHA-256 digest, so that a
// removed or altered invoice breaks the chain.
package ledger

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"veredapos/internal/model"

	"github.com/shopspring/decimal"
)

// DefaultPrefix is prepended to every invoice number ("FR VER2025/17").
const DefaultPrefix = "FR VER"

// FormatNumber renders the human invoice number for counter n of series.
func FormatNumber(prefix, series string, n int64) string {
	return fmt.Sprintf("%s%s/%d", prefix, series, n)
}

// ParseCounter extracts the counter from a number produced by FormatNumber.
func ParseCounter(invoiceNumber string) (int64, error) {
	i := strings.LastIndexByte(invoiceNumber, '/')
	if i < 0 {
		return 0, fmt.Errorf("ledger: malformed invoice number %q", invoiceNumber)
	}
	return strconv.ParseInt(invoiceNumber[i+1:], 10, 64)
}

// SplitNumber separates an invoice number into its series and counter.
func SplitNumber(invoiceNumber, prefix string) (string, int64, error) {
	i := strings.LastIndexByte(invoiceNumber, '/')
	if i < 0 {
		return "", 0, fmt.Errorf("ledger: malformed invoice number %q", invoiceNumber)
	}
	n, err := ParseCounter(invoiceNumber)
	if err != nil {
		return "", 0, err
	}
	return strings.TrimPrefix(invoiceNumber[:i], prefix), n, nil
}

// Reconcile brings the ledger of st in line with the invoices it already
// holds: each series resumes after its highest issued counter, chained to
// that invoice's hash. Counters only ever move forward. A legacy global
// counter (invoiceCounter of older exports) applies to the current series.
func Reconcile(st *model.State, prefix string) {
	if st.Ledger == nil {
		st.Ledger = map[string]model.SeriesLedger{}
	}

	type issued struct {
		n    int64
		hash string
	}
	highest := map[string]issued{}
	for _, o := range st.Orders {
		if o.Status != model.OrderClosed || o.InvoiceNumber == nil {
			continue
		}
		series, n, err := SplitNumber(*o.InvoiceNumber, prefix)
		if err != nil {
			continue
		}
		if h, ok := highest[series]; ok && h.n >= n {
			continue
		}
		h := issued{n: n}
		if o.Hash != nil {
			h.hash = *o.Hash
		}
		highest[series] = h
	}
	for series, h := range highest {
		if Next(st.Ledger, series) <= h.n {
			st.Ledger[series] = model.SeriesLedger{Next: h.n + 1, LastHash: h.hash}
		}
	}

	if st.LegacyInvoiceCounter > 0 {
		series := st.Settings.InvoiceSeries
		if e := st.Ledger[series]; Next(st.Ledger, series) < st.LegacyInvoiceCounter {
			e.Next = st.LegacyInvoiceCounter
			st.Ledger[series] = e
		}
		st.LegacyInvoiceCounter = 0
	}
}

// Next returns the counter the next checkout in series will receive. A
// series that was never used starts at 1.
func Next(l map[string]model.SeriesLedger, series string) int64 {
	if e, ok := l[series]; ok && e.Next > 0 {
		return e.Next
	}
	return 1
}

// Head returns the hash of the last invoice issued in series.
func Head(l map[string]model.SeriesLedger, series string) string {
	return l[series].LastHash
}

// Commit consumes counter n of series and moves the chain head to hash.
// It refuses to move the counter backwards.
func Commit(l map[string]model.SeriesLedger, series string, n int64, hash string) error {
	if want := Next(l, series); n != want {
		return fmt.Errorf("ledger: series %s expects counter %d, got %d", series, want, n)
	}
	l[series] = model.SeriesLedger{Next: n + 1, LastHash: hash}
	return nil
}

// HashInput is the invoice content covered by the closure hash.
type HashInput struct {
	InvoiceNumber string
	ClosedAt      time.Time
	Total         decimal.Decimal
	TaxTotal      decimal.Decimal
	Items         []model.OrderItem
	PreviousHash  string
}

// InputFor builds the hash input of a closed order.
func InputFor(o *model.Order, previous string) HashInput {
	in := HashInput{
		Total:        o.Total,
		TaxTotal:     o.TaxTotal,
		Items:        o.Items,
		PreviousHash: previous,
	}
	if o.InvoiceNumber != nil {
		in.InvoiceNumber = *o.InvoiceNumber
	}
	if o.ClosedAt != nil {
		in.ClosedAt = *o.ClosedAt
	}
	return in
}

// ClosureHash returns the uppercase hex SHA-256 digest of in.
func ClosureHash(in HashInput) string {
	var b strings.Builder
	b.WriteString(in.InvoiceNumber)
	b.WriteByte(';')
	b.WriteString(in.ClosedAt.UTC().Format(time.RFC3339))
	b.WriteByte(';')
	b.WriteString(in.Total.StringFixed(2))
	b.WriteByte(';')
	b.WriteString(in.TaxTotal.StringFixed(2))
	for _, it := range in.Items {
		fmt.Fprintf(&b, ";%s:%d:%s", it.DishID, it.Quantity, it.UnitPrice.StringFixed(2))
	}
	b.WriteByte(';')
	b.WriteString(in.PreviousHash)

	sum := sha256.Sum256([]byte(b.String()))
	return strings.ToUpper(hex.EncodeToString(sum[:]))
}

// Short renders a hash for printed documents: first four, a dash, last four.
func Short(hash string) string {
	if len(hash) <= 8 {
		return hash
	}
	return hash[:4] + "-" + hash[len(hash)-4:]
}

// Break describes the first inconsistency found by Verify.
type Break struct {
	Series        string `json:"series"`
	InvoiceNumber string `json:"invoiceNumber"`
	Reason        string `json:"reason"`
}

// Verify walks every series found among the closed orders in counter order
// and recomputes the chain. It returns nil when every link holds.
func Verify(orders []model.Order, prefix string) *Break {
	bySeries := map[string][]model.Order{}
	for _, o := range orders {
		if o.Status != model.OrderClosed || o.InvoiceNumber == nil {
			continue
		}
		series, _, err := SplitNumber(*o.InvoiceNumber, prefix)
		if err != nil {
			return &Break{InvoiceNumber: *o.InvoiceNumber, Reason: "numero mal formado"}
		}
		bySeries[series] = append(bySeries[series], o)
	}

	names := make([]string, 0, len(bySeries))
	for k := range bySeries {
		names = append(names, k)
	}
	sort.Strings(names)

	for _, series := range names {
		list := bySeries[series]
		sort.Slice(list, func(a, b int) bool {
			na, _ := ParseCounter(*list[a].InvoiceNumber)
			nb, _ := ParseCounter(*list[b].InvoiceNumber)
			return na < nb
		})
		prev := ""
		for idx, o := range list {
			n, err := ParseCounter(*o.InvoiceNumber)
			if err != nil {
				return &Break{Series: series, InvoiceNumber: *o.InvoiceNumber, Reason: "numero mal formado"}
			}
			if n != int64(idx+1) {
				return &Break{Series: series, InvoiceNumber: *o.InvoiceNumber, Reason: "sequencia interrompida"}
			}
			if o.Hash == nil || ClosureHash(InputFor(&o, prev)) != *o.Hash {
				return &Break{Series: series, InvoiceNumber: *o.InvoiceNumber, Reason: "hash nao confere"}
			}
			prev = *o.Hash
		}
	}
	return nil
}
