package service

import (
	"context"
	"sort"
	"time"

	"veredapos/internal/ledger"
	"veredapos/internal/model"
	"veredapos/internal/state"

	"github.com/shopspring/decimal"
)

// ReportService derives every figure from the committed orders; nothing here
// is stored.
type ReportService interface {
	Metrics(ctx context.Context) model.FinanceMetrics
	// ShiftClosing summarizes the calendar date of day; a zero day means today.
	ShiftClosing(ctx context.Context, day time.Time, operator string) model.ShiftSummary
	VerifyLedger(ctx context.Context) *ledger.Break
}

type reportService struct {
	store *state.Store
	opts  options
}

func NewReportService(store *state.Store, opts ...Option) ReportService {
	return &reportService{store: store, opts: buildOptions(opts)}
}

var hundred = decimal.NewFromInt(100)

func (s *reportService) Metrics(_ context.Context) model.FinanceMetrics {
	st := s.store.Current()
	today := s.opts.today()

	m := model.FinanceMetrics{ByMethod: map[model.PaymentMethod]decimal.Decimal{}}
	for _, o := range st.Orders {
		if o.IsOpen() {
			m.OpenOrders++
			m.OpenValue = m.OpenValue.Add(o.Total)
			continue
		}
		m.ClosedCount++
		m.GrossRevenue = m.GrossRevenue.Add(o.Total)
		m.TaxTotal = m.TaxTotal.Add(o.TaxTotal)
		m.Profit = m.Profit.Add(o.Profit)
		if o.PaymentMethod != nil {
			m.ByMethod[*o.PaymentMethod] = m.ByMethod[*o.PaymentMethod].Add(o.Total)
		}
		if o.ClosedAt != nil && sameDay(*o.ClosedAt, today, s.opts.loc) {
			m.TodayCount++
			m.TodayGross = m.TodayGross.Add(o.Total)
			m.TodayProfit = m.TodayProfit.Add(o.Profit)
		}
	}
	m.NetRevenue = m.GrossRevenue.Sub(m.TaxTotal)
	m.TodayMarginPct = marginPct(m.TodayProfit, m.TodayGross)
	m.OverallMarginPct = marginPct(m.Profit, m.GrossRevenue)
	for _, c := range st.Customers {
		m.Outstanding = m.Outstanding.Add(c.Balance)
	}
	return m
}

// marginPct is profit as a percentage of gross, one decimal. Zero gross
// gives zero.
func marginPct(profit, gross decimal.Decimal) decimal.Decimal {
	if !gross.IsPositive() {
		return decimal.Zero
	}
	return profit.Mul(hundred).Div(gross).Round(1)
}

// ShiftClosing summarizes the orders closed on day, oldest first.
func (s *reportService) ShiftClosing(_ context.Context, day time.Time, operator string) model.ShiftSummary {
	if day.IsZero() {
		day = s.opts.today()
	} else {
		y, m, d := day.Date()
		day = time.Date(y, m, d, 0, 0, 0, 0, s.opts.loc)
	}
	st := s.store.Current()
	sum := model.ShiftSummary{
		Day:         day,
		Operator:    operator,
		GeneratedAt: s.opts.now(),
		Orders:      []model.Order{},
		ByMethod:    map[model.PaymentMethod]decimal.Decimal{},
	}
	for _, o := range st.Orders {
		if o.Status != model.OrderClosed || o.ClosedAt == nil || !sameDay(*o.ClosedAt, day, s.opts.loc) {
			continue
		}
		sum.Orders = append(sum.Orders, o.Clone())
		sum.Gross = sum.Gross.Add(o.Total)
		sum.Tax = sum.Tax.Add(o.TaxTotal)
		sum.Profit = sum.Profit.Add(o.Profit)
		if o.PaymentMethod != nil {
			sum.ByMethod[*o.PaymentMethod] = sum.ByMethod[*o.PaymentMethod].Add(o.Total)
		}
	}
	sort.SliceStable(sum.Orders, func(i, j int) bool { return sum.Orders[i].ClosedAt.Before(*sum.Orders[j].ClosedAt) })
	sum.Count = len(sum.Orders)
	sum.Net = sum.Gross.Sub(sum.Tax)
	return sum
}

// VerifyLedger re-walks every invoice series; nil means the chain is intact.
func (s *reportService) VerifyLedger(_ context.Context) *ledger.Break {
	return ledger.Verify(s.store.Current().Orders, s.opts.invoicePrefix)
}
