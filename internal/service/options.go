package service

import (
	"context"
	"time"

	"veredapos/internal/ledger"
	"veredapos/internal/model"
	"veredapos/internal/notify"
	"veredapos/internal/worker"
)

// JobDispatcher enqueues the asynchronous side effects of a committed
// transition. *worker.Dispatcher satisfies it.
type JobDispatcher interface {
	EnqueueInvoice(ctx context.Context, p worker.InvoiceJobPayload) error
	EnqueueSync(ctx context.Context, p worker.SyncJobPayload) error
}

// MenuCache holds the rendered public menu. *infra.MenuCache satisfies it.
// Get returns (nil, nil) on a miss.
type MenuCache interface {
	Get(ctx context.Context) (*model.PublicMenu, error)
	Set(ctx context.Context, m *model.PublicMenu) error
	Invalidate(ctx context.Context) error
}

type options struct {
	now           func() time.Time
	invoicePrefix string
	loc           *time.Location
}

type Option func(*options)

// WithClock replaces time.Now, mostly for tests.
func WithClock(now func() time.Time) Option {
	return func(o *options) { o.now = now }
}

func WithInvoicePrefix(prefix string) Option {
	return func(o *options) { o.invoicePrefix = prefix }
}

// WithLocation sets the timezone whose calendar days group orders in
// reports and day filters. The default is UTC.
func WithLocation(loc *time.Location) Option {
	return func(o *options) { o.loc = loc }
}

func buildOptions(opts []Option) options {
	o := options{now: time.Now, invoicePrefix: ledger.DefaultPrefix, loc: time.UTC}
	for _, fn := range opts {
		fn(&o)
	}
	return o
}

// today is midnight of the current day in the configured location.
func (o options) today() time.Time {
	return startOfDay(o.now(), o.loc)
}

// dispatch runs an enqueue after commit. A queue failure never undoes the
// transition; it is only reported.
func dispatch(n notify.Notifier, what string, fn func() error) {
	if err := fn(); err != nil {
		n.Notify(notify.Warning, "Nao foi possivel agendar "+what+": "+err.Error())
	}
}
