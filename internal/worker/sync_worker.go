package worker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"veredapos/internal/infra"
	"veredapos/internal/model"
	"veredapos/internal/notify"

	"github.com/rs/zerolog/log"
)

// CloudMirror is satisfied by repository.CloudRepository.
type CloudMirror interface {
	UpsertSales(ctx context.Context, rows []model.CloudSale) error
	UpsertCustomers(ctx context.Context, rows []model.CloudCustomer) error
	UpsertCatalog(ctx context.Context, cats []model.CloudCategory, dishes []model.CloudDish) error
	LogSync(ctx context.Context, kind string, rows int) error
}

const (
	syncMaxAttempts = 3
	syncBaseBackoff = 2 * time.Second
)

// SyncWorker copies committed data to the cloud mirror. It only ever reads
// the committed state, so a slow or failing mirror cannot hold up the till.
type SyncWorker struct {
	src      SnapshotSource
	mirror   CloudMirror
	cb       *infra.CircuitBreaker
	notifier notify.Notifier
	backoff  time.Duration
	now      func() time.Time
}

func NewSyncWorker(src SnapshotSource, mirror CloudMirror, cb *infra.CircuitBreaker, n notify.Notifier) *SyncWorker {
	return &SyncWorker{src: src, mirror: mirror, cb: cb, notifier: n, backoff: syncBaseBackoff, now: time.Now}
}

func (w *SyncWorker) Process(ctx context.Context, raw json.RawMessage) error {
	var payload SyncJobPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return fmt.Errorf("sync_worker: invalid payload: %w", err)
	}
	switch payload.Kind {
	case SyncSale, SyncCustomer, SyncCatalog, SyncFull:
	default:
		return fmt.Errorf("sync_worker: unknown kind %q", payload.Kind)
	}

	err := withRetry(ctx, syncMaxAttempts, w.backoff, func(attempt int) error {
		err := w.cb.Execute(func() error { return w.push(ctx, payload) })
		if errors.Is(err, infra.ErrCircuitOpen) {
			// no point hammering an open breaker; the DLQ keeps the job
			return backoffStop{err}
		}
		if err != nil {
			log.Warn().Err(err).Int("attempt", attempt+1).Str("kind", string(payload.Kind)).Msg("sync_worker: push failed")
		}
		return err
	})
	var stop backoffStop
	if errors.As(err, &stop) {
		err = stop.err
	}
	if err != nil {
		w.notifier.Notify(notify.Warning, "Sincronizacao com a nuvem adiada")
		return fmt.Errorf("sync_worker: %s: %w", payload.Kind, err)
	}
	return nil
}

func (w *SyncWorker) push(ctx context.Context, p SyncJobPayload) error {
	st := w.src.Current()
	at := w.now().UTC()

	var rows int
	switch p.Kind {
	case SyncSale:
		o := st.Order(p.OrderID)
		if o == nil || o.Status != model.OrderClosed {
			return fmt.Errorf("order %s is not a closed sale", p.OrderID)
		}
		if err := w.mirror.UpsertSales(ctx, []model.CloudSale{model.CloudSaleFromOrder(o, at)}); err != nil {
			return err
		}
		rows = 1
		// a deferred sale moves the customer's balance with it
		if o.CustomerID != nil {
			if c := st.Customer(*o.CustomerID); c != nil {
				if err := w.mirror.UpsertCustomers(ctx, []model.CloudCustomer{cloudCustomer(c, at)}); err != nil {
					return err
				}
				rows++
			}
		}
	case SyncCustomer:
		c := st.Customer(p.CustomerID)
		if c == nil {
			// deleted since the job was queued
			return nil
		}
		if err := w.mirror.UpsertCustomers(ctx, []model.CloudCustomer{cloudCustomer(c, at)}); err != nil {
			return err
		}
		rows = 1
	case SyncCatalog:
		n, err := w.pushCatalog(ctx, st, at)
		if err != nil {
			return err
		}
		rows = n
	case SyncFull:
		n, err := w.pushCatalog(ctx, st, at)
		if err != nil {
			return err
		}
		sales := make([]model.CloudSale, 0, len(st.Orders))
		for i := range st.Orders {
			if st.Orders[i].Status == model.OrderClosed {
				sales = append(sales, model.CloudSaleFromOrder(&st.Orders[i], at))
			}
		}
		if err := w.mirror.UpsertSales(ctx, sales); err != nil {
			return err
		}
		customers := make([]model.CloudCustomer, 0, len(st.Customers))
		for i := range st.Customers {
			customers = append(customers, cloudCustomer(&st.Customers[i], at))
		}
		if err := w.mirror.UpsertCustomers(ctx, customers); err != nil {
			return err
		}
		rows = n + len(sales) + len(customers)
	}

	if err := w.mirror.LogSync(ctx, string(p.Kind), rows); err != nil {
		log.Warn().Err(err).Msg("sync_worker: failed to write sync log")
	}
	log.Info().Str("kind", string(p.Kind)).Int("rows", rows).Msg("sync_worker: mirrored")
	return nil
}

func (w *SyncWorker) pushCatalog(ctx context.Context, st *model.State, at time.Time) (int, error) {
	cats := make([]model.CloudCategory, 0, len(st.Categories))
	for _, c := range st.Categories {
		cats = append(cats, model.CloudCategory{ID: c.ID, Name: c.Name, IsVisibleDigital: c.IsVisibleDigital, SyncedAt: at})
	}
	dishes := make([]model.CloudDish, 0, len(st.Menu))
	for _, d := range st.Menu {
		dishes = append(dishes, model.CloudDish{
			ID: d.ID, Name: d.Name, Price: d.Price, CostPrice: d.CostPrice, CategoryID: d.CategoryID,
			IsVisibleDigital: d.IsVisibleDigital, IsFeatured: d.IsFeatured, SyncedAt: at,
		})
	}
	if err := w.mirror.UpsertCatalog(ctx, cats, dishes); err != nil {
		return 0, err
	}
	return len(cats) + len(dishes), nil
}

func cloudCustomer(c *model.Customer, at time.Time) model.CloudCustomer {
	return model.CloudCustomer{ID: c.ID, Name: c.Name, NIF: c.NIF, Balance: c.Balance, SyncedAt: at}
}

// backoffStop ends withRetry early.
type backoffStop struct{ err error }

func (b backoffStop) Error() string { return b.err.Error() }
func (b backoffStop) Unwrap() error { return b.err }
