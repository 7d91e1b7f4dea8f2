package worker

// invoice_worker.go renders the invoice of a freshly closed order into the
// document store and, when the customer left an e-mail address, queues the
// delivery. Rendering reads the committed state only; it never mutates it.

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"veredapos/internal/model"
	"veredapos/internal/notify"

	"github.com/rs/zerolog/log"
)

// InvoiceRenderer is satisfied by *infra.Renderer.
type InvoiceRenderer interface {
	Invoice(o *model.Order, menu []model.Dish, s model.Settings, customer *model.Customer) ([]byte, error)
}

// EmailEnqueuer is satisfied by *Dispatcher.
type EmailEnqueuer interface {
	EnqueueEmail(ctx context.Context, p EmailJobPayload) error
}

type InvoiceWorker struct {
	src         SnapshotSource
	renderer    InvoiceRenderer
	emails      EmailEnqueuer
	notifier    notify.Notifier
	storagePath string
}

func NewInvoiceWorker(src SnapshotSource, renderer InvoiceRenderer, emails EmailEnqueuer, n notify.Notifier, storagePath string) *InvoiceWorker {
	return &InvoiceWorker{src: src, renderer: renderer, emails: emails, notifier: n, storagePath: storagePath}
}

// InvoiceFileName maps an invoice number to a safe file name
// ("FR VER2025/17" → "FR_VER2025-17.pdf").
func InvoiceFileName(invoiceNumber string) string {
	r := strings.NewReplacer(" ", "_", "/", "-", "\\", "-")
	return r.Replace(invoiceNumber) + ".pdf"
}

func (w *InvoiceWorker) Process(ctx context.Context, raw json.RawMessage) error {
	var payload InvoiceJobPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return fmt.Errorf("invoice_worker: invalid payload: %w", err)
	}

	st := w.src.Current()
	o := st.Order(payload.OrderID)
	if o == nil {
		return fmt.Errorf("invoice_worker: order %s not found", payload.OrderID)
	}
	if o.Status != model.OrderClosed || o.InvoiceNumber == nil {
		return fmt.Errorf("invoice_worker: order %s is not closed", payload.OrderID)
	}

	// the target must exist before anything is rendered
	if err := os.MkdirAll(w.storagePath, 0o755); err != nil {
		w.notifier.Notify(notify.Error, "Destino de impressao indisponivel")
		return fmt.Errorf("invoice_worker: storage unavailable: %w", err)
	}

	var customer *model.Customer
	if o.CustomerID != nil {
		customer = st.Customer(*o.CustomerID)
	}

	pdf, err := w.renderer.Invoice(o, st.Menu, st.Settings, customer)
	if err != nil {
		return fmt.Errorf("invoice_worker: render: %w", err)
	}
	path := filepath.Join(w.storagePath, InvoiceFileName(*o.InvoiceNumber))
	if err := os.WriteFile(path, pdf, 0o644); err != nil {
		w.notifier.Notify(notify.Error, "Destino de impressao indisponivel")
		return fmt.Errorf("invoice_worker: write: %w", err)
	}
	log.Info().Str("invoice", *o.InvoiceNumber).Str("pdf", path).Msg("invoice_worker: document rendered")

	if customer == nil || customer.Email == nil || *customer.Email == "" || w.emails == nil {
		return nil
	}
	job := EmailJobPayload{
		ToEmail: *customer.Email,
		Subject: fmt.Sprintf("%s - %s", st.Settings.RestaurantName, *o.InvoiceNumber),
		Body: fmt.Sprintf("Segue em anexo a sua fatura.\nTotal: %s %s\nData: %s",
			o.Total.StringFixed(2), st.Settings.Currency, o.ClosedAt.Format(time.DateTime)),
		PDFPath: path,
	}
	if err := w.emails.EnqueueEmail(ctx, job); err != nil {
		// the document exists; losing the e-mail is not worth a DLQ entry
		log.Warn().Err(err).Str("email", *customer.Email).Msg("invoice_worker: failed to enqueue email")
		w.notifier.Notify(notify.Warning, "Fatura gerada mas o envio por e-mail falhou")
		return nil
	}
	return nil
}

var errRetriesExhausted = errors.New("retries exhausted")

// withRetry calls fn up to maxAttempts times with exponential backoff
// (immediate, base, 2×base, …). It returns the last error. A backoffStop
// error ends the loop at once.
func withRetry(ctx context.Context, maxAttempts int, base time.Duration, fn func(attempt int) error) error {
	var lastErr error = errRetriesExhausted
	for i := 0; i < maxAttempts; i++ {
		if i > 0 {
			wait := base * time.Duration(1<<uint(i-1))
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(wait):
			}
		}
		if err := fn(i); err != nil {
			lastErr = err
			var stop backoffStop
			if errors.As(err, &stop) {
				return err
			}
			continue
		}
		return nil
	}
	return lastErr
}
