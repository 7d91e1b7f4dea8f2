package worker

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/rs/zerolog/log"
)

// EmailJobPayload is the job envelope sent to QueueEmail.
type EmailJobPayload struct {
	ToEmail string `json:"to_email"`
	Subject string `json:"subject"`
	Body    string `json:"body"`
	PDFPath string `json:"pdf_path"`
}

// DocumentMailer is satisfied by *infra.Mailer.
type DocumentMailer interface {
	SendDocument(to, subject, body, path string) error
}

// EmailWorker mails rendered invoices to customers.
type EmailWorker struct {
	mailer DocumentMailer
}

func NewEmailWorker(mailer DocumentMailer) *EmailWorker {
	return &EmailWorker{mailer: mailer}
}

func (w *EmailWorker) Process(_ context.Context, raw json.RawMessage) error {
	var payload EmailJobPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return err
	}
	if payload.ToEmail == "" {
		log.Warn().Msg("email_worker: empty to_email, skipping")
		return nil
	}
	if err := w.mailer.SendDocument(payload.ToEmail, payload.Subject, payload.Body, payload.PDFPath); err != nil {
		return fmt.Errorf("email_worker: send failed: %w", err)
	}
	log.Info().Str("to", payload.ToEmail).Msg("email_worker: document sent")
	return nil
}
