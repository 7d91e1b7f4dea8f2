package worker

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const (
	QueueInvoice = "jobs:invoice"
	QueueSync    = "jobs:sync"
	QueueEmail   = "jobs:email"
)

// Job is the generic envelope for all async tasks.
type Job struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// InvoiceJobPayload asks for the invoice document of a closed order.
type InvoiceJobPayload struct {
	OrderID string `json:"order_id"`
}

type SyncKind string

const (
	SyncSale     SyncKind = "sale"
	SyncCustomer SyncKind = "customer"
	SyncCatalog  SyncKind = "catalog"
	SyncFull     SyncKind = "full"
)

// SyncJobPayload describes what to mirror to the cloud database.
type SyncJobPayload struct {
	Kind       SyncKind `json:"kind"`
	OrderID    string   `json:"order_id,omitempty"`
	CustomerID string   `json:"customer_id,omitempty"`
}

// Dispatcher enqueues async jobs into Redis lists.
// The worker pool dequeues them via BRPOP.
type Dispatcher struct {
	rdb *redis.Client
}

func NewDispatcher(rdb *redis.Client) *Dispatcher {
	return &Dispatcher{rdb: rdb}
}

func (d *Dispatcher) EnqueueInvoice(ctx context.Context, p InvoiceJobPayload) error {
	return d.enqueue(ctx, QueueInvoice, "invoice", p)
}

func (d *Dispatcher) EnqueueSync(ctx context.Context, p SyncJobPayload) error {
	return d.enqueue(ctx, QueueSync, "sync", p)
}

func (d *Dispatcher) EnqueueEmail(ctx context.Context, p EmailJobPayload) error {
	return d.enqueue(ctx, QueueEmail, "email", p)
}

func (d *Dispatcher) enqueue(ctx context.Context, queue, jobType string, payload any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	encoded, err := json.Marshal(Job{Type: jobType, Payload: data})
	if err != nil {
		return err
	}
	return d.rdb.LPush(ctx, queue, encoded).Err()
}

// JobHandler processes one payload. A returned error sends the job to the DLQ.
type JobHandler interface {
	Process(ctx context.Context, raw json.RawMessage) error
}

// WorkerHandlers routes each queue to its handler. Nil handlers drop jobs.
type WorkerHandlers struct {
	Invoice JobHandler
	Sync    JobHandler
	Email   JobHandler
}

func (h *WorkerHandlers) forQueue(queue string) JobHandler {
	switch queue {
	case QueueInvoice:
		return h.Invoice
	case QueueSync:
		return h.Sync
	case QueueEmail:
		return h.Email
	}
	return nil
}

// StartWorkerPool launches numWorkers goroutines consuming every queue.
// Each goroutine blocks on BRPOP, so idle workers cost nothing.
func StartWorkerPool(ctx context.Context, rdb *redis.Client, handlers *WorkerHandlers, numWorkers int) {
	for i := 0; i < numWorkers; i++ {
		go runWorker(ctx, rdb, handlers, i)
	}
	log.Info().Msgf("worker pool started with %d workers", numWorkers)
}

func runWorker(ctx context.Context, rdb *redis.Client, handlers *WorkerHandlers, id int) {
	queues := []string{QueueInvoice, QueueSync, QueueEmail}
	for {
		select {
		case <-ctx.Done():
			log.Info().Msgf("worker %d shutting down", id)
			return
		default:
			// waits up to 5s then loops to check ctx
			result, err := rdb.BRPop(ctx, 5*time.Second, queues...).Result()
			if err != nil || len(result) < 2 {
				continue
			}
			processJob(ctx, rdb, handlers, result[0], result[1])
		}
	}
}

func processJob(ctx context.Context, rdb *redis.Client, handlers *WorkerHandlers, queue, raw string) {
	var job Job
	if err := json.Unmarshal([]byte(raw), &job); err != nil {
		log.Error().Str("queue", queue).Err(err).Msg("failed to unmarshal job")
		return
	}
	h := handlers.forQueue(queue)
	if h == nil {
		log.Warn().Str("queue", queue).Str("type", job.Type).Msg("no handler for queue, job dropped")
		return
	}

	start := time.Now()
	if err := h.Process(ctx, job.Payload); err != nil {
		log.Error().Err(err).Str("queue", queue).Str("type", job.Type).Msg("job failed")
		SendToDLQ(ctx, rdb, queue, job.Type, job.Payload, err.Error(), 1)
		return
	}
	log.Debug().Str("queue", queue).Str("type", job.Type).Dur("took", time.Since(start)).Msg("job done")
}
