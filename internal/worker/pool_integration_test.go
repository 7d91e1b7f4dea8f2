//go:build integration

package worker

import (
	"context"
	"encoding/json"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"veredapos/internal/infra"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcRedis "github.com/testcontainers/testcontainers-go/modules/redis"
)

type countingHandler struct {
	n   atomic.Int32
	err error
}

func (h *countingHandler) Process(context.Context, json.RawMessage) error {
	h.n.Add(1)
	return h.err
}

func TestWorkerPool_ProcessesAndDeadLetters(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	rdC, err := tcRedis.RunContainer(ctx, testcontainers.WithImage("redis:7-alpine"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = rdC.Terminate(context.Background()) })
	url, err := rdC.ConnectionString(ctx)
	require.NoError(t, err)
	rdb, err := infra.NewRedis(url)
	require.NoError(t, err)

	invoices := &countingHandler{}
	syncs := &countingHandler{err: errors.New("mirror down")}
	StartWorkerPool(ctx, rdb, &WorkerHandlers{Invoice: invoices, Sync: syncs}, 2)

	d := NewDispatcher(rdb)
	require.NoError(t, d.EnqueueInvoice(ctx, InvoiceJobPayload{OrderID: "ord-1"}))
	require.NoError(t, d.EnqueueSync(ctx, SyncJobPayload{Kind: SyncSale, OrderID: "ord-1"}))

	assert.Eventually(t, func() bool { return invoices.n.Load() == 1 }, 10*time.Second, 50*time.Millisecond)
	assert.Eventually(t, func() bool {
		n, err := DLQLength(ctx, rdb, QueueSync)
		return err == nil && n == 1
	}, 10*time.Second, 50*time.Millisecond)

	// replay puts the job back; the handler fails again and it returns to the DLQ
	moved, err := ReplayDLQ(ctx, rdb, QueueSync, 10)
	require.NoError(t, err)
	assert.Equal(t, 1, moved)
	assert.Eventually(t, func() bool { return syncs.n.Load() == 2 }, 10*time.Second, 50*time.Millisecond)
}
