package worker

import (
	"context"
	"time"

	"veredapos/internal/model"
	"veredapos/internal/notify"

	"github.com/rs/zerolog/log"
)

// SnapshotSource exposes the latest committed state. *state.Store satisfies it.
type SnapshotSource interface {
	Current() *model.State
}

// SnapshotSaver is the persistence side of the local state store.
type SnapshotSaver interface {
	Save(ctx context.Context, snap *model.Snapshot) error
}

// Persister writes the latest committed state to the local store in the
// background. Bursts of commits collapse into one save, and the state is
// always read at save time, so an older snapshot can never overwrite a newer
// one.
type Persister struct {
	src      SnapshotSource
	repo     SnapshotSaver
	notifier notify.Notifier
	dirty    chan struct{}
	saved    chan struct{} // signalled after each save attempt; nil outside tests
}

func NewPersister(src SnapshotSource, repo SnapshotSaver, n notify.Notifier) *Persister {
	return &Persister{src: src, repo: repo, notifier: n, dirty: make(chan struct{}, 1)}
}

// MarkDirty schedules a save. It never blocks; use it as a commit hook.
func (p *Persister) MarkDirty() {
	select {
	case p.dirty <- struct{}{}:
	default:
	}
}

// Run saves on every dirty signal until ctx ends, then performs a final save
// so nothing committed before shutdown is lost.
func (p *Persister) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			flushCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			p.SaveNow(flushCtx)
			cancel()
			return
		case <-p.dirty:
			p.SaveNow(ctx)
		}
	}
}

// SaveNow persists the current state synchronously. Failures are reported,
// never returned: losing a save must not stop the till.
func (p *Persister) SaveNow(ctx context.Context) {
	defer func() {
		if p.saved != nil {
			p.saved <- struct{}{}
		}
	}()

	snap := &model.Snapshot{
		Version: model.SchemaVersion,
		SavedAt: time.Now().UTC(),
		State:   p.src.Current(),
	}
	if err := p.repo.Save(ctx, snap); err != nil {
		log.Error().Err(err).Msg("persister: failed to save state snapshot")
		p.notifier.Notify(notify.Error, "Falha ao gravar os dados localmente")
	}
}
