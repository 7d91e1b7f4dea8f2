package worker

// backup_cron.go
// Periodically queues a full cloud sync while the owner has auto-backup
// switched on. The breaker is consulted first so a mirror that is down does
// not fill the DLQ with one failed job per tick.

import (
	"context"
	"time"

	"veredapos/internal/infra"

	"github.com/rs/zerolog/log"
)

// SyncEnqueuer is satisfied by *Dispatcher.
type SyncEnqueuer interface {
	EnqueueSync(ctx context.Context, p SyncJobPayload) error
}

type BackupCronConfig struct {
	Source   SnapshotSource
	Jobs     SyncEnqueuer
	CB       *infra.CircuitBreaker
	Interval time.Duration
}

func StartBackupCron(ctx context.Context, cfg BackupCronConfig) {
	if cfg.Interval <= 0 {
		cfg.Interval = 15 * time.Minute
	}
	go func() {
		ticker := time.NewTicker(cfg.Interval)
		defer ticker.Stop()

		log.Info().Dur("interval", cfg.Interval).Msg("backup_cron: started")
		for {
			select {
			case <-ctx.Done():
				log.Info().Msg("backup_cron: shutting down")
				return
			case <-ticker.C:
				backupTick(ctx, cfg)
			}
		}
	}()
}

// backupTick reports whether a job was queued.
func backupTick(ctx context.Context, cfg BackupCronConfig) bool {
	if !cfg.Source.Current().Settings.AutoBackup {
		return false
	}
	if cfg.CB != nil && cfg.CB.State() == infra.CBOpen {
		log.Debug().Msg("backup_cron: circuit breaker is open, skipping tick")
		return false
	}
	if err := cfg.Jobs.EnqueueSync(ctx, SyncJobPayload{Kind: SyncFull}); err != nil {
		log.Error().Err(err).Msg("backup_cron: enqueue failed")
		return false
	}
	return true
}
