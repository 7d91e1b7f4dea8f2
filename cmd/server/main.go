package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"veredapos/internal/config"
	"veredapos/internal/infra"
	"veredapos/internal/model"
	"veredapos/internal/notify"
	"veredapos/internal/repository"
	"veredapos/internal/router"
	"veredapos/internal/service"
	"veredapos/internal/state"
	"veredapos/internal/worker"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}

	// dev: pretty, prod: JSON
	if cfg.Env != "production" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
	}

	stateDB, err := infra.NewStateDB(cfg.StateDBPath)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to open local state database")
	}
	defer stateDB.Close()

	repo := repository.NewStateRepository(stateDB)
	store := state.New(loadState(repo), state.WithInvoicePrefix(cfg.InvoicePrefix))
	feed := notify.NewFeed(cfg.NotificationTTL)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	persister := worker.NewPersister(store, repo, feed)
	store.OnCommit(func(*model.State) { persister.MarkDirty() })
	persisterDone := make(chan struct{})
	go func() {
		persister.Run(ctx)
		close(persisterDone)
	}()

	renderer := infra.NewRenderer()

	// Redis is optional: without it documents are rendered on demand only
	// and the public menu is built on every request.
	var (
		rdb        *redis.Client
		dispatcher *worker.Dispatcher
		jobs       service.JobDispatcher
		menuCache  service.MenuCache
	)
	if cfg.RedisURL != "" {
		rdb, err = infra.NewRedis(cfg.RedisURL)
		if err != nil {
			log.Warn().Err(err).Msg("redis unavailable, async jobs disabled")
			rdb = nil
		} else {
			defer rdb.Close()
			dispatcher = worker.NewDispatcher(rdb)
			jobs = dispatcher
			menuCache = infra.NewMenuCache(rdb, cfg.MenuCacheTTL)
		}
	}

	var (
		cloud   *gorm.DB
		cloudCB *infra.CircuitBreaker
	)
	if cfg.CloudDatabaseURL != "" {
		cloud, err = infra.NewCloudDatabase(cfg.CloudDatabaseURL)
		if err != nil {
			log.Warn().Err(err).Msg("cloud mirror unavailable, sync disabled")
			cloud = nil
		} else {
			cloudCB = infra.NewCircuitBreaker(infra.DefaultCBConfig())
		}
	}

	if dispatcher != nil {
		handlers := &worker.WorkerHandlers{
			Invoice: worker.NewInvoiceWorker(store, renderer, dispatcher, feed, cfg.DocumentStoragePath),
			Email:   worker.NewEmailWorker(infra.NewMailer(cfg)),
		}
		if cloud != nil {
			handlers.Sync = worker.NewSyncWorker(store, repository.NewCloudRepository(cloud), cloudCB, feed)
			worker.StartBackupCron(ctx, worker.BackupCronConfig{
				Source:   store,
				Jobs:     dispatcher,
				CB:       cloudCB,
				Interval: cfg.SyncInterval,
			})
		}
		worker.StartWorkerPool(ctx, rdb, handlers, cfg.WorkerPoolSize)
	}

	loc, err := cfg.Location()
	if err != nil {
		log.Fatal().Err(err).Msg("invalid timezone")
	}
	prefix := service.WithInvoicePrefix(cfg.InvoicePrefix)
	zone := service.WithLocation(loc)
	auth := service.NewAuthService(store, cfg)
	if err := auth.EnsureOwner(ctx, cfg.OwnerPIN); err != nil {
		log.Fatal().Err(err).Msg("failed to create owner account")
	}

	r := router.New(cfg, router.Deps{
		Orders:    service.NewOrderService(store, feed, jobs, prefix, zone),
		Tables:    service.NewTableService(store),
		Catalog:   service.NewCatalogService(store, feed, jobs, menuCache),
		Customers: service.NewCustomerService(store, feed, jobs),
		Reports:   service.NewReportService(store, prefix, zone),
		Settings:  service.NewSettingsService(store, feed, menuCache),
		Auth:      auth,
		Feed:      feed,
		Renderer:  renderer,
		StateDB:   stateDB,
		Redis:     rdb,
		Cloud:     cloud,
		CloudCB:   cloudCB,
	})

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info().Msgf("Vereda POS backend listening on :%d", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down server…")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("forced shutdown")
	}

	// stop workers and let the persister flush the last committed state
	cancel()
	<-persisterDone
	log.Info().Msg("server exited")
}

// loadState restores the last snapshot. A missing or unreadable snapshot
// starts an empty installation instead of refusing to boot; a snapshot from
// a newer build is fatal so it is never overwritten.
func loadState(repo repository.StateRepository) *model.State {
	snap, err := repo.Load(context.Background())
	switch {
	case errors.Is(err, repository.ErrSnapshotTooNew):
		log.Fatal().Err(err).Msg("refusing to start over a newer snapshot")
	case err != nil:
		log.Warn().Err(err).Msg("state snapshot unreadable, starting empty")
	case snap == nil:
		log.Info().Msg("no state snapshot found, starting a fresh installation")
	default:
		log.Info().Int("version", snap.Version).Time("saved_at", snap.SavedAt).Msg("state snapshot restored")
		return snap.State
	}
	return model.NewState(model.DefaultSettings())
}
