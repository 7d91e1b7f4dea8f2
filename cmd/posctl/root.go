package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"veredapos/internal/config"
	"veredapos/internal/infra"
	"veredapos/internal/model"
	"veredapos/internal/repository"
	"veredapos/internal/state"

	"github.com/jmoiron/sqlx"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var (
	stateDBPath string
	verbose     bool
)

var rootCmd = &cobra.Command{
	Use:   "posctl",
	Short: "Maintenance tool for the Vereda POS local state",
	Long: `posctl works directly on the local state database of a Vereda POS
installation: snapshot export and import, shift closing reports, ledger
verification, staff accounts and demo data.

Commands that write the state must run while the server is stopped,
otherwise the server overwrites the change on its next save.`,
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		level := zerolog.WarnLevel
		if verbose {
			level = zerolog.DebugLevel
		}
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen}).Level(level)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&stateDBPath, "db", "", "state database file (default STATE_DB_PATH)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose logging")

	rootCmd.AddCommand(snapshotCmd, reportCmd, ledgerCmd, hashPINCmd, seedCmd, userCmd, dlqCmd)
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// session is an open local state: the store plus the repository it came
// from. Commands mutate the store through the services and call save.
type session struct {
	cfg   *config.Config
	db    *sqlx.DB
	repo  repository.StateRepository
	store *state.Store
}

func openSession(ctx context.Context) (*session, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	if stateDBPath != "" {
		cfg.StateDBPath = stateDBPath
	}
	db, err := infra.NewStateDB(cfg.StateDBPath)
	if err != nil {
		return nil, err
	}
	repo := repository.NewStateRepository(db)
	snap, err := repo.Load(ctx)
	if err != nil {
		db.Close()
		return nil, err
	}
	st := model.NewState(model.DefaultSettings())
	if snap != nil {
		st = snap.State
	}
	log.Debug().Str("path", cfg.StateDBPath).Bool("fresh", snap == nil).Msg("state opened")
	return &session{cfg: cfg, db: db, repo: repo, store: state.New(st, state.WithInvoicePrefix(cfg.InvoicePrefix))}, nil
}

func (s *session) save(ctx context.Context) error {
	return s.repo.Save(ctx, &model.Snapshot{
		Version: model.SchemaVersion,
		SavedAt: time.Now().UTC(),
		State:   s.store.Current(),
	})
}

func (s *session) Close() error { return s.db.Close() }
