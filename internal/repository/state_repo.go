package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"veredapos/internal/model"

	"github.com/jmoiron/sqlx"
)

// ErrSnapshotTooNew is returned when the stored snapshot was written by a
// newer build. Loading it would silently drop fields, so it is refused.
var ErrSnapshotTooNew = errors.New("snapshot written by a newer version")

const stateKey = "restaurant"

// StateRepository is the local key-value store for the whole application
// snapshot.
type StateRepository interface {
	Load(ctx context.Context) (*model.Snapshot, error)
	// Save(nil) clears the stored snapshot.
	Save(ctx context.Context, snap *model.Snapshot) error
}

type stateRepo struct{ db *sqlx.DB }

func NewStateRepository(db *sqlx.DB) StateRepository { return &stateRepo{db: db} }

type stateRow struct {
	Name      string `db:"name"`
	Version   int    `db:"version"`
	Payload   string `db:"payload"`
	UpdatedAt string `db:"updated_at"`
}

// Load returns nil, nil on a fresh installation.
func (r *stateRepo) Load(ctx context.Context) (*model.Snapshot, error) {
	var row stateRow
	err := r.db.GetContext(ctx, &row,
		`SELECT name, version, payload, updated_at FROM app_state WHERE name = ?`, stateKey)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("state_repo: load: %w", err)
	}
	if row.Version > model.SchemaVersion {
		return nil, fmt.Errorf("%w: stored v%d, supported v%d", ErrSnapshotTooNew, row.Version, model.SchemaVersion)
	}

	var snap model.Snapshot
	if err := json.Unmarshal([]byte(row.Payload), &snap); err != nil {
		return nil, fmt.Errorf("state_repo: decode: %w", err)
	}
	if snap.State == nil {
		return nil, nil
	}
	return &snap, nil
}

func (r *stateRepo) Save(ctx context.Context, snap *model.Snapshot) error {
	if snap == nil || snap.State == nil {
		_, err := r.db.ExecContext(ctx, `DELETE FROM app_state WHERE name = ?`, stateKey)
		return err
	}
	payload, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("state_repo: encode: %w", err)
	}
	_, err = r.db.NamedExecContext(ctx, `
INSERT INTO app_state (name, version, payload, updated_at)
VALUES (:name, :version, :payload, :updated_at)
ON CONFLICT(name) DO UPDATE SET
    version    = excluded.version,
    payload    = excluded.payload,
    updated_at = excluded.updated_at`,
		stateRow{
			Name:      stateKey,
			Version:   snap.Version,
			Payload:   string(payload),
			UpdatedAt: snap.SavedAt.UTC().Format(time.RFC3339Nano),
		})
	if err != nil {
		return fmt.Errorf("state_repo: save: %w", err)
	}
	return nil
}
