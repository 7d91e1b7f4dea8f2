package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strconv"
	"testing"
	"time"

	"veredapos/internal/infra"
	"veredapos/internal/model"
	"veredapos/internal/repository"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// posctl runs the root command with args and returns what it printed.
func posctl(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
		rootCmd.SetArgs(nil)
	})
	err := rootCmd.ExecuteContext(context.Background())
	return out.String(), err
}

func writeSnapshot(t *testing.T, snap model.Snapshot) string {
	t.Helper()
	raw, err := json.Marshal(snap)
	require.NoError(t, err)
	path := filepath.Join(t.TempDir(), "export.json")
	require.NoError(t, os.WriteFile(path, raw, 0o644))
	return path
}

func loadStored(t *testing.T, dbPath string) *model.Snapshot {
	t.Helper()
	db, err := infra.NewStateDB(dbPath)
	require.NoError(t, err)
	defer db.Close()
	snap, err := repository.NewStateRepository(db).Load(context.Background())
	require.NoError(t, err)
	require.NotNil(t, snap)
	return snap
}

// legacyState is an export made before per-series ledgers: three invoices
// issued and no ledger recorded.
func legacyState() *model.State {
	st := model.NewState(model.DefaultSettings())
	st.Ledger = nil
	for n := 1; n <= 3; n++ {
		num := "FR VER2025/" + strconv.Itoa(n)
		hash := "HASH" + strconv.Itoa(n)
		at := time.Date(2025, 6, 14, 12, n, 0, 0, time.UTC)
		st.Orders = append(st.Orders, model.Order{
			ID:            "ord-" + strconv.Itoa(n),
			Type:          model.OrderLocal,
			Items:         []model.OrderItem{},
			Status:        model.OrderClosed,
			Timestamp:     at,
			Total:         decimal.NewFromInt(600),
			InvoiceNumber: &num,
			Hash:          &hash,
			ClosedAt:      &at,
		})
	}
	return st
}

func TestSnapshotImport_RebuildsInvoiceLedger(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "state.db")
	file := writeSnapshot(t, model.Snapshot{Version: 7, SavedAt: time.Now().UTC(), State: legacyState()})

	out, err := posctl(t, "--db", dbPath, "snapshot", "import", file)
	require.NoError(t, err, out)
	assert.Contains(t, out, "imported snapshot v7: 3 orders")

	stored := loadStored(t, dbPath)
	assert.Equal(t, model.SchemaVersion, stored.Version)
	assert.Equal(t, model.SeriesLedger{Next: 4, LastHash: "HASH3"}, stored.State.Ledger["2025"])
}

func TestSnapshotImport_HonoursLegacyInvoiceCounter(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "state.db")
	st := legacyState()
	st.LegacyInvoiceCounter = 11
	file := writeSnapshot(t, model.Snapshot{Version: 7, SavedAt: time.Now().UTC(), State: st})

	_, err := posctl(t, "--db", dbPath, "snapshot", "import", file)
	require.NoError(t, err)

	stored := loadStored(t, dbPath)
	assert.Equal(t, int64(11), stored.State.Ledger["2025"].Next)
	assert.Zero(t, stored.State.LegacyInvoiceCounter)
}

func TestSnapshot_ExportImportRoundTrip(t *testing.T) {
	dir := t.TempDir()
	source := filepath.Join(dir, "source.db")
	target := filepath.Join(dir, "target.db")
	exported := filepath.Join(dir, "roundtrip.json")

	_, err := posctl(t, "--db", source, "snapshot", "import", writeSnapshot(t, model.Snapshot{Version: model.SchemaVersion, State: legacyState()}))
	require.NoError(t, err)
	_, err = posctl(t, "--db", source, "snapshot", "export", exported)
	require.NoError(t, err)
	_, err = posctl(t, "--db", target, "snapshot", "import", exported)
	require.NoError(t, err)

	a, b := loadStored(t, source).State, loadStored(t, target).State
	assert.Equal(t, a.Ledger, b.Ledger)
	require.Len(t, b.Orders, len(a.Orders))
	for i := range a.Orders {
		assert.Equal(t, *a.Orders[i].InvoiceNumber, *b.Orders[i].InvoiceNumber)
		assert.True(t, a.Orders[i].Total.Equal(b.Orders[i].Total))
	}
}

func TestSnapshotImport_Rejections(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "state.db")

	_, err := posctl(t, "--db", dbPath, "snapshot", "import",
		writeSnapshot(t, model.Snapshot{Version: model.SchemaVersion + 1, State: legacyState()}))
	assert.ErrorContains(t, err, "newer than this build")

	_, err = posctl(t, "--db", dbPath, "snapshot", "import", writeSnapshot(t, model.Snapshot{Version: 7}))
	assert.ErrorContains(t, err, "holds no state")

	_, err = os.Stat(dbPath)
	assert.True(t, os.IsNotExist(err), "rejected imports never open the database")
}
