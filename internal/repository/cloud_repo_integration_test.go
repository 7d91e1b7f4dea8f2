//go:build integration

package repository

// Run with: go test -tags integration ./internal/repository/... -v

import (
	"context"
	"testing"
	"time"

	"veredapos/internal/infra"
	"veredapos/internal/model"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcPostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
)

func newCloudRepo(t *testing.T) (CloudRepository, func(string) int64) {
	t.Helper()
	ctx := context.Background()

	pgC, err := tcPostgres.RunContainer(ctx,
		testcontainers.WithImage("postgres:15-alpine"),
		tcPostgres.WithDatabase("vereda_cloud"),
		tcPostgres.WithUsername("vereda"),
		tcPostgres.WithPassword("vereda"),
		tcPostgres.BasicWaitStrategies(),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = pgC.Terminate(ctx) })

	dsn, err := pgC.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	db, err := infra.NewCloudDatabase(dsn)
	require.NoError(t, err)
	// schema patches must be re-runnable
	require.NoError(t, infra.ApplyCloudSchema(db))

	count := func(table string) int64 {
		var n int64
		require.NoError(t, db.Table(table).Count(&n).Error)
		return n
	}
	return NewCloudRepository(db), count
}

func TestCloudRepository_UpsertsAreIdempotent(t *testing.T) {
	ctx := context.Background()
	repo, count := newCloudRepo(t)
	require.NoError(t, repo.Ping(ctx))

	at := time.Now().UTC()
	sale := model.CloudSale{
		ID: "ord-1", InvoiceNumber: "FR VER2025/1", Total: decimal.NewFromInt(5000),
		TaxTotal: decimal.NewFromInt(614), Profit: decimal.NewFromInt(2000),
		Method: "NUMERARIO", Hash: "AB", Timestamp: at, SyncedAt: at,
	}
	require.NoError(t, repo.UpsertSales(ctx, []model.CloudSale{sale}))
	sale.Method = "TPA"
	require.NoError(t, repo.UpsertSales(ctx, []model.CloudSale{sale}))
	assert.Equal(t, int64(1), count("sales_history"))

	cust := model.CloudCustomer{ID: "c1", Name: "Ana", Balance: decimal.NewFromInt(100), SyncedAt: at}
	require.NoError(t, repo.UpsertCustomers(ctx, []model.CloudCustomer{cust}))
	cust.Balance = decimal.Zero
	require.NoError(t, repo.UpsertCustomers(ctx, []model.CloudCustomer{cust}))
	assert.Equal(t, int64(1), count("customers_cloud"))

	require.NoError(t, repo.UpsertCatalog(ctx,
		[]model.CloudCategory{{ID: "k1", Name: "Bebidas", IsVisibleDigital: true, SyncedAt: at}},
		[]model.CloudDish{{ID: "d1", Name: "Cuca", Price: decimal.NewFromInt(500), CategoryID: "k1", SyncedAt: at}},
	))
	assert.Equal(t, int64(1), count("menu"))
	assert.Equal(t, int64(1), count("categories"))

	require.NoError(t, repo.LogSync(ctx, "full", 3))
	assert.Equal(t, int64(1), count("sync_logs"))
}
