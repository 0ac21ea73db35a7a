//go:build integration

package repositories_test

import (
	"context"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/turtacn/KeyIP-Landscape/internal/config"
	"github.com/turtacn/KeyIP-Landscape/internal/domain/asset"
	"github.com/turtacn/KeyIP-Landscape/internal/infrastructure/database/postgres"
	"github.com/turtacn/KeyIP-Landscape/internal/infrastructure/database/postgres/repositories"
	"github.com/turtacn/KeyIP-Landscape/internal/infrastructure/monitoring/logging"
	appErrors "github.com/turtacn/KeyIP-Landscape/pkg/errors"
)

// startPostgres launches a PostgreSQL 16 container, applies the migrations and
// returns a connected pool.
func startPostgres(t *testing.T) *pgxpool.Pool {
	t.Helper()
	ctx := context.Background()

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "postgres:16-alpine",
			ExposedPorts: []string{"5432/tcp"},
			Env: map[string]string{
				"POSTGRES_USER":     "test",
				"POSTGRES_PASSWORD": "test",
				"POSTGRES_DB":       "keyip_test",
			},
			WaitingFor: wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).WithStartupTimeout(60 * time.Second),
		},
		Started: true,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = container.Terminate(ctx) })

	host, err := container.Host(ctx)
	require.NoError(t, err)
	port, err := container.MappedPort(ctx, "5432")
	require.NoError(t, err)

	cfg := config.DatabaseConfig{
		Host:          host,
		Port:          port.Int(),
		User:          "test",
		Password:      "test",
		DBName:        "keyip_test",
		SSLMode:       "disable",
		MaxConns:      4,
		MigrationPath: "file://../../../../../migrations",
	}
	require.NoError(t, postgres.MigrateUp(cfg))

	pool, err := postgres.NewPool(ctx, cfg, logging.NewNopLogger())
	require.NoError(t, err)
	t.Cleanup(pool.Close)
	return pool
}

func date(y int, m time.Month, d int) *time.Time {
	t := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	return &t
}

func TestAssetRepository_Integration(t *testing.T) {
	pool := startPostgres(t)
	repo := repositories.NewAssetRepository(pool, logging.NewNopLogger())
	ctx := context.Background()

	t.Run("Upsert inserts then updates", func(t *testing.T) {
		first, err := repo.Upsert(ctx, &asset.Asset{
			AssetNumber: "US100", APISource: "uspto", Title: "v1",
			Assignee: "Acme", ClassificationCodes: "G06N", FilingDate: date(2020, 1, 15),
		})
		require.NoError(t, err)
		assert.NotZero(t, first.ID)
		require.NotNil(t, first.SyncedAt)

		second, err := repo.Upsert(ctx, &asset.Asset{AssetNumber: "US100", APISource: "uspto", Title: "v2"})
		require.NoError(t, err)
		assert.Equal(t, first.ID, second.ID)

		n, err := repo.Count(ctx)
		require.NoError(t, err)
		assert.Equal(t, int64(1), n)
	})

	t.Run("Upsert rejects empty asset number", func(t *testing.T) {
		_, err := repo.Upsert(ctx, &asset.Asset{APISource: "uspto"})
		assert.True(t, appErrors.IsCode(err, appErrors.ErrCodeAssetInvalid))
	})

	t.Run("UpsertBatch merges and keeps the last duplicate", func(t *testing.T) {
		n, err := repo.UpsertBatch(ctx, []*asset.Asset{
			{AssetNumber: "EP1", APISource: "epo", Title: "old", Assignee: "Beta"},
			{AssetNumber: "EP2", APISource: "epo", Title: "two", FilingDate: date(2018, 6, 1)},
			{AssetNumber: "EP1", APISource: "epo", Title: "new", Assignee: "Beta"},
			{AssetNumber: "US100", APISource: "uspto", Title: "v3"},
		})
		require.NoError(t, err)
		assert.Equal(t, int64(3), n)

		all, err := repo.ListAll(ctx)
		require.NoError(t, err)
		require.Len(t, all, 3)

		byNumber := map[string]*asset.Asset{}
		for _, a := range all {
			byNumber[a.AssetNumber] = a
		}
		assert.Equal(t, "new", byNumber["EP1"].Title)
		assert.Equal(t, "v3", byNumber["US100"].Title)
		require.NotNil(t, byNumber["EP2"].FilingDate)
		assert.Equal(t, 2018, byNumber["EP2"].FilingDate.Year())
		assert.Nil(t, byNumber["EP1"].FilingDate)
	})

	t.Run("DeleteSyncedBefore purges stale rows", func(t *testing.T) {
		_, err := pool.Exec(ctx, `UPDATE ip_assets SET synced_at = NOW() - INTERVAL '30 days' WHERE asset_number = 'EP2'`)
		require.NoError(t, err)

		deleted, err := repo.DeleteSyncedBefore(ctx, time.Now().Add(-24*time.Hour))
		require.NoError(t, err)
		assert.Equal(t, int64(1), deleted)

		n, err := repo.Count(ctx)
		require.NoError(t, err)
		assert.Equal(t, int64(2), n)
	})

	t.Run("Upsert joins an enclosing transaction", func(t *testing.T) {
		err := postgres.WithTransaction(ctx, pool, func(tx pgx.Tx, txCtx context.Context) error {
			if _, err := repo.Upsert(txCtx, &asset.Asset{AssetNumber: "TX1", APISource: "uspto"}); err != nil {
				return err
			}
			return context.Canceled
		})
		assert.ErrorIs(t, err, context.Canceled)

		n, err := repo.Count(ctx)
		require.NoError(t, err)
		assert.Equal(t, int64(2), n)
	})
}

//Personal.AI order the ending
