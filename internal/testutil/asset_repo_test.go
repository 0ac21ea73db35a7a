package testutil_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/KeyIP-Landscape/internal/domain/asset"
	"github.com/turtacn/KeyIP-Landscape/internal/testutil"
)

func TestStubAssetRepo_UpsertReplacesBySourceAndNumber(t *testing.T) {
	ctx := context.Background()
	repo := testutil.NewStubAssetRepo()

	n, err := repo.UpsertBatch(ctx, []*asset.Asset{
		{APISource: "uspto", AssetNumber: "US-1", Title: "old"},
		{APISource: "epo", AssetNumber: "US-1", Title: "other source"},
	})
	require.NoError(t, err)
	assert.EqualValues(t, 2, n)

	_, err = repo.Upsert(ctx, &asset.Asset{APISource: "uspto", AssetNumber: "US-1", Title: "new"})
	require.NoError(t, err)

	all, err := repo.ListAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "new", all[0].Title)
	assert.Equal(t, 1, repo.ListCalls())
}

func TestStubAssetRepo_DeleteSyncedBefore(t *testing.T) {
	old := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	fresh := old.AddDate(0, 1, 0)
	repo := testutil.NewStubAssetRepo(
		&asset.Asset{ID: 1, SyncedAt: &old},
		&asset.Asset{ID: 2, SyncedAt: &fresh},
		&asset.Asset{ID: 3},
	)

	n, err := repo.DeleteSyncedBefore(context.Background(), old.AddDate(0, 0, 1))
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)

	count, _ := repo.Count(context.Background())
	assert.EqualValues(t, 2, count)
}

func TestStubAssetRepo_Err(t *testing.T) {
	repo := &testutil.StubAssetRepo{Err: errors.New("down")}
	_, err := repo.ListAll(context.Background())
	assert.EqualError(t, err, "down")
	_, err = repo.UpsertBatch(context.Background(), nil)
	assert.Error(t, err)
}

//Personal.AI order the ending
