package asset

import (
	"context"
	"time"
)

// Repository is the corpus store consumed by analytics and the sync path.
type Repository interface {
	// ListAll returns every asset of the corpus. Order is unspecified.
	ListAll(ctx context.Context) ([]*Asset, error)
	// Upsert inserts or replaces an asset keyed by (api_source, asset_number).
	Upsert(ctx context.Context, a *Asset) (*Asset, error)
	// UpsertBatch applies Upsert to every asset in one transaction and
	// returns the number of rows written.
	UpsertBatch(ctx context.Context, assets []*Asset) (int64, error)
	// Count returns the corpus size.
	Count(ctx context.Context) (int64, error)
	// DeleteSyncedBefore removes assets whose last sync is older than cutoff
	// and returns how many rows were deleted.
	DeleteSyncedBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

//Personal.AI order the ending
