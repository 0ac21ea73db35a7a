// Package testutil provides shared fakes for KeyIP-Landscape tests.
package testutil

import (
	"context"
	"sync"
	"time"

	"github.com/turtacn/KeyIP-Landscape/internal/domain/asset"
)

// StubAssetRepo is an in-memory asset.Repository. Err, when set, fails every
// call. Upserts replace assets by (APISource, AssetNumber).
type StubAssetRepo struct {
	mu     sync.Mutex
	Assets []*asset.Asset
	Err    error
	calls  int
}

var _ asset.Repository = (*StubAssetRepo)(nil)

// NewStubAssetRepo returns a repository serving assets.
func NewStubAssetRepo(assets ...*asset.Asset) *StubAssetRepo {
	return &StubAssetRepo{Assets: assets}
}

// ListCalls reports how often the corpus was loaded.
func (r *StubAssetRepo) ListCalls() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.calls
}

func (r *StubAssetRepo) ListAll(context.Context) ([]*asset.Asset, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls++
	if r.Err != nil {
		return nil, r.Err
	}
	out := make([]*asset.Asset, len(r.Assets))
	copy(out, r.Assets)
	return out, nil
}

func (r *StubAssetRepo) Upsert(_ context.Context, a *asset.Asset) (*asset.Asset, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return nil, r.Err
	}
	r.upsert(a)
	return a, nil
}

func (r *StubAssetRepo) UpsertBatch(_ context.Context, assets []*asset.Asset) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return 0, r.Err
	}
	for _, a := range assets {
		r.upsert(a)
	}
	return int64(len(assets)), nil
}

func (r *StubAssetRepo) upsert(a *asset.Asset) {
	for i, cur := range r.Assets {
		if cur.APISource == a.APISource && cur.AssetNumber == a.AssetNumber {
			r.Assets[i] = a
			return
		}
	}
	if a.ID == 0 {
		a.ID = int64(len(r.Assets) + 1)
	}
	r.Assets = append(r.Assets, a)
}

func (r *StubAssetRepo) Count(context.Context) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return int64(len(r.Assets)), r.Err
}

// DeleteSyncedBefore drops assets whose SyncedAt is before cutoff. Assets
// without SyncedAt are kept.
func (r *StubAssetRepo) DeleteSyncedBefore(_ context.Context, cutoff time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return 0, r.Err
	}
	kept := r.Assets[:0]
	var n int64
	for _, a := range r.Assets {
		if a.SyncedAt != nil && a.SyncedAt.Before(cutoff) {
			n++
			continue
		}
		kept = append(kept, a)
	}
	r.Assets = kept
	return n, nil
}

// ----------------------------------------------------------------------------
// Fixtures
// ----------------------------------------------------------------------------

// Date returns midnight UTC of the given day.
func Date(y int, m time.Month, d int) *time.Time {
	t := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	return &t
}

// SampleCorpus is a small mixed corpus: two Acme patents sharing the AI
// category, one of them also wireless, and an old trademark with no
// jurisdiction.
func SampleCorpus() []*asset.Asset {
	return []*asset.Asset{
		{ID: 1, Type: "PATENT", Title: "Neural accelerator", ClassificationCodes: "G06N", Assignee: "Acme", Inventor: "Lee", FilingDate: Date(2023, 1, 1), Status: "ACTIVE", Jurisdiction: "US"},
		{ID: 2, Type: "PATENT", Title: "Beamforming model", ClassificationCodes: "G06N,H04W", Assignee: "Acme", Inventor: "Kim", FilingDate: Date(2024, 1, 1), Status: "PENDING", Jurisdiction: "EP"},
		{ID: 3, Type: "TRADEMARK", Title: "RoboMark", ClassificationCodes: "ROBOT", Assignee: "Beta", Inventor: "Lee", FilingDate: Date(2004, 9, 1), Status: "REGISTERED"},
	}
}

//Personal.AI order the ending
