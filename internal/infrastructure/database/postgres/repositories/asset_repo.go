// Package repositories provides PostgreSQL-backed implementations of the
// domain repository interfaces.
package repositories

import (
	"context"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/turtacn/KeyIP-Landscape/internal/domain/asset"
	"github.com/turtacn/KeyIP-Landscape/internal/infrastructure/database/postgres"
	"github.com/turtacn/KeyIP-Landscape/internal/infrastructure/monitoring/logging"
	appErrors "github.com/turtacn/KeyIP-Landscape/pkg/errors"
)

// DB is the subset of *pgxpool.Pool used by the repository.
type DB interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Begin(ctx context.Context) (pgx.Tx, error)
}

// querier is implemented by both DB and pgx.Tx.
type querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

const assetColumns = `type, asset_number, title, assignee, inventor, jurisdiction,
	filing_date, publication_date, status, asset_class, details, api_source, last_updated`

const selectAssetSQL = `SELECT id, ` + assetColumns + `, synced_at FROM ip_assets`

const upsertAssignments = `
	type             = EXCLUDED.type,
	title            = EXCLUDED.title,
	assignee         = EXCLUDED.assignee,
	inventor         = EXCLUDED.inventor,
	jurisdiction     = EXCLUDED.jurisdiction,
	filing_date      = EXCLUDED.filing_date,
	publication_date = EXCLUDED.publication_date,
	status           = EXCLUDED.status,
	asset_class      = EXCLUDED.asset_class,
	details          = EXCLUDED.details,
	last_updated     = EXCLUDED.last_updated,
	synced_at        = NOW()`

// stageColumns is the COPY column order of the batch staging table.
var stageColumns = []string{
	"ord", "type", "asset_number", "title", "assignee", "inventor", "jurisdiction",
	"filing_date", "publication_date", "status", "asset_class", "details", "api_source", "last_updated",
}

// ─────────────────────────────────────────────────────────────────────────────
// AssetRepository
// ─────────────────────────────────────────────────────────────────────────────

// AssetRepository stores the asset corpus in the ip_assets table.
type AssetRepository struct {
	db     DB
	logger logging.Logger
}

var _ asset.Repository = (*AssetRepository)(nil)

// NewAssetRepository returns a repository over db, normally a *pgxpool.Pool.
func NewAssetRepository(db DB, logger logging.Logger) *AssetRepository {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &AssetRepository{db: db, logger: logger.Named("asset_repo")}
}

// conn returns the transaction of an enclosing postgres.WithTransaction, if any.
func (r *AssetRepository) conn(ctx context.Context) querier {
	if tx, ok := postgres.TxFromContext(ctx); ok {
		return tx
	}
	return r.db
}

// ListAll returns the whole corpus ordered by id.
func (r *AssetRepository) ListAll(ctx context.Context) ([]*asset.Asset, error) {
	rows, err := r.conn(ctx).Query(ctx, selectAssetSQL+` ORDER BY id`)
	if err != nil {
		r.logger.Error("list assets failed", logging.Err(err))
		return nil, appErrors.Wrap(err, appErrors.ErrCodeCorpusLoadFailed, "failed to load asset corpus")
	}
	defer rows.Close()

	var out []*asset.Asset
	for rows.Next() {
		a, err := scanAsset(rows)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrCodeCorpusLoadFailed, "failed to scan asset")
		}
		out = append(out, a)
	}
	if err := rows.Err(); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrCodeCorpusLoadFailed, "failed to iterate assets")
	}
	return out, nil
}

// Upsert inserts a or replaces the row with the same (api_source, asset_number).
// The returned copy carries the stored id and sync time.
func (r *AssetRepository) Upsert(ctx context.Context, a *asset.Asset) (*asset.Asset, error) {
	if err := validateAsset(a); err != nil {
		return nil, err
	}
	v := normalize(a)

	var id int64
	var syncedAt time.Time
	err := r.conn(ctx).QueryRow(ctx, `
		INSERT INTO ip_assets (`+assetColumns+`)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13)
		ON CONFLICT (api_source, asset_number) DO UPDATE SET`+upsertAssignments+`
		RETURNING id, synced_at`,
		v.Type, v.AssetNumber, v.Title, v.Assignee, v.Inventor, v.Jurisdiction,
		v.FilingDate, v.PublicationDate, v.Status, v.ClassificationCodes, v.Details, v.APISource, v.LastUpdated,
	).Scan(&id, &syncedAt)
	if err != nil {
		r.logger.Error("upsert asset failed",
			logging.String("asset_number", v.AssetNumber),
			logging.String("source", v.APISource),
			logging.Err(err))
		return nil, appErrors.Wrap(err, appErrors.ErrCodeAssetSyncFailed, "failed to upsert asset").
			WithDetail(v.AssetNumber)
	}

	v.ID = id
	v.SyncedAt = &syncedAt
	return v, nil
}

// UpsertBatch streams assets into a staging table with COPY and merges them
// in one statement. Later duplicates within the batch win.
func (r *AssetRepository) UpsertBatch(ctx context.Context, assets []*asset.Asset) (int64, error) {
	if len(assets) == 0 {
		return 0, nil
	}
	rows := make([][]any, 0, len(assets))
	for i, a := range assets {
		if err := validateAsset(a); err != nil {
			return 0, err
		}
		v := normalize(a)
		rows = append(rows, []any{
			i, v.Type, v.AssetNumber, v.Title, v.Assignee, v.Inventor, v.Jurisdiction,
			v.FilingDate, v.PublicationDate, v.Status, v.ClassificationCodes, v.Details, v.APISource, v.LastUpdated,
		})
	}

	var affected int64
	err := postgres.WithTransaction(ctx, r.db, func(tx pgx.Tx, txCtx context.Context) error {
		if _, err := tx.Exec(txCtx, `
			CREATE TEMP TABLE ip_assets_stage (
				ord              INT,
				type             VARCHAR(32),
				asset_number     VARCHAR(128),
				title            TEXT,
				assignee         TEXT,
				inventor         TEXT,
				jurisdiction     VARCHAR(64),
				filing_date      DATE,
				publication_date DATE,
				status           VARCHAR(64),
				asset_class      TEXT,
				details          TEXT,
				api_source       VARCHAR(64),
				last_updated     TIMESTAMPTZ
			) ON COMMIT DROP`); err != nil {
			return err
		}

		if _, err := tx.CopyFrom(txCtx, pgx.Identifier{"ip_assets_stage"}, stageColumns, pgx.CopyFromRows(rows)); err != nil {
			return err
		}

		tag, err := tx.Exec(txCtx, `
			INSERT INTO ip_assets (`+assetColumns+`)
			SELECT DISTINCT ON (api_source, asset_number) `+assetColumns+`
			FROM ip_assets_stage
			ORDER BY api_source, asset_number, ord DESC
			ON CONFLICT (api_source, asset_number) DO UPDATE SET`+upsertAssignments)
		if err != nil {
			return err
		}
		affected = tag.RowsAffected()
		return nil
	})
	if err != nil {
		r.logger.Error("batch upsert failed", logging.Int("size", len(assets)), logging.Err(err))
		return 0, appErrors.Wrap(err, appErrors.ErrCodeAssetSyncFailed, "failed to upsert asset batch")
	}
	return affected, nil
}

// Count returns the number of stored assets.
func (r *AssetRepository) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := r.conn(ctx).QueryRow(ctx, `SELECT COUNT(*) FROM ip_assets`).Scan(&n); err != nil {
		return 0, appErrors.Wrap(err, appErrors.ErrCodeDatabaseError, "failed to count assets")
	}
	return n, nil
}

// DeleteSyncedBefore removes assets whose last sync precedes cutoff.
func (r *AssetRepository) DeleteSyncedBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	tag, err := r.conn(ctx).Exec(ctx, `DELETE FROM ip_assets WHERE synced_at < $1`, cutoff)
	if err != nil {
		return 0, appErrors.Wrap(err, appErrors.ErrCodeDatabaseError, "failed to delete stale assets")
	}
	return tag.RowsAffected(), nil
}

// ─────────────────────────────────────────────────────────────────────────────
// helpers
// ─────────────────────────────────────────────────────────────────────────────

func scanAsset(row pgx.Row) (*asset.Asset, error) {
	a := &asset.Asset{}
	var syncedAt time.Time
	err := row.Scan(
		&a.ID, &a.Type, &a.AssetNumber, &a.Title, &a.Assignee, &a.Inventor, &a.Jurisdiction,
		&a.FilingDate, &a.PublicationDate, &a.Status, &a.ClassificationCodes, &a.Details,
		&a.APISource, &a.LastUpdated, &syncedAt,
	)
	if err != nil {
		return nil, err
	}
	if !syncedAt.IsZero() {
		a.SyncedAt = &syncedAt
	}
	return a, nil
}

func validateAsset(a *asset.Asset) error {
	if a == nil {
		return appErrors.New(appErrors.ErrCodeAssetInvalid, "asset is nil")
	}
	if strings.TrimSpace(a.AssetNumber) == "" {
		return appErrors.New(appErrors.ErrCodeAssetInvalid, "asset number is required")
	}
	return nil
}

// normalize returns a trimmed copy with the type defaulted to PATENT.
func normalize(a *asset.Asset) *asset.Asset {
	v := *a
	v.AssetNumber = strings.TrimSpace(v.AssetNumber)
	v.APISource = strings.TrimSpace(v.APISource)
	v.Type = strings.ToUpper(strings.TrimSpace(v.Type))
	if v.Type == "" {
		v.Type = asset.TypePatent
	}
	return &v
}

//Personal.AI order the ending
