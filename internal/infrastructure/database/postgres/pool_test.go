package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/KeyIP-Landscape/internal/config"
	pkgerrors "github.com/turtacn/KeyIP-Landscape/pkg/errors"
)

func TestConfigurePool_AppliesPositiveLimits(t *testing.T) {
	poolCfg, err := pgxpool.ParseConfig(BuildDSN(testDBConfig()))
	require.NoError(t, err)

	configurePool(poolCfg, config.DatabaseConfig{
		MaxConns:        12,
		MinConns:        3,
		ConnMaxLifetime: time.Hour,
		ConnMaxIdleTime: 2 * time.Minute,
	})

	assert.Equal(t, int32(12), poolCfg.MaxConns)
	assert.Equal(t, int32(3), poolCfg.MinConns)
	assert.Equal(t, time.Hour, poolCfg.MaxConnLifetime)
	assert.Equal(t, 2*time.Minute, poolCfg.MaxConnIdleTime)
}

func TestConfigurePool_KeepsDefaultsForZeroValues(t *testing.T) {
	poolCfg, err := pgxpool.ParseConfig(BuildDSN(testDBConfig()))
	require.NoError(t, err)
	before := *poolCfg

	configurePool(poolCfg, config.DatabaseConfig{})

	assert.Equal(t, before.MaxConns, poolCfg.MaxConns)
	assert.Equal(t, before.MinConns, poolCfg.MinConns)
	assert.Equal(t, before.MaxConnLifetime, poolCfg.MaxConnLifetime)
}

func TestParseConfig_CarriesStatementTimeout(t *testing.T) {
	cfg := testDBConfig()
	cfg.StatementTimeout = 10 * time.Second
	poolCfg, err := pgxpool.ParseConfig(BuildDSN(cfg))
	require.NoError(t, err)
	assert.Equal(t, "10000", poolCfg.ConnConfig.RuntimeParams["statement_timeout"])
}

// ─────────────────────────────────────────────────────────────────────────────
// WithTransaction
// ─────────────────────────────────────────────────────────────────────────────

// fakeTx records transaction outcomes. The embedded interface is nil; only
// the overridden methods may be called.
type fakeTx struct {
	pgx.Tx
	parent     *fakeTx
	committed  bool
	rolledBack bool
	commitErr  error
	children   []*fakeTx
}

func (f *fakeTx) Begin(context.Context) (pgx.Tx, error) {
	child := &fakeTx{parent: f}
	f.children = append(f.children, child)
	return child, nil
}

func (f *fakeTx) Commit(context.Context) error {
	f.committed = true
	return f.commitErr
}

func (f *fakeTx) Rollback(context.Context) error {
	f.rolledBack = true
	return nil
}

type fakeBeginner struct {
	tx  *fakeTx
	err error
}

func (b *fakeBeginner) Begin(context.Context) (pgx.Tx, error) {
	if b.err != nil {
		return nil, b.err
	}
	return b.tx, nil
}

func TestWithTransaction_Commit(t *testing.T) {
	b := &fakeBeginner{tx: &fakeTx{}}
	var seen pgx.Tx

	err := WithTransaction(context.Background(), b, func(tx pgx.Tx, txCtx context.Context) error {
		seen = tx
		got, ok := TxFromContext(txCtx)
		assert.True(t, ok)
		assert.Same(t, tx, got)
		return nil
	})

	require.NoError(t, err)
	assert.Same(t, b.tx, seen)
	assert.True(t, b.tx.committed)
	assert.False(t, b.tx.rolledBack)
}

func TestWithTransaction_RollbackOnError(t *testing.T) {
	b := &fakeBeginner{tx: &fakeTx{}}
	boom := errors.New("boom")

	err := WithTransaction(context.Background(), b, func(pgx.Tx, context.Context) error { return boom })

	assert.ErrorIs(t, err, boom)
	assert.True(t, b.tx.rolledBack)
	assert.False(t, b.tx.committed)
}

func TestWithTransaction_RollbackAndRepanic(t *testing.T) {
	b := &fakeBeginner{tx: &fakeTx{}}

	assert.PanicsWithValue(t, "kaboom", func() {
		_ = WithTransaction(context.Background(), b, func(pgx.Tx, context.Context) error { panic("kaboom") })
	})
	assert.True(t, b.tx.rolledBack)
}

func TestWithTransaction_BeginFailure(t *testing.T) {
	b := &fakeBeginner{err: errors.New("pool exhausted")}
	called := false

	err := WithTransaction(context.Background(), b, func(pgx.Tx, context.Context) error {
		called = true
		return nil
	})

	assert.False(t, called)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.ErrCodeDatabaseError))
}

func TestWithTransaction_CommitFailure(t *testing.T) {
	b := &fakeBeginner{tx: &fakeTx{commitErr: errors.New("serialization failure")}}

	err := WithTransaction(context.Background(), b, func(pgx.Tx, context.Context) error { return nil })

	assert.True(t, pkgerrors.IsCode(err, pkgerrors.ErrCodeDatabaseError))
}

func TestWithTransaction_NestedUsesSavepoint(t *testing.T) {
	outer := &fakeTx{}
	b := &fakeBeginner{tx: outer}

	err := WithTransaction(context.Background(), b, func(_ pgx.Tx, txCtx context.Context) error {
		return WithTransaction(txCtx, b, func(inner pgx.Tx, _ context.Context) error {
			assert.NotSame(t, outer, inner)
			return nil
		})
	})

	require.NoError(t, err)
	require.Len(t, outer.children, 1)
	assert.True(t, outer.children[0].committed)
	assert.True(t, outer.committed)
}

//Personal.AI order the ending
