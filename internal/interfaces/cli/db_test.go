package cli

import (
	"encoding/json"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/KeyIP-Landscape/internal/config"
	"github.com/turtacn/KeyIP-Landscape/internal/infrastructure/database/postgres"
)

type mockMigrator struct{ mock.Mock }

func (m *mockMigrator) Up() error            { return m.Called().Error(0) }
func (m *mockMigrator) Down(steps int) error { return m.Called(steps).Error(0) }
func (m *mockMigrator) Force(version int) error {
	return m.Called(version).Error(0)
}
func (m *mockMigrator) Status() (postgres.MigrationState, error) {
	args := m.Called()
	return args.Get(0).(postgres.MigrationState), args.Error(1)
}

func migratorDeps(m Migrator, gotCfg *config.DatabaseConfig) Dependencies {
	deps := testDeps()
	deps.NewMigrator = func(cfg config.DatabaseConfig) Migrator {
		if gotCfg != nil {
			*gotCfg = cfg
		}
		return m
	}
	return deps
}

func TestMigrateUp(t *testing.T) {
	m := &mockMigrator{}
	m.On("Up").Return(nil).Once()
	var got config.DatabaseConfig

	out, err := execute(t, migratorDeps(m, &got), "", "db", "migrate", "up")
	require.NoError(t, err)
	assert.Contains(t, out, "OK: schema is up to date")
	assert.Equal(t, config.DefaultDBMigrationPath, got.MigrationPath)
	m.AssertExpectations(t)
}

func TestMigrateUp_Error(t *testing.T) {
	m := &mockMigrator{}
	m.On("Up").Return(fmt.Errorf("dirty database version 3")).Once()

	_, err := execute(t, migratorDeps(m, nil), "", "db", "migrate", "up")
	assert.EqualError(t, err, "dirty database version 3")
}

func TestMigrateDown(t *testing.T) {
	m := &mockMigrator{}
	m.On("Down", 2).Return(nil).Once()

	out, err := execute(t, migratorDeps(m, nil), "", "db", "migrate", "down", "--steps", "2")
	require.NoError(t, err)
	assert.Contains(t, out, "rolled back 2 migration(s)")
	m.AssertExpectations(t)
}

func TestMigrateDown_InvalidSteps(t *testing.T) {
	m := &mockMigrator{}
	loaded := false
	deps := migratorDeps(m, nil)
	deps.LoadConfig = func(string) (*config.Config, error) {
		loaded = true
		return testConfig(), nil
	}

	_, err := execute(t, deps, "", "db", "migrate", "down", "--steps", "0")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--steps must be at least 1")
	assert.False(t, loaded)
	m.AssertNotCalled(t, "Down", mock.Anything)
}

func TestMigrateStatus(t *testing.T) {
	t.Run("text", func(t *testing.T) {
		m := &mockMigrator{}
		m.On("Status").Return(postgres.MigrationState{}, nil)

		out, err := execute(t, migratorDeps(m, nil), "", "db", "migrate", "status")
		require.NoError(t, err)
		assert.Regexp(t, `Version:\s+none`, out)
		assert.Regexp(t, `State:\s+clean`, out)
	})

	t.Run("json", func(t *testing.T) {
		m := &mockMigrator{}
		m.On("Status").Return(postgres.MigrationState{Version: 3, Dirty: true}, nil)

		out, err := execute(t, migratorDeps(m, nil), "", "-o", "json", "db", "migrate", "status")
		require.NoError(t, err)
		var got migrationStatus
		require.NoError(t, json.Unmarshal([]byte(out), &got))
		assert.Equal(t, migrationStatus{Version: 3, Dirty: true}, got)
	})
}

func TestMigrateForce(t *testing.T) {
	m := &mockMigrator{}
	m.On("Force", -1).Return(nil).Once()

	out, err := execute(t, migratorDeps(m, nil), "", "db", "migrate", "force", "--", "-1")
	require.NoError(t, err)
	assert.Contains(t, out, "schema version forced to -1")

	for _, bad := range []string{"abc", "-2"} {
		_, err := execute(t, migratorDeps(m, nil), "", "db", "migrate", "force", "--", bad)
		assert.Error(t, err, bad)
	}
	m.AssertExpectations(t)
}

func TestMigrate_ConfigError(t *testing.T) {
	deps := migratorDeps(&mockMigrator{}, nil)
	deps.LoadConfig = func(string) (*config.Config, error) {
		return nil, fmt.Errorf("config: database.user is required")
	}

	_, err := execute(t, deps, "", "db", "migrate", "up")
	assert.EqualError(t, err, "config: database.user is required")
}

//Personal.AI order the ending
