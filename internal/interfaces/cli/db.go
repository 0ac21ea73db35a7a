package cli

import (
	"fmt"
	"strconv"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/turtacn/KeyIP-Landscape/internal/config"
	"github.com/turtacn/KeyIP-Landscape/internal/infrastructure/database/postgres"
	"github.com/turtacn/KeyIP-Landscape/pkg/errors"
)

// Migrator manages the corpus schema.
type Migrator interface {
	Up() error
	Down(steps int) error
	Status() (postgres.MigrationState, error)
	Force(version int) error
}

type postgresMigrator struct{ cfg config.DatabaseConfig }

func newPostgresMigrator(cfg config.DatabaseConfig) Migrator { return postgresMigrator{cfg: cfg} }

func (m postgresMigrator) Up() error            { return postgres.MigrateUp(m.cfg) }
func (m postgresMigrator) Down(steps int) error { return postgres.MigrateDown(m.cfg, steps) }
func (m postgresMigrator) Force(version int) error {
	return postgres.ForceMigrationVersion(m.cfg, version)
}
func (m postgresMigrator) Status() (postgres.MigrationState, error) {
	return postgres.MigrationStatus(m.cfg)
}

// NewDBCmd returns the keyip db command tree.
func NewDBCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "db",
		Short: "Database maintenance",
	}

	migrateCmd := &cobra.Command{
		Use:   "migrate",
		Short: "Manage schema migrations",
		Long:  "Apply, roll back or inspect the asset corpus schema using the migrations under database.migration_path.",
	}
	migrateCmd.AddCommand(newMigrateUpCmd(), newMigrateDownCmd(), newMigrateStatusCmd(), newMigrateForceCmd())

	cmd.AddCommand(migrateCmd)
	return cmd
}

func migratorFor(cmd *cobra.Command) (Migrator, *CLIContext, error) {
	cliCtx, err := GetCLIContext(cmd)
	if err != nil {
		return nil, nil, err
	}
	cfg, err := cliCtx.Config()
	if err != nil {
		return nil, nil, err
	}
	return cliCtx.deps.NewMigrator(cfg.Database), cliCtx, nil
}

func newMigrateUpCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "up",
		Short: "Apply all pending migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			m, _, err := migratorFor(cmd)
			if err != nil {
				return err
			}
			if err := m.Up(); err != nil {
				return err
			}
			PrintSuccess(cmd, "schema is up to date")
			return nil
		},
	}
}

func newMigrateDownCmd() *cobra.Command {
	var steps int
	cmd := &cobra.Command{
		Use:   "down",
		Short: "Roll back migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if steps < 1 {
				return errors.InvalidParam(fmt.Sprintf("--steps must be at least 1, got %d", steps))
			}
			m, _, err := migratorFor(cmd)
			if err != nil {
				return err
			}
			if err := m.Down(steps); err != nil {
				return err
			}
			PrintSuccess(cmd, fmt.Sprintf("rolled back %d migration(s)", steps))
			return nil
		},
	}
	cmd.Flags().IntVar(&steps, "steps", 1, "number of migrations to roll back")
	return cmd
}

type migrationStatus struct {
	Version uint `json:"version"`
	Dirty   bool `json:"dirty"`
}

func newMigrateStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show the applied schema version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			m, cliCtx, err := migratorFor(cmd)
			if err != nil {
				return err
			}
			st, err := m.Status()
			if err != nil {
				return err
			}

			state := "clean"
			if st.Dirty {
				state = color.RedString("dirty")
			}
			version := strconv.FormatUint(uint64(st.Version), 10)
			if st.Version == 0 {
				version = "none"
			}
			return render(cmd, cliCtx.OutputFormat, view{
				title:   "Migration status",
				headers: []string{"Version", "State"},
				rows:    [][]string{{version, state}},
				data:    migrationStatus{Version: st.Version, Dirty: st.Dirty},
				record:  true,
			})
		},
	}
}

func newMigrateForceCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "force VERSION",
		Short: "Record a schema version without running migrations",
		Long:  "Force marks VERSION as applied and clears the dirty flag. Use -1 to clear the version entirely.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			version, err := strconv.Atoi(args[0])
			if err != nil || version < -1 {
				return errors.InvalidParam(fmt.Sprintf("invalid version %q", args[0]))
			}
			m, _, err := migratorFor(cmd)
			if err != nil {
				return err
			}
			if err := m.Force(version); err != nil {
				return err
			}
			PrintSuccess(cmd, fmt.Sprintf("schema version forced to %d", version))
			return nil
		},
	}
}

//Personal.AI order the ending
