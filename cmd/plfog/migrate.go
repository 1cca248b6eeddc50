package main

import (
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"time"

	_ "github.com/lib/pq"
	"github.com/plfog/backoffice/internal/infrastructure/logger"
	"github.com/plfog/backoffice/internal/infrastructure/migration"
	"github.com/spf13/cobra"
)

const migrationsDir = "migrations"

type migratorFunc func(cmd *cobra.Command, m *migration.Migrator, args []string) error

type runE func(*cobra.Command, []string) error

// newMigrateCommand manages the postgres schema. SQLite databases are
// migrated automatically on startup and are refused here.
func newMigrateCommand(opts *options) *cobra.Command {
	var dir string
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply or inspect postgres schema migrations",
	}
	cmd.PersistentFlags().StringVar(&dir, "dir", "", "migrations directory (default: the embedded schema, ./migrations for create and list)")

	withMigrator := func(fn migratorFunc) runE {
		return func(cmd *cobra.Command, args []string) error {
			cfg, log, err := opts.load(true)
			if err != nil {
				return err
			}
			defer logger.Sync(log)
			if cfg.Database.Driver != "postgres" {
				return fmt.Errorf("migrations target postgres, database.driver is %q", cfg.Database.Driver)
			}

			db, err := sql.Open("postgres", cfg.Database.DSN())
			if err != nil {
				return err
			}
			defer db.Close()
			if err := db.PingContext(cmd.Context()); err != nil {
				return fmt.Errorf("connect: %w", err)
			}

			m, err := migration.New(db, dir, log)
			if err != nil {
				return err
			}
			defer m.Close()
			return fn(cmd, m, args)
		}
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "up",
			Short: "Apply every pending migration",
			Args:  cobra.NoArgs,
			RunE: withMigrator(func(_ *cobra.Command, m *migration.Migrator, _ []string) error {
				return m.Up()
			}),
		},
		&cobra.Command{
			Use:   "down",
			Short: "Roll back every migration",
			Args:  cobra.NoArgs,
			RunE: withMigrator(func(_ *cobra.Command, m *migration.Migrator, _ []string) error {
				return m.Down()
			}),
		},
		&cobra.Command{
			Use:   "step N",
			Short: "Apply N migrations, or roll back when N is negative",
			Args:  cobra.ExactArgs(1),
			RunE: withMigrator(func(_ *cobra.Command, m *migration.Migrator, args []string) error {
				n, err := strconv.Atoi(args[0])
				if err != nil {
					return fmt.Errorf("step count %q: %w", args[0], err)
				}
				return m.Steps(n)
			}),
		},
		&cobra.Command{
			Use:   "goto VERSION",
			Short: "Migrate up or down to VERSION",
			Args:  cobra.ExactArgs(1),
			RunE: withMigrator(func(_ *cobra.Command, m *migration.Migrator, args []string) error {
				v, err := strconv.ParseUint(args[0], 10, 32)
				if err != nil {
					return fmt.Errorf("version %q: %w", args[0], err)
				}
				return m.To(uint(v))
			}),
		},
		&cobra.Command{
			Use:   "version",
			Short: "Print the applied schema version",
			Args:  cobra.NoArgs,
			RunE: withMigrator(func(cmd *cobra.Command, m *migration.Migrator, _ []string) error {
				v, dirty, err := m.Version()
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				switch {
				case v == 0:
					fmt.Fprintln(out, "No migrations applied")
				case dirty:
					fmt.Fprintf(out, "Version %d (dirty)\n", v)
				default:
					fmt.Fprintf(out, "Version %d\n", v)
				}
				return nil
			}),
		},
		&cobra.Command{
			Use:   "force VERSION",
			Short: "Record VERSION as applied without running it",
			Args:  cobra.ExactArgs(1),
			RunE: withMigrator(func(_ *cobra.Command, m *migration.Migrator, args []string) error {
				v, err := strconv.Atoi(args[0])
				if err != nil {
					return fmt.Errorf("version %q: %w", args[0], err)
				}
				return m.Force(v)
			}),
		},
		newDropCommand(withMigrator),
		&cobra.Command{
			Use:   "create NAME [DESCRIPTION]",
			Short: "Write the next numbered migration pair",
			Args:  cobra.RangeArgs(1, 2),
			RunE: func(cmd *cobra.Command, args []string) error {
				desc := ""
				if len(args) == 2 {
					desc = args[1]
				}
				f, err := migration.Create(orMigrationsDir(dir), args[0], desc, time.Now())
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s\n%s\n", f.Up, f.Down)
				return nil
			},
		},
		&cobra.Command{
			Use:   "list",
			Short: "List the migrations on disk",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				files, err := migration.Scan(orMigrationsDir(dir))
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				if len(files) == 0 {
					fmt.Fprintln(out, "No migrations found")
				}
				for _, f := range files {
					fmt.Fprintf(out, "%06d  %s\n", f.Version, f.Name)
				}
				return nil
			},
		},
	)
	return cmd
}

func newDropCommand(withMigrator func(migratorFunc) runE) *cobra.Command {
	var confirm bool
	cmd := &cobra.Command{
		Use:   "drop",
		Short: "Drop every table",
		Args:  cobra.NoArgs,
		PreRunE: func(*cobra.Command, []string) error {
			if !confirm {
				return errors.New("drop destroys every table; rerun with --confirm")
			}
			return nil
		},
		RunE: withMigrator(func(_ *cobra.Command, m *migration.Migrator, _ []string) error {
			return m.Drop()
		}),
	}
	cmd.Flags().BoolVar(&confirm, "confirm", false, "really drop everything")
	return cmd
}

func orMigrationsDir(dir string) string {
	if dir == "" {
		return migrationsDir
	}
	return dir
}
