package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"finanze/internal/backend"
	"finanze/internal/log"
	"finanze/internal/storage"
)

func newMigrateCmd(a *app) *cobra.Command {
	var statusOnly bool
	cmd := &cobra.Command{
		Use:   "migrate",
		Args:  cobra.NoArgs,
		Short: "Apply pending schema migrations to the configured database",
		RunE: func(cmd *cobra.Command, _ []string) error {
			var (
				dialect storage.Dialect
				dsn     string
			)
			switch backend.BackendType(a.cfg.DataBackend) {
			case backend.SQLiteBackend:
				dialect, dsn = storage.DialectSQLite, storage.SQLiteDSN(a.cfg.SQLiteDBPath)
			case backend.PostgresBackend:
				dialect, dsn = storage.DialectPostgres, a.cfg.PostgresURL
			default:
				fmt.Fprintf(cmd.OutOrStdout(), "%s backend has no schema\n", a.cfg.DataBackend)
				return nil
			}

			if !statusOnly {
				if err := storage.RunMigrations(dialect, dsn); err != nil {
					return err
				}
			}
			version, dirty, err := storage.MigrationVersion(dialect, dsn)
			if err != nil {
				return err
			}
			a.logger.Info("Schema version",
				log.FieldBackend, string(dialect),
				"version", version,
				"dirty", dirty)
			fmt.Fprintf(cmd.OutOrStdout(), "version=%d dirty=%t\n", version, dirty)
			if dirty {
				return fmt.Errorf("schema version %d is dirty, fix it by hand", version)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&statusOnly, "status", false, "Only report the applied version.")
	return cmd
}
