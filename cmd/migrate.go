package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"nicodb/internal/repository/sqlite"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply pending database migrations",
	RunE:  runMigrate,
}

func runMigrate(cmd *cobra.Command, args []string) (err error) {
	// newApp applies migrations
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.closeWith(&err)

	version, err := sqlite.SchemaVersion(a.db.DB)
	if err != nil {
		return fmt.Errorf("failed to read schema version: %w", err)
	}

	stored, err := sqlite.NewStreamingRepository(a.db).Count(cmd.Context())
	if err != nil {
		return err
	}

	a.log.Info("migrations applied", map[string]interface{}{
		"database_path": a.cfg.DatabasePath,
		"version":       version,
		"streamings":    stored,
	})
	fmt.Fprintf(cmd.OutOrStdout(), "schema version %d, %d streamings stored\n", version, stored)
	return nil
}
