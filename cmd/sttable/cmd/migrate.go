package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/solatis/sttable/internal/core/db"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply pending database migrations",
	RunE:  runMigrate,
}

func init() {
	rootCmd.AddCommand(migrateCmd)
	migrateCmd.Flags().Bool("status", false, "print migration status instead of migrating")
}

func runMigrate(cmd *cobra.Command, args []string) error {
	rt, err := setup()
	if err != nil {
		return err
	}
	database, err := rt.openDB()
	if err != nil {
		return err
	}
	defer database.Close()

	if status, _ := cmd.Flags().GetBool("status"); status {
		statuses, err := db.MigrateStatus(database)
		if err != nil {
			return fmt.Errorf("failed to read migration status: %w", err)
		}
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(statuses)
	}

	if err := db.MigrateUp(database); err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}
	rt.log.Info().Str("db", redactURL(rt.cfg.DatabaseURL)).Msg("migrations applied")
	return nil
}
