package cmd

import (
	"fmt"
	"net/url"
	"os"

	"github.com/jmoiron/sqlx"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/solatis/sttable/internal/core/config"
	"github.com/solatis/sttable/internal/core/db"
	"github.com/solatis/sttable/internal/logging"
)

const Version = "0.1.0"

var (
	configFile string
	dbURL      string
	logLevel   string
	logFormat  string
	logFile    string
)

var rootCmd = &cobra.Command{
	Use:           "sttable",
	Short:         "sttable data-table engine",
	Long:          `sttable drives paginated, sortable, filterable tables over local collections, HTTP endpoints, gRPC TableService peers and an embedded dataset store.`,
	Version:       Version,
	SilenceUsage:  true,
	SilenceErrors: false,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "config file path")
	rootCmd.PersistentFlags().StringVar(&dbURL, "db-url", "", "database connection URL (sqlite://path or postgres://...)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "json", "log format (json, text)")
	rootCmd.PersistentFlags().StringVar(&logFile, "log-file", "", "also write JSON logs to this rotated file")
}

func Execute() error {
	return rootCmd.Execute()
}

// runtime is the state every subcommand starts from.
type runtime struct {
	cfg *config.Config
	log zerolog.Logger
}

func setup() (*runtime, error) {
	cfg, err := config.LoadConfig(configFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if dbURL != "" {
		cfg.DatabaseURL = dbURL
	}

	log, err := logging.New(logging.Config{Level: logLevel, Format: logFormat, File: logFile}, os.Stderr)
	if err != nil {
		return nil, fmt.Errorf("failed to configure logging: %w", err)
	}
	return &runtime{cfg: cfg, log: log}, nil
}

// openDB opens the configured database.
func (rt *runtime) openDB() (*sqlx.DB, error) {
	database, err := db.Open(rt.cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	return database, nil
}

// openStore opens the database and wraps it in a Store whose schema is
// known to be migrated.
func (rt *runtime) openStore(cmd *cobra.Command) (*db.Store, func(), error) {
	database, err := rt.openDB()
	if err != nil {
		return nil, nil, err
	}
	store, err := db.NewStore(database, rt.log)
	if err != nil {
		database.Close()
		return nil, nil, fmt.Errorf("failed to load queries: %w", err)
	}
	if err := store.CheckSchema(cmd.Context()); err != nil {
		database.Close()
		return nil, nil, err
	}
	return store, func() { database.Close() }, nil
}

// redactURL hides the password of a database URL for logging.
func redactURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return "invalid-url"
	}
	return u.Redacted()
}
