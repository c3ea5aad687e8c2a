package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"acecheckin/internal/config"
	"acecheckin/internal/records"
	"acecheckin/internal/storage"
)

// RootOptions holds global flags shared by all acectl commands.
type RootOptions struct {
	LogLevel string
}

// NewRootCommand creates the root command for the acectl admin CLI.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:           "acectl",
		Short:         "Administration tool for the Ace Check-in service",
		Long:          "acectl manages the check-in database: member imports, demo data seeding, and schema migrations.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			LoadEnvFile()
			SetupLogger(opts.LogLevel)
		},
	}

	cmd.PersistentFlags().StringVar(&opts.LogLevel, "log-level", "warn", "log verbosity (debug|info|warn|error)")

	cmd.AddCommand(NewImportCommand(opts))
	cmd.AddCommand(NewSeedCommand(opts))
	cmd.AddCommand(NewMigrateCommand(opts))

	return cmd
}

// loadConfig loads and validates configuration for a subcommand, returning
// the error instead of exiting so cobra can report it.
func loadConfig() (*config.Config, error) {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// openStore opens the SQLite record store the commands operate on. The
// admin commands write durable data, so the memory backend is rejected.
func openStore(cfg *config.Config) (records.Store, error) {
	if cfg.DataBackend != "sqlite" {
		return nil, fmt.Errorf("acectl requires the sqlite backend, DATA_BACKEND is %q", cfg.DataBackend)
	}

	store, err := storage.NewSQLiteRepository(cfg.SQLiteDBPath)
	if err != nil {
		return nil, fmt.Errorf("open record store: %w", err)
	}
	return store, nil
}
