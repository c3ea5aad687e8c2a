// Package cli provides shared bootstrap helpers for the server and worker
// binaries, plus the acectl command tree.
package cli

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"acecheckin/internal/config"
	applog "acecheckin/internal/log"
)

// LoadEnvFile applies a .env file when one exists. Deployments set the
// process environment directly, so a missing file is not an error.
func LoadEnvFile() {
	_ = godotenv.Load()
}

// SetupLogger installs the process logger at the given level and returns it.
func SetupLogger(level string) *applog.Logger {
	logger := applog.New(applog.Config{
		Level:     applog.ParseLevel(level),
		Component: applog.ComponentApp,
	})
	applog.SetDefault(logger)
	return logger
}

// Bootstrap prepares a long-running binary: .env file, process logger from
// LOG_LEVEL, validated configuration. A binary cannot run on invalid
// configuration, so validation failure ends the process.
func Bootstrap() (*config.Config, *applog.Logger) {
	LoadEnvFile()
	logger := SetupLogger(os.Getenv("LOG_LEVEL"))

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed", "error", err)
		os.Exit(1)
	}
	return cfg, logger
}

// SignalContext returns a context cancelled by SIGINT or SIGTERM.
func SignalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
}
