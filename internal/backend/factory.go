package backend

import (
	"context"
	"fmt"
	"log/slog"

	"acecheckin/internal/amqp"
	"acecheckin/internal/records"
	"acecheckin/internal/records/memory"
	"acecheckin/internal/services"
	"acecheckin/internal/storage"
)

type factory struct {
	logger *slog.Logger
}

// NewFactory returns the standard Factory. A nil logger falls back to
// slog.Default.
func NewFactory(logger *slog.Logger) Factory {
	if logger == nil {
		logger = slog.Default()
	}
	return &factory{logger: logger}
}

func (f *factory) CreateBackend(ctx context.Context, cfg Config) (*Result, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	store, err := f.openStore(cfg)
	if err != nil {
		return nil, err
	}

	service := services.NewCheckinService(store, f.openPublisher(cfg))
	return &Result{Service: service, Cleanup: service.Close}, nil
}

func (f *factory) openStore(cfg Config) (records.Store, error) {
	switch cfg.Kind {
	case KindSQLite:
		repo, err := storage.NewSQLiteRepository(cfg.SQLiteDBPath)
		if err != nil {
			return nil, fmt.Errorf("open sqlite store: %w", err)
		}
		f.logger.Info("Initialized SQLite record store", "db_path", cfg.SQLiteDBPath)
		return repo, nil
	case KindMemory:
		f.logger.Info("Initialized in-memory record store")
		return memory.New(), nil
	}
	return nil, fmt.Errorf("unknown data backend %q", cfg.Kind)
}

// openPublisher connects the activity-event publisher. Events stay
// optional: a missing URL or a failed connection leaves the service
// without one rather than failing startup.
func (f *factory) openPublisher(cfg Config) *amqp.Client {
	if cfg.AMQPURL == "" {
		return nil
	}

	client, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
	if err != nil {
		f.logger.Warn("Activity events disabled: AMQP connect failed", "error", err)
		return nil
	}
	f.logger.Info("Connected AMQP activity publisher",
		"exchange", cfg.AMQPExchange,
		"queue", cfg.AMQPQueue)
	return client
}
