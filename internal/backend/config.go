package backend

import (
	"fmt"

	"acecheckin/internal/config"
)

// FromAppConfig maps the application configuration onto a backend Config.
func FromAppConfig(appCfg *config.Config) (Config, error) {
	if appCfg == nil {
		return Config{}, fmt.Errorf("app config is nil")
	}

	kind := Kind(appCfg.DataBackend)
	if !kind.known() {
		return Config{}, fmt.Errorf("unknown data backend %q (valid: %v)", appCfg.DataBackend, Kinds())
	}

	return Config{
		Kind:         kind,
		SQLiteDBPath: appCfg.SQLiteDBPath,
		AMQPURL:      appCfg.AMQPURL,
		AMQPExchange: appCfg.AMQPExchange,
		AMQPQueue:    appCfg.AMQPQueue,
	}, nil
}

// Validate reports whether the Config can be built at all. AMQP settings
// are not checked here; events are optional on every kind.
func (c Config) Validate() error {
	switch c.Kind {
	case KindSQLite:
		if c.SQLiteDBPath == "" {
			return fmt.Errorf("sqlite backend requires a database path")
		}
	case KindMemory:
	default:
		return fmt.Errorf("unknown data backend %q (valid: %v)", c.Kind, Kinds())
	}
	return nil
}
