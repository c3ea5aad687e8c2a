// Package backend assembles the record store, the optional AMQP publisher,
// and the check-in service for a configured backend kind.
package backend

import (
	"context"

	"acecheckin/internal/services"
)

// Kind selects the record store implementation.
type Kind string

const (
	KindSQLite Kind = "sqlite"
	KindMemory Kind = "memory"
)

// Kinds lists every accepted kind, in the order shown to operators.
func Kinds() []Kind {
	return []Kind{KindSQLite, KindMemory}
}

func (k Kind) String() string {
	return string(k)
}

func (k Kind) known() bool {
	for _, v := range Kinds() {
		if k == v {
			return true
		}
	}
	return false
}

// Config carries what CreateBackend needs: the kind, the SQLite path when
// that kind is selected, and the optional AMQP wiring for activity events.
type Config struct {
	Kind         Kind
	SQLiteDBPath string
	AMQPURL      string
	AMQPExchange string
	AMQPQueue    string
}

// Result is an assembled service plus the cleanup that releases it.
type Result struct {
	Service *services.CheckinService
	Cleanup func() error
}

// Factory builds a Result for a validated Config.
type Factory interface {
	CreateBackend(ctx context.Context, cfg Config) (*Result, error)
}
