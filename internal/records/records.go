// Package records defines the persistence port for member, entry, and
// payment records. Backends (SQLite, memory) implement Store; everything
// above it depends only on this interface.
package records

import (
	"context"
	"errors"
	"time"

	"acecheckin/internal/core"
)

// ErrMemberNotFound is returned by every operation that references a member
// id with no stored member. Writes that fail with it store nothing.
var ErrMemberNotFound = errors.New("member not found")

// DefaultListLimit is the page size applied when a list request does not
// specify one.
const DefaultListLimit = 100

// CreateMemberParams carries the caller-supplied member fields. The store
// assigns ID and CreatedAt.
type CreateMemberParams struct {
	Name  string
	Email string
	Phone string
}

// CreateEntryParams carries a check-in. A zero Timestamp means "now" (UTC,
// assigned by the store); backfill tooling may supply one explicitly.
type CreateEntryParams struct {
	MemberID  int64
	Notes     string
	Timestamp time.Time
}

// CreatePaymentParams carries a payment. Amount is validated by the caller;
// a zero Timestamp means "now".
type CreatePaymentParams struct {
	MemberID  int64
	Amount    core.Money
	Notes     string
	Timestamp time.Time
}

// Store is the record persistence port. Records are append-only: there are
// no update or delete operations. Each create commits a single row. Lists
// of entries and payments return newest first (timestamp desc, id desc on
// ties); members list in insertion order. A negative limit means unbounded.
type Store interface {
	CreateMember(ctx context.Context, params CreateMemberParams) (core.Member, error)
	GetMember(ctx context.Context, id int64) (core.Member, error)
	ListMembers(ctx context.Context, skip, limit int) ([]core.Member, error)

	CreateEntry(ctx context.Context, params CreateEntryParams) (core.EntryLog, error)
	ListEntries(ctx context.Context, memberID int64, skip, limit int) ([]core.EntryLog, error)

	CreatePayment(ctx context.Context, params CreatePaymentParams) (core.PaymentLog, error)
	ListPayments(ctx context.Context, memberID int64, skip, limit int) ([]core.PaymentLog, error)

	Close() error
}
