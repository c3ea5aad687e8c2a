package worker

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"acecheckin/internal/amqp"
)

func newTestWorker(t *testing.T) *FeedWorker {
	t.Helper()
	ledger, err := OpenLedger(filepath.Join(t.TempDir(), "activity.csv"))
	require.NoError(t, err)
	t.Cleanup(func() { ledger.Close() })
	return NewFeedWorker(ledger, time.Minute)
}

func TestHandleEventCounts(t *testing.T) {
	w := newTestWorker(t)

	events := []*amqp.Event{
		{Kind: amqp.KindEntryLogged, ID: 1, MemberID: 1, MemberName: "Alice Johnson", Timestamp: time.Now()},
		{Kind: amqp.KindPaymentLogged, ID: 1, MemberID: 1, MemberName: "Alice Johnson", Amount: "25.50", Timestamp: time.Now()},
		{Kind: amqp.KindPaymentLogged, ID: 2, MemberID: 2, MemberName: "Bob Smith", Amount: "50.00", Timestamp: time.Now()},
	}
	for _, event := range events {
		require.NoError(t, w.HandleEvent(event))
	}

	entries, payments, failures := w.Stats()
	assert.Equal(t, int64(1), entries)
	assert.Equal(t, int64(2), payments)
	assert.Zero(t, failures)
}

func TestHandleEventUnknownKindDropped(t *testing.T) {
	w := newTestWorker(t)

	err := w.HandleEvent(&amqp.Event{Kind: "member.renamed", ID: 9, Timestamp: time.Now()})
	require.NoError(t, err, "unknown kinds must be acked, not requeued")

	entries, payments, failures := w.Stats()
	assert.Zero(t, entries)
	assert.Zero(t, payments)
	assert.Zero(t, failures)

	rows := readLedger(t, w.ledger.Path())
	assert.Len(t, rows, 1, "only the header, no row for the dropped event")
}

func TestHandleEventLedgerFailure(t *testing.T) {
	ledger, err := OpenLedger(filepath.Join(t.TempDir(), "activity.csv"))
	require.NoError(t, err)
	require.NoError(t, ledger.Close())

	w := NewFeedWorker(ledger, time.Minute)
	err = w.HandleEvent(&amqp.Event{Kind: amqp.KindEntryLogged, ID: 1, MemberID: 1, Timestamp: time.Now()})
	require.Error(t, err, "append failures must surface so the delivery is requeued")

	_, _, failures := w.Stats()
	assert.Equal(t, int64(1), failures)
}

func TestNewFeedWorkerDefaultInterval(t *testing.T) {
	w := NewFeedWorker(nil, 0)
	assert.Equal(t, time.Minute, w.statsInterval)
}
