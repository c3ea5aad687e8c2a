package worker

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"acecheckin/internal/amqp"
	applog "acecheckin/internal/log"
)

// FeedWorker consumes activity events from AMQP and appends them to the CSV
// ledger. Failed appends are returned to the consumer so the delivery is
// requeued; events with an unknown kind are logged and dropped.
type FeedWorker struct {
	ledger        *Ledger
	statsInterval time.Duration

	mu       sync.Mutex
	entries  int64
	payments int64
	failures int64
}

func NewFeedWorker(ledger *Ledger, statsInterval time.Duration) *FeedWorker {
	if statsInterval <= 0 {
		statsInterval = time.Minute
	}
	return &FeedWorker{
		ledger:        ledger,
		statsInterval: statsInterval,
	}
}

// Run consumes events until ctx is cancelled, logging processing stats on
// the configured interval.
func (w *FeedWorker) Run(ctx context.Context, client *amqp.Client) error {
	go w.runStats(ctx)

	slog.InfoContext(ctx, "Activity feed worker started", "ledger", w.ledger.Path())
	return client.Consume(ctx, w.HandleEvent)
}

// HandleEvent processes a single activity event from the queue.
func (w *FeedWorker) HandleEvent(event *amqp.Event) error {
	switch event.Kind {
	case amqp.KindEntryLogged, amqp.KindPaymentLogged:
	default:
		// Ack and drop: requeueing an unknown kind would loop forever.
		slog.Warn("Skipping event with unknown kind", applog.FieldKind, event.Kind, "id", event.ID)
		return nil
	}

	if err := w.ledger.Append(event); err != nil {
		w.mu.Lock()
		w.failures++
		w.mu.Unlock()
		return fmt.Errorf("append to ledger: %w", err)
	}

	w.mu.Lock()
	switch event.Kind {
	case amqp.KindEntryLogged:
		w.entries++
	case amqp.KindPaymentLogged:
		w.payments++
	}
	w.mu.Unlock()

	slog.Info("Recorded activity event",
		applog.FieldKind, event.Kind,
		"id", event.ID,
		applog.FieldMemberID, event.MemberID,
		applog.FieldMemberName, event.MemberName)

	return nil
}

// Stats returns the counters accumulated since the worker started.
func (w *FeedWorker) Stats() (entries, payments, failures int64) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.entries, w.payments, w.failures
}

func (w *FeedWorker) runStats(ctx context.Context) {
	ticker := time.NewTicker(w.statsInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			entries, payments, failures := w.Stats()
			slog.Info("Activity feed worker stopping",
				"entries", entries,
				"payments", payments,
				"failures", failures)
			return
		case <-ticker.C:
			entries, payments, failures := w.Stats()
			slog.Info("Activity feed stats",
				"entries", entries,
				"payments", payments,
				"failures", failures,
				"ledger", w.ledger.Path())
		}
	}
}
