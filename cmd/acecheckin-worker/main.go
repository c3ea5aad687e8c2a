package main

import (
	"context"
	"errors"
	"os"
	"time"

	"acecheckin/internal/amqp"
	"acecheckin/internal/cli"
	applog "acecheckin/internal/log"
	"acecheckin/internal/worker"
)

func main() {
	cfg, logger := cli.Bootstrap()
	logger = logger.WithComponent(applog.ComponentWorker)

	logger.Info("Starting acecheckin-worker")

	// The worker exists to drain the activity queue; without AMQP there is
	// nothing to consume.
	if !cfg.EventsEnabled() {
		logger.Error("AMQP_URL is not set, the activity feed worker has nothing to consume")
		os.Exit(1)
	}

	amqpClient, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
	if err != nil {
		logger.Error("Failed to initialize AMQP client", "error", err)
		os.Exit(1)
	}
	defer amqpClient.Close()

	ledger, err := worker.OpenLedger(cfg.FeedLedgerPath)
	if err != nil {
		logger.Error("Failed to open activity ledger", "error", err, "path", cfg.FeedLedgerPath)
		os.Exit(1)
	}
	defer ledger.Close()

	feedWorker := worker.NewFeedWorker(ledger, cfg.FeedStatsInterval)

	ctx, stop := cli.SignalContext()
	defer stop()

	consumeDone := make(chan error, 1)
	go func() {
		consumeDone <- feedWorker.Run(ctx, amqpClient)
	}()

	select {
	case <-ctx.Done():
		logger.Info("Shutdown signal received")
		// Give the consumer a moment to ack in-flight deliveries.
		select {
		case <-consumeDone:
		case <-time.After(5 * time.Second):
			logger.Warn("Shutdown timeout reached")
		}
	case err := <-consumeDone:
		if err != nil && !errors.Is(err, context.Canceled) {
			logger.Error("Event consumption failed", "error", err)
		}
	}

	entries, payments, failures := feedWorker.Stats()
	logger.Info("Worker stopped",
		"entries", entries,
		"payments", payments,
		"failures", failures)
}
