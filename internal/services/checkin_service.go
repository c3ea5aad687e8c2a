package services

import (
	"context"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"acecheckin/internal/amqp"
	"acecheckin/internal/core"
	"acecheckin/internal/records"
)

// CheckinService orchestrates member, entry, and payment operations across
// the record store and the AMQP activity feed.
type CheckinService struct {
	store      records.Store
	amqpClient *amqp.Client
}

func NewCheckinService(store records.Store, amqpClient *amqp.Client) *CheckinService {
	return &CheckinService{
		store:      store,
		amqpClient: amqpClient,
	}
}

// RegisterMember validates and saves a new club member.
func (s *CheckinService) RegisterMember(ctx context.Context, params records.CreateMemberParams) (core.Member, error) {
	candidate := core.Member{Name: params.Name, Email: params.Email, Phone: params.Phone}
	if err := candidate.Validate(); err != nil {
		return core.Member{}, err
	}

	member, err := s.store.CreateMember(ctx, params)
	if err != nil {
		return core.Member{}, fmt.Errorf("save member: %w", err)
	}
	return member, nil
}

func (s *CheckinService) GetMember(ctx context.Context, id int64) (core.Member, error) {
	return s.store.GetMember(ctx, id)
}

func (s *CheckinService) ListMembers(ctx context.Context, skip, limit int) ([]core.Member, error) {
	return s.store.ListMembers(ctx, skip, limit)
}

// LogEntry records a check-in for an existing member and publishes an
// activity event. Validation runs before the member lookup, so a bad
// request is reported even when the member does not exist.
func (s *CheckinService) LogEntry(ctx context.Context, memberID int64, notes string) (core.EntryLog, core.Member, error) {
	candidate := core.EntryLog{MemberID: memberID, Notes: notes}
	if err := candidate.Validate(); err != nil {
		return core.EntryLog{}, core.Member{}, err
	}

	member, err := s.store.GetMember(ctx, memberID)
	if err != nil {
		return core.EntryLog{}, core.Member{}, err
	}

	entry, err := s.store.CreateEntry(ctx, records.CreateEntryParams{
		MemberID: memberID,
		Notes:    notes,
	})
	if err != nil {
		return core.EntryLog{}, core.Member{}, fmt.Errorf("save entry: %w", err)
	}

	// Publish async activity event (non-blocking)
	if err := s.publishEntryLogged(ctx, entry, member.Name); err != nil {
		slog.ErrorContext(ctx, "Failed to publish entry event",
			"id", entry.ID, "error", err)
		// Don't fail the request - entry is saved locally
	}

	return entry, member, nil
}

// LogPayment records an exact-amount payment for an existing member and
// publishes an activity event.
func (s *CheckinService) LogPayment(ctx context.Context, memberID int64, amount core.Money, notes string) (core.PaymentLog, core.Member, error) {
	candidate := core.PaymentLog{MemberID: memberID, Amount: amount, Notes: notes}
	if err := candidate.Validate(); err != nil {
		return core.PaymentLog{}, core.Member{}, err
	}

	member, err := s.store.GetMember(ctx, memberID)
	if err != nil {
		return core.PaymentLog{}, core.Member{}, err
	}

	payment, err := s.store.CreatePayment(ctx, records.CreatePaymentParams{
		MemberID: memberID,
		Amount:   amount,
		Notes:    notes,
	})
	if err != nil {
		return core.PaymentLog{}, core.Member{}, fmt.Errorf("save payment: %w", err)
	}

	// Publish async activity event (non-blocking)
	if err := s.publishPaymentLogged(ctx, payment, member.Name); err != nil {
		slog.ErrorContext(ctx, "Failed to publish payment event",
			"id", payment.ID, "error", err)
		// Don't fail the request - payment is saved locally
	}

	return payment, member, nil
}

// EntryHistory returns a member's check-in entries, newest first.
func (s *CheckinService) EntryHistory(ctx context.Context, memberID int64, skip, limit int) (core.Member, []core.EntryLog, error) {
	member, err := s.store.GetMember(ctx, memberID)
	if err != nil {
		return core.Member{}, nil, err
	}

	entries, err := s.store.ListEntries(ctx, memberID, skip, limit)
	if err != nil {
		return core.Member{}, nil, fmt.Errorf("list entries: %w", err)
	}
	return member, entries, nil
}

// PaymentHistory returns a member's payments, newest first.
func (s *CheckinService) PaymentHistory(ctx context.Context, memberID int64, skip, limit int) (core.Member, []core.PaymentLog, error) {
	member, err := s.store.GetMember(ctx, memberID)
	if err != nil {
		return core.Member{}, nil, err
	}

	payments, err := s.store.ListPayments(ctx, memberID, skip, limit)
	if err != nil {
		return core.Member{}, nil, fmt.Errorf("list payments: %w", err)
	}
	return member, payments, nil
}

// MemberSummary aggregates a member's full activity. Entries and payments
// are fetched concurrently.
func (s *CheckinService) MemberSummary(ctx context.Context, memberID int64) (core.Member, core.MemberStats, error) {
	member, err := s.store.GetMember(ctx, memberID)
	if err != nil {
		return core.Member{}, core.MemberStats{}, err
	}

	var (
		entries  []core.EntryLog
		payments []core.PaymentLog
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		entries, err = s.store.ListEntries(gctx, memberID, 0, -1)
		return err
	})
	g.Go(func() error {
		var err error
		payments, err = s.store.ListPayments(gctx, memberID, 0, -1)
		return err
	})
	if err := g.Wait(); err != nil {
		return core.Member{}, core.MemberStats{}, fmt.Errorf("load member activity: %w", err)
	}

	return member, core.NewMemberStats(entries, payments), nil
}

func (s *CheckinService) publishEntryLogged(ctx context.Context, entry core.EntryLog, memberName string) error {
	if s.amqpClient == nil {
		slog.WarnContext(ctx, "AMQP client not available, skipping entry event")
		return nil
	}

	return s.amqpClient.PublishEntryLogged(ctx, entry, memberName)
}

func (s *CheckinService) publishPaymentLogged(ctx context.Context, payment core.PaymentLog, memberName string) error {
	if s.amqpClient == nil {
		slog.WarnContext(ctx, "AMQP client not available, skipping payment event")
		return nil
	}

	return s.amqpClient.PublishPaymentLogged(ctx, payment, memberName)
}

// Close closes both the record store and the AMQP connection.
func (s *CheckinService) Close() error {
	var errs []error

	if s.store != nil {
		if err := s.store.Close(); err != nil {
			errs = append(errs, fmt.Errorf("store: %w", err))
		}
	}

	if s.amqpClient != nil {
		if err := s.amqpClient.Close(); err != nil {
			errs = append(errs, fmt.Errorf("amqp: %w", err))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("close checkin service: %v", errs)
	}

	return nil
}
