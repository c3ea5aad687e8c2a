package services

import (
	"context"
	"errors"
	"testing"

	"acecheckin/internal/core"
	"acecheckin/internal/records"
	"acecheckin/internal/records/memory"
)

func newTestService() *CheckinService {
	return NewCheckinService(memory.New(), nil)
}

func registerMember(t *testing.T, s *CheckinService, name string) core.Member {
	t.Helper()
	member, err := s.RegisterMember(context.Background(), records.CreateMemberParams{Name: name})
	if err != nil {
		t.Fatalf("register %s: %v", name, err)
	}
	return member
}

func TestRegisterMemberValidation(t *testing.T) {
	s := newTestService()
	ctx := context.Background()

	if _, err := s.RegisterMember(ctx, records.CreateMemberParams{Name: ""}); !errors.Is(err, core.ErrEmptyName) {
		t.Fatalf("expected ErrEmptyName, got %v", err)
	}

	member, err := s.RegisterMember(ctx, records.CreateMemberParams{
		Name:  "Alice Johnson",
		Email: "alice@example.com",
	})
	if err != nil {
		t.Fatalf("register member: %v", err)
	}
	if member.ID == 0 {
		t.Fatal("expected assigned id")
	}

	got, err := s.GetMember(ctx, member.ID)
	if err != nil {
		t.Fatalf("get member: %v", err)
	}
	if got.Name != "Alice Johnson" {
		t.Fatalf("expected Alice Johnson, got %q", got.Name)
	}
}

func TestLogEntryUnknownMember(t *testing.T) {
	s := newTestService()

	_, _, err := s.LogEntry(context.Background(), 42, "Court A")
	if !errors.Is(err, records.ErrMemberNotFound) {
		t.Fatalf("expected ErrMemberNotFound, got %v", err)
	}
}

func TestLogEntryValidationBeforeLookup(t *testing.T) {
	s := newTestService()

	// Invalid notes on an unknown member: the validation error wins.
	long := make([]byte, 256)
	for i := range long {
		long[i] = 'x'
	}
	_, _, err := s.LogEntry(context.Background(), 42, string(long))
	if !errors.Is(err, core.ErrNotesTooLong) {
		t.Fatalf("expected ErrNotesTooLong, got %v", err)
	}
}

func TestLogPayment(t *testing.T) {
	s := newTestService()
	ctx := context.Background()
	member := registerMember(t, s, "Alice Johnson")

	amount, err := core.ParseAmount("25.50")
	if err != nil {
		t.Fatalf("parse amount: %v", err)
	}
	payment, got, err := s.LogPayment(ctx, member.ID, amount, "Court rental fee")
	if err != nil {
		t.Fatalf("log payment: %v", err)
	}
	if got.Name != "Alice Johnson" {
		t.Fatalf("expected member back, got %+v", got)
	}
	if payment.Amount.String() != "25.50" {
		t.Fatalf("expected 25.50, got %s", payment.Amount.String())
	}

	_, payments, err := s.PaymentHistory(ctx, member.ID, 0, records.DefaultListLimit)
	if err != nil {
		t.Fatalf("payment history: %v", err)
	}
	if len(payments) != 1 || payments[0].Amount.Cents != 2550 {
		t.Fatalf("unexpected history: %+v", payments)
	}
}

func TestLogPaymentRejectsInvalidAmount(t *testing.T) {
	s := newTestService()
	member := registerMember(t, s, "Alice Johnson")

	_, _, err := s.LogPayment(context.Background(), member.ID, core.MoneyFromCents(100001), "")
	if !errors.Is(err, core.ErrAmountTooLarge) {
		t.Fatalf("expected ErrAmountTooLarge, got %v", err)
	}
}

func TestMemberSummary(t *testing.T) {
	s := newTestService()
	ctx := context.Background()
	member := registerMember(t, s, "Alice Johnson")

	for _, notes := range []string{"Court A", "Court B", "Court A"} {
		if _, _, err := s.LogEntry(ctx, member.ID, notes); err != nil {
			t.Fatalf("log entry: %v", err)
		}
	}
	for _, a := range []string{"10.00", "20.50", "30.00"} {
		amount, err := core.ParseAmount(a)
		if err != nil {
			t.Fatalf("parse %q: %v", a, err)
		}
		if _, _, err := s.LogPayment(ctx, member.ID, amount, ""); err != nil {
			t.Fatalf("log payment %q: %v", a, err)
		}
	}

	got, stats, err := s.MemberSummary(ctx, member.ID)
	if err != nil {
		t.Fatalf("member summary: %v", err)
	}
	if got.ID != member.ID {
		t.Fatalf("expected member %d, got %d", member.ID, got.ID)
	}
	if stats.TotalEntries != 3 || stats.TotalPayments != 3 {
		t.Fatalf("unexpected counts: %+v", stats)
	}
	if stats.TotalAmountPaid.String() != "60.50" {
		t.Fatalf("expected total 60.50, got %s", stats.TotalAmountPaid.String())
	}
	if stats.LastEntry.IsZero() || stats.LastPayment.IsZero() {
		t.Fatalf("expected activity timestamps: %+v", stats)
	}
}

func TestMemberSummaryUnknownMember(t *testing.T) {
	s := newTestService()

	_, _, err := s.MemberSummary(context.Background(), 42)
	if !errors.Is(err, records.ErrMemberNotFound) {
		t.Fatalf("expected ErrMemberNotFound, got %v", err)
	}
}

func TestCloseNilComponents(t *testing.T) {
	s := &CheckinService{}

	if err := s.Close(); err != nil {
		t.Fatalf("Close should not return error with nil components: %v", err)
	}
}
