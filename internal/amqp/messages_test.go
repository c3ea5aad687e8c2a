package amqp

import (
	"strings"
	"testing"
	"time"

	"acecheckin/internal/core"
)

func TestPaymentEventCarriesRenderedAmount(t *testing.T) {
	payment := core.PaymentLog{
		ID:        7,
		MemberID:  3,
		Amount:    core.MoneyFromCents(2550),
		Timestamp: time.Date(2025, 8, 1, 10, 0, 0, 0, time.UTC),
		Notes:     "Court rental fee",
	}

	event := NewPaymentLoggedEvent(payment, "Alice Johnson")
	if event.Kind != KindPaymentLogged {
		t.Fatalf("expected kind %q, got %q", KindPaymentLogged, event.Kind)
	}
	if event.Amount != "25.50" {
		t.Fatalf("expected amount %q, got %q", "25.50", event.Amount)
	}

	body, err := event.ToJSON()
	if err != nil {
		t.Fatalf("marshal event: %v", err)
	}
	decoded, err := EventFromJSON(body)
	if err != nil {
		t.Fatalf("unmarshal event: %v", err)
	}
	if *decoded != *event {
		t.Fatalf("event did not round trip: %+v vs %+v", decoded, event)
	}
}

func TestEntryEventOmitsAmount(t *testing.T) {
	entry := core.EntryLog{
		ID:        1,
		MemberID:  3,
		Timestamp: time.Date(2025, 8, 1, 9, 0, 0, 0, time.UTC),
	}

	event := NewEntryLoggedEvent(entry, "Alice Johnson")
	body, err := event.ToJSON()
	if err != nil {
		t.Fatalf("marshal event: %v", err)
	}
	if strings.Contains(string(body), "amount") {
		t.Fatalf("entry event must not carry an amount field: %s", body)
	}
	if event.Kind != KindEntryLogged {
		t.Fatalf("expected kind %q, got %q", KindEntryLogged, event.Kind)
	}
}

func TestEventFromJSONMalformed(t *testing.T) {
	if _, err := EventFromJSON([]byte("{not json")); err == nil {
		t.Fatal("expected error for malformed payload")
	}
}
