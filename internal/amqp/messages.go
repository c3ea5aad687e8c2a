package amqp

import (
	"encoding/json"
	"time"

	"acecheckin/internal/core"
)

// Event kinds carried on the activity feed.
const (
	KindEntryLogged   = "entry.logged"
	KindPaymentLogged = "payment.logged"
)

// Event is the activity feed message published after a check-in or payment
// has been saved. It carries everything a feed consumer needs, so workers
// never read the database.
type Event struct {
	Kind       string    `json:"kind"`
	ID         int64     `json:"id"`
	MemberID   int64     `json:"member_id"`
	MemberName string    `json:"member_name"`
	Amount     string    `json:"amount,omitempty"` // payments only, e.g. "25.50"
	Notes      string    `json:"notes,omitempty"`
	Timestamp  time.Time `json:"timestamp"`
}

func NewEntryLoggedEvent(entry core.EntryLog, memberName string) *Event {
	return &Event{
		Kind:       KindEntryLogged,
		ID:         entry.ID,
		MemberID:   entry.MemberID,
		MemberName: memberName,
		Notes:      entry.Notes,
		Timestamp:  entry.Timestamp,
	}
}

func NewPaymentLoggedEvent(payment core.PaymentLog, memberName string) *Event {
	return &Event{
		Kind:       KindPaymentLogged,
		ID:         payment.ID,
		MemberID:   payment.MemberID,
		MemberName: memberName,
		Amount:     payment.Amount.String(),
		Notes:      payment.Notes,
		Timestamp:  payment.Timestamp,
	}
}

// ToJSON converts the event to JSON bytes
func (e *Event) ToJSON() ([]byte, error) {
	return json.Marshal(e)
}

// EventFromJSON creates an event from JSON bytes
func EventFromJSON(data []byte) (*Event, error) {
	var event Event
	if err := json.Unmarshal(data, &event); err != nil {
		return nil, err
	}
	return &event, nil
}
