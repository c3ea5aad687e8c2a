package core

import "time"

// MemberStats aggregates a member's activity history. Zero-value timestamps
// mean the member has no entries or payments yet.
type MemberStats struct {
	TotalEntries    int
	TotalPayments   int
	TotalAmountPaid Money
	LastEntry       time.Time
	LastPayment     time.Time
}

// NewMemberStats computes stats over the given record slices. It is pure
// and order-independent: the amount total uses exact cents addition and the
// last timestamps are true maximums, so input ordering never changes the
// result.
func NewMemberStats(entries []EntryLog, payments []PaymentLog) MemberStats {
	stats := MemberStats{
		TotalEntries:  len(entries),
		TotalPayments: len(payments),
	}
	for _, e := range entries {
		if e.Timestamp.After(stats.LastEntry) {
			stats.LastEntry = e.Timestamp
		}
	}
	for _, p := range payments {
		stats.TotalAmountPaid = stats.TotalAmountPaid.Add(p.Amount)
		if p.Timestamp.After(stats.LastPayment) {
			stats.LastPayment = p.Timestamp
		}
	}
	return stats
}

// SumPayments returns the exact total of the given payments. With no
// payments the total is zero, which renders as "0.00".
func SumPayments(payments []PaymentLog) Money {
	var total Money
	for _, p := range payments {
		total = total.Add(p.Amount)
	}
	return total
}
