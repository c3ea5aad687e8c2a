// Package core provides the domain records and exact money handling shared
// by every backend and transport.
//
// Money is integer cents end to end: parsing, arithmetic, and rendering
// never touch binary floating point.
package core

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"
)

// MaxAmountCents is the upper bound for a single payment amount: 1000.00,
// inclusive.
const MaxAmountCents int64 = 100_000

// Money is an exact monetary amount stored as integer cents (value x 100).
type Money struct {
	Cents int64
}

// MoneyFromCents wraps a trusted cents value, e.g. one read back from
// storage or carried over from the legacy integer-cents schema.
func MoneyFromCents(cents int64) Money {
	return Money{Cents: cents}
}

// ParseAmount validates a decimal amount string and returns it as Money.
//
// The input must be a plain unsigned decimal with a dot separator
// (surrounding whitespace is ignored). The value must be greater than zero,
// at most 1000.00, and must not carry more than 2 significant fractional
// digits: extra trailing zeros are accepted ("25.500" is 25.50), any other
// third digit is not ("25.555").
//
// Checks run in a fixed order: unparseable input, then excess precision,
// then the positive bound, then the maximum. "1000.001" therefore fails
// with ErrAmountPrecision, and "0.000" with ErrAmountNotPositive.
//
// Exponent forms ("2.5e1") are rejected as unparseable.
func ParseAmount(s string) (Money, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Money{}, ErrAmountNotNumber
	}

	body := s
	neg := strings.HasPrefix(body, "-")
	if neg {
		body = body[1:]
	}

	parts := strings.Split(body, ".")
	if len(parts) > 2 {
		return Money{}, ErrAmountNotNumber
	}
	intPart := parts[0]
	fracPart := ""
	if len(parts) == 2 {
		fracPart = parts[1]
	}
	if intPart == "" && fracPart == "" {
		return Money{}, ErrAmountNotNumber
	}
	if intPart == "" {
		intPart = "0"
	}
	for _, r := range intPart {
		if !unicode.IsDigit(r) {
			return Money{}, ErrAmountNotNumber
		}
	}
	for _, r := range fracPart {
		if !unicode.IsDigit(r) {
			return Money{}, ErrAmountNotNumber
		}
	}

	// Fractional digits past the second must all be zero.
	for i := 2; i < len(fracPart); i++ {
		if fracPart[i] != '0' {
			return Money{}, ErrAmountPrecision
		}
	}

	iv, err := strconv.ParseInt(intPart, 10, 64)
	if err != nil {
		return Money{}, ErrAmountNotNumber
	}
	// Prevent overflow when multiplying by 100
	const maxSafeInt64 = (1<<63 - 1) / 100
	if iv > maxSafeInt64 {
		if neg {
			return Money{}, ErrAmountNotPositive
		}
		return Money{}, ErrAmountTooLarge
	}

	var fracCents int64
	if len(fracPart) > 0 {
		fracCents = int64(fracPart[0]-'0') * 10
		if len(fracPart) > 1 {
			fracCents += int64(fracPart[1] - '0')
		}
	}

	cents := iv*100 + fracCents
	if neg || cents <= 0 {
		return Money{}, ErrAmountNotPositive
	}
	if cents > MaxAmountCents {
		return Money{}, ErrAmountTooLarge
	}
	return Money{Cents: cents}, nil
}

// Add returns the exact sum of the two amounts.
func (m Money) Add(o Money) Money {
	return Money{Cents: m.Cents + o.Cents}
}

// IsZero reports whether the amount is exactly zero.
func (m Money) IsZero() bool {
	return m.Cents == 0
}

// Validate checks the payment bounds: greater than zero, at most 1000.00.
func (m Money) Validate() error {
	if m.Cents <= 0 {
		return ErrAmountNotPositive
	}
	if m.Cents > MaxAmountCents {
		return ErrAmountTooLarge
	}
	return nil
}

// String renders the amount with exactly two fractional digits: "25.50".
func (m Money) String() string {
	cents := m.Cents
	sign := ""
	if cents < 0 {
		sign = "-"
		cents = -cents
	}
	return fmt.Sprintf("%s%d.%02d", sign, cents/100, cents%100)
}

// MarshalJSON renders the amount as a decimal string so clients never
// receive a binary float.
func (m Money) MarshalJSON() ([]byte, error) {
	return []byte(`"` + m.String() + `"`), nil
}
