package storage

import (
	"fmt"
	"math"
	"strings"

	"acecheckin/internal/core"
)

// moneyFromColumn converts a scanned amount value to exact cents.
//
// The amount column has NUMERIC affinity, so SQLite hands back whichever
// storage class it kept: INTEGER for whole-dollar values, REAL for
// fractional ones, or text if a writer bypassed affinity conversion. Every
// branch recovers the original cents exactly; values that cannot be
// represented in two decimal places are reported as corruption rather than
// rounded.
func moneyFromColumn(v any) (core.Money, error) {
	switch x := v.(type) {
	case int64:
		const maxSafe = math.MaxInt64 / 100
		if x > maxSafe || x < -maxSafe {
			return core.Money{}, fmt.Errorf("amount %d overflows cents", x)
		}
		return core.MoneyFromCents(x * 100), nil
	case float64:
		cents := math.Round(x * 100)
		// A REAL written by the decimal migration is the double nearest to
		// cents/100, so this division reproduces it bit for bit.
		if float64(int64(cents))/100 != x {
			return core.Money{}, fmt.Errorf("amount %v is not an exact 2-decimal value", x)
		}
		return core.MoneyFromCents(int64(cents)), nil
	case string:
		return parseStoredAmount(x)
	case []byte:
		return parseStoredAmount(string(x))
	case nil:
		return core.Money{}, fmt.Errorf("amount is NULL")
	default:
		return core.Money{}, fmt.Errorf("unsupported amount column type %T", v)
	}
}

// parseStoredAmount reads a decimal amount out of column text. Unlike
// core.ParseAmount it applies no business bounds: storage reads must not
// reject historical rows, only malformed ones.
func parseStoredAmount(s string) (core.Money, error) {
	s = strings.TrimSpace(s)
	body := s
	neg := strings.HasPrefix(body, "-")
	if neg {
		body = body[1:]
	}

	intPart, fracPart, _ := strings.Cut(body, ".")
	if intPart == "" && fracPart == "" {
		return core.Money{}, fmt.Errorf("malformed stored amount %q", s)
	}

	var cents int64
	const maxSafe = math.MaxInt64 / 1000
	for _, r := range intPart {
		if r < '0' || r > '9' {
			return core.Money{}, fmt.Errorf("malformed stored amount %q", s)
		}
		if cents > maxSafe {
			return core.Money{}, fmt.Errorf("stored amount %q overflows cents", s)
		}
		cents = cents*10 + int64(r-'0')
	}
	if cents > math.MaxInt64/100 {
		return core.Money{}, fmt.Errorf("stored amount %q overflows cents", s)
	}
	cents *= 100

	for i, r := range fracPart {
		if r < '0' || r > '9' {
			return core.Money{}, fmt.Errorf("malformed stored amount %q", s)
		}
		switch i {
		case 0:
			cents += int64(r-'0') * 10
		case 1:
			cents += int64(r - '0')
		default:
			if r != '0' {
				return core.Money{}, fmt.Errorf("stored amount %q has more than 2 decimal places", s)
			}
		}
	}

	if neg {
		cents = -cents
	}
	return core.MoneyFromCents(cents), nil
}
