// Package insights is the aggregation-and-scoring engine: pure,
// synchronous functions that turn flat transaction snapshots into chart
// series, a rule-based financial health score, budget recommendations
// and income milestones. Nothing in this package does I/O or holds
// state; every call operates on the snapshot it is handed.
package insights

import (
	"errors"
	"math"
	"time"

	"savvy/internal/core"
)

const (
	WindowAll   Window = "all"
	WindowWeek  Window = "week"
	WindowMonth Window = "month"
	WindowYear  Window = "year"
)

// Window selects how far back in time a chart series reaches.
type Window string

// ErrInvalidInput marks non-finite or out-of-contract numeric input.
// The HTTP layer rejects amounts before they reach this package, so the
// pure functions here stay total; this sentinel is for callers that
// validate eagerly.
var ErrInvalidInput = errors.New("invalid numeric input")

// ParseWindow maps a query-string value onto a Window. Empty input
// means "all".
func ParseWindow(s string) (Window, error) {
	switch Window(s) {
	case "", WindowAll:
		return WindowAll, nil
	case WindowWeek, WindowMonth, WindowYear:
		return Window(s), nil
	default:
		return "", errors.New("unknown time window: " + s)
	}
}

// FilterByWindow returns the transactions dated on or after now minus
// the window, using calendar arithmetic in the dates' own location
// (local time by convention). WindowAll returns the input unchanged.
// Future-dated records are retained; only the lower bound is enforced.
func FilterByWindow(txs []core.Transaction, w Window, now time.Time) []core.Transaction {
	if w == WindowAll {
		return txs
	}

	var cutoff time.Time
	switch w {
	case WindowWeek:
		cutoff = now.AddDate(0, 0, -7)
	case WindowMonth:
		cutoff = now.AddDate(0, -1, 0)
	case WindowYear:
		cutoff = now.AddDate(-1, 0, 0)
	default:
		return txs
	}

	out := make([]core.Transaction, 0, len(txs))
	for _, tx := range txs {
		if !tx.Date.Before(cutoff) {
			out = append(out, tx)
		}
	}
	return out
}

// finite reports whether v is a usable amount. NaN and infinities are
// treated as zero by the total functions in this package.
func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// ValidateAmounts returns ErrInvalidInput if any value is non-finite.
func ValidateAmounts(vs ...float64) error {
	for _, v := range vs {
		if !finite(v) {
			return ErrInvalidInput
		}
	}
	return nil
}
