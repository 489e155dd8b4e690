package insights

import (
	"fmt"
	"sort"
	"time"

	"savvy/internal/core"
)

const (
	MilestoneIncome MilestoneType = "income"
	MilestoneSaving MilestoneType = "saving"
	MilestoneRatio  MilestoneType = "ratio"
)

type (
	MilestoneType string

	// Milestone is a transient notification; nothing persists it.
	Milestone struct {
		Achieved bool          `json:"achieved"`
		Message  string        `json:"message"`
		Type     MilestoneType `json:"type"`
		Amount   core.Money    `json:"amount,omitempty"`
	}
)

// aboveAverageFactor triggers the "higher than your average" milestone.
const aboveAverageFactor = 1.25

// lifetimeMilestones are cumulative income thresholds in whole currency
// units, ascending.
var lifetimeMilestones = []float64{10_000, 50_000, 100_000, 250_000, 500_000, 1_000_000}

// CheckIncomeMilestones detects income milestones for the current
// period. Amounts are in whole currency units. Results keep check
// order: above-average first, then new record, then at most one
// lifetime threshold: the highest threshold newly crossed by the
// current period, i.e. lifetime-current < t <= lifetime. With no prior
// periods the result is always empty.
func CheckIncomeMilestones(currentMonthIncome float64, previousMonthsIncome []float64, totalLifetimeIncome float64) []Milestone {
	var milestones []Milestone

	if len(previousMonthsIncome) == 0 {
		return milestones
	}
	if !finite(currentMonthIncome) || !finite(totalLifetimeIncome) {
		return milestones
	}

	var sum, prevMax float64
	for i, v := range previousMonthsIncome {
		if !finite(v) {
			v = 0
		}
		sum += v
		if i == 0 || v > prevMax {
			prevMax = v
		}
	}
	avg := sum / float64(len(previousMonthsIncome))

	if avg > 0 && currentMonthIncome >= avg*aboveAverageFactor {
		pct := (currentMonthIncome/avg - 1) * 100
		milestones = append(milestones, Milestone{
			Achieved: true,
			Message:  fmt.Sprintf("Congratulations! Your income this month is %.0f%% higher than your average.", pct),
			Type:     MilestoneIncome,
			Amount:   core.FromFloat(currentMonthIncome),
		})
	}

	if currentMonthIncome > prevMax {
		milestones = append(milestones, Milestone{
			Achieved: true,
			Message:  "New record! This is your highest monthly income so far.",
			Type:     MilestoneIncome,
			Amount:   core.FromFloat(currentMonthIncome),
		})
	}

	previousTotal := totalLifetimeIncome - currentMonthIncome
	for i := len(lifetimeMilestones) - 1; i >= 0; i-- {
		t := lifetimeMilestones[i]
		if previousTotal < t && totalLifetimeIncome >= t {
			milestones = append(milestones, Milestone{
				Achieved: true,
				Message:  fmt.Sprintf("You've reached a lifetime income milestone of %s!", core.FormatMoney(core.FromFloat(t), "")),
				Type:     MilestoneIncome,
				Amount:   core.FromFloat(t),
			})
			break
		}
	}

	return milestones
}

// MilestoneInputs splits income transactions into the shape the
// detector wants: the latest month's total, all earlier monthly totals
// in chronological order, and the lifetime total, all in whole currency
// units. ok is false when no income exists at all.
func MilestoneInputs(txs []core.Transaction) (current float64, previous []float64, lifetime float64, ok bool) {
	type ym struct {
		year  int
		month time.Month
	}
	totals := make(map[ym]int64)
	for _, tx := range txs {
		if tx.Kind != core.Income {
			continue
		}
		totals[ym{tx.Date.Year(), tx.Date.Month()}] += tx.Amount.Cents
	}
	if len(totals) == 0 {
		return 0, nil, 0, false
	}

	keys := make([]ym, 0, len(totals))
	for k := range totals {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].year != keys[j].year {
			return keys[i].year < keys[j].year
		}
		return keys[i].month < keys[j].month
	})

	for _, k := range keys[:len(keys)-1] {
		previous = append(previous, core.Money{Cents: totals[k]}.Float())
	}
	current = core.Money{Cents: totals[keys[len(keys)-1]]}.Float()
	for _, cents := range totals {
		lifetime += core.Money{Cents: cents}.Float()
	}
	return current, previous, lifetime, true
}
