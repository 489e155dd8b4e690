package insights

import (
	"fmt"
	"math"
	"sort"

	"savvy/internal/core"
)

const (
	lowSavingsRate  = 0.10
	highSavingsRate = 0.50
)

// GenerateRecommendations produces ordered, human-readable budget
// advice from one period's income, its category expense totals, and a
// computed health score. Categories are ranked descending by absolute
// total with ties kept in first-seen order. The currency code only
// affects formatting of amounts inside messages.
//
// Zero income short-circuits to a single onboarding prompt.
func GenerateRecommendations(totalIncome float64, byCategory []SeriesPoint, hs HealthScore, currency string) []string {
	if totalIncome == 0 || !finite(totalIncome) {
		return []string{"Start by tracking your income to get personalized recommendations."}
	}

	var totalExpenses float64
	for _, c := range byCategory {
		totalExpenses += math.Abs(c.Amount.Float())
	}

	ranked := make([]SeriesPoint, len(byCategory))
	copy(ranked, byCategory)
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Amount.Abs() > ranked[j].Amount.Abs()
	})
	if len(ranked) > 3 {
		ranked = ranked[:3]
	}

	var recs []string
	switch hs.Status {
	case StatusExcellent:
		recs = append(recs,
			"Consider investing more of your surplus income for long-term growth.",
			"You could allocate more to retirement accounts or emergency savings.")
	case StatusGood:
		recs = append(recs, "You're on the right track. Try to maintain or slightly increase your savings rate.")
		if len(ranked) > 0 {
			recs = append(recs, fmt.Sprintf(
				"Keep an eye on your %s expenses which are your largest category.", ranked[0].Label))
		}
	case StatusFair:
		recs = append(recs, "Try to increase your income-to-expense ratio to at least 1.2.")
		if len(ranked) > 0 {
			percent := math.Abs(ranked[0].Amount.Float()) / totalIncome * 100
			recs = append(recs, fmt.Sprintf(
				"Consider reducing %s expenses which currently account for %.1f%% of your income.",
				ranked[0].Label, percent))
		}
	default: // needs-attention, critical
		recs = append(recs, "Focus on reducing expenses or increasing income to improve your financial health.")
		top := ranked
		if len(top) > 2 {
			top = top[:2]
		}
		for _, c := range top {
			recs = append(recs, fmt.Sprintf("Look for ways to reduce %s expenses (currently %s).",
				c.Label, core.FormatMoney(core.Money{Cents: c.Amount.Abs()}, currency)))
		}
	}

	if totalIncome > 0 && totalExpenses > 0 {
		savingsRate := (totalIncome - totalExpenses) / totalIncome
		if savingsRate < lowSavingsRate && hs.Status != StatusCritical {
			recs = append(recs, "Aim to save at least 10-20% of your income for financial security.")
		}
		if savingsRate > highSavingsRate {
			recs = append(recs, "You're saving a large portion of your income. Consider if you're meeting your lifestyle needs.")
		}
	}

	return recs
}
