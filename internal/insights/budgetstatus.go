package insights

import (
	"fmt"
	"time"

	"savvy/internal/core"
)

const (
	BudgetNoData   BudgetState = "no-data"
	BudgetWithin   BudgetState = "within"
	BudgetWarning  BudgetState = "warning"
	BudgetExceeded BudgetState = "exceeded"
)

type (
	BudgetState string

	// BudgetUsage summarizes spending against the active budget for the
	// current budget period.
	BudgetUsage struct {
		TotalBudget core.Money  `json:"totalBudget"`
		TotalSpent  core.Money  `json:"totalSpent"`
		Percentage  float64     `json:"percentage"` // capped at 100
		State       BudgetState `json:"state"`
		Remaining   core.Money  `json:"remaining"` // negative when exceeded
	}
)

// warning kicks in above 75% of budget, exceeded above 100%.
const budgetWarningPercent = 75

// PeriodStart returns the start of the current budget period: the most
// recent Sunday for weekly budgets, the first of the month for monthly,
// January 1st for yearly. Unknown periods fall back to monthly.
func PeriodStart(p core.BudgetPeriod, now time.Time) time.Time {
	switch p {
	case core.Weekly:
		return time.Date(now.Year(), now.Month(), now.Day()-int(now.Weekday()), 0, 0, 0, 0, now.Location())
	case core.Yearly:
		return time.Date(now.Year(), 1, 1, 0, 0, 0, 0, now.Location())
	default:
		return time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	}
}

// EvaluateBudget computes spending against the active budget over its
// current period. A nil budget yields the no-data state.
func EvaluateBudget(b *core.Budget, expenses []core.Transaction, now time.Time) BudgetUsage {
	if b == nil {
		return BudgetUsage{State: BudgetNoData}
	}

	totalBudget := b.Amount.Cents
	if totalBudget < 0 {
		totalBudget = 0
	}

	start := PeriodStart(b.Period, now)
	var spent int64
	for _, tx := range expenses {
		if tx.Kind != core.Expense {
			continue
		}
		if tx.Date.Before(start) || tx.Date.After(now) {
			continue
		}
		spent += tx.Amount.Abs()
	}

	var percentage float64
	if totalBudget > 0 {
		percentage = float64(spent) / float64(totalBudget) * 100
		if percentage > 100 {
			percentage = 100
		}
	}

	state := BudgetWithin
	switch {
	case totalBudget > 0 && spent > totalBudget:
		state = BudgetExceeded
	case percentage > budgetWarningPercent:
		state = BudgetWarning
	}

	return BudgetUsage{
		TotalBudget: core.Money{Cents: totalBudget},
		TotalSpent:  core.Money{Cents: spent},
		Percentage:  percentage,
		State:       state,
		Remaining:   core.Money{Cents: totalBudget - spent},
	}
}

// BudgetRecommendations turns a budget evaluation plus category totals
// into short actionable strings, branched on the usage state. Category
// totals should cover the same snapshot the usage was computed from.
func BudgetRecommendations(usage BudgetUsage, byCategory []SeriesPoint, currency string) []string {
	if usage.State == BudgetNoData {
		return []string{"Start by setting your first budget to track spending effectively."}
	}

	var top *SeriesPoint
	for i := range byCategory {
		if top == nil || byCategory[i].Amount.Abs() > top.Amount.Abs() {
			top = &byCategory[i]
		}
	}

	var recs []string
	switch usage.State {
	case BudgetExceeded:
		recs = append(recs, "Your spending has exceeded the budget. Consider reducing expenses in your top spending categories.")
		if top != nil {
			recs = append(recs, fmt.Sprintf("Focus on reducing %s expenses (%s this period).",
				top.Label, core.FormatMoney(top.Amount, currency)))
		}
	case BudgetWarning:
		recs = append(recs, "You're approaching your budget limit. Monitor spending carefully for the remainder of this period.")
		if top != nil {
			recs = append(recs, fmt.Sprintf("Consider limiting %s expenses for the rest of this period.", top.Label))
		}
	default:
		recs = append(recs, "Great job staying within budget! Consider allocating surplus to savings or emergency fund.")
		if usage.Percentage < 50 {
			recs = append(recs, "You're using less than 50% of your budget. You might be able to increase savings or investments.")
		}
	}
	return recs
}
