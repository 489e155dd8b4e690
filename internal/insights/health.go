package insights

import "math"

const (
	StatusExcellent      HealthStatus = "excellent"
	StatusGood           HealthStatus = "good"
	StatusFair           HealthStatus = "fair"
	StatusNeedsAttention HealthStatus = "needs-attention"
	StatusCritical       HealthStatus = "critical"
)

type (
	HealthStatus string

	// HealthScore is a rule-based classification of one period's income
	// versus expenses. It has no persisted identity and is recomputed
	// per view.
	HealthScore struct {
		Score   int          `json:"score"`
		Status  HealthStatus `json:"status"`
		Message string       `json:"message"`
	}

	scoreBand struct {
		minRatio float64
		score    int
		status   HealthStatus
		message  string
	}
)

// scoreBands is evaluated top to bottom; the first band whose minimum
// ratio is met wins. Lifted into a table so thresholds can be tuned and
// tested without touching control flow.
var scoreBands = []scoreBand{
	{2.5, 95, StatusExcellent, "Excellent! You're saving a significant portion of your income."},
	{1.5, 85, StatusGood, "Good job! You're maintaining a healthy financial balance."},
	{1.2, 70, StatusGood, "You're on the right track, but could save a bit more."},
	{1.0, 50, StatusFair, "You're breaking even. Try to increase your savings rate."},
	{0.8, 30, StatusNeedsAttention, "Caution: You're spending more than you earn."},
	{math.Inf(-1), 10, StatusCritical, "Warning: Your expenses significantly exceed your income."},
}

// insufficientDataScore is the sentinel returned when either side of
// the ratio is zero (or not finite): "not enough data", not a genuine
// zero-ratio evaluation.
var insufficientDataScore = HealthScore{
	Score:   50,
	Status:  StatusFair,
	Message: "Start tracking your finances to get an accurate health score.",
}

// CalculateHealthScore classifies the income-to-expense ratio of one
// period. The result depends only on the ratio: scaling both inputs by
// the same positive constant yields an identical score. A zero total on
// either side returns the neutral sentinel rather than evaluating a
// ratio, and the zero denominator never surfaces as NaN.
func CalculateHealthScore(totalIncome, totalExpenses float64) HealthScore {
	if !finite(totalIncome) || !finite(totalExpenses) {
		return insufficientDataScore
	}
	if totalIncome == 0 || totalExpenses == 0 {
		return insufficientDataScore
	}

	ratio := totalIncome / math.Abs(totalExpenses)
	for _, band := range scoreBands {
		if ratio >= band.minRatio {
			return HealthScore{Score: band.score, Status: band.status, Message: band.message}
		}
	}
	// Unreachable: the last band accepts any finite ratio.
	return insufficientDataScore
}
