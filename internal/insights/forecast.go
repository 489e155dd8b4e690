package insights

import (
	"sort"
	"time"

	"savvy/internal/core"
)

// ForecastPoint is one month in the income projection series. Forecast
// is false for historical points and true for projected ones.
type ForecastPoint struct {
	Year     int        `json:"year"`
	Month    time.Month `json:"month"`
	Amount   core.Money `json:"amount"`
	Forecast bool       `json:"forecast"`
}

// MonthlyIncomeSeries groups income transactions into chronologically
// sorted monthly totals. Expense records are ignored.
func MonthlyIncomeSeries(txs []core.Transaction) []ForecastPoint {
	type ym struct {
		year  int
		month time.Month
	}
	totals := make(map[ym]int64)
	for _, tx := range txs {
		if tx.Kind != core.Income {
			continue
		}
		k := ym{year: tx.Date.Year(), month: tx.Date.Month()}
		totals[k] += tx.Amount.Cents
	}

	out := make([]ForecastPoint, 0, len(totals))
	for k, cents := range totals {
		out = append(out, ForecastPoint{Year: k.year, Month: k.month, Amount: core.Money{Cents: cents}})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Year != out[j].Year {
			return out[i].Year < out[j].Year
		}
		return out[i].Month < out[j].Month
	})
	return out
}

// AverageGrowthRate computes the mean period-over-period growth rate
// across consecutive monthly totals. Pairs whose previous total is zero
// contribute nothing to the numerator but still count in the
// denominator, mirroring how the projection has always behaved. The
// second return is false when fewer than two points exist; callers then
// skip projection entirely instead of dividing by zero.
func AverageGrowthRate(history []ForecastPoint) (float64, bool) {
	if len(history) < 2 {
		return 0, false
	}
	var total float64
	for i := 1; i < len(history); i++ {
		prev := history[i-1].Amount.Float()
		cur := history[i].Amount.Float()
		if prev != 0 {
			total += (cur - prev) / prev
		}
	}
	return total / float64(len(history)-1), true
}

// ProjectIncome appends months projected points to a chronologically
// sorted history by compounding the last known amount at the average
// growth rate. Fewer than two historical points yields the history
// unchanged. Month rollover past December wraps to January of the next
// year.
func ProjectIncome(history []ForecastPoint, months int) []ForecastPoint {
	rate, ok := AverageGrowthRate(history)
	if !ok || months <= 0 {
		return history
	}

	out := make([]ForecastPoint, len(history), len(history)+months)
	copy(out, history)

	last := history[len(history)-1]
	year, month := last.Year, int(last.Month)
	amount := last.Amount.Float()
	for i := 0; i < months; i++ {
		month++
		if month > 12 {
			month = 1
			year++
		}
		amount *= 1 + rate
		out = append(out, ForecastPoint{
			Year:     year,
			Month:    time.Month(month),
			Amount:   core.FromFloat(amount),
			Forecast: true,
		})
	}
	return out
}
