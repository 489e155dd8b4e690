package insights

import (
	"sort"

	"savvy/internal/core"
)

const dailyBucketLimit = 14

type (
	// SeriesPoint is one derived chart tuple. Amount is the sum of
	// absolute values for the group; the currency label is carried
	// through unchanged. Mixed-currency inputs are summed arithmetically
	// without conversion, a deliberate carry-over from the lineage.
	SeriesPoint struct {
		Label    string     `json:"label"`
		Amount   core.Money `json:"amount"`
		Currency string     `json:"currency"`
	}

	// RadarPoint feeds the category radar chart.
	RadarPoint struct {
		Category string     `json:"category"`
		Amount   core.Money `json:"amount"`
	}

	// TreemapPoint feeds the treemap chart.
	TreemapPoint struct {
		Name string     `json:"name"`
		Size core.Money `json:"size"`
	}
)

// AggregateByCategory groups transactions by category (the income
// "source" shares the field), summing absolute amounts per group.
// Groups appear in first-occurrence order.
func AggregateByCategory(txs []core.Transaction, currency string) []SeriesPoint {
	totals := make(map[string]int64, len(txs))
	order := make([]string, 0, len(txs))
	for _, tx := range txs {
		if _, seen := totals[tx.Category]; !seen {
			order = append(order, tx.Category)
		}
		totals[tx.Category] += tx.Amount.Abs()
	}

	out := make([]SeriesPoint, 0, len(order))
	for _, label := range order {
		out = append(out, SeriesPoint{
			Label:    label,
			Amount:   core.Money{Cents: totals[label]},
			Currency: currency,
		})
	}
	return out
}

// BucketDaily groups transactions by calendar day key (YYYY-MM-DD),
// summing absolute amounts. Buckets are sorted ascending by key, which
// is chronological for zero-padded ISO keys, and truncated to the most
// recent 14 days.
func BucketDaily(txs []core.Transaction, currency string) []SeriesPoint {
	out := bucketBy(txs, currency, func(tx core.Transaction) string { return tx.Date.Key() })
	if len(out) > dailyBucketLimit {
		out = out[len(out)-dailyBucketLimit:]
	}
	return out
}

// BucketMonthly groups transactions by calendar month key (YYYY-MM),
// summing absolute amounts, sorted ascending. No truncation.
func BucketMonthly(txs []core.Transaction, currency string) []SeriesPoint {
	return bucketBy(txs, currency, func(tx core.Transaction) string { return tx.Date.MonthKey() })
}

func bucketBy(txs []core.Transaction, currency string, key func(core.Transaction) string) []SeriesPoint {
	totals := make(map[string]int64, len(txs))
	for _, tx := range txs {
		totals[key(tx)] += tx.Amount.Abs()
	}

	out := make([]SeriesPoint, 0, len(totals))
	for k, cents := range totals {
		out = append(out, SeriesPoint{Label: k, Amount: core.Money{Cents: cents}, Currency: currency})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Label < out[j].Label })
	return out
}

// RadarSeries reshapes category totals for the radar chart.
func RadarSeries(txs []core.Transaction, currency string) []RadarPoint {
	cats := AggregateByCategory(txs, currency)
	out := make([]RadarPoint, 0, len(cats))
	for _, c := range cats {
		out = append(out, RadarPoint{Category: c.Label, Amount: c.Amount})
	}
	return out
}

// TreemapSeries reshapes category totals for the treemap chart.
func TreemapSeries(txs []core.Transaction, currency string) []TreemapPoint {
	cats := AggregateByCategory(txs, currency)
	out := make([]TreemapPoint, 0, len(cats))
	for _, c := range cats {
		out = append(out, TreemapPoint{Name: c.Label, Size: c.Amount})
	}
	return out
}

// SumAmounts returns the arithmetic total of signed amounts and the
// total of absolute amounts, in cents.
func SumAmounts(txs []core.Transaction) (signed, absolute int64) {
	for _, tx := range txs {
		signed += tx.Amount.Cents
		absolute += tx.Amount.Abs()
	}
	return signed, absolute
}
