package http

import (
	"net/http"
	"time"

	"savvy/internal/auth"
	"savvy/internal/core"
	"savvy/internal/insights"
)

// forecastMonths is how far the income projection reaches past the last
// recorded month.
const forecastMonths = 3

type overviewResponse struct {
	Window          string                   `json:"window"`
	Currency        string                   `json:"currency"`
	TotalIncome     core.Money               `json:"totalIncome"`
	TotalExpenses   core.Money               `json:"totalExpenses"`
	Net             core.Money               `json:"net"`
	HealthScore     insights.HealthScore     `json:"healthScore"`
	Recommendations []string                 `json:"recommendations"`
	Milestones      []insights.Milestone     `json:"milestones"`
	Budget          insights.BudgetUsage     `json:"budget"`
	BudgetAdvice    []string                 `json:"budgetAdvice"`
	Forecast        []insights.ForecastPoint `json:"forecast"`
}

type chartsResponse struct {
	Window     string                  `json:"window"`
	Currency   string                  `json:"currency"`
	ByCategory []insights.SeriesPoint  `json:"byCategory"`
	Daily      []insights.SeriesPoint  `json:"daily"`
	Monthly    []insights.SeriesPoint  `json:"monthly"`
	Radar      []insights.RadarPoint   `json:"radar"`
	Treemap    []insights.TreemapPoint `json:"treemap"`
}

func (s *Server) handleInsightsOverview(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserIDFromContext(r.Context())

	window, err := insights.ParseWindow(r.URL.Query().Get("window"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	cacheKey := userID + ":overview:" + string(window)
	if cached, ok := s.overviewCache.Get(cacheKey); ok {
		writeJSON(w, http.StatusOK, cached)
		return
	}

	txs, err := s.transactions.List(r.Context(), userID)
	if err != nil {
		handleDomainError(w, r, err)
		return
	}

	budgets, err := s.planning.ListBudgets(r.Context(), userID)
	if err != nil {
		handleDomainError(w, r, err)
		return
	}

	now := time.Now()
	filtered := insights.FilterByWindow(txs, window, now)
	currency := s.userCurrency(filtered)

	expenses := make([]core.Transaction, 0, len(filtered))
	for _, tx := range filtered {
		if tx.Kind == core.Expense {
			expenses = append(expenses, tx)
		}
	}

	// SumAmounts gives the signed net and the absolute turnover; income
	// and expense totals fall out of the pair.
	signed, absolute := insights.SumAmounts(filtered)
	incomeCents := (absolute + signed) / 2
	expenseCents := (absolute - signed) / 2

	hs := insights.CalculateHealthScore(
		core.Money{Cents: incomeCents}.Float(),
		core.Money{Cents: expenseCents}.Float(),
	)

	byCategory := insights.AggregateByCategory(expenses, currency)

	var milestones []insights.Milestone
	if current, previous, lifetime, ok := insights.MilestoneInputs(txs); ok {
		milestones = insights.CheckIncomeMilestones(current, previous, lifetime)
	}

	usage := insights.EvaluateBudget(activeBudget(budgets), expenses, now)

	history := insights.MonthlyIncomeSeries(txs)
	forecast := insights.ProjectIncome(history, forecastMonths)

	resp := overviewResponse{
		Window:          string(window),
		Currency:        currency,
		TotalIncome:     core.Money{Cents: incomeCents},
		TotalExpenses:   core.Money{Cents: expenseCents},
		Net:             core.Money{Cents: signed},
		HealthScore:     hs,
		Recommendations: insights.GenerateRecommendations(core.Money{Cents: incomeCents}.Float(), byCategory, hs, currency),
		Milestones:      milestones,
		Budget:          usage,
		BudgetAdvice:    insights.BudgetRecommendations(usage, byCategory, currency),
		Forecast:        forecast,
	}

	s.overviewCache.Set(cacheKey, resp)
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleInsightsCharts(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserIDFromContext(r.Context())

	window, err := insights.ParseWindow(r.URL.Query().Get("window"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	cacheKey := userID + ":charts:" + string(window)
	if cached, ok := s.chartsCache.Get(cacheKey); ok {
		writeJSON(w, http.StatusOK, cached)
		return
	}

	txs, err := s.transactions.List(r.Context(), userID)
	if err != nil {
		handleDomainError(w, r, err)
		return
	}

	filtered := insights.FilterByWindow(txs, window, time.Now())
	currency := s.userCurrency(filtered)

	expenses := make([]core.Transaction, 0, len(filtered))
	for _, tx := range filtered {
		if tx.Kind == core.Expense {
			expenses = append(expenses, tx)
		}
	}

	resp := chartsResponse{
		Window:     string(window),
		Currency:   currency,
		ByCategory: insights.AggregateByCategory(expenses, currency),
		Daily:      insights.BucketDaily(expenses, currency),
		Monthly:    insights.BucketMonthly(expenses, currency),
		Radar:      insights.RadarSeries(expenses, currency),
		Treemap:    insights.TreemapSeries(expenses, currency),
	}

	s.chartsCache.Set(cacheKey, resp)
	writeJSON(w, http.StatusOK, resp)
}

// userCurrency picks the display currency from the snapshot, falling
// back to the server default when the user has no records yet.
func (s *Server) userCurrency(txs []core.Transaction) string {
	if len(txs) > 0 {
		return txs[0].Currency
	}
	return s.defaultCurrency
}

// activeBudget is the most recently created budget; the rest are kept
// but not evaluated.
func activeBudget(budgets []core.Budget) *core.Budget {
	var active *core.Budget
	for i := range budgets {
		if active == nil || budgets[i].CreatedAt.After(active.CreatedAt) {
			active = &budgets[i]
		}
	}
	return active
}
