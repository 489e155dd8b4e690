package http

import (
	"net/http"
	"time"

	"savvy/internal/auth"
	"savvy/internal/core"
	"savvy/internal/insights"
)

// snapshot is one user's transactions loaded and window-filtered for a
// single insight request.
type snapshot struct {
	all      []core.Transaction
	filtered []core.Transaction
	expenses []core.Transaction
	income   []core.Transaction
	currency string
	window   insights.Window
	now      time.Time
}

// loadSnapshot parses the window query, fetches the user's transactions
// and splits them by kind. On failure it writes the response itself and
// returns ok=false.
func (s *Server) loadSnapshot(w http.ResponseWriter, r *http.Request) (snapshot, bool) {
	userID := auth.UserIDFromContext(r.Context())

	window, err := insights.ParseWindow(r.URL.Query().Get("window"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return snapshot{}, false
	}

	txs, err := s.transactions.List(r.Context(), userID)
	if err != nil {
		handleDomainError(w, r, err)
		return snapshot{}, false
	}

	snap := snapshot{all: txs, window: window, now: time.Now()}
	snap.filtered = insights.FilterByWindow(txs, window, snap.now)
	for _, tx := range snap.filtered {
		if tx.Kind == core.Expense {
			snap.expenses = append(snap.expenses, tx)
		} else {
			snap.income = append(snap.income, tx)
		}
	}
	snap.currency = s.userCurrency(snap.filtered)
	return snap, true
}

// chartInput selects the transactions a chart series is built from.
// kind=income charts income sources, anything else charts expenses.
func (snap snapshot) chartInput(kind string) []core.Transaction {
	if kind == string(core.Income) {
		return snap.income
	}
	return snap.expenses
}

func (s *Server) handleChartSeries(w http.ResponseWriter, r *http.Request) {
	snap, ok := s.loadSnapshot(w, r)
	if !ok {
		return
	}
	txs := snap.chartInput(r.URL.Query().Get("kind"))

	var payload any
	switch series := r.PathValue("series"); series {
	case "categories":
		payload = insights.AggregateByCategory(txs, snap.currency)
	case "daily":
		payload = insights.BucketDaily(txs, snap.currency)
	case "monthly":
		payload = insights.BucketMonthly(txs, snap.currency)
	case "radar":
		payload = insights.RadarSeries(txs, snap.currency)
	case "treemap":
		payload = insights.TreemapSeries(txs, snap.currency)
	default:
		writeError(w, http.StatusNotFound, "unknown chart series: "+series)
		return
	}
	writeJSON(w, http.StatusOK, payload)
}

func (s *Server) handleInsightsHealth(w http.ResponseWriter, r *http.Request) {
	snap, ok := s.loadSnapshot(w, r)
	if !ok {
		return
	}

	signed, absolute := insights.SumAmounts(snap.filtered)
	hs := insights.CalculateHealthScore(
		core.Money{Cents: (absolute + signed) / 2}.Float(),
		core.Money{Cents: (absolute - signed) / 2}.Float(),
	)
	writeJSON(w, http.StatusOK, hs)
}

func (s *Server) handleInsightsRecommendations(w http.ResponseWriter, r *http.Request) {
	snap, ok := s.loadSnapshot(w, r)
	if !ok {
		return
	}

	signed, absolute := insights.SumAmounts(snap.filtered)
	incomeCents := (absolute + signed) / 2
	hs := insights.CalculateHealthScore(
		core.Money{Cents: incomeCents}.Float(),
		core.Money{Cents: (absolute - signed) / 2}.Float(),
	)
	byCategory := insights.AggregateByCategory(snap.expenses, snap.currency)

	recs := insights.GenerateRecommendations(core.Money{Cents: incomeCents}.Float(), byCategory, hs, snap.currency)
	writeJSON(w, http.StatusOK, recs)
}

func (s *Server) handleInsightsMilestones(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserIDFromContext(r.Context())

	// milestones always look at the full history, not a window
	txs, err := s.transactions.List(r.Context(), userID)
	if err != nil {
		handleDomainError(w, r, err)
		return
	}

	milestones := []insights.Milestone{}
	if current, previous, lifetime, ok := insights.MilestoneInputs(txs); ok {
		milestones = insights.CheckIncomeMilestones(current, previous, lifetime)
	}
	writeJSON(w, http.StatusOK, milestones)
}

func (s *Server) handleInsightsForecast(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserIDFromContext(r.Context())

	months := forecastMonths
	switch r.URL.Query().Get("months") {
	case "", "3":
	case "6":
		months = 6
	case "12":
		months = 12
	default:
		writeError(w, http.StatusBadRequest, "months must be 3, 6 or 12")
		return
	}

	txs, err := s.transactions.List(r.Context(), userID)
	if err != nil {
		handleDomainError(w, r, err)
		return
	}

	history := insights.MonthlyIncomeSeries(txs)
	writeJSON(w, http.StatusOK, insights.ProjectIncome(history, months))
}

type budgetStatusResponse struct {
	Usage  insights.BudgetUsage `json:"usage"`
	Advice []string             `json:"advice"`
}

func (s *Server) handleBudgetStatus(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserIDFromContext(r.Context())

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
	var expenses []core.Transaction
	for _, tx := range txs {
		if tx.Kind == core.Expense {
			expenses = append(expenses, tx)
		}
	}

	usage := insights.EvaluateBudget(activeBudget(budgets), expenses, now)
	byCategory := insights.AggregateByCategory(expenses, s.userCurrency(txs))

	writeJSON(w, http.StatusOK, budgetStatusResponse{
		Usage:  usage,
		Advice: insights.BudgetRecommendations(usage, byCategory, s.userCurrency(txs)),
	})
}
