package http

import (
	"net/http"
	"time"

	"savvy/internal/auth"
	"savvy/internal/core"
)

type budgetRequest struct {
	Amount string `json:"amount"`
	Period string `json:"period"`
}

type budgetJSON struct {
	ID        string     `json:"id"`
	Amount    core.Money `json:"amount"`
	Period    string     `json:"period"`
	CreatedAt string     `json:"createdAt,omitempty"`
	UpdatedAt string     `json:"updatedAt"`
}

func toBudgetJSON(b core.Budget) budgetJSON {
	out := budgetJSON{
		ID:        b.ID,
		Amount:    b.Amount,
		Period:    string(b.Period),
		UpdatedAt: b.UpdatedAt.UTC().Format(time.RFC3339),
	}
	// updates do not round-trip the original creation time
	if !b.CreatedAt.IsZero() {
		out.CreatedAt = b.CreatedAt.UTC().Format(time.RFC3339)
	}
	return out
}

func toBudget(userID string, req budgetRequest) (core.Budget, error) {
	cents, err := core.ParseAmount(req.Amount)
	if err != nil {
		return core.Budget{}, err
	}
	return core.Budget{
		UserID: userID,
		Amount: core.Money{Cents: cents},
		Period: core.BudgetPeriod(req.Period),
	}, nil
}

func (s *Server) handleCreateBudget(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserIDFromContext(r.Context())

	var req budgetRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	b, err := toBudget(userID, req)
	if err != nil {
		handleDomainError(w, r, err)
		return
	}

	created, err := s.planning.CreateBudget(r.Context(), b)
	if err != nil {
		handleDomainError(w, r, err)
		return
	}

	s.invalidateInsights(userID)
	writeJSON(w, http.StatusCreated, toBudgetJSON(created))
}

func (s *Server) handleListBudgets(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserIDFromContext(r.Context())

	budgets, err := s.planning.ListBudgets(r.Context(), userID)
	if err != nil {
		handleDomainError(w, r, err)
		return
	}

	out := make([]budgetJSON, 0, len(budgets))
	for _, b := range budgets {
		out = append(out, toBudgetJSON(b))
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleUpdateBudget(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserIDFromContext(r.Context())

	var req budgetRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	b, err := toBudget(userID, req)
	if err != nil {
		handleDomainError(w, r, err)
		return
	}
	b.ID = r.PathValue("id")

	updated, err := s.planning.UpdateBudget(r.Context(), b)
	if err != nil {
		handleDomainError(w, r, err)
		return
	}

	s.invalidateInsights(userID)
	writeJSON(w, http.StatusOK, toBudgetJSON(updated))
}

func (s *Server) handleDeleteBudget(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserIDFromContext(r.Context())

	if err := s.planning.DeleteBudget(r.Context(), userID, r.PathValue("id")); err != nil {
		handleDomainError(w, r, err)
		return
	}

	s.invalidateInsights(userID)
	w.WriteHeader(http.StatusNoContent)
}

type goalRequest struct {
	Name          string `json:"name"`
	TargetAmount  string `json:"targetAmount"`
	CurrentAmount string `json:"currentAmount,omitempty"`
	TargetDate    string `json:"targetDate"`
	Category      string `json:"category,omitempty"`
	Priority      string `json:"priority,omitempty"`
}

type goalJSON struct {
	ID            string     `json:"id"`
	Name          string     `json:"name"`
	TargetAmount  core.Money `json:"targetAmount"`
	CurrentAmount core.Money `json:"currentAmount"`
	TargetDate    string     `json:"targetDate"`
	Category      string     `json:"category,omitempty"`
	Priority      string     `json:"priority"`
}

func toGoalJSON(g core.Goal) goalJSON {
	return goalJSON{
		ID:            g.ID,
		Name:          g.Name,
		TargetAmount:  g.TargetAmount,
		CurrentAmount: g.CurrentAmount,
		TargetDate:    g.TargetDate.Key(),
		Category:      g.Category,
		Priority:      string(g.Priority),
	}
}

func toGoal(userID string, req goalRequest) (core.Goal, error) {
	target, err := core.ParseAmount(req.TargetAmount)
	if err != nil {
		return core.Goal{}, err
	}

	var current int64
	if req.CurrentAmount != "" {
		current, err = core.ParseAmount(req.CurrentAmount)
		if err != nil {
			return core.Goal{}, err
		}
	}

	day, err := time.ParseInLocation("2006-01-02", req.TargetDate, time.Local)
	if err != nil {
		return core.Goal{}, core.ErrInvalidDate
	}

	return core.Goal{
		UserID:        userID,
		Name:          req.Name,
		TargetAmount:  core.Money{Cents: target},
		CurrentAmount: core.Money{Cents: current},
		TargetDate:    core.NewDate(day.Year(), int(day.Month()), day.Day()),
		Category:      req.Category,
		Priority:      core.GoalPriority(req.Priority),
	}, nil
}

func (s *Server) handleCreateGoal(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserIDFromContext(r.Context())

	var req goalRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	g, err := toGoal(userID, req)
	if err != nil {
		handleDomainError(w, r, err)
		return
	}

	created, err := s.planning.CreateGoal(r.Context(), g)
	if err != nil {
		handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, toGoalJSON(created))
}

func (s *Server) handleListGoals(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserIDFromContext(r.Context())

	goals, err := s.planning.ListGoals(r.Context(), userID)
	if err != nil {
		handleDomainError(w, r, err)
		return
	}

	out := make([]goalJSON, 0, len(goals))
	for _, g := range goals {
		out = append(out, toGoalJSON(g))
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleUpdateGoal(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserIDFromContext(r.Context())

	var req goalRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	g, err := toGoal(userID, req)
	if err != nil {
		handleDomainError(w, r, err)
		return
	}
	g.ID = r.PathValue("id")

	if err := s.planning.UpdateGoal(r.Context(), g); err != nil {
		handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toGoalJSON(g))
}

func (s *Server) handleDeleteGoal(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserIDFromContext(r.Context())

	if err := s.planning.DeleteGoal(r.Context(), userID, r.PathValue("id")); err != nil {
		handleDomainError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
