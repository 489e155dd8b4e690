package http

import (
	"net/http"
	"time"

	"savvy/internal/auth"
	"savvy/internal/core"
)

// transactionRequest is the write payload. Amount is a positive decimal
// string ("12.34"); the sign convention is applied from the kind.
type transactionRequest struct {
	Kind        string `json:"kind"`
	Amount      string `json:"amount"`
	Category    string `json:"category"`
	Description string `json:"description,omitempty"`
	Date        string `json:"date"`
	Currency    string `json:"currency,omitempty"`
}

type transactionJSON struct {
	ID          string     `json:"id"`
	Kind        string     `json:"kind"`
	Amount      core.Money `json:"amount"`
	Category    string     `json:"category"`
	Description string     `json:"description,omitempty"`
	Date        string     `json:"date"`
	Currency    string     `json:"currency"`
	CreatedAt   string     `json:"createdAt"`
}

func toTransactionJSON(tx core.Transaction) transactionJSON {
	return transactionJSON{
		ID:          tx.ID,
		Kind:        string(tx.Kind),
		Amount:      tx.Amount,
		Category:    tx.Category,
		Description: tx.Description,
		Date:        tx.Date.Key(),
		Currency:    tx.Currency,
		CreatedAt:   tx.CreatedAt.UTC().Format(time.RFC3339),
	}
}

// toTransaction converts the payload into a domain transaction for the
// given user. Expenses become negative cents, income stays positive.
func (s *Server) toTransaction(userID string, req transactionRequest) (core.Transaction, error) {
	kind := core.TransactionKind(req.Kind)
	if !kind.Valid() {
		return core.Transaction{}, core.ErrInvalidKind
	}

	cents, err := core.ParseAmount(req.Amount)
	if err != nil {
		return core.Transaction{}, err
	}
	if kind == core.Expense {
		cents = -cents
	}

	day, err := time.ParseInLocation("2006-01-02", req.Date, time.Local)
	if err != nil {
		return core.Transaction{}, core.ErrInvalidDate
	}

	currency := req.Currency
	if currency == "" {
		currency = s.defaultCurrency
	}

	return core.Transaction{
		UserID:      userID,
		Kind:        kind,
		Amount:      core.Money{Cents: cents},
		Category:    req.Category,
		Description: req.Description,
		Date:        core.NewDate(day.Year(), int(day.Month()), day.Day()),
		Currency:    core.NormalizeCurrency(currency),
	}, nil
}

func (s *Server) handleCreateTransaction(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserIDFromContext(r.Context())

	var req transactionRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	tx, err := s.toTransaction(userID, req)
	if err != nil {
		handleDomainError(w, r, err)
		return
	}

	created, err := s.transactions.Create(r.Context(), tx)
	if err != nil {
		handleDomainError(w, r, err)
		return
	}

	s.invalidateInsights(userID)
	writeJSON(w, http.StatusCreated, toTransactionJSON(created))
}

func (s *Server) handleListTransactions(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserIDFromContext(r.Context())

	txs, err := s.transactions.List(r.Context(), userID)
	if err != nil {
		handleDomainError(w, r, err)
		return
	}

	out := make([]transactionJSON, 0, len(txs))
	for _, tx := range txs {
		out = append(out, toTransactionJSON(tx))
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleGetTransaction(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserIDFromContext(r.Context())

	tx, err := s.transactions.Get(r.Context(), userID, r.PathValue("id"))
	if err != nil {
		handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toTransactionJSON(tx))
}

func (s *Server) handleUpdateTransaction(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserIDFromContext(r.Context())

	var req transactionRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	tx, err := s.toTransaction(userID, req)
	if err != nil {
		handleDomainError(w, r, err)
		return
	}
	tx.ID = r.PathValue("id")

	if err := s.transactions.Update(r.Context(), tx); err != nil {
		handleDomainError(w, r, err)
		return
	}

	s.invalidateInsights(userID)
	updated, err := s.transactions.Get(r.Context(), userID, tx.ID)
	if err != nil {
		handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toTransactionJSON(updated))
}

func (s *Server) handleDeleteTransaction(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserIDFromContext(r.Context())

	if err := s.transactions.Delete(r.Context(), userID, r.PathValue("id")); err != nil {
		handleDomainError(w, r, err)
		return
	}

	s.invalidateInsights(userID)
	w.WriteHeader(http.StatusNoContent)
}
