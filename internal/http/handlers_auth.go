package http

import (
	"net/http"
	"time"

	"savvy/internal/core"
	"savvy/internal/log"
)

type registerRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Currency string `json:"currency,omitempty"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type authResponse struct {
	Token string   `json:"token"`
	User  userJSON `json:"user"`
}

type userJSON struct {
	ID        string `json:"id"`
	Email     string `json:"email"`
	Currency  string `json:"currency"`
	CreatedAt string `json:"createdAt"`
}

func toUserJSON(u core.User) userJSON {
	return userJSON{
		ID:        u.ID,
		Email:     u.Email,
		Currency:  u.Currency,
		CreatedAt: u.CreatedAt.UTC().Format(time.RFC3339),
	}
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	user, token, err := s.users.Register(r.Context(), req.Email, req.Password, req.Currency)
	if err != nil {
		handleDomainError(w, r, err)
		return
	}

	log.FromContext(r.Context()).InfoContext(r.Context(), "User registered",
		log.FieldUserID, user.ID,
		log.FieldOperation, log.OpRegister)

	writeJSON(w, http.StatusCreated, authResponse{Token: token, User: toUserJSON(user)})
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	user, token, err := s.users.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		handleDomainError(w, r, err)
		return
	}

	log.FromContext(r.Context()).InfoContext(r.Context(), "User logged in",
		log.FieldUserID, user.ID,
		log.FieldOperation, log.OpLogin)

	writeJSON(w, http.StatusOK, authResponse{Token: token, User: toUserJSON(user)})
}
