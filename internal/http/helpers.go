package http

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"savvy/internal/auth"
	"savvy/internal/core"
	"savvy/internal/log"
	"savvy/internal/services"
	"savvy/internal/storage"
)

// maxBodyBytes caps request bodies; every payload here is a small JSON
// document.
const maxBodyBytes = 1 << 20

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	// Encode failures here mean the client went away mid-response.
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Error: message})
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return errors.New("empty request body")
		}
		return errors.New("malformed JSON body")
	}
	return nil
}

// handleDomainError translates service and domain errors into HTTP
// responses, logging server-side failures. Validation sentinels map to
// 400 so the caller sees what to fix.
func handleDomainError(w http.ResponseWriter, r *http.Request, err error) {
	logger := log.FromContext(r.Context())

	switch {
	case errors.Is(err, storage.ErrNotFound):
		writeError(w, http.StatusNotFound, "not found")
	case errors.Is(err, storage.ErrDuplicateEmail):
		writeError(w, http.StatusConflict, "email already registered")
	case errors.Is(err, services.ErrInvalidCredentials):
		writeError(w, http.StatusUnauthorized, "invalid email or password")
	case errors.Is(err, auth.ErrPasswordTooShort):
		writeError(w, http.StatusBadRequest, err.Error())
	case isValidationError(err):
		writeError(w, http.StatusBadRequest, err.Error())
	default:
		logger.ErrorContext(r.Context(), "Request failed",
			log.FieldMethod, r.Method,
			log.FieldPath, r.URL.Path,
			log.FieldError, err)
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

func isValidationError(err error) bool {
	for _, sentinel := range []error{
		core.ErrInvalidDate,
		core.ErrInvalidAmount,
		core.ErrInvalidKind,
		core.ErrInvalidPeriod,
		core.ErrInvalidPriority,
		core.ErrEmptyCategory,
		core.ErrEmptyName,
		core.ErrEmptyEmail,
		core.ErrSignConvention,
		core.ErrDescriptionLimit,
	} {
		if errors.Is(err, sentinel) {
			return true
		}
	}
	return false
}
