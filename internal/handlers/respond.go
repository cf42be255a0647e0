package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/bkim7977/token-market-backend/internal/auth"
	"github.com/bkim7977/token-market-backend/internal/store"
)

// ErrorResponse is the structured error body every endpoint returns.
type ErrorResponse struct {
	Detail string `json:"detail"`
}

// ValidationError represents a malformed-input failure.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

func respondWithJSON(w http.ResponseWriter, code int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(payload)
}

func respondWithError(w http.ResponseWriter, code int, detail string) {
	respondWithJSON(w, code, ErrorResponse{Detail: detail})
}

// respondWithStoreError maps the storage error taxonomy onto HTTP statuses.
// Backend failures become 503; they are never flattened into empty success.
func respondWithStoreError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, store.ErrNotFound):
		respondWithError(w, http.StatusNotFound, "Not found")
	case errors.Is(err, store.ErrAlreadyExists):
		respondWithError(w, http.StatusBadRequest, "Already exists")
	case errors.Is(err, store.ErrConflict):
		respondWithError(w, http.StatusConflict, "Conflicting concurrent update, retry with current value")
	case errors.Is(err, auth.ErrInvalidCredential), errors.Is(err, auth.ErrUnauthenticated):
		respondWithError(w, http.StatusUnauthorized, "Invalid authentication credentials")
	case errors.Is(err, store.ErrUnavailable):
		respondWithError(w, http.StatusServiceUnavailable, "Storage backend unavailable")
	default:
		respondWithError(w, http.StatusInternalServerError, "Internal server error")
	}
}
