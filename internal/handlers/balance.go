package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/bkim7977/token-market-backend/internal/models"
)

// BalanceStore is the slice of the storage layer serving balance reads and
// mutations.
type BalanceStore interface {
	GetBalance(ctx context.Context, userID uuid.UUID) (*models.Balance, error)
	SetBalance(ctx context.Context, userID uuid.UUID, newBalance, previous float64) (*models.Balance, error)
	AdjustBalance(ctx context.Context, userID uuid.UUID, delta float64) (*models.Balance, error)
}

type BalanceHandler struct {
	store  BalanceStore
	logger zerolog.Logger
}

func NewBalanceHandler(balanceStore BalanceStore, logger zerolog.Logger) *BalanceHandler {
	return &BalanceHandler{store: balanceStore, logger: logger}
}

// SetBalanceRequest carries the new value plus the previously-read value as
// an optimistic concurrency precondition.
type SetBalanceRequest struct {
	Balance         float64 `json:"balance"`
	PreviousBalance float64 `json:"previous_balance"`
}

// AdjustBalanceRequest applies a signed delta atomically.
type AdjustBalanceRequest struct {
	Delta float64 `json:"delta"`
}

// Get returns the authenticated subject's balance.
func (h *BalanceHandler) Get(w http.ResponseWriter, r *http.Request) {
	claims, ok := claimsOrUnauthorized(w, r)
	if !ok {
		return
	}

	balance, err := h.store.GetBalance(r.Context(), claims.UserID)
	if err != nil {
		respondWithStoreError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, balance)
}

// Set overwrites the subject's balance, guarded by the previous value. A
// stale precondition maps to 409.
func (h *BalanceHandler) Set(w http.ResponseWriter, r *http.Request) {
	claims, ok := claimsOrUnauthorized(w, r)
	if !ok {
		return
	}

	var req SetBalanceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Balance < 0 {
		respondWithError(w, http.StatusBadRequest, "Balance must not be negative")
		return
	}

	balance, err := h.store.SetBalance(r.Context(), claims.UserID, req.Balance, req.PreviousBalance)
	if err != nil {
		respondWithStoreError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, balance)
}

// Adjust credits or debits the subject's balance atomically.
func (h *BalanceHandler) Adjust(w http.ResponseWriter, r *http.Request) {
	claims, ok := claimsOrUnauthorized(w, r)
	if !ok {
		return
	}

	var req AdjustBalanceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Delta == 0 {
		respondWithError(w, http.StatusBadRequest, "Delta must be non-zero")
		return
	}

	balance, err := h.store.AdjustBalance(r.Context(), claims.UserID, req.Delta)
	if err != nil {
		respondWithStoreError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, balance)
}
