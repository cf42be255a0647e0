package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/bkim7977/token-market-backend/internal/models"
)

// RedemptionStore is the slice of the storage layer serving redemptions.
type RedemptionStore interface {
	CreateRedemption(ctx context.Context, userID, collectibleID uuid.UUID, cost float64) (*models.Redemption, error)
	ListRedemptions(ctx context.Context, userID uuid.UUID) ([]models.Redemption, error)
}

type RedemptionHandler struct {
	store  RedemptionStore
	logger zerolog.Logger
}

func NewRedemptionHandler(redemptionStore RedemptionStore, logger zerolog.Logger) *RedemptionHandler {
	return &RedemptionHandler{store: redemptionStore, logger: logger}
}

// CreateRedemptionRequest represents the request body for a redemption.
type CreateRedemptionRequest struct {
	CollectibleID uuid.UUID `json:"collectible_id"`
	Cost          float64   `json:"cost"`
}

// Create records a pending redemption owned by the subject.
func (h *RedemptionHandler) Create(w http.ResponseWriter, r *http.Request) {
	claims, ok := claimsOrUnauthorized(w, r)
	if !ok {
		return
	}

	var req CreateRedemptionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.CollectibleID == uuid.Nil {
		respondWithError(w, http.StatusBadRequest, "Collectible id is required")
		return
	}
	if req.Cost <= 0 {
		respondWithError(w, http.StatusBadRequest, "Cost must be positive")
		return
	}

	redemption, err := h.store.CreateRedemption(r.Context(), claims.UserID, req.CollectibleID, req.Cost)
	if err != nil {
		respondWithStoreError(w, err)
		return
	}
	respondWithJSON(w, http.StatusCreated, redemption)
}

// List returns the subject's redemptions.
func (h *RedemptionHandler) List(w http.ResponseWriter, r *http.Request) {
	claims, ok := claimsOrUnauthorized(w, r)
	if !ok {
		return
	}

	redemptions, err := h.store.ListRedemptions(r.Context(), claims.UserID)
	if err != nil {
		respondWithStoreError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, redemptions)
}
