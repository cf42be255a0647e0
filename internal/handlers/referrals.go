package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/bkim7977/token-market-backend/internal/models"
	"github.com/bkim7977/token-market-backend/internal/store"
)

// ReferralStore is the slice of the storage layer serving referrals.
type ReferralStore interface {
	CreateReferral(ctx context.Context, referrerID, referredID uuid.UUID, bonusAmount float64) (*models.Referral, error)
	ListReferrals(ctx context.Context, userID uuid.UUID) ([]models.Referral, error)
}

type ReferralHandler struct {
	store  ReferralStore
	logger zerolog.Logger
}

func NewReferralHandler(referralStore ReferralStore, logger zerolog.Logger) *ReferralHandler {
	return &ReferralHandler{store: referralStore, logger: logger}
}

// CreateReferralRequest represents the request body for a referral. The
// referrer is always the authenticated subject.
type CreateReferralRequest struct {
	ReferredID  uuid.UUID `json:"referred_id"`
	BonusAmount float64   `json:"bonus_amount"`
}

// Create links the subject as referrer of another account. Each account can
// be referred at most once.
func (h *ReferralHandler) Create(w http.ResponseWriter, r *http.Request) {
	claims, ok := claimsOrUnauthorized(w, r)
	if !ok {
		return
	}

	var req CreateReferralRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.ReferredID == uuid.Nil {
		respondWithError(w, http.StatusBadRequest, "Referred account id is required")
		return
	}
	if req.ReferredID == claims.UserID {
		respondWithError(w, http.StatusBadRequest, "Self-referral not allowed")
		return
	}

	referral, err := h.store.CreateReferral(r.Context(), claims.UserID, req.ReferredID, req.BonusAmount)
	if err != nil {
		if errors.Is(err, store.ErrAlreadyExists) {
			respondWithError(w, http.StatusBadRequest, "Account already referred")
			return
		}
		respondWithStoreError(w, err)
		return
	}
	respondWithJSON(w, http.StatusCreated, referral)
}

// List returns referrals where the subject is referrer or referred.
func (h *ReferralHandler) List(w http.ResponseWriter, r *http.Request) {
	claims, ok := claimsOrUnauthorized(w, r)
	if !ok {
		return
	}

	referrals, err := h.store.ListReferrals(r.Context(), claims.UserID)
	if err != nil {
		respondWithStoreError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, referrals)
}
