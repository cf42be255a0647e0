package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/bkim7977/token-market-backend/internal/models"
)

// TransactionStore is the slice of the storage layer serving transactions.
type TransactionStore interface {
	CreateTransaction(ctx context.Context, userID uuid.UUID, collectibleID *uuid.UUID, txType string, amount float64, description string) (*models.Transaction, error)
	ListTransactions(ctx context.Context, userID uuid.UUID) ([]models.Transaction, error)
}

type TransactionHandler struct {
	store  TransactionStore
	logger zerolog.Logger
}

func NewTransactionHandler(transactionStore TransactionStore, logger zerolog.Logger) *TransactionHandler {
	return &TransactionHandler{store: transactionStore, logger: logger}
}

// CreateTransactionRequest represents the request body for a transaction.
// There is deliberately no user_id field: the owner is always the
// authenticated subject.
type CreateTransactionRequest struct {
	CollectibleID *uuid.UUID `json:"collectible_id"`
	Type          string     `json:"transaction_type"`
	Amount        float64    `json:"amount"`
	Description   string     `json:"description"`
}

// Create records a transaction owned by the subject.
func (h *TransactionHandler) Create(w http.ResponseWriter, r *http.Request) {
	claims, ok := claimsOrUnauthorized(w, r)
	if !ok {
		return
	}

	var req CreateTransactionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Type == "" {
		respondWithError(w, http.StatusBadRequest, "Transaction type is required")
		return
	}

	transaction, err := h.store.CreateTransaction(r.Context(), claims.UserID, req.CollectibleID, req.Type, req.Amount, req.Description)
	if err != nil {
		respondWithStoreError(w, err)
		return
	}
	respondWithJSON(w, http.StatusCreated, transaction)
}

// List returns the subject's transactions.
func (h *TransactionHandler) List(w http.ResponseWriter, r *http.Request) {
	claims, ok := claimsOrUnauthorized(w, r)
	if !ok {
		return
	}

	transactions, err := h.store.ListTransactions(r.Context(), claims.UserID)
	if err != nil {
		respondWithStoreError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, transactions)
}
