package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/rs/zerolog"

	redisClient "github.com/bkim7977/token-market-backend/internal/redis"

	"github.com/bkim7977/token-market-backend/internal/models"
)

// CatalogStore is the slice of the storage layer serving the public
// collectible catalog.
type CatalogStore interface {
	ListCollectibles(ctx context.Context) ([]models.Collectible, error)
	GetCollectible(ctx context.Context, id uuid.UUID) (*models.Collectible, error)
	CreateCollectible(ctx context.Context, c *models.Collectible) (*models.Collectible, error)
	GetPriceHistory(ctx context.Context, collectibleID uuid.UUID) ([]models.PriceRecord, error)
	RecordPrice(ctx context.Context, collectibleID uuid.UUID, price float64) (*models.PriceRecord, error)
}

type CollectibleHandler struct {
	store    CatalogStore
	cache    *redisClient.Client
	cacheTTL time.Duration
	logger   zerolog.Logger
}

// NewCollectibleHandler builds the catalog handler. cache may be nil when
// Redis is unreachable; reads then always go to the store.
func NewCollectibleHandler(catalogStore CatalogStore, cache *redisClient.Client, cacheTTL time.Duration, logger zerolog.Logger) *CollectibleHandler {
	return &CollectibleHandler{store: catalogStore, cache: cache, cacheTTL: cacheTTL, logger: logger}
}

// CreateCollectibleRequest represents the request body for catalog creation
type CreateCollectibleRequest struct {
	Name         string          `json:"name"`
	Type         string          `json:"type"`
	SetName      string          `json:"set_name"`
	Rarity       string          `json:"rarity"`
	Edition      string          `json:"edition"`
	Metadata     json.RawMessage `json:"metadata"`
	ImageURL     string          `json:"image_url"`
	CurrentPrice float64         `json:"current_price"`
}

// RecordPriceRequest represents the request body for a price record
type RecordPriceRequest struct {
	Price float64 `json:"price"`
}

// List returns all collectibles (public access).
func (h *CollectibleHandler) List(w http.ResponseWriter, r *http.Request) {
	if h.cache != nil {
		if collectibles, ok := h.cache.GetCatalog(r.Context()); ok {
			respondWithJSON(w, http.StatusOK, collectibles)
			return
		}
	}

	collectibles, err := h.store.ListCollectibles(r.Context())
	if err != nil {
		respondWithStoreError(w, err)
		return
	}

	if h.cache != nil {
		h.cache.SetCatalog(r.Context(), collectibles, h.cacheTTL)
	}
	respondWithJSON(w, http.StatusOK, collectibles)
}

// Get returns a specific collectible (public access).
func (h *CollectibleHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}

	collectible, err := h.store.GetCollectible(r.Context(), id)
	if err != nil {
		respondWithStoreError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, collectible)
}

// PriceHistory returns a collectible's price records (public access).
func (h *CollectibleHandler) PriceHistory(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}

	if h.cache != nil {
		if records, ok := h.cache.GetPriceHistory(r.Context(), id); ok {
			respondWithJSON(w, http.StatusOK, records)
			return
		}
	}

	records, err := h.store.GetPriceHistory(r.Context(), id)
	if err != nil {
		respondWithStoreError(w, err)
		return
	}

	if h.cache != nil {
		h.cache.SetPriceHistory(r.Context(), id, records, h.cacheTTL)
	}
	respondWithJSON(w, http.StatusOK, records)
}

// Create adds a collectible to the catalog. Requires an authenticated
// subject; the catalog has no per-row owner, so any subject may create.
func (h *CollectibleHandler) Create(w http.ResponseWriter, r *http.Request) {
	if _, ok := claimsOrUnauthorized(w, r); !ok {
		return
	}

	var req CreateCollectibleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Name == "" {
		respondWithError(w, http.StatusBadRequest, "Name is required")
		return
	}
	if req.CurrentPrice < 0 {
		respondWithError(w, http.StatusBadRequest, "Price must not be negative")
		return
	}

	collectible, err := h.store.CreateCollectible(r.Context(), &models.Collectible{
		Name:         req.Name,
		Type:         req.Type,
		SetName:      req.SetName,
		Rarity:       req.Rarity,
		Edition:      req.Edition,
		Metadata:     req.Metadata,
		ImageURL:     req.ImageURL,
		CurrentPrice: req.CurrentPrice,
	})
	if err != nil {
		respondWithStoreError(w, err)
		return
	}

	if h.cache != nil {
		h.cache.InvalidateCatalog(r.Context())
	}
	respondWithJSON(w, http.StatusCreated, collectible)
}

// RecordPrice appends a price record and updates the current price.
// Requires an authenticated subject, no ownership check.
func (h *CollectibleHandler) RecordPrice(w http.ResponseWriter, r *http.Request) {
	if _, ok := claimsOrUnauthorized(w, r); !ok {
		return
	}

	id, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}

	var req RecordPriceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Price < 0 {
		respondWithError(w, http.StatusBadRequest, "Price must not be negative")
		return
	}

	record, err := h.store.RecordPrice(r.Context(), id, req.Price)
	if err != nil {
		respondWithStoreError(w, err)
		return
	}

	if h.cache != nil {
		h.cache.InvalidateCatalog(r.Context())
		h.cache.InvalidatePriceHistory(r.Context(), id)
	}
	respondWithJSON(w, http.StatusCreated, record)
}

// pathUUID parses a UUID path variable, responding 400 on garbage input.
func pathUUID(w http.ResponseWriter, r *http.Request, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(mux.Vars(r)[name])
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid id")
		return uuid.Nil, false
	}
	return id, true
}
