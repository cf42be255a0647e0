package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/bkim7977/token-market-backend/internal/models"
)

const (
	catalogKey = "catalog:collectibles"

	priceHistoryKeyFmt = "catalog:price_history:%s"
)

// GetCatalog returns the cached collectible list, or ok=false on a miss or
// any Redis failure. Cache failures are never surfaced to callers.
func (c *Client) GetCatalog(ctx context.Context) ([]models.Collectible, bool) {
	payload, err := c.Get(ctx, catalogKey).Result()
	if err != nil {
		return nil, false
	}

	var collectibles []models.Collectible
	if err := json.Unmarshal([]byte(payload), &collectibles); err != nil {
		c.logger.Warn().Err(err).Msg("Dropping corrupt catalog cache entry")
		c.Del(ctx, catalogKey)
		return nil, false
	}
	return collectibles, true
}

// SetCatalog stores the collectible list with the configured TTL.
func (c *Client) SetCatalog(ctx context.Context, collectibles []models.Collectible, ttl time.Duration) {
	payload, err := json.Marshal(collectibles)
	if err != nil {
		return
	}
	if err := c.Set(ctx, catalogKey, payload, ttl).Err(); err != nil {
		c.logger.Warn().Err(err).Msg("Failed to cache catalog")
	}
}

// GetPriceHistory returns cached price records for one collectible.
func (c *Client) GetPriceHistory(ctx context.Context, collectibleID uuid.UUID) ([]models.PriceRecord, bool) {
	key := fmt.Sprintf(priceHistoryKeyFmt, collectibleID)
	payload, err := c.Get(ctx, key).Result()
	if err != nil {
		return nil, false
	}

	var records []models.PriceRecord
	if err := json.Unmarshal([]byte(payload), &records); err != nil {
		c.logger.Warn().Err(err).Msg("Dropping corrupt price history cache entry")
		c.Del(ctx, key)
		return nil, false
	}
	return records, true
}

// SetPriceHistory stores price records for one collectible with a TTL.
func (c *Client) SetPriceHistory(ctx context.Context, collectibleID uuid.UUID, records []models.PriceRecord, ttl time.Duration) {
	payload, err := json.Marshal(records)
	if err != nil {
		return
	}
	key := fmt.Sprintf(priceHistoryKeyFmt, collectibleID)
	if err := c.Set(ctx, key, payload, ttl).Err(); err != nil {
		c.logger.Warn().Err(err).Msg("Failed to cache price history")
	}
}

// InvalidateCatalog drops the cached list after a catalog write.
func (c *Client) InvalidateCatalog(ctx context.Context) {
	if err := c.Del(ctx, catalogKey).Err(); err != nil {
		c.logger.Warn().Err(err).Msg("Failed to invalidate catalog cache")
	}
}

// InvalidatePriceHistory drops one collectible's cached records after a
// price write.
func (c *Client) InvalidatePriceHistory(ctx context.Context, collectibleID uuid.UUID) {
	key := fmt.Sprintf(priceHistoryKeyFmt, collectibleID)
	if err := c.Del(ctx, key).Err(); err != nil {
		c.logger.Warn().Err(err).Msg("Failed to invalidate price history cache")
	}
}
