package store

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/sqlc-dev/pqtype"

	"github.com/bkim7977/token-market-backend/internal/models"
)

// scanCollectible reads one collectible row, normalizing nullable columns.
func scanCollectible(row interface {
	Scan(dest ...interface{}) error
}) (*models.Collectible, error) {
	var c models.Collectible
	var typ, setName, rarity, edition, imageURL sql.NullString
	var price sql.NullFloat64
	var metadata pqtype.NullRawMessage

	err := row.Scan(&c.ID, &c.Name, &typ, &setName, &rarity, &edition, &metadata, &imageURL, &price)
	if err != nil {
		return nil, err
	}

	c.Type = typ.String
	c.SetName = setName.String
	c.Rarity = rarity.String
	c.Edition = edition.String
	c.ImageURL = imageURL.String
	c.CurrentPrice = price.Float64
	if metadata.Valid {
		c.Metadata = metadata.RawMessage
	}
	return &c, nil
}

const collectibleColumns = `id, name, type, set_name, rarity, edition, metadata, image_url, current_price`

// ListCollectibles returns the whole public catalog.
func (s *Store) ListCollectibles(ctx context.Context) ([]models.Collectible, error) {
	ctx, cancel := s.opCtx(ctx)
	defer cancel()

	rows, err := s.db.QueryContext(ctx, `SELECT `+collectibleColumns+` FROM collectibles ORDER BY name`)
	if err != nil {
		s.logger.Error().Err(err).Msg("Failed to list collectibles")
		return nil, translateErr(err)
	}
	defer rows.Close()

	collectibles := []models.Collectible{}
	for rows.Next() {
		c, err := scanCollectible(rows)
		if err != nil {
			return nil, translateErr(err)
		}
		collectibles = append(collectibles, *c)
	}
	if err := rows.Err(); err != nil {
		return nil, translateErr(err)
	}
	return collectibles, nil
}

// GetCollectible returns a single catalog item.
func (s *Store) GetCollectible(ctx context.Context, id uuid.UUID) (*models.Collectible, error) {
	ctx, cancel := s.opCtx(ctx)
	defer cancel()

	row := s.db.QueryRowContext(ctx, `SELECT `+collectibleColumns+` FROM collectibles WHERE id = $1`, id)
	c, err := scanCollectible(row)
	if err != nil {
		return nil, translateErr(err)
	}
	return c, nil
}

// CreateCollectible inserts a catalog item and seeds its first price record
// in the same transaction.
func (s *Store) CreateCollectible(ctx context.Context, c *models.Collectible) (*models.Collectible, error) {
	ctx, cancel := s.opCtx(ctx)
	defer cancel()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, translateErr(err)
	}
	defer tx.Rollback()

	metadata := pqtype.NullRawMessage{RawMessage: c.Metadata, Valid: len(c.Metadata) > 0}
	created := *c
	err = tx.QueryRowContext(ctx, `
		INSERT INTO collectibles (name, type, set_name, rarity, edition, metadata, image_url, current_price)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id
	`, c.Name, c.Type, c.SetName, c.Rarity, c.Edition, metadata, c.ImageURL, c.CurrentPrice).Scan(&created.ID)
	if err != nil {
		s.logger.Error().Err(err).Str("name", c.Name).Msg("Failed to insert collectible")
		return nil, translateErr(err)
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO price_history (collectible_id, price)
		VALUES ($1, $2)
	`, created.ID, c.CurrentPrice)
	if err != nil {
		s.logger.Error().Err(err).Str("collectible_id", created.ID.String()).Msg("Failed to seed price history")
		return nil, translateErr(err)
	}

	if err := tx.Commit(); err != nil {
		return nil, translateErr(err)
	}
	return &created, nil
}

// GetPriceHistory returns price records for a collectible, newest first.
// A missing collectible is ErrNotFound; an existing one with no records
// yields an empty list.
func (s *Store) GetPriceHistory(ctx context.Context, collectibleID uuid.UUID) ([]models.PriceRecord, error) {
	ctx, cancel := s.opCtx(ctx)
	defer cancel()

	var exists bool
	err := s.db.QueryRowContext(ctx,
		`SELECT EXISTS(SELECT 1 FROM collectibles WHERE id = $1)`, collectibleID,
	).Scan(&exists)
	if err != nil {
		return nil, translateErr(err)
	}
	if !exists {
		return nil, ErrNotFound
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, collectible_id, price, recorded_at
		FROM price_history
		WHERE collectible_id = $1
		ORDER BY recorded_at DESC
	`, collectibleID)
	if err != nil {
		return nil, translateErr(err)
	}
	defer rows.Close()

	records := []models.PriceRecord{}
	for rows.Next() {
		var r models.PriceRecord
		if err := rows.Scan(&r.ID, &r.CollectibleID, &r.Price, &r.RecordedAt); err != nil {
			return nil, translateErr(err)
		}
		records = append(records, r)
	}
	if err := rows.Err(); err != nil {
		return nil, translateErr(err)
	}
	return records, nil
}

// RecordPrice appends a price record and updates the collectible's current
// price together, so readers never see the two disagree.
func (s *Store) RecordPrice(ctx context.Context, collectibleID uuid.UUID, price float64) (*models.PriceRecord, error) {
	ctx, cancel := s.opCtx(ctx)
	defer cancel()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, translateErr(err)
	}
	defer tx.Rollback()

	result, err := tx.ExecContext(ctx,
		`UPDATE collectibles SET current_price = $1 WHERE id = $2`, price, collectibleID)
	if err != nil {
		return nil, translateErr(err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return nil, translateErr(err)
	}
	if affected == 0 {
		return nil, ErrNotFound
	}

	record := &models.PriceRecord{CollectibleID: collectibleID, Price: price}
	err = tx.QueryRowContext(ctx, `
		INSERT INTO price_history (collectible_id, price)
		VALUES ($1, $2)
		RETURNING id, recorded_at
	`, collectibleID, price).Scan(&record.ID, &record.RecordedAt)
	if err != nil {
		s.logger.Error().Err(err).Str("collectible_id", collectibleID.String()).Msg("Failed to insert price record")
		return nil, translateErr(err)
	}

	if err := tx.Commit(); err != nil {
		return nil, translateErr(err)
	}
	return record, nil
}
