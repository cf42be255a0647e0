package store

import (
	"context"

	"github.com/google/uuid"

	"github.com/bkim7977/token-market-backend/internal/models"
)

// CreateRedemption records the subject spending tokens on a collectible.
// New redemptions always start pending; status transitions belong to an
// external fulfilment process.
func (s *Store) CreateRedemption(ctx context.Context, userID, collectibleID uuid.UUID, cost float64) (*models.Redemption, error) {
	ctx, cancel := s.opCtx(ctx)
	defer cancel()

	r := &models.Redemption{
		UserID:        userID,
		CollectibleID: collectibleID,
		Cost:          cost,
		Status:        models.RedemptionStatusPending,
	}
	err := s.db.QueryRowContext(ctx, `
		INSERT INTO redemptions (user_id, collectible_id, cost, status)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at
	`, userID, collectibleID, cost, r.Status).Scan(&r.ID, &r.CreatedAt)
	if err != nil {
		s.logger.Error().Err(err).Str("user_id", userID.String()).Msg("Failed to insert redemption")
		return nil, translateErr(err)
	}
	return r, nil
}

// ListRedemptions returns the subject's redemptions, newest first.
func (s *Store) ListRedemptions(ctx context.Context, userID uuid.UUID) ([]models.Redemption, error) {
	ctx, cancel := s.opCtx(ctx)
	defer cancel()

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, user_id, collectible_id, cost, status, created_at
		FROM redemptions
		WHERE user_id = $1
		ORDER BY created_at DESC
	`, userID)
	if err != nil {
		s.logger.Error().Err(err).Str("user_id", userID.String()).Msg("Failed to list redemptions")
		return nil, translateErr(err)
	}
	defer rows.Close()

	redemptions := []models.Redemption{}
	for rows.Next() {
		var r models.Redemption
		if err := rows.Scan(&r.ID, &r.UserID, &r.CollectibleID, &r.Cost, &r.Status, &r.CreatedAt); err != nil {
			return nil, translateErr(err)
		}
		redemptions = append(redemptions, r)
	}
	if err := rows.Err(); err != nil {
		return nil, translateErr(err)
	}
	return redemptions, nil
}
