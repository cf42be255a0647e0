package store

import (
	"context"

	"github.com/google/uuid"

	"github.com/bkim7977/token-market-backend/internal/models"
)

// CreateReferral links a referrer to a referred account. The referrer is
// always the authenticated subject. The unique constraint on referred_id
// guarantees each account is referred at most once; a second attempt fails
// with ErrAlreadyExists.
func (s *Store) CreateReferral(ctx context.Context, referrerID, referredID uuid.UUID, bonusAmount float64) (*models.Referral, error) {
	ctx, cancel := s.opCtx(ctx)
	defer cancel()

	r := &models.Referral{
		ReferrerID:  referrerID,
		ReferredID:  referredID,
		BonusAmount: bonusAmount,
	}
	err := s.db.QueryRowContext(ctx, `
		INSERT INTO referrals (referrer_id, referred_id, bonus_amount)
		VALUES ($1, $2, $3)
		RETURNING id, created_at
	`, referrerID, referredID, bonusAmount).Scan(&r.ID, &r.CreatedAt)
	if err != nil {
		s.logger.Error().Err(err).Str("referrer_id", referrerID.String()).Msg("Failed to insert referral")
		return nil, translateErr(err)
	}
	return r, nil
}

// ListReferrals returns referrals where the subject is on either side.
func (s *Store) ListReferrals(ctx context.Context, userID uuid.UUID) ([]models.Referral, error) {
	ctx, cancel := s.opCtx(ctx)
	defer cancel()

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, referrer_id, referred_id, COALESCE(bonus_amount, 0), created_at
		FROM referrals
		WHERE referrer_id = $1 OR referred_id = $1
		ORDER BY created_at DESC
	`, userID)
	if err != nil {
		s.logger.Error().Err(err).Str("user_id", userID.String()).Msg("Failed to list referrals")
		return nil, translateErr(err)
	}
	defer rows.Close()

	referrals := []models.Referral{}
	for rows.Next() {
		var r models.Referral
		if err := rows.Scan(&r.ID, &r.ReferrerID, &r.ReferredID, &r.BonusAmount, &r.CreatedAt); err != nil {
			return nil, translateErr(err)
		}
		referrals = append(referrals, r)
	}
	if err := rows.Err(); err != nil {
		return nil, translateErr(err)
	}
	return referrals, nil
}
