package store

import (
	"context"

	"github.com/google/uuid"

	"github.com/bkim7977/token-market-backend/internal/models"
)

// GetBalance returns the balance row owned by the subject.
func (s *Store) GetBalance(ctx context.Context, userID uuid.UUID) (*models.Balance, error) {
	ctx, cancel := s.opCtx(ctx)
	defer cancel()

	var b models.Balance
	err := s.db.QueryRowContext(ctx, `
		SELECT id, user_id, balance, last_updated
		FROM token_balances
		WHERE user_id = $1
	`, userID).Scan(&b.ID, &b.UserID, &b.Balance, &b.LastUpdated)
	if err != nil {
		return nil, translateErr(err)
	}
	return &b, nil
}

// SetBalance overwrites the subject's balance, but only when the caller's
// previously-read value still holds. A stale precondition fails with
// ErrConflict instead of silently losing a concurrent update.
func (s *Store) SetBalance(ctx context.Context, userID uuid.UUID, newBalance, previous float64) (*models.Balance, error) {
	ctx, cancel := s.opCtx(ctx)
	defer cancel()

	var b models.Balance
	err := s.db.QueryRowContext(ctx, `
		UPDATE token_balances
		SET balance = $1, last_updated = NOW()
		WHERE user_id = $2 AND balance = $3
		RETURNING id, user_id, balance, last_updated
	`, newBalance, userID, previous).Scan(&b.ID, &b.UserID, &b.Balance, &b.LastUpdated)
	if err == nil {
		return &b, nil
	}

	translated := translateErr(err)
	if translated != ErrNotFound {
		return nil, translated
	}

	// No row matched: either the precondition was stale or the balance row
	// does not exist at all.
	var exists bool
	if checkErr := s.db.QueryRowContext(ctx,
		`SELECT EXISTS(SELECT 1 FROM token_balances WHERE user_id = $1)`, userID,
	).Scan(&exists); checkErr != nil {
		return nil, translateErr(checkErr)
	}
	if exists {
		return nil, ErrConflict
	}
	return nil, ErrNotFound
}

// AdjustBalance applies a signed delta atomically at the storage layer,
// avoiding the read-modify-write race of a blind overwrite.
func (s *Store) AdjustBalance(ctx context.Context, userID uuid.UUID, delta float64) (*models.Balance, error) {
	ctx, cancel := s.opCtx(ctx)
	defer cancel()

	var b models.Balance
	err := s.db.QueryRowContext(ctx, `
		UPDATE token_balances
		SET balance = balance + $1, last_updated = NOW()
		WHERE user_id = $2
		RETURNING id, user_id, balance, last_updated
	`, delta, userID).Scan(&b.ID, &b.UserID, &b.Balance, &b.LastUpdated)
	if err != nil {
		return nil, translateErr(err)
	}
	return &b, nil
}
