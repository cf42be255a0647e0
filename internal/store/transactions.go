package store

import (
	"context"
	"database/sql"

	"github.com/google/uuid"

	"github.com/bkim7977/token-market-backend/internal/models"
)

// CreateTransaction inserts a transaction owned by the authenticated
// subject. The owner is the userID parameter, regardless of anything the
// original request body carried.
func (s *Store) CreateTransaction(ctx context.Context, userID uuid.UUID, collectibleID *uuid.UUID, txType string, amount float64, description string) (*models.Transaction, error) {
	ctx, cancel := s.opCtx(ctx)
	defer cancel()

	t := &models.Transaction{
		UserID:        userID,
		CollectibleID: collectibleID,
		Type:          txType,
		Amount:        amount,
		Description:   description,
	}
	err := s.db.QueryRowContext(ctx, `
		INSERT INTO transactions (user_id, collectible_id, transaction_type, amount, description)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at
	`, userID, collectibleID, txType, amount, description).Scan(&t.ID, &t.CreatedAt)
	if err != nil {
		s.logger.Error().Err(err).Str("user_id", userID.String()).Msg("Failed to insert transaction")
		return nil, translateErr(err)
	}
	return t, nil
}

// ListTransactions returns the subject's transactions, newest first. Rows
// owned by other subjects are never included.
func (s *Store) ListTransactions(ctx context.Context, userID uuid.UUID) ([]models.Transaction, error) {
	ctx, cancel := s.opCtx(ctx)
	defer cancel()

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, user_id, collectible_id, transaction_type, amount, description, created_at
		FROM transactions
		WHERE user_id = $1
		ORDER BY created_at DESC
	`, userID)
	if err != nil {
		s.logger.Error().Err(err).Str("user_id", userID.String()).Msg("Failed to list transactions")
		return nil, translateErr(err)
	}
	defer rows.Close()

	transactions := []models.Transaction{}
	for rows.Next() {
		var t models.Transaction
		var collectibleID uuid.NullUUID
		var description sql.NullString
		if err := rows.Scan(&t.ID, &t.UserID, &collectibleID, &t.Type, &t.Amount, &description, &t.CreatedAt); err != nil {
			return nil, translateErr(err)
		}
		if collectibleID.Valid {
			t.CollectibleID = &collectibleID.UUID
		}
		t.Description = description.String
		transactions = append(transactions, t)
	}
	if err := rows.Err(); err != nil {
		return nil, translateErr(err)
	}
	return transactions, nil
}
