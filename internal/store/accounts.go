package store

import (
	"context"
	"database/sql"

	"github.com/google/uuid"

	"github.com/bkim7977/token-market-backend/internal/models"
)

// CreateAccount inserts the account row and its zero balance in a single
// transaction. An account is never observable without a balance; duplicate
// email or username fails with ErrAlreadyExists via the unique constraints.
func (s *Store) CreateAccount(ctx context.Context, email, username, passwordHash string) (*models.Account, error) {
	ctx, cancel := s.opCtx(ctx)
	defer cancel()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		s.logger.Error().Err(err).Msg("Failed to begin registration transaction")
		return nil, translateErr(err)
	}
	defer tx.Rollback()

	account := &models.Account{
		Email:        email,
		Username:     username,
		PasswordHash: passwordHash,
	}
	err = tx.QueryRowContext(ctx, `
		INSERT INTO users (email, username, password_hash)
		VALUES ($1, $2, $3)
		RETURNING id, created_at
	`, email, username, passwordHash).Scan(&account.ID, &account.CreatedAt)
	if err != nil {
		s.logger.Error().Err(err).Str("email", email).Msg("Failed to insert user")
		return nil, translateErr(err)
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO token_balances (user_id, balance)
		VALUES ($1, 0)
	`, account.ID)
	if err != nil {
		s.logger.Error().Err(err).Str("user_id", account.ID.String()).Msg("Failed to insert initial balance")
		return nil, translateErr(err)
	}

	if err := tx.Commit(); err != nil {
		s.logger.Error().Err(err).Msg("Failed to commit registration transaction")
		return nil, translateErr(err)
	}

	return account, nil
}

// GetAccountByEmail looks up an account for authentication.
func (s *Store) GetAccountByEmail(ctx context.Context, email string) (*models.Account, error) {
	ctx, cancel := s.opCtx(ctx)
	defer cancel()

	var account models.Account
	var lastLogin sql.NullTime
	err := s.db.QueryRowContext(ctx, `
		SELECT id, email, username, password_hash, created_at, last_login
		FROM users
		WHERE email = $1
	`, email).Scan(
		&account.ID,
		&account.Email,
		&account.Username,
		&account.PasswordHash,
		&account.CreatedAt,
		&lastLogin,
	)
	if err != nil {
		return nil, translateErr(err)
	}
	if lastLogin.Valid {
		account.LastLogin = &lastLogin.Time
	}

	return &account, nil
}

// TouchLastLogin records a successful authentication.
func (s *Store) TouchLastLogin(ctx context.Context, userID uuid.UUID) error {
	ctx, cancel := s.opCtx(ctx)
	defer cancel()

	_, err := s.db.ExecContext(ctx, `UPDATE users SET last_login = NOW() WHERE id = $1`, userID)
	if err != nil {
		s.logger.Warn().Err(err).Str("user_id", userID.String()).Msg("Failed to update last_login")
		return translateErr(err)
	}
	return nil
}
