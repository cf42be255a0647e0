package service

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/bkim7977/token-market-backend/internal/auth"
	"github.com/bkim7977/token-market-backend/internal/models"
	"github.com/bkim7977/token-market-backend/internal/store"
)

// AccountStore is the slice of the storage layer the credential service
// needs.
type AccountStore interface {
	CreateAccount(ctx context.Context, email, username, passwordHash string) (*models.Account, error)
	GetAccountByEmail(ctx context.Context, email string) (*models.Account, error)
	TouchLastLogin(ctx context.Context, userID uuid.UUID) error
}

// Credentials turns an (email, password, username) triple into a durable
// account plus a bearer token, and a (email, password) pair into a fresh
// token.
type Credentials struct {
	store  AccountStore
	tokens *auth.TokenManager
	logger zerolog.Logger
}

func NewCredentials(accountStore AccountStore, tokens *auth.TokenManager, logger zerolog.Logger) *Credentials {
	return &Credentials{store: accountStore, tokens: tokens, logger: logger}
}

// Register creates the account and its zero balance, then mints a token for
// the new subject. Duplicate email or username surfaces as
// store.ErrAlreadyExists; the race between any pre-check and the insert is
// closed by the database's unique constraints, not by a lookup.
func (c *Credentials) Register(ctx context.Context, email, username, password string) (*models.Account, string, error) {
	passwordHash, err := auth.HashPassword(password)
	if err != nil {
		c.logger.Error().Err(err).Msg("Failed to hash password")
		return nil, "", err
	}

	account, err := c.store.CreateAccount(ctx, email, username, passwordHash)
	if err != nil {
		return nil, "", err
	}

	token, err := c.tokens.Generate(account.ID, account.Email)
	if err != nil {
		c.logger.Error().Err(err).Str("user_id", account.ID.String()).Msg("Failed to generate token")
		return nil, "", err
	}

	c.logger.Info().Str("user_id", account.ID.String()).Str("username", username).Msg("User registered")
	return account, token, nil
}

// Authenticate verifies the password for an email and mints a fresh token.
// An unknown email and a wrong password both return ErrInvalidCredential so
// the response never leaks whether the email exists.
func (c *Credentials) Authenticate(ctx context.Context, email, password string) (*models.Account, string, error) {
	account, err := c.store.GetAccountByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, "", auth.ErrInvalidCredential
		}
		return nil, "", err
	}

	if err := auth.CheckPassword(account.PasswordHash, password); err != nil {
		return nil, "", err
	}

	token, err := c.tokens.Generate(account.ID, account.Email)
	if err != nil {
		c.logger.Error().Err(err).Str("user_id", account.ID.String()).Msg("Failed to generate token")
		return nil, "", err
	}

	// Best effort; a failed timestamp update must not fail the login.
	if err := c.store.TouchLastLogin(ctx, account.ID); err != nil {
		c.logger.Warn().Err(err).Str("user_id", account.ID.String()).Msg("Could not record last login")
	}

	c.logger.Info().Str("user_id", account.ID.String()).Msg("User logged in")
	return account, token, nil
}
