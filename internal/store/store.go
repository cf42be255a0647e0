package store

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/bkim7977/token-market-backend/internal/database"
)

// Store is the resource access layer. Every operation takes a context and
// runs under a bounded timeout; expiry surfaces as ErrUnavailable rather
// than hanging. The authorization rule is enforced here: owned rows are
// always scoped or forced to the subject id the caller passes in.
type Store struct {
	db      *database.DB
	logger  zerolog.Logger
	timeout time.Duration
}

func New(db *database.DB, logger zerolog.Logger, timeout time.Duration) *Store {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Store{db: db, logger: logger, timeout: timeout}
}

// opCtx bounds a single storage operation.
func (s *Store) opCtx(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, s.timeout)
}
