package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"
)

// Error taxonomy for storage operations. Callers distinguish "legitimately
// empty" from "backend failed"; a backend error is never swallowed into an
// empty success value.
var (
	ErrNotFound      = errors.New("not found")
	ErrAlreadyExists = errors.New("already exists")
	ErrConflict      = errors.New("conflict")
	ErrUnavailable   = errors.New("storage backend unavailable")
)

// Postgres error codes of interest.
const (
	pqUniqueViolation     = "23505"
	pqForeignKeyViolation = "23503"
)

// translateErr maps driver and context errors onto the taxonomy. Unique
// constraint collisions surface as ErrAlreadyExists so concurrent inserts
// racing past an existence check still fail cleanly.
func translateErr(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch string(pqErr.Code) {
		case pqUniqueViolation:
			return ErrAlreadyExists
		case pqForeignKeyViolation:
			// Referenced row does not exist.
			return ErrNotFound
		}
	}

	return fmt.Errorf("%w: %v", ErrUnavailable, err)
}
