package auth

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashAndCheckPassword(t *testing.T) {
	hash, err := HashPassword("Secret123!")
	require.NoError(t, err)
	assert.NotEqual(t, "Secret123!", hash)

	assert.NoError(t, CheckPassword(hash, "Secret123!"))

	err = CheckPassword(hash, "wrong-password")
	assert.True(t, errors.Is(err, ErrInvalidCredential))
}

func TestHashPasswordSalted(t *testing.T) {
	first, err := HashPassword("Secret123!")
	require.NoError(t, err)
	second, err := HashPassword("Secret123!")
	require.NoError(t, err)

	// bcrypt salts, so two hashes of the same password differ.
	assert.NotEqual(t, first, second)
}
