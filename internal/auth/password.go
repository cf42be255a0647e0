package auth

import (
	"errors"

	"golang.org/x/crypto/bcrypt"
)

// ErrInvalidCredential is returned when a password does not match the stored
// hash. Callers map it to 401 without revealing which part failed.
var ErrInvalidCredential = errors.New("invalid credential")

// HashPassword one-way hashes a password with bcrypt. The stored value is
// never reversible.
func HashPassword(password string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hashed), nil
}

// CheckPassword compares a candidate password against a stored hash.
// bcrypt's comparison is constant-time over the derived key.
func CheckPassword(hash, password string) error {
	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)); err != nil {
		return ErrInvalidCredential
	}
	return nil
}
