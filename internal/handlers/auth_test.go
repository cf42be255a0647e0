package handlers

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegisterAndLogin(t *testing.T) {
	router, _ := newTestServer(t)

	token, userID := registerUser(t, router, "alice@example.com", "alice")
	require.NotEmpty(t, token)

	rec := doRequest(t, router, http.MethodPost, "/auth/login", "", LoginRequest{
		Email:    "alice@example.com",
		Password: "Secret123!",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp AuthResponse
	decodeJSON(t, rec, &resp)
	assert.NotEmpty(t, resp.AccessToken)
	assert.Equal(t, "bearer", resp.TokenType)
	assert.Equal(t, userID, resp.User.ID)
}

func TestRegisterDuplicate(t *testing.T) {
	router, _ := newTestServer(t)
	registerUser(t, router, "alice@example.com", "alice")

	// Same email, different username.
	rec := doRequest(t, router, http.MethodPost, "/auth/register", "", RegisterRequest{
		Email:    "alice@example.com",
		Username: "alice2",
		Password: "Secret123!",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	var resp ErrorResponse
	decodeJSON(t, rec, &resp)
	assert.Equal(t, "Email or username already exists", resp.Detail)

	// Same username, different email.
	rec = doRequest(t, router, http.MethodPost, "/auth/register", "", RegisterRequest{
		Email:    "alice2@example.com",
		Username: "alice",
		Password: "Secret123!",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRegisterValidation(t *testing.T) {
	router, _ := newTestServer(t)

	tests := []struct {
		name string
		req  RegisterRequest
	}{
		{"missing email", RegisterRequest{Username: "alice", Password: "Secret123!"}},
		{"bad email", RegisterRequest{Email: "not-an-email", Username: "alice", Password: "Secret123!"}},
		{"short username", RegisterRequest{Email: "a@example.com", Username: "ab", Password: "Secret123!"}},
		{"short password", RegisterRequest{Email: "a@example.com", Username: "alice", Password: "pw"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := doRequest(t, router, http.MethodPost, "/auth/register", "", tt.req)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
		})
	}
}

func TestLoginWrongPassword(t *testing.T) {
	router, _ := newTestServer(t)
	registerUser(t, router, "alice@example.com", "alice")

	rec := doRequest(t, router, http.MethodPost, "/auth/login", "", LoginRequest{
		Email:    "alice@example.com",
		Password: "wrong-password",
	})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	var resp ErrorResponse
	decodeJSON(t, rec, &resp)
	assert.Equal(t, "Invalid email or password", resp.Detail)
}

func TestLoginUnknownEmailSameError(t *testing.T) {
	router, _ := newTestServer(t)
	registerUser(t, router, "alice@example.com", "alice")

	known := doRequest(t, router, http.MethodPost, "/auth/login", "", LoginRequest{
		Email:    "alice@example.com",
		Password: "wrong-password",
	})
	unknown := doRequest(t, router, http.MethodPost, "/auth/login", "", LoginRequest{
		Email:    "nobody@example.com",
		Password: "wrong-password",
	})

	// Responses must not reveal whether the email exists.
	assert.Equal(t, http.StatusUnauthorized, known.Code)
	assert.Equal(t, http.StatusUnauthorized, unknown.Code)
	assert.JSONEq(t, known.Body.String(), unknown.Body.String())
}

func TestRegisterStorageUnavailable(t *testing.T) {
	router, fake := newTestServer(t)
	fake.unavailable = true

	rec := doRequest(t, router, http.MethodPost, "/auth/register", "", RegisterRequest{
		Email:    "alice@example.com",
		Username: "alice",
		Password: "Secret123!",
	})
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestLoginStorageUnavailable(t *testing.T) {
	router, fake := newTestServer(t)
	registerUser(t, router, "alice@example.com", "alice")
	fake.unavailable = true

	rec := doRequest(t, router, http.MethodPost, "/auth/login", "", LoginRequest{
		Email:    "alice@example.com",
		Password: "Secret123!",
	})
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}
