package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/rs/zerolog"

	"github.com/bkim7977/token-market-backend/internal/auth"
	"github.com/bkim7977/token-market-backend/internal/middleware"
	"github.com/bkim7977/token-market-backend/internal/models"
	"github.com/bkim7977/token-market-backend/internal/store"
)

// CredentialService issues accounts and bearer tokens.
type CredentialService interface {
	Register(ctx context.Context, email, username, password string) (*models.Account, string, error)
	Authenticate(ctx context.Context, email, password string) (*models.Account, string, error)
}

type AuthHandler struct {
	creds  CredentialService
	logger zerolog.Logger
}

func NewAuthHandler(creds CredentialService, logger zerolog.Logger) *AuthHandler {
	return &AuthHandler{creds: creds, logger: logger}
}

// RegisterRequest represents the registration request body
type RegisterRequest struct {
	Email    string `json:"email"`
	Username string `json:"username"`
	Password string `json:"password"`
}

// LoginRequest represents the login request body
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// AuthResponse represents the authentication response
type AuthResponse struct {
	AccessToken string          `json:"access_token"`
	TokenType   string          `json:"token_type"`
	User        *models.Account `json:"user"`
}

// Register handles user registration
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := validateRegisterRequest(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	account, token, err := h.creds.Register(r.Context(), req.Email, req.Username, req.Password)
	if err != nil {
		if errors.Is(err, store.ErrAlreadyExists) {
			// Generic message; registration collisions map to 400.
			respondWithError(w, http.StatusBadRequest, "Email or username already exists")
			return
		}
		if errors.Is(err, store.ErrUnavailable) {
			respondWithError(w, http.StatusServiceUnavailable, "Storage backend unavailable")
			return
		}
		h.logger.Error().Err(err).Msg("Registration failed")
		respondWithError(w, http.StatusBadRequest, "Failed to create user")
		return
	}

	respondWithJSON(w, http.StatusOK, AuthResponse{
		AccessToken: token,
		TokenType:   "bearer",
		User:        account,
	})
}

// Login handles user authentication
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if req.Email == "" || req.Password == "" {
		respondWithError(w, http.StatusBadRequest, "Email and password are required")
		return
	}

	account, token, err := h.creds.Authenticate(r.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, store.ErrUnavailable) {
			respondWithError(w, http.StatusServiceUnavailable, "Storage backend unavailable")
			return
		}
		// Unknown email and wrong password are indistinguishable on the wire.
		respondWithError(w, http.StatusUnauthorized, "Invalid email or password")
		return
	}

	respondWithJSON(w, http.StatusOK, AuthResponse{
		AccessToken: token,
		TokenType:   "bearer",
		User:        account,
	})
}

// validateRegisterRequest validates the registration request
func validateRegisterRequest(req *RegisterRequest) error {
	if req.Email == "" {
		return &ValidationError{Field: "email", Message: "Email is required"}
	}
	if !strings.Contains(req.Email, "@") {
		return &ValidationError{Field: "email", Message: "Invalid email format"}
	}
	if req.Username == "" {
		return &ValidationError{Field: "username", Message: "Username is required"}
	}
	if len(req.Username) < 3 || len(req.Username) > 50 {
		return &ValidationError{Field: "username", Message: "Username must be between 3 and 50 characters"}
	}
	if req.Password == "" {
		return &ValidationError{Field: "password", Message: "Password is required"}
	}
	if len(req.Password) < 6 {
		return &ValidationError{Field: "password", Message: "Password must be at least 6 characters"}
	}
	return nil
}

// claimsOrUnauthorized pulls verified claims off the request context.
func claimsOrUnauthorized(w http.ResponseWriter, r *http.Request) (*auth.Claims, bool) {
	claims, ok := middleware.GetUserClaims(r)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "Unauthorized")
		return nil, false
	}
	return claims, true
}
