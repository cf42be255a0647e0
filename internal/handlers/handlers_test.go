package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/bkim7977/token-market-backend/internal/auth"
	"github.com/bkim7977/token-market-backend/internal/middleware"
	"github.com/bkim7977/token-market-backend/internal/models"
	"github.com/bkim7977/token-market-backend/internal/service"
	"github.com/bkim7977/token-market-backend/internal/store"
)

// fakeStore is an in-memory stand-in for the Postgres store, honoring the
// same error taxonomy and ownership rules. Setting unavailable simulates a
// storage backend outage.
type fakeStore struct {
	mu          sync.Mutex
	unavailable bool

	accounts     map[uuid.UUID]*models.Account
	byEmail      map[string]uuid.UUID
	byUsername   map[string]uuid.UUID
	balances     map[uuid.UUID]*models.Balance
	collectibles map[uuid.UUID]*models.Collectible
	priceHistory map[uuid.UUID][]models.PriceRecord
	transactions []models.Transaction
	referrals    []models.Referral
	redemptions  []models.Redemption
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		accounts:     make(map[uuid.UUID]*models.Account),
		byEmail:      make(map[string]uuid.UUID),
		byUsername:   make(map[string]uuid.UUID),
		balances:     make(map[uuid.UUID]*models.Balance),
		collectibles: make(map[uuid.UUID]*models.Collectible),
		priceHistory: make(map[uuid.UUID][]models.PriceRecord),
	}
}

func (f *fakeStore) failIfDown() error {
	if f.unavailable {
		return store.ErrUnavailable
	}
	return nil
}

func (f *fakeStore) CreateAccount(_ context.Context, email, username, passwordHash string) (*models.Account, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.failIfDown(); err != nil {
		return nil, err
	}
	if _, ok := f.byEmail[email]; ok {
		return nil, store.ErrAlreadyExists
	}
	if _, ok := f.byUsername[username]; ok {
		return nil, store.ErrAlreadyExists
	}
	account := &models.Account{
		ID:           uuid.New(),
		Email:        email,
		Username:     username,
		PasswordHash: passwordHash,
		CreatedAt:    time.Now(),
	}
	f.accounts[account.ID] = account
	f.byEmail[email] = account.ID
	f.byUsername[username] = account.ID
	// Balance created together with the account, like the real store.
	f.balances[account.ID] = &models.Balance{
		ID:          uuid.New(),
		UserID:      account.ID,
		Balance:     0,
		LastUpdated: time.Now(),
	}
	return account, nil
}

func (f *fakeStore) GetAccountByEmail(_ context.Context, email string) (*models.Account, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.failIfDown(); err != nil {
		return nil, err
	}
	id, ok := f.byEmail[email]
	if !ok {
		return nil, store.ErrNotFound
	}
	return f.accounts[id], nil
}

func (f *fakeStore) TouchLastLogin(_ context.Context, userID uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if account, ok := f.accounts[userID]; ok {
		now := time.Now()
		account.LastLogin = &now
	}
	return nil
}

func (f *fakeStore) GetBalance(_ context.Context, userID uuid.UUID) (*models.Balance, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.failIfDown(); err != nil {
		return nil, err
	}
	b, ok := f.balances[userID]
	if !ok {
		return nil, store.ErrNotFound
	}
	copied := *b
	return &copied, nil
}

func (f *fakeStore) SetBalance(_ context.Context, userID uuid.UUID, newBalance, previous float64) (*models.Balance, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.failIfDown(); err != nil {
		return nil, err
	}
	b, ok := f.balances[userID]
	if !ok {
		return nil, store.ErrNotFound
	}
	if b.Balance != previous {
		return nil, store.ErrConflict
	}
	b.Balance = newBalance
	b.LastUpdated = time.Now()
	copied := *b
	return &copied, nil
}

func (f *fakeStore) AdjustBalance(_ context.Context, userID uuid.UUID, delta float64) (*models.Balance, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.failIfDown(); err != nil {
		return nil, err
	}
	b, ok := f.balances[userID]
	if !ok {
		return nil, store.ErrNotFound
	}
	b.Balance += delta
	b.LastUpdated = time.Now()
	copied := *b
	return &copied, nil
}

func (f *fakeStore) ListCollectibles(_ context.Context) ([]models.Collectible, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.failIfDown(); err != nil {
		return nil, err
	}
	out := []models.Collectible{}
	for _, c := range f.collectibles {
		out = append(out, *c)
	}
	return out, nil
}

func (f *fakeStore) GetCollectible(_ context.Context, id uuid.UUID) (*models.Collectible, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.failIfDown(); err != nil {
		return nil, err
	}
	c, ok := f.collectibles[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	copied := *c
	return &copied, nil
}

func (f *fakeStore) CreateCollectible(_ context.Context, c *models.Collectible) (*models.Collectible, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.failIfDown(); err != nil {
		return nil, err
	}
	created := *c
	created.ID = uuid.New()
	f.collectibles[created.ID] = &created
	f.priceHistory[created.ID] = []models.PriceRecord{{
		ID:            uuid.New(),
		CollectibleID: created.ID,
		Price:         created.CurrentPrice,
		RecordedAt:    time.Now(),
	}}
	copied := created
	return &copied, nil
}

func (f *fakeStore) GetPriceHistory(_ context.Context, collectibleID uuid.UUID) ([]models.PriceRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.failIfDown(); err != nil {
		return nil, err
	}
	if _, ok := f.collectibles[collectibleID]; !ok {
		return nil, store.ErrNotFound
	}
	return append([]models.PriceRecord{}, f.priceHistory[collectibleID]...), nil
}

func (f *fakeStore) RecordPrice(_ context.Context, collectibleID uuid.UUID, price float64) (*models.PriceRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.failIfDown(); err != nil {
		return nil, err
	}
	c, ok := f.collectibles[collectibleID]
	if !ok {
		return nil, store.ErrNotFound
	}
	c.CurrentPrice = price
	record := models.PriceRecord{
		ID:            uuid.New(),
		CollectibleID: collectibleID,
		Price:         price,
		RecordedAt:    time.Now(),
	}
	f.priceHistory[collectibleID] = append([]models.PriceRecord{record}, f.priceHistory[collectibleID]...)
	copied := record
	return &copied, nil
}

func (f *fakeStore) CreateTransaction(_ context.Context, userID uuid.UUID, collectibleID *uuid.UUID, txType string, amount float64, description string) (*models.Transaction, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.failIfDown(); err != nil {
		return nil, err
	}
	t := models.Transaction{
		ID:            uuid.New(),
		UserID:        userID,
		CollectibleID: collectibleID,
		Type:          txType,
		Amount:        amount,
		Description:   description,
		CreatedAt:     time.Now(),
	}
	f.transactions = append(f.transactions, t)
	copied := t
	return &copied, nil
}

func (f *fakeStore) ListTransactions(_ context.Context, userID uuid.UUID) ([]models.Transaction, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.failIfDown(); err != nil {
		return nil, err
	}
	out := []models.Transaction{}
	for _, t := range f.transactions {
		if t.UserID == userID {
			out = append(out, t)
		}
	}
	return out, nil
}

func (f *fakeStore) CreateReferral(_ context.Context, referrerID, referredID uuid.UUID, bonusAmount float64) (*models.Referral, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.failIfDown(); err != nil {
		return nil, err
	}
	for _, r := range f.referrals {
		if r.ReferredID == referredID {
			return nil, store.ErrAlreadyExists
		}
	}
	r := models.Referral{
		ID:          uuid.New(),
		ReferrerID:  referrerID,
		ReferredID:  referredID,
		BonusAmount: bonusAmount,
		CreatedAt:   time.Now(),
	}
	f.referrals = append(f.referrals, r)
	copied := r
	return &copied, nil
}

func (f *fakeStore) ListReferrals(_ context.Context, userID uuid.UUID) ([]models.Referral, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.failIfDown(); err != nil {
		return nil, err
	}
	out := []models.Referral{}
	for _, r := range f.referrals {
		if r.ReferrerID == userID || r.ReferredID == userID {
			out = append(out, r)
		}
	}
	return out, nil
}

func (f *fakeStore) CreateRedemption(_ context.Context, userID, collectibleID uuid.UUID, cost float64) (*models.Redemption, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.failIfDown(); err != nil {
		return nil, err
	}
	r := models.Redemption{
		ID:            uuid.New(),
		UserID:        userID,
		CollectibleID: collectibleID,
		Cost:          cost,
		Status:        models.RedemptionStatusPending,
		CreatedAt:     time.Now(),
	}
	f.redemptions = append(f.redemptions, r)
	copied := r
	return &copied, nil
}

func (f *fakeStore) ListRedemptions(_ context.Context, userID uuid.UUID) ([]models.Redemption, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.failIfDown(); err != nil {
		return nil, err
	}
	out := []models.Redemption{}
	for _, r := range f.redemptions {
		if r.UserID == userID {
			out = append(out, r)
		}
	}
	return out, nil
}

// newTestServer wires a router exactly like cmd/server does, backed by the
// fake store and without Redis.
func newTestServer(t *testing.T) (*mux.Router, *fakeStore) {
	t.Helper()
	log := zerolog.Nop()
	fake := newFakeStore()
	tokens := auth.NewTokenManager("test-secret", time.Hour)
	credentials := service.NewCredentials(fake, tokens, log)

	authHandler := NewAuthHandler(credentials, log)
	collectibleHandler := NewCollectibleHandler(fake, nil, 0, log)
	balanceHandler := NewBalanceHandler(fake, log)
	transactionHandler := NewTransactionHandler(fake, log)
	referralHandler := NewReferralHandler(fake, log)
	redemptionHandler := NewRedemptionHandler(fake, log)

	authMW := middleware.NewAuth(tokens)

	r := mux.NewRouter()
	r.HandleFunc("/auth/register", authHandler.Register).Methods("POST")
	r.HandleFunc("/auth/login", authHandler.Login).Methods("POST")
	r.HandleFunc("/collectibles", collectibleHandler.List).Methods("GET")
	r.HandleFunc("/collectibles/{id}", collectibleHandler.Get).Methods("GET")
	r.HandleFunc("/collectibles/{id}/price-history", collectibleHandler.PriceHistory).Methods("GET")
	r.HandleFunc("/collectibles", authMW.Require(collectibleHandler.Create)).Methods("POST")
	r.HandleFunc("/collectibles/{id}/price", authMW.Require(collectibleHandler.RecordPrice)).Methods("POST")
	r.HandleFunc("/profile/balance", authMW.Require(balanceHandler.Get)).Methods("GET")
	r.HandleFunc("/profile/balance", authMW.Require(balanceHandler.Set)).Methods("PUT")
	r.HandleFunc("/profile/balance/adjust", authMW.Require(balanceHandler.Adjust)).Methods("POST")
	r.HandleFunc("/profile/transactions", authMW.Require(transactionHandler.List)).Methods("GET")
	r.HandleFunc("/profile/referrals", authMW.Require(referralHandler.List)).Methods("GET")
	r.HandleFunc("/profile/redemptions", authMW.Require(redemptionHandler.List)).Methods("GET")
	r.HandleFunc("/transactions", authMW.Require(transactionHandler.Create)).Methods("POST")
	r.HandleFunc("/referrals", authMW.Require(referralHandler.Create)).Methods("POST")
	r.HandleFunc("/redemptions", authMW.Require(redemptionHandler.Create)).Methods("POST")

	return r, fake
}

// doRequest executes an HTTP request against the test router.
func doRequest(t *testing.T, router *mux.Router, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func decodeJSON(t *testing.T, rec *httptest.ResponseRecorder, out interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), out))
}

// registerUser registers an account and returns its token and id.
func registerUser(t *testing.T, router *mux.Router, email, username string) (string, uuid.UUID) {
	t.Helper()
	rec := doRequest(t, router, http.MethodPost, "/auth/register", "", RegisterRequest{
		Email:    email,
		Username: username,
		Password: "Secret123!",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp AuthResponse
	decodeJSON(t, rec, &resp)
	require.NotEmpty(t, resp.AccessToken)
	require.NotNil(t, resp.User)
	return resp.AccessToken, resp.User.ID
}
