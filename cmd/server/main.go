package main

import (
	"context"
	"encoding/json"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/bkim7977/token-market-backend/internal/auth"
	"github.com/bkim7977/token-market-backend/internal/config"
	"github.com/bkim7977/token-market-backend/internal/database"
	"github.com/bkim7977/token-market-backend/internal/handlers"
	"github.com/bkim7977/token-market-backend/internal/logger"
	"github.com/bkim7977/token-market-backend/internal/middleware"
	redisClient "github.com/bkim7977/token-market-backend/internal/redis"
	"github.com/bkim7977/token-market-backend/internal/service"
	"github.com/bkim7977/token-market-backend/internal/store"
)

func main() {
	cfg := config.Load()
	log := logger.New(cfg.Debug)

	log.Info().Str("environment", cfg.Environment).Msg("Starting token market backend")

	// The server must come up and answer /health even when Postgres is
	// unreachable, so a failed ping is a warning, not a fatal.
	db, err := database.NewConnection(&cfg.Database, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to configure database")
	}
	defer db.Close()

	pingCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	if err := db.Ping(pingCtx); err != nil {
		log.Warn().Err(err).Msg("Database unreachable at startup, continuing degraded")
	} else if err := db.InitSchema(pingCtx); err != nil {
		log.Warn().Err(err).Msg("Schema initialization failed")
	}
	cancel()

	// Redis is a catalog cache only; run without it when unavailable.
	cache, err := redisClient.NewClient(&cfg.Redis, log)
	if err != nil {
		log.Warn().Err(err).Msg("Redis unreachable, catalog caching disabled")
		cache = nil
	} else {
		defer cache.Close()
	}

	dataStore := store.New(db, log, cfg.QueryTimeout)
	tokens := auth.NewTokenManager(cfg.JWTSecret, cfg.TokenTTL)
	credentials := service.NewCredentials(dataStore, tokens, log)

	authHandler := handlers.NewAuthHandler(credentials, log)
	collectibleHandler := handlers.NewCollectibleHandler(dataStore, cache, cfg.Redis.CacheTTL, log)
	balanceHandler := handlers.NewBalanceHandler(dataStore, log)
	transactionHandler := handlers.NewTransactionHandler(dataStore, log)
	referralHandler := handlers.NewReferralHandler(dataStore, log)
	redemptionHandler := handlers.NewRedemptionHandler(dataStore, log)

	authMW := middleware.NewAuth(tokens)

	r := mux.NewRouter()
	r.Use(middleware.Metrics)

	r.Handle("/metrics", promhttp.Handler())
	r.HandleFunc("/health", func(w http.ResponseWriter, req *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]string{
			"status": "healthy",
			"time":   time.Now().Format(time.RFC3339),
		})
	}).Methods("GET")

	// Auth routes
	r.HandleFunc("/auth/register", authHandler.Register).Methods("POST")
	r.HandleFunc("/auth/login", authHandler.Login).Methods("POST")

	// Public catalog routes
	r.HandleFunc("/collectibles", collectibleHandler.List).Methods("GET")
	r.HandleFunc("/collectibles/{id}", collectibleHandler.Get).Methods("GET")
	r.HandleFunc("/collectibles/{id}/price-history", collectibleHandler.PriceHistory).Methods("GET")

	// Authenticated catalog writes
	r.HandleFunc("/collectibles", authMW.Require(collectibleHandler.Create)).Methods("POST")
	r.HandleFunc("/collectibles/{id}/price", authMW.Require(collectibleHandler.RecordPrice)).Methods("POST")

	// Profile routes
	r.HandleFunc("/profile/balance", authMW.Require(balanceHandler.Get)).Methods("GET")
	r.HandleFunc("/profile/balance", authMW.Require(balanceHandler.Set)).Methods("PUT")
	r.HandleFunc("/profile/balance/adjust", authMW.Require(balanceHandler.Adjust)).Methods("POST")
	r.HandleFunc("/profile/transactions", authMW.Require(transactionHandler.List)).Methods("GET")
	r.HandleFunc("/profile/referrals", authMW.Require(referralHandler.List)).Methods("GET")
	r.HandleFunc("/profile/redemptions", authMW.Require(redemptionHandler.List)).Methods("GET")

	// Resource creation routes
	r.HandleFunc("/transactions", authMW.Require(transactionHandler.Create)).Methods("POST")
	r.HandleFunc("/referrals", authMW.Require(referralHandler.Create)).Methods("POST")
	r.HandleFunc("/redemptions", authMW.Require(redemptionHandler.Create)).Methods("POST")

	handler := corsMiddleware(r)

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	stopChan := make(chan os.Signal, 1)
	signal.Notify(stopChan, syscall.SIGINT, syscall.SIGTERM)

	log.Info().Str("port", cfg.Port).Msg("Starting HTTP server")
	go func() {
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Server failed")
		}
	}()

	<-stopChan
	log.Info().Msg("Shutdown signal received, shutting down server")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatal().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server exited gracefully")
}

// corsMiddleware adds CORS headers to all responses
func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}
