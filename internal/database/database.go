package database

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/lib/pq" // PostgreSQL driver
	"github.com/rs/zerolog"

	"github.com/bkim7977/token-market-backend/internal/config"
)

// DB wraps the database connection
type DB struct {
	*sql.DB
	logger zerolog.Logger
}

// NewConnection opens a connection pool with the provided configuration.
// The connection is established lazily; callers decide whether a failed
// Ping is fatal, so the HTTP server can come up even when Postgres is down.
func NewConnection(cfg *config.DatabaseConfig, logger zerolog.Logger) (*DB, error) {
	connStr := fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.DBName, cfg.SSLMode,
	)

	db, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	db.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)

	logger.Info().
		Str("host", cfg.Host).
		Str("port", cfg.Port).
		Str("database", cfg.DBName).
		Int("max_open_conns", cfg.MaxOpenConns).
		Int("max_idle_conns", cfg.MaxIdleConns).
		Msg("Database pool configured")

	return &DB{DB: db, logger: logger}, nil
}

// Ping verifies the backend is reachable.
func (db *DB) Ping(ctx context.Context) error {
	return db.PingContext(ctx)
}

// InitSchema creates the token market tables if they don't exist.
func (db *DB) InitSchema(ctx context.Context) error {
	schema := `
	-- Users table
	CREATE TABLE IF NOT EXISTS users (
		id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
		email VARCHAR UNIQUE NOT NULL,
		username VARCHAR UNIQUE NOT NULL,
		password_hash VARCHAR NOT NULL,
		created_at TIMESTAMP WITH TIME ZONE DEFAULT NOW(),
		last_login TIMESTAMP WITH TIME ZONE
	);

	-- Collectibles table (public catalog, no per-row owner)
	CREATE TABLE IF NOT EXISTS collectibles (
		id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
		name VARCHAR NOT NULL,
		type VARCHAR,
		set_name VARCHAR,
		rarity VARCHAR,
		edition VARCHAR,
		metadata JSONB,
		image_url VARCHAR,
		current_price DECIMAL(10,2)
	);

	-- Token balances table (exactly one row per user)
	CREATE TABLE IF NOT EXISTS token_balances (
		id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
		user_id UUID REFERENCES users(id) ON DELETE CASCADE,
		balance DECIMAL(10,2) DEFAULT 0.00,
		last_updated TIMESTAMP WITH TIME ZONE DEFAULT NOW(),
		UNIQUE(user_id)
	);

	-- Price history table (append-only)
	CREATE TABLE IF NOT EXISTS price_history (
		id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
		collectible_id UUID REFERENCES collectibles(id) ON DELETE CASCADE,
		price DECIMAL(10,2) NOT NULL,
		recorded_at TIMESTAMP WITH TIME ZONE DEFAULT NOW()
	);

	-- Transactions table
	CREATE TABLE IF NOT EXISTS transactions (
		id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
		user_id UUID REFERENCES users(id) ON DELETE CASCADE,
		collectible_id UUID REFERENCES collectibles(id) ON DELETE SET NULL,
		transaction_type VARCHAR NOT NULL,
		amount DECIMAL(10,2) NOT NULL,
		description TEXT,
		created_at TIMESTAMP WITH TIME ZONE DEFAULT NOW()
	);

	-- Referrals table (each account referred at most once)
	CREATE TABLE IF NOT EXISTS referrals (
		id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
		referrer_id UUID REFERENCES users(id) ON DELETE CASCADE,
		referred_id UUID REFERENCES users(id) ON DELETE CASCADE,
		bonus_amount DECIMAL(10,2),
		created_at TIMESTAMP WITH TIME ZONE DEFAULT NOW(),
		UNIQUE(referred_id)
	);

	-- Redemptions table
	CREATE TABLE IF NOT EXISTS redemptions (
		id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
		user_id UUID REFERENCES users(id) ON DELETE CASCADE,
		collectible_id UUID REFERENCES collectibles(id) ON DELETE SET NULL,
		cost DECIMAL(10,2) NOT NULL,
		status VARCHAR DEFAULT 'pending',
		created_at TIMESTAMP WITH TIME ZONE DEFAULT NOW()
	);

	-- Indexes for the common lookup paths
	CREATE INDEX IF NOT EXISTS idx_users_email ON users(email);
	CREATE INDEX IF NOT EXISTS idx_users_username ON users(username);
	CREATE INDEX IF NOT EXISTS idx_token_balances_user_id ON token_balances(user_id);
	CREATE INDEX IF NOT EXISTS idx_price_history_collectible_id ON price_history(collectible_id);
	CREATE INDEX IF NOT EXISTS idx_price_history_recorded_at ON price_history(recorded_at DESC);
	CREATE INDEX IF NOT EXISTS idx_transactions_user_id ON transactions(user_id);
	CREATE INDEX IF NOT EXISTS idx_transactions_created_at ON transactions(created_at DESC);
	CREATE INDEX IF NOT EXISTS idx_referrals_referrer_id ON referrals(referrer_id);
	CREATE INDEX IF NOT EXISTS idx_redemptions_user_id ON redemptions(user_id);
	`

	if _, err := db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("failed to initialize schema: %w", err)
	}

	db.logger.Info().Msg("Schema initialized with indexes")
	return nil
}
