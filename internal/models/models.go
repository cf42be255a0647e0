package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Account represents a registered user. The password hash never leaves the
// server in any response.
type Account struct {
	ID           uuid.UUID  `json:"id"`
	Email        string     `json:"email"`
	Username     string     `json:"username"`
	PasswordHash string     `json:"-"`
	CreatedAt    time.Time  `json:"created_at"`
	LastLogin    *time.Time `json:"last_login,omitempty"`
}

// Balance is the one-to-one token balance for an account. It is created in
// the same transaction as the account row, so an account is never observable
// without a balance.
type Balance struct {
	ID          uuid.UUID `json:"id"`
	UserID      uuid.UUID `json:"user_id"`
	Balance     float64   `json:"balance"`
	LastUpdated time.Time `json:"last_updated"`
}

// Collectible is a globally readable catalog item. Any authenticated subject
// may create one or record a price; there is no per-row owner.
type Collectible struct {
	ID           uuid.UUID       `json:"id"`
	Name         string          `json:"name"`
	Type         string          `json:"type"`
	SetName      string          `json:"set_name"`
	Rarity       string          `json:"rarity"`
	Edition      string          `json:"edition,omitempty"`
	Metadata     json.RawMessage `json:"metadata,omitempty"`
	ImageURL     string          `json:"image_url,omitempty"`
	CurrentPrice float64         `json:"current_price"`
}

// PriceRecord is an append-only price point for a collectible.
type PriceRecord struct {
	ID            uuid.UUID `json:"id"`
	CollectibleID uuid.UUID `json:"collectible_id"`
	Price         float64   `json:"price"`
	RecordedAt    time.Time `json:"recorded_at"`
}

// Transaction belongs to exactly one account. The owner is always the
// authenticated subject at creation time, never caller-supplied.
type Transaction struct {
	ID            uuid.UUID  `json:"id"`
	UserID        uuid.UUID  `json:"user_id"`
	CollectibleID *uuid.UUID `json:"collectible_id,omitempty"`
	Type          string     `json:"transaction_type"`
	Amount        float64    `json:"amount"`
	Description   string     `json:"description"`
	CreatedAt     time.Time  `json:"created_at"`
}

// Referral links a referrer account to a referred account. Each account can
// be referred at most once.
type Referral struct {
	ID          uuid.UUID `json:"id"`
	ReferrerID  uuid.UUID `json:"referrer_id"`
	ReferredID  uuid.UUID `json:"referred_id"`
	BonusAmount float64   `json:"bonus_amount"`
	CreatedAt   time.Time `json:"created_at"`
}

// Redemption status lifecycle. A redemption starts pending; transitions to a
// terminal status happen in an external fulfilment process, not here.
const (
	RedemptionStatusPending   = "pending"
	RedemptionStatusCompleted = "completed"
	RedemptionStatusCancelled = "cancelled"
)

// Redemption records an account spending tokens on a collectible.
type Redemption struct {
	ID            uuid.UUID `json:"id"`
	UserID        uuid.UUID `json:"user_id"`
	CollectibleID uuid.UUID `json:"collectible_id"`
	Cost          float64   `json:"cost"`
	Status        string    `json:"status"`
	CreatedAt     time.Time `json:"created_at"`
}
