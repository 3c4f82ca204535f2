package models

import "time"

// Wallet mirrors the host platform's wallet contract: an owner identity with
// two API-key tiers. The admin key authorizes mutations, the invoice key
// read-only access. A user may hold several wallets under one UserID.
type Wallet struct {
	ID        string    `json:"id" gorm:"primaryKey"`
	UserID    string    `json:"user_id" gorm:"index;not null"`
	Name      string    `json:"name"`
	AdminKey  string    `json:"adminkey" gorm:"uniqueIndex;not null"`
	InKey     string    `json:"inkey" gorm:"uniqueIndex;not null"`
	CreatedAt time.Time `json:"created_at"`
}
