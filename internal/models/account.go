// internal/models/account.go
package models

import "time"

// Account is a locally managed login used when the app runs against its own
// database instead of a hosted auth service.
type Account struct {
	ID           string    `gorm:"column:id;primaryKey"`
	Email        string    `gorm:"column:email;uniqueIndex;not null"`
	PasswordHash string    `gorm:"column:password_hash;not null"`
	CreatedAt    time.Time `gorm:"column:created_at;autoCreateTime"`
}

// RefreshToken is a single-use token that exchanges for a new session.
// Only the SHA-256 digest of the token is stored.
type RefreshToken struct {
	TokenHash string    `gorm:"column:token_hash;primaryKey"`
	AccountID string    `gorm:"column:account_id;index;not null"`
	ExpiresAt time.Time `gorm:"column:expires_at;not null"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
}
