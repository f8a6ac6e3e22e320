package model

import "time"

// RefreshToken is one outstanding session. Only the SHA-256 of the opaque
// value is stored; a row is deleted the moment it is consumed.
type RefreshToken struct {
	ID        uint      `gorm:"primaryKey"`
	UserID    uint      `gorm:"column:user_id;not null;index"`
	TokenHash string    `gorm:"column:token_hash;size:64;not null;uniqueIndex"`
	ExpiresAt time.Time `gorm:"column:expires_at;not null;index"`
	CreatedAt time.Time `gorm:"column:created_at"`
}

func (t *RefreshToken) Expired(now time.Time) bool {
	return !now.Before(t.ExpiresAt)
}

// PasswordResetToken holds one bcrypt-hashed token per email. A new request
// for the same email replaces the previous row.
type PasswordResetToken struct {
	Email     string    `gorm:"column:email;size:255;primaryKey"`
	Token     string    `gorm:"column:token;not null"`
	CreatedAt time.Time `gorm:"column:created_at;not null;index"`
}
