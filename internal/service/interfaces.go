package service

import (
	"context"
	"time"

	"github.com/Payphone-Digital/authflow/internal/model"
)

// The stores below are satisfied by the gorm repositories in
// internal/repository. Lookups that miss return gorm.ErrRecordNotFound.

type UserStore interface {
	GetByID(ctx context.Context, id uint) (*model.User, error)
	GetByEmail(ctx context.Context, email string) (*model.User, error)
	ExistsByEmail(ctx context.Context, email string, excludeID uint) (bool, error)
	ExistsByCIN(ctx context.Context, cin string, excludeID uint) (bool, error)
	Create(ctx context.Context, user *model.User) error
	UpdateFields(ctx context.Context, id uint, fields map[string]interface{}) error
	UpdatePassword(ctx context.Context, id uint, hashedPassword string) error
	MarkEmailVerified(ctx context.Context, id uint, at time.Time) (bool, error)
	UpdateLastLogin(ctx context.Context, id uint, at time.Time) error
}

type RefreshTokenStore interface {
	Create(ctx context.Context, token *model.RefreshToken) error
	Consume(ctx context.Context, tokenHash string) (*model.RefreshToken, error)
	DeleteByHash(ctx context.Context, tokenHash string) (int64, error)
	DeleteByUser(ctx context.Context, userID uint) (int64, error)
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}

type ResetTokenStore interface {
	Upsert(ctx context.Context, email, hashedToken string, createdAt time.Time) error
	GetByEmail(ctx context.Context, email string) (*model.PasswordResetToken, error)
	ListCreatedAfter(ctx context.Context, since time.Time) ([]model.PasswordResetToken, error)
	// Redeem consumes the row holding hashedToken and sets the password
	// atomically. It reports false when another caller consumed it first.
	Redeem(ctx context.Context, email, hashedToken string, userID uint, hashedPassword string) (bool, error)
	DeleteCreatedBefore(ctx context.Context, before time.Time) (int64, error)
}

// Notifier delivers mail and domain events. Implementations must not hold
// the caller past a short timeout.
type Notifier interface {
	SendMail(ctx context.Context, template, to string, data map[string]any) error
	PublishEvent(ctx context.Context, name string, payload map[string]any)
}
