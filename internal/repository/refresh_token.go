package repository

import (
	"context"
	"time"

	"github.com/Payphone-Digital/authflow/internal/model"
	ctxutil "github.com/Payphone-Digital/authflow/pkg/context"
	"github.com/Payphone-Digital/authflow/pkg/logger"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type RefreshTokenRepository struct {
	db *gorm.DB
}

func NewRefreshTokenRepository(db *gorm.DB) *RefreshTokenRepository {
	return &RefreshTokenRepository{db: db}
}

func (r *RefreshTokenRepository) Create(ctx context.Context, token *model.RefreshToken) error {
	ctx = ctxutil.WithFunction(ctx, "repository", "CreateRefreshToken")

	start := time.Now()
	if err := r.db.WithContext(ctx).Create(token).Error; err != nil {
		logger.ErrorWithContext(ctx, "Failed to store refresh token").
			Uint("owner_id", token.UserID).
			Duration(time.Since(start)).
			Err(err).
			Log()
		return err
	}

	logger.DebugWithContext(ctx, "Refresh token stored").
		Uint("owner_id", token.UserID).
		Time("expires_at", token.ExpiresAt).
		Duration(time.Since(start)).
		Log()
	return nil
}

// Consume deletes the row for tokenHash and returns it. The DELETE is the
// only synchronisation point: of two concurrent callers exactly one sees
// RowsAffected == 1, the other gets gorm.ErrRecordNotFound. Expiry is left
// to the caller so an expired row is still removed on first use.
func (r *RefreshTokenRepository) Consume(ctx context.Context, tokenHash string) (*model.RefreshToken, error) {
	ctx = ctxutil.WithFunction(ctx, "repository", "ConsumeRefreshToken")

	start := time.Now()
	var token model.RefreshToken
	result := r.db.WithContext(ctx).
		Clauses(clause.Returning{}).
		Where("token_hash = ?", tokenHash).
		Delete(&token)
	duration := time.Since(start)

	if result.Error != nil {
		logger.ErrorWithContext(ctx, "Failed to consume refresh token").
			Duration(duration).
			Err(result.Error).
			Log()
		return nil, result.Error
	}

	if result.RowsAffected != 1 {
		logger.DebugWithContext(ctx, "Refresh token not found or already used").
			Duration(duration).
			Log()
		return nil, gorm.ErrRecordNotFound
	}

	logger.DebugWithContext(ctx, "Refresh token consumed").
		Uint("owner_id", token.UserID).
		Duration(duration).
		Log()
	return &token, nil
}

// DeleteByHash removes the row if present; a missing row is not an error.
func (r *RefreshTokenRepository) DeleteByHash(ctx context.Context, tokenHash string) (int64, error) {
	ctx = ctxutil.WithFunction(ctx, "repository", "DeleteRefreshToken")

	result := r.db.WithContext(ctx).Where("token_hash = ?", tokenHash).Delete(&model.RefreshToken{})
	if result.Error != nil {
		logger.ErrorWithContext(ctx, "Failed to delete refresh token").
			Err(result.Error).
			Log()
		return 0, result.Error
	}
	return result.RowsAffected, nil
}

func (r *RefreshTokenRepository) DeleteByUser(ctx context.Context, userID uint) (int64, error) {
	ctx = ctxutil.WithFunction(ctx, "repository", "DeleteUserRefreshTokens")

	result := r.db.WithContext(ctx).Where("user_id = ?", userID).Delete(&model.RefreshToken{})
	if result.Error != nil {
		logger.ErrorWithContext(ctx, "Failed to revoke user sessions").
			Uint("owner_id", userID).
			Err(result.Error).
			Log()
		return 0, result.Error
	}

	logger.InfoWithContext(ctx, "User sessions revoked").
		Uint("owner_id", userID).
		Int64("revoked_count", result.RowsAffected).
		Log()
	return result.RowsAffected, nil
}

// DeleteExpired removes every row whose expiry is not after now.
func (r *RefreshTokenRepository) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	ctx = ctxutil.WithFunction(ctx, "repository", "DeleteExpiredRefreshTokens")

	start := time.Now()
	result := r.db.WithContext(ctx).Where("expires_at <= ?", now).Delete(&model.RefreshToken{})
	duration := time.Since(start)

	if result.Error != nil {
		logger.ErrorWithContext(ctx, "Failed to cleanup expired refresh tokens").
			Duration(duration).
			Err(result.Error).
			Log()
		return 0, result.Error
	}

	logger.DebugWithContext(ctx, "Expired refresh tokens cleaned up").
		Int64("cleaned_count", result.RowsAffected).
		Duration(duration).
		Log()
	return result.RowsAffected, nil
}
