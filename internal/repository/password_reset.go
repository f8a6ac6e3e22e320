package repository

import (
	"context"
	"errors"
	"time"

	"github.com/Payphone-Digital/authflow/internal/model"
	ctxutil "github.com/Payphone-Digital/authflow/pkg/context"
	"github.com/Payphone-Digital/authflow/pkg/logger"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type PasswordResetRepository struct {
	db *gorm.DB
}

func NewPasswordResetRepository(db *gorm.DB) *PasswordResetRepository {
	return &PasswordResetRepository{db: db}
}

// Upsert stores hashedToken for email, replacing any earlier request.
func (r *PasswordResetRepository) Upsert(ctx context.Context, email, hashedToken string, createdAt time.Time) error {
	ctx = ctxutil.WithFunction(ctx, "repository", "UpsertResetToken")

	row := model.PasswordResetToken{Email: email, Token: hashedToken, CreatedAt: createdAt}
	result := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "email"}},
		DoUpdates: clause.AssignmentColumns([]string{"token", "created_at"}),
	}).Create(&row)

	if result.Error != nil {
		logger.ErrorWithContext(ctx, "Failed to store reset token").
			String("email", email).
			Err(result.Error).
			Log()
		return result.Error
	}
	return nil
}

func (r *PasswordResetRepository) GetByEmail(ctx context.Context, email string) (*model.PasswordResetToken, error) {
	ctx = ctxutil.WithFunction(ctx, "repository", "GetResetToken")

	var row model.PasswordResetToken
	if err := r.db.WithContext(ctx).Where("email = ?", email).First(&row).Error; err != nil {
		logger.DebugWithContext(ctx, "Reset token lookup failed").
			String("email", email).
			Err(err).
			Log()
		return nil, err
	}
	return &row, nil
}

// ListCreatedAfter returns every reset row newer than since. The caller
// compares hashes; the table holds at most one row per email.
func (r *PasswordResetRepository) ListCreatedAfter(ctx context.Context, since time.Time) ([]model.PasswordResetToken, error) {
	ctx = ctxutil.WithFunction(ctx, "repository", "ListResetTokens")

	start := time.Now()
	var rows []model.PasswordResetToken
	result := r.db.WithContext(ctx).Where("created_at > ?", since).Find(&rows)
	duration := time.Since(start)

	if result.Error != nil {
		logger.ErrorWithContext(ctx, "Failed to list reset tokens").
			Duration(duration).
			Err(result.Error).
			Log()
		return nil, result.Error
	}

	logger.DebugWithContext(ctx, "Reset tokens listed").
		Int("candidate_count", len(rows)).
		Duration(duration).
		Log()
	return rows, nil
}

var errTokenTaken = errors.New("reset token already consumed")

// Redeem deletes the row for email while it still holds hashedToken and
// sets the user's password in the same transaction. Of two concurrent
// callers only one deletes the row; a failed password update rolls the
// delete back so the token stays usable.
func (r *PasswordResetRepository) Redeem(ctx context.Context, email, hashedToken string, userID uint, hashedPassword string) (bool, error) {
	ctx = ctxutil.WithFunction(ctx, "repository", "RedeemResetToken")

	start := time.Now()
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Where("email = ? AND token = ?", email, hashedToken).
			Delete(&model.PasswordResetToken{})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected != 1 {
			return errTokenTaken
		}

		result = tx.Model(&model.User{}).Where("id = ?", userID).Update("password", hashedPassword)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
	duration := time.Since(start)

	if errors.Is(err, errTokenTaken) {
		logger.DebugWithContext(ctx, "Reset token already consumed").
			String("email", email).
			Duration(duration).
			Log()
		return false, nil
	}
	if err != nil {
		logger.ErrorWithContext(ctx, "Failed to redeem reset token").
			String("email", email).
			Uint("target_id", userID).
			Duration(duration).
			Err(err).
			Log()
		return false, err
	}

	logger.InfoWithContext(ctx, "Reset token redeemed").
		Uint("target_id", userID).
		Duration(duration).
		Log()
	return true, nil
}

// DeleteCreatedBefore removes stale rows for the sweeper.
func (r *PasswordResetRepository) DeleteCreatedBefore(ctx context.Context, before time.Time) (int64, error) {
	ctx = ctxutil.WithFunction(ctx, "repository", "DeleteStaleResetTokens")

	result := r.db.WithContext(ctx).Where("created_at <= ?", before).Delete(&model.PasswordResetToken{})
	if result.Error != nil {
		logger.ErrorWithContext(ctx, "Failed to cleanup stale reset tokens").
			Err(result.Error).
			Log()
		return 0, result.Error
	}
	return result.RowsAffected, nil
}
