package database

import (
	"github.com/Payphone-Digital/authflow/pkg/logger"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// indexes are the partial indexes gorm tags cannot express. The sweeper and
// the reset token lookup both scan by time.
var indexes = []string{
	"CREATE INDEX IF NOT EXISTS idx_users_unverified ON users(created_at) WHERE email_verified_at IS NULL AND deleted_at IS NULL;",
	"CREATE INDEX IF NOT EXISTS idx_users_email_active ON users(email) WHERE deleted_at IS NULL;",
	"CREATE INDEX IF NOT EXISTS idx_refresh_tokens_user_expiry ON refresh_tokens(user_id, expires_at);",
	"CREATE INDEX IF NOT EXISTS idx_password_reset_tokens_recent ON password_reset_tokens(created_at DESC);",
}

// EnsureIndexes creates the extra indexes. A failed index is logged and
// skipped; the service works without it, only slower.
func EnsureIndexes(db *gorm.DB) error {
	created := 0
	for _, stmt := range indexes {
		if err := db.Exec(stmt).Error; err != nil {
			logger.GetLogger().Warn("Failed to create index",
				zap.String("statement", stmt),
				zap.Error(err),
			)
			continue
		}
		created++
	}

	logger.GetLogger().Info("Database indexes ensured",
		zap.Int("created", created),
		zap.Int("total", len(indexes)),
	)
	return nil
}
