package database

import (
	"github.com/Payphone-Digital/authflow/internal/model"
	"gorm.io/gorm"
)

// AutoMigrate runs database migrations for all models
func AutoMigrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&model.User{},
		&model.RefreshToken{},
		&model.PasswordResetToken{},
	); err != nil {
		return err
	}
	return EnsureIndexes(db)
}
