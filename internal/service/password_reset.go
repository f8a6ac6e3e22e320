package service

import (
	"context"
	"errors"
	"net/url"
	"time"

	"github.com/Payphone-Digital/authflow/internal/constants"
	apperrors "github.com/Payphone-Digital/authflow/internal/errors"
	ctxutil "github.com/Payphone-Digital/authflow/pkg/context"
	"github.com/Payphone-Digital/authflow/pkg/logger"
	"github.com/Payphone-Digital/authflow/pkg/mail"
	"github.com/Payphone-Digital/authflow/pkg/metrics"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type PasswordResetConfig struct {
	FrontendURL string
	TTL         time.Duration
	// RevealUnknownEmail makes RequestReset report unknown addresses.
	RevealUnknownEmail bool
}

type PasswordResetService struct {
	users    UserStore
	resets   ResetTokenStore
	sessions RefreshTokenStore
	notifier Notifier
	cfg      PasswordResetConfig
	now      func() time.Time
}

func NewPasswordResetService(users UserStore, resets ResetTokenStore, sessions RefreshTokenStore, notifier Notifier, cfg PasswordResetConfig) *PasswordResetService {
	if cfg.TTL <= 0 {
		cfg.TTL = constants.ResetTokenTTL
	}
	return &PasswordResetService{
		users:    users,
		resets:   resets,
		sessions: sessions,
		notifier: notifier,
		cfg:      cfg,
		now:      time.Now,
	}
}

func (s *PasswordResetService) resetLink(token, email string) string {
	q := url.Values{}
	q.Set("token", token)
	q.Set("email", email)
	return s.cfg.FrontendURL + "/?" + q.Encode()
}

// RequestReset stores a fresh reset token for email and mails the link.
// A new request replaces any earlier one.
func (s *PasswordResetService) RequestReset(ctx context.Context, email string) error {
	ctx = ctxutil.WithFunction(ctx, "service", "RequestPasswordReset")
	email = normalizeEmail(email)

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			logger.InfoWithContext(ctx, "Password reset requested for unknown email").Log()
			if s.cfg.RevealUnknownEmail {
				return apperrors.ErrUserNotFound
			}
			return nil
		}
		return apperrors.WrapError(apperrors.ErrInternal, err)
	}

	token, err := GenerateOpaqueToken(constants.ResetTokenBytes)
	if err != nil {
		return apperrors.WrapError(apperrors.ErrInternal, err)
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(token), bcrypt.DefaultCost)
	if err != nil {
		return apperrors.WrapError(apperrors.ErrInternal, err)
	}

	if err := s.resets.Upsert(ctx, user.Email, string(hashed), s.now()); err != nil {
		return apperrors.WrapError(apperrors.ErrInternal, err)
	}

	err = s.notifier.SendMail(ctx, mail.TemplateResetPassword, user.Email, map[string]any{
		"Email":     user.Email,
		"URL":       s.resetLink(token, user.Email),
		"ExpiresIn": humanDuration(s.cfg.TTL),
	})
	if err != nil {
		return apperrors.WrapError(apperrors.ErrServiceUnavailable, err)
	}

	metrics.Auth("reset_request", "success")
	logger.InfoWithContext(ctx, "Password reset link sent").
		Uint("target_id", user.ID).
		Log()
	return nil
}

// VerifyResetToken returns the email owning a live token. Tokens are stored
// hashed, so every live row is compared.
func (s *PasswordResetService) VerifyResetToken(ctx context.Context, token string) (string, error) {
	ctx = ctxutil.WithFunction(ctx, "service", "VerifyResetToken")

	if token == "" {
		return "", apperrors.ErrInvalidOrExpiredToken
	}

	rows, err := s.resets.ListCreatedAfter(ctx, s.now().Add(-s.cfg.TTL))
	if err != nil {
		return "", apperrors.WrapError(apperrors.ErrInternal, err)
	}

	for _, row := range rows {
		if bcrypt.CompareHashAndPassword([]byte(row.Token), []byte(token)) == nil {
			return row.Email, nil
		}
	}

	logger.InfoWithContext(ctx, "Reset token did not match").
		Int("candidate_count", len(rows)).
		Log()
	return "", apperrors.ErrInvalidOrExpiredToken
}

// FindEmailByToken resolves the email prefilled on the reset form.
func (s *PasswordResetService) FindEmailByToken(ctx context.Context, token string) (string, error) {
	return s.VerifyResetToken(ctx, token)
}

// ResetPassword consumes the reset token and replaces the password. Every
// refresh token of the account is revoked.
func (s *PasswordResetService) ResetPassword(ctx context.Context, email, token, password string) error {
	ctx = ctxutil.WithFunction(ctx, "service", "ResetPassword")
	email = normalizeEmail(email)

	row, err := s.resets.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.ErrInvalidOrExpiredToken
		}
		return apperrors.WrapError(apperrors.ErrInternal, err)
	}
	if !row.CreatedAt.After(s.now().Add(-s.cfg.TTL)) {
		metrics.Auth("reset", "expired")
		return apperrors.ErrInvalidOrExpiredToken
	}
	if bcrypt.CompareHashAndPassword([]byte(row.Token), []byte(token)) != nil {
		metrics.Auth("reset", "invalid")
		return apperrors.ErrInvalidOrExpiredToken
	}

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.ErrUserNotFound
		}
		return apperrors.WrapError(apperrors.ErrInternal, err)
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return apperrors.WrapError(apperrors.ErrInternal, err)
	}

	redeemed, err := s.resets.Redeem(ctx, email, row.Token, user.ID, string(hashed))
	if err != nil {
		return apperrors.WrapError(apperrors.ErrInternal, err)
	}
	if !redeemed {
		return apperrors.ErrInvalidOrExpiredToken
	}

	if _, err := s.sessions.DeleteByUser(ctx, user.ID); err != nil {
		logger.WarnWithContext(ctx, "Failed to revoke sessions after password reset").
			Uint("target_id", user.ID).
			Err(err).
			Log()
	}

	s.notifier.PublishEvent(ctx, constants.EventPasswordReset, map[string]any{
		"user_id": user.ID,
		"email":   user.Email,
	})
	metrics.Auth("reset", "success")
	logger.InfoWithContext(ctx, "Password reset").
		Uint("target_id", user.ID).
		Log()
	return nil
}
