package service

import (
	"context"
	"crypto/hmac"
	"crypto/sha1"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"time"

	"github.com/Payphone-Digital/authflow/internal/constants"
	"github.com/Payphone-Digital/authflow/internal/dto"
	apperrors "github.com/Payphone-Digital/authflow/internal/errors"
	"github.com/Payphone-Digital/authflow/internal/model"
	ctxutil "github.com/Payphone-Digital/authflow/pkg/context"
	"github.com/Payphone-Digital/authflow/pkg/logger"
	"github.com/Payphone-Digital/authflow/pkg/mail"
	"gorm.io/gorm"
)

type VerificationConfig struct {
	AppURL           string
	Secret           string
	TTL              time.Duration
	RequireSignature bool
}

// VerificationService owns the Unverified -> Verified transition.
type VerificationService struct {
	users    UserStore
	notifier Notifier
	cfg      VerificationConfig
	now      func() time.Time
}

func NewVerificationService(users UserStore, notifier Notifier, cfg VerificationConfig) *VerificationService {
	return &VerificationService{users: users, notifier: notifier, cfg: cfg, now: time.Now}
}

// EmailHash is the {hash} path segment of a verification link.
func EmailHash(email string) string {
	sum := sha1.Sum([]byte(email))
	return hex.EncodeToString(sum[:])
}

func (s *VerificationService) sign(id, hash string, expires int64) string {
	mac := hmac.New(sha256.New, []byte(s.cfg.Secret))
	fmt.Fprintf(mac, "%s|%s|%d", id, hash, expires)
	return hex.EncodeToString(mac.Sum(nil))
}

// BuildLink returns the signed verification URL for user.
func (s *VerificationService) BuildLink(user *model.User) string {
	id := strconv.FormatUint(uint64(user.ID), 10)
	hash := EmailHash(user.Email)
	expires := s.now().Add(s.cfg.TTL).Unix()

	q := url.Values{}
	q.Set("expires", strconv.FormatInt(expires, 10))
	q.Set("signature", s.sign(id, hash, expires))
	return fmt.Sprintf("%s/api/auth/email/verify/%s/%s?%s", s.cfg.AppURL, id, hash, q.Encode())
}

func (s *VerificationService) SendVerification(ctx context.Context, user *model.User) error {
	ctx = ctxutil.WithFunction(ctx, "service", "SendVerification")

	return s.notifier.SendMail(ctx, mail.TemplateVerifyEmail, user.Email, map[string]any{
		"Name":      user.Name,
		"URL":       s.BuildLink(user),
		"ExpiresIn": humanDuration(s.cfg.TTL),
	})
}

// Verify never fails; every outcome is reported through the result so the
// handler can redirect the browser to the SPA.
func (s *VerificationService) Verify(ctx context.Context, idParam, hash, expires, signature string) dto.VerifyResult {
	ctx = ctxutil.WithFunction(ctx, "service", "VerifyEmail")

	id, err := strconv.ParseUint(idParam, 10, 64)
	if err != nil {
		return dto.VerifyResult{Message: constants.MsgUserNotFound}
	}

	user, err := s.users.GetByID(ctx, uint(id))
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			logger.ErrorWithContext(ctx, "User lookup failed during verification").
				Err(err).
				Log()
		}
		return dto.VerifyResult{Message: constants.MsgUserNotFound}
	}

	if subtle.ConstantTimeCompare([]byte(hash), []byte(EmailHash(user.Email))) != 1 {
		logger.InfoWithContext(ctx, "Verification hash mismatch").
			Uint("target_id", user.ID).
			Log()
		return dto.VerifyResult{Message: constants.MsgInvalidVerifyLink}
	}

	if !s.signatureValid(idParam, hash, expires, signature) {
		return dto.VerifyResult{Message: constants.MsgExpiredVerifyLink}
	}

	if user.IsVerified() {
		return dto.VerifyResult{Success: true, Message: constants.MsgEmailAlreadyVerified}
	}

	changed, err := s.users.MarkEmailVerified(ctx, user.ID, s.now())
	if err != nil {
		return dto.VerifyResult{Message: constants.MsgInternalError}
	}
	if !changed {
		return dto.VerifyResult{Success: true, Message: constants.MsgEmailAlreadyVerified}
	}

	s.notifier.PublishEvent(ctx, constants.EventUserVerified, map[string]any{
		"user_id": user.ID,
		"email":   user.Email,
	})
	logger.InfoWithContext(ctx, "Email verified").
		Uint("target_id", user.ID).
		Log()
	return dto.VerifyResult{Success: true, Message: constants.MsgEmailVerified}
}

// signatureValid accepts unsigned links unless signatures are required.
func (s *VerificationService) signatureValid(id, hash, expires, signature string) bool {
	if expires == "" && signature == "" {
		return !s.cfg.RequireSignature
	}

	exp, err := strconv.ParseInt(expires, 10, 64)
	if err != nil || signature == "" {
		return false
	}
	if s.now().Unix() > exp {
		return false
	}
	return hmac.Equal([]byte(signature), []byte(s.sign(id, hash, exp)))
}

// Resend mails a new link to an unverified account.
func (s *VerificationService) Resend(ctx context.Context, email string) error {
	ctx = ctxutil.WithFunction(ctx, "service", "ResendVerification")

	user, err := s.users.GetByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.ErrUserNotFound
		}
		return apperrors.WrapError(apperrors.ErrInternal, err)
	}
	if user.IsVerified() {
		return apperrors.ErrAlreadyVerified
	}

	if err := s.SendVerification(ctx, user); err != nil {
		return apperrors.WrapError(apperrors.ErrServiceUnavailable, err)
	}
	return nil
}
