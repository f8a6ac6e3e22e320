package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/Payphone-Digital/authflow/internal/constants"
	"github.com/Payphone-Digital/authflow/internal/dto"
	apperrors "github.com/Payphone-Digital/authflow/internal/errors"
	"github.com/Payphone-Digital/authflow/internal/model"
	ctxutil "github.com/Payphone-Digital/authflow/pkg/context"
	"github.com/Payphone-Digital/authflow/pkg/logger"
	"github.com/Payphone-Digital/authflow/pkg/metrics"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

var (
	dummyHashOnce sync.Once
	dummyHash     []byte
)

// compareDummy burns one bcrypt comparison so an unknown email costs the
// same as a wrong password.
func compareDummy(password string) {
	dummyHashOnce.Do(func() {
		dummyHash, _ = bcrypt.GenerateFromPassword([]byte("authflow-dummy-password"), bcrypt.DefaultCost)
	})
	_ = bcrypt.CompareHashAndPassword(dummyHash, []byte(password))
}

type AuthService struct {
	users       UserStore
	tokens      RefreshTokenStore
	issuer      *TokenIssuer
	revocations *RevocationList
	refreshTTL  time.Duration
	now         func() time.Time
}

func NewAuthService(users UserStore, tokens RefreshTokenStore, issuer *TokenIssuer, revocations *RevocationList, refreshTTL time.Duration) *AuthService {
	return &AuthService{
		users:       users,
		tokens:      tokens,
		issuer:      issuer,
		revocations: revocations,
		refreshTTL:  refreshTTL,
		now:         time.Now,
	}
}

// Login checks credentials and issues a fresh token pair.
func (s *AuthService) Login(ctx context.Context, email, password string) (*dto.TokenPair, *dto.UserResponse, error) {
	ctx = ctxutil.WithFunction(ctx, "service", "Login")
	email = normalizeEmail(email)

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			compareDummy(password)
			metrics.Auth("login", "invalid_credentials")
			logger.InfoWithContext(ctx, "Login failed: unknown email").Log()
			return nil, nil, apperrors.ErrInvalidCredentials
		}
		return nil, nil, apperrors.WrapError(apperrors.ErrInternal, err)
	}

	if bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)) != nil {
		metrics.Auth("login", "invalid_credentials")
		logger.InfoWithContext(ctx, "Login failed: password mismatch").
			Uint("target_id", user.ID).
			Log()
		return nil, nil, apperrors.ErrInvalidCredentials
	}

	if !user.IsVerified() {
		metrics.Auth("login", "unverified")
		return nil, nil, apperrors.ErrEmailNotVerified
	}
	if !user.IsActive {
		metrics.Auth("login", "disabled")
		return nil, nil, apperrors.ErrAccountDisabled
	}

	pair, err := s.issuePair(ctx, user)
	if err != nil {
		return nil, nil, err
	}

	now := s.now()
	if err := s.users.UpdateLastLogin(ctx, user.ID, now); err == nil {
		user.LastLogin = &now
	}

	metrics.Auth("login", "success")
	logger.InfoWithContext(ctx, "User logged in").
		Uint("target_id", user.ID).
		Log()
	return pair, toUserResponse(user), nil
}

// Refresh rotates a refresh token. The presented token is consumed whether
// or not it turns out to be usable.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*dto.TokenPair, error) {
	ctx = ctxutil.WithFunction(ctx, "service", "Refresh")

	if refreshToken == "" {
		metrics.Auth("refresh", "missing")
		return nil, apperrors.ErrTokenNotFound
	}

	row, err := s.tokens.Consume(ctx, HashToken(refreshToken))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			metrics.Auth("refresh", "not_found")
			logger.InfoWithContext(ctx, "Refresh token unknown or already used").
				Int("token_length", len(refreshToken)).
				Log()
			return nil, apperrors.ErrTokenNotFound
		}
		return nil, apperrors.WrapError(apperrors.ErrInternal, err)
	}

	if row.Expired(s.now()) {
		metrics.Auth("refresh", "expired")
		logger.InfoWithContext(ctx, "Expired refresh token presented").
			Uint("owner_id", row.UserID).
			Time("expired_at", row.ExpiresAt).
			Log()
		return nil, apperrors.ErrTokenExpired
	}

	user, err := s.users.GetByID(ctx, row.UserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrUserNotFound
		}
		return nil, apperrors.WrapError(apperrors.ErrInternal, err)
	}
	if !user.IsActive {
		metrics.Auth("refresh", "disabled")
		return nil, apperrors.ErrAccountDisabled
	}

	pair, err := s.issuePair(ctx, user)
	if err != nil {
		return nil, err
	}

	metrics.Auth("refresh", "success")
	logger.DebugWithContext(ctx, "Token pair rotated").
		Uint("owner_id", user.ID).
		Log()
	return pair, nil
}

// Logout drops the refresh row and revokes the access token. Absent or
// malformed tokens are ignored so the call is idempotent.
func (s *AuthService) Logout(ctx context.Context, refreshToken, accessToken string) {
	ctx = ctxutil.WithFunction(ctx, "service", "Logout")

	if refreshToken != "" {
		if _, err := s.tokens.DeleteByHash(ctx, HashToken(refreshToken)); err != nil {
			logger.WarnWithContext(ctx, "Failed to delete refresh token on logout").
				Err(err).
				Log()
		}
	}

	if accessToken != "" {
		if claims, err := s.issuer.Parse(accessToken); err == nil {
			s.revocations.Revoke(ctx, claims.ID, claims.ExpiresAt.Time)
		}
	}

	metrics.Auth("logout", "success")
}

// Authenticate validates an access token for a protected request.
func (s *AuthService) Authenticate(ctx context.Context, accessToken string) (*AccessClaims, error) {
	claims, err := s.issuer.Parse(accessToken)
	if err != nil {
		return nil, err
	}
	if s.revocations.IsRevoked(ctx, claims.ID) {
		return nil, apperrors.ErrTokenRevoked
	}
	return claims, nil
}

func (s *AuthService) issuePair(ctx context.Context, user *model.User) (*dto.TokenPair, error) {
	access, claims, err := s.issuer.Issue(user)
	if err != nil {
		return nil, apperrors.WrapError(apperrors.ErrInternal, err)
	}

	refresh, err := GenerateOpaqueToken(constants.RefreshTokenBytes)
	if err != nil {
		return nil, apperrors.WrapError(apperrors.ErrInternal, err)
	}

	row := &model.RefreshToken{
		UserID:    user.ID,
		TokenHash: HashToken(refresh),
		ExpiresAt: s.now().Add(s.refreshTTL),
	}
	if err := s.tokens.Create(ctx, row); err != nil {
		return nil, apperrors.WrapError(apperrors.ErrInternal, err)
	}

	return &dto.TokenPair{
		AccessToken:      access,
		AccessExpiresAt:  claims.ExpiresAt.Time,
		RefreshToken:     refresh,
		RefreshExpiresAt: row.ExpiresAt,
	}, nil
}
