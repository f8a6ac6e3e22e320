package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	apperrors "github.com/Payphone-Digital/authflow/internal/errors"
	"github.com/Payphone-Digital/authflow/internal/model"
	"github.com/Payphone-Digital/authflow/pkg/cache"
	"github.com/Payphone-Digital/authflow/pkg/redis"
)

type authFixture struct {
	svc    *AuthService
	users  *fakeUsers
	tokens *fakeRefreshTokens
	clock  *testClock
}

func newAuthFixture() *authFixture {
	clock := newTestClock()
	users := newFakeUsers()
	tokens := newFakeRefreshTokens()

	issuer := NewTokenIssuer("test-secret", 15*time.Minute, "authflow")
	issuer.now = clock.Now
	revocations := NewRevocationList(redis.NewClient(redis.Config{}, nil), cache.NewCache())
	revocations.now = clock.Now

	svc := NewAuthService(users, tokens, issuer, revocations, 30*24*time.Hour)
	svc.now = clock.Now
	return &authFixture{svc: svc, users: users, tokens: tokens, clock: clock}
}

func (f *authFixture) addUser(email, password string, verified, active bool) *model.User {
	u := &model.User{Name: "Alice", Email: email, Password: mustHash(password), IsActive: active}
	if verified {
		at := f.clock.Now().Add(-time.Hour)
		u.EmailVerifiedAt = &at
	}
	return f.users.add(u)
}

func TestLoginSuccess(t *testing.T) {
	f := newAuthFixture()
	u := f.addUser("a@x.com", "secret1", true, true)

	pair, user, err := f.svc.Login(context.Background(), " A@X.com ", "secret1")
	if err != nil {
		t.Fatalf("Login() error = %v", err)
	}
	if user.ID != u.ID || user.LastLogin == nil {
		t.Errorf("unexpected user %+v", user)
	}
	if pair.AccessToken == "" || pair.RefreshToken == "" {
		t.Fatal("expected both tokens")
	}
	if got := pair.AccessExpiresAt.Sub(f.clock.Now()); got != 15*time.Minute {
		t.Errorf("access ttl = %v", got)
	}

	if f.tokens.count() != 1 {
		t.Fatalf("expected one stored refresh token, got %d", f.tokens.count())
	}
	if _, ok := f.tokens.rows[pair.RefreshToken]; ok {
		t.Error("refresh token must not be stored in plaintext")
	}
	if _, ok := f.tokens.rows[HashToken(pair.RefreshToken)]; !ok {
		t.Error("refresh token hash not stored")
	}

	claims, err := f.svc.Authenticate(context.Background(), pair.AccessToken)
	if err != nil {
		t.Fatalf("Authenticate() error = %v", err)
	}
	if claims.UserID != u.ID || claims.Subject != "1" || claims.Email != "a@x.com" {
		t.Errorf("unexpected claims %+v", claims)
	}
}

func TestLoginFailures(t *testing.T) {
	f := newAuthFixture()
	f.addUser("unverified@x.com", "secret1", false, true)
	f.addUser("disabled@x.com", "secret1", true, false)
	f.addUser("ok@x.com", "secret1", true, true)

	tests := []struct {
		name     string
		email    string
		password string
		want     error
	}{
		{"unknown email", "nobody@x.com", "secret1", apperrors.ErrInvalidCredentials},
		{"wrong password", "ok@x.com", "nope", apperrors.ErrInvalidCredentials},
		{"unverified", "unverified@x.com", "secret1", apperrors.ErrEmailNotVerified},
		{"unverified wrong password", "unverified@x.com", "nope", apperrors.ErrInvalidCredentials},
		{"disabled", "disabled@x.com", "secret1", apperrors.ErrAccountDisabled},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pair, _, err := f.svc.Login(context.Background(), tt.email, tt.password)
			if !errors.Is(err, tt.want) {
				t.Errorf("Login() error = %v, want %v", err, tt.want)
			}
			if pair != nil {
				t.Error("no tokens may be issued on failure")
			}
		})
	}
	if f.tokens.count() != 0 {
		t.Errorf("failed logins stored %d refresh tokens", f.tokens.count())
	}
}

func TestRefreshRotatesAndInvalidatesOldToken(t *testing.T) {
	f := newAuthFixture()
	f.addUser("a@x.com", "secret1", true, true)
	ctx := context.Background()

	first, _, err := f.svc.Login(ctx, "a@x.com", "secret1")
	if err != nil {
		t.Fatal(err)
	}

	second, err := f.svc.Refresh(ctx, first.RefreshToken)
	if err != nil {
		t.Fatalf("Refresh() error = %v", err)
	}
	if second.RefreshToken == first.RefreshToken {
		t.Error("refresh must rotate the token")
	}

	if _, err := f.svc.Refresh(ctx, first.RefreshToken); !errors.Is(err, apperrors.ErrTokenNotFound) {
		t.Errorf("reused token: error = %v, want ErrTokenNotFound", err)
	}
	if _, err := f.svc.Refresh(ctx, second.RefreshToken); err != nil {
		t.Errorf("rotated token should work once: %v", err)
	}
}

func TestRefreshEdgeCases(t *testing.T) {
	f := newAuthFixture()
	u := f.addUser("a@x.com", "secret1", true, true)
	ctx := context.Background()

	if _, err := f.svc.Refresh(ctx, ""); !errors.Is(err, apperrors.ErrTokenNotFound) {
		t.Errorf("empty token: %v", err)
	}

	pair, _, _ := f.svc.Login(ctx, "a@x.com", "secret1")
	f.clock.Advance(31 * 24 * time.Hour)
	if _, err := f.svc.Refresh(ctx, pair.RefreshToken); !errors.Is(err, apperrors.ErrTokenExpired) {
		t.Errorf("expired token: error = %v", err)
	}
	if f.tokens.count() != 0 {
		t.Error("expired token must be removed on use")
	}

	pair, _, _ = f.svc.Login(ctx, "a@x.com", "secret1")
	f.users.mu.Lock()
	f.users.byID[u.ID].IsActive = false
	f.users.mu.Unlock()
	if _, err := f.svc.Refresh(ctx, pair.RefreshToken); !errors.Is(err, apperrors.ErrAccountDisabled) {
		t.Errorf("disabled user: error = %v", err)
	}
}

func TestRefreshConcurrentSingleWinner(t *testing.T) {
	f := newAuthFixture()
	f.addUser("a@x.com", "secret1", true, true)
	pair, _, _ := f.svc.Login(context.Background(), "a@x.com", "secret1")

	const workers = 8
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		successes int
	)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := f.svc.Refresh(context.Background(), pair.RefreshToken); err == nil {
				mu.Lock()
				successes++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	if successes != 1 {
		t.Errorf("expected exactly one successful refresh, got %d", successes)
	}
}

func TestLogoutIsIdempotentAndRevokesAccess(t *testing.T) {
	f := newAuthFixture()
	f.addUser("a@x.com", "secret1", true, true)
	ctx := context.Background()
	pair, _, _ := f.svc.Login(ctx, "a@x.com", "secret1")

	f.svc.Logout(ctx, pair.RefreshToken, pair.AccessToken)
	f.svc.Logout(ctx, pair.RefreshToken, pair.AccessToken)
	f.svc.Logout(ctx, "", "garbage")

	if f.tokens.count() != 0 {
		t.Error("refresh row must be deleted")
	}
	if _, err := f.svc.Authenticate(ctx, pair.AccessToken); !errors.Is(err, apperrors.ErrTokenRevoked) {
		t.Errorf("Authenticate after logout: %v", err)
	}
	if _, err := f.svc.Refresh(ctx, pair.RefreshToken); !errors.Is(err, apperrors.ErrTokenNotFound) {
		t.Errorf("Refresh after logout: %v", err)
	}
}

func TestAuthenticateRejectsBadTokens(t *testing.T) {
	f := newAuthFixture()
	f.addUser("a@x.com", "secret1", true, true)
	pair, _, _ := f.svc.Login(context.Background(), "a@x.com", "secret1")

	other := NewTokenIssuer("other-secret", time.Minute, "authflow")
	forged, _, _ := other.Issue(&model.User{Model: gormModel(1), Email: "a@x.com"})

	if _, err := f.svc.Authenticate(context.Background(), forged); !errors.Is(err, apperrors.ErrInvalidToken) {
		t.Errorf("forged token: %v", err)
	}
	if _, err := f.svc.Authenticate(context.Background(), ""); !errors.Is(err, apperrors.ErrUnauthorized) {
		t.Errorf("empty token: %v", err)
	}

	f.clock.Advance(16 * time.Minute)
	if _, err := f.svc.Authenticate(context.Background(), pair.AccessToken); !errors.Is(err, apperrors.ErrTokenExpired) {
		t.Errorf("expired token: %v", err)
	}
}

func TestGenerateOpaqueToken(t *testing.T) {
	a, err := GenerateOpaqueToken(32)
	if err != nil {
		t.Fatal(err)
	}
	b, _ := GenerateOpaqueToken(32)
	if a == b {
		t.Error("tokens must be random")
	}
	if len(a) != 43 {
		t.Errorf("32 bytes base64url unpadded should be 43 chars, got %d", len(a))
	}
	if len(HashToken(a)) != 64 {
		t.Error("hash must be 64 hex chars")
	}
}
