package service

import (
	"context"
	"time"

	"github.com/Payphone-Digital/authflow/internal/constants"
	"github.com/Payphone-Digital/authflow/pkg/cache"
	ctxutil "github.com/Payphone-Digital/authflow/pkg/context"
	"github.com/Payphone-Digital/authflow/pkg/logger"
	"github.com/Payphone-Digital/authflow/pkg/redis"
)

// RevocationList holds the jti of access tokens that were logged out before
// they expired. Entries live exactly as long as the token would have.
// Every revocation is kept in the in-process cache and, when enabled, in
// Redis so other instances see it. A Redis lookup error is treated as not
// revoked: only revocations made on this instance are enforced until Redis
// answers again.
type RevocationList struct {
	redis    *redis.Client
	fallback *cache.Cache
	now      func() time.Time
}

func NewRevocationList(client *redis.Client, fallback *cache.Cache) *RevocationList {
	if fallback == nil {
		fallback = cache.NewCache()
	}
	return &RevocationList{redis: client, fallback: fallback, now: time.Now}
}

func (r *RevocationList) Revoke(ctx context.Context, jti string, until time.Time) {
	ctx = ctxutil.WithFunction(ctx, "service", "RevokeAccessToken")

	ttl := until.Sub(r.now())
	if jti == "" || ttl <= 0 {
		return
	}

	key := constants.CacheKeyRevokedJTI + jti
	r.fallback.Set(key, true, ttl)
	if !r.redis.IsEnabled() {
		return
	}
	if err := r.redis.SetWithTTL(ctx, key, "1", ttl); err != nil {
		logger.WarnWithContext(ctx, "Revocation not stored in redis, kept locally only").
			Err(err).
			Log()
	}
}

func (r *RevocationList) IsRevoked(ctx context.Context, jti string) bool {
	key := constants.CacheKeyRevokedJTI + jti
	if r.fallback.Has(key) {
		return true
	}
	if !r.redis.IsEnabled() {
		return false
	}

	revoked, err := r.redis.Exists(ctx, key)
	if err != nil {
		logger.WarnWithContext(ctx, "Revocation lookup failed, accepting token").
			String("jti", jti).
			Err(err).
			Log()
		return false
	}
	return revoked
}

// Purge drops expired local entries. Called by the sweeper.
func (r *RevocationList) Purge() int {
	return r.fallback.Purge()
}
