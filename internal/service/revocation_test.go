package service

import (
	"context"
	"testing"
	"time"

	"github.com/Payphone-Digital/authflow/internal/constants"
	"github.com/Payphone-Digital/authflow/pkg/cache"
	"github.com/Payphone-Digital/authflow/pkg/redis"
	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
)

func newRedisRevocations(t *testing.T) (*RevocationList, *miniredis.Miniredis) {
	t.Helper()
	s, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis: %v", err)
	}
	t.Cleanup(s.Close)

	client := redis.NewFromClient(goredis.NewClient(&goredis.Options{Addr: s.Addr(), MaxRetries: -1}), nil)
	t.Cleanup(func() { _ = client.Close() })
	return NewRevocationList(client, cache.NewCache()), s
}

func TestRevocationSharedThroughRedis(t *testing.T) {
	r, s := newRedisRevocations(t)
	ctx := context.Background()

	r.Revoke(ctx, "jti-1", time.Now().Add(15*time.Minute))
	if !s.Exists(constants.CacheKeyRevokedJTI + "jti-1") {
		t.Fatal("revocation not written to redis")
	}
	if ttl := s.TTL(constants.CacheKeyRevokedJTI + "jti-1"); ttl <= 0 || ttl > 15*time.Minute {
		t.Errorf("redis ttl = %s", ttl)
	}

	// Issued on another instance: only redis knows about it.
	if err := s.Set(constants.CacheKeyRevokedJTI+"jti-2", "1"); err != nil {
		t.Fatal(err)
	}
	if !r.IsRevoked(ctx, "jti-2") {
		t.Error("revocation from redis not honoured")
	}
	if r.IsRevoked(ctx, "jti-3") {
		t.Error("unknown jti reported revoked")
	}
}

func TestRevocationSurvivesRedisOutage(t *testing.T) {
	r, s := newRedisRevocations(t)
	ctx := context.Background()

	r.Revoke(ctx, "jti-1", time.Now().Add(15*time.Minute))
	s.Close()

	if !r.IsRevoked(ctx, "jti-1") {
		t.Error("local revocation lost while redis is down")
	}

	r.Revoke(ctx, "jti-2", time.Now().Add(15*time.Minute))
	if !r.IsRevoked(ctx, "jti-2") {
		t.Error("revocation made during the outage not enforced")
	}
}

func TestRevokeIgnoresExpiredOrEmpty(t *testing.T) {
	r := NewRevocationList(redis.NewClient(redis.Config{}, nil), cache.NewCache())
	ctx := context.Background()

	r.Revoke(ctx, "", time.Now().Add(time.Minute))
	r.Revoke(ctx, "old", time.Now().Add(-time.Second))
	if r.IsRevoked(ctx, "old") || r.Purge() != 0 {
		t.Error("expired token must not be stored")
	}
}
