package ratelimit

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

const defaultRedisPrefix = "authflow:rl:"

var errUnexpectedReply = errors.New("unexpected redis response")

// INCR and PEXPIRE run in one script so a crash between them cannot leave a
// counter without a TTL.
var rateLimitScript = redis.NewScript(`
local key = KEYS[1]
local limit = tonumber(ARGV[1])
local window_ms = tonumber(ARGV[2])

local current = redis.call("INCR", key)
if current == 1 then
  redis.call("PEXPIRE", key, window_ms)
end

local ttl = redis.call("PTTL", key)
if ttl < 0 then
  ttl = window_ms
end

if current > limit then
  return {0, ttl, current}
end
return {1, ttl, current}
`)

// RedisLimiter shares counters across replicas.
type RedisLimiter struct {
	client redis.Scripter
	limit  int
	window time.Duration
	prefix string
}

func NewRedis(client redis.Scripter, limit int, window time.Duration, prefix string) *RedisLimiter {
	if prefix == "" {
		prefix = defaultRedisPrefix
	}
	return &RedisLimiter{
		client: client,
		limit:  limit,
		window: window,
		prefix: prefix,
	}
}

func (l *RedisLimiter) Allow(ctx context.Context, key string, now time.Time) (Result, error) {
	windowMS := l.window.Milliseconds()
	if windowMS <= 0 {
		return Result{}, errors.New("invalid rate limit window")
	}

	res, err := rateLimitScript.Run(ctx, l.client, []string{l.prefix + key}, l.limit, windowMS).Result()
	if err != nil {
		return Result{}, err
	}

	vals, ok := res.([]interface{})
	if !ok || len(vals) != 3 {
		return Result{}, errUnexpectedReply
	}
	allowed, ok1 := vals[0].(int64)
	ttlMS, ok2 := vals[1].(int64)
	current, ok3 := vals[2].(int64)
	if !ok1 || !ok2 || !ok3 {
		return Result{}, errUnexpectedReply
	}

	ttl := time.Duration(ttlMS) * time.Millisecond
	if ttl < 0 {
		ttl = 0
	}

	result := Result{
		Allowed: allowed == 1,
		Limit:   l.limit,
		ResetAt: now.Add(ttl),
	}
	if result.Allowed {
		result.Remaining = l.limit - int(current)
	} else {
		result.RetryAfter = ttl
	}
	return result, nil
}
