package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// ErrDisabled is returned by every command when Redis is switched off.
var ErrDisabled = errors.New("redis is disabled")

type Config struct {
	Host         string
	Port         int
	Password     string
	DB           int
	Enabled      bool
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	PoolTimeout  time.Duration
}

func (c Config) Address() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// Client wraps go-redis with an on/off switch so callers can fall back to
// in-process state when Redis is not deployed.
type Client struct {
	rdb     *goredis.Client
	enabled bool
	logger  *zap.Logger
}

func NewClient(cfg Config, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	if !cfg.Enabled {
		logger.Info("Redis disabled, using in-memory fallbacks")
		return &Client{logger: logger}
	}

	rdb := goredis.NewClient(&goredis.Options{
		Addr:         cfg.Address(),
		Password:     cfg.Password,
		DB:           cfg.DB,
		PoolSize:     cfg.PoolSize,
		MinIdleConns: cfg.MinIdleConns,
		DialTimeout:  cfg.DialTimeout,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		PoolTimeout:  cfg.PoolTimeout,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		logger.Warn("Redis ping failed at startup, commands will be retried per call",
			zap.String("address", cfg.Address()),
			zap.Error(err),
		)
	} else {
		logger.Info("Successfully connected to Redis",
			zap.String("address", cfg.Address()),
			zap.Int("database", cfg.DB),
		)
	}

	return &Client{rdb: rdb, enabled: true, logger: logger}
}

// NewFromClient wraps an existing go-redis client. Used by tests with miniredis.
func NewFromClient(rdb *goredis.Client, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{rdb: rdb, enabled: rdb != nil, logger: logger}
}

func (c *Client) IsEnabled() bool {
	return c != nil && c.enabled
}

// Raw exposes the underlying client for components that run scripts.
func (c *Client) Raw() *goredis.Client {
	if !c.IsEnabled() {
		return nil
	}
	return c.rdb
}

func (c *Client) Ping(ctx context.Context) error {
	if !c.IsEnabled() {
		return ErrDisabled
	}
	return c.rdb.Ping(ctx).Err()
}

func (c *Client) Close() error {
	if !c.IsEnabled() {
		return nil
	}
	return c.rdb.Close()
}

// SetWithTTL stores a marker value under key until ttl elapses.
func (c *Client) SetWithTTL(ctx context.Context, key, value string, ttl time.Duration) error {
	if !c.IsEnabled() {
		return ErrDisabled
	}
	if err := c.rdb.Set(ctx, key, value, ttl).Err(); err != nil {
		c.logger.Error("Failed to set key",
			zap.String("key", key),
			zap.Duration("ttl", ttl),
			zap.Error(err),
		)
		return fmt.Errorf("failed to set key: %w", err)
	}
	return nil
}

// Exists checks if key exists
func (c *Client) Exists(ctx context.Context, key string) (bool, error) {
	if !c.IsEnabled() {
		return false, ErrDisabled
	}
	result, err := c.rdb.Exists(ctx, key).Result()
	if err != nil {
		return false, fmt.Errorf("failed to check key existence: %w", err)
	}
	return result > 0, nil
}

func (c *Client) Delete(ctx context.Context, key string) error {
	if !c.IsEnabled() {
		return ErrDisabled
	}
	if err := c.rdb.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("failed to delete key: %w", err)
	}
	return nil
}

// PoolStats reports connection pool counters for the health endpoint.
func (c *Client) PoolStats() map[string]interface{} {
	if !c.IsEnabled() {
		return nil
	}
	s := c.rdb.PoolStats()
	return map[string]interface{}{
		"hits":        s.Hits,
		"misses":      s.Misses,
		"total_conns": s.TotalConns,
		"idle_conns":  s.IdleConns,
		"stale_conns": s.StaleConns,
	}
}
