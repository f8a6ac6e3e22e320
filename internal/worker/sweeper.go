package worker

import (
	"context"
	"time"

	"github.com/Payphone-Digital/authflow/pkg/logger"
	"github.com/Payphone-Digital/authflow/pkg/metrics"
	"go.uber.org/zap"
)

type refreshTokenPurger interface {
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}

type resetTokenPurger interface {
	DeleteCreatedBefore(ctx context.Context, before time.Time) (int64, error)
}

type localPurger interface {
	Purge() int
}

// Sweeper deletes expired refresh and reset tokens. Lookups already reject
// expired rows; this only keeps the tables small.
type Sweeper struct {
	refresh     refreshTokenPurger
	resets      resetTokenPurger
	revocations localPurger
	interval    time.Duration
	resetTTL    time.Duration
	now         func() time.Time
}

// A non-positive interval falls back to one hour.
func NewSweeper(refresh refreshTokenPurger, resets resetTokenPurger, revocations localPurger, interval, resetTTL time.Duration) *Sweeper {
	if interval <= 0 {
		interval = time.Hour
	}
	return &Sweeper{
		refresh:     refresh,
		resets:      resets,
		revocations: revocations,
		interval:    interval,
		resetTTL:    resetTTL,
		now:         time.Now,
	}
}

// Run sweeps once, then on every tick until ctx is cancelled.
func (s *Sweeper) Run(ctx context.Context) {
	log := logger.GetLogger()
	log.Info("Token sweeper started", zap.Duration("interval", s.interval))

	s.Sweep(ctx)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			log.Info("Token sweeper stopped")
			return
		case <-ticker.C:
			s.Sweep(ctx)
		}
	}
}

// SweepResult counts removed entries per kind.
type SweepResult struct {
	RefreshTokens int64
	ResetTokens   int64
	Revocations   int
}

func (s *Sweeper) Sweep(ctx context.Context) SweepResult {
	now := s.now()
	var res SweepResult

	n, err := s.refresh.DeleteExpired(ctx, now)
	if err != nil {
		logger.GetLogger().Warn("Refresh token sweep failed", zap.Error(err))
	}
	res.RefreshTokens = n

	n, err = s.resets.DeleteCreatedBefore(ctx, now.Add(-s.resetTTL))
	if err != nil {
		logger.GetLogger().Warn("Reset token sweep failed", zap.Error(err))
	}
	res.ResetTokens = n

	if s.revocations != nil {
		res.Revocations = s.revocations.Purge()
	}

	metrics.TokensSwept.WithLabelValues("refresh").Add(float64(res.RefreshTokens))
	metrics.TokensSwept.WithLabelValues("reset").Add(float64(res.ResetTokens))
	metrics.TokensSwept.WithLabelValues("revocation").Add(float64(res.Revocations))

	if res.RefreshTokens+res.ResetTokens > 0 || res.Revocations > 0 {
		logger.GetLogger().Info("Expired tokens swept",
			zap.Int64("refresh_tokens", res.RefreshTokens),
			zap.Int64("reset_tokens", res.ResetTokens),
			zap.Int("revocations", res.Revocations),
		)
	}
	return res
}
