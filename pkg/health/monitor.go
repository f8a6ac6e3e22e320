package health

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"
)

type Status int

const (
	StatusUnknown Status = iota
	StatusHealthy
	StatusUnhealthy
	StatusDisabled
)

func (s Status) String() string {
	switch s {
	case StatusHealthy:
		return "healthy"
	case StatusUnhealthy:
		return "unhealthy"
	case StatusDisabled:
		return "disabled"
	default:
		return "unknown"
	}
}

// CheckFunc probes one dependency. Returning ErrDisabled marks the
// dependency as intentionally off rather than failing.
type CheckFunc func(ctx context.Context) error

type CheckResult struct {
	Name         string        `json:"name"`
	Status       string        `json:"status"`
	Critical     bool          `json:"critical"`
	Latency      time.Duration `json:"latency_ns"`
	LastCheck    time.Time     `json:"last_check"`
	Error        string        `json:"error,omitempty"`
	FailureCount int           `json:"failure_count"`

	status Status
}

type check struct {
	name     string
	fn       CheckFunc
	critical bool
}

// StatusListener receives the aggregate status after every round.
type StatusListener func(serving bool)

// Monitor runs registered checks on an interval and keeps the latest
// result of each.
type Monitor struct {
	mu        sync.RWMutex
	checks    []check
	results   map[string]*CheckResult
	listeners []StatusListener
	interval  time.Duration
	timeout   time.Duration
	logger    *zap.Logger
}

func NewMonitor(interval time.Duration, logger *zap.Logger) *Monitor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Monitor{
		results:  make(map[string]*CheckResult),
		interval: interval,
		timeout:  3 * time.Second,
		logger:   logger,
	}
}

// Register adds a check. A failing critical check makes the service
// not serving; a non-critical one only shows up in the report.
func (m *Monitor) Register(name string, critical bool, fn CheckFunc) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.checks = append(m.checks, check{name: name, fn: fn, critical: critical})
}

func (m *Monitor) OnChange(l StatusListener) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.listeners = append(m.listeners, l)
}

// Run checks immediately and then every interval until ctx is done.
func (m *Monitor) Run(ctx context.Context) {
	m.CheckAll(ctx)
	if m.interval <= 0 {
		return
	}

	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.CheckAll(ctx)
		}
	}
}

// CheckAll runs every check once and notifies listeners.
func (m *Monitor) CheckAll(ctx context.Context) bool {
	m.mu.RLock()
	checks := append([]check(nil), m.checks...)
	listeners := append([]StatusListener(nil), m.listeners...)
	m.mu.RUnlock()

	serving := true
	for _, c := range checks {
		res := m.run(ctx, c)
		if c.critical && res.status == StatusUnhealthy {
			serving = false
		}
	}

	for _, l := range listeners {
		l(serving)
	}
	return serving
}

func (m *Monitor) run(ctx context.Context, c check) CheckResult {
	cctx, cancel := context.WithTimeout(ctx, m.timeout)
	defer cancel()

	start := time.Now()
	err := c.fn(cctx)
	res := CheckResult{
		Name:      c.name,
		Critical:  c.critical,
		Latency:   time.Since(start),
		LastCheck: start,
	}

	switch {
	case err == nil:
		res.status = StatusHealthy
	case errors.Is(err, ErrDisabled):
		res.status = StatusDisabled
	default:
		res.status = StatusUnhealthy
		res.Error = err.Error()
	}
	res.Status = res.status.String()

	m.mu.Lock()
	if prev, ok := m.results[c.name]; ok {
		res.FailureCount = prev.FailureCount
	}
	if res.status == StatusUnhealthy {
		res.FailureCount++
	}
	stored := res
	m.results[c.name] = &stored
	m.mu.Unlock()

	if res.status == StatusUnhealthy {
		m.logger.Warn("Health check failed",
			zap.String("check", c.name),
			zap.Bool("critical", c.critical),
			zap.Duration("latency", res.Latency),
			zap.String("error", res.Error),
		)
	}
	return res
}

// Results returns the latest result per check, sorted by name.
func (m *Monitor) Results() []CheckResult {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]CheckResult, 0, len(m.results))
	for _, r := range m.results {
		out = append(out, *r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Healthy reports whether every critical check passed in its last run.
// Checks that never ran count as healthy.
func (m *Monitor) Healthy() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, c := range m.checks {
		if r, ok := m.results[c.name]; ok && c.critical && r.status == StatusUnhealthy {
			return false
		}
	}
	return true
}
