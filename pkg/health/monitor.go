package health

import (
	"context"
	"maps"
	"sync"
	"time"

	"github.com/Payphone-Digital/midas/pkg/circuit"
	"go.uber.org/zap"
)

const checkTimeout = 5 * time.Second

// Status represents health check status
type Status int

const (
	StatusUnknown Status = iota
	StatusHealthy
	StatusUnhealthy
	StatusDegraded
)

func (s Status) String() string {
	switch s {
	case StatusHealthy:
		return "healthy"
	case StatusUnhealthy:
		return "unhealthy"
	case StatusDegraded:
		return "degraded"
	default:
		return "unknown"
	}
}

// CheckResult represents the result of a health check
type CheckResult struct {
	Name         string
	Status       Status
	Critical     bool
	Message      string
	Latency      time.Duration
	LastCheck    time.Time
	CheckCount   int
	FailureCount int
}

// Checker interface for health checks
type Checker interface {
	Check(ctx context.Context) CheckResult
}

type Pinger interface {
	Ping(ctx context.Context) error
}

// PingChecker reports a dependency reachable through Ping. A failed ping is
// unhealthy.
type PingChecker struct {
	Target Pinger
}

func (c PingChecker) Check(ctx context.Context) CheckResult {
	start := time.Now()
	result := CheckResult{Status: StatusHealthy, Message: "reachable", LastCheck: start}

	if err := c.Target.Ping(ctx); err != nil {
		result.Status = StatusUnhealthy
		result.Message = err.Error()
	}
	result.Latency = time.Since(start)
	return result
}

// BreakerChecker reports a provider as degraded while its breaker is not
// closed.
type BreakerChecker struct {
	Breaker *circuit.Breaker
}

func (c BreakerChecker) Check(context.Context) CheckResult {
	state := c.Breaker.State()
	result := CheckResult{Status: StatusHealthy, Message: state.String(), LastCheck: time.Now()}
	if state != circuit.StateClosed {
		result.Status = StatusDegraded
	}
	return result
}

type registration struct {
	checker  Checker
	critical bool
}

// Monitor manages health checks for the store and providers
type Monitor struct {
	mu       sync.RWMutex
	checkers map[string]registration
	results  map[string]CheckResult
	interval time.Duration
	logger   *zap.Logger
	cancel   context.CancelFunc
}

// NewMonitor creates a new health monitor
func NewMonitor(interval time.Duration, logger *zap.Logger) *Monitor {
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Monitor{
		checkers: make(map[string]registration),
		results:  make(map[string]CheckResult),
		interval: interval,
		logger:   logger,
	}
}

// Register adds a checker. Only critical checkers make the service
// unhealthy.
func (m *Monitor) Register(name string, checker Checker, critical bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.checkers[name] = registration{checker: checker, critical: critical}
	m.logger.Info("Registered health checker", zap.String("name", name), zap.Bool("critical", critical))
}

// RegisterBreakers adds a non critical checker per breaker in the registry.
func (m *Monitor) RegisterBreakers(registry *circuit.Registry, names ...string) {
	for _, name := range names {
		m.Register("provider:"+name, BreakerChecker{Breaker: registry.GetOrCreate(name)}, false)
	}
}

// Start runs CheckAll every interval until Stop or ctx is done.
func (m *Monitor) Start(ctx context.Context) {
	m.mu.Lock()
	if m.cancel != nil {
		m.mu.Unlock()
		return
	}
	ctx, m.cancel = context.WithCancel(ctx)
	m.mu.Unlock()

	go func() {
		ticker := time.NewTicker(m.interval)
		defer ticker.Stop()

		m.CheckAll(ctx)
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				m.CheckAll(ctx)
			}
		}
	}()
}

// Stop stops the health monitor
func (m *Monitor) Stop() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.cancel != nil {
		m.cancel()
		m.cancel = nil
	}
}

// CheckAll runs every checker now and returns the fresh results.
func (m *Monitor) CheckAll(ctx context.Context) map[string]CheckResult {
	m.mu.RLock()
	checkers := maps.Clone(m.checkers)
	m.mu.RUnlock()

	for name, reg := range checkers {
		checkCtx, cancel := context.WithTimeout(ctx, checkTimeout)
		result := reg.checker.Check(checkCtx)
		cancel()

		result.Name = name
		result.Critical = reg.critical

		m.mu.Lock()
		prev := m.results[name]
		result.CheckCount = prev.CheckCount + 1
		result.FailureCount = prev.FailureCount
		if result.Status != StatusHealthy {
			result.FailureCount++
		}
		m.results[name] = result
		m.mu.Unlock()

		if result.Status != StatusHealthy {
			m.logger.Warn("Health check failed",
				zap.String("name", name),
				zap.String("status", result.Status.String()),
				zap.String("message", result.Message),
				zap.Duration("latency", result.Latency),
			)
		}
	}

	return m.Results()
}

// Results returns the latest result of every checker
func (m *Monitor) Results() map[string]CheckResult {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return maps.Clone(m.results)
}

// Healthy reports whether every critical checker passed its last check.
func (m *Monitor) Healthy() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, result := range m.results {
		if result.Critical && result.Status == StatusUnhealthy {
			return false
		}
	}
	return true
}
