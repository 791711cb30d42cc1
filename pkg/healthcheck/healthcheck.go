// Package healthcheck aggregates named dependency checks into a single
// health report served over HTTP.
package healthcheck

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Status represents the health state of a single check or the whole service.
type Status string

const (
	StatusHealthy   Status = "healthy"
	StatusUnhealthy Status = "unhealthy"
)

// CheckFunc probes one dependency. A nil return means healthy.
type CheckFunc func(ctx context.Context) error

// CheckResult is the outcome of a single check.
type CheckResult struct {
	Name     string        `json:"name"`
	Status   Status        `json:"status"`
	Error    string        `json:"error,omitempty"`
	Duration time.Duration `json:"duration_ms"`
}

// Report is the aggregate health report.
type Report struct {
	Status    Status        `json:"status"`
	Service   string        `json:"service"`
	Timestamp time.Time     `json:"timestamp"`
	Checks    []CheckResult `json:"checks,omitempty"`
}

// Checker runs registered checks with a per-check timeout.
type Checker struct {
	service string
	timeout time.Duration
	logger  *zap.Logger

	mu     sync.RWMutex
	checks map[string]CheckFunc
}

// NewChecker creates a checker for the named service.
func NewChecker(service string, timeout time.Duration, logger *zap.Logger) *Checker {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Checker{
		service: service,
		timeout: timeout,
		logger:  logger.Named("healthcheck"),
		checks:  make(map[string]CheckFunc),
	}
}

// Register adds a named check. Registering the same name again replaces it.
func (c *Checker) Register(name string, check CheckFunc) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.checks[name] = check
}

// Check runs all registered checks and returns the aggregate report.
func (c *Checker) Check(ctx context.Context) Report {
	c.mu.RLock()
	checks := make(map[string]CheckFunc, len(c.checks))
	for name, fn := range c.checks {
		checks[name] = fn
	}
	c.mu.RUnlock()

	report := Report{
		Status:    StatusHealthy,
		Service:   c.service,
		Timestamp: time.Now().UTC(),
	}

	for name, fn := range checks {
		start := time.Now()
		checkCtx, cancel := context.WithTimeout(ctx, c.timeout)
		err := fn(checkCtx)
		cancel()

		result := CheckResult{
			Name:     name,
			Status:   StatusHealthy,
			Duration: time.Since(start) / time.Millisecond,
		}
		if err != nil {
			result.Status = StatusUnhealthy
			result.Error = err.Error()
			report.Status = StatusUnhealthy
			c.logger.Warn("health check failed",
				zap.String("check", name),
				zap.Error(err),
			)
		}
		report.Checks = append(report.Checks, result)
	}

	return report
}

// Handler returns an HTTP handler serving the health report as JSON.
// Unhealthy reports are served with 503.
func (c *Checker) Handler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		report := c.Check(r.Context())

		w.Header().Set("Content-Type", "application/json")
		if report.Status != StatusHealthy {
			w.WriteHeader(http.StatusServiceUnavailable)
		}
		if err := json.NewEncoder(w).Encode(report); err != nil {
			c.logger.Error("failed to encode health report", zap.Error(err))
		}
	}
}
