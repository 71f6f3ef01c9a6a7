package health

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/tair/shopgrid/pkg/logger"
)

// Status values
const (
	StatusHealthy   = "healthy"
	StatusDegraded  = "degraded"
	StatusUnhealthy = "unhealthy"
)

// CheckFunc probes one dependency
type CheckFunc func(ctx context.Context) error

// DependencyHealth represents the health status of a dependency
type DependencyHealth struct {
	Name      string    `json:"name"`
	Status    string    `json:"status"`
	Critical  bool      `json:"critical"`
	LatencyMs int64     `json:"latency_ms"`
	Error     string    `json:"error,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// Report represents the overall service health
type Report struct {
	Service       string                      `json:"service"`
	Status        string                      `json:"status"`
	Dependencies  map[string]DependencyHealth `json:"dependencies"`
	UptimeSeconds float64                     `json:"uptime_seconds"`
}

type check struct {
	name     string
	critical bool
	fn       CheckFunc
}

// Checker checks health of the service dependencies
type Checker struct {
	service   string
	timeout   time.Duration
	startTime time.Time

	mu     sync.RWMutex
	checks []check
}

// NewChecker creates a new health checker
func NewChecker(service string, timeout time.Duration) *Checker {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Checker{
		service:   service,
		timeout:   timeout,
		startTime: time.Now(),
	}
}

// Register adds a dependency probe. A failing critical dependency makes the
// service unhealthy; any other failure only degrades it.
func (c *Checker) Register(name string, critical bool, fn CheckFunc) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.checks = append(c.checks, check{name: name, critical: critical, fn: fn})
}

// CheckAll runs every probe concurrently
func (c *Checker) CheckAll(ctx context.Context) Report {
	c.mu.RLock()
	checks := append([]check(nil), c.checks...)
	c.mu.RUnlock()

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	results := make(map[string]DependencyHealth, len(checks))
	var wg sync.WaitGroup
	var mu sync.Mutex

	for _, chk := range checks {
		wg.Add(1)
		go func(chk check) {
			defer wg.Done()
			health := c.run(ctx, chk)

			mu.Lock()
			results[chk.name] = health
			mu.Unlock()

			if health.Status == StatusHealthy {
				logger.Debug(ctx).
					Str("dependency", chk.name).
					Int64("latency_ms", health.LatencyMs).
					Msg("Dependency health check")
			} else {
				logger.Warn(ctx).
					Str("dependency", chk.name).
					Str("error", health.Error).
					Msg("Dependency health check failed")
			}
		}(chk)
	}

	wg.Wait()

	return Report{
		Service:       c.service,
		Status:        overallStatus(results),
		Dependencies:  results,
		UptimeSeconds: time.Since(c.startTime).Seconds(),
	}
}

func (c *Checker) run(ctx context.Context, chk check) DependencyHealth {
	start := time.Now()
	result := DependencyHealth{
		Name:      chk.name,
		Status:    StatusHealthy,
		Critical:  chk.critical,
		Timestamp: start,
	}

	if err := chk.fn(ctx); err != nil {
		result.Status = StatusUnhealthy
		result.Error = err.Error()
	}
	result.LatencyMs = time.Since(start).Milliseconds()
	return result
}

func overallStatus(results map[string]DependencyHealth) string {
	status := StatusHealthy
	for _, r := range results {
		if r.Status == StatusHealthy {
			continue
		}
		if r.Critical {
			return StatusUnhealthy
		}
		status = StatusDegraded
	}
	return status
}

// Handler serves the report, answering 503 when unhealthy
func (c *Checker) Handler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		report := c.CheckAll(r.Context())

		status := http.StatusOK
		if report.Status == StatusUnhealthy {
			status = http.StatusServiceUnavailable
		}

		w.Header().Set("Content-Type", "application/json")
		w.Header().Set("Cache-Control", "no-store")
		w.WriteHeader(status)
		json.NewEncoder(w).Encode(report)
	}
}
