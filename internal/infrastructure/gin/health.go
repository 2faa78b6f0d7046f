package gin

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
)

// HealthStatus is the outcome of one check or of the whole service.
type HealthStatus string

const (
	HealthStatusHealthy   HealthStatus = "healthy"
	HealthStatusDegraded  HealthStatus = "degraded"
	HealthStatusUnhealthy HealthStatus = "unhealthy"
)

const defaultCheckTimeout = 2 * time.Second

// HealthResponse is the /health response body.
type HealthResponse struct {
	Status  HealthStatus           `json:"status"`
	Service string                 `json:"service"`
	Version string                 `json:"version"`
	Uptime  string                 `json:"uptime"`
	Checks  map[string]CheckResult `json:"checks,omitempty"`
}

// CheckResult is the outcome of one dependency check.
type CheckResult struct {
	Status  HealthStatus `json:"status"`
	Message string       `json:"message,omitempty"`
	Latency string       `json:"latency"`
}

// HealthChecker checks one dependency. ctx carries the per-check timeout.
type HealthChecker func(ctx context.Context) CheckResult

// Health serves GET and HEAD /health. Checks run concurrently; the service
// is unhealthy (503) if any check is, degraded if any check is.
type Health struct {
	Service string
	Version string
	Checks  map[string]HealthChecker
	// Timeout bounds each check (default: 2s).
	Timeout time.Duration

	started time.Time
}

// Register adds the /health routes and starts the uptime clock.
func (h *Health) Register(router gin.IRoutes) {
	if h.Timeout <= 0 {
		h.Timeout = defaultCheckTimeout
	}
	h.started = time.Now()
	router.GET("/health", h.handle)
	router.HEAD("/health", h.handle)
}

func (h *Health) handle(c *gin.Context) {
	resp := HealthResponse{
		Status:  HealthStatusHealthy,
		Service: h.Service,
		Version: h.Version,
		Uptime:  time.Since(h.started).Truncate(time.Second).String(),
	}

	if len(h.Checks) > 0 {
		resp.Checks = h.runChecks(c.Request.Context())
		for _, result := range resp.Checks {
			resp.Status = worse(resp.Status, result.Status)
		}
	}

	code := http.StatusOK
	if resp.Status == HealthStatusUnhealthy {
		code = http.StatusServiceUnavailable
	}
	c.JSON(code, resp)
}

func (h *Health) runChecks(ctx context.Context) map[string]CheckResult {
	var (
		mu      sync.Mutex
		wg      sync.WaitGroup
		results = make(map[string]CheckResult, len(h.Checks))
	)
	for name, check := range h.Checks {
		wg.Go(func() {
			checkCtx, cancel := context.WithTimeout(ctx, h.Timeout)
			defer cancel()
			result := check(checkCtx)

			mu.Lock()
			results[name] = result
			mu.Unlock()
		})
	}
	wg.Wait()
	return results
}

var severity = map[HealthStatus]int{HealthStatusHealthy: 0, HealthStatusDegraded: 1, HealthStatusUnhealthy: 2}

func worse(a, b HealthStatus) HealthStatus {
	if severity[b] > severity[a] {
		return b
	}
	return a
}

// PingChecker reports failStatus when ping errors.
func PingChecker(name string, failStatus HealthStatus, ping func(ctx context.Context) error) HealthChecker {
	return func(ctx context.Context) CheckResult {
		start := time.Now()
		err := ping(ctx)
		result := CheckResult{Status: HealthStatusHealthy, Latency: time.Since(start).String()}
		if err != nil {
			result.Status = failStatus
			result.Message = name + ": " + err.Error()
		}
		return result
	}
}

// ElasticsearchHealthChecker reports unhealthy when the cluster is
// unreachable; no endpoint can answer without it.
func ElasticsearchHealthChecker(ping func(ctx context.Context) error) HealthChecker {
	return PingChecker("elasticsearch", HealthStatusUnhealthy, ping)
}

// CircuitHealthChecker reports degraded while searches are being rejected
// by a circuit breaker.
func CircuitHealthChecker(check func(ctx context.Context) error) HealthChecker {
	return PingChecker("search_circuit", HealthStatusDegraded, check)
}

// RedisHealthChecker reports degraded when Redis is unreachable. Bounds are
// then recomputed on every request.
func RedisHealthChecker(ping func(ctx context.Context) error) HealthChecker {
	return PingChecker("redis", HealthStatusDegraded, ping)
}
