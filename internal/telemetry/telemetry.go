// Package telemetry exports Prometheus metrics and trace spans for the
// email analytics service.
package telemetry

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/jonesrussell/north-cloud/email-analytics/internal/infrastructure/circuitbreaker"
)

const serviceName = "email-analytics"

// Metrics holds the service's Prometheus collectors.
type Metrics struct {
	// Search metrics
	SearchDuration *prometheus.HistogramVec
	SearchFailures *prometheus.CounterVec
	// CircuitState is 0 closed, 1 open, 2 half-open.
	CircuitState prometheus.Gauge

	// Bounds cache
	CacheHits   prometheus.Counter
	CacheMisses prometheus.Counter

	// HTTP
	RequestsTotal *prometheus.CounterVec
}

// Provider bundles the tracer and the metrics.
type Provider struct {
	Tracer   trace.Tracer
	Metrics  *Metrics
	gatherer prometheus.Gatherer
}

// NewProvider registers metrics with the default Prometheus registry.
func NewProvider() *Provider {
	return NewProviderWithRegistry(prometheus.DefaultRegisterer, prometheus.DefaultGatherer)
}

// NewProviderWithRegistry registers metrics with reg. Tests pass a fresh
// prometheus.NewRegistry so providers do not collide.
func NewProviderWithRegistry(reg prometheus.Registerer, gatherer prometheus.Gatherer) *Provider {
	return &Provider{
		Tracer:   otel.Tracer(serviceName),
		Metrics:  initMetrics(promauto.With(reg)),
		gatherer: gatherer,
	}
}

// Handler serves the /metrics endpoint.
func (p *Provider) Handler() http.Handler {
	return promhttp.HandlerFor(p.gatherer, promhttp.HandlerOpts{})
}

func initMetrics(f promauto.Factory) *Metrics {
	return &Metrics{
		SearchDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "email_analytics_search_duration_seconds",
			Help:    "Elasticsearch round trip time per fetcher operation",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.5, 5.0, 10.0},
		}, []string{"operation"}),
		SearchFailures: f.NewCounterVec(prometheus.CounterOpts{
			Name: "email_analytics_search_failures_total",
			Help: "Failed Elasticsearch searches per fetcher operation",
		}, []string{"operation"}),
		CircuitState: f.NewGauge(prometheus.GaugeOpts{
			Name: "email_analytics_search_circuit_state",
			Help: "Elasticsearch circuit breaker state (0 closed, 1 open, 2 half-open)",
		}),
		CacheHits: f.NewCounter(prometheus.CounterOpts{
			Name: "email_analytics_bounds_cache_hits_total",
			Help: "Date bounds served from the cache",
		}),
		CacheMisses: f.NewCounter(prometheus.CounterOpts{
			Name: "email_analytics_bounds_cache_misses_total",
			Help: "Date bounds computed because the cache had no entry",
		}),
		RequestsTotal: f.NewCounterVec(prometheus.CounterOpts{
			Name: "email_analytics_http_requests_total",
			Help: "HTTP requests by route and status",
		}, []string{"route", "status"}),
	}
}

// RecordSearch records one search round trip.
func (p *Provider) RecordSearch(operation string, duration time.Duration, err error) {
	p.Metrics.SearchDuration.WithLabelValues(operation).Observe(duration.Seconds())
	if err != nil {
		p.Metrics.SearchFailures.WithLabelValues(operation).Inc()
	}
}

// RecordCircuitState publishes the search circuit breaker state.
func (p *Provider) RecordCircuitState(state circuitbreaker.State) {
	p.Metrics.CircuitState.Set(float64(state))
}

// RecordCacheLookup counts a bounds cache hit or miss.
func (p *Provider) RecordCacheLookup(hit bool) {
	if hit {
		p.Metrics.CacheHits.Inc()
		return
	}
	p.Metrics.CacheMisses.Inc()
}

// RecordRequest counts one HTTP request.
func (p *Provider) RecordRequest(route string, status int) {
	if route == "" {
		route = "unmatched"
	}
	p.Metrics.RequestsTotal.WithLabelValues(route, strconv.Itoa(status)).Inc()
}

// StartSpan starts a new trace span.
// The caller is responsible for ending the span with span.End().
//
//nolint:spancheck // Caller is responsible for ending the span
func (p *Provider) StartSpan(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	return p.Tracer.Start(ctx, name, trace.WithAttributes(attrs...))
}
