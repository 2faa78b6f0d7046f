// Package elasticsearch wraps the go-elasticsearch client with the single
// search call the fetchers need.
package elasticsearch

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	es "github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"

	"github.com/jonesrussell/north-cloud/email-analytics/internal/infrastructure/circuitbreaker"
	infralogger "github.com/jonesrussell/north-cloud/email-analytics/internal/infrastructure/logger"
	"github.com/jonesrussell/north-cloud/email-analytics/internal/infrastructure/retry"
	"github.com/jonesrussell/north-cloud/email-analytics/internal/telemetry"
)

var (
	// ErrSearchFailed is returned when Elasticsearch answers with an error status.
	ErrSearchFailed = errors.New("search failed")
	// ErrIndexNotFound is returned when the target index does not exist.
	ErrIndexNotFound = errors.New("index not found")
)

// StatusError carries the status and body of a failed search. It matches
// ErrSearchFailed under errors.Is.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s [%d]: %s", ErrSearchFailed, e.StatusCode, e.Body)
}

func (e *StatusError) Unwrap() error { return ErrSearchFailed }

// SearchRequest is one search round trip.
type SearchRequest struct {
	Index   string
	DocType string
	// Body is marshalled to JSON.
	Body any
	// RequestCache overrides the index request cache setting when non-nil.
	RequestCache *bool
	// Operation labels metrics, spans and logs.
	Operation string
}

// Client runs searches against the cluster. It is safe for concurrent use.
type Client struct {
	es        *es.Client
	cfg       Config
	telemetry *telemetry.Provider
	log       infralogger.Logger
	breaker   *circuitbreaker.Breaker
}

// NewClient creates the client and verifies the cluster is reachable,
// retrying the ping with exponential backoff.
func NewClient(ctx context.Context, cfg Config, tel *telemetry.Provider, log infralogger.Logger) (*Client, error) {
	cfg.SetDefaults()

	addresses := normalizeAddresses(cfg.Addresses)
	esClient, err := es.NewClient(es.Config{
		Addresses:  addresses,
		Username:   cfg.Username,
		Password:   cfg.Password,
		MaxRetries: cfg.MaxRetries,
		Transport:  &http.Transport{ResponseHeaderTimeout: cfg.Timeout},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Elasticsearch client: %w", err)
	}

	c := NewFromClient(esClient, cfg, tel, log)

	log.Info("Verifying Elasticsearch connection", infralogger.Strings("addresses", addresses))
	if err = retry.Retry(ctx, *cfg.RetryConfig, func() error {
		return c.Ping(ctx)
	}); err != nil {
		return nil, fmt.Errorf("failed to connect to Elasticsearch after retries: %w", err)
	}
	log.Info("Elasticsearch connection established")

	return c, nil
}

// NewFromClient wraps an existing go-elasticsearch client without pinging it.
func NewFromClient(esClient *es.Client, cfg Config, tel *telemetry.Provider, log infralogger.Logger) *Client {
	cfg.SetDefaults()
	c := &Client{es: esClient, cfg: cfg, telemetry: tel, log: log}
	if cfg.CircuitBreaker != nil {
		bc := *cfg.CircuitBreaker
		bc.IsFailure = isEngineFailure
		bc.OnStateChange = c.onBreakerStateChange
		c.breaker = circuitbreaker.New(bc)
	}
	return c
}

// isEngineFailure reports whether err says the cluster itself is unhealthy.
// Missing indices, rejected queries and cancelled callers do not count.
func isEngineFailure(err error) bool {
	if err == nil || errors.Is(err, ErrIndexNotFound) || errors.Is(err, context.Canceled) {
		return false
	}
	var se *StatusError
	if errors.As(err, &se) {
		return se.StatusCode >= http.StatusInternalServerError
	}
	return true
}

func (c *Client) onBreakerStateChange(from, to circuitbreaker.State) {
	c.log.Warn("Elasticsearch circuit breaker state changed",
		infralogger.String("from", from.String()),
		infralogger.String("to", to.String()),
	)
	if c.telemetry != nil {
		c.telemetry.RecordCircuitState(to)
	}
}

// IndexFor returns the physical index for docType documents of index.
func (c *Client) IndexFor(index, docType string) string {
	return c.cfg.IndexFor(index, docType)
}

// Ping checks the cluster answers within the configured ping timeout.
func (c *Client) Ping(ctx context.Context) error {
	pingCtx, cancel := context.WithTimeout(ctx, c.cfg.PingTimeout)
	defer cancel()

	res, err := c.es.Ping(c.es.Ping.WithContext(pingCtx))
	if err != nil {
		c.log.Debug("Elasticsearch ping failed", infralogger.Error(err))
		return fmt.Errorf("ping failed: %w", err)
	}
	defer func() { _ = res.Body.Close() }()

	if res.IsError() {
		return fmt.Errorf("ping returned error [%s]", res.Status())
	}
	return nil
}

// Search runs req and returns the raw response body.
func (c *Client) Search(ctx context.Context, req SearchRequest) ([]byte, error) {
	index := c.IndexFor(req.Index, req.DocType)

	ctx, span := c.startSpan(ctx, req.Operation, index)
	defer span.End()

	start := time.Now()
	var data []byte
	err := c.execute(func() error {
		var searchErr error
		data, searchErr = c.search(ctx, index, req)
		return searchErr
	})
	duration := time.Since(start)

	if c.telemetry != nil {
		c.telemetry.RecordSearch(req.Operation, duration, err)
	}

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		c.log.Error("Elasticsearch search failed",
			infralogger.String("operation", req.Operation),
			infralogger.String("index", index),
			infralogger.Duration("duration", duration),
			infralogger.Error(err),
		)
		return nil, err
	}

	c.log.Debug("Elasticsearch search completed",
		infralogger.String("operation", req.Operation),
		infralogger.String("index", index),
		infralogger.Duration("duration", duration),
	)
	return data, nil
}

// HasCircuitBreaker reports whether searches run behind a circuit breaker.
func (c *Client) HasCircuitBreaker() bool { return c.breaker != nil }

// CheckCircuit fails while the search circuit is open or half-open.
func (c *Client) CheckCircuit(context.Context) error {
	if c.breaker == nil {
		return nil
	}
	stats := c.breaker.Stats()
	if stats.State == circuitbreaker.StateClosed {
		return nil
	}
	return fmt.Errorf("%w: %s since %s", circuitbreaker.ErrCircuitOpen,
		stats.State, stats.LastFailureTime.UTC().Format(time.RFC3339))
}

func (c *Client) execute(fn func() error) error {
	if c.breaker == nil {
		return fn()
	}
	return c.breaker.Execute(fn)
}

func (c *Client) startSpan(ctx context.Context, operation, index string) (context.Context, trace.Span) {
	attrs := []attribute.KeyValue{
		attribute.String("db.system", "elasticsearch"),
		attribute.String("db.operation", operation),
		attribute.String("elasticsearch.index", index),
	}
	if c.telemetry == nil {
		return noop.NewTracerProvider().Tracer("").Start(ctx, "elasticsearch.search", trace.WithAttributes(attrs...))
	}
	return c.telemetry.StartSpan(ctx, "elasticsearch.search", attrs...)
}

func (c *Client) search(ctx context.Context, index string, req SearchRequest) ([]byte, error) {
	body, err := json.Marshal(req.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal search body: %w", err)
	}

	opts := []func(*esapi.SearchRequest){
		c.es.Search.WithContext(ctx),
		c.es.Search.WithIndex(index),
		c.es.Search.WithBody(bytes.NewReader(body)),
	}
	if req.RequestCache != nil {
		opts = append(opts, c.es.Search.WithRequestCache(*req.RequestCache))
	}

	res, err := c.es.Search(opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to execute search: %w", err)
	}
	defer func() { _ = res.Body.Close() }()

	data, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read search response: %w", err)
	}

	if res.StatusCode == http.StatusNotFound {
		return nil, fmt.Errorf("%w: %s", ErrIndexNotFound, index)
	}
	if res.IsError() {
		return nil, &StatusError{StatusCode: res.StatusCode, Body: string(data)}
	}

	return data, nil
}
