package elasticsearch_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"sync/atomic"
	"testing"
	"time"

	es "github.com/elastic/go-elasticsearch/v8"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonesrussell/north-cloud/email-analytics/internal/elasticsearch"
	"github.com/jonesrussell/north-cloud/email-analytics/internal/infrastructure/circuitbreaker"
	infralogger "github.com/jonesrussell/north-cloud/email-analytics/internal/infrastructure/logger"
	"github.com/jonesrussell/north-cloud/email-analytics/internal/telemetry"
)

// mockTransport implements http.RoundTripper for mocking Elasticsearch responses
type mockTransport struct {
	RoundTripFn func(req *http.Request) (*http.Response, error)
}

func (t *mockTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	return t.RoundTripFn(req)
}

func jsonResponse(status int, body string) *http.Response {
	return &http.Response{
		StatusCode: status,
		Body:       io.NopCloser(bytes.NewBufferString(body)),
		Header: http.Header{
			"X-Elastic-Product": []string{"Elasticsearch"},
			"Content-Type":      []string{"application/json"},
		},
	}
}

func newTestClient(t *testing.T, cfg elasticsearch.Config, fn func(*http.Request) (*http.Response, error)) (*elasticsearch.Client, *telemetry.Provider) {
	t.Helper()

	esClient, err := es.NewClient(es.Config{Transport: &mockTransport{RoundTripFn: fn}})
	require.NoError(t, err)

	reg := prometheus.NewRegistry()
	tel := telemetry.NewProviderWithRegistry(reg, reg)
	return elasticsearch.NewFromClient(esClient, cfg, tel, infralogger.NewNop()), tel
}

func TestSearch_MapsDocTypeToIndex(t *testing.T) {
	t.Parallel()

	var gotPath string
	var gotBody map[string]any
	var gotCache string

	client, _ := newTestClient(t, elasticsearch.Config{TypeIndexFormat: "{index}_{type}"}, func(req *http.Request) (*http.Response, error) {
		gotPath = req.URL.Path
		gotCache = req.URL.Query().Get("request_cache")
		if err := json.NewDecoder(req.Body).Decode(&gotBody); err != nil {
			return nil, err
		}
		return jsonResponse(http.StatusOK, `{"aggregations":{}}`), nil
	})

	requestCache := false
	data, err := client.Search(context.Background(), elasticsearch.SearchRequest{
		Index:        "sample",
		DocType:      "emails",
		Body:         map[string]any{"size": 0},
		RequestCache: &requestCache,
		Operation:    "email_activity",
	})

	require.NoError(t, err)
	assert.JSONEq(t, `{"aggregations":{}}`, string(data))
	assert.Equal(t, "/sample_emails/_search", gotPath)
	assert.Equal(t, "false", gotCache)
	assert.InDelta(t, 0, gotBody["size"], 0)
}

func TestSearch_NoTypeFormatUsesIndex(t *testing.T) {
	t.Parallel()

	var gotPath string
	var gotCache bool

	client, _ := newTestClient(t, elasticsearch.Config{}, func(req *http.Request) (*http.Response, error) {
		gotPath = req.URL.Path
		_, gotCache = req.URL.Query()["request_cache"]
		return jsonResponse(http.StatusOK, `{}`), nil
	})

	_, err := client.Search(context.Background(), elasticsearch.SearchRequest{Index: "sample", DocType: "emails", Body: struct{}{}})

	require.NoError(t, err)
	assert.Equal(t, "/sample/_search", gotPath)
	assert.False(t, gotCache)
}

func TestSearch_ErrorStatus(t *testing.T) {
	t.Parallel()

	client, tel := newTestClient(t, elasticsearch.Config{}, func(*http.Request) (*http.Response, error) {
		return jsonResponse(http.StatusBadRequest, `{"error":{"type":"parsing_exception"}}`), nil
	})

	_, err := client.Search(context.Background(), elasticsearch.SearchRequest{Index: "sample", Body: struct{}{}, Operation: "bounds"})

	require.ErrorIs(t, err, elasticsearch.ErrSearchFailed)
	assert.Contains(t, err.Error(), "parsing_exception")
	assert.Contains(t, err.Error(), "[400]")
	assert.InDelta(t, 1, testutil.ToFloat64(tel.Metrics.SearchFailures.WithLabelValues("bounds")), 0)
}

func TestSearch_IndexNotFound(t *testing.T) {
	t.Parallel()

	client, _ := newTestClient(t, elasticsearch.Config{TypeIndexFormat: "{index}_{type}"}, func(*http.Request) (*http.Response, error) {
		return jsonResponse(http.StatusNotFound, `{"error":{"type":"index_not_found_exception"}}`), nil
	})

	_, err := client.Search(context.Background(), elasticsearch.SearchRequest{Index: "missing", DocType: "emails", Body: struct{}{}})

	require.ErrorIs(t, err, elasticsearch.ErrIndexNotFound)
	assert.Contains(t, err.Error(), "missing_emails")
}

func TestSearch_CircuitBreakerOpensOnEngineErrors(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	cfg := elasticsearch.Config{CircuitBreaker: &circuitbreaker.Config{FailureThreshold: 2, CoolDown: time.Hour}}
	client, tel := newTestClient(t, cfg, func(*http.Request) (*http.Response, error) {
		calls.Add(1)
		return jsonResponse(http.StatusInternalServerError, `{"error":{"type":"search_phase_execution_exception"}}`), nil
	})
	req := elasticsearch.SearchRequest{Index: "sample", Body: struct{}{}, Operation: "bounds"}

	require.True(t, client.HasCircuitBreaker())
	require.NoError(t, client.CheckCircuit(context.Background()))

	for range 2 {
		_, err := client.Search(context.Background(), req)
		var se *elasticsearch.StatusError
		require.ErrorAs(t, err, &se)
		assert.Equal(t, http.StatusInternalServerError, se.StatusCode)
	}

	_, err := client.Search(context.Background(), req)
	require.ErrorIs(t, err, circuitbreaker.ErrCircuitOpen)
	assert.Equal(t, int32(2), calls.Load())
	assert.InDelta(t, float64(circuitbreaker.StateOpen), testutil.ToFloat64(tel.Metrics.CircuitState), 0)

	checkErr := client.CheckCircuit(context.Background())
	require.ErrorIs(t, checkErr, circuitbreaker.ErrCircuitOpen)
	assert.Contains(t, checkErr.Error(), "open since")
}

func TestSearch_CircuitBreakerIgnoresClientErrors(t *testing.T) {
	t.Parallel()

	cfg := elasticsearch.Config{CircuitBreaker: &circuitbreaker.Config{FailureThreshold: 1}}
	client, _ := newTestClient(t, cfg, func(*http.Request) (*http.Response, error) {
		return jsonResponse(http.StatusNotFound, `{"error":{"type":"index_not_found_exception"}}`), nil
	})
	req := elasticsearch.SearchRequest{Index: "missing", Body: struct{}{}}

	for range 3 {
		_, err := client.Search(context.Background(), req)
		require.ErrorIs(t, err, elasticsearch.ErrIndexNotFound)
	}
	require.NoError(t, client.CheckCircuit(context.Background()))
}

func TestPing(t *testing.T) {
	t.Parallel()

	client, _ := newTestClient(t, elasticsearch.Config{}, func(req *http.Request) (*http.Response, error) {
		assert.Equal(t, http.MethodHead, req.Method)
		return jsonResponse(http.StatusOK, ``), nil
	})

	require.NoError(t, client.Ping(context.Background()))
}

func TestConfig_IndexFor(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		format  string
		docType string
		want    string
	}{
		{name: "suffix", format: "{index}_{type}", docType: "attachments", want: "sample_attachments"},
		{name: "prefix", format: "{type}-{index}", docType: "email_address", want: "email_address-sample"},
		{name: "no format", format: "", docType: "emails", want: "sample"},
		{name: "no type", format: "{index}_{type}", docType: "", want: "sample"},
		{name: "index only", format: "{index}", docType: "attachments", want: "sample"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			cfg := elasticsearch.Config{TypeIndexFormat: tt.format}
			assert.Equal(t, tt.want, cfg.IndexFor("sample", tt.docType))
		})
	}
}
