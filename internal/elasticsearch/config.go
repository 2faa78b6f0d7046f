package elasticsearch

import (
	"strings"
	"time"

	"github.com/jonesrussell/north-cloud/email-analytics/internal/infrastructure/circuitbreaker"
	"github.com/jonesrussell/north-cloud/email-analytics/internal/infrastructure/retry"
)

// Placeholders recognized in Config.TypeIndexFormat.
const (
	indexPlaceholder = "{index}"
	typePlaceholder  = "{type}"
)

// Config holds Elasticsearch client configuration.
type Config struct {
	// Addresses are the cluster node URLs. A missing scheme defaults to http.
	Addresses []string

	Username string
	Password string

	// MaxRetries is the per-request retry count of the transport (default: 3).
	MaxRetries int

	// Timeout bounds the wait for response headers (default: 30s).
	Timeout time.Duration

	// PingTimeout bounds each startup ping (default: 5s).
	PingTimeout time.Duration

	// TypeIndexFormat maps (index, document type) onto a physical index.
	// Empty, or a format without {type}, searches the index as given.
	TypeIndexFormat string

	// RetryConfig controls the startup ping. Defaults to 5 attempts
	// starting at 2s, capped at 10s.
	RetryConfig *retry.Config

	// CircuitBreaker fails searches fast while the cluster keeps erroring.
	// Nil disables it.
	CircuitBreaker *circuitbreaker.Config
}

// SetDefaults applies default values to the config if not set.
func (c *Config) SetDefaults() {
	if len(c.Addresses) == 0 {
		c.Addresses = []string{"http://localhost:9200"}
	}
	if c.MaxRetries == 0 {
		c.MaxRetries = 3
	}
	if c.Timeout == 0 {
		c.Timeout = 30 * time.Second
	}
	if c.PingTimeout == 0 {
		c.PingTimeout = 5 * time.Second
	}
	if c.RetryConfig == nil {
		c.RetryConfig = &retry.Config{
			MaxAttempts:  5,
			InitialDelay: 2 * time.Second,
			MaxDelay:     10 * time.Second,
			Multiplier:   2.0,
		}
	}
}

// IndexFor returns the physical index holding docType documents of index.
func (c *Config) IndexFor(index, docType string) string {
	if c.TypeIndexFormat == "" || docType == "" {
		return index
	}
	name := strings.ReplaceAll(c.TypeIndexFormat, indexPlaceholder, index)
	return strings.ReplaceAll(name, typePlaceholder, docType)
}

func normalizeAddresses(addrs []string) []string {
	out := make([]string, 0, len(addrs))
	for _, a := range addrs {
		a = strings.TrimSpace(a)
		if a == "" {
			continue
		}
		if !strings.HasPrefix(a, "http://") && !strings.HasPrefix(a, "https://") {
			a = "http://" + a
		}
		out = append(out, a)
	}
	return out
}
