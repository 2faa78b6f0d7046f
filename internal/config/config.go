// Package config holds the email analytics service configuration.
package config

import (
	"time"

	infraconfig "github.com/jonesrussell/north-cloud/email-analytics/internal/infrastructure/config"
	"github.com/jonesrussell/north-cloud/email-analytics/internal/query"
)

// Default configuration values.
const (
	defaultServiceName     = "email-analytics"
	defaultServiceVersion  = "1.0.0"
	defaultServicePort     = 8095
	defaultESAddress       = "http://localhost:9200"
	defaultESMaxRetries    = 3
	defaultESTimeout       = 30 * time.Second
	defaultTypeIndexFormat = "{index}_{type}"
	defaultMinBound        = "1970-01-01"
	defaultMaxBound        = "now"
	defaultSpan            = 365
	defaultSpanUnit        = SpanDays
	defaultCacheTTL        = 10 * time.Minute
	defaultRedisAddress    = "localhost:6379"
	defaultLogLevel        = "info"
	defaultLogFormat       = "json"
)

// Span units accepted by timeline.span_unit.
const (
	SpanSeconds = "seconds"
	SpanMinutes = "minutes"
	SpanHours   = "hours"
	SpanDays    = "days"
	SpanWeeks   = "weeks"
	SpanMonths  = "months"
	SpanYears   = "years"
)

// Config holds the application configuration.
type Config struct {
	Service       ServiceConfig       `yaml:"service"`
	Elasticsearch ElasticsearchConfig `yaml:"elasticsearch"`
	Timeline      TimelineConfig      `yaml:"timeline"`
	Query         QueryConfig         `yaml:"query"`
	Cache         CacheConfig         `yaml:"cache"`
	Logging       LoggingConfig       `yaml:"logging"`
}

// ServiceConfig holds service configuration.
type ServiceConfig struct {
	Name    string `yaml:"name"`
	Version string `yaml:"version"`
	Port    int    `env:"EMAIL_ANALYTICS_PORT" yaml:"port"`
	Debug   bool   `env:"APP_DEBUG"            yaml:"debug"`
	// CORSOrigins lists the origins allowed to call the API. Empty allows all.
	CORSOrigins []string `env:"CORS_ORIGINS" yaml:"cors_origins"`
}

// ElasticsearchConfig holds Elasticsearch configuration.
type ElasticsearchConfig struct {
	Addresses  []string      `env:"ELASTICSEARCH_HOSTS"    yaml:"addresses"`
	Username   string        `env:"ELASTICSEARCH_USERNAME" yaml:"username"`
	Password   string        `env:"ELASTICSEARCH_PASSWORD" yaml:"password"`
	MaxRetries int           `yaml:"max_retries"`
	Timeout    time.Duration `yaml:"timeout"`
	// TypeIndexFormat maps a document type onto an index name. {index} and
	// {type} are substituted. Unset defaults to {index}_{type}; "{index}"
	// searches the index as given.
	TypeIndexFormat string `env:"ELASTICSEARCH_TYPE_INDEX_FORMAT" yaml:"type_index_format"`

	CircuitBreaker CircuitBreakerConfig `yaml:"circuit_breaker"`
}

// CircuitBreakerConfig controls fail-fast behavior while the cluster is down.
type CircuitBreakerConfig struct {
	Enabled          bool          `env:"ELASTICSEARCH_CIRCUIT_BREAKER_ENABLED" yaml:"enabled"`
	FailureThreshold int           `yaml:"failure_threshold"`
	SuccessThreshold int           `yaml:"success_threshold"`
	CoolDown         time.Duration `yaml:"cool_down"`
}

// TimelineConfig holds the default timeline bounds and bucketing.
type TimelineConfig struct {
	// MinBound and MaxBound are used when the index has no dates.
	MinBound string `env:"TIMELINE_MIN_BOUND" yaml:"min_bound"`
	MaxBound string `env:"TIMELINE_MAX_BOUND" yaml:"max_bound"`
	// Span is the width of the default window centered on the median date,
	// measured in SpanUnit.
	Span     int    `env:"TIMELINE_SPAN"      yaml:"span"`
	SpanUnit string `env:"TIMELINE_SPAN_UNIT" yaml:"span_unit"`
	Interval string `env:"TIMELINE_INTERVAL"  yaml:"interval"`
}

// QueryConfig shapes the generated request bodies.
type QueryConfig struct {
	// IntervalField is interval for clusters older than 7.2, otherwise
	// calendar_interval or fixed_interval.
	IntervalField string `env:"QUERY_INTERVAL_FIELD" yaml:"interval_field"`
	DateFormat    string `yaml:"date_format"`
	EntityAggSize int    `yaml:"entity_agg_size"`
}

// CacheConfig holds the Redis bounds cache configuration.
type CacheConfig struct {
	Enabled   bool          `env:"CACHE_ENABLED"  yaml:"enabled"`
	Address   string        `env:"REDIS_ADDRESS"  yaml:"address"`
	Password  string        `env:"REDIS_PASSWORD" yaml:"password"`
	DB        int           `env:"REDIS_DB"       yaml:"db"`
	BoundsTTL time.Duration `yaml:"bounds_ttl"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level  string `env:"LOG_LEVEL"  yaml:"level"`
	Format string `env:"LOG_FORMAT" yaml:"format"`
}

// Load loads configuration from a YAML file.
func Load(path string) (*Config, error) {
	return infraconfig.LoadWithDefaults[Config](path, setDefaults)
}

// QueryOptions converts the query section into builder options.
func (c *Config) QueryOptions() query.Options {
	return query.Options{
		IntervalField:        c.Query.IntervalField,
		DateFormat:           c.Query.DateFormat,
		DefaultInterval:      c.Timeline.Interval,
		DefaultEntityAggSize: c.Query.EntityAggSize,
	}
}

func setDefaults(cfg *Config) {
	setServiceDefaults(&cfg.Service)
	setElasticsearchDefaults(&cfg.Elasticsearch)
	setTimelineDefaults(&cfg.Timeline)
	setQueryDefaults(&cfg.Query)
	setCacheDefaults(&cfg.Cache)
	setLoggingDefaults(&cfg.Logging)
}

func setServiceDefaults(s *ServiceConfig) {
	if s.Name == "" {
		s.Name = defaultServiceName
	}
	if s.Version == "" {
		s.Version = defaultServiceVersion
	}
	if s.Port == 0 {
		s.Port = defaultServicePort
	}
}

func setElasticsearchDefaults(e *ElasticsearchConfig) {
	if len(e.Addresses) == 0 {
		e.Addresses = []string{defaultESAddress}
	}
	if e.MaxRetries == 0 {
		e.MaxRetries = defaultESMaxRetries
	}
	if e.Timeout == 0 {
		e.Timeout = defaultESTimeout
	}
	if e.TypeIndexFormat == "" {
		e.TypeIndexFormat = defaultTypeIndexFormat
	}
}

func setTimelineDefaults(t *TimelineConfig) {
	if t.MinBound == "" {
		t.MinBound = defaultMinBound
	}
	if t.MaxBound == "" {
		t.MaxBound = defaultMaxBound
	}
	if t.Span == 0 {
		t.Span = defaultSpan
	}
	if t.SpanUnit == "" {
		t.SpanUnit = defaultSpanUnit
	}
	if t.Interval == "" {
		t.Interval = query.DefaultInterval
	}
}

func setQueryDefaults(q *QueryConfig) {
	if q.IntervalField == "" {
		q.IntervalField = query.IntervalLegacy
	}
	if q.DateFormat == "" {
		q.DateFormat = query.DefaultDateFormat
	}
	if q.EntityAggSize == 0 {
		q.EntityAggSize = query.DefaultEntityAggSize
	}
}

func setCacheDefaults(c *CacheConfig) {
	if c.Address == "" {
		c.Address = defaultRedisAddress
	}
	if c.BoundsTTL == 0 {
		c.BoundsTTL = defaultCacheTTL
	}
}

func setLoggingDefaults(l *LoggingConfig) {
	if l.Level == "" {
		l.Level = defaultLogLevel
	}
	if l.Format == "" {
		l.Format = defaultLogFormat
	}
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if err := infraconfig.ValidatePort("service.port", c.Service.Port); err != nil {
		return err
	}
	if len(c.Elasticsearch.Addresses) == 0 {
		return &infraconfig.ValidationError{Field: "elasticsearch.addresses", Message: "is required"}
	}
	if c.Timeline.Span <= 0 {
		return &infraconfig.ValidationError{Field: "timeline.span", Message: "must be positive"}
	}
	if err := infraconfig.ValidateOneOf("timeline.span_unit", c.Timeline.SpanUnit,
		SpanSeconds, SpanMinutes, SpanHours, SpanDays, SpanWeeks, SpanMonths, SpanYears); err != nil {
		return err
	}
	if err := infraconfig.ValidateOneOf("query.interval_field", c.Query.IntervalField,
		query.IntervalLegacy, query.IntervalCalendar, query.IntervalFixed); err != nil {
		return err
	}
	if c.Cache.Enabled {
		if err := infraconfig.ValidateRequired("cache.address", c.Cache.Address); err != nil {
			return err
		}
	}
	if err := infraconfig.ValidateOneOf("logging.format", c.Logging.Format, "json", "console"); err != nil {
		return err
	}
	return infraconfig.ValidateLogLevel("logging.level", c.Logging.Level)
}
