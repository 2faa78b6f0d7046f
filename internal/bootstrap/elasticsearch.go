package bootstrap

import (
	"context"
	"fmt"

	"github.com/jonesrussell/north-cloud/email-analytics/internal/config"
	"github.com/jonesrussell/north-cloud/email-analytics/internal/elasticsearch"
	"github.com/jonesrussell/north-cloud/email-analytics/internal/infrastructure/circuitbreaker"
	infralogger "github.com/jonesrussell/north-cloud/email-analytics/internal/infrastructure/logger"
	"github.com/jonesrussell/north-cloud/email-analytics/internal/telemetry"
)

// SetupElasticsearch creates an Elasticsearch client and waits for the cluster.
func SetupElasticsearch(
	ctx context.Context,
	cfg *config.Config,
	tel *telemetry.Provider,
	log infralogger.Logger,
) (*elasticsearch.Client, error) {
	esClient, err := elasticsearch.NewClient(ctx, elasticsearch.Config{
		Addresses:       cfg.Elasticsearch.Addresses,
		Username:        cfg.Elasticsearch.Username,
		Password:        cfg.Elasticsearch.Password,
		MaxRetries:      cfg.Elasticsearch.MaxRetries,
		Timeout:         cfg.Elasticsearch.Timeout,
		TypeIndexFormat: cfg.Elasticsearch.TypeIndexFormat,
		CircuitBreaker:  breakerConfig(cfg.Elasticsearch.CircuitBreaker),
	}, tel, log)
	if err != nil {
		return nil, fmt.Errorf("elasticsearch client: %w", err)
	}
	return esClient, nil
}

func breakerConfig(cb config.CircuitBreakerConfig) *circuitbreaker.Config {
	if !cb.Enabled {
		return nil
	}
	return &circuitbreaker.Config{
		FailureThreshold: cb.FailureThreshold,
		SuccessThreshold: cb.SuccessThreshold,
		CoolDown:         cb.CoolDown,
	}
}
