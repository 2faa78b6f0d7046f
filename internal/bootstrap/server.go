package bootstrap

import (
	"context"

	goredis "github.com/redis/go-redis/v9"

	"github.com/jonesrussell/north-cloud/email-analytics/internal/api"
	"github.com/jonesrussell/north-cloud/email-analytics/internal/config"
	"github.com/jonesrussell/north-cloud/email-analytics/internal/elasticsearch"
	infragin "github.com/jonesrussell/north-cloud/email-analytics/internal/infrastructure/gin"
	infralogger "github.com/jonesrussell/north-cloud/email-analytics/internal/infrastructure/logger"
	"github.com/jonesrussell/north-cloud/email-analytics/internal/telemetry"
)

// SetupHTTPServer creates and configures the HTTP server.
func SetupHTTPServer(
	cfg *config.Config,
	services *Services,
	esClient *elasticsearch.Client,
	redisClient *goredis.Client,
	tel *telemetry.Provider,
	log infralogger.Logger,
) *infragin.Server {
	handler := api.NewHandler(services.Bounds, services.Activity, services.Entities, services.Builder, log)

	checks := map[string]infragin.HealthChecker{
		"elasticsearch": infragin.ElasticsearchHealthChecker(esClient.Ping),
	}
	if esClient.HasCircuitBreaker() {
		checks["search_circuit"] = infragin.CircuitHealthChecker(esClient.CheckCircuit)
	}
	if redisClient != nil {
		checks["redis"] = infragin.RedisHealthChecker(func(ctx context.Context) error {
			return redisClient.Ping(ctx).Err()
		})
	}

	return api.NewServer(handler, cfg, tel, checks, log)
}
