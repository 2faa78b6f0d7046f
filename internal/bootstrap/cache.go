package bootstrap

import (
	goredis "github.com/redis/go-redis/v9"

	"github.com/jonesrussell/north-cloud/email-analytics/internal/cache"
	"github.com/jonesrussell/north-cloud/email-analytics/internal/config"
	infralogger "github.com/jonesrussell/north-cloud/email-analytics/internal/infrastructure/logger"
	"github.com/jonesrussell/north-cloud/email-analytics/internal/telemetry"
)

// SetupCache connects the bounds cache. It returns nils when caching is
// disabled or Redis is unreachable; bounds are then computed per request.
func SetupCache(
	cfg *config.Config,
	tel *telemetry.Provider,
	log infralogger.Logger,
) (*cache.BoundsCache, *goredis.Client) {
	if !cfg.Cache.Enabled {
		return nil, nil
	}

	client, err := cache.NewClient(cache.Config{
		Address:  cfg.Cache.Address,
		Password: cfg.Cache.Password,
		DB:       cfg.Cache.DB,
	})
	if err != nil {
		log.Warn("Bounds cache unavailable, continuing without it",
			infralogger.String("address", cfg.Cache.Address),
			infralogger.Error(err),
		)
		return nil, nil
	}

	log.Info("Bounds cache connected",
		infralogger.String("address", cfg.Cache.Address),
		infralogger.Duration("ttl", cfg.Cache.BoundsTTL),
	)
	return cache.NewBoundsCache(client, cfg.Cache.BoundsTTL, tel, log), client
}
