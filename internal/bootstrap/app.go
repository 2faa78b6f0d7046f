// Package bootstrap handles application initialization and lifecycle management
// for the email analytics service.
package bootstrap

import (
	"context"
	"fmt"

	goredis "github.com/redis/go-redis/v9"

	"github.com/jonesrussell/north-cloud/email-analytics/internal/config"
	"github.com/jonesrussell/north-cloud/email-analytics/internal/elasticsearch"
	infralogger "github.com/jonesrussell/north-cloud/email-analytics/internal/infrastructure/logger"
	"github.com/jonesrussell/north-cloud/email-analytics/internal/telemetry"
)

// App holds the initialized dependencies.
type App struct {
	Config    *config.Config
	Logger    infralogger.Logger
	Telemetry *telemetry.Provider
	ES        *elasticsearch.Client
	Redis     *goredis.Client
	Services  *Services
}

// Options tune Setup.
type Options struct {
	ConfigPath string
	// Debug forces debug logging.
	Debug bool
	// LogOutput overrides the log sinks; the CLI logs to stderr.
	LogOutput []string
}

// Setup loads configuration and connects every backend.
func Setup(ctx context.Context, opts Options) (*App, error) {
	// Phase 1: Load config and create logger
	cfg, err := LoadConfig(opts.ConfigPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if opts.Debug {
		cfg.Service.Debug = true
		cfg.Logging.Level = "debug"
	}

	log, err := CreateLogger(cfg, opts.LogOutput...)
	if err != nil {
		return nil, fmt.Errorf("failed to create logger: %w", err)
	}

	tel := telemetry.NewProvider()

	// Phase 2: Setup Elasticsearch
	esClient, err := SetupElasticsearch(ctx, cfg, tel, log)
	if err != nil {
		_ = log.Sync()
		return nil, fmt.Errorf("failed to setup Elasticsearch: %w", err)
	}
	log.Info("Elasticsearch client initialized")

	// Phase 3: Optional bounds cache
	boundsCache, redisClient := SetupCache(cfg, tel, log)

	return &App{
		Config:    cfg,
		Logger:    log,
		Telemetry: tel,
		ES:        esClient,
		Redis:     redisClient,
		Services:  NewServices(cfg, esClient, boundsCache, log),
	}, nil
}

// Close releases connections and flushes the logger.
func (a *App) Close() {
	if a.Redis != nil {
		if err := a.Redis.Close(); err != nil {
			a.Logger.Error("Failed to close Redis connection", infralogger.Error(err))
		}
	}
	_ = a.Logger.Sync()
}

// Start runs the HTTP server until ctx is cancelled or a signal arrives.
func Start(ctx context.Context, opts Options) error {
	app, err := Setup(ctx, opts)
	if err != nil {
		return err
	}
	defer app.Close()

	app.Logger.Info("Starting Email Analytics Service",
		infralogger.String("name", app.Config.Service.Name),
		infralogger.String("version", app.Config.Service.Version),
		infralogger.Int("port", app.Config.Service.Port),
	)

	server := SetupHTTPServer(app.Config, app.Services, app.ES, app.Redis, app.Telemetry, app.Logger)
	if runErr := server.Run(ctx); runErr != nil {
		app.Logger.Error("Server error", infralogger.Error(runErr))
		return fmt.Errorf("server error: %w", runErr)
	}

	app.Logger.Info("Email Analytics Service stopped")
	return nil
}
