package bootstrap

import (
	"fmt"

	"github.com/jonesrussell/north-cloud/email-analytics/internal/config"
	infraconfig "github.com/jonesrussell/north-cloud/email-analytics/internal/infrastructure/config"
	infralogger "github.com/jonesrussell/north-cloud/email-analytics/internal/infrastructure/logger"
)

const defaultConfigPath = "config.yml"

// LoadConfig loads and validates configuration. An empty path falls back to
// CONFIG_PATH, then config.yml.
func LoadConfig(path string) (*config.Config, error) {
	if path == "" {
		path = infraconfig.GetConfigPath(defaultConfigPath)
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if validationErr := cfg.Validate(); validationErr != nil {
		return nil, fmt.Errorf("validate config: %w", validationErr)
	}
	return cfg, nil
}

// CreateLogger creates a logger from configuration. outputPaths overrides
// the default stdout sink.
func CreateLogger(cfg *config.Config, outputPaths ...string) (infralogger.Logger, error) {
	log, err := infralogger.New(infralogger.Config{
		Level:       cfg.Logging.Level,
		Format:      cfg.Logging.Format,
		Development: cfg.Service.Debug,
		OutputPaths: outputPaths,
	})
	if err != nil {
		return nil, fmt.Errorf("create logger: %w", err)
	}
	return log.With(infralogger.String("service", cfg.Service.Name)), nil
}
