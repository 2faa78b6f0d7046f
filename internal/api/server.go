package api

import (
	"github.com/gin-gonic/gin"

	"github.com/jonesrussell/north-cloud/email-analytics/internal/config"
	infragin "github.com/jonesrussell/north-cloud/email-analytics/internal/infrastructure/gin"
	infralogger "github.com/jonesrussell/north-cloud/email-analytics/internal/infrastructure/logger"
	"github.com/jonesrussell/north-cloud/email-analytics/internal/telemetry"
)

// NewServer creates the HTTP server with health, metrics and API routes.
func NewServer(
	handler *Handler,
	cfg *config.Config,
	tel *telemetry.Provider,
	checks map[string]infragin.HealthChecker,
	log infralogger.Logger,
) *infragin.Server {
	serverCfg := infragin.Config{
		Service: cfg.Service.Name,
		Version: cfg.Service.Version,
		Port:    cfg.Service.Port,
		Debug:   cfg.Service.Debug,
		CORS:    infragin.CORSConfig{AllowedOrigins: cfg.Service.CORSOrigins},
	}

	var recorder infragin.RequestRecorder
	if tel != nil {
		recorder = tel
	}

	health := &infragin.Health{Service: serverCfg.Service, Version: serverCfg.Version, Checks: checks}

	return infragin.NewServer(serverCfg, log, recorder, func(router *gin.Engine) {
		health.Register(router)
		if tel != nil {
			router.GET("/metrics", gin.WrapH(tel.Handler()))
		}
		SetupRoutes(router, handler)
	})
}
