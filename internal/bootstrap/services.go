package bootstrap

import (
	"github.com/jonesrussell/north-cloud/email-analytics/internal/cache"
	"github.com/jonesrussell/north-cloud/email-analytics/internal/config"
	infralogger "github.com/jonesrussell/north-cloud/email-analytics/internal/infrastructure/logger"
	"github.com/jonesrussell/north-cloud/email-analytics/internal/query"
	"github.com/jonesrussell/north-cloud/email-analytics/internal/service"
)

// Services groups the fetchers shared by the HTTP server and the CLI.
type Services struct {
	Builder  *query.Builder
	Bounds   *service.BoundsService
	Activity *service.ActivityService
	Entities *service.EntityService
}

// NewServices wires the fetchers onto searcher. boundsCache may be nil.
func NewServices(
	cfg *config.Config,
	searcher service.Searcher,
	boundsCache *cache.BoundsCache,
	log infralogger.Logger,
) *Services {
	builder := query.NewBuilder(cfg.QueryOptions())

	// A nil *BoundsCache must not become a non-nil interface.
	var bc service.BoundsCache
	if boundsCache != nil {
		bc = boundsCache
	}

	return &Services{
		Builder:  builder,
		Bounds:   service.NewBoundsService(searcher, builder, cfg.Timeline, bc, log),
		Activity: service.NewActivityService(searcher, builder, log),
		Entities: service.NewEntityService(searcher, builder, log),
	}
}
