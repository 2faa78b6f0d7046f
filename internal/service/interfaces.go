package service

//go:generate mockgen -source=interfaces.go -destination=mocks/mock_interfaces.go -package=mocks

import (
	"context"

	"github.com/jonesrussell/north-cloud/email-analytics/internal/domain"
	"github.com/jonesrussell/north-cloud/email-analytics/internal/elasticsearch"
)

// Searcher runs a single search round trip and returns the raw response.
type Searcher interface {
	Search(ctx context.Context, req elasticsearch.SearchRequest) ([]byte, error)
}

// BoundsCache stores estimated date bounds per index and document type.
type BoundsCache interface {
	Get(ctx context.Context, index, docType string) (domain.DateBounds, bool, error)
	Set(ctx context.Context, index, docType string, bounds domain.DateBounds) error
	Invalidate(ctx context.Context, index string) error
}
