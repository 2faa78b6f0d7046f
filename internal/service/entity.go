package service

import (
	"context"
	"fmt"

	"github.com/jonesrussell/north-cloud/email-analytics/internal/domain"
	"github.com/jonesrussell/north-cloud/email-analytics/internal/elasticsearch"
	infralogger "github.com/jonesrussell/north-cloud/email-analytics/internal/infrastructure/logger"
	"github.com/jonesrussell/north-cloud/email-analytics/internal/query"
)

// EntityService fetches named entity histograms.
type EntityService struct {
	searcher Searcher
	builder  *query.Builder
	logger   infralogger.Logger
}

// NewEntityService creates an EntityService.
func NewEntityService(searcher Searcher, builder *query.Builder, log infralogger.Logger) *EntityService {
	return &EntityService{
		searcher: searcher,
		builder:  builder,
		logger:   log,
	}
}

// GetEntityHistogram returns the top entities of every category, tagged with
// their category and sorted by descending document count.
func (s *EntityService) GetEntityHistogram(
	ctx context.Context,
	index, docType string,
	params query.EntityHistogramParams,
) ([]domain.EntityCount, error) {
	if docType == "" {
		docType = domain.DocTypeEmails
	}

	data, err := s.searcher.Search(ctx, elasticsearch.SearchRequest{
		Index:     index,
		DocType:   docType,
		Body:      s.builder.EntityHistogram(params),
		Operation: opEntityHistogram,
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", opEntityHistogram, err)
	}

	byType := make(map[string][]domain.Bucket, len(entityOrder))
	for _, entityType := range entityOrder {
		buckets, bucketErr := bucketsAt(data, query.AggFilteredEntity, entityType)
		if bucketErr != nil {
			return nil, bucketErr
		}
		byType[entityType] = buckets
	}

	entities := tagEntities(byType)
	s.logger.Debug("Entity histogram fetched",
		infralogger.String("index", index),
		infralogger.Int("entities", len(entities)),
	)
	return entities, nil
}
