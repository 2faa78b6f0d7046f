package service_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/jonesrussell/north-cloud/email-analytics/internal/domain"
	"github.com/jonesrussell/north-cloud/email-analytics/internal/elasticsearch"
	infralogger "github.com/jonesrussell/north-cloud/email-analytics/internal/infrastructure/logger"
	"github.com/jonesrussell/north-cloud/email-analytics/internal/query"
	"github.com/jonesrussell/north-cloud/email-analytics/internal/service"
	"github.com/jonesrussell/north-cloud/email-analytics/internal/service/mocks"
)

const entityResponse = `{"aggregations":{"filtered_entity_agg":{"doc_count":40,
	"person":{"buckets":[{"key":"jeb bush","doc_count":21},{"key":"frank","doc_count":2}]},
	"organization":{"buckets":[{"key":"fdle","doc_count":9}]},
	"location":{"buckets":[{"key":"tallahassee","doc_count":9},{"key":"miami","doc_count":4}]},
	"misc":{"buckets":[]}
}}}`

func TestEntityService_GetEntityHistogram(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	searcher := mocks.NewMockSearcher(ctrl)
	searcher.EXPECT().Search(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, req elasticsearch.SearchRequest) ([]byte, error) {
			assert.Equal(t, domain.DocTypeEmails, req.DocType)
			doc, ok := req.Body.(*query.Document)
			require.True(t, ok)
			require.Contains(t, doc.Aggregations, query.AggFilteredEntity)
			assert.Len(t, doc.Aggregations[query.AggFilteredEntity].Aggregations, 4)
			return []byte(entityResponse), nil
		})

	svc := service.NewEntityService(searcher, query.NewBuilder(query.Options{}), infralogger.NewNop())
	entities, err := svc.GetEntityHistogram(context.Background(), "sample", "", query.EntityHistogramParams{
		Addrs:  []string{"jeb@jeb.org"},
		Bounds: domain.DateBounds{Start: "2001-01-01", End: "2001-12-31"},
	})

	require.NoError(t, err)
	assert.Equal(t, []domain.EntityCount{
		{Key: "jeb bush", DocCount: 21, Type: domain.EntityPerson},
		{Key: "tallahassee", DocCount: 9, Type: domain.EntityLocation},
		{Key: "fdle", DocCount: 9, Type: domain.EntityOrganization},
		{Key: "miami", DocCount: 4, Type: domain.EntityLocation},
		{Key: "frank", DocCount: 2, Type: domain.EntityPerson},
	}, entities)
}

func TestEntityService_MissingCategory(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	searcher := mocks.NewMockSearcher(ctrl)
	searcher.EXPECT().Search(gomock.Any(), gomock.Any()).
		Return([]byte(`{"aggregations":{"filtered_entity_agg":{"person":{"buckets":[]}}}}`), nil)

	svc := service.NewEntityService(searcher, query.NewBuilder(query.Options{}), infralogger.NewNop())
	_, err := svc.GetEntityHistogram(context.Background(), "sample", domain.DocTypeEmails, query.EntityHistogramParams{})

	require.ErrorIs(t, err, service.ErrMissingAggregation)
}

func TestEntityService_NoEntities(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	searcher := mocks.NewMockSearcher(ctrl)
	searcher.EXPECT().Search(gomock.Any(), gomock.Any()).Return([]byte(`{"aggregations":{"filtered_entity_agg":{
		"person":{"buckets":[]},"organization":{"buckets":[]},"location":{"buckets":[]},"misc":{"buckets":[]}}}}`), nil)

	svc := service.NewEntityService(searcher, query.NewBuilder(query.Options{}), infralogger.NewNop())
	entities, err := svc.GetEntityHistogram(context.Background(), "sample", "", query.EntityHistogramParams{})

	require.NoError(t, err)
	assert.NotNil(t, entities)
	assert.Empty(t, entities)
}
