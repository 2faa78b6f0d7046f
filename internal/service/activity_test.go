//nolint:testpackage // Shares fixtures with the unexported mapper tests
package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/jonesrussell/north-cloud/email-analytics/internal/domain"
	"github.com/jonesrussell/north-cloud/email-analytics/internal/elasticsearch"
	infralogger "github.com/jonesrussell/north-cloud/email-analytics/internal/infrastructure/logger"
	"github.com/jonesrussell/north-cloud/email-analytics/internal/query"
	"github.com/jonesrussell/north-cloud/email-analytics/internal/service/mocks"
)

const actorResponse = `{"aggregations":{
	"sent_agg":{"doc_count":8,"emails_over_time":{"buckets":[
		{"key":978307200000,"key_as_string":"2001-01-01","doc_count":3},
		{"key":978912000000,"key_as_string":"2001-01-08","doc_count":0}
	]}},
	"rcvr_agg":{"doc_count":6,"emails_over_time":{"buckets":[
		{"key":978307200000,"key_as_string":"2001-01-01","doc_count":5},
		{"key":978912000000,"key_as_string":"2001-01-08","doc_count":1}
	]}}
}}`

const dailyResponse = `{"aggregations":{
	"sent_agg":{"sent_emails_over_time":{"buckets":[
		{"key_as_string":"2020-01-06","doc_count":3}
	]}},
	"rcvr_agg":{"rcvd_emails_over_time":{"buckets":[
		{"key_as_string":"2020-01-06","doc_count":5}
	]}}
}}`

func newActivityService(searcher Searcher) *ActivityService {
	return NewActivityService(searcher, query.NewBuilder(query.Options{}), infralogger.NewNop())
}

func TestGetDailyActivity_DisablesRequestCache(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	searcher := mocks.NewMockSearcher(ctrl)
	builder := query.NewBuilder(query.Options{})
	bounds := domain.DateBounds{Start: "2020-01-01", End: "2020-02-01"}

	searcher.EXPECT().Search(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, req elasticsearch.SearchRequest) ([]byte, error) {
			assert.Equal(t, "sample", req.Index)
			assert.Equal(t, domain.DocTypeEmails, req.DocType)
			require.NotNil(t, req.RequestCache)
			assert.False(t, *req.RequestCache)
			return []byte(dailyResponse), nil
		})

	svc := newActivityService(searcher)
	records, err := svc.GetDailyActivity(context.Background(), "sample", "A1", domain.DocTypeEmails, func() *query.Document {
		return builder.DailyActivityHistogram([]string{"A1"}, bounds, "")
	})

	require.NoError(t, err)
	assert.Equal(t, []domain.ActivityRecord{{
		AccountID:             "A1",
		IntervalStartDatetime: "2020-01-06",
		IntervalInboundCount:  3,
		IntervalOutboundCount: 5,
	}}, records)
}

func TestGetDailyActivity_MissingAggregation(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	searcher := mocks.NewMockSearcher(ctrl)
	searcher.EXPECT().Search(gomock.Any(), gomock.Any()).Return([]byte(actorResponse), nil)

	svc := newActivityService(searcher)
	_, err := svc.GetDailyActivity(context.Background(), "sample", "A1", domain.DocTypeEmails, func() *query.Document {
		return &query.Document{}
	})

	require.ErrorIs(t, err, ErrMissingAggregation)
}

func TestGetEmailActivity_AccountID(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		accountID string
		wantID    string
	}{
		{name: "account", accountID: "jeb@jeb.org", wantID: "jeb@jeb.org"},
		{name: "whole data set", accountID: "", wantID: "ds-1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			ctrl := gomock.NewController(t)
			searcher := mocks.NewMockSearcher(ctrl)
			searcher.EXPECT().Search(gomock.Any(), gomock.Any()).DoAndReturn(
				func(_ context.Context, req elasticsearch.SearchRequest) ([]byte, error) {
					assert.Equal(t, domain.DocTypeEmails, req.DocType)
					require.NotNil(t, req.RequestCache)
					assert.False(t, *req.RequestCache)

					doc, ok := req.Body.(*query.Document)
					require.True(t, ok)
					assert.Contains(t, doc.Aggregations, query.AggSent)
					assert.Contains(t, doc.Aggregations, query.AggReceived)
					return []byte(actorResponse), nil
				})

			svc := newActivityService(searcher)
			records, err := svc.GetEmailActivity(context.Background(), "sample", "ds-1", tt.accountID,
				domain.DateBounds{Start: "2001-01-01", End: "2001-01-14"}, "week")

			require.NoError(t, err)
			require.Len(t, records, 2)
			for _, r := range records {
				assert.Equal(t, tt.wantID, r.AccountID)
			}
			assert.Equal(t, int64(3), records[0].IntervalInboundCount)
			assert.Equal(t, int64(5), records[0].IntervalOutboundCount)
			assert.Equal(t, "2001-01-08", records[1].IntervalStartDatetime)
		})
	}
}

func TestGetEmailActivity_WrapsSearchError(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	searcher := mocks.NewMockSearcher(ctrl)
	searcher.EXPECT().Search(gomock.Any(), gomock.Any()).Return(nil, elasticsearch.ErrIndexNotFound)

	_, err := newActivityService(searcher).GetEmailActivity(context.Background(), "missing", "ds", "", domain.DateBounds{}, "")

	require.ErrorIs(t, err, elasticsearch.ErrIndexNotFound)
	assert.Contains(t, err.Error(), opEmailActivity)
}

func TestDetectActivity_ReturnsRawBuckets(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	searcher := mocks.NewMockSearcher(ctrl)
	searcher.EXPECT().Search(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, req elasticsearch.SearchRequest) ([]byte, error) {
			assert.Nil(t, req.RequestCache)
			return []byte(`{"aggregations":{"filter_agg":{"emails_over_time":{"buckets":[
				{"key":1,"key_as_string":"2001-01-01","doc_count":4}
			]}}}}`), nil
		})

	builder := query.NewBuilder(query.Options{})
	buckets, err := newActivityService(searcher).DetectActivity(context.Background(), "sample", domain.DocTypeEmails,
		func() *query.Document {
			return builder.TotalActivityHistogram(query.FilterParams{QueryTerms: "budget"}, "day")
		})

	require.NoError(t, err)
	require.Len(t, buckets, 1)
	assert.Equal(t, "2001-01-01", buckets[0].KeyAsString)
	assert.Equal(t, int64(4), buckets[0].DocCount)
}

func TestGetTotalDailyActivity_EmptyHistogram(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	searcher := mocks.NewMockSearcher(ctrl)
	searcher.EXPECT().Search(gomock.Any(), gomock.Any()).
		Return([]byte(`{"aggregations":{"filter_agg":{"emails_over_time":{"buckets":[]}}}}`), nil)

	buckets, err := newActivityService(searcher).GetTotalDailyActivity(context.Background(), "sample", domain.DocTypeEmails,
		func() *query.Document { return &query.Document{} })

	require.NoError(t, err)
	assert.Empty(t, buckets)
}

func TestGetTotalAttachmentActivity(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	searcher := mocks.NewMockSearcher(ctrl)
	searcher.EXPECT().Search(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, req elasticsearch.SearchRequest) ([]byte, error) {
			assert.Equal(t, domain.DocTypeAttachments, req.DocType)
			return []byte(`{"aggregations":{"attachments_filter_agg":{"attachments_over_time":{"buckets":[
				{"key_as_string":"2001-01-01","doc_count":2},
				{"key_as_string":"2001-01-08","doc_count":0}
			]}}}}`), nil
		})

	builder := query.NewBuilder(query.Options{})
	records, err := newActivityService(searcher).GetTotalAttachmentActivity(context.Background(), "sample", "ds-1",
		func() *query.Document { return builder.AttachmentHistogram("2001-01-01", "2001-01-14", "week") })

	require.NoError(t, err)
	assert.Equal(t, []domain.AttachmentRecord{
		{AccountID: "ds-1", IntervalStartDatetime: "2001-01-01", IntervalAttachCount: 2},
		{AccountID: "ds-1", IntervalStartDatetime: "2001-01-08", IntervalAttachCount: 0},
	}, records)
}

func TestGetEmailerAttachmentActivity(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	searcher := mocks.NewMockSearcher(ctrl)
	searcher.EXPECT().Search(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, req elasticsearch.SearchRequest) ([]byte, error) {
			assert.Equal(t, domain.DocTypeEmailAddress, req.DocType)
			doc, ok := req.Body.(*query.Document)
			require.True(t, ok)
			require.NotNil(t, doc.Query)
			assert.Contains(t, doc.Aggregations, query.AggEmailerAttach)
			return []byte(`{"aggregations":{"emailer_attach_agg":{"doc_count":3,"sent_attachments_over_time":{"buckets":[
				{"key_as_string":"2001-01-01","doc_count":3}
			]}}}}`), nil
		})

	records, err := newActivityService(searcher).GetEmailerAttachmentActivity(context.Background(), "sample",
		"jeb@jeb.org", domain.DateBounds{Start: "2001-01-01", End: "2001-01-07"}, "week")

	require.NoError(t, err)
	assert.Equal(t, []domain.AttachmentRecord{
		{AccountID: "jeb@jeb.org", IntervalStartDatetime: "2001-01-01", IntervalAttachCount: 3},
	}, records)
}

func TestGetEmailerAttachmentActivity_SearchError(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	searcher := mocks.NewMockSearcher(ctrl)
	searcher.EXPECT().Search(gomock.Any(), gomock.Any()).Return(nil, errors.New("connection refused"))

	_, err := newActivityService(searcher).GetEmailerAttachmentActivity(context.Background(), "sample",
		"jeb@jeb.org", domain.DateBounds{}, "")

	require.Error(t, err)
	assert.Contains(t, err.Error(), opEmailerAttachments)
}
