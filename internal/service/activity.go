package service

import (
	"context"
	"fmt"

	"github.com/jonesrussell/north-cloud/email-analytics/internal/domain"
	"github.com/jonesrussell/north-cloud/email-analytics/internal/elasticsearch"
	infralogger "github.com/jonesrussell/north-cloud/email-analytics/internal/infrastructure/logger"
	"github.com/jonesrussell/north-cloud/email-analytics/internal/query"
)

// Operation labels for metrics and logs.
const (
	opDailyActivity      = "daily_activity"
	opEmailActivity      = "email_activity"
	opDetectActivity     = "detect_activity"
	opTotalDailyActivity = "total_daily_activity"
	opTotalAttachments   = "total_attachment_activity"
	opEmailerAttachments = "emailer_attachment_activity"
	opEntityHistogram    = "entity_histogram"
)

// QueryFunc builds the request body for a fetcher. Callers close over the
// builder arguments, which lets one fetcher serve several query shapes.
type QueryFunc func() *query.Document

// ActivityService fetches activity and attachment histograms.
type ActivityService struct {
	searcher Searcher
	builder  *query.Builder
	logger   infralogger.Logger
}

// NewActivityService creates an ActivityService.
func NewActivityService(searcher Searcher, builder *query.Builder, log infralogger.Logger) *ActivityService {
	return &ActivityService{
		searcher: searcher,
		builder:  builder,
		logger:   log,
	}
}

// GetDailyActivity runs queryFn, which must produce sent_agg.sent_emails_over_time
// and rcvr_agg.rcvd_emails_over_time histograms, and maps the paired buckets.
func (s *ActivityService) GetDailyActivity(
	ctx context.Context,
	index, accountID, docType string,
	queryFn QueryFunc,
) ([]domain.ActivityRecord, error) {
	data, err := s.search(ctx, index, docType, queryFn(), opDailyActivity, true)
	if err != nil {
		return nil, err
	}

	sent, err := bucketsAt(data, query.AggSent, query.AggSentEmailsOverTime)
	if err != nil {
		return nil, err
	}
	rcvd, err := bucketsAt(data, query.AggReceived, query.AggRcvdEmailsOverTime)
	if err != nil {
		return nil, err
	}

	return mapActivityBuckets(accountID, sent, rcvd, s.logger), nil
}

// GetEmailActivity returns the sent and received histogram of accountID. With
// no account every email of the data set is counted and records carry the
// data set id.
func (s *ActivityService) GetEmailActivity(
	ctx context.Context,
	index, dataSetID, accountID string,
	bounds domain.DateBounds,
	interval string,
) ([]domain.ActivityRecord, error) {
	var addrs []string
	id := dataSetID
	if accountID != "" {
		addrs = []string{accountID}
		id = accountID
	}

	body := s.builder.ActorHistogram(addrs, bounds, interval)
	data, err := s.search(ctx, index, domain.DocTypeEmails, body, opEmailActivity, true)
	if err != nil {
		return nil, err
	}

	sent, err := bucketsAt(data, query.AggSent, query.AggEmailsOverTime)
	if err != nil {
		return nil, err
	}
	rcvd, err := bucketsAt(data, query.AggReceived, query.AggEmailsOverTime)
	if err != nil {
		return nil, err
	}

	return mapActivityBuckets(id, sent, rcvd, s.logger), nil
}

// DetectActivity returns the raw filter_agg.emails_over_time buckets of queryFn.
func (s *ActivityService) DetectActivity(ctx context.Context, index, docType string, queryFn QueryFunc) ([]domain.Bucket, error) {
	return s.filterAggBuckets(ctx, index, docType, queryFn, opDetectActivity)
}

// GetTotalDailyActivity returns the raw filter_agg.emails_over_time buckets of queryFn.
func (s *ActivityService) GetTotalDailyActivity(ctx context.Context, index, docType string, queryFn QueryFunc) ([]domain.Bucket, error) {
	return s.filterAggBuckets(ctx, index, docType, queryFn, opTotalDailyActivity)
}

func (s *ActivityService) filterAggBuckets(
	ctx context.Context,
	index, docType string,
	queryFn QueryFunc,
	operation string,
) ([]domain.Bucket, error) {
	data, err := s.search(ctx, index, docType, queryFn(), operation, false)
	if err != nil {
		return nil, err
	}
	return bucketsAt(data, query.AggFilter, query.AggEmailsOverTime)
}

// GetTotalAttachmentActivity runs queryFn against attachments, which must
// produce attachments_filter_agg.attachments_over_time.
func (s *ActivityService) GetTotalAttachmentActivity(
	ctx context.Context,
	index, accountID string,
	queryFn QueryFunc,
) ([]domain.AttachmentRecord, error) {
	data, err := s.search(ctx, index, domain.DocTypeAttachments, queryFn(), opTotalAttachments, false)
	if err != nil {
		return nil, err
	}

	buckets, err := bucketsAt(data, query.AggAttachmentsFilter, query.AggAttachmentsOverTime)
	if err != nil {
		return nil, err
	}
	return mapAttachmentBuckets(accountID, buckets), nil
}

// GetEmailerAttachmentActivity returns the histogram of attachments sent by addr.
func (s *ActivityService) GetEmailerAttachmentActivity(
	ctx context.Context,
	index, addr string,
	bounds domain.DateBounds,
	interval string,
) ([]domain.AttachmentRecord, error) {
	body := s.builder.AttachmentHistogramFromEmails(addr, bounds, interval)
	data, err := s.search(ctx, index, domain.DocTypeEmailAddress, body, opEmailerAttachments, false)
	if err != nil {
		return nil, err
	}

	buckets, err := bucketsAt(data, query.AggEmailerAttach, query.AggSentAttachmentsOver)
	if err != nil {
		return nil, err
	}
	return mapAttachmentBuckets(addr, buckets), nil
}

// search runs one request. disableCache turns off the shard request cache so
// activity reflects recently ingested emails.
func (s *ActivityService) search(
	ctx context.Context,
	index, docType string,
	body *query.Document,
	operation string,
	disableCache bool,
) ([]byte, error) {
	req := elasticsearch.SearchRequest{
		Index:     index,
		DocType:   docType,
		Body:      body,
		Operation: operation,
	}
	if disableCache {
		requestCache := false
		req.RequestCache = &requestCache
	}

	data, err := s.searcher.Search(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", operation, err)
	}
	return data, nil
}
