package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jonesrussell/north-cloud/email-analytics/internal/config"
	"github.com/jonesrussell/north-cloud/email-analytics/internal/domain"
	"github.com/jonesrussell/north-cloud/email-analytics/internal/elasticsearch"
	infralogger "github.com/jonesrussell/north-cloud/email-analytics/internal/infrastructure/logger"
	"github.com/jonesrussell/north-cloud/email-analytics/internal/query"
)

// percentileMedianKey is the key Elasticsearch uses for the formatted 50th
// percentile of a date field inside percentiles.values.
const percentileMedianKey = "50.0_as_string"

const (
	dateLayout = "2006-01-02"
	// floorDate is the earliest lower bound ever returned.
	floorDate = "1970-01-01"

	opBounds = "datetime_bounds"
)

var (
	// ErrInvalidPercentile is returned when the median date cannot be parsed.
	ErrInvalidPercentile = errors.New("invalid percentile date")
	// ErrInvalidBounds is returned when a window starts after it ends.
	ErrInvalidBounds = errors.New("invalid date bounds")
)

// percentileLayouts are tried in order when parsing the median date.
var percentileLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	dateLayout,
}

// BoundsService estimates a default date window for an index.
type BoundsService struct {
	searcher Searcher
	builder  *query.Builder
	timeline config.TimelineConfig
	cache    BoundsCache
	logger   infralogger.Logger
	now      func() time.Time
}

// NewBoundsService creates a BoundsService. cache may be nil.
func NewBoundsService(
	searcher Searcher,
	builder *query.Builder,
	timeline config.TimelineConfig,
	cache BoundsCache,
	log infralogger.Logger,
) *BoundsService {
	return &BoundsService{
		searcher: searcher,
		builder:  builder,
		timeline: timeline,
		cache:    cache,
		logger:   log,
		now:      time.Now,
	}
}

// GetDateTimeBounds returns the default window for docType documents of index.
// With a median date available the window is centered on it and spans the
// configured timeline span. Otherwise it is the min and max dates clamped to
// [1970-01-01, today].
func (s *BoundsService) GetDateTimeBounds(ctx context.Context, index, docType string) (domain.DateBounds, error) {
	if docType == "" {
		docType = domain.DocTypeEmails
	}

	if s.cache != nil {
		bounds, ok, err := s.cache.Get(ctx, index, docType)
		switch {
		case err != nil:
			s.logger.Warn("Failed to read cached bounds",
				infralogger.String("index", index),
				infralogger.Error(err),
			)
		case ok:
			return bounds, nil
		}
	}

	bounds, err := s.estimate(ctx, index, docType)
	if err != nil {
		return domain.DateBounds{}, err
	}

	if s.cache != nil {
		if setErr := s.cache.Set(ctx, index, docType, bounds); setErr != nil {
			s.logger.Warn("Failed to cache bounds",
				infralogger.String("index", index),
				infralogger.Error(setErr),
			)
		}
	}

	return bounds, nil
}

// RefreshBounds drops the cached bounds of index and estimates docType again.
func (s *BoundsService) RefreshBounds(ctx context.Context, index, docType string) (domain.DateBounds, error) {
	if s.cache != nil {
		if err := s.cache.Invalidate(ctx, index); err != nil {
			return domain.DateBounds{}, err
		}
		s.logger.Info("Cached bounds invalidated", infralogger.String("index", index))
	}
	return s.GetDateTimeBounds(ctx, index, docType)
}

// ResolveBounds fills the missing sides of partial from the estimated email
// bounds of index. The merged window must not start after it ends.
func (s *BoundsService) ResolveBounds(ctx context.Context, index string, partial domain.DateBounds) (domain.DateBounds, error) {
	bounds := partial
	if bounds.IsOpen() {
		estimated, err := s.GetDateTimeBounds(ctx, index, domain.DocTypeEmails)
		if err != nil {
			return domain.DateBounds{}, err
		}
		if !bounds.HasStart() {
			bounds.Start = estimated.Start
		}
		if !bounds.HasEnd() {
			bounds.End = estimated.End
		}
	}

	if bounds.Start > bounds.End {
		return domain.DateBounds{}, fmt.Errorf("%w: start %s is after end %s", ErrInvalidBounds, bounds.Start, bounds.End)
	}
	return bounds, nil
}

func (s *BoundsService) estimate(ctx context.Context, index, docType string) (domain.DateBounds, error) {
	data, err := s.searcher.Search(ctx, elasticsearch.SearchRequest{
		Index:     index,
		DocType:   docType,
		Body:      s.builder.DateAggs(query.FieldDatetime),
		Operation: opBounds,
	})
	if err != nil {
		return domain.DateBounds{}, fmt.Errorf("failed to fetch date statistics: %w", err)
	}

	minAgg, err := requireAggregation(data, query.AggMinDate)
	if err != nil {
		return domain.DateBounds{}, err
	}
	maxAgg, err := requireAggregation(data, query.AggMaxDate)
	if err != nil {
		return domain.DateBounds{}, err
	}
	pctAgg, err := requireAggregation(data, query.AggPctDate)
	if err != nil {
		return domain.DateBounds{}, err
	}

	minDate := s.timeline.MinBound
	if v := minAgg.Get("value_as_string"); v.Exists() {
		minDate = v.String()
	}
	maxDate := s.timeline.MaxBound
	if v := maxAgg.Get("value_as_string"); v.Exists() {
		maxDate = v.String()
	}

	pct := pctAgg.Get("values." + escapePathKey(percentileMedianKey))
	if !pct.Exists() || pct.String() == "" {
		return s.clamp(minDate, maxDate), nil
	}

	median, err := parsePercentile(pct.String())
	if err != nil {
		return domain.DateBounds{}, err
	}

	s.logger.Debug("Estimated date bounds from median",
		infralogger.String("index", index),
		infralogger.String("median", pct.String()),
	)
	return s.windowAround(median), nil
}

// clamp bounds min below by 1970-01-01 and max above by today (UTC).
// Comparison is lexical on the formatted dates.
func (s *BoundsService) clamp(minDate, maxDate string) domain.DateBounds {
	today := s.now().UTC().Format(dateLayout)

	minDate = truncateDate(minDate)
	maxDate = truncateDate(maxDate)

	if minDate < floorDate {
		minDate = floorDate
	}
	if maxDate > today {
		maxDate = today
	}
	return domain.DateBounds{Start: minDate, End: maxDate}
}

// windowAround returns [median - span/2, median + span/2].
func (s *BoundsService) windowAround(median time.Time) domain.DateBounds {
	span := s.timeline.Span
	var start, end time.Time

	switch s.timeline.SpanUnit {
	case config.SpanMonths:
		start, end = median.AddDate(0, -span/2, 0), median.AddDate(0, span/2, 0)
	case config.SpanYears:
		start, end = median.AddDate(-span/2, 0, 0), median.AddDate(span/2, 0, 0)
	default:
		half := time.Duration(span) * spanUnitDuration(s.timeline.SpanUnit) / 2
		start, end = median.Add(-half), median.Add(half)
	}

	return domain.DateBounds{Start: start.Format(dateLayout), End: end.Format(dateLayout)}
}

func spanUnitDuration(unit string) time.Duration {
	switch unit {
	case config.SpanSeconds:
		return time.Second
	case config.SpanMinutes:
		return time.Minute
	case config.SpanHours:
		return time.Hour
	case config.SpanWeeks:
		return 7 * 24 * time.Hour
	default:
		return 24 * time.Hour
	}
}

func parsePercentile(value string) (time.Time, error) {
	for _, layout := range percentileLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidPercentile, value)
}

// truncateDate reduces a formatted timestamp to its YYYY-MM-DD prefix.
// Values that do not start with a date are returned unchanged.
func truncateDate(value string) string {
	if len(value) < len(dateLayout) {
		return value
	}
	if _, err := time.Parse(dateLayout, value[:len(dateLayout)]); err != nil {
		return value
	}
	return value[:len(dateLayout)]
}
