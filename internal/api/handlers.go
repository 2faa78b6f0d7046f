package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/jonesrussell/north-cloud/email-analytics/internal/domain"
	"github.com/jonesrussell/north-cloud/email-analytics/internal/elasticsearch"
	"github.com/jonesrussell/north-cloud/email-analytics/internal/infrastructure/circuitbreaker"
	infralogger "github.com/jonesrussell/north-cloud/email-analytics/internal/infrastructure/logger"
	"github.com/jonesrussell/north-cloud/email-analytics/internal/query"
	"github.com/jonesrussell/north-cloud/email-analytics/internal/service"
)

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error     string    `json:"error"`
	Code      string    `json:"code"`
	Timestamp time.Time `json:"timestamp"`
}

// BucketsResponse wraps raw histogram buckets.
type BucketsResponse struct {
	DataSetID string          `json:"data_set_id"`
	Buckets   []domain.Bucket `json:"buckets"`
}

// EntitiesResponse wraps the entity histogram.
type EntitiesResponse struct {
	DataSetID string               `json:"data_set_id"`
	Entities  []domain.EntityCount `json:"entities"`
}

// Handler holds HTTP request handlers
type Handler struct {
	bounds   *service.BoundsService
	activity *service.ActivityService
	entities *service.EntityService
	builder  *query.Builder
	logger   infralogger.Logger
}

// NewHandler creates a new handler instance
func NewHandler(
	bounds *service.BoundsService,
	activity *service.ActivityService,
	entities *service.EntityService,
	builder *query.Builder,
	log infralogger.Logger,
) *Handler {
	return &Handler{
		bounds:   bounds,
		activity: activity,
		entities: entities,
		builder:  builder,
		logger:   log,
	}
}

// Bounds returns the default date window of a data set.
func (h *Handler) Bounds(c *gin.Context) {
	docType, err := parseDocType(c)
	if err != nil {
		h.respondError(c, err)
		return
	}

	bounds, err := h.bounds.GetDateTimeBounds(c.Request.Context(), c.Param("index"), docType)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, bounds)
}

// EmailActivity returns the sent/received histogram of an account, or of the
// whole data set when no account is given.
func (h *Handler) EmailActivity(c *gin.Context) {
	index := c.Param("index")
	bounds, interval, err := h.window(c, index)
	if err != nil {
		h.respondError(c, err)
		return
	}

	accountID := c.Query("account")
	records, err := h.activity.GetEmailActivity(c.Request.Context(), index, index, accountID, bounds, interval)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, domain.EmailActivity{
		DataSetID:  index,
		AccountID:  accountID,
		Activities: records,
	})
}

// DailyActivity is EmailActivity with per-direction histogram names, as
// used by the daily activity chart.
func (h *Handler) DailyActivity(c *gin.Context) {
	index := c.Param("index")
	docType, err := parseDocType(c)
	if err != nil {
		h.respondError(c, err)
		return
	}
	bounds, interval, err := h.window(c, index)
	if err != nil {
		h.respondError(c, err)
		return
	}

	accountID := c.Query("account")
	id := index
	var addrs []string
	if accountID != "" {
		id = accountID
		addrs = []string{accountID}
	}

	records, err := h.activity.GetDailyActivity(c.Request.Context(), index, id, docType,
		func() *query.Document {
			return h.builder.DailyActivityHistogram(addrs, bounds, interval)
		})
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, domain.EmailActivity{
		DataSetID:  index,
		AccountID:  accountID,
		Activities: records,
	})
}

// TotalActivity returns the email histogram of messages matching the address
// and term filters within the default or given window.
func (h *Handler) TotalActivity(c *gin.Context) {
	index := c.Param("index")
	bounds, interval, err := h.window(c, index)
	if err != nil {
		h.respondError(c, err)
		return
	}

	params := h.filterParams(c, bounds)
	buckets, err := h.activity.GetTotalDailyActivity(c.Request.Context(), index, domain.DocTypeEmails,
		func() *query.Document {
			return h.builder.TotalActivityHistogram(params, interval)
		})
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, BucketsResponse{DataSetID: index, Buckets: buckets})
}

// DetectActivity is TotalActivity without default bounds: unless start or end
// is given it covers every matching email in the index.
func (h *Handler) DetectActivity(c *gin.Context) {
	index := c.Param("index")
	bounds, err := parseBounds(c)
	if err != nil {
		h.respondError(c, err)
		return
	}
	interval, err := parseInterval(c)
	if err != nil {
		h.respondError(c, err)
		return
	}

	params := h.filterParams(c, bounds)
	buckets, err := h.activity.DetectActivity(c.Request.Context(), index, domain.DocTypeEmails,
		func() *query.Document {
			return h.builder.TotalActivityHistogram(params, interval)
		})
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, BucketsResponse{DataSetID: index, Buckets: buckets})
}

// Attachments returns the attachment histogram of the data set.
func (h *Handler) Attachments(c *gin.Context) {
	index := c.Param("index")
	bounds, interval, err := h.window(c, index)
	if err != nil {
		h.respondError(c, err)
		return
	}

	records, err := h.activity.GetTotalAttachmentActivity(c.Request.Context(), index, index,
		func() *query.Document {
			return h.builder.AttachmentHistogram(bounds.Start, bounds.End, interval)
		})
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, domain.AttachmentActivity{
		DataSetID:  index,
		AccountID:  index,
		Activities: records,
	})
}

// SenderAttachments returns the histogram of attachments sent by one address.
func (h *Handler) SenderAttachments(c *gin.Context) {
	index := c.Param("index")
	email := c.Param("email")
	bounds, interval, err := h.window(c, index)
	if err != nil {
		h.respondError(c, err)
		return
	}

	records, err := h.activity.GetEmailerAttachmentActivity(c.Request.Context(), index, email, bounds, interval)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, domain.AttachmentActivity{
		DataSetID:  index,
		AccountID:  email,
		Activities: records,
	})
}

// Entities returns the top named entities of matching emails.
func (h *Handler) Entities(c *gin.Context) {
	index := c.Param("index")
	bounds, err := h.resolveBounds(c, index)
	if err != nil {
		h.respondError(c, err)
		return
	}
	size, err := parseSize(c)
	if err != nil {
		h.respondError(c, err)
		return
	}

	entities, err := h.entities.GetEntityHistogram(c.Request.Context(), index, domain.DocTypeEmails,
		query.EntityHistogramParams{
			Addrs:      parseAddrs(c),
			QueryTerms: c.Query("q"),
			Bounds:     bounds,
			AggSize:    size,
		})
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, EntitiesResponse{DataSetID: index, Entities: entities})
}

func (h *Handler) filterParams(c *gin.Context, bounds domain.DateBounds) query.FilterParams {
	addrs := parseAddrs(c)
	return query.FilterParams{
		Senders:    addrs,
		Receivers:  addrs,
		QueryTerms: c.Query("q"),
		Bounds:     bounds,
	}
}

// window parses the date window and interval of a histogram request.
func (h *Handler) window(c *gin.Context, index string) (domain.DateBounds, string, error) {
	interval, err := parseInterval(c)
	if err != nil {
		return domain.DateBounds{}, "", err
	}
	bounds, err := h.resolveBounds(c, index)
	if err != nil {
		return domain.DateBounds{}, "", err
	}
	return bounds, interval, nil
}

// resolveBounds fills missing start or end from the estimated bounds.
func (h *Handler) resolveBounds(c *gin.Context, index string) (domain.DateBounds, error) {
	bounds, err := parseBounds(c)
	if err != nil {
		return domain.DateBounds{}, err
	}
	return h.bounds.ResolveBounds(c.Request.Context(), index, bounds)
}

// respondError maps err onto a status code and writes the error body.
func (h *Handler) respondError(c *gin.Context, err error) {
	status, code := classifyError(err)

	_ = c.Error(err)
	log := infralogger.FromContext(c.Request.Context(), h.logger)
	if status >= http.StatusInternalServerError {
		log.Error("Request failed",
			infralogger.String("path", c.FullPath()),
			infralogger.String("index", c.Param("index")),
			infralogger.Error(err),
		)
	}

	c.JSON(status, ErrorResponse{
		Error:     err.Error(),
		Code:      code,
		Timestamp: time.Now(),
	})
}

func classifyError(err error) (status int, code string) {
	switch {
	case errors.Is(err, ErrInvalidParam), errors.Is(err, service.ErrInvalidBounds):
		return http.StatusBadRequest, "INVALID_REQUEST"
	case errors.Is(err, elasticsearch.ErrIndexNotFound):
		return http.StatusNotFound, "INDEX_NOT_FOUND"
	case errors.Is(err, circuitbreaker.ErrCircuitOpen):
		return http.StatusServiceUnavailable, "SEARCH_UNAVAILABLE"
	case errors.Is(err, elasticsearch.ErrSearchFailed):
		return http.StatusBadGateway, "SEARCH_FAILED"
	case errors.Is(err, service.ErrMissingAggregation), errors.Is(err, service.ErrInvalidPercentile):
		return http.StatusInternalServerError, "UNEXPECTED_RESPONSE"
	default:
		return http.StatusInternalServerError, "INTERNAL_ERROR"
	}
}
