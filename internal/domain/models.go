// Package domain holds the request-scoped types shared by the query builders,
// the fetchers and the HTTP layer.
package domain

// Document types stored per data set.
const (
	DocTypeEmails       = "emails"
	DocTypeAttachments  = "attachments"
	DocTypeEmailAddress = "email_address"
)

// Entity categories returned by the entity histogram.
const (
	EntityPerson       = "person"
	EntityOrganization = "organization"
	EntityLocation     = "location"
	EntityMisc         = "misc"
)

// DateBounds is a date window. An empty side is open.
type DateBounds struct {
	Start string `json:"start,omitempty"`
	End   string `json:"end,omitempty"`
}

// HasStart reports whether the lower bound is concrete.
func (b DateBounds) HasStart() bool { return b.Start != "" }

// HasEnd reports whether the upper bound is concrete.
func (b DateBounds) HasEnd() bool { return b.End != "" }

// IsOpen reports whether either side is missing.
func (b DateBounds) IsOpen() bool { return !b.HasStart() || !b.HasEnd() }

// Bucket is one aggregation bucket as returned by Elasticsearch.
type Bucket struct {
	Key         any    `json:"key"`
	KeyAsString string `json:"key_as_string,omitempty"`
	DocCount    int64  `json:"doc_count"`
}

// ActivityRecord is one interval of sent/received email counts for an account.
type ActivityRecord struct {
	AccountID             string `json:"account_id"`
	IntervalStartDatetime string `json:"interval_start_datetime"`
	IntervalInboundCount  int64  `json:"interval_inbound_count"`
	IntervalOutboundCount int64  `json:"interval_outbound_count"`
}

// AttachmentRecord is one interval of attachment counts.
type AttachmentRecord struct {
	AccountID             string `json:"account_id"`
	IntervalStartDatetime string `json:"interval_start_datetime"`
	IntervalAttachCount   int64  `json:"interval_attach_count"`
}

// EmailActivity is the envelope the activity chart consumes.
type EmailActivity struct {
	DataSetID  string           `json:"data_set_id"`
	AccountID  string           `json:"account_id"`
	Activities []ActivityRecord `json:"activities"`
}

// AttachmentActivity is the envelope for attachment histograms.
type AttachmentActivity struct {
	DataSetID  string             `json:"data_set_id"`
	AccountID  string             `json:"account_id"`
	Activities []AttachmentRecord `json:"activities"`
}

// EntityCount is a named entity bucket tagged with its category.
type EntityCount struct {
	Key      string `json:"key"`
	DocCount int64  `json:"doc_count"`
	Type     string `json:"type"`
}
