package query

import "github.com/jonesrussell/north-cloud/email-analytics/internal/domain"

// Defaults applied by NewBuilder.
const (
	DefaultInterval      = "week"
	DefaultDateFormat    = "yyyy-MM-dd"
	DefaultEntityAggSize = 10
)

// Aggregation names. Fetchers read responses by these paths.
const (
	AggMinDate              = "min_date"
	AggMaxDate              = "max_date"
	AggAvgDate              = "avg_date"
	AggPctDate              = "pct_date"
	AggFilteredEntity       = "filtered_entity_agg"
	AggAttachmentsFilter    = "attachments_filter_agg"
	AggAttachmentsOverTime  = "attachments_over_time"
	AggEmailerAttach        = "emailer_attach_agg"
	AggSentAttachmentsOver  = "sent_attachments_over_time"
	AggSent                 = "sent_agg"
	AggReceived             = "rcvr_agg"
	AggFilter               = "filter_agg"
	AggEmailsOverTime       = "emails_over_time"
	AggSentEmailsOverTime   = "sent_emails_over_time"
	AggRcvdEmailsOverTime   = "rcvd_emails_over_time"
	nestedSenderAttachments = "sender_attachments"
)

// entityFields maps each entity category to its terms field. The misc
// field name matches the index mapping as deployed.
var entityFields = map[string]string{
	domain.EntityPerson:       "entities.entity_person",
	domain.EntityOrganization: "entities.entity_organization",
	domain.EntityLocation:     "entities.entity_location",
	domain.EntityMisc:         "entities.mics",
}

// Options configure a Builder. Zero values fall back to the package defaults.
type Options struct {
	IntervalField        string
	DateFormat           string
	DefaultInterval      string
	DefaultEntityAggSize int
}

// Builder produces request bodies. It holds no state beyond its options and
// is safe for concurrent use.
type Builder struct {
	opts Options
}

// NewBuilder returns a Builder with defaults applied to opts.
func NewBuilder(opts Options) *Builder {
	if opts.IntervalField == "" {
		opts.IntervalField = IntervalLegacy
	}
	if opts.DateFormat == "" {
		opts.DateFormat = DefaultDateFormat
	}
	if opts.DefaultInterval == "" {
		opts.DefaultInterval = DefaultInterval
	}
	if opts.DefaultEntityAggSize <= 0 {
		opts.DefaultEntityAggSize = DefaultEntityAggSize
	}
	return &Builder{opts: opts}
}

// DateAggs returns the min, max, avg and percentiles aggregations over field.
func (b *Builder) DateAggs(field string) *Document {
	if field == "" {
		field = FieldDatetime
	}
	return &Document{
		Aggregations: map[string]*Aggregation{
			AggMinDate: {Min: &FieldAgg{Field: field}},
			AggMaxDate: {Max: &FieldAgg{Field: field}},
			AggAvgDate: {Avg: &FieldAgg{Field: field}},
			AggPctDate: {Percentiles: &FieldAgg{Field: field}},
		},
	}
}

// EntityHistogramParams are the inputs of EntityHistogram.
type EntityHistogramParams struct {
	Addrs      []string
	QueryTerms string
	// TopicScore is accepted for API compatibility and does not affect the query.
	TopicScore *float64
	Bounds     domain.DateBounds
	AggSize    int
}

// EntityHistogram counts the top named entities of each category among
// emails matching the addresses, terms and date range.
func (b *Builder) EntityHistogram(p EntityHistogramParams) *Document {
	size := p.AggSize
	if size <= 0 {
		size = b.opts.DefaultEntityAggSize
	}

	children := make(map[string]*Aggregation, len(entityFields))
	for name, field := range entityFields {
		children[name] = &Aggregation{Terms: &TermsAgg{Field: field, Size: size}}
	}

	return &Document{
		Aggregations: map[string]*Aggregation{
			AggFilteredEntity: {
				Filter: BuildFilter(FilterParams{
					Senders:    p.Addrs,
					Receivers:  p.Addrs,
					QueryTerms: p.QueryTerms,
					Bounds:     p.Bounds,
				}),
				Aggregations: children,
			},
		},
	}
}

// AttachmentHistogram buckets attachments between start and end.
func (b *Builder) AttachmentHistogram(start, end, interval string) *Document {
	bounds := domain.DateBounds{Start: start, End: end}
	return &Document{
		Aggregations: map[string]*Aggregation{
			AggAttachmentsFilter: {
				Filter: &Clause{Bool: &BoolClause{Must: DateFilter(bounds)}},
				Aggregations: map[string]*Aggregation{
					AggAttachmentsOverTime: b.histogram(FieldDatetime, interval, bounds),
				},
			},
		},
	}
}

// AttachmentHistogramFromEmails buckets the attachments sent by one address.
// The document type is email_address, whose sender_attachments are nested.
func (b *Builder) AttachmentHistogramFromEmails(addr string, bounds domain.DateBounds, interval string) *Document {
	return &Document{
		Query: &Clause{Bool: &BoolClause{
			Must:   []Clause{{MatchAll: &struct{}{}}},
			Filter: []Clause{{Term: map[string]string{FieldAddr: addr}}},
		}},
		Aggregations: map[string]*Aggregation{
			AggEmailerAttach: {
				Nested: &NestedAgg{Path: nestedSenderAttachments},
				Aggregations: map[string]*Aggregation{
					AggSentAttachmentsOver: b.histogram(nestedSenderAttachments+"."+FieldDatetime, interval, bounds),
				},
			},
		},
	}
}

// ActorHistogram builds two parallel histograms: emails sent by addrs and
// emails received by addrs as to, cc or bcc. Both share one histogram
// definition so their buckets line up.
func (b *Builder) ActorHistogram(addrs []string, bounds domain.DateBounds, interval string) *Document {
	return &Document{
		Aggregations: map[string]*Aggregation{
			AggSent: {
				Filter: boolFilter(DateFilter(bounds), AddrsFilter(addrs, nil, nil, nil)),
				Aggregations: map[string]*Aggregation{
					AggEmailsOverTime: b.histogram(FieldDatetime, interval, bounds),
				},
			},
			AggReceived: {
				Filter: boolFilter(DateFilter(bounds), AddrsFilter(nil, addrs, addrs, addrs)),
				Aggregations: map[string]*Aggregation{
					AggEmailsOverTime: b.histogram(FieldDatetime, interval, bounds),
				},
			},
		},
	}
}

// TotalActivityHistogram buckets every email matching p.
func (b *Builder) TotalActivityHistogram(p FilterParams, interval string) *Document {
	return &Document{
		Aggregations: map[string]*Aggregation{
			AggFilter: {
				Filter: BuildFilter(p),
				Aggregations: map[string]*Aggregation{
					AggEmailsOverTime: b.histogram(FieldDatetime, interval, p.Bounds),
				},
			},
		},
	}
}

// DailyActivityHistogram is ActorHistogram under the sent_emails_over_time
// and rcvd_emails_over_time names.
func (b *Builder) DailyActivityHistogram(addrs []string, bounds domain.DateBounds, interval string) *Document {
	doc := b.ActorHistogram(addrs, bounds, interval)
	renameChild(doc.Aggregations[AggSent], AggEmailsOverTime, AggSentEmailsOverTime)
	renameChild(doc.Aggregations[AggReceived], AggEmailsOverTime, AggRcvdEmailsOverTime)
	return doc
}

func renameChild(agg *Aggregation, from, to string) {
	child := agg.Aggregations[from]
	delete(agg.Aggregations, from)
	agg.Aggregations[to] = child
}

// histogram is the only constructor for date histograms so every branch of
// a document gets the same interval, format and extended bounds.
func (b *Builder) histogram(field, interval string, bounds domain.DateBounds) *Aggregation {
	if interval == "" {
		interval = b.opts.DefaultInterval
	}

	h := &DateHistogram{
		Field:         field,
		Interval:      interval,
		IntervalField: b.opts.IntervalField,
		Format:        b.opts.DateFormat,
		MinDocCount:   0,
	}
	if bounds.HasStart() || bounds.HasEnd() {
		h.ExtendedBounds = &ExtendedBounds{Min: bounds.Start, Max: bounds.End}
	}

	return &Aggregation{DateHistogram: h}
}
