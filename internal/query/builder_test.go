package query_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"

	"github.com/jonesrussell/north-cloud/email-analytics/internal/domain"
	"github.com/jonesrussell/north-cloud/email-analytics/internal/query"
)

func marshal(t *testing.T, doc *query.Document) string {
	t.Helper()
	data, err := json.Marshal(doc)
	require.NoError(t, err)
	return string(data)
}

func TestEntityHistogram_FourTermsAggregations(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		aggSize  int
		wantSize int64
	}{
		{name: "default size", aggSize: 0, wantSize: 10},
		{name: "explicit size", aggSize: 25, wantSize: 25},
		{name: "negative falls back", aggSize: -3, wantSize: 10},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			b := query.NewBuilder(query.Options{})
			body := marshal(t, b.EntityHistogram(query.EntityHistogramParams{
				Addrs:   []string{"jeb@jeb.org"},
				Bounds:  domain.DateBounds{Start: "2000-01-01", End: "2002-01-01"},
				AggSize: tt.aggSize,
			}))

			children := gjson.Get(body, "aggs.filtered_entity_agg.aggs").Map()
			require.Len(t, children, 4)

			want := map[string]string{
				"person":       "entities.entity_person",
				"organization": "entities.entity_organization",
				"location":     "entities.entity_location",
				"misc":         "entities.mics",
			}
			for name, field := range want {
				agg, ok := children[name]
				require.True(t, ok, "missing %s aggregation", name)
				assert.Equal(t, field, agg.Get("terms.field").String())
				assert.Equal(t, tt.wantSize, agg.Get("terms.size").Int())
			}
			assert.Equal(t, int64(0), gjson.Get(body, "size").Int())
		})
	}
}

func TestEntityHistogram_FilterCombinesAddressesDatesAndTerms(t *testing.T) {
	t.Parallel()

	b := query.NewBuilder(query.Options{})
	body := marshal(t, b.EntityHistogram(query.EntityHistogramParams{
		Addrs:      []string{"a@x.org"},
		QueryTerms: "budget",
		Bounds:     domain.DateBounds{Start: "2000-01-01", End: "2002-01-01"},
	}))

	filter := gjson.Get(body, "aggs.filtered_entity_agg.filter.bool")
	assert.Equal(t, int64(1), filter.Get("minimum_should_match").Int())
	assert.Len(t, filter.Get("should").Array(), 4)
	assert.Equal(t, "a@x.org", filter.Get("should.0.terms.senders.0").String())
	assert.Equal(t, "a@x.org", filter.Get("should.3.terms.bccs.0").String())
	assert.Equal(t, "2000-01-01", filter.Get("must.0.range.datetime.gte").String())
	assert.Equal(t, "budget", filter.Get("must.1.query_string.query").String())
}

func TestEntityHistogram_EmptyAddressesMatchEverything(t *testing.T) {
	t.Parallel()

	b := query.NewBuilder(query.Options{})
	body := marshal(t, b.EntityHistogram(query.EntityHistogramParams{}))

	filter := gjson.Get(body, "aggs.filtered_entity_agg.filter.bool")
	assert.True(t, filter.Exists())
	assert.False(t, filter.Get("should").Exists())
	assert.False(t, filter.Get("minimum_should_match").Exists())
}

func TestAttachmentHistogram_ExtendedBoundsAndInterval(t *testing.T) {
	t.Parallel()

	b := query.NewBuilder(query.Options{})
	body := marshal(t, b.AttachmentHistogram("2020-01-01", "2020-03-01", "week"))

	hist := gjson.Get(body, "aggs.attachments_filter_agg.aggs.attachments_over_time.date_histogram")
	assert.Equal(t, "2020-01-01", hist.Get("extended_bounds.min").String())
	assert.Equal(t, "2020-03-01", hist.Get("extended_bounds.max").String())
	assert.Equal(t, "week", hist.Get("interval").String())
	assert.Equal(t, "datetime", hist.Get("field").String())
	assert.Equal(t, "yyyy-MM-dd", hist.Get("format").String())
	assert.True(t, hist.Get("min_doc_count").Exists())
	assert.Equal(t, int64(0), hist.Get("min_doc_count").Int())

	rng := gjson.Get(body, "aggs.attachments_filter_agg.filter.bool.must.0.range.datetime")
	assert.Equal(t, "2020-01-01", rng.Get("gte").String())
	assert.Equal(t, "2020-03-01", rng.Get("lte").String())
}

func TestAttachmentHistogram_DefaultInterval(t *testing.T) {
	t.Parallel()

	b := query.NewBuilder(query.Options{})
	body := marshal(t, b.AttachmentHistogram("2020-01-01", "2020-03-01", ""))

	assert.Equal(t, "week",
		gjson.Get(body, "aggs.attachments_filter_agg.aggs.attachments_over_time.date_histogram.interval").String())
}

func TestHistogram_IntervalField(t *testing.T) {
	t.Parallel()

	b := query.NewBuilder(query.Options{IntervalField: query.IntervalCalendar})
	body := marshal(t, b.AttachmentHistogram("2020-01-01", "2020-03-01", "month"))

	hist := gjson.Get(body, "aggs.attachments_filter_agg.aggs.attachments_over_time.date_histogram")
	assert.Equal(t, "month", hist.Get("calendar_interval").String())
	assert.False(t, hist.Get("interval").Exists())
}

func TestAttachmentHistogramFromEmails(t *testing.T) {
	t.Parallel()

	b := query.NewBuilder(query.Options{})
	body := marshal(t, b.AttachmentHistogramFromEmails("jeb@jeb.org",
		domain.DateBounds{Start: "2000-01-01", End: "2002-01-01"}, "month"))

	assert.True(t, gjson.Get(body, "query.bool.must.0.match_all").Exists())
	assert.Equal(t, "jeb@jeb.org", gjson.Get(body, "query.bool.filter.0.term.addr").String())

	agg := gjson.Get(body, "aggs.emailer_attach_agg")
	assert.Equal(t, "sender_attachments", agg.Get("nested.path").String())

	hist := agg.Get("aggs.sent_attachments_over_time.date_histogram")
	assert.Equal(t, "sender_attachments.datetime", hist.Get("field").String())
	assert.Equal(t, "month", hist.Get("interval").String())
	assert.Equal(t, "2000-01-01", hist.Get("extended_bounds.min").String())
	assert.Equal(t, "2002-01-01", hist.Get("extended_bounds.max").String())
}

func TestActorHistogram_BranchesShareExtendedBounds(t *testing.T) {
	t.Parallel()

	b := query.NewBuilder(query.Options{})
	doc := b.ActorHistogram([]string{"jeb@jeb.org"}, domain.DateBounds{Start: "2000-01-01", End: "2002-01-01"}, "")

	sent, err := json.Marshal(doc.Aggregations[query.AggSent].Aggregations[query.AggEmailsOverTime].DateHistogram.ExtendedBounds)
	require.NoError(t, err)
	rcvd, err := json.Marshal(doc.Aggregations[query.AggReceived].Aggregations[query.AggEmailsOverTime].DateHistogram.ExtendedBounds)
	require.NoError(t, err)

	assert.Equal(t, sent, rcvd)
	assert.JSONEq(t, `{"min":"2000-01-01","max":"2002-01-01"}`, string(sent))
}

func TestActorHistogram_AddressRoles(t *testing.T) {
	t.Parallel()

	b := query.NewBuilder(query.Options{})
	body := marshal(t, b.ActorHistogram([]string{"jeb@jeb.org"}, domain.DateBounds{Start: "2000-01-01", End: "2002-01-01"}, "week"))

	sent := gjson.Get(body, "aggs.sent_agg.filter.bool")
	require.Len(t, sent.Get("should").Array(), 1)
	assert.Equal(t, "jeb@jeb.org", sent.Get("should.0.terms.senders.0").String())
	assert.Equal(t, "2002-01-01", sent.Get("must.0.range.datetime.lte").String())

	rcvd := gjson.Get(body, "aggs.rcvr_agg.filter.bool")
	require.Len(t, rcvd.Get("should").Array(), 3)
	assert.True(t, rcvd.Get("should.0.terms.tos").Exists())
	assert.True(t, rcvd.Get("should.1.terms.ccs").Exists())
	assert.True(t, rcvd.Get("should.2.terms.bccs").Exists())
	assert.Equal(t, int64(1), rcvd.Get("minimum_should_match").Int())
}

func TestActorHistogram_OpenBoundsOmitExtendedBounds(t *testing.T) {
	t.Parallel()

	b := query.NewBuilder(query.Options{})
	body := marshal(t, b.ActorHistogram(nil, domain.DateBounds{}, "week"))

	hist := gjson.Get(body, "aggs.sent_agg.aggs.emails_over_time.date_histogram")
	assert.False(t, hist.Get("extended_bounds").Exists())
	assert.False(t, gjson.Get(body, "aggs.sent_agg.filter.bool.must").Exists())
}

func TestDailyActivityHistogram_ChildNames(t *testing.T) {
	t.Parallel()

	b := query.NewBuilder(query.Options{})
	body := marshal(t, b.DailyActivityHistogram([]string{"a@x.org"}, domain.DateBounds{Start: "2000-01-01", End: "2000-02-01"}, "day"))

	assert.True(t, gjson.Get(body, "aggs.sent_agg.aggs.sent_emails_over_time.date_histogram").Exists())
	assert.True(t, gjson.Get(body, "aggs.rcvr_agg.aggs.rcvd_emails_over_time.date_histogram").Exists())
	assert.False(t, gjson.Get(body, "aggs.sent_agg.aggs.emails_over_time").Exists())
}

func TestTotalActivityHistogram(t *testing.T) {
	t.Parallel()

	b := query.NewBuilder(query.Options{})
	body := marshal(t, b.TotalActivityHistogram(query.FilterParams{
		Bounds: domain.DateBounds{Start: "2001-01-01", End: "2001-12-31"},
	}, "month"))

	hist := gjson.Get(body, "aggs.filter_agg.aggs.emails_over_time.date_histogram")
	assert.Equal(t, "month", hist.Get("interval").String())
	assert.Equal(t, "2001-12-31", hist.Get("extended_bounds.max").String())
}

func TestDateAggs(t *testing.T) {
	t.Parallel()

	b := query.NewBuilder(query.Options{})
	body := marshal(t, b.DateAggs(""))

	assert.Equal(t, "datetime", gjson.Get(body, "aggs.min_date.min.field").String())
	assert.Equal(t, "datetime", gjson.Get(body, "aggs.max_date.max.field").String())
	assert.Equal(t, "datetime", gjson.Get(body, "aggs.avg_date.avg.field").String())
	assert.Equal(t, "datetime", gjson.Get(body, "aggs.pct_date.percentiles.field").String())
	assert.Equal(t, int64(0), gjson.Get(body, "size").Int())
}
