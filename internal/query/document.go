// Package query builds the Elasticsearch request bodies used by the email
// analytics fetchers. Documents are typed structs serialized with encoding/json.
package query

import "encoding/json"

// Interval keys understood by the date_histogram aggregation. IntervalLegacy
// targets clusters before 7.2; the other two are the current split forms.
const (
	IntervalLegacy   = "interval"
	IntervalCalendar = "calendar_interval"
	IntervalFixed    = "fixed_interval"
)

// Document is a complete search request body.
type Document struct {
	Query        *Clause                 `json:"query,omitempty"`
	Aggregations map[string]*Aggregation `json:"aggs,omitempty"`
	Size         int                     `json:"size"`
}

// Clause is a single query or filter clause. Exactly one field is set.
type Clause struct {
	Bool        *BoolClause            `json:"bool,omitempty"`
	Term        map[string]string      `json:"term,omitempty"`
	Terms       map[string][]string    `json:"terms,omitempty"`
	Range       map[string]RangeClause `json:"range,omitempty"`
	MatchAll    *struct{}              `json:"match_all,omitempty"`
	QueryString *QueryStringClause     `json:"query_string,omitempty"`
}

// BoolClause combines clauses.
type BoolClause struct {
	Must               []Clause `json:"must,omitempty"`
	Should             []Clause `json:"should,omitempty"`
	Filter             []Clause `json:"filter,omitempty"`
	MinimumShouldMatch int      `json:"minimum_should_match,omitempty"`
}

// RangeClause bounds a field. Empty sides are omitted.
type RangeClause struct {
	Gte string `json:"gte,omitempty"`
	Lte string `json:"lte,omitempty"`
}

// QueryStringClause is a Lucene query string match.
type QueryStringClause struct {
	Query           string `json:"query"`
	DefaultOperator string `json:"default_operator,omitempty"`
}

// Aggregation is one named aggregation and its children.
type Aggregation struct {
	Filter        *Clause                 `json:"filter,omitempty"`
	Terms         *TermsAgg               `json:"terms,omitempty"`
	DateHistogram *DateHistogram          `json:"date_histogram,omitempty"`
	Nested        *NestedAgg              `json:"nested,omitempty"`
	Min           *FieldAgg               `json:"min,omitempty"`
	Max           *FieldAgg               `json:"max,omitempty"`
	Avg           *FieldAgg               `json:"avg,omitempty"`
	Percentiles   *FieldAgg               `json:"percentiles,omitempty"`
	Aggregations  map[string]*Aggregation `json:"aggs,omitempty"`
}

// TermsAgg buckets documents by distinct field values.
type TermsAgg struct {
	Field string `json:"field"`
	Size  int    `json:"size"`
}

// NestedAgg scopes child aggregations to a nested path.
type NestedAgg struct {
	Path string `json:"path"`
}

// FieldAgg is a single-field metric aggregation (min, max, avg, percentiles).
type FieldAgg struct {
	Field string `json:"field"`
}

// ExtendedBounds forces empty leading and trailing buckets into a histogram.
type ExtendedBounds struct {
	Min string `json:"min,omitempty"`
	Max string `json:"max,omitempty"`
}

// DateHistogram buckets documents by time interval. IntervalField selects
// the key the interval is written under and defaults to IntervalLegacy.
type DateHistogram struct {
	Field          string
	Interval       string
	IntervalField  string
	Format         string
	MinDocCount    int
	ExtendedBounds *ExtendedBounds
}

// MarshalJSON writes the interval under the configured key.
// min_doc_count is always written so zero-count buckets are kept.
func (h DateHistogram) MarshalJSON() ([]byte, error) {
	key := h.IntervalField
	if key == "" {
		key = IntervalLegacy
	}

	body := map[string]any{
		"field":         h.Field,
		key:             h.Interval,
		"min_doc_count": h.MinDocCount,
	}
	if h.Format != "" {
		body["format"] = h.Format
	}
	if h.ExtendedBounds != nil {
		body["extended_bounds"] = h.ExtendedBounds
	}

	return json.Marshal(body)
}
