package query

import (
	"strings"

	"github.com/jonesrussell/north-cloud/email-analytics/internal/domain"
)

// Indexed field names.
const (
	FieldDatetime = "datetime"
	FieldSenders  = "senders"
	FieldTos      = "tos"
	FieldCcs      = "ccs"
	FieldBccs     = "bccs"
	FieldAddr     = "addr"
)

// FilterParams are the inputs of BuildFilter.
type FilterParams struct {
	Senders    []string
	Receivers  []string
	QueryTerms string
	Bounds     domain.DateBounds
}

// AddrsFilter returns one terms clause per non-empty address list.
func AddrsFilter(senders, tos, ccs, bccs []string) []Clause {
	var clauses []Clause
	for _, f := range []struct {
		field string
		addrs []string
	}{
		{FieldSenders, senders},
		{FieldTos, tos},
		{FieldCcs, ccs},
		{FieldBccs, bccs},
	} {
		if len(f.addrs) == 0 {
			continue
		}
		clauses = append(clauses, Clause{Terms: map[string][]string{f.field: f.addrs}})
	}
	return clauses
}

// DateFilter returns a range clause on datetime covering the concrete sides
// of bounds, or nothing when both sides are open.
func DateFilter(bounds domain.DateBounds) []Clause {
	if !bounds.HasStart() && !bounds.HasEnd() {
		return nil
	}
	return []Clause{{
		Range: map[string]RangeClause{
			FieldDatetime: {Gte: bounds.Start, Lte: bounds.End},
		},
	}}
}

// TermsFilter matches free text against every indexed field.
func TermsFilter(terms string) []Clause {
	terms = strings.TrimSpace(terms)
	if terms == "" {
		return nil
	}
	return []Clause{{
		QueryString: &QueryStringClause{Query: terms, DefaultOperator: "AND"},
	}}
}

// BuildFilter combines address, date and free-text predicates. Addresses
// match as senders or as any receiver; the date range and terms must match.
func BuildFilter(p FilterParams) *Clause {
	should := AddrsFilter(p.Senders, p.Receivers, p.Receivers, p.Receivers)
	must := append(DateFilter(p.Bounds), TermsFilter(p.QueryTerms)...)
	return boolFilter(must, should)
}

// boolFilter requires at least one should clause whenever any are present,
// otherwise the must clauses alone would decide the match.
func boolFilter(must, should []Clause) *Clause {
	b := &BoolClause{Must: must, Should: should}
	if len(should) > 0 {
		b.MinimumShouldMatch = 1
	}
	return &Clause{Bool: b}
}
