package service

import (
	"fmt"
	"sort"

	"github.com/jonesrussell/north-cloud/email-analytics/internal/domain"
	infralogger "github.com/jonesrussell/north-cloud/email-analytics/internal/infrastructure/logger"
)

// MapActivity combines the sent and received buckets of one interval.
// The inbound count is read from the first bucket and the outbound count
// from the second, matching what the activity chart has always displayed.
func MapActivity(accountID string, sent, rcvd domain.Bucket) domain.ActivityRecord {
	return domain.ActivityRecord{
		AccountID:             accountID,
		IntervalStartDatetime: sent.KeyAsString,
		IntervalInboundCount:  sent.DocCount,
		IntervalOutboundCount: rcvd.DocCount,
	}
}

// MapAttachments converts one attachment histogram bucket.
func MapAttachments(accountID string, b domain.Bucket) domain.AttachmentRecord {
	return domain.AttachmentRecord{
		AccountID:             accountID,
		IntervalStartDatetime: b.KeyAsString,
		IntervalAttachCount:   b.DocCount,
	}
}

func mapAttachmentBuckets(accountID string, buckets []domain.Bucket) []domain.AttachmentRecord {
	records := make([]domain.AttachmentRecord, 0, len(buckets))
	for _, b := range buckets {
		records = append(records, MapAttachments(accountID, b))
	}
	return records
}

// mapActivityBuckets pairs sent and received buckets by interval key and maps
// each pair.
func mapActivityBuckets(accountID string, sent, rcvd []domain.Bucket, log infralogger.Logger) []domain.ActivityRecord {
	pairs := alignActivity(sent, rcvd, log)
	records := make([]domain.ActivityRecord, 0, len(pairs))
	for _, p := range pairs {
		records = append(records, MapActivity(accountID, p[0], p[1]))
	}
	return records
}

// alignActivity pairs buckets with equal keys. Histograms built with the same
// interval and extended bounds line up, so the common case is a positional
// zip. When they diverge the union of keys is returned in key order and the
// side without a bucket counts zero.
func alignActivity(sent, rcvd []domain.Bucket, log infralogger.Logger) [][2]domain.Bucket {
	if aligned(sent, rcvd) {
		pairs := make([][2]domain.Bucket, len(sent))
		for i := range sent {
			pairs[i] = [2]domain.Bucket{sent[i], rcvd[i]}
		}
		return pairs
	}

	log.Warn("Sent and received histograms diverge, aligning by key",
		infralogger.Int("sent_buckets", len(sent)),
		infralogger.Int("received_buckets", len(rcvd)),
	)

	sentByKey := indexBuckets(sent)
	rcvdByKey := indexBuckets(rcvd)

	keys := make([]string, 0, len(sentByKey)+len(rcvdByKey))
	for k := range sentByKey {
		keys = append(keys, k)
	}
	for k := range rcvdByKey {
		if _, ok := sentByKey[k]; !ok {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)

	pairs := make([][2]domain.Bucket, 0, len(keys))
	for _, k := range keys {
		s, ok := sentByKey[k]
		if !ok {
			s = domain.Bucket{Key: rcvdByKey[k].Key, KeyAsString: k}
		}
		r, ok := rcvdByKey[k]
		if !ok {
			r = domain.Bucket{Key: s.Key, KeyAsString: k}
		}
		pairs = append(pairs, [2]domain.Bucket{s, r})
	}
	return pairs
}

func aligned(sent, rcvd []domain.Bucket) bool {
	if len(sent) != len(rcvd) {
		return false
	}
	for i := range sent {
		if bucketKey(sent[i]) != bucketKey(rcvd[i]) {
			return false
		}
	}
	return true
}

func indexBuckets(buckets []domain.Bucket) map[string]domain.Bucket {
	m := make(map[string]domain.Bucket, len(buckets))
	for _, b := range buckets {
		m[bucketKey(b)] = b
	}
	return m
}

func bucketKey(b domain.Bucket) string {
	if b.KeyAsString != "" {
		return b.KeyAsString
	}
	if b.Key == nil {
		return ""
	}
	return fmt.Sprint(b.Key)
}

// entityOrder is the concatenation order before sorting; equal counts keep it.
var entityOrder = []string{
	domain.EntityLocation,
	domain.EntityOrganization,
	domain.EntityPerson,
	domain.EntityMisc,
}

// tagEntities labels every bucket with its category and sorts the combined
// list by descending doc_count.
func tagEntities(byType map[string][]domain.Bucket) []domain.EntityCount {
	out := make([]domain.EntityCount, 0)
	for _, entityType := range entityOrder {
		for _, b := range byType[entityType] {
			out = append(out, domain.EntityCount{
				Key:      bucketKey(b),
				DocCount: b.DocCount,
				Type:     entityType,
			})
		}
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].DocCount > out[j].DocCount
	})
	return out
}
