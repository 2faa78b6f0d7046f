package service

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/tidwall/gjson"

	"github.com/jonesrussell/north-cloud/email-analytics/internal/domain"
)

// ErrMissingAggregation is returned when a response lacks an aggregation the
// request asked for. It indicates a mismatch between query and response.
var ErrMissingAggregation = errors.New("missing aggregation in response")

const aggregationsRoot = "aggregations"

// aggPath joins aggregation names into a gjson path, escaping dots inside names.
func aggPath(names ...string) string {
	parts := make([]string, 0, len(names)+1)
	parts = append(parts, aggregationsRoot)
	for _, n := range names {
		parts = append(parts, escapePathKey(n))
	}
	return strings.Join(parts, ".")
}

func escapePathKey(key string) string {
	return strings.ReplaceAll(key, ".", `\.`)
}

// bucketsAt decodes the buckets array of the aggregation at names.
func bucketsAt(data []byte, names ...string) ([]domain.Bucket, error) {
	path := aggPath(names...) + ".buckets"
	res := gjson.GetBytes(data, path)
	if !res.IsArray() {
		return nil, fmt.Errorf("%w: %s", ErrMissingAggregation, path)
	}

	buckets := make([]domain.Bucket, 0, len(res.Array()))
	if err := json.Unmarshal([]byte(res.Raw), &buckets); err != nil {
		return nil, fmt.Errorf("failed to decode buckets at %s: %w", path, err)
	}
	return buckets, nil
}

// requireAggregation fails when the aggregation at names is absent.
func requireAggregation(data []byte, names ...string) (gjson.Result, error) {
	path := aggPath(names...)
	res := gjson.GetBytes(data, path)
	if !res.Exists() {
		return res, fmt.Errorf("%w: %s", ErrMissingAggregation, path)
	}
	return res, nil
}
