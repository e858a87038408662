// Package flatten turns raw call and scorecard items into flat analytic rows.
//
// Flatteners never log and never panic. They return ErrMissingID when the
// primary identifier is blank and a flatten Error for anything else; the
// caller decides to log and move on.
package flatten

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/zeebo/errs"

	"call-analytics-go/internal/types"
)

// Error is the class of all flatten failures.
var Error = errs.Class("flatten")

// ErrMissingID marks a record without its primary identifier.
var ErrMissingID = Error.New("missing primary identifier")

var isoLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05.999999999Z07:00",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02",
}

// partitionFromISO derives the partition from an ISO-8601 timestamp, keeping
// the timestamp's own offset.
func partitionFromISO(raw string) types.PartitionKey {
	raw = strings.TrimSpace(raw)
	for _, layout := range isoLayouts {
		ts, err := time.Parse(layout, raw)
		if err != nil {
			continue
		}
		return types.PartitionKey{
			Year:  ts.Format("2006"),
			Month: ts.Format("01"),
			Day:   ts.Format("02"),
		}
	}
	return types.UnknownPartition
}

// partitionFromDatePrefix reads a "2025-10-08T14-34-19" style value, where only
// the first ten characters carry the date.
func partitionFromDatePrefix(raw string) types.PartitionKey {
	if len(raw) < 10 {
		return types.UnknownPartition
	}
	ts, err := time.Parse("2006-01-02", raw[:10])
	if err != nil {
		return types.UnknownPartition
	}
	return types.PartitionKey{
		Year:  ts.Format("2006"),
		Month: ts.Format("01"),
		Day:   ts.Format("02"),
	}
}

// str renders a decoded payload value as a string field. Missing values become "".
func str(m map[string]any, key string) string {
	switch v := m[key].(type) {
	case nil:
		return ""
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	default:
		return fmt.Sprint(v)
	}
}

// integer reads an integer field, accepting integral floats and numeric strings.
// Anything else is 0.
func integer(m map[string]any, key string) int64 {
	switch v := m[key].(type) {
	case int64:
		return v
	case float64:
		return truncate(v)
	case string:
		if i, err := strconv.ParseInt(strings.TrimSpace(v), 10, 64); err == nil {
			return i
		}
		if f, err := strconv.ParseFloat(strings.TrimSpace(v), 64); err == nil {
			return truncate(f)
		}
	}
	return 0
}

// truncate converts f to int64, or 0 when f is not finite or out of range.
func truncate(f float64) int64 {
	if !finite(f) || f >= math.MaxInt64 || f < math.MinInt64 {
		return 0
	}
	return int64(f)
}

func finite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

// float reads a numeric field as float64. NaN, infinities and anything
// else are 0.
func float(m map[string]any, key string) float64 {
	switch v := m[key].(type) {
	case int64:
		return float64(v)
	case float64:
		if finite(v) {
			return v
		}
	case string:
		if f, err := strconv.ParseFloat(strings.TrimSpace(v), 64); err == nil && finite(f) {
			return f
		}
	}
	return 0
}
