// Package decode converts DynamoDB attribute values into native Go values.
//
// Decoding is total: malformed or unsupported values come back as nil (or are
// dropped from sets) instead of producing an error.
package decode

import (
	"math"
	"strconv"
	"strings"

	dynamodbtypes "github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// Value decodes a single attribute value.
//
//	S    -> string
//	N    -> int64 when the text has no '.', float64 otherwise
//	BOOL -> bool
//	NULL -> nil
//	M    -> map[string]any
//	L    -> []any
//	SS   -> []string
//	NS   -> []float64
//
// Anything else (binary, unknown members, nil) decodes to nil.
func Value(av dynamodbtypes.AttributeValue) any {
	switch v := av.(type) {
	case *dynamodbtypes.AttributeValueMemberS:
		return v.Value
	case *dynamodbtypes.AttributeValueMemberN:
		return number(v.Value)
	case *dynamodbtypes.AttributeValueMemberBOOL:
		return v.Value
	case *dynamodbtypes.AttributeValueMemberNULL:
		return nil
	case *dynamodbtypes.AttributeValueMemberM:
		return Map(v.Value)
	case *dynamodbtypes.AttributeValueMemberL:
		list := make([]any, len(v.Value))
		for i, item := range v.Value {
			list[i] = Value(item)
		}
		return list
	case *dynamodbtypes.AttributeValueMemberSS:
		out := make([]string, len(v.Value))
		copy(out, v.Value)
		return out
	case *dynamodbtypes.AttributeValueMemberNS:
		out := make([]float64, 0, len(v.Value))
		for _, n := range v.Value {
			f, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
			if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
				continue
			}
			out = append(out, f)
		}
		return out
	default:
		return nil
	}
}

// Map decodes every attribute of an item. A nil item yields an empty map.
func Map(attrs map[string]dynamodbtypes.AttributeValue) map[string]any {
	result := make(map[string]any, len(attrs))
	for k, v := range attrs {
		result[k] = Value(v)
	}
	return result
}

// String returns the string member of item[key], or "" when the attribute is
// absent or carries another type.
func String(item map[string]dynamodbtypes.AttributeValue, key string) string {
	if v, ok := item[key].(*dynamodbtypes.AttributeValueMemberS); ok {
		return v.Value
	}
	return ""
}

// Number returns the raw number text of item[key] and whether it was present.
func Number(item map[string]dynamodbtypes.AttributeValue, key string) (string, bool) {
	if v, ok := item[key].(*dynamodbtypes.AttributeValueMemberN); ok {
		return v.Value, true
	}
	return "", false
}

func number(s string) any {
	s = strings.TrimSpace(s)
	if !strings.Contains(s, ".") {
		if i, err := strconv.ParseInt(s, 10, 64); err == nil {
			return i
		}
	}
	// exponent forms and values outside int64 still parse as floats
	if f, err := strconv.ParseFloat(s, 64); err == nil && !math.IsNaN(f) && !math.IsInf(f, 0) {
		return f
	}
	return nil
}
