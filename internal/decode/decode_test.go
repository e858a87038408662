package decode_test

import (
	"testing"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	dynamodbtypes "github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"call-analytics-go/internal/decode"
)

func TestValueScalars(t *testing.T) {
	for _, tt := range []struct {
		name string
		in   dynamodbtypes.AttributeValue
		want any
	}{
		{"string", &dynamodbtypes.AttributeValueMemberS{Value: "hello"}, "hello"},
		{"integer", &dynamodbtypes.AttributeValueMemberN{Value: "42"}, int64(42)},
		{"negative integer", &dynamodbtypes.AttributeValueMemberN{Value: "-7"}, int64(-7)},
		{"fraction", &dynamodbtypes.AttributeValueMemberN{Value: "3.14"}, 3.14},
		{"exponent", &dynamodbtypes.AttributeValueMemberN{Value: "1e3"}, float64(1000)},
		{"overflow", &dynamodbtypes.AttributeValueMemberN{Value: "99999999999999999999"}, 1e20},
		{"bad number", &dynamodbtypes.AttributeValueMemberN{Value: "abc"}, nil},
		{"nan", &dynamodbtypes.AttributeValueMemberN{Value: "NaN"}, nil},
		{"infinity", &dynamodbtypes.AttributeValueMemberN{Value: "-Inf"}, nil},
		{"out of float range", &dynamodbtypes.AttributeValueMemberN{Value: "1e400"}, nil},
		{"bool", &dynamodbtypes.AttributeValueMemberBOOL{Value: true}, true},
		{"null", &dynamodbtypes.AttributeValueMemberNULL{Value: true}, nil},
		{"binary", &dynamodbtypes.AttributeValueMemberB{Value: []byte("x")}, nil},
		{"nil", nil, nil},
	} {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, decode.Value(tt.in))
		})
	}
}

func TestValueCollections(t *testing.T) {
	m := decode.Value(&dynamodbtypes.AttributeValueMemberM{Value: map[string]dynamodbtypes.AttributeValue{
		"name": &dynamodbtypes.AttributeValueMemberS{Value: "Alice"},
		"age":  &dynamodbtypes.AttributeValueMemberN{Value: "30"},
		"tags": &dynamodbtypes.AttributeValueMemberL{Value: []dynamodbtypes.AttributeValue{
			&dynamodbtypes.AttributeValueMemberS{Value: "a"},
			&dynamodbtypes.AttributeValueMemberN{Value: "1"},
		}},
	}})
	assert.Equal(t, map[string]any{
		"name": "Alice",
		"age":  int64(30),
		"tags": []any{"a", int64(1)},
	}, m)

	ss := decode.Value(&dynamodbtypes.AttributeValueMemberSS{Value: []string{"a", "b", "c"}})
	assert.ElementsMatch(t, []string{"a", "b", "c"}, ss)

	ns := decode.Value(&dynamodbtypes.AttributeValueMemberNS{Value: []string{"1", "2.5", "nope", "NaN", "Inf"}})
	assert.Equal(t, []float64{1, 2.5}, ns)
}

func TestMapFromMarshalledItem(t *testing.T) {
	item, err := attributevalue.MarshalMap(map[string]any{
		"callId":  "c1",
		"payload": map[string]any{"siteId": 12, "agentName": "John Doe"},
	})
	require.NoError(t, err)

	got := decode.Map(item)
	assert.Equal(t, "c1", got["callId"])
	assert.Equal(t, map[string]any{"siteId": int64(12), "agentName": "John Doe"}, got["payload"])
	assert.Empty(t, decode.Map(nil))
}

func TestStringAndNumberHelpers(t *testing.T) {
	item := map[string]dynamodbtypes.AttributeValue{
		"s": &dynamodbtypes.AttributeValueMemberS{Value: "x"},
		"n": &dynamodbtypes.AttributeValueMemberN{Value: "2.5"},
	}
	assert.Equal(t, "x", decode.String(item, "s"))
	assert.Equal(t, "", decode.String(item, "n"))
	assert.Equal(t, "", decode.String(item, "missing"))

	n, ok := decode.Number(item, "n")
	assert.True(t, ok)
	assert.Equal(t, "2.5", n)
	_, ok = decode.Number(item, "s")
	assert.False(t, ok)
}
