package source_test

import (
	"context"
	"errors"
	"strconv"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	dynamodbtypes "github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"call-analytics-go/internal/source"
	"call-analytics-go/internal/types"
)

// fakeScan serves pages keyed by the exclusive start key "page".
type fakeScan struct {
	pages  [][]types.Item
	err    error
	inputs []*dynamodb.ScanInput
}

func (f *fakeScan) Scan(_ context.Context, in *dynamodb.ScanInput, _ ...func(*dynamodb.Options)) (*dynamodb.ScanOutput, error) {
	f.inputs = append(f.inputs, in)
	if f.err != nil {
		return nil, f.err
	}
	idx := 0
	if k, ok := in.ExclusiveStartKey["page"].(*dynamodbtypes.AttributeValueMemberN); ok {
		idx, _ = strconv.Atoi(k.Value)
	}
	out := &dynamodb.ScanOutput{Items: f.pages[idx]}
	if idx+1 < len(f.pages) {
		out.LastEvaluatedKey = map[string]dynamodbtypes.AttributeValue{
			"page": &dynamodbtypes.AttributeValueMemberN{Value: strconv.Itoa(idx + 1)},
		}
	}
	return out, nil
}

func item(id string) types.Item {
	return types.Item{"callId": &dynamodbtypes.AttributeValueMemberS{Value: id}}
}

func TestScanVisitsEveryPage(t *testing.T) {
	api := &fakeScan{pages: [][]types.Item{
		{item("a"), item("b")},
		{},
		{item("c")},
	}}

	var seen []int
	err := source.NewScanner(api, 2).Scan(context.Background(), "CallRecords", func(_ context.Context, page []types.Item) error {
		seen = append(seen, len(page))
		return nil
	})
	require.NoError(t, err)

	assert.Equal(t, []int{2, 1}, seen)
	require.Len(t, api.inputs, 3)
	assert.Equal(t, "CallRecords", aws.ToString(api.inputs[0].TableName))
	assert.Equal(t, int32(2), aws.ToInt32(api.inputs[0].Limit))
}

func TestScanWithoutPageSize(t *testing.T) {
	api := &fakeScan{pages: [][]types.Item{{item("a")}}}
	err := source.NewScanner(api, 0).Scan(context.Background(), "CallRecords", func(context.Context, []types.Item) error { return nil })
	require.NoError(t, err)
	assert.Nil(t, api.inputs[0].Limit)
}

func TestScanStopsOnErrors(t *testing.T) {
	api := &fakeScan{err: errors.New("throttled")}
	err := source.NewScanner(api, 0).Scan(context.Background(), "CallRecords", func(context.Context, []types.Item) error { return nil })
	require.Error(t, err)
	assert.True(t, source.Error.Has(err))

	stop := errors.New("stop")
	api = &fakeScan{pages: [][]types.Item{{item("a")}, {item("b")}}}
	err = source.NewScanner(api, 0).Scan(context.Background(), "CallRecords", func(context.Context, []types.Item) error { return stop })
	assert.ErrorIs(t, err, stop)
	assert.Len(t, api.inputs, 1)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err = source.NewScanner(api, 0).Scan(ctx, "CallRecords", func(context.Context, []types.Item) error { return nil })
	assert.ErrorIs(t, err, context.Canceled)
}
