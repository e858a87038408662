package aggregator_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"call-analytics-go/internal/aggregator"
	"call-analytics-go/internal/types"
)

func TestAggregate(t *testing.T) {
	day := types.PartitionKey{Year: "2026", Month: "02", Day: "11"}
	records := []types.Record{
		{Partition: day, Body: types.CallRow{CallID: "a", CallDurationSeconds: 45, AnswerType: "Human"}},
		{Partition: day, Body: types.CallRow{CallID: "b", AnswerType: "Unknown"}},
		{Partition: types.UnknownPartition, Body: types.ScorecardRow{GUID: "s"}},
	}

	ins := aggregator.Aggregate(records)
	assert.Equal(t, 2, ins.Calls)
	assert.Equal(t, 1, ins.Scorecards)
	assert.Equal(t, 1, ins.WithDuration)
	assert.Equal(t, 2, ins.Partitions)
	assert.Equal(t, map[string]int{"Human": 1, "Unknown": 1}, ins.AnswerTypes)

	var total aggregator.Insight
	total.Add(ins)
	total.Add(ins)
	assert.Equal(t, 4, total.Calls)
	assert.Equal(t, 2, total.WithDuration)
	assert.Equal(t, 2, total.AnswerTypes["Human"])
}
