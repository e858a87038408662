package aggregator

import "call-analytics-go/internal/types"

// Insight summarizes one batch of flattened records for operational logs.
type Insight struct {
	Calls        int            `json:"calls"`
	Scorecards   int            `json:"scorecards"`
	WithDuration int            `json:"with_duration"`
	AnswerTypes  map[string]int `json:"answer_types"`
	Partitions   int            `json:"partitions"`
}

func Aggregate(records []types.Record) Insight {
	ins := Insight{AnswerTypes: map[string]int{}}
	partitions := map[types.PartitionKey]struct{}{}
	for _, r := range records {
		partitions[r.Partition] = struct{}{}
		switch body := r.Body.(type) {
		case types.CallRow:
			ins.Calls++
			ins.AnswerTypes[body.AnswerType]++
			if body.CallDurationSeconds > 0 {
				ins.WithDuration++
			}
		case types.ScorecardRow:
			ins.Scorecards++
		}
	}
	ins.Partitions = len(partitions)
	return ins
}

// Add folds another batch into the running totals.
func (i *Insight) Add(other Insight) {
	i.Calls += other.Calls
	i.Scorecards += other.Scorecards
	i.WithDuration += other.WithDuration
	i.Partitions += other.Partitions
	if i.AnswerTypes == nil {
		i.AnswerTypes = map[string]int{}
	}
	for k, v := range other.AnswerTypes {
		i.AnswerTypes[k] += v
	}
}
