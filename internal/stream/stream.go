// Package stream applies incremental DynamoDB change events to the analytics
// layer. One invocation is processed synchronously on a single goroutine.
package stream

import (
	"context"

	"github.com/sirupsen/logrus"

	"call-analytics-go/internal/aggregator"
	"call-analytics-go/internal/config"
	"call-analytics-go/internal/pipeline"
	"call-analytics-go/internal/transcription"
	"call-analytics-go/internal/types"
	"call-analytics-go/internal/writer"
)

// EventName is the DynamoDB Streams event type.
type EventName string

const (
	EventInsert EventName = "INSERT"
	EventModify EventName = "MODIFY"
	EventRemove EventName = "REMOVE"
)

// ChangeEvent is one change notification with its post-change image. Table is
// resolved by the event source before the event reaches the Processor.
type ChangeEvent struct {
	Name   EventName
	Source string
	Table  types.Table
	Image  types.Item
}

// BatchWriter persists the records of one table.
type BatchWriter interface {
	Write(ctx context.Context, table string, records []types.Record) (writer.Result, error)
}

// Summary reports what one batch did.
type Summary struct {
	Calls      int
	Scorecards int
	Removed    int
	Skipped    int
	Insight    aggregator.Insight
}

func (s Summary) Processed() int { return s.Calls + s.Scorecards }

type Processor struct {
	cfg      config.Config
	writer   BatchWriter
	enricher transcription.Enricher
}

func NewProcessor(cfg config.Config, w BatchWriter, enricher transcription.Enricher) *Processor {
	return &Processor{cfg: cfg, writer: w, enricher: enricher}
}

// Process flattens every insert and modify event and writes the results once
// per table. Deletions are not propagated. Record-level failures are logged
// and skipped; a write failure is returned.
func (p *Processor) Process(ctx context.Context, events []ChangeEvent, log logrus.FieldLogger) (Summary, error) {
	var sum Summary
	batches := map[types.Table][]types.Record{}

	for _, ev := range events {
		if ev.Name == EventRemove {
			sum.Removed++
			continue
		}
		if len(ev.Image) == 0 {
			sum.Skipped++
			continue
		}
		if ev.Table == types.TableUnknown {
			log.WithField("source", ev.Source).Warn("event from unmapped table skipped")
			sum.Skipped++
			continue
		}

		rec, outcome := pipeline.Flatten(ctx, ev.Table, ev.Image, p.enricher, log.WithField("source", ev.Source))
		if outcome != pipeline.Flattened {
			sum.Skipped++
			continue
		}
		batches[ev.Table] = append(batches[ev.Table], rec)
	}

	for _, table := range []types.Table{types.TableCalls, types.TableScorecards} {
		records := batches[table]
		if _, err := p.writer.Write(ctx, p.cfg.TableName(table), records); err != nil {
			return sum, err
		}
		switch table {
		case types.TableCalls:
			sum.Calls = len(records)
		case types.TableScorecards:
			sum.Scorecards = len(records)
		}
		sum.Insight.Add(aggregator.Aggregate(records))
	}

	log.WithFields(logrus.Fields{
		"calls":      sum.Calls,
		"scorecards": sum.Scorecards,
		"removed":    sum.Removed,
		"skipped":    sum.Skipped,
	}).Info("processed change batch")
	return sum, nil
}
