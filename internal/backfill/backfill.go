// Package backfill replays a whole source table through the flatteners and
// writes the results page by page.
package backfill

import (
	"context"

	"github.com/sirupsen/logrus"
	"github.com/zeebo/errs"
	"golang.org/x/sync/errgroup"

	"call-analytics-go/internal/aggregator"
	"call-analytics-go/internal/pipeline"
	"call-analytics-go/internal/transcription"
	"call-analytics-go/internal/types"
	"call-analytics-go/internal/writer"
)

// Error is the class of backfill failures.
var Error = errs.Class("backfill")

// Pager yields the items of a source table one page at a time.
type Pager interface {
	Scan(ctx context.Context, table string, fn func(ctx context.Context, page []types.Item) error) error
}

type BatchWriter interface {
	Write(ctx context.Context, table string, records []types.Record) (writer.Result, error)
}

// EnricherFactory builds the enrichment client owned by one worker.
type EnricherFactory func(worker int) (transcription.Enricher, error)

type Options struct {
	// Workers is the size of the call enrichment pool; values below one mean
	// a single worker.
	Workers   int
	Enrichers EnricherFactory
	// TableName maps a table to its destination name.
	TableName func(types.Table) string
}

// Summary holds the running totals of one run.
type Summary struct {
	Pages        int `json:"pages"`
	Processed    int `json:"processed"`
	WithDuration int `json:"with_duration"`
	Skipped      int `json:"skipped"`

	Insight aggregator.Insight `json:"insight"`
}

type Driver struct {
	pager  Pager
	writer BatchWriter
	opts   Options
	log    logrus.FieldLogger
}

func New(pager Pager, w BatchWriter, opts Options, log logrus.FieldLogger) *Driver {
	if opts.Workers < 1 {
		opts.Workers = 1
	}
	if opts.TableName == nil {
		opts.TableName = types.Table.String
	}
	return &Driver{pager: pager, writer: w, opts: opts, log: log.WithField("component", "backfill")}
}

type result struct {
	record  types.Record
	outcome pipeline.Outcome
}

type job struct {
	item types.Item
	out  chan<- result
}

// Run scans sourceTable and writes every page as records of table. Calls are
// enriched by the worker pool; scorecards are flattened in order on the
// scanning goroutine. An enricher or write failure ends the run.
func (d *Driver) Run(ctx context.Context, sourceTable string, table types.Table) (Summary, error) {
	var sum Summary
	log := d.log.WithFields(logrus.Fields{"source": sourceTable, "table": table.String()})

	group, gctx := errgroup.WithContext(ctx)
	switch table {
	case types.TableCalls:
		if d.opts.Enrichers == nil {
			return sum, Error.New("calls backfill needs an enricher factory")
		}
		jobs := make(chan job)
		for w := 0; w < d.opts.Workers; w++ {
			group.Go(func() error { return d.work(gctx, w, jobs, log) })
		}
		fan := func(ctx context.Context, page []types.Item) ([]result, error) {
			return fanOut(ctx, jobs, page)
		}
		group.Go(func() error {
			defer close(jobs)
			return d.scan(gctx, sourceTable, table, fan, &sum, log)
		})
	case types.TableScorecards:
		sequential := func(ctx context.Context, page []types.Item) ([]result, error) {
			results := make([]result, 0, len(page))
			for _, item := range page {
				rec, outcome := pipeline.Flatten(ctx, table, item, nil, log)
				results = append(results, result{record: rec, outcome: outcome})
			}
			return results, nil
		}
		group.Go(func() error {
			return d.scan(gctx, sourceTable, table, sequential, &sum, log)
		})
	default:
		return sum, Error.New("no transform for table %q", table.String())
	}

	err := group.Wait()
	if err != nil {
		log.WithError(err).Error("backfill stopped")
		return sum, err
	}
	log.WithFields(totals(sum)).Info("backfill complete")
	return sum, nil
}

func (d *Driver) scan(ctx context.Context, sourceTable string, table types.Table,
	flattenPage func(context.Context, []types.Item) ([]result, error), sum *Summary, log logrus.FieldLogger) error {
	dest := d.opts.TableName(table)
	return d.pager.Scan(ctx, sourceTable, func(ctx context.Context, page []types.Item) error {
		results, err := flattenPage(ctx, page)
		if err != nil {
			return err
		}

		records := make([]types.Record, 0, len(results))
		for _, r := range results {
			if r.outcome != pipeline.Flattened {
				sum.Skipped++
				continue
			}
			records = append(records, r.record)
		}

		if _, err := d.writer.Write(ctx, dest, records); err != nil {
			return err
		}

		ins := aggregator.Aggregate(records)
		sum.Pages++
		sum.Processed += len(records)
		sum.WithDuration += ins.WithDuration
		sum.Insight.Add(ins)
		log.WithFields(totals(*sum)).Info("page written")
		return nil
	})
}

// fanOut hands the items of one page to the pool and collects their results
// in completion order.
func fanOut(ctx context.Context, jobs chan<- job, page []types.Item) ([]result, error) {
	out := make(chan result, len(page))
	for _, item := range page {
		select {
		case jobs <- job{item: item, out: out}:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	results := make([]result, 0, len(page))
	for range page {
		select {
		case r := <-out:
			results = append(results, r)
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	return results, nil
}

// work serves jobs until the channel closes. The enricher is built on the
// first job and never shared with another worker.
func (d *Driver) work(ctx context.Context, id int, jobs <-chan job, log logrus.FieldLogger) error {
	var enricher transcription.Enricher
	for j := range jobs {
		if enricher == nil {
			e, err := d.opts.Enrichers(id)
			if err != nil {
				return Error.New("worker %d enricher: %w", id, err)
			}
			enricher = e
		}
		rec, outcome := pipeline.Flatten(ctx, types.TableCalls, j.item, enricher, log)
		j.out <- result{record: rec, outcome: outcome}
	}
	return nil
}

func totals(sum Summary) logrus.Fields {
	return logrus.Fields{
		"pages":         sum.Pages,
		"processed":     sum.Processed,
		"with_duration": sum.WithDuration,
		"skipped":       sum.Skipped,
	}
}
