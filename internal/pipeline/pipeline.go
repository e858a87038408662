// internal/pipeline/pipeline.go
package pipeline

import (
	"context"
	"errors"

	"github.com/sirupsen/logrus"

	"call-analytics-go/internal/flatten"
	"call-analytics-go/internal/transcription"
	"call-analytics-go/internal/types"
)

// Transform flattens one raw item of a known table.
type Transform func(ctx context.Context, item types.Item, enricher transcription.Enricher) (types.Record, error)

var transforms = map[types.Table]Transform{
	types.TableCalls:      flatten.Call,
	types.TableScorecards: flatten.Scorecard,
}

// Outcome of processing one item.
type Outcome int

const (
	Flattened Outcome = iota
	SkippedMissingID
	SkippedError
	SkippedUnknownTable
)

// Flatten routes item to the transform of table. Failures never escape: they
// are logged as warnings and reported through the Outcome so the batch can
// continue.
func Flatten(ctx context.Context, table types.Table, item types.Item, enricher transcription.Enricher, log logrus.FieldLogger) (types.Record, Outcome) {
	transform, ok := transforms[table]
	if !ok {
		log.WithField("table", table.String()).Warn("no transform for table, record skipped")
		return types.Record{}, SkippedUnknownTable
	}

	rec, err := transform(ctx, item, enricher)
	switch {
	case err == nil:
		return rec, Flattened
	case errors.Is(err, flatten.ErrMissingID):
		log.WithField("table", table.String()).Warn("record without primary identifier skipped")
		return types.Record{}, SkippedMissingID
	default:
		log.WithField("table", table.String()).WithError(err).Warn("error flattening record, skipped")
		return types.Record{}, SkippedError
	}
}
