// Package writer persists flattened records as date-partitioned newline-delimited
// JSON objects and registers each partition in the catalog.
package writer

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/cenkalti/backoff/v4"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/zeebo/errs"

	"call-analytics-go/internal/types"
)

// Error is the class of write failures. A write Error means partition data was
// not persisted and must reach the caller's retry mechanism.
var Error = errs.Class("writer")

// PutObjectAPI is the part of the S3 client used for output writes.
type PutObjectAPI interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// Registrar makes a partition known to the metadata catalog.
type Registrar interface {
	EnsurePartition(ctx context.Context, table string, key types.PartitionKey, location string) error
}

type Options struct {
	Bucket string
	// Backoff builds the retry policy for one PutObject call.
	Backoff func() backoff.BackOff
	// Now is the clock used for object key timestamps.
	Now func() time.Time
}

type Writer struct {
	api       PutObjectAPI
	registrar Registrar
	opts      Options
	log       logrus.FieldLogger
}

// Result describes the objects produced by one Write call.
type Result struct {
	Records int
	Objects []Object
}

type Object struct {
	Key       string
	Partition types.PartitionKey
	Records   int
}

func New(api PutObjectAPI, registrar Registrar, opts Options, log logrus.FieldLogger) *Writer {
	if opts.Backoff == nil {
		opts.Backoff = func() backoff.BackOff {
			bo := backoff.NewExponentialBackOff()
			bo.MaxElapsedTime = 20 * time.Second
			return bo
		}
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Writer{api: api, registrar: registrar, opts: opts, log: log.WithField("component", "writer")}
}

type group struct {
	key     types.PartitionKey
	records []types.Record
}

// Write stores records of one table, one new object per partition. The object
// key carries a microsecond timestamp and a random suffix, so repeated or
// concurrent writes never overwrite each other.
func (w *Writer) Write(ctx context.Context, table string, records []types.Record) (Result, error) {
	if len(records) == 0 {
		return Result{}, nil
	}

	groups := partition(records)
	stamp := timestamp(w.opts.Now().UTC())
	result := Result{Records: len(records)}

	for _, g := range groups {
		body, err := encode(g.records)
		if err != nil {
			return result, Error.New("encode %s %v: %v", table, g.key, err)
		}

		prefix := g.key.Prefix(table)
		key := fmt.Sprintf("%s%s-%s.json", prefix, stamp, uuid.NewString())

		if err := w.put(ctx, key, body); err != nil {
			return result, Error.New("put s3://%s/%s: %v", w.opts.Bucket, key, err)
		}
		result.Objects = append(result.Objects, Object{Key: key, Partition: g.key, Records: len(g.records)})

		log := w.log.WithFields(logrus.Fields{
			"table":   table,
			"records": len(g.records),
			"key":     key,
		})
		log.Info("wrote partition object")

		if w.registrar == nil {
			continue
		}
		location := fmt.Sprintf("s3://%s/%s", w.opts.Bucket, prefix)
		if err := w.registrar.EnsurePartition(ctx, table, g.key, location); err != nil {
			log.WithError(err).Warn("partition registration failed")
		}
	}
	return result, nil
}

func (w *Writer) put(ctx context.Context, key string, body []byte) error {
	op := func() error {
		_, err := w.api.PutObject(ctx, &s3.PutObjectInput{
			Bucket:        aws.String(w.opts.Bucket),
			Key:           aws.String(key),
			Body:          bytes.NewReader(body),
			ContentLength: aws.Int64(int64(len(body))),
			ContentType:   aws.String("application/json"),
		})
		return err
	}
	return backoff.Retry(op, backoff.WithContext(w.opts.Backoff(), ctx))
}

// partition groups records by partition key in first-seen order.
func partition(records []types.Record) []*group {
	index := map[types.PartitionKey]*group{}
	var groups []*group
	for _, r := range records {
		g, ok := index[r.Partition]
		if !ok {
			g = &group{key: r.Partition}
			index[r.Partition] = g
			groups = append(groups, g)
		}
		g.records = append(g.records, r)
	}
	return groups
}

// encode renders one JSON document per line, without a trailing newline.
func encode(records []types.Record) ([]byte, error) {
	var buf bytes.Buffer
	for i, r := range records {
		b, err := json.Marshal(r.Body)
		if err != nil {
			return nil, err
		}
		if i > 0 {
			buf.WriteByte('\n')
		}
		buf.Write(b)
	}
	return buf.Bytes(), nil
}

func timestamp(t time.Time) string {
	return fmt.Sprintf("%s%06d", t.Format("20060102T150405"), t.Nanosecond()/int(time.Microsecond))
}
