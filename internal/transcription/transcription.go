package transcription

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"
	"github.com/cenkalti/backoff/v4"
	"github.com/sirupsen/logrus"

	"call-analytics-go/internal/types"
)

// Enricher resolves transcript metadata for a recording file name.
type Enricher interface {
	Lookup(ctx context.Context, fileName string) types.Enrichment
}

// GetObjectAPI is the part of the S3 client used for transcript reads.
type GetObjectAPI interface {
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

type Options struct {
	Bucket  string
	Prefix  string
	Suffix  string
	Timeout time.Duration
	// Backoff builds the retry policy for one lookup. Defaults to exponential
	// backoff bounded by Timeout.
	Backoff func() backoff.BackOff
}

// Client reads transcript analytics documents from S3. A Client is not shared
// between backfill workers; each worker builds its own.
type Client struct {
	api  GetObjectAPI
	opts Options
	log  logrus.FieldLogger
}

func New(api GetObjectAPI, opts Options, log logrus.FieldLogger) *Client {
	if opts.Timeout <= 0 {
		opts.Timeout = 10 * time.Second
	}
	if opts.Backoff == nil {
		timeout := opts.Timeout
		opts.Backoff = func() backoff.BackOff {
			bo := backoff.NewExponentialBackOff()
			bo.InitialInterval = 200 * time.Millisecond
			bo.MaxElapsedTime = timeout
			return bo
		}
	}
	return &Client{api: api, opts: opts, log: log.WithField("module", "transcription")}
}

// Key returns the transcript object key for a recording file name.
func (c *Client) Key(fileName string) string {
	return c.opts.Prefix + fileName + c.opts.Suffix
}

// Lookup fetches duration and speaker metadata for fileName. It never fails:
// an empty name or any error along the way yields the zero Enrichment.
func (c *Client) Lookup(ctx context.Context, fileName string) types.Enrichment {
	if fileName == "" {
		return types.Enrichment{}
	}
	key := c.Key(fileName)

	ctx, cancel := context.WithTimeout(ctx, c.opts.Timeout)
	defer cancel()

	body, err := c.fetch(ctx, key)
	if err != nil {
		c.log.WithField("key", key).WithError(err).Debug("transcript lookup failed")
		return types.Enrichment{}
	}
	duration, speakers, err := parse(body)
	if err != nil {
		c.log.WithField("key", key).WithError(err).Debug("transcript parse failed")
		return types.Enrichment{}
	}
	return types.Enrichment{DurationSeconds: duration, TranscriptKey: key, SpeakerCount: speakers}
}

func (c *Client) fetch(ctx context.Context, key string) ([]byte, error) {
	var body []byte
	op := func() error {
		out, err := c.api.GetObject(ctx, &s3.GetObjectInput{
			Bucket: aws.String(c.opts.Bucket),
			Key:    aws.String(key),
		})
		if err != nil {
			if isNotFound(err) || ctx.Err() != nil {
				return backoff.Permanent(err)
			}
			return err
		}
		defer out.Body.Close()
		b, err := io.ReadAll(out.Body)
		if err != nil {
			return err
		}
		body = b
		return nil
	}
	if err := backoff.Retry(op, backoff.WithContext(c.opts.Backoff(), ctx)); err != nil {
		return nil, err
	}
	return body, nil
}

func isNotFound(err error) bool {
	var nsk *s3types.NoSuchKey
	if errors.As(err, &nsk) {
		return true
	}
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.ErrorCode() {
		case "NoSuchKey", "NotFound", "AccessDenied":
			return true
		}
	}
	return false
}

type analyticsDocument struct {
	ConversationAnalytics struct {
		Duration      json.RawMessage `json:"Duration"`
		SpeakerLabels []struct {
			Speaker string `json:"Speaker"`
		} `json:"SpeakerLabels"`
	} `json:"ConversationAnalytics"`
}

func parse(body []byte) (int, int, error) {
	var doc analyticsDocument
	if err := json.Unmarshal(body, &doc); err != nil {
		return 0, 0, fmt.Errorf("json decode error: %w", err)
	}
	ca := doc.ConversationAnalytics

	duration, err := seconds(ca.Duration)
	if err != nil {
		return 0, 0, err
	}

	speakers := map[string]struct{}{}
	for _, label := range ca.SpeakerLabels {
		if label.Speaker != "" {
			speakers[label.Speaker] = struct{}{}
		}
	}
	return duration, len(speakers), nil
}

// maxDuration bounds a plausible call length in seconds.
const maxDuration = math.MaxInt32

// seconds accepts Duration as a JSON number or a numeric string.
func seconds(raw json.RawMessage) (int, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || string(raw) == "null" {
		return 0, nil
	}
	var text string
	if raw[0] == '"' {
		if err := json.Unmarshal(raw, &text); err != nil {
			return 0, err
		}
	} else {
		text = string(raw)
	}
	f, err := strconv.ParseFloat(text, 64)
	if err != nil {
		return 0, fmt.Errorf("bad duration %q: %w", text, err)
	}
	if math.IsNaN(f) || math.IsInf(f, 0) || f > maxDuration {
		return 0, fmt.Errorf("bad duration %q", text)
	}
	if f < 0 {
		return 0, nil
	}
	return int(f), nil
}
