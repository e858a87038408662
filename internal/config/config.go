// Package config builds the process configuration once at start-up. The
// resulting Config is never mutated; components receive the values they need
// through their constructors.
package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/zeebo/errs"

	"call-analytics-go/internal/types"
)

// Error is the class of configuration errors.
var Error = errs.Class("config")

type Config struct {
	Environment string
	LogLevel    string
	Region      string

	AnalyticsBucket string

	TranscribeBucket string
	TranscriptPrefix string
	TranscriptSuffix string
	EnrichTimeout    time.Duration

	GlueDatabase    string
	CallsTable      string
	ScorecardsTable string

	// Source DynamoDB table names, used to route stream records.
	CallsSourceTable      string
	ScorecardsSourceTable string

	WriteRetryMax   time.Duration
	BackfillWorkers int
}

// Load reads an optional .env file and then the environment.
func Load() (Config, error) {
	_ = godotenv.Load()
	return FromEnv(os.Getenv)
}

// FromEnv builds a Config from a lookup function such as os.Getenv.
func FromEnv(getenv func(string) string) (Config, error) {
	envOr := func(k, def string) string {
		if v := getenv(k); v != "" {
			return v
		}
		return def
	}

	cfg := Config{
		Environment:           getenv("ENVIRONMENT"),
		LogLevel:              getenv("LOG_LEVEL"),
		Region:                getenv("AWS_REGION"),
		AnalyticsBucket:       getenv("ANALYTICS_BUCKET"),
		TranscribeBucket:      getenv("TRANSCRIBE_BUCKET"),
		TranscriptPrefix:      envOr("TRANSCRIPT_KEY_PREFIX", "parsedFiles/"),
		TranscriptSuffix:      envOr("TRANSCRIPT_KEY_SUFFIX", ".json"),
		GlueDatabase:          envOr("GLUE_DATABASE", "post_call_analytics"),
		CallsTable:            envOr("CALLS_TABLE", "calls"),
		ScorecardsTable:       envOr("SCORECARDS_TABLE", "scorecards"),
		CallsSourceTable:      getenv("CALLS_SOURCE_TABLE"),
		ScorecardsSourceTable: getenv("SCORECARDS_SOURCE_TABLE"),
	}

	var group errs.Group
	var err error
	if cfg.EnrichTimeout, err = time.ParseDuration(envOr("ENRICH_TIMEOUT", "10s")); err != nil {
		group.Add(Error.New("ENRICH_TIMEOUT: %v", err))
	}
	if cfg.WriteRetryMax, err = time.ParseDuration(envOr("WRITE_RETRY_MAX", "20s")); err != nil {
		group.Add(Error.New("WRITE_RETRY_MAX: %v", err))
	}
	if cfg.BackfillWorkers, err = strconv.Atoi(envOr("BACKFILL_WORKERS", "50")); err != nil {
		group.Add(Error.New("BACKFILL_WORKERS: %v", err))
	}
	return cfg, group.Err()
}

// Validate checks the settings every mode needs. Enrichment settings are only
// required when call records will be enriched.
func (c Config) Validate(enrich bool) error {
	var group errs.Group
	if c.AnalyticsBucket == "" {
		group.Add(Error.New("ANALYTICS_BUCKET is required"))
	}
	if enrich && c.TranscribeBucket == "" {
		group.Add(Error.New("TRANSCRIBE_BUCKET is required"))
	}
	if c.EnrichTimeout <= 0 {
		group.Add(Error.New("ENRICH_TIMEOUT must be positive"))
	}
	if c.BackfillWorkers < 1 {
		group.Add(Error.New("BACKFILL_WORKERS must be at least 1"))
	}
	return group.Err()
}

// ValidateStream adds the stream mode requirements to Validate: records are
// routed by source table name, so at least one source table must be set.
func (c Config) ValidateStream() error {
	var group errs.Group
	group.Add(c.Validate(true))
	if c.CallsSourceTable == "" && c.ScorecardsSourceTable == "" {
		group.Add(Error.New("CALLS_SOURCE_TABLE or SCORECARDS_SOURCE_TABLE is required"))
	}
	return group.Err()
}

// TableName returns the destination table name (object prefix and catalog
// table) for t.
func (c Config) TableName(t types.Table) string {
	switch t {
	case types.TableCalls:
		return c.CallsTable
	case types.TableScorecards:
		return c.ScorecardsTable
	}
	return ""
}

// Resolve maps a source DynamoDB table name to the table its records feed.
// Only exact, configured names match.
func (c Config) Resolve(source string) (types.Table, bool) {
	switch {
	case source == "":
		return types.TableUnknown, false
	case source == c.CallsSourceTable:
		return types.TableCalls, true
	case source == c.ScorecardsSourceTable:
		return types.TableScorecards, true
	}
	return types.TableUnknown, false
}
