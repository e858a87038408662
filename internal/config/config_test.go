package config_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"call-analytics-go/internal/config"
	"call-analytics-go/internal/types"
)

func env(vars map[string]string) func(string) string {
	return func(k string) string { return vars[k] }
}

func TestFromEnvDefaults(t *testing.T) {
	cfg, err := config.FromEnv(env(map[string]string{"ANALYTICS_BUCKET": "analytics"}))
	require.NoError(t, err)

	assert.Equal(t, "analytics", cfg.AnalyticsBucket)
	assert.Equal(t, "parsedFiles/", cfg.TranscriptPrefix)
	assert.Equal(t, ".json", cfg.TranscriptSuffix)
	assert.Equal(t, "post_call_analytics", cfg.GlueDatabase)
	assert.Equal(t, "calls", cfg.CallsTable)
	assert.Equal(t, "scorecards", cfg.ScorecardsTable)
	assert.Equal(t, 10*time.Second, cfg.EnrichTimeout)
	assert.Equal(t, 20*time.Second, cfg.WriteRetryMax)
	assert.Equal(t, 50, cfg.BackfillWorkers)
}

func TestFromEnvBadValues(t *testing.T) {
	_, err := config.FromEnv(env(map[string]string{
		"ENRICH_TIMEOUT":   "soon",
		"BACKFILL_WORKERS": "many",
	}))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ENRICH_TIMEOUT")
	assert.Contains(t, err.Error(), "BACKFILL_WORKERS")
}

func TestValidate(t *testing.T) {
	cfg, err := config.FromEnv(env(nil))
	require.NoError(t, err)

	err = cfg.Validate(true)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ANALYTICS_BUCKET")
	assert.Contains(t, err.Error(), "TRANSCRIBE_BUCKET")

	cfg.AnalyticsBucket = "analytics"
	assert.NoError(t, cfg.Validate(false))
	assert.Error(t, cfg.Validate(true))
	cfg.TranscribeBucket = "transcribe"
	assert.NoError(t, cfg.Validate(true))
}

func TestValidateStream(t *testing.T) {
	cfg, err := config.FromEnv(env(map[string]string{
		"ANALYTICS_BUCKET":  "analytics",
		"TRANSCRIBE_BUCKET": "transcribe",
	}))
	require.NoError(t, err)
	require.NoError(t, cfg.Validate(true))

	err = cfg.ValidateStream()
	require.Error(t, err)
	assert.True(t, config.Error.Has(err))
	assert.Contains(t, err.Error(), "SOURCE_TABLE")

	cfg.ScorecardsSourceTable = "scorecards-prod"
	assert.NoError(t, cfg.ValidateStream())

	cfg.AnalyticsBucket = ""
	assert.Error(t, cfg.ValidateStream())
}

func TestResolveAndTableName(t *testing.T) {
	cfg, err := config.FromEnv(env(map[string]string{
		"CALLS_SOURCE_TABLE":      "callrecords-prod",
		"SCORECARDS_SOURCE_TABLE": "scorecards-prod",
		"CALLS_TABLE":             "calls_v2",
	}))
	require.NoError(t, err)

	table, ok := cfg.Resolve("callrecords-prod")
	assert.True(t, ok)
	assert.Equal(t, types.TableCalls, table)

	table, ok = cfg.Resolve("scorecards-prod")
	assert.True(t, ok)
	assert.Equal(t, types.TableScorecards, table)

	_, ok = cfg.Resolve("callrecords-prod-archive")
	assert.False(t, ok)
	_, ok = cfg.Resolve("")
	assert.False(t, ok)

	assert.Equal(t, "calls_v2", cfg.TableName(types.TableCalls))
	assert.Equal(t, "scorecards", cfg.TableName(types.TableScorecards))
	assert.Equal(t, "", cfg.TableName(types.TableUnknown))
}
