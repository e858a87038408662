package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"call-analytics-go/internal/config"
	"call-analytics-go/internal/types"
)

func TestResolveKind(t *testing.T) {
	cfg := config.Config{CallsSourceTable: "CallRecords", ScorecardsSourceTable: "Scorecards"}

	table, err := resolveKind(cfg, "CallRecords", "")
	require.NoError(t, err)
	assert.Equal(t, types.TableCalls, table)

	table, err = resolveKind(cfg, "Scorecards", "")
	require.NoError(t, err)
	assert.Equal(t, types.TableScorecards, table)

	table, err = resolveKind(cfg, "CallRecords-copy", "scorecards")
	require.NoError(t, err)
	assert.Equal(t, types.TableScorecards, table)

	_, err = resolveKind(cfg, "CallRecords-copy", "")
	assert.Error(t, err)

	_, err = resolveKind(cfg, "CallRecords", "transcripts")
	assert.Error(t, err)
}
