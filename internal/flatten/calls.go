package flatten

import (
	"context"
	"strings"

	"call-analytics-go/internal/decode"
	"call-analytics-go/internal/transcription"
	"call-analytics-go/internal/types"
)

// Call flattens a call record item and enriches it with transcript metadata.
func Call(ctx context.Context, item types.Item, enricher transcription.Enricher) (types.Record, error) {
	callID := decode.String(item, "callId")
	if strings.TrimSpace(callID) == "" {
		return types.Record{}, ErrMissingID
	}

	tsRaw := decode.String(item, "callTimestampUTC")

	payload, ok := decode.Value(item["payload"]).(map[string]any)
	if !ok {
		payload = map[string]any{}
	}

	fileName := str(payload, "file_name")
	var enr types.Enrichment
	if enricher != nil {
		enr = enricher.Lookup(ctx, fileName)
	}

	row := types.CallRow{
		CallID:              callID,
		CallTimestampUTC:    tsRaw,
		AgentID:             str(payload, "agentId"),
		AgentName:           str(payload, "agentName"),
		Allocation:          str(payload, "allocation"),
		Direction:           str(payload, "direction"),
		FileName:            fileName,
		FirstOrFollowUp:     str(payload, "firstOrFollowUp"),
		Medium:              str(payload, "medium"),
		Program:             str(payload, "program"),
		QueueID:             str(payload, "queueId"),
		QueueName:           str(payload, "queueName"),
		SessionID:           str(payload, "sessionId"),
		SiteID:              integer(payload, "siteId"),
		SiteName:            str(payload, "siteName"),
		TenantID:            integer(payload, "tenantId"),
		S3Bucket:            str(payload, "s3_bucket"),
		CallDurationSeconds: enr.DurationSeconds,
		AnswerType:          string(transcription.Classify(enr.DurationSeconds, enr.SpeakerCount)),
		TranscriptS3Key:     enr.TranscriptKey,
	}

	return types.Record{
		Table:     types.TableCalls,
		Partition: partitionFromISO(tsRaw),
		Body:      row,
	}, nil
}
