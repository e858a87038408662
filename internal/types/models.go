package types

import (
	"fmt"

	dynamodbtypes "github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// Table identifies the analytics table a record belongs to.
type Table int

const (
	TableUnknown Table = iota
	TableCalls
	TableScorecards
)

func (t Table) String() string {
	switch t {
	case TableCalls:
		return "calls"
	case TableScorecards:
		return "scorecards"
	default:
		return "unknown"
	}
}

// ParseTable maps a kind name ("calls", "scorecards") to a Table.
func ParseTable(s string) (Table, bool) {
	switch s {
	case "calls":
		return TableCalls, true
	case "scorecards":
		return TableScorecards, true
	}
	return TableUnknown, false
}

// Item is a raw DynamoDB item as delivered by a stream image or a scan page.
type Item = map[string]dynamodbtypes.AttributeValue

// Unknown is used for every partition attribute when the source timestamp can't be parsed.
const Unknown = "unknown"

type PartitionKey struct {
	Year  string
	Month string
	Day   string
}

var UnknownPartition = PartitionKey{Year: Unknown, Month: Unknown, Day: Unknown}

// Prefix renders the object store location prefix for the partition.
func (p PartitionKey) Prefix(table string) string {
	return fmt.Sprintf("%s/year=%s/month=%s/day=%s/", table, p.Year, p.Month, p.Day)
}

// Values returns the partition values in catalog key order.
func (p PartitionKey) Values() []string {
	return []string{p.Year, p.Month, p.Day}
}

// Record is one flattened analytic row. Partition is only ever encoded in the
// storage location; Body is what gets serialized.
type Record struct {
	Table     Table
	Partition PartitionKey
	Body      any
}

type CallRow struct {
	CallID              string `json:"call_id"`
	CallTimestampUTC    string `json:"call_timestamp_utc"`
	AgentID             string `json:"agent_id"`
	AgentName           string `json:"agent_name"`
	Allocation          string `json:"allocation"`
	Direction           string `json:"direction"`
	FileName            string `json:"file_name"`
	FirstOrFollowUp     string `json:"first_or_follow_up"`
	Medium              string `json:"medium"`
	Program             string `json:"program"`
	QueueID             string `json:"queue_id"`
	QueueName           string `json:"queue_name"`
	SessionID           string `json:"session_id"`
	SiteID              int64  `json:"site_id"`
	SiteName            string `json:"site_name"`
	TenantID            int64  `json:"tenant_id"`
	S3Bucket            string `json:"s3_bucket"`
	CallDurationSeconds int    `json:"call_duration_seconds"`
	AnswerType          string `json:"answer_type"`
	TranscriptS3Key     string `json:"transcript_s3_key"`
}

type ScorecardRow struct {
	GUID             string  `json:"guid"`
	Datetime         string  `json:"datetime"`
	Agent            string  `json:"agent"`
	CallType         string  `json:"call_type"`
	IngestedAt       string  `json:"ingested_at"`
	Notes            string  `json:"notes"`
	Outcome          string  `json:"outcome"`
	OverallScore     float64 `json:"overall_score"`
	PrimaryIntent    string  `json:"primary_intent"`
	ResolutionReason string  `json:"resolution_reason"`
	Summary          string  `json:"summary"`
	SecondaryIntent  string  `json:"secondary_intent"`

	ScoreAskForPayment         float64 `json:"score_ask_for_payment"`
	ScoreConfirmLocation       float64 `json:"score_confirm_location"`
	ScoreFeaturesAdvantages    float64 `json:"score_features_advantages"`
	ScoreHandleObjections      float64 `json:"score_handle_objections"`
	ScoreSizeRecommendation    float64 `json:"score_size_recommendation"`
	ScoreUrgency               float64 `json:"score_urgency"`
	EvidenceAskForPayment      string  `json:"evidence_ask_for_payment"`
	EvidenceConfirmLocation    string  `json:"evidence_confirm_location"`
	EvidenceFeaturesAdvantages string  `json:"evidence_features_advantages"`
	EvidenceHandleObjections   string  `json:"evidence_handle_objections"`
	EvidenceSizeRecommendation string  `json:"evidence_size_recommendation"`
	EvidenceUrgency            string  `json:"evidence_urgency"`
}

// Enrichment is the transcript-derived metadata for one call. The zero value is
// what every failed or skipped lookup produces.
type Enrichment struct {
	DurationSeconds int
	TranscriptKey   string
	SpeakerCount    int
}

type AnswerType string

const (
	AnswerUnknown   AnswerType = "Unknown"
	AnswerNoAnswer  AnswerType = "NoAnswer"
	AnswerHuman     AnswerType = "Human"
	AnswerVoicemail AnswerType = "Voicemail"
)
