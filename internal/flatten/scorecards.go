package flatten

import (
	"context"
	"strconv"
	"strings"

	"call-analytics-go/internal/decode"
	"call-analytics-go/internal/transcription"
	"call-analytics-go/internal/types"
)

type category struct {
	score    float64
	evidence string
}

// Scorecard flattens a quality scorecard item. Scorecards are not enriched, so
// the enricher argument is ignored; it is accepted so that both flatteners
// share one signature.
func Scorecard(_ context.Context, item types.Item, _ transcription.Enricher) (types.Record, error) {
	guid := decode.String(item, "guid")
	if strings.TrimSpace(guid) == "" {
		return types.Record{}, ErrMissingID
	}

	dtRaw := decode.String(item, "datetime")

	var overall float64
	if n, ok := decode.Number(item, "overallScore"); ok {
		f, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		if err != nil || !finite(f) {
			return types.Record{}, Error.New("scorecard %s: bad overallScore %q", guid, n)
		}
		overall = f
	}

	scores, ok := decode.Value(item["scores"]).(map[string]any)
	if !ok {
		scores = map[string]any{}
	}
	cat := func(name string) category {
		entry, ok := scores[name].(map[string]any)
		if !ok {
			return category{}
		}
		return category{score: float(entry, "score"), evidence: str(entry, "evidence")}
	}

	askForPayment := cat("askForPayment")
	confirmLocation := cat("confirmLocation")
	features := cat("featuresAdvantagesBenefits")
	objections := cat("handleObjections")
	sizing := cat("sizeRecommendation")
	urgency := cat("urgency")

	row := types.ScorecardRow{
		GUID:             guid,
		Datetime:         dtRaw,
		Agent:            decode.String(item, "agent"),
		CallType:         decode.String(item, "callType"),
		IngestedAt:       decode.String(item, "ingestedAt"),
		Notes:            decode.String(item, "notes"),
		Outcome:          decode.String(item, "outcome"),
		OverallScore:     overall,
		PrimaryIntent:    decode.String(item, "primaryIntent"),
		ResolutionReason: decode.String(item, "resolutionReason"),
		Summary:          decode.String(item, "summary"),
		SecondaryIntent:  decode.String(item, "secondaryIntent"),

		ScoreAskForPayment:         askForPayment.score,
		ScoreConfirmLocation:       confirmLocation.score,
		ScoreFeaturesAdvantages:    features.score,
		ScoreHandleObjections:      objections.score,
		ScoreSizeRecommendation:    sizing.score,
		ScoreUrgency:               urgency.score,
		EvidenceAskForPayment:      askForPayment.evidence,
		EvidenceConfirmLocation:    confirmLocation.evidence,
		EvidenceFeaturesAdvantages: features.evidence,
		EvidenceHandleObjections:   objections.evidence,
		EvidenceSizeRecommendation: sizing.evidence,
		EvidenceUrgency:            urgency.evidence,
	}

	return types.Record{
		Table:     types.TableScorecards,
		Partition: partitionFromDatePrefix(dtRaw),
		Body:      row,
	}, nil
}
