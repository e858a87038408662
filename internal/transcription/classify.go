package transcription

import "call-analytics-go/internal/types"

// Classify infers how a call was answered from its duration and speaker count.
// The checks apply in order.
func Classify(durationSeconds, speakers int) types.AnswerType {
	switch {
	case durationSeconds == 0:
		return types.AnswerUnknown
	case durationSeconds < 10:
		return types.AnswerNoAnswer
	case speakers >= 2:
		return types.AnswerHuman
	case speakers == 1:
		return types.AnswerVoicemail
	case durationSeconds > 30:
		return types.AnswerHuman
	default:
		return types.AnswerUnknown
	}
}
