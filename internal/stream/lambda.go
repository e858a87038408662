package stream

import (
	"context"
	"strings"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambdacontext"
	dynamodbtypes "github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"call-analytics-go/internal/logger"
	"call-analytics-go/internal/types"
)

// Response is returned to the Lambda runtime after a successful batch.
type Response struct {
	StatusCode int `json:"statusCode"`
	Processed  int `json:"processed"`
	Calls      int `json:"calls"`
	Scorecards int `json:"scorecards"`
}

// Handler is the Lambda function for DynamoDB Streams triggers.
type Handler struct {
	processor *Processor
	log       *logger.Logger
}

func NewHandler(p *Processor, log *logger.Logger) *Handler {
	return &Handler{processor: p, log: log}
}

// Handle processes one stream batch. A returned error makes Lambda retry the
// batch, which is safe because every write creates a new object.
func (h *Handler) Handle(ctx context.Context, ev events.DynamoDBEvent) (Response, error) {
	var reqID string
	if lc, ok := lambdacontext.FromContext(ctx); ok {
		reqID = lc.AwsRequestID
	}
	log := h.log.WithInvocation(reqID)

	sum, err := h.processor.Process(ctx, FromLambda(h.processor.cfg.Resolve, ev), log)
	if err != nil {
		log.WithError(err).Error("batch failed")
		return Response{}, err
	}
	return Response{
		StatusCode: 200,
		Processed:  sum.Processed(),
		Calls:      sum.Calls,
		Scorecards: sum.Scorecards,
	}, nil
}

// FromLambda converts Lambda stream records into change events, resolving each
// record's table through resolve.
func FromLambda(resolve func(string) (types.Table, bool), ev events.DynamoDBEvent) []ChangeEvent {
	out := make([]ChangeEvent, 0, len(ev.Records))
	for _, r := range ev.Records {
		source := TableFromARN(r.EventSourceArn)
		table, _ := resolve(source)
		ce := ChangeEvent{
			Name:   EventName(r.EventName),
			Source: source,
			Table:  table,
		}
		if len(r.Change.NewImage) > 0 {
			ce.Image = ConvertImage(r.Change.NewImage)
		}
		out = append(out, ce)
	}
	return out
}

// TableFromARN extracts the table name from a stream ARN such as
// arn:aws:dynamodb:us-east-1:123456789012:table/calls/stream/2026-02-11T10:30:00.000.
func TableFromARN(arn string) string {
	_, rest, ok := strings.Cut(arn, ":table/")
	if !ok {
		return ""
	}
	name, _, _ := strings.Cut(rest, "/")
	return name
}

// ConvertImage maps a Lambda stream image onto SDK attribute values.
func ConvertImage(image map[string]events.DynamoDBAttributeValue) types.Item {
	item := make(types.Item, len(image))
	for k, v := range image {
		if av := convert(v); av != nil {
			item[k] = av
		}
	}
	return item
}

func convert(v events.DynamoDBAttributeValue) dynamodbtypes.AttributeValue {
	switch v.DataType() {
	case events.DataTypeString:
		return &dynamodbtypes.AttributeValueMemberS{Value: v.String()}
	case events.DataTypeNumber:
		return &dynamodbtypes.AttributeValueMemberN{Value: v.Number()}
	case events.DataTypeBoolean:
		return &dynamodbtypes.AttributeValueMemberBOOL{Value: v.Boolean()}
	case events.DataTypeNull:
		return &dynamodbtypes.AttributeValueMemberNULL{Value: true}
	case events.DataTypeBinary:
		return &dynamodbtypes.AttributeValueMemberB{Value: v.Binary()}
	case events.DataTypeBinarySet:
		return &dynamodbtypes.AttributeValueMemberBS{Value: v.BinarySet()}
	case events.DataTypeStringSet:
		return &dynamodbtypes.AttributeValueMemberSS{Value: v.StringSet()}
	case events.DataTypeNumberSet:
		return &dynamodbtypes.AttributeValueMemberNS{Value: v.NumberSet()}
	case events.DataTypeMap:
		return &dynamodbtypes.AttributeValueMemberM{Value: ConvertImage(v.Map())}
	case events.DataTypeList:
		list := make([]dynamodbtypes.AttributeValue, 0, len(v.List()))
		for _, item := range v.List() {
			if av := convert(item); av != nil {
				list = append(list, av)
			}
		}
		return &dynamodbtypes.AttributeValueMemberL{Value: list}
	}
	return nil
}
