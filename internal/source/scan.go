// Package source reads raw items from a DynamoDB table for bulk backfill.
package source

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/zeebo/errs"

	"call-analytics-go/internal/types"
)

// Error is the class of scan failures.
var Error = errs.Class("source")

// Scanner walks every item of one table, a page at a time.
type Scanner struct {
	api      dynamodb.ScanAPIClient
	pageSize int32
}

// NewScanner returns a Scanner. A pageSize of zero leaves the page limit to
// DynamoDB.
func NewScanner(api dynamodb.ScanAPIClient, pageSize int32) *Scanner {
	return &Scanner{api: api, pageSize: pageSize}
}

// Scan calls fn with every page of table in scan order. It stops at the first
// error returned by fn, the scan or ctx.
func (s *Scanner) Scan(ctx context.Context, table string, fn func(ctx context.Context, page []types.Item) error) error {
	input := &dynamodb.ScanInput{TableName: aws.String(table)}
	if s.pageSize > 0 {
		input.Limit = aws.Int32(s.pageSize)
	}

	pages := dynamodb.NewScanPaginator(s.api, input)
	for pages.HasMorePages() {
		if err := ctx.Err(); err != nil {
			return err
		}
		out, err := pages.NextPage(ctx)
		if err != nil {
			return Error.New("scan %s: %w", table, err)
		}
		if len(out.Items) == 0 {
			continue
		}
		if err := fn(ctx, out.Items); err != nil {
			return err
		}
	}
	return nil
}
