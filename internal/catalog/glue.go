// Package catalog registers written partitions in the Glue Data Catalog.
package catalog

import (
	"context"
	"errors"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/glue"
	gluetypes "github.com/aws/aws-sdk-go-v2/service/glue/types"
	"github.com/aws/smithy-go"
	"github.com/zeebo/errs"

	"call-analytics-go/internal/types"
)

// Error is the class of catalog registration failures.
var Error = errs.Class("catalog")

const alreadyExistsCode = "AlreadyExistsException"

// GlueAPI is the part of the Glue client used for partition registration.
type GlueAPI interface {
	GetTable(ctx context.Context, params *glue.GetTableInput, optFns ...func(*glue.Options)) (*glue.GetTableOutput, error)
	BatchCreatePartition(ctx context.Context, params *glue.BatchCreatePartitionInput, optFns ...func(*glue.Options)) (*glue.BatchCreatePartitionOutput, error)
}

// Glue creates partitions if they are absent. It keeps no state, so any number
// of pipeline runs may register the same partition concurrently.
type Glue struct {
	api      GlueAPI
	database string
}

func NewGlue(api GlueAPI, database string) *Glue {
	return &Glue{api: api, database: database}
}

// EnsurePartition creates the (year, month, day) partition of table pointing
// at location. An already registered partition is not an error.
func (g *Glue) EnsurePartition(ctx context.Context, table string, key types.PartitionKey, location string) error {
	out, err := g.api.GetTable(ctx, &glue.GetTableInput{
		DatabaseName: aws.String(g.database),
		Name:         aws.String(table),
	})
	if err != nil {
		return Error.New("get table %s.%s: %v", g.database, table, err)
	}
	if out.Table == nil || out.Table.StorageDescriptor == nil {
		return Error.New("table %s.%s has no storage descriptor", g.database, table)
	}
	sd := out.Table.StorageDescriptor

	resp, err := g.api.BatchCreatePartition(ctx, &glue.BatchCreatePartitionInput{
		DatabaseName: aws.String(g.database),
		TableName:    aws.String(table),
		PartitionInputList: []gluetypes.PartitionInput{{
			Values: key.Values(),
			StorageDescriptor: &gluetypes.StorageDescriptor{
				Columns:      sd.Columns,
				InputFormat:  sd.InputFormat,
				OutputFormat: sd.OutputFormat,
				SerdeInfo:    sd.SerdeInfo,
				Location:     aws.String(location),
			},
		}},
	})
	if err != nil {
		if isAlreadyExists(err, "") {
			return nil
		}
		return Error.Wrap(err)
	}
	for _, pe := range resp.Errors {
		code, msg := "", ""
		if pe.ErrorDetail != nil {
			code = aws.ToString(pe.ErrorDetail.ErrorCode)
			msg = aws.ToString(pe.ErrorDetail.ErrorMessage)
		}
		if isAlreadyExists(nil, code) {
			continue
		}
		return Error.New("create partition %v: %s: %s", pe.PartitionValues, code, msg)
	}
	return nil
}

// isAlreadyExists is the single create-or-ignore decision for both the typed
// error path and the per-partition errors of a batch response.
func isAlreadyExists(err error, code string) bool {
	if err != nil {
		var exists *gluetypes.AlreadyExistsException
		if errors.As(err, &exists) {
			return true
		}
		var apiErr smithy.APIError
		if errors.As(err, &apiErr) {
			code = apiErr.ErrorCode()
		}
	}
	return code == alreadyExistsCode
}
