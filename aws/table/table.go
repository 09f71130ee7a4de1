package table

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	ddbtypes "github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/aws/smithy-go"
)

// Scanner is the one DynamoDB operation this package needs, satisfied by
// *dynamodb.Client.
type Scanner interface {
	Scan(ctx context.Context, params *dynamodb.ScanInput, optFns ...func(*dynamodb.Options)) (*dynamodb.ScanOutput, error)
}

// TransactionRecord is a pending transaction as stored in the state table.
type TransactionRecord struct {
	ExternalID    string `dynamodbav:"external_id"`
	Reason        string `dynamodbav:"reason"`
	SourceAccount string `dynamodbav:"source_account_number"`
}

// Table reads pending transactions out of the DynamoDB state table.
type Table struct {
	client     Scanner
	name       string
	projection string
}

// New builds a table reader. projection limits the attributes fetched per
// item; empty means full items.
func New(client Scanner, name, projection string) *Table {
	return &Table{client: client, name: name, projection: projection}
}

// ScanAll walks the whole table, following pagination until the last page,
// and unmarshals every item.
func (t *Table) ScanAll(ctx context.Context) ([]TransactionRecord, error) {
	var records []TransactionRecord
	var startKey map[string]ddbtypes.AttributeValue
	pages := 0

	for {
		input := &dynamodb.ScanInput{
			TableName:         aws.String(t.name),
			ExclusiveStartKey: startKey,
		}
		if t.projection != "" {
			input.ProjectionExpression = aws.String(t.projection)
		}
		out, err := t.client.Scan(ctx, input)
		if err != nil {
			var apiErr smithy.APIError
			if errors.As(err, &apiErr) {
				return nil, fmt.Errorf("scan of %s failed with %s: %w", t.name, apiErr.ErrorCode(), err)
			}
			return nil, fmt.Errorf("scan of %s failed: %w", t.name, err)
		}

		var pageRecords []TransactionRecord
		if err := attributevalue.UnmarshalListOfMaps(out.Items, &pageRecords); err != nil {
			return nil, fmt.Errorf("could not unmarshal items of %s: %w", t.name, err)
		}
		records = append(records, pageRecords...)
		pages++

		startKey = out.LastEvaluatedKey
		if len(startKey) == 0 {
			break
		}
	}
	slog.DebugContext(ctx, "Scanned table", "table", t.name, "pages", pages, "records", len(records))
	return records, nil
}
