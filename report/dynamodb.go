package report

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/webtest-hq/browser-test-harness/framework/runner"
)

// Schema of the DynamoDB results table.
const (
	tablePartitionKey = "test_file"
	tableSortKey      = "key"
	recordAttribute   = "record"
)

// DynamoDBSink writes one item per record. The sort key encodes the emission
// sequence so a range query returns records in order.
type DynamoDBSink struct {
	client *dynamodb.Client
	table  string
	seq    int
}

func NewDynamoDBSink(ctx context.Context, table string) (*DynamoDBSink, error) {
	cfg, err := config.LoadDefaultConfig(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS configuration: %w", err)
	}
	return &DynamoDBSink{client: dynamodb.NewFromConfig(cfg), table: table}, nil
}

func (s *DynamoDBSink) Write(rec runner.Record) error {
	data, err := EncodeRecord(rec)
	if err != nil {
		return err
	}
	s.seq++
	_, err = s.client.PutItem(context.Background(), &dynamodb.PutItemInput{
		TableName: aws.String(s.table),
		Item: map[string]types.AttributeValue{
			tablePartitionKey: &types.AttributeValueMemberS{Value: rec.TestFile},
			tableSortKey:      &types.AttributeValueMemberS{Value: fmt.Sprintf("%06d/%s", s.seq, rec.Test)},
			recordAttribute:   &types.AttributeValueMemberS{Value: string(data)},
		},
	})
	return err
}
