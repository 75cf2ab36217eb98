package document

import (
	"context"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	dynamostore "github.com/HarshaM0211/jira-software/pkg/store/dynamodb"
)

// ErrConditionFailed is returned by DynamoExecutor when a condition
// expression rejects a write.
var ErrConditionFailed = errors.New("condition check failed")

// Condition is a DynamoDB condition or filter expression with its
// placeholders.
type Condition struct {
	Expression string
	Names      map[string]string
	Values     map[string]types.AttributeValue
}

// DynamoExecutor defines the item execution contract for DynamoDB-backed ports.
type DynamoExecutor interface {
	PutItem(ctx context.Context, table string, item map[string]types.AttributeValue, cond *Condition) error
	// GetItem returns a nil item when the key is absent.
	GetItem(ctx context.Context, table string, key map[string]types.AttributeValue) (map[string]types.AttributeValue, error)
	DeleteItem(ctx context.Context, table string, key map[string]types.AttributeValue) error
	BatchWriteItem(ctx context.Context, table string, requests []types.WriteRequest) ([]types.WriteRequest, error)
	Scan(ctx context.Context, table string, filter *Condition, startKey map[string]types.AttributeValue) (items []map[string]types.AttributeValue, lastKey map[string]types.AttributeValue, err error)
	NextSequence(ctx context.Context, table, name string) (int64, error)
}

// DynamoDBExecutor adapts store/dynamodb adapter to the DynamoExecutor contract.
type DynamoDBExecutor struct {
	adapter *dynamostore.Adapter
}

// NewDynamoDBExecutor creates a new DynamoDBExecutor instance.
func NewDynamoDBExecutor(adapter *dynamostore.Adapter) (*DynamoDBExecutor, error) {
	if adapter == nil {
		return nil, fmt.Errorf("dynamodb adapter is required")
	}
	return &DynamoDBExecutor{adapter: adapter}, nil
}

func (e *DynamoDBExecutor) PutItem(ctx context.Context, table string, item map[string]types.AttributeValue, cond *Condition) error {
	input := &dynamodb.PutItemInput{TableName: aws.String(table), Item: item}
	if cond != nil {
		input.ConditionExpression = aws.String(cond.Expression)
		input.ExpressionAttributeNames = cond.Names
		input.ExpressionAttributeValues = cond.Values
	}
	_, err := e.adapter.PutItem(ctx, input)
	if dynamostore.IsConditionFailed(err) {
		return ErrConditionFailed
	}
	return err
}

func (e *DynamoDBExecutor) GetItem(ctx context.Context, table string, key map[string]types.AttributeValue) (map[string]types.AttributeValue, error) {
	out, err := e.adapter.GetItem(ctx, &dynamodb.GetItemInput{
		TableName:      aws.String(table),
		Key:            key,
		ConsistentRead: aws.Bool(true),
	})
	if err != nil {
		return nil, err
	}
	if len(out.Item) == 0 {
		return nil, nil
	}
	return out.Item, nil
}

func (e *DynamoDBExecutor) DeleteItem(ctx context.Context, table string, key map[string]types.AttributeValue) error {
	_, err := e.adapter.DeleteItem(ctx, &dynamodb.DeleteItemInput{TableName: aws.String(table), Key: key})
	return err
}

func (e *DynamoDBExecutor) BatchWriteItem(ctx context.Context, table string, requests []types.WriteRequest) ([]types.WriteRequest, error) {
	out, err := e.adapter.BatchWriteItem(ctx, &dynamodb.BatchWriteItemInput{
		RequestItems: map[string][]types.WriteRequest{table: requests},
	})
	if err != nil {
		return nil, err
	}
	return out.UnprocessedItems[table], nil
}

func (e *DynamoDBExecutor) Scan(ctx context.Context, table string, filter *Condition, startKey map[string]types.AttributeValue) ([]map[string]types.AttributeValue, map[string]types.AttributeValue, error) {
	input := &dynamodb.ScanInput{
		TableName:         aws.String(table),
		ExclusiveStartKey: startKey,
		ConsistentRead:    aws.Bool(true),
	}
	if filter != nil && filter.Expression != "" {
		input.FilterExpression = aws.String(filter.Expression)
		input.ExpressionAttributeNames = filter.Names
		input.ExpressionAttributeValues = filter.Values
	}
	out, err := e.adapter.Scan(ctx, input)
	if err != nil {
		return nil, nil, err
	}
	return out.Items, out.LastEvaluatedKey, nil
}

// NextSequence atomically increments the counter item keyed by name in
// table. The counter table uses "id" as its partition key.
func (e *DynamoDBExecutor) NextSequence(ctx context.Context, table, name string) (int64, error) {
	out, err := e.adapter.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:                 aws.String(table),
		Key:                       map[string]types.AttributeValue{"id": &types.AttributeValueMemberS{Value: name}},
		UpdateExpression:          aws.String("ADD #seq :one"),
		ExpressionAttributeNames:  map[string]string{"#seq": "seq"},
		ExpressionAttributeValues: map[string]types.AttributeValue{":one": &types.AttributeValueMemberN{Value: "1"}},
		ReturnValues:              types.ReturnValueUpdatedNew,
	})
	if err != nil {
		return 0, fmt.Errorf("failed to advance sequence %s: %w", name, err)
	}
	return Int64Attr(out.Attributes, "seq")
}

// DynamoSequence returns a KeyFunc backed by a counter item.
func DynamoSequence(executor DynamoExecutor, table, name string) KeyFunc[int64] {
	return func(ctx context.Context) (int64, error) {
		return executor.NextSequence(ctx, table, name)
	}
}
