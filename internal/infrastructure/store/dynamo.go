package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// DynamoStore persists documents in DynamoDB, one table per collection.
// Table names are <prefix>-<collection>, e.g. shopmate-products.
type DynamoStore struct {
	client      *dynamodb.Client
	tablePrefix string
}

func NewDynamoStore(client *dynamodb.Client, tablePrefix string) *DynamoStore {
	return &DynamoStore{client: client, tablePrefix: tablePrefix}
}

func (s *DynamoStore) tableName(collection string) string {
	return s.tablePrefix + "-" + collection
}

func (s *DynamoStore) Get(ctx context.Context, collection string, key Key, out any) (bool, error) {
	av, err := attributevalue.MarshalMap(map[string]any(key))
	if err != nil {
		return false, fmt.Errorf("failed to marshal key: %w", err)
	}

	result, err := s.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(s.tableName(collection)),
		Key:       av,
	})
	if err != nil {
		return false, fmt.Errorf("failed to get item from %s: %w", collection, err)
	}
	if result.Item == nil {
		return false, nil
	}

	if err := attributevalue.UnmarshalMap(result.Item, out); err != nil {
		return false, fmt.Errorf("failed to unmarshal item: %w", err)
	}
	return true, nil
}

func (s *DynamoStore) Put(ctx context.Context, collection string, item any) error {
	av, err := attributevalue.MarshalMap(item)
	if err != nil {
		return fmt.Errorf("failed to marshal item: %w", err)
	}

	_, err = s.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(s.tableName(collection)),
		Item:      av,
	})
	if err != nil {
		return fmt.Errorf("failed to put item into %s: %w", collection, err)
	}
	return nil
}

func (s *DynamoStore) Scan(ctx context.Context, collection string, filter *Filter, out any) error {
	input := &dynamodb.ScanInput{
		TableName: aws.String(s.tableName(collection)),
		Limit:     aws.Int32(ScanLimit),
	}

	if filter != nil {
		value, err := attributevalue.Marshal(filter.Equals)
		if err != nil {
			return fmt.Errorf("failed to marshal filter value: %w", err)
		}
		input.FilterExpression = aws.String("#f = :v")
		input.ExpressionAttributeNames = map[string]string{"#f": filter.Field}
		input.ExpressionAttributeValues = map[string]types.AttributeValue{":v": value}
	}

	result, err := s.client.Scan(ctx, input)
	if err != nil {
		return fmt.Errorf("failed to scan %s: %w", collection, err)
	}

	if err := attributevalue.UnmarshalListOfMaps(result.Items, out); err != nil {
		return fmt.Errorf("failed to unmarshal scan result: %w", err)
	}
	return nil
}

func (s *DynamoStore) Delete(ctx context.Context, collection string, key Key) error {
	av, err := attributevalue.MarshalMap(map[string]any(key))
	if err != nil {
		return fmt.Errorf("failed to marshal key: %w", err)
	}

	_, err = s.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName: aws.String(s.tableName(collection)),
		Key:       av,
	})
	if err != nil {
		return fmt.Errorf("failed to delete item from %s: %w", collection, err)
	}
	return nil
}

func (s *DynamoStore) Update(ctx context.Context, collection string, key Key, set map[string]any, out any) (bool, error) {
	keyAV, err := attributevalue.MarshalMap(map[string]any(key))
	if err != nil {
		return false, fmt.Errorf("failed to marshal key: %w", err)
	}

	expr := "SET "
	names := map[string]string{"#k": KeyField(collection)}
	values := map[string]types.AttributeValue{}
	i := 0
	for field, value := range set {
		if i > 0 {
			expr += ", "
		}
		name := fmt.Sprintf("#f%d", i)
		placeholder := fmt.Sprintf(":v%d", i)
		av, err := attributevalue.Marshal(value)
		if err != nil {
			return false, fmt.Errorf("failed to marshal field %s: %w", field, err)
		}
		expr += name + " = " + placeholder
		names[name] = field
		values[placeholder] = av
		i++
	}

	result, err := s.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:                 aws.String(s.tableName(collection)),
		Key:                       keyAV,
		UpdateExpression:          aws.String(expr),
		ConditionExpression:       aws.String("attribute_exists(#k)"),
		ExpressionAttributeNames:  names,
		ExpressionAttributeValues: values,
		ReturnValues:              types.ReturnValueAllNew,
	})
	if err != nil {
		var conditionFailed *types.ConditionalCheckFailedException
		if errors.As(err, &conditionFailed) {
			return false, nil
		}
		return false, fmt.Errorf("failed to update item in %s: %w", collection, err)
	}

	if out != nil {
		if err := attributevalue.UnmarshalMap(result.Attributes, out); err != nil {
			return false, fmt.Errorf("failed to unmarshal updated item: %w", err)
		}
	}
	return true, nil
}
