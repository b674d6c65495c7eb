package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// DynamoDBAPI interface for mocking
type DynamoDBAPI interface {
	PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	GetItem(ctx context.Context, params *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
	Scan(ctx context.Context, params *dynamodb.ScanInput, optFns ...func(*dynamodb.Options)) (*dynamodb.ScanOutput, error)
}

type DynamoDBCustomerStorage struct {
	client    DynamoDBAPI
	tableName string
}

func NewDynamoDBCustomerStorage(client DynamoDBAPI, tableName string) *DynamoDBCustomerStorage {
	return &DynamoDBCustomerStorage{
		client:    client,
		tableName: tableName,
	}
}

func (d *DynamoDBCustomerStorage) CreateCustomer(ctx context.Context, customer *Customer) error {
	if customer.CreatedAt.IsZero() {
		customer.CreatedAt = time.Now()
	}
	customer.UpdatedAt = customer.CreatedAt

	err := d.putCustomer(ctx, customer, "attribute_not_exists(id)")
	if isConditionFailure(err) {
		return fmt.Errorf("customer %s: %w", customer.ID, ErrCustomerExists)
	}
	if err != nil {
		return fmt.Errorf("failed to put customer: %w", err)
	}

	return nil
}

func (d *DynamoDBCustomerStorage) GetCustomer(ctx context.Context, customerID string) (*Customer, error) {
	result, err := d.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(d.tableName),
		Key: map[string]types.AttributeValue{
			"id": &types.AttributeValueMemberS{Value: customerID},
		},
		ConsistentRead: aws.Bool(true),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get customer: %w", err)
	}

	if result.Item == nil {
		return nil, fmt.Errorf("customer %s: %w", customerID, ErrCustomerNotFound)
	}

	var customer Customer
	if err := attributevalue.UnmarshalMap(result.Item, &customer); err != nil {
		return nil, fmt.Errorf("failed to unmarshal customer: %w", err)
	}

	return &customer, nil
}

func (d *DynamoDBCustomerStorage) UpdateCustomer(ctx context.Context, customer *Customer) error {
	customer.UpdatedAt = time.Now()

	err := d.putCustomer(ctx, customer, "attribute_exists(id)")
	if isConditionFailure(err) {
		return fmt.Errorf("customer %s: %w", customer.ID, ErrCustomerNotFound)
	}
	if err != nil {
		return fmt.Errorf("failed to update customer: %w", err)
	}

	return nil
}

// GetAllCustomers scans the whole table, following pagination
func (d *DynamoDBCustomerStorage) GetAllCustomers(ctx context.Context) ([]*Customer, error) {
	var customers []*Customer
	var startKey map[string]types.AttributeValue

	for {
		result, err := d.client.Scan(ctx, &dynamodb.ScanInput{
			TableName:         aws.String(d.tableName),
			ExclusiveStartKey: startKey,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to scan customers: %w", err)
		}

		for _, item := range result.Items {
			var customer Customer
			if err := attributevalue.UnmarshalMap(item, &customer); err != nil {
				return nil, fmt.Errorf("failed to unmarshal customer: %w", err)
			}
			customers = append(customers, &customer)
		}

		if len(result.LastEvaluatedKey) == 0 {
			break
		}
		startKey = result.LastEvaluatedKey
	}

	return customers, nil
}

func (d *DynamoDBCustomerStorage) putCustomer(ctx context.Context, customer *Customer, condition string) error {
	item, err := attributevalue.MarshalMap(customer)
	if err != nil {
		return fmt.Errorf("failed to marshal customer: %w", err)
	}

	_, err = d.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:           aws.String(d.tableName),
		Item:                item,
		ConditionExpression: aws.String(condition),
	})
	return err
}

func isConditionFailure(err error) bool {
	var ccf *types.ConditionalCheckFailedException
	return errors.As(err, &ccf)
}
