package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	dyn "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/ecomplus/app-google-analytics/internal/aws"
)

// ErrNoAuth indicates no Store API credential record exists for the store.
// The webhook maps it to 412 rather than 500: a store that never finished
// the install flow is a caller problem, not a downstream failure.
var ErrNoAuth = errors.New("no authentication found for store")

// Credentials is the per-store Store API credential record persisted by
// the install callback and read on every webhook.
type Credentials struct {
	StoreID          string    `dynamodbav:"store_id" json:"store_id"` // PK
	AuthenticationID string    `dynamodbav:"authentication_id" json:"authentication_id"`
	APIKey           string    `dynamodbav:"api_key" json:"api_key"`
	ApplicationID    string    `dynamodbav:"application_id" json:"application_id"`
	UpdatedAt        time.Time `dynamodbav:"updated_at" json:"updated_at"`
}

// Store persists per-store credentials in DynamoDB.
type Store struct {
	client    aws.DynamoDBAPI
	tableName string
	nowFunc   func() time.Time
}

// NewStore creates a credential Store bound to a table.
func NewStore(client aws.DynamoDBAPI, tableName string) *Store {
	return &Store{
		client:    client,
		tableName: tableName,
		nowFunc:   time.Now,
	}
}

// Get fetches credentials by store id. Returns ErrNoAuth when no record exists.
func (s *Store) Get(ctx context.Context, storeID string) (*Credentials, error) {
	out, err := s.client.GetItem(ctx, &dyn.GetItemInput{
		TableName: &s.tableName,
		Key: map[string]types.AttributeValue{
			"store_id": &types.AttributeValueMemberS{Value: storeID},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("get item: %w", err)
	}
	if len(out.Item) == 0 {
		return nil, ErrNoAuth
	}
	var creds Credentials
	if err := attributevalue.UnmarshalMap(out.Item, &creds); err != nil {
		return nil, fmt.Errorf("unmarshal credentials: %w", err)
	}
	return &creds, nil
}

// Put upserts the credential record for a store. The install callback may
// run more than once; last write wins.
func (s *Store) Put(ctx context.Context, creds Credentials) error {
	creds.UpdatedAt = s.nowFunc()
	item, err := attributevalue.MarshalMap(creds)
	if err != nil {
		return fmt.Errorf("marshal credentials: %w", err)
	}
	if _, err := s.client.PutItem(ctx, &dyn.PutItemInput{
		TableName: &s.tableName,
		Item:      item,
	}); err != nil {
		return fmt.Errorf("put item: %w", err)
	}
	return nil
}
