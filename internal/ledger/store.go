package ledger

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	dyn "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/ecomplus/app-google-analytics/internal/aws"
)

// Store is the dedup ledger over DynamoDB: one record per order holding
// the set of analytics event names already delivered for it.
type Store struct {
	client    aws.DynamoDBAPI
	tableName string
	ttlWindow time.Duration // 0 disables the expires_at TTL attribute
	nowFunc   func() time.Time
}

// NewStore returns a Store bound to the ledger table.
// ttlWindow bounds table growth; within the window the sent set only grows.
func NewStore(client aws.DynamoDBAPI, tableName string, ttlWindow time.Duration) *Store {
	return &Store{
		client:    client,
		tableName: tableName,
		ttlWindow: ttlWindow,
		nowFunc:   time.Now,
	}
}

// GetSent returns the set of event names already delivered for orderID.
// Returns an empty set when no record exists. The read is strongly
// consistent so a retry landing right after a delivery sees the append.
func (s *Store) GetSent(ctx context.Context, orderID string) (map[string]struct{}, error) {
	input := &dyn.GetItemInput{
		TableName: &s.tableName,
		Key: map[string]types.AttributeValue{
			"order_id": &types.AttributeValueMemberS{Value: orderID},
		},
		ConsistentRead: awsBool(true),
	}
	out, err := s.client.GetItem(ctx, input)
	if err != nil {
		return nil, fmt.Errorf("get item: %w", err)
	}
	sent := map[string]struct{}{}
	if len(out.Item) == 0 {
		return sent, nil
	}
	var rec Record
	if err := attributevalue.UnmarshalMap(out.Item, &rec); err != nil {
		return nil, fmt.Errorf("unmarshal item: %w", err)
	}
	for _, name := range rec.SentEvents {
		sent[name] = struct{}{}
	}
	return sent, nil
}

// AppendSent merges names into the order's sent set as a single atomic
// UpdateItem. ADD on a string set is a server-side merge, so two
// concurrent invocations appending for the same order cannot lose names.
// The set never shrinks.
func (s *Store) AppendSent(ctx context.Context, orderID, storeID string, names []string) error {
	if len(names) == 0 {
		return nil
	}
	now := s.nowFunc()

	updateExpr := "SET store_id = if_not_exists(store_id, :sid), updated_at = :ua ADD sent_events :names"
	exprValues := map[string]types.AttributeValue{
		":sid":   &types.AttributeValueMemberS{Value: storeID},
		":ua":    &types.AttributeValueMemberS{Value: now.Format(time.RFC3339)},
		":names": &types.AttributeValueMemberSS{Value: names},
	}
	if s.ttlWindow > 0 {
		updateExpr = "SET store_id = if_not_exists(store_id, :sid), updated_at = :ua, expires_at = if_not_exists(expires_at, :exp) ADD sent_events :names"
		exprValues[":exp"] = &types.AttributeValueMemberN{Value: fmt.Sprintf("%d", now.Add(s.ttlWindow).Unix())}
	}

	input := &dyn.UpdateItemInput{
		TableName: &s.tableName,
		Key: map[string]types.AttributeValue{
			"order_id": &types.AttributeValueMemberS{Value: orderID},
		},
		UpdateExpression:          &updateExpr,
		ExpressionAttributeValues: exprValues,
		ReturnValues:              types.ReturnValueUpdatedNew,
	}
	if _, err := s.client.UpdateItem(ctx, input); err != nil {
		return fmt.Errorf("update item (append sent): %w", err)
	}
	return nil
}

// Helper
func awsBool(b bool) *bool { return &b }
