package ledger

import (
	"context"
	"errors"
	"sync"

	dyn "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// simpleMock is a small in-memory mock for GetItem/PutItem/UpdateItem used
// in unit tests. It implements just enough of the ledger's update
// expression: SET store_id/updated_at/expires_at, ADD sent_events.
// NOTE: intentionally minimal, not production-grade.
type simpleMock struct {
	mu          sync.Mutex
	table       map[string]map[string]types.AttributeValue
	getCalls    int
	updateCalls int
	updateErr   error // when set, UpdateItem fails with it
}

func newSimpleMock() *simpleMock {
	return &simpleMock{
		table: map[string]map[string]types.AttributeValue{},
	}
}

func (m *simpleMock) sentSet(orderID string) []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	item, ok := m.table[orderID]
	if !ok {
		return nil
	}
	ss, ok := item["sent_events"].(*types.AttributeValueMemberSS)
	if !ok {
		return nil
	}
	return ss.Value
}

func (m *simpleMock) GetItem(ctx context.Context, params *dyn.GetItemInput, optFns ...func(*dyn.Options)) (*dyn.GetItemOutput, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.getCalls++
	keyAttr := params.Key["order_id"]
	if keyAttr == nil {
		return nil, errors.New("missing key")
	}
	k := keyAttr.(*types.AttributeValueMemberS).Value
	item, ok := m.table[k]
	if !ok {
		return &dyn.GetItemOutput{}, nil
	}
	return &dyn.GetItemOutput{Item: item}, nil
}

func (m *simpleMock) PutItem(ctx context.Context, params *dyn.PutItemInput, optFns ...func(*dyn.Options)) (*dyn.PutItemOutput, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if params.Item == nil {
		return nil, errors.New("nil item")
	}
	k := params.Item["order_id"].(*types.AttributeValueMemberS).Value
	m.table[k] = params.Item
	return &dyn.PutItemOutput{}, nil
}

func (m *simpleMock) UpdateItem(ctx context.Context, params *dyn.UpdateItemInput, optFns ...func(*dyn.Options)) (*dyn.UpdateItemOutput, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.updateCalls++
	if m.updateErr != nil {
		return nil, m.updateErr
	}
	keyAttr := params.Key["order_id"]
	if keyAttr == nil {
		return nil, errors.New("missing key")
	}
	k := keyAttr.(*types.AttributeValueMemberS).Value
	item, ok := m.table[k]
	if !ok {
		// UpdateItem upserts
		item = map[string]types.AttributeValue{
			"order_id": &types.AttributeValueMemberS{Value: k},
		}
	}
	if v, ok := params.ExpressionAttributeValues[":sid"]; ok {
		if _, exists := item["store_id"]; !exists {
			item["store_id"] = v
		}
	}
	if v, ok := params.ExpressionAttributeValues[":ua"]; ok {
		item["updated_at"] = v
	}
	if v, ok := params.ExpressionAttributeValues[":exp"]; ok {
		if _, exists := item["expires_at"]; !exists {
			item["expires_at"] = v
		}
	}
	if v, ok := params.ExpressionAttributeValues[":names"]; ok {
		add := v.(*types.AttributeValueMemberSS).Value
		existing := map[string]struct{}{}
		merged := []string{}
		if ss, ok := item["sent_events"].(*types.AttributeValueMemberSS); ok {
			for _, name := range ss.Value {
				existing[name] = struct{}{}
				merged = append(merged, name)
			}
		}
		for _, name := range add {
			if _, ok := existing[name]; !ok {
				merged = append(merged, name)
			}
		}
		item["sent_events"] = &types.AttributeValueMemberSS{Value: merged}
	}
	m.table[k] = item
	return &dyn.UpdateItemOutput{Attributes: item}, nil
}
