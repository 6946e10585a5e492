package main

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/aws/aws-lambda-go/events"
	awsDynamo "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// mockDynamo implements just the ledger's ADD-merge UpdateItem plus GetItem.
type mockDynamo struct {
	mu        sync.Mutex
	items     map[string]map[string]types.AttributeValue
	updateErr error
}

func newMockDynamo() *mockDynamo {
	return &mockDynamo{items: map[string]map[string]types.AttributeValue{}}
}

func (m *mockDynamo) sentSet(orderID string) []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	item, ok := m.items[orderID]
	if !ok {
		return nil
	}
	if ss, ok := item["sent_events"].(*types.AttributeValueMemberSS); ok {
		return ss.Value
	}
	return nil
}

func (m *mockDynamo) GetItem(ctx context.Context, in *awsDynamo.GetItemInput, optFns ...func(*awsDynamo.Options)) (*awsDynamo.GetItemOutput, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	k := in.Key["order_id"].(*types.AttributeValueMemberS).Value
	item, ok := m.items[k]
	if !ok {
		return &awsDynamo.GetItemOutput{}, nil
	}
	return &awsDynamo.GetItemOutput{Item: item}, nil
}

func (m *mockDynamo) PutItem(ctx context.Context, in *awsDynamo.PutItemInput, optFns ...func(*awsDynamo.Options)) (*awsDynamo.PutItemOutput, error) {
	return &awsDynamo.PutItemOutput{}, nil
}

func (m *mockDynamo) UpdateItem(ctx context.Context, in *awsDynamo.UpdateItemInput, optFns ...func(*awsDynamo.Options)) (*awsDynamo.UpdateItemOutput, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.updateErr != nil {
		return nil, m.updateErr
	}
	k := in.Key["order_id"].(*types.AttributeValueMemberS).Value
	item, ok := m.items[k]
	if !ok {
		item = map[string]types.AttributeValue{
			"order_id": &types.AttributeValueMemberS{Value: k},
		}
	}
	if v, ok := in.ExpressionAttributeValues[":sid"]; ok {
		if _, exists := item["store_id"]; !exists {
			item["store_id"] = v
		}
	}
	if v, ok := in.ExpressionAttributeValues[":names"]; ok {
		add := v.(*types.AttributeValueMemberSS).Value
		merged := []string{}
		seen := map[string]struct{}{}
		if ss, ok := item["sent_events"].(*types.AttributeValueMemberSS); ok {
			for _, name := range ss.Value {
				merged = append(merged, name)
				seen[name] = struct{}{}
			}
		}
		for _, name := range add {
			if _, ok := seen[name]; !ok {
				merged = append(merged, name)
			}
		}
		item["sent_events"] = &types.AttributeValueMemberSS{Value: merged}
	}
	m.items[k] = item
	return &awsDynamo.UpdateItemOutput{Attributes: item}, nil
}

func sqsEvent(bodies ...string) events.SQSEvent {
	recs := make([]events.SQSMessage, 0, len(bodies))
	for i, b := range bodies {
		recs = append(recs, events.SQSMessage{MessageId: string(rune('a' + i)), Body: b})
	}
	return events.SQSEvent{Records: recs}
}

func TestHandle_AppendsSentEvents(t *testing.T) {
	mock := newMockDynamo()
	p := NewProcessor(mock, "ledger", 0, nil)

	ev := sqsEvent(`{"order_id":"O1","store_id":"51","event_names":["purchase_paid"],"correlation_id":"c1"}`)
	if err := p.Handle(context.Background(), ev); err != nil {
		t.Fatalf("Handle error: %v", err)
	}

	got := mock.sentSet("O1")
	if len(got) != 1 || got[0] != "purchase_paid" {
		t.Fatalf("expected purchase_paid appended, got %v", got)
	}
}

func TestHandle_ReplayIsIdempotent(t *testing.T) {
	mock := newMockDynamo()
	p := NewProcessor(mock, "ledger", 0, nil)
	ctx := context.Background()

	body := `{"order_id":"O1","store_id":"51","event_names":["purchase_paid","refund"]}`
	if err := p.Handle(ctx, sqsEvent(body)); err != nil {
		t.Fatalf("first Handle error: %v", err)
	}
	if err := p.Handle(ctx, sqsEvent(body)); err != nil {
		t.Fatalf("second Handle error: %v", err)
	}

	got := mock.sentSet("O1")
	if len(got) != 2 {
		t.Fatalf("replay must not duplicate names, got %v", got)
	}
}

func TestHandle_MalformedMessageIsDropped(t *testing.T) {
	mock := newMockDynamo()
	p := NewProcessor(mock, "ledger", 0, nil)

	if err := p.Handle(context.Background(), sqsEvent(`not json`)); err != nil {
		t.Fatalf("malformed message must not redrive, got %v", err)
	}
	if err := p.Handle(context.Background(), sqsEvent(`{"order_id":"","event_names":[]}`)); err != nil {
		t.Fatalf("incomplete message must not redrive, got %v", err)
	}
}

func TestHandle_TransientErrorRedrives(t *testing.T) {
	mock := newMockDynamo()
	mock.updateErr = errors.New("throttled")
	p := NewProcessor(mock, "ledger", 0, nil)

	ev := sqsEvent(`{"order_id":"O1","store_id":"51","event_names":["refund"]}`)
	if err := p.Handle(context.Background(), ev); err == nil {
		t.Fatal("expected error so the batch is redriven")
	}
}
