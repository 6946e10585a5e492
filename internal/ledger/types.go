package ledger

import "time"

// Record is the shape persisted per order in the dedup ledger table.
// SentEvents is append-only: a name is added if and only if a delivery
// attempt containing it completed successfully.
type Record struct {
	OrderID    string    `dynamodbav:"order_id"` // PK
	StoreID    string    `dynamodbav:"store_id,omitempty"`
	SentEvents []string  `dynamodbav:"sent_events,stringset,omitempty"`
	UpdatedAt  time.Time `dynamodbav:"updated_at"`
	ExpiresAt  int64     `dynamodbav:"expires_at,omitempty"` // TTL epoch seconds, 0 = keep forever
}
