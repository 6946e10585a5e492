package main

// ReconcileMessage is the payload sent from API -> SQS -> Worker when a
// ledger append failed after a successful delivery.
type ReconcileMessage struct {
	OrderID       string   `json:"order_id"`
	StoreID       string   `json:"store_id"`
	EventNames    []string `json:"event_names"`
	CorrelationID string   `json:"correlation_id,omitempty"`
}
