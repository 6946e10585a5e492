package validation

import "encoding/json"

// OrderTrigger is the Store API trigger body posted to the webhook.
// The embedded order body, when present, is only a hint; the pipeline
// always refetches the authoritative snapshot.
type OrderTrigger struct {
	Resource   string          `json:"resource" validate:"required"`
	Action     string          `json:"action,omitempty"`
	InsertedID string          `json:"inserted_id,omitempty"`
	ResourceID string          `json:"resource_id,omitempty"`
	Body       json.RawMessage `json:"body,omitempty"`
}

// OrderID resolves the order id with the inserted_id / resource_id
// fallback chain. Empty means the trigger is malformed.
func (t *OrderTrigger) OrderID() string {
	if t.InsertedID != "" {
		return t.InsertedID
	}
	return t.ResourceID
}

// AuthCallbackRequest is the payload of the app-install callback that
// provisions Store API credentials for a store.
type AuthCallbackRequest struct {
	StoreID          string `json:"store_id" validate:"required"`
	AuthenticationID string `json:"authentication_id" validate:"required"`
	APIKey           string `json:"api_key" validate:"required"`
	ApplicationID    string `json:"application_id" validate:"required"`
}
