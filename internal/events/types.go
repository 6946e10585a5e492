package events

// Event is one GA4 Measurement Protocol event.
type Event struct {
	Name   string `json:"name"`
	Params Params `json:"params"`
}

// Params is the purchase/refund param payload. Optional fields rely on
// omitempty so that zero values are omitted from the wire, matching the
// truthiness gates in the derivation rules.
type Params struct {
	ID            string  `json:"id"`
	Currency      string  `json:"currency"`
	TransactionID string  `json:"transaction_id"`
	Value         float64 `json:"value"`
	Status        string  `json:"status"`
	Items         []Item  `json:"items"`
	Shipping      float64 `json:"shipping,omitempty"`
	Tax           float64 `json:"tax,omitempty"`
	Coupon        string  `json:"coupon,omitempty"`
}

// Item is one order line mapped to the GA4 item schema.
type Item struct {
	ItemID      string  `json:"item_id"`
	ItemName    string  `json:"item_name"`
	Price       float64 `json:"price"`
	Quantity    int     `json:"quantity"`
	ItemVariant string  `json:"item_variant,omitempty"`
	Coupon      string  `json:"coupon,omitempty"`
}
