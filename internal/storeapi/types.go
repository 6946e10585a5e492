package storeapi

// Order is the subset of the Store API order resource consumed by event
// derivation.
type Order struct {
	ID              string           `json:"_id"`
	Status          string           `json:"status"`
	FinancialStatus *FinancialStatus `json:"financial_status,omitempty"`
	Buyers          []Buyer          `json:"buyers,omitempty"`
	Items           []Item           `json:"items,omitempty"`
	Amount          Amount           `json:"amount"`
	CurrencyID      string           `json:"currency_id,omitempty"`
	ExtraDiscount   *ExtraDiscount   `json:"extra_discount,omitempty"`
	UTM             *UTM             `json:"utm,omitempty"`
}

type FinancialStatus struct {
	Current string `json:"current"`
}

type Buyer struct {
	ID string `json:"_id"`
}

type Item struct {
	ProductID   string  `json:"product_id,omitempty"`
	SKU         string  `json:"sku,omitempty"`
	Name        string  `json:"name"`
	FinalPrice  float64 `json:"final_price,omitempty"`
	Price       float64 `json:"price,omitempty"`
	Quantity    int     `json:"quantity,omitempty"`
	VariationID string  `json:"variation_id,omitempty"`
}

type Amount struct {
	Total   float64 `json:"total"`
	Freight float64 `json:"freight,omitempty"`
	Tax     float64 `json:"tax,omitempty"`
	Extra   float64 `json:"extra,omitempty"`
}

type ExtraDiscount struct {
	DiscountCoupon string `json:"discount_coupon,omitempty"`
}

type UTM struct {
	Campaign string `json:"campaign,omitempty"`
}

// AppConfig is the app-level configuration merged from the application's
// data and hidden_data. hidden_data wins on overlap (it carries the
// measurement secret).
type AppConfig struct {
	MeasurementID  string          `json:"measurement_id,omitempty"`
	APISecret      string          `json:"api_secret,omitempty"`
	IgnoreTriggers []string        `json:"ignore_triggers,omitempty"`
	CustomEvents   map[string]bool `json:"custom_events,omitempty"`
	RefundEvent    *bool           `json:"refund_event,omitempty"` // nil means enabled
}

// RefundEnabled reports whether the refund event should be derived.
// Unset defaults to true.
func (c *AppConfig) RefundEnabled() bool {
	return c.RefundEvent == nil || *c.RefundEvent
}

// Ignores reports whether resource is on the configured ignore list.
func (c *AppConfig) Ignores(resource string) bool {
	for _, r := range c.IgnoreTriggers {
		if r == resource {
			return true
		}
	}
	return false
}
