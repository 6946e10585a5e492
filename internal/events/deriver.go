// Package events derives GA4 purchase/refund events from order snapshots.
// Derivation is pure: it never consults the dedup ledger and has no side
// effects, so at-most-once enforcement stays entirely in the pipeline.
package events

import (
	"strconv"
	"time"

	"github.com/ecomplus/app-google-analytics/internal/storeapi"
)

const (
	// StatusCancelled is the order status that produces the refund event.
	StatusCancelled = "cancelled"

	// RefundEventName is the fixed name of the refund event. Purchase
	// events are named purchase_<financial status>.
	RefundEventName = "refund"

	purchaseEventPrefix = "purchase_"
)

// Derive maps an order snapshot and app config to candidate analytics
// events, prior to dedup filtering. It returns an empty slice when the
// measurement credentials are missing or no enabled event matches the
// order, which the pipeline reports as disabled.
func Derive(order *storeapi.Order, cfg *storeapi.AppConfig, orderID string) []Event {
	if cfg.MeasurementID == "" || cfg.APISecret == "" {
		return nil
	}

	var names []string
	if fs := order.FinancialStatus; fs != nil && fs.Current != "" && cfg.CustomEvents[fs.Current] {
		names = append(names, purchaseEventPrefix+fs.Current)
	}
	if order.Status == StatusCancelled && cfg.RefundEnabled() {
		names = append(names, RefundEventName)
	}
	if len(names) == 0 {
		return nil
	}

	params := newParams(order, orderID).
		withShipping(order.Amount).
		withTax(order.Amount).
		withCampaignCoupon(order).
		withItems(order).
		build()

	events := make([]Event, 0, len(names))
	for _, name := range names {
		events = append(events, Event{Name: name, Params: params})
	}
	return events
}

// ClientID resolves the GA4 client_id for an order: the first buyer's id,
// or a timestamp token when no buyer is resolvable.
func ClientID(order *storeapi.Order, now func() time.Time) string {
	if len(order.Buyers) > 0 && order.Buyers[0].ID != "" {
		return order.Buyers[0].ID
	}
	if now == nil {
		now = time.Now
	}
	return strconv.FormatInt(now().UnixMilli(), 10)
}
