package events

import "github.com/ecomplus/app-google-analytics/internal/storeapi"

const defaultCurrency = "BRL"

// paramsBuilder assembles Params field by field. Every optional field has
// a named predicate gating its inclusion, so the omission rules stay
// testable on their own.
type paramsBuilder struct {
	p Params
}

func newParams(order *storeapi.Order, orderID string) *paramsBuilder {
	b := &paramsBuilder{}
	b.p.ID = orderID
	b.p.TransactionID = orderID
	b.p.Currency = defaultCurrency
	if order.CurrencyID != "" {
		b.p.Currency = order.CurrencyID
	}
	b.p.Value = order.Amount.Total
	b.p.Status = order.Status
	if hasFinancialStatus(order) {
		b.p.Status = order.FinancialStatus.Current
	}
	return b
}

func hasFinancialStatus(order *storeapi.Order) bool {
	return order.FinancialStatus != nil && order.FinancialStatus.Current != ""
}

func hasShipping(amount storeapi.Amount) bool { return amount.Freight != 0 }

func hasTax(amount storeapi.Amount) bool { return amount.Tax != 0 || amount.Extra != 0 }

func hasCampaignCoupon(order *storeapi.Order) bool {
	return order.UTM != nil && order.UTM.Campaign != ""
}

func hasDiscountCoupon(order *storeapi.Order) bool {
	return order.ExtraDiscount != nil && order.ExtraDiscount.DiscountCoupon != ""
}

func (b *paramsBuilder) withShipping(amount storeapi.Amount) *paramsBuilder {
	if hasShipping(amount) {
		b.p.Shipping = amount.Freight
	}
	return b
}

// withTax sums tax and extra, missing operand counted as 0.
func (b *paramsBuilder) withTax(amount storeapi.Amount) *paramsBuilder {
	if hasTax(amount) {
		b.p.Tax = amount.Tax + amount.Extra
	}
	return b
}

// withCampaignCoupon writes the UTM campaign into the params-level coupon
// field. This coexists with the item-level discount coupon on purpose.
func (b *paramsBuilder) withCampaignCoupon(order *storeapi.Order) *paramsBuilder {
	if hasCampaignCoupon(order) {
		b.p.Coupon = order.UTM.Campaign
	}
	return b
}

// withItems maps order lines to GA4 items. The order-level discount
// coupon is fanned out to every item.
func (b *paramsBuilder) withItems(order *storeapi.Order) *paramsBuilder {
	items := make([]Item, 0, len(order.Items))
	for _, it := range order.Items {
		eventItem := Item{
			ItemID:   it.ProductID,
			ItemName: it.Name,
			Price:    it.FinalPrice,
			Quantity: it.Quantity,
		}
		if eventItem.ItemID == "" {
			eventItem.ItemID = it.SKU
		}
		if eventItem.Price == 0 {
			eventItem.Price = it.Price
		}
		if eventItem.Quantity == 0 {
			eventItem.Quantity = 1
		}
		if it.VariationID != "" {
			eventItem.ItemVariant = it.VariationID
		}
		if hasDiscountCoupon(order) {
			eventItem.Coupon = order.ExtraDiscount.DiscountCoupon
		}
		items = append(items, eventItem)
	}
	b.p.Items = items
	return b
}

func (b *paramsBuilder) build() Params {
	return b.p
}
