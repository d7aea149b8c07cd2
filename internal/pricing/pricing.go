// Package pricing computes invoice breakdowns from order line items.
// Every function is pure; all arithmetic is decimal-safe and rounding is
// left to presentation layers.
package pricing

import (
	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// LineItem is the minimal priced unit the engine operates on.
type LineItem struct {
	Name      string
	UnitPrice decimal.Decimal
	Quantity  int64
}

// Breakdown is the fully derived pricing of an order. It is never stored
// on its own; invoices copy its fields at billing time.
type Breakdown struct {
	Subtotal      decimal.Decimal
	Discount      decimal.Decimal
	TaxAmount     decimal.Decimal
	ServiceAmount decimal.Decimal
	GrandTotal    decimal.Decimal
}

// Subtotal returns the sum of unit price times quantity over all items.
// An empty slice yields zero.
func Subtotal(items []LineItem) decimal.Decimal {
	total := decimal.Zero
	for _, item := range items {
		total = total.Add(item.UnitPrice.Mul(decimal.NewFromInt(item.Quantity)))
	}
	return total
}

// EffectiveDiscount clamps the requested discount to the subtotal. A request
// exceeding the subtotal is silently capped, never rejected, so percentage
// adjustments always see a non-negative base.
func EffectiveDiscount(subtotal, requested decimal.Decimal) decimal.Decimal {
	if requested.LessThanOrEqual(decimal.Zero) {
		return decimal.Zero
	}
	if requested.GreaterThan(subtotal) {
		return subtotal
	}
	return requested
}

// AdjustmentAmount applies a percentage charge to the discounted subtotal.
// Tax and service charge both use this with the same base, so the order in
// which they are computed does not matter.
func AdjustmentAmount(subtotal, effectiveDiscount, percentage decimal.Decimal) decimal.Decimal {
	if percentage.IsZero() {
		return decimal.Zero
	}
	return subtotal.Sub(effectiveDiscount).Mul(percentage).Div(hundred)
}

// Compute derives the full breakdown for a set of items.
//
// grand total = subtotal + tax + service charge - effective discount
func Compute(items []LineItem, taxPercentage, servicePercentage, discount decimal.Decimal) Breakdown {
	subtotal := Subtotal(items)
	effectiveDiscount := EffectiveDiscount(subtotal, discount)
	taxAmount := AdjustmentAmount(subtotal, effectiveDiscount, taxPercentage)
	serviceAmount := AdjustmentAmount(subtotal, effectiveDiscount, servicePercentage)

	return Breakdown{
		Subtotal:      subtotal,
		Discount:      effectiveDiscount,
		TaxAmount:     taxAmount,
		ServiceAmount: serviceAmount,
		GrandTotal:    subtotal.Add(taxAmount).Add(serviceAmount).Sub(effectiveDiscount),
	}
}
