package service

import (
	"context"

	invoicedomain "github.com/railzwaylabs/tably/internal/invoice/domain"
	"github.com/railzwaylabs/tably/internal/pricing"
	"github.com/shopspring/decimal"
)

// localGenerator recomputes the invoice deterministically from the order
// items. It is the default path when no remote service is configured and
// the fallback for every remote failure.
type localGenerator struct{}

func newLocalGenerator() invoicedomain.Generator {
	return localGenerator{}
}

func (localGenerator) Name() string { return "local" }

func (localGenerator) Generate(ctx context.Context, req invoicedomain.GenerateRequest) (*invoicedomain.GeneratedInvoice, error) {
	items := make([]pricing.LineItem, 0, len(req.Items))
	lines := make([]invoicedomain.GeneratedLine, 0, len(req.Items))
	for _, item := range req.Items {
		items = append(items, pricing.LineItem{
			Name:      item.DishName,
			UnitPrice: item.UnitPrice,
			Quantity:  item.Quantity,
		})
		lines = append(lines, invoicedomain.GeneratedLine{
			DishName:  item.DishName,
			UnitPrice: item.UnitPrice,
			Quantity:  item.Quantity,
			LineTotal: item.UnitPrice.Mul(decimal.NewFromInt(item.Quantity)),
		})
	}

	breakdown := pricing.Compute(items, req.TaxPercentage, req.ServicePercentage, req.Discount)

	return &invoicedomain.GeneratedInvoice{
		Lines:         lines,
		Subtotal:      breakdown.Subtotal,
		Discount:      breakdown.Discount,
		TaxAmount:     breakdown.TaxAmount,
		ServiceAmount: breakdown.ServiceAmount,
		GrandTotal:    breakdown.GrandTotal,
	}, nil
}
