package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
)

// Generator computes the priced body of an invoice from a finalized order.
// Two implementations exist: a remote service call and a deterministic
// local computation. A wrapper absorbs every failure mode of the first and
// delegates to the second, so generation has no externally visible failure
// mode for valid order data.
type Generator interface {
	Name() string
	Generate(ctx context.Context, req GenerateRequest) (*GeneratedInvoice, error)
}

type GenerateRequest struct {
	InvoiceNumber     string          `json:"invoice_number"`
	HotelID           snowflake.ID    `json:"hotel_id"`
	TableNumber       int             `json:"table_number"`
	Items             []GenerateItem  `json:"items"`
	TaxPercentage     decimal.Decimal `json:"tax_percentage"`
	ServicePercentage decimal.Decimal `json:"service_percentage"`
	Discount          decimal.Decimal `json:"discount"`
	IssuedAt          time.Time       `json:"issued_at"`
}

type GenerateItem struct {
	DishName  string          `json:"dish_name"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Quantity  int64           `json:"quantity"`
}

// GeneratedInvoice is the priced result, identical in schema regardless of
// which generator produced it.
type GeneratedInvoice struct {
	Lines         []GeneratedLine `json:"lines"`
	Subtotal      decimal.Decimal `json:"subtotal"`
	Discount      decimal.Decimal `json:"discount"`
	TaxAmount     decimal.Decimal `json:"tax_amount"`
	ServiceAmount decimal.Decimal `json:"service_amount"`
	GrandTotal    decimal.Decimal `json:"grand_total"`
}

type GeneratedLine struct {
	DishName  string          `json:"dish_name"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Quantity  int64           `json:"quantity"`
	LineTotal decimal.Decimal `json:"line_total"`
}
