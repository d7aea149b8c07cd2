// Package domain contains the immutable invoice models and the generation
// contract.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
)

// Invoice is the priced document produced at billing time. Rows are created
// exactly once per billing event and never mutated afterwards, with the
// single exception of clearing a dangling artifact key.
type Invoice struct {
	ID            snowflake.ID `gorm:"primaryKey" json:"id"`
	HotelID       snowflake.ID `gorm:"not null;index" json:"hotel_id"`
	OrderID       snowflake.ID `gorm:"not null;index" json:"order_id"`
	InvoiceNumber string       `gorm:"type:text;not null;uniqueIndex" json:"invoice_number"`
	TableNumber   int          `gorm:"not null" json:"table_number"`

	Subtotal          decimal.Decimal `gorm:"type:numeric(14,4);not null" json:"subtotal"`
	Discount          decimal.Decimal `gorm:"type:numeric(14,4);not null" json:"discount"`
	TaxPercentage     decimal.Decimal `gorm:"type:numeric(7,4);not null" json:"tax_percentage"`
	TaxAmount         decimal.Decimal `gorm:"type:numeric(14,4);not null" json:"tax_amount"`
	ServicePercentage decimal.Decimal `gorm:"type:numeric(7,4);not null" json:"service_percentage"`
	ServiceAmount     decimal.Decimal `gorm:"type:numeric(14,4);not null" json:"service_amount"`
	GrandTotal        decimal.Decimal `gorm:"type:numeric(14,4);not null" json:"grand_total"`

	// ArtifactKey points at the rendered document in the blob store. Nil
	// means no artifact is available, which is a valid terminal state.
	ArtifactKey *string `gorm:"type:text" json:"artifact_key,omitempty"`

	IssuedAt  time.Time `gorm:"not null" json:"issued_at"`
	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`

	Items []InvoiceLineItem `gorm:"foreignKey:InvoiceID;references:ID" json:"items"`
}

// TableName sets the database table name.
func (Invoice) TableName() string { return "invoices" }

type InvoiceLineItem struct {
	ID        snowflake.ID    `gorm:"primaryKey" json:"id"`
	InvoiceID snowflake.ID    `gorm:"not null;index" json:"-"`
	DishName  string          `gorm:"type:text;not null" json:"dish_name"`
	UnitPrice decimal.Decimal `gorm:"type:numeric(12,4);not null" json:"unit_price"`
	Quantity  int64           `gorm:"not null" json:"quantity"`
	LineTotal decimal.Decimal `gorm:"type:numeric(14,4);not null" json:"line_total"`
}

// TableName sets the database table name.
func (InvoiceLineItem) TableName() string { return "invoice_line_items" }
