// Package domain contains the table-order state machine models.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
)

// OrderStatus is the lifecycle state of a table order. BILLED and
// CANCELLED are terminal.
type OrderStatus string

const (
	OrderStatusOpen      OrderStatus = "open"
	OrderStatusBilled    OrderStatus = "billed"
	OrderStatusCancelled OrderStatus = "cancelled"
)

// Order is one row per active or historical table order. Rows are never
// deleted; the full history is retained per hotel. At most one row per
// (hotel_id, table_number) may be open at any time.
type Order struct {
	ID          snowflake.ID `gorm:"primaryKey" json:"id"`
	HotelID     snowflake.ID `gorm:"not null;index:idx_orders_hotel_table" json:"hotel_id"`
	TableNumber int          `gorm:"not null;index:idx_orders_hotel_table" json:"table_number"`
	Notes       *string      `gorm:"type:text" json:"notes,omitempty"`
	Status      OrderStatus  `gorm:"type:text;not null;index" json:"status"`

	// Version backs the compare-and-swap update contract. Starts at 1,
	// incremented by exactly 1 per successful mutation.
	Version int64 `gorm:"not null;default:1" json:"version"`

	// Short-lived exclusive claim used only during the billing hand-off.
	LockHolder    *string    `gorm:"type:text" json:"-"`
	LockExpiresAt *time.Time `json:"-"`

	InvoiceID *snowflake.ID `gorm:"index" json:"invoice_id,omitempty"`

	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`

	Items []OrderItem `gorm:"foreignKey:OrderID;references:ID" json:"items"`
}

// TableName sets the database table name.
func (Order) TableName() string { return "orders" }

// IsTerminal reports whether no further mutation is allowed.
func (s OrderStatus) IsTerminal() bool {
	return s == OrderStatusBilled || s == OrderStatusCancelled
}

// OrderItem is a single dish line on an order. Rows are replaced wholesale
// on every order update.
type OrderItem struct {
	ID          snowflake.ID    `gorm:"primaryKey" json:"id"`
	OrderID     snowflake.ID    `gorm:"not null;index" json:"-"`
	ReferenceID snowflake.ID    `gorm:"not null" json:"reference_id"`
	Name        string          `gorm:"type:text;not null" json:"name"`
	UnitPrice   decimal.Decimal `gorm:"type:numeric(12,4);not null" json:"unit_price"`
	Quantity    int64           `gorm:"not null" json:"quantity"`
}

// TableName sets the database table name.
func (OrderItem) TableName() string { return "order_items" }
