package domain

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
)

type Service interface {
	// Create opens a new order for a table. Fails with ErrTableOccupied
	// while an open order exists for the same (hotel, table).
	Create(ctx context.Context, req CreateRequest) (*Order, error)

	// Update replaces items and notes if and only if the stored version
	// matches ExpectedVersion and the order is still open. On mismatch it
	// fails with a *VersionConflict and performs no write.
	Update(ctx context.Context, req UpdateRequest) (*Order, error)

	// GetActive returns the single open order for a table, or nil.
	GetActive(ctx context.Context, hotelID snowflake.ID, tableNumber int) (*Order, error)

	Get(ctx context.Context, hotelID, orderID snowflake.ID) (*Order, error)

	// LockForBilling acquires the exclusive billing claim. It succeeds
	// idempotently for the same holder and fails with ErrOrderLocked for a
	// different holder while the claim is unexpired.
	LockForBilling(ctx context.Context, orderID snowflake.ID, holderID string, ttl time.Duration) error

	ReleaseLock(ctx context.Context, orderID snowflake.ID, holderID string) error

	// MarkBilled is the compare-and-swap terminal transition to billed.
	MarkBilled(ctx context.Context, orderID, invoiceID snowflake.ID, expectedVersion int64) error

	// Cancel is the compare-and-swap terminal transition to cancelled.
	Cancel(ctx context.Context, orderID snowflake.ID, expectedVersion int64) error
}

type ItemInput struct {
	ReferenceID snowflake.ID    `json:"reference_id"`
	Name        string          `json:"name"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	Quantity    int64           `json:"quantity"`
}

type CreateRequest struct {
	HotelID     snowflake.ID
	TableNumber int
	Items       []ItemInput
	Notes       *string
}

type UpdateRequest struct {
	HotelID         snowflake.ID
	OrderID         snowflake.ID
	Items           []ItemInput
	Notes           *string
	ExpectedVersion int64
}

var (
	ErrTableOccupied   = errors.New("table_occupied")
	ErrVersionConflict = errors.New("version_conflict")
	ErrOrderNotFound   = errors.New("order_not_found")
	ErrOrderNotOpen    = errors.New("order_not_open")
	ErrOrderLocked     = errors.New("order_locked")
	ErrInvalidTable    = errors.New("invalid_table_number")
	ErrEmptyItems      = errors.New("empty_items")
	ErrInvalidQuantity = errors.New("invalid_quantity")
	ErrInvalidPrice    = errors.New("invalid_unit_price")
)

// VersionConflict carries the state a caller needs to re-fetch and retry
// intelligently. It unwraps to ErrVersionConflict.
type VersionConflict struct {
	OrderID        snowflake.ID
	CurrentVersion int64
	CurrentStatus  OrderStatus
}

func (e *VersionConflict) Error() string {
	return fmt.Sprintf("version_conflict: order %s is at version %d (%s)", e.OrderID, e.CurrentVersion, e.CurrentStatus)
}

func (e *VersionConflict) Unwrap() error { return ErrVersionConflict }
