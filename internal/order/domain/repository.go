package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
)

type Repository interface {
	Insert(ctx context.Context, order *Order) error
	FindByID(ctx context.Context, hotelID, orderID snowflake.ID) (*Order, error)
	FindOpenByTable(ctx context.Context, hotelID snowflake.ID, tableNumber int) (*Order, error)
	CountOpenByTable(ctx context.Context, hotelID snowflake.ID, tableNumber int) (int64, error)

	// CompareAndSwap applies set clauses and bumps the version only if the
	// stored version matches expectedVersion and the status matches
	// expectedStatus. Returns false without writing on any mismatch.
	CompareAndSwap(ctx context.Context, orderID snowflake.ID, expectedVersion int64, expectedStatus OrderStatus, set map[string]any) (bool, error)

	ReplaceItems(ctx context.Context, orderID snowflake.ID, items []OrderItem) error

	AcquireLock(ctx context.Context, orderID snowflake.ID, holderID string, expiresAt, now time.Time) (bool, error)
	ReleaseLock(ctx context.Context, orderID snowflake.ID, holderID string) error
}
