package domain

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
	invoicedomain "github.com/railzwaylabs/tably/internal/invoice/domain"
)

// Service drives the settlement of a table: it claims the open order,
// composes and persists the invoice, and transitions the order to billed.
// The order's billing lock is held for the duration and released on every
// failure path, so an aborted attempt never leaves a table stuck.
type Service interface {
	Bill(ctx context.Context, req BillRequest) (*invoicedomain.Invoice, error)
}

type BillRequest struct {
	HotelID     snowflake.ID
	TableNumber int
	Params      invoicedomain.ComposeParams
}

var ErrNoActiveOrder = errors.New("no_active_order")
