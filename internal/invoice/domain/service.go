package domain

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
	orderdomain "github.com/railzwaylabs/tably/internal/order/domain"
	"github.com/shopspring/decimal"
)

type Service interface {
	// Compose turns a finalized order into a priced invoice document. It
	// never persists anything; the one side effect on the happy path is
	// the remote generation call, whose every failure falls back to the
	// deterministic local computation.
	Compose(ctx context.Context, order *orderdomain.Order, params ComposeParams) (*Invoice, error)

	// Store persists the invoice record transactionally, then uploads the
	// rendered artifact best-effort. The outcome is always one of: fully
	// recorded with a working artifact, fully recorded with a nil artifact
	// key, or not recorded at all.
	Store(ctx context.Context, hotelID snowflake.ID, invoice *Invoice) (*Invoice, error)

	// Retrieve returns the invoice with its items, tenant-scoped. A wrong
	// hotel yields ErrInvoiceNotFound, never a forbidden.
	Retrieve(ctx context.Context, hotelID, invoiceID snowflake.ID) (*Invoice, error)

	// ArtifactURL issues a short-lived presigned download link for the
	// invoice artifact.
	ArtifactURL(ctx context.Context, hotelID, invoiceID snowflake.ID) (string, error)
}

type ComposeParams struct {
	TaxPercentage     decimal.Decimal
	ServicePercentage decimal.Decimal
	Discount          decimal.Decimal
}

var (
	ErrInvoiceNotFound   = errors.New("invoice_not_found")
	ErrPersistenceFailed = errors.New("invoice_persistence_failed")
	ErrNoArtifact        = errors.New("invoice_artifact_unavailable")
	ErrEmptyOrder        = errors.New("empty_order")
)
