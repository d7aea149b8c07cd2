package service

import (
	"context"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	"github.com/railzwaylabs/tably/internal/audit"
	auditdomain "github.com/railzwaylabs/tably/internal/audit/domain"
	billingdomain "github.com/railzwaylabs/tably/internal/billing/domain"
	"github.com/railzwaylabs/tably/internal/blob"
	"github.com/railzwaylabs/tably/internal/clock"
	"github.com/railzwaylabs/tably/internal/config"
	invoicedomain "github.com/railzwaylabs/tably/internal/invoice/domain"
	"github.com/railzwaylabs/tably/internal/invoice/render"
	invoiceservice "github.com/railzwaylabs/tably/internal/invoice/service"
	"github.com/railzwaylabs/tably/internal/observability/metrics"
	orderdomain "github.com/railzwaylabs/tably/internal/order/domain"
	orderservice "github.com/railzwaylabs/tably/internal/order/service"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func d(value string) decimal.Decimal {
	return decimal.RequireFromString(value)
}

type billingStack struct {
	billing  billingdomain.Service
	orders   orderdomain.Service
	invoices invoicedomain.Service
	cfg      config.Config
	metrics  *metrics.Metrics
	db       *gorm.DB
}

func newBillingStack(t *testing.T) *billingStack {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file:"+t.Name()+"?mode=memory&cache=shared"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&orderdomain.Order{},
		&orderdomain.OrderItem{},
		&invoicedomain.Invoice{},
		&invoicedomain.InvoiceLineItem{},
		&auditdomain.AuditLog{},
	))

	node, err := snowflake.NewNode(3)
	require.NoError(t, err)

	var cfg config.Config
	cfg.Billing.LockTTL = 2 * time.Minute
	cfg.Billing.StoreMaxRetries = 3
	cfg.Billing.StoreInitialDelay = time.Millisecond
	cfg.Storage.PresignExpiry = 15 * time.Minute

	log := zap.NewNop()
	m := metrics.New()
	recorder := audit.NewRecorder(log, node)

	blobStore, err := blob.New(cfg, log)
	require.NoError(t, err)

	orders := orderservice.NewService(orderservice.ServiceParam{
		DB:    db,
		Log:   log,
		GenID: node,
		Clock: clock.SystemClock{},
		Audit: recorder,
	})

	invoices := invoiceservice.NewService(invoiceservice.ServiceParam{
		DB:       db,
		Log:      log,
		GenID:    node,
		Clock:    clock.SystemClock{},
		Config:   cfg,
		Renderer: render.NewRenderer(),
		Blob:     blobStore,
		Metrics:  m,
		Audit:    recorder,
	})

	billing := NewService(ServiceParam{
		Log:      log,
		Config:   cfg,
		Orders:   orders,
		Invoices: invoices,
		Metrics:  m,
	})
	return &billingStack{
		billing:  billing,
		orders:   orders,
		invoices: invoices,
		cfg:      cfg,
		metrics:  m,
		db:       db,
	}
}

func billParams() invoicedomain.ComposeParams {
	return invoicedomain.ComposeParams{
		TaxPercentage:     d("10"),
		ServicePercentage: d("5"),
		Discount:          d("5.00"),
	}
}

func TestBillSettlesTable(t *testing.T) {
	stack := newBillingStack(t)
	billing, orders := stack.billing, stack.orders
	ctx := context.Background()
	hotelID := snowflake.ID(901)

	order, err := orders.Create(ctx, orderdomain.CreateRequest{
		HotelID:     hotelID,
		TableNumber: 7,
		Items: []orderdomain.ItemInput{
			{ReferenceID: 1, Name: "rendang", UnitPrice: d("15.99"), Quantity: 2},
			{ReferenceID: 2, Name: "es campur", UnitPrice: d("8.50"), Quantity: 1},
		},
	})
	require.NoError(t, err)

	invoice, err := billing.Bill(ctx, billingdomain.BillRequest{
		HotelID:     hotelID,
		TableNumber: 7,
		Params:      billParams(),
	})
	require.NoError(t, err)
	require.True(t, d("40.802").Equal(invoice.GrandTotal), "total %s", invoice.GrandTotal)

	billed, err := orders.Get(ctx, hotelID, order.ID)
	require.NoError(t, err)
	require.Equal(t, orderdomain.OrderStatusBilled, billed.Status)
	require.NotNil(t, billed.InvoiceID)
	require.Equal(t, invoice.ID, *billed.InvoiceID)
	require.Nil(t, billed.LockHolder)

	// The table is free for a fresh order once billed.
	active, err := orders.GetActive(ctx, hotelID, 7)
	require.NoError(t, err)
	require.Nil(t, active)

	_, err = orders.Create(ctx, orderdomain.CreateRequest{
		HotelID:     hotelID,
		TableNumber: 7,
		Items: []orderdomain.ItemInput{
			{ReferenceID: 3, Name: "kopi tubruk", UnitPrice: d("3.00"), Quantity: 1},
		},
	})
	require.NoError(t, err)
}

func TestBillNoActiveOrder(t *testing.T) {
	stack := newBillingStack(t)

	_, err := stack.billing.Bill(context.Background(), billingdomain.BillRequest{
		HotelID:     snowflake.ID(902),
		TableNumber: 1,
		Params:      billParams(),
	})
	require.ErrorIs(t, err, billingdomain.ErrNoActiveOrder)
}

func TestBillWhileLockedByAnotherHolder(t *testing.T) {
	stack := newBillingStack(t)
	billing, orders := stack.billing, stack.orders
	ctx := context.Background()
	hotelID := snowflake.ID(903)

	order, err := orders.Create(ctx, orderdomain.CreateRequest{
		HotelID:     hotelID,
		TableNumber: 2,
		Items: []orderdomain.ItemInput{
			{ReferenceID: 1, Name: "nasi goreng", UnitPrice: d("9.00"), Quantity: 1},
		},
	})
	require.NoError(t, err)

	require.NoError(t, orders.LockForBilling(ctx, order.ID, "rival-terminal", 2*time.Minute))

	_, err = billing.Bill(ctx, billingdomain.BillRequest{
		HotelID:     hotelID,
		TableNumber: 2,
		Params:      billParams(),
	})
	require.ErrorIs(t, err, orderdomain.ErrOrderLocked)

	// The rival's claim survives the failed attempt.
	current, err := orders.Get(ctx, hotelID, order.ID)
	require.NoError(t, err)
	require.NotNil(t, current.LockHolder)
	require.Equal(t, "rival-terminal", *current.LockHolder)
}

// versionBumpingInvoices delegates to the real invoice service but bumps
// the order's version right before persisting, simulating a write that
// lands between the orchestrator's read and its billed transition.
type versionBumpingInvoices struct {
	invoicedomain.Service
	db      *gorm.DB
	orderID snowflake.ID
}

func (w *versionBumpingInvoices) Store(ctx context.Context, hotelID snowflake.ID, invoice *invoicedomain.Invoice) (*invoicedomain.Invoice, error) {
	if err := w.db.Model(&orderdomain.Order{}).
		Where("id = ?", w.orderID).
		Update("version", gorm.Expr("version + 1")).Error; err != nil {
		return nil, err
	}
	return w.Service.Store(ctx, hotelID, invoice)
}

func TestBillReleasesLockWhenOrderChangesUnderneath(t *testing.T) {
	stack := newBillingStack(t)
	orders := stack.orders
	ctx := context.Background()
	hotelID := snowflake.ID(904)

	order, err := orders.Create(ctx, orderdomain.CreateRequest{
		HotelID:     hotelID,
		TableNumber: 3,
		Items: []orderdomain.ItemInput{
			{ReferenceID: 1, Name: "sate ayam", UnitPrice: d("12.00"), Quantity: 1},
		},
	})
	require.NoError(t, err)

	billing := NewService(ServiceParam{
		Log:    zap.NewNop(),
		Config: stack.cfg,
		Orders: orders,
		Invoices: &versionBumpingInvoices{
			Service: stack.invoices,
			db:      stack.db,
			orderID: order.ID,
		},
		Metrics: stack.metrics,
	})

	_, err = billing.Bill(ctx, billingdomain.BillRequest{
		HotelID:     hotelID,
		TableNumber: 3,
		Params:      billParams(),
	})
	require.ErrorIs(t, err, orderdomain.ErrVersionConflict)

	current, err := orders.Get(ctx, hotelID, order.ID)
	require.NoError(t, err)
	require.Equal(t, orderdomain.OrderStatusOpen, current.Status)
	require.Nil(t, current.LockHolder)
}
