package service

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/oklog/ulid/v2"
	billingdomain "github.com/railzwaylabs/tably/internal/billing/domain"
	"github.com/railzwaylabs/tably/internal/config"
	invoicedomain "github.com/railzwaylabs/tably/internal/invoice/domain"
	"github.com/railzwaylabs/tably/internal/observability/metrics"
	orderdomain "github.com/railzwaylabs/tably/internal/order/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

type Service struct {
	log      *zap.Logger
	cfg      config.Config
	orders   orderdomain.Service
	invoices invoicedomain.Service
	metrics  *metrics.Metrics
}

type ServiceParam struct {
	fx.In

	Log      *zap.Logger
	Config   config.Config
	Orders   orderdomain.Service
	Invoices invoicedomain.Service
	Metrics  *metrics.Metrics
}

func NewService(p ServiceParam) billingdomain.Service {
	return &Service{
		log:      p.Log.Named("billing.service"),
		cfg:      p.Config,
		orders:   p.Orders,
		invoices: p.Invoices,
		metrics:  p.Metrics,
	}
}

func (s *Service) Bill(ctx context.Context, req billingdomain.BillRequest) (*invoicedomain.Invoice, error) {
	order, err := s.orders.GetActive(ctx, req.HotelID, req.TableNumber)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, billingdomain.ErrNoActiveOrder
	}

	holder := ulid.Make().String()
	if err := s.orders.LockForBilling(ctx, order.ID, holder, s.cfg.Billing.LockTTL); err != nil {
		s.metrics.BillingFailures.Inc()
		return nil, err
	}

	invoice, err := s.invoices.Compose(ctx, order, req.Params)
	if err != nil {
		s.abort(ctx, order.ID, holder, "compose", err)
		return nil, err
	}

	stored, err := s.invoices.Store(ctx, req.HotelID, invoice)
	if err != nil {
		s.abort(ctx, order.ID, holder, "store", err)
		return nil, err
	}

	if err := s.orders.MarkBilled(ctx, order.ID, stored.ID, order.Version); err != nil {
		// The invoice row already exists at this point. The order is the
		// source of truth for billed state, so the transition failure wins
		// and the invoice stays unreferenced.
		s.log.Error("billed transition failed after invoice persisted",
			zap.Int64("order_id", int64(order.ID)),
			zap.Int64("invoice_id", int64(stored.ID)),
			zap.Error(err))
		s.abort(ctx, order.ID, holder, "mark_billed", err)
		return nil, err
	}

	s.log.Info("table billed",
		zap.Int64("hotel_id", int64(req.HotelID)),
		zap.Int("table_number", req.TableNumber),
		zap.Int64("order_id", int64(order.ID)),
		zap.String("invoice_number", stored.InvoiceNumber))
	return stored, nil
}

func (s *Service) abort(ctx context.Context, orderID snowflake.ID, holder, stage string, cause error) {
	s.metrics.BillingFailures.Inc()
	if err := s.orders.ReleaseLock(ctx, orderID, holder); err != nil {
		s.log.Warn("billing lock release failed",
			zap.Int64("order_id", int64(orderID)),
			zap.String("stage", stage),
			zap.Error(err))
	}
	s.log.Warn("billing aborted",
		zap.Int64("order_id", int64(orderID)),
		zap.String("stage", stage),
		zap.Error(cause))
}
