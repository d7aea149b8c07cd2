package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/google/uuid"
	"github.com/railzwaylabs/tably/internal/audit"
	"github.com/railzwaylabs/tably/internal/blob"
	"github.com/railzwaylabs/tably/internal/clock"
	"github.com/railzwaylabs/tably/internal/config"
	invoicedomain "github.com/railzwaylabs/tably/internal/invoice/domain"
	"github.com/railzwaylabs/tably/internal/invoice/render"
	"github.com/railzwaylabs/tably/internal/invoice/repository"
	"github.com/railzwaylabs/tably/internal/observability/metrics"
	orderdomain "github.com/railzwaylabs/tably/internal/order/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Service struct {
	db    *gorm.DB
	log   *zap.Logger
	genID *snowflake.Node
	clock clock.Clock
	cfg   config.Config

	repo      invoicedomain.Repository
	generator invoicedomain.Generator
	renderer  render.Renderer
	blob      blob.Store
	metrics   *metrics.Metrics
	audit     *audit.Recorder
}

type ServiceParam struct {
	fx.In

	DB       *gorm.DB
	Log      *zap.Logger
	GenID    *snowflake.Node
	Clock    clock.Clock
	Config   config.Config
	Renderer render.Renderer
	Blob     blob.Store
	Metrics  *metrics.Metrics
	Audit    *audit.Recorder
}

func NewService(p ServiceParam) invoicedomain.Service {
	log := p.Log.Named("invoice.service")

	var primary invoicedomain.Generator
	if p.Config.Generator.BaseURL != "" {
		primary = newRemoteGenerator(
			p.Config.Generator.BaseURL,
			p.Config.Generator.APIKey,
			p.Config.Generator.Timeout,
			p.Config.Generator.MaxRetries,
		)
	}

	return &Service{
		db:        p.DB,
		log:       log,
		genID:     p.GenID,
		clock:     p.Clock,
		cfg:       p.Config,
		repo:      repository.NewRepository(p.DB),
		generator: newFallbackGenerator(primary, newLocalGenerator(), log, p.Metrics),
		renderer:  p.Renderer,
		blob:      p.Blob,
		metrics:   p.Metrics,
		audit:     p.Audit,
	}
}

func (s *Service) Compose(ctx context.Context, order *orderdomain.Order, params invoicedomain.ComposeParams) (*invoicedomain.Invoice, error) {
	if order == nil || len(order.Items) == 0 {
		return nil, invoicedomain.ErrEmptyOrder
	}

	issuedAt := s.clock.Now(ctx)
	number := newInvoiceNumber(issuedAt)

	req := invoicedomain.GenerateRequest{
		InvoiceNumber:     number,
		HotelID:           order.HotelID,
		TableNumber:       order.TableNumber,
		TaxPercentage:     params.TaxPercentage,
		ServicePercentage: params.ServicePercentage,
		Discount:          params.Discount,
		IssuedAt:          issuedAt,
	}
	for _, item := range order.Items {
		req.Items = append(req.Items, invoicedomain.GenerateItem{
			DishName:  item.Name,
			UnitPrice: item.UnitPrice,
			Quantity:  item.Quantity,
		})
	}

	generated, err := s.generator.Generate(ctx, req)
	if err != nil {
		return nil, err
	}

	invoice := &invoicedomain.Invoice{
		ID:                s.genID.Generate(),
		HotelID:           order.HotelID,
		OrderID:           order.ID,
		InvoiceNumber:     number,
		TableNumber:       order.TableNumber,
		Subtotal:          generated.Subtotal,
		Discount:          generated.Discount,
		TaxPercentage:     params.TaxPercentage,
		TaxAmount:         generated.TaxAmount,
		ServicePercentage: params.ServicePercentage,
		ServiceAmount:     generated.ServiceAmount,
		GrandTotal:        generated.GrandTotal,
		IssuedAt:          issuedAt,
	}
	for _, line := range generated.Lines {
		invoice.Items = append(invoice.Items, invoicedomain.InvoiceLineItem{
			ID:        s.genID.Generate(),
			InvoiceID: invoice.ID,
			DishName:  line.DishName,
			UnitPrice: line.UnitPrice,
			Quantity:  line.Quantity,
			LineTotal: line.LineTotal,
		})
	}
	return invoice, nil
}

// newInvoiceNumber builds a globally unique number from a timestamp plus a
// random suffix. Uniqueness is probabilistic by design; there is no central
// counter to coordinate concurrent generation.
func newInvoiceNumber(at time.Time) string {
	suffix := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:12])
	return fmt.Sprintf("INV-%s-%s", at.Format("20060102150405"), suffix)
}
