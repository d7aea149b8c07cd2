package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	billingdomain "github.com/railzwaylabs/tably/internal/billing/domain"
	"github.com/railzwaylabs/tably/internal/config"
	invoicedomain "github.com/railzwaylabs/tably/internal/invoice/domain"
	menudomain "github.com/railzwaylabs/tably/internal/menu/domain"
	"github.com/railzwaylabs/tably/internal/observability/metrics"
	orderdomain "github.com/railzwaylabs/tably/internal/order/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var Module = fx.Module("server",
	fx.Provide(NewServer),
	fx.Invoke(Start),
)

type Server struct {
	log     *zap.Logger
	cfg     config.Config
	db      *gorm.DB
	metrics *metrics.Metrics

	orderSvc   orderdomain.Service
	invoiceSvc invoicedomain.Service
	billingSvc billingdomain.Service
	menuSvc    menudomain.Service

	engine *gin.Engine
}

type Param struct {
	fx.In

	Log     *zap.Logger
	Config  config.Config
	DB      *gorm.DB
	Metrics *metrics.Metrics

	OrderSvc   orderdomain.Service
	InvoiceSvc invoicedomain.Service
	BillingSvc billingdomain.Service
	MenuSvc    menudomain.Service
}

func NewServer(p Param) *Server {
	if p.Config.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	s := &Server{
		log:        p.Log.Named("server"),
		cfg:        p.Config,
		db:         p.DB,
		metrics:    p.Metrics,
		orderSvc:   p.OrderSvc,
		invoiceSvc: p.InvoiceSvc,
		billingSvc: p.BillingSvc,
		menuSvc:    p.MenuSvc,
	}
	s.engine = s.buildEngine()
	return s
}

func (s *Server) buildEngine() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(requestLogger(s.log))

	r.GET("/healthz", s.Healthz)
	r.GET("/readyz", s.Readyz)
	r.GET("/metrics", gin.WrapH(s.metrics.Handler()))

	v1 := r.Group("/v1", hotelScope())
	{
		v1.GET("/menu", s.ListMenu)
		v1.POST("/menu", s.CreateDish)
		v1.PATCH("/menu/:id/availability", s.SetDishAvailability)

		v1.POST("/orders", s.CreateOrder)
		v1.GET("/orders/:id", s.GetOrder)
		v1.PUT("/orders/:id", s.UpdateOrder)
		v1.POST("/orders/:id/cancel", s.CancelOrder)

		v1.GET("/tables/:table/order", s.GetActiveOrder)
		v1.POST("/tables/:table/bill", s.BillTable)

		v1.GET("/invoices/:id", s.GetInvoice)
		v1.GET("/invoices/:id/artifact-url", s.GetInvoiceArtifactURL)
	}
	return r
}

func (s *Server) Handler() http.Handler {
	return s.engine
}

func Start(lc fx.Lifecycle, s *Server) {
	srv := &http.Server{
		Addr:              s.cfg.Server.Addr,
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				s.log.Info("http server listening", zap.String("addr", srv.Addr))
				if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					s.log.Error("http server stopped", zap.Error(err))
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			return srv.Shutdown(ctx)
		},
	})
}
