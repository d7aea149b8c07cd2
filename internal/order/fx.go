package order

import (
	"github.com/railzwaylabs/tably/internal/order/service"
	"go.uber.org/fx"
)

var Module = fx.Module("order.service",
	fx.Provide(service.NewService),
)
