package invoice

import (
	"github.com/railzwaylabs/tably/internal/invoice/render"
	"github.com/railzwaylabs/tably/internal/invoice/service"
	"go.uber.org/fx"
)

var Module = fx.Module("invoice.service",
	fx.Provide(render.NewRenderer),
	fx.Provide(service.NewService),
)
