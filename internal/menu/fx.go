package menu

import (
	"github.com/railzwaylabs/tably/internal/menu/service"
	"go.uber.org/fx"
)

var Module = fx.Module("menu.service",
	fx.Provide(service.NewService),
)
