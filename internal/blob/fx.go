package blob

import (
	"go.uber.org/fx"
)

var Module = fx.Module("blob",
	fx.Provide(New),
)
