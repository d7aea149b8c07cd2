package observability

import (
	"github.com/railzwaylabs/tably/internal/observability/logger"
	"github.com/railzwaylabs/tably/internal/observability/metrics"
	"go.uber.org/fx"
)

var Module = fx.Module("observability",
	logger.Module,
	metrics.Module,
)
