package service

import (
	"context"

	invoicedomain "github.com/railzwaylabs/tably/internal/invoice/domain"
	"github.com/railzwaylabs/tably/internal/observability/metrics"
	"go.uber.org/zap"
)

// fallbackGenerator tries the remote path and unconditionally delegates to
// the deterministic local computation on any failure. Callers never observe
// which path produced the result except through logs and counters.
type fallbackGenerator struct {
	primary invoicedomain.Generator
	local   invoicedomain.Generator
	log     *zap.Logger
	metrics *metrics.Metrics
}

func newFallbackGenerator(primary, local invoicedomain.Generator, log *zap.Logger, m *metrics.Metrics) invoicedomain.Generator {
	return &fallbackGenerator{
		primary: primary,
		local:   local,
		log:     log,
		metrics: m,
	}
}

func (g *fallbackGenerator) Name() string { return "fallback" }

func (g *fallbackGenerator) Generate(ctx context.Context, req invoicedomain.GenerateRequest) (*invoicedomain.GeneratedInvoice, error) {
	if g.primary != nil {
		result, err := g.primary.Generate(ctx, req)
		if err == nil {
			g.metrics.InvoicesIssued.WithLabelValues(g.primary.Name()).Inc()
			return result, nil
		}
		g.log.Warn("remote invoice generation failed, using local computation",
			zap.String("invoice_number", req.InvoiceNumber),
			zap.Error(err),
		)
		g.metrics.GeneratorFallbacks.Inc()
	}

	result, err := g.local.Generate(ctx, req)
	if err != nil {
		return nil, err
	}
	g.metrics.InvoicesIssued.WithLabelValues(g.local.Name()).Inc()
	return result, nil
}
