package service

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/railzwaylabs/tably/internal/audit"
	auditdomain "github.com/railzwaylabs/tably/internal/audit/domain"
	invoicedomain "github.com/railzwaylabs/tably/internal/invoice/domain"
	"github.com/railzwaylabs/tably/internal/invoice/render"
	"github.com/railzwaylabs/tably/internal/invoice/repository"
	pkgdb "github.com/railzwaylabs/tably/pkg/db"
	"github.com/railzwaylabs/tably/pkg/retry"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Store persists the invoice across the relational store and the blob
// store without a distributed transaction: the record commits first as the
// source of truth, the artifact uploads best-effort afterwards, and a
// failed upload clears the planned artifact key so no record ever points
// at a missing blob.
func (s *Service) Store(ctx context.Context, hotelID snowflake.ID, invoice *invoicedomain.Invoice) (*invoicedomain.Invoice, error) {
	if invoice == nil {
		return nil, invoicedomain.ErrEmptyOrder
	}
	invoice.HotelID = hotelID

	artifact, contentType := s.renderArtifact(invoice)

	stored, err := s.storeRecord(ctx, hotelID, invoice)
	if err != nil {
		s.log.Error("invoice persistence failed after retries",
			zap.String("invoice_number", invoice.InvoiceNumber),
			zap.Error(err),
		)
		return nil, invoicedomain.ErrPersistenceFailed
	}

	// Upload strictly after commit. Never retried here: a failed upload
	// degrades to a nil artifact key rather than blocking the invoice.
	if artifact != nil && stored.ArtifactKey != nil {
		if err := s.blob.Put(ctx, *stored.ArtifactKey, artifact, contentType); err != nil {
			s.log.Warn("invoice artifact degraded",
				zap.String("invoice_number", stored.InvoiceNumber),
				zap.String("artifact_key", *stored.ArtifactKey),
				zap.Error(err),
			)
			s.metrics.ArtifactsDegraded.Inc()
			s.clearArtifactKeyAsync(stored.ID)
			stored.ArtifactKey = nil
		}
	}

	return stored, nil
}

// renderArtifact is best-effort: a rendering failure or disabled artifacts
// never abort storage.
func (s *Service) renderArtifact(invoice *invoicedomain.Invoice) ([]byte, string) {
	if !s.cfg.Artifacts.Enabled || !s.blob.Enabled() {
		return nil, ""
	}
	data, contentType, err := s.renderer.Render(invoice)
	if err != nil {
		s.log.Warn("invoice rendering failed",
			zap.String("invoice_number", invoice.InvoiceNumber),
			zap.Error(err),
		)
		return nil, ""
	}
	key := render.ArtifactKey(invoice)
	invoice.ArtifactKey = &key
	return data, contentType
}

func (s *Service) storeRecord(ctx context.Context, hotelID snowflake.ID, invoice *invoicedomain.Invoice) (*invoicedomain.Invoice, error) {
	stored := invoice

	err := retry.Do(ctx, s.cfg.Billing.StoreMaxRetries, s.cfg.Billing.StoreInitialDelay, func() error {
		err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			if err := repository.NewRepository(tx).Insert(ctx, invoice); err != nil {
				return err
			}
			s.audit.Record(ctx, tx, audit.Entry{
				HotelID:    hotelID,
				ActorType:  auditdomain.ActorTypeSystem,
				Action:     auditdomain.ActionInvoiceStored,
				TargetType: "invoice",
				TargetID:   invoice.ID.String(),
				Metadata:   map[string]any{"invoice_number": invoice.InvoiceNumber},
			})
			return nil
		})
		if err == nil {
			return nil
		}

		// The number is pre-generated, so a retry after a committed but
		// unacknowledged attempt hits the unique index. That prior commit
		// is the success; fetch and return it.
		if pkgdb.IsUniqueViolation(err) {
			existing, findErr := s.repo.FindByNumber(ctx, hotelID, invoice.InvoiceNumber)
			if findErr == nil && existing != nil {
				stored = existing
				return nil
			}
			return retry.Permanent(err)
		}
		return err
	})
	if err != nil {
		return nil, err
	}
	return stored, nil
}

// clearArtifactKeyAsync reconciles the committed record after a failed
// upload, off the request path.
func (s *Service) clearArtifactKeyAsync(invoiceID snowflake.ID) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := s.repo.ClearArtifactKey(ctx, invoiceID); err != nil {
			s.log.Error("failed to clear dangling artifact key",
				zap.String("invoice_id", invoiceID.String()),
				zap.Error(err),
			)
		}
	}()
}

func (s *Service) Retrieve(ctx context.Context, hotelID, invoiceID snowflake.ID) (*invoicedomain.Invoice, error) {
	invoice, err := s.repo.FindByID(ctx, hotelID, invoiceID)
	if err != nil {
		return nil, err
	}
	if invoice == nil {
		return nil, invoicedomain.ErrInvoiceNotFound
	}
	return invoice, nil
}

func (s *Service) ArtifactURL(ctx context.Context, hotelID, invoiceID snowflake.ID) (string, error) {
	invoice, err := s.Retrieve(ctx, hotelID, invoiceID)
	if err != nil {
		return "", err
	}
	if invoice.ArtifactKey == nil {
		return "", invoicedomain.ErrNoArtifact
	}
	return s.blob.PresignGet(ctx, *invoice.ArtifactKey, s.cfg.Storage.PresignExpiry)
}
