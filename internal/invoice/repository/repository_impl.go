package repository

import (
	"context"

	"github.com/bwmarrin/snowflake"
	invoicedomain "github.com/railzwaylabs/tably/internal/invoice/domain"
	"gorm.io/gorm"
)

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) invoicedomain.Repository {
	return &repository{db: db}
}

func (r *repository) Insert(ctx context.Context, invoice *invoicedomain.Invoice) error {
	return r.db.WithContext(ctx).Create(invoice).Error
}

func (r *repository) FindByID(ctx context.Context, hotelID, invoiceID snowflake.ID) (*invoicedomain.Invoice, error) {
	var invoice invoicedomain.Invoice
	err := r.db.WithContext(ctx).
		Preload("Items").
		Where("hotel_id = ? AND id = ?", hotelID, invoiceID).
		First(&invoice).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &invoice, nil
}

func (r *repository) FindByNumber(ctx context.Context, hotelID snowflake.ID, number string) (*invoicedomain.Invoice, error) {
	var invoice invoicedomain.Invoice
	err := r.db.WithContext(ctx).
		Preload("Items").
		Where("hotel_id = ? AND invoice_number = ?", hotelID, number).
		First(&invoice).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &invoice, nil
}

func (r *repository) ClearArtifactKey(ctx context.Context, invoiceID snowflake.ID) error {
	return r.db.WithContext(ctx).Exec(
		`UPDATE invoices SET artifact_key = NULL WHERE id = ?`,
		invoiceID,
	).Error
}
