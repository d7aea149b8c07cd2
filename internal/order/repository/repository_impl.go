package repository

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	orderdomain "github.com/railzwaylabs/tably/internal/order/domain"
	"gorm.io/gorm"
)

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) orderdomain.Repository {
	return &repository{db: db}
}

func (r *repository) Insert(ctx context.Context, order *orderdomain.Order) error {
	return r.db.WithContext(ctx).Create(order).Error
}

func (r *repository) FindByID(ctx context.Context, hotelID, orderID snowflake.ID) (*orderdomain.Order, error) {
	var order orderdomain.Order
	err := r.db.WithContext(ctx).
		Preload("Items").
		Where("hotel_id = ? AND id = ?", hotelID, orderID).
		First(&order).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &order, nil
}

func (r *repository) FindOpenByTable(ctx context.Context, hotelID snowflake.ID, tableNumber int) (*orderdomain.Order, error) {
	var order orderdomain.Order
	err := r.db.WithContext(ctx).
		Preload("Items").
		Where("hotel_id = ? AND table_number = ? AND status = ?", hotelID, tableNumber, orderdomain.OrderStatusOpen).
		First(&order).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &order, nil
}

func (r *repository) CountOpenByTable(ctx context.Context, hotelID snowflake.ID, tableNumber int) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&orderdomain.Order{}).
		Where("hotel_id = ? AND table_number = ? AND status = ?", hotelID, tableNumber, orderdomain.OrderStatusOpen).
		Count(&count).Error
	return count, err
}

// CompareAndSwap is the single write path for order mutations. The version
// predicate in the WHERE clause is what serializes concurrent writers; no
// in-process lock is involved.
func (r *repository) CompareAndSwap(
	ctx context.Context,
	orderID snowflake.ID,
	expectedVersion int64,
	expectedStatus orderdomain.OrderStatus,
	set map[string]any,
) (bool, error) {
	updates := map[string]any{
		"version":    gorm.Expr("version + 1"),
		"updated_at": time.Now().UTC(),
	}
	for column, value := range set {
		updates[column] = value
	}

	result := r.db.WithContext(ctx).Model(&orderdomain.Order{}).
		Where("id = ? AND version = ? AND status = ?", orderID, expectedVersion, expectedStatus).
		Updates(updates)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (r *repository) ReplaceItems(ctx context.Context, orderID snowflake.ID, items []orderdomain.OrderItem) error {
	if err := r.db.WithContext(ctx).
		Where("order_id = ?", orderID).
		Delete(&orderdomain.OrderItem{}).Error; err != nil {
		return err
	}
	if len(items) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Create(&items).Error
}

func (r *repository) AcquireLock(ctx context.Context, orderID snowflake.ID, holderID string, expiresAt, now time.Time) (bool, error) {
	result := r.db.WithContext(ctx).Exec(
		`UPDATE orders
		 SET lock_holder = ?, lock_expires_at = ?, updated_at = ?
		 WHERE id = ? AND status = ?
		   AND (lock_holder IS NULL OR lock_holder = ? OR lock_expires_at <= ?)`,
		holderID,
		expiresAt,
		now,
		orderID,
		orderdomain.OrderStatusOpen,
		holderID,
		now,
	)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (r *repository) ReleaseLock(ctx context.Context, orderID snowflake.ID, holderID string) error {
	return r.db.WithContext(ctx).Exec(
		`UPDATE orders
		 SET lock_holder = NULL, lock_expires_at = NULL
		 WHERE id = ? AND lock_holder = ?`,
		orderID,
		holderID,
	).Error
}
