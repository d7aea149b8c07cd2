package repository

import (
	"context"

	"github.com/bwmarrin/snowflake"
	menudomain "github.com/railzwaylabs/tably/internal/menu/domain"
	"gorm.io/gorm"
)

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) menudomain.Repository {
	return &repository{db: db}
}

func (r *repository) Insert(ctx context.Context, dish *menudomain.Dish) error {
	return r.db.WithContext(ctx).Create(dish).Error
}

func (r *repository) ListByHotel(ctx context.Context, hotelID snowflake.ID) ([]menudomain.Dish, error) {
	var dishes []menudomain.Dish
	err := r.db.WithContext(ctx).
		Where("hotel_id = ?", hotelID).
		Order("category, name").
		Find(&dishes).Error
	return dishes, err
}

func (r *repository) FindByIDs(ctx context.Context, hotelID snowflake.ID, dishIDs []snowflake.ID) ([]menudomain.Dish, error) {
	var dishes []menudomain.Dish
	err := r.db.WithContext(ctx).
		Where("hotel_id = ? AND id IN ?", hotelID, dishIDs).
		Find(&dishes).Error
	return dishes, err
}

func (r *repository) UpdateAvailability(ctx context.Context, hotelID, dishID snowflake.ID, available bool) (int64, error) {
	result := r.db.WithContext(ctx).Model(&menudomain.Dish{}).
		Where("hotel_id = ? AND id = ?", hotelID, dishID).
		Update("available", available)
	return result.RowsAffected, result.Error
}
