package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
)

type Repository interface {
	Insert(ctx context.Context, dish *Dish) error
	ListByHotel(ctx context.Context, hotelID snowflake.ID) ([]Dish, error)
	FindByIDs(ctx context.Context, hotelID snowflake.ID, dishIDs []snowflake.ID) ([]Dish, error)
	UpdateAvailability(ctx context.Context, hotelID, dishID snowflake.ID, available bool) (int64, error)
}
