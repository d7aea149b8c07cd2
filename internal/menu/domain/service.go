package domain

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
)

type Service interface {
	List(ctx context.Context, hotelID snowflake.ID) ([]Dish, error)

	Create(ctx context.Context, req CreateDishRequest) (*Dish, error)

	SetAvailability(ctx context.Context, hotelID, dishID snowflake.ID, available bool) error

	// Resolve maps dish IDs to their current name and price. Every
	// reference must exist, belong to the hotel, and be available, or
	// the whole resolution fails.
	Resolve(ctx context.Context, hotelID snowflake.ID, dishIDs []snowflake.ID) (map[snowflake.ID]Dish, error)
}

type CreateDishRequest struct {
	HotelID   snowflake.ID
	Name      string
	Category  string
	UnitPrice decimal.Decimal
}

var (
	ErrDishNotFound    = errors.New("dish_not_found")
	ErrDishUnavailable = errors.New("dish_unavailable")
	ErrInvalidDish     = errors.New("invalid_dish")
)
