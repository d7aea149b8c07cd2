package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
)

type Dish struct {
	ID        snowflake.ID    `gorm:"primaryKey" json:"id"`
	HotelID   snowflake.ID    `gorm:"not null;index:idx_dishes_hotel" json:"hotel_id"`
	Name      string          `gorm:"not null" json:"name"`
	Category  string          `json:"category"`
	UnitPrice decimal.Decimal `gorm:"type:numeric(12,4);not null" json:"unit_price"`
	Available bool            `gorm:"not null;default:true" json:"available"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

func (Dish) TableName() string {
	return "dishes"
}
