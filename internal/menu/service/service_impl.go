package service

import (
	"context"
	"strings"

	"github.com/bwmarrin/snowflake"
	menudomain "github.com/railzwaylabs/tably/internal/menu/domain"
	"github.com/railzwaylabs/tably/internal/menu/repository"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Service struct {
	log   *zap.Logger
	genID *snowflake.Node
	repo  menudomain.Repository
}

type ServiceParam struct {
	fx.In

	DB    *gorm.DB
	Log   *zap.Logger
	GenID *snowflake.Node
}

func NewService(p ServiceParam) menudomain.Service {
	return &Service{
		log:   p.Log.Named("menu.service"),
		genID: p.GenID,
		repo:  repository.NewRepository(p.DB),
	}
}

func (s *Service) List(ctx context.Context, hotelID snowflake.ID) ([]menudomain.Dish, error) {
	return s.repo.ListByHotel(ctx, hotelID)
}

func (s *Service) Create(ctx context.Context, req menudomain.CreateDishRequest) (*menudomain.Dish, error) {
	if strings.TrimSpace(req.Name) == "" || req.UnitPrice.IsNegative() {
		return nil, menudomain.ErrInvalidDish
	}

	dish := &menudomain.Dish{
		ID:        s.genID.Generate(),
		HotelID:   req.HotelID,
		Name:      strings.TrimSpace(req.Name),
		Category:  strings.TrimSpace(req.Category),
		UnitPrice: req.UnitPrice,
		Available: true,
	}
	if err := s.repo.Insert(ctx, dish); err != nil {
		return nil, err
	}
	return dish, nil
}

func (s *Service) SetAvailability(ctx context.Context, hotelID, dishID snowflake.ID, available bool) error {
	affected, err := s.repo.UpdateAvailability(ctx, hotelID, dishID, available)
	if err != nil {
		return err
	}
	if affected == 0 {
		return menudomain.ErrDishNotFound
	}
	return nil
}

func (s *Service) Resolve(ctx context.Context, hotelID snowflake.ID, dishIDs []snowflake.ID) (map[snowflake.ID]menudomain.Dish, error) {
	if len(dishIDs) == 0 {
		return map[snowflake.ID]menudomain.Dish{}, nil
	}

	dishes, err := s.repo.FindByIDs(ctx, hotelID, dishIDs)
	if err != nil {
		return nil, err
	}

	byID := make(map[snowflake.ID]menudomain.Dish, len(dishes))
	for _, dish := range dishes {
		byID[dish.ID] = dish
	}
	for _, id := range dishIDs {
		dish, ok := byID[id]
		if !ok {
			return nil, menudomain.ErrDishNotFound
		}
		if !dish.Available {
			return nil, menudomain.ErrDishUnavailable
		}
	}
	return byID, nil
}
