package service

import (
	"context"
	"testing"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	menudomain "github.com/railzwaylabs/tably/internal/menu/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func newTestService(t *testing.T) menudomain.Service {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file:"+t.Name()+"?mode=memory&cache=shared"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&menudomain.Dish{}))

	node, err := snowflake.NewNode(4)
	require.NoError(t, err)

	return NewService(ServiceParam{DB: db, Log: zap.NewNop(), GenID: node})
}

func seedDish(t *testing.T, svc menudomain.Service, hotelID snowflake.ID, name, price string) *menudomain.Dish {
	t.Helper()
	dish, err := svc.Create(context.Background(), menudomain.CreateDishRequest{
		HotelID:   hotelID,
		Name:      name,
		Category:  "mains",
		UnitPrice: decimal.RequireFromString(price),
	})
	require.NoError(t, err)
	return dish
}

func TestCreateAndList(t *testing.T) {
	svc := newTestService(t)
	hotelID := snowflake.ID(11)

	seedDish(t, svc, hotelID, "rendang", "15.99")
	seedDish(t, svc, hotelID, "es campur", "8.50")
	seedDish(t, svc, snowflake.ID(12), "other hotel dish", "1.00")

	dishes, err := svc.List(context.Background(), hotelID)
	require.NoError(t, err)
	require.Len(t, dishes, 2)
}

func TestCreateRejectsInvalid(t *testing.T) {
	svc := newTestService(t)

	_, err := svc.Create(context.Background(), menudomain.CreateDishRequest{
		HotelID: snowflake.ID(11),
		Name:    "   ",
	})
	require.ErrorIs(t, err, menudomain.ErrInvalidDish)

	_, err = svc.Create(context.Background(), menudomain.CreateDishRequest{
		HotelID:   snowflake.ID(11),
		Name:      "free lunch",
		UnitPrice: decimal.RequireFromString("-1"),
	})
	require.ErrorIs(t, err, menudomain.ErrInvalidDish)
}

func TestResolve(t *testing.T) {
	svc := newTestService(t)
	hotelID := snowflake.ID(11)
	ctx := context.Background()

	first := seedDish(t, svc, hotelID, "rendang", "15.99")
	second := seedDish(t, svc, hotelID, "es campur", "8.50")

	resolved, err := svc.Resolve(ctx, hotelID, []snowflake.ID{first.ID, second.ID})
	require.NoError(t, err)
	require.Len(t, resolved, 2)
	require.Equal(t, "rendang", resolved[first.ID].Name)
	require.True(t, decimal.RequireFromString("8.50").Equal(resolved[second.ID].UnitPrice))
}

func TestResolveUnknownDish(t *testing.T) {
	svc := newTestService(t)
	hotelID := snowflake.ID(11)

	dish := seedDish(t, svc, hotelID, "rendang", "15.99")

	_, err := svc.Resolve(context.Background(), hotelID, []snowflake.ID{dish.ID, snowflake.ID(999)})
	require.ErrorIs(t, err, menudomain.ErrDishNotFound)

	// Another hotel cannot resolve this hotel's dish.
	_, err = svc.Resolve(context.Background(), snowflake.ID(12), []snowflake.ID{dish.ID})
	require.ErrorIs(t, err, menudomain.ErrDishNotFound)
}

func TestResolveUnavailableDish(t *testing.T) {
	svc := newTestService(t)
	hotelID := snowflake.ID(11)
	ctx := context.Background()

	dish := seedDish(t, svc, hotelID, "rendang", "15.99")
	require.NoError(t, svc.SetAvailability(ctx, hotelID, dish.ID, false))

	_, err := svc.Resolve(ctx, hotelID, []snowflake.ID{dish.ID})
	require.ErrorIs(t, err, menudomain.ErrDishUnavailable)

	require.NoError(t, svc.SetAvailability(ctx, hotelID, dish.ID, true))
	_, err = svc.Resolve(ctx, hotelID, []snowflake.ID{dish.ID})
	require.NoError(t, err)
}

func TestSetAvailabilityUnknownDish(t *testing.T) {
	svc := newTestService(t)
	err := svc.SetAvailability(context.Background(), snowflake.ID(11), snowflake.ID(404), false)
	require.ErrorIs(t, err, menudomain.ErrDishNotFound)
}
