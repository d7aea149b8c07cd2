package server

import (
	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	menudomain "github.com/railzwaylabs/tably/internal/menu/domain"
	"github.com/shopspring/decimal"
)

type createDishRequest struct {
	Name      string          `json:"name"`
	Category  string          `json:"category"`
	UnitPrice decimal.Decimal `json:"unit_price"`
}

type setAvailabilityRequest struct {
	Available bool `json:"available"`
}

func (s *Server) ListMenu(c *gin.Context) {
	dishes, err := s.menuSvc.List(c.Request.Context(), hotelID(c))
	if err != nil {
		AbortWithError(c, err)
		return
	}
	respondData(c, dishes)
}

func (s *Server) CreateDish(c *gin.Context) {
	var req createDishRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	dish, err := s.menuSvc.Create(c.Request.Context(), menudomain.CreateDishRequest{
		HotelID:   hotelID(c),
		Name:      req.Name,
		Category:  req.Category,
		UnitPrice: req.UnitPrice,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}
	respondCreated(c, dish)
}

func (s *Server) SetDishAvailability(c *gin.Context) {
	dishID, err := snowflake.ParseString(c.Param("id"))
	if err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	var req setAvailabilityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	if err := s.menuSvc.SetAvailability(c.Request.Context(), hotelID(c), dishID, req.Available); err != nil {
		AbortWithError(c, err)
		return
	}
	respondData(c, gin.H{"available": req.Available})
}
