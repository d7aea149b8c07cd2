package server

import (
	"errors"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	orderdomain "github.com/railzwaylabs/tably/internal/order/domain"
)

func (s *Server) countConflict(err error) {
	if errors.Is(err, orderdomain.ErrVersionConflict) {
		s.metrics.VersionConflicts.Inc()
	}
}

type orderItemRequest struct {
	DishID   snowflake.ID `json:"dish_id"`
	Quantity int64        `json:"quantity"`
}

type createOrderRequest struct {
	TableNumber int                `json:"table_number"`
	Items       []orderItemRequest `json:"items"`
	Notes       *string            `json:"notes"`
}

type updateOrderRequest struct {
	Items           []orderItemRequest `json:"items"`
	Notes           *string            `json:"notes"`
	ExpectedVersion int64              `json:"expected_version"`
}

type cancelOrderRequest struct {
	ExpectedVersion int64 `json:"expected_version"`
}

// resolveItems turns dish references into priced order lines. Name and
// unit price are captured at resolution time, so later menu edits never
// change an existing order.
func (s *Server) resolveItems(c *gin.Context, items []orderItemRequest) ([]orderdomain.ItemInput, error) {
	dishIDs := make([]snowflake.ID, 0, len(items))
	for _, item := range items {
		dishIDs = append(dishIDs, item.DishID)
	}

	dishes, err := s.menuSvc.Resolve(c.Request.Context(), hotelID(c), dishIDs)
	if err != nil {
		return nil, err
	}

	inputs := make([]orderdomain.ItemInput, 0, len(items))
	for _, item := range items {
		dish := dishes[item.DishID]
		inputs = append(inputs, orderdomain.ItemInput{
			ReferenceID: dish.ID,
			Name:        dish.Name,
			UnitPrice:   dish.UnitPrice,
			Quantity:    item.Quantity,
		})
	}
	return inputs, nil
}

func (s *Server) CreateOrder(c *gin.Context) {
	var req createOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	items, err := s.resolveItems(c, req.Items)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	order, err := s.orderSvc.Create(c.Request.Context(), orderdomain.CreateRequest{
		HotelID:     hotelID(c),
		TableNumber: req.TableNumber,
		Items:       items,
		Notes:       req.Notes,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}
	respondCreated(c, order)
}

func (s *Server) GetOrder(c *gin.Context) {
	orderID, err := snowflake.ParseString(c.Param("id"))
	if err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	order, err := s.orderSvc.Get(c.Request.Context(), hotelID(c), orderID)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	respondData(c, order)
}

func (s *Server) UpdateOrder(c *gin.Context) {
	orderID, err := snowflake.ParseString(c.Param("id"))
	if err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	var req updateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	items, err := s.resolveItems(c, req.Items)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	order, err := s.orderSvc.Update(c.Request.Context(), orderdomain.UpdateRequest{
		HotelID:         hotelID(c),
		OrderID:         orderID,
		Items:           items,
		Notes:           req.Notes,
		ExpectedVersion: req.ExpectedVersion,
	})
	if err != nil {
		s.countConflict(err)
		AbortWithError(c, err)
		return
	}
	respondData(c, order)
}

func (s *Server) CancelOrder(c *gin.Context) {
	orderID, err := snowflake.ParseString(c.Param("id"))
	if err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	var req cancelOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	// Scope check before the transition; Cancel itself works by ID.
	if _, err := s.orderSvc.Get(c.Request.Context(), hotelID(c), orderID); err != nil {
		AbortWithError(c, err)
		return
	}

	if err := s.orderSvc.Cancel(c.Request.Context(), orderID, req.ExpectedVersion); err != nil {
		s.countConflict(err)
		AbortWithError(c, err)
		return
	}

	order, err := s.orderSvc.Get(c.Request.Context(), hotelID(c), orderID)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	respondData(c, order)
}

func (s *Server) GetActiveOrder(c *gin.Context) {
	table, ok := tableFromPath(c)
	if !ok {
		return
	}

	order, err := s.orderSvc.GetActive(c.Request.Context(), hotelID(c), table)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	if order == nil {
		AbortWithError(c, orderdomain.ErrOrderNotFound)
		return
	}
	respondData(c, order)
}
