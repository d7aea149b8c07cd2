package server

import (
	"strconv"

	"github.com/gin-gonic/gin"
	billingdomain "github.com/railzwaylabs/tably/internal/billing/domain"
	invoicedomain "github.com/railzwaylabs/tably/internal/invoice/domain"
	"github.com/shopspring/decimal"
)

type billTableRequest struct {
	TaxPercentage     decimal.Decimal `json:"tax_percentage"`
	ServicePercentage decimal.Decimal `json:"service_percentage"`
	Discount          decimal.Decimal `json:"discount"`
}

func tableFromPath(c *gin.Context) (int, bool) {
	table, err := strconv.Atoi(c.Param("table"))
	if err != nil || table <= 0 {
		AbortWithError(c, ErrInvalidRequest)
		return 0, false
	}
	return table, true
}

func (s *Server) BillTable(c *gin.Context) {
	table, ok := tableFromPath(c)
	if !ok {
		return
	}

	var req billTableRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}
	if req.TaxPercentage.IsNegative() || req.ServicePercentage.IsNegative() || req.Discount.IsNegative() {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	invoice, err := s.billingSvc.Bill(c.Request.Context(), billingdomain.BillRequest{
		HotelID:     hotelID(c),
		TableNumber: table,
		Params: invoicedomain.ComposeParams{
			TaxPercentage:     req.TaxPercentage,
			ServicePercentage: req.ServicePercentage,
			Discount:          req.Discount,
		},
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}
	respondCreated(c, invoice)
}
