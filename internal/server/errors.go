package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	billingdomain "github.com/railzwaylabs/tably/internal/billing/domain"
	invoicedomain "github.com/railzwaylabs/tably/internal/invoice/domain"
	menudomain "github.com/railzwaylabs/tably/internal/menu/domain"
	orderdomain "github.com/railzwaylabs/tably/internal/order/domain"
)

type apiError struct {
	Status int
	Code   string
}

func (e *apiError) Error() string { return e.Code }

var (
	ErrInvalidRequest = &apiError{Status: http.StatusBadRequest, Code: "invalid_request"}
	ErrUnauthorized   = &apiError{Status: http.StatusUnauthorized, Code: "unauthorized"}
	ErrNotFound       = &apiError{Status: http.StatusNotFound, Code: "not_found"}
	ErrInternal       = &apiError{Status: http.StatusInternalServerError, Code: "internal_error"}
)

// AbortWithError translates domain errors to API responses. Unrecognized
// errors collapse to a generic 500 so internals never leak to clients.
func AbortWithError(c *gin.Context, err error) {
	var apiErr *apiError
	if errors.As(err, &apiErr) {
		c.AbortWithStatusJSON(apiErr.Status, gin.H{"error": apiErr.Code})
		return
	}

	var conflict *orderdomain.VersionConflict
	if errors.As(err, &conflict) {
		c.AbortWithStatusJSON(http.StatusConflict, gin.H{
			"error":           "version_conflict",
			"current_version": conflict.CurrentVersion,
			"current_status":  conflict.CurrentStatus,
		})
		return
	}

	status := http.StatusInternalServerError
	code := "internal_error"
	switch {
	case errors.Is(err, orderdomain.ErrOrderNotFound),
		errors.Is(err, invoicedomain.ErrInvoiceNotFound),
		errors.Is(err, invoicedomain.ErrNoArtifact),
		errors.Is(err, menudomain.ErrDishNotFound),
		errors.Is(err, billingdomain.ErrNoActiveOrder):
		status, code = http.StatusNotFound, err.Error()
	case errors.Is(err, orderdomain.ErrTableOccupied),
		errors.Is(err, orderdomain.ErrOrderLocked),
		errors.Is(err, orderdomain.ErrOrderNotOpen),
		errors.Is(err, orderdomain.ErrVersionConflict):
		status, code = http.StatusConflict, err.Error()
	case errors.Is(err, orderdomain.ErrInvalidTable),
		errors.Is(err, orderdomain.ErrEmptyItems),
		errors.Is(err, orderdomain.ErrInvalidQuantity),
		errors.Is(err, orderdomain.ErrInvalidPrice),
		errors.Is(err, invoicedomain.ErrEmptyOrder),
		errors.Is(err, menudomain.ErrInvalidDish):
		status, code = http.StatusBadRequest, err.Error()
	case errors.Is(err, menudomain.ErrDishUnavailable):
		status, code = http.StatusUnprocessableEntity, err.Error()
	case errors.Is(err, invoicedomain.ErrPersistenceFailed):
		status, code = http.StatusServiceUnavailable, err.Error()
	}
	c.AbortWithStatusJSON(status, gin.H{"error": code})
}
