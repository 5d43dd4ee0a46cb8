package ginserver

import (
	"errors"
	"log/slog"
	"net/http"

	gin "github.com/gin-gonic/gin"

	listingapp "staybook/internal/app/handlers/listings"
	reservationapp "staybook/internal/app/handlers/reservation"
	domainlistings "staybook/internal/domain/listings"
	domainreservation "staybook/internal/domain/reservation"
	domainrange "staybook/internal/domain/shared/daterange"
	"staybook/internal/domain/shared/money"
)

// respondDomainError translates command and query failures into HTTP statuses.
// Conflicts over calendar state map to 409, permission failures to 403 and
// validation failures to 400.
func respondDomainError(c *gin.Context, logger *slog.Logger, err error) {
	switch {
	case errors.Is(err, domainreservation.ErrDateRangeConflict),
		errors.Is(err, domainlistings.ErrListingUnavailable),
		errors.Is(err, domainreservation.ErrInvalidState),
		errors.Is(err, domainreservation.ErrNotCheckedOutYet),
		errors.Is(err, domainlistings.ErrInvalidState):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, domainreservation.ErrSelfBooking),
		errors.Is(err, reservationapp.ErrReservationNotOwned),
		errors.Is(err, listingapp.ErrListingNotOwned):
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	case errors.Is(err, domainrange.ErrInvalidRange),
		errors.Is(err, domainreservation.ErrInvalidGuests),
		errors.Is(err, domainreservation.ErrGuestRequired),
		errors.Is(err, domainreservation.ErrGuestLimitExceeded),
		errors.Is(err, money.ErrInvalidDecimal),
		errors.Is(err, money.ErrInvalidCurrency):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, domainlistings.ErrNotFound),
		errors.Is(err, domainreservation.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	default:
		if logger != nil {
			logger.Error("request failed", "error", err)
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}
