package ginserver

import (
	"log/slog"
	"net/http"
	"time"

	gin "github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"staybook/internal/app/commands"
	reservationapp "staybook/internal/app/handlers/reservation"
)

type ReservationHTTP interface {
	Create(c *gin.Context)
	Cancel(c *gin.Context)
}

type ReservationHandler struct {
	Commands commands.Bus
	Logger   *slog.Logger
}

type createReservationRequest struct {
	ListingID    string    `json:"listingId"`
	CheckinDate  time.Time `json:"checkinDate"`
	CheckoutDate time.Time `json:"checkoutDate"`
	Guests       int       `json:"guests"`
	Message      string    `json:"message"`
}

func (h ReservationHandler) Create(c *gin.Context) {
	user, ok := requireRole(c, "")
	if !ok {
		return
	}
	if h.Commands == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "commands unavailable"})
		return
	}
	var req createReservationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	cmd := reservationapp.RequestReservationCommand{
		CommandID:       generateCommandID(),
		ListingID:       req.ListingID,
		GuestID:         user.ID,
		CheckIn:         req.CheckinDate,
		CheckOut:        req.CheckoutDate,
		Guests:          req.Guests,
		Message:         req.Message,
		IdempotencyKeyV: c.GetHeader("Idempotency-Key"),
	}
	result, err := commands.Dispatch[reservationapp.RequestReservationCommand, *reservationapp.RequestReservationResult](c.Request.Context(), h.Commands, cmd)
	if err != nil {
		respondDomainError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusCreated, result)
}

type cancelReservationRequest struct {
	Reason string `json:"reason"`
}

func (h ReservationHandler) Cancel(c *gin.Context) {
	user, ok := requireRole(c, "")
	if !ok {
		return
	}
	if h.Commands == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "commands unavailable"})
		return
	}
	var req cancelReservationRequest
	_ = c.ShouldBindJSON(&req)
	cmd := reservationapp.CancelReservationCommand{
		ActorID:       user.ID,
		ReservationID: c.Param("id"),
		Reason:        req.Reason,
	}
	result, err := commands.Dispatch[reservationapp.CancelReservationCommand, *reservationapp.ReservationActionResult](c.Request.Context(), h.Commands, cmd)
	if err != nil {
		respondDomainError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func generateCommandID() string {
	return uuid.NewString()
}

var _ ReservationHTTP = ReservationHandler{}
