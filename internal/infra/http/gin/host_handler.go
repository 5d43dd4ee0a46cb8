package ginserver

import (
	"log/slog"
	"net/http"

	gin "github.com/gin-gonic/gin"

	"staybook/internal/app/commands"
	"staybook/internal/app/dto"
	listingapp "staybook/internal/app/handlers/listings"
	reservationapp "staybook/internal/app/handlers/reservation"
	"staybook/internal/app/queries"
)

type HostListingHTTP interface {
	List(c *gin.Context)
	Create(c *gin.Context)
	Update(c *gin.Context)
	SetAvailability(c *gin.Context)
	Deactivate(c *gin.Context)
	Reactivate(c *gin.Context)
	Delete(c *gin.Context)
}

type HostReservationHTTP interface {
	List(c *gin.Context)
	Confirm(c *gin.Context)
}

type HostListingHandler struct {
	Commands commands.Bus
	Queries  queries.Bus
	Logger   *slog.Logger
}

type listingRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	NightlyRate string `json:"nightlyRate"`
	Currency    string `json:"currency"`
	GuestsLimit int    `json:"guestsLimit"`
}

func (h HostListingHandler) List(c *gin.Context) {
	user, ok := requireRole(c, "host")
	if !ok {
		return
	}
	query := listingapp.ListOwnListingsQuery{OwnerID: user.ID}
	result, err := queries.Ask[listingapp.ListOwnListingsQuery, dto.ListingCollection](c.Request.Context(), h.Queries, query)
	if err != nil {
		respondDomainError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h HostListingHandler) Create(c *gin.Context) {
	user, ok := requireRole(c, "host")
	if !ok {
		return
	}
	var req listingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	cmd := listingapp.CreateListingCommand{
		CommandID:   generateCommandID(),
		OwnerID:     user.ID,
		Title:       req.Title,
		Description: req.Description,
		NightlyRate: req.NightlyRate,
		Currency:    req.Currency,
		GuestsLimit: req.GuestsLimit,
	}
	result, err := commands.Dispatch[listingapp.CreateListingCommand, *dto.ListingDetail](c.Request.Context(), h.Commands, cmd)
	if err != nil {
		respondDomainError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusCreated, result)
}

func (h HostListingHandler) Update(c *gin.Context) {
	user, ok := requireRole(c, "host")
	if !ok {
		return
	}
	var req listingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	cmd := listingapp.UpdateListingCommand{
		OwnerID:     user.ID,
		ListingID:   c.Param("id"),
		Title:       req.Title,
		Description: req.Description,
		NightlyRate: req.NightlyRate,
		Currency:    req.Currency,
		GuestsLimit: req.GuestsLimit,
	}
	result, err := commands.Dispatch[listingapp.UpdateListingCommand, *dto.ListingDetail](c.Request.Context(), h.Commands, cmd)
	if err != nil {
		respondDomainError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

type availabilityRequest struct {
	Available bool `json:"available"`
}

func (h HostListingHandler) SetAvailability(c *gin.Context) {
	user, ok := requireRole(c, "host")
	if !ok {
		return
	}
	var req availabilityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	cmd := listingapp.SetAvailabilityCommand{
		OwnerID:   user.ID,
		ListingID: c.Param("id"),
		Available: req.Available,
	}
	result, err := commands.Dispatch[listingapp.SetAvailabilityCommand, *dto.ListingDetail](c.Request.Context(), h.Commands, cmd)
	if err != nil {
		respondDomainError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h HostListingHandler) Deactivate(c *gin.Context) {
	user, ok := requireRole(c, "host")
	if !ok {
		return
	}
	cmd := listingapp.DeactivateListingCommand{OwnerID: user.ID, ListingID: c.Param("id")}
	result, err := commands.Dispatch[listingapp.DeactivateListingCommand, *dto.ListingDetail](c.Request.Context(), h.Commands, cmd)
	if err != nil {
		respondDomainError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h HostListingHandler) Reactivate(c *gin.Context) {
	user, ok := requireRole(c, "host")
	if !ok {
		return
	}
	cmd := listingapp.ReactivateListingCommand{OwnerID: user.ID, ListingID: c.Param("id")}
	result, err := commands.Dispatch[listingapp.ReactivateListingCommand, *dto.ListingDetail](c.Request.Context(), h.Commands, cmd)
	if err != nil {
		respondDomainError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h HostListingHandler) Delete(c *gin.Context) {
	user, ok := requireRole(c, "host")
	if !ok {
		return
	}
	cmd := listingapp.DeleteListingCommand{OwnerID: user.ID, ListingID: c.Param("id")}
	result, err := commands.Dispatch[listingapp.DeleteListingCommand, *listingapp.DeleteListingResult](c.Request.Context(), h.Commands, cmd)
	if err != nil {
		respondDomainError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

type HostReservationHandler struct {
	Commands commands.Bus
	Queries  queries.Bus
	Logger   *slog.Logger
}

func (h HostReservationHandler) List(c *gin.Context) {
	user, ok := requireRole(c, "host")
	if !ok {
		return
	}
	query := reservationapp.ListHostReservationsQuery{
		OwnerID: user.ID,
		Status:  c.Query("status"),
	}
	result, err := queries.Ask[reservationapp.ListHostReservationsQuery, dto.HostReservationCollection](c.Request.Context(), h.Queries, query)
	if err != nil {
		respondDomainError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h HostReservationHandler) Confirm(c *gin.Context) {
	user, ok := requireRole(c, "host")
	if !ok {
		return
	}
	cmd := reservationapp.ConfirmReservationCommand{
		OwnerID:       user.ID,
		ReservationID: c.Param("id"),
	}
	result, err := commands.Dispatch[reservationapp.ConfirmReservationCommand, *reservationapp.ReservationActionResult](c.Request.Context(), h.Commands, cmd)
	if err != nil {
		respondDomainError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

var _ HostListingHTTP = HostListingHandler{}
var _ HostReservationHTTP = HostReservationHandler{}
