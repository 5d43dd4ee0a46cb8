package ginserver

import (
	"log/slog"
	"net/http"

	gin "github.com/gin-gonic/gin"

	"staybook/internal/app/commands"
	"staybook/internal/app/dto"
	listingapp "staybook/internal/app/handlers/listings"
	"staybook/internal/app/queries"
)

type AdminHTTP interface {
	PendingListings(c *gin.Context)
	ApproveListing(c *gin.Context)
	RejectListing(c *gin.Context)
}

type AdminHandler struct {
	Commands commands.Bus
	Queries  queries.Bus
	Logger   *slog.Logger
}

func (h AdminHandler) PendingListings(c *gin.Context) {
	if _, ok := requireRole(c, "admin"); !ok {
		return
	}
	result, err := queries.Ask[listingapp.ListPendingListingsQuery, dto.ListingCollection](c.Request.Context(), h.Queries, listingapp.ListPendingListingsQuery{})
	if err != nil {
		respondDomainError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h AdminHandler) ApproveListing(c *gin.Context) {
	if _, ok := requireRole(c, "admin"); !ok {
		return
	}
	cmd := listingapp.ApproveListingCommand{ListingID: c.Param("id")}
	result, err := commands.Dispatch[listingapp.ApproveListingCommand, *dto.ListingDetail](c.Request.Context(), h.Commands, cmd)
	if err != nil {
		respondDomainError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

type rejectListingRequest struct {
	Reason string `json:"reason"`
}

func (h AdminHandler) RejectListing(c *gin.Context) {
	if _, ok := requireRole(c, "admin"); !ok {
		return
	}
	var req rejectListingRequest
	_ = c.ShouldBindJSON(&req)
	cmd := listingapp.RejectListingCommand{ListingID: c.Param("id"), Reason: req.Reason}
	result, err := commands.Dispatch[listingapp.RejectListingCommand, *dto.ListingDetail](c.Request.Context(), h.Commands, cmd)
	if err != nil {
		respondDomainError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

var _ AdminHTTP = AdminHandler{}
