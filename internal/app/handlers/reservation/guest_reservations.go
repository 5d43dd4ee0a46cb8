package reservation

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"staybook/internal/app/dto"
	handlersupport "staybook/internal/app/handlers/support"
	"staybook/internal/app/uow"
)

const listGuestReservationsKey = "me.reservations.list"

type ListGuestReservationsQuery struct {
	GuestID string
}

func (q ListGuestReservationsQuery) Key() string { return listGuestReservationsKey }

type ListGuestReservationsHandler struct {
	UoWFactory uow.UoWFactory
	Logger     *slog.Logger
}

func (h *ListGuestReservationsHandler) Handle(ctx context.Context, q ListGuestReservationsQuery) (dto.GuestReservationCollection, error) {
	guestID := strings.TrimSpace(q.GuestID)
	if guestID == "" {
		return dto.GuestReservationCollection{}, errors.New("guest id is required")
	}
	unit, execCtx, cleanup, err := handlersupport.BeginReadOnlyUnit(ctx, h.UoWFactory)
	if err != nil {
		return dto.GuestReservationCollection{}, err
	}
	if cleanup != nil {
		defer cleanup()
	}

	reservations, err := unit.Reservations().ListByGuest(execCtx, guestID)
	if err != nil {
		return dto.GuestReservationCollection{}, err
	}

	items := make([]dto.GuestReservationSummary, 0, len(reservations))
	for _, res := range reservations {
		listing, err := unit.Listings().ByID(execCtx, res.ListingID)
		if err != nil {
			// Cascade deletes remove reservations with their listing, so a
			// missing listing here is a storage inconsistency worth surfacing.
			return dto.GuestReservationCollection{}, err
		}
		items = append(items, dto.MapGuestReservationSummary(res, listing))
	}

	if h.Logger != nil {
		h.Logger.Debug("guest reservations listed", "guest_id", guestID, "count", len(items))
	}

	return dto.GuestReservationCollection{Items: items}, nil
}
