package reservation

import (
	"context"
	"errors"
	"log/slog"
	"sort"
	"strings"
	"time"

	"staybook/internal/app/dto"
	handlersupport "staybook/internal/app/handlers/support"
	"staybook/internal/app/outbox"
	"staybook/internal/app/uow"
	domainlistings "staybook/internal/domain/listings"
	domainreservation "staybook/internal/domain/reservation"
)

const (
	listHostReservationsKey  = "host.reservations.list"
	confirmReservationKey    = "host.reservations.confirm"
	cancelReservationKey     = "reservation.cancel"
	allStatusesFilterValue   = "all"
	defaultHostListingsLimit = 60
)

var ErrReservationNotOwned = errors.New("reservation: not owned by host")

type ListHostReservationsQuery struct {
	OwnerID string
	Status  string
}

func (q ListHostReservationsQuery) Key() string { return listHostReservationsKey }

type ListHostReservationsHandler struct {
	UoWFactory uow.UoWFactory
	Logger     *slog.Logger
}

func (h *ListHostReservationsHandler) Handle(ctx context.Context, q ListHostReservationsQuery) (dto.HostReservationCollection, error) {
	ownerID := strings.TrimSpace(q.OwnerID)
	if ownerID == "" {
		return dto.HostReservationCollection{}, errors.New("owner id is required")
	}
	unit, execCtx, cleanup, err := handlersupport.BeginReadOnlyUnit(ctx, h.UoWFactory)
	if err != nil {
		return dto.HostReservationCollection{}, err
	}
	if cleanup != nil {
		defer cleanup()
	}

	owned, err := unit.Listings().ListByOwner(execCtx, domainlistings.OwnerID(ownerID))
	if err != nil {
		return dto.HostReservationCollection{}, err
	}

	statusFilter := strings.ToLower(strings.TrimSpace(q.Status))
	allStatuses := statusFilter == "" || statusFilter == allStatusesFilterValue

	items := make([]dto.HostReservationSummary, 0)
	for _, listing := range owned {
		reservations, err := unit.Reservations().ListByListing(execCtx, listing.ID)
		if err != nil {
			return dto.HostReservationCollection{}, err
		}
		for _, res := range reservations {
			if !allStatuses && string(res.Status) != statusFilter {
				continue
			}
			items = append(items, dto.MapHostReservationSummary(res, listing))
		}
	}

	sort.Slice(items, func(i, j int) bool {
		return items[i].CreatedAt.After(items[j].CreatedAt)
	})

	if h.Logger != nil {
		h.Logger.Debug("host reservations listed", "owner_id", ownerID, "count", len(items), "status", statusFilter)
	}

	return dto.HostReservationCollection{Items: items}, nil
}

type ConfirmReservationCommand struct {
	OwnerID       string
	ReservationID string
}

func (c ConfirmReservationCommand) Key() string { return confirmReservationKey }

// CancelReservationCommand is accepted from the guest who made the
// reservation or the owner of its listing; nobody else.
type CancelReservationCommand struct {
	ActorID       string
	ReservationID string
	Reason        string
}

func (c CancelReservationCommand) Key() string { return cancelReservationKey }

type ReservationActionResult struct {
	ReservationID string `json:"reservation_id"`
	Status        string `json:"status"`
}

type ConfirmReservationHandler struct {
	Outbox  outbox.Outbox
	Encoder outbox.EventEncoder
	Logger  *slog.Logger
}

func (h *ConfirmReservationHandler) Handle(ctx context.Context, cmd ConfirmReservationCommand) (*ReservationActionResult, error) {
	ownerID := strings.TrimSpace(cmd.OwnerID)
	if ownerID == "" {
		return nil, errors.New("owner id is required")
	}
	reservationID := strings.TrimSpace(cmd.ReservationID)
	if reservationID == "" {
		return nil, errors.New("reservation id is required")
	}
	unit, ok := uow.FromContext(ctx)
	if !ok {
		return nil, uow.ErrUnitOfWorkMissing
	}

	res, err := unit.Reservations().ByID(ctx, domainreservation.ReservationID(reservationID))
	if err != nil {
		return nil, err
	}
	listing, err := unit.Listings().ByID(ctx, res.ListingID)
	if err != nil {
		return nil, err
	}
	if listing.Owner != domainlistings.OwnerID(ownerID) {
		return nil, ErrReservationNotOwned
	}

	now := time.Now().UTC()
	if err := res.Confirm(now); err != nil {
		return nil, err
	}
	if err := unit.Reservations().Save(ctx, res); err != nil {
		return nil, err
	}
	if err := recordEvents(ctx, h.Outbox, h.Encoder, res); err != nil {
		return nil, err
	}

	if h.Logger != nil {
		h.Logger.Info("reservation confirmed", "reservation_id", res.ID, "owner_id", ownerID, "listing_id", res.ListingID)
	}

	return &ReservationActionResult{ReservationID: string(res.ID), Status: string(res.Status)}, nil
}

type CancelReservationHandler struct {
	Outbox  outbox.Outbox
	Encoder outbox.EventEncoder
	Logger  *slog.Logger
}

func (h *CancelReservationHandler) Handle(ctx context.Context, cmd CancelReservationCommand) (*ReservationActionResult, error) {
	actorID := strings.TrimSpace(cmd.ActorID)
	if actorID == "" {
		return nil, errors.New("actor id is required")
	}
	reservationID := strings.TrimSpace(cmd.ReservationID)
	if reservationID == "" {
		return nil, errors.New("reservation id is required")
	}
	unit, ok := uow.FromContext(ctx)
	if !ok {
		return nil, uow.ErrUnitOfWorkMissing
	}

	res, err := unit.Reservations().ByID(ctx, domainreservation.ReservationID(reservationID))
	if err != nil {
		return nil, err
	}
	listing, err := unit.Listings().ByID(ctx, res.ListingID)
	if err != nil {
		return nil, err
	}
	if res.GuestID != actorID && listing.Owner != domainlistings.OwnerID(actorID) {
		return nil, ErrReservationNotOwned
	}

	now := time.Now().UTC()
	if err := res.Cancel(cmd.Reason, now); err != nil {
		return nil, err
	}
	if err := unit.Reservations().Save(ctx, res); err != nil {
		return nil, err
	}
	if err := recordEvents(ctx, h.Outbox, h.Encoder, res); err != nil {
		return nil, err
	}

	if h.Logger != nil {
		h.Logger.Info("reservation cancelled", "reservation_id", res.ID, "actor_id", actorID)
	}

	return &ReservationActionResult{ReservationID: string(res.ID), Status: string(res.Status)}, nil
}

func recordEvents(ctx context.Context, box outbox.Outbox, encoder outbox.EventEncoder, res *domainreservation.Reservation) error {
	pending := res.PendingEvents()
	res.ClearEvents()
	if encoder == nil {
		encoder = outbox.JSONEventEncoder{}
	}
	return outbox.RecordDomainEvents(ctx, box, encoder, pending)
}
