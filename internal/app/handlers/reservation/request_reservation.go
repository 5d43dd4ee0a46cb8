package reservation

import (
	"context"
	"errors"
	"time"

	"staybook/internal/app/commands"
	"staybook/internal/app/locking"
	"staybook/internal/app/middleware"
	"staybook/internal/app/outbox"
	"staybook/internal/app/uow"
	domainlistings "staybook/internal/domain/listings"
	domainpricing "staybook/internal/domain/pricing"
	domainreservation "staybook/internal/domain/reservation"
	domainrange "staybook/internal/domain/shared/daterange"
)

const requestReservationKey = "reservation.request"

type RequestReservationCommand struct {
	CommandID       string
	ListingID       string
	GuestID         string
	CheckIn         time.Time
	CheckOut        time.Time
	Guests          int
	Message         string
	IdempotencyKeyV string
}

func (c RequestReservationCommand) Key() string { return requestReservationKey }

func (c RequestReservationCommand) IdempotencyKey() string { return c.IdempotencyKeyV }

func (c RequestReservationCommand) ResultPrototype() any { return &RequestReservationResult{} }

type RequestReservationResult struct {
	ReservationID string `json:"reservation_id"`
	TotalPrice    string `json:"totalPrice"`
	Status        string `json:"status"`
}

type RequestReservationHandler struct {
	UoWFactory uow.UoWFactory
	Outbox     outbox.Outbox
	Encoder    outbox.EventEncoder
	// Locks serializes the conflict check and insert per listing. Optional:
	// adapters whose unit of work provides a real transaction may leave it nil.
	Locks locking.ListingLocker
	// EnforceGuestLimit turns the guest-count-vs-capacity rule on. Some
	// deployments validate capacity in the UI only.
	EnforceGuestLimit bool
}

var ErrUnitOfWorkRequired = errors.New("reservation: unit of work required")

func (h *RequestReservationHandler) Handle(ctx context.Context, cmd RequestReservationCommand) (*RequestReservationResult, error) {
	unit, ok := uow.FromContext(ctx)
	managed := false
	committed := false
	if !ok {
		if h.UoWFactory == nil {
			return nil, ErrUnitOfWorkRequired
		}
		var err error
		unit, err = h.UoWFactory.Begin(ctx, uow.TxOptions{})
		if err != nil {
			return nil, err
		}
		ctx = uow.ContextWithUnitOfWork(ctx, unit)
		managed = true
	}
	if managed {
		defer func() {
			if !committed {
				_ = unit.Rollback(ctx)
			}
		}()
	}

	// Listing-level checks come before input validation: a request against an
	// unavailable listing reports that first, whatever the dates look like.
	listing, err := unit.Listings().ByID(ctx, domainlistings.ListingID(cmd.ListingID))
	if err != nil {
		return nil, err
	}
	if !listing.Bookable() {
		return nil, domainlistings.ErrListingUnavailable
	}
	if string(listing.Owner) == cmd.GuestID {
		return nil, domainreservation.ErrSelfBooking
	}

	dr, err := domainrange.New(cmd.CheckIn, cmd.CheckOut)
	if err != nil {
		return nil, err
	}
	if cmd.Guests <= 0 {
		return nil, domainreservation.ErrInvalidGuests
	}
	if h.EnforceGuestLimit && cmd.Guests > listing.GuestsLimit {
		return nil, domainreservation.ErrGuestLimitExceeded
	}

	// Everything from the conflict check to the commit must be exclusive with
	// respect to concurrent attempts on the same listing. With an externally
	// managed transaction the commit happens after this function returns, so
	// the lock is handed to the unit and released when the unit ends.
	if h.Locks != nil {
		release, err := h.Locks.Acquire(ctx, cmd.ListingID)
		if err != nil {
			return nil, err
		}
		if observer, ok := unit.(uow.EndObserver); ok && !managed {
			observer.OnEnd(release)
		} else {
			defer release()
		}
	}

	entries, err := unit.Reservations().ForListing(ctx, listing.ID, domainreservation.ActiveStatuses, "")
	if err != nil {
		return nil, err
	}
	if !domainreservation.IsDateRangeAvailable(dr, entries, "") {
		return nil, domainreservation.ErrDateRangeConflict
	}

	quote, err := domainpricing.ForStay(listing.NightlyRate, dr)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	res, err := domainreservation.NewReservation(domainreservation.CreateParams{
		ID:        domainreservation.ReservationID(cmd.CommandID),
		ListingID: listing.ID,
		GuestID:   cmd.GuestID,
		Range:     dr,
		Guests:    cmd.Guests,
		Price:     quote,
		Message:   cmd.Message,
		CreatedAt: now,
	})
	if err != nil {
		return nil, err
	}

	if err := unit.Reservations().Save(ctx, res); err != nil {
		return nil, err
	}

	pending := res.PendingEvents()
	res.ClearEvents()
	if err := outbox.RecordDomainEvents(ctx, h.Outbox, h.encoder(), pending); err != nil {
		return nil, err
	}

	if managed {
		if err := unit.Commit(ctx); err != nil {
			return nil, err
		}
		committed = true
	}

	return &RequestReservationResult{
		ReservationID: string(res.ID),
		TotalPrice:    res.Price.Total.Format(),
		Status:        string(res.Status),
	}, nil
}

func (h *RequestReservationHandler) encoder() outbox.EventEncoder {
	if h.Encoder != nil {
		return h.Encoder
	}
	return outbox.JSONEventEncoder{}
}

var _ commands.Handler[RequestReservationCommand, *RequestReservationResult] = (*RequestReservationHandler)(nil)
var _ middleware.IdempotentCommand = (*RequestReservationCommand)(nil)
