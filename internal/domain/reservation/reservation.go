package reservation

import (
	"context"
	"errors"
	"strings"
	"time"

	"staybook/internal/domain/listings"
	"staybook/internal/domain/pricing"
	"staybook/internal/domain/shared/daterange"
	"staybook/internal/domain/shared/events"
)

var (
	ErrInvalidGuests      = errors.New("reservation: guests count must be positive")
	ErrGuestRequired      = errors.New("reservation: guest id required")
	ErrInvalidState       = errors.New("reservation: invalid state transition")
	ErrNotFound           = errors.New("reservation: not found")
	ErrSelfBooking        = errors.New("reservation: guest owns the listing")
	ErrDateRangeConflict  = errors.New("reservation: date range conflicts with an existing reservation")
	ErrGuestLimitExceeded = errors.New("reservation: guests exceed the listing capacity")
	ErrNotCheckedOutYet   = errors.New("reservation: checkout date has not passed")
)

type ReservationID string

type Status string

const (
	StatusPending   Status = "pending"
	StatusConfirmed Status = "confirmed"
	StatusCancelled Status = "cancelled"
	StatusCompleted Status = "completed"
)

// HoldsCalendar reports whether a reservation in this status blocks other
// bookings. A pending request is a provisional claim and holds the calendar
// until explicitly cancelled.
func (s Status) HoldsCalendar() bool {
	return s == StatusPending || s == StatusConfirmed
}

// ActiveStatuses are the statuses the conflict check queries for.
var ActiveStatuses = []Status{StatusPending, StatusConfirmed}

type Reservation struct {
	ID        ReservationID
	ListingID listings.ListingID
	GuestID   string
	Range     daterange.DateRange
	Guests    int
	Price     pricing.Quote
	Status    Status
	Message   string
	Version   int64
	CreatedAt time.Time
	UpdatedAt time.Time
	events.EventRecorder
}

// CalendarEntry is the projection of a stored reservation the conflict check
// operates on.
type CalendarEntry struct {
	ID     ReservationID
	Range  daterange.DateRange
	Status Status
}

type Repository interface {
	ByID(ctx context.Context, id ReservationID) (*Reservation, error)
	Save(ctx context.Context, r *Reservation) error
	// ForListing returns the calendar entries for a listing restricted to the
	// given statuses, excluding the row identified by exclude (empty means no
	// exclusion).
	ForListing(ctx context.Context, listingID listings.ListingID, statuses []Status, exclude ReservationID) ([]CalendarEntry, error)
	ListByGuest(ctx context.Context, guestID string) ([]*Reservation, error)
	ListByListing(ctx context.Context, listingID listings.ListingID) ([]*Reservation, error)
	ListByStatus(ctx context.Context, status Status) ([]*Reservation, error)
	DeleteByListing(ctx context.Context, listingID listings.ListingID) error
}

type CreateParams struct {
	ID        ReservationID
	ListingID listings.ListingID
	GuestID   string
	Range     daterange.DateRange
	Guests    int
	Price     pricing.Quote
	Message   string
	CreatedAt time.Time
}

func NewReservation(params CreateParams) (*Reservation, error) {
	if params.Guests <= 0 {
		return nil, ErrInvalidGuests
	}
	if strings.TrimSpace(params.GuestID) == "" {
		return nil, ErrGuestRequired
	}
	if err := params.Range.Validate(); err != nil {
		return nil, err
	}
	if params.Price.Total.Cents <= 0 {
		return nil, errors.New("reservation: total must be positive")
	}
	now := params.CreatedAt.UTC()
	r := &Reservation{
		ID:        params.ID,
		ListingID: params.ListingID,
		GuestID:   params.GuestID,
		Range:     params.Range,
		Guests:    params.Guests,
		Price:     params.Price,
		Status:    StatusPending,
		Message:   strings.TrimSpace(params.Message),
		CreatedAt: now,
		UpdatedAt: now,
	}
	r.Record(ReservationRequested{
		ReservationID: r.ID,
		ListingID:     r.ListingID,
		GuestID:       r.GuestID,
		Range:         r.Range,
		Guests:        r.Guests,
		Total:         r.Price.Total,
		At:            now,
	})
	return r, nil
}

// Confirm accepts a pending request. Only the listing owner may do this;
// callers enforce the role.
func (r *Reservation) Confirm(now time.Time) error {
	if r.Status != StatusPending {
		return ErrInvalidState
	}
	r.Status = StatusConfirmed
	r.UpdatedAt = now.UTC()
	r.Record(ReservationConfirmed{ReservationID: r.ID, ListingID: r.ListingID, Range: r.Range, At: r.UpdatedAt})
	return nil
}

// Cancel moves a pending or confirmed reservation to its terminal cancelled
// state. Both the guest and the listing owner may cancel.
func (r *Reservation) Cancel(reason string, now time.Time) error {
	switch r.Status {
	case StatusPending, StatusConfirmed:
	default:
		return ErrInvalidState
	}
	r.Status = StatusCancelled
	r.UpdatedAt = now.UTC()
	r.Record(ReservationCancelled{ReservationID: r.ID, ListingID: r.ListingID, Reason: reason, At: r.UpdatedAt})
	return nil
}

// Complete is the out-of-band time-based transition applied after the checkout
// date has passed. Never triggered by a user action.
func (r *Reservation) Complete(now time.Time) error {
	if r.Status != StatusConfirmed {
		return ErrInvalidState
	}
	if now.UTC().Before(r.Range.CheckOut) {
		return ErrNotCheckedOutYet
	}
	r.Status = StatusCompleted
	r.UpdatedAt = now.UTC()
	r.Record(ReservationCompleted{ReservationID: r.ID, ListingID: r.ListingID, At: r.UpdatedAt})
	return nil
}
