package listings

import (
	"context"
	"errors"
	"strings"
	"time"

	"staybook/internal/domain/shared/events"
	"staybook/internal/domain/shared/money"
)

var (
	ErrIDRequired         = errors.New("listings: id is required")
	ErrOwnerRequired      = errors.New("listings: owner is required")
	ErrTitleRequired      = errors.New("listings: title is required")
	ErrGuestsLimit        = errors.New("listings: guests limit must be at least 1")
	ErrNightlyRate        = errors.New("listings: nightly rate must be positive")
	ErrInvalidState       = errors.New("listings: invalid state transition")
	ErrListingUnavailable = errors.New("listings: listing is not bookable")
	ErrNotFound           = errors.New("listings: not found")
)

type ListingID string
type OwnerID string

type Status string

const (
	StatusPending  Status = "pending"
	StatusApproved Status = "approved"
	StatusRejected Status = "rejected"
	StatusInactive Status = "inactive"
)

type Listing struct {
	ID          ListingID
	Owner       OwnerID
	Title       string
	Description string
	NightlyRate money.Money
	GuestsLimit int
	Available   bool
	Status      Status
	Version     int64
	CreatedAt   time.Time
	UpdatedAt   time.Time
	events.EventRecorder
}

type Repository interface {
	ByID(ctx context.Context, id ListingID) (*Listing, error)
	Save(ctx context.Context, listing *Listing) error
	ListByOwner(ctx context.Context, owner OwnerID) ([]*Listing, error)
	ListByStatus(ctx context.Context, status Status) ([]*Listing, error)
	Delete(ctx context.Context, id ListingID) error
}

type CreateParams struct {
	ID          ListingID
	Owner       OwnerID
	Title       string
	Description string
	NightlyRate money.Money
	GuestsLimit int
	Now         time.Time
}

// NewListing creates a listing awaiting moderation. The host can already
// toggle availability but the listing is not bookable until approved.
func NewListing(params CreateParams) (*Listing, error) {
	if strings.TrimSpace(string(params.ID)) == "" {
		return nil, ErrIDRequired
	}
	if strings.TrimSpace(string(params.Owner)) == "" {
		return nil, ErrOwnerRequired
	}
	if strings.TrimSpace(params.Title) == "" {
		return nil, ErrTitleRequired
	}
	if params.GuestsLimit < 1 {
		return nil, ErrGuestsLimit
	}
	if params.NightlyRate.Cents <= 0 || params.NightlyRate.Currency == "" {
		return nil, ErrNightlyRate
	}
	now := params.Now.UTC()

	listing := &Listing{
		ID:          params.ID,
		Owner:       params.Owner,
		Title:       strings.TrimSpace(params.Title),
		Description: strings.TrimSpace(params.Description),
		NightlyRate: params.NightlyRate,
		GuestsLimit: params.GuestsLimit,
		Available:   true,
		Status:      StatusPending,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	listing.Record(ListingCreated{ListingID: listing.ID, Owner: listing.Owner, At: now})
	return listing, nil
}

// Bookable reports whether reservations may be requested against the listing.
func (l *Listing) Bookable() bool {
	return l.Status == StatusApproved && l.Available
}

// Approve moves a moderated listing onto the market. Admin only; the caller
// enforces the role.
func (l *Listing) Approve(now time.Time) error {
	if l.Status != StatusPending {
		return ErrInvalidState
	}
	l.Status = StatusApproved
	l.UpdatedAt = now.UTC()
	l.Record(ListingApproved{ListingID: l.ID, At: l.UpdatedAt})
	return nil
}

// Reject declines a pending listing.
func (l *Listing) Reject(reason string, now time.Time) error {
	if l.Status != StatusPending {
		return ErrInvalidState
	}
	l.Status = StatusRejected
	l.UpdatedAt = now.UTC()
	l.Record(ListingRejected{ListingID: l.ID, Reason: reason, At: l.UpdatedAt})
	return nil
}

// Deactivate takes an approved listing off the market at the owner's request.
func (l *Listing) Deactivate(now time.Time) error {
	if l.Status != StatusApproved {
		return ErrInvalidState
	}
	l.Status = StatusInactive
	l.UpdatedAt = now.UTC()
	l.Record(ListingDeactivated{ListingID: l.ID, At: l.UpdatedAt})
	return nil
}

// Reactivate returns an inactive listing to the market without re-moderation.
func (l *Listing) Reactivate(now time.Time) error {
	if l.Status != StatusInactive {
		return ErrInvalidState
	}
	l.Status = StatusApproved
	l.UpdatedAt = now.UTC()
	l.Record(ListingApproved{ListingID: l.ID, At: l.UpdatedAt})
	return nil
}

// SetAvailable toggles the owner-controlled availability flag. Allowed in any
// moderation status.
func (l *Listing) SetAvailable(available bool, now time.Time) {
	if l.Available == available {
		return
	}
	l.Available = available
	l.UpdatedAt = now.UTC()
	l.Record(ListingAvailabilityChanged{ListingID: l.ID, Available: available, At: l.UpdatedAt})
}

// UpdateDetails edits the host-facing attributes. A nightly rate change does
// not touch totals already frozen on existing reservations.
func (l *Listing) UpdateDetails(title, description string, rate money.Money, guestsLimit int, now time.Time) error {
	if strings.TrimSpace(title) == "" {
		return ErrTitleRequired
	}
	if guestsLimit < 1 {
		return ErrGuestsLimit
	}
	if rate.Cents <= 0 || rate.Currency == "" {
		return ErrNightlyRate
	}
	l.Title = strings.TrimSpace(title)
	l.Description = strings.TrimSpace(description)
	l.NightlyRate = rate
	l.GuestsLimit = guestsLimit
	l.UpdatedAt = now.UTC()
	l.Record(ListingUpdated{ListingID: l.ID, At: l.UpdatedAt})
	return nil
}
