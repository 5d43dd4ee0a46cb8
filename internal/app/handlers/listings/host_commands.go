package listings

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"staybook/internal/app/dto"
	"staybook/internal/app/outbox"
	"staybook/internal/app/uow"
	domainlistings "staybook/internal/domain/listings"
	"staybook/internal/domain/shared/events"
	"staybook/internal/domain/shared/money"
)

const (
	createListingKey     = "host.listings.create"
	updateListingKey     = "host.listings.update"
	setAvailabilityKey   = "host.listings.set_availability"
	deactivateListingKey = "host.listings.deactivate"
	reactivateListingKey = "host.listings.reactivate"
	deleteListingKey     = "host.listings.delete"
)

var ErrListingNotOwned = errors.New("listings: not owned by caller")

type CreateListingCommand struct {
	CommandID   string
	OwnerID     string
	Title       string
	Description string
	NightlyRate string
	Currency    string
	GuestsLimit int
}

func (c CreateListingCommand) Key() string { return createListingKey }

type CreateListingHandler struct {
	Outbox  outbox.Outbox
	Encoder outbox.EventEncoder
	Logger  *slog.Logger
}

func (h *CreateListingHandler) Handle(ctx context.Context, cmd CreateListingCommand) (*dto.ListingDetail, error) {
	unit, ok := uow.FromContext(ctx)
	if !ok {
		return nil, uow.ErrUnitOfWorkMissing
	}
	rate, err := money.ParseDecimal(cmd.NightlyRate, cmd.Currency)
	if err != nil {
		return nil, err
	}
	listing, err := domainlistings.NewListing(domainlistings.CreateParams{
		ID:          domainlistings.ListingID(cmd.CommandID),
		Owner:       domainlistings.OwnerID(cmd.OwnerID),
		Title:       cmd.Title,
		Description: cmd.Description,
		NightlyRate: rate,
		GuestsLimit: cmd.GuestsLimit,
		Now:         time.Now(),
	})
	if err != nil {
		return nil, err
	}
	if err := unit.Listings().Save(ctx, listing); err != nil {
		return nil, err
	}
	if err := recordListingEvents(ctx, h.Outbox, h.Encoder, listing.PendingEvents()); err != nil {
		return nil, err
	}
	listing.ClearEvents()
	if h.Logger != nil {
		h.Logger.Info("listing created", "listing_id", listing.ID, "owner_id", listing.Owner)
	}
	detail := dto.MapListingDetail(listing)
	return &detail, nil
}

type UpdateListingCommand struct {
	OwnerID     string
	ListingID   string
	Title       string
	Description string
	NightlyRate string
	Currency    string
	GuestsLimit int
}

func (c UpdateListingCommand) Key() string { return updateListingKey }

type UpdateListingHandler struct {
	Outbox  outbox.Outbox
	Encoder outbox.EventEncoder
	Logger  *slog.Logger
}

func (h *UpdateListingHandler) Handle(ctx context.Context, cmd UpdateListingCommand) (*dto.ListingDetail, error) {
	unit, listing, err := ownedListing(ctx, cmd.OwnerID, cmd.ListingID)
	if err != nil {
		return nil, err
	}
	rate, err := money.ParseDecimal(cmd.NightlyRate, cmd.Currency)
	if err != nil {
		return nil, err
	}
	if err := listing.UpdateDetails(cmd.Title, cmd.Description, rate, cmd.GuestsLimit, time.Now()); err != nil {
		return nil, err
	}
	if err := unit.Listings().Save(ctx, listing); err != nil {
		return nil, err
	}
	if err := recordListingEvents(ctx, h.Outbox, h.Encoder, listing.PendingEvents()); err != nil {
		return nil, err
	}
	listing.ClearEvents()
	detail := dto.MapListingDetail(listing)
	return &detail, nil
}

type SetAvailabilityCommand struct {
	OwnerID   string
	ListingID string
	Available bool
}

func (c SetAvailabilityCommand) Key() string { return setAvailabilityKey }

type SetAvailabilityHandler struct {
	Outbox  outbox.Outbox
	Encoder outbox.EventEncoder
	Logger  *slog.Logger
}

func (h *SetAvailabilityHandler) Handle(ctx context.Context, cmd SetAvailabilityCommand) (*dto.ListingDetail, error) {
	unit, listing, err := ownedListing(ctx, cmd.OwnerID, cmd.ListingID)
	if err != nil {
		return nil, err
	}
	listing.SetAvailable(cmd.Available, time.Now())
	if err := unit.Listings().Save(ctx, listing); err != nil {
		return nil, err
	}
	if err := recordListingEvents(ctx, h.Outbox, h.Encoder, listing.PendingEvents()); err != nil {
		return nil, err
	}
	listing.ClearEvents()
	if h.Logger != nil {
		h.Logger.Info("listing availability changed", "listing_id", listing.ID, "available", cmd.Available)
	}
	detail := dto.MapListingDetail(listing)
	return &detail, nil
}

type DeactivateListingCommand struct {
	OwnerID   string
	ListingID string
}

func (c DeactivateListingCommand) Key() string { return deactivateListingKey }

type ReactivateListingCommand struct {
	OwnerID   string
	ListingID string
}

func (c ReactivateListingCommand) Key() string { return reactivateListingKey }

type ToggleActivationHandler struct {
	Outbox  outbox.Outbox
	Encoder outbox.EventEncoder
	Logger  *slog.Logger
}

func (h *ToggleActivationHandler) HandleDeactivate(ctx context.Context, cmd DeactivateListingCommand) (*dto.ListingDetail, error) {
	unit, listing, err := ownedListing(ctx, cmd.OwnerID, cmd.ListingID)
	if err != nil {
		return nil, err
	}
	if err := listing.Deactivate(time.Now()); err != nil {
		return nil, err
	}
	return h.persist(ctx, unit, listing)
}

func (h *ToggleActivationHandler) HandleReactivate(ctx context.Context, cmd ReactivateListingCommand) (*dto.ListingDetail, error) {
	unit, listing, err := ownedListing(ctx, cmd.OwnerID, cmd.ListingID)
	if err != nil {
		return nil, err
	}
	if err := listing.Reactivate(time.Now()); err != nil {
		return nil, err
	}
	return h.persist(ctx, unit, listing)
}

func (h *ToggleActivationHandler) persist(ctx context.Context, unit uow.UnitOfWork, listing *domainlistings.Listing) (*dto.ListingDetail, error) {
	if err := unit.Listings().Save(ctx, listing); err != nil {
		return nil, err
	}
	if err := recordListingEvents(ctx, h.Outbox, h.Encoder, listing.PendingEvents()); err != nil {
		return nil, err
	}
	listing.ClearEvents()
	detail := dto.MapListingDetail(listing)
	return &detail, nil
}

type DeleteListingCommand struct {
	OwnerID   string
	ListingID string
}

func (c DeleteListingCommand) Key() string { return deleteListingKey }

type DeleteListingResult struct {
	ListingID string `json:"listing_id"`
}

type DeleteListingHandler struct {
	Outbox  outbox.Outbox
	Encoder outbox.EventEncoder
	Logger  *slog.Logger
}

// Handle removes the listing and cascades to its reservations inside the same
// unit of work.
func (h *DeleteListingHandler) Handle(ctx context.Context, cmd DeleteListingCommand) (*DeleteListingResult, error) {
	unit, listing, err := ownedListing(ctx, cmd.OwnerID, cmd.ListingID)
	if err != nil {
		return nil, err
	}
	if err := unit.Reservations().DeleteByListing(ctx, listing.ID); err != nil {
		return nil, err
	}
	if err := unit.Listings().Delete(ctx, listing.ID); err != nil {
		return nil, err
	}
	deleted := domainlistings.ListingDeleted{ListingID: listing.ID, Owner: listing.Owner, At: time.Now().UTC()}
	if err := recordListingEvents(ctx, h.Outbox, h.Encoder, []events.DomainEvent{deleted}); err != nil {
		return nil, err
	}
	if h.Logger != nil {
		h.Logger.Info("listing deleted", "listing_id", listing.ID, "owner_id", listing.Owner)
	}
	return &DeleteListingResult{ListingID: string(listing.ID)}, nil
}

func ownedListing(ctx context.Context, ownerID, listingID string) (uow.UnitOfWork, *domainlistings.Listing, error) {
	ownerID = strings.TrimSpace(ownerID)
	if ownerID == "" {
		return nil, nil, errors.New("owner id is required")
	}
	listingID = strings.TrimSpace(listingID)
	if listingID == "" {
		return nil, nil, errors.New("listing id is required")
	}
	unit, ok := uow.FromContext(ctx)
	if !ok {
		return nil, nil, uow.ErrUnitOfWorkMissing
	}
	listing, err := unit.Listings().ByID(ctx, domainlistings.ListingID(listingID))
	if err != nil {
		return nil, nil, err
	}
	if listing.Owner != domainlistings.OwnerID(ownerID) {
		return nil, nil, ErrListingNotOwned
	}
	return unit, listing, nil
}

func recordListingEvents(ctx context.Context, box outbox.Outbox, encoder outbox.EventEncoder, evs []events.DomainEvent) error {
	if encoder == nil {
		encoder = outbox.JSONEventEncoder{}
	}
	return outbox.RecordDomainEvents(ctx, box, encoder, evs)
}
