package listings

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"staybook/internal/app/dto"
	handlersupport "staybook/internal/app/handlers/support"
	"staybook/internal/app/outbox"
	"staybook/internal/app/uow"
	domainlistings "staybook/internal/domain/listings"
)

const (
	listPendingListingsKey = "admin.listings.pending"
	approveListingKey      = "admin.listings.approve"
	rejectListingKey       = "admin.listings.reject"
)

type ListPendingListingsQuery struct{}

func (q ListPendingListingsQuery) Key() string { return listPendingListingsKey }

type ListPendingListingsHandler struct {
	UoWFactory uow.UoWFactory
	Logger     *slog.Logger
}

func (h *ListPendingListingsHandler) Handle(ctx context.Context, _ ListPendingListingsQuery) (dto.ListingCollection, error) {
	unit, execCtx, cleanup, err := handlersupport.BeginReadOnlyUnit(ctx, h.UoWFactory)
	if err != nil {
		return dto.ListingCollection{}, err
	}
	if cleanup != nil {
		defer cleanup()
	}
	pending, err := unit.Listings().ListByStatus(execCtx, domainlistings.StatusPending)
	if err != nil {
		return dto.ListingCollection{}, err
	}
	return dto.MapListingCollection(pending), nil
}

type ApproveListingCommand struct {
	ListingID string
}

func (c ApproveListingCommand) Key() string { return approveListingKey }

type RejectListingCommand struct {
	ListingID string
	Reason    string
}

func (c RejectListingCommand) Key() string { return rejectListingKey }

type ModerationHandler struct {
	Outbox  outbox.Outbox
	Encoder outbox.EventEncoder
	Logger  *slog.Logger
}

func (h *ModerationHandler) HandleApprove(ctx context.Context, cmd ApproveListingCommand) (*dto.ListingDetail, error) {
	unit, listing, err := moderatedListing(ctx, cmd.ListingID)
	if err != nil {
		return nil, err
	}
	if err := listing.Approve(time.Now()); err != nil {
		return nil, err
	}
	if h.Logger != nil {
		h.Logger.Info("listing approved", "listing_id", listing.ID)
	}
	return h.persist(ctx, unit, listing)
}

func (h *ModerationHandler) HandleReject(ctx context.Context, cmd RejectListingCommand) (*dto.ListingDetail, error) {
	unit, listing, err := moderatedListing(ctx, cmd.ListingID)
	if err != nil {
		return nil, err
	}
	if err := listing.Reject(cmd.Reason, time.Now()); err != nil {
		return nil, err
	}
	if h.Logger != nil {
		h.Logger.Info("listing rejected", "listing_id", listing.ID, "reason", cmd.Reason)
	}
	return h.persist(ctx, unit, listing)
}

func (h *ModerationHandler) persist(ctx context.Context, unit uow.UnitOfWork, listing *domainlistings.Listing) (*dto.ListingDetail, error) {
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

func moderatedListing(ctx context.Context, listingID string) (uow.UnitOfWork, *domainlistings.Listing, error) {
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
	return unit, listing, nil
}
