package listings

import (
	"context"
	"errors"
	"strings"

	"staybook/internal/app/dto"
	handlersupport "staybook/internal/app/handlers/support"
	"staybook/internal/app/uow"
	domainlistings "staybook/internal/domain/listings"
)

const listOwnListingsKey = "host.listings.list"

type ListOwnListingsQuery struct {
	OwnerID string
}

func (q ListOwnListingsQuery) Key() string { return listOwnListingsKey }

type ListOwnListingsHandler struct {
	UoWFactory uow.UoWFactory
}

func (h *ListOwnListingsHandler) Handle(ctx context.Context, q ListOwnListingsQuery) (dto.ListingCollection, error) {
	ownerID := strings.TrimSpace(q.OwnerID)
	if ownerID == "" {
		return dto.ListingCollection{}, errors.New("owner id is required")
	}
	unit, execCtx, cleanup, err := handlersupport.BeginReadOnlyUnit(ctx, h.UoWFactory)
	if err != nil {
		return dto.ListingCollection{}, err
	}
	if cleanup != nil {
		defer cleanup()
	}
	owned, err := unit.Listings().ListByOwner(execCtx, domainlistings.OwnerID(ownerID))
	if err != nil {
		return dto.ListingCollection{}, err
	}
	return dto.MapListingCollection(owned), nil
}
