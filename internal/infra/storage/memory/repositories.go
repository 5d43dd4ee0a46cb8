package memory

import (
	"context"
	"sort"
	"sync"

	domainlistings "staybook/internal/domain/listings"
	domainreservation "staybook/internal/domain/reservation"
)

// ListingRepository is an in-memory implementation for demo and test wiring.
type ListingRepository struct {
	mu    sync.RWMutex
	items map[domainlistings.ListingID]*domainlistings.Listing
}

// NewListingRepository builds an empty repository.
func NewListingRepository() *ListingRepository {
	return &ListingRepository{
		items: make(map[domainlistings.ListingID]*domainlistings.Listing),
	}
}

// ByID returns a listing or listings.ErrNotFound.
func (r *ListingRepository) ByID(ctx context.Context, id domainlistings.ListingID) (*domainlistings.Listing, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	listing, ok := r.items[id]
	if !ok {
		return nil, domainlistings.ErrNotFound
	}
	return listing, nil
}

// Save stores/updates a listing entry.
func (r *ListingRepository) Save(ctx context.Context, listing *domainlistings.Listing) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items[listing.ID] = listing
	return nil
}

// ListByOwner returns the owner's listings ordered by creation time.
func (r *ListingRepository) ListByOwner(ctx context.Context, owner domainlistings.OwnerID) ([]*domainlistings.Listing, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	matches := make([]*domainlistings.Listing, 0)
	for _, listing := range r.items {
		if listing.Owner == owner {
			matches = append(matches, listing)
		}
	}
	sortListings(matches)
	return matches, nil
}

// ListByStatus returns listings in the given moderation status.
func (r *ListingRepository) ListByStatus(ctx context.Context, status domainlistings.Status) ([]*domainlistings.Listing, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	matches := make([]*domainlistings.Listing, 0)
	for _, listing := range r.items {
		if listing.Status == status {
			matches = append(matches, listing)
		}
	}
	sortListings(matches)
	return matches, nil
}

// Delete removes a listing. Missing rows report listings.ErrNotFound.
func (r *ListingRepository) Delete(ctx context.Context, id domainlistings.ListingID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.items[id]; !ok {
		return domainlistings.ErrNotFound
	}
	delete(r.items, id)
	return nil
}

func sortListings(items []*domainlistings.Listing) {
	sort.Slice(items, func(i, j int) bool {
		if items[i].CreatedAt.Equal(items[j].CreatedAt) {
			return items[i].ID < items[j].ID
		}
		return items[i].CreatedAt.Before(items[j].CreatedAt)
	})
}

// ReservationRepository keeps reservations in memory guarded by one RWMutex.
type ReservationRepository struct {
	mu    sync.RWMutex
	items map[domainreservation.ReservationID]*domainreservation.Reservation
}

// NewReservationRepository builds an empty repository.
func NewReservationRepository() *ReservationRepository {
	return &ReservationRepository{
		items: make(map[domainreservation.ReservationID]*domainreservation.Reservation),
	}
}

// ByID returns a reservation or reservation.ErrNotFound.
func (r *ReservationRepository) ByID(ctx context.Context, id domainreservation.ReservationID) (*domainreservation.Reservation, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	res, ok := r.items[id]
	if !ok {
		return nil, domainreservation.ErrNotFound
	}
	return res, nil
}

// Save stores/updates a reservation entry.
func (r *ReservationRepository) Save(ctx context.Context, res *domainreservation.Reservation) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items[res.ID] = res
	return nil
}

// ForListing projects the listing's calendar. Empty statuses means no status
// filter; exclude drops that reservation id from the projection.
func (r *ReservationRepository) ForListing(ctx context.Context, listingID domainlistings.ListingID, statuses []domainreservation.Status, exclude domainreservation.ReservationID) ([]domainreservation.CalendarEntry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	entries := make([]domainreservation.CalendarEntry, 0)
	for _, res := range r.items {
		if res.ListingID != listingID {
			continue
		}
		if exclude != "" && res.ID == exclude {
			continue
		}
		if len(statuses) > 0 && !statusIncluded(res.Status, statuses) {
			continue
		}
		entries = append(entries, domainreservation.CalendarEntry{
			ID:     res.ID,
			Range:  res.Range,
			Status: res.Status,
		})
	}
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Range.CheckIn.Before(entries[j].Range.CheckIn)
	})
	return entries, nil
}

// ListByGuest returns the guest's reservations, most recent check-in first.
func (r *ReservationRepository) ListByGuest(ctx context.Context, guestID string) ([]*domainreservation.Reservation, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	matches := make([]*domainreservation.Reservation, 0)
	for _, res := range r.items {
		if res.GuestID == guestID {
			matches = append(matches, res)
		}
	}
	sortReservations(matches)
	return matches, nil
}

// ListByListing returns every reservation for a listing, most recent first.
func (r *ReservationRepository) ListByListing(ctx context.Context, listingID domainlistings.ListingID) ([]*domainreservation.Reservation, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	matches := make([]*domainreservation.Reservation, 0)
	for _, res := range r.items {
		if res.ListingID == listingID {
			matches = append(matches, res)
		}
	}
	sortReservations(matches)
	return matches, nil
}

// ListByStatus returns every reservation currently in the given status.
func (r *ReservationRepository) ListByStatus(ctx context.Context, status domainreservation.Status) ([]*domainreservation.Reservation, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	matches := make([]*domainreservation.Reservation, 0)
	for _, res := range r.items {
		if res.Status == status {
			matches = append(matches, res)
		}
	}
	sortReservations(matches)
	return matches, nil
}

// DeleteByListing removes all reservations attached to a listing.
func (r *ReservationRepository) DeleteByListing(ctx context.Context, listingID domainlistings.ListingID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, res := range r.items {
		if res.ListingID == listingID {
			delete(r.items, id)
		}
	}
	return nil
}

func sortReservations(items []*domainreservation.Reservation) {
	sort.Slice(items, func(i, j int) bool {
		if items[i].Range.CheckIn.Equal(items[j].Range.CheckIn) {
			return items[i].ID < items[j].ID
		}
		return items[i].Range.CheckIn.After(items[j].Range.CheckIn)
	})
}

func statusIncluded(status domainreservation.Status, allowed []domainreservation.Status) bool {
	for _, s := range allowed {
		if s == status {
			return true
		}
	}
	return false
}
