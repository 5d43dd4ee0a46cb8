package dto

import (
	"time"

	domainlistings "staybook/internal/domain/listings"
)

type ListingDetail struct {
	ID          string    `json:"id"`
	Owner       string    `json:"owner"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	NightlyRate string    `json:"nightlyRate"`
	Currency    string    `json:"currency"`
	GuestsLimit int       `json:"guestsLimit"`
	Available   bool      `json:"available"`
	Status      string    `json:"status"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

type ListingCollection struct {
	Items []ListingDetail `json:"items"`
}

func MapListingDetail(listing *domainlistings.Listing) ListingDetail {
	return ListingDetail{
		ID:          string(listing.ID),
		Owner:       string(listing.Owner),
		Title:       listing.Title,
		Description: listing.Description,
		NightlyRate: listing.NightlyRate.Format(),
		Currency:    listing.NightlyRate.Currency,
		GuestsLimit: listing.GuestsLimit,
		Available:   listing.Available,
		Status:      string(listing.Status),
		CreatedAt:   listing.CreatedAt,
		UpdatedAt:   listing.UpdatedAt,
	}
}

func MapListingCollection(items []*domainlistings.Listing) ListingCollection {
	out := ListingCollection{Items: make([]ListingDetail, 0, len(items))}
	for _, listing := range items {
		out.Items = append(out.Items, MapListingDetail(listing))
	}
	return out
}
