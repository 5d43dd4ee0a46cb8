package dto

import (
	"time"

	domainlistings "staybook/internal/domain/listings"
	domainreservation "staybook/internal/domain/reservation"
)

// Reservation JSON uses the marketplace's conventional field vocabulary:
// checkinDate, checkoutDate, guests, totalPrice, status.

type ListingSnapshot struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	NightlyRate string `json:"nightlyRate"`
}

type GuestReservationSummary struct {
	ID           string          `json:"id"`
	Listing      ListingSnapshot `json:"listing"`
	CheckinDate  time.Time       `json:"checkinDate"`
	CheckoutDate time.Time       `json:"checkoutDate"`
	Guests       int             `json:"guests"`
	TotalPrice   string          `json:"totalPrice"`
	Status       string          `json:"status"`
	Message      string          `json:"message,omitempty"`
	CreatedAt    time.Time       `json:"createdAt"`
}

type GuestReservationCollection struct {
	Items []GuestReservationSummary `json:"items"`
}

type HostReservationSummary struct {
	ID           string          `json:"id"`
	Listing      ListingSnapshot `json:"listing"`
	GuestID      string          `json:"guestId"`
	CheckinDate  time.Time       `json:"checkinDate"`
	CheckoutDate time.Time       `json:"checkoutDate"`
	Guests       int             `json:"guests"`
	TotalPrice   string          `json:"totalPrice"`
	Status       string          `json:"status"`
	Message      string          `json:"message,omitempty"`
	CreatedAt    time.Time       `json:"createdAt"`
}

type HostReservationCollection struct {
	Items []HostReservationSummary `json:"items"`
}

func MapListingSnapshot(listing *domainlistings.Listing) ListingSnapshot {
	if listing == nil {
		return ListingSnapshot{}
	}
	return ListingSnapshot{
		ID:          string(listing.ID),
		Title:       listing.Title,
		NightlyRate: listing.NightlyRate.Format(),
	}
}

func MapGuestReservationSummary(res *domainreservation.Reservation, listing *domainlistings.Listing) GuestReservationSummary {
	return GuestReservationSummary{
		ID:           string(res.ID),
		Listing:      MapListingSnapshot(listing),
		CheckinDate:  res.Range.CheckIn,
		CheckoutDate: res.Range.CheckOut,
		Guests:       res.Guests,
		TotalPrice:   res.Price.Total.Format(),
		Status:       string(res.Status),
		Message:      res.Message,
		CreatedAt:    res.CreatedAt,
	}
}

func MapHostReservationSummary(res *domainreservation.Reservation, listing *domainlistings.Listing) HostReservationSummary {
	return HostReservationSummary{
		ID:           string(res.ID),
		Listing:      MapListingSnapshot(listing),
		GuestID:      res.GuestID,
		CheckinDate:  res.Range.CheckIn,
		CheckoutDate: res.Range.CheckOut,
		Guests:       res.Guests,
		TotalPrice:   res.Price.Total.Format(),
		Status:       string(res.Status),
		Message:      res.Message,
		CreatedAt:    res.CreatedAt,
	}
}
