package listings

import (
	"errors"
	"testing"
	"time"

	"staybook/internal/domain/shared/money"
)

func newTestListing(t *testing.T) *Listing {
	t.Helper()
	listing, err := NewListing(CreateParams{
		ID:          "lst-1",
		Owner:       "host-1",
		Title:       "Cabin by the lake",
		Description: "Two bedrooms, private dock",
		NightlyRate: money.Must(12500, "USD"),
		GuestsLimit: 4,
		Now:         time.Date(2026, time.May, 1, 0, 0, 0, 0, time.UTC),
	})
	if err != nil {
		t.Fatalf("NewListing: %v", err)
	}
	return listing
}

func TestNewListingStartsPendingModeration(t *testing.T) {
	listing := newTestListing(t)
	if listing.Status != StatusPending {
		t.Fatalf("Status = %q, want pending", listing.Status)
	}
	if !listing.Available {
		t.Fatal("new listings default to available")
	}
	if listing.Bookable() {
		t.Fatal("pending listings must not be bookable")
	}
}

func TestNewListingValidation(t *testing.T) {
	base := CreateParams{
		ID:          "lst-1",
		Owner:       "host-1",
		Title:       "Cabin",
		NightlyRate: money.Must(100, "USD"),
		GuestsLimit: 2,
	}

	bad := base
	bad.Title = "  "
	if _, err := NewListing(bad); !errors.Is(err, ErrTitleRequired) {
		t.Errorf("blank title err = %v, want ErrTitleRequired", err)
	}

	bad = base
	bad.GuestsLimit = 0
	if _, err := NewListing(bad); !errors.Is(err, ErrGuestsLimit) {
		t.Errorf("zero limit err = %v, want ErrGuestsLimit", err)
	}

	bad = base
	bad.NightlyRate = money.Money{}
	if _, err := NewListing(bad); !errors.Is(err, ErrNightlyRate) {
		t.Errorf("zero rate err = %v, want ErrNightlyRate", err)
	}
}

func TestModerationTransitions(t *testing.T) {
	now := time.Now()

	listing := newTestListing(t)
	if err := listing.Approve(now); err != nil {
		t.Fatalf("Approve: %v", err)
	}
	if !listing.Bookable() {
		t.Fatal("approved and available listing must be bookable")
	}
	if err := listing.Approve(now); !errors.Is(err, ErrInvalidState) {
		t.Errorf("double Approve err = %v, want ErrInvalidState", err)
	}

	rejected := newTestListing(t)
	if err := rejected.Reject("incomplete photos", now); err != nil {
		t.Fatalf("Reject: %v", err)
	}
	if rejected.Bookable() {
		t.Error("rejected listings must not be bookable")
	}
	if err := rejected.Approve(now); !errors.Is(err, ErrInvalidState) {
		t.Errorf("Approve after Reject err = %v, want ErrInvalidState", err)
	}
}

func TestDeactivateReactivate(t *testing.T) {
	now := time.Now()
	listing := newTestListing(t)
	if err := listing.Deactivate(now); !errors.Is(err, ErrInvalidState) {
		t.Fatalf("Deactivate pending err = %v, want ErrInvalidState", err)
	}
	if err := listing.Approve(now); err != nil {
		t.Fatalf("Approve: %v", err)
	}
	if err := listing.Deactivate(now); err != nil {
		t.Fatalf("Deactivate: %v", err)
	}
	if listing.Bookable() {
		t.Error("inactive listings must not be bookable")
	}
	if err := listing.Reactivate(now); err != nil {
		t.Fatalf("Reactivate: %v", err)
	}
	if !listing.Bookable() {
		t.Error("reactivated listing must be bookable again")
	}
}

func TestSetAvailableGatesBooking(t *testing.T) {
	now := time.Now()
	listing := newTestListing(t)
	if err := listing.Approve(now); err != nil {
		t.Fatalf("Approve: %v", err)
	}
	listing.ClearEvents()

	listing.SetAvailable(false, now)
	if listing.Bookable() {
		t.Error("unavailable listing must not be bookable")
	}
	if len(listing.PendingEvents()) != 1 {
		t.Errorf("events = %d, want 1", len(listing.PendingEvents()))
	}

	// no-op toggle records nothing
	listing.SetAvailable(false, now)
	if len(listing.PendingEvents()) != 1 {
		t.Errorf("no-op toggle recorded an event")
	}
}

func TestUpdateDetailsKeepsInvariants(t *testing.T) {
	now := time.Now()
	listing := newTestListing(t)
	if err := listing.UpdateDetails("Cabin deluxe", "renovated", money.Must(15000, "USD"), 6, now); err != nil {
		t.Fatalf("UpdateDetails: %v", err)
	}
	if listing.NightlyRate.Cents != 15000 || listing.GuestsLimit != 6 {
		t.Fatal("details not applied")
	}
	if err := listing.UpdateDetails("", "x", money.Must(100, "USD"), 1, now); !errors.Is(err, ErrTitleRequired) {
		t.Fatalf("blank title err = %v, want ErrTitleRequired", err)
	}
}
