package reservation

import (
	"errors"
	"testing"
	"time"

	"staybook/internal/domain/listings"
	"staybook/internal/domain/pricing"
	"staybook/internal/domain/shared/money"
)

func newTestReservation(t *testing.T) *Reservation {
	t.Helper()
	dr := calRange(t, 10, 15)
	quote, err := pricing.ForStay(money.Must(5000, "USD"), dr)
	if err != nil {
		t.Fatalf("ForStay: %v", err)
	}
	res, err := NewReservation(CreateParams{
		ID:        "res-1",
		ListingID: listings.ListingID("lst-1"),
		GuestID:   "guest-1",
		Range:     dr,
		Guests:    2,
		Price:     quote,
		CreatedAt: time.Date(2026, time.July, 1, 12, 0, 0, 0, time.UTC),
	})
	if err != nil {
		t.Fatalf("NewReservation: %v", err)
	}
	return res
}

func TestNewReservationStartsPending(t *testing.T) {
	res := newTestReservation(t)
	if res.Status != StatusPending {
		t.Fatalf("Status = %q, want pending", res.Status)
	}
	if res.Price.Total.Format() != "250.00" {
		t.Fatalf("Total = %q, want 250.00", res.Price.Total.Format())
	}
	evs := res.PendingEvents()
	if len(evs) != 1 || evs[0].EventName() != "reservation.requested" {
		t.Fatalf("events = %v, want one reservation.requested", evs)
	}
}

func TestNewReservationValidation(t *testing.T) {
	dr := calRange(t, 10, 15)
	quote, _ := pricing.ForStay(money.Must(5000, "USD"), dr)

	if _, err := NewReservation(CreateParams{ID: "r", ListingID: "l", GuestID: "g", Range: dr, Guests: 0, Price: quote}); !errors.Is(err, ErrInvalidGuests) {
		t.Errorf("guests=0 err = %v, want ErrInvalidGuests", err)
	}
	if _, err := NewReservation(CreateParams{ID: "r", ListingID: "l", GuestID: " ", Range: dr, Guests: 1, Price: quote}); !errors.Is(err, ErrGuestRequired) {
		t.Errorf("blank guest err = %v, want ErrGuestRequired", err)
	}
}

func TestConfirmOnlyFromPending(t *testing.T) {
	res := newTestReservation(t)
	now := time.Now()
	if err := res.Confirm(now); err != nil {
		t.Fatalf("Confirm: %v", err)
	}
	if res.Status != StatusConfirmed {
		t.Fatalf("Status = %q, want confirmed", res.Status)
	}
	if err := res.Confirm(now); !errors.Is(err, ErrInvalidState) {
		t.Fatalf("second Confirm err = %v, want ErrInvalidState", err)
	}
}

func TestCancelFromPendingAndConfirmed(t *testing.T) {
	now := time.Now()

	pending := newTestReservation(t)
	if err := pending.Cancel("changed plans", now); err != nil {
		t.Fatalf("Cancel pending: %v", err)
	}
	if pending.Status != StatusCancelled {
		t.Fatalf("Status = %q, want cancelled", pending.Status)
	}

	confirmed := newTestReservation(t)
	if err := confirmed.Confirm(now); err != nil {
		t.Fatalf("Confirm: %v", err)
	}
	if err := confirmed.Cancel("host request", now); err != nil {
		t.Fatalf("Cancel confirmed: %v", err)
	}
}

func TestCancelledIsTerminal(t *testing.T) {
	res := newTestReservation(t)
	now := time.Now()
	if err := res.Cancel("", now); err != nil {
		t.Fatalf("Cancel: %v", err)
	}
	if err := res.Confirm(now); !errors.Is(err, ErrInvalidState) {
		t.Errorf("Confirm after cancel err = %v, want ErrInvalidState", err)
	}
	if err := res.Cancel("", now); !errors.Is(err, ErrInvalidState) {
		t.Errorf("double Cancel err = %v, want ErrInvalidState", err)
	}
	if err := res.Complete(res.Range.CheckOut.Add(time.Hour)); !errors.Is(err, ErrInvalidState) {
		t.Errorf("Complete after cancel err = %v, want ErrInvalidState", err)
	}
}

func TestCompleteRequiresCheckoutPassed(t *testing.T) {
	res := newTestReservation(t)
	if err := res.Confirm(time.Now()); err != nil {
		t.Fatalf("Confirm: %v", err)
	}
	if err := res.Complete(res.Range.CheckIn); !errors.Is(err, ErrNotCheckedOutYet) {
		t.Fatalf("early Complete err = %v, want ErrNotCheckedOutYet", err)
	}
	if err := res.Complete(res.Range.CheckOut); err != nil {
		t.Fatalf("Complete at checkout: %v", err)
	}
	if res.Status != StatusCompleted {
		t.Fatalf("Status = %q, want completed", res.Status)
	}
	if err := res.Cancel("", time.Now()); !errors.Is(err, ErrInvalidState) {
		t.Fatalf("Cancel after complete err = %v, want ErrInvalidState", err)
	}
}

func TestCompleteSkipsPending(t *testing.T) {
	res := newTestReservation(t)
	if err := res.Complete(res.Range.CheckOut.Add(time.Hour)); !errors.Is(err, ErrInvalidState) {
		t.Fatalf("Complete pending err = %v, want ErrInvalidState", err)
	}
}
