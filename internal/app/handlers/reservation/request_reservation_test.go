package reservation

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"staybook/internal/app/locking"
	appuow "staybook/internal/app/uow"
	domainlistings "staybook/internal/domain/listings"
	domainreservation "staybook/internal/domain/reservation"
	domainrange "staybook/internal/domain/shared/daterange"
	"staybook/internal/domain/shared/money"
	"staybook/internal/infra/storage/memory"
)

type fixture struct {
	handler      *RequestReservationHandler
	listings     *memory.ListingRepository
	reservations *memory.ReservationRepository
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	listingsRepo := memory.NewListingRepository()
	reservationRepo := memory.NewReservationRepository()
	handler := &RequestReservationHandler{
		UoWFactory: memory.Factory{
			ListingsRepo:    listingsRepo,
			ReservationRepo: reservationRepo,
		},
		Locks:             locking.NewKeyedMutex(),
		EnforceGuestLimit: true,
	}
	return &fixture{handler: handler, listings: listingsRepo, reservations: reservationRepo}
}

func (f *fixture) seedListing(t *testing.T, id, owner string, rateCents int64, approve bool) *domainlistings.Listing {
	t.Helper()
	listing, err := domainlistings.NewListing(domainlistings.CreateParams{
		ID:          domainlistings.ListingID(id),
		Owner:       domainlistings.OwnerID(owner),
		Title:       "Test listing",
		NightlyRate: money.Must(rateCents, "USD"),
		GuestsLimit: 4,
		Now:         time.Now(),
	})
	if err != nil {
		t.Fatalf("NewListing: %v", err)
	}
	if approve {
		if err := listing.Approve(time.Now()); err != nil {
			t.Fatalf("Approve: %v", err)
		}
	}
	listing.ClearEvents()
	if err := f.listings.Save(context.Background(), listing); err != nil {
		t.Fatalf("Save: %v", err)
	}
	return listing
}

func stayCommand(id, listingID, guestID string, in, out int, guests int) RequestReservationCommand {
	return RequestReservationCommand{
		CommandID: id,
		ListingID: listingID,
		GuestID:   guestID,
		CheckIn:   time.Date(2026, time.August, in, 0, 0, 0, 0, time.UTC),
		CheckOut:  time.Date(2026, time.August, out, 0, 0, 0, 0, time.UTC),
		Guests:    guests,
	}
}

func TestRequestReservationSuccess(t *testing.T) {
	f := newFixture(t)
	f.seedListing(t, "lst-1", "host-1", 5000, true)

	result, err := f.handler.Handle(context.Background(), stayCommand("res-1", "lst-1", "guest-1", 10, 13, 2))
	if err != nil {
		t.Fatalf("Handle: %v", err)
	}
	if result.Status != string(domainreservation.StatusPending) {
		t.Errorf("Status = %q, want pending", result.Status)
	}
	if result.TotalPrice != "150.00" {
		t.Errorf("TotalPrice = %q, want 150.00", result.TotalPrice)
	}

	stored, err := f.reservations.ByID(context.Background(), "res-1")
	if err != nil {
		t.Fatalf("ByID: %v", err)
	}
	if stored.Price.Total.Cents != 15000 {
		t.Errorf("stored total = %d, want 15000", stored.Price.Total.Cents)
	}
}

func TestRequestReservationInvalidRange(t *testing.T) {
	f := newFixture(t)
	f.seedListing(t, "lst-1", "host-1", 5000, true)

	_, err := f.handler.Handle(context.Background(), stayCommand("res-1", "lst-1", "guest-1", 13, 10, 2))
	if !errors.Is(err, domainrange.ErrInvalidRange) {
		t.Fatalf("err = %v, want ErrInvalidRange", err)
	}
	if _, err := f.reservations.ByID(context.Background(), "res-1"); !errors.Is(err, domainreservation.ErrNotFound) {
		t.Fatal("invalid request must not create a reservation")
	}
}

func TestRequestReservationUnknownListing(t *testing.T) {
	f := newFixture(t)
	_, err := f.handler.Handle(context.Background(), stayCommand("res-1", "missing", "guest-1", 10, 12, 2))
	if !errors.Is(err, domainlistings.ErrNotFound) {
		t.Fatalf("err = %v, want listings.ErrNotFound", err)
	}
}

func TestRequestReservationUnavailableListing(t *testing.T) {
	f := newFixture(t)
	// still pending moderation
	f.seedListing(t, "lst-1", "host-1", 5000, false)

	_, err := f.handler.Handle(context.Background(), stayCommand("res-1", "lst-1", "guest-1", 10, 12, 2))
	if !errors.Is(err, domainlistings.ErrListingUnavailable) {
		t.Fatalf("err = %v, want ErrListingUnavailable", err)
	}

	unavailable := f.seedListing(t, "lst-2", "host-1", 5000, true)
	unavailable.SetAvailable(false, time.Now())
	_, err = f.handler.Handle(context.Background(), stayCommand("res-2", "lst-2", "guest-1", 10, 12, 2))
	if !errors.Is(err, domainlistings.ErrListingUnavailable) {
		t.Fatalf("err = %v, want ErrListingUnavailable", err)
	}
}

func TestRequestReservationSelfBooking(t *testing.T) {
	f := newFixture(t)
	f.seedListing(t, "lst-1", "host-1", 5000, true)

	_, err := f.handler.Handle(context.Background(), stayCommand("res-1", "lst-1", "host-1", 10, 12, 2))
	if !errors.Is(err, domainreservation.ErrSelfBooking) {
		t.Fatalf("err = %v, want ErrSelfBooking", err)
	}
}

func TestRequestReservationGuestLimit(t *testing.T) {
	f := newFixture(t)
	f.seedListing(t, "lst-1", "host-1", 5000, true)

	if _, err := f.handler.Handle(context.Background(), stayCommand("res-1", "lst-1", "guest-1", 10, 12, 0)); !errors.Is(err, domainreservation.ErrInvalidGuests) {
		t.Fatalf("guests=0 err = %v, want ErrInvalidGuests", err)
	}
	if _, err := f.handler.Handle(context.Background(), stayCommand("res-2", "lst-1", "guest-1", 10, 12, 5)); !errors.Is(err, domainreservation.ErrGuestLimitExceeded) {
		t.Fatalf("over-limit err = %v, want ErrGuestLimitExceeded", err)
	}

	f.handler.EnforceGuestLimit = false
	if _, err := f.handler.Handle(context.Background(), stayCommand("res-3", "lst-1", "guest-1", 10, 12, 5)); err != nil {
		t.Fatalf("limit disabled: %v", err)
	}
}

func TestRequestReservationConflicts(t *testing.T) {
	f := newFixture(t)
	f.seedListing(t, "lst-1", "host-1", 5000, true)
	ctx := context.Background()

	if _, err := f.handler.Handle(ctx, stayCommand("res-1", "lst-1", "guest-1", 10, 15, 2)); err != nil {
		t.Fatalf("first booking: %v", err)
	}
	if _, err := f.handler.Handle(ctx, stayCommand("res-2", "lst-1", "guest-2", 12, 18, 2)); !errors.Is(err, domainreservation.ErrDateRangeConflict) {
		t.Fatalf("overlap err = %v, want ErrDateRangeConflict", err)
	}
	// checkout day equals the next check-in: allowed
	if _, err := f.handler.Handle(ctx, stayCommand("res-3", "lst-1", "guest-2", 15, 18, 2)); err != nil {
		t.Fatalf("back-to-back booking: %v", err)
	}
}

func TestCancelledReservationFreesCalendar(t *testing.T) {
	f := newFixture(t)
	f.seedListing(t, "lst-1", "host-1", 5000, true)
	ctx := context.Background()

	if _, err := f.handler.Handle(ctx, stayCommand("res-1", "lst-1", "guest-1", 10, 15, 2)); err != nil {
		t.Fatalf("first booking: %v", err)
	}
	stored, err := f.reservations.ByID(ctx, "res-1")
	if err != nil {
		t.Fatalf("ByID: %v", err)
	}
	if err := stored.Cancel("plans changed", time.Now()); err != nil {
		t.Fatalf("Cancel: %v", err)
	}
	if err := f.reservations.Save(ctx, stored); err != nil {
		t.Fatalf("Save: %v", err)
	}

	if _, err := f.handler.Handle(ctx, stayCommand("res-2", "lst-1", "guest-2", 10, 15, 2)); err != nil {
		t.Fatalf("rebooking freed dates: %v", err)
	}
}

func TestPriceFrozenAtCreation(t *testing.T) {
	f := newFixture(t)
	listing := f.seedListing(t, "lst-1", "host-1", 5000, true)
	ctx := context.Background()

	if _, err := f.handler.Handle(ctx, stayCommand("res-1", "lst-1", "guest-1", 10, 12, 2)); err != nil {
		t.Fatalf("first booking: %v", err)
	}

	if err := listing.UpdateDetails(listing.Title, listing.Description, money.Must(9000, "USD"), listing.GuestsLimit, time.Now()); err != nil {
		t.Fatalf("UpdateDetails: %v", err)
	}
	if err := f.listings.Save(ctx, listing); err != nil {
		t.Fatalf("Save: %v", err)
	}

	first, err := f.reservations.ByID(ctx, "res-1")
	if err != nil {
		t.Fatalf("ByID: %v", err)
	}
	if first.Price.Total.Cents != 10000 {
		t.Errorf("existing total = %d, want 10000 (frozen)", first.Price.Total.Cents)
	}

	result, err := f.handler.Handle(ctx, stayCommand("res-2", "lst-1", "guest-2", 20, 22, 2))
	if err != nil {
		t.Fatalf("second booking: %v", err)
	}
	if result.TotalPrice != "180.00" {
		t.Errorf("new total = %q, want 180.00 at the updated rate", result.TotalPrice)
	}
}

// Two concurrent overlapping requests against the same listing must resolve
// to exactly one stored reservation.
func TestConcurrentOverlappingRequests(t *testing.T) {
	f := newFixture(t)
	f.seedListing(t, "lst-1", "host-1", 5000, true)

	const attempts = 8
	var wg sync.WaitGroup
	errs := make([]error, attempts)
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			cmd := stayCommand(fmt.Sprintf("res-%d", n), "lst-1", fmt.Sprintf("guest-%d", n), 10, 15, 2)
			_, errs[n] = f.handler.Handle(context.Background(), cmd)
		}(i)
	}
	wg.Wait()

	succeeded := 0
	for _, err := range errs {
		switch {
		case err == nil:
			succeeded++
		case errors.Is(err, domainreservation.ErrDateRangeConflict):
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if succeeded != 1 {
		t.Fatalf("succeeded = %d, want exactly 1", succeeded)
	}

	entries, err := f.reservations.ForListing(context.Background(), "lst-1", domainreservation.ActiveStatuses, "")
	if err != nil {
		t.Fatalf("ForListing: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("stored active reservations = %d, want 1", len(entries))
	}
}

// Each request runs inside its own externally begun unit of work, the way the
// transaction middleware hands one to the handler. A transaction per request
// does not serialize the conflict check against an insert in another
// transaction; only the per-listing lock does.
func TestConcurrentRequestsInSeparateUnits(t *testing.T) {
	f := newFixture(t)
	f.seedListing(t, "lst-1", "host-1", 5000, true)
	factory := f.handler.UoWFactory

	const attempts = 8
	var wg sync.WaitGroup
	errs := make([]error, attempts)
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			ctx := context.Background()
			unit, err := factory.Begin(ctx, appuow.TxOptions{})
			if err != nil {
				errs[n] = err
				return
			}
			ctx = appuow.ContextWithUnitOfWork(ctx, unit)
			cmd := stayCommand(fmt.Sprintf("res-%d", n), "lst-1", fmt.Sprintf("guest-%d", n), 10, 15, 2)
			if _, errs[n] = f.handler.Handle(ctx, cmd); errs[n] != nil {
				_ = unit.Rollback(ctx)
				return
			}
			errs[n] = unit.Commit(ctx)
		}(i)
	}
	wg.Wait()

	succeeded := 0
	for _, err := range errs {
		switch {
		case err == nil:
			succeeded++
		case errors.Is(err, domainreservation.ErrDateRangeConflict):
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if succeeded != 1 {
		t.Fatalf("succeeded = %d, want exactly 1", succeeded)
	}

	entries, err := f.reservations.ForListing(context.Background(), "lst-1", domainreservation.ActiveStatuses, "")
	if err != nil {
		t.Fatalf("ForListing: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("stored active reservations = %d, want 1", len(entries))
	}
}

// A request against a listing that is not bookable reports that before the
// dates are even looked at.
func TestUnavailableListingReportedBeforeRangeValidation(t *testing.T) {
	f := newFixture(t)
	f.seedListing(t, "lst-1", "host-1", 5000, false)

	// checkout precedes checkin on purpose
	_, err := f.handler.Handle(context.Background(), stayCommand("res-1", "lst-1", "guest-1", 13, 10, 2))
	if !errors.Is(err, domainlistings.ErrListingUnavailable) {
		t.Fatalf("err = %v, want ErrListingUnavailable", err)
	}
}

func TestSelfBookingReportedBeforeRangeValidation(t *testing.T) {
	f := newFixture(t)
	f.seedListing(t, "lst-1", "host-1", 5000, true)

	_, err := f.handler.Handle(context.Background(), stayCommand("res-1", "lst-1", "host-1", 13, 10, 2))
	if !errors.Is(err, domainreservation.ErrSelfBooking) {
		t.Fatalf("err = %v, want ErrSelfBooking", err)
	}
}
