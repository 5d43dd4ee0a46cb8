package pricing

import (
	"errors"
	"testing"
	"time"

	"staybook/internal/domain/shared/daterange"
	"staybook/internal/domain/shared/money"
)

func stay(t *testing.T, nights int) daterange.DateRange {
	t.Helper()
	start := time.Date(2026, time.June, 1, 0, 0, 0, 0, time.UTC)
	dr, err := daterange.New(start, start.AddDate(0, 0, nights))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return dr
}

func TestForStay(t *testing.T) {
	quote, err := ForStay(money.Must(5000, "USD"), stay(t, 3))
	if err != nil {
		t.Fatalf("ForStay: %v", err)
	}
	if quote.Nights != 3 {
		t.Errorf("Nights = %d, want 3", quote.Nights)
	}
	if quote.Total.Format() != "150.00" {
		t.Errorf("Total = %q, want 150.00", quote.Total.Format())
	}
}

func TestForStayOddRate(t *testing.T) {
	quote, err := ForStay(money.Must(3333, "USD"), stay(t, 7))
	if err != nil {
		t.Fatalf("ForStay: %v", err)
	}
	if quote.Total.Cents != 23331 {
		t.Errorf("Total = %d cents, want 23331", quote.Total.Cents)
	}
}

func TestForStayRejectsDegenerateRange(t *testing.T) {
	start := time.Date(2026, time.June, 1, 0, 0, 0, 0, time.UTC)
	bad := daterange.DateRange{CheckIn: start, CheckOut: start}
	if _, err := ForStay(money.Must(5000, "USD"), bad); !errors.Is(err, daterange.ErrInvalidRange) {
		t.Fatalf("err = %v, want ErrInvalidRange", err)
	}
}

func TestForStayRequiresCurrency(t *testing.T) {
	if _, err := ForStay(money.Money{Cents: 5000}, stay(t, 2)); !errors.Is(err, ErrCurrencyUnset) {
		t.Fatalf("err = %v, want ErrCurrencyUnset", err)
	}
}
