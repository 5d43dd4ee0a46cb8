package daterange

import (
	"errors"
	"testing"
	"time"
)

func day(d int) time.Time {
	return time.Date(2026, time.March, d, 0, 0, 0, 0, time.UTC)
}

func mustRange(t *testing.T, in, out int) DateRange {
	t.Helper()
	dr, err := New(day(in), day(out))
	if err != nil {
		t.Fatalf("New(%d, %d): %v", in, out, err)
	}
	return dr
}

func TestNewRejectsInvalidRanges(t *testing.T) {
	if _, err := New(day(10), day(10)); !errors.Is(err, ErrInvalidRange) {
		t.Errorf("zero-length range err = %v, want ErrInvalidRange", err)
	}
	if _, err := New(day(12), day(10)); !errors.Is(err, ErrInvalidRange) {
		t.Errorf("inverted range err = %v, want ErrInvalidRange", err)
	}
	if _, err := New(time.Time{}, day(10)); !errors.Is(err, ErrInvalidRange) {
		t.Errorf("zero check-in err = %v, want ErrInvalidRange", err)
	}
}

func TestOverlaps(t *testing.T) {
	base := mustRange(t, 10, 15)
	cases := []struct {
		name  string
		other DateRange
		want  bool
	}{
		{"identical", mustRange(t, 10, 15), true},
		{"partial head", mustRange(t, 8, 12), true},
		{"partial tail", mustRange(t, 13, 20), true},
		{"contained", mustRange(t, 11, 14), true},
		{"containing", mustRange(t, 5, 25), true},
		{"one shared night", mustRange(t, 14, 16), true},
		{"back-to-back after", mustRange(t, 15, 20), false},
		{"back-to-back before", mustRange(t, 5, 10), false},
		{"disjoint", mustRange(t, 20, 25), false},
	}
	for _, tc := range cases {
		if got := base.Overlaps(tc.other); got != tc.want {
			t.Errorf("%s: Overlaps = %v, want %v", tc.name, got, tc.want)
		}
		// overlap is symmetric
		if got := tc.other.Overlaps(base); got != tc.want {
			t.Errorf("%s: reverse Overlaps = %v, want %v", tc.name, got, tc.want)
		}
	}
}

func TestNights(t *testing.T) {
	if n := mustRange(t, 10, 15).Nights(); n != 5 {
		t.Errorf("Nights = %d, want 5", n)
	}
	if n := mustRange(t, 10, 11).Nights(); n != 1 {
		t.Errorf("single night = %d, want 1", n)
	}
}

func TestAdjacent(t *testing.T) {
	a := mustRange(t, 10, 15)
	b := mustRange(t, 15, 20)
	if !a.Adjacent(b) || !b.Adjacent(a) {
		t.Error("back-to-back ranges should be adjacent")
	}
	if a.Overlaps(b) {
		t.Error("adjacent ranges must not overlap")
	}
}

func TestContains(t *testing.T) {
	outer := mustRange(t, 10, 20)
	inner := mustRange(t, 12, 18)
	if !outer.Contains(inner) {
		t.Error("outer should contain inner")
	}
	if inner.Contains(outer) {
		t.Error("inner should not contain outer")
	}
	if !outer.ContainsDate(day(10)) {
		t.Error("check-in day should be contained")
	}
	if outer.ContainsDate(day(20)) {
		t.Error("checkout day is excluded from the half-open interval")
	}
}
