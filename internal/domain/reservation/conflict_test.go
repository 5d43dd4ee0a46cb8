package reservation

import (
	"testing"
	"time"

	"staybook/internal/domain/shared/daterange"
)

func calRange(t *testing.T, in, out int) daterange.DateRange {
	t.Helper()
	dr, err := daterange.New(
		time.Date(2026, time.July, in, 0, 0, 0, 0, time.UTC),
		time.Date(2026, time.July, out, 0, 0, 0, 0, time.UTC),
	)
	if err != nil {
		t.Fatalf("New(%d, %d): %v", in, out, err)
	}
	return dr
}

func TestIsDateRangeAvailableEmptyCalendar(t *testing.T) {
	if !IsDateRangeAvailable(calRange(t, 1, 5), nil, "") {
		t.Fatal("empty calendar must be available")
	}
}

func TestIsDateRangeAvailableOverlap(t *testing.T) {
	entries := []CalendarEntry{
		{ID: "r1", Range: calRange(t, 10, 15), Status: StatusConfirmed},
	}
	if IsDateRangeAvailable(calRange(t, 12, 18), entries, "") {
		t.Error("overlapping confirmed entry must block")
	}
	if !IsDateRangeAvailable(calRange(t, 15, 20), entries, "") {
		t.Error("back-to-back range must not block")
	}
}

func TestPendingHoldsCalendar(t *testing.T) {
	entries := []CalendarEntry{
		{ID: "r1", Range: calRange(t, 10, 15), Status: StatusPending},
	}
	if IsDateRangeAvailable(calRange(t, 12, 14), entries, "") {
		t.Error("pending entries hold the calendar")
	}
}

func TestTerminalStatusesReleaseCalendar(t *testing.T) {
	entries := []CalendarEntry{
		{ID: "r1", Range: calRange(t, 10, 15), Status: StatusCancelled},
		{ID: "r2", Range: calRange(t, 10, 15), Status: StatusCompleted},
	}
	if !IsDateRangeAvailable(calRange(t, 10, 15), entries, "") {
		t.Error("cancelled and completed entries must not block")
	}
}

func TestSelfExclusion(t *testing.T) {
	entries := []CalendarEntry{
		{ID: "r1", Range: calRange(t, 10, 15), Status: StatusConfirmed},
	}
	if !IsDateRangeAvailable(calRange(t, 10, 15), entries, "r1") {
		t.Error("a reservation must not conflict with its own calendar row")
	}
	if IsDateRangeAvailable(calRange(t, 10, 15), entries, "r2") {
		t.Error("excluding a different id must not unblock the range")
	}
}

func TestMultipleEntriesAnyOverlapBlocks(t *testing.T) {
	entries := []CalendarEntry{
		{ID: "r1", Range: calRange(t, 1, 5), Status: StatusConfirmed},
		{ID: "r2", Range: calRange(t, 5, 9), Status: StatusPending},
		{ID: "r3", Range: calRange(t, 20, 25), Status: StatusConfirmed},
	}
	if !IsDateRangeAvailable(calRange(t, 9, 20), entries, "") {
		t.Error("gap between entries must be available")
	}
	if IsDateRangeAvailable(calRange(t, 8, 10), entries, "") {
		t.Error("overlap with any single entry must block")
	}
}
