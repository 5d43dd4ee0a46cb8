package reservation

import "staybook/internal/domain/shared/daterange"

// IsDateRangeAvailable reports whether the candidate range can be booked given
// the listing's existing calendar entries. Only entries whose status holds the
// calendar count; the entry identified by exclude is skipped so that a
// reservation re-validated against storage never conflicts with its own row.
// The predicate never fails: an empty calendar is trivially available.
func IsDateRangeAvailable(candidate daterange.DateRange, entries []CalendarEntry, exclude ReservationID) bool {
	for _, entry := range entries {
		if exclude != "" && entry.ID == exclude {
			continue
		}
		if !entry.Status.HoldsCalendar() {
			continue
		}
		if entry.Range.Overlaps(candidate) {
			return false
		}
	}
	return true
}
