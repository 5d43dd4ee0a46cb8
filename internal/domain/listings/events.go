package listings

import "time"

type ListingCreated struct {
	ListingID ListingID
	Owner     OwnerID
	At        time.Time
}

func (e ListingCreated) EventName() string     { return "listing.created" }
func (e ListingCreated) AggregateID() string   { return string(e.ListingID) }
func (e ListingCreated) OccurredAt() time.Time { return e.At }

type ListingApproved struct {
	ListingID ListingID
	At        time.Time
}

func (e ListingApproved) EventName() string     { return "listing.approved" }
func (e ListingApproved) AggregateID() string   { return string(e.ListingID) }
func (e ListingApproved) OccurredAt() time.Time { return e.At }

type ListingRejected struct {
	ListingID ListingID
	Reason    string
	At        time.Time
}

func (e ListingRejected) EventName() string     { return "listing.rejected" }
func (e ListingRejected) AggregateID() string   { return string(e.ListingID) }
func (e ListingRejected) OccurredAt() time.Time { return e.At }

type ListingDeactivated struct {
	ListingID ListingID
	At        time.Time
}

func (e ListingDeactivated) EventName() string     { return "listing.deactivated" }
func (e ListingDeactivated) AggregateID() string   { return string(e.ListingID) }
func (e ListingDeactivated) OccurredAt() time.Time { return e.At }

type ListingAvailabilityChanged struct {
	ListingID ListingID
	Available bool
	At        time.Time
}

func (e ListingAvailabilityChanged) EventName() string     { return "listing.availability_changed" }
func (e ListingAvailabilityChanged) AggregateID() string   { return string(e.ListingID) }
func (e ListingAvailabilityChanged) OccurredAt() time.Time { return e.At }

type ListingUpdated struct {
	ListingID ListingID
	At        time.Time
}

func (e ListingUpdated) EventName() string     { return "listing.updated" }
func (e ListingUpdated) AggregateID() string   { return string(e.ListingID) }
func (e ListingUpdated) OccurredAt() time.Time { return e.At }

type ListingDeleted struct {
	ListingID ListingID
	Owner     OwnerID
	At        time.Time
}

func (e ListingDeleted) EventName() string     { return "listing.deleted" }
func (e ListingDeleted) AggregateID() string   { return string(e.ListingID) }
func (e ListingDeleted) OccurredAt() time.Time { return e.At }
