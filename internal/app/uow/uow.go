package uow

import (
	"context"

	domainlistings "staybook/internal/domain/listings"
	domainreservation "staybook/internal/domain/reservation"
)

// UnitOfWork coordinates repositories inside a transaction boundary.
type UnitOfWork interface {
	Listings() domainlistings.Repository
	Reservations() domainreservation.Repository

	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}

// UoWFactory starts unit of work instances.
type UoWFactory interface {
	Begin(ctx context.Context, opts TxOptions) (UnitOfWork, error)
}

// EndObserver is implemented by units that run callbacks once the unit ends,
// after Commit or Rollback returns. Handlers use it to hold a lock open until
// an externally managed transaction has finished.
type EndObserver interface {
	OnEnd(fn func())
}

// TxOptions configure transaction boundaries.
type TxOptions struct {
	ReadOnly bool
}
