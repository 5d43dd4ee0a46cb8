package memory

import (
	"context"
	"errors"
	"sync"

	"staybook/internal/app/uow"
	domainlistings "staybook/internal/domain/listings"
	domainreservation "staybook/internal/domain/reservation"
)

// Factory wires in-memory repositories into a unit-of-work boundary.
type Factory struct {
	ListingsRepo    domainlistings.Repository
	ReservationRepo domainreservation.Repository
}

// ErrFactoryMisconfigured indicates missing repositories.
var ErrFactoryMisconfigured = errors.New("memory: unit of work factory misconfigured")

// Begin starts a lightweight transaction boundary. No isolation is provided but
// the abstraction matches the application ports; handlers that need atomicity
// across the conflict check and insert combine this with a listing lock.
func (f Factory) Begin(ctx context.Context, opts uow.TxOptions) (uow.UnitOfWork, error) {
	if f.ListingsRepo == nil || f.ReservationRepo == nil {
		return nil, ErrFactoryMisconfigured
	}
	return &Unit{
		listings:     f.ListingsRepo,
		reservations: f.ReservationRepo,
	}, nil
}

// Unit is a lightweight uow.UnitOfWork backed by in-memory stores.
type Unit struct {
	listings     domainlistings.Repository
	reservations domainreservation.Repository

	mu    sync.Mutex
	ended bool
	hooks []func()
}

func (u *Unit) Listings() domainlistings.Repository {
	return u.listings
}

func (u *Unit) Reservations() domainreservation.Repository {
	return u.reservations
}

func (u *Unit) Commit(ctx context.Context) error {
	u.finish()
	return nil
}

func (u *Unit) Rollback(ctx context.Context) error {
	u.finish()
	return nil
}

// OnEnd registers a callback to run once the unit commits or rolls back. A
// callback registered after the unit ended runs immediately.
func (u *Unit) OnEnd(fn func()) {
	u.mu.Lock()
	if u.ended {
		u.mu.Unlock()
		fn()
		return
	}
	u.hooks = append(u.hooks, fn)
	u.mu.Unlock()
}

func (u *Unit) finish() {
	u.mu.Lock()
	if u.ended {
		u.mu.Unlock()
		return
	}
	u.ended = true
	hooks := u.hooks
	u.hooks = nil
	u.mu.Unlock()
	for _, fn := range hooks {
		fn()
	}
}

var _ uow.UoWFactory = Factory{}
var _ uow.UnitOfWork = (*Unit)(nil)
var _ uow.EndObserver = (*Unit)(nil)
