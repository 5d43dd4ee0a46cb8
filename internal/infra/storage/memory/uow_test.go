package memory

import (
	"context"
	"testing"

	"staybook/internal/app/uow"
)

func beginUnit(t *testing.T) *Unit {
	t.Helper()
	factory := Factory{
		ListingsRepo:    NewListingRepository(),
		ReservationRepo: NewReservationRepository(),
	}
	unit, err := factory.Begin(context.Background(), uow.TxOptions{})
	if err != nil {
		t.Fatalf("Begin: %v", err)
	}
	return unit.(*Unit)
}

func TestUnitRunsEndHooksOnCommit(t *testing.T) {
	unit := beginUnit(t)
	ran := 0
	unit.OnEnd(func() { ran++ })

	if ran != 0 {
		t.Fatal("hook ran before the unit ended")
	}
	if err := unit.Commit(context.Background()); err != nil {
		t.Fatalf("Commit: %v", err)
	}
	if ran != 1 {
		t.Fatalf("hook runs = %d, want 1", ran)
	}
	// a later rollback must not rerun the hooks
	if err := unit.Rollback(context.Background()); err != nil {
		t.Fatalf("Rollback: %v", err)
	}
	if ran != 1 {
		t.Fatalf("hook runs after rollback = %d, want 1", ran)
	}
}

func TestUnitRunsEndHooksOnRollback(t *testing.T) {
	unit := beginUnit(t)
	ran := 0
	unit.OnEnd(func() { ran++ })
	if err := unit.Rollback(context.Background()); err != nil {
		t.Fatalf("Rollback: %v", err)
	}
	if ran != 1 {
		t.Fatalf("hook runs = %d, want 1", ran)
	}
}

func TestUnitRunsLateHookImmediately(t *testing.T) {
	unit := beginUnit(t)
	if err := unit.Commit(context.Background()); err != nil {
		t.Fatalf("Commit: %v", err)
	}
	ran := false
	unit.OnEnd(func() { ran = true })
	if !ran {
		t.Fatal("hook registered after end did not run")
	}
}
