package schedule

import (
	"context"
	"log/slog"
	"time"

	"staybook/internal/app/outbox"
	"staybook/internal/app/uow"
	domainreservation "staybook/internal/domain/reservation"
)

// Sweeper moves confirmed reservations whose checkout date has passed into
// the completed terminal state. Completion is strictly time-based; it is never
// reachable through a user action.
type Sweeper struct {
	UoWFactory uow.UoWFactory
	Outbox     outbox.Outbox
	Encoder    outbox.EventEncoder
	Interval   time.Duration
	Logger     *slog.Logger
}

func (s *Sweeper) Run(ctx context.Context) error {
	ticker := time.NewTicker(s.interval())
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if err := s.SweepOnce(ctx, time.Now()); err != nil && s.Logger != nil {
				s.Logger.Error("completion sweep failed", "error", err)
			}
		}
	}
}

func (s *Sweeper) SweepOnce(ctx context.Context, now time.Time) error {
	unit, err := s.UoWFactory.Begin(ctx, uow.TxOptions{})
	if err != nil {
		return err
	}
	committed := false
	defer func() {
		if !committed {
			_ = unit.Rollback(ctx)
		}
	}()

	confirmed, err := unit.Reservations().ListByStatus(ctx, domainreservation.StatusConfirmed)
	if err != nil {
		return err
	}
	swept := 0
	for _, res := range confirmed {
		if now.UTC().Before(res.Range.CheckOut) {
			continue
		}
		if err := res.Complete(now); err != nil {
			continue
		}
		pending := res.PendingEvents()
		res.ClearEvents()
		if err := unit.Reservations().Save(ctx, res); err != nil {
			return err
		}
		if err := outbox.RecordDomainEvents(ctx, s.Outbox, s.Encoder, pending); err != nil {
			return err
		}
		swept++
	}
	if err := unit.Commit(ctx); err != nil {
		return err
	}
	committed = true
	if s.Outbox != nil && swept > 0 {
		if err := s.Outbox.Flush(ctx); err != nil {
			return err
		}
	}
	if swept > 0 && s.Logger != nil {
		s.Logger.Info("reservations completed", "count", swept)
	}
	return nil
}

func (s *Sweeper) interval() time.Duration {
	if s.Interval <= 0 {
		return time.Hour
	}
	return s.Interval
}
