package middleware

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"staybook/internal/app/commands"
)

type echoCommand struct {
	IdemKey string
	Value   string
}

func (echoCommand) Key() string { return "test.echo" }

func (c echoCommand) IdempotencyKey() string { return c.IdemKey }

func (echoCommand) ResultPrototype() any { return &echoResult{} }

type echoResult struct {
	Value string `json:"value"`
}

type countingBus struct {
	calls  int
	result any
	err    error
}

func (b *countingBus) Dispatch(ctx context.Context, cmd commands.Command) (any, error) {
	b.calls++
	return b.result, b.err
}

type mapStore struct {
	records map[string]IdempotencyRecord
}

func newMapStore() *mapStore {
	return &mapStore{records: make(map[string]IdempotencyRecord)}
}

func (s *mapStore) Get(ctx context.Context, key string) (IdempotencyRecord, bool, error) {
	rec, ok := s.records[key]
	return rec, ok, nil
}

func (s *mapStore) Save(ctx context.Context, rec IdempotencyRecord) error {
	s.records[rec.Key] = rec
	return nil
}

func TestIdempotencyReplaysStoredResult(t *testing.T) {
	inner := &countingBus{result: &echoResult{Value: "first"}}
	bus := ChainCommands(inner, Idempotency(newMapStore(), nil))
	cmd := echoCommand{IdemKey: "idem-1", Value: "ignored"}

	first, err := bus.Dispatch(context.Background(), cmd)
	if err != nil {
		t.Fatalf("first dispatch: %v", err)
	}
	inner.result = &echoResult{Value: "second"}
	replayed, err := bus.Dispatch(context.Background(), cmd)
	if err != nil {
		t.Fatalf("replay dispatch: %v", err)
	}

	if inner.calls != 1 {
		t.Fatalf("handler calls = %d, want 1", inner.calls)
	}
	got, ok := replayed.(*echoResult)
	if !ok {
		t.Fatalf("replayed result type %T", replayed)
	}
	if got.Value != first.(*echoResult).Value {
		t.Fatalf("replayed value = %q, want %q", got.Value, first.(*echoResult).Value)
	}
}

func TestIdempotencyReplaysStoredError(t *testing.T) {
	inner := &countingBus{err: errors.New("listing not bookable")}
	bus := ChainCommands(inner, Idempotency(newMapStore(), nil))
	cmd := echoCommand{IdemKey: "idem-1"}

	if _, err := bus.Dispatch(context.Background(), cmd); err == nil {
		t.Fatal("expected first dispatch to fail")
	}
	inner.err = nil
	inner.result = &echoResult{Value: "would succeed now"}

	_, err := bus.Dispatch(context.Background(), cmd)
	if err == nil || err.Error() != "listing not bookable" {
		t.Fatalf("replayed err = %v, want stored failure", err)
	}
	if inner.calls != 1 {
		t.Fatalf("handler calls = %d, want 1", inner.calls)
	}
}

func TestIdempotencyReplayKeepsSentinelIdentity(t *testing.T) {
	sentinel := errors.New("calendar conflict")
	inner := &countingBus{err: sentinel}
	bus := ChainCommands(inner, Idempotency(newMapStore(), nil, sentinel))
	cmd := echoCommand{IdemKey: "idem-1"}

	if _, err := bus.Dispatch(context.Background(), cmd); !errors.Is(err, sentinel) {
		t.Fatalf("first err = %v, want the sentinel", err)
	}
	_, err := bus.Dispatch(context.Background(), cmd)
	if !errors.Is(err, sentinel) {
		t.Fatalf("replayed err = %v, does not match the sentinel", err)
	}
	if err.Error() != sentinel.Error() {
		t.Fatalf("replayed message = %q, want %q", err.Error(), sentinel.Error())
	}
	if inner.calls != 1 {
		t.Fatalf("handler calls = %d, want 1", inner.calls)
	}
}

func TestIdempotencyReplayKeepsWrappedSentinelIdentity(t *testing.T) {
	sentinel := errors.New("calendar conflict")
	inner := &countingBus{err: fmt.Errorf("listing lst-1: %w", sentinel)}
	bus := ChainCommands(inner, Idempotency(newMapStore(), nil, sentinel))
	cmd := echoCommand{IdemKey: "idem-1"}

	if _, err := bus.Dispatch(context.Background(), cmd); err == nil {
		t.Fatal("expected first dispatch to fail")
	}
	_, err := bus.Dispatch(context.Background(), cmd)
	if !errors.Is(err, sentinel) {
		t.Fatalf("replayed err = %v, does not match the sentinel", err)
	}
	if err.Error() != "listing lst-1: calendar conflict" {
		t.Fatalf("replayed message = %q, lost the wrapping context", err.Error())
	}
}

func TestIdempotencySkipsWithoutKey(t *testing.T) {
	inner := &countingBus{result: &echoResult{Value: "ok"}}
	bus := ChainCommands(inner, Idempotency(newMapStore(), nil))

	for i := 0; i < 3; i++ {
		if _, err := bus.Dispatch(context.Background(), echoCommand{}); err != nil {
			t.Fatalf("dispatch %d: %v", i, err)
		}
	}
	if inner.calls != 3 {
		t.Fatalf("handler calls = %d, want 3 without a key", inner.calls)
	}
}

func TestIdempotencyDistinctKeysAreIndependent(t *testing.T) {
	inner := &countingBus{result: &echoResult{Value: "ok"}}
	bus := ChainCommands(inner, Idempotency(newMapStore(), nil))

	if _, err := bus.Dispatch(context.Background(), echoCommand{IdemKey: "a"}); err != nil {
		t.Fatalf("dispatch a: %v", err)
	}
	if _, err := bus.Dispatch(context.Background(), echoCommand{IdemKey: "b"}); err != nil {
		t.Fatalf("dispatch b: %v", err)
	}
	if inner.calls != 2 {
		t.Fatalf("handler calls = %d, want 2", inner.calls)
	}
}

func TestIdempotencyRecordTimestamps(t *testing.T) {
	store := newMapStore()
	inner := &countingBus{result: &echoResult{Value: "ok"}}
	bus := ChainCommands(inner, Idempotency(store, nil))

	before := time.Now().UTC()
	if _, err := bus.Dispatch(context.Background(), echoCommand{IdemKey: "a"}); err != nil {
		t.Fatalf("dispatch: %v", err)
	}
	rec, ok := store.records["a"]
	if !ok {
		t.Fatal("record not saved")
	}
	if rec.OccurredAt.Before(before) {
		t.Fatalf("OccurredAt = %v, before dispatch time %v", rec.OccurredAt, before)
	}
}
