package memory

import (
	"context"
	"sync"
	"time"

	appoutbox "staybook/internal/app/outbox"
	infraoutbox "staybook/internal/infra/outbox"
)

// Outbox buffers event records until the surrounding command commits. Flush
// promotes the buffered records to the publish queue the worker drains.
type Outbox struct {
	mu      sync.Mutex
	staged  []appoutbox.EventRecord
	pending []*infraoutbox.EventDocument
}

func NewOutbox() *Outbox {
	return &Outbox{}
}

func (o *Outbox) Add(ctx context.Context, record appoutbox.EventRecord) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.staged = append(o.staged, record)
	return nil
}

func (o *Outbox) Flush(ctx context.Context) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	for _, rec := range o.staged {
		o.pending = append(o.pending, &infraoutbox.EventDocument{
			ID:         rec.ID,
			Name:       rec.Name,
			Payload:    rec.Payload,
			OccurredAt: rec.OccurredAt,
			Aggregate:  rec.Aggregate,
			Headers:    rec.Headers,
			Status:     infraoutbox.StatusPending,
		})
	}
	o.staged = nil
	return nil
}

// Claim hands the first publishable document to the worker.
func (o *Outbox) Claim(ctx context.Context, workerID string) (*infraoutbox.EventDocument, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	now := time.Now()
	for _, doc := range o.pending {
		if doc.Status != infraoutbox.StatusPending {
			continue
		}
		if !doc.NextAttemptAt.IsZero() && doc.NextAttemptAt.After(now) {
			continue
		}
		doc.Status = infraoutbox.StatusClaimed
		doc.ClaimedBy = workerID
		copyDoc := *doc
		return &copyDoc, nil
	}
	return nil, nil
}

func (o *Outbox) MarkSent(ctx context.Context, id string) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	kept := o.pending[:0]
	for _, doc := range o.pending {
		if doc.ID != id {
			kept = append(kept, doc)
		}
	}
	o.pending = kept
	return nil
}

func (o *Outbox) MarkFailed(ctx context.Context, id string, retryAt time.Time, reason string) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	for _, doc := range o.pending {
		if doc.ID == id {
			doc.Status = infraoutbox.StatusPending
			doc.ClaimedBy = ""
			doc.Attempts++
			doc.NextAttemptAt = retryAt
			doc.LastError = reason
			return nil
		}
	}
	return nil
}

var _ appoutbox.Outbox = (*Outbox)(nil)
var _ infraoutbox.Store = (*Outbox)(nil)
