package outbox

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	appoutbox "staybook/internal/app/outbox"
)

const (
	StatusPending = "pending"
	StatusClaimed = "claimed"
	StatusSent    = "sent"
)

// EventDocument is one outbox row awaiting publication.
type EventDocument struct {
	ID            string            `bson:"_id"`
	Name          string            `bson:"name"`
	Payload       []byte            `bson:"payload"`
	OccurredAt    time.Time         `bson:"occurred_at"`
	Aggregate     string            `bson:"aggregate"`
	Headers       map[string]string `bson:"headers,omitempty"`
	Status        string            `bson:"status"`
	Attempts      int               `bson:"attempts"`
	NextAttemptAt time.Time         `bson:"next_attempt_at,omitempty"`
	ClaimedBy     string            `bson:"claimed_by,omitempty"`
	LastError     string            `bson:"last_error,omitempty"`
}

// Store is the durable queue the worker drains.
type Store interface {
	Claim(ctx context.Context, workerID string) (*EventDocument, error)
	MarkSent(ctx context.Context, id string) error
	MarkFailed(ctx context.Context, id string, retryAt time.Time, reason string) error
}

// MongoStore persists outbox rows in a collection. It doubles as the
// application-facing outbox port: Add inserts rows as pending inside the
// active session so the insert commits with the aggregate write, and Flush is
// a no-op because publication belongs to the worker.
type MongoStore struct {
	Collection *mongo.Collection
}

func (s *MongoStore) Add(ctx context.Context, record appoutbox.EventRecord) error {
	if s.Collection == nil {
		return errStoreNotConfigured
	}
	doc := EventDocument{
		ID:         record.ID,
		Name:       record.Name,
		Payload:    record.Payload,
		OccurredAt: record.OccurredAt.UTC(),
		Aggregate:  record.Aggregate,
		Headers:    record.Headers,
		Status:     StatusPending,
	}
	_, err := s.Collection.InsertOne(ctx, doc)
	return err
}

func (s *MongoStore) Flush(ctx context.Context) error {
	return nil
}

// Claim atomically moves the oldest publishable row to claimed.
func (s *MongoStore) Claim(ctx context.Context, workerID string) (*EventDocument, error) {
	if s.Collection == nil {
		return nil, errStoreNotConfigured
	}
	filter := bson.M{
		"status": StatusPending,
		"$or": bson.A{
			bson.M{"next_attempt_at": bson.M{"$exists": false}},
			bson.M{"next_attempt_at": bson.M{"$lte": time.Now().UTC()}},
		},
	}
	update := bson.M{"$set": bson.M{"status": StatusClaimed, "claimed_by": workerID}}
	opts := options.FindOneAndUpdate().
		SetSort(bson.D{{Key: "occurred_at", Value: 1}}).
		SetReturnDocument(options.After)

	var doc EventDocument
	err := s.Collection.FindOneAndUpdate(ctx, filter, update, opts).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &doc, nil
}

func (s *MongoStore) MarkSent(ctx context.Context, id string) error {
	if s.Collection == nil {
		return errStoreNotConfigured
	}
	_, err := s.Collection.UpdateByID(ctx, id, bson.M{"$set": bson.M{
		"status":  StatusSent,
		"sent_at": time.Now().UTC(),
	}})
	return err
}

func (s *MongoStore) MarkFailed(ctx context.Context, id string, retryAt time.Time, reason string) error {
	if s.Collection == nil {
		return errStoreNotConfigured
	}
	_, err := s.Collection.UpdateByID(ctx, id, bson.M{
		"$set": bson.M{
			"status":          StatusPending,
			"claimed_by":      "",
			"next_attempt_at": retryAt.UTC(),
			"last_error":      reason,
		},
		"$inc": bson.M{"attempts": 1},
	})
	return err
}

var errStoreNotConfigured = errors.New("outbox: store missing collection")

var _ Store = (*MongoStore)(nil)
var _ appoutbox.Outbox = (*MongoStore)(nil)
