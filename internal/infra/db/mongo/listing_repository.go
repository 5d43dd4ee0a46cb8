package mongo

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	domainlistings "staybook/internal/domain/listings"
	"staybook/internal/domain/shared/money"
)

type ListingRepository struct {
	col *mongo.Collection
}

func NewListingRepository(db *mongo.Database) *ListingRepository {
	return &ListingRepository{col: db.Collection("agg_listing")}
}

func (r *ListingRepository) ByID(ctx context.Context, id domainlistings.ListingID) (*domainlistings.Listing, error) {
	var doc listingDocument
	if err := r.col.FindOne(ctx, bson.M{"_id": string(id)}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domainlistings.ErrNotFound
		}
		return nil, err
	}
	return doc.toAggregate()
}

func (r *ListingRepository) Save(ctx context.Context, listing *domainlistings.Listing) error {
	doc := newListingDocument(listing)
	filter := bson.M{"_id": doc.ID, "version": listing.Version}
	doc.Version = listing.Version + 1
	update := bson.M{"$set": doc}
	opts := options.Update().SetUpsert(true)
	out, err := r.col.UpdateOne(ctx, filter, update, opts)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrConcurrentUpdate
		}
		return err
	}
	if out.MatchedCount == 0 && out.UpsertedCount == 0 {
		return ErrConcurrentUpdate
	}
	listing.Version = doc.Version
	return nil
}

func (r *ListingRepository) ListByOwner(ctx context.Context, owner domainlistings.OwnerID) ([]*domainlistings.Listing, error) {
	return r.list(ctx, bson.M{"owner_id": string(owner)})
}

func (r *ListingRepository) ListByStatus(ctx context.Context, status domainlistings.Status) ([]*domainlistings.Listing, error) {
	return r.list(ctx, bson.M{"status": string(status)})
}

func (r *ListingRepository) Delete(ctx context.Context, id domainlistings.ListingID) error {
	out, err := r.col.DeleteOne(ctx, bson.M{"_id": string(id)})
	if err != nil {
		return err
	}
	if out.DeletedCount == 0 {
		return domainlistings.ErrNotFound
	}
	return nil
}

func (r *ListingRepository) list(ctx context.Context, filter bson.M) ([]*domainlistings.Listing, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}})
	cursor, err := r.col.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	out := make([]*domainlistings.Listing, 0)
	for cursor.Next(ctx) {
		var doc listingDocument
		if err := cursor.Decode(&doc); err != nil {
			return nil, err
		}
		agg, err := doc.toAggregate()
		if err != nil {
			return nil, err
		}
		out = append(out, agg)
	}
	return out, cursor.Err()
}

type listingDocument struct {
	ID               string `bson:"_id"`
	OwnerID          string `bson:"owner_id"`
	Title            string `bson:"title"`
	Description      string `bson:"description,omitempty"`
	NightlyRateCents int64  `bson:"nightly_rate_cents"`
	Currency         string `bson:"currency"`
	GuestsLimit      int    `bson:"guests_limit"`
	Available        bool   `bson:"available"`
	Status           string `bson:"status"`
	CreatedAt        int64  `bson:"created_at"`
	UpdatedAt        int64  `bson:"updated_at"`
	Version          int64  `bson:"version"`
}

func newListingDocument(l *domainlistings.Listing) listingDocument {
	return listingDocument{
		ID:               string(l.ID),
		OwnerID:          string(l.Owner),
		Title:            l.Title,
		Description:      l.Description,
		NightlyRateCents: l.NightlyRate.Cents,
		Currency:         l.NightlyRate.Currency,
		GuestsLimit:      l.GuestsLimit,
		Available:        l.Available,
		Status:           string(l.Status),
		CreatedAt:        l.CreatedAt.UnixMilli(),
		UpdatedAt:        l.UpdatedAt.UnixMilli(),
		Version:          l.Version,
	}
}

func (d listingDocument) toAggregate() (*domainlistings.Listing, error) {
	rate, err := money.New(d.NightlyRateCents, d.Currency)
	if err != nil {
		return nil, err
	}
	return &domainlistings.Listing{
		ID:          domainlistings.ListingID(d.ID),
		Owner:       domainlistings.OwnerID(d.OwnerID),
		Title:       d.Title,
		Description: d.Description,
		NightlyRate: rate,
		GuestsLimit: d.GuestsLimit,
		Available:   d.Available,
		Status:      domainlistings.Status(d.Status),
		CreatedAt:   timestampToTime(d.CreatedAt),
		UpdatedAt:   timestampToTime(d.UpdatedAt),
		Version:     d.Version,
	}, nil
}
