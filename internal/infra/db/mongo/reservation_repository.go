package mongo

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"staybook/internal/domain/listings"
	domainpricing "staybook/internal/domain/pricing"
	domainreservation "staybook/internal/domain/reservation"
	domainrange "staybook/internal/domain/shared/daterange"
	"staybook/internal/domain/shared/money"
)

var ErrConcurrentUpdate = errors.New("mongo: concurrent update detected")

type ReservationRepository struct {
	col *mongo.Collection
}

func NewReservationRepository(db *mongo.Database) *ReservationRepository {
	return &ReservationRepository{col: db.Collection("agg_reservation")}
}

func (r *ReservationRepository) ByID(ctx context.Context, id domainreservation.ReservationID) (*domainreservation.Reservation, error) {
	var doc reservationDocument
	if err := r.col.FindOne(ctx, bson.M{"_id": string(id)}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domainreservation.ErrNotFound
		}
		return nil, err
	}
	return doc.toAggregate()
}

func (r *ReservationRepository) Save(ctx context.Context, res *domainreservation.Reservation) error {
	doc := newReservationDocument(res)
	filter := bson.M{"_id": doc.ID, "version": res.Version}
	doc.Version = res.Version + 1
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
	res.Version = doc.Version
	return nil
}

func (r *ReservationRepository) ForListing(ctx context.Context, listingID listings.ListingID, statuses []domainreservation.Status, exclude domainreservation.ReservationID) ([]domainreservation.CalendarEntry, error) {
	filter := bson.M{"listing_id": string(listingID)}
	if len(statuses) > 0 {
		values := make([]string, 0, len(statuses))
		for _, s := range statuses {
			values = append(values, string(s))
		}
		filter["status"] = bson.M{"$in": values}
	}
	if exclude != "" {
		filter["_id"] = bson.M{"$ne": string(exclude)}
	}
	opts := options.Find().SetSort(bson.D{{Key: "range.check_in", Value: 1}})
	cursor, err := r.col.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	entries := make([]domainreservation.CalendarEntry, 0)
	for cursor.Next(ctx) {
		var doc reservationDocument
		if err := cursor.Decode(&doc); err != nil {
			return nil, err
		}
		entries = append(entries, domainreservation.CalendarEntry{
			ID: domainreservation.ReservationID(doc.ID),
			Range: domainrange.DateRange{
				CheckIn:  timestampToTime(doc.Range.CheckIn),
				CheckOut: timestampToTime(doc.Range.CheckOut),
			},
			Status: domainreservation.Status(doc.Status),
		})
	}
	return entries, cursor.Err()
}

func (r *ReservationRepository) ListByGuest(ctx context.Context, guestID string) ([]*domainreservation.Reservation, error) {
	return r.list(ctx, bson.M{"guest_id": guestID})
}

func (r *ReservationRepository) ListByListing(ctx context.Context, listingID listings.ListingID) ([]*domainreservation.Reservation, error) {
	return r.list(ctx, bson.M{"listing_id": string(listingID)})
}

func (r *ReservationRepository) ListByStatus(ctx context.Context, status domainreservation.Status) ([]*domainreservation.Reservation, error) {
	return r.list(ctx, bson.M{"status": string(status)})
}

func (r *ReservationRepository) DeleteByListing(ctx context.Context, listingID listings.ListingID) error {
	_, err := r.col.DeleteMany(ctx, bson.M{"listing_id": string(listingID)})
	return err
}

func (r *ReservationRepository) list(ctx context.Context, filter bson.M) ([]*domainreservation.Reservation, error) {
	opts := options.Find().SetSort(bson.D{{Key: "range.check_in", Value: -1}})
	cursor, err := r.col.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	out := make([]*domainreservation.Reservation, 0)
	for cursor.Next(ctx) {
		var doc reservationDocument
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

type reservationDocument struct {
	ID        string        `bson:"_id"`
	ListingID string        `bson:"listing_id"`
	GuestID   string        `bson:"guest_id"`
	Range     rangeDocument `bson:"range"`
	Guests    int           `bson:"guests"`
	Price     quoteDocument `bson:"price"`
	Status    string        `bson:"status"`
	Message   string        `bson:"message,omitempty"`
	CreatedAt int64         `bson:"created_at"`
	UpdatedAt int64         `bson:"updated_at"`
	Version   int64         `bson:"version"`
}

type rangeDocument struct {
	CheckIn  int64 `bson:"check_in"`
	CheckOut int64 `bson:"check_out"`
}

type quoteDocument struct {
	Nights       int    `bson:"nights"`
	NightlyCents int64  `bson:"nightly_cents"`
	TotalCents   int64  `bson:"total_cents"`
	Currency     string `bson:"currency"`
}

func newReservationDocument(res *domainreservation.Reservation) reservationDocument {
	return reservationDocument{
		ID:        string(res.ID),
		ListingID: string(res.ListingID),
		GuestID:   res.GuestID,
		Range:     rangeDocument{CheckIn: res.Range.CheckIn.UnixMilli(), CheckOut: res.Range.CheckOut.UnixMilli()},
		Guests:    res.Guests,
		Price: quoteDocument{
			Nights:       res.Price.Nights,
			NightlyCents: res.Price.Nightly.Cents,
			TotalCents:   res.Price.Total.Cents,
			Currency:     res.Price.Total.Currency,
		},
		Status:    string(res.Status),
		Message:   res.Message,
		CreatedAt: res.CreatedAt.UnixMilli(),
		UpdatedAt: res.UpdatedAt.UnixMilli(),
		Version:   res.Version,
	}
}

func (d reservationDocument) toAggregate() (*domainreservation.Reservation, error) {
	nightly, err := money.New(d.Price.NightlyCents, d.Price.Currency)
	if err != nil {
		return nil, err
	}
	total, err := money.New(d.Price.TotalCents, d.Price.Currency)
	if err != nil {
		return nil, err
	}
	return &domainreservation.Reservation{
		ID:        domainreservation.ReservationID(d.ID),
		ListingID: listings.ListingID(d.ListingID),
		GuestID:   d.GuestID,
		Range: domainrange.DateRange{
			CheckIn:  timestampToTime(d.Range.CheckIn),
			CheckOut: timestampToTime(d.Range.CheckOut),
		},
		Guests: d.Guests,
		Price: domainpricing.Quote{
			Nights:  d.Price.Nights,
			Nightly: nightly,
			Total:   total,
		},
		Status:    domainreservation.Status(d.Status),
		Message:   d.Message,
		CreatedAt: timestampToTime(d.CreatedAt),
		UpdatedAt: timestampToTime(d.UpdatedAt),
		Version:   d.Version,
	}, nil
}

func timestampToTime(ms int64) time.Time {
	return time.UnixMilli(ms).UTC()
}
