package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/99minutos/dropoff-location/internal/core/domain"
)

const collectionLocations = "locations"

// locationCollection is the part of *mongo.Collection the repository uses.
type locationCollection interface {
	InsertOne(ctx context.Context, document interface{}, opts ...*options.InsertOneOptions) (*mongo.InsertOneResult, error)
	FindOne(ctx context.Context, filter interface{}, opts ...*options.FindOneOptions) *mongo.SingleResult
	Indexes() mongo.IndexView
}

// LocationRepository is an append-only store of positions. Every Append
// creates a new document whose ObjectID is assigned on insert.
type LocationRepository struct {
	col locationCollection
	now func() time.Time
}

func NewLocationRepository(db *mongo.Database) *LocationRepository {
	return &LocationRepository{
		col: db.Collection(collectionLocations),
		now: func() time.Time { return time.Now().UTC() },
	}
}

type locationDocument struct {
	ID              primitive.ObjectID `bson:"_id,omitempty"`
	domain.Position `bson:",inline"`
	ReceivedAt      time.Time `bson:"received_at"`
}

// Append inserts pos and returns the hex form of the new document ID.
func (r *LocationRepository) Append(ctx context.Context, pos domain.Position) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	doc := locationDocument{Position: pos, ReceivedAt: r.now()}
	res, err := r.col.InsertOne(ctx, doc)
	if err != nil {
		return "", fmt.Errorf("insert location: %w", err)
	}

	oid, ok := res.InsertedID.(primitive.ObjectID)
	if !ok {
		return fmt.Sprint(res.InsertedID), nil
	}
	return oid.Hex(), nil
}

// Latest returns the most recently received document.
func (r *LocationRepository) Latest(ctx context.Context) (*domain.LocationRecord, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	opts := options.FindOne().SetSort(bson.D{{Key: "received_at", Value: -1}, {Key: "_id", Value: -1}})

	var doc locationDocument
	if err := r.col.FindOne(ctx, bson.M{}, opts).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrLocationNotFound
		}
		return nil, fmt.Errorf("find latest location: %w", err)
	}

	return &domain.LocationRecord{
		ID:         doc.ID.Hex(),
		Position:   doc.Position,
		ReceivedAt: doc.ReceivedAt.UTC(),
	}, nil
}

// EnsureIndexes creates the indexes Latest relies on.
func (r *LocationRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "received_at", Value: -1}}},
		{Keys: bson.D{{Key: "timestamp", Value: 1}}},
	}

	_, err := r.col.Indexes().CreateMany(ctx, indexes)
	return err
}
