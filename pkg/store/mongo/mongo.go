// Package mongo stores metric reports in a MongoDB collection.
package mongo

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/matzehuels/layoutmetrics/pkg/store"
)

// DefaultCollection is the collection used when Config.Collection is empty.
const DefaultCollection = "reports"

// Config selects the database and collection.
type Config struct {
	URI        string
	Database   string
	Collection string
}

// Store implements store.Store on a MongoDB collection.
type Store struct {
	client *mongo.Client
	coll   *mongo.Collection
}

// New connects to MongoDB, verifies the connection and ensures an index on
// created_at for listing.
func New(ctx context.Context, cfg Config) (*Store, error) {
	if cfg.Database == "" {
		return nil, errors.New("mongo: database name is required")
	}
	if cfg.Collection == "" {
		cfg.Collection = DefaultCollection
	}

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.URI))
	if err != nil {
		return nil, fmt.Errorf("mongo: connect: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("mongo: ping: %w", err)
	}

	coll := client.Database(cfg.Database).Collection(cfg.Collection)
	_, err = coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "created_at", Value: -1}},
	})
	if err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("mongo: create index: %w", err)
	}
	return &Store{client: client, coll: coll}, nil
}

// Save inserts a record.
func (s *Store) Save(ctx context.Context, rec *store.Record) error {
	if _, err := s.coll.InsertOne(ctx, rec); err != nil {
		return fmt.Errorf("mongo: insert report: %w", err)
	}
	return nil
}

// Get fetches a record by ID.
func (s *Store) Get(ctx context.Context, id string) (*store.Record, error) {
	var rec store.Record
	err := s.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&rec)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("mongo: get report: %w", err)
	}
	return &rec, nil
}

// List returns up to limit records, newest first.
func (s *Store) List(ctx context.Context, limit int) ([]store.Record, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	if limit > 0 {
		opts.SetLimit(int64(limit))
	}
	cur, err := s.coll.Find(ctx, bson.D{}, opts)
	if err != nil {
		return nil, fmt.Errorf("mongo: list reports: %w", err)
	}
	recs := []store.Record{}
	if err := cur.All(ctx, &recs); err != nil {
		return nil, fmt.Errorf("mongo: decode reports: %w", err)
	}
	return recs, nil
}

// Close disconnects the client.
func (s *Store) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

var _ store.Store = (*Store)(nil)
