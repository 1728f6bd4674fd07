// Package mongo stores URL records and id counters in MongoDB documents.
package mongo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	urlsCollection     = "urls"
	countersCollection = "counters"
)

// Connect opens a client for uri, verifies it with a ping and makes sure the
// short code index exists on database.
func Connect(ctx context.Context, uri, database string) (*mongo.Database, error) {
	client, err := mongo.Connect(ctx, options.Client().
		ApplyURI(uri).
		SetServerSelectionTimeout(5*time.Second))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}

	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("failed to ping MongoDB: %w", err)
	}

	db := client.Database(database)
	if err := EnsureIndexes(ctx, db); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, err
	}

	return db, nil
}

// EnsureIndexes creates the unique short code index. The index is sparse so
// records still waiting for their code do not collide with each other.
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	_, err := db.Collection(urlsCollection).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "shortCode", Value: 1}},
		Options: options.Index().SetName("shortCode_unique").SetUnique(true).SetSparse(true),
	})
	if err != nil {
		return fmt.Errorf("failed to create shortCode index: %w", err)
	}
	return nil
}
