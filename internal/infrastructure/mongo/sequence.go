package mongo

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/sp3dr4/wren/internal/domain"
)

type counterDocument struct {
	Name string `bson:"_id"`
	Seq  int64  `bson:"seq"`
}

// Sequence increments {_id: name} in the counters collection with a single
// findAndModify, creating the document on first use.
type Sequence struct {
	counters *mongo.Collection
	name     string
}

func NewSequence(db *mongo.Database, name string) *Sequence {
	return &Sequence{
		counters: db.Collection(countersCollection),
		name:     name,
	}
}

func (s *Sequence) Next(ctx context.Context) (int64, error) {
	const op = "mongo.Sequence.Next"

	opts := options.FindOneAndUpdate().
		SetUpsert(true).
		SetReturnDocument(options.After)

	var counter counterDocument
	err := s.counters.FindOneAndUpdate(ctx,
		bson.M{"_id": s.name},
		bson.M{"$inc": bson.M{"seq": int64(1)}},
		opts,
	).Decode(&counter)
	if err != nil {
		return 0, fmt.Errorf("%s: %w: %w", op, domain.ErrStorageUnavailable, err)
	}

	return counter.Seq, nil
}
