package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/sp3dr4/wren/internal/domain"
)

type urlDocument struct {
	ID          int64     `bson:"_id"`
	OriginalURL string    `bson:"originalUrl"`
	ShortCode   string    `bson:"shortCode,omitempty"`
	ClickCount  int64     `bson:"clickCount"`
	CreatedAt   time.Time `bson:"createdAt"`
}

func (d *urlDocument) toURL() *domain.URL {
	return &domain.URL{
		ID:          d.ID,
		OriginalURL: d.OriginalURL,
		ShortCode:   d.ShortCode,
		Clicks:      d.ClickCount,
		CreatedAt:   d.CreatedAt,
	}
}

type URLRepository struct {
	db   *mongo.Database
	urls *mongo.Collection
}

func NewURLRepository(db *mongo.Database) *URLRepository {
	return &URLRepository{
		db:   db,
		urls: db.Collection(urlsCollection),
	}
}

func (r *URLRepository) Insert(ctx context.Context, url *domain.URL) error {
	const op = "mongo.URLRepository.Insert"

	doc := urlDocument{
		ID:          url.ID,
		OriginalURL: url.OriginalURL,
		ShortCode:   url.ShortCode,
		ClickCount:  url.Clicks,
		CreatedAt:   url.CreatedAt,
	}

	if _, err := r.urls.InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return fmt.Errorf("%s: duplicate id: %w", op, domain.ErrInternal)
		}
		return fmt.Errorf("%s: %w: %w", op, domain.ErrStorageUnavailable, err)
	}

	return nil
}

func (r *URLRepository) AssignCode(ctx context.Context, id int64, code string) error {
	const op = "mongo.URLRepository.AssignCode"

	result, err := r.urls.UpdateOne(ctx,
		bson.M{"_id": id},
		bson.M{"$set": bson.M{"shortCode": code}},
	)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return domain.ErrShortCodeExists
		}
		return fmt.Errorf("%s: %w: %w", op, domain.ErrStorageUnavailable, err)
	}
	if result.MatchedCount == 0 {
		return domain.ErrURLNotFound
	}

	return nil
}

func (r *URLRepository) FindByCode(ctx context.Context, code string) (*domain.URL, error) {
	const op = "mongo.URLRepository.FindByCode"

	var doc urlDocument
	err := r.urls.FindOne(ctx, bson.M{"shortCode": code}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, fmt.Errorf("%s: %w: %w", op, domain.ErrStorageUnavailable, err)
	}

	return doc.toURL(), nil
}

func (r *URLRepository) AddClicks(ctx context.Context, code string, n int64) error {
	const op = "mongo.URLRepository.AddClicks"

	result, err := r.urls.UpdateOne(ctx,
		bson.M{"shortCode": code},
		bson.M{"$inc": bson.M{"clickCount": n}},
	)
	if err != nil {
		return fmt.Errorf("%s: %w: %w", op, domain.ErrStorageUnavailable, err)
	}
	if result.MatchedCount == 0 {
		return domain.ErrURLNotFound
	}

	return nil
}

func (r *URLRepository) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	return r.db.Client().Disconnect(ctx)
}

func (r *URLRepository) HealthCheck(ctx context.Context) error {
	return r.db.Client().Ping(ctx, nil)
}
