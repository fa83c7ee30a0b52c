package mediaRepo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"studiobook/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type mongoMediaRepo struct {
	coll *mongo.Collection
}

// NewMongoMediaRepo constructs a MediaRepository backed by the "media" collection.
func NewMongoMediaRepo(ctx context.Context, db *mongo.Database) (MediaRepository, error) {
	r := &mongoMediaRepo{coll: db.Collection("media")}
	if err := r.ensureIndexes(ctx); err != nil {
		return nil, err
	}
	return r, nil
}

func (r *mongoMediaRepo) ensureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	indexModels := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "id", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("unique_id"),
		},
		{
			Keys:    bson.D{{Key: "kind", Value: 1}, {Key: "createdAt", Value: -1}},
			Options: options.Index().SetName("kind_created_idx"),
		},
	}
	if _, err := r.coll.Indexes().CreateMany(ctx, indexModels); err != nil {
		return fmt.Errorf("failed to create media indexes: %w", err)
	}
	return nil
}

func (r *mongoMediaRepo) Create(ctx context.Context, item *models.MediaItem) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if _, err := r.coll.InsertOne(ctx, item); err != nil {
		return fmt.Errorf("error creating media item: %w", err)
	}
	return nil
}

func (r *mongoMediaRepo) GetByID(ctx context.Context, id string) (*models.MediaItem, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var item models.MediaItem
	if err := r.coll.FindOne(ctx, bson.M{"id": id}).Decode(&item); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("error fetching media item %s: %w", id, err)
	}
	return &item, nil
}

func (r *mongoMediaRepo) List(ctx context.Context, kind models.MediaKind) ([]models.MediaItem, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	filter := bson.M{}
	if kind != "" {
		filter["kind"] = kind
	}
	cursor, err := r.coll.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}}))
	if err != nil {
		return nil, fmt.Errorf("error listing media: %w", err)
	}
	defer cursor.Close(ctx)

	items := []models.MediaItem{}
	if err := cursor.All(ctx, &items); err != nil {
		return nil, fmt.Errorf("error decoding media: %w", err)
	}
	return items, nil
}

func (r *mongoMediaRepo) Delete(ctx context.Context, id string) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	res, err := r.coll.DeleteOne(ctx, bson.M{"id": id})
	if err != nil {
		return fmt.Errorf("error deleting media item %s: %w", id, err)
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}
