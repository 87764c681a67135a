package mongo

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/inkpress/cms-backend/internal/core/domain"
	"github.com/inkpress/cms-backend/internal/core/ports"
)

const collectionMedia = "media"

var mediaSortKeys = map[string]string{
	"createdAt":    "created_at",
	"updatedAt":    "updated_at",
	"size":         "size",
	"originalName": "original_name",
}

type MediaRepository struct {
	col *mongo.Collection
}

func NewMediaRepository(db *mongo.Database) *MediaRepository {
	return &MediaRepository{col: db.Collection(collectionMedia)}
}

func (r *MediaRepository) Create(ctx context.Context, media *domain.Media) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	if media.ID == "" {
		media.ID = newID()
	}
	if _, err := r.col.InsertOne(ctx, media); err != nil {
		return fmt.Errorf("insert media: %w", err)
	}
	return nil
}

func (r *MediaRepository) FindByID(ctx context.Context, id string) (*domain.Media, error) {
	return findOne[domain.Media](ctx, r.col, bson.M{"_id": id}, domain.ErrMediaNotFound)
}

func (r *MediaRepository) Update(ctx context.Context, media *domain.Media) error {
	set, err := setDoc(media, "uploaded_by", "key", "created_at")
	if err != nil {
		return fmt.Errorf("encode media: %w", err)
	}
	return replaceSet(ctx, r.col, media.ID, set, domain.ErrMediaNotFound)
}

func (r *MediaRepository) Delete(ctx context.Context, id string) error {
	return deleteByID(ctx, r.col, id, domain.ErrMediaNotFound)
}

func (r *MediaRepository) List(ctx context.Context, filter ports.MediaFilter) ([]*domain.Media, int64, error) {
	q := bson.M{}
	if filter.Type != "" {
		q["type"] = filter.Type
	}
	if filter.Folder != "" {
		q["folder"] = filter.Folder
	}
	if filter.UploadedBy != "" {
		q["uploaded_by"] = filter.UploadedBy
	}
	if filter.Search != "" {
		q["$or"] = searchFilter(filter.Search, "original_name", "alt", "caption", "description", "tags")
	}
	return findPage[domain.Media](ctx, r.col, q, findOptions(filter.ListOptions, mediaSortKeys))
}

func (r *MediaRepository) EnsureIndexes(ctx context.Context) error {
	return createIndexes(ctx, r.col, []mongo.IndexModel{
		{Keys: bson.D{{Key: "uploaded_by", Value: 1}}},
		{Keys: bson.D{{Key: "type", Value: 1}, {Key: "folder", Value: 1}}},
	})
}
