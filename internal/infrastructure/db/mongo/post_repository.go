package mongo

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/inkpress/cms-backend/internal/core/domain"
	"github.com/inkpress/cms-backend/internal/core/ports"
)

const collectionPosts = "posts"

var postSortKeys = map[string]string{
	"createdAt":   "created_at",
	"updatedAt":   "updated_at",
	"publishedAt": "published_at",
	"title":       "title",
	"views":       "views",
}

type PostRepository struct {
	col *mongo.Collection
}

func NewPostRepository(db *mongo.Database) *PostRepository {
	return &PostRepository{col: db.Collection(collectionPosts)}
}

func (r *PostRepository) Create(ctx context.Context, post *domain.Post) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	if post.ID == "" {
		post.ID = newID()
	}
	if post.Likes == nil {
		post.Likes = []string{}
	}
	if _, err := r.col.InsertOne(ctx, post); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return domain.ErrSlugExists
		}
		return fmt.Errorf("insert post: %w", err)
	}
	return nil
}

func (r *PostRepository) FindByID(ctx context.Context, id string) (*domain.Post, error) {
	return findOne[domain.Post](ctx, r.col, bson.M{"_id": id}, domain.ErrPostNotFound)
}

func (r *PostRepository) FindBySlug(ctx context.Context, slug string) (*domain.Post, error) {
	return findOne[domain.Post](ctx, r.col, bson.M{"slug": slug}, domain.ErrPostNotFound)
}

// Update leaves likes, views and author untouched; those change only through
// their own atomic operations.
func (r *PostRepository) Update(ctx context.Context, post *domain.Post) error {
	set, err := setDoc(post, "likes", "views", "author", "created_at")
	if err != nil {
		return fmt.Errorf("encode post: %w", err)
	}
	if err := replaceSet(ctx, r.col, post.ID, set, domain.ErrPostNotFound); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return domain.ErrSlugExists
		}
		return err
	}
	return nil
}

func (r *PostRepository) Delete(ctx context.Context, id string) error {
	return deleteByID(ctx, r.col, id, domain.ErrPostNotFound)
}

func (r *PostRepository) List(ctx context.Context, filter ports.PostFilter) ([]*domain.Post, int64, error) {
	q := bson.M{}
	if filter.IDs != nil {
		q["_id"] = bson.M{"$in": filter.IDs}
	}
	if filter.Status != "" {
		q["status"] = filter.Status
	}
	if filter.AuthorID != "" {
		q["author"] = filter.AuthorID
	}
	if filter.CategoryID != "" {
		q["categories"] = filter.CategoryID
	}
	if filter.Tag != "" {
		q["tags"] = filter.Tag
	}
	if filter.Featured != nil {
		q["is_featured"] = *filter.Featured
	}
	if filter.Search != "" {
		q["$or"] = searchFilter(filter.Search, "title", "content", "excerpt")
	}
	return findPage[domain.Post](ctx, r.col, q, findOptions(filter.ListOptions, postSortKeys))
}

func (r *PostRepository) SlugExists(ctx context.Context, slug, excludeID string) (bool, error) {
	return slugTaken(ctx, r.col, slug, excludeID)
}

func (r *PostRepository) CountByCategory(ctx context.Context, categoryID string) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()
	return r.col.CountDocuments(ctx, bson.M{"categories": categoryID})
}

func (r *PostRepository) AddLike(ctx context.Context, postID, userID string) (bool, error) {
	return r.updateLikes(ctx, postID, bson.M{"$addToSet": bson.M{"likes": userID}})
}

func (r *PostRepository) RemoveLike(ctx context.Context, postID, userID string) (bool, error) {
	return r.updateLikes(ctx, postID, bson.M{"$pull": bson.M{"likes": userID}})
}

func (r *PostRepository) updateLikes(ctx context.Context, postID string, update bson.M) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.col.UpdateOne(ctx, bson.M{"_id": postID}, update)
	if err != nil {
		return false, fmt.Errorf("update likes: %w", err)
	}
	if res.MatchedCount == 0 {
		return false, domain.ErrPostNotFound
	}
	return res.ModifiedCount == 1, nil
}

func (r *PostRepository) IncrementViews(ctx context.Context, id string) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.col.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$inc": bson.M{"views": 1}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return domain.ErrPostNotFound
	}
	return nil
}

func (r *PostRepository) EnsureIndexes(ctx context.Context) error {
	return createIndexes(ctx, r.col, []mongo.IndexModel{
		{Keys: bson.D{{Key: "slug", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "status", Value: 1}, {Key: "published_at", Value: -1}}},
		{Keys: bson.D{{Key: "author", Value: 1}}},
		{Keys: bson.D{{Key: "categories", Value: 1}}},
		{Keys: bson.D{{Key: "tags", Value: 1}}},
	})
}
