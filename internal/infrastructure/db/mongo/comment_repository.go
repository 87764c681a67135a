package mongo

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/inkpress/cms-backend/internal/core/domain"
)

const collectionComments = "comments"

type CommentRepository struct {
	col *mongo.Collection
}

func NewCommentRepository(db *mongo.Database) *CommentRepository {
	return &CommentRepository{col: db.Collection(collectionComments)}
}

func (r *CommentRepository) Create(ctx context.Context, comment *domain.Comment) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	if comment.ID == "" {
		comment.ID = newID()
	}
	if _, err := r.col.InsertOne(ctx, comment); err != nil {
		return fmt.Errorf("insert comment: %w", err)
	}
	return nil
}

func (r *CommentRepository) FindByID(ctx context.Context, id string) (*domain.Comment, error) {
	return findOne[domain.Comment](ctx, r.col, bson.M{"_id": id}, domain.ErrCommentNotFound)
}

func (r *CommentRepository) Update(ctx context.Context, comment *domain.Comment) error {
	return replaceSet(ctx, r.col, comment.ID, bson.M{
		"content":    comment.Content,
		"updated_at": comment.UpdatedAt,
	}, domain.ErrCommentNotFound)
}

func (r *CommentRepository) Delete(ctx context.Context, id string) error {
	return deleteByID(ctx, r.col, id, domain.ErrCommentNotFound)
}

// ListByPost returns the comments of a post, newest first.
func (r *CommentRepository) ListByPost(ctx context.Context, postID string, opts domain.ListOptions) ([]*domain.Comment, int64, error) {
	opts.SortBy, opts.SortDesc = "createdAt", true
	return findPage[domain.Comment](ctx, r.col, bson.M{"post": postID},
		findOptions(opts, map[string]string{"createdAt": "created_at"}))
}

func (r *CommentRepository) DeleteByPost(ctx context.Context, postID string) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.col.DeleteMany(ctx, bson.M{"post": postID})
	if err != nil {
		return 0, fmt.Errorf("delete comments: %w", err)
	}
	return res.DeletedCount, nil
}

func (r *CommentRepository) EnsureIndexes(ctx context.Context) error {
	return createIndexes(ctx, r.col, []mongo.IndexModel{
		{Keys: bson.D{{Key: "post", Value: 1}, {Key: "created_at", Value: -1}}},
	})
}
