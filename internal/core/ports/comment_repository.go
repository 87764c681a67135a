package ports

import (
	"context"

	"github.com/inkpress/cms-backend/internal/core/domain"
)

type CommentRepository interface {
	Create(ctx context.Context, comment *domain.Comment) error
	FindByID(ctx context.Context, id string) (*domain.Comment, error)
	Update(ctx context.Context, comment *domain.Comment) error
	Delete(ctx context.Context, id string) error
	ListByPost(ctx context.Context, postID string, opts domain.ListOptions) ([]*domain.Comment, int64, error)
	DeleteByPost(ctx context.Context, postID string) (int64, error)
}
