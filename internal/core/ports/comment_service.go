package ports

import (
	"context"

	"github.com/inkpress/cms-backend/internal/core/domain"
)

type CommentInput struct {
	Content string `json:"content" validate:"required,max=1000"`
}

type CommentService interface {
	Create(ctx context.Context, p domain.Principal, postID string, input CommentInput) (*domain.Comment, error)
	ListByPost(ctx context.Context, p *domain.Principal, postID string, opts domain.ListOptions) (*domain.ListResult[*domain.Comment], error)
	Update(ctx context.Context, p domain.Principal, id string, input CommentInput) (*domain.Comment, error)
	Delete(ctx context.Context, p domain.Principal, id string) error
}
