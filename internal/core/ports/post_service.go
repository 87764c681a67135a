package ports

import (
	"context"

	"github.com/inkpress/cms-backend/internal/core/domain"
)

type ListPostsInput struct {
	Status     string `validate:"omitempty,oneof=draft published archived"`
	AuthorID   string
	CategoryID string
	Tag        string
	Search     string
	Featured   *bool
	domain.ListOptions
}

type CreatePostInput struct {
	Title          string   `json:"title" validate:"required,max=200"`
	Content        string   `json:"content" validate:"required"`
	Excerpt        string   `json:"excerpt" validate:"omitempty,max=500"`
	FeaturedImage  string   `json:"featuredImage" validate:"omitempty,url"`
	Status         string   `json:"status" validate:"omitempty,oneof=draft published archived"`
	Categories     []string `json:"categories" validate:"omitempty,dive,mongodb"`
	Tags           []string `json:"tags" validate:"omitempty,max=10,dive,max=30"`
	IsFeatured     bool     `json:"isFeatured"`
	SEOTitle       string   `json:"seoTitle" validate:"omitempty,max=60"`
	SEODescription string   `json:"seoDescription" validate:"omitempty,max=160"`
	SEOKeywords    []string `json:"seoKeywords" validate:"omitempty,max=20,dive,max=50"`
}

type UpdatePostInput struct {
	Title          *string   `json:"title" validate:"omitempty,min=1,max=200"`
	Content        *string   `json:"content" validate:"omitempty,min=1"`
	Excerpt        *string   `json:"excerpt" validate:"omitempty,max=500"`
	FeaturedImage  *string   `json:"featuredImage" validate:"omitempty,url"`
	Status         *string   `json:"status" validate:"omitempty,oneof=draft published archived"`
	Categories     *[]string `json:"categories" validate:"omitempty,dive,mongodb"`
	Tags           *[]string `json:"tags" validate:"omitempty,max=10,dive,max=30"`
	IsFeatured     *bool     `json:"isFeatured"`
	SEOTitle       *string   `json:"seoTitle" validate:"omitempty,max=60"`
	SEODescription *string   `json:"seoDescription" validate:"omitempty,max=160"`
	SEOKeywords    *[]string `json:"seoKeywords" validate:"omitempty,max=20,dive,max=50"`
}

type PostService interface {
	List(ctx context.Context, input ListPostsInput) (*domain.ListResult[*domain.Post], error)
	ListPublished(ctx context.Context, input ListPostsInput) (*domain.ListResult[*domain.Post], error)
	Featured(ctx context.Context, limit int) ([]*domain.Post, error)
	GetByID(ctx context.Context, id string) (*domain.Post, error)
	// GetBySlug counts a view for published posts. p is nil for anonymous callers.
	GetBySlug(ctx context.Context, p *domain.Principal, slug string) (*domain.Post, error)
	Create(ctx context.Context, p domain.Principal, input CreatePostInput) (*domain.Post, error)
	Update(ctx context.Context, p domain.Principal, id string, input UpdatePostInput) (*domain.Post, error)
	Delete(ctx context.Context, p domain.Principal, id string) error
	Like(ctx context.Context, p domain.Principal, id string) (*domain.Post, error)
	Unlike(ctx context.Context, p domain.Principal, id string) (*domain.Post, error)
}
