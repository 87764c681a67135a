package ports

import (
	"context"

	"github.com/inkpress/cms-backend/internal/core/domain"
)

// PostFilter narrows post listings. IDs restricts results to a search hit set.
type PostFilter struct {
	Status     domain.PostStatus
	AuthorID   string
	CategoryID string
	Tag        string
	Search     string
	IDs        []string
	Featured   *bool
	domain.ListOptions
}

type PostRepository interface {
	Create(ctx context.Context, post *domain.Post) error
	FindByID(ctx context.Context, id string) (*domain.Post, error)
	FindBySlug(ctx context.Context, slug string) (*domain.Post, error)
	Update(ctx context.Context, post *domain.Post) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, filter PostFilter) ([]*domain.Post, int64, error)
	SlugExists(ctx context.Context, slug, excludeID string) (bool, error)
	CountByCategory(ctx context.Context, categoryID string) (int64, error)

	// AddLike and RemoveLike are atomic set operations; they report whether
	// the likes set changed.
	AddLike(ctx context.Context, postID, userID string) (bool, error)
	RemoveLike(ctx context.Context, postID, userID string) (bool, error)
	IncrementViews(ctx context.Context, id string) error
}
