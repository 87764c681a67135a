package ports

import (
	"context"

	"github.com/inkpress/cms-backend/internal/core/domain"
)

type CategoryFilter struct {
	IsActive *bool
	// ParentID filters by parent; RootOnly selects categories without one.
	ParentID string
	RootOnly bool
	Search   string
	domain.ListOptions
}

type CategoryRepository interface {
	// Create inserts category; a duplicate name yields domain.ErrCategoryExists.
	Create(ctx context.Context, category *domain.Category) error
	FindByID(ctx context.Context, id string) (*domain.Category, error)
	FindBySlug(ctx context.Context, slug string) (*domain.Category, error)
	Update(ctx context.Context, category *domain.Category) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, filter CategoryFilter) ([]*domain.Category, int64, error)
	SlugExists(ctx context.Context, slug, excludeID string) (bool, error)
	CountChildren(ctx context.Context, id string) (int64, error)
}
