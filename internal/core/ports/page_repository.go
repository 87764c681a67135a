package ports

import (
	"context"

	"github.com/inkpress/cms-backend/internal/core/domain"
)

type PageFilter struct {
	Status     domain.PageStatus
	AuthorID   string
	ParentID   string
	Template   domain.PageTemplate
	ShowInMenu *bool
	Search     string
	domain.ListOptions
}

type PageRepository interface {
	Create(ctx context.Context, page *domain.Page) error
	FindByID(ctx context.Context, id string) (*domain.Page, error)
	FindBySlug(ctx context.Context, slug string) (*domain.Page, error)
	Update(ctx context.Context, page *domain.Page) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, filter PageFilter) ([]*domain.Page, int64, error)
	SlugExists(ctx context.Context, slug, excludeID string) (bool, error)
	CountChildren(ctx context.Context, id string) (int64, error)
	IncrementViews(ctx context.Context, id string) error

	// HomePageID returns the current homepage holder, or "" when none is set.
	HomePageID(ctx context.Context) (string, error)
	// SetHomePage makes id the only homepage in a single atomic write.
	SetHomePage(ctx context.Context, id string) error
	// ClearHomePage unsets the homepage only while id still holds it.
	ClearHomePage(ctx context.Context, id string) error
}
