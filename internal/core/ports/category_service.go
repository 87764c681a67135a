package ports

import (
	"context"

	"github.com/inkpress/cms-backend/internal/core/domain"
)

type ListCategoriesInput struct {
	IsActive *bool
	ParentID string
	RootOnly bool
	Search   string
	domain.ListOptions
}

type CreateCategoryInput struct {
	Name        string `json:"name" validate:"required,max=100"`
	Description string `json:"description" validate:"omitempty,max=500"`
	Color       string `json:"color" validate:"omitempty,hexcolor6"`
	Icon        string `json:"icon" validate:"omitempty,max=50"`
	ParentID    string `json:"parentCategory" validate:"omitempty,mongodb"`
	IsActive    *bool  `json:"isActive"`
	SortOrder   int    `json:"sortOrder" validate:"min=0"`
}

type UpdateCategoryInput struct {
	Name        *string `json:"name" validate:"omitempty,min=1,max=100"`
	Description *string `json:"description" validate:"omitempty,max=500"`
	Color       *string `json:"color" validate:"omitempty,hexcolor6"`
	Icon        *string `json:"icon" validate:"omitempty,max=50"`
	ParentID    *string `json:"parentCategory" validate:"omitempty,eq=|mongodb"`
	IsActive    *bool   `json:"isActive"`
	SortOrder   *int    `json:"sortOrder" validate:"omitempty,min=0"`
}

type CategoryService interface {
	List(ctx context.Context, input ListCategoriesInput) (*domain.ListResult[*domain.Category], error)
	GetByID(ctx context.Context, id string) (*domain.Category, error)
	GetBySlug(ctx context.Context, slug string) (*domain.Category, error)
	// Posts lists the published posts filed under the category.
	Posts(ctx context.Context, id string, opts domain.ListOptions) (*domain.ListResult[*domain.Post], error)
	Create(ctx context.Context, p domain.Principal, input CreateCategoryInput) (*domain.Category, error)
	Update(ctx context.Context, p domain.Principal, id string, input UpdateCategoryInput) (*domain.Category, error)
	Delete(ctx context.Context, p domain.Principal, id string) error
}
