package ports

import (
	"context"

	"github.com/inkpress/cms-backend/internal/core/domain"
)

type ListPagesInput struct {
	Status   string `validate:"omitempty,oneof=draft published private"`
	Template string `validate:"omitempty,oneof=default landing contact about"`
	ParentID string
	AuthorID string
	Search   string
	domain.ListOptions
}

type CreatePageInput struct {
	Title          string            `json:"title" validate:"required,max=200"`
	Content        string            `json:"content" validate:"required"`
	Excerpt        string            `json:"excerpt" validate:"omitempty,max=500"`
	FeaturedImage  string            `json:"featuredImage" validate:"omitempty,url"`
	Template       string            `json:"template" validate:"omitempty,oneof=default landing contact about"`
	Status         string            `json:"status" validate:"omitempty,oneof=draft published private"`
	ParentID       string            `json:"parentPage" validate:"omitempty,mongodb"`
	SortOrder      int               `json:"sortOrder" validate:"min=0"`
	ShowInMenu     bool              `json:"showInMenu"`
	MenuOrder      int               `json:"menuOrder" validate:"min=0"`
	IsHomePage     bool              `json:"isHomePage"`
	SEOTitle       string            `json:"seoTitle" validate:"omitempty,max=60"`
	SEODescription string            `json:"seoDescription" validate:"omitempty,max=160"`
	SEOKeywords    []string          `json:"seoKeywords" validate:"omitempty,max=20,dive,max=50"`
	CustomFields   map[string]string `json:"customFields" validate:"omitempty,max=50,dive,keys,max=100,endkeys,max=2000"`
}

type UpdatePageInput struct {
	Title          *string            `json:"title" validate:"omitempty,min=1,max=200"`
	Content        *string            `json:"content" validate:"omitempty,min=1"`
	Excerpt        *string            `json:"excerpt" validate:"omitempty,max=500"`
	FeaturedImage  *string            `json:"featuredImage" validate:"omitempty,url"`
	Template       *string            `json:"template" validate:"omitempty,oneof=default landing contact about"`
	Status         *string            `json:"status" validate:"omitempty,oneof=draft published private"`
	ParentID       *string            `json:"parentPage" validate:"omitempty,eq=|mongodb"`
	SortOrder      *int               `json:"sortOrder" validate:"omitempty,min=0"`
	ShowInMenu     *bool              `json:"showInMenu"`
	MenuOrder      *int               `json:"menuOrder" validate:"omitempty,min=0"`
	IsHomePage     *bool              `json:"isHomePage"`
	SEOTitle       *string            `json:"seoTitle" validate:"omitempty,max=60"`
	SEODescription *string            `json:"seoDescription" validate:"omitempty,max=160"`
	SEOKeywords    *[]string          `json:"seoKeywords" validate:"omitempty,max=20,dive,max=50"`
	CustomFields   *map[string]string `json:"customFields" validate:"omitempty,max=50,dive,keys,max=100,endkeys,max=2000"`
}

type PageService interface {
	List(ctx context.Context, input ListPagesInput) (*domain.ListResult[*domain.Page], error)
	ListPublished(ctx context.Context, input ListPagesInput) (*domain.ListResult[*domain.Page], error)
	Menu(ctx context.Context) ([]*domain.Page, error)
	Home(ctx context.Context) (*domain.Page, error)
	GetByID(ctx context.Context, id string) (*domain.Page, error)
	GetBySlug(ctx context.Context, p *domain.Principal, slug string) (*domain.Page, error)
	Create(ctx context.Context, p domain.Principal, input CreatePageInput) (*domain.Page, error)
	Update(ctx context.Context, p domain.Principal, id string, input UpdatePageInput) (*domain.Page, error)
	Delete(ctx context.Context, p domain.Principal, id string) error
}
