package service

import (
	"context"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/inkpress/cms-backend/internal/core/domain"
	"github.com/inkpress/cms-backend/internal/core/ports"
	"github.com/inkpress/cms-backend/internal/core/validation"
)

var categorySortFields = map[string]bool{
	"name": true, "sortOrder": true, "createdAt": true, "updatedAt": true,
}

type CategoryService struct {
	categories ports.CategoryRepository
	posts      ports.PostRepository
	logger     zerolog.Logger
}

func NewCategoryService(categories ports.CategoryRepository, posts ports.PostRepository, logger zerolog.Logger) *CategoryService {
	return &CategoryService{categories: categories, posts: posts, logger: logger}
}

func (s *CategoryService) List(ctx context.Context, input ports.ListCategoriesInput) (*domain.ListResult[*domain.Category], error) {
	filter := ports.CategoryFilter{
		IsActive:    input.IsActive,
		ParentID:    input.ParentID,
		RootOnly:    input.RootOnly,
		Search:      strings.TrimSpace(input.Search),
		ListOptions: sortable(input.ListOptions, categorySortFields, "sortOrder", false),
	}
	categories, total, err := s.categories.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	for _, c := range categories {
		if err := s.countPosts(ctx, c); err != nil {
			return nil, err
		}
	}
	return domain.NewListResult(categories, total, filter.ListOptions), nil
}

func (s *CategoryService) GetByID(ctx context.Context, id string) (*domain.Category, error) {
	c, err := s.categories.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.countPosts(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

func (s *CategoryService) GetBySlug(ctx context.Context, slug string) (*domain.Category, error) {
	c, err := s.categories.FindBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}
	if err := s.countPosts(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

func (s *CategoryService) Posts(ctx context.Context, id string, opts domain.ListOptions) (*domain.ListResult[*domain.Post], error) {
	if _, err := s.categories.FindByID(ctx, id); err != nil {
		return nil, err
	}
	if opts.SortBy == "" {
		opts.SortBy, opts.SortDesc = "publishedAt", true
	}
	filter := ports.PostFilter{
		Status:      domain.PostPublished,
		CategoryID:  id,
		ListOptions: sortable(opts, postSortFields, "publishedAt", true),
	}
	posts, total, err := s.posts.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	return domain.NewListResult(posts, total, filter.ListOptions), nil
}

func (s *CategoryService) Create(ctx context.Context, p domain.Principal, input ports.CreateCategoryInput) (*domain.Category, error) {
	if err := domain.Authorize(p, domain.ActionCategoryCreate, ""); err != nil {
		return nil, err
	}
	input.Name = strings.TrimSpace(input.Name)
	input.Description = strings.TrimSpace(input.Description)
	input.Icon = strings.TrimSpace(input.Icon)
	if err := validation.Struct(input); err != nil {
		return nil, err
	}
	if err := checkParent(ctx, "", input.ParentID, "parentCategory", s.parentOf); err != nil {
		return nil, err
	}

	slug, err := uniqueSlug(ctx, input.Name, "", s.categories.SlugExists)
	if err != nil {
		return nil, err
	}

	color := input.Color
	if color == "" {
		color = domain.DefaultCategoryColor
	}
	active := true
	if input.IsActive != nil {
		active = *input.IsActive
	}
	now := time.Now().UTC()
	category := &domain.Category{
		Name:        input.Name,
		Slug:        slug,
		Description: input.Description,
		Color:       color,
		Icon:        input.Icon,
		ParentID:    input.ParentID,
		IsActive:    active,
		SortOrder:   input.SortOrder,
		CreatedBy:   p.ID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.categories.Create(ctx, category); err != nil {
		return nil, err
	}

	s.logger.Info().Str("category_id", category.ID).Str("by", p.ID).Msg("category created")
	return category, nil
}

func (s *CategoryService) Update(ctx context.Context, p domain.Principal, id string, input ports.UpdateCategoryInput) (*domain.Category, error) {
	category, err := s.categories.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := domain.Authorize(p, domain.ActionCategoryUpdate, category.CreatedBy); err != nil {
		return nil, err
	}

	trimPtr(input.Name)
	trimPtr(input.Description)
	trimPtr(input.Icon)
	if err := validation.Struct(input); err != nil {
		return nil, err
	}

	if input.ParentID != nil {
		if err := checkParent(ctx, category.ID, *input.ParentID, "parentCategory", s.parentOf); err != nil {
			return nil, err
		}
		category.ParentID = *input.ParentID
	}
	if input.Name != nil && *input.Name != category.Name {
		slug, err := uniqueSlug(ctx, *input.Name, category.ID, s.categories.SlugExists)
		if err != nil {
			return nil, err
		}
		category.Name, category.Slug = *input.Name, slug
	}
	if input.Description != nil {
		category.Description = *input.Description
	}
	if input.Color != nil {
		category.Color = *input.Color
	}
	if input.Icon != nil {
		category.Icon = *input.Icon
	}
	if input.IsActive != nil {
		category.IsActive = *input.IsActive
	}
	if input.SortOrder != nil {
		category.SortOrder = *input.SortOrder
	}
	category.UpdatedAt = time.Now().UTC()

	if err := s.categories.Update(ctx, category); err != nil {
		return nil, err
	}
	return category, s.countPosts(ctx, category)
}

// Delete refuses while posts or subcategories still reference the category.
func (s *CategoryService) Delete(ctx context.Context, p domain.Principal, id string) error {
	category, err := s.categories.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if err := domain.Authorize(p, domain.ActionCategoryDelete, category.CreatedBy); err != nil {
		return err
	}

	posts, err := s.posts.CountByCategory(ctx, id)
	if err != nil {
		return err
	}
	if posts > 0 {
		return domain.ErrCategoryHasPosts
	}
	children, err := s.categories.CountChildren(ctx, id)
	if err != nil {
		return err
	}
	if children > 0 {
		return domain.ErrCategoryHasSubcategories
	}

	if err := s.categories.Delete(ctx, id); err != nil {
		return err
	}
	s.logger.Info().Str("category_id", id).Str("by", p.ID).Msg("category deleted")
	return nil
}

func (s *CategoryService) countPosts(ctx context.Context, c *domain.Category) error {
	n, err := s.posts.CountByCategory(ctx, c.ID)
	if err != nil {
		return err
	}
	c.PostCount = n
	return nil
}

func (s *CategoryService) parentOf(ctx context.Context, id string) (string, error) {
	c, err := s.categories.FindByID(ctx, id)
	if err != nil {
		return "", err
	}
	return c.ParentID, nil
}
