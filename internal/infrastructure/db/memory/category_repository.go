package memory

import (
	"cmp"
	"context"
	"strings"
	"sync"

	"github.com/inkpress/cms-backend/internal/core/domain"
	"github.com/inkpress/cms-backend/internal/core/ports"
)

type CategoryRepository struct {
	mu         sync.RWMutex
	categories map[string]*domain.Category
}

func NewCategoryRepository() *CategoryRepository {
	return &CategoryRepository{categories: make(map[string]*domain.Category)}
}

func cloneCategory(c *domain.Category) *domain.Category {
	if c == nil {
		return nil
	}
	out := *c
	out.PostCount = 0
	return &out
}

func (r *CategoryRepository) conflict(c *domain.Category, selfID string) error {
	for id, other := range r.categories {
		if id == selfID {
			continue
		}
		if strings.EqualFold(other.Name, c.Name) {
			return domain.ErrCategoryExists
		}
		if other.Slug == c.Slug {
			return domain.ErrSlugExists
		}
	}
	return nil
}

func (r *CategoryRepository) Create(_ context.Context, category *domain.Category) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.conflict(category, ""); err != nil {
		return err
	}
	if category.ID == "" {
		category.ID = newID()
	}
	r.categories[category.ID] = cloneCategory(category)
	return nil
}

func (r *CategoryRepository) FindByID(_ context.Context, id string) (*domain.Category, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	c, ok := r.categories[id]
	if !ok {
		return nil, domain.ErrCategoryNotFound
	}
	return cloneCategory(c), nil
}

func (r *CategoryRepository) FindBySlug(_ context.Context, slug string) (*domain.Category, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, c := range r.categories {
		if c.Slug == slug {
			return cloneCategory(c), nil
		}
	}
	return nil, domain.ErrCategoryNotFound
}

func (r *CategoryRepository) Update(_ context.Context, category *domain.Category) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored, ok := r.categories[category.ID]
	if !ok {
		return domain.ErrCategoryNotFound
	}
	if err := r.conflict(category, category.ID); err != nil {
		return err
	}
	next := cloneCategory(category)
	next.CreatedBy = stored.CreatedBy
	r.categories[category.ID] = next
	return nil
}

func (r *CategoryRepository) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.categories[id]; !ok {
		return domain.ErrCategoryNotFound
	}
	delete(r.categories, id)
	return nil
}

func (r *CategoryRepository) List(_ context.Context, filter ports.CategoryFilter) ([]*domain.Category, int64, error) {
	r.mu.RLock()
	var out []*domain.Category
	for _, c := range r.categories {
		if filter.IsActive != nil && c.IsActive != *filter.IsActive {
			continue
		}
		if filter.RootOnly && c.ParentID != "" {
			continue
		}
		if filter.ParentID != "" && c.ParentID != filter.ParentID {
			continue
		}
		if filter.Search != "" && !containsFold(c.Name, filter.Search) && !containsFold(c.Description, filter.Search) {
			continue
		}
		out = append(out, cloneCategory(c))
	}
	r.mu.RUnlock()

	items, total := sortedPage(out, filter.ListOptions, func(a, b *domain.Category, field string) int {
		switch field {
		case "name":
			return compareFold(a.Name, b.Name)
		case "createdAt":
			return a.CreatedAt.Compare(b.CreatedAt)
		case "updatedAt":
			return a.UpdatedAt.Compare(b.UpdatedAt)
		default:
			if c := cmp.Compare(a.SortOrder, b.SortOrder); c != 0 {
				return c
			}
			return compareFold(a.Name, b.Name)
		}
	})
	return items, total, nil
}

func (r *CategoryRepository) SlugExists(_ context.Context, slug, excludeID string) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for id, c := range r.categories {
		if id != excludeID && c.Slug == slug {
			return true, nil
		}
	}
	return false, nil
}

func (r *CategoryRepository) CountChildren(_ context.Context, id string) (int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var n int64
	for _, c := range r.categories {
		if c.ParentID == id {
			n++
		}
	}
	return n, nil
}
