package memory

import (
	"cmp"
	"context"
	"maps"
	"slices"
	"sync"

	"github.com/inkpress/cms-backend/internal/core/domain"
	"github.com/inkpress/cms-backend/internal/core/ports"
)

// PageRepository keeps the homepage as a single pointer guarded by the same
// mutex as the pages, so at most one page can ever hold it.
type PageRepository struct {
	mu       sync.RWMutex
	pages    map[string]*domain.Page
	homePage string
}

func NewPageRepository() *PageRepository {
	return &PageRepository{pages: make(map[string]*domain.Page)}
}

func clonePage(p *domain.Page) *domain.Page {
	if p == nil {
		return nil
	}
	c := *p
	c.PublishedAt = cloneTime(p.PublishedAt)
	c.CustomFields = maps.Clone(p.CustomFields)
	c.SEO.Keywords = slices.Clone(p.SEO.Keywords)
	c.IsHomePage = false
	return &c
}

func (r *PageRepository) Create(_ context.Context, page *domain.Page) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.slugTaken(page.Slug, "") {
		return domain.ErrSlugExists
	}
	if page.ID == "" {
		page.ID = newID()
	}
	r.pages[page.ID] = clonePage(page)
	return nil
}

func (r *PageRepository) FindByID(_ context.Context, id string) (*domain.Page, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.pages[id]
	if !ok {
		return nil, domain.ErrPageNotFound
	}
	return clonePage(p), nil
}

func (r *PageRepository) FindBySlug(_ context.Context, slug string) (*domain.Page, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, p := range r.pages {
		if p.Slug == slug {
			return clonePage(p), nil
		}
	}
	return nil, domain.ErrPageNotFound
}

func (r *PageRepository) Update(_ context.Context, page *domain.Page) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored, ok := r.pages[page.ID]
	if !ok {
		return domain.ErrPageNotFound
	}
	if r.slugTaken(page.Slug, page.ID) {
		return domain.ErrSlugExists
	}
	next := clonePage(page)
	next.Views = stored.Views
	next.AuthorID = stored.AuthorID
	r.pages[page.ID] = next
	return nil
}

func (r *PageRepository) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.pages[id]; !ok {
		return domain.ErrPageNotFound
	}
	delete(r.pages, id)
	return nil
}

func (r *PageRepository) List(_ context.Context, filter ports.PageFilter) ([]*domain.Page, int64, error) {
	r.mu.RLock()
	var out []*domain.Page
	for _, p := range r.pages {
		if filter.Status != "" && p.Status != filter.Status {
			continue
		}
		if filter.AuthorID != "" && p.AuthorID != filter.AuthorID {
			continue
		}
		if filter.ParentID != "" && p.ParentID != filter.ParentID {
			continue
		}
		if filter.Template != "" && p.Template != filter.Template {
			continue
		}
		if filter.ShowInMenu != nil && p.ShowInMenu != *filter.ShowInMenu {
			continue
		}
		if filter.Search != "" && !containsFold(p.Title, filter.Search) && !containsFold(p.Content, filter.Search) {
			continue
		}
		out = append(out, clonePage(p))
	}
	r.mu.RUnlock()

	items, total := sortedPage(out, filter.ListOptions, func(a, b *domain.Page, field string) int {
		switch field {
		case "title":
			return compareFold(a.Title, b.Title)
		case "menuOrder":
			if c := cmp.Compare(a.MenuOrder, b.MenuOrder); c != 0 {
				return c
			}
			return compareFold(a.Title, b.Title)
		case "views":
			return cmp.Compare(a.Views, b.Views)
		case "publishedAt":
			return compareTimePtr(a.PublishedAt, b.PublishedAt)
		case "createdAt":
			return a.CreatedAt.Compare(b.CreatedAt)
		case "updatedAt":
			return a.UpdatedAt.Compare(b.UpdatedAt)
		default:
			if c := cmp.Compare(a.SortOrder, b.SortOrder); c != 0 {
				return c
			}
			return compareFold(a.Title, b.Title)
		}
	})
	return items, total, nil
}

func (r *PageRepository) SlugExists(_ context.Context, slug, excludeID string) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.slugTaken(slug, excludeID), nil
}

func (r *PageRepository) slugTaken(slug, excludeID string) bool {
	for id, p := range r.pages {
		if id != excludeID && p.Slug == slug {
			return true
		}
	}
	return false
}

func (r *PageRepository) CountChildren(_ context.Context, id string) (int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var n int64
	for _, p := range r.pages {
		if p.ParentID == id {
			n++
		}
	}
	return n, nil
}

func (r *PageRepository) IncrementViews(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.pages[id]
	if !ok {
		return domain.ErrPageNotFound
	}
	p.Views++
	return nil
}

func (r *PageRepository) HomePageID(_ context.Context) (string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.homePage, nil
}

func (r *PageRepository) SetHomePage(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.pages[id]; !ok {
		return domain.ErrPageNotFound
	}
	r.homePage = id
	return nil
}

func (r *PageRepository) ClearHomePage(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.homePage == id {
		r.homePage = ""
	}
	return nil
}
