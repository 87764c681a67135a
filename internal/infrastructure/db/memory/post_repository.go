package memory

import (
	"cmp"
	"context"
	"slices"
	"sync"

	"github.com/inkpress/cms-backend/internal/core/domain"
	"github.com/inkpress/cms-backend/internal/core/ports"
)

type PostRepository struct {
	mu    sync.RWMutex
	posts map[string]*domain.Post
}

func NewPostRepository() *PostRepository {
	return &PostRepository{posts: make(map[string]*domain.Post)}
}

func clonePost(p *domain.Post) *domain.Post {
	if p == nil {
		return nil
	}
	c := *p
	c.PublishedAt = cloneTime(p.PublishedAt)
	c.Categories = slices.Clone(p.Categories)
	c.Tags = slices.Clone(p.Tags)
	c.Likes = slices.Clone(p.Likes)
	c.SEO.Keywords = slices.Clone(p.SEO.Keywords)
	return &c
}

func (r *PostRepository) Create(_ context.Context, post *domain.Post) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.slugTaken(post.Slug, "") {
		return domain.ErrSlugExists
	}
	if post.ID == "" {
		post.ID = newID()
	}
	r.posts[post.ID] = clonePost(post)
	return nil
}

func (r *PostRepository) FindByID(_ context.Context, id string) (*domain.Post, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.posts[id]
	if !ok {
		return nil, domain.ErrPostNotFound
	}
	return clonePost(p), nil
}

func (r *PostRepository) FindBySlug(_ context.Context, slug string) (*domain.Post, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, p := range r.posts {
		if p.Slug == slug {
			return clonePost(p), nil
		}
	}
	return nil, domain.ErrPostNotFound
}

// Update replaces the editable fields; likes and views only change through
// their atomic operations.
func (r *PostRepository) Update(_ context.Context, post *domain.Post) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored, ok := r.posts[post.ID]
	if !ok {
		return domain.ErrPostNotFound
	}
	if r.slugTaken(post.Slug, post.ID) {
		return domain.ErrSlugExists
	}
	next := clonePost(post)
	next.Likes = stored.Likes
	next.Views = stored.Views
	next.AuthorID = stored.AuthorID
	r.posts[post.ID] = next
	return nil
}

func (r *PostRepository) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.posts[id]; !ok {
		return domain.ErrPostNotFound
	}
	delete(r.posts, id)
	return nil
}

func (r *PostRepository) List(_ context.Context, filter ports.PostFilter) ([]*domain.Post, int64, error) {
	var ids map[string]bool
	if filter.IDs != nil {
		ids = make(map[string]bool, len(filter.IDs))
		for _, id := range filter.IDs {
			ids[id] = true
		}
	}

	r.mu.RLock()
	var out []*domain.Post
	for _, p := range r.posts {
		if ids != nil && !ids[p.ID] {
			continue
		}
		if filter.Status != "" && p.Status != filter.Status {
			continue
		}
		if filter.AuthorID != "" && p.AuthorID != filter.AuthorID {
			continue
		}
		if filter.CategoryID != "" && !slices.Contains(p.Categories, filter.CategoryID) {
			continue
		}
		if filter.Tag != "" && !slices.Contains(p.Tags, filter.Tag) {
			continue
		}
		if filter.Featured != nil && p.IsFeatured != *filter.Featured {
			continue
		}
		if filter.Search != "" && !containsFold(p.Title, filter.Search) &&
			!containsFold(p.Content, filter.Search) && !containsFold(p.Excerpt, filter.Search) {
			continue
		}
		out = append(out, clonePost(p))
	}
	r.mu.RUnlock()

	items, total := sortedPage(out, filter.ListOptions, func(a, b *domain.Post, field string) int {
		switch field {
		case "title":
			return compareFold(a.Title, b.Title)
		case "views":
			return cmp.Compare(a.Views, b.Views)
		case "publishedAt":
			return compareTimePtr(a.PublishedAt, b.PublishedAt)
		case "updatedAt":
			return a.UpdatedAt.Compare(b.UpdatedAt)
		default:
			return a.CreatedAt.Compare(b.CreatedAt)
		}
	})
	return items, total, nil
}

func (r *PostRepository) SlugExists(_ context.Context, slug, excludeID string) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.slugTaken(slug, excludeID), nil
}

func (r *PostRepository) slugTaken(slug, excludeID string) bool {
	for id, p := range r.posts {
		if id != excludeID && p.Slug == slug {
			return true
		}
	}
	return false
}

func (r *PostRepository) CountByCategory(_ context.Context, categoryID string) (int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var n int64
	for _, p := range r.posts {
		if slices.Contains(p.Categories, categoryID) {
			n++
		}
	}
	return n, nil
}

func (r *PostRepository) AddLike(_ context.Context, postID, userID string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.posts[postID]
	if !ok {
		return false, domain.ErrPostNotFound
	}
	if slices.Contains(p.Likes, userID) {
		return false, nil
	}
	p.Likes = append(p.Likes, userID)
	return true, nil
}

func (r *PostRepository) RemoveLike(_ context.Context, postID, userID string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.posts[postID]
	if !ok {
		return false, domain.ErrPostNotFound
	}
	i := slices.Index(p.Likes, userID)
	if i < 0 {
		return false, nil
	}
	p.Likes = slices.Delete(p.Likes, i, i+1)
	return true, nil
}

func (r *PostRepository) IncrementViews(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.posts[id]
	if !ok {
		return domain.ErrPostNotFound
	}
	p.Views++
	return nil
}
