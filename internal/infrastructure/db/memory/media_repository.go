package memory

import (
	"cmp"
	"context"
	"slices"
	"sync"

	"github.com/inkpress/cms-backend/internal/core/domain"
	"github.com/inkpress/cms-backend/internal/core/ports"
)

type MediaRepository struct {
	mu    sync.RWMutex
	items map[string]*domain.Media
}

func NewMediaRepository() *MediaRepository {
	return &MediaRepository{items: make(map[string]*domain.Media)}
}

func cloneMedia(m *domain.Media) *domain.Media {
	if m == nil {
		return nil
	}
	c := *m
	c.Tags = slices.Clone(m.Tags)
	return &c
}

func (r *MediaRepository) Create(_ context.Context, media *domain.Media) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if media.ID == "" {
		media.ID = newID()
	}
	r.items[media.ID] = cloneMedia(media)
	return nil
}

func (r *MediaRepository) FindByID(_ context.Context, id string) (*domain.Media, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	m, ok := r.items[id]
	if !ok {
		return nil, domain.ErrMediaNotFound
	}
	return cloneMedia(m), nil
}

func (r *MediaRepository) Update(_ context.Context, media *domain.Media) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored, ok := r.items[media.ID]
	if !ok {
		return domain.ErrMediaNotFound
	}
	next := cloneMedia(media)
	next.UploadedBy = stored.UploadedBy
	r.items[media.ID] = next
	return nil
}

func (r *MediaRepository) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.items[id]; !ok {
		return domain.ErrMediaNotFound
	}
	delete(r.items, id)
	return nil
}

func (r *MediaRepository) List(_ context.Context, filter ports.MediaFilter) ([]*domain.Media, int64, error) {
	r.mu.RLock()
	var out []*domain.Media
	for _, m := range r.items {
		if filter.Type != "" && m.Type != filter.Type {
			continue
		}
		if filter.Folder != "" && m.Folder != filter.Folder {
			continue
		}
		if filter.UploadedBy != "" && m.UploadedBy != filter.UploadedBy {
			continue
		}
		if filter.Search != "" && !containsFold(m.OriginalName, filter.Search) &&
			!containsFold(m.Alt, filter.Search) && !containsFold(m.Caption, filter.Search) {
			continue
		}
		out = append(out, cloneMedia(m))
	}
	r.mu.RUnlock()

	items, total := sortedPage(out, filter.ListOptions, func(a, b *domain.Media, field string) int {
		switch field {
		case "size":
			return cmp.Compare(a.Size, b.Size)
		case "originalName":
			return compareFold(a.OriginalName, b.OriginalName)
		case "updatedAt":
			return a.UpdatedAt.Compare(b.UpdatedAt)
		default:
			return a.CreatedAt.Compare(b.CreatedAt)
		}
	})
	return items, total, nil
}
