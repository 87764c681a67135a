package memory

import (
	"context"
	"sync"

	"github.com/inkpress/cms-backend/internal/core/domain"
)

type CommentRepository struct {
	mu       sync.RWMutex
	comments map[string]*domain.Comment
}

func NewCommentRepository() *CommentRepository {
	return &CommentRepository{comments: make(map[string]*domain.Comment)}
}

func (r *CommentRepository) Create(_ context.Context, comment *domain.Comment) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if comment.ID == "" {
		comment.ID = newID()
	}
	c := *comment
	r.comments[c.ID] = &c
	return nil
}

func (r *CommentRepository) FindByID(_ context.Context, id string) (*domain.Comment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	c, ok := r.comments[id]
	if !ok {
		return nil, domain.ErrCommentNotFound
	}
	out := *c
	return &out, nil
}

func (r *CommentRepository) Update(_ context.Context, comment *domain.Comment) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored, ok := r.comments[comment.ID]
	if !ok {
		return domain.ErrCommentNotFound
	}
	stored.Content = comment.Content
	stored.UpdatedAt = comment.UpdatedAt
	return nil
}

func (r *CommentRepository) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.comments[id]; !ok {
		return domain.ErrCommentNotFound
	}
	delete(r.comments, id)
	return nil
}

func (r *CommentRepository) ListByPost(_ context.Context, postID string, opts domain.ListOptions) ([]*domain.Comment, int64, error) {
	r.mu.RLock()
	var out []*domain.Comment
	for _, c := range r.comments {
		if c.PostID == postID {
			cp := *c
			out = append(out, &cp)
		}
	}
	r.mu.RUnlock()

	opts.SortDesc = true
	items, total := sortedPage(out, opts, func(a, b *domain.Comment, _ string) int {
		return a.CreatedAt.Compare(b.CreatedAt)
	})
	return items, total, nil
}

func (r *CommentRepository) DeleteByPost(_ context.Context, postID string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var n int64
	for id, c := range r.comments {
		if c.PostID == postID {
			delete(r.comments, id)
			n++
		}
	}
	return n, nil
}
