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

type CommentService struct {
	comments ports.CommentRepository
	posts    ports.PostRepository
	logger   zerolog.Logger
}

func NewCommentService(comments ports.CommentRepository, posts ports.PostRepository, logger zerolog.Logger) *CommentService {
	return &CommentService{comments: comments, posts: posts, logger: logger}
}

func (s *CommentService) Create(ctx context.Context, p domain.Principal, postID string, input ports.CommentInput) (*domain.Comment, error) {
	if _, err := s.visiblePost(ctx, &p, postID); err != nil {
		return nil, err
	}
	if err := domain.Authorize(p, domain.ActionCommentCreate, ""); err != nil {
		return nil, err
	}
	input.Content = strings.TrimSpace(input.Content)
	if err := validation.Struct(input); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	c := &domain.Comment{
		PostID:    postID,
		AuthorID:  p.ID,
		Content:   input.Content,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.comments.Create(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

// ListByPost lists comments newest first. p is nil for anonymous callers.
func (s *CommentService) ListByPost(ctx context.Context, p *domain.Principal, postID string, opts domain.ListOptions) (*domain.ListResult[*domain.Comment], error) {
	if _, err := s.visiblePost(ctx, p, postID); err != nil {
		return nil, err
	}
	opts = opts.Normalize()
	items, total, err := s.comments.ListByPost(ctx, postID, opts)
	if err != nil {
		return nil, err
	}
	return domain.NewListResult(items, total, opts), nil
}

func (s *CommentService) Update(ctx context.Context, p domain.Principal, id string, input ports.CommentInput) (*domain.Comment, error) {
	c, err := s.comments.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := domain.Authorize(p, domain.ActionCommentUpdate, c.AuthorID); err != nil {
		return nil, err
	}
	input.Content = strings.TrimSpace(input.Content)
	if err := validation.Struct(input); err != nil {
		return nil, err
	}

	c.Content = input.Content
	c.UpdatedAt = time.Now().UTC()
	if err := s.comments.Update(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

func (s *CommentService) Delete(ctx context.Context, p domain.Principal, id string) error {
	c, err := s.comments.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if err := domain.Authorize(p, domain.ActionCommentDelete, c.AuthorID); err != nil {
		return err
	}
	return s.comments.Delete(ctx, id)
}

// visiblePost loads postID, reporting unpublished posts as missing to callers
// who could not edit them.
func (s *CommentService) visiblePost(ctx context.Context, p *domain.Principal, postID string) (*domain.Post, error) {
	post, err := s.posts.FindByID(ctx, postID)
	if err != nil {
		return nil, err
	}
	if post.Status != domain.PostPublished &&
		(p == nil || domain.Authorize(*p, domain.ActionPostUpdate, post.AuthorID) != nil) {
		return nil, domain.ErrPostNotFound
	}
	return post, nil
}
