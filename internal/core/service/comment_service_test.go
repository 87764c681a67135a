package service

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"

	"github.com/inkpress/cms-backend/internal/core/domain"
	"github.com/inkpress/cms-backend/internal/core/ports"
	"github.com/inkpress/cms-backend/internal/infrastructure/db/memory"
)

func TestCommentService(t *testing.T) {
	posts := memory.NewPostRepository()
	svc := NewCommentService(memory.NewCommentRepository(), posts, zerolog.Nop())
	ctx := context.Background()

	post := &domain.Post{Title: "t", Slug: "t", Status: domain.PostPublished}
	if err := posts.Create(ctx, post); err != nil {
		t.Fatalf("seed post: %v", err)
	}

	if _, err := svc.Create(ctx, viewerP, "missing", ports.CommentInput{Content: "hi"}); !errors.Is(err, domain.ErrPostNotFound) {
		t.Fatalf("expected ErrPostNotFound, got %v", err)
	}
	if _, err := svc.Create(ctx, viewerP, post.ID, ports.CommentInput{Content: "  "}); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}

	c, err := svc.Create(ctx, viewerP, post.ID, ports.CommentInput{Content: "first!"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if c.AuthorID != viewerP.ID || c.PostID != post.ID {
		t.Fatalf("unexpected comment: %+v", c)
	}

	if _, err := svc.Update(ctx, editorP, c.ID, ports.CommentInput{Content: "edited"}); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("editor editing a foreign comment: expected forbidden, got %v", err)
	}
	updated, err := svc.Update(ctx, viewerP, c.ID, ports.CommentInput{Content: "edited"})
	if err != nil || updated.Content != "edited" {
		t.Fatalf("owner update: %v %+v", err, updated)
	}

	res, err := svc.ListByPost(ctx, nil, post.ID, domain.ListOptions{})
	if err != nil {
		t.Fatalf("ListByPost: %v", err)
	}
	if res.Total != 1 || res.Limit != domain.DefaultLimit {
		t.Fatalf("unexpected list result: %+v", res)
	}

	if err := svc.Delete(ctx, adminP, c.ID); err != nil {
		t.Fatalf("admin delete: %v", err)
	}
	if err := svc.Delete(ctx, adminP, c.ID); !errors.Is(err, domain.ErrCommentNotFound) {
		t.Fatalf("expected ErrCommentNotFound, got %v", err)
	}
}

func TestCommentService_DraftPostHidden(t *testing.T) {
	posts := memory.NewPostRepository()
	svc := NewCommentService(memory.NewCommentRepository(), posts, zerolog.Nop())
	ctx := context.Background()

	draft := &domain.Post{Title: "d", Slug: "d", Status: domain.PostDraft, AuthorID: editorP.ID}
	if err := posts.Create(ctx, draft); err != nil {
		t.Fatalf("seed post: %v", err)
	}

	if _, err := svc.ListByPost(ctx, nil, draft.ID, domain.ListOptions{}); !errors.Is(err, domain.ErrPostNotFound) {
		t.Fatalf("anonymous list: expected ErrPostNotFound, got %v", err)
	}
	if _, err := svc.ListByPost(ctx, &viewerP, draft.ID, domain.ListOptions{}); !errors.Is(err, domain.ErrPostNotFound) {
		t.Fatalf("viewer list: expected ErrPostNotFound, got %v", err)
	}
	if _, err := svc.Create(ctx, viewerP, draft.ID, ports.CommentInput{Content: "hi"}); !errors.Is(err, domain.ErrPostNotFound) {
		t.Fatalf("viewer comment: expected ErrPostNotFound, got %v", err)
	}

	if _, err := svc.ListByPost(ctx, &editorP, draft.ID, domain.ListOptions{}); err != nil {
		t.Fatalf("author list: %v", err)
	}
	if _, err := svc.Create(ctx, adminP, draft.ID, ports.CommentInput{Content: "review note"}); err != nil {
		t.Fatalf("admin comment: %v", err)
	}
}
