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

type categoryFixture struct {
	categories *memory.CategoryRepository
	posts      *memory.PostRepository
	svc        *CategoryService
}

func newCategoryFixture() *categoryFixture {
	f := &categoryFixture{categories: memory.NewCategoryRepository(), posts: memory.NewPostRepository()}
	f.svc = NewCategoryService(f.categories, f.posts, zerolog.Nop())
	return f
}

func (f *categoryFixture) create(t *testing.T, p domain.Principal, name, parent string) *domain.Category {
	t.Helper()
	c, err := f.svc.Create(context.Background(), p, ports.CreateCategoryInput{Name: name, ParentID: parent})
	if err != nil {
		t.Fatalf("create category %q: %v", name, err)
	}
	return c
}

func TestCategoryService_Create_Defaults(t *testing.T) {
	f := newCategoryFixture()
	c := f.create(t, editorP, "Tech News", "")

	if c.Slug != "tech-news" || c.Color != domain.DefaultCategoryColor || !c.IsActive {
		t.Fatalf("unexpected defaults: %+v", c)
	}
	if c.CreatedBy != editorP.ID {
		t.Fatalf("expected creator %s, got %s", editorP.ID, c.CreatedBy)
	}

	_, err := f.svc.Create(context.Background(), editorP, ports.CreateCategoryInput{Name: "tech news"})
	if !errors.Is(err, domain.ErrConflict) {
		t.Fatalf("expected name conflict, got %v", err)
	}
	_, err = f.svc.Create(context.Background(), editorP, ports.CreateCategoryInput{Name: "Design", Color: "red"})
	if !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected color validation error, got %v", err)
	}
	if _, err := f.svc.Create(context.Background(), viewerP, ports.CreateCategoryInput{Name: "Nope"}); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("viewer create: expected forbidden, got %v", err)
	}
}

func TestCategoryService_Delete_WithPostsConflicts(t *testing.T) {
	f := newCategoryFixture()
	ctx := context.Background()
	c := f.create(t, editorP, "Busy", "")
	if err := f.posts.Create(ctx, &domain.Post{Title: "p", Slug: "p", Status: domain.PostDraft, Categories: []string{c.ID}}); err != nil {
		t.Fatalf("seed post: %v", err)
	}

	err := f.svc.Delete(ctx, adminP, c.ID)
	if !errors.Is(err, domain.ErrCategoryHasPosts) || !errors.Is(err, domain.ErrHasDependents) {
		t.Fatalf("expected ErrCategoryHasPosts, got %v", err)
	}
	if _, err := f.categories.FindByID(ctx, c.ID); err != nil {
		t.Fatalf("category must remain after refused delete: %v", err)
	}

	got, err := f.svc.GetByID(ctx, c.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if got.PostCount != 1 {
		t.Fatalf("expected postCount 1, got %d", got.PostCount)
	}
}

func TestCategoryService_Delete_WithSubcategoriesConflicts(t *testing.T) {
	f := newCategoryFixture()
	ctx := context.Background()
	parent := f.create(t, editorP, "Parent", "")
	f.create(t, editorP, "Child", parent.ID)

	if err := f.svc.Delete(ctx, adminP, parent.ID); !errors.Is(err, domain.ErrCategoryHasSubcategories) {
		t.Fatalf("expected ErrCategoryHasSubcategories, got %v", err)
	}
}

func TestCategoryService_Delete_Authorization(t *testing.T) {
	f := newCategoryFixture()
	ctx := context.Background()
	c := f.create(t, editorP, "Owned", "")

	if err := f.svc.Delete(ctx, otherP, c.ID); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("non-owner delete: expected forbidden, got %v", err)
	}
	if err := f.svc.Delete(ctx, viewerP, "missing"); !errors.Is(err, domain.ErrCategoryNotFound) {
		t.Fatalf("expected not found before forbidden, got %v", err)
	}
	if err := f.svc.Delete(ctx, editorP, c.ID); err != nil {
		t.Fatalf("owner delete: %v", err)
	}

	c2 := f.create(t, editorP, "Another", "")
	if err := f.svc.Delete(ctx, adminP, c2.ID); err != nil {
		t.Fatalf("admin delete: %v", err)
	}
}

func TestCategoryService_Update_ParentChecks(t *testing.T) {
	f := newCategoryFixture()
	ctx := context.Background()
	a := f.create(t, editorP, "A", "")
	b := f.create(t, editorP, "B", a.ID)

	self := a.ID
	if _, err := f.svc.Update(ctx, editorP, a.ID, ports.UpdateCategoryInput{ParentID: &self}); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("self parent: expected validation error, got %v", err)
	}
	child := b.ID
	if _, err := f.svc.Update(ctx, editorP, a.ID, ports.UpdateCategoryInput{ParentID: &child}); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("cycle: expected validation error, got %v", err)
	}
	ghost := "507f1f77bcf86cd799439011"
	if _, err := f.svc.Update(ctx, editorP, a.ID, ports.UpdateCategoryInput{ParentID: &ghost}); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("missing parent: expected validation error, got %v", err)
	}

	none := ""
	updated, err := f.svc.Update(ctx, editorP, b.ID, ports.UpdateCategoryInput{ParentID: &none})
	if err != nil {
		t.Fatalf("clear parent: %v", err)
	}
	if updated.ParentID != "" {
		t.Fatalf("expected root category, got parent %q", updated.ParentID)
	}
}

func TestCategoryService_Posts(t *testing.T) {
	f := newCategoryFixture()
	ctx := context.Background()
	c := f.create(t, editorP, "Feed", "")
	for i, status := range []domain.PostStatus{domain.PostPublished, domain.PostDraft} {
		slug := []string{"live", "draft"}[i]
		if err := f.posts.Create(ctx, &domain.Post{Title: slug, Slug: slug, Status: status, Categories: []string{c.ID}}); err != nil {
			t.Fatalf("seed post: %v", err)
		}
	}

	res, err := f.svc.Posts(ctx, c.ID, domain.ListOptions{})
	if err != nil {
		t.Fatalf("Posts: %v", err)
	}
	if res.Total != 1 || res.Items[0].Slug != "live" {
		t.Fatalf("expected only the published post, got %+v", res.Items)
	}
	if _, err := f.svc.Posts(ctx, "missing", domain.ListOptions{}); !errors.Is(err, domain.ErrCategoryNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}
