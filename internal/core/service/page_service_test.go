package service

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/rs/zerolog"

	"github.com/inkpress/cms-backend/internal/core/domain"
	"github.com/inkpress/cms-backend/internal/core/ports"
	"github.com/inkpress/cms-backend/internal/infrastructure/db/memory"
)

func newPageService() (*PageService, *memory.PageRepository) {
	repo := memory.NewPageRepository()
	return NewPageService(repo, zerolog.Nop()), repo
}

func createPage(t *testing.T, svc *PageService, input ports.CreatePageInput) *domain.Page {
	t.Helper()
	if input.Content == "" {
		input.Content = "content"
	}
	page, err := svc.Create(context.Background(), editorP, input)
	if err != nil {
		t.Fatalf("create page %q: %v", input.Title, err)
	}
	return page
}

func countHomePages(t *testing.T, svc *PageService) int {
	t.Helper()
	res, err := svc.List(context.Background(), ports.ListPagesInput{ListOptions: domain.ListOptions{Limit: domain.MaxLimit}})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	n := 0
	for _, p := range res.Items {
		if p.IsHomePage {
			n++
		}
	}
	return n
}

func TestPageService_HomePageSingleton(t *testing.T) {
	svc, _ := newPageService()
	ctx := context.Background()

	first := createPage(t, svc, ports.CreatePageInput{Title: "Welcome", Status: "published", IsHomePage: true})
	second := createPage(t, svc, ports.CreatePageInput{Title: "Landing", Status: "published", IsHomePage: true})

	if n := countHomePages(t, svc); n != 1 {
		t.Fatalf("expected exactly one homepage, got %d", n)
	}
	home, err := svc.Home(ctx)
	if err != nil {
		t.Fatalf("Home: %v", err)
	}
	if home.ID != second.ID || !home.IsHomePage {
		t.Fatalf("expected the last page set to win, got %s", home.ID)
	}

	got, _ := svc.GetByID(ctx, first.ID)
	if got.IsHomePage {
		t.Fatalf("previous homepage should no longer be flagged")
	}

	off := false
	if _, err := svc.Update(ctx, editorP, first.ID, ports.UpdatePageInput{IsHomePage: &off}); err != nil {
		t.Fatalf("unset on non-home page: %v", err)
	}
	if home, _ := svc.Home(ctx); home == nil || home.ID != second.ID {
		t.Fatalf("clearing a non-home page must not clear the pointer")
	}
}

func TestPageService_HomePageSingleton_Concurrent(t *testing.T) {
	svc, _ := newPageService()
	ctx := context.Background()

	var pages []*domain.Page
	for _, title := range []string{"One", "Two", "Three", "Four", "Five"} {
		pages = append(pages, createPage(t, svc, ports.CreatePageInput{Title: title, Status: "published"}))
	}

	on := true
	var wg sync.WaitGroup
	for _, p := range pages {
		wg.Add(1)
		go func(id string) {
			defer wg.Done()
			if _, err := svc.Update(ctx, editorP, id, ports.UpdatePageInput{IsHomePage: &on}); err != nil {
				t.Errorf("set homepage %s: %v", id, err)
			}
		}(p.ID)
	}
	wg.Wait()

	if n := countHomePages(t, svc); n != 1 {
		t.Fatalf("expected exactly one homepage after concurrent updates, got %d", n)
	}
}

func TestPageService_Home_NotFound(t *testing.T) {
	svc, _ := newPageService()
	ctx := context.Background()

	if _, err := svc.Home(ctx); !errors.Is(err, domain.ErrHomePageNotFound) {
		t.Fatalf("expected ErrHomePageNotFound, got %v", err)
	}
	createPage(t, svc, ports.CreatePageInput{Title: "Draft Home", IsHomePage: true})
	if _, err := svc.Home(ctx); !errors.Is(err, domain.ErrHomePageNotFound) {
		t.Fatalf("draft homepage must not be served, got %v", err)
	}
}

func TestPageService_Delete(t *testing.T) {
	svc, _ := newPageService()
	ctx := context.Background()
	parent := createPage(t, svc, ports.CreatePageInput{Title: "Parent", Status: "published", IsHomePage: true})
	child := createPage(t, svc, ports.CreatePageInput{Title: "Child", ParentID: parent.ID})

	if err := svc.Delete(ctx, adminP, parent.ID); !errors.Is(err, domain.ErrPageHasChildren) {
		t.Fatalf("expected ErrPageHasChildren, got %v", err)
	}
	if err := svc.Delete(ctx, otherP, child.ID); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("non-owner editor delete: expected forbidden, got %v", err)
	}
	if err := svc.Delete(ctx, editorP, child.ID); err != nil {
		t.Fatalf("owner delete child: %v", err)
	}
	if err := svc.Delete(ctx, adminP, parent.ID); err != nil {
		t.Fatalf("admin delete parent: %v", err)
	}
	if _, err := svc.Home(ctx); !errors.Is(err, domain.ErrHomePageNotFound) {
		t.Fatalf("deleted homepage must clear the pointer, got %v", err)
	}
}

func TestPageService_MenuAndVisibility(t *testing.T) {
	svc, _ := newPageService()
	ctx := context.Background()
	createPage(t, svc, ports.CreatePageInput{Title: "About", Status: "published", ShowInMenu: true, MenuOrder: 2})
	createPage(t, svc, ports.CreatePageInput{Title: "Contact", Status: "published", ShowInMenu: true, MenuOrder: 1})
	createPage(t, svc, ports.CreatePageInput{Title: "Hidden", Status: "published"})
	private := createPage(t, svc, ports.CreatePageInput{Title: "Private", Status: "private", ShowInMenu: true})

	menu, err := svc.Menu(ctx)
	if err != nil {
		t.Fatalf("Menu: %v", err)
	}
	if len(menu) != 2 || menu[0].Title != "Contact" || menu[1].Title != "About" {
		t.Fatalf("unexpected menu: %+v", menu)
	}

	if _, err := svc.GetBySlug(ctx, nil, private.Slug); !errors.Is(err, domain.ErrPageNotFound) {
		t.Fatalf("anonymous private read: expected not found, got %v", err)
	}
	if _, err := svc.GetBySlug(ctx, &editorP, private.Slug); err != nil {
		t.Fatalf("author private read: %v", err)
	}
}

func TestPageService_Create_Validation(t *testing.T) {
	svc, _ := newPageService()
	ctx := context.Background()

	_, err := svc.Create(ctx, editorP, ports.CreatePageInput{Title: "X", Content: "y", Template: "blog"})
	if !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected template validation error, got %v", err)
	}
	_, err = svc.Create(ctx, editorP, ports.CreatePageInput{Title: "X", Content: "y", ParentID: "507f1f77bcf86cd799439011"})
	if !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected missing parent to be rejected, got %v", err)
	}
	if _, err := svc.Create(ctx, viewerP, ports.CreatePageInput{Title: "X", Content: "y"}); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("viewer create: expected forbidden, got %v", err)
	}
}

type failingHomePages struct {
	*memory.PageRepository
}

func (failingHomePages) SetHomePage(context.Context, string) error {
	return errors.New("pointer write failed")
}

func TestPageService_Create_HomePointerFailureKeepsPage(t *testing.T) {
	repo := memory.NewPageRepository()
	svc := NewPageService(failingHomePages{repo}, zerolog.Nop())
	ctx := context.Background()

	page, err := svc.Create(ctx, editorP, ports.CreatePageInput{Title: "Welcome", Content: "hi", IsHomePage: true})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if page.IsHomePage {
		t.Fatalf("page must not claim the homepage when the pointer was not written")
	}
	if _, err := repo.FindByID(ctx, page.ID); err != nil {
		t.Fatalf("page not stored: %v", err)
	}
}

func TestPageService_Update_CustomFieldLimits(t *testing.T) {
	svc, _ := newPageService()
	ctx := context.Background()
	page := createPage(t, svc, ports.CreatePageInput{Title: "About"})

	longValue := make([]byte, 2001)
	for i := range longValue {
		longValue[i] = 'x'
	}
	fields := map[string]string{"hero": string(longValue)}
	if _, err := svc.Update(ctx, editorP, page.ID, ports.UpdatePageInput{CustomFields: &fields}); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("oversized value: expected validation error, got %v", err)
	}

	ok := map[string]string{"hero": "short"}
	updated, err := svc.Update(ctx, editorP, page.ID, ports.UpdatePageInput{CustomFields: &ok})
	if err != nil || updated.CustomFields["hero"] != "short" {
		t.Fatalf("valid update: %v %+v", err, updated)
	}
}
