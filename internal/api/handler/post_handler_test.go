package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/inkpress/cms-backend/internal/core/domain"
	"github.com/inkpress/cms-backend/internal/core/ports"
)

// stubPostService embeds the interface so each test only implements the
// methods it exercises.
type stubPostService struct {
	ports.PostService
	listFn      func(ctx context.Context, input ports.ListPostsInput) (*domain.ListResult[*domain.Post], error)
	getBySlugFn func(ctx context.Context, p *domain.Principal, slug string) (*domain.Post, error)
	createFn    func(ctx context.Context, p domain.Principal, input ports.CreatePostInput) (*domain.Post, error)
	likeFn      func(ctx context.Context, p domain.Principal, id string) (*domain.Post, error)
}

func (s *stubPostService) List(ctx context.Context, input ports.ListPostsInput) (*domain.ListResult[*domain.Post], error) {
	return s.listFn(ctx, input)
}

func (s *stubPostService) GetBySlug(ctx context.Context, p *domain.Principal, slug string) (*domain.Post, error) {
	return s.getBySlugFn(ctx, p, slug)
}

func (s *stubPostService) Create(ctx context.Context, p domain.Principal, input ports.CreatePostInput) (*domain.Post, error) {
	return s.createFn(ctx, p, input)
}

func (s *stubPostService) Like(ctx context.Context, p domain.Principal, id string) (*domain.Post, error) {
	return s.likeFn(ctx, p, id)
}

func TestPostHandler_List_ParsesQuery(t *testing.T) {
	e := echo.New()
	stub := &stubPostService{
		listFn: func(ctx context.Context, input ports.ListPostsInput) (*domain.ListResult[*domain.Post], error) {
			if input.Status != "draft" || input.Tag != "go" || input.CategoryID != "c1" || input.AuthorID != "a1" {
				t.Fatalf("unexpected filters: %+v", input)
			}
			if input.Featured == nil || !*input.Featured {
				t.Fatalf("expected featured filter")
			}
			if input.Page != 2 || input.Limit != 100 || input.SortBy != "title" || input.SortDesc {
				t.Fatalf("unexpected list options: %+v", input.ListOptions)
			}
			posts := []*domain.Post{{ID: "p1", Title: "One"}}
			return domain.NewListResult(posts, 101, input.ListOptions), nil
		},
	}
	handler := NewPostHandler(stub)

	req := httptest.NewRequest(http.MethodGet, "/api/posts?page=2&limit=500&status=draft&tag=go&category=c1&author=a1&isFeatured=true&sortBy=title&sortOrder=asc", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := handler.List(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	data := decodeEnvelope(t, rec)["data"].(map[string]any)
	items := data["data"].([]any)
	if len(items) != 1 {
		t.Fatalf("expected one post, got %d", len(items))
	}
	pagination := data["pagination"].(map[string]any)
	if pagination["currentPage"] != float64(2) || pagination["totalPages"] != float64(2) || pagination["totalItems"] != float64(101) {
		t.Fatalf("unexpected pagination: %+v", pagination)
	}
	if pagination["hasNextPage"] != false || pagination["hasPrevPage"] != true || pagination["prevPage"] != float64(1) || pagination["nextPage"] != nil {
		t.Fatalf("unexpected navigation: %+v", pagination)
	}
}

func TestPostHandler_GetBySlug_Anonymous(t *testing.T) {
	e := echo.New()
	stub := &stubPostService{
		getBySlugFn: func(ctx context.Context, p *domain.Principal, slug string) (*domain.Post, error) {
			if p != nil {
				t.Fatalf("expected anonymous caller, got %+v", p)
			}
			if slug != "hello-world" {
				t.Fatalf("unexpected slug %q", slug)
			}
			return &domain.Post{ID: "p1", Slug: slug, Views: 1}, nil
		},
	}
	handler := NewPostHandler(stub)

	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), rec)
	c.SetParamNames("slug")
	c.SetParamValues("hello-world")

	if err := handler.GetBySlug(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestPostHandler_GetBySlug_PassesPrincipal(t *testing.T) {
	e := echo.New()
	stub := &stubPostService{
		getBySlugFn: func(ctx context.Context, p *domain.Principal, slug string) (*domain.Post, error) {
			if p == nil || p.ID != "editor-1" {
				t.Fatalf("expected editor principal, got %+v", p)
			}
			return &domain.Post{ID: "p1", Slug: slug, Status: domain.PostDraft}, nil
		},
	}

	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), httptest.NewRecorder())
	c.SetParamNames("slug")
	c.SetParamValues("draft-post")
	withSession(c, domain.Principal{ID: "editor-1", Role: domain.RoleEditor})

	if err := NewPostHandler(stub).GetBySlug(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
}

func TestPostHandler_Create(t *testing.T) {
	e := echo.New()
	stub := &stubPostService{
		createFn: func(ctx context.Context, p domain.Principal, input ports.CreatePostInput) (*domain.Post, error) {
			if p.ID != "editor-1" {
				t.Fatalf("unexpected principal %+v", p)
			}
			if input.Title != "Hello" || len(input.Tags) != 2 || input.Status != "published" {
				t.Fatalf("unexpected input: %+v", input)
			}
			return &domain.Post{ID: "p1", Title: input.Title, Slug: "hello", AuthorID: p.ID}, nil
		},
	}

	rec := httptest.NewRecorder()
	c := e.NewContext(jsonRequest(http.MethodPost, "/api/posts", `{"title":"Hello","content":"World","status":"published","tags":["go","cms"]}`), rec)
	withSession(c, domain.Principal{ID: "editor-1", Role: domain.RoleEditor})

	if err := NewPostHandler(stub).Create(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rec.Code)
	}
	data := decodeEnvelope(t, rec)["data"].(map[string]any)
	if data["author"] != "editor-1" || data["slug"] != "hello" {
		t.Fatalf("unexpected post payload: %+v", data)
	}
}

func TestPostHandler_Like_PropagatesDomainError(t *testing.T) {
	e := echo.New()
	stub := &stubPostService{
		likeFn: func(ctx context.Context, p domain.Principal, id string) (*domain.Post, error) {
			return nil, domain.ErrAlreadyLiked
		},
	}

	c := e.NewContext(httptest.NewRequest(http.MethodPost, "/", nil), httptest.NewRecorder())
	c.SetParamNames("id")
	c.SetParamValues("p1")
	withSession(c, domain.Principal{ID: "viewer-1", Role: domain.RoleViewer})

	if err := NewPostHandler(stub).Like(c); err != domain.ErrAlreadyLiked {
		t.Fatalf("expected ErrAlreadyLiked, got %v", err)
	}
}
