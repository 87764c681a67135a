package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/inkpress/cms-backend/internal/core/domain"
)

type stubAuthenticator struct {
	authenticateFn func(ctx context.Context, token string) (*domain.Session, error)
}

func (s *stubAuthenticator) Authenticate(ctx context.Context, token string) (*domain.Session, error) {
	return s.authenticateFn(ctx, token)
}

func validAuthenticator(t *testing.T) *stubAuthenticator {
	return &stubAuthenticator{
		authenticateFn: func(ctx context.Context, token string) (*domain.Session, error) {
			if token != "good-token" {
				return nil, domain.ErrInvalidToken
			}
			return &domain.Session{
				Principal: domain.Principal{ID: "user-1", Role: domain.RoleEditor},
				TokenID:   "jti-1",
			}, nil
		},
	}
}

func TestAuthMiddleware_ValidToken(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer good-token")
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	called := false
	mw := Auth(validAuthenticator(t))
	handler := mw(func(c echo.Context) error {
		called = true
		p, ok := c.Get(PrincipalKey).(domain.Principal)
		if !ok || p.ID != "user-1" || p.Role != domain.RoleEditor {
			t.Fatalf("principal not set: %+v", c.Get(PrincipalKey))
		}
		s, ok := c.Get(SessionKey).(*domain.Session)
		if !ok || s.TokenID != "jti-1" {
			t.Fatalf("session not set")
		}
		return c.NoContent(http.StatusOK)
	})

	if err := handler(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if !called {
		t.Fatalf("next not called")
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestAuthMiddleware_MissingHeader(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	mw := Auth(validAuthenticator(t))
	handler := mw(func(c echo.Context) error {
		t.Fatalf("should not reach next")
		return nil
	})

	if err := handler(c); err != nil {
		e.HTTPErrorHandler(err, c)
	}
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

func TestAuthMiddleware_MalformedHeader(t *testing.T) {
	for _, header := range []string{"good-token", "Basic good-token", "Bearer "} {
		e := echo.New()
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", header)
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)

		handler := Auth(validAuthenticator(t))(func(c echo.Context) error {
			t.Fatalf("should not reach next for %q", header)
			return nil
		})

		err := handler(c)
		var he *echo.HTTPError
		if !errors.As(err, &he) || he.Code != http.StatusUnauthorized {
			t.Fatalf("header %q: expected 401 HTTPError, got %v", header, err)
		}
	}
}

func TestAuthMiddleware_InvalidToken(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer forged")
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	handler := Auth(validAuthenticator(t))(func(c echo.Context) error {
		t.Fatalf("should not reach next")
		return nil
	})

	err := handler(c)
	var he *echo.HTTPError
	if !errors.As(err, &he) || he.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 HTTPError, got %v", err)
	}
	if he.Message != "Invalid token" {
		t.Fatalf("unexpected message: %v", he.Message)
	}
}

func TestAuthMiddleware_StoreFailureIsNotUnauthorized(t *testing.T) {
	boom := errors.New("redis down")
	auth := &stubAuthenticator{
		authenticateFn: func(ctx context.Context, token string) (*domain.Session, error) {
			return nil, boom
		},
	}
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer good-token")
	c := e.NewContext(req, httptest.NewRecorder())

	err := Auth(auth)(func(c echo.Context) error { return nil })(c)
	if !errors.Is(err, boom) {
		t.Fatalf("expected store error to propagate, got %v", err)
	}
}

func TestOptionalAuth(t *testing.T) {
	cases := []struct {
		name          string
		header        string
		wantPrincipal bool
	}{
		{name: "anonymous", header: "", wantPrincipal: false},
		{name: "valid", header: "Bearer good-token", wantPrincipal: true},
		{name: "invalid token", header: "Bearer forged", wantPrincipal: false},
		{name: "malformed", header: "garbage", wantPrincipal: false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			e := echo.New()
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			c := e.NewContext(req, httptest.NewRecorder())

			called := false
			err := OptionalAuth(validAuthenticator(t))(func(c echo.Context) error {
				called = true
				_, ok := c.Get(PrincipalKey).(domain.Principal)
				if ok != tc.wantPrincipal {
					t.Fatalf("principal present = %v, want %v", ok, tc.wantPrincipal)
				}
				return nil
			})(c)
			if err != nil {
				t.Fatalf("handler error: %v", err)
			}
			if !called {
				t.Fatalf("next not called")
			}
		})
	}
}
