package middleware

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
)

type countingStore struct {
	limit int
	seen  map[string]int
	err   error
}

func (s *countingStore) Allow(identifier string) (bool, error) {
	if s.err != nil {
		return false, s.err
	}
	s.seen[identifier]++
	return s.seen[identifier] <= s.limit, nil
}

func serve(e *echo.Echo, ip string) int {
	req := httptest.NewRequest(http.MethodGet, "/api/ping", nil)
	req.RemoteAddr = ip + ":1234"
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec.Code
}

func newLimitedEcho(store *countingStore) *echo.Echo {
	e := echo.New()
	e.Use(RateLimit(store, zerolog.Nop()))
	e.GET("/api/ping", func(c echo.Context) error { return c.NoContent(http.StatusOK) })
	return e
}

func TestRateLimit_DeniesOverLimit(t *testing.T) {
	e := newLimitedEcho(&countingStore{limit: 2, seen: map[string]int{}})

	for i := 0; i < 2; i++ {
		if code := serve(e, "10.0.0.1"); code != http.StatusOK {
			t.Fatalf("request %d: expected 200, got %d", i+1, code)
		}
	}
	if code := serve(e, "10.0.0.1"); code != http.StatusTooManyRequests {
		t.Fatalf("expected 429, got %d", code)
	}
	if code := serve(e, "10.0.0.2"); code != http.StatusOK {
		t.Fatalf("other client should not be limited, got %d", code)
	}
}

func TestRateLimit_FailsOpen(t *testing.T) {
	e := newLimitedEcho(&countingStore{err: errors.New("redis down")})

	if code := serve(e, "10.0.0.1"); code != http.StatusOK {
		t.Fatalf("expected 200 when store fails, got %d", code)
	}
}

func TestMemoryRateLimitStore(t *testing.T) {
	store := NewMemoryRateLimitStore(3, time.Hour)

	for i := 0; i < 3; i++ {
		ok, err := store.Allow("client")
		if err != nil || !ok {
			t.Fatalf("request %d: allowed=%v err=%v", i+1, ok, err)
		}
	}
	if ok, _ := store.Allow("client"); ok {
		t.Fatalf("fourth request in window should be denied")
	}
}
