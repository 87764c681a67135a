package handler

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/inkpress/cms-backend/internal/core/domain"
)

func TestListOptions(t *testing.T) {
	cases := []struct {
		query string
		want  domain.ListOptions
	}{
		{query: "", want: domain.ListOptions{Page: 1, Limit: 10, SortDesc: true}},
		{query: "page=3&limit=25", want: domain.ListOptions{Page: 3, Limit: 25, SortDesc: true}},
		{query: "page=abc&limit=-4", want: domain.ListOptions{Page: 1, Limit: 10, SortDesc: true}},
		{query: "limit=1000", want: domain.ListOptions{Page: 1, Limit: 100, SortDesc: true}},
		{query: "sortBy=title&sortOrder=ASC", want: domain.ListOptions{Page: 1, Limit: 10, SortBy: "title"}},
		{query: "sortBy=views&sortOrder=desc", want: domain.ListOptions{Page: 1, Limit: 10, SortBy: "views", SortDesc: true}},
	}

	for _, tc := range cases {
		e := echo.New()
		c := e.NewContext(httptest.NewRequest(http.MethodGet, "/?"+tc.query, nil), httptest.NewRecorder())
		if got := listOptions(c); got != tc.want {
			t.Errorf("query %q: got %+v, want %+v", tc.query, got, tc.want)
		}
	}
}

func TestQueryBool(t *testing.T) {
	e := echo.New()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/?a=true&b=0&c=maybe", nil), httptest.NewRecorder())

	if v := queryBool(c, "a"); v == nil || !*v {
		t.Fatalf("a should be true")
	}
	if v := queryBool(c, "b"); v == nil || *v {
		t.Fatalf("b should be false")
	}
	if queryBool(c, "c") != nil || queryBool(c, "missing") != nil {
		t.Fatalf("malformed and missing values should not filter")
	}
}
