package handler

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/inkpress/cms-backend/internal/api/middleware"
	"github.com/inkpress/cms-backend/internal/core/domain"
)

// ctxPrincipal extracts the caller injected by the Auth middleware. A missing
// principal means the route was registered without Auth; reject with 401.
func ctxPrincipal(c echo.Context) (domain.Principal, error) {
	p, ok := c.Get(middleware.PrincipalKey).(domain.Principal)
	if !ok || p.ID == "" {
		return domain.Principal{}, echo.NewHTTPError(http.StatusUnauthorized, "Authentication required")
	}
	return p, nil
}

// ctxSession returns the verified token session behind the request.
func ctxSession(c echo.Context) (domain.Session, error) {
	s, ok := c.Get(middleware.SessionKey).(*domain.Session)
	if !ok || s == nil {
		return domain.Session{}, echo.NewHTTPError(http.StatusUnauthorized, "Authentication required")
	}
	return *s, nil
}

// ctxOptionalPrincipal returns nil for anonymous callers on OptionalAuth routes.
func ctxOptionalPrincipal(c echo.Context) *domain.Principal {
	p, ok := c.Get(middleware.PrincipalKey).(domain.Principal)
	if !ok {
		return nil
	}
	return &p
}

func bindBody(c echo.Context, dst any) error {
	if err := (&echo.DefaultBinder{}).BindBody(c, dst); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload").SetInternal(err)
	}
	return nil
}

// listOptions reads page, limit, sortBy and sortOrder. Malformed numbers fall
// back to the defaults; sortOrder defaults to descending.
func listOptions(c echo.Context) domain.ListOptions {
	return domain.ListOptions{
		Page:     queryInt(c, "page"),
		Limit:    queryInt(c, "limit"),
		SortBy:   strings.TrimSpace(c.QueryParam("sortBy")),
		SortDesc: !strings.EqualFold(c.QueryParam("sortOrder"), "asc"),
	}.Normalize()
}

func queryInt(c echo.Context, name string) int {
	n, err := strconv.Atoi(c.QueryParam(name))
	if err != nil {
		return 0
	}
	return n
}

// queryBool parses an optional boolean filter; absent or malformed means no filter.
func queryBool(c echo.Context, name string) *bool {
	v, err := strconv.ParseBool(c.QueryParam(name))
	if err != nil {
		return nil
	}
	return &v
}
