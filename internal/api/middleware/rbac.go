package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/inkpress/cms-backend/internal/core/domain"
	"github.com/inkpress/cms-backend/internal/pkg/metrics"
)

// Permit gates a route on a role-gated policy action. It must run after Auth.
// Actions that ownership can satisfy need the record and are checked by the
// service instead.
func Permit(action domain.Action) echo.MiddlewareFunc {
	if !domain.RoleGated(action) {
		panic("middleware: Permit requires a role-gated action, got " + string(action))
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			p, ok := c.Get(PrincipalKey).(domain.Principal)
			if !ok {
				return echo.NewHTTPError(http.StatusUnauthorized, "Authentication required")
			}
			if !domain.CanPerform(p.Role, action, false) {
				metrics.AuthorizationDeniedTotal.WithLabelValues(string(action)).Inc()
				return echo.NewHTTPError(http.StatusForbidden, "Insufficient permissions")
			}
			return next(c)
		}
	}
}
