package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/inkpress/cms-backend/internal/core/domain"
	"github.com/inkpress/cms-backend/internal/core/ports"
)

// Context keys set by Auth and OptionalAuth.
const (
	SessionKey   = "session"
	PrincipalKey = "principal"
)

// Auth resolves the bearer token to a live session and injects it into context.
func Auth(authenticator ports.Authenticator) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			token, err := bearerToken(c.Request())
			if err != nil {
				return err
			}

			session, err := authenticator.Authenticate(c.Request().Context(), token)
			if err != nil {
				if errors.Is(err, domain.ErrUnauthenticated) {
					return echo.NewHTTPError(http.StatusUnauthorized, err.Error()).SetInternal(err)
				}
				return err
			}

			setSession(c, session)
			return next(c)
		}
	}
}

// OptionalAuth injects a session when a valid bearer token is present and
// otherwise lets the request through as anonymous.
func OptionalAuth(authenticator ports.Authenticator) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if c.Request().Header.Get(echo.HeaderAuthorization) == "" {
				return next(c)
			}
			token, err := bearerToken(c.Request())
			if err != nil {
				return next(c)
			}
			if session, err := authenticator.Authenticate(c.Request().Context(), token); err == nil {
				setSession(c, session)
			}
			return next(c)
		}
	}
}

func bearerToken(r *http.Request) (string, error) {
	authHeader := r.Header.Get(echo.HeaderAuthorization)
	if authHeader == "" {
		return "", echo.NewHTTPError(http.StatusUnauthorized, "Access token required")
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") || strings.TrimSpace(parts[1]) == "" {
		return "", echo.NewHTTPError(http.StatusUnauthorized, "Invalid authorization header")
	}
	return strings.TrimSpace(parts[1]), nil
}

func setSession(c echo.Context, session *domain.Session) {
	c.Set(SessionKey, session)
	c.Set(PrincipalKey, session.Principal)
}
