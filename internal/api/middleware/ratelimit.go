package middleware

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/inkpress/cms-backend/internal/pkg/metrics"
)

const rateLimitMessage = "Too many requests from this IP, please try again later."

// NewMemoryRateLimitStore approximates a fixed window of limit requests per
// window with a token bucket per client. Used when Redis is not configured.
func NewMemoryRateLimitStore(limit int, window time.Duration) echomiddleware.RateLimiterStore {
	return echomiddleware.NewRateLimiterMemoryStoreWithConfig(echomiddleware.RateLimiterMemoryStoreConfig{
		Rate:      rate.Limit(float64(limit) / window.Seconds()),
		Burst:     limit,
		ExpiresIn: window,
	})
}

// RateLimit rejects clients, keyed by IP, once store denies them. A store
// failure lets the request through.
func RateLimit(store echomiddleware.RateLimiterStore, log zerolog.Logger) echo.MiddlewareFunc {
	return echomiddleware.RateLimiterWithConfig(echomiddleware.RateLimiterConfig{
		Store: failOpen{store: store, log: log},
		IdentifierExtractor: func(c echo.Context) (string, error) {
			return c.RealIP(), nil
		},
		ErrorHandler: func(c echo.Context, err error) error {
			return echo.NewHTTPError(http.StatusForbidden, "Unable to identify client").SetInternal(err)
		},
		DenyHandler: func(c echo.Context, identifier string, err error) error {
			metrics.RateLimitedTotal.Inc()
			return echo.NewHTTPError(http.StatusTooManyRequests, rateLimitMessage)
		},
	})
}

type failOpen struct {
	store echomiddleware.RateLimiterStore
	log   zerolog.Logger
}

func (f failOpen) Allow(identifier string) (bool, error) {
	ok, err := f.store.Allow(identifier)
	if err != nil {
		f.log.Warn().Err(err).Msg("rate limit store unavailable, allowing request")
		return true, nil
	}
	return ok, nil
}
