package api

import (
	"net/http"

	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"

	"github.com/inkpress/cms-backend/internal/api/handler"
	"github.com/inkpress/cms-backend/internal/api/middleware"
	"github.com/inkpress/cms-backend/internal/core/domain"
	"github.com/inkpress/cms-backend/internal/core/ports"
	"github.com/inkpress/cms-backend/internal/infrastructure/http/handlers"
)

// Services groups the use cases the HTTP layer exposes.
type Services struct {
	Auth          ports.AuthService
	Authenticator ports.Authenticator
	Users         ports.UserService
	Posts         ports.PostService
	Pages         ports.PageService
	Categories    ports.CategoryService
	Media         ports.MediaService
	Comments      ports.CommentService
}

// Options configures the ambient HTTP stack.
type Options struct {
	Env         string
	CORSOrigins []string
	BodyLimit   string

	// RateLimitStore backs the /api limiter. Nil disables rate limiting.
	RateLimitStore echomiddleware.RateLimiterStore

	// UploadDir is served under UploadURL when set (local storage driver).
	UploadDir string
	UploadURL string

	// HealthChecks are run by the readiness probe, keyed by dependency name.
	HealthChecks map[string]handlers.Check

	// Registerer and Gatherer default to the prometheus globals.
	Registerer prometheus.Registerer
	Gatherer   prometheus.Gatherer
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(svc Services, opts Options, log zerolog.Logger) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = NewHTTPErrorHandler(log)
	e.Validator = handler.NewRequestValidator()

	registerer, gatherer := opts.Registerer, opts.Gatherer
	if registerer == nil {
		registerer = prometheus.DefaultRegisterer
	}
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(middleware.RequestLogger(log))
	e.Use(echomiddleware.Secure())
	e.Use(echomiddleware.CORSWithConfig(echomiddleware.CORSConfig{
		AllowOrigins:     corsOrigins(opts.CORSOrigins),
		AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowHeaders:     []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization},
		AllowCredentials: !allowsAnyOrigin(opts.CORSOrigins),
	}))
	e.Use(echomiddleware.Gzip())
	if opts.BodyLimit != "" {
		e.Use(echomiddleware.BodyLimit(opts.BodyLimit))
	}
	e.Use(echoprometheus.NewMiddlewareWithConfig(echoprometheus.MiddlewareConfig{
		Subsystem:                 "cms",
		Registerer:                registerer,
		DoNotUseRequestPathFor404: true,
		Skipper: func(c echo.Context) bool {
			return c.Path() == "/metrics"
		},
	}))

	// --- Ops endpoints (no auth required) ---
	healthHandler := handlers.NewHealthHandler(opts.Env)
	healthDepsHandler := handlers.NewHealthDependenciesHandler(opts.HealthChecks)

	e.GET("/health", healthHandler.Liveness)            // liveness  – is the process alive?
	e.GET("/health/ready", healthDepsHandler.Readiness) // readiness – are dependencies up?
	e.GET("/metrics", echoprometheus.NewHandlerWithConfig(echoprometheus.HandlerConfig{Gatherer: gatherer}))
	e.GET("/swagger/*", echoSwagger.WrapHandler)
	if opts.UploadDir != "" && opts.UploadURL != "" {
		e.Static(opts.UploadURL, opts.UploadDir)
	}

	// --- API ---
	g := e.Group("/api")
	if opts.RateLimitStore != nil {
		g.Use(middleware.RateLimit(opts.RateLimitStore, log))
	}

	requireAuth := middleware.Auth(svc.Authenticator)
	optionalAuth := middleware.OptionalAuth(svc.Authenticator)

	authHandler := handler.NewAuthHandler(svc.Auth)
	auth := g.Group("/auth")
	auth.POST("/register", authHandler.Register)
	auth.POST("/login", authHandler.Login)
	auth.POST("/refresh-token", authHandler.RefreshToken)
	auth.POST("/logout", authHandler.Logout, requireAuth)
	auth.GET("/profile", authHandler.Profile, requireAuth)
	auth.PUT("/profile", authHandler.UpdateProfile, requireAuth)
	auth.PUT("/change-password", authHandler.ChangePassword, requireAuth)

	userHandler := handler.NewUserHandler(svc.Users)
	users := g.Group("/users", requireAuth)
	users.GET("", userHandler.List, middleware.Permit(domain.ActionUserList))
	users.POST("", userHandler.Create, middleware.Permit(domain.ActionUserCreate))
	users.GET("/:id", userHandler.Get)
	users.PUT("/:id", userHandler.Update, middleware.Permit(domain.ActionUserUpdate))
	users.DELETE("/:id", userHandler.Delete, middleware.Permit(domain.ActionUserDelete))
	users.PUT("/:id/role", userHandler.ChangeRole, middleware.Permit(domain.ActionUserChangeRole))
	users.PUT("/:id/status", userHandler.ToggleStatus, middleware.Permit(domain.ActionUserToggleStatus))

	postHandler := handler.NewPostHandler(svc.Posts)
	commentHandler := handler.NewCommentHandler(svc.Comments)
	posts := g.Group("/posts")
	posts.GET("/published", postHandler.ListPublished)
	posts.GET("/featured", postHandler.Featured)
	posts.GET("/slug/:slug", postHandler.GetBySlug, optionalAuth)
	posts.GET("/:id/comments", commentHandler.ListByPost, optionalAuth)
	posts.GET("", postHandler.List, requireAuth)
	posts.GET("/:id", postHandler.Get, requireAuth)
	posts.POST("", postHandler.Create, requireAuth, middleware.Permit(domain.ActionPostCreate))
	posts.PUT("/:id", postHandler.Update, requireAuth)
	posts.DELETE("/:id", postHandler.Delete, requireAuth)
	posts.POST("/:id/like", postHandler.Like, requireAuth)
	posts.DELETE("/:id/like", postHandler.Unlike, requireAuth)
	posts.POST("/:id/comments", commentHandler.Create, requireAuth)

	comments := g.Group("/comments", requireAuth)
	comments.PUT("/:id", commentHandler.Update)
	comments.DELETE("/:id", commentHandler.Delete)

	pageHandler := handler.NewPageHandler(svc.Pages)
	pages := g.Group("/pages")
	pages.GET("/published", pageHandler.ListPublished)
	pages.GET("/menu", pageHandler.Menu)
	pages.GET("/home", pageHandler.Home)
	pages.GET("/slug/:slug", pageHandler.GetBySlug, optionalAuth)
	pages.GET("", pageHandler.List, requireAuth)
	pages.GET("/:id", pageHandler.Get, requireAuth)
	pages.POST("", pageHandler.Create, requireAuth, middleware.Permit(domain.ActionPageCreate))
	pages.PUT("/:id", pageHandler.Update, requireAuth)
	pages.DELETE("/:id", pageHandler.Delete, requireAuth)

	categoryHandler := handler.NewCategoryHandler(svc.Categories)
	categories := g.Group("/categories")
	categories.GET("", categoryHandler.List)
	categories.GET("/slug/:slug", categoryHandler.GetBySlug)
	categories.GET("/:id", categoryHandler.Get)
	categories.GET("/:id/posts", categoryHandler.Posts)
	categories.POST("", categoryHandler.Create, requireAuth, middleware.Permit(domain.ActionCategoryCreate))
	categories.PUT("/:id", categoryHandler.Update, requireAuth)
	categories.DELETE("/:id", categoryHandler.Delete, requireAuth)

	mediaHandler := handler.NewMediaHandler(svc.Media)
	media := g.Group("/media", requireAuth)
	media.GET("", mediaHandler.List)
	media.GET("/type/:type", mediaHandler.ListByType)
	media.GET("/:id", mediaHandler.Get)
	media.POST("/upload", mediaHandler.Upload)
	media.PUT("/:id", mediaHandler.Update)
	media.DELETE("/:id", mediaHandler.Delete)

	return e
}

func corsOrigins(origins []string) []string {
	if len(origins) == 0 {
		return []string{"*"}
	}
	return origins
}

func allowsAnyOrigin(origins []string) bool {
	for _, o := range corsOrigins(origins) {
		if o == "*" {
			return true
		}
	}
	return false
}
