// @title           Inkpress CMS API
// @version         1.0
// @description     Content management backend for users, posts, pages, categories, comments and media.
// @BasePath        /api
// @securityDefinitions.apikey BearerAuth
// @in              header
// @name            Authorization
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"

	_ "github.com/inkpress/cms-backend/docs"
	"github.com/inkpress/cms-backend/internal/api"
	"github.com/inkpress/cms-backend/internal/api/middleware"
	"github.com/inkpress/cms-backend/internal/core/ports"
	"github.com/inkpress/cms-backend/internal/core/service"
	"github.com/inkpress/cms-backend/internal/infrastructure/db/memory"
	mongodb "github.com/inkpress/cms-backend/internal/infrastructure/db/mongo"
	redisdb "github.com/inkpress/cms-backend/internal/infrastructure/db/redis"
	"github.com/inkpress/cms-backend/internal/infrastructure/http/handlers"
	"github.com/inkpress/cms-backend/internal/infrastructure/queue"
	"github.com/inkpress/cms-backend/internal/infrastructure/search/elastic"
	"github.com/inkpress/cms-backend/internal/infrastructure/storage"
	"github.com/inkpress/cms-backend/internal/pkg/config"
	"github.com/inkpress/cms-backend/pkg/logger"
)

const shutdownTimeout = 10 * time.Second

func main() {
	cfg := config.Load()
	log := logger.Init(logger.Options{
		Level:   cfg.LogLevel,
		Pretty:  cfg.Pretty(),
		Service: "cms-api",
		Env:     cfg.Env,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.Fatal().Err(err).Msg("server stopped with error")
	}
	log.Info().Msg("server stopped")
}

// repositories is the persistence set selected by DB_DRIVER.
type repositories struct {
	users      ports.UserRepository
	posts      ports.PostRepository
	pages      ports.PageRepository
	categories ports.CategoryRepository
	comments   ports.CommentRepository
	media      ports.MediaRepository
}

func run(ctx context.Context, cfg *config.Config, log zerolog.Logger) error {
	checks := map[string]handlers.Check{}
	var cleanups []func(context.Context)
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		for i := len(cleanups) - 1; i >= 0; i-- {
			cleanups[i](shutdownCtx)
		}
	}()

	// --- Persistence ---
	var repos repositories
	switch cfg.DB.Driver {
	case config.DriverMongo:
		client, db, err := mongodb.Connect(ctx, mongodb.Config{URI: cfg.Mongo.URI, Database: cfg.Mongo.Database})
		if err != nil {
			return err
		}
		cleanups = append(cleanups, func(ctx context.Context) {
			if err := client.Disconnect(ctx); err != nil {
				log.Warn().Err(err).Msg("mongodb disconnect failed")
			}
		})
		r := mongodb.NewRepositories(db)
		if err := r.EnsureIndexes(ctx); err != nil {
			return err
		}
		repos = repositories{r.Users, r.Posts, r.Pages, r.Categories, r.Comments, r.Media}
		checks["mongodb"] = func(ctx context.Context) error { return client.Ping(ctx, nil) }
		log.Info().Str("database", cfg.Mongo.Database).Msg("connected to mongodb")
	default:
		repos = repositories{
			users:      memory.NewUserRepository(),
			posts:      memory.NewPostRepository(),
			pages:      memory.NewPageRepository(),
			categories: memory.NewCategoryRepository(),
			comments:   memory.NewCommentRepository(),
			media:      memory.NewMediaRepository(),
		}
		log.Warn().Msg("using in-memory repositories; data is lost on restart")
	}

	// --- Token revocation and rate limiting ---
	var revoker ports.TokenRevoker
	var limiter echomiddleware.RateLimiterStore
	if cfg.Redis.Enabled {
		client, err := redisdb.Connect(ctx, redisdb.Config{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err != nil {
			return err
		}
		cleanups = append(cleanups, func(context.Context) { _ = client.Close() })
		revoker = redisdb.NewTokenRevoker(client)
		limiter = redisdb.NewRateLimitStore(client, cfg.RateLimit.Requests, cfg.RateLimit.Window)
		checks["redis"] = redisdb.HealthCheck(client)
		log.Info().Str("addr", cfg.Redis.Addr).Msg("connected to redis")
	} else {
		revoker = memory.NewTokenRevoker()
		limiter = middleware.NewMemoryRateLimitStore(cfg.RateLimit.Requests, cfg.RateLimit.Window)
	}

	// --- Media storage ---
	var files ports.FileStore
	var uploadDir, uploadURL string
	switch cfg.Storage.Driver {
	case config.DriverMinio:
		store, err := storage.NewMinioStore(ctx, storage.MinioConfig{
			Endpoint:  cfg.Minio.Endpoint,
			AccessKey: cfg.Minio.AccessKey,
			SecretKey: cfg.Minio.SecretKey,
			UseSSL:    cfg.Minio.UseSSL,
			Bucket:    cfg.Minio.Bucket,
			PublicURL: cfg.Minio.PublicURL,
		})
		if err != nil {
			return err
		}
		files = store
		checks["minio"] = store.Ping
	case config.DriverLocal:
		store, err := storage.NewLocalStore(cfg.Storage.UploadDir, cfg.Storage.BaseURL)
		if err != nil {
			return err
		}
		files = store
		uploadDir, uploadURL = cfg.Storage.UploadDir, cfg.Storage.BaseURL
	default:
		files = memory.NewFileStore(cfg.Storage.BaseURL)
	}

	// --- Services ---
	tokens := service.NewTokenService(service.TokenConfig{
		Secret:     cfg.JWT.Secret,
		Issuer:     cfg.JWT.Issuer,
		AccessTTL:  cfg.JWT.AccessTTL,
		RefreshTTL: cfg.JWT.RefreshTTL,
	})
	authSvc := service.NewAuthService(repos.users, tokens, revoker, logger.Component("auth"))
	if cfg.Bootstrap.Enabled() {
		if _, err := authSvc.EnsureAdmin(ctx, ports.RegisterInput{
			Username:  cfg.Bootstrap.AdminUsername,
			Email:     cfg.Bootstrap.AdminEmail,
			Password:  cfg.Bootstrap.AdminPassword,
			FirstName: "Admin",
		}); err != nil {
			return fmt.Errorf("bootstrap admin: %w", err)
		}
	}
	postSvc := service.NewPostService(repos.posts, repos.categories, repos.comments, logger.Component("posts"))

	if cfg.SearchEnabled() {
		client, err := elastic.NewClient(elastic.Config{
			Addresses: cfg.Elastic.Addresses,
			Username:  cfg.Elastic.Username,
			Password:  cfg.Elastic.Password,
		})
		if err != nil {
			return err
		}
		index := elastic.NewPostIndex(client, cfg.Elastic.PostIndex)
		if err := index.EnsureIndex(ctx); err != nil {
			return err
		}
		dispatcher := queue.NewDispatcher(cfg.Elastic.Workers, repos.posts, index, logger.Component("indexer"))
		dispatcher.Start(ctx)
		postSvc = postSvc.WithSearch(index, dispatcher)
		checks["elasticsearch"] = index.Ping
		log.Info().Str("index", cfg.Elastic.PostIndex).Int("workers", cfg.Elastic.Workers).Msg("post search enabled")
	}

	e := api.NewRouter(api.Services{
		Auth:          authSvc,
		Authenticator: authSvc,
		Users:         service.NewUserService(repos.users, logger.Component("users")),
		Posts:         postSvc,
		Pages:         service.NewPageService(repos.pages, logger.Component("pages")),
		Categories:    service.NewCategoryService(repos.categories, repos.posts, logger.Component("categories")),
		Media:         service.NewMediaService(repos.media, files, cfg.Storage.MaxFileSize, logger.Component("media")),
		Comments:      service.NewCommentService(repos.comments, repos.posts, logger.Component("comments")),
	}, api.Options{
		Env:            cfg.Env,
		CORSOrigins:    cfg.CORSOrigins,
		BodyLimit:      cfg.BodyLimit,
		RateLimitStore: limiter,
		UploadDir:      uploadDir,
		UploadURL:      uploadURL,
		HealthChecks:   checks,
	}, logger.Component("http"))

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           e,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	serverErrors := make(chan error, 1)
	go func() {
		log.Info().Str("addr", srv.Addr).Str("env", cfg.Env).Msg("http server listening")
		serverErrors <- srv.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("http server: %w", err)
	case <-ctx.Done():
		log.Info().Msg("shutdown signal received")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown: %w", err)
	}
	return nil
}
