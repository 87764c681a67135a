package service

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/inkpress/cms-backend/internal/core/domain"
	"github.com/inkpress/cms-backend/internal/core/ports"
	"github.com/inkpress/cms-backend/internal/core/validation"
)

const (
	defaultFeaturedLimit = 5
	maxSearchHits        = 500
)

var postSortFields = map[string]bool{
	"createdAt": true, "updatedAt": true, "publishedAt": true, "title": true, "views": true,
}

type PostService struct {
	posts      ports.PostRepository
	categories ports.CategoryRepository
	comments   ports.CommentRepository
	searcher   ports.PostSearcher
	index      ports.IndexQueue
	logger     zerolog.Logger
}

func NewPostService(posts ports.PostRepository, categories ports.CategoryRepository, comments ports.CommentRepository, logger zerolog.Logger) *PostService {
	return &PostService{posts: posts, categories: categories, comments: comments, logger: logger}
}

// WithSearch routes free-text queries to searcher and publishes index
// changes to queue. Without it, search falls back to the repository.
func (s *PostService) WithSearch(searcher ports.PostSearcher, queue ports.IndexQueue) *PostService {
	s.searcher = searcher
	s.index = queue
	return s
}

func (s *PostService) List(ctx context.Context, input ports.ListPostsInput) (*domain.ListResult[*domain.Post], error) {
	if err := validation.Struct(input); err != nil {
		return nil, err
	}

	filter := ports.PostFilter{
		Status:      domain.PostStatus(input.Status),
		AuthorID:    input.AuthorID,
		CategoryID:  input.CategoryID,
		Tag:         strings.ToLower(strings.TrimSpace(input.Tag)),
		Search:      strings.TrimSpace(input.Search),
		Featured:    input.Featured,
		ListOptions: sortable(input.ListOptions, postSortFields, "createdAt", true),
	}
	return s.list(ctx, filter)
}

func (s *PostService) ListPublished(ctx context.Context, input ports.ListPostsInput) (*domain.ListResult[*domain.Post], error) {
	input.Status = string(domain.PostPublished)
	if input.SortBy == "" {
		input.SortBy, input.SortDesc = "publishedAt", true
	}
	return s.List(ctx, input)
}

func (s *PostService) Featured(ctx context.Context, limit int) ([]*domain.Post, error) {
	if limit <= 0 {
		limit = defaultFeaturedLimit
	}
	featured := true
	res, err := s.List(ctx, ports.ListPostsInput{
		Status:      string(domain.PostPublished),
		Featured:    &featured,
		ListOptions: domain.ListOptions{Page: 1, Limit: limit, SortBy: "publishedAt", SortDesc: true},
	})
	if err != nil {
		return nil, err
	}
	return res.Items, nil
}

func (s *PostService) list(ctx context.Context, filter ports.PostFilter) (*domain.ListResult[*domain.Post], error) {
	if filter.Search != "" && s.searcher != nil {
		ids, err := s.searcher.SearchPosts(ctx, filter.Search, maxSearchHits)
		if err != nil {
			s.logger.Warn().Err(err).Msg("search index unavailable, falling back to database search")
		} else {
			if len(ids) == 0 {
				return domain.NewListResult[*domain.Post](nil, 0, filter.ListOptions), nil
			}
			filter.IDs = ids
			filter.Search = ""
		}
	}

	posts, total, err := s.posts.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	return domain.NewListResult(posts, total, filter.ListOptions), nil
}

func (s *PostService) GetByID(ctx context.Context, id string) (*domain.Post, error) {
	return s.posts.FindByID(ctx, id)
}

// GetBySlug hides unpublished posts from callers who could not edit them.
func (s *PostService) GetBySlug(ctx context.Context, p *domain.Principal, slug string) (*domain.Post, error) {
	post, err := s.posts.FindBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}

	if post.Status != domain.PostPublished {
		if p == nil || domain.Authorize(*p, domain.ActionPostUpdate, post.AuthorID) != nil {
			return nil, domain.ErrPostNotFound
		}
		return post, nil
	}

	if err := s.posts.IncrementViews(ctx, post.ID); err != nil {
		s.logger.Warn().Err(err).Str("post_id", post.ID).Msg("view count not recorded")
	} else {
		post.Views++
	}
	return post, nil
}

func (s *PostService) Create(ctx context.Context, p domain.Principal, input ports.CreatePostInput) (*domain.Post, error) {
	if err := domain.Authorize(p, domain.ActionPostCreate, ""); err != nil {
		return nil, err
	}
	input.Title = strings.TrimSpace(input.Title)
	input.Excerpt = strings.TrimSpace(input.Excerpt)
	input.SEOTitle = strings.TrimSpace(input.SEOTitle)
	input.SEODescription = strings.TrimSpace(input.SEODescription)
	if err := validation.Struct(input); err != nil {
		return nil, err
	}
	if err := s.checkCategories(ctx, input.Categories); err != nil {
		return nil, err
	}

	slug, err := uniqueSlug(ctx, input.Title, "", s.posts.SlugExists)
	if err != nil {
		return nil, err
	}

	status := domain.PostStatus(input.Status)
	if status == "" {
		status = domain.PostDraft
	}
	now := time.Now().UTC()
	post := &domain.Post{
		Title:         input.Title,
		Slug:          slug,
		Content:       input.Content,
		Excerpt:       input.Excerpt,
		FeaturedImage: input.FeaturedImage,
		Status:        status,
		Categories:    dedupe(input.Categories),
		Tags:          normalizeTags(input.Tags),
		AuthorID:      p.ID,
		IsFeatured:    input.IsFeatured,
		Likes:         []string{},
		SEO: domain.SEO{
			Title:       input.SEOTitle,
			Description: input.SEODescription,
			Keywords:    input.SEOKeywords,
		},
		CreatedAt: now,
		UpdatedAt: now,
	}
	publishStamp(post.Status == domain.PostPublished, &post.PublishedAt)

	if err := s.posts.Create(ctx, post); err != nil {
		return nil, err
	}
	s.enqueue(post.ID, ports.IndexUpsert)

	s.logger.Info().Str("post_id", post.ID).Str("author_id", p.ID).Str("status", string(post.Status)).Msg("post created")
	return post, nil
}

// Update authorizes against the stored post, so ownership is always judged
// on the pre-update author.
func (s *PostService) Update(ctx context.Context, p domain.Principal, id string, input ports.UpdatePostInput) (*domain.Post, error) {
	post, err := s.posts.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := domain.Authorize(p, domain.ActionPostUpdate, post.AuthorID); err != nil {
		return nil, err
	}

	trimPtr(input.Title)
	trimPtr(input.Excerpt)
	trimPtr(input.SEOTitle)
	trimPtr(input.SEODescription)
	if err := validation.Struct(input); err != nil {
		return nil, err
	}

	if input.Title != nil && *input.Title != post.Title {
		slug, err := uniqueSlug(ctx, *input.Title, post.ID, s.posts.SlugExists)
		if err != nil {
			return nil, err
		}
		post.Title, post.Slug = *input.Title, slug
	}
	if input.Content != nil {
		post.Content = *input.Content
	}
	if input.Excerpt != nil {
		post.Excerpt = *input.Excerpt
	}
	if input.FeaturedImage != nil {
		post.FeaturedImage = *input.FeaturedImage
	}
	if input.Status != nil {
		post.Status = domain.PostStatus(*input.Status)
	}
	if input.Categories != nil {
		if err := s.checkCategories(ctx, *input.Categories); err != nil {
			return nil, err
		}
		post.Categories = dedupe(*input.Categories)
	}
	if input.Tags != nil {
		post.Tags = normalizeTags(*input.Tags)
	}
	if input.IsFeatured != nil {
		post.IsFeatured = *input.IsFeatured
	}
	if input.SEOTitle != nil {
		post.SEO.Title = *input.SEOTitle
	}
	if input.SEODescription != nil {
		post.SEO.Description = *input.SEODescription
	}
	if input.SEOKeywords != nil {
		post.SEO.Keywords = *input.SEOKeywords
	}
	publishStamp(post.Status == domain.PostPublished, &post.PublishedAt)
	post.UpdatedAt = time.Now().UTC()

	if err := s.posts.Update(ctx, post); err != nil {
		return nil, err
	}
	s.enqueue(post.ID, ports.IndexUpsert)
	return post, nil
}

func (s *PostService) Delete(ctx context.Context, p domain.Principal, id string) error {
	post, err := s.posts.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if err := domain.Authorize(p, domain.ActionPostDelete, post.AuthorID); err != nil {
		return err
	}
	if err := s.posts.Delete(ctx, id); err != nil {
		return err
	}

	if n, err := s.comments.DeleteByPost(ctx, id); err != nil {
		s.logger.Warn().Err(err).Str("post_id", id).Msg("comments of deleted post not removed")
	} else if n > 0 {
		s.logger.Debug().Str("post_id", id).Int64("comments", n).Msg("comments removed with post")
	}
	s.enqueue(id, ports.IndexDelete)

	s.logger.Info().Str("post_id", id).Str("by", p.ID).Msg("post deleted")
	return nil
}

func (s *PostService) Like(ctx context.Context, p domain.Principal, id string) (*domain.Post, error) {
	return s.toggleLike(ctx, p, id, true)
}

func (s *PostService) Unlike(ctx context.Context, p domain.Principal, id string) (*domain.Post, error) {
	return s.toggleLike(ctx, p, id, false)
}

func (s *PostService) toggleLike(ctx context.Context, p domain.Principal, id string, like bool) (*domain.Post, error) {
	if _, err := s.posts.FindByID(ctx, id); err != nil {
		return nil, err
	}
	if err := domain.Authorize(p, domain.ActionPostLike, ""); err != nil {
		return nil, err
	}

	var changed bool
	var err error
	if like {
		changed, err = s.posts.AddLike(ctx, id, p.ID)
	} else {
		changed, err = s.posts.RemoveLike(ctx, id, p.ID)
	}
	if err != nil {
		return nil, err
	}
	if !changed {
		if like {
			return nil, domain.ErrAlreadyLiked
		}
		return nil, domain.ErrNotLiked
	}
	return s.posts.FindByID(ctx, id)
}

func (s *PostService) checkCategories(ctx context.Context, ids []string) error {
	for i, id := range ids {
		if _, err := s.categories.FindByID(ctx, id); err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return domain.NewValidationError(categoryField(i), "category "+id+" does not exist")
			}
			return err
		}
	}
	return nil
}

func (s *PostService) enqueue(id string, op ports.IndexOp) {
	if s.index != nil {
		s.index.Enqueue(ports.IndexJob{PostID: id, Op: op})
	}
}

func categoryField(i int) string {
	return "categories[" + strconv.Itoa(i) + "]"
}

func dedupe(ids []string) []string {
	out := make([]string, 0, len(ids))
	seen := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
