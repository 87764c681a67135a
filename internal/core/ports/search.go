package ports

import (
	"context"

	"github.com/inkpress/cms-backend/internal/core/domain"
)

// PostSearcher runs full-text queries and returns matching post IDs by relevance.
type PostSearcher interface {
	SearchPosts(ctx context.Context, query string, limit int) ([]string, error)
}

// PostIndexer writes posts to the search index.
type PostIndexer interface {
	IndexPost(ctx context.Context, post *domain.Post) error
	DeletePost(ctx context.Context, id string) error
}

// IndexOp is the kind of search index change requested for a post.
type IndexOp string

const (
	IndexUpsert IndexOp = "upsert"
	IndexDelete IndexOp = "delete"
)

// IndexJob asks the background workers to sync one post with the index.
type IndexJob struct {
	PostID string
	Op     IndexOp
}

// IndexQueue accepts index jobs without blocking the request path.
type IndexQueue interface {
	Enqueue(job IndexJob)
}
