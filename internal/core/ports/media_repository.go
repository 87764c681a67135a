package ports

import (
	"context"
	"io"

	"github.com/inkpress/cms-backend/internal/core/domain"
)

type MediaFilter struct {
	Type       domain.MediaType
	Folder     string
	UploadedBy string
	Search     string
	domain.ListOptions
}

type MediaRepository interface {
	Create(ctx context.Context, media *domain.Media) error
	FindByID(ctx context.Context, id string) (*domain.Media, error)
	Update(ctx context.Context, media *domain.Media) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, filter MediaFilter) ([]*domain.Media, int64, error)
}

// StoredObject describes a file accepted by a FileStore.
type StoredObject struct {
	Key string
	URL string
}

// FileStore persists uploaded file bodies.
type FileStore interface {
	Put(ctx context.Context, key string, body io.Reader, size int64, contentType string) (*StoredObject, error)
	Delete(ctx context.Context, key string) error
}
