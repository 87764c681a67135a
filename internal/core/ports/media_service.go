package ports

import (
	"context"
	"io"

	"github.com/inkpress/cms-backend/internal/core/domain"
)

type ListMediaInput struct {
	Type       string `validate:"omitempty,oneof=image video audio document other"`
	Folder     string
	UploadedBy string
	Search     string
	domain.ListOptions
}

// UploadMediaInput carries one multipart file plus its descriptive fields.
// Tags is the comma separated form sent by upload forms.
type UploadMediaInput struct {
	FileName    string    `json:"originalName" validate:"required,max=255"`
	ContentType string    `json:"mimetype"`
	Size        int64     `json:"size"`
	Body        io.Reader `json:"-"`
	Alt         string    `json:"alt" validate:"omitempty,max=200"`
	Caption     string    `json:"caption" validate:"omitempty,max=500"`
	Description string    `json:"description" validate:"omitempty,max=1000"`
	Tags        string    `json:"tags" validate:"omitempty,max=500"`
	Folder      string    `json:"folder" validate:"omitempty,max=100,folder"`
	IsPublic    *bool     `json:"isPublic"`
}

type UpdateMediaInput struct {
	Alt         *string   `json:"alt" validate:"omitempty,max=200"`
	Caption     *string   `json:"caption" validate:"omitempty,max=500"`
	Description *string   `json:"description" validate:"omitempty,max=1000"`
	Tags        *[]string `json:"tags" validate:"omitempty,max=20,dive,max=30"`
	Folder      *string   `json:"folder" validate:"omitempty,min=1,max=100,folder"`
	IsPublic    *bool     `json:"isPublic"`
}

type MediaService interface {
	Upload(ctx context.Context, p domain.Principal, input UploadMediaInput) (*domain.Media, error)
	List(ctx context.Context, input ListMediaInput) (*domain.ListResult[*domain.Media], error)
	GetByID(ctx context.Context, id string) (*domain.Media, error)
	Update(ctx context.Context, p domain.Principal, id string, input UpdateMediaInput) (*domain.Media, error)
	Delete(ctx context.Context, p domain.Principal, id string) error
}
