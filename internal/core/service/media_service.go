package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"path"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/inkpress/cms-backend/internal/core/domain"
	"github.com/inkpress/cms-backend/internal/core/ports"
	"github.com/inkpress/cms-backend/internal/core/validation"
)

const (
	DefaultMaxFileSize = 5 << 20
	defaultFolder      = "uploads"
	sniffLen           = 3072
)

// allowedMIME is the upload allow-list, grouped by media type.
var allowedMIME = map[string]domain.MediaType{
	"image/jpeg": domain.MediaImage,
	"image/jpg":  domain.MediaImage,
	"image/png":  domain.MediaImage,
	"image/gif":  domain.MediaImage,
	"image/webp": domain.MediaImage,

	"video/mp4":       domain.MediaVideo,
	"video/mpeg":      domain.MediaVideo,
	"video/quicktime": domain.MediaVideo,

	"audio/mpeg": domain.MediaAudio,
	"audio/wav":  domain.MediaAudio,
	"audio/mp3":  domain.MediaAudio,

	"application/pdf":    domain.MediaDocument,
	"application/msword": domain.MediaDocument,
	"application/vnd.openxmlformats-officedocument.wordprocessingml.document": domain.MediaDocument,
	"application/vnd.ms-excel": domain.MediaDocument,
	"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet": domain.MediaDocument,
	"text/plain": domain.MediaDocument,
	"text/csv":   domain.MediaDocument,
}

var mediaSortFields = map[string]bool{
	"createdAt": true, "updatedAt": true, "size": true, "originalName": true,
}

// MediaService stores uploaded files through a FileStore and keeps their
// metadata in the media repository.
type MediaService struct {
	media   ports.MediaRepository
	files   ports.FileStore
	maxSize int64
	logger  zerolog.Logger
}

func NewMediaService(media ports.MediaRepository, files ports.FileStore, maxSize int64, logger zerolog.Logger) *MediaService {
	if maxSize <= 0 {
		maxSize = DefaultMaxFileSize
	}
	return &MediaService{media: media, files: files, maxSize: maxSize, logger: logger}
}

// MaxFileSize is the largest accepted upload in bytes.
func (s *MediaService) MaxFileSize() int64 { return s.maxSize }

// Upload writes the file body before the metadata row. When the metadata
// write fails the stored object is left in place.
func (s *MediaService) Upload(ctx context.Context, p domain.Principal, input ports.UploadMediaInput) (*domain.Media, error) {
	if err := domain.Authorize(p, domain.ActionMediaUpload, ""); err != nil {
		return nil, err
	}
	if input.Body == nil {
		return nil, domain.ErrFileRequired
	}
	input.FileName = strings.TrimSpace(input.FileName)
	input.Alt = strings.TrimSpace(input.Alt)
	input.Caption = strings.TrimSpace(input.Caption)
	input.Description = strings.TrimSpace(input.Description)
	input.Folder = strings.Trim(strings.TrimSpace(input.Folder), "/")
	if err := validation.Struct(input); err != nil {
		return nil, err
	}
	if input.Size > s.maxSize {
		return nil, domain.ErrFileTooLarge.WithMessage(
			fmt.Sprintf("File too large. Maximum size allowed is %s", humanSize(s.maxSize)))
	}

	body := input.Body
	contentType := normalizeMIME(input.ContentType)
	if contentType == "" || contentType == "application/octet-stream" {
		var err error
		contentType, body, err = sniffMIME(body)
		if err != nil {
			return nil, fmt.Errorf("read upload: %w", err)
		}
	}
	mediaType, ok := allowedMIME[contentType]
	if !ok {
		return nil, domain.ErrFileTypeRejected.WithMessage(
			"Invalid file type. Allowed types: images, videos, audio files, and documents")
	}

	folder := input.Folder
	if folder == "" {
		folder = defaultFolder
	}
	key := path.Join(folder, uuid.NewString()+strings.ToLower(path.Ext(input.FileName)))

	stored, err := s.files.Put(ctx, key, body, input.Size, contentType)
	if err != nil {
		return nil, fmt.Errorf("store upload: %w", err)
	}

	isPublic := true
	if input.IsPublic != nil {
		isPublic = *input.IsPublic
	}
	now := time.Now().UTC()
	m := &domain.Media{
		Filename:     path.Base(stored.Key),
		OriginalName: input.FileName,
		MimeType:     contentType,
		Size:         input.Size,
		Key:          stored.Key,
		URL:          stored.URL,
		Alt:          input.Alt,
		Caption:      input.Caption,
		Description:  input.Description,
		Type:         mediaType,
		UploadedBy:   p.ID,
		Tags:         splitTags(input.Tags),
		Folder:       folder,
		IsPublic:     isPublic,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.media.Create(ctx, m); err != nil {
		s.logger.Warn().Err(err).Str("key", stored.Key).Msg("media metadata write failed, stored file left in place")
		return nil, err
	}

	s.logger.Info().Str("media_id", m.ID).Str("type", string(m.Type)).Int64("size", m.Size).Msg("media uploaded")
	return m, nil
}

func (s *MediaService) List(ctx context.Context, input ports.ListMediaInput) (*domain.ListResult[*domain.Media], error) {
	if err := validation.Struct(input); err != nil {
		return nil, err
	}
	filter := ports.MediaFilter{
		Type:        domain.MediaType(input.Type),
		Folder:      input.Folder,
		UploadedBy:  input.UploadedBy,
		Search:      strings.TrimSpace(input.Search),
		ListOptions: sortable(input.ListOptions, mediaSortFields, "createdAt", true),
	}
	items, total, err := s.media.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	return domain.NewListResult(items, total, filter.ListOptions), nil
}

func (s *MediaService) GetByID(ctx context.Context, id string) (*domain.Media, error) {
	return s.media.FindByID(ctx, id)
}

func (s *MediaService) Update(ctx context.Context, p domain.Principal, id string, input ports.UpdateMediaInput) (*domain.Media, error) {
	m, err := s.media.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := domain.Authorize(p, domain.ActionMediaUpdate, m.UploadedBy); err != nil {
		return nil, err
	}

	trimPtr(input.Alt)
	trimPtr(input.Caption)
	trimPtr(input.Description)
	trimPtr(input.Folder)
	if err := validation.Struct(input); err != nil {
		return nil, err
	}

	if input.Alt != nil {
		m.Alt = *input.Alt
	}
	if input.Caption != nil {
		m.Caption = *input.Caption
	}
	if input.Description != nil {
		m.Description = *input.Description
	}
	if input.Tags != nil {
		m.Tags = normalizeTags(*input.Tags)
	}
	if input.Folder != nil {
		m.Folder = *input.Folder
	}
	if input.IsPublic != nil {
		m.IsPublic = *input.IsPublic
	}
	m.UpdatedAt = time.Now().UTC()

	if err := s.media.Update(ctx, m); err != nil {
		return nil, err
	}
	return m, nil
}

// Delete removes the stored object first; a storage failure is logged and
// the metadata row is removed anyway.
func (s *MediaService) Delete(ctx context.Context, p domain.Principal, id string) error {
	m, err := s.media.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if err := domain.Authorize(p, domain.ActionMediaDelete, m.UploadedBy); err != nil {
		return err
	}

	if err := s.files.Delete(ctx, m.Key); err != nil {
		s.logger.Warn().Err(err).Str("media_id", id).Str("key", m.Key).Msg("stored file not removed")
	}
	if err := s.media.Delete(ctx, id); err != nil {
		return err
	}

	s.logger.Info().Str("media_id", id).Str("by", p.ID).Msg("media deleted")
	return nil
}

// MediaTypeOf classifies a MIME type, reporting false when it is not allowed.
func MediaTypeOf(contentType string) (domain.MediaType, bool) {
	t, ok := allowedMIME[normalizeMIME(contentType)]
	return t, ok
}

func normalizeMIME(contentType string) string {
	if contentType == "" {
		return ""
	}
	mt, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return strings.ToLower(strings.TrimSpace(contentType))
	}
	return mt
}

// sniffMIME detects the content type from the leading bytes and returns a
// reader that still yields the whole body.
func sniffMIME(body io.Reader) (string, io.Reader, error) {
	head := make([]byte, sniffLen)
	n, err := io.ReadFull(body, head)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return "", nil, err
	}
	head = head[:n]
	detected := normalizeMIME(mimetype.Detect(head).String())
	return detected, io.MultiReader(bytes.NewReader(head), body), nil
}

func humanSize(n int64) string {
	const mb = 1 << 20
	if n%mb == 0 {
		return fmt.Sprintf("%dMB", n/mb)
	}
	return fmt.Sprintf("%.1fMB", float64(n)/mb)
}
