package handler

import (
	"bytes"
	"context"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/inkpress/cms-backend/internal/core/domain"
	"github.com/inkpress/cms-backend/internal/core/ports"
)

type stubMediaService struct {
	ports.MediaService
	uploadFn func(ctx context.Context, p domain.Principal, input ports.UploadMediaInput) (*domain.Media, error)
	listFn   func(ctx context.Context, input ports.ListMediaInput) (*domain.ListResult[*domain.Media], error)
}

func (s *stubMediaService) Upload(ctx context.Context, p domain.Principal, input ports.UploadMediaInput) (*domain.Media, error) {
	return s.uploadFn(ctx, p, input)
}

func (s *stubMediaService) List(ctx context.Context, input ports.ListMediaInput) (*domain.ListResult[*domain.Media], error) {
	return s.listFn(ctx, input)
}

func multipartRequest(t *testing.T, fields map[string]string, fileName string, content []byte) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for k, v := range fields {
		if err := w.WriteField(k, v); err != nil {
			t.Fatalf("write field: %v", err)
		}
	}
	if fileName != "" {
		part, err := w.CreateFormFile(uploadField, fileName)
		if err != nil {
			t.Fatalf("create form file: %v", err)
		}
		if _, err := part.Write(content); err != nil {
			t.Fatalf("write file: %v", err)
		}
	}
	if err := w.Close(); err != nil {
		t.Fatalf("close writer: %v", err)
	}

	req := httptest.NewRequest(http.MethodPost, "/api/media/upload", &buf)
	req.Header.Set(echo.HeaderContentType, w.FormDataContentType())
	return req
}

func TestMediaHandler_Upload(t *testing.T) {
	e := echo.New()
	png := []byte("\x89PNG\r\n\x1a\n0000")
	stub := &stubMediaService{
		uploadFn: func(ctx context.Context, p domain.Principal, input ports.UploadMediaInput) (*domain.Media, error) {
			if input.FileName != "cat.png" || input.Size != int64(len(png)) {
				t.Fatalf("unexpected file: %s %d", input.FileName, input.Size)
			}
			if input.Alt != "a cat" || input.Tags != "pets, cats" || input.Folder != "animals" {
				t.Fatalf("unexpected fields: %+v", input)
			}
			if input.IsPublic == nil || *input.IsPublic {
				t.Fatalf("expected isPublic=false")
			}
			body, err := io.ReadAll(input.Body)
			if err != nil || !bytes.Equal(body, png) {
				t.Fatalf("body not forwarded: %v", err)
			}
			return &domain.Media{ID: "m1", OriginalName: input.FileName, Type: domain.MediaImage, Size: input.Size, UploadedBy: p.ID}, nil
		},
	}

	req := multipartRequest(t, map[string]string{
		"alt": "a cat", "tags": "pets, cats", "folder": "animals", "isPublic": "false",
	}, "cat.png", png)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	withSession(c, domain.Principal{ID: "viewer-1", Role: domain.RoleViewer})

	if err := NewMediaHandler(stub).Upload(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rec.Code)
	}
	data := decodeEnvelope(t, rec)["data"].(map[string]any)
	if data["uploadedBy"] != "viewer-1" || data["type"] != "image" {
		t.Fatalf("unexpected payload: %+v", data)
	}
}

func TestMediaHandler_Upload_NoFile(t *testing.T) {
	e := echo.New()
	stub := &stubMediaService{
		uploadFn: func(ctx context.Context, p domain.Principal, input ports.UploadMediaInput) (*domain.Media, error) {
			t.Fatalf("service should not be called")
			return nil, nil
		},
	}

	c := e.NewContext(multipartRequest(t, map[string]string{"alt": "x"}, "", nil), httptest.NewRecorder())
	withSession(c, domain.Principal{ID: "viewer-1", Role: domain.RoleViewer})

	if err := NewMediaHandler(stub).Upload(c); !errors.Is(err, domain.ErrFileRequired) {
		t.Fatalf("expected ErrFileRequired, got %v", err)
	}
}

func TestMediaHandler_ListByType_UsesPathParam(t *testing.T) {
	e := echo.New()
	stub := &stubMediaService{
		listFn: func(ctx context.Context, input ports.ListMediaInput) (*domain.ListResult[*domain.Media], error) {
			if input.Type != "video" || input.Search != "intro" {
				t.Fatalf("unexpected input: %+v", input)
			}
			return domain.NewListResult[*domain.Media](nil, 0, input.ListOptions), nil
		},
	}

	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/?type=image&search=intro", nil), rec)
	c.SetParamNames("type")
	c.SetParamValues("video")

	if err := NewMediaHandler(stub).ListByType(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	data := decodeEnvelope(t, rec)["data"].(map[string]any)
	if items, ok := data["data"].([]any); !ok || len(items) != 0 {
		t.Fatalf("expected empty list, got %v", data["data"])
	}
}
