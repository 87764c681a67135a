package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/inkpress/cms-backend/internal/api/response"
	"github.com/inkpress/cms-backend/internal/core/domain"
	"github.com/inkpress/cms-backend/internal/core/ports"
	"github.com/inkpress/cms-backend/internal/pkg/metrics"
)

// uploadField is the multipart field carrying the file.
const uploadField = "file"

type MediaHandler struct {
	service ports.MediaService
}

func NewMediaHandler(service ports.MediaService) *MediaHandler {
	return &MediaHandler{service: service}
}

func mediaListInput(c echo.Context, mediaType string) ports.ListMediaInput {
	return ports.ListMediaInput{
		Type:        mediaType,
		Folder:      c.QueryParam("folder"),
		UploadedBy:  c.QueryParam("uploadedBy"),
		Search:      c.QueryParam("search"),
		ListOptions: listOptions(c),
	}
}

// List handles GET /media.
//
// @Summary      List media
// @Tags         media
// @Produce      json
// @Security     BearerAuth
// @Param        page        query     int     false  "Page number"
// @Param        limit       query     int     false  "Page size (max 100)"
// @Param        type        query     string  false  "image, video, audio, document or other"
// @Param        folder      query     string  false  "Folder"
// @Param        uploadedBy  query     string  false  "Uploader ID"
// @Param        search      query     string  false  "Match name, alt, caption or tags"
// @Success      200         {object}  response.Envelope{data=response.Page[domain.Media]}
// @Failure      400         {object}  response.Envelope
// @Router       /media [get]
func (h *MediaHandler) List(c echo.Context) error {
	result, err := h.service.List(c.Request().Context(), mediaListInput(c, c.QueryParam("type")))
	if err != nil {
		return err
	}
	return response.Paginated(c, "Media files retrieved successfully", result)
}

// ListByType handles GET /media/type/:type.
//
// @Summary      List media of one type
// @Tags         media
// @Produce      json
// @Security     BearerAuth
// @Param        type   path      string  true   "image, video, audio, document or other"
// @Param        page   query     int     false  "Page number"
// @Param        limit  query     int     false  "Page size (max 100)"
// @Success      200    {object}  response.Envelope{data=response.Page[domain.Media]}
// @Failure      400    {object}  response.Envelope
// @Router       /media/type/{type} [get]
func (h *MediaHandler) ListByType(c echo.Context) error {
	result, err := h.service.List(c.Request().Context(), mediaListInput(c, c.Param("type")))
	if err != nil {
		return err
	}
	return response.Paginated(c, "Media files retrieved successfully", result)
}

// Get handles GET /media/:id.
//
// @Summary      Get a media file
// @Tags         media
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Media ID"
// @Success      200  {object}  response.Envelope{data=domain.Media}
// @Failure      404  {object}  response.Envelope
// @Router       /media/{id} [get]
func (h *MediaHandler) Get(c echo.Context) error {
	m, err := h.service.GetByID(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return response.OK(c, "Media file retrieved successfully", m)
}

// Upload handles POST /media/upload (multipart/form-data).
//
// @Summary      Upload a file
// @Tags         media
// @Accept       multipart/form-data
// @Produce      json
// @Security     BearerAuth
// @Param        file         formData  file    true   "File to upload"
// @Param        alt          formData  string  false  "Alt text"
// @Param        caption      formData  string  false  "Caption"
// @Param        description  formData  string  false  "Description"
// @Param        tags         formData  string  false  "Comma separated tags"
// @Param        folder       formData  string  false  "Folder"
// @Param        isPublic     formData  bool    false  "Publicly listed"
// @Success      201          {object}  response.Envelope{data=domain.Media}
// @Failure      400          {object}  response.Envelope
// @Failure      413          {object}  response.Envelope
// @Router       /media/upload [post]
func (h *MediaHandler) Upload(c echo.Context) error {
	p, err := ctxPrincipal(c)
	if err != nil {
		return err
	}

	fh, err := c.FormFile(uploadField)
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) || errors.Is(err, http.ErrNotMultipart) {
			return domain.ErrFileRequired
		}
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid multipart payload").SetInternal(err)
	}
	file, err := fh.Open()
	if err != nil {
		return err
	}
	defer file.Close()

	input := ports.UploadMediaInput{
		FileName:    fh.Filename,
		ContentType: fh.Header.Get(echo.HeaderContentType),
		Size:        fh.Size,
		Body:        file,
		Alt:         c.FormValue("alt"),
		Caption:     c.FormValue("caption"),
		Description: c.FormValue("description"),
		Tags:        c.FormValue("tags"),
		Folder:      c.FormValue("folder"),
	}
	if v, err := strconv.ParseBool(c.FormValue("isPublic")); err == nil {
		input.IsPublic = &v
	}

	m, err := h.service.Upload(c.Request().Context(), p, input)
	if err != nil {
		return err
	}
	metrics.ContentOperationsTotal.WithLabelValues("media", "create").Inc()
	metrics.MediaUploadedBytes.WithLabelValues(string(m.Type)).Observe(float64(m.Size))
	return response.Created(c, "Media uploaded successfully", m)
}

// Update handles PUT /media/:id.
//
// @Summary      Update media metadata
// @Tags         media
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string                  true  "Media ID"
// @Param        body  body      ports.UpdateMediaInput  true  "Fields to change"
// @Success      200   {object}  response.Envelope{data=domain.Media}
// @Failure      400   {object}  response.Envelope
// @Failure      403   {object}  response.Envelope
// @Failure      404   {object}  response.Envelope
// @Router       /media/{id} [put]
func (h *MediaHandler) Update(c echo.Context) error {
	p, err := ctxPrincipal(c)
	if err != nil {
		return err
	}
	var req ports.UpdateMediaInput
	if err := bindBody(c, &req); err != nil {
		return err
	}

	m, err := h.service.Update(c.Request().Context(), p, c.Param("id"), req)
	if err != nil {
		return err
	}
	metrics.ContentOperationsTotal.WithLabelValues("media", "update").Inc()
	return response.OK(c, "Media updated successfully", m)
}

// Delete handles DELETE /media/:id.
//
// @Summary      Delete a media file
// @Tags         media
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Media ID"
// @Success      200  {object}  response.Envelope
// @Failure      403  {object}  response.Envelope
// @Failure      404  {object}  response.Envelope
// @Router       /media/{id} [delete]
func (h *MediaHandler) Delete(c echo.Context) error {
	p, err := ctxPrincipal(c)
	if err != nil {
		return err
	}

	if err := h.service.Delete(c.Request().Context(), p, c.Param("id")); err != nil {
		return err
	}
	metrics.ContentOperationsTotal.WithLabelValues("media", "delete").Inc()
	return response.OK(c, "Media deleted successfully", nil)
}
