package handler

import (
	"github.com/labstack/echo/v4"

	"github.com/inkpress/cms-backend/internal/api/response"
	"github.com/inkpress/cms-backend/internal/core/ports"
	"github.com/inkpress/cms-backend/internal/pkg/metrics"
)

type CommentHandler struct {
	service ports.CommentService
}

func NewCommentHandler(service ports.CommentService) *CommentHandler {
	return &CommentHandler{service: service}
}

// ListByPost handles GET /posts/:id/comments, newest first.
//
// @Summary      List comments on a post
// @Tags         comments
// @Produce      json
// @Param        id     path      string  true   "Post ID"
// @Param        page   query     int     false  "Page number"
// @Param        limit  query     int     false  "Page size (max 100)"
// @Success      200    {object}  response.Envelope{data=response.Page[domain.Comment]}
// @Failure      404    {object}  response.Envelope
// @Router       /posts/{id}/comments [get]
func (h *CommentHandler) ListByPost(c echo.Context) error {
	result, err := h.service.ListByPost(c.Request().Context(), ctxOptionalPrincipal(c), c.Param("id"), listOptions(c))
	if err != nil {
		return err
	}
	return response.Paginated(c, "Comments retrieved successfully", result)
}

// Create handles POST /posts/:id/comments.
//
// @Summary      Comment on a post
// @Tags         comments
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string              true  "Post ID"
// @Param        body  body      ports.CommentInput  true  "Comment text"
// @Success      201   {object}  response.Envelope{data=domain.Comment}
// @Failure      400   {object}  response.Envelope
// @Failure      404   {object}  response.Envelope
// @Router       /posts/{id}/comments [post]
func (h *CommentHandler) Create(c echo.Context) error {
	p, err := ctxPrincipal(c)
	if err != nil {
		return err
	}
	var req ports.CommentInput
	if err := bindBody(c, &req); err != nil {
		return err
	}

	comment, err := h.service.Create(c.Request().Context(), p, c.Param("id"), req)
	if err != nil {
		return err
	}
	metrics.ContentOperationsTotal.WithLabelValues("comment", "create").Inc()
	return response.Created(c, "Comment added successfully", comment)
}

// Update handles PUT /comments/:id.
//
// @Summary      Edit a comment
// @Tags         comments
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string              true  "Comment ID"
// @Param        body  body      ports.CommentInput  true  "Comment text"
// @Success      200   {object}  response.Envelope{data=domain.Comment}
// @Failure      403   {object}  response.Envelope
// @Failure      404   {object}  response.Envelope
// @Router       /comments/{id} [put]
func (h *CommentHandler) Update(c echo.Context) error {
	p, err := ctxPrincipal(c)
	if err != nil {
		return err
	}
	var req ports.CommentInput
	if err := bindBody(c, &req); err != nil {
		return err
	}

	comment, err := h.service.Update(c.Request().Context(), p, c.Param("id"), req)
	if err != nil {
		return err
	}
	metrics.ContentOperationsTotal.WithLabelValues("comment", "update").Inc()
	return response.OK(c, "Comment updated successfully", comment)
}

// Delete handles DELETE /comments/:id.
//
// @Summary      Delete a comment
// @Tags         comments
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Comment ID"
// @Success      200  {object}  response.Envelope
// @Failure      403  {object}  response.Envelope
// @Failure      404  {object}  response.Envelope
// @Router       /comments/{id} [delete]
func (h *CommentHandler) Delete(c echo.Context) error {
	p, err := ctxPrincipal(c)
	if err != nil {
		return err
	}

	if err := h.service.Delete(c.Request().Context(), p, c.Param("id")); err != nil {
		return err
	}
	metrics.ContentOperationsTotal.WithLabelValues("comment", "delete").Inc()
	return response.OK(c, "Comment deleted successfully", nil)
}
