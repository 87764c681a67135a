package handler

import (
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/inkpress/cms-backend/internal/api/response"
	"github.com/inkpress/cms-backend/internal/core/ports"
	"github.com/inkpress/cms-backend/internal/pkg/metrics"
)

type CategoryHandler struct {
	service ports.CategoryService
}

func NewCategoryHandler(service ports.CategoryService) *CategoryHandler {
	return &CategoryHandler{service: service}
}

// List handles GET /categories. parentCategory=null selects root categories.
//
// @Summary      List categories
// @Tags         categories
// @Produce      json
// @Param        page            query     int     false  "Page number"
// @Param        limit           query     int     false  "Page size (max 100)"
// @Param        isActive        query     bool    false  "Filter by status"
// @Param        parentCategory  query     string  false  "Parent ID, or null for root categories"
// @Param        search          query     string  false  "Match name or description"
// @Param        sortBy          query     string  false  "Sort field"
// @Param        sortOrder       query     string  false  "asc or desc"
// @Success      200             {object}  response.Envelope{data=response.Page[domain.Category]}
// @Router       /categories [get]
func (h *CategoryHandler) List(c echo.Context) error {
	input := ports.ListCategoriesInput{
		IsActive:    queryBool(c, "isActive"),
		Search:      c.QueryParam("search"),
		ListOptions: listOptions(c),
	}
	switch parent := strings.TrimSpace(c.QueryParam("parentCategory")); strings.ToLower(parent) {
	case "":
	case "null", "none":
		input.RootOnly = true
	default:
		input.ParentID = parent
	}

	result, err := h.service.List(c.Request().Context(), input)
	if err != nil {
		return err
	}
	return response.Paginated(c, "Categories retrieved successfully", result)
}

// Get handles GET /categories/:id.
//
// @Summary      Get a category
// @Tags         categories
// @Produce      json
// @Param        id   path      string  true  "Category ID"
// @Success      200  {object}  response.Envelope{data=domain.Category}
// @Failure      404  {object}  response.Envelope
// @Router       /categories/{id} [get]
func (h *CategoryHandler) Get(c echo.Context) error {
	category, err := h.service.GetByID(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return response.OK(c, "Category retrieved successfully", category)
}

// GetBySlug handles GET /categories/slug/:slug.
//
// @Summary      Get a category by slug
// @Tags         categories
// @Produce      json
// @Param        slug  path      string  true  "Category slug"
// @Success      200   {object}  response.Envelope{data=domain.Category}
// @Failure      404   {object}  response.Envelope
// @Router       /categories/slug/{slug} [get]
func (h *CategoryHandler) GetBySlug(c echo.Context) error {
	category, err := h.service.GetBySlug(c.Request().Context(), c.Param("slug"))
	if err != nil {
		return err
	}
	return response.OK(c, "Category retrieved successfully", category)
}

// Posts handles GET /categories/:id/posts.
//
// @Summary      Published posts in a category
// @Tags         categories
// @Produce      json
// @Param        id     path      string  true   "Category ID"
// @Param        page   query     int     false  "Page number"
// @Param        limit  query     int     false  "Page size (max 100)"
// @Success      200    {object}  response.Envelope{data=response.Page[domain.Post]}
// @Failure      404    {object}  response.Envelope
// @Router       /categories/{id}/posts [get]
func (h *CategoryHandler) Posts(c echo.Context) error {
	result, err := h.service.Posts(c.Request().Context(), c.Param("id"), listOptions(c))
	if err != nil {
		return err
	}
	return response.Paginated(c, "Category posts retrieved successfully", result)
}

// Create handles POST /categories.
//
// @Summary      Create a category
// @Tags         categories
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      ports.CreateCategoryInput  true  "Category"
// @Success      201   {object}  response.Envelope{data=domain.Category}
// @Failure      400   {object}  response.Envelope
// @Failure      403   {object}  response.Envelope
// @Failure      409   {object}  response.Envelope
// @Router       /categories [post]
func (h *CategoryHandler) Create(c echo.Context) error {
	p, err := ctxPrincipal(c)
	if err != nil {
		return err
	}
	var req ports.CreateCategoryInput
	if err := bindBody(c, &req); err != nil {
		return err
	}

	category, err := h.service.Create(c.Request().Context(), p, req)
	if err != nil {
		return err
	}
	metrics.ContentOperationsTotal.WithLabelValues("category", "create").Inc()
	return response.Created(c, "Category created successfully", category)
}

// Update handles PUT /categories/:id.
//
// @Summary      Update a category
// @Tags         categories
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string                     true  "Category ID"
// @Param        body  body      ports.UpdateCategoryInput  true  "Fields to change"
// @Success      200   {object}  response.Envelope{data=domain.Category}
// @Failure      400   {object}  response.Envelope
// @Failure      403   {object}  response.Envelope
// @Failure      409   {object}  response.Envelope
// @Router       /categories/{id} [put]
func (h *CategoryHandler) Update(c echo.Context) error {
	p, err := ctxPrincipal(c)
	if err != nil {
		return err
	}
	var req ports.UpdateCategoryInput
	if err := bindBody(c, &req); err != nil {
		return err
	}

	category, err := h.service.Update(c.Request().Context(), p, c.Param("id"), req)
	if err != nil {
		return err
	}
	metrics.ContentOperationsTotal.WithLabelValues("category", "update").Inc()
	return response.OK(c, "Category updated successfully", category)
}

// Delete handles DELETE /categories/:id. Categories with posts or
// subcategories are refused with 400.
//
// @Summary      Delete a category
// @Tags         categories
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Category ID"
// @Success      200  {object}  response.Envelope
// @Failure      400  {object}  response.Envelope
// @Failure      403  {object}  response.Envelope
// @Failure      404  {object}  response.Envelope
// @Router       /categories/{id} [delete]
func (h *CategoryHandler) Delete(c echo.Context) error {
	p, err := ctxPrincipal(c)
	if err != nil {
		return err
	}

	if err := h.service.Delete(c.Request().Context(), p, c.Param("id")); err != nil {
		return err
	}
	metrics.ContentOperationsTotal.WithLabelValues("category", "delete").Inc()
	return response.OK(c, "Category deleted successfully", nil)
}
