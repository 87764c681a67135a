package handler

import (
	"github.com/labstack/echo/v4"

	"github.com/inkpress/cms-backend/internal/api/response"
	"github.com/inkpress/cms-backend/internal/core/ports"
	"github.com/inkpress/cms-backend/internal/pkg/metrics"
)

// PageHandler handles HTTP requests for static pages, the site menu and the
// homepage.
type PageHandler struct {
	service ports.PageService
}

func NewPageHandler(service ports.PageService) *PageHandler {
	return &PageHandler{service: service}
}

func pageListInput(c echo.Context) ports.ListPagesInput {
	return ports.ListPagesInput{
		Status:      c.QueryParam("status"),
		Template:    c.QueryParam("template"),
		ParentID:    c.QueryParam("parentPage"),
		AuthorID:    c.QueryParam("author"),
		Search:      c.QueryParam("search"),
		ListOptions: listOptions(c),
	}
}

// List handles GET /pages.
//
// @Summary      List pages
// @Tags         pages
// @Produce      json
// @Security     BearerAuth
// @Param        page        query     int     false  "Page number"
// @Param        limit       query     int     false  "Page size (max 100)"
// @Param        status      query     string  false  "draft, published or private"
// @Param        template    query     string  false  "Template"
// @Param        parentPage  query     string  false  "Parent page ID"
// @Param        search      query     string  false  "Match title or content"
// @Success      200         {object}  response.Envelope{data=response.Page[domain.Page]}
// @Failure      401         {object}  response.Envelope
// @Router       /pages [get]
func (h *PageHandler) List(c echo.Context) error {
	result, err := h.service.List(c.Request().Context(), pageListInput(c))
	if err != nil {
		return err
	}
	return response.Paginated(c, "Pages retrieved successfully", result)
}

// ListPublished handles GET /pages/published.
//
// @Summary      List published pages
// @Tags         pages
// @Produce      json
// @Param        page   query     int  false  "Page number"
// @Param        limit  query     int  false  "Page size (max 100)"
// @Success      200    {object}  response.Envelope{data=response.Page[domain.Page]}
// @Router       /pages/published [get]
func (h *PageHandler) ListPublished(c echo.Context) error {
	result, err := h.service.ListPublished(c.Request().Context(), pageListInput(c))
	if err != nil {
		return err
	}
	return response.Paginated(c, "Published pages retrieved successfully", result)
}

// Menu handles GET /pages/menu.
//
// @Summary      Menu pages
// @Tags         pages
// @Produce      json
// @Success      200  {object}  response.Envelope{data=[]domain.Page}
// @Router       /pages/menu [get]
func (h *PageHandler) Menu(c echo.Context) error {
	pages, err := h.service.Menu(c.Request().Context())
	if err != nil {
		return err
	}
	return response.OK(c, "Menu pages retrieved successfully", pages)
}

// Home handles GET /pages/home.
//
// @Summary      Homepage
// @Tags         pages
// @Produce      json
// @Success      200  {object}  response.Envelope{data=domain.Page}
// @Failure      404  {object}  response.Envelope
// @Router       /pages/home [get]
func (h *PageHandler) Home(c echo.Context) error {
	page, err := h.service.Home(c.Request().Context())
	if err != nil {
		return err
	}
	return response.OK(c, "Home page retrieved successfully", page)
}

// GetBySlug handles GET /pages/slug/:slug.
//
// @Summary      Get a page by slug
// @Tags         pages
// @Produce      json
// @Param        slug  path      string  true  "Page slug"
// @Success      200   {object}  response.Envelope{data=domain.Page}
// @Failure      404   {object}  response.Envelope
// @Router       /pages/slug/{slug} [get]
func (h *PageHandler) GetBySlug(c echo.Context) error {
	page, err := h.service.GetBySlug(c.Request().Context(), ctxOptionalPrincipal(c), c.Param("slug"))
	if err != nil {
		return err
	}
	return response.OK(c, "Page retrieved successfully", page)
}

// Get handles GET /pages/:id.
//
// @Summary      Get a page
// @Tags         pages
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Page ID"
// @Success      200  {object}  response.Envelope{data=domain.Page}
// @Failure      404  {object}  response.Envelope
// @Router       /pages/{id} [get]
func (h *PageHandler) Get(c echo.Context) error {
	page, err := h.service.GetByID(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return response.OK(c, "Page retrieved successfully", page)
}

// Create handles POST /pages.
//
// @Summary      Create a page
// @Tags         pages
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      ports.CreatePageInput  true  "Page content"
// @Success      201   {object}  response.Envelope{data=domain.Page}
// @Failure      400   {object}  response.Envelope
// @Failure      403   {object}  response.Envelope
// @Router       /pages [post]
func (h *PageHandler) Create(c echo.Context) error {
	p, err := ctxPrincipal(c)
	if err != nil {
		return err
	}
	var req ports.CreatePageInput
	if err := bindBody(c, &req); err != nil {
		return err
	}

	page, err := h.service.Create(c.Request().Context(), p, req)
	if err != nil {
		return err
	}
	metrics.ContentOperationsTotal.WithLabelValues("page", "create").Inc()
	return response.Created(c, "Page created successfully", page)
}

// Update handles PUT /pages/:id.
//
// @Summary      Update a page
// @Tags         pages
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string                 true  "Page ID"
// @Param        body  body      ports.UpdatePageInput  true  "Fields to change"
// @Success      200   {object}  response.Envelope{data=domain.Page}
// @Failure      400   {object}  response.Envelope
// @Failure      403   {object}  response.Envelope
// @Failure      404   {object}  response.Envelope
// @Router       /pages/{id} [put]
func (h *PageHandler) Update(c echo.Context) error {
	p, err := ctxPrincipal(c)
	if err != nil {
		return err
	}
	var req ports.UpdatePageInput
	if err := bindBody(c, &req); err != nil {
		return err
	}

	page, err := h.service.Update(c.Request().Context(), p, c.Param("id"), req)
	if err != nil {
		return err
	}
	metrics.ContentOperationsTotal.WithLabelValues("page", "update").Inc()
	return response.OK(c, "Page updated successfully", page)
}

// Delete handles DELETE /pages/:id.
//
// @Summary      Delete a page
// @Tags         pages
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Page ID"
// @Success      200  {object}  response.Envelope
// @Failure      400  {object}  response.Envelope
// @Failure      403  {object}  response.Envelope
// @Failure      404  {object}  response.Envelope
// @Router       /pages/{id} [delete]
func (h *PageHandler) Delete(c echo.Context) error {
	p, err := ctxPrincipal(c)
	if err != nil {
		return err
	}

	if err := h.service.Delete(c.Request().Context(), p, c.Param("id")); err != nil {
		return err
	}
	metrics.ContentOperationsTotal.WithLabelValues("page", "delete").Inc()
	return response.OK(c, "Page deleted successfully", nil)
}
