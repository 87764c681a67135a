package handler

import (
	"github.com/labstack/echo/v4"

	"github.com/inkpress/cms-backend/internal/api/response"
	"github.com/inkpress/cms-backend/internal/core/ports"
	"github.com/inkpress/cms-backend/internal/pkg/metrics"
)

// PostHandler handles HTTP requests for blog posts.
type PostHandler struct {
	service ports.PostService
}

func NewPostHandler(service ports.PostService) *PostHandler {
	return &PostHandler{service: service}
}

func postListInput(c echo.Context) ports.ListPostsInput {
	return ports.ListPostsInput{
		Status:      c.QueryParam("status"),
		AuthorID:    c.QueryParam("author"),
		CategoryID:  c.QueryParam("category"),
		Tag:         c.QueryParam("tag"),
		Search:      c.QueryParam("search"),
		Featured:    queryBool(c, "isFeatured"),
		ListOptions: listOptions(c),
	}
}

// List handles GET /posts. Any status is visible to authenticated callers.
//
// @Summary      List posts
// @Tags         posts
// @Produce      json
// @Security     BearerAuth
// @Param        page        query     int     false  "Page number"
// @Param        limit       query     int     false  "Page size (max 100)"
// @Param        status      query     string  false  "draft, published or archived"
// @Param        author      query     string  false  "Author ID"
// @Param        category    query     string  false  "Category ID"
// @Param        tag         query     string  false  "Tag"
// @Param        search      query     string  false  "Full-text query"
// @Param        isFeatured  query     bool    false  "Featured only"
// @Param        sortBy      query     string  false  "Sort field"
// @Param        sortOrder   query     string  false  "asc or desc"
// @Success      200         {object}  response.Envelope{data=response.Page[domain.Post]}
// @Failure      400         {object}  response.Envelope
// @Failure      401         {object}  response.Envelope
// @Router       /posts [get]
func (h *PostHandler) List(c echo.Context) error {
	result, err := h.service.List(c.Request().Context(), postListInput(c))
	if err != nil {
		return err
	}
	return response.Paginated(c, "Posts retrieved successfully", result)
}

// ListPublished handles GET /posts/published.
//
// @Summary      List published posts
// @Tags         posts
// @Produce      json
// @Param        page      query     int     false  "Page number"
// @Param        limit     query     int     false  "Page size (max 100)"
// @Param        category  query     string  false  "Category ID"
// @Param        tag       query     string  false  "Tag"
// @Param        search    query     string  false  "Full-text query"
// @Success      200       {object}  response.Envelope{data=response.Page[domain.Post]}
// @Router       /posts/published [get]
func (h *PostHandler) ListPublished(c echo.Context) error {
	result, err := h.service.ListPublished(c.Request().Context(), postListInput(c))
	if err != nil {
		return err
	}
	return response.Paginated(c, "Published posts retrieved successfully", result)
}

// Featured handles GET /posts/featured.
//
// @Summary      List featured posts
// @Tags         posts
// @Produce      json
// @Param        limit  query     int  false  "Maximum number of posts"
// @Success      200    {object}  response.Envelope{data=[]domain.Post}
// @Router       /posts/featured [get]
func (h *PostHandler) Featured(c echo.Context) error {
	posts, err := h.service.Featured(c.Request().Context(), queryInt(c, "limit"))
	if err != nil {
		return err
	}
	return response.OK(c, "Featured posts retrieved successfully", posts)
}

// GetBySlug handles GET /posts/slug/:slug and counts a view.
//
// @Summary      Get a post by slug
// @Tags         posts
// @Produce      json
// @Param        slug  path      string  true  "Post slug"
// @Success      200   {object}  response.Envelope{data=domain.Post}
// @Failure      404   {object}  response.Envelope
// @Router       /posts/slug/{slug} [get]
func (h *PostHandler) GetBySlug(c echo.Context) error {
	post, err := h.service.GetBySlug(c.Request().Context(), ctxOptionalPrincipal(c), c.Param("slug"))
	if err != nil {
		return err
	}
	return response.OK(c, "Post retrieved successfully", post)
}

// Get handles GET /posts/:id.
//
// @Summary      Get a post
// @Tags         posts
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Post ID"
// @Success      200  {object}  response.Envelope{data=domain.Post}
// @Failure      404  {object}  response.Envelope
// @Router       /posts/{id} [get]
func (h *PostHandler) Get(c echo.Context) error {
	post, err := h.service.GetByID(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return response.OK(c, "Post retrieved successfully", post)
}

// Create handles POST /posts.
//
// @Summary      Create a post
// @Tags         posts
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      ports.CreatePostInput  true  "Post content"
// @Success      201   {object}  response.Envelope{data=domain.Post}
// @Failure      400   {object}  response.Envelope
// @Failure      403   {object}  response.Envelope
// @Router       /posts [post]
func (h *PostHandler) Create(c echo.Context) error {
	p, err := ctxPrincipal(c)
	if err != nil {
		return err
	}
	var req ports.CreatePostInput
	if err := bindBody(c, &req); err != nil {
		return err
	}

	post, err := h.service.Create(c.Request().Context(), p, req)
	if err != nil {
		return err
	}
	metrics.ContentOperationsTotal.WithLabelValues("post", "create").Inc()
	return response.Created(c, "Post created successfully", post)
}

// Update handles PUT /posts/:id.
//
// @Summary      Update a post
// @Tags         posts
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string                 true  "Post ID"
// @Param        body  body      ports.UpdatePostInput  true  "Fields to change"
// @Success      200   {object}  response.Envelope{data=domain.Post}
// @Failure      400   {object}  response.Envelope
// @Failure      403   {object}  response.Envelope
// @Failure      404   {object}  response.Envelope
// @Router       /posts/{id} [put]
func (h *PostHandler) Update(c echo.Context) error {
	p, err := ctxPrincipal(c)
	if err != nil {
		return err
	}
	var req ports.UpdatePostInput
	if err := bindBody(c, &req); err != nil {
		return err
	}

	post, err := h.service.Update(c.Request().Context(), p, c.Param("id"), req)
	if err != nil {
		return err
	}
	metrics.ContentOperationsTotal.WithLabelValues("post", "update").Inc()
	return response.OK(c, "Post updated successfully", post)
}

// Delete handles DELETE /posts/:id.
//
// @Summary      Delete a post
// @Tags         posts
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Post ID"
// @Success      200  {object}  response.Envelope
// @Failure      403  {object}  response.Envelope
// @Failure      404  {object}  response.Envelope
// @Router       /posts/{id} [delete]
func (h *PostHandler) Delete(c echo.Context) error {
	p, err := ctxPrincipal(c)
	if err != nil {
		return err
	}

	if err := h.service.Delete(c.Request().Context(), p, c.Param("id")); err != nil {
		return err
	}
	metrics.ContentOperationsTotal.WithLabelValues("post", "delete").Inc()
	return response.OK(c, "Post deleted successfully", nil)
}

// Like handles POST /posts/:id/like.
//
// @Summary      Like a post
// @Tags         posts
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Post ID"
// @Success      200  {object}  response.Envelope{data=domain.Post}
// @Failure      400  {object}  response.Envelope
// @Failure      404  {object}  response.Envelope
// @Router       /posts/{id}/like [post]
func (h *PostHandler) Like(c echo.Context) error {
	p, err := ctxPrincipal(c)
	if err != nil {
		return err
	}

	post, err := h.service.Like(c.Request().Context(), p, c.Param("id"))
	if err != nil {
		return err
	}
	return response.OK(c, "Post liked successfully", post)
}

// Unlike handles DELETE /posts/:id/like.
//
// @Summary      Remove a like
// @Tags         posts
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Post ID"
// @Success      200  {object}  response.Envelope{data=domain.Post}
// @Failure      400  {object}  response.Envelope
// @Failure      404  {object}  response.Envelope
// @Router       /posts/{id}/like [delete]
func (h *PostHandler) Unlike(c echo.Context) error {
	p, err := ctxPrincipal(c)
	if err != nil {
		return err
	}

	post, err := h.service.Unlike(c.Request().Context(), p, c.Param("id"))
	if err != nil {
		return err
	}
	return response.OK(c, "Post unliked successfully", post)
}
