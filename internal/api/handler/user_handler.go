package handler

import (
	"github.com/labstack/echo/v4"

	"github.com/inkpress/cms-backend/internal/api/response"
	"github.com/inkpress/cms-backend/internal/core/ports"
	"github.com/inkpress/cms-backend/internal/pkg/metrics"
)

// UserHandler serves account administration under /users.
type UserHandler struct {
	service ports.UserService
}

func NewUserHandler(service ports.UserService) *UserHandler {
	return &UserHandler{service: service}
}

type changeRoleRequest struct {
	Role string `json:"role" validate:"required"`
}

// List handles GET /users.
//
// @Summary      List users
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Param        page       query     int     false  "Page number"
// @Param        limit      query     int     false  "Page size (max 100)"
// @Param        role       query     string  false  "Filter by role"
// @Param        isActive   query     bool    false  "Filter by status"
// @Param        search     query     string  false  "Match username, email or name"
// @Param        sortBy     query     string  false  "Sort field"
// @Param        sortOrder  query     string  false  "asc or desc"
// @Success      200        {object}  response.Envelope{data=response.Page[domain.User]}
// @Failure      403        {object}  response.Envelope
// @Router       /users [get]
func (h *UserHandler) List(c echo.Context) error {
	p, err := ctxPrincipal(c)
	if err != nil {
		return err
	}

	result, err := h.service.List(c.Request().Context(), p, ports.ListUsersInput{
		Role:        c.QueryParam("role"),
		IsActive:    queryBool(c, "isActive"),
		Search:      c.QueryParam("search"),
		ListOptions: listOptions(c),
	})
	if err != nil {
		return err
	}
	return response.Paginated(c, "Users retrieved successfully", result)
}

// Get handles GET /users/:id.
//
// @Summary      Get a user
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "User ID"
// @Success      200  {object}  response.Envelope{data=domain.User}
// @Failure      404  {object}  response.Envelope
// @Router       /users/{id} [get]
func (h *UserHandler) Get(c echo.Context) error {
	user, err := h.service.Get(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return response.OK(c, "User retrieved successfully", user)
}

// Create handles POST /users.
//
// @Summary      Create a user
// @Tags         users
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      ports.CreateUserInput  true  "Account details"
// @Success      201   {object}  response.Envelope{data=domain.User}
// @Failure      400   {object}  response.Envelope
// @Failure      403   {object}  response.Envelope
// @Failure      409   {object}  response.Envelope
// @Router       /users [post]
func (h *UserHandler) Create(c echo.Context) error {
	p, err := ctxPrincipal(c)
	if err != nil {
		return err
	}
	var req ports.CreateUserInput
	if err := bindBody(c, &req); err != nil {
		return err
	}

	user, err := h.service.Create(c.Request().Context(), p, req)
	if err != nil {
		return err
	}
	metrics.ContentOperationsTotal.WithLabelValues("user", "create").Inc()
	return response.Created(c, "User created successfully", user)
}

// Update handles PUT /users/:id.
//
// @Summary      Update a user
// @Tags         users
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string                 true  "User ID"
// @Param        body  body      ports.UpdateUserInput  true  "Fields to change"
// @Success      200   {object}  response.Envelope{data=domain.User}
// @Failure      400   {object}  response.Envelope
// @Failure      403   {object}  response.Envelope
// @Failure      404   {object}  response.Envelope
// @Router       /users/{id} [put]
func (h *UserHandler) Update(c echo.Context) error {
	p, err := ctxPrincipal(c)
	if err != nil {
		return err
	}
	var req ports.UpdateUserInput
	if err := bindBody(c, &req); err != nil {
		return err
	}

	user, err := h.service.Update(c.Request().Context(), p, c.Param("id"), req)
	if err != nil {
		return err
	}
	metrics.ContentOperationsTotal.WithLabelValues("user", "update").Inc()
	return response.OK(c, "User updated successfully", user)
}

// Delete handles DELETE /users/:id.
//
// @Summary      Delete a user
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "User ID"
// @Success      200  {object}  response.Envelope
// @Failure      403  {object}  response.Envelope
// @Failure      404  {object}  response.Envelope
// @Router       /users/{id} [delete]
func (h *UserHandler) Delete(c echo.Context) error {
	p, err := ctxPrincipal(c)
	if err != nil {
		return err
	}

	if err := h.service.Delete(c.Request().Context(), p, c.Param("id")); err != nil {
		return err
	}
	metrics.ContentOperationsTotal.WithLabelValues("user", "delete").Inc()
	return response.OK(c, "User deleted successfully", nil)
}

// ChangeRole handles PUT /users/:id/role.
//
// @Summary      Change a user's role
// @Tags         users
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string             true  "User ID"
// @Param        body  body      changeRoleRequest  true  "New role"
// @Success      200   {object}  response.Envelope{data=domain.User}
// @Failure      400   {object}  response.Envelope
// @Failure      403   {object}  response.Envelope
// @Router       /users/{id}/role [put]
func (h *UserHandler) ChangeRole(c echo.Context) error {
	p, err := ctxPrincipal(c)
	if err != nil {
		return err
	}
	var req changeRoleRequest
	if err := bindBody(c, &req); err != nil {
		return err
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	user, err := h.service.ChangeRole(c.Request().Context(), p, c.Param("id"), req.Role)
	if err != nil {
		return err
	}
	metrics.ContentOperationsTotal.WithLabelValues("user", "update").Inc()
	return response.OK(c, "User role updated successfully", user)
}

// ToggleStatus handles PUT /users/:id/status.
//
// @Summary      Activate or deactivate a user
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "User ID"
// @Success      200  {object}  response.Envelope{data=domain.User}
// @Failure      403  {object}  response.Envelope
// @Router       /users/{id}/status [put]
func (h *UserHandler) ToggleStatus(c echo.Context) error {
	p, err := ctxPrincipal(c)
	if err != nil {
		return err
	}

	user, err := h.service.ToggleStatus(c.Request().Context(), p, c.Param("id"))
	if err != nil {
		return err
	}
	metrics.ContentOperationsTotal.WithLabelValues("user", "update").Inc()
	return response.OK(c, "User status updated successfully", user)
}
