package handler

import (
	"github.com/labstack/echo/v4"

	"github.com/inkpress/cms-backend/internal/api/response"
	"github.com/inkpress/cms-backend/internal/core/domain"
	"github.com/inkpress/cms-backend/internal/core/ports"
	"github.com/inkpress/cms-backend/internal/pkg/metrics"
)

type AuthHandler struct {
	authService ports.AuthService
}

func NewAuthHandler(authService ports.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

type refreshRequest struct {
	RefreshToken string `json:"refreshToken" validate:"required"`
}

type authResponse struct {
	User         *domain.User `json:"user"`
	AccessToken  string       `json:"accessToken"`
	RefreshToken string       `json:"refreshToken"`
	ExpiresIn    int64        `json:"expiresIn"`
}

func newAuthResponse(r *ports.AuthResult) authResponse {
	return authResponse{
		User:         r.User,
		AccessToken:  r.Tokens.AccessToken,
		RefreshToken: r.Tokens.RefreshToken,
		ExpiresIn:    r.Tokens.ExpiresIn,
	}
}

func recordAuth(event string, err error) {
	result := "success"
	if err != nil {
		result = "failure"
	}
	metrics.AuthEventsTotal.WithLabelValues(event, result).Inc()
}

// Register creates a viewer account and signs it in.
//
// @Summary      Register a new user
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      ports.RegisterInput  true  "Account details"
// @Success      201   {object}  response.Envelope{data=authResponse}
// @Failure      400   {object}  response.Envelope
// @Failure      409   {object}  response.Envelope
// @Router       /auth/register [post]
func (h *AuthHandler) Register(c echo.Context) error {
	var req ports.RegisterInput
	if err := bindBody(c, &req); err != nil {
		return err
	}

	result, err := h.authService.Register(c.Request().Context(), req)
	recordAuth("register", err)
	if err != nil {
		return err
	}
	return response.Created(c, "User registered successfully", newAuthResponse(result))
}

// Login exchanges credentials for an access/refresh token pair.
//
// @Summary      Login
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      ports.LoginInput  true  "Login credentials"
// @Success      200   {object}  response.Envelope{data=authResponse}
// @Failure      400   {object}  response.Envelope
// @Failure      401   {object}  response.Envelope
// @Router       /auth/login [post]
func (h *AuthHandler) Login(c echo.Context) error {
	var req ports.LoginInput
	if err := bindBody(c, &req); err != nil {
		return err
	}

	result, err := h.authService.Login(c.Request().Context(), req)
	recordAuth("login", err)
	if err != nil {
		return err
	}
	return response.OK(c, "Login successful", newAuthResponse(result))
}

// RefreshToken rotates the refresh token and issues a new pair.
//
// @Summary      Refresh tokens
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      refreshRequest  true  "Current refresh token"
// @Success      200   {object}  response.Envelope{data=authResponse}
// @Failure      401   {object}  response.Envelope
// @Router       /auth/refresh-token [post]
func (h *AuthHandler) RefreshToken(c echo.Context) error {
	var req refreshRequest
	if err := bindBody(c, &req); err != nil {
		return err
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	result, err := h.authService.RefreshToken(c.Request().Context(), req.RefreshToken)
	recordAuth("refresh", err)
	if err != nil {
		return err
	}
	return response.OK(c, "Token refreshed successfully", newAuthResponse(result))
}

// Logout invalidates the refresh token and revokes the current access token.
//
// @Summary      Logout
// @Tags         auth
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  response.Envelope
// @Failure      401  {object}  response.Envelope
// @Router       /auth/logout [post]
func (h *AuthHandler) Logout(c echo.Context) error {
	session, err := ctxSession(c)
	if err != nil {
		return err
	}

	err = h.authService.Logout(c.Request().Context(), session)
	recordAuth("logout", err)
	if err != nil {
		return err
	}
	return response.OK(c, "Logout successful", nil)
}

// Profile returns the authenticated user.
//
// @Summary      Get own profile
// @Tags         auth
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  response.Envelope{data=domain.User}
// @Failure      401  {object}  response.Envelope
// @Router       /auth/profile [get]
func (h *AuthHandler) Profile(c echo.Context) error {
	p, err := ctxPrincipal(c)
	if err != nil {
		return err
	}

	user, err := h.authService.Profile(c.Request().Context(), p)
	if err != nil {
		return err
	}
	return response.OK(c, "Profile retrieved successfully", user)
}

// UpdateProfile edits the caller's own descriptive fields.
//
// @Summary      Update own profile
// @Tags         auth
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      ports.UpdateProfileInput  true  "Profile fields"
// @Success      200   {object}  response.Envelope{data=domain.User}
// @Failure      400   {object}  response.Envelope
// @Failure      409   {object}  response.Envelope
// @Router       /auth/profile [put]
func (h *AuthHandler) UpdateProfile(c echo.Context) error {
	p, err := ctxPrincipal(c)
	if err != nil {
		return err
	}
	var req ports.UpdateProfileInput
	if err := bindBody(c, &req); err != nil {
		return err
	}

	user, err := h.authService.UpdateProfile(c.Request().Context(), p, req)
	if err != nil {
		return err
	}
	return response.OK(c, "Profile updated successfully", user)
}

// ChangePassword replaces the caller's password and signs out other sessions.
//
// @Summary      Change password
// @Tags         auth
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      ports.ChangePasswordInput  true  "Current and new password"
// @Success      200   {object}  response.Envelope
// @Failure      400   {object}  response.Envelope
// @Router       /auth/change-password [put]
func (h *AuthHandler) ChangePassword(c echo.Context) error {
	p, err := ctxPrincipal(c)
	if err != nil {
		return err
	}
	var req ports.ChangePasswordInput
	if err := bindBody(c, &req); err != nil {
		return err
	}

	err = h.authService.ChangePassword(c.Request().Context(), p, req)
	recordAuth("change_password", err)
	if err != nil {
		return err
	}
	return response.OK(c, "Password changed successfully", nil)
}
