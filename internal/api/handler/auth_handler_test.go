package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/inkpress/cms-backend/internal/api/middleware"
	"github.com/inkpress/cms-backend/internal/core/domain"
	"github.com/inkpress/cms-backend/internal/core/ports"
)

type stubAuthService struct {
	registerFn       func(ctx context.Context, input ports.RegisterInput) (*ports.AuthResult, error)
	loginFn          func(ctx context.Context, input ports.LoginInput) (*ports.AuthResult, error)
	refreshFn        func(ctx context.Context, token string) (*ports.AuthResult, error)
	logoutFn         func(ctx context.Context, session domain.Session) error
	profileFn        func(ctx context.Context, p domain.Principal) (*domain.User, error)
	updateProfileFn  func(ctx context.Context, p domain.Principal, input ports.UpdateProfileInput) (*domain.User, error)
	changePasswordFn func(ctx context.Context, p domain.Principal, input ports.ChangePasswordInput) error
}

func (s *stubAuthService) Register(ctx context.Context, input ports.RegisterInput) (*ports.AuthResult, error) {
	return s.registerFn(ctx, input)
}

func (s *stubAuthService) Login(ctx context.Context, input ports.LoginInput) (*ports.AuthResult, error) {
	return s.loginFn(ctx, input)
}

func (s *stubAuthService) RefreshToken(ctx context.Context, token string) (*ports.AuthResult, error) {
	return s.refreshFn(ctx, token)
}

func (s *stubAuthService) Logout(ctx context.Context, session domain.Session) error {
	return s.logoutFn(ctx, session)
}

func (s *stubAuthService) Profile(ctx context.Context, p domain.Principal) (*domain.User, error) {
	return s.profileFn(ctx, p)
}

func (s *stubAuthService) UpdateProfile(ctx context.Context, p domain.Principal, input ports.UpdateProfileInput) (*domain.User, error) {
	return s.updateProfileFn(ctx, p, input)
}

func (s *stubAuthService) ChangePassword(ctx context.Context, p domain.Principal, input ports.ChangePasswordInput) error {
	return s.changePasswordFn(ctx, p, input)
}

func jsonRequest(method, target, body string) *http.Request {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	return req
}

func withSession(c echo.Context, p domain.Principal) {
	c.Set(middleware.SessionKey, &domain.Session{Principal: p, TokenID: "jti-1"})
	c.Set(middleware.PrincipalKey, p)
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var resp map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	return resp
}

func TestAuthHandler_Register_Success(t *testing.T) {
	e := echo.New()
	stub := &stubAuthService{
		registerFn: func(ctx context.Context, input ports.RegisterInput) (*ports.AuthResult, error) {
			if input.Username != "alice" || input.Email != "a@example.com" || input.Password != "Secret1!" {
				t.Fatalf("unexpected input: %+v", input)
			}
			return &ports.AuthResult{
				User:   &domain.User{ID: "u1", Username: input.Username, Role: domain.RoleViewer},
				Tokens: ports.TokenPair{AccessToken: "access", RefreshToken: "refresh", ExpiresIn: 3600},
			}, nil
		},
	}
	handler := NewAuthHandler(stub)

	req := jsonRequest(http.MethodPost, "/api/auth/register", `{"username":"alice","password":"Secret1!","email":"a@example.com"}`)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := handler.Register(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rec.Code)
	}

	resp := decodeEnvelope(t, rec)
	if resp["success"] != true {
		t.Fatalf("expected success envelope: %+v", resp)
	}
	data, ok := resp["data"].(map[string]any)
	if !ok {
		t.Fatalf("expected data in response")
	}
	if data["accessToken"] != "access" || data["refreshToken"] != "refresh" {
		t.Fatalf("unexpected token payload: %+v", data)
	}
	user, ok := data["user"].(map[string]any)
	if !ok || user["username"] != "alice" || user["role"] != "viewer" {
		t.Fatalf("unexpected user payload: %+v", data["user"])
	}
	if _, leaked := user["passwordHash"]; leaked {
		t.Fatalf("password hash must not be serialized")
	}
}

func TestAuthHandler_Register_UserExists(t *testing.T) {
	e := echo.New()
	stub := &stubAuthService{
		registerFn: func(ctx context.Context, input ports.RegisterInput) (*ports.AuthResult, error) {
			return nil, domain.ErrUserExists
		},
	}
	handler := NewAuthHandler(stub)

	req := jsonRequest(http.MethodPost, "/api/auth/register", `{"username":"bob"}`)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	err := handler.Register(c)
	if !errors.Is(err, domain.ErrUserExists) {
		t.Fatalf("expected ErrUserExists, got %v", err)
	}
}

func TestAuthHandler_Register_InvalidPayload(t *testing.T) {
	e := echo.New()
	handler := NewAuthHandler(&stubAuthService{})

	req := jsonRequest(http.MethodPost, "/api/auth/register", `{"username":`)
	c := e.NewContext(req, httptest.NewRecorder())

	err := handler.Register(c)
	var he *echo.HTTPError
	if !errors.As(err, &he) || he.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 HTTPError, got %v", err)
	}
}

func TestAuthHandler_Login_Success(t *testing.T) {
	e := echo.New()
	stub := &stubAuthService{
		loginFn: func(ctx context.Context, input ports.LoginInput) (*ports.AuthResult, error) {
			return &ports.AuthResult{
				User:   &domain.User{ID: "u1", Email: input.Email},
				Tokens: ports.TokenPair{AccessToken: "access", RefreshToken: "refresh"},
			}, nil
		},
	}
	handler := NewAuthHandler(stub)

	req := jsonRequest(http.MethodPost, "/api/auth/login", `{"email":"a@example.com","password":"secret"}`)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := handler.Login(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	resp := decodeEnvelope(t, rec)
	if resp["message"] != "Login successful" {
		t.Fatalf("unexpected message: %v", resp["message"])
	}
}

func TestAuthHandler_Login_InvalidCredentials(t *testing.T) {
	e := echo.New()
	stub := &stubAuthService{
		loginFn: func(ctx context.Context, input ports.LoginInput) (*ports.AuthResult, error) {
			return nil, domain.ErrInvalidCredentials
		},
	}
	handler := NewAuthHandler(stub)

	c := e.NewContext(jsonRequest(http.MethodPost, "/api/auth/login", `{"email":"a@example.com","password":"bad"}`), httptest.NewRecorder())

	if err := handler.Login(c); !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
}

func TestAuthHandler_RefreshToken_Missing(t *testing.T) {
	e := echo.New()
	e.Validator = NewRequestValidator()
	handler := NewAuthHandler(&stubAuthService{
		refreshFn: func(ctx context.Context, token string) (*ports.AuthResult, error) {
			t.Fatalf("service should not be called")
			return nil, nil
		},
	})

	c := e.NewContext(jsonRequest(http.MethodPost, "/api/auth/refresh-token", `{}`), httptest.NewRecorder())

	var ve *domain.ValidationError
	if err := handler.RefreshToken(c); !errors.As(err, &ve) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
}

func TestAuthHandler_RefreshToken_PassesToken(t *testing.T) {
	e := echo.New()
	e.Validator = NewRequestValidator()
	handler := NewAuthHandler(&stubAuthService{
		refreshFn: func(ctx context.Context, token string) (*ports.AuthResult, error) {
			if token != "old-refresh" {
				t.Fatalf("unexpected token %q", token)
			}
			return &ports.AuthResult{User: &domain.User{ID: "u1"}, Tokens: ports.TokenPair{RefreshToken: "new-refresh"}}, nil
		},
	})

	rec := httptest.NewRecorder()
	c := e.NewContext(jsonRequest(http.MethodPost, "/api/auth/refresh-token", `{"refreshToken":"old-refresh"}`), rec)

	if err := handler.RefreshToken(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	data := decodeEnvelope(t, rec)["data"].(map[string]any)
	if data["refreshToken"] != "new-refresh" {
		t.Fatalf("expected rotated token, got %v", data["refreshToken"])
	}
}

func TestAuthHandler_Logout_UsesSession(t *testing.T) {
	e := echo.New()
	var got domain.Session
	handler := NewAuthHandler(&stubAuthService{
		logoutFn: func(ctx context.Context, session domain.Session) error {
			got = session
			return nil
		},
	})

	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodPost, "/api/auth/logout", nil), rec)
	withSession(c, domain.Principal{ID: "u1", Role: domain.RoleViewer})

	if err := handler.Logout(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if got.TokenID != "jti-1" || got.Principal.ID != "u1" {
		t.Fatalf("unexpected session: %+v", got)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestAuthHandler_Profile_RequiresPrincipal(t *testing.T) {
	e := echo.New()
	handler := NewAuthHandler(&stubAuthService{})

	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/api/auth/profile", nil), httptest.NewRecorder())

	err := handler.Profile(c)
	var he *echo.HTTPError
	if !errors.As(err, &he) || he.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %v", err)
	}
}

func TestAuthHandler_UpdateProfile(t *testing.T) {
	e := echo.New()
	handler := NewAuthHandler(&stubAuthService{
		updateProfileFn: func(ctx context.Context, p domain.Principal, input ports.UpdateProfileInput) (*domain.User, error) {
			if p.ID != "u1" {
				t.Fatalf("unexpected principal %+v", p)
			}
			if input.Bio == nil || *input.Bio != "hello" || input.Username != nil {
				t.Fatalf("unexpected input: %+v", input)
			}
			return &domain.User{ID: "u1", Bio: *input.Bio}, nil
		},
	})

	rec := httptest.NewRecorder()
	c := e.NewContext(jsonRequest(http.MethodPut, "/api/auth/profile", `{"bio":"hello"}`), rec)
	withSession(c, domain.Principal{ID: "u1", Role: domain.RoleViewer})

	if err := handler.UpdateProfile(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestAuthHandler_ChangePassword_WrongCurrent(t *testing.T) {
	e := echo.New()
	handler := NewAuthHandler(&stubAuthService{
		changePasswordFn: func(ctx context.Context, p domain.Principal, input ports.ChangePasswordInput) error {
			return domain.ErrWrongPassword
		},
	})

	c := e.NewContext(jsonRequest(http.MethodPut, "/api/auth/change-password", `{"currentPassword":"x","newPassword":"Secret1!"}`), httptest.NewRecorder())
	withSession(c, domain.Principal{ID: "u1", Role: domain.RoleViewer})

	if err := handler.ChangePassword(c); !errors.Is(err, domain.ErrWrongPassword) {
		t.Fatalf("expected ErrWrongPassword, got %v", err)
	}
}
