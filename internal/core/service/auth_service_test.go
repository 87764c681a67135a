package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/inkpress/cms-backend/internal/core/domain"
	"github.com/inkpress/cms-backend/internal/core/ports"
	"github.com/inkpress/cms-backend/internal/infrastructure/db/memory"
)

type authFixture struct {
	users  *memory.UserRepository
	tokens *TokenService
	svc    *AuthService
}

func newAuthFixture() *authFixture {
	users := memory.NewUserRepository()
	tokens := NewTokenService(TokenConfig{Secret: "secret", Issuer: "cms-test", AccessTTL: time.Minute})
	return &authFixture{
		users:  users,
		tokens: tokens,
		svc:    NewAuthService(users, tokens, memory.NewTokenRevoker(), zerolog.Nop()),
	}
}

func (f *authFixture) register(t *testing.T, username, email string) *ports.AuthResult {
	t.Helper()
	res, err := f.svc.Register(context.Background(), ports.RegisterInput{
		Username: username,
		Email:    email,
		Password: "pass1234",
	})
	if err != nil {
		t.Fatalf("Register(%s) returned error: %v", username, err)
	}
	return res
}

func TestAuthService_Register_Success(t *testing.T) {
	f := newAuthFixture()
	res := f.register(t, "alice", "  Alice@Example.com ")

	if res.User.Role != domain.RoleViewer {
		t.Fatalf("expected viewer role, got %s", res.User.Role)
	}
	if res.User.Email != "alice@example.com" {
		t.Fatalf("expected normalized email, got %q", res.User.Email)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(res.User.PasswordHash), []byte("pass1234")); err != nil {
		t.Fatalf("stored hash does not match password: %v", err)
	}
	if res.Tokens.AccessToken == "" || res.Tokens.RefreshToken == "" {
		t.Fatalf("expected both tokens, got %+v", res.Tokens)
	}

	stored, _ := f.users.FindByID(context.Background(), res.User.ID)
	if stored.RefreshToken != res.Tokens.RefreshToken {
		t.Fatalf("refresh token not persisted")
	}
}

func TestAuthService_Register_Duplicate(t *testing.T) {
	f := newAuthFixture()
	f.register(t, "alice", "alice@example.com")

	_, err := f.svc.Register(context.Background(), ports.RegisterInput{
		Username: "alice2", Email: "ALICE@example.com", Password: "pass1234",
	})
	if !errors.Is(err, domain.ErrUserExists) || !errors.Is(err, domain.ErrConflict) {
		t.Fatalf("expected ErrUserExists, got %v", err)
	}

	_, err = f.svc.Register(context.Background(), ports.RegisterInput{
		Username: "alice", Email: "other@example.com", Password: "pass1234",
	})
	if !errors.Is(err, domain.ErrUserExists) {
		t.Fatalf("expected ErrUserExists for username, got %v", err)
	}
}

func TestAuthService_Register_Validation(t *testing.T) {
	f := newAuthFixture()
	_, err := f.svc.Register(context.Background(), ports.RegisterInput{Username: "al", Email: "nope", Password: "short"})

	var ve *domain.ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	got := map[string]bool{}
	for _, fe := range ve.Fields {
		got[fe.Field] = true
	}
	for _, field := range []string{"username", "email", "password"} {
		if !got[field] {
			t.Errorf("expected a %s error, got %+v", field, ve.Fields)
		}
	}
}

func TestAuthService_Login(t *testing.T) {
	f := newAuthFixture()
	reg := f.register(t, "bob", "bob@example.com")
	ctx := context.Background()

	res, err := f.svc.Login(ctx, ports.LoginInput{Email: "BOB@example.com", Password: "pass1234"})
	if err != nil {
		t.Fatalf("Login returned error: %v", err)
	}
	if res.User.LastLogin == nil {
		t.Fatalf("expected lastLogin to be recorded")
	}
	if res.Tokens.RefreshToken == reg.Tokens.RefreshToken {
		t.Fatalf("login should issue a fresh refresh token")
	}

	if _, err := f.svc.Login(ctx, ports.LoginInput{Email: "bob@example.com", Password: "wrong123"}); !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials for wrong password, got %v", err)
	}
	if _, err := f.svc.Login(ctx, ports.LoginInput{Email: "ghost@example.com", Password: "pass1234"}); !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials for unknown email, got %v", err)
	}
}

func TestAuthService_Login_InactiveUser(t *testing.T) {
	f := newAuthFixture()
	reg := f.register(t, "carol", "carol@example.com")
	ctx := context.Background()

	u, _ := f.users.FindByID(ctx, reg.User.ID)
	u.IsActive = false
	if err := f.users.Update(ctx, u); err != nil {
		t.Fatalf("update: %v", err)
	}

	_, err := f.svc.Login(ctx, ports.LoginInput{Email: "carol@example.com", Password: "pass1234"})
	if !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
}

func TestAuthService_RefreshToken_RotationRejectsReuse(t *testing.T) {
	f := newAuthFixture()
	reg := f.register(t, "dave", "dave@example.com")
	ctx := context.Background()
	original := reg.Tokens.RefreshToken

	first, err := f.svc.RefreshToken(ctx, original)
	if err != nil {
		t.Fatalf("first refresh failed: %v", err)
	}
	if first.Tokens.RefreshToken == original {
		t.Fatalf("refresh must rotate the token")
	}

	if _, err := f.svc.RefreshToken(ctx, original); !errors.Is(err, domain.ErrInvalidRefreshToken) {
		t.Fatalf("expected reuse to be rejected, got %v", err)
	}
	if _, err := f.svc.RefreshToken(ctx, first.Tokens.RefreshToken); err != nil {
		t.Fatalf("rotated token should still work: %v", err)
	}
}

func TestAuthService_RefreshToken_RejectsAccessToken(t *testing.T) {
	f := newAuthFixture()
	reg := f.register(t, "erin", "erin@example.com")

	_, err := f.svc.RefreshToken(context.Background(), reg.Tokens.AccessToken)
	if !errors.Is(err, domain.ErrUnauthenticated) {
		t.Fatalf("expected unauthenticated error, got %v", err)
	}
	if _, err := f.svc.RefreshToken(context.Background(), " "); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected validation error for empty token, got %v", err)
	}
}

func TestAuthService_Authenticate(t *testing.T) {
	f := newAuthFixture()
	reg := f.register(t, "frank", "frank@example.com")
	ctx := context.Background()

	session, err := f.svc.Authenticate(ctx, reg.Tokens.AccessToken)
	if err != nil {
		t.Fatalf("Authenticate returned error: %v", err)
	}
	if session.Principal.ID != reg.User.ID || session.Principal.Role != domain.RoleViewer {
		t.Fatalf("unexpected principal: %+v", session.Principal)
	}
	if session.TokenID == "" || session.ExpiresAt.IsZero() {
		t.Fatalf("expected token id and expiry on session: %+v", session)
	}

	u, _ := f.users.FindByID(ctx, reg.User.ID)
	u.IsActive = false
	_ = f.users.Update(ctx, u)
	if _, err := f.svc.Authenticate(ctx, reg.Tokens.AccessToken); !errors.Is(err, domain.ErrAccountInactive) {
		t.Fatalf("expected ErrAccountInactive, got %v", err)
	}

	_ = f.users.Delete(ctx, reg.User.ID)
	if _, err := f.svc.Authenticate(ctx, reg.Tokens.AccessToken); !errors.Is(err, domain.ErrUnauthenticated) {
		t.Fatalf("expected unauthenticated for deleted user, got %v", err)
	}
}

func TestAuthService_Logout_RevokesTokens(t *testing.T) {
	f := newAuthFixture()
	reg := f.register(t, "gina", "gina@example.com")
	ctx := context.Background()

	session, err := f.svc.Authenticate(ctx, reg.Tokens.AccessToken)
	if err != nil {
		t.Fatalf("Authenticate: %v", err)
	}
	if err := f.svc.Logout(ctx, *session); err != nil {
		t.Fatalf("Logout: %v", err)
	}

	if _, err := f.svc.Authenticate(ctx, reg.Tokens.AccessToken); !errors.Is(err, domain.ErrTokenRevoked) {
		t.Fatalf("expected revoked access token, got %v", err)
	}
	if _, err := f.svc.RefreshToken(ctx, reg.Tokens.RefreshToken); !errors.Is(err, domain.ErrInvalidRefreshToken) {
		t.Fatalf("expected refresh to fail after logout, got %v", err)
	}
}

func TestAuthService_ChangePassword(t *testing.T) {
	f := newAuthFixture()
	reg := f.register(t, "hank", "hank@example.com")
	ctx := context.Background()
	p := domain.Principal{ID: reg.User.ID, Role: reg.User.Role}

	err := f.svc.ChangePassword(ctx, p, ports.ChangePasswordInput{CurrentPassword: "nope1234", NewPassword: "newpass99"})
	if !errors.Is(err, domain.ErrWrongPassword) {
		t.Fatalf("expected ErrWrongPassword, got %v", err)
	}

	if err := f.svc.ChangePassword(ctx, p, ports.ChangePasswordInput{CurrentPassword: "pass1234", NewPassword: "newpass99"}); err != nil {
		t.Fatalf("ChangePassword: %v", err)
	}
	stored, _ := f.users.FindByID(ctx, reg.User.ID)
	if stored.RefreshToken != "" {
		t.Fatalf("expected refresh token to be cleared")
	}
	if _, err := f.svc.Login(ctx, ports.LoginInput{Email: "hank@example.com", Password: "newpass99"}); err != nil {
		t.Fatalf("login with new password failed: %v", err)
	}
}

func TestAuthService_UpdateProfile(t *testing.T) {
	f := newAuthFixture()
	reg := f.register(t, "ivan", "ivan@example.com")
	f.register(t, "taken", "taken@example.com")
	ctx := context.Background()
	p := domain.Principal{ID: reg.User.ID, Role: reg.User.Role}

	bio := "  writes things  "
	updated, err := f.svc.UpdateProfile(ctx, p, ports.UpdateProfileInput{Bio: &bio})
	if err != nil {
		t.Fatalf("UpdateProfile: %v", err)
	}
	if updated.Bio != "writes things" || updated.Role != domain.RoleViewer {
		t.Fatalf("unexpected profile: %+v", updated)
	}

	name := "taken"
	if _, err := f.svc.UpdateProfile(ctx, p, ports.UpdateProfileInput{Username: &name}); !errors.Is(err, domain.ErrUserExists) {
		t.Fatalf("expected ErrUserExists, got %v", err)
	}
}

func TestTokenService_Verify(t *testing.T) {
	tokens := NewTokenService(TokenConfig{Secret: "secret", Issuer: "cms-test", AccessTTL: time.Minute})
	user := &domain.User{ID: "u1", Role: domain.RoleEditor}

	access, err := tokens.IssueAccess(user)
	if err != nil {
		t.Fatalf("IssueAccess: %v", err)
	}
	claims, err := tokens.VerifyAccess(access)
	if err != nil {
		t.Fatalf("VerifyAccess: %v", err)
	}
	if claims.UserID != "u1" || claims.Role != domain.RoleEditor || claims.ID == "" {
		t.Fatalf("unexpected claims: %+v", claims)
	}
	if _, err := tokens.VerifyRefresh(access); !errors.Is(err, domain.ErrInvalidToken) {
		t.Fatalf("access token must not verify as refresh, got %v", err)
	}

	other := NewTokenService(TokenConfig{Secret: "other", Issuer: "cms-test"})
	if _, err := other.VerifyAccess(access); !errors.Is(err, domain.ErrInvalidToken) {
		t.Fatalf("expected bad signature to be rejected, got %v", err)
	}

	tokens.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	stale, _ := tokens.IssueAccess(user)
	tokens.now = time.Now
	if _, err := tokens.VerifyAccess(stale); !errors.Is(err, domain.ErrTokenExpired) {
		t.Fatalf("expected ErrTokenExpired, got %v", err)
	}
}

func TestAuthService_EnsureAdmin(t *testing.T) {
	f := newAuthFixture()
	ctx := context.Background()
	input := ports.RegisterInput{Username: "admin", Email: "Admin@CMS.com", Password: "Admin123!"}

	created, err := f.svc.EnsureAdmin(ctx, input)
	if err != nil || !created {
		t.Fatalf("first EnsureAdmin: created=%v err=%v", created, err)
	}
	res, err := f.svc.Login(ctx, ports.LoginInput{Email: "admin@cms.com", Password: "Admin123!"})
	if err != nil {
		t.Fatalf("admin login: %v", err)
	}
	if res.User.Role != domain.RoleAdmin {
		t.Fatalf("expected admin role, got %s", res.User.Role)
	}

	created, err = f.svc.EnsureAdmin(ctx, ports.RegisterInput{Username: "root", Email: "root@cms.com", Password: "Root1234!"})
	if err != nil || created {
		t.Fatalf("second EnsureAdmin must be a no-op: created=%v err=%v", created, err)
	}
	if _, err := f.users.FindByEmail(ctx, "root@cms.com"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("no second admin expected, got %v", err)
	}
}

func TestAuthService_EnsureAdmin_PromotesExistingAccount(t *testing.T) {
	f := newAuthFixture()
	ctx := context.Background()
	viewer := f.register(t, "alice", "alice@example.com")

	created, err := f.svc.EnsureAdmin(ctx, ports.RegisterInput{Username: "admin", Email: "alice@example.com", Password: "Admin123!"})
	if err != nil || !created {
		t.Fatalf("EnsureAdmin: created=%v err=%v", created, err)
	}
	stored, err := f.users.FindByID(ctx, viewer.User.ID)
	if err != nil || stored.Role != domain.RoleAdmin || !stored.IsActive {
		t.Fatalf("expected promoted active admin, got %+v (%v)", stored, err)
	}
}
