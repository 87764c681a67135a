package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/inkpress/cms-backend/internal/core/domain"
	"github.com/inkpress/cms-backend/internal/core/ports"
	"github.com/inkpress/cms-backend/internal/core/validation"
)

// AuthService implements registration, login, token rotation and the
// authenticated profile endpoints.
type AuthService struct {
	users   ports.UserRepository
	tokens  *TokenService
	revoker ports.TokenRevoker
	logger  zerolog.Logger
}

// NewAuthService wires the identity store and token service. revoker may be
// nil, in which case logout only clears the refresh token.
func NewAuthService(users ports.UserRepository, tokens *TokenService, revoker ports.TokenRevoker, logger zerolog.Logger) *AuthService {
	return &AuthService{users: users, tokens: tokens, revoker: revoker, logger: logger}
}

func (s *AuthService) Register(ctx context.Context, input ports.RegisterInput) (*ports.AuthResult, error) {
	input.Username = strings.TrimSpace(input.Username)
	input.Email = strings.ToLower(strings.TrimSpace(input.Email))
	input.FirstName = strings.TrimSpace(input.FirstName)
	input.LastName = strings.TrimSpace(input.LastName)
	if err := validation.Struct(input); err != nil {
		return nil, err
	}

	if err := ensureIdentityFree(ctx, s.users, input.Email, input.Username, ""); err != nil {
		return nil, err
	}

	hash, err := hashPassword(input.Password)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	user := &domain.User{
		Username:     input.Username,
		Email:        input.Email,
		PasswordHash: hash,
		FirstName:    input.FirstName,
		LastName:     input.LastName,
		Role:         domain.RoleViewer,
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}

	pair, err := s.issuePair(user)
	if err != nil {
		return nil, err
	}
	if err := s.users.SetRefreshToken(ctx, user.ID, pair.RefreshToken); err != nil {
		return nil, err
	}

	s.logger.Info().Str("user_id", user.ID).Str("username", user.Username).Msg("user registered")
	return &ports.AuthResult{User: user, Tokens: pair}, nil
}

// EnsureAdmin provisions the first admin account when the identity store has
// none. An existing account with the same email is promoted and reactivated
// instead of duplicated. It reports whether anything was written.
func (s *AuthService) EnsureAdmin(ctx context.Context, input ports.RegisterInput) (bool, error) {
	adminRole := domain.RoleAdmin
	_, admins, err := s.users.List(ctx, ports.UserFilter{
		Role:        &adminRole,
		ListOptions: domain.ListOptions{Page: 1, Limit: 1}.Normalize(),
	})
	if err != nil {
		return false, err
	}
	if admins > 0 {
		return false, nil
	}

	input.Username = strings.TrimSpace(input.Username)
	input.Email = strings.ToLower(strings.TrimSpace(input.Email))
	if err := validation.Struct(input); err != nil {
		return false, err
	}

	existing, err := s.users.FindByEmail(ctx, input.Email)
	switch {
	case err == nil:
		existing.Role = domain.RoleAdmin
		existing.IsActive = true
		existing.UpdatedAt = time.Now().UTC()
		if err := s.users.Update(ctx, existing); err != nil {
			return false, err
		}
		s.logger.Info().Str("user_id", existing.ID).Msg("existing account promoted to bootstrap admin")
		return true, nil
	case !errors.Is(err, domain.ErrNotFound):
		return false, err
	}

	if err := ensureIdentityFree(ctx, s.users, input.Email, input.Username, ""); err != nil {
		return false, err
	}
	hash, err := hashPassword(input.Password)
	if err != nil {
		return false, err
	}
	now := time.Now().UTC()
	admin := &domain.User{
		Username:     input.Username,
		Email:        input.Email,
		PasswordHash: hash,
		FirstName:    strings.TrimSpace(input.FirstName),
		LastName:     strings.TrimSpace(input.LastName),
		Role:         domain.RoleAdmin,
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.users.Create(ctx, admin); err != nil {
		return false, err
	}
	s.logger.Info().Str("user_id", admin.ID).Str("username", admin.Username).Msg("bootstrap admin created")
	return true, nil
}

func (s *AuthService) Login(ctx context.Context, input ports.LoginInput) (*ports.AuthResult, error) {
	input.Email = strings.ToLower(strings.TrimSpace(input.Email))
	if err := validation.Struct(input); err != nil {
		return nil, err
	}

	user, err := s.users.FindByEmail(ctx, input.Email)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrInvalidCredentials
		}
		return nil, err
	}
	if !user.IsActive {
		s.logger.Warn().Str("user_id", user.ID).Msg("login attempt on inactive account")
		return nil, domain.ErrInvalidCredentials
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(input.Password)) != nil {
		return nil, domain.ErrInvalidCredentials
	}

	pair, err := s.issuePair(user)
	if err != nil {
		return nil, err
	}
	now := time.Now().UTC()
	if err := s.users.RecordLogin(ctx, user.ID, pair.RefreshToken, now); err != nil {
		return nil, err
	}
	user.LastLogin = &now

	s.logger.Info().Str("user_id", user.ID).Msg("user logged in")
	return &ports.AuthResult{User: user, Tokens: pair}, nil
}

// RefreshToken exchanges a refresh token for a new pair. The stored token is
// swapped atomically, so a token can be redeemed at most once.
func (s *AuthService) RefreshToken(ctx context.Context, refreshToken string) (*ports.AuthResult, error) {
	refreshToken = strings.TrimSpace(refreshToken)
	if refreshToken == "" {
		return nil, domain.NewValidationError("refreshToken", "refreshToken is required")
	}

	claims, err := s.tokens.VerifyRefresh(refreshToken)
	if err != nil {
		return nil, domain.ErrInvalidRefreshToken
	}

	user, err := s.users.FindByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrInvalidRefreshToken
		}
		return nil, err
	}
	if !user.IsActive || user.RefreshToken != refreshToken {
		s.logger.Warn().Str("user_id", user.ID).Msg("stale or foreign refresh token presented")
		return nil, domain.ErrInvalidRefreshToken
	}

	pair, err := s.issuePair(user)
	if err != nil {
		return nil, err
	}
	swapped, err := s.users.RotateRefreshToken(ctx, user.ID, refreshToken, pair.RefreshToken)
	if err != nil {
		return nil, err
	}
	if !swapped {
		return nil, domain.ErrInvalidRefreshToken
	}
	user.RefreshToken = pair.RefreshToken

	return &ports.AuthResult{User: user, Tokens: pair}, nil
}

// Logout clears the stored refresh token and revokes the presented access token.
func (s *AuthService) Logout(ctx context.Context, session domain.Session) error {
	if err := s.users.SetRefreshToken(ctx, session.Principal.ID, ""); err != nil {
		return err
	}

	if s.revoker != nil && session.TokenID != "" {
		ttl := time.Until(session.ExpiresAt)
		if ttl > 0 {
			if err := s.revoker.Revoke(ctx, session.TokenID, ttl); err != nil {
				s.logger.Warn().Err(err).Str("user_id", session.Principal.ID).Msg("access token revocation failed")
			}
		}
	}

	s.logger.Info().Str("user_id", session.Principal.ID).Msg("user logged out")
	return nil
}

// Authenticate accepts an access token only when it verifies, has not been
// revoked, and still belongs to an existing active user. The role is read
// from the store so demotions apply immediately.
func (s *AuthService) Authenticate(ctx context.Context, accessToken string) (*domain.Session, error) {
	claims, err := s.tokens.VerifyAccess(accessToken)
	if err != nil {
		return nil, err
	}

	if s.revoker != nil {
		revoked, err := s.revoker.IsRevoked(ctx, claims.ID)
		if err != nil {
			s.logger.Warn().Err(err).Msg("revocation check failed, accepting token")
		} else if revoked {
			return nil, domain.ErrTokenRevoked
		}
	}

	user, err := s.users.FindByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrInvalidToken.WithMessage("User no longer exists")
		}
		return nil, err
	}
	if !user.IsActive {
		return nil, domain.ErrAccountInactive
	}

	session := &domain.Session{
		Principal: domain.Principal{ID: user.ID, Role: user.Role},
		TokenID:   claims.ID,
	}
	if claims.ExpiresAt != nil {
		session.ExpiresAt = claims.ExpiresAt.Time
	}
	return session, nil
}

func (s *AuthService) Profile(ctx context.Context, p domain.Principal) (*domain.User, error) {
	return s.users.FindByID(ctx, p.ID)
}

// UpdateProfile edits the caller's own descriptive fields. Role, password and
// tokens are not reachable through this path.
func (s *AuthService) UpdateProfile(ctx context.Context, p domain.Principal, input ports.UpdateProfileInput) (*domain.User, error) {
	trimPtr(input.Username)
	trimPtr(input.FirstName)
	trimPtr(input.LastName)
	trimPtr(input.Bio)
	trimPtr(input.Avatar)
	if err := validation.Struct(input); err != nil {
		return nil, err
	}

	user, err := s.users.FindByID(ctx, p.ID)
	if err != nil {
		return nil, err
	}

	if input.Username != nil && *input.Username != user.Username {
		if err := ensureIdentityFree(ctx, s.users, "", *input.Username, user.ID); err != nil {
			return nil, err
		}
		user.Username = *input.Username
	}
	if input.FirstName != nil {
		user.FirstName = *input.FirstName
	}
	if input.LastName != nil {
		user.LastName = *input.LastName
	}
	if input.Bio != nil {
		user.Bio = *input.Bio
	}
	if input.Avatar != nil {
		user.Avatar = *input.Avatar
	}
	user.UpdatedAt = time.Now().UTC()

	if err := s.users.Update(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// ChangePassword verifies the current password, stores the new hash and
// signs the user out of every refresh session.
func (s *AuthService) ChangePassword(ctx context.Context, p domain.Principal, input ports.ChangePasswordInput) error {
	if err := validation.Struct(input); err != nil {
		return err
	}

	user, err := s.users.FindByID(ctx, p.ID)
	if err != nil {
		return err
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(input.CurrentPassword)) != nil {
		return domain.ErrWrongPassword
	}

	hash, err := hashPassword(input.NewPassword)
	if err != nil {
		return err
	}
	user.PasswordHash = hash
	user.UpdatedAt = time.Now().UTC()
	if err := s.users.Update(ctx, user); err != nil {
		return err
	}
	if err := s.users.SetRefreshToken(ctx, user.ID, ""); err != nil {
		return err
	}

	s.logger.Info().Str("user_id", user.ID).Msg("password changed")
	return nil
}

func (s *AuthService) issuePair(user *domain.User) (ports.TokenPair, error) {
	access, err := s.tokens.IssueAccess(user)
	if err != nil {
		return ports.TokenPair{}, err
	}
	refresh, err := s.tokens.IssueRefresh(user)
	if err != nil {
		return ports.TokenPair{}, err
	}
	return ports.TokenPair{
		AccessToken:  access,
		RefreshToken: refresh,
		ExpiresIn:    int64(s.tokens.AccessTTL().Seconds()),
	}, nil
}

func hashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// ensureIdentityFree fails with domain.ErrUserExists when email or username
// already belongs to an account other than selfID. Empty values are skipped.
func ensureIdentityFree(ctx context.Context, users ports.UserRepository, email, username, selfID string) error {
	lookups := []struct {
		value string
		find  func(context.Context, string) (*domain.User, error)
	}{
		{email, users.FindByEmail},
		{username, users.FindByUsername},
	}
	for _, l := range lookups {
		if l.value == "" {
			continue
		}
		existing, err := l.find(ctx, l.value)
		switch {
		case err == nil && existing.ID != selfID:
			return domain.ErrUserExists
		case err != nil && !errors.Is(err, domain.ErrNotFound):
			return err
		}
	}
	return nil
}
