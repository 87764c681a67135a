package service

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/inkpress/cms-backend/internal/core/domain"
)

const (
	tokenTypeAccess  = "access"
	tokenTypeRefresh = "refresh"

	defaultAccessTTL  = time.Hour
	defaultRefreshTTL = 7 * 24 * time.Hour
)

// TokenClaims is the JWT payload for both token types. Role is only set on
// access tokens.
type TokenClaims struct {
	UserID    string      `json:"uid"`
	Role      domain.Role `json:"role,omitempty"`
	TokenType string      `json:"typ"`
	jwt.RegisteredClaims
}

// TokenConfig configures TokenService.
type TokenConfig struct {
	Secret     string
	Issuer     string
	AccessTTL  time.Duration
	RefreshTTL time.Duration
}

// TokenService issues and verifies HS256 access and refresh tokens.
type TokenService struct {
	secret     []byte
	issuer     string
	accessTTL  time.Duration
	refreshTTL time.Duration
	now        func() time.Time
}

func NewTokenService(cfg TokenConfig) *TokenService {
	if cfg.AccessTTL <= 0 {
		cfg.AccessTTL = defaultAccessTTL
	}
	if cfg.RefreshTTL <= 0 {
		cfg.RefreshTTL = defaultRefreshTTL
	}
	return &TokenService{
		secret:     []byte(cfg.Secret),
		issuer:     cfg.Issuer,
		accessTTL:  cfg.AccessTTL,
		refreshTTL: cfg.RefreshTTL,
		now:        time.Now,
	}
}

// AccessTTL is how long issued access tokens stay valid.
func (s *TokenService) AccessTTL() time.Duration { return s.accessTTL }

func (s *TokenService) IssueAccess(user *domain.User) (string, error) {
	return s.issue(user.ID, user.Role, tokenTypeAccess, s.accessTTL)
}

func (s *TokenService) IssueRefresh(user *domain.User) (string, error) {
	return s.issue(user.ID, "", tokenTypeRefresh, s.refreshTTL)
}

func (s *TokenService) issue(userID string, role domain.Role, typ string, ttl time.Duration) (string, error) {
	now := s.now().UTC()
	claims := TokenClaims{
		UserID:    userID,
		Role:      role,
		TokenType: typ,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   userID,
			Issuer:    s.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("sign %s token: %w", typ, err)
	}
	return signed, nil
}

func (s *TokenService) VerifyAccess(token string) (*TokenClaims, error) {
	return s.verify(token, tokenTypeAccess)
}

func (s *TokenService) VerifyRefresh(token string) (*TokenClaims, error) {
	return s.verify(token, tokenTypeRefresh)
}

func (s *TokenService) verify(token, wantType string) (*TokenClaims, error) {
	claims := &TokenClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (any, error) {
		if t.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, jwt.ErrTokenSignatureInvalid
		}
		return s.secret, nil
	}, jwt.WithTimeFunc(s.now), jwt.WithExpirationRequired())
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, domain.ErrTokenExpired
		}
		return nil, domain.ErrInvalidToken
	}
	if !parsed.Valid || claims.TokenType != wantType || claims.UserID == "" {
		return nil, domain.ErrInvalidToken
	}
	if s.issuer != "" && claims.Issuer != s.issuer {
		return nil, domain.ErrInvalidToken
	}
	return claims, nil
}
