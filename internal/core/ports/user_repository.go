package ports

import (
	"context"
	"time"

	"github.com/inkpress/cms-backend/internal/core/domain"
)

// UserFilter narrows user listings. Nil pointers mean no filter.
type UserFilter struct {
	Role     *domain.Role
	IsActive *bool
	Search   string // partial match on username, email, first or last name
	domain.ListOptions
}

// UserRepository is the identity store.
type UserRepository interface {
	// Create inserts user; a duplicate email or username yields domain.ErrUserExists.
	Create(ctx context.Context, user *domain.User) error
	FindByID(ctx context.Context, id string) (*domain.User, error)
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	FindByUsername(ctx context.Context, username string) (*domain.User, error)
	// Update persists every mutable field of user except the refresh token.
	Update(ctx context.Context, user *domain.User) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, filter UserFilter) ([]*domain.User, int64, error)

	// SetRefreshToken overwrites the stored refresh token; empty clears it.
	SetRefreshToken(ctx context.Context, id, token string) error
	// RotateRefreshToken replaces current with next only if current is still
	// the stored value. It reports whether the swap happened.
	RotateRefreshToken(ctx context.Context, id, current, next string) (bool, error)
	RecordLogin(ctx context.Context, id, refreshToken string, at time.Time) error
}
