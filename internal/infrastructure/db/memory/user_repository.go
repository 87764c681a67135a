package memory

import (
	"cmp"
	"context"
	"strings"
	"sync"
	"time"

	"github.com/inkpress/cms-backend/internal/core/domain"
	"github.com/inkpress/cms-backend/internal/core/ports"
)

type UserRepository struct {
	mu    sync.RWMutex
	users map[string]*domain.User
}

func NewUserRepository() *UserRepository {
	return &UserRepository{users: make(map[string]*domain.User)}
}

func cloneUser(u *domain.User) *domain.User {
	if u == nil {
		return nil
	}
	c := *u
	c.LastLogin = cloneTime(u.LastLogin)
	return &c
}

// taken reports whether email or username belongs to a user other than selfID.
func (r *UserRepository) taken(email, username, selfID string) bool {
	for id, u := range r.users {
		if id == selfID {
			continue
		}
		if strings.EqualFold(u.Email, email) || u.Username == username {
			return true
		}
	}
	return false
}

func (r *UserRepository) Create(_ context.Context, user *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.taken(user.Email, user.Username, "") {
		return domain.ErrUserExists
	}
	if user.ID == "" {
		user.ID = newID()
	}
	r.users[user.ID] = cloneUser(user)
	return nil
}

func (r *UserRepository) FindByID(_ context.Context, id string) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	u, ok := r.users[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	return cloneUser(u), nil
}

func (r *UserRepository) FindByEmail(_ context.Context, email string) (*domain.User, error) {
	return r.findBy(func(u *domain.User) bool { return strings.EqualFold(u.Email, email) })
}

func (r *UserRepository) FindByUsername(_ context.Context, username string) (*domain.User, error) {
	return r.findBy(func(u *domain.User) bool { return u.Username == username })
}

func (r *UserRepository) findBy(match func(*domain.User) bool) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, u := range r.users {
		if match(u) {
			return cloneUser(u), nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (r *UserRepository) Update(_ context.Context, user *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored, ok := r.users[user.ID]
	if !ok {
		return domain.ErrUserNotFound
	}
	if r.taken(user.Email, user.Username, user.ID) {
		return domain.ErrUserExists
	}
	next := cloneUser(user)
	next.RefreshToken = stored.RefreshToken
	r.users[user.ID] = next
	return nil
}

func (r *UserRepository) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.users[id]; !ok {
		return domain.ErrUserNotFound
	}
	delete(r.users, id)
	return nil
}

func (r *UserRepository) List(_ context.Context, filter ports.UserFilter) ([]*domain.User, int64, error) {
	r.mu.RLock()
	var out []*domain.User
	for _, u := range r.users {
		if filter.Role != nil && u.Role != *filter.Role {
			continue
		}
		if filter.IsActive != nil && u.IsActive != *filter.IsActive {
			continue
		}
		if filter.Search != "" && !containsFold(u.Username, filter.Search) && !containsFold(u.Email, filter.Search) &&
			!containsFold(u.FirstName, filter.Search) && !containsFold(u.LastName, filter.Search) {
			continue
		}
		out = append(out, cloneUser(u))
	}
	r.mu.RUnlock()

	items, total := sortedPage(out, filter.ListOptions, func(a, b *domain.User, field string) int {
		switch field {
		case "username":
			return compareFold(a.Username, b.Username)
		case "email":
			return compareFold(a.Email, b.Email)
		case "role":
			return cmp.Compare(a.Role, b.Role)
		case "lastLogin":
			return compareTimePtr(a.LastLogin, b.LastLogin)
		case "updatedAt":
			return a.UpdatedAt.Compare(b.UpdatedAt)
		default:
			return a.CreatedAt.Compare(b.CreatedAt)
		}
	})
	return items, total, nil
}

func (r *UserRepository) SetRefreshToken(_ context.Context, id, token string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.users[id]
	if !ok {
		return domain.ErrUserNotFound
	}
	u.RefreshToken = token
	return nil
}

func (r *UserRepository) RotateRefreshToken(_ context.Context, id, current, next string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.users[id]
	if !ok {
		return false, domain.ErrUserNotFound
	}
	if current == "" || u.RefreshToken != current {
		return false, nil
	}
	u.RefreshToken = next
	return true, nil
}

func (r *UserRepository) RecordLogin(_ context.Context, id, refreshToken string, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.users[id]
	if !ok {
		return domain.ErrUserNotFound
	}
	u.RefreshToken = refreshToken
	u.LastLogin = &at
	return nil
}
