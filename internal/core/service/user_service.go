package service

import (
	"context"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/inkpress/cms-backend/internal/core/domain"
	"github.com/inkpress/cms-backend/internal/core/ports"
	"github.com/inkpress/cms-backend/internal/core/validation"
)

var userSortFields = map[string]bool{
	"createdAt": true, "updatedAt": true, "username": true, "email": true, "lastLogin": true, "role": true,
}

// UserService is the administrative user-management surface.
type UserService struct {
	users  ports.UserRepository
	logger zerolog.Logger
}

func NewUserService(users ports.UserRepository, logger zerolog.Logger) *UserService {
	return &UserService{users: users, logger: logger}
}

func (s *UserService) List(ctx context.Context, p domain.Principal, input ports.ListUsersInput) (*domain.ListResult[*domain.User], error) {
	if err := domain.Authorize(p, domain.ActionUserList, ""); err != nil {
		return nil, err
	}
	if err := validation.Struct(input); err != nil {
		return nil, err
	}

	filter := ports.UserFilter{
		IsActive:    input.IsActive,
		Search:      strings.TrimSpace(input.Search),
		ListOptions: sortable(input.ListOptions, userSortFields, "createdAt", true),
	}
	if input.Role != "" {
		role, _ := domain.ParseRole(input.Role)
		filter.Role = &role
	}

	users, total, err := s.users.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	return domain.NewListResult(users, total, filter.ListOptions), nil
}

func (s *UserService) Get(ctx context.Context, id string) (*domain.User, error) {
	return s.users.FindByID(ctx, id)
}

func (s *UserService) Create(ctx context.Context, p domain.Principal, input ports.CreateUserInput) (*domain.User, error) {
	if err := domain.Authorize(p, domain.ActionUserCreate, ""); err != nil {
		return nil, err
	}
	input.Username = strings.TrimSpace(input.Username)
	input.Email = strings.ToLower(strings.TrimSpace(input.Email))
	input.FirstName = strings.TrimSpace(input.FirstName)
	input.LastName = strings.TrimSpace(input.LastName)
	if err := validation.Struct(input); err != nil {
		return nil, err
	}

	role := domain.RoleViewer
	if input.Role != "" {
		role, _ = domain.ParseRole(input.Role)
	}
	active := true
	if input.IsActive != nil {
		active = *input.IsActive
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
		Role:         role,
		IsActive:     active,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}

	s.logger.Info().Str("user_id", user.ID).Str("role", string(role)).Str("by", p.ID).Msg("user created")
	return user, nil
}

// Update edits another account. Role and status changes go through the same
// self-targeting rules as ChangeRole and ToggleStatus.
func (s *UserService) Update(ctx context.Context, p domain.Principal, id string, input ports.UpdateUserInput) (*domain.User, error) {
	trimPtr(input.Username)
	trimPtr(input.FirstName)
	trimPtr(input.LastName)
	trimPtr(input.Bio)
	trimPtr(input.Avatar)
	if input.Email != nil {
		*input.Email = strings.ToLower(strings.TrimSpace(*input.Email))
	}

	target, err := s.users.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := domain.AuthorizeUserAction(p, domain.ActionUserUpdate, target); err != nil {
		return nil, err
	}
	if err := validation.Struct(input); err != nil {
		return nil, err
	}

	if input.Role != nil {
		role, _ := domain.ParseRole(*input.Role)
		if role != target.Role {
			if err := domain.AuthorizeUserAction(p, domain.ActionUserChangeRole, target); err != nil {
				return nil, err
			}
			target.Role = role
		}
	}
	if input.IsActive != nil && *input.IsActive != target.IsActive {
		if err := domain.AuthorizeUserAction(p, domain.ActionUserToggleStatus, target); err != nil {
			return nil, err
		}
		target.IsActive = *input.IsActive
	}

	var email, username string
	if input.Email != nil && *input.Email != target.Email {
		email = *input.Email
	}
	if input.Username != nil && *input.Username != target.Username {
		username = *input.Username
	}
	if err := ensureIdentityFree(ctx, s.users, email, username, target.ID); err != nil {
		return nil, err
	}
	if email != "" {
		target.Email = email
	}
	if username != "" {
		target.Username = username
	}
	if input.FirstName != nil {
		target.FirstName = *input.FirstName
	}
	if input.LastName != nil {
		target.LastName = *input.LastName
	}
	if input.Bio != nil {
		target.Bio = *input.Bio
	}
	if input.Avatar != nil {
		target.Avatar = *input.Avatar
	}
	target.UpdatedAt = time.Now().UTC()

	if err := s.users.Update(ctx, target); err != nil {
		return nil, err
	}
	if !target.IsActive {
		if err := s.users.SetRefreshToken(ctx, target.ID, ""); err != nil {
			return nil, err
		}
	}
	return target, nil
}

func (s *UserService) Delete(ctx context.Context, p domain.Principal, id string) error {
	target, err := s.users.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if err := domain.AuthorizeUserAction(p, domain.ActionUserDelete, target); err != nil {
		return err
	}
	if err := s.users.Delete(ctx, id); err != nil {
		return err
	}

	s.logger.Info().Str("user_id", id).Str("by", p.ID).Msg("user deleted")
	return nil
}

func (s *UserService) ChangeRole(ctx context.Context, p domain.Principal, id, role string) (*domain.User, error) {
	target, err := s.users.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := domain.AuthorizeUserAction(p, domain.ActionUserChangeRole, target); err != nil {
		return nil, err
	}

	parsed, ok := domain.ParseRole(role)
	if !ok {
		return nil, domain.NewValidationError("role", "role must be one of: admin, editor, viewer")
	}
	target.Role = parsed
	target.UpdatedAt = time.Now().UTC()
	if err := s.users.Update(ctx, target); err != nil {
		return nil, err
	}

	s.logger.Info().Str("user_id", id).Str("role", string(parsed)).Str("by", p.ID).Msg("user role changed")
	return target, nil
}

// ToggleStatus flips the active flag. Deactivated users lose their refresh
// session, and their access tokens stop authenticating on the next request.
func (s *UserService) ToggleStatus(ctx context.Context, p domain.Principal, id string) (*domain.User, error) {
	target, err := s.users.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := domain.AuthorizeUserAction(p, domain.ActionUserToggleStatus, target); err != nil {
		return nil, err
	}

	target.IsActive = !target.IsActive
	target.UpdatedAt = time.Now().UTC()
	if err := s.users.Update(ctx, target); err != nil {
		return nil, err
	}
	if !target.IsActive {
		if err := s.users.SetRefreshToken(ctx, target.ID, ""); err != nil {
			return nil, err
		}
	}

	s.logger.Info().Str("user_id", id).Bool("active", target.IsActive).Str("by", p.ID).Msg("user status changed")
	return target, nil
}
