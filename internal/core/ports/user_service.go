package ports

import (
	"context"

	"github.com/inkpress/cms-backend/internal/core/domain"
)

type ListUsersInput struct {
	Role     string `validate:"omitempty,oneof=admin editor viewer user"`
	IsActive *bool
	Search   string
	domain.ListOptions
}

type CreateUserInput struct {
	Username  string `json:"username" validate:"required,min=3,max=30,username"`
	Email     string `json:"email" validate:"required,email,max=254"`
	Password  string `json:"password" validate:"required,password"`
	FirstName string `json:"firstName" validate:"omitempty,max=50"`
	LastName  string `json:"lastName" validate:"omitempty,max=50"`
	Role      string `json:"role" validate:"omitempty,oneof=admin editor viewer user"`
	IsActive  *bool  `json:"isActive"`
}

type UpdateUserInput struct {
	Username  *string `json:"username" validate:"omitempty,min=3,max=30,username"`
	Email     *string `json:"email" validate:"omitempty,email,max=254"`
	FirstName *string `json:"firstName" validate:"omitempty,max=50"`
	LastName  *string `json:"lastName" validate:"omitempty,max=50"`
	Bio       *string `json:"bio" validate:"omitempty,max=500"`
	Avatar    *string `json:"avatar" validate:"omitempty,url"`
	Role      *string `json:"role" validate:"omitempty,oneof=admin editor viewer user"`
	IsActive  *bool   `json:"isActive"`
}

type UserService interface {
	List(ctx context.Context, p domain.Principal, input ListUsersInput) (*domain.ListResult[*domain.User], error)
	Get(ctx context.Context, id string) (*domain.User, error)
	Create(ctx context.Context, p domain.Principal, input CreateUserInput) (*domain.User, error)
	Update(ctx context.Context, p domain.Principal, id string, input UpdateUserInput) (*domain.User, error)
	Delete(ctx context.Context, p domain.Principal, id string) error
	ChangeRole(ctx context.Context, p domain.Principal, id, role string) (*domain.User, error)
	ToggleStatus(ctx context.Context, p domain.Principal, id string) (*domain.User, error)
}
