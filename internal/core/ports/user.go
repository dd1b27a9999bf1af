package ports

import (
	"context"

	"github.com/vistoria/inspection-api/internal/core/domain"
	"github.com/vistoria/inspection-api/internal/core/query"
)

// UserSpec is the list contract for users.
var UserSpec = query.Spec{
	SortFields:   []string{"created_at", "name", "email", "role"},
	DefaultSort:  "name",
	DefaultOrder: query.Asc,
	SearchFields: []string{"name", "email"},
}

// CreateUserInput carries the fields accepted when an admin adds a user.
type CreateUserInput struct {
	Name      string
	Email     string
	Password  string
	Phone     string
	Role      domain.Role
	CompanyID string // only honoured for super_admin
}

// UpdateUserInput holds optional user fields; nil means unchanged.
type UpdateUserInput struct {
	Name     *string
	Phone    *string
	Password *string
	Role     *domain.Role
	Status   *domain.UserStatus
}

// UserService manages company users.
type UserService interface {
	List(ctx context.Context, p domain.Principal, filter UserFilter) (*query.Page[*domain.User], error)
	Create(ctx context.Context, p domain.Principal, in CreateUserInput) (*domain.User, error)
	Get(ctx context.Context, p domain.Principal, id string) (*domain.User, error)
	Update(ctx context.Context, p domain.Principal, id string, in UpdateUserInput) (*domain.User, error)
	Delete(ctx context.Context, p domain.Principal, id string) error
}
