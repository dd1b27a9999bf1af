package ports

import (
	"context"
	"time"

	"github.com/vistoria/inspection-api/internal/core/domain"
	"github.com/vistoria/inspection-api/internal/core/query"
)

// UserFilter carries the list parameters for users.
type UserFilter struct {
	Scope  query.Scope
	Params query.Params
	Role   string
	Status string
}

// UserRepository persists company users. Email uniqueness is enforced by
// the store; Create returns domain.ErrEmailTaken on conflict.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	FindByID(ctx context.Context, scope query.Scope, id string) (*domain.User, error)
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	List(ctx context.Context, filter UserFilter) ([]*domain.User, int64, error)
	Update(ctx context.Context, user *domain.User) error
	Delete(ctx context.Context, scope query.Scope, id string) error
	TouchLogin(ctx context.Context, id string, at time.Time) error
	CountActive(ctx context.Context, scope query.Scope) (int64, error)
}

// ClientRepository persists portal clients.
type ClientRepository interface {
	Create(ctx context.Context, client *domain.Client) error
	FindByID(ctx context.Context, id string) (*domain.Client, error)
	FindByEmail(ctx context.Context, email string) (*domain.Client, error)
}

// SessionStore maps opaque session tokens to clients.
type SessionStore interface {
	Create(ctx context.Context, s *domain.Session) error
	// Get returns domain.ErrSessionNotFound when the token is unknown.
	Get(ctx context.Context, token string) (*domain.Session, error)
	Delete(ctx context.Context, token string) error
	Touch(ctx context.Context, token string, at time.Time) error
}
