package ports

import (
	"context"
	"time"

	"github.com/vistoria/inspection-api/internal/core/domain"
)

// RegisterInput creates a company together with its first admin.
type RegisterInput struct {
	CompanyName     string
	CompanyDocument string
	Name            string
	Email           string
	Password        string
	Phone           string
}

// AuthResult is returned by login-like operations.
type AuthResult struct {
	Token     string
	ExpiresAt time.Time
	User      *domain.User
	Company   *domain.Company
}

// AuthService authenticates company users with signed tokens.
type AuthService interface {
	Register(ctx context.Context, in RegisterInput) (*AuthResult, error)
	Login(ctx context.Context, email, password string) (*AuthResult, error)
	Me(ctx context.Context, p domain.Principal) (*domain.User, error)
	Refresh(ctx context.Context, p domain.Principal) (*AuthResult, error)
	// ParseToken verifies a signed token and returns the embedded principal.
	ParseToken(token string) (domain.Principal, error)
}

// ClientRegisterInput carries the fields accepted by client sign-up.
type ClientRegisterInput struct {
	Name     string
	Email    string
	Password string
	Phone    string
	Document string
}

// ClientSessionResult is returned by client login.
type ClientSessionResult struct {
	Token     string
	ExpiresAt time.Time
	Client    *domain.Client
}

// ClientAuthService authenticates portal clients with opaque sessions.
type ClientAuthService interface {
	Register(ctx context.Context, in ClientRegisterInput) (*domain.Client, error)
	Login(ctx context.Context, email, password string) (*ClientSessionResult, error)
	Logout(ctx context.Context, token string) error
	Me(ctx context.Context, p domain.Principal) (*domain.Client, error)
	// Resolve validates a session token. Expired sessions are deleted and
	// reported as domain.ErrSessionExpired.
	Resolve(ctx context.Context, token string) (domain.Principal, error)
}
