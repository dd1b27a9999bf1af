package handler

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vistoria/inspection-api/internal/core/domain"
	"github.com/vistoria/inspection-api/internal/core/ports"
)

type stubAuthService struct {
	registerFn func(ctx context.Context, in ports.RegisterInput) (*ports.AuthResult, error)
	loginFn    func(ctx context.Context, email, password string) (*ports.AuthResult, error)
	meFn       func(ctx context.Context, p domain.Principal) (*domain.User, error)
	refreshFn  func(ctx context.Context, p domain.Principal) (*ports.AuthResult, error)
}

func (s *stubAuthService) Register(ctx context.Context, in ports.RegisterInput) (*ports.AuthResult, error) {
	return s.registerFn(ctx, in)
}

func (s *stubAuthService) Login(ctx context.Context, email, password string) (*ports.AuthResult, error) {
	return s.loginFn(ctx, email, password)
}

func (s *stubAuthService) Me(ctx context.Context, p domain.Principal) (*domain.User, error) {
	return s.meFn(ctx, p)
}

func (s *stubAuthService) Refresh(ctx context.Context, p domain.Principal) (*ports.AuthResult, error) {
	return s.refreshFn(ctx, p)
}

func (s *stubAuthService) ParseToken(string) (domain.Principal, error) {
	return domain.Principal{}, domain.ErrTokenInvalid
}

func authResult() *ports.AuthResult {
	return &ports.AuthResult{
		Token:     "token123",
		ExpiresAt: time.Date(2026, 1, 2, 0, 0, 0, 0, time.UTC),
		User: &domain.User{
			ID: "user-1", CompanyID: "company-1", Name: "Alice", Email: "alice@example.com",
			PasswordHash: "$2a$10$secret", Role: domain.RoleAdmin, Status: domain.UserActive,
		},
		Company: &domain.Company{ID: "company-1", Name: "Vistorias Alfa", Status: domain.CompanyActive},
	}
}

func TestAuthHandler_Register_Success(t *testing.T) {
	stub := &stubAuthService{
		registerFn: func(_ context.Context, in ports.RegisterInput) (*ports.AuthResult, error) {
			assert.Equal(t, "Vistorias Alfa", in.CompanyName)
			assert.Equal(t, "Alice", in.Name)
			assert.Equal(t, "alice@example.com", in.Email)
			return authResult(), nil
		},
	}
	c, rec := jsonContext(http.MethodPost, "/auth/register",
		`{"company_name":"  Vistorias Alfa ","name":"Alice","email":"alice@example.com","password":"secret1"}`)

	require.NoError(t, NewAuthHandler(stub).Register(c))
	assert.Equal(t, http.StatusCreated, rec.Code)

	var data authResponse
	env := decode(t, rec, &data)
	assert.True(t, env.Success)
	assert.Equal(t, "token123", data.Token)
	assert.Equal(t, "admin", data.User.Role)
	require.NotNil(t, data.Company)
	assert.Equal(t, "company-1", data.Company.ID)
	assert.NotContains(t, rec.Body.String(), "password")
}

func TestAuthHandler_Register_ValidationFailure(t *testing.T) {
	stub := &stubAuthService{
		registerFn: func(context.Context, ports.RegisterInput) (*ports.AuthResult, error) {
			t.Fatal("service should not be called")
			return nil, nil
		},
	}
	c, _ := jsonContext(http.MethodPost, "/auth/register", `{"company_name":"A","email":"not-an-email"}`)

	err := NewAuthHandler(stub).Register(c)
	require.ErrorIs(t, err, domain.ErrInvalidInput)
	assert.ElementsMatch(t, []string{"company_name", "name", "email", "password"}, fieldNames(err))
}

func TestAuthHandler_Register_MalformedBody(t *testing.T) {
	c, _ := jsonContext(http.MethodPost, "/auth/register", "not-json")

	err := NewAuthHandler(&stubAuthService{}).Register(c)
	require.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestAuthHandler_Register_EmailTaken(t *testing.T) {
	stub := &stubAuthService{
		registerFn: func(context.Context, ports.RegisterInput) (*ports.AuthResult, error) {
			return nil, domain.ErrEmailTaken
		},
	}
	c, _ := jsonContext(http.MethodPost, "/auth/register",
		`{"company_name":"Alfa","name":"Alice","email":"alice@example.com","password":"secret1"}`)

	err := NewAuthHandler(stub).Register(c)
	assert.ErrorIs(t, err, domain.ErrEmailTaken)
}

func TestAuthHandler_Login_Success(t *testing.T) {
	stub := &stubAuthService{
		loginFn: func(_ context.Context, email, password string) (*ports.AuthResult, error) {
			assert.Equal(t, "alice@example.com", email)
			assert.Equal(t, "secret1", password)
			return authResult(), nil
		},
	}
	c, rec := jsonContext(http.MethodPost, "/auth/login", `{"email":"alice@example.com","password":"secret1"}`)

	require.NoError(t, NewAuthHandler(stub).Login(c))
	assert.Equal(t, http.StatusOK, rec.Code)

	var data authResponse
	decode(t, rec, &data)
	assert.Equal(t, "token123", data.Token)
}

func TestAuthHandler_Login_InvalidCredentials(t *testing.T) {
	stub := &stubAuthService{
		loginFn: func(context.Context, string, string) (*ports.AuthResult, error) {
			return nil, domain.ErrInvalidCredentials
		},
	}
	c, _ := jsonContext(http.MethodPost, "/auth/login", `{"email":"alice@example.com","password":"wrong"}`)

	err := NewAuthHandler(stub).Login(c)
	assert.ErrorIs(t, err, domain.ErrInvalidCredentials)
}

func TestAuthHandler_Me_RequiresPrincipal(t *testing.T) {
	c, _ := jsonContext(http.MethodGet, "/auth/me", "")

	err := NewAuthHandler(&stubAuthService{}).Me(c)
	assert.ErrorIs(t, err, domain.ErrTokenRequired)
}

func TestAuthHandler_Me_ReturnsUser(t *testing.T) {
	stub := &stubAuthService{
		meFn: func(_ context.Context, p domain.Principal) (*domain.User, error) {
			assert.Equal(t, adminPrincipal, p)
			return authResult().User, nil
		},
	}
	c, rec := jsonContext(http.MethodGet, "/auth/me", "")

	require.NoError(t, NewAuthHandler(stub).Me(as(c, adminPrincipal)))

	var data userResponse
	decode(t, rec, &data)
	assert.Equal(t, "user-1", data.ID)
	assert.NotContains(t, rec.Body.String(), "secret")
}

func TestAuthHandler_Refresh_PropagatesInactiveUser(t *testing.T) {
	stub := &stubAuthService{
		refreshFn: func(context.Context, domain.Principal) (*ports.AuthResult, error) {
			return nil, domain.ErrUserInactive
		},
	}
	c, _ := jsonContext(http.MethodPost, "/auth/refresh", "")

	err := NewAuthHandler(stub).Refresh(as(c, adminPrincipal))
	assert.True(t, errors.Is(err, domain.ErrUserInactive))
}
