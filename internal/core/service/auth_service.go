package service

import (
	"context"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/vistoria/inspection-api/internal/core/domain"
	"github.com/vistoria/inspection-api/internal/core/ports"
	"github.com/vistoria/inspection-api/internal/core/query"
)

// AuthService implements registration and login of company users.
type AuthService struct {
	users     ports.UserRepository
	companies ports.CompanyRepository
	jwtSecret string
	tokenTTL  time.Duration
	logger    zerolog.Logger
	now       func() time.Time
}

func NewAuthService(users ports.UserRepository, companies ports.CompanyRepository, jwtSecret string, tokenTTL time.Duration, logger zerolog.Logger) *AuthService {
	if tokenTTL <= 0 {
		tokenTTL = 24 * time.Hour
	}
	return &AuthService{
		users:     users,
		companies: companies,
		jwtSecret: jwtSecret,
		tokenTTL:  tokenTTL,
		logger:    logger,
		now:       utcNow,
	}
}

// Register creates a tenant and its first admin. When the admin cannot be
// created the company row is removed again.
func (s *AuthService) Register(ctx context.Context, in ports.RegisterInput) (*ports.AuthResult, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, domain.Internal(err)
	}

	now := s.now()
	company := &domain.Company{
		ID:       newID(),
		Name:     in.CompanyName,
		Document: in.CompanyDocument,
		Email:    normalizeEmail(in.Email),
		Phone:    in.Phone,
		Status:   domain.CompanyActive,
	}
	company.Stamp("", now)

	if err := s.companies.Create(ctx, company); err != nil {
		return nil, err
	}

	user := &domain.User{
		ID:           newID(),
		CompanyID:    company.ID,
		Name:         in.Name,
		Email:        normalizeEmail(in.Email),
		Phone:        in.Phone,
		PasswordHash: string(hash),
		Role:         domain.RoleAdmin,
		Status:       domain.UserActive,
	}
	user.Stamp(user.ID, now)

	if err := s.users.Create(ctx, user); err != nil {
		if delErr := s.companies.Delete(ctx, company.ID); delErr != nil {
			s.logger.Warn().Err(delErr).Str("company_id", company.ID).Msg("failed to remove company after sign-up failure")
		}
		return nil, err
	}

	token, exp, err := s.generateToken(user)
	if err != nil {
		return nil, domain.Internal(err)
	}

	s.logger.Info().Str("company_id", company.ID).Str("user_id", user.ID).Msg("company registered")
	return &ports.AuthResult{Token: token, ExpiresAt: exp, User: user, Company: company}, nil
}

// Login verifies credentials and issues a signed token. Unknown emails and
// wrong passwords produce the same error.
func (s *AuthService) Login(ctx context.Context, email, password string) (*ports.AuthResult, error) {
	user, err := s.users.FindByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, domain.ErrInvalidCredentials
		}
		return nil, err
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return nil, domain.ErrInvalidCredentials
	}
	if user.Status != domain.UserActive {
		return nil, domain.ErrUserInactive
	}

	token, exp, err := s.generateToken(user)
	if err != nil {
		return nil, domain.Internal(err)
	}

	now := s.now()
	if err := s.users.TouchLogin(ctx, user.ID, now); err != nil {
		s.logger.Warn().Err(err).Str("user_id", user.ID).Msg("failed to record last login")
	}
	user.LastLoginAt = &now

	return &ports.AuthResult{Token: token, ExpiresAt: exp, User: user}, nil
}

// Me returns the user behind p.
func (s *AuthService) Me(ctx context.Context, p domain.Principal) (*domain.User, error) {
	if p.Type != domain.PrincipalUser {
		return nil, domain.ErrTokenInvalid
	}
	return s.users.FindByID(ctx, query.AllTenants(), p.ID)
}

// Refresh issues a new token for a still-active user.
func (s *AuthService) Refresh(ctx context.Context, p domain.Principal) (*ports.AuthResult, error) {
	user, err := s.Me(ctx, p)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, domain.ErrTokenInvalid
		}
		return nil, err
	}
	if user.Status != domain.UserActive {
		return nil, domain.ErrUserInactive
	}

	token, exp, err := s.generateToken(user)
	if err != nil {
		return nil, domain.Internal(err)
	}
	return &ports.AuthResult{Token: token, ExpiresAt: exp, User: user}, nil
}

// ParseToken verifies signature and expiry and returns the embedded claims.
func (s *AuthService) ParseToken(token string) (domain.Principal, error) {
	return ParseToken(token, s.jwtSecret)
}

func (s *AuthService) generateToken(user *domain.User) (string, time.Time, error) {
	now := s.now()
	exp := now.Add(s.tokenTTL)
	claims := jwt.MapClaims{
		"sub":        user.ID,
		"role":       string(user.Role),
		"company_id": user.CompanyID,
		"email":      user.Email,
		"typ":        string(domain.PrincipalUser),
		"iat":        now.Unix(),
		"exp":        exp.Unix(),
	}

	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := t.SignedString([]byte(s.jwtSecret))
	return signed, exp, err
}

// ParseToken validates an HS256 token signed with secret and converts its
// claims into a principal.
func ParseToken(token, secret string) (domain.Principal, error) {
	claims := jwt.MapClaims{}
	tkn, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		if t.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, jwt.ErrTokenSignatureInvalid
		}
		return []byte(secret), nil
	}, jwt.WithExpirationRequired())
	if err != nil || !tkn.Valid {
		return domain.Principal{}, domain.ErrTokenInvalid
	}

	sub, _ := claims["sub"].(string)
	role, _ := claims["role"].(string)
	companyID, _ := claims["company_id"].(string)
	email, _ := claims["email"].(string)
	if sub == "" || !domain.Role(role).Valid() {
		return domain.Principal{}, domain.ErrTokenInvalid
	}

	return domain.Principal{
		Type:      domain.PrincipalUser,
		ID:        sub,
		Role:      domain.Role(role),
		CompanyID: companyID,
		Email:     email,
	}, nil
}
