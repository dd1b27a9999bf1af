package service

import (
	"context"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/vistoria/inspection-api/internal/core/domain"
	"github.com/vistoria/inspection-api/internal/core/policy"
	"github.com/vistoria/inspection-api/internal/core/ports"
	"github.com/vistoria/inspection-api/internal/core/query"
)

type UserService struct {
	repo   ports.UserRepository
	logger zerolog.Logger
	now    func() time.Time
}

func NewUserService(repo ports.UserRepository, logger zerolog.Logger) *UserService {
	return &UserService{repo: repo, logger: logger, now: utcNow}
}

func (s *UserService) List(ctx context.Context, p domain.Principal, filter ports.UserFilter) (*query.Page[*domain.User], error) {
	if err := policy.Authorize(p, policy.Resource{Kind: policy.KindUser, CompanyID: p.CompanyID}, policy.ActionRead).Err(); err != nil {
		return nil, err
	}
	filter.Scope = policy.Scope(p)

	items, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	return query.NewPage(items, total, filter.Params), nil
}

func (s *UserService) Create(ctx context.Context, p domain.Principal, in ports.CreateUserInput) (*domain.User, error) {
	companyID := p.CompanyID
	if p.IsSuperAdmin() && in.CompanyID != "" {
		companyID = in.CompanyID
	}
	if err := policy.Authorize(p, policy.Resource{Kind: policy.KindUser, CompanyID: companyID}, policy.ActionCreate).Err(); err != nil {
		return nil, err
	}
	if in.Role == domain.RoleSuperAdmin && !p.IsSuperAdmin() {
		return nil, domain.ErrForbidden.WithMessage("Somente super administradores podem criar super administradores")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, domain.Internal(err)
	}

	u := &domain.User{
		ID:           newID(),
		CompanyID:    companyID,
		Name:         in.Name,
		Email:        normalizeEmail(in.Email),
		Phone:        in.Phone,
		PasswordHash: string(hash),
		Role:         in.Role,
		Status:       domain.UserActive,
	}
	u.Stamp(p.ID, s.now())

	if err := s.repo.Create(ctx, u); err != nil {
		return nil, err
	}

	s.logger.Info().Str("user_id", u.ID).Str("company_id", companyID).Str("role", string(u.Role)).Msg("user created")
	return u, nil
}

func (s *UserService) Get(ctx context.Context, p domain.Principal, id string) (*domain.User, error) {
	u, err := s.repo.FindByID(ctx, policy.Scope(p), id)
	if err != nil {
		return nil, err
	}
	if err := policy.Authorize(p, userResource(u), policy.ActionRead).Err(); err != nil {
		return nil, err
	}
	return u, nil
}

// Update changes a user. Users may edit their own profile but only an admin
// changes roles or status.
func (s *UserService) Update(ctx context.Context, p domain.Principal, id string, in ports.UpdateUserInput) (*domain.User, error) {
	u, err := s.repo.FindByID(ctx, policy.Scope(p), id)
	if err != nil {
		return nil, err
	}
	if err := policy.Authorize(p, userResource(u), policy.ActionUpdate).Err(); err != nil {
		return nil, err
	}

	privileged := p.Role == domain.RoleAdmin || p.IsSuperAdmin()
	if (in.Role != nil || in.Status != nil) && !privileged {
		return nil, domain.ErrForbidden.WithMessage("Somente administradores alteram perfil ou status")
	}
	if in.Role != nil && *in.Role == domain.RoleSuperAdmin && !p.IsSuperAdmin() {
		return nil, domain.ErrForbidden
	}

	setIf(&u.Name, in.Name)
	setIf(&u.Phone, in.Phone)
	setIf(&u.Role, in.Role)
	setIf(&u.Status, in.Status)
	if in.Password != nil {
		hash, err := bcrypt.GenerateFromPassword([]byte(*in.Password), bcrypt.DefaultCost)
		if err != nil {
			return nil, domain.Internal(err)
		}
		u.PasswordHash = string(hash)
	}
	u.UpdatedBy, u.UpdatedAt = p.ID, s.now()

	if err := s.repo.Update(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

func (s *UserService) Delete(ctx context.Context, p domain.Principal, id string) error {
	if id == p.ID {
		return domain.ErrCannotDeleteSelf
	}
	u, err := s.repo.FindByID(ctx, policy.Scope(p), id)
	if err != nil {
		return err
	}
	if err := policy.Authorize(p, userResource(u), policy.ActionDelete).Err(); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, policy.Scope(p), id); err != nil {
		return err
	}

	s.logger.Info().Str("user_id", id).Str("by", p.ID).Msg("user deleted")
	return nil
}

func userResource(u *domain.User) policy.Resource {
	return policy.Resource{Kind: policy.KindUser, CompanyID: u.CompanyID, OwnerID: u.ID}
}
