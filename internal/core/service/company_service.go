package service

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"github.com/vistoria/inspection-api/internal/core/domain"
	"github.com/vistoria/inspection-api/internal/core/policy"
	"github.com/vistoria/inspection-api/internal/core/ports"
	"github.com/vistoria/inspection-api/internal/core/query"
)

type CompanyService struct {
	repo   ports.CompanyRepository
	logger zerolog.Logger
	now    func() time.Time
}

func NewCompanyService(repo ports.CompanyRepository, logger zerolog.Logger) *CompanyService {
	return &CompanyService{repo: repo, logger: logger, now: utcNow}
}

// List returns all tenants. Only super_admin may list across companies.
func (s *CompanyService) List(ctx context.Context, p domain.Principal, filter ports.CompanyFilter) (*query.Page[*domain.Company], error) {
	if !p.IsSuperAdmin() {
		return nil, domain.ErrForbidden
	}
	items, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	return query.NewPage(items, total, filter.Params), nil
}

func (s *CompanyService) Get(ctx context.Context, p domain.Principal, id string) (*domain.Company, error) {
	c, err := s.load(ctx, p, id)
	if err != nil {
		return nil, err
	}
	if err := policy.Authorize(p, companyResource(c), policy.ActionRead).Err(); err != nil {
		return nil, err
	}
	return c, nil
}

func (s *CompanyService) Update(ctx context.Context, p domain.Principal, id string, in ports.UpdateCompanyInput) (*domain.Company, error) {
	c, err := s.load(ctx, p, id)
	if err != nil {
		return nil, err
	}
	if err := policy.Authorize(p, companyResource(c), policy.ActionUpdate).Err(); err != nil {
		return nil, err
	}

	setIf(&c.Name, in.Name)
	setIf(&c.Phone, in.Phone)
	setIf(&c.Address, in.Address)
	if in.Email != nil {
		c.Email = normalizeEmail(*in.Email)
	}
	c.UpdatedBy, c.UpdatedAt = p.ID, s.now()

	if err := s.repo.Update(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

// SetStatus suspends or reactivates a tenant.
func (s *CompanyService) SetStatus(ctx context.Context, p domain.Principal, id string, status domain.CompanyStatus) (*domain.Company, error) {
	c, err := s.load(ctx, p, id)
	if err != nil {
		return nil, err
	}
	if err := policy.Authorize(p, companyResource(c), policy.ActionTransition).Err(); err != nil {
		return nil, err
	}

	c.Status = status
	c.UpdatedBy, c.UpdatedAt = p.ID, s.now()
	if err := s.repo.Update(ctx, c); err != nil {
		return nil, err
	}

	s.logger.Info().Str("company_id", c.ID).Str("status", string(status)).Str("by", p.ID).Msg("company status changed")
	return c, nil
}

// EnsureActive rejects users of suspended tenants. super_admin and clients
// are not bound to a tenant.
func (s *CompanyService) EnsureActive(ctx context.Context, p domain.Principal) error {
	if p.IsClient() || p.IsSuperAdmin() {
		return nil
	}
	c, err := s.repo.FindByID(ctx, p.CompanyID)
	if errors.Is(err, domain.ErrCompanyNotFound) {
		return domain.ErrCompanyInactive
	}
	if err != nil {
		return err
	}
	if !c.Active() {
		return domain.ErrCompanyInactive
	}
	return nil
}

// load hides other tenants behind NotFound so ids cannot be probed.
func (s *CompanyService) load(ctx context.Context, p domain.Principal, id string) (*domain.Company, error) {
	if !p.IsSuperAdmin() && p.CompanyID != id {
		return nil, domain.ErrCompanyNotFound
	}
	return s.repo.FindByID(ctx, id)
}

func companyResource(c *domain.Company) policy.Resource {
	return policy.Resource{Kind: policy.KindCompany, CompanyID: c.ID}
}

func setIf[T any](dst *T, v *T) {
	if v != nil {
		*dst = *v
	}
}
