package service

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/vistoria/inspection-api/internal/core/domain"
	"github.com/vistoria/inspection-api/internal/core/policy"
	"github.com/vistoria/inspection-api/internal/core/ports"
	"github.com/vistoria/inspection-api/internal/core/query"
)

type PropertyService struct {
	repo   ports.PropertyRepository
	logger zerolog.Logger
	now    func() time.Time
}

func NewPropertyService(repo ports.PropertyRepository, logger zerolog.Logger) *PropertyService {
	return &PropertyService{repo: repo, logger: logger, now: utcNow}
}

func (s *PropertyService) List(ctx context.Context, p domain.Principal, filter ports.PropertyFilter) (*query.Page[*domain.Property], error) {
	if err := policy.Authorize(p, policy.Resource{Kind: policy.KindProperty, CompanyID: p.CompanyID}, policy.ActionRead).Err(); err != nil {
		return nil, err
	}
	filter.Scope = policy.Scope(p)

	items, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	return query.NewPage(items, total, filter.Params), nil
}

func (s *PropertyService) Create(ctx context.Context, p domain.Principal, in ports.CreatePropertyInput) (*domain.Property, error) {
	companyID := p.CompanyID
	if p.IsSuperAdmin() && in.CompanyID != "" {
		companyID = in.CompanyID
	}
	if err := policy.Authorize(p, policy.Resource{Kind: policy.KindProperty, CompanyID: companyID}, policy.ActionCreate).Err(); err != nil {
		return nil, err
	}

	prop := &domain.Property{
		ID:           newID(),
		CompanyID:    companyID,
		ClientID:     in.ClientID,
		Name:         in.Name,
		Address:      in.Address,
		City:         in.City,
		State:        in.State,
		ZipCode:      in.ZipCode,
		PropertyType: in.PropertyType,
		Status:       domain.PropertyActive,
		OwnerName:    in.OwnerName,
		Notes:        in.Notes,
	}
	prop.Stamp(p.ID, s.now())

	if err := s.repo.Create(ctx, prop); err != nil {
		return nil, err
	}

	s.logger.Info().Str("property_id", prop.ID).Str("company_id", companyID).Msg("property created")
	return prop, nil
}

func (s *PropertyService) Get(ctx context.Context, p domain.Principal, id string) (*domain.Property, error) {
	prop, err := s.repo.FindByID(ctx, policy.Scope(p), id)
	if err != nil {
		return nil, err
	}
	if err := policy.Authorize(p, propertyResource(prop), policy.ActionRead).Err(); err != nil {
		return nil, err
	}
	return prop, nil
}

func (s *PropertyService) Update(ctx context.Context, p domain.Principal, id string, in ports.UpdatePropertyInput) (*domain.Property, error) {
	prop, err := s.repo.FindByID(ctx, policy.Scope(p), id)
	if err != nil {
		return nil, err
	}
	if err := policy.Authorize(p, propertyResource(prop), policy.ActionUpdate).Err(); err != nil {
		return nil, err
	}

	setIf(&prop.ClientID, in.ClientID)
	setIf(&prop.Name, in.Name)
	setIf(&prop.Address, in.Address)
	setIf(&prop.City, in.City)
	setIf(&prop.State, in.State)
	setIf(&prop.ZipCode, in.ZipCode)
	setIf(&prop.PropertyType, in.PropertyType)
	setIf(&prop.Status, in.Status)
	setIf(&prop.OwnerName, in.OwnerName)
	setIf(&prop.Notes, in.Notes)
	prop.UpdatedBy, prop.UpdatedAt = p.ID, s.now()

	if err := s.repo.Update(ctx, prop); err != nil {
		return nil, err
	}
	return prop, nil
}

// Delete removes a property. The repository refuses while inspections
// reference it.
func (s *PropertyService) Delete(ctx context.Context, p domain.Principal, id string) error {
	prop, err := s.repo.FindByID(ctx, policy.Scope(p), id)
	if err != nil {
		return err
	}
	if err := policy.Authorize(p, propertyResource(prop), policy.ActionDelete).Err(); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, policy.Scope(p), id); err != nil {
		return err
	}

	s.logger.Info().Str("property_id", id).Str("by", p.ID).Msg("property deleted")
	return nil
}

func propertyResource(prop *domain.Property) policy.Resource {
	return policy.Resource{Kind: policy.KindProperty, CompanyID: prop.CompanyID, ClientID: prop.ClientID}
}
