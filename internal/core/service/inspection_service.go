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
	"github.com/vistoria/inspection-api/internal/pkg/metrics"
)

type InspectionService struct {
	repo       ports.InspectionRepository
	properties ports.PropertyRepository
	users      ports.UserRepository
	logger     zerolog.Logger
	now        func() time.Time
}

func NewInspectionService(repo ports.InspectionRepository, properties ports.PropertyRepository, users ports.UserRepository, logger zerolog.Logger) *InspectionService {
	return &InspectionService{repo: repo, properties: properties, users: users, logger: logger, now: utcNow}
}

// List returns inspections of the principal's tenant. Inspectors only see
// the inspections assigned to them.
func (s *InspectionService) List(ctx context.Context, p domain.Principal, filter ports.InspectionFilter) (*query.Page[*domain.InspectionRow], error) {
	if err := policy.Authorize(p, policy.Resource{Kind: policy.KindInspection, CompanyID: p.CompanyID}, policy.ActionRead).Err(); err != nil {
		return nil, err
	}
	filter.Scope = policy.Scope(p)
	if p.Role == domain.RoleInspector {
		filter.InspectorID = p.ID
	}
	return s.list(ctx, filter)
}

// ListForClient returns inspections of the properties linked to a client.
func (s *InspectionService) ListForClient(ctx context.Context, p domain.Principal, filter ports.InspectionFilter) (*query.Page[*domain.InspectionRow], error) {
	if !p.IsClient() {
		return nil, domain.ErrForbidden
	}
	filter.Scope = query.AllTenants()
	filter.ClientID = p.ID
	return s.list(ctx, filter)
}

func (s *InspectionService) list(ctx context.Context, filter ports.InspectionFilter) (*query.Page[*domain.InspectionRow], error) {
	items, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	return query.NewPage(items, total, filter.Params), nil
}

// Create schedules an inspection. The store guarantees at most one pending
// inspection per property.
func (s *InspectionService) Create(ctx context.Context, p domain.Principal, in ports.CreateInspectionInput) (*domain.InspectionRow, error) {
	prop, err := s.properties.FindByID(ctx, policy.Scope(p), in.PropertyID)
	if err != nil {
		return nil, err
	}
	if err := policy.Authorize(p, policy.Resource{Kind: policy.KindInspection, CompanyID: prop.CompanyID}, policy.ActionCreate).Err(); err != nil {
		return nil, err
	}
	if in.InspectorID != "" {
		if err := s.checkInspector(ctx, prop.CompanyID, in.InspectorID); err != nil {
			return nil, err
		}
	}

	ins := &domain.Inspection{
		ID:            newID(),
		CompanyID:     prop.CompanyID,
		PropertyID:    prop.ID,
		ClientID:      prop.ClientID,
		InspectorID:   in.InspectorID,
		Type:          in.Type,
		Status:        domain.InspectionPending,
		ScheduledDate: in.ScheduledDate.UTC(),
		Notes:         in.Notes,
	}
	ins.Stamp(p.ID, s.now())

	if err := s.repo.Create(ctx, ins); err != nil {
		return nil, err
	}

	metrics.InspectionsCreatedTotal.WithLabelValues(string(ins.Type)).Inc()
	s.logger.Info().Str("inspection_id", ins.ID).Str("property_id", prop.ID).Str("company_id", prop.CompanyID).Msg("inspection created")

	return s.repo.FindByID(ctx, query.Tenant(ins.CompanyID), ins.ID)
}

func (s *InspectionService) Get(ctx context.Context, p domain.Principal, id string) (*domain.InspectionRow, error) {
	scope := policy.Scope(p)
	if p.IsClient() {
		scope = query.AllTenants()
	}
	row, err := s.repo.FindByID(ctx, scope, id)
	if err != nil {
		return nil, err
	}
	if d := policy.Authorize(p, inspectionResource(&row.Inspection), policy.ActionRead); !d.Allowed {
		if p.IsClient() {
			// clients must not learn that foreign ids exist
			return nil, domain.ErrInspectionNotFound
		}
		return nil, d.Err()
	}
	if p.Role == domain.RoleInspector && row.InspectorID != p.ID {
		// inspectors only see their assignments, as in List
		return nil, domain.ErrInspectionNotFound
	}
	return row, nil
}

// Update edits scheduling fields. The assigned inspector may only edit notes.
func (s *InspectionService) Update(ctx context.Context, p domain.Principal, id string, in ports.UpdateInspectionInput) (*domain.InspectionRow, error) {
	row, err := s.repo.FindByID(ctx, policy.Scope(p), id)
	if err != nil {
		return nil, err
	}
	ins := row.Inspection
	if err := policy.Authorize(p, inspectionResource(&ins), policy.ActionUpdate).Err(); err != nil {
		return nil, err
	}

	supervisor := p.IsSuperAdmin() || p.Role == domain.RoleAdmin || p.Role == domain.RoleManager
	if !supervisor && (in.InspectorID != nil || in.ScheduledDate != nil || in.Type != nil) {
		return nil, domain.ErrForbidden.WithMessage("Vistoriadores só podem alterar observações")
	}
	if in.InspectorID != nil && *in.InspectorID != "" && *in.InspectorID != ins.InspectorID {
		if err := s.checkInspector(ctx, ins.CompanyID, *in.InspectorID); err != nil {
			return nil, err
		}
	}

	setIf(&ins.InspectorID, in.InspectorID)
	setIf(&ins.Type, in.Type)
	setIf(&ins.Notes, in.Notes)
	if in.ScheduledDate != nil {
		ins.ScheduledDate = in.ScheduledDate.UTC()
	}
	ins.UpdatedBy, ins.UpdatedAt = p.ID, s.now()

	if err := s.repo.Update(ctx, &ins); err != nil {
		return nil, err
	}
	return s.repo.FindByID(ctx, query.Tenant(ins.CompanyID), ins.ID)
}

// Transition moves an inspection through its state machine. Field work
// (start, complete) is allowed to the assigned inspector; approving,
// cancelling and reopening need a supervisor.
func (s *InspectionService) Transition(ctx context.Context, p domain.Principal, id string, to domain.InspectionStatus, notes string) (*domain.InspectionRow, error) {
	row, err := s.repo.FindByID(ctx, policy.Scope(p), id)
	if err != nil {
		return nil, err
	}
	ins := row.Inspection
	from := ins.Status

	action := policy.ActionTransition
	if from.IsReview(to) {
		action = policy.ActionReview
	}
	if err := policy.Authorize(p, inspectionResource(&ins), action).Err(); err != nil {
		return nil, err
	}
	if !from.CanTransitionTo(to) {
		return nil, domain.ErrInvalidTransition.WithFields(domain.FieldError{
			Field:   "status",
			Message: "não é possível passar de " + string(from) + " para " + string(to),
		})
	}

	now := s.now()
	ins.Status = to
	switch to {
	case domain.InspectionInProgress:
		if ins.StartedAt == nil {
			ins.StartedAt = &now
		}
		ins.CompletedAt = nil
	case domain.InspectionCompleted:
		ins.CompletedAt = &now
	}
	if notes != "" {
		ins.Notes = notes
	}
	ins.UpdatedBy, ins.UpdatedAt = p.ID, now

	if err := s.repo.Transition(ctx, &ins, from); err != nil {
		return nil, err
	}

	s.logger.Info().Str("inspection_id", ins.ID).Str("from", string(from)).Str("to", string(to)).Str("by", p.ID).Msg("inspection status changed")
	return s.repo.FindByID(ctx, query.Tenant(ins.CompanyID), ins.ID)
}

func (s *InspectionService) Delete(ctx context.Context, p domain.Principal, id string) error {
	row, err := s.repo.FindByID(ctx, policy.Scope(p), id)
	if err != nil {
		return err
	}
	if err := policy.Authorize(p, inspectionResource(&row.Inspection), policy.ActionDelete).Err(); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, policy.Scope(p), id); err != nil {
		return err
	}

	s.logger.Info().Str("inspection_id", id).Str("by", p.ID).Msg("inspection deleted")
	return nil
}

// checkInspector verifies that userID is an active field user of companyID.
func (s *InspectionService) checkInspector(ctx context.Context, companyID, userID string) error {
	u, err := s.users.FindByID(ctx, query.Tenant(companyID), userID)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return domain.ErrInspectorInvalid
		}
		return err
	}
	if u.Status != domain.UserActive || u.Role == domain.RoleViewer {
		return domain.ErrInspectorInvalid
	}
	return nil
}

func inspectionResource(ins *domain.Inspection) policy.Resource {
	return policy.Resource{
		Kind:      policy.KindInspection,
		CompanyID: ins.CompanyID,
		OwnerID:   ins.InspectorID,
		ClientID:  ins.ClientID,
	}
}
