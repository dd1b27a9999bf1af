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

type ContestService struct {
	repo        ports.ContestRepository
	inspections ports.InspectionRepository
	logger      zerolog.Logger
	now         func() time.Time
}

func NewContestService(repo ports.ContestRepository, inspections ports.InspectionRepository, logger zerolog.Logger) *ContestService {
	return &ContestService{repo: repo, inspections: inspections, logger: logger, now: utcNow}
}

// Create opens a contest on a finished inspection of the client's property.
// The store keeps at most one open contest per inspection.
func (s *ContestService) Create(ctx context.Context, p domain.Principal, in ports.CreateContestInput) (*domain.Contest, error) {
	row, err := s.inspections.FindByID(ctx, query.AllTenants(), in.InspectionID)
	if err != nil {
		return nil, err
	}
	ins := row.Inspection

	res := policy.Resource{Kind: policy.KindContest, CompanyID: ins.CompanyID, ClientID: ins.ClientID}
	if !policy.Authorize(p, res, policy.ActionCreate).Allowed {
		return nil, domain.ErrInspectionNotFound
	}
	if ins.Status != domain.InspectionCompleted && ins.Status != domain.InspectionApproved {
		return nil, domain.ErrInspectionNotDone
	}

	c := &domain.Contest{
		ID:           newID(),
		CompanyID:    ins.CompanyID,
		InspectionID: ins.ID,
		ClientID:     p.ID,
		Reason:       in.Reason,
		Description:  in.Description,
		Status:       domain.ContestOpen,
	}
	c.Stamp(p.ID, s.now())

	if err := s.repo.Create(ctx, c); err != nil {
		return nil, err
	}

	s.logger.Info().Str("contest_id", c.ID).Str("inspection_id", ins.ID).Str("client_id", p.ID).Msg("contest opened")
	return c, nil
}

// List returns contests of the tenant, or the client's own contests.
func (s *ContestService) List(ctx context.Context, p domain.Principal, filter ports.ContestFilter) (*query.Page[*domain.Contest], error) {
	if p.IsClient() {
		filter.Scope = query.AllTenants()
		filter.ClientID = p.ID
	} else {
		if err := policy.Authorize(p, policy.Resource{Kind: policy.KindContest, CompanyID: p.CompanyID}, policy.ActionRead).Err(); err != nil {
			return nil, err
		}
		filter.Scope = policy.Scope(p)
	}

	items, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	return query.NewPage(items, total, filter.Params), nil
}

func (s *ContestService) Get(ctx context.Context, p domain.Principal, id string) (*domain.Contest, error) {
	scope := policy.Scope(p)
	if p.IsClient() {
		scope = query.AllTenants()
	}
	c, err := s.repo.FindByID(ctx, scope, id)
	if err != nil {
		return nil, err
	}
	if d := policy.Authorize(p, contestResource(c), policy.ActionRead); !d.Allowed {
		if p.IsClient() {
			return nil, domain.ErrContestNotFound
		}
		return nil, d.Err()
	}
	return c, nil
}

// Resolve moves a contest to review or to a final decision.
func (s *ContestService) Resolve(ctx context.Context, p domain.Principal, id string, in ports.ResolveContestInput) (*domain.Contest, error) {
	c, err := s.repo.FindByID(ctx, policy.Scope(p), id)
	if err != nil {
		return nil, err
	}
	if err := policy.Authorize(p, contestResource(c), policy.ActionTransition).Err(); err != nil {
		return nil, err
	}
	from := c.Status
	if !from.CanTransitionTo(in.Status) {
		return nil, domain.ErrInvalidTransition.WithFields(domain.FieldError{
			Field:   "status",
			Message: "não é possível passar de " + string(from) + " para " + string(in.Status),
		})
	}

	now := s.now()
	c.Status = in.Status
	if in.Response != "" {
		c.Response = in.Response
	}
	if in.Status.Final() {
		c.ResolvedBy = p.ID
		c.ResolvedAt = &now
	}
	c.UpdatedBy, c.UpdatedAt = p.ID, now

	if err := s.repo.Transition(ctx, c, from); err != nil {
		return nil, err
	}

	s.logger.Info().Str("contest_id", c.ID).Str("from", string(from)).Str("to", string(c.Status)).Str("by", p.ID).Msg("contest status changed")
	return c, nil
}

func (s *ContestService) Delete(ctx context.Context, p domain.Principal, id string) error {
	c, err := s.repo.FindByID(ctx, policy.Scope(p), id)
	if err != nil {
		return err
	}
	if err := policy.Authorize(p, contestResource(c), policy.ActionDelete).Err(); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, policy.Scope(p), id); err != nil {
		return err
	}

	s.logger.Info().Str("contest_id", id).Str("by", p.ID).Msg("contest deleted")
	return nil
}

func contestResource(c *domain.Contest) policy.Resource {
	return policy.Resource{Kind: policy.KindContest, CompanyID: c.CompanyID, ClientID: c.ClientID}
}
