package ports

import (
	"context"

	"github.com/vistoria/inspection-api/internal/core/domain"
	"github.com/vistoria/inspection-api/internal/core/query"
)

// ContestSpec is the list contract for contests.
var ContestSpec = query.Spec{
	SortFields:   []string{"created_at", "updated_at", "status"},
	DefaultSort:  "created_at",
	DefaultOrder: query.Desc,
	SearchFields: []string{"reason", "description"},
}

// ContestFilter carries the list parameters for contests.
type ContestFilter struct {
	Scope        query.Scope
	Params       query.Params
	Status       string
	InspectionID string
	ClientID     string
}

// ContestRepository persists contests.
type ContestRepository interface {
	// Create returns domain.ErrOpenContest when the inspection already has an
	// open contest.
	Create(ctx context.Context, c *domain.Contest) error
	FindByID(ctx context.Context, scope query.Scope, id string) (*domain.Contest, error)
	List(ctx context.Context, filter ContestFilter) ([]*domain.Contest, int64, error)
	// Transition is a compare-and-set on the stored status.
	Transition(ctx context.Context, c *domain.Contest, from domain.ContestStatus) error
	Delete(ctx context.Context, scope query.Scope, id string) error
	CountByStatus(ctx context.Context, scope query.Scope) (map[domain.ContestStatus]int64, error)
}

// CreateContestInput carries the fields a client sends to contest an inspection.
type CreateContestInput struct {
	InspectionID string
	Reason       string
	Description  string
}

// ResolveContestInput moves a contest forward.
type ResolveContestInput struct {
	Status   domain.ContestStatus
	Response string
}

// ContestService manages contests.
type ContestService interface {
	Create(ctx context.Context, p domain.Principal, in CreateContestInput) (*domain.Contest, error)
	List(ctx context.Context, p domain.Principal, filter ContestFilter) (*query.Page[*domain.Contest], error)
	Get(ctx context.Context, p domain.Principal, id string) (*domain.Contest, error)
	Resolve(ctx context.Context, p domain.Principal, id string, in ResolveContestInput) (*domain.Contest, error)
	Delete(ctx context.Context, p domain.Principal, id string) error
}
