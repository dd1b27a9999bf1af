package ports

import (
	"context"
	"time"

	"github.com/vistoria/inspection-api/internal/core/domain"
	"github.com/vistoria/inspection-api/internal/core/query"
)

// InspectionSpec is the list contract for inspections.
var InspectionSpec = query.Spec{
	SortFields:   []string{"scheduled_date", "created_at", "updated_at", "status"},
	DefaultSort:  "scheduled_date",
	DefaultOrder: query.Desc,
	SearchFields: []string{"notes"},
}

// InspectionFilter carries the list parameters for inspections.
type InspectionFilter struct {
	Scope       query.Scope
	Params      query.Params
	Status      string
	InspectorID string
	PropertyID  string
	ClientID    string
	Type        string
	Scheduled   query.DateRange
}

// InspectionRepository persists inspections.
type InspectionRepository interface {
	// Create inserts the inspection and bumps the property inspection count.
	// It returns domain.ErrPendingInspection when the property already has a
	// pending inspection and domain.ErrPropertyNotFound when the property is
	// gone.
	Create(ctx context.Context, in *domain.Inspection) error
	FindByID(ctx context.Context, scope query.Scope, id string) (*domain.InspectionRow, error)
	List(ctx context.Context, filter InspectionFilter) ([]*domain.InspectionRow, int64, error)
	Update(ctx context.Context, in *domain.Inspection) error
	// Transition sets the new status only if the stored status still equals
	// from; it returns domain.ErrInvalidTransition when it changed meanwhile.
	Transition(ctx context.Context, in *domain.Inspection, from domain.InspectionStatus) error
	Delete(ctx context.Context, scope query.Scope, id string) error
	CountByStatus(ctx context.Context, scope query.Scope) (map[domain.InspectionStatus]int64, error)
}

// CreateInspectionInput carries the fields accepted by inspection creation.
type CreateInspectionInput struct {
	PropertyID    string
	InspectorID   string
	Type          domain.InspectionType
	ScheduledDate time.Time
	Notes         string
}

// UpdateInspectionInput holds optional inspection fields; nil means unchanged.
type UpdateInspectionInput struct {
	InspectorID   *string
	Type          *domain.InspectionType
	ScheduledDate *time.Time
	Notes         *string
}

// InspectionService manages inspections.
type InspectionService interface {
	List(ctx context.Context, p domain.Principal, filter InspectionFilter) (*query.Page[*domain.InspectionRow], error)
	Create(ctx context.Context, p domain.Principal, in CreateInspectionInput) (*domain.InspectionRow, error)
	Get(ctx context.Context, p domain.Principal, id string) (*domain.InspectionRow, error)
	Update(ctx context.Context, p domain.Principal, id string, in UpdateInspectionInput) (*domain.InspectionRow, error)
	Transition(ctx context.Context, p domain.Principal, id string, to domain.InspectionStatus, notes string) (*domain.InspectionRow, error)
	Delete(ctx context.Context, p domain.Principal, id string) error
	// ListForClient returns inspections of properties linked to the client.
	ListForClient(ctx context.Context, p domain.Principal, filter InspectionFilter) (*query.Page[*domain.InspectionRow], error)
}
