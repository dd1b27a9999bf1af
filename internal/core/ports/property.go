package ports

import (
	"context"

	"github.com/vistoria/inspection-api/internal/core/domain"
	"github.com/vistoria/inspection-api/internal/core/query"
)

// PropertySpec is the list contract for properties.
var PropertySpec = query.Spec{
	SortFields:   []string{"created_at", "updated_at", "name", "address", "city"},
	DefaultSort:  "created_at",
	DefaultOrder: query.Desc,
	SearchFields: []string{"name", "address", "city", "owner_name"},
}

// PropertyFilter carries the list parameters for properties.
type PropertyFilter struct {
	Scope        query.Scope
	Params       query.Params
	Status       string
	PropertyType string
	ClientID     string
	City         string
}

// PropertyRepository persists properties.
type PropertyRepository interface {
	Create(ctx context.Context, p *domain.Property) error
	FindByID(ctx context.Context, scope query.Scope, id string) (*domain.Property, error)
	List(ctx context.Context, filter PropertyFilter) ([]*domain.Property, int64, error)
	Update(ctx context.Context, p *domain.Property) error
	// Delete removes the property only while it has no inspections; it
	// returns domain.ErrPropertyHasInspection otherwise.
	Delete(ctx context.Context, scope query.Scope, id string) error
	Count(ctx context.Context, scope query.Scope) (int64, error)
}

// CreatePropertyInput carries the fields accepted by property creation.
type CreatePropertyInput struct {
	CompanyID    string // only honoured for super_admin
	ClientID     string
	Name         string
	Address      string
	City         string
	State        string
	ZipCode      string
	PropertyType domain.PropertyType
	OwnerName    string
	Notes        string
}

// UpdatePropertyInput holds optional property fields; nil means unchanged.
type UpdatePropertyInput struct {
	ClientID     *string
	Name         *string
	Address      *string
	City         *string
	State        *string
	ZipCode      *string
	PropertyType *domain.PropertyType
	Status       *domain.PropertyStatus
	OwnerName    *string
	Notes        *string
}

// PropertyService manages properties.
type PropertyService interface {
	List(ctx context.Context, p domain.Principal, filter PropertyFilter) (*query.Page[*domain.Property], error)
	Create(ctx context.Context, p domain.Principal, in CreatePropertyInput) (*domain.Property, error)
	Get(ctx context.Context, p domain.Principal, id string) (*domain.Property, error)
	Update(ctx context.Context, p domain.Principal, id string, in UpdatePropertyInput) (*domain.Property, error)
	Delete(ctx context.Context, p domain.Principal, id string) error
}
