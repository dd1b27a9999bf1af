package ports

import (
	"context"

	"github.com/vistoria/inspection-api/internal/core/domain"
	"github.com/vistoria/inspection-api/internal/core/query"
)

// CompanySpec is the list contract for companies.
var CompanySpec = query.Spec{
	SortFields:   []string{"created_at", "name", "status"},
	DefaultSort:  "created_at",
	DefaultOrder: query.Desc,
	SearchFields: []string{"name", "document", "email"},
}

// CompanyFilter carries the list parameters for companies.
type CompanyFilter struct {
	Params query.Params
	Status string
}

// CompanyRepository persists tenants.
type CompanyRepository interface {
	Create(ctx context.Context, c *domain.Company) error
	FindByID(ctx context.Context, id string) (*domain.Company, error)
	List(ctx context.Context, filter CompanyFilter) ([]*domain.Company, int64, error)
	Update(ctx context.Context, c *domain.Company) error
	// Delete exists for compensating a failed sign-up.
	Delete(ctx context.Context, id string) error
}

// UpdateCompanyInput holds optional company fields; nil means unchanged.
type UpdateCompanyInput struct {
	Name    *string
	Email   *string
	Phone   *string
	Address *string
}

// CompanyService manages tenants.
type CompanyService interface {
	List(ctx context.Context, p domain.Principal, filter CompanyFilter) (*query.Page[*domain.Company], error)
	Get(ctx context.Context, p domain.Principal, id string) (*domain.Company, error)
	Update(ctx context.Context, p domain.Principal, id string, in UpdateCompanyInput) (*domain.Company, error)
	SetStatus(ctx context.Context, p domain.Principal, id string, status domain.CompanyStatus) (*domain.Company, error)
	// EnsureActive returns domain.ErrCompanyInactive for suspended tenants.
	EnsureActive(ctx context.Context, p domain.Principal) error
}
