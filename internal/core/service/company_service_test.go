package service

import (
	"context"
	"errors"
	"testing"

	"github.com/vistoria/inspection-api/internal/core/domain"
	"github.com/vistoria/inspection-api/internal/core/ports"
)

func newTestCompanyService() (*CompanyService, *stubCompanyRepo) {
	repo := newStubCompanyRepo(
		&domain.Company{ID: "company-a", Name: "A", Status: domain.CompanyActive},
		&domain.Company{ID: "company-b", Name: "B", Status: domain.CompanySuspended},
	)
	svc := NewCompanyService(repo, nopLogger)
	svc.now = fixedNow
	return svc, repo
}

func TestCompanyService_List_SuperAdminOnly(t *testing.T) {
	svc, _ := newTestCompanyService()

	page, err := svc.List(context.Background(), superAdmin, ports.CompanyFilter{})
	if err != nil {
		t.Fatalf("List returned error: %v", err)
	}
	if page.Total != 2 {
		t.Fatalf("expected 2 companies, got %d", page.Total)
	}

	if _, err := svc.List(context.Background(), adminA, ports.CompanyFilter{}); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
}

func TestCompanyService_Get_OtherTenantIsNotFound(t *testing.T) {
	svc, _ := newTestCompanyService()

	if _, err := svc.Get(context.Background(), adminA, "company-a"); err != nil {
		t.Fatalf("Get own company returned error: %v", err)
	}
	if _, err := svc.Get(context.Background(), adminA, "company-b"); !errors.Is(err, domain.ErrCompanyNotFound) {
		t.Fatalf("expected ErrCompanyNotFound, got %v", err)
	}
}

func TestCompanyService_Update(t *testing.T) {
	svc, repo := newTestCompanyService()
	name := "A Vistorias"

	if _, err := svc.Update(context.Background(), managerA, "company-a", ports.UpdateCompanyInput{Name: &name}); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("expected manager to be forbidden, got %v", err)
	}

	c, err := svc.Update(context.Background(), adminA, "company-a", ports.UpdateCompanyInput{Name: &name})
	if err != nil {
		t.Fatalf("Update returned error: %v", err)
	}
	if c.Name != name || repo.companies["company-a"].Name != name {
		t.Fatalf("name not updated")
	}
	if c.UpdatedBy != adminA.ID {
		t.Fatalf("expected audit updated_by %s, got %s", adminA.ID, c.UpdatedBy)
	}
}

func TestCompanyService_SetStatus(t *testing.T) {
	svc, repo := newTestCompanyService()

	if _, err := svc.SetStatus(context.Background(), adminA, "company-a", domain.CompanySuspended); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("expected tenant admin to be forbidden, got %v", err)
	}
	if _, err := svc.SetStatus(context.Background(), superAdmin, "company-a", domain.CompanySuspended); err != nil {
		t.Fatalf("SetStatus returned error: %v", err)
	}
	if repo.companies["company-a"].Status != domain.CompanySuspended {
		t.Fatalf("status not changed")
	}
}

func TestCompanyService_EnsureActive(t *testing.T) {
	svc, _ := newTestCompanyService()
	ctx := context.Background()

	if err := svc.EnsureActive(ctx, adminA); err != nil {
		t.Fatalf("expected active company, got %v", err)
	}
	if err := svc.EnsureActive(ctx, adminB); !errors.Is(err, domain.ErrCompanyInactive) {
		t.Fatalf("expected ErrCompanyInactive for suspended tenant, got %v", err)
	}
	orphan := domain.Principal{Type: domain.PrincipalUser, ID: "u", Role: domain.RoleAdmin, CompanyID: "gone"}
	if err := svc.EnsureActive(ctx, orphan); !errors.Is(err, domain.ErrCompanyInactive) {
		t.Fatalf("expected ErrCompanyInactive for missing tenant, got %v", err)
	}
	if err := svc.EnsureActive(ctx, superAdmin); err != nil {
		t.Fatalf("super_admin should bypass, got %v", err)
	}
	if err := svc.EnsureActive(ctx, clientX); err != nil {
		t.Fatalf("clients should bypass, got %v", err)
	}
}
