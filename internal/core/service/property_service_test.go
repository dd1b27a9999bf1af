package service

import (
	"context"
	"errors"
	"testing"

	"github.com/vistoria/inspection-api/internal/core/domain"
	"github.com/vistoria/inspection-api/internal/core/ports"
)

func seedProperties() *stubPropertyRepo {
	return newStubPropertyRepo(
		&domain.Property{ID: "prop-a1", CompanyID: "company-a", ClientID: clientX.ID, Name: "Casa Azul", Address: "Rua 1", Status: domain.PropertyActive},
		&domain.Property{ID: "prop-a2", CompanyID: "company-a", Name: "Loja", Address: "Rua 2", Status: domain.PropertyActive, InspectionCount: 2},
		&domain.Property{ID: "prop-b1", CompanyID: "company-b", Name: "Galpão", Address: "Rua 3", Status: domain.PropertyActive},
	)
}

func TestPropertyService_Create(t *testing.T) {
	repo := newStubPropertyRepo()
	svc := NewPropertyService(repo, nopLogger)
	svc.now = fixedNow

	prop, err := svc.Create(context.Background(), managerA, ports.CreatePropertyInput{Name: "Apto 12", Address: "Av. Central", PropertyType: domain.PropertyResidential, CompanyID: "company-b"})
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}
	if prop.CompanyID != "company-a" {
		t.Fatalf("expected tenant company, got %s", prop.CompanyID)
	}
	if prop.Status != domain.PropertyActive || prop.CreatedBy != managerA.ID || !prop.CreatedAt.Equal(fixedNow()) {
		t.Fatalf("unexpected defaults: %+v", prop)
	}

	if _, err := svc.Create(context.Background(), inspectorA, ports.CreatePropertyInput{Name: "x"}); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("expected inspector to be forbidden, got %v", err)
	}
}

func TestPropertyService_Get_TenantIsolation(t *testing.T) {
	svc := NewPropertyService(seedProperties(), nopLogger)
	ctx := context.Background()

	if _, err := svc.Get(ctx, viewerA, "prop-a1"); err != nil {
		t.Fatalf("Get returned error: %v", err)
	}
	if _, err := svc.Get(ctx, adminA, "prop-b1"); !errors.Is(err, domain.ErrPropertyNotFound) {
		t.Fatalf("expected cross-tenant read to be NotFound, got %v", err)
	}
	if _, err := svc.Get(ctx, superAdmin, "prop-b1"); err != nil {
		t.Fatalf("super_admin Get returned error: %v", err)
	}
}

func TestPropertyService_Update(t *testing.T) {
	repo := seedProperties()
	svc := NewPropertyService(repo, nopLogger)
	city := "Curitiba"

	prop, err := svc.Update(context.Background(), managerA, "prop-a1", ports.UpdatePropertyInput{City: &city})
	if err != nil {
		t.Fatalf("Update returned error: %v", err)
	}
	if prop.City != city || prop.Name != "Casa Azul" {
		t.Fatalf("partial update went wrong: %+v", prop)
	}
	if _, err := svc.Update(context.Background(), viewerA, "prop-a1", ports.UpdatePropertyInput{City: &city}); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("expected viewer to be forbidden, got %v", err)
	}
}

func TestPropertyService_Delete_WithInspections(t *testing.T) {
	repo := seedProperties()
	svc := NewPropertyService(repo, nopLogger)
	ctx := context.Background()

	if err := svc.Delete(ctx, adminA, "prop-a2"); !errors.Is(err, domain.ErrPropertyHasInspection) {
		t.Fatalf("expected ErrPropertyHasInspection, got %v", err)
	}
	if err := svc.Delete(ctx, managerA, "prop-a1"); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("expected manager delete to be forbidden, got %v", err)
	}
	if err := svc.Delete(ctx, adminA, "prop-a1"); err != nil {
		t.Fatalf("Delete returned error: %v", err)
	}
	if _, ok := repo.props["prop-a1"]; ok {
		t.Fatalf("property not deleted")
	}
}
