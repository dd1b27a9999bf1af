package service

import (
	"context"
	"errors"
	"testing"

	"github.com/vistoria/inspection-api/internal/core/domain"
	"github.com/vistoria/inspection-api/internal/core/ports"
)

func seedUsers() *stubUserRepo {
	return newStubUserRepo(
		&domain.User{ID: adminA.ID, CompanyID: "company-a", Email: "admin@a.com", Role: domain.RoleAdmin, Status: domain.UserActive},
		&domain.User{ID: inspectorA.ID, CompanyID: "company-a", Email: "insp@a.com", Role: domain.RoleInspector, Status: domain.UserActive},
		&domain.User{ID: viewerA.ID, CompanyID: "company-a", Email: "viewer@a.com", Role: domain.RoleViewer, Status: domain.UserActive},
		&domain.User{ID: adminB.ID, CompanyID: "company-b", Email: "admin@b.com", Role: domain.RoleAdmin, Status: domain.UserActive},
	)
}

func TestUserService_List_ScopedToTenant(t *testing.T) {
	svc := NewUserService(seedUsers(), nopLogger)

	page, err := svc.List(context.Background(), adminA, ports.UserFilter{})
	if err != nil {
		t.Fatalf("List returned error: %v", err)
	}
	if page.Total != 3 {
		t.Fatalf("expected 3 users of company-a, got %d", page.Total)
	}
	for _, u := range page.Items {
		if u.CompanyID != "company-a" {
			t.Fatalf("leaked user of %s", u.CompanyID)
		}
	}

	all, _ := svc.List(context.Background(), superAdmin, ports.UserFilter{})
	if all.Total != 4 {
		t.Fatalf("expected super_admin to see all users, got %d", all.Total)
	}

	if _, err := svc.List(context.Background(), inspectorA, ports.UserFilter{}); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("expected inspector to be forbidden, got %v", err)
	}
}

func TestUserService_Create(t *testing.T) {
	repo := seedUsers()
	svc := NewUserService(repo, nopLogger)
	ctx := context.Background()

	u, err := svc.Create(ctx, adminA, ports.CreateUserInput{Name: "New", Email: "NEW@a.com", Password: "pass1234", Role: domain.RoleInspector, CompanyID: "company-b"})
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}
	if u.CompanyID != "company-a" {
		t.Fatalf("tenant admin must not pick another company, got %s", u.CompanyID)
	}
	if u.Email != "new@a.com" {
		t.Fatalf("expected normalized email, got %s", u.Email)
	}

	if _, err := svc.Create(ctx, adminA, ports.CreateUserInput{Email: "x@a.com", Password: "pass1234", Role: domain.RoleSuperAdmin}); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("expected ErrForbidden creating super_admin, got %v", err)
	}
	if _, err := svc.Create(ctx, adminA, ports.CreateUserInput{Email: "admin@a.com", Password: "pass1234", Role: domain.RoleViewer}); !errors.Is(err, domain.ErrEmailTaken) {
		t.Fatalf("expected ErrEmailTaken, got %v", err)
	}
	if _, err := svc.Create(ctx, managerA, ports.CreateUserInput{Email: "m@a.com", Password: "pass1234", Role: domain.RoleViewer}); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("expected manager to be forbidden, got %v", err)
	}

	other, err := svc.Create(ctx, superAdmin, ports.CreateUserInput{Email: "sa@b.com", Password: "pass1234", Role: domain.RoleAdmin, CompanyID: "company-b"})
	if err != nil {
		t.Fatalf("super_admin Create returned error: %v", err)
	}
	if other.CompanyID != "company-b" {
		t.Fatalf("expected super_admin to choose company, got %s", other.CompanyID)
	}
}

func TestUserService_Update_OwnProfile(t *testing.T) {
	svc := NewUserService(seedUsers(), nopLogger)
	ctx := context.Background()
	name := "Renamed"
	role := domain.RoleAdmin

	u, err := svc.Update(ctx, viewerA, viewerA.ID, ports.UpdateUserInput{Name: &name})
	if err != nil {
		t.Fatalf("viewer updating own profile returned error: %v", err)
	}
	if u.Name != name {
		t.Fatalf("name not updated")
	}

	if _, err := svc.Update(ctx, viewerA, viewerA.ID, ports.UpdateUserInput{Role: &role}); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("expected self-promotion to be forbidden, got %v", err)
	}
	if _, err := svc.Update(ctx, viewerA, inspectorA.ID, ports.UpdateUserInput{Name: &name}); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("expected editing another user to be forbidden, got %v", err)
	}
}

func TestUserService_Delete(t *testing.T) {
	repo := seedUsers()
	svc := NewUserService(repo, nopLogger)
	ctx := context.Background()

	if err := svc.Delete(ctx, adminA, adminA.ID); !errors.Is(err, domain.ErrCannotDeleteSelf) {
		t.Fatalf("expected ErrCannotDeleteSelf, got %v", err)
	}
	if err := svc.Delete(ctx, adminA, adminB.ID); !errors.Is(err, domain.ErrUserNotFound) {
		t.Fatalf("expected cross-tenant delete to be NotFound, got %v", err)
	}
	if err := svc.Delete(ctx, adminA, inspectorA.ID); err != nil {
		t.Fatalf("Delete returned error: %v", err)
	}
	if _, ok := repo.users[inspectorA.ID]; ok {
		t.Fatalf("user not deleted")
	}
}
