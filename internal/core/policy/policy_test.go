package policy

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/vistoria/inspection-api/internal/core/domain"
	"github.com/vistoria/inspection-api/internal/core/query"
)

func user(id string, role domain.Role, company string) domain.Principal {
	return domain.Principal{Type: domain.PrincipalUser, ID: id, Role: role, CompanyID: company}
}

func TestAuthorize(t *testing.T) {
	admin := user("u-admin", domain.RoleAdmin, "c1")
	manager := user("u-manager", domain.RoleManager, "c1")
	inspector := user("u-insp", domain.RoleInspector, "c1")
	viewer := user("u-viewer", domain.RoleViewer, "c1")
	super := user("u-super", domain.RoleSuperAdmin, "")
	client := domain.Principal{Type: domain.PrincipalClient, ID: "cl-1"}

	tests := []struct {
		name    string
		p       domain.Principal
		r       Resource
		a       Action
		allowed bool
	}{
		{"admin creates property", admin, Resource{Kind: KindProperty, CompanyID: "c1"}, ActionCreate, true},
		{"manager creates property", manager, Resource{Kind: KindProperty, CompanyID: "c1"}, ActionCreate, true},
		{"inspector cannot create property", inspector, Resource{Kind: KindProperty, CompanyID: "c1"}, ActionCreate, false},
		{"viewer reads property", viewer, Resource{Kind: KindProperty, CompanyID: "c1"}, ActionRead, true},
		{"manager cannot delete property", manager, Resource{Kind: KindProperty, CompanyID: "c1"}, ActionDelete, false},
		{"admin deletes property", admin, Resource{Kind: KindProperty, CompanyID: "c1"}, ActionDelete, true},
		{"cross tenant read denied", admin, Resource{Kind: KindProperty, CompanyID: "c2"}, ActionRead, false},
		{"super admin crosses tenants", super, Resource{Kind: KindProperty, CompanyID: "c2"}, ActionDelete, true},
		{"assigned inspector transitions", inspector, Resource{Kind: KindInspection, CompanyID: "c1", OwnerID: "u-insp"}, ActionTransition, true},
		{"other inspector cannot transition", inspector, Resource{Kind: KindInspection, CompanyID: "c1", OwnerID: "u-other"}, ActionTransition, false},
		{"assigned inspector cannot review", inspector, Resource{Kind: KindInspection, CompanyID: "c1", OwnerID: "u-insp"}, ActionReview, false},
		{"manager reviews", manager, Resource{Kind: KindInspection, CompanyID: "c1"}, ActionReview, true},
		{"viewer owner rule does not apply", viewer, Resource{Kind: KindUpload, CompanyID: "c1", OwnerID: "u-viewer"}, ActionDelete, false},
		{"uploader deletes own upload", inspector, Resource{Kind: KindUpload, CompanyID: "c1", OwnerID: "u-insp"}, ActionDelete, true},
		{"viewer reads self", viewer, Resource{Kind: KindUser, CompanyID: "c1", OwnerID: "u-viewer"}, ActionRead, true},
		{"viewer cannot read other users", viewer, Resource{Kind: KindUser, CompanyID: "c1", OwnerID: "u-admin"}, ActionRead, false},
		{"admin cannot suspend own company", admin, Resource{Kind: KindCompany, CompanyID: "c1"}, ActionTransition, false},
		{"client reads own inspection", client, Resource{Kind: KindInspection, CompanyID: "c1", ClientID: "cl-1"}, ActionRead, true},
		{"client cannot read foreign inspection", client, Resource{Kind: KindInspection, CompanyID: "c1", ClientID: "cl-2"}, ActionRead, false},
		{"client creates contest", client, Resource{Kind: KindContest, ClientID: "cl-1"}, ActionCreate, true},
		{"client cannot resolve contest", client, Resource{Kind: KindContest, ClientID: "cl-1"}, ActionTransition, false},
		{"staff cannot create contest", admin, Resource{Kind: KindContest, CompanyID: "c1"}, ActionCreate, false},
		{"anonymous denied", domain.Principal{}, Resource{Kind: KindDashboard}, ActionRead, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := Authorize(tt.p, tt.r, tt.a)
			assert.Equal(t, tt.allowed, d.Allowed, d.Reason)
		})
	}
}

func TestDecision_Err(t *testing.T) {
	d := Authorize(user("u", domain.RoleViewer, "c1"), Resource{Kind: KindProperty, CompanyID: "c1"}, ActionDelete)
	err := d.Err()
	assert.True(t, errors.Is(err, domain.ErrForbidden))
	assert.Equal(t, domain.KindForbidden, domain.KindOf(err))
	assert.NoError(t, Authorize(user("u", domain.RoleAdmin, "c1"), Resource{Kind: KindProperty, CompanyID: "c1"}, ActionDelete).Err())
}

func TestScope(t *testing.T) {
	assert.Equal(t, query.AllTenants(), Scope(user("s", domain.RoleSuperAdmin, "")))
	assert.Equal(t, query.Tenant("c1"), Scope(user("a", domain.RoleAdmin, "c1")))
	assert.Equal(t, query.Scope{}, Scope(user("a", domain.RoleAdmin, "")))
}
