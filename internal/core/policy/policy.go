// Package policy holds the authorization rules shared by every route.
//
// Authorize is a pure function of the principal, the resource being touched
// and the action. Services call it after loading a row (or before creating
// one) so the same rule set applies regardless of which endpoint is used.
package policy

import (
	"github.com/vistoria/inspection-api/internal/core/domain"
	"github.com/vistoria/inspection-api/internal/core/query"
)

// Kind names a resource type.
type Kind string

const (
	KindCompany    Kind = "company"
	KindUser       Kind = "user"
	KindProperty   Kind = "property"
	KindInspection Kind = "inspection"
	KindUpload     Kind = "upload"
	KindContest    Kind = "contest"
	KindSync       Kind = "sync"
	KindDashboard  Kind = "dashboard"
)

// Action is what the principal wants to do with a resource.
type Action string

const (
	ActionRead       Action = "read"
	ActionCreate     Action = "create"
	ActionUpdate     Action = "update"
	ActionDelete     Action = "delete"
	ActionTransition Action = "transition"
	// ActionReview covers supervisory status changes such as approving or
	// cancelling an inspection.
	ActionReview Action = "review"
)

// Resource describes the row an action applies to. CompanyID is empty for
// resources that are not tenant scoped. OwnerID is the user that owns the
// row for owner rules (assigned inspector, uploader, the user itself, the
// submitter of a sync operation). ClientID is the client linked to the row.
type Resource struct {
	Kind      Kind
	CompanyID string
	OwnerID   string
	ClientID  string
}

// Decision is the outcome of Authorize.
type Decision struct {
	Allowed bool
	Reason  string
}

// Err converts a denial into a ForbiddenError; nil when allowed.
func (d Decision) Err() error {
	if d.Allowed {
		return nil
	}
	return domain.ErrForbidden.WithMessage(d.Reason)
}

func allow() Decision              { return Decision{Allowed: true} }
func deny(reason string) Decision { return Decision{Reason: reason} }

type roleSet map[domain.Role]struct{}

func roles(rs ...domain.Role) roleSet {
	s := make(roleSet, len(rs))
	for _, r := range rs {
		s[r] = struct{}{}
	}
	return s
}

var (
	everyone   = roles(domain.RoleAdmin, domain.RoleManager, domain.RoleInspector, domain.RoleViewer)
	supervisor = roles(domain.RoleAdmin, domain.RoleManager)
	fieldStaff = roles(domain.RoleAdmin, domain.RoleManager, domain.RoleInspector)
	adminOnly  = roles(domain.RoleAdmin)
	nobody     = roles()
)

// rule lists the roles allowed to perform an action and whether the row
// owner is allowed regardless of role.
type rule struct {
	roles roleSet
	owner bool
}

// matrix is the role rule table for company users. super_admin bypasses it.
var matrix = map[Kind]map[Action]rule{
	KindCompany: {
		ActionRead:   {roles: everyone},
		ActionUpdate: {roles: adminOnly},
		ActionCreate: {roles: nobody},
		ActionDelete: {roles: nobody},
		// suspending or reactivating a tenant
		ActionTransition: {roles: nobody},
	},
	KindUser: {
		ActionRead:   {roles: supervisor, owner: true},
		ActionCreate: {roles: adminOnly},
		ActionUpdate: {roles: adminOnly, owner: true},
		ActionDelete: {roles: adminOnly},
	},
	KindProperty: {
		ActionRead:   {roles: everyone},
		ActionCreate: {roles: supervisor},
		ActionUpdate: {roles: supervisor},
		ActionDelete: {roles: adminOnly},
	},
	KindInspection: {
		ActionRead:       {roles: everyone},
		ActionCreate:     {roles: supervisor},
		ActionUpdate:     {roles: supervisor, owner: true},
		ActionTransition: {roles: supervisor, owner: true},
		ActionReview:     {roles: supervisor},
		ActionDelete:     {roles: adminOnly},
	},
	KindUpload: {
		ActionRead:   {roles: everyone},
		ActionCreate: {roles: fieldStaff},
		ActionDelete: {roles: supervisor, owner: true},
	},
	KindContest: {
		ActionRead:       {roles: everyone},
		ActionTransition: {roles: supervisor},
		ActionDelete:     {roles: adminOnly},
	},
	KindSync: {
		ActionRead:   {roles: supervisor, owner: true},
		ActionCreate: {roles: fieldStaff},
	},
	KindDashboard: {
		ActionRead: {roles: everyone},
	},
}

// clientRules lists what clients may do; every entry requires the row to be
// linked to the client.
var clientRules = map[Kind]map[Action]bool{
	KindInspection: {ActionRead: true},
	KindProperty:   {ActionRead: true},
	KindContest:    {ActionRead: true, ActionCreate: true},
}

// Authorize decides whether p may perform a on r.
func Authorize(p domain.Principal, r Resource, a Action) Decision {
	if p.ID == "" {
		return deny("no principal")
	}

	if p.IsClient() {
		if !clientRules[r.Kind][a] {
			return deny("clients cannot " + string(a) + " " + string(r.Kind))
		}
		if r.ClientID != p.ID {
			return deny("resource does not belong to client")
		}
		return allow()
	}

	if p.IsSuperAdmin() {
		return allow()
	}

	if r.CompanyID != "" && r.CompanyID != p.CompanyID {
		return deny("resource belongs to another company")
	}

	rl, ok := matrix[r.Kind][a]
	if !ok {
		return deny("action not permitted")
	}
	if _, ok := rl.roles[p.Role]; ok {
		return allow()
	}
	// viewers own nothing except their own user record
	if rl.owner && r.OwnerID != "" && r.OwnerID == p.ID && (p.Role != domain.RoleViewer || r.Kind == KindUser) {
		return allow()
	}
	return deny("role " + string(p.Role) + " cannot " + string(a) + " " + string(r.Kind))
}

// Scope returns the tenant filter to apply to list and lookup queries. Only
// super_admin gets an unrestricted scope; a user without a company gets a
// scope that matches nothing.
func Scope(p domain.Principal) query.Scope {
	if p.IsSuperAdmin() {
		return query.AllTenants()
	}
	return query.Tenant(p.CompanyID)
}
