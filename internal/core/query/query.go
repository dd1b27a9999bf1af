// Package query normalizes list parameters (pagination, sorting, free-text
// search) and carries the tenant scope every repository query must apply.
package query

import (
	"strings"
	"time"
)

const (
	DefaultPage  = 1
	DefaultLimit = 20
	MaxLimit     = 100
)

// SortOrder is the direction of the primary sort key.
type SortOrder string

const (
	Asc  SortOrder = "asc"
	Desc SortOrder = "desc"
)

// Scope restricts a query to one tenant, or to none for super_admin.
type Scope struct {
	CompanyID string
	All       bool
}

// Tenant returns a scope limited to companyID.
func Tenant(companyID string) Scope { return Scope{CompanyID: companyID} }

// AllTenants returns an unrestricted scope.
func AllTenants() Scope { return Scope{All: true} }

// Matches reports whether a row owned by companyID is visible in the scope.
// An empty tenant scope matches nothing.
func (s Scope) Matches(companyID string) bool {
	return s.All || (s.CompanyID != "" && s.CompanyID == companyID)
}

// Spec is the per-resource contract for list queries: which columns may be
// sorted on and which columns free-text search looks at. Anything outside the
// allow-lists is ignored.
type Spec struct {
	SortFields   []string
	DefaultSort  string
	DefaultOrder SortOrder
	SearchFields []string
}

// Sortable reports whether field is in the sort allow-list.
func (s Spec) Sortable(field string) bool {
	for _, f := range s.SortFields {
		if f == field {
			return true
		}
	}
	return false
}

// Params are normalized list parameters.
type Params struct {
	Page      int
	Limit     int
	Search    string
	SortBy    string
	SortOrder SortOrder
}

// Raw carries list parameters as received from the transport layer.
type Raw struct {
	Page      int
	Limit     int
	Search    string
	SortBy    string
	SortOrder string
}

// Normalize applies defaults and clamps: page >= 1, limit within
// [1, MaxLimit] (defaultLimit when absent), sort field restricted to the
// spec allow-list and order to asc/desc.
func Normalize(raw Raw, spec Spec, defaultLimit int) Params {
	if defaultLimit <= 0 {
		defaultLimit = DefaultLimit
	}

	p := Params{
		Page:   raw.Page,
		Limit:  raw.Limit,
		Search: strings.TrimSpace(raw.Search),
		SortBy: raw.SortBy,
	}
	if p.Page < 1 {
		p.Page = DefaultPage
	}
	switch {
	case p.Limit == 0:
		p.Limit = defaultLimit
	case p.Limit < 1:
		p.Limit = 1
	case p.Limit > MaxLimit:
		p.Limit = MaxLimit
	}
	if !spec.Sortable(p.SortBy) {
		p.SortBy = spec.DefaultSort
	}

	switch SortOrder(strings.ToLower(raw.SortOrder)) {
	case Asc:
		p.SortOrder = Asc
	case Desc:
		p.SortOrder = Desc
	default:
		p.SortOrder = spec.DefaultOrder
		if p.SortOrder == "" {
			p.SortOrder = Desc
		}
	}
	return p
}

// Offset is the number of rows skipped before the current page.
func (p Params) Offset() int {
	return (p.Page - 1) * p.Limit
}

// Pages returns ceil(total/limit).
func (p Params) Pages(total int64) int {
	if p.Limit <= 0 || total <= 0 {
		return 0
	}
	return int((total + int64(p.Limit) - 1) / int64(p.Limit))
}

// DateRange is an optional inclusive time window.
type DateRange struct {
	From time.Time
	To   time.Time
}

func (r DateRange) IsZero() bool { return r.From.IsZero() && r.To.IsZero() }

// Page is one page of results plus the totals needed to render pagination.
type Page[T any] struct {
	Items []T
	Page  int
	Limit int
	Total int64
	Pages int
}

// NewPage assembles a Page from normalized params and the query results.
func NewPage[T any](items []T, total int64, p Params) *Page[T] {
	if items == nil {
		items = []T{}
	}
	return &Page[T]{Items: items, Page: p.Page, Limit: p.Limit, Total: total, Pages: p.Pages(total)}
}

// Map converts the items of a page while keeping its totals.
func Map[T, U any](p *Page[T], fn func(T) U) *Page[U] {
	out := make([]U, len(p.Items))
	for i, it := range p.Items {
		out[i] = fn(it)
	}
	return &Page[U]{Items: out, Page: p.Page, Limit: p.Limit, Total: p.Total, Pages: p.Pages}
}
