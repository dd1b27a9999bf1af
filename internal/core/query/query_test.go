package query

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

var propertySpec = Spec{
	SortFields:   []string{"created_at", "name", "city"},
	DefaultSort:  "created_at",
	DefaultOrder: Desc,
	SearchFields: []string{"name", "address"},
}

func TestNormalize(t *testing.T) {
	tests := []struct {
		name string
		raw  Raw
		want Params
	}{
		{
			name: "defaults",
			raw:  Raw{},
			want: Params{Page: 1, Limit: 20, SortBy: "created_at", SortOrder: Desc},
		},
		{
			name: "limit clamped to max",
			raw:  Raw{Page: 3, Limit: 500},
			want: Params{Page: 3, Limit: 100, SortBy: "created_at", SortOrder: Desc},
		},
		{
			name: "negative values",
			raw:  Raw{Page: -2, Limit: -5},
			want: Params{Page: 1, Limit: 1, SortBy: "created_at", SortOrder: Desc},
		},
		{
			name: "sort field outside allow-list falls back",
			raw:  Raw{SortBy: "password_hash", SortOrder: "ASC"},
			want: Params{Page: 1, Limit: 20, SortBy: "created_at", SortOrder: Asc},
		},
		{
			name: "allowed sort and trimmed search",
			raw:  Raw{SortBy: "city", SortOrder: "sideways", Search: "  Flores "},
			want: Params{Page: 1, Limit: 20, SortBy: "city", SortOrder: Desc, Search: "Flores"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Normalize(tt.raw, propertySpec, 0))
		})
	}
}

func TestNormalize_ContextDefaultLimit(t *testing.T) {
	p := Normalize(Raw{}, propertySpec, 50)
	assert.Equal(t, 50, p.Limit)
}

func TestParams_OffsetAndPages(t *testing.T) {
	p := Params{Page: 2, Limit: 5}
	assert.Equal(t, 5, p.Offset())
	assert.Equal(t, 3, p.Pages(12))
	assert.Equal(t, 2, p.Pages(10))
	assert.Equal(t, 0, p.Pages(0))
}

func TestNewPage_EmptyItemsNeverNil(t *testing.T) {
	page := NewPage[string](nil, 12, Params{Page: 9, Limit: 5})
	assert.NotNil(t, page.Items)
	assert.Empty(t, page.Items)
	assert.Equal(t, 3, page.Pages)
	assert.Equal(t, int64(12), page.Total)
}

func TestMap(t *testing.T) {
	page := NewPage([]int{1, 2}, 2, Params{Page: 1, Limit: 20})
	out := Map(page, func(i int) string { return string(rune('a' + i)) })
	assert.Equal(t, []string{"b", "c"}, out.Items)
	assert.Equal(t, 1, out.Pages)
}
