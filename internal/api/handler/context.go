package handler

import (
	"time"

	"github.com/labstack/echo/v4"

	"github.com/vistoria/inspection-api/internal/api/middleware"
	"github.com/vistoria/inspection-api/internal/core/domain"
	"github.com/vistoria/inspection-api/internal/core/query"
)

// principal returns the identity attached by the auth middleware. Its absence
// means the route was registered without one, so the request is rejected.
func principal(c echo.Context) (domain.Principal, error) {
	p, ok := middleware.PrincipalFrom(c)
	if !ok {
		return domain.Principal{}, domain.ErrTokenRequired
	}
	return p, nil
}

// bind decodes the request into req and validates it. Handlers never see
// input that failed either step.
func bind(c echo.Context, req any) error {
	if err := c.Bind(req); err != nil {
		return domain.ErrInvalidInput.WithMessage("Requisição malformada").Wrap(err)
	}
	return c.Validate(req)
}

// listQuery is embedded by every list request. Out of range page and limit
// values are clamped by query.Normalize rather than rejected.
type listQuery struct {
	Page      int    `query:"page"`
	Limit     int    `query:"limit"`
	Search    string `query:"search"     validate:"omitempty,max=100"`
	SortBy    string `query:"sortBy"`
	SortOrder string `query:"sortOrder"  validate:"omitempty,oneof=asc desc ASC DESC"`
}

func (q listQuery) params(spec query.Spec) query.Params {
	return query.Normalize(query.Raw{
		Page:      q.Page,
		Limit:     q.Limit,
		Search:    q.Search,
		SortBy:    q.SortBy,
		SortOrder: q.SortOrder,
	}, spec, query.DefaultLimit)
}

// dateRange parses validated YYYY-MM-DD bounds; to is inclusive of the whole
// day.
func dateRange(from, to string) query.DateRange {
	var r query.DateRange
	if from != "" {
		r.From, _ = time.Parse(time.DateOnly, from)
	}
	if to != "" {
		if t, err := time.Parse(time.DateOnly, to); err == nil {
			r.To = t.Add(24*time.Hour - time.Nanosecond)
		}
	}
	return r
}
