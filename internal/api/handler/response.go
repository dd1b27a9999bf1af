package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/vistoria/inspection-api/internal/core/domain"
	"github.com/vistoria/inspection-api/internal/core/query"
)

// Envelope is the body of every API response.
type Envelope struct {
	Success bool                `json:"success"`
	Data    any                 `json:"data,omitempty"`
	Message string              `json:"message,omitempty"`
	Error   string              `json:"error,omitempty"`
	Code    string              `json:"code,omitempty"`
	Details []domain.FieldError `json:"details,omitempty"`
}

type pagination struct {
	Page  int   `json:"page"`
	Limit int   `json:"limit"`
	Total int64 `json:"total"`
	Pages int   `json:"pages"`
}

func ok(c echo.Context, status int, data any) error {
	return c.JSON(status, Envelope{Success: true, Data: data})
}

func okMessage(c echo.Context, status int, data any, msg string) error {
	return c.JSON(status, Envelope{Success: true, Data: data, Message: msg})
}

// list renders a page as {<key>: [...], pagination: {...}}.
func list[T, U any](c echo.Context, key string, page *query.Page[T], fn func(T) U) error {
	out := query.Map(page, fn)
	return ok(c, http.StatusOK, map[string]any{
		key: out.Items,
		"pagination": pagination{
			Page:  out.Page,
			Limit: out.Limit,
			Total: out.Total,
			Pages: out.Pages,
		},
	})
}
