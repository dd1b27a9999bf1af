package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vistoria/inspection-api/internal/api/handler"
	"github.com/vistoria/inspection-api/internal/core/domain"
)

func render(t *testing.T, err error) (*httptest.ResponseRecorder, handler.Envelope) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/v1/things", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	NewHTTPErrorHandler(zerolog.Nop())(err, c)

	var body handler.Envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return rec, body
}

func TestErrorHandler_DomainKinds(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		code   string
	}{
		{"validation", domain.ErrEmailTaken, http.StatusBadRequest, "EMAIL_TAKEN"},
		{"authentication", domain.ErrTokenInvalid, http.StatusUnauthorized, "TOKEN_INVALID"},
		{"forbidden", domain.ErrCompanyInactive, http.StatusForbidden, "COMPANY_INACTIVE"},
		{"not found", domain.ErrPropertyNotFound, http.StatusNotFound, "PROPERTY_NOT_FOUND"},
		{"internal", domain.Internal(errors.New("socket closed")), http.StatusInternalServerError, "INTERNAL_ERROR"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, body := render(t, tt.err)
			assert.Equal(t, tt.status, rec.Code)
			assert.False(t, body.Success)
			assert.Equal(t, tt.code, body.Code)
			assert.NotEmpty(t, body.Error)
		})
	}
}

func TestErrorHandler_ValidationDetails(t *testing.T) {
	err := domain.ErrInvalidInput.WithFields(domain.FieldError{Field: "email", Message: "Email inválido"})
	rec, body := render(t, err)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	require.Len(t, body.Details, 1)
	assert.Equal(t, "email", body.Details[0].Field)
}

func TestErrorHandler_WrappedDomainError(t *testing.T) {
	err := errors.Join(errors.New("context"), domain.ErrInspectionNotFound)
	rec, body := render(t, err)

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "INSPECTION_NOT_FOUND", body.Code)
}

func TestErrorHandler_EchoErrors(t *testing.T) {
	tests := []struct {
		err    error
		status int
		code   string
	}{
		{echo.ErrNotFound, http.StatusNotFound, "NOT_FOUND"},
		{echo.ErrMethodNotAllowed, http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED"},
		{echo.ErrStatusRequestEntityTooLarge, http.StatusRequestEntityTooLarge, "PAYLOAD_TOO_LARGE"},
		{echo.ErrTooManyRequests, http.StatusTooManyRequests, "RATE_LIMITED"},
	}
	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			rec, body := render(t, tt.err)
			assert.Equal(t, tt.status, rec.Code)
			assert.Equal(t, tt.code, body.Code)
		})
	}
}

func TestErrorHandler_UnknownErrorHidesCause(t *testing.T) {
	rec, body := render(t, errors.New("mongo: connection refused"))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "INTERNAL_ERROR", body.Code)
	assert.NotContains(t, rec.Body.String(), "mongo")
}
