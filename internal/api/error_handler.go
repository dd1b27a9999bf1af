package api

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/vistoria/inspection-api/internal/api/handler"
	"github.com/vistoria/inspection-api/internal/core/domain"
)

var kindStatus = map[domain.ErrorKind]int{
	domain.KindValidation:     http.StatusBadRequest,
	domain.KindAuthentication: http.StatusUnauthorized,
	domain.KindForbidden:      http.StatusForbidden,
	domain.KindNotFound:       http.StatusNotFound,
	domain.KindInternal:       http.StatusInternalServerError,
}

// httpErrors translates errors raised by echo itself (router, body limit,
// rate limiter) into the same envelope domain errors use.
var httpErrors = map[int]struct{ code, msg string }{
	http.StatusBadRequest:            {"BAD_REQUEST", "Requisição malformada"},
	http.StatusUnauthorized:          {"TOKEN_REQUIRED", "Token de acesso requerido"},
	http.StatusForbidden:             {"FORBIDDEN", "Acesso negado"},
	http.StatusNotFound:              {"NOT_FOUND", "Rota não encontrada"},
	http.StatusMethodNotAllowed:      {"METHOD_NOT_ALLOWED", "Método não permitido"},
	http.StatusRequestEntityTooLarge: {"PAYLOAD_TOO_LARGE", "Requisição excede o tamanho máximo permitido"},
	http.StatusUnsupportedMediaType:  {"UNSUPPORTED_MEDIA_TYPE", "Tipo de conteúdo não suportado"},
	http.StatusTooManyRequests:       {"RATE_LIMITED", "Muitas requisições, tente novamente mais tarde"},
}

var internalEnvelope = handler.Envelope{
	Success: false,
	Error:   "Erro interno do servidor",
	Code:    "INTERNAL_ERROR",
}

// NewHTTPErrorHandler returns an echo.HTTPErrorHandler that renders every
// error as an envelope. Internal causes are logged and never sent to clients.
func NewHTTPErrorHandler(log zerolog.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		status, body := resolveError(err, log, c)
		if c.Request().Method == http.MethodHead {
			_ = c.NoContent(status)
			return
		}
		_ = c.JSON(status, body)
	}
}

func resolveError(err error, log zerolog.Logger, c echo.Context) (int, handler.Envelope) {
	var de *domain.Error
	if errors.As(err, &de) {
		status := kindStatus[de.Kind]
		if status == 0 || status == http.StatusInternalServerError {
			logUnexpected(log, c, err)
			return http.StatusInternalServerError, internalEnvelope
		}
		return status, handler.Envelope{
			Success: false,
			Error:   de.Message,
			Code:    de.Code,
			Details: de.Fields,
		}
	}

	var he *echo.HTTPError
	if errors.As(err, &he) {
		if m, ok := httpErrors[he.Code]; ok {
			return he.Code, handler.Envelope{Success: false, Error: m.msg, Code: m.code}
		}
		if he.Code < http.StatusInternalServerError {
			return he.Code, handler.Envelope{Success: false, Error: http.StatusText(he.Code), Code: "HTTP_ERROR"}
		}
	}

	logUnexpected(log, c, err)
	return http.StatusInternalServerError, internalEnvelope
}

func logUnexpected(log zerolog.Logger, c echo.Context, err error) {
	log.Error().
		Err(err).
		Str("method", c.Request().Method).
		Str("path", c.Path()).
		Str("request_id", c.Response().Header().Get(echo.HeaderXRequestID)).
		Msg("unhandled error")
}
