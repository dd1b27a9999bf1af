package middleware

import (
	"context"
	"errors"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/vistoria/inspection-api/internal/core/domain"
	"github.com/vistoria/inspection-api/internal/core/service"
	"github.com/vistoria/inspection-api/internal/pkg/metrics"
)

// Auth validates the user JWT and attaches the principal.
func Auth(jwtSecret string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			token, err := bearer(c)
			if err != nil {
				return reject(err)
			}

			p, err := service.ParseToken(token, jwtSecret)
			if err != nil {
				return reject(domain.ErrTokenInvalid)
			}

			SetPrincipal(c, p)
			return next(c)
		}
	}
}

// OptionalAuth attaches the principal when a valid token is present and
// otherwise continues anonymously.
func OptionalAuth(jwtSecret string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if token, err := bearer(c); err == nil {
				if p, err := service.ParseToken(token, jwtSecret); err == nil {
					SetPrincipal(c, p)
				}
			}
			return next(c)
		}
	}
}

// SessionResolver validates an opaque client session token.
type SessionResolver interface {
	Resolve(ctx context.Context, token string) (domain.Principal, error)
}

// Session resolves a client session token and attaches the client principal.
func Session(resolver SessionResolver) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			token, err := bearer(c)
			if err != nil {
				return reject(err)
			}

			p, err := resolver.Resolve(c.Request().Context(), token)
			if err != nil {
				if domain.KindOf(err) == domain.KindInternal {
					return err
				}
				return reject(err)
			}

			SetPrincipal(c, p)
			c.Set(sessionTokenKey, token)
			return next(c)
		}
	}
}

func bearer(c echo.Context) (string, error) {
	header := c.Request().Header.Get(echo.HeaderAuthorization)
	if header == "" {
		return "", domain.ErrTokenRequired
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") || strings.TrimSpace(parts[1]) == "" {
		return "", domain.ErrTokenInvalid
	}
	return strings.TrimSpace(parts[1]), nil
}

// reject counts the failure by error code and returns err unchanged.
func reject(err error) error {
	reason := "unknown"
	var de *domain.Error
	if errors.As(err, &de) {
		reason = de.Code
	}
	metrics.AuthFailuresTotal.WithLabelValues(reason).Inc()
	return err
}
