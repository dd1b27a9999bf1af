package middleware

import (
	"github.com/labstack/echo/v4"

	"github.com/vistoria/inspection-api/internal/core/domain"
)

const (
	principalKey    = "principal"
	sessionTokenKey = "session_token"
)

// SetPrincipal attaches the resolved identity to the request.
func SetPrincipal(c echo.Context, p domain.Principal) {
	c.Set(principalKey, p)
}

// PrincipalFrom returns the identity attached by Auth, OptionalAuth or
// Session.
func PrincipalFrom(c echo.Context) (domain.Principal, bool) {
	p, ok := c.Get(principalKey).(domain.Principal)
	return p, ok && p.ID != ""
}

// SessionTokenFrom returns the client session token resolved by Session.
func SessionTokenFrom(c echo.Context) (string, bool) {
	t, ok := c.Get(sessionTokenKey).(string)
	return t, ok && t != ""
}
