package middleware

import (
	"context"

	"github.com/labstack/echo/v4"

	"github.com/vistoria/inspection-api/internal/core/domain"
)

// RBAC is a coarse route-level role gate for groups restricted as a whole.
// Row-level decisions stay in the policy package.
func RBAC(allowedRoles ...domain.Role) echo.MiddlewareFunc {
	allowed := make(map[domain.Role]struct{}, len(allowedRoles))
	for _, r := range allowedRoles {
		allowed[r] = struct{}{}
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			p, ok := PrincipalFrom(c)
			if !ok {
				return domain.ErrTokenRequired
			}
			if _, ok := allowed[p.Role]; !ok || p.IsClient() {
				return domain.ErrForbidden
			}
			return next(c)
		}
	}
}

// TenantChecker reports whether the principal's company may use the API.
type TenantChecker interface {
	EnsureActive(ctx context.Context, p domain.Principal) error
}

// RequireActiveTenant rejects users of suspended companies. super_admin and
// clients pass through.
func RequireActiveTenant(tenants TenantChecker) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			p, ok := PrincipalFrom(c)
			if !ok {
				return domain.ErrTokenRequired
			}
			if err := tenants.EnsureActive(c.Request().Context(), p); err != nil {
				return err
			}
			return next(c)
		}
	}
}
