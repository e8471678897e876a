package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/openbid/auction-marketplace/internal/role"
)

// RequireRole aborts with 403 unless the authenticated account carries
// one of the given roles. Must run after JWTAuth.
func RequireRole(roles ...role.Role) echo.MiddlewareFunc {
	allowed := make(map[role.Role]bool, len(roles))
	for _, r := range roles {
		allowed[r] = true
	}
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			v, _ := c.Get(CtxRole).(string)
			r, ok := role.Parse(v)
			if !ok || !allowed[r] {
				return c.JSON(http.StatusForbidden, echo.Map{"success": false, "message": "forbidden"})
			}
			return next(c)
		}
	}
}

// RequireAdmin admits Admin and Super Admin.
func RequireAdmin() echo.MiddlewareFunc {
	return RequireRole(role.Admin, role.SuperAdmin)
}
