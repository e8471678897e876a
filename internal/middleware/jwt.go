// Package middleware holds the reusable Echo middleware: bearer-token
// authentication, role gating, the Redis token-bucket rate limiter and
// the Redis response cache.
package middleware

import (
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
)

// Context keys set by JWTAuth and read by handlers and RequireRole.
const (
	CtxAccountID = "account_id"
	CtxRole      = "role"
)

// JWTAuth validates a Bearer access token signed with secret and puts
// the account id and role claims on the request context. Protected
// route groups wrap themselves in this; handlers read the identity via
// c.Get(CtxAccountID) and c.Get(CtxRole).
func JWTAuth(secret string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			auth := c.Request().Header.Get("Authorization")
			if !strings.HasPrefix(auth, "Bearer ") {
				return c.JSON(http.StatusUnauthorized, echo.Map{"success": false, "message": "missing bearer token"})
			}
			raw := strings.TrimPrefix(auth, "Bearer ")

			tok, err := jwt.Parse(raw, func(t *jwt.Token) (interface{}, error) {
				if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
					return nil, echo.ErrUnauthorized
				}
				return []byte(secret), nil
			})
			if err != nil || !tok.Valid {
				return c.JSON(http.StatusUnauthorized, echo.Map{"success": false, "message": "invalid token"})
			}
			claims, ok := tok.Claims.(jwt.MapClaims)
			if !ok {
				return c.JSON(http.StatusUnauthorized, echo.Map{"success": false, "message": "invalid claims"})
			}

			// Numeric claims decode as float64.
			sub, ok := claims["sub"].(float64)
			if !ok || sub <= 0 {
				return c.JSON(http.StatusUnauthorized, echo.Map{"success": false, "message": "invalid claims"})
			}
			role, _ := claims["role"].(string)

			c.Set(CtxAccountID, uint64(sub))
			c.Set(CtxRole, role)
			return next(c)
		}
	}
}
