package handler

import (
	"database/sql"
	"net/http"

	"github.com/labstack/echo/v4"
)

// Health reports liveness and database reachability.
func Health(db *sql.DB) echo.HandlerFunc {
	return func(c echo.Context) error {
		if err := db.PingContext(c.Request().Context()); err != nil {
			return c.JSON(http.StatusServiceUnavailable, echo.Map{"success": false, "message": "database unreachable"})
		}
		return c.JSON(http.StatusOK, echo.Map{"success": true, "message": "ok"})
	}
}
