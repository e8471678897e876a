// Package handler defines the HTTP handlers. Every response carries the
// success/message envelope; domain sentinel errors are translated to
// HTTP statuses in one place.
package handler

import (
	"database/sql"
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	log "github.com/sirupsen/logrus"

	"github.com/openbid/auction-marketplace/internal/lifecycle"
	"github.com/openbid/auction-marketplace/internal/repository"
)

// respond writes the success envelope with optional payload fields.
func respond(c echo.Context, code int, message string, extra echo.Map) error {
	body := echo.Map{"success": true, "message": message}
	for k, v := range extra {
		body[k] = v
	}
	return c.JSON(code, body)
}

// fail writes the failure envelope.
func fail(c echo.Context, code int, message string) error {
	return c.JSON(code, echo.Map{"success": false, "message": message})
}

// failErr maps domain sentinels to statuses. Unrecognized errors become
// an opaque 500; the cause is logged, never leaked.
func failErr(c echo.Context, err error) error {
	switch {
	case errors.Is(err, repository.ErrNotFound), errors.Is(err, sql.ErrNoRows):
		return fail(c, http.StatusNotFound, "not found")
	case errors.Is(err, repository.ErrForbidden):
		return fail(c, http.StatusForbidden, "forbidden")
	case errors.Is(err, repository.ErrEmailExists):
		return fail(c, http.StatusConflict, "email already registered")
	case errors.Is(err, lifecycle.ErrNotBidder):
		return fail(c, http.StatusForbidden, err.Error())
	case errors.Is(err, lifecycle.ErrNotOwner):
		return fail(c, http.StatusForbidden, err.Error())
	case errors.Is(err, lifecycle.ErrUnpaidCommission):
		return fail(c, http.StatusForbidden, err.Error())
	case errors.Is(err, lifecycle.ErrAuctionNotStarted),
		errors.Is(err, lifecycle.ErrAuctionEnded),
		errors.Is(err, lifecycle.ErrBidTooLow),
		errors.Is(err, lifecycle.ErrAuctionActive):
		return fail(c, http.StatusConflict, err.Error())
	case errors.Is(err, lifecycle.ErrInvalidWindow):
		return fail(c, http.StatusBadRequest, err.Error())
	}
	log.WithFields(log.Fields{"path": c.Path(), "error": err}).Error("request failed")
	return fail(c, http.StatusInternalServerError, "internal error")
}
