package handler

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/openbid/auction-marketplace/internal/repository"
)

// NotificationHandler serves the authenticated account's in-app inbox.
type NotificationHandler struct {
	Notifications *repository.NotificationRepo
}

func NewNotificationHandler(n *repository.NotificationRepo) *NotificationHandler {
	return &NotificationHandler{Notifications: n}
}

// List returns recent notifications with the unread count. ?limit=
// caps the page, default 50.
func (h *NotificationHandler) List(c echo.Context) error {
	accID, err := accountID(c)
	if err != nil {
		return fail(c, http.StatusUnauthorized, "unauthorized")
	}
	limit := 50
	if v := c.QueryParam("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 && n <= 200 {
			limit = n
		}
	}
	ctx, cancel := reqCtx(c)
	defer cancel()
	ns, unread, err := h.Notifications.ListByAccount(ctx, accID, limit)
	if err != nil {
		return failErr(c, err)
	}
	return respond(c, http.StatusOK, "notifications", echo.Map{
		"notifications": toNotificationViews(ns),
		"unread":        unread,
	})
}

// MarkRead marks one of the caller's notifications read.
func (h *NotificationHandler) MarkRead(c echo.Context) error {
	accID, err := accountID(c)
	if err != nil {
		return fail(c, http.StatusUnauthorized, "unauthorized")
	}
	id, err := pathID(c)
	if err != nil {
		return fail(c, http.StatusBadRequest, "invalid id")
	}
	ctx, cancel := reqCtx(c)
	defer cancel()
	if err := h.Notifications.MarkRead(ctx, id, accID); err != nil {
		return failErr(c, err)
	}
	return respond(c, http.StatusOK, "notification read", nil)
}

// MarkAllRead marks the caller's whole inbox read.
func (h *NotificationHandler) MarkAllRead(c echo.Context) error {
	accID, err := accountID(c)
	if err != nil {
		return fail(c, http.StatusUnauthorized, "unauthorized")
	}
	ctx, cancel := reqCtx(c)
	defer cancel()
	if err := h.Notifications.MarkAllRead(ctx, accID); err != nil {
		return failErr(c, err)
	}
	return respond(c, http.StatusOK, "all notifications read", nil)
}

// Delete removes one of the caller's notifications.
func (h *NotificationHandler) Delete(c echo.Context) error {
	accID, err := accountID(c)
	if err != nil {
		return fail(c, http.StatusUnauthorized, "unauthorized")
	}
	id, err := pathID(c)
	if err != nil {
		return fail(c, http.StatusBadRequest, "invalid id")
	}
	ctx, cancel := reqCtx(c)
	defer cancel()
	if err := h.Notifications.Delete(ctx, id, accID); err != nil {
		return failErr(c, err)
	}
	return respond(c, http.StatusOK, "notification deleted", nil)
}
