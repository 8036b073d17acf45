package http

import (
	"net/http"

	"github.com/labstack/echo/v4"

	middleware "github.com/zephyros1603/urbanup/internal/http/middlewares"
	"github.com/zephyros1603/urbanup/internal/services"
)

type NotificationHandler struct {
	notifications *services.NotificationService
}

func NewNotificationHandler(notifications *services.NotificationService) *NotificationHandler {
	return &NotificationHandler{notifications: notifications}
}

func (h *NotificationHandler) List(c echo.Context) error {
	notifications, err := h.notifications.ListForUser(c.Request().Context(),
		middleware.CallerID(c), intQuery(c, "limit", 20), intQuery(c, "offset", 0))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, notifications)
}

func (h *NotificationHandler) UnreadCount(c echo.Context) error {
	count, err := h.notifications.UnreadCount(c.Request().Context(), middleware.CallerID(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"unread": count})
}

func (h *NotificationHandler) MarkRead(c echo.Context) error {
	if err := h.notifications.MarkRead(c.Request().Context(), c.Param("id"), middleware.CallerID(c)); err != nil {
		return respondError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *NotificationHandler) MarkAllRead(c echo.Context) error {
	count, err := h.notifications.MarkAllRead(c.Request().Context(), middleware.CallerID(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"marked": count})
}
