package notification

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	ns "github.com/Rizwanwaseer11/homerental/service/notification"
)

type Controller struct {
	Svc ns.Service
	Log *slog.Logger
}

// GET /v1/notifications
func (h *Controller) List(c echo.Context) error {
	uid, _ := c.Get("user_id").(int64)
	rows, err := h.Svc.ListForUser(c.Request().Context(), uid)
	if err != nil {
		h.Log.Error("notification list", "err", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
	}
	return c.JSON(http.StatusOK, echo.Map{"data": rows})
}

// GET /v1/notifications/unread-count
func (h *Controller) UnreadCount(c echo.Context) error {
	uid, _ := c.Get("user_id").(int64)
	n, err := h.Svc.UnreadCount(c.Request().Context(), uid)
	if err != nil {
		h.Log.Error("notification count", "err", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
	}
	return c.JSON(http.StatusOK, echo.Map{"unread": n})
}

// POST /v1/notifications/:id/read
func (h *Controller) MarkRead(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid id"})
	}
	uid, _ := c.Get("user_id").(int64)

	if err := h.Svc.MarkRead(c.Request().Context(), uid, id); err != nil {
		if ns.Code(err) == ns.ErrNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"message": "notification not found"})
		}
		h.Log.Error("notification read", "err", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "read"})
}

// POST /v1/notifications/read-all
func (h *Controller) MarkAllRead(c echo.Context) error {
	uid, _ := c.Get("user_id").(int64)
	n, err := h.Svc.MarkAllRead(c.Request().Context(), uid)
	if err != nil {
		h.Log.Error("notification read-all", "err", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
	}
	return c.JSON(http.StatusOK, echo.Map{"marked": n})
}

// DELETE /v1/notifications/:id
func (h *Controller) Delete(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid id"})
	}
	uid, _ := c.Get("user_id").(int64)

	if err := h.Svc.Delete(c.Request().Context(), uid, id); err != nil {
		if ns.Code(err) == ns.ErrNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"message": "notification not found"})
		}
		h.Log.Error("notification delete", "err", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "deleted"})
}
