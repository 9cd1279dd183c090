package admin

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	as "github.com/Rizwanwaseer11/homerental/service/admin"
)

type Controller struct {
	Svc as.Service
	Log *slog.Logger
}

func isAdmin(c echo.Context) bool {
	role, _ := c.Get("role").(string)
	return role == "admin"
}

// GET /v1/admin/dashboard
func (h *Controller) Dashboard(c echo.Context) error {
	if !isAdmin(c) {
		return c.JSON(http.StatusForbidden, echo.Map{"message": "admins only"})
	}
	d, err := h.Svc.Dashboard(c.Request().Context())
	if err != nil {
		h.Log.Error("admin dashboard", "err", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
	}
	return c.JSON(http.StatusOK, d)
}

// POST /v1/admin/properties/:id/approve
func (h *Controller) ApproveProperty(c echo.Context) error {
	return h.decide(c, h.Svc.ApproveProperty, "approved")
}

// POST /v1/admin/properties/:id/reject
func (h *Controller) RejectProperty(c echo.Context) error {
	return h.decide(c, h.Svc.RejectProperty, "rejected")
}

func (h *Controller) decide(c echo.Context, op func(ctx context.Context, id int64) error, done string) error {
	if !isAdmin(c) {
		return c.JSON(http.StatusForbidden, echo.Map{"message": "admins only"})
	}
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid id"})
	}
	if err := op(c.Request().Context(), id); err != nil {
		switch as.Code(err) {
		case as.ErrNotFound:
			return c.JSON(http.StatusNotFound, echo.Map{"message": "property not found"})
		case as.ErrNotPending:
			return c.JSON(http.StatusConflict, echo.Map{"message": "property is no longer pending"})
		default:
			h.Log.Error("admin decision", "err", err)
			return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
		}
	}
	return c.JSON(http.StatusOK, echo.Map{"message": done})
}
