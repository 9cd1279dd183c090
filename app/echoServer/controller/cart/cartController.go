package cart

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	cs "github.com/Rizwanwaseer11/homerental/service/cart"
)

type Controller struct {
	Svc cs.Service
	Log *slog.Logger
}

// GET /v1/cart  (renter)
func (h *Controller) List(c echo.Context) error {
	if !isRenter(c) {
		return c.JSON(http.StatusForbidden, echo.Map{"message": "renters only"})
	}
	uid, _ := c.Get("user_id").(int64)
	rows, err := h.Svc.List(c.Request().Context(), uid)
	if err != nil {
		h.Log.Error("cart list", "err", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
	}
	return c.JSON(http.StatusOK, echo.Map{"data": rows})
}

// POST /v1/cart/:propertyId  (renter)
func (h *Controller) Add(c echo.Context) error {
	if !isRenter(c) {
		return c.JSON(http.StatusForbidden, echo.Map{"message": "renters only"})
	}
	pid, err := strconv.ParseInt(c.Param("propertyId"), 10, 64)
	if err != nil || pid <= 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid property id"})
	}
	uid, _ := c.Get("user_id").(int64)

	if err := h.Svc.Add(c.Request().Context(), uid, pid); err != nil {
		switch cs.Code(err) {
		case cs.ErrNotFound:
			return c.JSON(http.StatusNotFound, echo.Map{"message": "property not found"})
		case cs.ErrNotAvailable:
			return c.JSON(http.StatusConflict, echo.Map{"message": "property not available"})
		case cs.ErrAlreadyInCart:
			return c.JSON(http.StatusOK, echo.Map{"message": "this property is already in your cart"})
		default:
			h.Log.Error("cart add", "err", err)
			return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
		}
	}
	return c.JSON(http.StatusCreated, echo.Map{"message": "added"})
}

// DELETE /v1/cart/:propertyId  (renter)
func (h *Controller) Remove(c echo.Context) error {
	if !isRenter(c) {
		return c.JSON(http.StatusForbidden, echo.Map{"message": "renters only"})
	}
	pid, err := strconv.ParseInt(c.Param("propertyId"), 10, 64)
	if err != nil || pid <= 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid property id"})
	}
	uid, _ := c.Get("user_id").(int64)

	if err := h.Svc.Remove(c.Request().Context(), uid, pid); err != nil {
		h.Log.Error("cart remove", "err", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "removed"})
}

func isRenter(c echo.Context) bool {
	role, _ := c.Get("role").(string)
	return role == "renter"
}
