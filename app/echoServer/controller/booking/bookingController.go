package booking

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"

	"github.com/Rizwanwaseer11/homerental/model"
	bs "github.com/Rizwanwaseer11/homerental/service/booking"
)

type Controller struct {
	Svc bs.Service
	V   *validator.Validate
	Log *slog.Logger
}

// POST /v1/bookings  (renter)
func (h *Controller) Create(c echo.Context) error {
	role, _ := c.Get("role").(string)
	if role != "renter" {
		return c.JSON(http.StatusForbidden, echo.Map{"message": "renters only"})
	}

	var req CreateBookingReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid JSON"})
	}
	if err := h.V.Struct(req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "validation error", "errors": err.Error()})
	}
	uid, _ := c.Get("user_id").(int64)

	b, err := h.Svc.Request(c.Request().Context(), uid, req.PropertyID, req.Method)
	if err != nil {
		var dup *bs.DuplicateError
		if errors.As(err, &dup) {
			return c.JSON(http.StatusConflict, echo.Map{
				"message": "you already have an active booking for this property",
				"booking": dup.Existing,
			})
		}
		switch bs.Code(err) {
		case bs.ErrNotFound:
			return c.JSON(http.StatusNotFound, echo.Map{"message": "property not found"})
		case bs.ErrPropertyUnavailable:
			return c.JSON(http.StatusConflict, echo.Map{"message": "property not available"})
		default:
			h.Log.Error("booking create", "err", err)
			return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
		}
	}
	return c.JSON(http.StatusCreated, b)
}

// POST /v1/bookings/:id/approve  (owner)
func (h *Controller) Approve(c echo.Context) error {
	return h.decide(c, h.Svc.Approve)
}

// POST /v1/bookings/:id/reject  (owner)
func (h *Controller) Reject(c echo.Context) error {
	return h.decide(c, h.Svc.Reject)
}

// POST /v1/bookings/:id/cancel  (renter, while pending)
func (h *Controller) Cancel(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid id"})
	}
	uid, _ := c.Get("user_id").(int64)

	b, err := h.Svc.Cancel(c.Request().Context(), uid, id)
	if err != nil {
		return h.mapErr(c, "booking cancel", err)
	}
	return c.JSON(http.StatusOK, b)
}

// GET /v1/bookings/:id
func (h *Controller) Detail(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid id"})
	}
	uid, _ := c.Get("user_id").(int64)

	b, err := h.Svc.Detail(c.Request().Context(), uid, id)
	if err != nil {
		return h.mapErr(c, "booking detail", err)
	}
	return c.JSON(http.StatusOK, b)
}

// GET /v1/bookings/my
func (h *Controller) My(c echo.Context) error {
	uid, _ := c.Get("user_id").(int64)
	rows, err := h.Svc.ListForRenter(c.Request().Context(), uid)
	if err != nil {
		h.Log.Error("booking my", "err", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
	}
	return c.JSON(http.StatusOK, echo.Map{"data": rows})
}

// GET /v1/bookings/received
func (h *Controller) Received(c echo.Context) error {
	uid, _ := c.Get("user_id").(int64)
	rows, err := h.Svc.ListForOwner(c.Request().Context(), uid)
	if err != nil {
		h.Log.Error("booking received", "err", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
	}
	return c.JSON(http.StatusOK, echo.Map{"data": rows})
}

func (h *Controller) decide(c echo.Context, op func(ctx context.Context, ownerID, bookingID int64) (*model.Booking, error)) error {
	id, err := parseID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid id"})
	}
	uid, _ := c.Get("user_id").(int64)

	b, err := op(c.Request().Context(), uid, id)
	if err != nil {
		return h.mapErr(c, "booking decide", err)
	}
	return c.JSON(http.StatusOK, b)
}

func (h *Controller) mapErr(c echo.Context, op string, err error) error {
	switch bs.Code(err) {
	case bs.ErrNotFound:
		return c.JSON(http.StatusNotFound, echo.Map{"message": "booking not found"})
	case bs.ErrNotOwner, bs.ErrNotRenter:
		return c.JSON(http.StatusForbidden, echo.Map{"message": "not allowed"})
	case bs.ErrNotPending:
		return c.JSON(http.StatusConflict, echo.Map{"message": "booking is no longer pending"})
	case bs.ErrPropertyUnavailable:
		return c.JSON(http.StatusConflict, echo.Map{"message": "property not available"})
	default:
		h.Log.Error(op, "err", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
	}
}

func parseID(c echo.Context) (int64, error) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, errors.New("invalid id")
	}
	return id, nil
}
